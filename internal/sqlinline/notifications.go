package sqlinline

const QInsertNotification = `--sql c6fc4f5e-ee16-40db-b022-8930f0411eb3
insert into alumni_notifications (id, alumni_user_id, project_id, type, title, message, is_read, metadata, created_at)
values (gen_random_uuid(), $1::uuid, $2::uuid, $3::text, $4::text, $5::text, false, coalesce($6::jsonb, '{}'::jsonb), now());
`

const QListNotificationsByRecipient = `--sql 8c7c8e82-9214-49e9-9b22-74f5f7e8ff34
select id, alumni_user_id, project_id, type, title, message, is_read, metadata, created_at
from alumni_notifications
where alumni_user_id = $1::uuid
order by created_at desc
limit $2::int;
`

const QMarkNotificationRead = `--sql 6e21f42b-bc91-4aaf-975b-aea1a4079783
update alumni_notifications
set is_read = true
where id = $1::uuid
  and alumni_user_id = $2::uuid;
`
