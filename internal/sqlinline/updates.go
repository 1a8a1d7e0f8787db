package sqlinline

const QInsertProjectUpdate = `--sql 9e46da6c-3822-407a-80ae-5efd8535e884
insert into project_updates (id, project_id, school_id, title, message, created_at)
values (gen_random_uuid(), $1::uuid, $2::uuid, $3::text, $4::text, now())
returning id, created_at;
`

const QListProjectUpdates = `--sql 54fb19da-2d56-41fe-af73-0f35ad287ba8
select id, project_id, school_id, title, message, created_at
from project_updates
where project_id = $1::uuid
order by created_at desc;
`
