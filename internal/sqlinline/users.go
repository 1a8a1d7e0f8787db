package sqlinline

const QSelectAlumniByID = `--sql 0b9ce726-454c-401e-8606-f0ade275ba7d
select id, user_id, full_name, email, school_id, coalesce(school_name, ''), coalesce(niches, '{}'::text[]), created_at
from alumni_users
where id = $1::uuid;
`

const QSelectAlumniByUserID = `--sql cdac2742-c8ee-4341-af4c-56ee8b0fe043
select id, user_id, full_name, email, school_id, coalesce(school_name, ''), coalesce(niches, '{}'::text[]), created_at
from alumni_users
where user_id = $1::uuid;
`

const QSelectSchoolByID = `--sql 449d34ff-969e-423a-bd90-31ba9a1e6e69
select id, user_id, school_name, coalesce(location, ''), coalesce(logo_url, ''), created_at
from schools
where id = $1::uuid;
`

const QSelectSchoolByUserID = `--sql 7f71e62a-b585-4e03-ab3f-6c24ccac9cf0
select id, user_id, school_name, coalesce(location, ''), coalesce(logo_url, ''), created_at
from schools
where user_id = $1::uuid;
`
