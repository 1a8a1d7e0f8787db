package sqlinline

const QInsertFollow = `--sql 32eca9ae-6038-40f6-a584-58bd01a49700
insert into alumni_followed_schools (alumni_user_id, school_id, created_at)
values ($1::uuid, $2::uuid, now())
on conflict (alumni_user_id, school_id) do nothing;
`

const QDeleteFollow = `--sql 438e6940-5d43-430f-a444-6913d238ba1e
delete from alumni_followed_schools
where alumni_user_id = $1::uuid
  and school_id = $2::uuid;
`

const QListFollowerIDs = `--sql a63c426f-b9b2-4ab1-840d-0bf00a011e5b
select alumni_user_id
from alumni_followed_schools
where school_id = $1::uuid;
`

const QInsertBookmark = `--sql b41fcbdf-7e33-4299-a900-1d27e33c16e7
insert into alumni_bookmarks (alumni_user_id, project_id, created_at)
values ($1::uuid, $2::uuid, now())
on conflict (alumni_user_id, project_id) do nothing;
`

const QDeleteBookmark = `--sql 9f934997-a5c5-4c5f-8953-7ef0a3a52fcf
delete from alumni_bookmarks
where alumni_user_id = $1::uuid
  and project_id = $2::uuid;
`

const QListBookmarkProjectIDs = `--sql c576cce8-ff43-495e-a679-92270dc55f76
select project_id
from alumni_bookmarks
where alumni_user_id = $1::uuid
order by created_at desc;
`
