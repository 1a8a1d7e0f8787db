package sqlinline

const QSelectProjectByID = `--sql f13024b2-fefa-4569-a6dd-5d32ccf473cf
select id, school_id, title, description,
       coalesce(overview, ''), coalesce(motivation, ''), coalesce(objectives, ''), coalesce(scope, ''),
       coalesce(category, '{}'::text[]),
       target_amount, current_amount, backers_count, status, days_remaining,
       created_at, updated_at
from projects
where id = $1::uuid;
`

const QListProjectsByStatus = `--sql b2a6754d-c95f-46d1-ae5c-f321859c052e
select id, school_id, title, description,
       coalesce(overview, ''), coalesce(motivation, ''), coalesce(objectives, ''), coalesce(scope, ''),
       coalesce(category, '{}'::text[]),
       target_amount, current_amount, backers_count, status, days_remaining,
       created_at, updated_at
from projects
where status = any($1::text[])
order by created_at desc
limit $2::int;
`

// QReleaseProjectHeadroom is the compensating decrement for a reservation
// whose charge was declined. An exact delta, never a re-sum: other donors'
// reservations may be mid-charge and must not be touched.
const QReleaseProjectHeadroom = `--sql 70aa81c5-895d-4f7d-af97-918a131de629
update projects
set current_amount = greatest(current_amount - $2::bigint, 0),
    status = case
        when status = 'funded' and target_amount is not null and greatest(current_amount - $2::bigint, 0) < target_amount then 'active'
        else status
    end,
    updated_at = now()
where id = $1::uuid;
`

// QRefreshProjectFunding writes a full re-sum onto the cache columns and
// derives funded status. Always a complete overwrite, never a delta, so
// concurrent refreshes converge.
const QRefreshProjectFunding = `--sql 779205fb-02fa-453d-bf3a-3b2f58faf17a
update projects
set current_amount = $2::bigint,
    backers_count = $3::int,
    status = case
        when target_amount is not null and $2::bigint >= target_amount and status in ('active', 'funded') then 'funded'
        when target_amount is not null and $2::bigint < target_amount and status = 'funded' then 'active'
        else status
    end,
    updated_at = now()
where id = $1::uuid;
`

const QSelectProjectActive = `--sql 6155be44-04a5-49e4-bf04-5baf164a3239
select status, target_amount, current_amount
from projects
where id = $1::uuid;
`
