package sqlinline

const QInsertDonation = `--sql 2fba0bdc-86dd-4299-8d4c-c9e916f02f5e
insert into alumni_donations (id, alumni_user_id, project_id, amount, currency, status, is_anonymous, payment_provider, payment_reference, receipt_number, created_at)
values (gen_random_uuid(), $1::uuid, $2::uuid, $3::bigint, $4::text, $5::text, $6::boolean, $7::text, $8::text, $9::text, now())
returning id, created_at;
`

const QSelectDonationByReference = `--sql a9a1dc1a-8e0d-45fb-b840-23049a3a8a3e
select id, alumni_user_id, project_id, amount, currency, status, is_anonymous, payment_provider, payment_reference, receipt_number, created_at
from alumni_donations
where payment_reference = $1::text
limit 1;
`

// QInsertPendingDonation is the atomic headroom guard: the reservation on
// the project and the pending row that backs it commit in one statement, so
// neither can be observed without the other. Zero rows returned means the
// reservation was refused.
const QInsertPendingDonation = `--sql 9885b07f-9211-4644-b0a9-fcf0299147e4
with reserved as (
    update projects
    set current_amount = current_amount + $3::bigint,
        status = case
            when target_amount is not null and current_amount + $3::bigint >= target_amount then 'funded'
            else status
        end,
        updated_at = now()
    where id = $2::uuid
      and status = 'active'
      and (target_amount is null or current_amount + $3::bigint <= target_amount)
    returning id
)
insert into alumni_donations (id, alumni_user_id, project_id, amount, currency, status, is_anonymous, payment_provider, payment_reference, receipt_number, created_at)
select gen_random_uuid(), $1::uuid, r.id, $3::bigint, $4::text, 'pending', $5::boolean, null, $6::text, $7::text, now()
from reserved r
returning id, created_at;
`

// QMarkDonationStatus flips a donation's lifecycle state after the gateway
// answers. The provider is only known post-charge, so it rides along when
// non-empty.
const QMarkDonationStatus = `--sql 1aed9e83-e8b0-4ef7-9cc6-4fe76715c5f0
update alumni_donations
set status = $2::text,
    payment_provider = coalesce(nullif($3::text, ''), payment_provider)
where id = $1::uuid;
`

// QSumPendingDonations totals the in-flight pending rows for a project.
// Pending rows back live headroom reservations; the ledger refresh adds this
// sum on top of the completed total when rewriting the cache.
const QSumPendingDonations = `--sql fb6148bc-082a-4749-b15c-737c100818f1
select coalesce(sum(amount), 0)::bigint
from alumni_donations
where project_id = $1::uuid
  and status = 'pending';
`

const QListDonationsByDonor = `--sql 0f4a2666-3afb-43fe-9da5-6b435c76b374
select id, alumni_user_id, project_id, amount, currency, status, is_anonymous, payment_provider, payment_reference, receipt_number, created_at
from alumni_donations
where alumni_user_id = $1::uuid
order by created_at desc
limit $2::int;
`

const QListCompletedDonorIDs = `--sql 44b44a0a-dc44-4c62-ac16-a6aa582ac7e9
select distinct alumni_user_id
from alumni_donations
where project_id = $1::uuid
  and status in ('completed', 'completed_demo');
`

// QListCompletedAlumniDonations feeds the primary-source ledger adapter.
// Amounts are already stored in pesewas.
const QListCompletedAlumniDonations = `--sql 59bf2c37-2d2c-437b-8d81-188cdf99cb39
select project_id, alumni_user_id, amount
from alumni_donations
where project_id = $1::uuid
  and status in ('completed', 'completed_demo');
`

// QListSettledHistoryDonations feeds the legacy-source ledger adapter. The
// donation_history table predates the alumni platform: amounts are whole
// cedis in numeric, the donor link is a free-text reference that may be
// null, and settled rows are marked by state rather than status.
const QListSettledHistoryDonations = `--sql c66a8e68-6eb5-494e-a09d-396b01b7b15b
select project_id, alumni_ref, amount_cedis
from donation_history
where project_id = $1::uuid
  and state = 'settled';
`
