package sqlinline

const QEnqueueReconciliation = `--sql b9bd5cea-ced9-4cfd-81ac-36010d4eda33
insert into payment_reconciliation (id, alumni_user_id, project_id, amount, currency, is_anonymous, payment_provider, payment_reference, receipt_number, attempts, last_error, created_at)
values (gen_random_uuid(), $1::uuid, $2::uuid, $3::bigint, $4::text, $5::boolean, $6::text, $7::text, $8::text, 0, $9::text, now())
on conflict (payment_reference) do nothing;
`

const QListPendingReconciliation = `--sql 8db2593b-a7f0-4440-9ece-537f9e49db91
select id, alumni_user_id, project_id, amount, currency, is_anonymous, payment_provider, payment_reference, receipt_number, attempts, coalesce(last_error, ''), created_at
from payment_reconciliation
where resolved_at is null
order by created_at asc
limit $1::int;
`

const QMarkReconciliationResolved = `--sql c4a73a44-03ce-4bcf-b5f5-298bb23762af
update payment_reconciliation
set resolved_at = now()
where id = $1::uuid;
`

const QMarkReconciliationAttempt = `--sql 35eb3a07-68e8-4d0a-b84a-64ced15658aa
update payment_reconciliation
set attempts = attempts + 1,
    last_error = $2::text
where id = $1::uuid;
`
