package sqlinline

const QSelectServiceCredential = `--sql 10174d3c-ab37-49b9-b5ff-4f5b757a65bb
select secret
from service_credentials
where provider = $1::text
limit 1;
`

const QUpsertServiceCredential = `--sql e8f23a59-cf44-4f59-b37e-84a4a329cdfe
insert into service_credentials (provider, secret, updated_at)
values ($1::text, $2::text, now())
on conflict (provider) do update set
    secret = excluded.secret,
    updated_at = now();
`
