package sqlinline

const QSelectBranches = `--sql bfe8d3cd-7811-40e7-a88f-b86f94cc284c
select id, name, address, postal_code
from branches
order by id;
`

const QSelectBranchByID = `--sql 5e34acdc-3786-454c-a451-53ecc87f8bc5
select id, name, address, postal_code
from branches
where id = $1::bigint;
`

const QUpsertBranch = `--sql e7067ca7-50fe-4760-84a8-7733d4de8d4a
insert into branches(id, name, address, postal_code)
values ($1::bigint, $2::text, $3::text, $4::text)
on conflict (id) do update
set name = excluded.name,
    address = excluded.address,
    postal_code = excluded.postal_code;
`

const QSelectStaffByID = `--sql 5a3a5952-8fc7-44c6-9e49-78a90fdb2eaa
select id, username, name, branch_id
from staff
where id = $1::bigint;
`

const QUpsertStaff = `--sql 0c026757-be8a-4c94-80f5-b722063d1b78
insert into staff(id, username, name, branch_id)
values ($1::bigint, $2::text, $3::text, $4::bigint)
on conflict (id) do update
set username = excluded.username,
    name = excluded.name,
    branch_id = excluded.branch_id;
`

const QSelectBloodTypeID = `--sql ccae4a36-d1e4-410d-8a19-d1cb57d229c7
select id
from blood_types
where type = $1::text;
`
