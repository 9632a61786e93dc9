package sqlinline

const QSelectRequests = `--sql e2e3499f-4064-4c9b-ba04-ba3b516b9790
select br.id, br.requester_id, bt.type, br.quantity::text, br.requested_at, br.address, br.status, br.fulfilled, s.username
from blood_requests br
join blood_types bt on bt.id = br.blood_type_id
join staff s on s.id = br.requester_id
order by br.requested_at desc, br.id;
`

const QSelectRequestByID = `--sql 1ef812c7-e3c6-40b7-b121-42a6c78479b4
select br.id, br.requester_id, bt.type, br.quantity::text, br.requested_at, br.address, br.status, br.fulfilled, s.username
from blood_requests br
join blood_types bt on bt.id = br.blood_type_id
join staff s on s.id = br.requester_id
where br.id = $1::bigint;
`

const QInsertRequest = `--sql 0bcfdb23-9d5d-4de9-909e-81cbb7f6103f
insert into blood_requests(requester_id, blood_type_id, quantity, requested_at, address, status, fulfilled)
values ($1::bigint, $2::smallint, $3::numeric, coalesce($4::timestamptz, now()), $5::text, 'Pending', false)
returning id, requested_at;
`

const QLockRequest = `--sql f4572cf8-40cb-4a39-8fb7-fb02e0654c03
select fulfilled
from blood_requests
where id = $1::bigint
for update;
`

const QMarkRequestDelivered = `--sql 8dc0c79d-1ba0-49c3-94bf-b77203992663
update blood_requests
set status = 'Delivered',
    fulfilled = true
where id = $1::bigint
  and fulfilled = false;
`
