package sqlinline

// Every donation select returns the same column list so a single scanner
// serves them all: id, nric, quantity, collected_at, branch_id, recorded_by,
// used_by, blood type, branch name, recording staff username.

const QSelectDonations = `--sql ba4e1171-7942-42e2-a71b-56342ffde9c2
select dn.id, dn.nric, dn.quantity::text, dn.collected_at, dn.branch_id, dn.recorded_by, dn.used_by,
       bt.type, b.name, s.username
from donations dn
join donors d on d.nric = dn.nric
join blood_types bt on bt.id = d.blood_type_id
join branches b on b.id = dn.branch_id
join staff s on s.id = dn.recorded_by
order by dn.collected_at desc, dn.id;
`

const QSelectDonationByID = `--sql 090c5128-1b9b-488e-acd6-797bf2ac6211
select dn.id, dn.nric, dn.quantity::text, dn.collected_at, dn.branch_id, dn.recorded_by, dn.used_by,
       bt.type, b.name, s.username
from donations dn
join donors d on d.nric = dn.nric
join blood_types bt on bt.id = d.blood_type_id
join branches b on b.id = dn.branch_id
join staff s on s.id = dn.recorded_by
where dn.id = $1::bigint;
`

const QSelectDonationsByDonor = `--sql a6502013-f26b-4afb-b428-5ea38e230b19
select dn.id, dn.nric, dn.quantity::text, dn.collected_at, dn.branch_id, dn.recorded_by, dn.used_by,
       bt.type, b.name, s.username
from donations dn
join donors d on d.nric = dn.nric
join blood_types bt on bt.id = d.blood_type_id
join branches b on b.id = dn.branch_id
join staff s on s.id = dn.recorded_by
where dn.nric = $1::text
order by dn.id;
`

const QSelectAvailableDonationsByBloodType = `--sql 0a50a8c3-4890-4675-b096-a4c0cff16f5c
select dn.id, dn.nric, dn.quantity::text, dn.collected_at, dn.branch_id, dn.recorded_by, dn.used_by,
       bt.type, b.name, s.username
from donations dn
join donors d on d.nric = dn.nric
join blood_types bt on bt.id = d.blood_type_id
join branches b on b.id = dn.branch_id
join staff s on s.id = dn.recorded_by
where dn.used_by is null
  and bt.type = $1::text
order by dn.collected_at, dn.id;
`

const QInsertDonation = `--sql 917f5775-5b3c-4601-be60-d068d5e864f1
insert into donations(nric, quantity, collected_at, branch_id, recorded_by)
values ($1::text, $2::numeric, $3::timestamptz, $4::bigint, $5::bigint)
returning id;
`

// QMarkDonationUsed is a compare-and-swap: zero rows affected means the
// donation is missing or already consumed.
const QMarkDonationUsed = `--sql 7e01e711-72f8-497a-b6d1-d281dc80ad48
update donations
set used_by = $2::bigint
where id = $1::bigint
  and used_by is null;
`

// QLockDonations takes row locks in id order so concurrent fulfillments
// queue behind each other instead of deadlocking.
const QLockDonations = `--sql 39889793-f068-4411-98f1-78dea0256e46
select id, used_by
from donations
where id = any($1::bigint[])
order by id
for update;
`

const QMarkDonationsUsed = `--sql 0bdcad61-6c0b-4698-a964-cbb03bd5df77
update donations
set used_by = $1::bigint
where id = any($2::bigint[])
  and used_by is null;
`
