package sqlinline

const QSelectDonors = `--sql 04e5ad82-1944-436f-bf86-86b38948a2d6
select d.nric, d.name, d.date_of_birth, d.contact_no, bt.type, d.registration_date
from donors d
join blood_types bt on bt.id = d.blood_type_id
order by d.nric;
`

const QSelectDonorByNRIC = `--sql 1f111ae9-3d8a-4ef7-bd3e-d22a5ff9a539
select d.nric, d.name, d.date_of_birth, d.contact_no, bt.type, d.registration_date
from donors d
join blood_types bt on bt.id = d.blood_type_id
where d.nric = $1::text;
`

const QInsertDonor = `--sql 68e62af8-b75e-4ac6-974a-4d80c75b8732
insert into donors(nric, name, date_of_birth, contact_no, blood_type_id, registration_date)
values ($1::text, $2::text, $3::date, $4::text, $5::smallint, coalesce($6::timestamptz, now()))
returning registration_date;
`

const QUpdateDonor = `--sql 8c6cba4d-6f35-4071-bcaa-90299875b7b7
update donors
set name = $2::text,
    date_of_birth = $3::date,
    contact_no = $4::text,
    blood_type_id = $5::smallint
where nric = $1::text;
`

const QCountDonationsByDonor = `--sql 5138d5d9-9a25-4baa-b6b6-bac97bf7420b
select count(*)
from donations
where nric = $1::text;
`

const QDeleteDonor = `--sql e6987fb7-e95c-4a7e-94e7-af9aa38e9015
delete from donors
where nric = $1::text;
`
