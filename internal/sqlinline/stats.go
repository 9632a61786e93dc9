package sqlinline

const QDashboardStats = `--sql 3509d271-ad14-401d-875a-a4dade5f6496
select
  (select count(*) from donors),
  (select coalesce(sum(quantity), 0)::text from donations where used_by is null),
  (select count(*) from blood_requests where fulfilled = false);
`

const QInventoryByBranch = `--sql dfafc942-deda-49dc-abb4-281bd6da70e6
select bt.type, sum(dn.quantity)::text
from donations dn
join donors d on d.nric = dn.nric
join blood_types bt on bt.id = d.blood_type_id
where dn.used_by is null
  and dn.branch_id = $1::bigint
group by bt.type;
`
