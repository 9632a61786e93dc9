package sqlinline

// QSchema creates the relational layout. Blood types live in a lookup table
// whose ids follow the canonical order A+, A-, B+, B-, AB+, AB-, O+, O-.
const QSchema = `--sql b83f0b05-1bbd-4ae5-afd7-1735becb1323
create table if not exists blood_types (
  id smallint primary key,
  type text not null unique
);

insert into blood_types(id, type) values
  (1, 'A+'), (2, 'A-'), (3, 'B+'), (4, 'B-'),
  (5, 'AB+'), (6, 'AB-'), (7, 'O+'), (8, 'O-')
on conflict (id) do nothing;

create table if not exists branches (
  id bigint primary key,
  name text not null,
  address text not null default '',
  postal_code text not null default ''
);

create table if not exists staff (
  id bigint primary key,
  username text not null unique,
  name text not null,
  branch_id bigint not null references branches(id)
);

create table if not exists donors (
  nric text primary key,
  name text not null,
  date_of_birth date not null,
  contact_no text not null default '',
  blood_type_id smallint not null references blood_types(id),
  registration_date timestamptz not null default now()
);

create table if not exists blood_requests (
  id bigserial primary key,
  requester_id bigint not null references staff(id),
  blood_type_id smallint not null references blood_types(id),
  quantity numeric(12,2) not null check (quantity > 0),
  requested_at timestamptz not null default now(),
  address text not null,
  status text not null default 'Pending',
  fulfilled boolean not null default false,
  constraint blood_requests_status_sync check (
    (fulfilled and status = 'Delivered') or (not fulfilled and status = 'Pending')
  )
);

create table if not exists donations (
  id bigserial primary key,
  nric text not null references donors(nric),
  quantity numeric(12,2) not null check (quantity > 0),
  collected_at timestamptz not null,
  branch_id bigint not null references branches(id),
  recorded_by bigint not null references staff(id),
  used_by bigint references blood_requests(id)
);

create index if not exists idx_donations_available on donations(branch_id) where used_by is null;
create index if not exists idx_donations_nric on donations(nric);
create index if not exists idx_donations_collected_at on donations(collected_at desc, id);
`
