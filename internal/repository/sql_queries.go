package repository

// SchemaSQL creates the tables used by the service. It is idempotent.
// The exclusion constraint is the store-level guard against overlapping bookings of one staff member.
const SchemaSQL = `
CREATE EXTENSION IF NOT EXISTS btree_gist;

CREATE TABLE IF NOT EXISTS staff (
    id     VARCHAR(64) PRIMARY KEY,
    name   TEXT        NOT NULL,
    email  TEXT        NOT NULL,
    phone  TEXT        NOT NULL DEFAULT '',
    skills TEXT[]      NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS bookings (
    seq            BIGINT GENERATED ALWAYS AS IDENTITY,
    id             VARCHAR(64) PRIMARY KEY,
    staff_id       VARCHAR(64) NOT NULL REFERENCES staff (id) ON DELETE CASCADE,
    start_time     TIMESTAMPTZ NOT NULL,
    end_time       TIMESTAMPTZ NOT NULL,
    customer_name  TEXT        NOT NULL,
    customer_phone TEXT        NOT NULL,
    customer_email TEXT        NOT NULL,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT bookings_valid_range CHECK (start_time < end_time),
    CONSTRAINT bookings_no_overlap EXCLUDE USING gist (
        staff_id WITH =,
        tstzrange(start_time, end_time, '[)') WITH &&
    )
);

CREATE INDEX IF NOT EXISTS bookings_staff_start_idx ON bookings (staff_id, start_time);
CREATE INDEX IF NOT EXISTS bookings_staff_end_idx ON bookings (staff_id, end_time);
CREATE INDEX IF NOT EXISTS bookings_start_seq_idx ON bookings (start_time, seq);
`

const GetStaffByIDSQL = `
SELECT id, name, email, phone, skills
FROM staff
WHERE id = $1;
`

const ListStaffSQL = `
SELECT id, name, email, phone, skills
FROM staff
ORDER BY id;
`

const UpsertStaffSQL = `
INSERT INTO staff (id, name, email, phone, skills)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name,
    email = EXCLUDED.email,
    phone = EXCLUDED.phone,
    skills = EXCLUDED.skills;
`

// FindOverlappingSQL selects bookings whose interval overlaps [$2, $3).
// An empty $1 matches every staff member.
const FindOverlappingSQL = `
SELECT id, staff_id, start_time, end_time, customer_name, customer_phone, customer_email, created_at
FROM bookings
WHERE ($1::text = '' OR staff_id = $1)
    AND start_time < $3
    AND end_time > $2
ORDER BY start_time, seq;
`

const LockStaffSQL = `
SELECT id FROM staff WHERE id = $1 FOR UPDATE;
`

const ConflictExistsSQL = `
SELECT EXISTS (
    SELECT 1 FROM bookings
    WHERE staff_id = $1
        AND start_time < $3
        AND end_time > $2
);
`

const InsertBookingSQL = `
INSERT INTO bookings (id, staff_id, start_time, end_time, customer_name, customer_phone, customer_email)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING created_at;
`

const ListBookingsByStartSQL = `
SELECT id, staff_id, start_time, end_time, customer_name, customer_phone, customer_email, created_at
FROM bookings
ORDER BY start_time ASC, seq ASC;
`
