package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Serialize writers; admission counters depend on conditional updates
	// executing one at a time.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	db.SetMaxOpenConns(1)

	return &DB{db}, nil
}

// RunMigrations creates the schema.
func (db *DB) RunMigrations() error {
	migration := `
-- Locations (rooms). Parent/overflow relations are id references.
CREATE TABLE locations (
    id TEXT PRIMARY KEY,
    campus_id TEXT NOT NULL,
    name TEXT NOT NULL,
    parent_id TEXT,
    soft_threshold INTEGER,
    hard_threshold INTEGER,
    child_ratio INTEGER,
    overflow_location_id TEXT,
    auto_assign_overflow INTEGER NOT NULL DEFAULT 0,
    active INTEGER NOT NULL DEFAULT 1,
    current_count INTEGER NOT NULL DEFAULT 0 CHECK(current_count >= 0),
    FOREIGN KEY (parent_id) REFERENCES locations(id),
    FOREIGN KEY (overflow_location_id) REFERENCES locations(id)
);
CREATE INDEX idx_campus_locations ON locations(campus_id);

-- People (managed externally; read-only to the check-in core)
CREATE TABLE people (
    id TEXT PRIMARY KEY,
    campus_id TEXT NOT NULL,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    active INTEGER NOT NULL DEFAULT 1
);

-- Name search for kiosk lookup (SQLite FTS5)
CREATE VIRTUAL TABLE people_fts USING fts5(
    first_name,
    last_name,
    content='people',
    content_rowid='rowid'
);

-- Triggers to keep FTS index synchronized
CREATE TRIGGER people_ai AFTER INSERT ON people BEGIN
    INSERT INTO people_fts(rowid, first_name, last_name)
    VALUES (new.rowid, new.first_name, new.last_name);
END;

CREATE TRIGGER people_ad AFTER DELETE ON people BEGIN
    DELETE FROM people_fts WHERE rowid = old.rowid;
END;

CREATE TRIGGER people_au AFTER UPDATE ON people BEGIN
    INSERT INTO people_fts(people_fts, rowid, first_name, last_name)
    VALUES('delete', old.rowid, old.first_name, old.last_name);
    INSERT INTO people_fts(rowid, first_name, last_name)
    VALUES (new.rowid, new.first_name, new.last_name);
END;

-- Schedules
CREATE TABLE schedules (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    weekly_day_of_week INTEGER,
    recur_frequency TEXT,
    recur_interval INTEGER,
    recur_start_date TIMESTAMP,
    recur_until TIMESTAMP,
    time_of_day_minutes INTEGER NOT NULL DEFAULT 0,
    checkin_start_offset_min INTEGER NOT NULL DEFAULT 0,
    checkin_end_offset_min INTEGER NOT NULL DEFAULT 0,
    effective_end_date TIMESTAMP,
    auto_inactivate INTEGER NOT NULL DEFAULT 0,
    active INTEGER NOT NULL DEFAULT 1
);

-- Which schedules serve which locations
CREATE TABLE location_schedules (
    location_id TEXT NOT NULL,
    schedule_id TEXT NOT NULL,
    PRIMARY KEY (location_id, schedule_id),
    FOREIGN KEY (location_id) REFERENCES locations(id),
    FOREIGN KEY (schedule_id) REFERENCES schedules(id)
);

-- Attendance: one admitted person-occurrence; never hard-deleted
CREATE TABLE attendance (
    id TEXT PRIMARY KEY,
    person_id TEXT NOT NULL,
    location_id TEXT NOT NULL,
    schedule_id TEXT NOT NULL DEFAULT '',
    occurrence_date TIMESTAMP NOT NULL,
    start_at TIMESTAMP NOT NULL,
    end_at TIMESTAMP,
    security_code TEXT,
    first_time INTEGER NOT NULL DEFAULT 0,
    device_id TEXT NOT NULL DEFAULT '',
    note TEXT NOT NULL DEFAULT '',
    FOREIGN KEY (person_id) REFERENCES people(id),
    FOREIGN KEY (location_id) REFERENCES locations(id)
);
CREATE INDEX idx_attendance_person ON attendance(person_id);
CREATE INDEX idx_attendance_location ON attendance(location_id);
CREATE INDEX idx_attendance_open ON attendance(person_id, location_id, schedule_id, occurrence_date)
    WHERE end_at IS NULL;
CREATE INDEX idx_attendance_code ON attendance(security_code) WHERE end_at IS NULL;

-- Terminal check-in results keyed by client idempotency key
CREATE TABLE idempotency_keys (
    key TEXT PRIMARY KEY,
    result TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Supervisors and their time-boxed sessions
CREATE TABLE supervisors (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    pin_hash TEXT NOT NULL UNIQUE,
    active INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE supervisor_sessions (
    id TEXT PRIMARY KEY,
    supervisor_id TEXT NOT NULL,
    issued_at TIMESTAMP NOT NULL,
    expires_at TIMESTAMP NOT NULL,
    revoked_at TIMESTAMP,
    FOREIGN KEY (supervisor_id) REFERENCES supervisors(id)
);
CREATE INDEX idx_sessions_supervisor ON supervisor_sessions(supervisor_id);

-- Append-only audit trail for override actions
CREATE TABLE audit_log (
    id TEXT PRIMARY KEY,
    actor_id TEXT NOT NULL,
    session_id TEXT NOT NULL,
    action TEXT NOT NULL,
    target_type TEXT NOT NULL,
    target_id TEXT NOT NULL,
    reason TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL,
    FOREIGN KEY (session_id) REFERENCES supervisor_sessions(id)
);
CREATE INDEX idx_audit_actor ON audit_log(actor_id);
CREATE INDEX idx_audit_target ON audit_log(target_type, target_id);
`

	_, err := db.Exec(migration)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
