package db

import "database/sql"

// CreateSchema applies the idempotent DDL. Safe to run at every startup.
func CreateSchema(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS users (
    id          TEXT PRIMARY KEY,
    email       TEXT NOT NULL UNIQUE COLLATE NOCASE,
    pass_hash   BLOB NOT NULL,
    role        TEXT NOT NULL,
    panelist_id TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS panelists (
    id                    TEXT PRIMARY KEY,
    user_id               TEXT NOT NULL DEFAULT '',
    age                   INTEGER,
    gender                TEXT NOT NULL DEFAULT '',
    location              TEXT NOT NULL DEFAULT '',
    income                INTEGER,
    education             TEXT NOT NULL DEFAULT '',
    employment            TEXT NOT NULL DEFAULT '',
    interests             TEXT,
    is_active             INTEGER NOT NULL DEFAULT 1,
    points_balance        INTEGER NOT NULL DEFAULT 0,
    total_points_earned   INTEGER NOT NULL DEFAULT 0,
    total_points_redeemed INTEGER NOT NULL DEFAULT 0,
    created_at            TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS surveys (
    id                TEXT PRIMARY KEY,
    title             TEXT NOT NULL,
    description       TEXT NOT NULL DEFAULT '',
    points            INTEGER NOT NULL,
    estimated_minutes INTEGER NOT NULL DEFAULT 0,
    status            TEXT NOT NULL,
    filters           TEXT,
    created_by        TEXT NOT NULL DEFAULT '',
    created_at        TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS survey_qualifications (
    survey_id    TEXT NOT NULL,
    panelist_id  TEXT NOT NULL,
    is_qualified INTEGER NOT NULL,
    reason       TEXT NOT NULL DEFAULT '',
    evaluated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (survey_id, panelist_id)
);

CREATE TABLE IF NOT EXISTS contests (
    id           TEXT PRIMARY KEY,
    title        TEXT NOT NULL,
    description  TEXT NOT NULL DEFAULT '',
    start_date   TIMESTAMP NOT NULL,
    end_date     TIMESTAMP NOT NULL,
    prize_points INTEGER NOT NULL,
    status       TEXT NOT NULL,
    invite_type  TEXT NOT NULL,
    invited_ids  TEXT,
    created_at   TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS contest_participations (
    contest_id    TEXT NOT NULL,
    panelist_id   TEXT NOT NULL,
    rank          INTEGER,
    points_earned INTEGER NOT NULL DEFAULT 0,
    prize_awarded INTEGER NOT NULL DEFAULT 0,
    joined_at     TIMESTAMP NOT NULL,
    PRIMARY KEY (contest_id, panelist_id)
);

CREATE TABLE IF NOT EXISTS offers (
    id          TEXT PRIMARY KEY,
    merchant    TEXT NOT NULL DEFAULT '',
    title       TEXT NOT NULL,
    points_cost INTEGER NOT NULL,
    is_active   INTEGER NOT NULL DEFAULT 0,
    created_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS redemptions (
    id           TEXT PRIMARY KEY,
    panelist_id  TEXT NOT NULL,
    offer_id     TEXT NOT NULL,
    points_spent INTEGER NOT NULL,
    redeemed_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS points_entries (
    id          TEXT PRIMARY KEY,
    panelist_id TEXT NOT NULL,
    points      INTEGER NOT NULL,
    kind        TEXT NOT NULL,
    ref_id      TEXT NOT NULL DEFAULT '',
    earned_at   TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_points_entries_panelist ON points_entries (panelist_id, earned_at);
CREATE INDEX IF NOT EXISTS idx_points_entries_ref ON points_entries (panelist_id, kind, ref_id);

CREATE TABLE IF NOT EXISTS scan_tasks (
    id           TEXT PRIMARY KEY,
    panelist_id  TEXT NOT NULL,
    image_key    TEXT NOT NULL,
    points       INTEGER NOT NULL DEFAULT 0,
    status       TEXT NOT NULL,
    submitted_at TIMESTAMP NOT NULL,
    reviewed_at  TIMESTAMP,
    reviewed_by  TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_scan_tasks_status ON scan_tasks (status, submitted_at);

CREATE TABLE IF NOT EXISTS activity_log (
    at     TIMESTAMP NOT NULL,
    actor  TEXT NOT NULL DEFAULT '',
    action TEXT NOT NULL,
    target TEXT NOT NULL DEFAULT '',
    note   TEXT NOT NULL DEFAULT ''
);
`
	_, err := db.Exec(ddl)
	return err
}
