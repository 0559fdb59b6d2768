package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := seedCollection(db); err != nil {
		return fmt.Errorf("seeding collection settings: %w", err)
	}
	return nil
}

// seedCollection creates the single collection row on first open. The
// creation time anchors day numbers, so it is never overwritten.
func seedCollection(db *sql.DB) error {
	ctx := context.Background()
	query := `INSERT OR IGNORE INTO collection
		(id, created_at, rollover_hour, collapse_time, day_learn_first, new_spread, current_deck_id, last_unburied, next_pos)
		VALUES (1, ?, 4, 1200, 0, 'distribute', 1, 0, 1)`
	if _, err := db.ExecContext(ctx, query, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("inserting collection row: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS collection (
		id              INTEGER PRIMARY KEY CHECK(id = 1),
		created_at      TEXT NOT NULL,
		rollover_hour   INTEGER NOT NULL DEFAULT 4 CHECK(rollover_hour BETWEEN 0 AND 23),
		collapse_time   INTEGER NOT NULL DEFAULT 1200,
		day_learn_first INTEGER NOT NULL DEFAULT 0,
		new_spread      TEXT NOT NULL DEFAULT 'distribute'
		                CHECK(new_spread IN ('distribute','last','first')),
		current_deck_id INTEGER NOT NULL DEFAULT 1,
		last_unburied   INTEGER NOT NULL DEFAULT 0,
		next_pos        INTEGER NOT NULL DEFAULT 1
	)`,

	`CREATE TABLE IF NOT EXISTS deck_configs (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		name           TEXT NOT NULL,
		new_delays     TEXT NOT NULL DEFAULT '[1,10]',
		new_grad_ivl   INTEGER NOT NULL DEFAULT 1,
		new_easy_ivl   INTEGER NOT NULL DEFAULT 4,
		initial_factor INTEGER NOT NULL DEFAULT 2500,
		new_per_day    INTEGER NOT NULL DEFAULT 20,
		new_bury       INTEGER NOT NULL DEFAULT 1,
		lapse_delays   TEXT NOT NULL DEFAULT '[10]',
		lapse_mult     REAL NOT NULL DEFAULT 0,
		lapse_min_ivl  INTEGER NOT NULL DEFAULT 1,
		leech_fails    INTEGER NOT NULL DEFAULT 8,
		leech_action   INTEGER NOT NULL DEFAULT 1 CHECK(leech_action IN (0, 1)),
		rev_per_day    INTEGER NOT NULL DEFAULT 200,
		ease4          REAL NOT NULL DEFAULT 1.3,
		ivl_fct        REAL NOT NULL DEFAULT 1,
		max_ivl        INTEGER NOT NULL DEFAULT 36500,
		hard_factor    REAL NOT NULL DEFAULT 1.2,
		rev_bury       INTEGER NOT NULL DEFAULT 1,
		mod            TEXT NOT NULL
	)`,

	`INSERT OR IGNORE INTO deck_configs (id, name, mod) VALUES (1, 'Default', '1970-01-01T00:00:00Z')`,

	`CREATE TABLE IF NOT EXISTS decks (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		name             TEXT NOT NULL UNIQUE COLLATE NOCASE,
		dyn              INTEGER NOT NULL DEFAULT 0,
		conf_id          INTEGER NOT NULL DEFAULT 1 REFERENCES deck_configs(id),
		new_today_day    INTEGER NOT NULL DEFAULT 0,
		new_today_count  INTEGER NOT NULL DEFAULT 0,
		rev_today_day    INTEGER NOT NULL DEFAULT 0,
		rev_today_count  INTEGER NOT NULL DEFAULT 0,
		lrn_today_day    INTEGER NOT NULL DEFAULT 0,
		lrn_today_count  INTEGER NOT NULL DEFAULT 0,
		time_today_day   INTEGER NOT NULL DEFAULT 0,
		time_today_count INTEGER NOT NULL DEFAULT 0,
		terms            TEXT NOT NULL DEFAULT '[]',
		resched          INTEGER NOT NULL DEFAULT 1,
		mod              TEXT NOT NULL
	)`,

	// Added after the first release: filtered-deck preview step.
	`ALTER TABLE decks ADD COLUMN preview_delay INTEGER NOT NULL DEFAULT 10`,

	`INSERT OR IGNORE INTO decks (id, name, conf_id, mod) VALUES (1, 'Default', 1, '1970-01-01T00:00:00Z')`,

	`CREATE TABLE IF NOT EXISTS notes (
		id     INTEGER PRIMARY KEY AUTOINCREMENT,
		guid   TEXT NOT NULL UNIQUE,
		fields TEXT NOT NULL DEFAULT '[]',
		tags   TEXT NOT NULL DEFAULT '',
		mod    TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS cards (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		nid        INTEGER NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
		did        INTEGER NOT NULL REFERENCES decks(id),
		ord        INTEGER NOT NULL DEFAULT 0,
		mod        TEXT NOT NULL,
		type       INTEGER NOT NULL DEFAULT 0 CHECK(type BETWEEN 0 AND 3),
		queue      INTEGER NOT NULL DEFAULT 0 CHECK(queue BETWEEN -3 AND 4),
		due        INTEGER NOT NULL DEFAULT 0,
		ivl        INTEGER NOT NULL DEFAULT 0,
		factor     INTEGER NOT NULL DEFAULT 0,
		reps       INTEGER NOT NULL DEFAULT 0,
		lapses     INTEGER NOT NULL DEFAULT 0,
		left_steps INTEGER NOT NULL DEFAULT 0,
		odue       INTEGER NOT NULL DEFAULT 0,
		odid       INTEGER NOT NULL DEFAULT 0,
		UNIQUE(nid, ord)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_cards_sched ON cards(did, queue, due)`,
	`CREATE INDEX IF NOT EXISTS idx_cards_nid ON cards(nid)`,
	`CREATE INDEX IF NOT EXISTS idx_cards_odid ON cards(odid) WHERE odid != 0`,

	`CREATE TABLE IF NOT EXISTS revlog (
		id       INTEGER PRIMARY KEY,
		cid      INTEGER NOT NULL REFERENCES cards(id) ON DELETE CASCADE,
		ease     INTEGER NOT NULL CHECK(ease BETWEEN 1 AND 4),
		ivl      INTEGER NOT NULL,
		last_ivl INTEGER NOT NULL,
		factor   INTEGER NOT NULL,
		time_ms  INTEGER NOT NULL,
		type     INTEGER NOT NULL CHECK(type BETWEEN 0 AND 3)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_revlog_cid ON revlog(cid)`,
}
