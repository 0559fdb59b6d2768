package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMigrate_UpgradePath_DecksWithoutPreviewDelay simulates opening a
// collection created before filtered decks had a preview step. Existing rows
// must survive and pick up the column default.
func TestMigrate_UpgradePath_DecksWithoutPreviewDelay(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`PRAGMA foreign_keys = ON`)
	require.NoError(t, err)

	legacyStatements := []string{
		`CREATE TABLE deck_configs (
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
		`INSERT INTO deck_configs (id, name, mod) VALUES (1, 'Default', '2024-01-01T00:00:00Z')`,
		`CREATE TABLE decks (
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
		`INSERT INTO decks (id, name, mod) VALUES (1, 'Default', '2024-01-01T00:00:00Z')`,
		`INSERT INTO decks (id, name, dyn, resched, mod) VALUES (7, 'Cram', 1, 0, '2024-01-01T00:00:00Z')`,
	}
	for _, stmt := range legacyStatements {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	require.NoError(t, Migrate(db))

	var name string
	var dyn, resched bool
	var previewDelay int
	err = db.QueryRow(`SELECT name, dyn, resched, preview_delay FROM decks WHERE id = 7`).
		Scan(&name, &dyn, &resched, &previewDelay)
	require.NoError(t, err)
	assert.Equal(t, "Cram", name)
	assert.True(t, dyn)
	assert.False(t, resched)
	assert.Equal(t, 10, previewDelay)

	// Running again hits the duplicate column and must still succeed.
	require.NoError(t, Migrate(db))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM decks`).Scan(&n))
	assert.Equal(t, 2, n, "seed rows must not duplicate existing decks")
}
