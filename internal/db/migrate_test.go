package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	err := Migrate(db)
	require.NoError(t, err)

	err = Migrate(db)
	require.NoError(t, err)
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	expected := []string{"collection", "deck_configs", "decks", "notes", "cards", "revlog"}
	for _, table := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	expected := []string{"idx_cards_sched", "idx_cards_nid", "idx_cards_odid", "idx_revlog_cid"}
	for _, idx := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrate_ForeignKeysEnabled(t *testing.T) {
	db := openTestDB(t)

	var fk int
	err := db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk)
	require.NoError(t, err)
	assert.Equal(t, 1, fk, "foreign keys should be enabled")
}

func TestMigrate_WALModeRequested(t *testing.T) {
	// In-memory SQLite reports "memory"; WAL only applies to file DBs.
	db := openTestDB(t)

	var mode string
	err := db.QueryRow(`PRAGMA journal_mode`).Scan(&mode)
	require.NoError(t, err)
	assert.Equal(t, "memory", mode)
}

func TestOpenDB_FileDatabaseUsesWAL(t *testing.T) {
	path := t.TempDir() + "/nested/mnemo.db"
	db, err := OpenDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var mode string
	require.NoError(t, db.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestMigrate_SeedsDefaults(t *testing.T) {
	db := openTestDB(t)

	var deckName string
	var confID int64
	err := db.QueryRow(`SELECT name, conf_id FROM decks WHERE id = 1`).Scan(&deckName, &confID)
	require.NoError(t, err)
	assert.Equal(t, "Default", deckName)
	assert.Equal(t, int64(1), confID)

	var delays string
	var perDay int
	err = db.QueryRow(`SELECT new_delays, new_per_day FROM deck_configs WHERE id = 1`).Scan(&delays, &perDay)
	require.NoError(t, err)
	assert.Equal(t, "[1,10]", delays)
	assert.Equal(t, 20, perDay)

	var rollover int
	var spread string
	err = db.QueryRow(`SELECT rollover_hour, new_spread FROM collection WHERE id = 1`).Scan(&rollover, &spread)
	require.NoError(t, err)
	assert.Equal(t, 4, rollover)
	assert.Equal(t, "distribute", spread)
}

func TestMigrate_CollectionCreatedAtStable(t *testing.T) {
	db := openTestDB(t)

	var first string
	require.NoError(t, db.QueryRow(`SELECT created_at FROM collection`).Scan(&first))
	_, err := db.Exec(`UPDATE collection SET created_at = '2020-01-01T00:00:00Z'`)
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	var after string
	require.NoError(t, db.QueryRow(`SELECT created_at FROM collection`).Scan(&after))
	assert.Equal(t, "2020-01-01T00:00:00Z", after)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM collection`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestMigrate_DeckNamesUniqueIgnoringCase(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO decks (name, mod) VALUES ('Lang', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO decks (name, mod) VALUES ('lang', '2025-01-01T00:00:00Z')`)
	assert.Error(t, err, "deck names should collide case-insensitively")
}

func TestMigrate_CardsCheckConstraints(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO notes (id, guid, mod) VALUES (1, 'g1', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO cards (nid, did, mod, queue) VALUES (1, 1, '2025-01-01T00:00:00Z', 7)`)
	assert.Error(t, err, "out-of-range queue should be rejected by CHECK constraint")

	_, err = db.Exec(`INSERT INTO cards (nid, did, mod, queue) VALUES (1, 1, '2025-01-01T00:00:00Z', -3)`)
	assert.NoError(t, err)

	_, err = db.Exec(`INSERT INTO cards (nid, did, mod) VALUES (1, 99, '2025-01-01T00:00:00Z')`)
	assert.Error(t, err, "unknown deck should violate foreign key")
}

func TestMigrate_DeletingNoteCascadesToCardsAndRevlog(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO notes (id, guid, mod) VALUES (1, 'g1', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO cards (id, nid, did, mod) VALUES (10, 1, 1, '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO revlog (id, cid, ease, ivl, last_ivl, factor, time_ms, type)
		VALUES (1000, 10, 3, 1, 0, 2500, 4000, 0)`)
	require.NoError(t, err)

	_, err = db.Exec(`DELETE FROM notes WHERE id = 1`)
	require.NoError(t, err)

	var cards, logs int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM cards`).Scan(&cards))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM revlog`).Scan(&logs))
	assert.Zero(t, cards)
	assert.Zero(t, logs)
}
