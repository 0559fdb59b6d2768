package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/mnemo/internal/db"
	"github.com/alexanderramin/mnemo/internal/domain"
)

// SQLiteCollectionRepo implements CollectionRepo using a SQLite database.
type SQLiteCollectionRepo struct {
	db db.DBTX
}

// NewSQLiteCollectionRepo creates a new SQLiteCollectionRepo.
func NewSQLiteCollectionRepo(conn db.DBTX) *SQLiteCollectionRepo {
	return &SQLiteCollectionRepo{db: conn}
}

func (r *SQLiteCollectionRepo) Get(ctx context.Context) (*domain.CollectionConf, error) {
	query := `SELECT created_at, rollover_hour, collapse_time, day_learn_first, new_spread,
		current_deck_id, last_unburied, next_pos
		FROM collection WHERE id = 1`
	row := r.db.QueryRowContext(ctx, query)

	var c domain.CollectionConf
	var createdAt, spread string
	var dayLearnFirst int
	err := row.Scan(
		&createdAt,
		&c.RolloverHour,
		&c.CollapseTime,
		&dayLearnFirst,
		&spread,
		&c.CurrentDeckID,
		&c.LastUnburied,
		&c.NextPos,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("collection: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning collection: %w", err)
	}
	c.DayLearnFirst = intToBool(dayLearnFirst)
	c.NewSpread = domain.NewSpread(spread)
	if c.CreatedAt, err = parseTime(createdAt, "collection created_at"); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *SQLiteCollectionRepo) Upsert(ctx context.Context, c *domain.CollectionConf) error {
	query := `INSERT OR REPLACE INTO collection (id, created_at, rollover_hour, collapse_time,
		day_learn_first, new_spread, current_deck_id, last_unburied, next_pos)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		formatTime(c.CreatedAt),
		c.RolloverHour,
		c.CollapseTime,
		boolToInt(c.DayLearnFirst),
		string(c.NewSpread),
		c.CurrentDeckID,
		c.LastUnburied,
		c.NextPos,
	)
	if err != nil {
		return fmt.Errorf("upserting collection: %w", err)
	}
	return nil
}
