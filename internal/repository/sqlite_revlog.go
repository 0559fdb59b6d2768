package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/mnemo/internal/db"
	"github.com/alexanderramin/mnemo/internal/domain"
)

// SQLiteRevlogRepo implements RevlogRepo using a SQLite database.
type SQLiteRevlogRepo struct {
	db db.DBTX
}

// NewSQLiteRevlogRepo creates a new SQLiteRevlogRepo.
func NewSQLiteRevlogRepo(conn db.DBTX) *SQLiteRevlogRepo {
	return &SQLiteRevlogRepo{db: conn}
}

// Append stores l. The id is the answer time in milliseconds, bumped past
// the newest row when two answers land in the same millisecond; l.ID is
// updated with the id actually used.
func (r *SQLiteRevlogRepo) Append(ctx context.Context, l *domain.ReviewLog) error {
	query := `INSERT INTO revlog (id, cid, ease, ivl, last_ivl, factor, time_ms, type)
		VALUES (MAX(?, (SELECT COALESCE(MAX(id), 0) + 1 FROM revlog)), ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		l.ID,
		l.CardID,
		int(l.Ease),
		l.Ivl,
		l.LastIvl,
		l.Factor,
		l.TimeMs,
		int(l.Type),
	)
	if err != nil {
		return fmt.Errorf("inserting review log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading review log id: %w", err)
	}
	l.ID = id
	return nil
}

func (r *SQLiteRevlogRepo) ListByCard(ctx context.Context, cardID int64) ([]*domain.ReviewLog, error) {
	query := `SELECT id, cid, ease, ivl, last_ivl, factor, time_ms, type
		FROM revlog WHERE cid = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, cardID)
	if err != nil {
		return nil, fmt.Errorf("listing review logs: %w", err)
	}
	defer rows.Close()

	var logs []*domain.ReviewLog
	for rows.Next() {
		var l domain.ReviewLog
		var ease, typ int
		if err := rows.Scan(&l.ID, &l.CardID, &ease, &l.Ivl, &l.LastIvl, &l.Factor, &l.TimeMs, &typ); err != nil {
			return nil, fmt.Errorf("scanning review log row: %w", err)
		}
		l.Ease = domain.Grade(ease)
		l.Type = domain.RevlogType(typ)
		logs = append(logs, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating review logs: %w", err)
	}
	return logs, nil
}

func (r *SQLiteRevlogRepo) StatsSince(ctx context.Context, sinceMs int64) ([]domain.RevlogTypeStat, error) {
	query := `SELECT type, COUNT(*), AVG(time_ms), AVG(CASE WHEN ease > 1 THEN 1.0 ELSE 0.0 END)
		FROM revlog WHERE id >= ? GROUP BY type ORDER BY type`
	rows, err := r.db.QueryContext(ctx, query, sinceMs)
	if err != nil {
		return nil, fmt.Errorf("aggregating review logs: %w", err)
	}
	defer rows.Close()

	var stats []domain.RevlogTypeStat
	for rows.Next() {
		var s domain.RevlogTypeStat
		var typ int
		if err := rows.Scan(&typ, &s.Count, &s.AvgTimeMs, &s.PassRate); err != nil {
			return nil, fmt.Errorf("scanning review log stats: %w", err)
		}
		s.Type = domain.RevlogType(typ)
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating review log stats: %w", err)
	}
	return stats, nil
}

func (r *SQLiteRevlogRepo) CountSince(ctx context.Context, sinceMs int64) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM revlog WHERE id >= ?`, sinceMs).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting review logs: %w", err)
	}
	return n, nil
}
