package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/mnemo/internal/db"
	"github.com/alexanderramin/mnemo/internal/domain"
)

// cardColumns is the canonical SELECT column list for cards.
const cardColumns = `id, nid, did, ord, mod, type, queue, due, ivl, factor,
		reps, lapses, left_steps, odue, odid`

// SQLiteCardRepo implements CardRepo using a SQLite database.
type SQLiteCardRepo struct {
	db db.DBTX
}

// NewSQLiteCardRepo creates a new SQLiteCardRepo.
func NewSQLiteCardRepo(conn db.DBTX) *SQLiteCardRepo {
	return &SQLiteCardRepo{db: conn}
}

func (r *SQLiteCardRepo) Create(ctx context.Context, c *domain.Card) error {
	query := `INSERT INTO cards (nid, did, ord, mod, type, queue, due, ivl, factor,
		reps, lapses, left_steps, odue, odid)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		c.NoteID,
		c.DeckID,
		c.Ord,
		formatTime(c.Mod),
		int(c.Type),
		int(c.Queue),
		c.Due,
		c.Ivl,
		c.Factor,
		c.Reps,
		c.Lapses,
		c.Left,
		c.ODue,
		c.ODid,
	)
	if err != nil {
		return fmt.Errorf("inserting card: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading card id: %w", err)
	}
	c.ID = id
	return nil
}

func (r *SQLiteCardRepo) GetByID(ctx context.Context, id int64) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = ?`
	c, err := scanCard(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("card %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning card: %w", err)
	}
	return c, nil
}

func (r *SQLiteCardRepo) Update(ctx context.Context, c *domain.Card) error {
	query := `UPDATE cards SET nid = ?, did = ?, ord = ?, mod = ?, type = ?, queue = ?,
		due = ?, ivl = ?, factor = ?, reps = ?, lapses = ?, left_steps = ?, odue = ?, odid = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		c.NoteID,
		c.DeckID,
		c.Ord,
		formatTime(c.Mod),
		int(c.Type),
		int(c.Queue),
		c.Due,
		c.Ivl,
		c.Factor,
		c.Reps,
		c.Lapses,
		c.Left,
		c.ODue,
		c.ODid,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating card: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking updated card: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("card %d: %w", c.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteCardRepo) ListByNote(ctx context.Context, noteID int64) ([]*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE nid = ? ORDER BY ord`
	rows, err := r.db.QueryContext(ctx, query, noteID)
	if err != nil {
		return nil, fmt.Errorf("listing cards by note: %w", err)
	}
	defer rows.Close()

	var cards []*domain.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning card row: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cards: %w", err)
	}
	return cards, nil
}

func (r *SQLiteCardRepo) QueryIDs(ctx context.Context, q CardQuery) ([]int64, error) {
	query, args, err := q.build("id")
	if err != nil {
		return nil, fmt.Errorf("building card query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying card ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning card id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating card ids: %w", err)
	}
	return ids, nil
}

func (r *SQLiteCardRepo) QueryDue(ctx context.Context, q CardQuery) ([]CardDue, error) {
	query, args, err := q.build("id, due, left_steps")
	if err != nil {
		return nil, fmt.Errorf("building card query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying due cards: %w", err)
	}
	defer rows.Close()

	var out []CardDue
	for rows.Next() {
		var d CardDue
		if err := rows.Scan(&d.ID, &d.Due, &d.Left); err != nil {
			return nil, fmt.Errorf("scanning due card: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating due cards: %w", err)
	}
	return out, nil
}

func (r *SQLiteCardRepo) Count(ctx context.Context, q CardQuery) (int, error) {
	// Counting honours the limit, so a capped count never scans past it.
	q.Order = OrderNone
	inner, args, err := q.build("1")
	if err != nil {
		return 0, fmt.Errorf("building card query: %w", err)
	}
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM ("+inner+")", args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting cards: %w", err)
	}
	return n, nil
}

func (r *SQLiteCardRepo) CountByDeck(ctx context.Context, q CardQuery) (map[int64]int, error) {
	q.Order = OrderNone
	q.Limit = 0
	where, args, err := q.where()
	if err != nil {
		return nil, fmt.Errorf("building card query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, "SELECT did, COUNT(*) FROM cards"+where+" GROUP BY did", args...)
	if err != nil {
		return nil, fmt.Errorf("counting cards by deck: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var did int64
		var n int
		if err := rows.Scan(&did, &n); err != nil {
			return nil, fmt.Errorf("scanning deck count: %w", err)
		}
		counts[did] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating deck counts: %w", err)
	}
	return counts, nil
}

func (r *SQLiteCardRepo) SumStepsToday(ctx context.Context, q CardQuery) (int, error) {
	q.Order = OrderNone
	inner, args, err := q.build("left_steps")
	if err != nil {
		return 0, fmt.Errorf("building card query: %w", err)
	}
	var n int
	query := "SELECT COALESCE(SUM(left_steps / 1000), 0) FROM (" + inner + ")"
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("summing learning steps: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(s rowScanner) (*domain.Card, error) {
	var c domain.Card
	var modStr string
	var typ, queue int
	err := s.Scan(
		&c.ID, &c.NoteID, &c.DeckID, &c.Ord, &modStr,
		&typ, &queue, &c.Due, &c.Ivl, &c.Factor,
		&c.Reps, &c.Lapses, &c.Left, &c.ODue, &c.ODid,
	)
	if err != nil {
		return nil, err
	}
	c.Type = domain.CardType(typ)
	c.Queue = domain.QueueType(queue)
	if c.Mod, err = parseTime(modStr, "card mod"); err != nil {
		return nil, err
	}
	return &c, nil
}
