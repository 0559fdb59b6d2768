package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/alexanderramin/mnemo/internal/db"
	"github.com/alexanderramin/mnemo/internal/domain"
)

const deckColumns = `id, name, dyn, conf_id,
		new_today_day, new_today_count, rev_today_day, rev_today_count,
		lrn_today_day, lrn_today_count, time_today_day, time_today_count,
		terms, resched, preview_delay, mod`

// SQLiteDeckRepo implements DeckRepo using a SQLite database. It stores
// both decks and their options groups.
type SQLiteDeckRepo struct {
	db db.DBTX
}

// NewSQLiteDeckRepo creates a new SQLiteDeckRepo.
func NewSQLiteDeckRepo(conn db.DBTX) *SQLiteDeckRepo {
	return &SQLiteDeckRepo{db: conn}
}

// termRecord is the stored form of a filtered-deck search term.
type termRecord struct {
	Search string `json:"search"`
	Limit  int    `json:"limit"`
	Order  string `json:"order"`
}

func encodeTerms(terms []domain.DynTerm) (string, error) {
	recs := make([]termRecord, len(terms))
	for i, t := range terms {
		recs[i] = termRecord{Search: t.Search, Limit: t.Limit, Order: t.Order.String()}
	}
	b, err := json.Marshal(recs)
	if err != nil {
		return "", fmt.Errorf("encoding filtered deck terms: %w", err)
	}
	return string(b), nil
}

func decodeTerms(s string) ([]domain.DynTerm, error) {
	var recs []termRecord
	if err := json.Unmarshal([]byte(s), &recs); err != nil {
		return nil, fmt.Errorf("decoding filtered deck terms: %w", err)
	}
	terms := make([]domain.DynTerm, 0, len(recs))
	for _, rec := range recs {
		order, err := domain.ParseDynOrder(rec.Order)
		if err != nil {
			return nil, err
		}
		terms = append(terms, domain.DynTerm{Search: rec.Search, Limit: rec.Limit, Order: order})
	}
	return terms, nil
}

func (r *SQLiteDeckRepo) Create(ctx context.Context, d *domain.Deck) error {
	terms, err := encodeTerms(d.Terms)
	if err != nil {
		return err
	}
	confID := d.ConfID
	if confID == 0 {
		confID = domain.DefaultConfigID
	}
	query := `INSERT INTO decks (name, dyn, conf_id,
		new_today_day, new_today_count, rev_today_day, rev_today_count,
		lrn_today_day, lrn_today_count, time_today_day, time_today_count,
		terms, resched, preview_delay, mod)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		d.Name,
		boolToInt(d.Dyn),
		confID,
		d.NewToday.Day, d.NewToday.Count,
		d.RevToday.Day, d.RevToday.Count,
		d.LrnToday.Day, d.LrnToday.Count,
		d.TimeToday.Day, d.TimeToday.Count,
		terms,
		boolToInt(d.Resched),
		d.PreviewDelay,
		formatTime(d.Mod),
	)
	if err != nil {
		return fmt.Errorf("inserting deck: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading deck id: %w", err)
	}
	d.ID = id
	d.ConfID = confID
	return nil
}

func (r *SQLiteDeckRepo) GetByID(ctx context.Context, id int64) (*domain.Deck, error) {
	query := `SELECT ` + deckColumns + ` FROM decks WHERE id = ?`
	d, err := scanDeck(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("deck %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning deck: %w", err)
	}
	return d, nil
}

func (r *SQLiteDeckRepo) GetByName(ctx context.Context, name string) (*domain.Deck, error) {
	query := `SELECT ` + deckColumns + ` FROM decks WHERE name = ? COLLATE NOCASE`
	d, err := scanDeck(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("deck %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning deck: %w", err)
	}
	return d, nil
}

func (r *SQLiteDeckRepo) AllSorted(ctx context.Context) ([]*domain.Deck, error) {
	decks, err := r.list(ctx, `SELECT `+deckColumns+` FROM decks`)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(decks, func(a, b *domain.Deck) int {
		return domain.CompareDeckNames(a.Name, b.Name)
	})
	return decks, nil
}

func (r *SQLiteDeckRepo) ParentsOf(ctx context.Context, id int64) ([]*domain.Deck, error) {
	d, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	var parents []*domain.Deck
	for _, name := range domain.AncestorDeckNames(d.Name) {
		p, err := r.GetByName(ctx, name)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		parents = append(parents, p)
	}
	return parents, nil
}

func (r *SQLiteDeckRepo) ChildrenOf(ctx context.Context, id int64) ([]*domain.Deck, error) {
	d, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	prefix := d.Name + domain.DeckSeparator
	query := `SELECT ` + deckColumns + ` FROM decks
		WHERE lower(substr(name, 1, ?)) = lower(?) AND length(name) > ?`
	children, err := r.list(ctx, query, len([]rune(prefix)), prefix, len([]rune(prefix)))
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(children, func(a, b *domain.Deck) int {
		return domain.CompareDeckNames(a.Name, b.Name)
	})
	return children, nil
}

func (r *SQLiteDeckRepo) Save(ctx context.Context, d *domain.Deck) error {
	terms, err := encodeTerms(d.Terms)
	if err != nil {
		return err
	}
	query := `UPDATE decks SET name = ?, dyn = ?, conf_id = ?,
		new_today_day = ?, new_today_count = ?, rev_today_day = ?, rev_today_count = ?,
		lrn_today_day = ?, lrn_today_count = ?, time_today_day = ?, time_today_count = ?,
		terms = ?, resched = ?, preview_delay = ?, mod = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		d.Name,
		boolToInt(d.Dyn),
		d.ConfID,
		d.NewToday.Day, d.NewToday.Count,
		d.RevToday.Day, d.RevToday.Count,
		d.LrnToday.Day, d.LrnToday.Count,
		d.TimeToday.Day, d.TimeToday.Count,
		terms,
		boolToInt(d.Resched),
		d.PreviewDelay,
		formatTime(d.Mod),
		d.ID,
	)
	if err != nil {
		return fmt.Errorf("updating deck: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking updated deck: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("deck %d: %w", d.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteDeckRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting deck: %w", err)
	}
	return nil
}

func (r *SQLiteDeckRepo) list(ctx context.Context, query string, args ...any) ([]*domain.Deck, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing decks: %w", err)
	}
	defer rows.Close()

	var decks []*domain.Deck
	for rows.Next() {
		d, err := scanDeck(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning deck row: %w", err)
		}
		decks = append(decks, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating decks: %w", err)
	}
	return decks, nil
}

func scanDeck(s rowScanner) (*domain.Deck, error) {
	var d domain.Deck
	var dyn, resched int
	var termsStr, modStr string
	err := s.Scan(
		&d.ID, &d.Name, &dyn, &d.ConfID,
		&d.NewToday.Day, &d.NewToday.Count,
		&d.RevToday.Day, &d.RevToday.Count,
		&d.LrnToday.Day, &d.LrnToday.Count,
		&d.TimeToday.Day, &d.TimeToday.Count,
		&termsStr, &resched, &d.PreviewDelay, &modStr,
	)
	if err != nil {
		return nil, err
	}
	d.Dyn = intToBool(dyn)
	d.Resched = intToBool(resched)
	if d.Terms, err = decodeTerms(termsStr); err != nil {
		return nil, err
	}
	if d.Mod, err = parseTime(modStr, "deck mod"); err != nil {
		return nil, err
	}
	return &d, nil
}
