package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexanderramin/mnemo/internal/domain"
)

const deckConfigColumns = `id, name, new_delays, new_grad_ivl, new_easy_ivl, initial_factor,
		new_per_day, new_bury, lapse_delays, lapse_mult, lapse_min_ivl, leech_fails,
		leech_action, rev_per_day, ease4, ivl_fct, max_ivl, hard_factor, rev_bury`

func encodeDelays(delays []float64) (string, error) {
	if delays == nil {
		delays = []float64{}
	}
	b, err := json.Marshal(delays)
	if err != nil {
		return "", fmt.Errorf("encoding delays: %w", err)
	}
	return string(b), nil
}

func (r *SQLiteDeckRepo) CreateConfig(ctx context.Context, c *domain.DeckConfig) error {
	newDelays, err := encodeDelays(c.New.Delays)
	if err != nil {
		return err
	}
	lapseDelays, err := encodeDelays(c.Lapse.Delays)
	if err != nil {
		return err
	}
	query := `INSERT INTO deck_configs (name, new_delays, new_grad_ivl, new_easy_ivl,
		initial_factor, new_per_day, new_bury, lapse_delays, lapse_mult, lapse_min_ivl,
		leech_fails, leech_action, rev_per_day, ease4, ivl_fct, max_ivl, hard_factor,
		rev_bury, mod)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		c.Name,
		newDelays,
		c.New.Ints[0],
		c.New.Ints[1],
		c.New.InitialFactor,
		c.New.PerDay,
		boolToInt(c.New.Bury),
		lapseDelays,
		c.Lapse.Mult,
		c.Lapse.MinInt,
		c.Lapse.LeechFails,
		int(c.Lapse.LeechAction),
		c.Rev.PerDay,
		c.Rev.Ease4,
		c.Rev.IvlFct,
		c.Rev.MaxIvl,
		c.Rev.HardFactor,
		boolToInt(c.Rev.Bury),
		nowUTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting deck config: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading deck config id: %w", err)
	}
	c.ID = id
	return nil
}

func (r *SQLiteDeckRepo) GetConfig(ctx context.Context, id int64) (*domain.DeckConfig, error) {
	query := `SELECT ` + deckConfigColumns + ` FROM deck_configs WHERE id = ?`
	c, err := scanDeckConfig(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("deck config %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning deck config: %w", err)
	}
	return c, nil
}

func (r *SQLiteDeckRepo) ConfigForDeck(ctx context.Context, d *domain.Deck) (*domain.DeckConfig, error) {
	if d.Dyn || d.ConfID == 0 {
		return r.GetConfig(ctx, domain.DefaultConfigID)
	}
	return r.GetConfig(ctx, d.ConfID)
}

func (r *SQLiteDeckRepo) ListConfigs(ctx context.Context) ([]*domain.DeckConfig, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+deckConfigColumns+` FROM deck_configs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing deck configs: %w", err)
	}
	defer rows.Close()

	var confs []*domain.DeckConfig
	for rows.Next() {
		c, err := scanDeckConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning deck config row: %w", err)
		}
		confs = append(confs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating deck configs: %w", err)
	}
	return confs, nil
}

func (r *SQLiteDeckRepo) SaveConfig(ctx context.Context, c *domain.DeckConfig) error {
	newDelays, err := encodeDelays(c.New.Delays)
	if err != nil {
		return err
	}
	lapseDelays, err := encodeDelays(c.Lapse.Delays)
	if err != nil {
		return err
	}
	query := `UPDATE deck_configs SET name = ?, new_delays = ?, new_grad_ivl = ?, new_easy_ivl = ?,
		initial_factor = ?, new_per_day = ?, new_bury = ?, lapse_delays = ?, lapse_mult = ?,
		lapse_min_ivl = ?, leech_fails = ?, leech_action = ?, rev_per_day = ?, ease4 = ?,
		ivl_fct = ?, max_ivl = ?, hard_factor = ?, rev_bury = ?, mod = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		c.Name,
		newDelays,
		c.New.Ints[0],
		c.New.Ints[1],
		c.New.InitialFactor,
		c.New.PerDay,
		boolToInt(c.New.Bury),
		lapseDelays,
		c.Lapse.Mult,
		c.Lapse.MinInt,
		c.Lapse.LeechFails,
		int(c.Lapse.LeechAction),
		c.Rev.PerDay,
		c.Rev.Ease4,
		c.Rev.IvlFct,
		c.Rev.MaxIvl,
		c.Rev.HardFactor,
		boolToInt(c.Rev.Bury),
		nowUTC(),
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating deck config: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking updated deck config: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("deck config %d: %w", c.ID, ErrNotFound)
	}
	return nil
}

func scanDeckConfig(s rowScanner) (*domain.DeckConfig, error) {
	var c domain.DeckConfig
	var newDelays, lapseDelays string
	var newBury, revBury, leechAction int
	err := s.Scan(
		&c.ID, &c.Name, &newDelays, &c.New.Ints[0], &c.New.Ints[1], &c.New.InitialFactor,
		&c.New.PerDay, &newBury, &lapseDelays, &c.Lapse.Mult, &c.Lapse.MinInt, &c.Lapse.LeechFails,
		&leechAction, &c.Rev.PerDay, &c.Rev.Ease4, &c.Rev.IvlFct, &c.Rev.MaxIvl, &c.Rev.HardFactor,
		&revBury,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(newDelays), &c.New.Delays); err != nil {
		return nil, fmt.Errorf("decoding new delays: %w", err)
	}
	if err := json.Unmarshal([]byte(lapseDelays), &c.Lapse.Delays); err != nil {
		return nil, fmt.Errorf("decoding lapse delays: %w", err)
	}
	c.New.Bury = intToBool(newBury)
	c.Rev.Bury = intToBool(revBury)
	c.Lapse.LeechAction = domain.LeechAction(leechAction)
	return &c, nil
}
