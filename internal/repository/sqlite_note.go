package repository

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexanderramin/mnemo/internal/db"
	"github.com/alexanderramin/mnemo/internal/domain"
)

// SQLiteNoteRepo implements NoteRepo using a SQLite database.
type SQLiteNoteRepo struct {
	db db.DBTX
}

// NewSQLiteNoteRepo creates a new SQLiteNoteRepo.
func NewSQLiteNoteRepo(conn db.DBTX) *SQLiteNoteRepo {
	return &SQLiteNoteRepo{db: conn}
}

// encodeFields keeps markup characters literal so text search matches
// what the user typed.
func encodeFields(fields []string) (string, error) {
	if fields == nil {
		fields = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(fields); err != nil {
		return "", fmt.Errorf("encoding note fields: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func (r *SQLiteNoteRepo) Create(ctx context.Context, n *domain.Note) error {
	fields, err := encodeFields(n.Fields)
	if err != nil {
		return err
	}
	query := `INSERT INTO notes (guid, fields, tags, mod) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, n.GUID, fields, n.TagString(), formatTime(n.Mod))
	if err != nil {
		return fmt.Errorf("inserting note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading note id: %w", err)
	}
	n.ID = id
	return nil
}

func (r *SQLiteNoteRepo) GetByID(ctx context.Context, id int64) (*domain.Note, error) {
	query := `SELECT id, guid, fields, tags, mod FROM notes WHERE id = ?`
	var n domain.Note
	var fields, tags, modStr string
	err := r.db.QueryRowContext(ctx, query, id).Scan(&n.ID, &n.GUID, &fields, &tags, &modStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("note %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning note: %w", err)
	}
	if err := json.Unmarshal([]byte(fields), &n.Fields); err != nil {
		return nil, fmt.Errorf("decoding note fields: %w", err)
	}
	n.Tags = domain.ParseTags(tags)
	if n.Mod, err = parseTime(modStr, "note mod"); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *SQLiteNoteRepo) Update(ctx context.Context, n *domain.Note) error {
	fields, err := encodeFields(n.Fields)
	if err != nil {
		return err
	}
	query := `UPDATE notes SET fields = ?, tags = ?, mod = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, fields, n.TagString(), formatTime(n.Mod), n.ID)
	if err != nil {
		return fmt.Errorf("updating note: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking updated note: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("note %d: %w", n.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteNoteRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting note: %w", err)
	}
	return nil
}
