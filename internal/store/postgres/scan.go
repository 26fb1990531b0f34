package postgres

import (
	"database/sql"

	"github.com/groblegark/knotes/internal/model"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row *sql.Row) (*model.Note, error) {
	return scanNoteFrom(row)
}

func scanNoteRows(rows *sql.Rows) (*model.Note, error) {
	return scanNoteFrom(rows)
}

func scanNoteFrom(s rowScanner) (*model.Note, error) {
	var n model.Note
	if err := s.Scan(
		&n.ID,
		&n.Title,
		&n.Body,
		&n.CreatedBy,
		&n.CreatedAt,
		&n.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &n, nil
}
