package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/groblegark/knotes/internal/model"
)

// noteColumns is the column list used for SELECT statements on the notes table.
const noteColumns = `id, title, body, created_by, created_at, updated_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryCreateNote(ctx context.Context, db executor, n *model.Note) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO notes (id, title, body, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		n.ID,
		n.Title,
		n.Body,
		n.CreatedBy,
		n.CreatedAt,
		n.UpdatedAt,
	)
	return err
}

func queryGetNote(ctx context.Context, db executor, id string) (*model.Note, error) {
	row := db.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = $1`, id)
	return scanNote(row)
}

func queryListNotes(ctx context.Context, db executor, filter model.NoteFilter) ([]*model.Note, int, error) {
	var conds []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.CreatedBy != "" {
		conds = append(conds, "created_by = "+arg(filter.CreatedBy))
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conds = append(conds, "(title ILIKE "+p+" OR body ILIKE "+p+")")
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count notes: %w", err)
	}

	orderBy := "created_at DESC"
	if filter.Sort == "updated_at" {
		orderBy = "updated_at DESC"
	}

	query := `SELECT ` + noteColumns + ` FROM notes` + where + ` ORDER BY ` + orderBy
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []*model.Note
	for rows.Next() {
		n, err := scanNoteRows(rows)
		if err != nil {
			return nil, 0, err
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return notes, total, nil
}

func queryUpdateNote(ctx context.Context, db executor, n *model.Note) error {
	res, err := db.ExecContext(ctx, `
		UPDATE notes SET title = $2, body = $3, updated_at = $4
		WHERE id = $1`,
		n.ID,
		n.Title,
		n.Body,
		n.UpdatedAt,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryDeleteNote(ctx context.Context, db executor, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
