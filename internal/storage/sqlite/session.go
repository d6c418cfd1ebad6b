package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/nkoroteev/bleep/internal/models"
	"github.com/nkoroteev/bleep/internal/storage"
)

// SaveSession registers new session.
func (s *Storage) SaveSession(ctx context.Context, session models.Session) error {
	const op = "storage.sqlite.SaveSession"

	stmt, err := s.db.Prepare("INSERT INTO sessions(id, created_at) VALUES(?, ?)")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, session.ID, session.CreatedAt.UnixMilli())
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return fmt.Errorf("%s: %w", op, storage.ErrSessionExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Session returns session by id.
func (s *Storage) Session(ctx context.Context, id string) (models.Session, error) {
	const op = "storage.sqlite.Session"

	stmt, err := s.db.Prepare("SELECT id, created_at FROM sessions WHERE id = ?")
	if err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, id)

	var (
		session     models.Session
		createdAtMs int64
	)
	err = row.Scan(&session.ID, &createdAtMs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Session{}, fmt.Errorf("%s: %w", op, storage.ErrSessionNotFound)
		}

		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	session.CreatedAt = time.UnixMilli(createdAtMs)

	return session, nil
}

// DeleteSession deletes session with its sources,
// versions and vocabulary (cascades).
func (s *Storage) DeleteSession(ctx context.Context, id string) error {
	const op = "storage.sqlite.DeleteSession"

	stmt, err := s.db.Prepare("DELETE FROM sessions WHERE id = ?")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affectedRows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affectedRows == 0 {
		return storage.ErrSessionNotFound
	}

	return nil
}
