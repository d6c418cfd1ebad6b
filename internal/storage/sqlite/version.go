package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nkoroteev/bleep/internal/models"
	"github.com/nkoroteev/bleep/internal/storage"
)

// AppendVersion atomically allocates the next version number
// for session and appends the record. Two concurrent appends
// against the same session get distinct numbers.
func (s *Storage) AppendVersion(ctx context.Context, sessionID string, v models.EditVersion) (int64, error) {
	const op = "storage.sqlite.AppendVersion"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sessions WHERE id = ?", sessionID,
	).Scan(&exists); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if exists == 0 {
		return 0, fmt.Errorf("%s: %w", op, storage.ErrSessionNotFound)
	}

	var number int64
	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(number), 0) + 1 FROM versions WHERE session_id = ?", sessionID,
	).Scan(&number); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	params, err := json.Marshal(v.Params)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO versions(session_id, number, kind, output_name, source_version, created_at, params)
		VALUES(?, ?, ?, ?, ?, ?, ?)
	`, sessionID, number, string(v.Kind), v.OutputName, v.SourceVersion, v.CreatedAt.UnixMilli(), string(params))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return number, nil
}

// Version returns version record by number.
func (s *Storage) Version(ctx context.Context, sessionID string, number int64) (models.EditVersion, error) {
	const op = "storage.sqlite.Version"

	stmt, err := s.db.Prepare(`
		SELECT number, kind, output_name, source_version, created_at, params
		FROM versions WHERE session_id = ? AND number = ?
	`)
	if err != nil {
		return models.EditVersion{}, fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, sessionID, number)

	v, err := scanVersion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.EditVersion{}, fmt.Errorf("%s: %w", op, storage.ErrVersionNotFound)
		}

		return models.EditVersion{}, fmt.Errorf("%s: %w", op, err)
	}

	return v, nil
}

// Versions returns the session's full history ordered by number.
func (s *Storage) Versions(ctx context.Context, sessionID string) ([]models.EditVersion, error) {
	const op = "storage.sqlite.Versions"

	stmt, err := s.db.Prepare(`
		SELECT number, kind, output_name, source_version, created_at, params
		FROM versions WHERE session_id = ? ORDER BY number
	`)
	if err != nil {
		return []models.EditVersion{}, fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, sessionID)
	if err != nil {
		return []models.EditVersion{}, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	versions := make([]models.EditVersion, 0)
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return versions, fmt.Errorf("%s: %w", op, err)
		}
		versions = append(versions, v)
	}

	return versions, nil
}

func scanVersion(row rowScanner) (models.EditVersion, error) {
	var (
		v           models.EditVersion
		kind        string
		createdAtMs int64
		params      string
	)

	if err := row.Scan(&v.Number, &kind, &v.OutputName, &v.SourceVersion, &createdAtMs, &params); err != nil {
		return models.EditVersion{}, err
	}

	v.Kind = models.OperationKind(kind)
	v.CreatedAt = time.UnixMilli(createdAtMs)
	if err := json.Unmarshal([]byte(params), &v.Params); err != nil {
		return models.EditVersion{}, err
	}

	return v, nil
}
