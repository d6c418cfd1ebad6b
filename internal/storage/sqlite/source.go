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

// SaveSource registers uploaded source for session.
func (s *Storage) SaveSource(ctx context.Context, sessionID string, src models.SourceVideo) error {
	const op = "storage.sqlite.SaveSource"

	stmt, err := s.db.Prepare(`
		INSERT INTO sources(
			id, session_id, original_name, stored_name, size, path, uploaded_at,
			duration, format, video_codec, width, height, frame_rate, bit_rate,
			audio_codec, channels, sample_rate
		) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx,
		src.ID, sessionID, src.OriginalName, src.StoredName, src.Size, src.Path,
		src.UploadedAt.UnixMilli(),
		src.Meta.Duration, src.Meta.Format, src.Meta.VideoCodec,
		src.Meta.Width, src.Meta.Height, src.Meta.FrameRate, src.Meta.BitRate,
		src.Meta.AudioCodec, src.Meta.Channels, src.Meta.SampleRate,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
			return fmt.Errorf("%s: %w", op, storage.ErrSessionNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Source returns registered source by id.
func (s *Storage) Source(ctx context.Context, sessionID, sourceID string) (models.SourceVideo, error) {
	const op = "storage.sqlite.Source"

	stmt, err := s.db.Prepare(`
		SELECT id, original_name, stored_name, size, path, uploaded_at,
			duration, format, video_codec, width, height, frame_rate, bit_rate,
			audio_codec, channels, sample_rate
		FROM sources WHERE session_id = ? AND id = ?
	`)
	if err != nil {
		return models.SourceVideo{}, fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, sessionID, sourceID)

	src, err := scanSource(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.SourceVideo{}, fmt.Errorf("%s: %w", op, storage.ErrSourceNotFound)
		}

		return models.SourceVideo{}, fmt.Errorf("%s: %w", op, err)
	}

	return src, nil
}

// Sources returns all sources registered in session,
// ordered by upload time.
func (s *Storage) Sources(ctx context.Context, sessionID string) ([]models.SourceVideo, error) {
	const op = "storage.sqlite.Sources"

	stmt, err := s.db.Prepare(`
		SELECT id, original_name, stored_name, size, path, uploaded_at,
			duration, format, video_codec, width, height, frame_rate, bit_rate,
			audio_codec, channels, sample_rate
		FROM sources WHERE session_id = ? ORDER BY uploaded_at, id
	`)
	if err != nil {
		return []models.SourceVideo{}, fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, sessionID)
	if err != nil {
		return []models.SourceVideo{}, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	sources := make([]models.SourceVideo, 0)
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return sources, fmt.Errorf("%s: %w", op, err)
		}
		sources = append(sources, src)
	}

	return sources, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSource(row rowScanner) (models.SourceVideo, error) {
	var (
		src          models.SourceVideo
		uploadedAtMs int64
	)

	err := row.Scan(
		&src.ID, &src.OriginalName, &src.StoredName, &src.Size, &src.Path,
		&uploadedAtMs,
		&src.Meta.Duration, &src.Meta.Format, &src.Meta.VideoCodec,
		&src.Meta.Width, &src.Meta.Height, &src.Meta.FrameRate, &src.Meta.BitRate,
		&src.Meta.AudioCodec, &src.Meta.Channels, &src.Meta.SampleRate,
	)
	if err != nil {
		return models.SourceVideo{}, err
	}

	src.UploadedAt = time.UnixMilli(uploadedAtMs)

	return src, nil
}
