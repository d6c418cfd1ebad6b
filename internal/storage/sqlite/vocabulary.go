package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/nkoroteev/bleep/internal/storage"
)

// SaveWords merges custom profanity words into the session
// vocabulary. Words are stored lowercase, duplicates ignored.
func (s *Storage) SaveWords(ctx context.Context, sessionID string, words []string) error {
	const op = "storage.sqlite.SaveWords"

	stmt, err := s.db.Prepare("INSERT OR IGNORE INTO session_words(session_id, word) VALUES(?, ?)")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, sessionID, w); err != nil {
			var sqliteErr sqlite3.Error
			if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
				return fmt.Errorf("%s: %w", op, storage.ErrSessionNotFound)
			}

			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

// Words returns the session's custom vocabulary.
func (s *Storage) Words(ctx context.Context, sessionID string) ([]string, error) {
	const op = "storage.sqlite.Words"

	stmt, err := s.db.Prepare("SELECT word FROM session_words WHERE session_id = ? ORDER BY word")
	if err != nil {
		return []string{}, fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, sessionID)
	if err != nil {
		return []string{}, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	words := make([]string, 0)
	var word string
	for rows.Next() {
		if err := rows.Scan(&word); err != nil {
			return words, fmt.Errorf("%s: %w", op, err)
		}
		words = append(words, word)
	}

	return words, nil
}
