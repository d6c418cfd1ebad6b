package profanity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	goaway "github.com/TwiN/go-away"

	"github.com/nkoroteev/bleep/internal/lib/logger/sl"
	"github.com/nkoroteev/bleep/internal/models"
	"github.com/nkoroteev/bleep/internal/service"
	"github.com/nkoroteev/bleep/internal/storage"
)

// FilterFunc is the external word filter: a pure function
// over one token. A changed token signals the filter
// redacted something.
type FilterFunc func(token, lang string) string

// GoAwayFilter adapts the go-away censor to FilterFunc.
func GoAwayFilter(token, _ string) string {
	return goaway.Censor(token)
}

// Profanity classifies transcript tokens against a combined
// vocabulary: static curated list for the language family,
// the session's stored custom words and the words supplied
// with the call. The custom vocabulary is session-scoped,
// words flagged in one session never leak into another.
type Profanity struct {
	log    *slog.Logger
	vocab  VocabularyStorage
	filter FilterFunc
}

type VocabularyStorage interface {
	SaveWords(ctx context.Context, sessionID string, words []string) error
	Words(ctx context.Context, sessionID string) ([]string, error)
}

func New(
	log *slog.Logger,
	vocab VocabularyStorage,
	filter FilterFunc,
) *Profanity {
	if filter == nil {
		filter = GoAwayFilter
	}
	return &Profanity{
		log:    log,
		vocab:  vocab,
		filter: filter,
	}
}

// Detect tokenizes every transcript entry and tags each
// token profane or clean.
//
// Tokenization is plain whitespace splitting, trailing
// punctuation stays attached to its token. A token is
// profane when its lowercase form is in the combined
// vocabulary (source "list", taking priority) or when the
// external filter changes its text (source "filter").
// A flagged segment's range equals its entry's range:
// muting operates at entry granularity.
func (p *Profanity) Detect(
	ctx context.Context,
	sessionID string,
	entries []models.TranscriptEntry,
	lang string,
	customWords []string,
) (models.ProfanityReport, error) {
	const op = "Profanity.Detect"

	log := p.log.With(
		slog.String("op", op),
		slog.String("sessionID", sessionID),
	)

	if len(customWords) > 0 {
		if err := p.vocab.SaveWords(ctx, sessionID, customWords); err != nil {
			if errors.Is(err, storage.ErrSessionNotFound) {
				log.Warn("session not found")
				return models.ProfanityReport{}, fmt.Errorf("%s: %w", op, service.ErrSessionNotFound)
			}
			log.Error("failed to save custom words", sl.Err(err))
			return models.ProfanityReport{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	stored, err := p.vocab.Words(ctx, sessionID)
	if err != nil {
		log.Error("failed to get session vocabulary", sl.Err(err))
		return models.ProfanityReport{}, fmt.Errorf("%s: %w", op, err)
	}

	vocab := listFor(lang)
	for _, w := range stored {
		vocab[strings.ToLower(w)] = struct{}{}
	}
	for _, w := range customWords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			vocab[w] = struct{}{}
		}
	}

	log.Info(
		"detecting profanity",
		slog.Int("entries", len(entries)),
		slog.String("lang", lang),
		slog.Int("vocabulary", len(vocab)),
	)

	report := models.ProfanityReport{
		Segments: make([]models.ProfanitySegment, 0),
		Hits:     make([]models.WordHit, 0),
	}

	for _, entry := range entries {
		words := make([]models.HighlightedWord, 0)
		flagged := false

		for _, token := range strings.Fields(entry.Text) {
			hw := models.HighlightedWord{Word: token}

			lower := strings.ToLower(token)
			if _, ok := vocab[lower]; ok {
				hw.Profane = true
				hw.Source = models.DetectedByList
			} else if p.filter(token, lang) != token {
				hw.Profane = true
				hw.Source = models.DetectedByFilter
			}

			if hw.Profane {
				flagged = true
				report.Hits = append(report.Hits, models.WordHit{
					Word:       lower,
					EntryIndex: entry.Index,
				})
			}

			words = append(words, hw)
		}

		if flagged {
			report.Segments = append(report.Segments, models.ProfanitySegment{
				EntryIndex: entry.Index,
				Start:      entry.Start,
				End:        entry.End,
				Text:       entry.Text,
				Words:      words,
			})
		}
	}

	log.Info("detected profanity", slog.Int("segments", len(report.Segments)))

	return report, nil
}

// AddWords merges custom words into the session vocabulary.
func (p *Profanity) AddWords(ctx context.Context, sessionID string, words []string) error {
	const op = "Profanity.AddWords"

	log := p.log.With(
		slog.String("op", op),
		slog.String("sessionID", sessionID),
	)

	log.Info("adding custom words", slog.Int("count", len(words)))

	if err := p.vocab.SaveWords(ctx, sessionID, words); err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			log.Warn("session not found")
			return fmt.Errorf("%s: %w", op, service.ErrSessionNotFound)
		}
		log.Error("failed to save custom words", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Words returns the session's custom vocabulary.
func (p *Profanity) Words(ctx context.Context, sessionID string) ([]string, error) {
	const op = "Profanity.Words"

	words, err := p.vocab.Words(ctx, sessionID)
	if err != nil {
		p.log.Error("failed to get session vocabulary", slog.String("op", op), sl.Err(err))
		return []string{}, fmt.Errorf("%s: %w", op, err)
	}

	return words, nil
}
