package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nkoroteev/bleep/internal/lib/logger/sl"
	"github.com/nkoroteev/bleep/internal/models"
	"github.com/nkoroteev/bleep/internal/service"
)

// Editor runs edit operations against a session's current
// material. Every operation validates its configuration
// first, renders into a fresh output file and appends a
// version record only after the render succeeded. A failed
// render leaves the history untouched.
type Editor struct {
	log      *slog.Logger
	sessions Sessions
	executor Executor
}

type Sessions interface {
	ResolveInput(ctx context.Context, sessionID, sourceVersion string) (string, error)
	Source(ctx context.Context, sessionID, sourceID string) (models.SourceVideo, error)
	AppendVersion(ctx context.Context, sessionID string, v models.EditVersion) (int64, error)
	OutputPath(sessionID string, kind models.OperationKind) (dir, name string, err error)
}

type Executor interface {
	Mute(ctx context.Context, in, out string, ranges []models.TimeRange) error
	Trim(ctx context.Context, in, out string, r models.TimeRange) error
	TrimConcat(ctx context.Context, in, out, workDir string, ranges []models.TimeRange) error
	Join(ctx context.Context, inputs []string, out, workDir string) error
}

func New(
	log *slog.Logger,
	sessions Sessions,
	executor Executor,
) *Editor {
	return &Editor{
		log:      log,
		sessions: sessions,
		executor: executor,
	}
}

// ApplyMute silences the given ranges of the referenced
// input. When words are selected, ranges of the profanity
// segments containing those words are added to the explicit
// ones. Zero resulting ranges are valid and produce a plain
// copy of the input as a new version.
func (e *Editor) ApplyMute(
	ctx context.Context,
	sessionID string,
	sourceVersion string,
	ranges []models.TimeRange,
	words []string,
	segments []models.ProfanitySegment,
) (models.EditVersion, error) {
	const op = "Editor.ApplyMute"

	log := e.log.With(
		slog.String("op", op),
		slog.String("sessionID", sessionID),
	)

	if len(words) > 0 {
		ranges = append(ranges, RangesForWords(segments, words)...)
	}
	if err := validateRanges(ranges); err != nil {
		log.Warn("invalid mute ranges", sl.Err(err))
		return models.EditVersion{}, fmt.Errorf("%s: %w", op, err)
	}

	in, err := e.sessions.ResolveInput(ctx, sessionID, sourceVersion)
	if err != nil {
		return models.EditVersion{}, fmt.Errorf("%s: %w", op, err)
	}

	dir, name, err := e.sessions.OutputPath(sessionID, models.OpMute)
	if err != nil {
		log.Error("failed to prepare output", sl.Err(err))
		return models.EditVersion{}, fmt.Errorf("%s: %w", op, err)
	}
	out := filepath.Join(dir, name)

	log.Info(
		"muting",
		slog.String("sourceVersion", sourceVersion),
		slog.Int("ranges", len(ranges)),
		slog.Int("words", len(words)),
	)

	if err := e.executor.Mute(ctx, in, out, ranges); err != nil {
		log.Error("mute failed", sl.Err(err))
		return models.EditVersion{}, fmt.Errorf("%s: %w", op, errors.Join(service.ErrExecutorFailed, err))
	}

	v := models.EditVersion{
		Kind:          models.OpMute,
		OutputName:    name,
		SourceVersion: sourceVersion,
		CreatedAt:     time.Now(),
		Params: models.OperationParams{
			Ranges: ranges,
			Words:  words,
		},
	}

	return e.record(ctx, log, sessionID, out, v)
}

// ApplyTrim cuts the referenced input down to the given
// ranges. One range without join keeps a single clip, two
// or more with join are rendered independently and
// concatenated in the order given. Other combinations are
// invalid configurations.
func (e *Editor) ApplyTrim(
	ctx context.Context,
	sessionID string,
	sourceVersion string,
	ranges []models.TimeRange,
	join bool,
) (models.EditVersion, error) {
	const op = "Editor.ApplyTrim"

	log := e.log.With(
		slog.String("op", op),
		slog.String("sessionID", sessionID),
	)

	if err := validateTrim(ranges, join); err != nil {
		log.Warn("invalid trim configuration", sl.Err(err))
		return models.EditVersion{}, fmt.Errorf("%s: %w", op, err)
	}

	in, err := e.sessions.ResolveInput(ctx, sessionID, sourceVersion)
	if err != nil {
		return models.EditVersion{}, fmt.Errorf("%s: %w", op, err)
	}

	kind := models.OpTrim
	if join {
		kind = models.OpTrimJoin
	}

	dir, name, err := e.sessions.OutputPath(sessionID, kind)
	if err != nil {
		log.Error("failed to prepare output", sl.Err(err))
		return models.EditVersion{}, fmt.Errorf("%s: %w", op, err)
	}
	out := filepath.Join(dir, name)

	log.Info(
		"trimming",
		slog.String("sourceVersion", sourceVersion),
		slog.Int("ranges", len(ranges)),
		slog.Bool("join", join),
	)

	if join {
		err = e.executor.TrimConcat(ctx, in, out, dir, ranges)
	} else {
		err = e.executor.Trim(ctx, in, out, ranges[0])
	}
	if err != nil {
		log.Error("trim failed", sl.Err(err))
		return models.EditVersion{}, fmt.Errorf("%s: %w", op, errors.Join(service.ErrExecutorFailed, err))
	}

	v := models.EditVersion{
		Kind:          kind,
		OutputName:    name,
		SourceVersion: sourceVersion,
		CreatedAt:     time.Now(),
		Params: models.OperationParams{
			Ranges: ranges,
			Join:   join,
		},
	}

	return e.record(ctx, log, sessionID, out, v)
}

// ApplyMultiJoin cuts the given ranges out of several
// registered sources and concatenates all parts in pair
// order. Every part is normalized to a common encoding
// profile before the concat.
func (e *Editor) ApplyMultiJoin(
	ctx context.Context,
	sessionID string,
	sources []models.JoinSource,
) (models.EditVersion, error) {
	const op = "Editor.ApplyMultiJoin"

	log := e.log.With(
		slog.String("op", op),
		slog.String("sessionID", sessionID),
	)

	if err := validateJoinSources(sources); err != nil {
		log.Warn("invalid join configuration", sl.Err(err))
		return models.EditVersion{}, fmt.Errorf("%s: %w", op, err)
	}

	dir, name, err := e.sessions.OutputPath(sessionID, models.OpMultiJoin)
	if err != nil {
		log.Error("failed to prepare output", sl.Err(err))
		return models.EditVersion{}, fmt.Errorf("%s: %w", op, err)
	}
	out := filepath.Join(dir, name)

	log.Info("joining sources", slog.Int("sources", len(sources)))

	parts := make([]string, 0)
	defer func() {
		for _, p := range parts {
			os.Remove(p)
		}
	}()

	for i, src := range sources {
		video, err := e.sessions.Source(ctx, sessionID, src.SourceID)
		if err != nil {
			return models.EditVersion{}, fmt.Errorf("%s: %w", op, err)
		}

		for j, r := range src.Ranges {
			part := filepath.Join(dir, fmt.Sprintf("join-%03d-%03d.mp4", i, j))
			if err := e.executor.Trim(ctx, video.Path, part, r); err != nil {
				log.Error("part render failed", slog.String("sourceID", src.SourceID), sl.Err(err))
				return models.EditVersion{}, fmt.Errorf("%s: %w", op, errors.Join(service.ErrExecutorFailed, err))
			}
			parts = append(parts, part)
		}
	}

	if err := e.executor.Join(ctx, parts, out, dir); err != nil {
		log.Error("join failed", sl.Err(err))
		return models.EditVersion{}, fmt.Errorf("%s: %w", op, errors.Join(service.ErrExecutorFailed, err))
	}

	v := models.EditVersion{
		Kind:          models.OpMultiJoin,
		OutputName:    name,
		SourceVersion: models.SourceOriginal,
		CreatedAt:     time.Now(),
		Params: models.OperationParams{
			Sources: sources,
		},
	}

	return e.record(ctx, log, sessionID, out, v)
}

// record appends the version after a successful render. If
// the append itself fails the output file is removed so no
// orphan outlives its missing history record.
func (e *Editor) record(
	ctx context.Context,
	log *slog.Logger,
	sessionID string,
	out string,
	v models.EditVersion,
) (models.EditVersion, error) {
	number, err := e.sessions.AppendVersion(ctx, sessionID, v)
	if err != nil {
		os.Remove(out)
		return models.EditVersion{}, err
	}
	v.Number = number

	log.Info(
		"recorded version",
		slog.Int64("number", number),
		slog.String("kind", string(v.Kind)),
	)

	return v, nil
}
