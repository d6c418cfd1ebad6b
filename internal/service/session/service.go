package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nkoroteev/bleep/internal/lib/logger/sl"
	"github.com/nkoroteev/bleep/internal/models"
	"github.com/nkoroteev/bleep/internal/service"
	"github.com/nkoroteev/bleep/internal/storage"
)

// Session tracks the ordered edit history per session and
// resolves which file is the input for a new operation.
//
// Versions are linear per request but tree-capable: the
// store never forces linearity, concurrent appends against
// one sourceVersion produce sibling versions.
type Session struct {
	log       *slog.Logger
	storage   SessionStorage
	prober    Prober
	sourceDir string
	outputDir string
}

type SessionStorage interface {
	SaveSession(ctx context.Context, session models.Session) error
	Session(ctx context.Context, id string) (models.Session, error)
	DeleteSession(ctx context.Context, id string) error

	SaveSource(ctx context.Context, sessionID string, src models.SourceVideo) error
	Source(ctx context.Context, sessionID, sourceID string) (models.SourceVideo, error)
	Sources(ctx context.Context, sessionID string) ([]models.SourceVideo, error)

	AppendVersion(ctx context.Context, sessionID string, v models.EditVersion) (int64, error)
	Version(ctx context.Context, sessionID string, number int64) (models.EditVersion, error)
	Versions(ctx context.Context, sessionID string) ([]models.EditVersion, error)
}

type Prober interface {
	Probe(ctx context.Context, path string) (models.MediaInfo, error)
}

func New(
	log *slog.Logger,
	storage SessionStorage,
	prober Prober,
	sourceDir string,
	outputDir string,
) *Session {
	return &Session{
		log:       log,
		storage:   storage,
		prober:    prober,
		sourceDir: sourceDir,
		outputDir: outputDir,
	}
}

// CreateSession allocates a new empty session.
func (s *Session) CreateSession(ctx context.Context) (models.Session, error) {
	const op = "Session.CreateSession"

	log := s.log.With(
		slog.String("op", op),
	)

	session := models.Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
	}

	if err := s.storage.SaveSession(ctx, session); err != nil {
		log.Error("failed to save session", sl.Err(err))
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("created session", slog.String("sessionID", session.ID))

	return session, nil
}

// RegisterSource moves an uploaded file into the session's
// source directory, probes its metadata and registers it.
// The stored file is immutable, edits produce new files.
func (s *Session) RegisterSource(ctx context.Context, sessionID, path, originalName string) (models.SourceVideo, error) {
	const op = "Session.RegisterSource"

	log := s.log.With(
		slog.String("op", op),
		slog.String("sessionID", sessionID),
	)

	if _, err := s.storage.Session(ctx, sessionID); err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			log.Warn("session not found")
			return models.SourceVideo{}, fmt.Errorf("%s: %w", op, service.ErrSessionNotFound)
		}
		log.Error("failed to get session", sl.Err(err))
		return models.SourceVideo{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("registering source", slog.String("name", originalName))

	id := uuid.NewString()
	storedName := id + filepath.Ext(originalName)
	destDir := filepath.Join(s.sourceDir, sessionID)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		log.Error("failed to create source dir", sl.Err(err))
		return models.SourceVideo{}, fmt.Errorf("%s: %w", op, err)
	}
	dest := filepath.Join(destDir, storedName)

	size, err := copyFile(path, dest)
	if err != nil {
		log.Error("failed to store source", sl.Err(err))
		return models.SourceVideo{}, fmt.Errorf("%s: %w", op, err)
	}

	meta, err := s.prober.Probe(ctx, dest)
	if err != nil {
		log.Error("failed to probe source", slog.String("file", dest), sl.Err(err))
		os.Remove(dest)
		return models.SourceVideo{}, fmt.Errorf("%s: %w", op, err)
	}

	src := models.SourceVideo{
		ID:           id,
		OriginalName: originalName,
		StoredName:   storedName,
		Size:         size,
		Path:         dest,
		UploadedAt:   time.Now(),
		Meta:         meta,
	}

	if err := s.storage.SaveSource(ctx, sessionID, src); err != nil {
		log.Error("failed to save source", sl.Err(err))
		os.Remove(dest)
		return models.SourceVideo{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("registered source", slog.String("sourceID", id))

	return src, nil
}

// Sources returns all sources registered in session.
func (s *Session) Sources(ctx context.Context, sessionID string) ([]models.SourceVideo, error) {
	const op = "Session.Sources"

	log := s.log.With(
		slog.String("op", op),
		slog.String("sessionID", sessionID),
	)

	if _, err := s.storage.Session(ctx, sessionID); err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			log.Warn("session not found")
			return []models.SourceVideo{}, fmt.Errorf("%s: %w", op, service.ErrSessionNotFound)
		}
		log.Error("failed to get session", sl.Err(err))
		return []models.SourceVideo{}, fmt.Errorf("%s: %w", op, err)
	}

	sources, err := s.storage.Sources(ctx, sessionID)
	if err != nil {
		log.Error("failed to get sources", sl.Err(err))
		return []models.SourceVideo{}, fmt.Errorf("%s: %w", op, err)
	}

	return sources, nil
}

// Source returns one registered source by id.
func (s *Session) Source(ctx context.Context, sessionID, sourceID string) (models.SourceVideo, error) {
	const op = "Session.Source"

	log := s.log.With(
		slog.String("op", op),
		slog.String("sessionID", sessionID),
	)

	src, err := s.storage.Source(ctx, sessionID, sourceID)
	if err != nil {
		if errors.Is(err, storage.ErrSourceNotFound) {
			log.Warn("source not found", slog.String("sourceID", sourceID))
			return models.SourceVideo{}, fmt.Errorf("%s: %w", op, service.ErrSourceNotFound)
		}
		log.Error("failed to get source", sl.Err(err))
		return models.SourceVideo{}, fmt.Errorf("%s: %w", op, err)
	}

	return src, nil
}

// ResolveInput maps a sourceVersion reference to a concrete
// file path.
//
// "original" resolves to the session's only registered
// source; with several sources registered an explicit
// source id is required and the reference is ambiguous.
// Any other value is a version number looked up in the
// session's history. Only versions appended after a
// successful operation exist, so the resolved file is
// never a failed operation's leftover.
func (s *Session) ResolveInput(ctx context.Context, sessionID, sourceVersion string) (string, error) {
	const op = "Session.ResolveInput"

	log := s.log.With(
		slog.String("op", op),
		slog.String("sessionID", sessionID),
	)

	if _, err := s.storage.Session(ctx, sessionID); err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			log.Warn("session not found")
			return "", fmt.Errorf("%s: %w", op, service.ErrSessionNotFound)
		}
		log.Error("failed to get session", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	number, ok := models.ParseSourceVersion(sourceVersion)
	if !ok {
		log.Warn("bad source version", slog.String("sourceVersion", sourceVersion))
		return "", fmt.Errorf("%s: %w", op, service.ErrVersionNotFound)
	}

	if number == 0 {
		sources, err := s.storage.Sources(ctx, sessionID)
		if err != nil {
			log.Error("failed to get sources", sl.Err(err))
			return "", fmt.Errorf("%s: %w", op, err)
		}
		switch len(sources) {
		case 0:
			log.Warn("no sources registered")
			return "", fmt.Errorf("%s: %w", op, service.ErrSourceNotFound)
		case 1:
			return sources[0].Path, nil
		default:
			log.Warn("ambiguous original reference", slog.Int("sources", len(sources)))
			return "", fmt.Errorf("%s: %w", op, service.ErrSourceAmbiguous)
		}
	}

	version, err := s.storage.Version(ctx, sessionID, number)
	if err != nil {
		if errors.Is(err, storage.ErrVersionNotFound) {
			log.Warn("version not found", slog.Int64("number", number))
			return "", fmt.Errorf("%s: %w", op, service.ErrVersionNotFound)
		}
		log.Error("failed to get version", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return filepath.Join(s.outputDir, sessionID, version.OutputName), nil
}

// AppendVersion appends a version record after a successful
// operation and returns the assigned number.
func (s *Session) AppendVersion(ctx context.Context, sessionID string, v models.EditVersion) (int64, error) {
	const op = "Session.AppendVersion"

	log := s.log.With(
		slog.String("op", op),
		slog.String("sessionID", sessionID),
	)

	number, err := s.storage.AppendVersion(ctx, sessionID, v)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			log.Warn("session not found")
			return 0, fmt.Errorf("%s: %w", op, service.ErrSessionNotFound)
		}
		log.Error("failed to append version", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	log.Info(
		"appended version",
		slog.Int64("number", number),
		slog.String("kind", string(v.Kind)),
		slog.String("sourceVersion", v.SourceVersion),
	)

	return number, nil
}

// History returns the session's full version history.
func (s *Session) History(ctx context.Context, sessionID string) ([]models.EditVersion, error) {
	const op = "Session.History"

	log := s.log.With(
		slog.String("op", op),
		slog.String("sessionID", sessionID),
	)

	if _, err := s.storage.Session(ctx, sessionID); err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			log.Warn("session not found")
			return []models.EditVersion{}, fmt.Errorf("%s: %w", op, service.ErrSessionNotFound)
		}
		log.Error("failed to get session", sl.Err(err))
		return []models.EditVersion{}, fmt.Errorf("%s: %w", op, err)
	}

	versions, err := s.storage.Versions(ctx, sessionID)
	if err != nil {
		log.Error("failed to get versions", sl.Err(err))
		return []models.EditVersion{}, fmt.Errorf("%s: %w", op, err)
	}

	return versions, nil
}

// DestroySession removes the session with its history and
// deletes every backing file. Destroying an unknown session
// is a no-op. File deletion is best effort: failures are
// logged, never surfaced, already-missing files are fine.
func (s *Session) DestroySession(ctx context.Context, sessionID string) error {
	const op = "Session.DestroySession"

	log := s.log.With(
		slog.String("op", op),
		slog.String("sessionID", sessionID),
	)

	log.Info("destroying session")

	if err := s.storage.DeleteSession(ctx, sessionID); err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			log.Warn("session not found, nothing to destroy")
			return nil
		}
		log.Error("failed to delete session", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, dir := range []string{
		filepath.Join(s.sourceDir, sessionID),
		filepath.Join(s.outputDir, sessionID),
	} {
		if err := os.RemoveAll(dir); err != nil {
			log.Warn("failed to remove session files", slog.String("dir", dir), sl.Err(err))
		}
	}

	log.Info("destroyed session")

	return nil
}

// OutputDir returns (and creates) the directory holding the
// session's derived outputs.
func (s *Session) OutputDir(sessionID string) (string, error) {
	dir := filepath.Join(s.outputDir, sessionID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// OutputPath builds a fresh output file name for an
// operation. The version number is unknown until the record
// is appended, so names carry kind and timestamp instead.
func (s *Session) OutputPath(sessionID string, kind models.OperationKind) (dir, name string, err error) {
	dir, err = s.OutputDir(sessionID)
	if err != nil {
		return "", "", err
	}
	name = fmt.Sprintf("%s-%d.mp4", strings.ToLower(string(kind)), time.Now().UnixNano())
	return dir, name, nil
}

func copyFile(src, dest string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	return io.Copy(out, in)
}
