package session

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkoroteev/bleep/internal/models"
	"github.com/nkoroteev/bleep/internal/service"
	"github.com/nkoroteev/bleep/internal/storage"
)

type fakeStorage struct {
	sessions map[string]models.Session
	sources  map[string][]models.SourceVideo
	versions map[string][]models.EditVersion
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		sessions: make(map[string]models.Session),
		sources:  make(map[string][]models.SourceVideo),
		versions: make(map[string][]models.EditVersion),
	}
}

func (f *fakeStorage) SaveSession(_ context.Context, s models.Session) error {
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeStorage) Session(_ context.Context, id string) (models.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return models.Session{}, storage.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeStorage) DeleteSession(_ context.Context, id string) error {
	if _, ok := f.sessions[id]; !ok {
		return storage.ErrSessionNotFound
	}
	delete(f.sessions, id)
	delete(f.sources, id)
	delete(f.versions, id)
	return nil
}

func (f *fakeStorage) SaveSource(_ context.Context, sessionID string, src models.SourceVideo) error {
	if _, ok := f.sessions[sessionID]; !ok {
		return storage.ErrSessionNotFound
	}
	f.sources[sessionID] = append(f.sources[sessionID], src)
	return nil
}

func (f *fakeStorage) Source(_ context.Context, sessionID, sourceID string) (models.SourceVideo, error) {
	for _, src := range f.sources[sessionID] {
		if src.ID == sourceID {
			return src, nil
		}
	}
	return models.SourceVideo{}, storage.ErrSourceNotFound
}

func (f *fakeStorage) Sources(_ context.Context, sessionID string) ([]models.SourceVideo, error) {
	return f.sources[sessionID], nil
}

func (f *fakeStorage) AppendVersion(_ context.Context, sessionID string, v models.EditVersion) (int64, error) {
	if _, ok := f.sessions[sessionID]; !ok {
		return 0, storage.ErrSessionNotFound
	}
	v.Number = int64(len(f.versions[sessionID]) + 1)
	f.versions[sessionID] = append(f.versions[sessionID], v)
	return v.Number, nil
}

func (f *fakeStorage) Version(_ context.Context, sessionID string, number int64) (models.EditVersion, error) {
	for _, v := range f.versions[sessionID] {
		if v.Number == number {
			return v, nil
		}
	}
	return models.EditVersion{}, storage.ErrVersionNotFound
}

func (f *fakeStorage) Versions(_ context.Context, sessionID string) ([]models.EditVersion, error) {
	return f.versions[sessionID], nil
}

type fakeProber struct{}

func (fakeProber) Probe(_ context.Context, _ string) (models.MediaInfo, error) {
	return models.MediaInfo{Duration: 1, Format: "mov,mp4,m4a,3gp,3g2,mj2"}, nil
}

func newService(t *testing.T, st *fakeStorage) *Session {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(log, st, fakeProber{}, t.TempDir(), t.TempDir())
}

func TestResolveInputOriginal(t *testing.T) {
	st := newFakeStorage()
	srv := newService(t, st)

	st.sessions["s1"] = models.Session{ID: "s1"}

	// no sources yet
	_, err := srv.ResolveInput(context.Background(), "s1", models.SourceOriginal)
	assert.ErrorIs(t, err, service.ErrSourceNotFound)

	// single source resolves
	st.sources["s1"] = []models.SourceVideo{{ID: "a", Path: "/video/a.mp4"}}
	path, err := srv.ResolveInput(context.Background(), "s1", models.SourceOriginal)
	require.NoError(t, err)
	assert.Equal(t, "/video/a.mp4", path)

	// several sources make "original" ambiguous
	st.sources["s1"] = append(st.sources["s1"], models.SourceVideo{ID: "b", Path: "/video/b.mp4"})
	_, err = srv.ResolveInput(context.Background(), "s1", models.SourceOriginal)
	assert.ErrorIs(t, err, service.ErrSourceAmbiguous)
}

func TestResolveInputVersion(t *testing.T) {
	st := newFakeStorage()
	srv := newService(t, st)

	st.sessions["s1"] = models.Session{ID: "s1"}
	st.sources["s1"] = []models.SourceVideo{{ID: "a", Path: "/video/a.mp4"}}
	st.versions["s1"] = []models.EditVersion{
		{Number: 1, Kind: models.OpMute, OutputName: "mute-1.mp4", SourceVersion: models.SourceOriginal},
	}

	path, err := srv.ResolveInput(context.Background(), "s1", "1")
	require.NoError(t, err)
	assert.Equal(t, "mute-1.mp4", filepath.Base(path))

	// appending versions never shadows the original
	orig, err := srv.ResolveInput(context.Background(), "s1", models.SourceOriginal)
	require.NoError(t, err)
	assert.Equal(t, "/video/a.mp4", orig)

	_, err = srv.ResolveInput(context.Background(), "s1", "2")
	assert.ErrorIs(t, err, service.ErrVersionNotFound)
}

func TestResolveInputBadReference(t *testing.T) {
	st := newFakeStorage()
	srv := newService(t, st)

	st.sessions["s1"] = models.Session{ID: "s1"}

	for _, ref := range []string{"", "latest", "-1", "0", "1.5"} {
		_, err := srv.ResolveInput(context.Background(), "s1", ref)
		assert.ErrorIs(t, err, service.ErrVersionNotFound, "ref %q", ref)
	}
}

func TestResolveInputUnknownSession(t *testing.T) {
	srv := newService(t, newFakeStorage())

	_, err := srv.ResolveInput(context.Background(), "nope", models.SourceOriginal)
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
}

func TestCreateAndHistory(t *testing.T) {
	st := newFakeStorage()
	srv := newService(t, st)

	session, err := srv.CreateSession(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)

	history, err := srv.History(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Empty(t, history)

	n, err := srv.AppendVersion(context.Background(), session.ID, models.EditVersion{
		Kind:          models.OpTrim,
		OutputName:    "trim-1.mp4",
		SourceVersion: models.SourceOriginal,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	history, err = srv.History(context.Background(), session.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.OpTrim, history[0].Kind)
}

func TestDestroySessionIdempotent(t *testing.T) {
	st := newFakeStorage()
	srv := newService(t, st)

	session, err := srv.CreateSession(context.Background())
	require.NoError(t, err)

	require.NoError(t, srv.DestroySession(context.Background(), session.ID))

	// destroying again (or an unknown id) still succeeds
	require.NoError(t, srv.DestroySession(context.Background(), session.ID))
	require.NoError(t, srv.DestroySession(context.Background(), "never-existed"))
}

func TestHistoryUnknownSession(t *testing.T) {
	srv := newService(t, newFakeStorage())

	_, err := srv.History(context.Background(), "nope")
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
}
