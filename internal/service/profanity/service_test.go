package profanity

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkoroteev/bleep/internal/models"
)

type fakeVocab struct {
	words map[string][]string
}

func newFakeVocab() *fakeVocab {
	return &fakeVocab{words: make(map[string][]string)}
}

func (f *fakeVocab) SaveWords(_ context.Context, sessionID string, words []string) error {
	f.words[sessionID] = append(f.words[sessionID], words...)
	return nil
}

func (f *fakeVocab) Words(_ context.Context, sessionID string) ([]string, error) {
	return f.words[sessionID], nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDetectStaticList(t *testing.T) {
	srv := New(discardLogger(), newFakeVocab(), func(token, _ string) string { return token })

	entries := []models.TranscriptEntry{
		{Index: 1, Start: 0, End: 2, Text: "hello damn world"},
		{Index: 2, Start: 2, End: 4, Text: "all clean here"},
	}

	report, err := srv.Detect(context.Background(), "s1", entries, "en", nil)
	require.NoError(t, err)

	require.Len(t, report.Segments, 1)
	seg := report.Segments[0]
	assert.Equal(t, 1, seg.EntryIndex)
	assert.Equal(t, 0.0, seg.Start)
	assert.Equal(t, 2.0, seg.End)

	require.Len(t, seg.Words, 3)
	assert.False(t, seg.Words[0].Profane)
	assert.True(t, seg.Words[1].Profane)
	assert.Equal(t, models.DetectedByList, seg.Words[1].Source)
	assert.False(t, seg.Words[2].Profane)

	require.Len(t, report.Hits, 1)
	assert.Equal(t, models.WordHit{Word: "damn", EntryIndex: 1}, report.Hits[0])
}

func TestDetectCaseInsensitive(t *testing.T) {
	srv := New(discardLogger(), newFakeVocab(), func(token, _ string) string { return token })

	entries := []models.TranscriptEntry{
		{Index: 1, Start: 0, End: 1, Text: "DAMN it"},
	}

	report, err := srv.Detect(context.Background(), "s1", entries, "en", nil)
	require.NoError(t, err)

	require.Len(t, report.Segments, 1)
	assert.True(t, report.Segments[0].Words[0].Profane)
	assert.Equal(t, "damn", report.Hits[0].Word)
}

func TestDetectCustomWords(t *testing.T) {
	vocab := newFakeVocab()
	srv := New(discardLogger(), vocab, func(token, _ string) string { return token })

	entries := []models.TranscriptEntry{
		{Index: 1, Start: 0, End: 1, Text: "totally gnarly stuff"},
	}

	report, err := srv.Detect(context.Background(), "s1", entries, "en", []string{"gnarly"})
	require.NoError(t, err)

	require.Len(t, report.Segments, 1)
	assert.Equal(t, models.DetectedByList, report.Segments[0].Words[1].Source)

	// custom words persist for the session
	assert.Contains(t, vocab.words["s1"], "gnarly")

	// and keep firing on later calls without resending
	report, err = srv.Detect(context.Background(), "s1", entries, "en", nil)
	require.NoError(t, err)
	require.Len(t, report.Segments, 1)
}

func TestDetectFilterSource(t *testing.T) {
	filter := func(token, _ string) string {
		if token == "frak" {
			return "****"
		}
		return token
	}
	srv := New(discardLogger(), newFakeVocab(), filter)

	entries := []models.TranscriptEntry{
		{Index: 1, Start: 0, End: 1, Text: "frak this"},
	}

	report, err := srv.Detect(context.Background(), "s1", entries, "en", nil)
	require.NoError(t, err)

	require.Len(t, report.Segments, 1)
	assert.True(t, report.Segments[0].Words[0].Profane)
	assert.Equal(t, models.DetectedByFilter, report.Segments[0].Words[0].Source)
}

// a word in the list is tagged "list" even if the filter
// would also redact it
func TestDetectListPriority(t *testing.T) {
	filter := func(token, _ string) string { return "****" }
	srv := New(discardLogger(), newFakeVocab(), filter)

	entries := []models.TranscriptEntry{
		{Index: 1, Start: 0, End: 1, Text: "damn"},
	}

	report, err := srv.Detect(context.Background(), "s1", entries, "en", nil)
	require.NoError(t, err)

	require.Len(t, report.Segments, 1)
	assert.Equal(t, models.DetectedByList, report.Segments[0].Words[0].Source)
}

func TestDetectEmptyTranscript(t *testing.T) {
	srv := New(discardLogger(), newFakeVocab(), func(token, _ string) string { return token })

	report, err := srv.Detect(context.Background(), "s1", nil, "en", nil)
	require.NoError(t, err)

	assert.Empty(t, report.Segments)
	assert.Empty(t, report.Hits)
}

func TestDetectPunctuationStaysAttached(t *testing.T) {
	srv := New(discardLogger(), newFakeVocab(), func(token, _ string) string { return token })

	// "damn," is not an exact token match against the list
	entries := []models.TranscriptEntry{
		{Index: 1, Start: 0, End: 1, Text: "damn, again"},
	}

	report, err := srv.Detect(context.Background(), "s1", entries, "en", nil)
	require.NoError(t, err)

	assert.Empty(t, report.Segments)
}
