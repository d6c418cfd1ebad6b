package transcript

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/nkoroteev/bleep/internal/lib/logger/sl"
	"github.com/nkoroteev/bleep/internal/lib/whisper"
	"github.com/nkoroteev/bleep/internal/models"
	"github.com/nkoroteev/bleep/internal/service"
)

// Transcript produces canonical transcripts from either
// recognition source format. Transcripts are not persisted,
// every request produces them fresh and the caller resends
// entries to later steps needing them.
type Transcript struct {
	log      *slog.Logger
	resolver InputResolver
	asr      ASR
	audio    AudioExtractor
	tmpDir   string
}

type InputResolver interface {
	ResolveInput(ctx context.Context, sessionID, sourceVersion string) (string, error)
}

type ASR interface {
	Transcribe(ctx context.Context, wavPath, workDir, lang string) (whisper.Result, error)
}

type AudioExtractor interface {
	ExtractAudio(ctx context.Context, in, outWav string) error
}

func New(
	log *slog.Logger,
	resolver InputResolver,
	asr ASR,
	audio AudioExtractor,
	tmpDir string,
) *Transcript {
	return &Transcript{
		log:      log,
		resolver: resolver,
		asr:      asr,
		audio:    audio,
		tmpDir:   tmpDir,
	}
}

// Transcribe resolves the requested artifact, extracts its
// audio track and runs recognition over it. The call blocks
// until the external tool finishes, no timeout is enforced.
func (t *Transcript) Transcribe(ctx context.Context, sessionID, sourceVersion, lang string) ([]models.TranscriptEntry, error) {
	const op = "Transcript.Transcribe"

	log := t.log.With(
		slog.String("op", op),
		slog.String("sessionID", sessionID),
	)

	input, err := t.resolver.ResolveInput(ctx, sessionID, sourceVersion)
	if err != nil {
		// not found errors pass through as is
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	workDir, err := os.MkdirTemp(t.tmpDir, "asr-*")
	if err != nil {
		log.Error("failed to create work dir", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer os.RemoveAll(workDir)

	wav := workDir + "/audio.wav"

	log.Info("extracting audio", slog.String("input", input))

	if err := t.audio.ExtractAudio(ctx, input, wav); err != nil {
		log.Error("failed to extract audio", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, service.ErrTranscriptUnavailable)
	}

	log.Info("running recognition")

	res, err := t.asr.Transcribe(ctx, wav, workDir, lang)
	if err != nil {
		log.Error("recognition failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, service.ErrTranscriptUnavailable)
	}

	entries := FromRecognition(res)

	log.Info("transcribed", slog.Int("entries", len(entries)))

	return entries, nil
}

// FromSRT normalizes an uploaded subtitle file.
func (t *Transcript) FromSRT(r io.Reader) ([]models.TranscriptEntry, error) {
	const op = "Transcript.FromSRT"

	entries, err := ParseSRT(r)
	if err != nil {
		t.log.Error("failed to parse srt", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, service.ErrTranscriptUnavailable)
	}

	return entries, nil
}

// FromRecognition maps structured recognition segments 1:1
// onto canonical entries, keeping word-level timing when
// the tool provided it.
func FromRecognition(res whisper.Result) []models.TranscriptEntry {
	entries := make([]models.TranscriptEntry, 0, len(res.Segments))

	for i, seg := range res.Segments {
		entry := models.TranscriptEntry{
			Index: i + 1,
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		}
		for _, w := range seg.Words {
			entry.Words = append(entry.Words, models.TranscriptWord{
				Word:  w.Word,
				Start: w.Start,
				End:   w.End,
			})
		}
		entries = append(entries, entry)
	}

	return entries
}

// Search fuzzy-ranks transcript entries against a spoken
// phrase so the client can jump to it on the timeline.
func (t *Transcript) Search(entries []models.TranscriptEntry, query string) []models.SearchHit {
	return Search(entries, query)
}

func Search(entries []models.TranscriptEntry, query string) []models.SearchHit {
	if query == "" {
		return []models.SearchHit{}
	}

	texts := make([]string, 0, len(entries))
	for _, e := range entries {
		texts = append(texts, e.Text)
	}

	ranks := fuzzy.RankFindNormalizedFold(query, texts)
	sort.Sort(ranks)

	hits := make([]models.SearchHit, 0, len(ranks))
	for _, r := range ranks {
		hits = append(hits, models.SearchHit{
			Entry: entries[r.OriginalIndex],
			Rank:  r.Distance,
		})
	}

	return hits
}
