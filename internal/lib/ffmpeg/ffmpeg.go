package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nkoroteev/bleep/internal/models"
)

// Executor runs ffmpeg/ffprobe as external processes.
// It only builds operation parameters and delegates the
// actual transcoding, callers decide what the parameters
// mean and never get partial outputs: on failure the
// output file is removed.
type Executor struct {
	ffmpeg  string
	ffprobe string
}

func New(ffmpegPath, ffprobePath string) *Executor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Executor{ffmpeg: ffmpegPath, ffprobe: ffprobePath}
}

// Mute silences audio inside the given ranges keeping the
// video stream untouched. Zero ranges degrade to a plain
// stream copy. Overlapping and unsorted ranges are passed
// through verbatim: between() conditions OR together, so
// muting twice equals muting once.
func (e *Executor) Mute(ctx context.Context, in, out string, ranges []models.TimeRange) error {
	return e.run(ctx, out, MuteArgs(in, out, ranges))
}

// Trim renders a single contiguous clip covering [r.Start, r.End).
func (e *Executor) Trim(ctx context.Context, in, out string, r models.TimeRange) error {
	return e.run(ctx, out, TrimArgs(in, out, r))
}

// TrimConcat trims every range independently and joins the
// parts in the order given. Order is the caller's sequence
// order, ranges are deliberately not sorted by time.
func (e *Executor) TrimConcat(ctx context.Context, in, out, workDir string, ranges []models.TimeRange) error {
	parts := make([]string, 0, len(ranges))
	for i, r := range ranges {
		part := filepath.Join(workDir, fmt.Sprintf("part-%03d.mp4", i))
		if err := e.run(ctx, part, TrimArgs(in, part, r)); err != nil {
			removeAll(parts)
			return err
		}
		parts = append(parts, part)
	}
	defer removeAll(parts)

	return e.concat(ctx, parts, out, workDir)
}

// Join concatenates several already-registered sources.
// Every input is first normalized to a common encoding
// profile so the concat is structurally valid.
func (e *Executor) Join(ctx context.Context, inputs []string, out, workDir string) error {
	normalized := make([]string, 0, len(inputs))
	for i, in := range inputs {
		norm := filepath.Join(workDir, fmt.Sprintf("norm-%03d.mp4", i))
		if err := e.run(ctx, norm, NormalizeArgs(in, norm)); err != nil {
			removeAll(normalized)
			return err
		}
		normalized = append(normalized, norm)
	}
	defer removeAll(normalized)

	return e.concat(ctx, normalized, out, workDir)
}

// Copy copies input to output without re-encoding.
func (e *Executor) Copy(ctx context.Context, in, out string) error {
	return e.run(ctx, out, []string{"-y", "-i", in, "-c", "copy", out})
}

// ExtractAudio extracts a mono 16 kHz WAV for transcription.
func (e *Executor) ExtractAudio(ctx context.Context, in, outWav string) error {
	return e.run(ctx, outWav, []string{
		"-y",
		"-i", in,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		outWav,
	})
}

func (e *Executor) concat(ctx context.Context, parts []string, out, workDir string) error {
	list := filepath.Join(workDir, "concat.txt")
	if err := os.WriteFile(list, []byte(ConcatList(parts)), 0644); err != nil {
		return fmt.Errorf("ffmpeg concat list: %w", err)
	}
	defer os.Remove(list)

	return e.run(ctx, out, []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", list,
		"-c", "copy",
		out,
	})
}

func (e *Executor) run(ctx context.Context, out string, args []string) error {
	cmd := exec.CommandContext(ctx, e.ffmpeg, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		os.Remove(out)
		return fmt.Errorf("ffmpeg: %w\n%s", err, string(b))
	}
	return nil
}

// MuteArgs builds the ffmpeg invocation for audio muting.
func MuteArgs(in, out string, ranges []models.TimeRange) []string {
	if len(ranges) == 0 {
		return []string{"-y", "-i", in, "-c", "copy", out}
	}
	return []string{
		"-y",
		"-i", in,
		"-af", fmt.Sprintf("volume=enable='%s':volume=0", MuteFilter(ranges)),
		"-c:v", "copy",
		"-c:a", "aac",
		out,
	}
}

// MuteFilter builds the enable expression of the volume
// filter: between() conditions joined with '+'.
func MuteFilter(ranges []models.TimeRange) string {
	conds := make([]string, 0, len(ranges))
	for _, r := range ranges {
		conds = append(conds, fmt.Sprintf("between(t,%s,%s)", fmtSeconds(r.Start), fmtSeconds(r.End)))
	}
	return strings.Join(conds, "+")
}

// TrimArgs builds the ffmpeg invocation for a single clip.
func TrimArgs(in, out string, r models.TimeRange) []string {
	return []string{
		"-y",
		"-ss", fmtSeconds(r.Start),
		"-to", fmtSeconds(r.End),
		"-i", in,
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-c:a", "aac",
		out,
	}
}

// NormalizeArgs re-encodes input to the common profile used
// before multi-source concatenation.
func NormalizeArgs(in, out string) []string {
	return []string{
		"-y",
		"-i", in,
		"-vf", "scale=1280:720:force_original_aspect_ratio=decrease,pad=1280:720:(ow-iw)/2:(oh-ih)/2,fps=30",
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-c:a", "aac",
		"-ar", "44100",
		"-ac", "2",
		out,
	}
}

// ConcatList renders the concat demuxer file list.
func ConcatList(parts []string) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(p, "'", `'\''`))
		b.WriteString("'\n")
	}
	return b.String()
}

func fmtSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

func removeAll(files []string) {
	for _, f := range files {
		os.Remove(f)
	}
}
