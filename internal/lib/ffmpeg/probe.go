package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/nkoroteev/bleep/internal/models"
)

type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	CodecType  string `json:"codec_type"`
	CodecName  string `json:"codec_name"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	RFrameRate string `json:"r_frame_rate"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

type probeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	BitRate    string `json:"bit_rate"`
}

// Probe extracts container and stream metadata.
func (e *Executor) Probe(ctx context.Context, path string) (models.MediaInfo, error) {
	cmd := exec.CommandContext(ctx, e.ffprobe,
		"-loglevel", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	stdout, err := cmd.Output()
	if err != nil {
		return models.MediaInfo{}, fmt.Errorf("ffprobe: %w", err)
	}

	var probed probeOutput
	if err := json.Unmarshal(stdout, &probed); err != nil {
		return models.MediaInfo{}, fmt.Errorf("ffprobe: %w", err)
	}

	return probed.mediaInfo(), nil
}

func (p probeOutput) mediaInfo() models.MediaInfo {
	var info models.MediaInfo

	info.Format = p.Format.FormatName
	info.Duration, _ = strconv.ParseFloat(p.Format.Duration, 64)
	info.BitRate, _ = strconv.ParseInt(p.Format.BitRate, 10, 64)

	for _, s := range p.Streams {
		switch s.CodecType {
		case "video":
			info.VideoCodec = s.CodecName
			info.Width = s.Width
			info.Height = s.Height
			info.FrameRate = parseFrameRate(s.RFrameRate)
		case "audio":
			info.AudioCodec = s.CodecName
			info.Channels = s.Channels
			info.SampleRate, _ = strconv.Atoi(s.SampleRate)
		}
	}

	return info
}

// parseFrameRate parses ffprobe rational rates like "30000/1001".
func parseFrameRate(s string) float64 {
	num, den, found := strings.Cut(s, "/")
	if !found {
		rate, _ := strconv.ParseFloat(s, 64)
		return rate
	}

	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}

	return n / d
}
