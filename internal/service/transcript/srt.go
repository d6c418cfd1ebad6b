package transcript

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nkoroteev/bleep/internal/models"
)

// ParseSRT converts subtitle-format recognition output into
// canonical transcript entries.
//
// Entries are blocks of index line, time-range line, text
// and a blank separator. Malformed or incomplete trailing
// blocks are skipped, there is no partial-entry error.
func ParseSRT(r io.Reader) ([]models.TranscriptEntry, error) {
	scanner := bufio.NewScanner(r)

	entries := make([]models.TranscriptEntry, 0)
	block := make([]string, 0, 4)

	flush := func() {
		if entry, ok := parseBlock(block); ok {
			entries = append(entries, entry)
		}
		block = block[:0]
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			flush()
			continue
		}
		block = append(block, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	flush()

	return entries, nil
}

func parseBlock(lines []string) (models.TranscriptEntry, bool) {
	if len(lines) < 3 {
		return models.TranscriptEntry{}, false
	}

	index, err := strconv.Atoi(lines[0])
	if err != nil {
		return models.TranscriptEntry{}, false
	}

	startRaw, endRaw, found := strings.Cut(lines[1], " --> ")
	if !found {
		return models.TranscriptEntry{}, false
	}
	start, err := ParseSRTTime(startRaw)
	if err != nil {
		return models.TranscriptEntry{}, false
	}
	end, err := ParseSRTTime(endRaw)
	if err != nil {
		return models.TranscriptEntry{}, false
	}

	return models.TranscriptEntry{
		Index: index,
		Start: start,
		End:   end,
		Text:  strings.Join(lines[2:], " "),
	}, true
}

// ParseSRTTime converts a "HH:MM:SS,mmm" timestamp to
// fractional seconds: "00:01:02,500" is exactly 62.5.
func ParseSRTTime(s string) (float64, error) {
	s = strings.TrimSpace(s)

	clock, msRaw, found := strings.Cut(s, ",")
	if !found {
		return 0, fmt.Errorf("bad srt time %q", s)
	}

	parts := strings.Split(clock, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("bad srt time %q", s)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("bad srt time %q: %w", s, err)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("bad srt time %q: %w", s, err)
	}
	seconds, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, fmt.Errorf("bad srt time %q: %w", s, err)
	}
	millis, err := strconv.Atoi(msRaw)
	if err != nil {
		return 0, fmt.Errorf("bad srt time %q: %w", s, err)
	}

	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}
