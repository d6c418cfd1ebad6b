package models

import (
	"strconv"
	"time"
)

// TODO: split into different files when become too big

type EditorIn struct {
	Login string `json:"login"`
	Pass  string `json:"pass"`
}

type EditorOut struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

type Editor struct {
	ID       int64  `json:"id"`
	Login    string `json:"login"`
	PassHash []byte `json:"pass"`
}

const (
	ErrEditorID int64 = 0

	RootID    int64 = -1
	RootLogin       = "root"
)

// Session groups uploaded sources and the
// derived version history of one editing user.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// SourceVideo is an uploaded file. Immutable once
// registered, edits always produce new files.
type SourceVideo struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"originalName"`
	StoredName   string    `json:"storedName"`
	Size         int64     `json:"size"`
	Path         string    `json:"-"`
	UploadedAt   time.Time `json:"uploadedAt"`
	Meta         MediaInfo `json:"meta"`
}

// MediaInfo is probed container/stream metadata.
type MediaInfo struct {
	Duration   float64 `json:"duration"`
	Format     string  `json:"format"`
	VideoCodec string  `json:"videoCodec"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	FrameRate  float64 `json:"frameRate"`
	BitRate    int64   `json:"bitRate"`
	AudioCodec string  `json:"audioCodec"`
	Channels   int     `json:"channels"`
	SampleRate int     `json:"sampleRate"`
}

type OperationKind string

const (
	OpMute      OperationKind = "mute"
	OpTrim      OperationKind = "trim"
	OpTrimJoin  OperationKind = "trimJoin"
	OpMultiJoin OperationKind = "multiJoin"
)

// SourceOriginal is the sourceVersion value
// referring to the uploaded file itself.
const SourceOriginal = "original"

// TimeRange is a half-open [Start, End) interval in seconds.
type TimeRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// JoinSource is one input of a multi-source join:
// a registered source and the ranges taken from it
// in caller-supplied order.
type JoinSource struct {
	SourceID string      `json:"sourceId"`
	Ranges   []TimeRange `json:"ranges"`
}

// OperationParams keeps the request that produced a
// version, for history display.
type OperationParams struct {
	Ranges  []TimeRange  `json:"ranges,omitempty"`
	Join    bool         `json:"join,omitempty"`
	Words   []string     `json:"words,omitempty"`
	Sources []JoinSource `json:"sources,omitempty"`
}

// EditVersion is one derived output artifact.
//
// SourceVersion names the artifact the operation read as
// input: "original" or a prior version number. The store
// does not force linearity, so two versions may share one
// SourceVersion (siblings).
type EditVersion struct {
	Number        int64           `json:"number"`
	Kind          OperationKind   `json:"kind"`
	OutputName    string          `json:"outputName"`
	SourceVersion string          `json:"sourceVersion"`
	CreatedAt     time.Time       `json:"createdAt"`
	Params        OperationParams `json:"params"`
}

// TranscriptEntry is one time-coded recognized phrase.
// Index is 1-based and matches source numbering.
type TranscriptEntry struct {
	Index int              `json:"index"`
	Start float64          `json:"start"`
	End   float64          `json:"end"`
	Text  string           `json:"text"`
	Words []TranscriptWord `json:"words,omitempty"`
}

type TranscriptWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type DetectionSource string

const (
	DetectedByList   DetectionSource = "list"
	DetectedByFilter DetectionSource = "filter"
)

// HighlightedWord is one token of a transcript entry
// tagged profane/clean plus which detector fired.
type HighlightedWord struct {
	Word    string          `json:"word"`
	Profane bool            `json:"profane"`
	Source  DetectionSource `json:"source,omitempty"`
}

// ProfanitySegment is a transcript entry flagged because
// at least one contained token matched. Its time range
// equals the entry's range: muting operates at entry
// granularity, not token granularity.
type ProfanitySegment struct {
	EntryIndex int               `json:"entryIndex"`
	Start      float64           `json:"start"`
	End        float64           `json:"end"`
	Text       string            `json:"text"`
	Words      []HighlightedWord `json:"words"`
}

type WordHit struct {
	Word       string `json:"word"`
	EntryIndex int    `json:"entryIndex"`
}

type ProfanityReport struct {
	Segments []ProfanitySegment `json:"segments"`
	Hits     []WordHit          `json:"hits"`
}

// SearchHit is one transcript entry matched by a
// fuzzy transcript search, lower rank is better.
type SearchHit struct {
	Entry TranscriptEntry `json:"entry"`
	Rank  int             `json:"rank"`
}

// ParseSourceVersion parses a sourceVersion reference.
// Returns (0, true) for "original", (n, true) for a
// positive version number, ok == false otherwise.
func ParseSourceVersion(s string) (int64, bool) {
	if s == SourceOriginal {
		return 0, true
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
