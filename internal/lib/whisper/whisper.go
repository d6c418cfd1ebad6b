package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Result is the structured recognition output: entry-level
// segments with float seconds plus optional word timing.
type Result struct {
	Segments []Segment `json:"segments"`
}

type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

type Word struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Word  string  `json:"word"`
}

// Adapter invokes a whisper.cpp binary. The call blocks
// until the external process finishes or fails, there is
// no cancellation beyond ctx killing the process.
type Adapter struct {
	bin   string
	model string
}

func New(binPath, modelPath string) *Adapter {
	return &Adapter{bin: binPath, model: modelPath}
}

// Transcribe runs recognition over wavPath and returns the
// parsed structured result.
func (a *Adapter) Transcribe(ctx context.Context, wavPath, workDir, lang string) (Result, error) {
	outPrefix := filepath.Join(workDir, "whisper")
	args := []string{
		"-m", a.model,
		"-f", wavPath,
		"-oj",
		"-of", outPrefix,
	}
	if lang != "" {
		args = append(args, "-l", lang)
	}

	cmd := exec.CommandContext(ctx, a.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return Result{}, fmt.Errorf("whisper.cpp failed: %w\n%s", err, string(b))
	}

	jb, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return Result{}, err
	}
	defer os.Remove(outPrefix + ".json")

	var res Result
	if err := json.Unmarshal(jb, &res); err != nil {
		return Result{}, err
	}

	for i := range res.Segments {
		res.Segments[i].Text = strings.TrimSpace(res.Segments[i].Text)
		for j := range res.Segments[i].Words {
			res.Segments[i].Words[j].Word = strings.TrimSpace(res.Segments[i].Words[j].Word)
		}
	}

	return res, nil
}
