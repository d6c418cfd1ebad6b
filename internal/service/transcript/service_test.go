package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkoroteev/bleep/internal/lib/whisper"
	"github.com/nkoroteev/bleep/internal/models"
)

func TestFromRecognition(t *testing.T) {
	res := whisper.Result{
		Segments: []whisper.Segment{
			{
				Start: 0.5,
				End:   2,
				Text:  "hello there",
				Words: []whisper.Word{
					{Word: "hello", Start: 0.5, End: 1},
					{Word: "there", Start: 1.2, End: 2},
				},
			},
			{
				Start: 2.5,
				End:   4,
				Text:  "general kenobi",
			},
		},
	}

	entries := FromRecognition(res)

	require.Len(t, entries, 2)

	assert.Equal(t, 1, entries[0].Index)
	assert.Equal(t, 2, entries[1].Index)
	assert.Equal(t, "hello there", entries[0].Text)
	assert.Equal(t, 0.5, entries[0].Start)
	assert.Equal(t, 2.0, entries[0].End)

	require.Len(t, entries[0].Words, 2)
	assert.Equal(t, "there", entries[0].Words[1].Word)
	assert.Equal(t, 1.2, entries[0].Words[1].Start)

	assert.Empty(t, entries[1].Words)
}

func TestSearch(t *testing.T) {
	entries := []models.TranscriptEntry{
		{Index: 1, Text: "the weather is nice today"},
		{Index: 2, Text: "let's talk about the budget"},
		{Index: 3, Text: "budget approval next week"},
	}

	hits := Search(entries, "budget")

	require.NotEmpty(t, hits)
	for _, h := range hits {
		assert.Contains(t, []int{2, 3}, h.Entry.Index)
	}

	// best hit first
	for i := 1; i < len(hits); i++ {
		assert.LessOrEqual(t, hits[i-1].Rank, hits[i].Rank)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	hits := Search([]models.TranscriptEntry{{Index: 1, Text: "anything"}}, "")
	assert.Empty(t, hits)
}
