package transcript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkoroteev/bleep/internal/models"
)

func TestParseSRTTime(t *testing.T) {
	testCases := []struct {
		desc   string
		in     string
		expect float64
		fails  bool
	}{
		{
			desc:   "minute with millis",
			in:     "00:01:02,500",
			expect: 62.5,
		},
		{
			desc:   "zero",
			in:     "00:00:00,000",
			expect: 0,
		},
		{
			desc:   "hours",
			in:     "01:02:03,250",
			expect: 3723.25,
		},
		{
			desc:  "no millis separator",
			in:    "00:01:02.500",
			fails: true,
		},
		{
			desc:  "missing clock part",
			in:    "01:02,500",
			fails: true,
		},
		{
			desc:  "garbage",
			in:    "abc",
			fails: true,
		},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			res, err := ParseSRTTime(tC.in)
			if tC.fails {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tC.expect, res)
		})
	}
}

func TestParseSRT(t *testing.T) {
	src := strings.Join([]string{
		"1",
		"00:00:01,000 --> 00:00:02,500",
		"hello there",
		"",
		"2",
		"00:01:02,500 --> 00:01:04,000",
		"multi line",
		"text block",
		"",
	}, "\n")

	entries, err := ParseSRT(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, []models.TranscriptEntry{
		{Index: 1, Start: 1, End: 2.5, Text: "hello there"},
		{Index: 2, Start: 62.5, End: 64, Text: "multi line text block"},
	}, entries)
}

func TestParseSRTMalformedTrailingBlock(t *testing.T) {
	src := strings.Join([]string{
		"1",
		"00:00:01,000 --> 00:00:02,000",
		"fine entry",
		"",
		"2",
		"00:00:03,000 --> ",
	}, "\n")

	entries, err := ParseSRT(strings.NewReader(src))
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, "fine entry", entries[0].Text)
}

func TestParseSRTCRLF(t *testing.T) {
	src := "1\r\n00:00:01,000 --> 00:00:02,000\r\nwindows line endings\r\n\r\n"

	entries, err := ParseSRT(strings.NewReader(src))
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, "windows line endings", entries[0].Text)
	assert.Equal(t, 1.0, entries[0].Start)
	assert.Equal(t, 2.0, entries[0].End)
}

func TestParseSRTEmpty(t *testing.T) {
	entries, err := ParseSRT(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
