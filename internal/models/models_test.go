package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSourceVersion(t *testing.T) {
	testCases := []struct {
		desc   string
		in     string
		number int64
		ok     bool
	}{
		{
			desc:   "original",
			in:     "original",
			number: 0,
			ok:     true,
		},
		{
			desc:   "first version",
			in:     "1",
			number: 1,
			ok:     true,
		},
		{
			desc:   "big number",
			in:     "42",
			number: 42,
			ok:     true,
		},
		{
			desc: "zero is not a version",
			in:   "0",
		},
		{
			desc: "negative",
			in:   "-3",
		},
		{
			desc: "empty",
			in:   "",
		},
		{
			desc: "garbage",
			in:   "latest",
		},
		{
			desc: "fraction",
			in:   "1.5",
		},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			n, ok := ParseSourceVersion(tC.in)
			assert.Equal(t, tC.ok, ok)
			if tC.ok {
				assert.Equal(t, tC.number, n)
			}
		})
	}
}
