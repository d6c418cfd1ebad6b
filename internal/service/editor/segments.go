package editor

import (
	"fmt"
	"strings"

	"github.com/nkoroteev/bleep/internal/models"
	"github.com/nkoroteev/bleep/internal/service"
)

// RangesForWords maps a user's word selection onto mute
// ranges: a profanity segment contributes its range iff it
// contains at least one highlighted token whose lowercase
// text is selected. Segments without a selected-word hit
// are dropped even if they contain other profanity.
func RangesForWords(segments []models.ProfanitySegment, selected []string) []models.TimeRange {
	want := make(map[string]struct{}, len(selected))
	for _, w := range selected {
		want[strings.ToLower(w)] = struct{}{}
	}

	ranges := make([]models.TimeRange, 0)
	for _, seg := range segments {
		for _, hw := range seg.Words {
			if _, ok := want[strings.ToLower(hw.Word)]; ok {
				ranges = append(ranges, models.TimeRange{Start: seg.Start, End: seg.End})
				break
			}
		}
	}

	return ranges
}

// validateRanges checks 0 <= start < end for every range.
// Ranges are not required to be sorted or disjoint, order
// and overlap pass through to the executor verbatim.
func validateRanges(ranges []models.TimeRange) error {
	for _, r := range ranges {
		if r.Start < 0 || r.Start >= r.End {
			return fmt.Errorf("range [%v, %v): %w", r.Start, r.End, service.ErrSegmentConfig)
		}
	}
	return nil
}

// validateTrim enforces the trim structural rules: exactly
// one range without join, two or more with join. Anything
// else is an invalid configuration, no partial output.
func validateTrim(ranges []models.TimeRange, join bool) error {
	if join && len(ranges) < 2 {
		return fmt.Errorf("join requires at least two ranges: %w", service.ErrSegmentConfig)
	}
	if !join && len(ranges) != 1 {
		return fmt.Errorf("trim without join requires exactly one range: %w", service.ErrSegmentConfig)
	}
	return validateRanges(ranges)
}

// validateJoinSources enforces the multi-source join rules:
// at least one pair, every pair with at least one valid range.
func validateJoinSources(sources []models.JoinSource) error {
	if len(sources) == 0 {
		return fmt.Errorf("no sources to join: %w", service.ErrSegmentConfig)
	}
	for _, src := range sources {
		if src.SourceID == "" {
			return fmt.Errorf("source id required: %w", service.ErrSegmentConfig)
		}
		if len(src.Ranges) == 0 {
			return fmt.Errorf("source %s has no ranges: %w", src.SourceID, service.ErrSegmentConfig)
		}
		if err := validateRanges(src.Ranges); err != nil {
			return err
		}
	}
	return nil
}
