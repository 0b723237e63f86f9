// Package interval implements half-open minute-of-day interval algebra.
// Spans are [Start, End) with both ends expressed as minutes from
// midnight, so a full day is [0, 1440). All operations treat their
// inputs as immutable and return freshly allocated slices.
package interval

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// MinutesPerDay is the exclusive upper bound of a day span.
const MinutesPerDay = 24 * 60

// Span is a half-open interval of minutes within a single day.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Duration returns the span length in minutes.
func (s Span) Duration() int {
	return s.End - s.Start
}

// IsEmpty reports whether the span covers no time.
func (s Span) IsEmpty() bool {
	return s.End <= s.Start
}

// Contains reports whether other lies entirely within s.
func (s Span) Contains(other Span) bool {
	return other.Start >= s.Start && other.End <= s.End
}

// Overlaps reports whether the two spans share any minute. Touching
// endpoints do not overlap because the intervals are half-open.
func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

// String renders the span as "HH:MM-HH:MM".
func (s Span) String() string {
	return FormatMinute(s.Start) + "-" + FormatMinute(s.End)
}

// MinuteOfDay parses "HH:MM" into minutes from midnight. "24:00" is
// accepted as the end-of-day sentinel.
func MinuteOfDay(clock string) (int, error) {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", clock)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q: %w", clock, err)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q: %w", clock, err)
	}
	if minutes < 0 || minutes > 59 || hours < 0 || hours > 24 || (hours == 24 && minutes != 0) {
		return 0, fmt.Errorf("clock value %q out of range", clock)
	}
	return hours*60 + minutes, nil
}

// FormatMinute renders minutes from midnight as "HH:MM".
func FormatMinute(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// Normalize drops empty spans and sorts the rest by start, then end.
func Normalize(spans []Span) []Span {
	out := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.IsEmpty() {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].End < out[j].End
	})
	return out
}

// Merge coalesces overlapping and adjacent spans into a minimal sorted
// disjoint set. Merging an already merged set is a no-op.
func Merge(spans []Span) []Span {
	sorted := Normalize(spans)
	if len(sorted) == 0 {
		return nil
	}

	merged := make([]Span, 0, len(sorted))
	current := sorted[0]
	for _, s := range sorted[1:] {
		if s.Start <= current.End {
			if s.End > current.End {
				current.End = s.End
			}
			continue
		}
		merged = append(merged, current)
		current = s
	}
	merged = append(merged, current)
	return merged
}

// Complement returns the gaps of spans within [boundStart, boundEnd).
// With no spans the whole bound is returned.
func Complement(spans []Span, boundStart, boundEnd int) []Span {
	if boundEnd <= boundStart {
		return nil
	}

	var gaps []Span
	cursor := boundStart
	for _, s := range Merge(spans) {
		if s.End <= boundStart {
			continue
		}
		if s.Start >= boundEnd {
			break
		}
		if s.Start > cursor {
			gaps = append(gaps, Span{Start: cursor, End: s.Start})
		}
		if s.End > cursor {
			cursor = s.End
		}
	}
	if cursor < boundEnd {
		gaps = append(gaps, Span{Start: cursor, End: boundEnd})
	}
	return gaps
}

// Subtract removes every minute of remove from base.
func Subtract(base, remove []Span) []Span {
	result := Merge(base)
	for _, r := range Merge(remove) {
		if r.IsEmpty() {
			continue
		}
		next := make([]Span, 0, len(result)+1)
		for _, b := range result {
			if !b.Overlaps(r) {
				next = append(next, b)
				continue
			}
			if b.Start < r.Start {
				next = append(next, Span{Start: b.Start, End: r.Start})
			}
			if r.End < b.End {
				next = append(next, Span{Start: r.End, End: b.End})
			}
		}
		result = next
	}
	return result
}

// Intersect returns the common minutes of two merged span sets using a
// two-pointer sweep.
func Intersect(a, b []Span) []Span {
	left := Merge(a)
	right := Merge(b)

	var common []Span
	i, j := 0, 0
	for i < len(left) && j < len(right) {
		start := left[i].Start
		if right[j].Start > start {
			start = right[j].Start
		}
		end := left[i].End
		if right[j].End < end {
			end = right[j].End
		}
		if start < end {
			common = append(common, Span{Start: start, End: end})
		}
		if left[i].End <= right[j].End {
			i++
		} else {
			j++
		}
	}
	return common
}

// IntersectAll folds Intersect over every set. An empty input yields
// nil; a single set is returned merged.
func IntersectAll(sets ...[]Span) []Span {
	if len(sets) == 0 {
		return nil
	}
	result := Merge(sets[0])
	for _, set := range sets[1:] {
		if len(result) == 0 {
			return nil
		}
		result = Intersect(result, set)
	}
	return result
}

// Slots enumerates candidate start spans of the given duration walking
// each free span at the given step. A candidate is emitted only when
// the full duration fits inside one free span.
func Slots(free []Span, step, duration int) []Span {
	if step <= 0 || duration <= 0 {
		return nil
	}

	var slots []Span
	for _, s := range Merge(free) {
		for start := s.Start; start+duration <= s.End; start += step {
			slots = append(slots, Span{Start: start, End: start + duration})
		}
	}
	return slots
}

// Covers reports whether the candidate lies entirely inside one of the
// merged spans.
func Covers(set []Span, candidate Span) bool {
	for _, s := range Merge(set) {
		if s.Contains(candidate) {
			return true
		}
	}
	return false
}

// Total returns the summed duration of the merged spans in minutes.
func Total(spans []Span) int {
	sum := 0
	for _, s := range Merge(spans) {
		sum += s.Duration()
	}
	return sum
}
