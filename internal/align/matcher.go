// Package align reattaches AI-produced text lines to the original
// timestamped segments they were derived from. Matching is exact on the
// normalized form of the text; a miss degrades to a zero-timestamp sentinel
// at the caller rather than failing the run.
package align

import (
	"github.com/jantznick/easy-song-sub001/internal/song"
	"github.com/jantznick/easy-song-sub001/internal/textnorm"
)

// Matcher indexes a fixed list of segments by normalized text.
//
// Duplicate policy: identical lines are consumed in original segment order.
// Each successful Match consumes one occurrence, so a repeated chorus line
// takes the next unconsumed segment instead of reusing the first timestamp.
// Once every occurrence is consumed, further matches fall back to the first
// occurrence so extra output lines still get a plausible timestamp.
type Matcher struct {
	segments []song.Segment
	index    map[string][]int // normalized text -> segment indices, ascending
	cursor   map[string]int   // normalized text -> next unconsumed offset
}

// NewMatcher builds a matcher over the given segments. The segment list is
// fixed for the run, so the index is built once.
func NewMatcher(segments []song.Segment) *Matcher {
	m := &Matcher{
		segments: segments,
		index:    make(map[string][]int, len(segments)),
		cursor:   make(map[string]int),
	}
	for i, seg := range segments {
		key := textnorm.Normalize(seg.Text)
		if key == "" {
			continue
		}
		m.index[key] = append(m.index[key], i)
	}
	return m
}

// Match returns the segment whose normalized text equals the candidate's,
// consuming one occurrence. The second return is false when no segment has
// that text; the caller substitutes the 0/0 sentinel.
func (m *Matcher) Match(text string) (song.Segment, bool) {
	key := textnorm.Normalize(text)
	indices, ok := m.index[key]
	if !ok || len(indices) == 0 {
		return song.Segment{}, false
	}
	at := m.cursor[key]
	if at >= len(indices) {
		// All occurrences consumed; reuse the first.
		return m.segments[indices[0]], true
	}
	m.cursor[key] = at + 1
	return m.segments[indices[at]], true
}

// Section returns a fresh matcher restricted to the segments whose text
// appears in the section's declared line list, so sections cannot
// cross-match each other's lines.
func (m *Matcher) Section(lines []string) *Matcher {
	wanted := make(map[string]bool, len(lines))
	for _, l := range lines {
		wanted[textnorm.Normalize(l)] = true
	}
	var subset []song.Segment
	for _, seg := range m.segments {
		if wanted[textnorm.Normalize(seg.Text)] {
			subset = append(subset, seg)
		}
	}
	return NewMatcher(subset)
}

// Envelope matches every line and returns the covering time range
// (min start, max end) over the lines that matched. ok is false when no
// line matched at all, in which case the caller uses the 0/0 sentinel.
func (m *Matcher) Envelope(lines []string) (startMs, endMs int64, ok bool) {
	for _, line := range lines {
		seg, found := m.Match(line)
		if !found {
			continue
		}
		if !ok || seg.StartMs < startMs {
			startMs = seg.StartMs
		}
		if !ok || seg.EndMs > endMs {
			endMs = seg.EndMs
		}
		ok = true
	}
	return startMs, endMs, ok
}
