// Package textpos maps offsets in a text snapshot onto lines.
//
// All offsets are rune (code point) offsets, the unit the text source reports
// its caret in. Byte offsets produced by regexp are converted with RuneSpans.
package textpos

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/usestring/logviewer-mcp/pkg/types"
)

// RuneSpans converts ascending, non-overlapping [start, end) byte spans of text
// into rune spans. It walks text once.
func RuneSpans(text string, byteSpans [][]int) []types.Match {
	out := make([]types.Match, 0, len(byteSpans))
	bytePos, runePos := 0, 0
	advance := func(to int) {
		for bytePos < to {
			_, size := utf8.DecodeRuneInString(text[bytePos:])
			bytePos += size
			runePos++
		}
	}
	for _, sp := range byteSpans {
		advance(sp[0])
		start := runePos
		advance(sp[1])
		out = append(out, types.Match{Start: start, End: runePos})
	}
	return out
}

// Lines indexes line starts of a snapshot.
type Lines struct {
	runes  []rune
	starts []int // rune offset of each line start; starts[0] == 0
}

// NewLines builds a line index for text.
func NewLines(text string) *Lines {
	runes := []rune(text)
	starts := []int{0}
	for i, r := range runes {
		if r == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Lines{runes: runes, starts: starts}
}

// Len returns the snapshot length in runes.
func (l *Lines) Len() int { return len(l.runes) }

// Count returns the number of lines.
func (l *Lines) Count() int { return len(l.starts) }

// LineOf returns the 0-based line holding offset. Offsets past the end map to
// the last line.
func (l *Lines) LineOf(offset int) int {
	if offset <= 0 {
		return 0
	}
	// First start greater than offset, minus one.
	return sort.SearchInts(l.starts, offset+1) - 1
}

// SpanLine returns the 1-based line number of a span's start and the trimmed
// text from the start of that line to the end of the line the span ends on.
func (l *Lines) SpanLine(start, end int) (int, string) {
	start = clamp(start, 0, len(l.runes))
	end = clamp(end, start, len(l.runes))
	line := l.LineOf(start)
	from := l.starts[line]
	to := len(l.runes)
	for i := end; i < len(l.runes); i++ {
		if l.runes[i] == '\n' {
			to = i
			break
		}
	}
	return line + 1, strings.TrimSpace(string(l.runes[from:to]))
}

// Text returns 0-based line i without its newline, or "" when out of range.
func (l *Lines) Text(i int) string {
	if i < 0 || i >= len(l.starts) {
		return ""
	}
	to := len(l.runes)
	if i+1 < len(l.starts) {
		to = l.starts[i+1] - 1
	}
	return string(l.runes[l.starts[i]:to])
}

// LineSet returns the set of 0-based lines on which a span starts.
func (l *Lines) LineSet(spans []types.Match) *roaring.Bitmap {
	bm := roaring.New()
	for _, sp := range spans {
		bm.Add(uint32(l.LineOf(sp.Start)))
	}
	return bm
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
