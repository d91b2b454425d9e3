// Package textsource provides the text the log viewer shows and the caret
// inside it.
package textsource

import (
	"sync"
	"unicode/utf8"
)

// Source is the log viewer's text control. Offsets are rune offsets.
type Source interface {
	FullText() (string, error)
	Caret() (int, error)
	// SetSelection selects [start, end) and leaves the caret at start.
	SetSelection(start, end int) error
	// SetCaret moves the caret and collapses the selection.
	SetCaret(offset int) error
	Focus() error
	Focused() bool
}

// Appender is implemented by sources that can append to the underlying log.
type Appender interface {
	AppendText(text string) error
}

// Detector decides whether a window handle belongs to the log viewer.
type Detector interface {
	IsLogViewer(handle string) bool
}

// DetectorFunc adapts a function to Detector.
type DetectorFunc func(handle string) bool

// IsLogViewer calls f(handle).
func (f DetectorFunc) IsLogViewer(handle string) bool { return f(handle) }

// HandleDetector matches a single fixed handle.
func HandleDetector(viewer string) Detector {
	return DetectorFunc(func(handle string) bool { return handle == viewer })
}

// Selection is a [Start, End) range; Start == End is a collapsed caret.
type Selection struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// caretState is the caret/selection/focus part shared by the sources.
type caretState struct {
	mu      sync.Mutex
	sel     Selection
	focused bool
}

func (c *caretState) caret() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel.Start
}

func (c *caretState) selection() Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel
}

func (c *caretState) set(start, end, length int) {
	start = clamp(start, 0, length)
	end = clamp(end, start, length)
	c.mu.Lock()
	c.sel = Selection{Start: start, End: end}
	c.mu.Unlock()
}

func (c *caretState) setFocused(v bool) {
	c.mu.Lock()
	c.focused = v
	c.mu.Unlock()
}

func (c *caretState) isFocused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focused
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

func runeLen(s string) int { return utf8.RuneCountInString(s) }
