package textsource

import (
	"fmt"
	"os"
)

// LogFile is a Source backed by a log file on disk. Every FullText call
// rereads the file, so lines appended by the logger are always visible.
type LogFile struct {
	caretState
	path string
}

// NewLogFile creates a LogFile for path. The file does not need to exist yet.
func NewLogFile(path string) *LogFile {
	return &LogFile{path: path}
}

// Path returns the file path.
func (f *LogFile) Path() string { return f.path }

// FullText reads the whole file.
func (f *LogFile) FullText() (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", fmt.Errorf("reading log %s: %w", f.path, err)
	}
	return string(data), nil
}

// AppendText appends text to the file, creating it if needed.
func (f *LogFile) AppendText(text string) error {
	fh, err := os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening log %s: %w", f.path, err)
	}
	if _, err := fh.WriteString(text); err != nil {
		fh.Close()
		return fmt.Errorf("appending to log %s: %w", f.path, err)
	}
	return fh.Close()
}

// Caret returns the caret offset.
func (f *LogFile) Caret() (int, error) { return f.caret(), nil }

// Selection returns the current selection.
func (f *LogFile) Selection() Selection { return f.selection() }

// SetSelection selects [start, end), clamped to the current file length.
func (f *LogFile) SetSelection(start, end int) error {
	text, err := f.FullText()
	if err != nil {
		return err
	}
	f.set(start, end, runeLen(text))
	return nil
}

// SetCaret moves the caret and collapses the selection.
func (f *LogFile) SetCaret(offset int) error {
	return f.SetSelection(offset, offset)
}

// Focus marks the viewer focused.
func (f *LogFile) Focus() error {
	f.setFocused(true)
	return nil
}

// Focused reports whether the viewer has focus.
func (f *LogFile) Focused() bool { return f.isFocused() }
