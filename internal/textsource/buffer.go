package textsource

import "sync"

// Buffer is an in-memory Source.
type Buffer struct {
	caretState
	textMu sync.RWMutex
	text   string
}

// NewBuffer creates a Buffer holding text with the caret at 0.
func NewBuffer(text string) *Buffer {
	return &Buffer{text: text}
}

// FullText returns the current text.
func (b *Buffer) FullText() (string, error) {
	b.textMu.RLock()
	defer b.textMu.RUnlock()
	return b.text, nil
}

// SetText replaces the text. The caret is kept and clamped.
func (b *Buffer) SetText(text string) {
	b.textMu.Lock()
	b.text = text
	b.textMu.Unlock()
	sel := b.selection()
	b.set(sel.Start, sel.End, runeLen(text))
}

// AppendText appends to the text.
func (b *Buffer) AppendText(text string) error {
	b.textMu.Lock()
	b.text += text
	b.textMu.Unlock()
	return nil
}

// Caret returns the caret offset.
func (b *Buffer) Caret() (int, error) { return b.caret(), nil }

// Selection returns the current selection.
func (b *Buffer) Selection() Selection { return b.selection() }

// SetSelection selects [start, end).
func (b *Buffer) SetSelection(start, end int) error {
	text, _ := b.FullText()
	b.set(start, end, runeLen(text))
	return nil
}

// SetCaret moves the caret and collapses the selection.
func (b *Buffer) SetCaret(offset int) error {
	return b.SetSelection(offset, offset)
}

// Focus marks the buffer focused.
func (b *Buffer) Focus() error {
	b.setFocused(true)
	return nil
}

// Blur marks the buffer unfocused.
func (b *Buffer) Blur() { b.setFocused(false) }

// Focused reports whether Focus was called since the last Blur.
func (b *Buffer) Focused() bool { return b.isFocused() }
