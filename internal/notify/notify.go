// Package notify delivers user-facing status messages.
package notify

import (
	"log/slog"
	"sync"
)

// Sink receives announcements. Delivery is fire-and-forget.
type Sink interface {
	Announce(text string)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(text string)

// Announce calls f(text).
func (f SinkFunc) Announce(text string) { f(text) }

// LogSink writes announcements to the default slog logger.
type LogSink struct{}

// Announce logs text at info level.
func (LogSink) Announce(text string) {
	slog.Info("announce", slog.String("text", text))
}

// Buffer collects announcements until they are taken.
type Buffer struct {
	mu   sync.Mutex
	msgs []string
}

// NewBuffer creates an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Announce appends text.
func (b *Buffer) Announce(text string) {
	b.mu.Lock()
	b.msgs = append(b.msgs, text)
	b.mu.Unlock()
}

// Take returns the collected announcements and clears the buffer.
// The result is never nil.
func (b *Buffer) Take() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.msgs
	b.msgs = nil
	if out == nil {
		out = []string{}
	}
	return out
}

// Tee fans an announcement out to several sinks in order.
type Tee []Sink

// Announce forwards text to every sink.
func (t Tee) Announce(text string) {
	for _, s := range t {
		s.Announce(text)
	}
}
