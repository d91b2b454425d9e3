// Package history keeps the most-recently-used list of search terms.
package history

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/text/cases"
)

// MaxItems is the number of terms retained.
const MaxItems = 20

// Store persists the encoded history.
type Store interface {
	SearchHistory() string
	SetSearchHistory(encoded string) error
}

// History is a bounded, case-insensitively deduplicated term list, most recent first.
type History struct {
	mu    sync.Mutex
	store Store
	fold  cases.Caser
	terms []string
}

// New creates a History and loads the persisted terms from store.
// A nil store keeps the history in memory only.
func New(store Store) *History {
	h := &History{store: store, fold: cases.Fold()}
	h.load()
	return h
}

// load decodes the persisted list, keeping the first spelling of each term
// compared case-insensitively. Anything other than a JSON array of strings
// resets the history to empty.
func (h *History) load() {
	h.terms = []string{}
	if h.store == nil {
		return
	}
	raw := h.store.SearchHistory()
	if raw == "" {
		return
	}

	var terms []string
	if err := json.Unmarshal([]byte(raw), &terms); err != nil {
		slog.Error("corrupted search history, resetting to empty list",
			slog.String("error", err.Error()),
		)
		return
	}
	for _, term := range terms {
		if term == "" || h.indexOf(term) != -1 {
			continue
		}
		h.terms = append(h.terms, term)
		if len(h.terms) == MaxItems {
			break
		}
	}
}

// Items returns a copy of the terms, most recent first.
func (h *History) Items() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.terms))
	copy(out, h.terms)
	return out
}

// Find returns the stored spelling of text, compared case-insensitively.
func (h *History) Find(text string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if i := h.indexOf(text); i != -1 {
		return h.terms[i], true
	}
	return "", false
}

// Append moves term to the front, dropping any case-insensitive duplicate and
// the oldest entry beyond MaxItems, then persists the list. Empty terms are ignored.
func (h *History) Append(term string) error {
	if term == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if i := h.indexOf(term); i != -1 {
		h.terms = append(h.terms[:i], h.terms[i+1:]...)
	}
	h.terms = append([]string{term}, h.terms...)
	if len(h.terms) > MaxItems {
		h.terms = h.terms[:MaxItems]
	}
	if h.store == nil {
		return nil
	}
	encoded, err := json.Marshal(h.terms)
	if err != nil {
		return fmt.Errorf("encoding search history: %w", err)
	}
	// Saved under mu so concurrent appends reach the store in order.
	if err := h.store.SetSearchHistory(string(encoded)); err != nil {
		return fmt.Errorf("saving search history: %w", err)
	}
	return nil
}

// indexOf must be called with mu held.
func (h *History) indexOf(text string) int {
	key := h.fold.String(text)
	for i, t := range h.terms {
		if h.fold.String(t) == key {
			return i
		}
	}
	return -1
}
