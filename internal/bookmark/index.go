// Package bookmark finds BOOKMARK markers in the log text and navigates
// between them.
package bookmark

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/usestring/logviewer-mcp/internal/textpos"
	"github.com/usestring/logviewer-mcp/pkg/types"
)

// DefaultRefreshInterval is the minimum time between two rescans of a
// non-empty bookmark list.
const DefaultRefreshInterval = 100 * time.Millisecond

var markerPattern = regexp.MustCompile(`BOOKMARK\s+(\d+)`)

// Marker returns the text appended to the log for bookmark n.
func Marker(n int) string {
	return fmt.Sprintf("\nBOOKMARK %d\n", n)
}

// Scan returns every bookmark in text, sorted by start offset.
func Scan(text string) []types.Bookmark {
	found := markerPattern.FindAllStringSubmatchIndex(text, -1)
	if len(found) == 0 {
		return []types.Bookmark{}
	}

	spans := make([][]int, len(found))
	for i, m := range found {
		spans[i] = m[:2]
	}
	runes := textpos.RuneSpans(text, spans)

	out := make([]types.Bookmark, 0, len(found))
	for i, m := range found {
		ordinal, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil {
			// digits too long for an int
			continue
		}
		out = append(out, types.Bookmark{
			Start:   runes[i].Start,
			End:     runes[i].End,
			Ordinal: ordinal,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// Index caches the bookmarks of the most recent scan.
type Index struct {
	mu          sync.Mutex
	interval    time.Duration
	bookmarks   []types.Bookmark
	lastRefresh time.Time
	cursor      int
}

// NewIndex creates an Index that rescans at most once per interval while
// bookmarks exist. A non-positive interval uses DefaultRefreshInterval.
func NewIndex(interval time.Duration) *Index {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Index{interval: interval, cursor: -1}
}

// Refresh rescans text unless the last scan happened less than the refresh
// interval before now and found at least one bookmark.
func (x *Index) Refresh(text string, now time.Time) []types.Bookmark {
	x.mu.Lock()
	defer x.mu.Unlock()

	if len(x.bookmarks) > 0 && now.Sub(x.lastRefresh) < x.interval {
		return x.bookmarks
	}
	x.bookmarks = Scan(text)
	x.lastRefresh = now
	if x.cursor >= len(x.bookmarks) {
		x.cursor = -1
	}
	return x.bookmarks
}

// Bookmarks returns the cached list.
func (x *Index) Bookmarks() []types.Bookmark {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.bookmarks
}

// Move navigates from the stored cursor and stores the result. The returned
// bookmark is the zero value unless the outcome moved.
func (x *Index) Move(caret int, dir types.Direction, wrap bool, policy Policy) (types.Bookmark, types.Outcome) {
	x.mu.Lock()
	defer x.mu.Unlock()

	next, outcome := Navigate(x.bookmarks, x.cursor, caret, dir, wrap, policy)
	if outcome == types.NoBookmarks {
		x.cursor = -1
		return types.Bookmark{}, outcome
	}
	if !outcome.Moved() {
		return types.Bookmark{}, outcome
	}
	x.cursor = next
	return x.bookmarks[next], outcome
}

// Cursor returns the index of the last bookmark moved to, or -1.
func (x *Index) Cursor() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.cursor
}
