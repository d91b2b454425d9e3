package bookmark

import (
	"fmt"
	"strings"

	"github.com/usestring/logviewer-mcp/internal/matchindex"
	"github.com/usestring/logviewer-mcp/pkg/types"
)

// Policy selects how the next bookmark is chosen.
type Policy int

const (
	// PolicyCaret navigates relative to the caret position.
	PolicyCaret Policy = iota
	// PolicyCursor steps the stored cursor and ignores the caret.
	PolicyCursor
)

func (p Policy) String() string {
	if p == PolicyCursor {
		return "cursor"
	}
	return "caret"
}

// ParsePolicy parses "caret" or "cursor". The empty string is PolicyCaret.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "caret":
		return PolicyCaret, nil
	case "cursor":
		return PolicyCursor, nil
	default:
		return PolicyCaret, fmt.Errorf("unknown bookmark navigation policy %q", s)
	}
}

// Navigate picks the next bookmark. Bookmarks must be sorted by Start.
//
// With PolicyCaret a caret inside a bookmark (Start <= caret <= End) moves
// relative to that bookmark: forward to the first one starting after its End,
// backward to the last one starting before its Start. Otherwise forward picks
// the first bookmark starting after the caret and backward the last one
// starting before it. With PolicyCursor the cursor is stepped.
//
// When nothing qualifies the result wraps to the opposite end, or returns
// EndReached with the boundary index: the last bookmark going forward, the
// first going backward.
func Navigate(bookmarks []types.Bookmark, cursor, caret int, dir types.Direction, wrap bool, policy Policy) (int, types.Outcome) {
	n := len(bookmarks)
	if n == 0 {
		return -1, types.NoBookmarks
	}
	if policy == PolicyCursor {
		return matchindex.StepN(n, cursor, dir, wrap, types.NoBookmarks)
	}

	on := -1
	for i, b := range bookmarks {
		if b.Contains(caret) {
			on = i
			break
		}
	}

	if dir == types.Forward {
		ref := caret
		if on != -1 {
			ref = bookmarks[on].End
		}
		if i := firstAfter(bookmarks, ref); i != -1 {
			return i, types.Found
		}
		if wrap {
			return 0, types.Wrapped
		}
		return n - 1, types.EndReached
	}

	ref := caret
	if on != -1 {
		ref = bookmarks[on].Start
	}
	if i := lastBefore(bookmarks, ref); i != -1 {
		return i, types.Found
	}
	if wrap {
		return n - 1, types.Wrapped
	}
	return 0, types.EndReached
}

func firstAfter(bookmarks []types.Bookmark, offset int) int {
	for i, b := range bookmarks {
		if b.Start > offset {
			return i
		}
	}
	return -1
}

func lastBefore(bookmarks []types.Bookmark, offset int) int {
	for i := len(bookmarks) - 1; i >= 0; i-- {
		if bookmarks[i].Start < offset {
			return i
		}
	}
	return -1
}
