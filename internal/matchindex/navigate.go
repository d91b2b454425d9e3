package matchindex

import "github.com/usestring/logviewer-mcp/pkg/types"

// Navigate picks the next match relative to the caret.
//
// Forward selects the first match starting at or after caret, searching from
// the match after cursor (or from the first match when cursor is -1).
// Backward selects the last match starting before caret, searching from the
// match before cursor (or from the last match); a caret inside a match counts
// from that match's start so the containing match is skipped.
//
// When nothing qualifies the cursor wraps to the opposite end, or, without
// wrap, rests on the boundary index with EndReached.
func Navigate(matches []types.Match, cursor, caret int, dir types.Direction, wrap bool) (int, types.Outcome) {
	n := len(matches)
	if n == 0 {
		return cursor, types.NoMatches
	}

	if dir == types.Forward {
		from := 0
		if cursor != -1 {
			from = cursor + 1
		}
		for i := max(from, 0); i < n; i++ {
			if matches[i].Start >= caret {
				return i, types.Found
			}
		}
		if wrap {
			return 0, types.Wrapped
		}
		return n - 1, types.EndReached
	}

	bound := caret
	if c := containing(matches, caret); c != -1 {
		bound = matches[c].Start
	}
	from := n - 1
	if cursor != -1 {
		from = cursor - 1
	}
	for i := min(from, n-1); i >= 0; i-- {
		if matches[i].Start < bound {
			return i, types.Found
		}
	}
	if wrap {
		return n - 1, types.Wrapped
	}
	return 0, types.EndReached
}

// Step moves the cursor one match without looking at the caret. A cursor of -1
// moves to the first (forward) or last (backward) match.
func Step(matches []types.Match, cursor int, dir types.Direction, wrap bool) (int, types.Outcome) {
	return step(len(matches), cursor, dir, wrap, types.NoMatches)
}

// StepN is Step over a list of n elements reporting empty as the given outcome.
// Bookmark navigation shares it.
func StepN(n, cursor int, dir types.Direction, wrap bool, empty types.Outcome) (int, types.Outcome) {
	return step(n, cursor, dir, wrap, empty)
}

func step(n, cursor int, dir types.Direction, wrap bool, empty types.Outcome) (int, types.Outcome) {
	if n == 0 {
		return cursor, empty
	}
	if cursor < -1 || cursor >= n {
		cursor = -1
	}

	if dir == types.Forward {
		next := cursor + 1
		if next < n {
			return next, types.Found
		}
		if wrap {
			return 0, types.Wrapped
		}
		return n - 1, types.EndReached
	}

	if cursor == -1 {
		return n - 1, types.Found
	}
	prev := cursor - 1
	if prev >= 0 {
		return prev, types.Found
	}
	if wrap {
		return n - 1, types.Wrapped
	}
	return 0, types.EndReached
}

// containing returns the index of the match holding offset, or -1.
func containing(matches []types.Match, offset int) int {
	for i, m := range matches {
		if m.Start > offset {
			break
		}
		if m.Contains(offset) {
			return i
		}
	}
	return -1
}
