package matchindex

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/logviewer-mcp/pkg/types"
)

func m(start, end int) types.Match { return types.Match{Start: start, End: end} }

func TestCompute_LiteralCaseInsensitive(t *testing.T) {
	idx := New(nil)
	text := "alpha\nbeta\nalpha\n"

	got, err := idx.Compute(text, "alpha", false, types.Normal)
	require.NoError(t, err)
	assert.Equal(t, []types.Match{m(0, 5), m(11, 16)}, got)

	again, err := idx.Compute(text, "alpha", false, types.Normal)
	require.NoError(t, err)
	assert.Equal(t, got, again, "compute is idempotent")
}

func TestCompute_LiteralMatchesEveryCaseFoldedOccurrence(t *testing.T) {
	idx := New(nil)
	texts := []string{
		"",
		"aaaa",
		"Foo foo FOO fOo",
		"a.b a.b axb",
		"no hits here",
		"ÉCOLE école",
	}
	terms := []string{"aa", "foo", "a.b", "x", "école"}

	for _, text := range texts {
		for _, term := range terms {
			got, err := idx.Compute(text, term, false, types.Normal)
			require.NoError(t, err)
			assert.Equal(t, naiveFold(text, term), got, "text=%q term=%q", text, term)
		}
	}
}

// naiveFold finds non-overlapping case-insensitive occurrences rune by rune.
func naiveFold(text, term string) []types.Match {
	tr := []rune(text)
	nr := []rune(term)
	out := []types.Match{}
	for i := 0; i+len(nr) <= len(tr); {
		if strings.EqualFold(string(tr[i:i+len(nr)]), term) {
			out = append(out, m(i, i+len(nr)))
			i += len(nr)
			continue
		}
		i++
	}
	return out
}

func TestCompute_CaseSensitive(t *testing.T) {
	idx := New(nil)
	got, err := idx.Compute("Error error ERROR", "error", true, types.Normal)
	require.NoError(t, err)
	assert.Equal(t, []types.Match{m(6, 11)}, got)
}

func TestCompute_LiteralEscapesMetacharacters(t *testing.T) {
	idx := New(nil)
	got, err := idx.Compute("a+b aab [x]", "a+b", false, types.Normal)
	require.NoError(t, err)
	assert.Equal(t, []types.Match{m(0, 3)}, got)

	got, err = idx.Compute("a+b aab [x]", "[x]", false, types.Normal)
	require.NoError(t, err)
	assert.Equal(t, []types.Match{m(8, 11)}, got)
}

func TestCompute_Regex(t *testing.T) {
	idx := New(nil)
	got, err := idx.Compute("id=12 id=345 id=x", `id=\d+`, false, types.RegularExpression)
	require.NoError(t, err)
	assert.Equal(t, []types.Match{m(0, 5), m(6, 12)}, got)
}

func TestCompute_InvalidPattern(t *testing.T) {
	idx := New(nil)
	_, err := idx.Compute("text", "[unterminated", false, types.RegularExpression)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrInvalidPattern))

	var ipe *types.InvalidPatternError
	require.ErrorAs(t, err, &ipe)
	assert.Equal(t, "[unterminated", ipe.Pattern)
	assert.Contains(t, ipe.Message, "missing closing ]")
}

func TestCompute_InvalidPatternIsFineAsLiteral(t *testing.T) {
	idx := New(nil)
	got, err := idx.Compute("x [unterminated", "[unterminated", false, types.Normal)
	require.NoError(t, err)
	assert.Equal(t, []types.Match{m(2, 15)}, got)
}

func TestCompute_ZeroWidthMatchesDropped(t *testing.T) {
	idx := New(nil)
	got, err := idx.Compute("baaab", "a*", false, types.RegularExpression)
	require.NoError(t, err)
	assert.Equal(t, []types.Match{m(1, 4)}, got)

	got, err = idx.Compute("abc", "", false, types.Normal)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCompute_EmptyText(t *testing.T) {
	idx := New(nil)
	got, err := idx.Compute("", "x", false, types.Normal)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCompute_RuneOffsets(t *testing.T) {
	idx := New(nil)
	got, err := idx.Compute("ünï ünï", "ünï", true, types.Normal)
	require.NoError(t, err)
	assert.Equal(t, []types.Match{m(0, 3), m(4, 7)}, got)
}

func TestNavigate_Scenario(t *testing.T) {
	matches := []types.Match{m(0, 5), m(11, 16)}

	cur, out := Navigate(matches, -1, 0, types.Forward, true)
	assert.Equal(t, 0, cur)
	assert.Equal(t, types.Found, out)

	// The caret follows the selected match.
	cur, out = Navigate(matches, cur, matches[cur].Start, types.Forward, true)
	assert.Equal(t, 1, cur)
	assert.Equal(t, types.Found, out)

	cur, out = Navigate(matches, cur, matches[cur].Start, types.Forward, true)
	assert.Equal(t, 0, cur)
	assert.Equal(t, types.Wrapped, out)
}

func TestNavigate_ForwardFromUnanchoredAlwaysSelects(t *testing.T) {
	matches := []types.Match{m(3, 5), m(10, 12), m(20, 25)}
	for caret := 0; caret <= 30; caret++ {
		_, out := Navigate(matches, -1, caret, types.Forward, true)
		assert.True(t, out == types.Found || out == types.Wrapped, "caret %d", caret)
	}
}

func TestNavigate_WrapAndBoundaries(t *testing.T) {
	matches := []types.Match{m(0, 2), m(5, 7), m(9, 11)}
	last := len(matches) - 1
	end := 12

	cur, out := Navigate(matches, last, end, types.Forward, true)
	assert.Equal(t, 0, cur)
	assert.Equal(t, types.Wrapped, out)

	cur, out = Navigate(matches, 0, 0, types.Backward, true)
	assert.Equal(t, last, cur)
	assert.Equal(t, types.Wrapped, out)

	cur, out = Navigate(matches, last, end, types.Forward, false)
	assert.Equal(t, last, cur)
	assert.Equal(t, types.EndReached, out)

	cur, out = Navigate(matches, 0, 0, types.Backward, false)
	assert.Equal(t, 0, cur)
	assert.Equal(t, types.EndReached, out)
}

func TestNavigate_Backward(t *testing.T) {
	matches := []types.Match{m(0, 4), m(10, 14), m(20, 24)}

	tests := []struct {
		name   string
		cursor int
		caret  int
		want   int
		out    types.Outcome
	}{
		{"unanchored after last", -1, 30, 2, types.Found},
		{"unanchored between", -1, 15, 1, types.Found},
		{"caret inside match skips it", -1, 12, 0, types.Found},
		{"caret at match start skips it", -1, 10, 0, types.Found},
		{"anchored steps before cursor", 2, 20, 1, types.Found},
		{"before first wraps", -1, 0, 2, types.Wrapped},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur, out := Navigate(matches, tt.cursor, tt.caret, types.Backward, true)
			assert.Equal(t, tt.want, cur)
			assert.Equal(t, tt.out, out)
		})
	}
}

func TestNavigate_ForwardHonorsCaretAfterManualMove(t *testing.T) {
	matches := []types.Match{m(0, 4), m(10, 14), m(20, 24), m(30, 34)}

	// Cursor on the first match, caret moved by hand past the third.
	cur, out := Navigate(matches, 0, 25, types.Forward, true)
	assert.Equal(t, 3, cur)
	assert.Equal(t, types.Found, out)
}

func TestNavigate_NoMatches(t *testing.T) {
	cur, out := Navigate(nil, 4, 0, types.Forward, true)
	assert.Equal(t, 4, cur)
	assert.Equal(t, types.NoMatches, out)

	cur, out = Step(nil, -1, types.Backward, true)
	assert.Equal(t, -1, cur)
	assert.Equal(t, types.NoMatches, out)
}

func TestStep(t *testing.T) {
	matches := []types.Match{m(0, 1), m(2, 3), m(4, 5)}

	tests := []struct {
		name   string
		cursor int
		dir    types.Direction
		wrap   bool
		want   int
		out    types.Outcome
	}{
		{"unanchored forward", -1, types.Forward, true, 0, types.Found},
		{"unanchored backward", -1, types.Backward, true, 2, types.Found},
		{"forward", 0, types.Forward, true, 1, types.Found},
		{"forward wraps", 2, types.Forward, true, 0, types.Wrapped},
		{"forward clamps", 2, types.Forward, false, 2, types.EndReached},
		{"backward", 2, types.Backward, false, 1, types.Found},
		{"backward wraps", 0, types.Backward, true, 2, types.Wrapped},
		{"backward clamps", 0, types.Backward, false, 0, types.EndReached},
		{"stale cursor resets", 9, types.Forward, false, 0, types.Found},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur, out := Step(matches, tt.cursor, tt.dir, tt.wrap)
			assert.Equal(t, tt.want, cur)
			assert.Equal(t, tt.out, out)
		})
	}
}

func TestIndex_CachesCompiledPatterns(t *testing.T) {
	idx := New(nil)
	a, err := idx.Compile("x+", false, types.RegularExpression)
	require.NoError(t, err)
	b, err := idx.Compile("x+", false, types.RegularExpression)
	require.NoError(t, err)
	assert.Same(t, a, b)

	c, err := idx.Compile("x+", true, types.RegularExpression)
	require.NoError(t, err)
	assert.NotSame(t, a, c)
}
