package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/logviewer-mcp/internal/cache"
	"github.com/usestring/logviewer-mcp/internal/matchindex"
	"github.com/usestring/logviewer-mcp/internal/textsource"
	"github.com/usestring/logviewer-mcp/pkg/types"
)

type memOptions struct {
	opts  Options
	saves int
}

func (m *memOptions) SearchOptions() Options { return m.opts }
func (m *memOptions) SaveSearchOptions(o Options) error {
	m.opts = o
	m.saves++
	return nil
}

type brokenSource struct{ textsource.Buffer }

func (*brokenSource) FullText() (string, error) { return "", errors.New("window gone") }

func alpha(wrap bool) types.SearchQuery {
	return types.SearchQuery{Term: "alpha", Wrap: wrap, Type: types.Normal}
}

func TestSubmit_AlphaScenario(t *testing.T) {
	src := textsource.NewBuffer("alpha\nbeta\nalpha\n")
	s := New(Config{Source: src})

	res, err := s.Submit(alpha(true), 0, types.Forward)
	require.NoError(t, err)
	assert.Equal(t, types.Found, res.Outcome)
	assert.Equal(t, types.Match{Start: 0, End: 5}, res.Match)
	assert.Equal(t, 2, res.Total)

	res, err = s.Submit(alpha(true), 0, types.Forward)
	require.NoError(t, err)
	assert.Equal(t, types.Found, res.Outcome)
	assert.Equal(t, types.Match{Start: 11, End: 16}, res.Match)
	assert.Equal(t, 1, res.Index)

	res, err = s.Submit(alpha(true), 0, types.Forward)
	require.NoError(t, err)
	assert.Equal(t, types.Wrapped, res.Outcome)
	assert.Equal(t, types.Match{Start: 0, End: 5}, res.Match)
	assert.Equal(t, Computed, s.State())
}

func TestSubmit_PersistsOptions(t *testing.T) {
	opts := &memOptions{}
	s := New(Config{Source: textsource.NewBuffer("x ALPHA"), Options: opts})

	q := types.SearchQuery{Term: "alpha", CaseSensitive: true, Wrap: false, Type: types.RegularExpression}
	res, err := s.Submit(q, 0, types.Forward)
	require.NoError(t, err)
	assert.Equal(t, types.NoMatches, res.Outcome)
	assert.Equal(t, Options{CaseSensitive: true, Wrap: false, Type: types.RegularExpression}, opts.opts)
	assert.Equal(t, 1, opts.saves)
}

func TestSubmit_InvalidPatternKeepsState(t *testing.T) {
	s := New(Config{Source: textsource.NewBuffer("alpha\nbeta\nalpha\n")})
	_, err := s.Submit(alpha(true), 0, types.Forward)
	require.NoError(t, err)
	before := s.Snapshot()

	bad := types.SearchQuery{Term: "[unterminated", Type: types.RegularExpression}
	_, err = s.Submit(bad, 0, types.Forward)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrInvalidPattern))

	var pe *types.InvalidPatternError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "[unterminated", pe.Pattern)

	assert.Equal(t, before, s.Snapshot())
	assert.Equal(t, Computed, s.State())
}

func TestSubmit_EmptyTextNeverComputes(t *testing.T) {
	patterns, err := cache.NewPatternCache(8)
	require.NoError(t, err)
	s := New(Config{Source: textsource.NewBuffer(" \n\t"), Index: matchindex.New(patterns)})

	_, err = s.Submit(alpha(true), 0, types.Forward)
	assert.ErrorIs(t, err, types.ErrEmptyText)
	assert.Equal(t, 0, patterns.Len())
	assert.Equal(t, Idle, s.State())
}

func TestSubmit_EmptyTerm(t *testing.T) {
	s := New(Config{Source: textsource.NewBuffer("text")})
	_, err := s.Submit(types.SearchQuery{}, 0, types.Forward)
	assert.ErrorIs(t, err, types.ErrEmptyTerm)
}

func TestSubmit_SourceUnavailable(t *testing.T) {
	s := New(Config{Source: &brokenSource{}})
	_, err := s.Submit(alpha(true), 0, types.Forward)
	assert.ErrorIs(t, err, types.ErrSourceUnavailable)
}

func TestClosedSessionFails(t *testing.T) {
	s := New(Config{Source: textsource.NewBuffer("alpha")})
	s.Close()

	_, err := s.Submit(alpha(true), 0, types.Forward)
	assert.ErrorIs(t, err, types.ErrSessionClosed)
	_, err = s.Repeat(0, types.Forward)
	assert.ErrorIs(t, err, types.ErrSessionClosed)
	assert.ErrorIs(t, s.Anchor(Snapshot{}), types.ErrSessionClosed)
	assert.Equal(t, Closed, s.State())
}

func TestSubmit_RecomputesWhenTextGrows(t *testing.T) {
	src := textsource.NewBuffer("alpha\n")
	s := New(Config{Source: src})

	res, err := s.Submit(alpha(false), 0, types.Forward)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)

	src.SetText("alpha\nalpha\n")
	res, err = s.Submit(alpha(false), 1, types.Forward)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, types.Found, res.Outcome)
	assert.Equal(t, types.Match{Start: 6, End: 11}, res.Match)
}

func TestSubmit_WrapChangeReusesMatches(t *testing.T) {
	src := textsource.NewBuffer("alpha\nbeta\nalpha\n")
	s := New(Config{Source: src})

	_, err := s.Submit(alpha(false), 0, types.Forward)
	require.NoError(t, err)
	_, err = s.Submit(alpha(false), 0, types.Forward)
	require.NoError(t, err)

	res, err := s.Submit(alpha(false), 0, types.Forward)
	require.NoError(t, err)
	assert.Equal(t, types.EndReached, res.Outcome)
	assert.Equal(t, 1, res.Index)

	// Toggling wrap keeps the cursor, so the next call wraps instead of restarting.
	res, err = s.Submit(alpha(true), 0, types.Forward)
	require.NoError(t, err)
	assert.Equal(t, types.Wrapped, res.Outcome)
	assert.Equal(t, 0, res.Index)
}

func TestRepeat_NoPreviousSearch(t *testing.T) {
	s := New(Config{Source: textsource.NewBuffer("alpha")})
	_, err := s.Repeat(0, types.Forward)
	assert.ErrorIs(t, err, types.ErrNoPreviousSearch)
}

func TestRepeat_StepsWhenAnchored(t *testing.T) {
	text := "alpha\nbeta\nalpha\n"
	opts := &memOptions{opts: Options{Wrap: true}}
	dialog := New(Config{Source: textsource.NewBuffer(text), Options: opts})
	quick := New(Config{Source: textsource.NewBuffer(text), Options: opts, StepWhenAnchored: true})

	_, err := dialog.Submit(alpha(true), 0, types.Forward)
	require.NoError(t, err)
	require.NoError(t, quick.Anchor(dialog.Snapshot()))
	saves := opts.saves

	// The caret is ignored once anchored.
	res, err := quick.Repeat(0, types.Forward)
	require.NoError(t, err)
	assert.Equal(t, types.Found, res.Outcome)
	assert.Equal(t, 1, res.Index)

	res, err = quick.Repeat(0, types.Forward)
	require.NoError(t, err)
	assert.Equal(t, types.Wrapped, res.Outcome)
	assert.Equal(t, 0, res.Index)

	assert.Equal(t, saves, opts.saves)
}

func TestRepeat_CaretRelative(t *testing.T) {
	opts := &memOptions{}
	s := New(Config{Source: textsource.NewBuffer("alpha alpha alpha"), Options: opts})

	res, err := s.Submit(alpha(false), 0, types.Forward)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Index)

	// The caret moved past the second match, so it is skipped.
	res, err = s.Repeat(7, types.Forward)
	require.NoError(t, err)
	assert.Equal(t, types.Found, res.Outcome)
	assert.Equal(t, 2, res.Index)
	assert.Equal(t, types.Match{Start: 12, End: 17}, res.Match)

	res, err = s.Repeat(0, types.Backward)
	require.NoError(t, err)
	assert.Equal(t, types.EndReached, res.Outcome)
	assert.Equal(t, 2, res.Index)
}

func TestRepeat_UsesPersistedOptions(t *testing.T) {
	opts := &memOptions{opts: Options{CaseSensitive: true, Wrap: true}}
	s := New(Config{Source: textsource.NewBuffer("Alpha alpha"), Options: opts})

	res, err := s.Submit(types.SearchQuery{Term: "alpha", Wrap: true}, 0, types.Forward)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)

	opts.opts = Options{CaseSensitive: true, Wrap: true}
	res, err = s.Repeat(0, types.Forward)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, types.Match{Start: 6, End: 11}, res.Match)
}
