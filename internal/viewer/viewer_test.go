package viewer

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/logviewer-mcp/internal/bookmark"
	"github.com/usestring/logviewer-mcp/internal/dispatch"
	"github.com/usestring/logviewer-mcp/internal/history"
	"github.com/usestring/logviewer-mcp/internal/notify"
	"github.com/usestring/logviewer-mcp/internal/session"
	"github.com/usestring/logviewer-mcp/internal/settings"
	"github.com/usestring/logviewer-mcp/internal/textsource"
	"github.com/usestring/logviewer-mcp/pkg/types"
)

type harness struct {
	v        *Viewer
	src      *textsource.Buffer
	sink     *notify.Buffer
	queue    *dispatch.Queue
	settings *settings.Store
}

func newHarness(t *testing.T, text string, mutate func(*Config)) *harness {
	t.Helper()
	store, err := settings.Open("", nil)
	require.NoError(t, err)

	h := &harness{
		src:      textsource.NewBuffer(text),
		sink:     notify.NewBuffer(),
		queue:    dispatch.New(0, nil),
		settings: store,
	}
	cfg := Config{
		Source:    h.src,
		Detector:  textsource.HandleDetector("viewer"),
		Options:   store,
		History:   history.New(store),
		Counter:   bookmark.NewCounter(store),
		Bookmarks: bookmark.NewIndex(time.Millisecond),
		Queue:     h.queue,
		Sink:      h.sink,
		QuickStep: true,
		Now:       func() time.Time { return time.Unix(100, 0) },
	}
	if mutate != nil {
		mutate(&cfg)
	}
	h.v, err = New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = h.queue.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
	return h
}

// said flushes the queue and returns everything announced since the last call.
func (h *harness) said(t *testing.T) []string {
	t.Helper()
	require.NoError(t, h.queue.Flush(context.Background()))
	return h.sink.Take()
}

var inViewer = Focus{Handle: "viewer"}

func alphaSearch() SearchRequest {
	return SearchRequest{Term: "alpha", Wrap: true}
}

func TestSearch_DialogFlow(t *testing.T) {
	h := newHarness(t, "alpha\nbeta\nalpha\n", nil)
	ctx := context.Background()

	res, err := h.v.Search(ctx, inViewer, alphaSearch())
	require.NoError(t, err)
	assert.Equal(t, types.Found, res.Outcome)
	assert.Equal(t, 0, res.Index)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, uint64(2), res.MatchedLines)
	assert.Equal(t, 1, res.Line)
	assert.Equal(t, []string{"> Line 1: alpha", "  Line 3: alpha"}, res.Context)
	assert.Equal(t, []string{"Found 2 matches.", "Line 1: alpha"}, h.said(t))
	assert.Equal(t, textsource.Selection{Start: 0, End: 5}, h.src.Selection())

	res, err = h.v.Search(ctx, inViewer, alphaSearch())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Index)
	assert.Equal(t, []string{"Found 2 matches.", "Line 3: alpha"}, h.said(t))
	assert.Equal(t, textsource.Selection{Start: 11, End: 16}, h.src.Selection())

	res, err = h.v.Search(ctx, inViewer, alphaSearch())
	require.NoError(t, err)
	assert.Equal(t, types.Wrapped, res.Outcome)
	assert.Equal(t, []string{"Wrapping to first match", "Found 2 matches.", "Line 1: alpha"}, h.said(t))

	assert.Equal(t, []string{"alpha"}, h.v.History())
	assert.True(t, h.v.DialogOpen())
	assert.True(t, h.settings.SearchOptions().Wrap)
}

func TestSearch_NoWrapEnd(t *testing.T) {
	h := newHarness(t, "alpha\nbeta\n", nil)
	ctx := context.Background()
	req := SearchRequest{Term: "alpha"}

	_, err := h.v.Search(ctx, inViewer, req)
	require.NoError(t, err)
	h.said(t)

	res, err := h.v.Search(ctx, inViewer, req)
	require.NoError(t, err)
	assert.Equal(t, types.EndReached, res.Outcome)
	assert.Equal(t, []string{"Reached end of matches"}, h.said(t))

	req.Direction = types.Backward
	res, err = h.v.Search(ctx, inViewer, req)
	require.NoError(t, err)
	assert.Equal(t, types.EndReached, res.Outcome)
	assert.Equal(t, []string{"Already at first match"}, h.said(t))
}

func TestSearch_Failures(t *testing.T) {
	tests := []struct {
		name string
		text string
		req  SearchRequest
		err  error
		msg  string
	}{
		{"empty term", "log", SearchRequest{Term: "  "}, types.ErrEmptyTerm, "Search term cannot be empty"},
		{"empty log", "\n \n", alphaSearch(), types.ErrEmptyText, "Log is empty"},
		{"invalid regex", "log", SearchRequest{Term: "[unterminated", Type: types.RegularExpression}, types.ErrInvalidPattern, "Invalid regular expression: "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.text, nil)
			_, err := h.v.Search(context.Background(), inViewer, tt.req)
			require.ErrorIs(t, err, tt.err)

			said := h.said(t)
			require.Len(t, said, 1)
			assert.True(t, strings.HasPrefix(said[0], tt.msg), said[0])
		})
	}
}

func TestSearch_NoMatches(t *testing.T) {
	h := newHarness(t, "beta\n", nil)
	res, err := h.v.Search(context.Background(), inViewer, alphaSearch())
	require.NoError(t, err)
	assert.Equal(t, types.NoMatches, res.Outcome)
	assert.Equal(t, -1, res.Index)
	assert.Equal(t, []string{"No matches found"}, h.said(t))
}

func TestSearch_FindAndFocusClosesDialog(t *testing.T) {
	h := newHarness(t, "alpha\n", nil)
	req := alphaSearch()
	req.FocusLog = true

	res, err := h.v.Search(context.Background(), inViewer, req)
	require.NoError(t, err)
	assert.True(t, res.DialogClosed)
	assert.False(t, h.v.DialogOpen())

	h.said(t)
	assert.True(t, h.src.Focused())
}

func TestOpenSearch_ReusesDialog(t *testing.T) {
	h := newHarness(t, "alpha\n", nil)
	require.NoError(t, h.v.cfg.History.Append("beta"))

	d, err := h.v.OpenSearch(inViewer)
	require.NoError(t, err)
	assert.False(t, d.Reused)
	assert.Equal(t, "beta", d.Term)
	assert.True(t, d.Wrap)
	assert.Equal(t, "NORMAL", d.SearchType)
	assert.Equal(t, []string{"normal", "regular expression"}, d.SearchTypes)

	d, err = h.v.OpenSearch(inViewer)
	require.NoError(t, err)
	assert.True(t, d.Reused)

	assert.True(t, h.v.CloseSearch())
	assert.False(t, h.v.CloseSearch())

	_, err = h.v.OpenSearch(Focus{Handle: "notepad"})
	assert.ErrorIs(t, err, types.ErrNotLogViewer)
}

func TestFindNext_StepsAfterDialogSearch(t *testing.T) {
	h := newHarness(t, "alpha\nbeta\nalpha\n", nil)
	ctx := context.Background()

	_, err := h.v.Search(ctx, inViewer, alphaSearch())
	require.NoError(t, err)
	h.said(t)

	res, err := h.v.FindNext(ctx, inViewer)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Index)
	assert.Equal(t, []string{"alpha 2 of 2"}, h.said(t))

	res, err = h.v.FindNext(ctx, inViewer)
	require.NoError(t, err)
	assert.Equal(t, types.Wrapped, res.Outcome)
	assert.Equal(t, []string{"Wrapping to first match", "alpha 1 of 2"}, h.said(t))

	res, err = h.v.FindPrevious(ctx, inViewer)
	require.NoError(t, err)
	assert.Equal(t, types.Wrapped, res.Outcome)
	assert.Equal(t, []string{"Wrapping to last match", "alpha 2 of 2"}, h.said(t))
}

func TestFindNext_AnnouncesTotalOnlyAfterRecompute(t *testing.T) {
	h := newHarness(t, "alpha\nbeta\nalpha\n", nil)
	ctx := context.Background()

	_, err := h.v.Search(ctx, inViewer, alphaSearch())
	require.NoError(t, err)
	h.said(t)

	_, err = h.v.FindNext(ctx, inViewer)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha 2 of 2"}, h.said(t))

	require.NoError(t, h.src.AppendText("alpha\n"))
	res, err := h.v.FindNext(ctx, inViewer)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	said := h.said(t)
	require.Len(t, said, 2)
	assert.Equal(t, "Found 3 matches.", said[0])
}

func TestFindNext_CaretRelativeWhenConfigured(t *testing.T) {
	h := newHarness(t, "alpha alpha alpha", func(c *Config) { c.QuickStep = false })
	ctx := context.Background()

	_, err := h.v.Search(ctx, inViewer, alphaSearch())
	require.NoError(t, err)
	h.said(t)

	require.NoError(t, h.v.SetCaret(7))
	res, err := h.v.FindNext(ctx, inViewer)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Index)
	assert.Equal(t, []string{"alpha 3 of 3"}, h.said(t))
}

func TestFindNext_Errors(t *testing.T) {
	h := newHarness(t, "alpha\n", nil)
	ctx := context.Background()

	_, err := h.v.FindNext(ctx, inViewer)
	assert.ErrorIs(t, err, types.ErrNoPreviousSearch)
	assert.Equal(t, []string{"No search has been performed yet or search term is empty."}, h.said(t))

	_, err = h.v.FindNext(ctx, Focus{Handle: "other"})
	assert.ErrorIs(t, err, types.ErrNotLogViewer)
	assert.Empty(t, h.said(t))
}

func TestInsertBookmark(t *testing.T) {
	h := newHarness(t, "start\n", func(c *Config) { c.ConflictingApps = []string{"notepad++"} })
	ctx := context.Background()

	res, err := h.v.InsertBookmark(ctx, Focus{App: "explorer.exe"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Ordinal)
	assert.Equal(t, []string{"Bookmark 1"}, h.said(t))

	text, _ := h.src.FullText()
	assert.Equal(t, "start\n\nBOOKMARK 1\n", text)
	assert.Equal(t, 2, h.settings.BookmarkCount())

	_, err = h.v.InsertBookmark(ctx, Focus{App: "Notepad++.exe"})
	assert.ErrorIs(t, err, types.ErrConflictingApp)
	assert.Equal(t, 2, h.v.cfg.Counter.Peek())
	assert.Empty(t, h.said(t))
}

func TestBookmarkNavigation(t *testing.T) {
	text := "a\n" + bookmark.Marker(1) + "b\n" + bookmark.Marker(2)
	h := newHarness(t, text, nil)
	ctx := context.Background()

	res, err := h.v.NextBookmark(ctx, inViewer)
	require.NoError(t, err)
	assert.Equal(t, types.Found, res.Outcome)
	assert.Equal(t, 1, res.Ordinal)
	assert.Equal(t, 3, res.Line)
	assert.Equal(t, []string{"Bookmark 1"}, h.said(t))
	caret, _ := h.src.Caret()
	assert.Equal(t, 3, caret)

	res, err = h.v.NextBookmark(ctx, inViewer)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Ordinal)
	assert.Equal(t, []string{"Bookmark 2"}, h.said(t))

	res, err = h.v.NextBookmark(ctx, inViewer)
	require.NoError(t, err)
	assert.Equal(t, types.Wrapped, res.Outcome)
	assert.Equal(t, []string{"Wrapping to first bookmark", "Bookmark 1"}, h.said(t))

	list, err := h.v.ListBookmarks(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 3, list[0].Line)
	assert.True(t, list[0].Current)
	assert.Equal(t, 6, list[1].Line)
}

func TestBookmarkNavigation_NoWrap(t *testing.T) {
	h := newHarness(t, "a\n"+bookmark.Marker(1), nil)
	require.NoError(t, h.settings.SaveSearchOptions(session.Options{Wrap: false}))
	ctx := context.Background()

	res, err := h.v.PreviousBookmark(ctx, inViewer)
	require.NoError(t, err)
	assert.Equal(t, types.EndReached, res.Outcome)
	assert.Equal(t, []string{"Already at first bookmark"}, h.said(t))

	require.NoError(t, h.v.SetCaret(20))
	res, err = h.v.NextBookmark(ctx, inViewer)
	require.NoError(t, err)
	assert.Equal(t, types.EndReached, res.Outcome)
	assert.Equal(t, []string{"Reached end of bookmarks"}, h.said(t))
}

func TestBookmarkNavigation_Empty(t *testing.T) {
	h := newHarness(t, "plain log\n", nil)
	res, err := h.v.NextBookmark(context.Background(), inViewer)
	require.NoError(t, err)
	assert.Equal(t, types.NoBookmarks, res.Outcome)
	assert.Equal(t, []string{"No bookmarks found"}, h.said(t))

	h.src.SetText("")
	_, err = h.v.NextBookmark(context.Background(), inViewer)
	assert.ErrorIs(t, err, types.ErrEmptyText)
	assert.Equal(t, []string{"Log is empty"}, h.said(t))
}

func TestReadLines(t *testing.T) {
	h := newHarness(t, "one\ntwo\nthree", nil)

	lines, total, err := h.v.ReadLines(2, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{"two", "three"}, lines)

	lines, _, err = h.v.ReadLines(3, 1)
	require.NoError(t, err)
	assert.Empty(t, lines)
}
