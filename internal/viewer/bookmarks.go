package viewer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/usestring/logviewer-mcp/internal/bookmark"
	"github.com/usestring/logviewer-mcp/internal/dispatch"
	"github.com/usestring/logviewer-mcp/internal/textpos"
	"github.com/usestring/logviewer-mcp/pkg/types"
)

// BookmarkResult describes a bookmark command.
type BookmarkResult struct {
	Outcome  types.Outcome  `json:"-"`
	Ordinal  int            `json:"ordinal,omitempty"`
	Bookmark types.Bookmark `json:"bookmark"`
	Line     int            `json:"line,omitempty"`
	// Index is the position of the bookmark in the sorted list, -1 if none.
	Index int `json:"index"`
	Total int `json:"total"`
}

// BookmarkLine is one bookmark with the line it sits on.
type BookmarkLine struct {
	types.Bookmark
	Line    int  `json:"line"`
	Current bool `json:"current,omitempty"`
}

// InsertBookmark appends the next bookmark marker to the log. It fails with
// ErrConflictingApp, without touching the counter, when the focused
// application owns the gesture.
func (v *Viewer) InsertBookmark(ctx context.Context, f Focus) (BookmarkResult, error) {
	if v.conflicting(f) {
		return BookmarkResult{}, types.ErrConflictingApp
	}
	if v.cfg.Appender == nil {
		v.announce(ctx, msgInsertFailed)
		return BookmarkResult{}, fmt.Errorf("%w: log is not writable", types.ErrSourceUnavailable)
	}

	n, err := v.cfg.Counter.Next()
	if err != nil {
		v.logger.Warn("failed to save bookmark count", slog.String("error", err.Error()))
	}
	if err := v.cfg.Appender.AppendText(bookmark.Marker(n)); err != nil {
		v.announce(ctx, msgInsertFailed)
		return BookmarkResult{}, fmt.Errorf("%w: %w", types.ErrSourceUnavailable, err)
	}
	v.announce(ctx, bookmarkMessage(n))
	v.logger.Info("bookmark inserted", slog.Int("ordinal", n))
	return BookmarkResult{Outcome: types.Found, Ordinal: n, Index: -1}, nil
}

// NextBookmark moves to the next bookmark.
func (v *Viewer) NextBookmark(ctx context.Context, f Focus) (BookmarkResult, error) {
	return v.jumpBookmark(ctx, f, types.Forward)
}

// PreviousBookmark moves to the previous bookmark.
func (v *Viewer) PreviousBookmark(ctx context.Context, f Focus) (BookmarkResult, error) {
	return v.jumpBookmark(ctx, f, types.Backward)
}

func (v *Viewer) jumpBookmark(ctx context.Context, f Focus, dir types.Direction) (BookmarkResult, error) {
	if err := v.checkFocus(f); err != nil {
		return BookmarkResult{}, err
	}
	text, err := v.refreshBookmarks(ctx)
	if err != nil {
		return BookmarkResult{}, err
	}
	caret, err := v.caret(ctx)
	if err != nil {
		return BookmarkResult{}, err
	}

	wrap := true
	if v.cfg.Options != nil {
		wrap = v.cfg.Options.SearchOptions().Wrap
	}
	b, outcome := v.cfg.Bookmarks.Move(caret, dir, wrap, v.cfg.BookmarkPolicy)
	out := BookmarkResult{
		Outcome: outcome,
		Index:   v.cfg.Bookmarks.Cursor(),
		Total:   len(v.cfg.Bookmarks.Bookmarks()),
	}

	switch outcome {
	case types.NoBookmarks:
		v.announce(ctx, msgNoBookmarks)
		return out, nil
	case types.EndReached:
		v.announce(ctx, endMessage(dir, "bookmark"))
		return out, nil
	case types.Wrapped:
		v.announce(ctx, wrapMessage(dir, "bookmark"))
	}

	out.Bookmark = b
	out.Ordinal = b.Ordinal
	out.Line = textpos.NewLines(text).LineOf(b.Start) + 1
	v.move(ctx, dispatch.Move{Start: b.Start, End: b.Start, Message: bookmarkMessage(b.Ordinal)}, msgBookmarkFailed)
	return out, nil
}

// ListBookmarks returns every bookmark in the log with its line number.
func (v *Viewer) ListBookmarks(ctx context.Context) ([]BookmarkLine, error) {
	text, err := v.cfg.Source.FullText()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrSourceUnavailable, err)
	}
	marks := v.cfg.Bookmarks.Refresh(text, v.cfg.Now())
	cursor := v.cfg.Bookmarks.Cursor()
	lines := textpos.NewLines(text)

	out := make([]BookmarkLine, len(marks))
	for i, b := range marks {
		out[i] = BookmarkLine{Bookmark: b, Line: lines.LineOf(b.Start) + 1, Current: i == cursor}
	}
	return out, nil
}

// refreshBookmarks rescans the log, announcing when it cannot be read or is empty.
func (v *Viewer) refreshBookmarks(ctx context.Context) (string, error) {
	text, err := v.cfg.Source.FullText()
	if err != nil {
		v.announce(ctx, msgNotAccessible)
		return "", fmt.Errorf("%w: %w", types.ErrSourceUnavailable, err)
	}
	if strings.TrimSpace(text) == "" {
		v.cfg.Bookmarks.Refresh(text, v.cfg.Now())
		v.announce(ctx, msgEmptyLog)
		return "", types.ErrEmptyText
	}
	v.cfg.Bookmarks.Refresh(text, v.cfg.Now())
	return text, nil
}
