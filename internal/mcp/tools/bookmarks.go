package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/logviewer-mcp/internal/viewer"
)

// BookmarkInput is the input for the bookmark commands.
type BookmarkInput struct {
	Window string `json:"window,omitempty" jsonschema:"Focused window handle (default: the log viewer)"`
	App    string `json:"app,omitempty" jsonschema:"Focused application name; bookmark commands are refused for applications that own the same keys"`
}

// BookmarkOutput is the output for the bookmark commands.
type BookmarkOutput struct {
	Outcome string `json:"outcome"`
	// Ordinal is the number written in the marker.
	Ordinal int `json:"ordinal,omitempty"`
	Start   int `json:"start"`
	End     int `json:"end"`
	Line    int `json:"line,omitempty"`
	// Index is the bookmark's position in the log, -1 when none was selected.
	Index         int      `json:"index"`
	Total         int      `json:"total"`
	Announcements []string `json:"announcements,omitzero"`
}

// ListBookmarksInput is the input for logviewer_list_bookmarks.
type ListBookmarksInput struct {
	Filter string `json:"filter,omitempty" jsonschema:"Optional jq expression applied to the bookmark list, e.g. 'map(select(.line > 100))'"`
	Dedupe bool   `json:"dedupe,omitempty" jsonschema:"Drop duplicate filter results"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Max filter results (default: no limit)"`
}

// BookmarkEntry is one bookmark in the log.
type BookmarkEntry struct {
	Ordinal int  `json:"ordinal"`
	Start   int  `json:"start"`
	End     int  `json:"end"`
	Line    int  `json:"line"`
	Current bool `json:"current,omitempty"`
}

// ListBookmarksOutput is the output for logviewer_list_bookmarks.
type ListBookmarksOutput struct {
	Bookmarks    []BookmarkEntry `json:"bookmarks,omitzero"`
	Count        int             `json:"count"`
	Filtered     []any           `json:"filtered,omitzero"`
	FilterErrors []string        `json:"filter_errors,omitzero"`
}

func bookmarkOutput(res viewer.BookmarkResult, said []string) BookmarkOutput {
	return BookmarkOutput{
		Outcome:       res.Outcome.String(),
		Ordinal:       res.Ordinal,
		Start:         res.Bookmark.Start,
		End:           res.Bookmark.End,
		Line:          res.Line,
		Index:         res.Index,
		Total:         res.Total,
		Announcements: said,
	}
}

type bookmarkCommand func(*viewer.Viewer, context.Context, viewer.Focus) (viewer.BookmarkResult, error)

func toolBookmark(d *Deps, command bookmarkCommand) func(ctx context.Context, req *sdkmcp.CallToolRequest, input BookmarkInput) (*sdkmcp.CallToolResult, BookmarkOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input BookmarkInput) (*sdkmcp.CallToolResult, BookmarkOutput, error) {
		var res viewer.BookmarkResult
		said, err := d.exec(ctx, func(ctx context.Context) error {
			var err error
			res, err = command(d.Viewer, ctx, d.focus(input.Window, input.App))
			return err
		})
		if err != nil {
			return nil, BookmarkOutput{}, err
		}
		return nil, bookmarkOutput(res, said), nil
	}
}

// ToolInsertBookmark appends the next bookmark marker to the log.
func ToolInsertBookmark(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input BookmarkInput) (*sdkmcp.CallToolResult, BookmarkOutput, error) {
	return toolBookmark(d, (*viewer.Viewer).InsertBookmark)
}

// ToolNextBookmark moves to the next bookmark.
func ToolNextBookmark(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input BookmarkInput) (*sdkmcp.CallToolResult, BookmarkOutput, error) {
	return toolBookmark(d, (*viewer.Viewer).NextBookmark)
}

// ToolPreviousBookmark moves to the previous bookmark.
func ToolPreviousBookmark(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input BookmarkInput) (*sdkmcp.CallToolResult, BookmarkOutput, error) {
	return toolBookmark(d, (*viewer.Viewer).PreviousBookmark)
}

// ToolListBookmarks lists every bookmark in the log.
func ToolListBookmarks(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ListBookmarksInput) (*sdkmcp.CallToolResult, ListBookmarksOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ListBookmarksInput) (*sdkmcp.CallToolResult, ListBookmarksOutput, error) {
		if input.Limit < 0 {
			return nil, ListBookmarksOutput{}, ErrInvalidInput("limit must not be negative")
		}

		lines, err := d.Viewer.ListBookmarks(ctx)
		if err != nil {
			return nil, ListBookmarksOutput{}, WrapViewerError(err, "")
		}

		entries := make([]BookmarkEntry, len(lines))
		for i, l := range lines {
			entries[i] = BookmarkEntry{
				Ordinal: l.Ordinal,
				Start:   l.Start,
				End:     l.End,
				Line:    l.Line,
				Current: l.Current,
			}
		}
		out := ListBookmarksOutput{Bookmarks: entries, Count: len(entries)}

		if input.Filter != "" {
			result, err := d.Query.Run(entries, input.Filter, input.Dedupe, input.Limit)
			if err != nil {
				return nil, ListBookmarksOutput{}, ErrInvalidInput(err.Error())
			}
			out.Filtered = result.Values
			out.FilterErrors = result.Errors
		}
		return nil, out, nil
	}
}
