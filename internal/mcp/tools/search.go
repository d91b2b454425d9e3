package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/logviewer-mcp/internal/viewer"
	"github.com/usestring/logviewer-mcp/pkg/types"
)

// SearchInput is the input for logviewer_search.
type SearchInput struct {
	Term          string `json:"term" jsonschema:"Text or regular expression to find"`
	CaseSensitive *bool  `json:"case_sensitive,omitempty" jsonschema:"Match case (default: last used)"`
	Wrap          *bool  `json:"wrap,omitempty" jsonschema:"Continue from the other end when no match remains (default: last used)"`
	SearchType    string `json:"search_type,omitempty" jsonschema:"NORMAL or REGULAR_EXPRESSION (default: last used)"`
	Direction     string `json:"direction,omitempty" jsonschema:"next or previous (default: next)"`
	FocusLog      bool   `json:"focus_log,omitempty" jsonschema:"Find and focus: close the search dialog after moving to the match"`
	Filter        string `json:"filter,omitempty" jsonschema:"Optional jq expression applied to the result"`
	Window        string `json:"window,omitempty" jsonschema:"Focused window handle (default: the log viewer)"`
	App           string `json:"app,omitempty" jsonschema:"Focused application name"`
}

// FindInput is the input for logviewer_find_next and logviewer_find_previous.
type FindInput struct {
	Window string `json:"window,omitempty" jsonschema:"Focused window handle (default: the log viewer)"`
	App    string `json:"app,omitempty" jsonschema:"Focused application name"`
}

// SearchOutput is the output for the search tools.
type SearchOutput struct {
	Outcome string `json:"outcome"`
	Term    string `json:"term,omitempty"`
	// Index is the 0-based current match, -1 when none was selected.
	Index        int      `json:"index"`
	Total        int      `json:"total"`
	MatchedLines uint64   `json:"matched_lines"`
	Start        int      `json:"start"`
	End          int      `json:"end"`
	Line         int      `json:"line,omitempty"`
	LineText     string   `json:"line_text,omitempty"`
	Context      []string `json:"context,omitzero"`
	DialogClosed bool     `json:"dialog_closed,omitempty"`
	Filtered     []any    `json:"filtered,omitzero"`
	FilterErrors []string `json:"filter_errors,omitzero"`
	// Announcements is what the user heard, in order.
	Announcements []string `json:"announcements,omitzero"`
}

// CloseSearchInput is the input for logviewer_close_search.
type CloseSearchInput struct{}

// CloseSearchOutput is the output for logviewer_close_search.
type CloseSearchOutput struct {
	Closed bool `json:"closed"`
}

func searchOutput(res viewer.SearchResult, said []string) SearchOutput {
	return SearchOutput{
		Outcome:       res.Outcome.String(),
		Term:          res.Term,
		Index:         res.Index,
		Total:         res.Total,
		MatchedLines:  res.MatchedLines,
		Start:         res.Match.Start,
		End:           res.Match.End,
		Line:          res.Line,
		LineText:      res.LineText,
		Context:       res.Context,
		DialogClosed:  res.DialogClosed,
		Announcements: said,
	}
}

// ToolSearch submits the search dialog.
func ToolSearch(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchInput) (*sdkmcp.CallToolResult, SearchOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchInput) (*sdkmcp.CallToolResult, SearchOutput, error) {
		if input.Filter != "" && d.Query != nil {
			if err := d.Query.ValidateExpression(input.Filter); err != nil {
				return nil, SearchOutput{}, ErrInvalidInput(err.Error())
			}
		}

		opts := d.Settings.SearchOptions()
		searchReq := viewer.SearchRequest{
			Term:          input.Term,
			CaseSensitive: opts.CaseSensitive,
			Wrap:          opts.Wrap,
			Type:          opts.Type,
			Direction:     types.ParseDirection(input.Direction),
			FocusLog:      input.FocusLog,
		}
		if input.CaseSensitive != nil {
			searchReq.CaseSensitive = *input.CaseSensitive
		}
		if input.Wrap != nil {
			searchReq.Wrap = *input.Wrap
		}
		if input.SearchType != "" {
			st, ok := types.LookupSearchType(input.SearchType)
			if !ok {
				return nil, SearchOutput{}, ErrInvalidInput(fmt.Sprintf("unknown search_type %q: want NORMAL or REGULAR_EXPRESSION", input.SearchType))
			}
			searchReq.Type = st
		}

		var res viewer.SearchResult
		said, err := d.exec(ctx, func(ctx context.Context) error {
			var err error
			res, err = d.Viewer.Search(ctx, d.focus(input.Window, input.App), searchReq)
			return err
		})
		if err != nil {
			return nil, SearchOutput{}, err
		}

		out := searchOutput(res, said)
		if input.Filter != "" && d.Query != nil {
			result, err := d.Query.Run(out, input.Filter, false, 0)
			if err != nil {
				return nil, SearchOutput{}, ErrInvalidInput(err.Error())
			}
			out.Filtered = result.Values
			out.FilterErrors = result.Errors
		}
		return nil, out, nil
	}
}

// ToolCloseSearch closes the search dialog.
func ToolCloseSearch(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input CloseSearchInput) (*sdkmcp.CallToolResult, CloseSearchOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input CloseSearchInput) (*sdkmcp.CallToolResult, CloseSearchOutput, error) {
		var closed bool
		if _, err := d.exec(ctx, func(context.Context) error {
			closed = d.Viewer.CloseSearch()
			return nil
		}); err != nil {
			return nil, CloseSearchOutput{}, err
		}
		return nil, CloseSearchOutput{Closed: closed}, nil
	}
}

// ToolFindNext repeats the last search forward.
func ToolFindNext(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input FindInput) (*sdkmcp.CallToolResult, SearchOutput, error) {
	return toolFind(d, (*viewer.Viewer).FindNext)
}

// ToolFindPrevious repeats the last search backward.
func ToolFindPrevious(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input FindInput) (*sdkmcp.CallToolResult, SearchOutput, error) {
	return toolFind(d, (*viewer.Viewer).FindPrevious)
}

func toolFind(d *Deps, find func(*viewer.Viewer, context.Context, viewer.Focus) (viewer.SearchResult, error)) func(ctx context.Context, req *sdkmcp.CallToolRequest, input FindInput) (*sdkmcp.CallToolResult, SearchOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input FindInput) (*sdkmcp.CallToolResult, SearchOutput, error) {
		var res viewer.SearchResult
		said, err := d.exec(ctx, func(ctx context.Context) error {
			var err error
			res, err = find(d.Viewer, ctx, d.focus(input.Window, input.App))
			return err
		})
		if err != nil {
			return nil, SearchOutput{}, err
		}
		return nil, searchOutput(res, said), nil
	}
}
