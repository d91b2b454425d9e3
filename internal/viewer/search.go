package viewer

import (
	"context"
	"log/slog"
	"strings"

	"github.com/usestring/logviewer-mcp/internal/dispatch"
	"github.com/usestring/logviewer-mcp/internal/session"
	"github.com/usestring/logviewer-mcp/internal/textpos"
	"github.com/usestring/logviewer-mcp/pkg/types"
)

// Dialog describes the search dialog after OpenSearch.
type Dialog struct {
	// Reused is set when the dialog was already open.
	Reused bool `json:"reused"`
	// Term pre-fills the search box with the most recent term.
	Term          string   `json:"term"`
	History       []string `json:"history"`
	CaseSensitive bool     `json:"case_sensitive"`
	Wrap          bool     `json:"wrap"`
	SearchType    string   `json:"search_type"`
	SearchTypes   []string `json:"search_types"`
}

// SearchRequest is one dialog submission.
type SearchRequest struct {
	Term          string
	CaseSensitive bool
	Wrap          bool
	Type          types.SearchType
	Direction     types.Direction
	// FocusLog closes the dialog after moving, leaving focus in the log.
	FocusLog bool
}

// SearchResult describes where a find command landed.
type SearchResult struct {
	Term    string        `json:"term"`
	Outcome types.Outcome `json:"-"`
	// Index is the 0-based current match, -1 when none was selected.
	Index        int         `json:"index"`
	Total        int         `json:"total"`
	MatchedLines uint64      `json:"matched_lines"`
	Match        types.Match `json:"match"`
	Line         int         `json:"line,omitempty"`
	LineText     string      `json:"line_text,omitempty"`
	// Context holds the surrounding matches rendered as "Line N: text".
	Context      []string `json:"context,omitempty"`
	DialogClosed bool     `json:"dialog_closed,omitempty"`
}

// OpenSearch opens the search dialog, or raises it when already open.
func (v *Viewer) OpenSearch(f Focus) (Dialog, error) {
	if err := v.checkFocus(f); err != nil {
		return Dialog{}, err
	}

	v.mu.Lock()
	reused := v.dialog != nil
	if !reused {
		v.dialog = v.newSession(false)
	}
	v.mu.Unlock()

	d := Dialog{
		Reused:      reused,
		History:     v.cfg.History.Items(),
		Wrap:        true,
		SearchType:  types.Normal.Name(),
		SearchTypes: types.SearchTypeLabels(),
	}
	if len(d.History) > 0 {
		d.Term = d.History[0]
	}
	if v.cfg.Options != nil {
		opts := v.cfg.Options.SearchOptions()
		d.CaseSensitive = opts.CaseSensitive
		d.Wrap = opts.Wrap
		d.SearchType = opts.Type.Name()
	}
	v.logger.Debug("search dialog opened", slog.Bool("reused", reused))
	return d, nil
}

// CloseSearch closes the dialog. It reports whether one was open.
func (v *Viewer) CloseSearch() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.dialog == nil {
		return false
	}
	v.dialog.Close()
	v.dialog = nil
	return true
}

// DialogOpen reports whether the search dialog is open.
func (v *Viewer) DialogOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.dialog != nil
}

// Search submits the dialog. The dialog is opened first when needed. The
// term is added to the history, the options are persisted, and a successful
// result anchors quick search on the same match list.
func (v *Viewer) Search(ctx context.Context, f Focus, req SearchRequest) (SearchResult, error) {
	if !v.DialogOpen() {
		if _, err := v.OpenSearch(f); err != nil {
			return SearchResult{}, err
		}
	}

	term := strings.TrimSpace(req.Term)
	if term == "" {
		v.announce(ctx, msgEmptyTerm)
		return SearchResult{}, types.ErrEmptyTerm
	}
	if err := v.cfg.History.Append(term); err != nil {
		v.logger.Warn("failed to save search history", slog.String("error", err.Error()))
	}

	caret, err := v.caret(ctx)
	if err != nil {
		return SearchResult{}, err
	}

	v.mu.Lock()
	dialog := v.dialog
	v.mu.Unlock()
	if dialog == nil {
		v.announce(ctx, msgSessionClosed)
		return SearchResult{}, types.ErrSessionClosed
	}

	q := types.SearchQuery{Term: term, CaseSensitive: req.CaseSensitive, Wrap: req.Wrap, Type: req.Type}
	res, err := dialog.Submit(q, caret, req.Direction)
	if err != nil {
		v.announce(ctx, errorMessage(err))
		return SearchResult{}, err
	}

	out := v.describe(res)
	if !v.realize(ctx, res, req.Direction, "match", true, func(line int, text string) string {
		return lineMessage(line, text)
	}) {
		return out, nil
	}

	if err := v.quick.Anchor(dialog.Snapshot()); err != nil {
		v.logger.Warn("failed to anchor quick search", slog.String("error", err.Error()))
	}
	if req.FocusLog {
		out.DialogClosed = v.CloseSearch()
	}
	return out, nil
}

// FindNext repeats the last search forward.
func (v *Viewer) FindNext(ctx context.Context, f Focus) (SearchResult, error) {
	return v.repeat(ctx, f, types.Forward)
}

// FindPrevious repeats the last search backward.
func (v *Viewer) FindPrevious(ctx context.Context, f Focus) (SearchResult, error) {
	return v.repeat(ctx, f, types.Backward)
}

func (v *Viewer) repeat(ctx context.Context, f Focus, dir types.Direction) (SearchResult, error) {
	if err := v.checkFocus(f); err != nil {
		return SearchResult{}, err
	}
	caret, err := v.caret(ctx)
	if err != nil {
		return SearchResult{}, err
	}

	res, err := v.quick.Repeat(caret, dir)
	if err != nil {
		v.announce(ctx, errorMessage(err))
		return SearchResult{}, err
	}

	out := v.describe(res)
	v.realize(ctx, res, dir, "match", res.Recomputed, func(int, string) string {
		return quickMessage(res.Query.Term, res.Index, res.Total)
	})
	return out, nil
}

// realize turns a navigation result into queued announcements and a caret
// move. The match total is announced before the move when announceTotal is
// set. It reports whether the caret moved.
func (v *Viewer) realize(ctx context.Context, res session.Result, dir types.Direction, noun string, announceTotal bool, message func(line int, text string) string) bool {
	switch res.Outcome {
	case types.NoMatches:
		v.announce(ctx, msgNoMatches)
		return false
	case types.EndReached:
		v.announce(ctx, endMessage(dir, noun))
		return false
	case types.Wrapped:
		v.announce(ctx, wrapMessage(dir, noun))
	}

	if announceTotal {
		v.announce(ctx, foundMessage(res.Total))
	}
	lines := textpos.NewLines(res.Text)
	num, text := lines.SpanLine(res.Match.Start, res.Match.End)
	v.move(ctx, dispatch.Move{
		Start:   res.Match.Start,
		End:     res.Match.End,
		Message: message(num, text),
	}, msgMoveFailed)
	return true
}

func (v *Viewer) describe(res session.Result) SearchResult {
	out := SearchResult{
		Term:    res.Query.Term,
		Outcome: res.Outcome,
		Index:   res.Index,
		Total:   res.Total,
	}
	if res.Total == 0 {
		return out
	}
	lines := textpos.NewLines(res.Text)
	out.MatchedLines = lines.LineSet(res.Matches).GetCardinality()
	if res.Outcome.Moved() {
		out.Match = res.Match
		out.Line, out.LineText = lines.SpanLine(res.Match.Start, res.Match.End)
	}
	out.Context = textpos.ContextLines(lines, res.Matches, res.Index, v.cfg.ResultContext)
	return out
}
