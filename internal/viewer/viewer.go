// Package viewer wires search sessions, bookmarks, history and the move
// queue into the commands a user issues against the log viewer.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/usestring/logviewer-mcp/internal/bookmark"
	"github.com/usestring/logviewer-mcp/internal/dispatch"
	"github.com/usestring/logviewer-mcp/internal/history"
	"github.com/usestring/logviewer-mcp/internal/matchindex"
	"github.com/usestring/logviewer-mcp/internal/notify"
	"github.com/usestring/logviewer-mcp/internal/session"
	"github.com/usestring/logviewer-mcp/internal/textpos"
	"github.com/usestring/logviewer-mcp/internal/textsource"
	"github.com/usestring/logviewer-mcp/pkg/types"
)

// DefaultResultContext is the number of matches shown on each side of the
// current one.
const DefaultResultContext = 2

// Focus describes what had focus when a command was issued.
type Focus struct {
	// Handle identifies the focused window.
	Handle string
	// App is the focused application's process name.
	App string
}

// Config wires a Viewer.
type Config struct {
	Source textsource.Source
	// Appender receives bookmark markers. Defaults to Source when it
	// implements textsource.Appender.
	Appender textsource.Appender
	// Detector decides whether Focus.Handle is the log viewer. Nil accepts
	// every handle.
	Detector  textsource.Detector
	Options   session.OptionsStore
	History   *history.History
	Counter   *bookmark.Counter
	Bookmarks *bookmark.Index
	Index     *matchindex.Index
	Queue     *dispatch.Queue
	Sink      notify.Sink

	BookmarkPolicy bookmark.Policy
	// QuickStep makes find next/previous step from the current match once
	// a search is anchored.
	QuickStep bool
	// ConflictingApps lists process names that own the bookmark gestures.
	ConflictingApps []string
	ResultContext   int
	Now             func() time.Time
	Logger          *slog.Logger
}

// Viewer is the plugin state: one optional search dialog and one quick
// search session that lives as long as the Viewer.
type Viewer struct {
	cfg    Config
	logger *slog.Logger

	mu     sync.Mutex
	dialog *session.Session
	quick  *session.Session
}

// New creates a Viewer. Source, Queue and Sink are required.
func New(cfg Config) (*Viewer, error) {
	if cfg.Source == nil {
		return nil, errors.New("viewer: source is required")
	}
	if cfg.Queue == nil {
		return nil, errors.New("viewer: queue is required")
	}
	if cfg.Sink == nil {
		return nil, errors.New("viewer: sink is required")
	}
	if cfg.Appender == nil {
		if a, ok := cfg.Source.(textsource.Appender); ok {
			cfg.Appender = a
		}
	}
	if cfg.History == nil {
		cfg.History = history.New(nil)
	}
	if cfg.Counter == nil {
		cfg.Counter = bookmark.NewCounter(nil)
	}
	if cfg.Bookmarks == nil {
		cfg.Bookmarks = bookmark.NewIndex(0)
	}
	if cfg.Index == nil {
		cfg.Index = matchindex.New(nil)
	}
	if cfg.ResultContext <= 0 {
		cfg.ResultContext = DefaultResultContext
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	v := &Viewer{cfg: cfg, logger: cfg.Logger}
	v.quick = v.newSession(cfg.QuickStep)
	return v, nil
}

func (v *Viewer) newSession(step bool) *session.Session {
	return session.New(session.Config{
		Source:           v.cfg.Source,
		Index:            v.cfg.Index,
		Options:          v.cfg.Options,
		StepWhenAnchored: step,
		Logger:           v.logger,
	})
}

// History returns the recent search terms, most recent first.
func (v *Viewer) History() []string {
	return v.cfg.History.Items()
}

// SetCaret moves the viewer's caret, as a user would with the arrow keys.
func (v *Viewer) SetCaret(offset int) error {
	if err := v.cfg.Source.SetCaret(offset); err != nil {
		return fmt.Errorf("%w: %w", types.ErrSourceUnavailable, err)
	}
	return nil
}

// ReadLines returns the 1-based lines first through last of the log, clamped
// to the log, and the log's line count.
func (v *Viewer) ReadLines(first, last int) ([]string, int, error) {
	text, err := v.cfg.Source.FullText()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", types.ErrSourceUnavailable, err)
	}
	lines := textpos.NewLines(text)
	first = max(first, 1)
	last = min(last, lines.Count())

	out := make([]string, 0, max(last-first+1, 0))
	for i := first; i <= last; i++ {
		out = append(out, lines.Text(i-1))
	}
	return out, lines.Count(), nil
}

// checkFocus fails with ErrNotLogViewer when the focused handle is not the
// log viewer.
func (v *Viewer) checkFocus(f Focus) error {
	if v.cfg.Detector == nil || v.cfg.Detector.IsLogViewer(f.Handle) {
		return nil
	}
	v.logger.Debug("command passed through", slog.String("handle", f.Handle))
	return types.ErrNotLogViewer
}

func (v *Viewer) conflicting(f Focus) bool {
	app := strings.ToLower(f.App)
	if app == "" {
		return false
	}
	for _, name := range v.cfg.ConflictingApps {
		if name != "" && strings.Contains(app, strings.ToLower(name)) {
			return true
		}
	}
	return false
}

// caret reads the caret, announcing when the viewer cannot be reached.
func (v *Viewer) caret(ctx context.Context) (int, error) {
	caret, err := v.cfg.Source.Caret()
	if err != nil {
		v.announce(ctx, msgNotAccessible)
		return 0, fmt.Errorf("%w: %w", types.ErrSourceUnavailable, err)
	}
	return caret, nil
}

func (v *Viewer) announce(ctx context.Context, text string) {
	v.enqueue(ctx, dispatch.AnnounceCommand(v.cfg.Sink, text))
}

func (v *Viewer) move(ctx context.Context, m dispatch.Move, failure string) {
	v.enqueue(ctx, dispatch.MoveCommand(v.cfg.Source, v.cfg.Sink, m, failure))
}

func (v *Viewer) enqueue(ctx context.Context, cmd dispatch.Command) {
	if err := v.cfg.Queue.Enqueue(ctx, cmd); err != nil {
		v.logger.Warn("failed to queue command",
			slog.String("command", cmd.Name),
			slog.String("error", err.Error()),
		)
	}
}
