// Package session holds the state of one search: the query, its match list
// over a text snapshot, and the current-match cursor.
package session

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/usestring/logviewer-mcp/internal/matchindex"
	"github.com/usestring/logviewer-mcp/internal/textsource"
	"github.com/usestring/logviewer-mcp/pkg/types"
)

// State is the lifecycle state of a session.
type State int

const (
	Idle State = iota
	Computed
	Navigating
	Closed
)

func (s State) String() string {
	switch s {
	case Computed:
		return "computed"
	case Navigating:
		return "navigating"
	case Closed:
		return "closed"
	default:
		return "idle"
	}
}

// Options are the persisted search options.
type Options struct {
	CaseSensitive bool
	Wrap          bool
	Type          types.SearchType
}

// OptionsStore reads and persists search options.
type OptionsStore interface {
	SearchOptions() Options
	SaveSearchOptions(opts Options) error
}

// Result is the outcome of one navigation.
type Result struct {
	Query   types.SearchQuery
	Outcome types.Outcome
	// Match is the selected span; zero unless Outcome.Moved().
	Match types.Match
	// Index is the cursor after navigation, -1 if nothing was ever selected.
	Index   int
	Total   int
	Matches []types.Match
	// Text is the snapshot the matches refer to.
	Text string
	// Recomputed is set when the match list was rebuilt by this call.
	Recomputed bool
}

// Snapshot is the cached state of a session, used to seed another one.
type Snapshot struct {
	Query   types.SearchQuery
	Matches []types.Match
	Cursor  int
	Length  int
}

// Config configures a Session.
type Config struct {
	Source  textsource.Source
	Index   *matchindex.Index
	Options OptionsStore
	// StepWhenAnchored makes Repeat step the cursor instead of navigating
	// from the caret once a match has been selected.
	StepWhenAnchored bool
	Logger           *slog.Logger
}

// Session is one search session. It is safe for concurrent use.
type Session struct {
	mu sync.Mutex

	source  textsource.Source
	index   *matchindex.Index
	options OptionsStore
	step    bool
	logger  *slog.Logger

	state   State
	query   types.SearchQuery
	matches []types.Match
	cursor  int
	length  int
}

// New creates an idle session.
func New(cfg Config) *Session {
	idx := cfg.Index
	if idx == nil {
		idx = matchindex.New(nil)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		source:  cfg.Source,
		index:   idx,
		options: cfg.Options,
		step:    cfg.StepWhenAnchored,
		logger:  logger,
		cursor:  -1,
	}
}

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close ends the session. Every later call fails with ErrSessionClosed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Closed
	s.matches = nil
	s.cursor = -1
}

// Query returns the last query the matches were computed for.
func (s *Session) Query() types.SearchQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Submit runs a query and navigates from caret. The match list is reused
// when the query is unchanged (ignoring Wrap) and the text length has not
// changed since it was computed. The query's options are persisted.
func (s *Session) Submit(q types.SearchQuery, caret int, dir types.Direction) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Closed {
		return Result{}, types.ErrSessionClosed
	}
	if q.Term == "" {
		return Result{}, types.ErrEmptyTerm
	}

	text, fresh, err := s.prepare(q)
	if err != nil {
		return Result{}, err
	}
	res := s.navigate(text, caret, dir, false)
	res.Recomputed = fresh

	if s.options != nil {
		opts := Options{CaseSensitive: q.CaseSensitive, Wrap: q.Wrap, Type: q.Type}
		if err := s.options.SaveSearchOptions(opts); err != nil {
			s.logger.Warn("failed to save search options", slog.String("error", err.Error()))
		}
	}
	return res, nil
}

// Repeat repeats the last term with the persisted options. Once a match is
// selected it steps the cursor when the session was configured to do so,
// otherwise it navigates from caret. Options and history are not touched.
func (s *Session) Repeat(caret int, dir types.Direction) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Closed {
		return Result{}, types.ErrSessionClosed
	}
	if s.query.Term == "" {
		return Result{}, types.ErrNoPreviousSearch
	}

	q := s.query
	if s.options != nil {
		opts := s.options.SearchOptions()
		q.CaseSensitive = opts.CaseSensitive
		q.Wrap = opts.Wrap
		q.Type = opts.Type
	}

	text, fresh, err := s.prepare(q)
	if err != nil {
		return Result{}, err
	}
	res := s.navigate(text, caret, dir, s.step && s.cursor != -1)
	res.Recomputed = fresh
	return res, nil
}

// Snapshot returns the cached query, matches and cursor.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Query: s.query, Matches: s.matches, Cursor: s.cursor, Length: s.length}
}

// Anchor replaces the session state with snap, as if the session had
// computed and navigated it itself.
func (s *Session) Anchor(snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Closed {
		return types.ErrSessionClosed
	}
	s.query = snap.Query
	s.matches = snap.Matches
	s.length = snap.Length
	s.cursor = snap.Cursor
	if s.cursor < -1 || s.cursor >= len(s.matches) {
		s.cursor = -1
	}
	s.state = Computed
	return nil
}

// prepare reads the text and recomputes the matches when needed. It reports
// whether the matches were recomputed.
func (s *Session) prepare(q types.SearchQuery) (string, bool, error) {
	text, err := s.source.FullText()
	if err != nil {
		return "", false, fmt.Errorf("%w: %w", types.ErrSourceUnavailable, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", false, types.ErrEmptyText
	}

	length := utf8.RuneCountInString(text)
	if s.state != Idle && q.SameSearch(s.query) && len(s.matches) > 0 && length == s.length {
		s.query.Wrap = q.Wrap
		return text, false, nil
	}

	matches, err := s.index.Compute(text, q.Term, q.CaseSensitive, q.Type)
	if err != nil {
		return "", false, err
	}
	s.query = q
	s.matches = matches
	s.length = length
	s.cursor = -1
	s.state = Computed
	s.logger.Debug("matches computed",
		slog.String("term", q.Term),
		slog.String("type", q.Type.Name()),
		slog.Int("matches", len(matches)))
	return text, true, nil
}

func (s *Session) navigate(text string, caret int, dir types.Direction, step bool) Result {
	s.state = Navigating
	defer func() { s.state = Computed }()

	var (
		next    int
		outcome types.Outcome
	)
	if step {
		next, outcome = matchindex.Step(s.matches, s.cursor, dir, s.query.Wrap)
	} else {
		next, outcome = matchindex.Navigate(s.matches, s.cursor, caret, dir, s.query.Wrap)
	}

	res := Result{
		Query:   s.query,
		Outcome: outcome,
		Total:   len(s.matches),
		Matches: s.matches,
		Text:    text,
	}
	if outcome.Moved() {
		s.cursor = next
		res.Match = s.matches[next]
	}
	res.Index = s.cursor
	return res
}
