// Package types provides shared types for logviewer-mcp.
// These types are used across multiple packages and are designed for external consumption.
package types

import "encoding/json"

// ToAny round-trips a typed value through JSON to produce an untyped any.
// Use this when a value must be handed to a jq program or an MCP output
// field typed as any.
func ToAny(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Direction is the navigation direction of a find or bookmark command.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// ParseDirection maps "previous"/"backward"/"prev" to Backward; anything else is Forward.
func ParseDirection(s string) Direction {
	switch s {
	case "backward", "previous", "prev":
		return Backward
	default:
		return Forward
	}
}

// Outcome reports how a navigation step ended.
type Outcome int

const (
	// Found means a qualifying span was selected without wrapping.
	Found Outcome = iota
	// Wrapped means navigation resumed from the opposite end.
	Wrapped
	// EndReached means no qualifying span remained and wrap is off.
	EndReached
	// NoMatches means the match list is empty.
	NoMatches
	// NoBookmarks means the bookmark list is empty.
	NoBookmarks
)

var outcomeNames = [...]string{
	Found:       "found",
	Wrapped:     "wrapped",
	EndReached:  "end_reached",
	NoMatches:   "no_matches",
	NoBookmarks: "no_bookmarks",
}

func (o Outcome) String() string {
	if int(o) >= 0 && int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "unknown"
}

// Moved reports whether the outcome selected a span.
func (o Outcome) Moved() bool {
	return o == Found || o == Wrapped
}
