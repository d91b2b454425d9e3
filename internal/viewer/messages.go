package viewer

import (
	"errors"
	"fmt"

	"github.com/usestring/logviewer-mcp/pkg/types"
)

// Announcement texts.
const (
	msgEmptyTerm        = "Search term cannot be empty"
	msgEmptyLog         = "Log is empty"
	msgNoMatches        = "No matches found"
	msgNoPreviousSearch = "No search has been performed yet or search term is empty."
	msgNotAccessible    = "Log viewer not accessible"
	msgNoBookmarks      = "No bookmarks found"
	msgMoveFailed       = "Error moving to match"
	msgBookmarkFailed   = "Error moving to bookmark"
	msgInsertFailed     = "Error inserting bookmark"
	msgSessionClosed    = "Search dialog is closed"
)

func wrapMessage(dir types.Direction, noun string) string {
	if dir == types.Backward {
		return "Wrapping to last " + noun
	}
	return "Wrapping to first " + noun
}

func endMessage(dir types.Direction, noun string) string {
	if dir == types.Backward {
		return "Already at first " + noun
	}
	if noun == "match" {
		return "Reached end of matches"
	}
	return "Reached end of " + noun + "s"
}

func lineMessage(line int, text string) string {
	return fmt.Sprintf("Line %d: %s", line, text)
}

func quickMessage(term string, index, total int) string {
	return fmt.Sprintf("%s %d of %d", term, index+1, total)
}

func foundMessage(total int) string {
	return fmt.Sprintf("Found %d matches.", total)
}

func bookmarkMessage(ordinal int) string {
	return fmt.Sprintf("Bookmark %d", ordinal)
}

// errorMessage maps a search error onto its announcement.
func errorMessage(err error) string {
	var pe *types.InvalidPatternError
	switch {
	case errors.As(err, &pe):
		return "Invalid regular expression: " + pe.Message
	case errors.Is(err, types.ErrEmptyTerm):
		return msgEmptyTerm
	case errors.Is(err, types.ErrEmptyText):
		return msgEmptyLog
	case errors.Is(err, types.ErrNoPreviousSearch):
		return msgNoPreviousSearch
	case errors.Is(err, types.ErrSessionClosed):
		return msgSessionClosed
	default:
		return msgNotAccessible
	}
}
