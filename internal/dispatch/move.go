package dispatch

import (
	"context"
	"fmt"

	"github.com/usestring/logviewer-mcp/internal/notify"
	"github.com/usestring/logviewer-mcp/internal/textsource"
)

// Move is a request to select [Start, End) in the viewer and then announce
// Message. End == Start collapses the selection to a caret.
type Move struct {
	Start   int
	End     int
	Message string
}

// MoveCommand builds the command that applies m to source. The viewer is
// focused first when it does not have focus. When the move fails, failure is
// announced instead of m.Message.
func MoveCommand(source textsource.Source, sink notify.Sink, m Move, failure string) Command {
	return Command{
		Name: "move",
		Run: func(context.Context) error {
			err := applyMove(source, m)
			if err != nil {
				if failure != "" {
					sink.Announce(failure)
				}
				return err
			}
			if m.Message != "" {
				sink.Announce(m.Message)
			}
			return nil
		},
	}
}

// AnnounceCommand builds a command that only announces text.
func AnnounceCommand(sink notify.Sink, text string) Command {
	return Command{
		Name: "announce",
		Run: func(context.Context) error {
			sink.Announce(text)
			return nil
		},
	}
}

func applyMove(source textsource.Source, m Move) error {
	if !source.Focused() {
		if err := source.Focus(); err != nil {
			return fmt.Errorf("focusing log viewer: %w", err)
		}
	}
	if m.End > m.Start {
		if err := source.SetSelection(m.Start, m.End); err != nil {
			return fmt.Errorf("selecting %d-%d: %w", m.Start, m.End, err)
		}
		return nil
	}
	if err := source.SetCaret(m.Start); err != nil {
		return fmt.Errorf("moving caret to %d: %w", m.Start, err)
	}
	return nil
}
