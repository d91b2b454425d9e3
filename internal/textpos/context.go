package textpos

import (
	"fmt"

	"github.com/usestring/logviewer-mcp/pkg/types"
)

// ContextLines renders up to radius matches on each side of the current one as
// "Line N: text", the current one prefixed with "> " and the rest with two spaces.
func ContextLines(l *Lines, matches []types.Match, current, radius int) []string {
	if len(matches) == 0 || current < 0 || current >= len(matches) {
		return nil
	}
	from := max(0, current-radius)
	to := min(len(matches), current+radius+1)

	out := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		num, text := l.SpanLine(matches[i].Start, matches[i].End)
		prefix := "  "
		if i == current {
			prefix = "> "
		}
		out = append(out, fmt.Sprintf("%sLine %d: %s", prefix, num, text))
	}
	return out
}
