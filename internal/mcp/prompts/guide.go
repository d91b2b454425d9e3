package prompts

import (
	"context"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandleGuide serves the tool behavior guide.
func HandleGuide(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		var sb strings.Builder

		sb.WriteString("# Log Viewer Tool Guide\n\n")

		sb.WriteString("## Which Search Tool\n\n")
		sb.WriteString("| Goal | Tool | Example |\n")
		sb.WriteString("|------|------|--------|\n")
		sb.WriteString("| New term or new options | `logviewer_search` | `term: \"timeout\"` |\n")
		sb.WriteString("| Same term, next hit | `logviewer_find_next` | |\n")
		sb.WriteString("| Same term, previous hit | `logviewer_find_previous` | |\n")
		sb.WriteString("| Jump and leave the dialog | `logviewer_search` | `focus_log: true` |\n")
		sb.WriteString("| Start from a position | `logviewer_set_caret` | `offset: 0` |\n")

		sb.WriteString("\n**Key rules**:\n")
		sb.WriteString("- Search starts at the caret: next finds the first match at or after it\n")
		sb.WriteString("- Unset search options reuse the last ones (see `logviewer_history`)\n")
		sb.WriteString("- With wrap off, running past the last match reports `end_reached` and leaves the caret\n")
		sb.WriteString("- Matches are recomputed when the log grows\n")
		sb.WriteString("- Offsets count characters, not bytes\n")

		sb.WriteString("\n## Bookmarks\n\n")
		sb.WriteString("- `logviewer_insert_bookmark` appends `BOOKMARK n` on its own line at the end of the log\n")
		sb.WriteString("- Numbers keep increasing across restarts\n")
		sb.WriteString("- Next and previous bookmark navigation wraps when search wrap is on\n")
		sb.WriteString("- Use `logviewer_list_bookmarks` with a jq `filter` to narrow long lists\n")
		if cfg.BackupEnabled {
			sb.WriteString("\n## Backup\n\n")
			sb.WriteString("New log output is copied to the backup file on a timer; `logviewer_backup_sync` copies it now.\n")
		}

		return &sdkmcp.GetPromptResult{
			Description: "Log viewer tool behavior",
			Messages: []*sdkmcp.PromptMessage{
				{
					Role:    "user",
					Content: &sdkmcp.TextContent{Text: sb.String()},
				},
			},
		}, nil
	}
}
