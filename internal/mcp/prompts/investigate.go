package prompts

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandleInvestigateLog implements the investigation workflow.
func HandleInvestigateLog(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		var symptom, term string
		if args := req.Params.Arguments; args != nil {
			symptom = args["symptom"]
			term = args["term"]
		}

		var sb strings.Builder

		sb.WriteString("# Investigate the Log\n\n")
		sb.WriteString("You are helping a user find the cause of a problem in a running application's log. ")
		sb.WriteString("The log is shown in a viewer with a caret; every tool moves that caret the way the user's own keys would.\n\n")
		if symptom != "" {
			fmt.Fprintf(&sb, "Reported symptom: %s\n\n", symptom)
		}
		if cfg.LogPath != "" {
			fmt.Fprintf(&sb, "Log file: %s\n\n", cfg.LogPath)
		}

		sb.WriteString("## Workflow Steps\n\n")
		sb.WriteString("1. **Mark the present** - insert a bookmark before reproducing so new output is easy to find\n")
		sb.WriteString("2. **Reproduce** - ask the user to reproduce the problem, then insert a second bookmark\n")
		sb.WriteString("3. **Search between the marks** - jump to the first bookmark and search forward for errors\n")
		sb.WriteString("4. **Step through matches** - use quick search instead of re-submitting the dialog\n\n")

		sb.WriteString("## Suggested Tools\n\n")
		sb.WriteString("```\n")
		sb.WriteString("logviewer_insert_bookmark()\n")
		sb.WriteString("# ... user reproduces the problem ...\n")
		sb.WriteString("logviewer_insert_bookmark()\n")
		sb.WriteString("logviewer_list_bookmarks()\n")
		sb.WriteString("logviewer_previous_bookmark()\n")
		if term != "" {
			fmt.Fprintf(&sb, "logviewer_search(term=%q)\n", term)
		} else {
			sb.WriteString("logviewer_search(term=\"ERROR|Traceback\", search_type=\"REGULAR_EXPRESSION\")\n")
		}
		sb.WriteString("logviewer_find_next()\n")
		sb.WriteString("```\n\n")

		sb.WriteString("## Constraints\n\n")
		sb.WriteString("- Report the announcements each tool returns; they are what the user heard\n")
		sb.WriteString("- Do NOT insert bookmarks while another application owns the bookmark keys\n")
		sb.WriteString("- STOP once the first error after the earlier bookmark is explained\n\n")

		sb.WriteString("## If Things Go Wrong\n\n")
		sb.WriteString("- **INVALID_PATTERN?** The term was read as a regular expression; escape it or use search_type NORMAL\n")
		sb.WriteString("- **EMPTY_TEXT?** The log is empty; ask the user to reproduce first\n")
		sb.WriteString("- **NO_PREVIOUS_SEARCH?** Quick search needs a term; call logviewer_search once\n")
		if cfg.BackupEnabled {
			fmt.Fprintf(&sb, "- **Log restarted?** Earlier output is kept in the backup file %s; call logviewer_backup_sync first\n", cfg.BackupPath)
		}

		return &sdkmcp.GetPromptResult{
			Description: "Guide for finding the cause of a problem in the log",
			Messages: []*sdkmcp.PromptMessage{
				{
					Role:    "user",
					Content: &sdkmcp.TextContent{Text: sb.String()},
				},
			},
		}, nil
	}
}
