package tools

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all tools with the MCP server.
func Register(srv *sdkmcp.Server, d *Deps) {
	AddTool(srv, &sdkmcp.Tool{
		Name:        "logviewer_search",
		Description: "Search the log from the caret, opening the search dialog if needed. Moves to the next (or previous) match and returns its line, surrounding matches and the announcements the user heard. Set focus_log=true for Find & Focus, which closes the dialog after moving. Unset options default to the last used ones.",
	}, ToolSearch(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "logviewer_close_search",
		Description: "Close the search dialog. Quick search keeps the last result.",
	}, ToolCloseSearch(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "logviewer_find_next",
		Description: "Quick search: repeat the last search forward without opening the dialog",
	}, ToolFindNext(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "logviewer_find_previous",
		Description: "Quick search: repeat the last search backward without opening the dialog",
	}, ToolFindPrevious(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "logviewer_insert_bookmark",
		Description: "Append a numbered BOOKMARK marker to the end of the log",
	}, ToolInsertBookmark(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "logviewer_next_bookmark",
		Description: "Move the caret to the next bookmark after the caret",
	}, ToolNextBookmark(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "logviewer_previous_bookmark",
		Description: "Move the caret to the previous bookmark before the caret",
	}, ToolPreviousBookmark(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "logviewer_list_bookmarks",
		Description: "List every bookmark in the log with its line number. Pass a jq filter to narrow the list.",
	}, ToolListBookmarks(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "logviewer_history",
		Description: "Get recent search terms and the search options the dialog opens with",
	}, ToolHistory(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "logviewer_set_caret",
		Description: "Move the log viewer caret to a character offset",
	}, ToolSetCaret(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "logviewer_backup_sync",
		Description: "Copy log content written since the last backup to the backup file now",
	}, ToolBackupSync(d))
}
