package prompts

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all prompts with the MCP server.
func Register(srv *sdkmcp.Server, cfg *Config) {
	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        "investigate_log",
		Description: "RECOMMENDED: Walk the log from a symptom to its cause with search, quick search and bookmarks.",
		Arguments: []*sdkmcp.PromptArgument{
			{
				Name:        "symptom",
				Description: "What went wrong, in the user's words (e.g. 'speech stops after opening the browser')",
				Required:    false,
			},
			{
				Name:        "term",
				Description: "A first search term or regular expression (e.g. 'ERROR' or 'Traceback')",
				Required:    false,
			},
		},
	}, HandleInvestigateLog(cfg))

	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        "logviewer_guide",
		Description: "How the log viewer tools behave: caret-relative search, wrapping, quick search and bookmarks.",
	}, HandleGuide(cfg))
}
