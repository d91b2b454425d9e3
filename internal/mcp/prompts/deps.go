// Package prompts contains MCP prompt implementations for the log viewer.
package prompts

// Config holds configuration needed by prompts.
type Config struct {
	LogPath       string
	BackupEnabled bool
	BackupPath    string
}
