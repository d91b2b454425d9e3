package mcpsrv

import (
	"github.com/usestring/logviewer-mcp/internal/backup"
	"github.com/usestring/logviewer-mcp/internal/config"
	"github.com/usestring/logviewer-mcp/internal/query"
	"github.com/usestring/logviewer-mcp/internal/settings"
	"github.com/usestring/logviewer-mcp/internal/viewer"
)

// Deps contains all dependencies available to custom tools.
// This gives custom tools access to the same components as builtin tools.
type Deps struct {
	Viewer   *viewer.Viewer
	Settings *settings.Store
	// Backup is nil when log backups are disabled.
	Backup *backup.Cursor
	Query  *query.Engine
	Config *config.Config
}
