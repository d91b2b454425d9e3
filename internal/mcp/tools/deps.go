// Package tools contains the MCP tool implementations for the log viewer.
package tools

import (
	"context"
	"strings"
	"sync"

	"github.com/usestring/logviewer-mcp/internal/backup"
	"github.com/usestring/logviewer-mcp/internal/config"
	"github.com/usestring/logviewer-mcp/internal/dispatch"
	"github.com/usestring/logviewer-mcp/internal/notify"
	"github.com/usestring/logviewer-mcp/internal/query"
	"github.com/usestring/logviewer-mcp/internal/settings"
	"github.com/usestring/logviewer-mcp/internal/viewer"
)

// MIME type constant.
const MimeJSON = "application/json"

// Deps contains all dependencies needed by tool handlers.
type Deps struct {
	Viewer   *viewer.Viewer
	Settings *settings.Store
	// Backup is nil when log backups are disabled.
	Backup *backup.Cursor
	Query  *query.Engine
	Queue  *dispatch.Queue
	// Announcements must be one of the sinks the Viewer announces to.
	Announcements *notify.Buffer
	Config        *config.Config

	mu sync.Mutex
}

// focus resolves the window a command was issued from. An empty window is
// the configured log viewer handle.
func (d *Deps) focus(window, app string) viewer.Focus {
	if window == "" {
		window = config.DefaultViewerHandle
		if d.Config != nil && d.Config.ViewerHandle != "" {
			window = d.Config.ViewerHandle
		}
	}
	return viewer.Focus{Handle: window, App: app}
}

// exec runs one viewer command and returns what it announced. Commands are
// serialized so each call only sees its own announcements, and exec waits for
// the moves the command queued before collecting them.
func (d *Deps) exec(ctx context.Context, command func(ctx context.Context) error) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.Announcements.Take()
	err := command(ctx)
	if flushErr := d.Queue.Flush(ctx); flushErr != nil && err == nil {
		err = flushErr
	}
	said := d.Announcements.Take()
	if err != nil {
		return said, WrapViewerError(err, strings.Join(said, " "))
	}
	return said, nil
}
