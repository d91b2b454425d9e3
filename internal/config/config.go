// Package config provides configuration loading from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/usestring/logviewer-mcp/internal/backup"
	"github.com/usestring/logviewer-mcp/internal/bookmark"
	"github.com/usestring/logviewer-mcp/internal/matchindex"
)

// Quick navigation modes.
const (
	QuickCursor = "cursor"
	QuickCaret  = "caret"
)

// Defaults for values that are not durations.
const (
	DefaultViewerHandle  = "log-viewer"
	DefaultResultContext = 2
	DefaultQueueSize     = 64
)

// Config holds all configuration for the MCP server.
type Config struct {
	LogPath      string // LOGVIEWER_LOG_PATH, the log file shown in the viewer (required)
	SettingsPath string // LOGVIEWER_SETTINGS_PATH, default <user config dir>/logviewer-mcp/settings.json
	BackupPath   string // LOGVIEWER_BACKUP_PATH, default <log dir>/<log name>.backup
	ViewerHandle string // LOGVIEWER_VIEWER_HANDLE, default "log-viewer"

	BackupEnabled   bool          // BACKUP_ENABLED, default true
	BackupInterval  time.Duration // BACKUP_INTERVAL_MS, default 5000ms
	BackupMaxBytes  int64         // BACKUP_MAX_BYTES, default 5MB
	BackupKeepLines int           // BACKUP_KEEP_LINES, default 1000

	BookmarkRefresh    time.Duration   // BOOKMARK_REFRESH_MS, default 100ms
	BookmarkNavigation bookmark.Policy // BOOKMARK_NAVIGATION, caret|cursor, default caret
	QuickNavigation    string          // QUICK_NAVIGATION, cursor|caret, default cursor

	PatternCacheSize int      // PATTERN_CACHE_SIZE, default 64
	ConflictingApps  []string // CONFLICTING_APPS, comma separated, default "notepad++"
	ResultContext    int      // RESULT_CONTEXT, default 2
	QueueSize        int      // DISPATCH_QUEUE_SIZE, default 64

	// Logging configuration
	LogLevel      string // LOG_LEVEL, default "info"
	LogFormat     string // LOG_FORMAT, text|json, default "text"
	LogFile       string // LOG_FILE, default "" (stderr only)
	LogMaxSizeMB  int    // LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    // LOG_MAX_BACKUPS, default 5
	LogMaxAgeDays int    // LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   // LOG_COMPRESS, default true
}

// Load reads configuration from environment variables with sensible defaults.
// Unparseable enumerations are reported as errors; unparseable numbers fall
// back to their defaults.
func Load() (*Config, error) {
	policy, err := bookmark.ParsePolicy(os.Getenv("BOOKMARK_NAVIGATION"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		LogPath:      getEnvString("LOGVIEWER_LOG_PATH", ""),
		SettingsPath: getEnvString("LOGVIEWER_SETTINGS_PATH", defaultSettingsPath()),
		ViewerHandle: getEnvString("LOGVIEWER_VIEWER_HANDLE", DefaultViewerHandle),

		BackupEnabled:   getEnvBool("BACKUP_ENABLED", true),
		BackupInterval:  getEnvDurationMs("BACKUP_INTERVAL_MS", int(backup.DefaultInterval/time.Millisecond)),
		BackupMaxBytes:  int64(getEnvInt("BACKUP_MAX_BYTES", backup.DefaultMaxBytes)),
		BackupKeepLines: getEnvInt("BACKUP_KEEP_LINES", backup.DefaultKeepLines),

		BookmarkRefresh:    getEnvDurationMs("BOOKMARK_REFRESH_MS", int(bookmark.DefaultRefreshInterval/time.Millisecond)),
		BookmarkNavigation: policy,
		QuickNavigation:    strings.ToLower(getEnvString("QUICK_NAVIGATION", QuickCursor)),

		PatternCacheSize: getEnvInt("PATTERN_CACHE_SIZE", matchindex.DefaultCacheSize),
		ConflictingApps:  getEnvList("CONFLICTING_APPS", []string{"notepad++"}),
		ResultContext:    getEnvInt("RESULT_CONTEXT", DefaultResultContext),
		QueueSize:        getEnvInt("DISPATCH_QUEUE_SIZE", DefaultQueueSize),

		LogLevel:      getEnvString("LOG_LEVEL", "info"),
		LogFormat:     getEnvString("LOG_FORMAT", "text"),
		LogFile:       getEnvString("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
	}
	cfg.BackupPath = getEnvString("LOGVIEWER_BACKUP_PATH", defaultBackupPath(cfg.LogPath))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports configuration that cannot work.
func (c *Config) Validate() error {
	var errs []error
	if c.LogPath == "" {
		errs = append(errs, errors.New("LOGVIEWER_LOG_PATH is required"))
	}
	if c.QuickNavigation != QuickCursor && c.QuickNavigation != QuickCaret {
		errs = append(errs, fmt.Errorf("QUICK_NAVIGATION must be %q or %q, got %q", QuickCursor, QuickCaret, c.QuickNavigation))
	}
	if c.PatternCacheSize <= 0 {
		errs = append(errs, fmt.Errorf("PATTERN_CACHE_SIZE must be positive, got %d", c.PatternCacheSize))
	}
	if c.BackupInterval <= 0 {
		errs = append(errs, fmt.Errorf("BACKUP_INTERVAL_MS must be positive, got %s", c.BackupInterval))
	}
	return errors.Join(errs...)
}

// QuickStep reports whether find next/previous step from the current match.
func (c *Config) QuickStep() bool {
	return c.QuickNavigation == QuickCursor
}

func defaultSettingsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "logviewer-mcp", "settings.json")
}

func defaultBackupPath(logPath string) string {
	if logPath == "" {
		return ""
	}
	return logPath + ".backup"
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDurationMs(key string, defaultMs int) time.Duration {
	ms := getEnvInt(key, defaultMs)
	return time.Duration(ms) * time.Millisecond
}

// getEnvList splits a comma separated value. An explicitly empty list is
// written as "-".
func getEnvList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	if v == "-" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
