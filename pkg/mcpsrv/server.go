package mcpsrv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/usestring/logviewer-mcp/internal/backup"
	"github.com/usestring/logviewer-mcp/internal/bookmark"
	"github.com/usestring/logviewer-mcp/internal/cache"
	"github.com/usestring/logviewer-mcp/internal/config"
	"github.com/usestring/logviewer-mcp/internal/dispatch"
	"github.com/usestring/logviewer-mcp/internal/history"
	"github.com/usestring/logviewer-mcp/internal/logging"
	"github.com/usestring/logviewer-mcp/internal/matchindex"
	"github.com/usestring/logviewer-mcp/internal/mcp"
	"github.com/usestring/logviewer-mcp/internal/mcp/tools"
	"github.com/usestring/logviewer-mcp/internal/notify"
	"github.com/usestring/logviewer-mcp/internal/query"
	"github.com/usestring/logviewer-mcp/internal/settings"
	"github.com/usestring/logviewer-mcp/internal/textsource"
	"github.com/usestring/logviewer-mcp/internal/viewer"
)

// Server is the log viewer MCP server.
// It wraps the internal implementation and provides extension points.
type Server struct {
	internal   *mcp.Server
	queue      *dispatch.Queue
	backup     *backup.Cursor
	deps       *Deps
	logCleanup func() error
}

// NewServer creates a new MCP server with the builtin log viewer tools.
//
// Configuration is loaded from the environment unless WithConfig is given.
// Use functional options to configure logging, plug in a host viewer, add
// custom tools, etc.
func NewServer(opts ...Option) (*Server, error) {
	sc := &serverConfig{}
	for _, opt := range opts {
		opt(sc)
	}
	if sc.config == nil {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		sc.config = cfg
	}
	cfg := sc.config

	// Setup logging
	logCfg := logging.Config{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		FilePath:   cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
		Compress:   cfg.LogCompress,
	}
	if sc.logLevel != "" {
		logCfg.Level = sc.logLevel
	}
	if sc.logFile != "" {
		logCfg.FilePath = sc.logFile
	}
	_, logCleanup, err := logging.Setup(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}

	store, err := settings.Open(cfg.SettingsPath, logging.Component("settings"))
	if err != nil {
		_ = logCleanup()
		return nil, fmt.Errorf("failed to open settings: %w", err)
	}
	patterns, err := cache.NewPatternCache(cfg.PatternCacheSize)
	if err != nil {
		_ = logCleanup()
		return nil, fmt.Errorf("failed to create pattern cache: %w", err)
	}

	source := sc.source
	if source == nil {
		source = textsource.NewLogFile(cfg.LogPath)
	}
	detector := sc.detector
	if detector == nil {
		detector = textsource.HandleDetector(cfg.ViewerHandle)
	}

	// Every announcement is logged and collected for the tool result.
	announcements := notify.NewBuffer()
	sink := notify.Tee{notify.LogSink{}, announcements}
	sink = append(sink, sc.sinks...)

	queue := dispatch.New(cfg.QueueSize, logging.Component("dispatch"))
	v, err := viewer.New(viewer.Config{
		Source:          source,
		Detector:        detector,
		Options:         store,
		History:         history.New(store),
		Counter:         bookmark.NewCounter(store),
		Bookmarks:       bookmark.NewIndex(cfg.BookmarkRefresh),
		Index:           matchindex.New(patterns),
		Queue:           queue,
		Sink:            sink,
		BookmarkPolicy:  cfg.BookmarkNavigation,
		QuickStep:       cfg.QuickStep(),
		ConflictingApps: cfg.ConflictingApps,
		ResultContext:   cfg.ResultContext,
		Logger:          logging.Component("viewer"),
	})
	if err != nil {
		_ = logCleanup()
		return nil, fmt.Errorf("failed to create viewer: %w", err)
	}

	var backupCursor *backup.Cursor
	if cfg.BackupEnabled {
		backupCursor = backup.New(backup.Config{
			Source:    cfg.LogPath,
			Target:    cfg.BackupPath,
			Interval:  cfg.BackupInterval,
			MaxBytes:  cfg.BackupMaxBytes,
			KeepLines: cfg.BackupKeepLines,
		}, store, logging.Component("backup"))
	}
	engine := query.NewEngine()

	toolDeps := &tools.Deps{
		Viewer:        v,
		Settings:      store,
		Backup:        backupCursor,
		Query:         engine,
		Queue:         queue,
		Announcements: announcements,
		Config:        cfg,
	}
	deps := &Deps{
		Viewer:   v,
		Settings: store,
		Backup:   backupCursor,
		Query:    engine,
		Config:   cfg,
	}

	// Build internal server options
	var internalOpts []mcp.ServerOption
	if !sc.disableBuiltinTools {
		internalOpts = append(internalOpts, mcp.WithBuiltinTools())
	}
	if !sc.disableBuiltinPrompts {
		internalOpts = append(internalOpts, mcp.WithBuiltinPrompts())
	}
	for _, fn := range sc.toolRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}
	for _, fn := range sc.promptRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}
	for _, fn := range sc.resourceRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}
	for _, fn := range sc.deferredToolRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(func(srv *sdkmcp.Server) {
			fn(srv, deps)
		}))
	}

	internal, err := mcp.NewServer(toolDeps, internalOpts...)
	if err != nil {
		_ = logCleanup()
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	return &Server{
		internal:   internal,
		queue:      queue,
		backup:     backupCursor,
		deps:       deps,
		logCleanup: logCleanup,
	}, nil
}

// Run serves MCP over stdio until ctx is cancelled or the client goes away.
// The move queue consumer and, when enabled, the log backup loop run
// alongside it and stop with it.
func (s *Server) Run(ctx context.Context) error {
	return s.RunTransport(ctx, &sdkmcp.StdioTransport{})
}

// RunTransport is Run over an explicit transport.
func (s *Server) RunTransport(ctx context.Context, t sdkmcp.Transport) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.queue.Run(ctx)
	})
	if s.backup != nil {
		g.Go(func() error {
			return s.backup.Run(ctx)
		})
	}
	g.Go(func() error {
		defer cancel()
		err := s.internal.RunTransport(ctx, t)
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("mcp server: %w", err)
		}
		slog.Debug("mcp session ended")
		return nil
	})
	return g.Wait()
}

// Close cleans up server resources.
func (s *Server) Close() error {
	if s.logCleanup != nil {
		return s.logCleanup()
	}
	return nil
}

// Deps returns the dependencies for building custom tools.
func (s *Server) Deps() *Deps {
	return s.deps
}
