// Package backup copies a growing log file into a backup file, resuming from
// a persisted byte offset, and rotates the backup when it grows too large.
package backup

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	DefaultInterval  = 5 * time.Second
	DefaultMaxBytes  = 5 * 1024 * 1024
	DefaultKeepLines = 1000

	timestampLayout = "2006-01-02 15:04:05"
)

var rule = strings.Repeat("=", 60)

// OffsetStore persists the read offset into the source log.
type OffsetStore interface {
	BackupOffset() int64
	SetBackupOffset(offset int64) error
}

// Config configures a Cursor.
type Config struct {
	// Source is the log file being followed.
	Source string
	// Target is the backup file appended to.
	Target string
	// Interval between background syncs.
	Interval time.Duration
	// MaxBytes is the backup size that triggers rotation.
	MaxBytes int64
	// KeepLines is the number of trailing lines kept by rotation.
	KeepLines int
	// Now returns the time written into headers. Defaults to time.Now.
	Now func() time.Time
}

// Cursor follows Source and appends everything new to Target.
type Cursor struct {
	cfg    Config
	store  OffsetStore
	logger *slog.Logger

	mu     sync.Mutex
	offset int64
	group  singleflight.Group
}

// New creates a Cursor resuming at the offset held by store.
func New(cfg Config, store OffsetStore, logger *slog.Logger) *Cursor {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.KeepLines <= 0 {
		cfg.KeepLines = DefaultKeepLines
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Cursor{cfg: cfg, store: store, logger: logger}
	if store != nil {
		c.offset = store.BackupOffset()
	}
	return c
}

// Offset returns the current read offset.
func (c *Cursor) Offset() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offset
}

// Init starts a backup session. The offset is reset when the source is
// shorter than it (the log was truncated or replaced) and a header block is
// appended to the target.
func (c *Cursor) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	size, err := fileSize(c.cfg.Source)
	if err != nil {
		return err
	}
	if size < c.offset {
		c.logger.Info("log shrank since last backup, restarting from the beginning",
			slog.Int64("offset", c.offset),
			slog.Int64("size", size),
		)
		if err := c.setOffset(0); err != nil {
			return err
		}
	}
	return appendFile(c.cfg.Target, []byte(Header(c.cfg.Now())))
}

// Sync appends everything written to the source since the last sync and
// returns the number of bytes copied. Concurrent calls share one run.
func (c *Cursor) Sync(ctx context.Context) (int64, error) {
	v, err, _ := c.group.Do("sync", func() (any, error) {
		return c.sync(ctx)
	})
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

func (c *Cursor) sync(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	src, err := os.Open(c.cfg.Source)
	if err != nil {
		return 0, fmt.Errorf("opening log: %w", err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat log: %w", err)
	}
	size := info.Size()
	if size < c.offset {
		if err := c.setOffset(0); err != nil {
			return 0, err
		}
	}
	if size == c.offset {
		return 0, nil
	}

	if _, err := src.Seek(c.offset, io.SeekStart); err != nil {
		return 0, fmt.Errorf("seeking log: %w", err)
	}
	chunk, err := io.ReadAll(io.LimitReader(src, size-c.offset))
	if err != nil {
		return 0, fmt.Errorf("reading log: %w", err)
	}
	if err := appendFile(c.cfg.Target, chunk); err != nil {
		return 0, err
	}
	copied := int64(len(chunk))
	if err := c.setOffset(c.offset + copied); err != nil {
		return copied, err
	}

	if err := c.rotateIfNeeded(); err != nil {
		return copied, err
	}
	return copied, nil
}

// Run syncs every Interval until ctx is cancelled. Failures are logged and
// the loop continues.
func (c *Cursor) Run(ctx context.Context) error {
	c.logger.Info("starting log backup",
		slog.String("source", c.cfg.Source),
		slog.String("target", c.cfg.Target),
		slog.Duration("interval", c.cfg.Interval),
	)
	if err := c.Init(); err != nil {
		c.logger.Warn("log backup init failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("stopping log backup")
			return nil
		case <-ticker.C:
			n, err := c.Sync(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				c.logger.Warn("log backup failed", slog.String("error", err.Error()))
				continue
			}
			if n > 0 {
				c.logger.Debug("log backup synced", slog.Int64("bytes", n))
			}
		}
	}
}

// setOffset must be called with mu held.
func (c *Cursor) setOffset(offset int64) error {
	c.offset = offset
	if c.store == nil {
		return nil
	}
	if err := c.store.SetBackupOffset(offset); err != nil {
		return fmt.Errorf("saving backup offset: %w", err)
	}
	return nil
}

// rotateIfNeeded keeps the last KeepLines lines of the target once it is
// larger than MaxBytes. Must be called with mu held.
func (c *Cursor) rotateIfNeeded() error {
	size, err := fileSize(c.cfg.Target)
	if err != nil {
		return err
	}
	if size <= c.cfg.MaxBytes {
		return nil
	}

	data, err := os.ReadFile(c.cfg.Target)
	if err != nil {
		return fmt.Errorf("reading backup: %w", err)
	}
	lines := lastLines(data, c.cfg.KeepLines)

	var buf bytes.Buffer
	buf.WriteString(RotationBanner(c.cfg.Now(), c.cfg.KeepLines))
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	if err := replaceFile(c.cfg.Target, buf.Bytes()); err != nil {
		return err
	}
	c.logger.Info("backup rotated",
		slog.Int64("size", size),
		slog.Int("kept_lines", len(lines)),
	)
	return nil
}

// Header is the block written when a backup session starts.
func Header(now time.Time) string {
	return "\n" + rule + "\nNVDA LOG BACKUP - " + now.Format(timestampLayout) + "\n" + rule + "\n"
}

// RotationBanner is the block that starts a rotated backup.
func RotationBanner(now time.Time, kept int) string {
	return fmt.Sprintf("%s\nLOG ROTATED - %s - kept last %d lines\n%s\n", rule, now.Format(timestampLayout), kept, rule)
}

func lastLines(data []byte, n int) []string {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), len(data)+1)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.Size(), nil
}

func appendFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating backup dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening backup: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing backup: %w", err)
	}
	return f.Close()
}

func replaceFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".backup-*")
	if err != nil {
		return fmt.Errorf("creating rotated backup: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing rotated backup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing rotated backup: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing backup: %w", err)
	}
	return nil
}
