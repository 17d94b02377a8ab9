// Package backup periodically archives the record directory into zip files.
package backup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/dukex/textflow/pkg/records"
	"github.com/robfig/cron/v3"
)

// Exporter writes an archive of every record into dir and returns its path.
type Exporter interface {
	ExportToFile(ctx context.Context, dir string) (string, error)
}

// ErrNoBackupDir is returned when the scheduler has no destination directory.
var ErrNoBackupDir = errors.New("backup directory is required")

// Scheduler runs exports on a cron schedule and prunes old archives.
type Scheduler struct {
	exporter Exporter
	dir      string
	spec     string
	keep     int
	logger   *slog.Logger

	mutex  sync.Mutex
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithRetention keeps only the newest keep archives after each run. Zero keeps everything.
func WithRetention(keep int) Option {
	return func(s *Scheduler) {
		s.keep = keep
	}
}

// NewScheduler validates spec, a standard five-field cron expression or a
// descriptor such as @daily.
func NewScheduler(exporter Exporter, dir, spec string, logger *slog.Logger, opts ...Option) (*Scheduler, error) {
	if dir == "" {
		return nil, ErrNoBackupDir
	}

	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid cron expression '%s': %w", spec, err)
	}

	s := &Scheduler{
		exporter: exporter,
		dir:      dir,
		spec:     spec,
		logger:   logger.With("module", "backup_scheduler"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.ctx, s.cancel = context.WithCancel(ctx)

	s.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	entryID, err := s.cron.AddFunc(s.spec, func() {
		if _, err := s.RunOnce(s.ctx); err != nil {
			s.logger.Error("Backup failed", "error", err)
		}
	})
	if err != nil {
		s.cancel()

		return fmt.Errorf("failed to add backup job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Backup scheduler started", "cron", s.spec, "dir", s.dir, "entry_id", entryID)

	return nil
}

// Stop halts the schedule and waits for a running backup to finish.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.cron == nil {
		return nil
	}

	done := s.cron.Stop()

	select {
	case <-done.Done():
	case <-ctx.Done():
		s.cancel()

		return ctx.Err()
	}

	s.cancel()
	s.cron = nil

	s.logger.Info("Backup scheduler stopped")

	return nil
}

// RunOnce writes one archive and applies retention.
func (s *Scheduler) RunOnce(ctx context.Context) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	path, err := s.exporter.ExportToFile(ctx, s.dir)
	if err != nil {
		return "", fmt.Errorf("failed to export records: %w", err)
	}

	s.logger.InfoContext(ctx, "Backup written", "path", path)

	if err := s.prune(); err != nil {
		s.logger.WarnContext(ctx, "Failed to prune old backups", "error", err)
	}

	return path, nil
}

// prune removes the oldest archives beyond the retention count. Archive names
// embed their timestamp, so name order is age order.
func (s *Scheduler) prune() error {
	if s.keep <= 0 {
		return nil
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}

	var archives []string

	for _, entry := range entries {
		name := entry.Name()
		if entry.Type().IsRegular() && strings.HasPrefix(name, records.ExportFilePrefix) && strings.HasSuffix(name, ".zip") {
			archives = append(archives, name)
		}
	}

	if len(archives) <= s.keep {
		return nil
	}

	slices.Sort(archives)

	var errs []error

	for _, name := range archives[:len(archives)-s.keep] {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
