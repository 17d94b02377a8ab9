package backup

import (
	"archive/zip"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dukex/textflow/pkg/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type exporterFunc func(ctx context.Context, dir string) (string, error)

func (f exporterFunc) ExportToFile(ctx context.Context, dir string) (string, error) {
	return f(ctx, dir)
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestNewScheduler_Validation(t *testing.T) {
	exporter := exporterFunc(func(context.Context, string) (string, error) { return "", nil })

	_, err := NewScheduler(exporter, "", "@daily", testLogger())
	assert.ErrorIs(t, err, ErrNoBackupDir)

	_, err = NewScheduler(exporter, t.TempDir(), "not a cron", testLogger())
	assert.Error(t, err)

	_, err = NewScheduler(exporter, t.TempDir(), "0 3 * * *", testLogger())
	assert.NoError(t, err)
}

func TestScheduler_RunOnceWritesArchive(t *testing.T) {
	ctx := context.Background()

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local)
	store := records.NewStore(testLogger(), records.NewDirResolver("", t.TempDir()),
		records.WithClock(func() time.Time { return now }))

	_, err := store.Add(ctx, "first", nil)
	require.NoError(t, err)

	backupDir := filepath.Join(t.TempDir(), "backups")

	scheduler, err := NewScheduler(store, backupDir, "@daily", testLogger())
	require.NoError(t, err)

	path, err := scheduler.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(backupDir, records.ExportFileName(now)), path)

	archive, err := zip.OpenReader(path)
	require.NoError(t, err)

	defer archive.Close()

	assert.Len(t, archive.File, 1)
}

func TestScheduler_Retention(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local)
	runs := 0

	exporter := exporterFunc(func(_ context.Context, dir string) (string, error) {
		path := filepath.Join(dir, records.ExportFileName(start.Add(time.Duration(runs)*time.Hour)))
		runs++

		return path, os.WriteFile(path, []byte("zip"), 0o644)
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644))

	scheduler, err := NewScheduler(exporter, dir, "@hourly", testLogger(), WithRetention(2))
	require.NoError(t, err)

	for range 4 {
		_, err := scheduler.RunOnce(context.Background())
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	assert.ElementsMatch(t, []string{
		"unrelated.txt",
		records.ExportFileName(start.Add(2 * time.Hour)),
		records.ExportFileName(start.Add(3 * time.Hour)),
	}, names)
}

func TestScheduler_RunOnceExportError(t *testing.T) {
	failure := errors.New("disk gone")
	exporter := exporterFunc(func(context.Context, string) (string, error) { return "", failure })

	scheduler, err := NewScheduler(exporter, t.TempDir(), "@daily", testLogger())
	require.NoError(t, err)

	_, err = scheduler.RunOnce(context.Background())
	assert.ErrorIs(t, err, failure)
}

func TestScheduler_StartStop(t *testing.T) {
	exporter := exporterFunc(func(context.Context, string) (string, error) { return "", nil })

	scheduler, err := NewScheduler(exporter, t.TempDir(), "@every 1h", testLogger())
	require.NoError(t, err)

	require.NoError(t, scheduler.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, scheduler.Stop(ctx))
	assert.NoError(t, scheduler.Stop(ctx))
}
