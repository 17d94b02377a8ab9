package records

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const exportTimeLayout = "20060102-150405"

// ExportAll writes a zip archive of every record file in the resolved
// directory to w and returns the number of files archived. The directory is
// read at export time, so files synced in since the last Reload are included.
// Files are first copied into a temporary staging directory; the staging
// directory is always removed.
func (s *Store) ExportAll(ctx context.Context, w io.Writer) (int, error) {
	dir, _, err := s.resolver.Resolve()
	if err != nil {
		return 0, newStorageError("export", "", err)
	}

	names, err := recordFileNames(dir)
	if err != nil {
		return 0, newStorageError("export", "", err)
	}

	staging, err := os.MkdirTemp("", "textflow-export-*")
	if err != nil {
		return 0, newStorageError("export", "", err)
	}

	defer func() {
		if err := os.RemoveAll(staging); err != nil {
			s.logger.WarnContext(ctx, "Failed to remove export staging directory", "dir", staging, "error", err)
		}
	}()

	staged := make([]string, 0, len(names))

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		err := copyFile(filepath.Join(dir, name), filepath.Join(staging, name))
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.WarnContext(ctx, "Record file removed during export", "file", name)

			continue
		}

		if err != nil {
			return 0, newStorageError("export", "", err)
		}

		staged = append(staged, name)
	}

	if err := writeArchive(w, staging, staged); err != nil {
		return 0, newStorageError("export", "", err)
	}

	s.logger.InfoContext(ctx, "Records exported", "count", len(staged))

	return len(staged), nil
}

// ExportToFile writes the archive produced by ExportAll into dir and returns its path.
func (s *Store) ExportToFile(ctx context.Context, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", newStorageError("export", "", err)
	}

	path := filepath.Join(dir, ExportFileName(s.now()))

	tmp, err := os.CreateTemp(dir, ".export-*.zip")
	if err != nil {
		return "", newStorageError("export", "", err)
	}

	tmpName := tmp.Name()

	if _, err := s.ExportAll(ctx, tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)

		return "", err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)

		return "", newStorageError("export", "", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)

		return "", newStorageError("export", "", err)
	}

	return path, nil
}

// ExportFilePrefix starts the name of every export archive.
const ExportFilePrefix = "textflow-export-"

// ExportFileName names the archive produced at t.
func ExportFileName(t time.Time) string {
	return ExportFilePrefix + t.Format(exportTimeLayout) + ".zip"
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()

		return fmt.Errorf("copying %s: %w", filepath.Base(src), err)
	}

	return out.Close()
}

func writeArchive(w io.Writer, dir string, names []string) error {
	zw := zip.NewWriter(w)

	for _, name := range names {
		if err := addToArchive(zw, dir, name); err != nil {
			zw.Close()

			return err
		}
	}

	return zw.Close()
}

func addToArchive(zw *zip.Writer, dir, name string) error {
	path := filepath.Join(dir, name)

	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}

	header.Name = name
	header.Method = zip.Deflate

	entry, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(entry, f)

	return err
}
