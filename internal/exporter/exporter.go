package exporter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"golang.org/x/sync/errgroup"

	"datacleanr/internal/table"
)

// Format is a download format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Formats lists every export format
var Formats = []Format{FormatCSV, FormatXLSX}

// ParseFormat validates a format name; empty means csv
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFormat, s)
}

var (
	// ErrInvalidFormat is returned for unknown download formats
	ErrInvalidFormat = errors.New("invalid format, use 'csv' or 'xlsx'")
	// ErrNotExported is returned when no export exists for a session
	ErrNotExported = errors.New("cleaned file not found")
)

var safeID = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Result maps each format to its write error, nil on success
type Result map[Format]error

// HasErrors reports whether any format failed
func (r Result) HasErrors() bool {
	for _, err := range r {
		if err != nil {
			return true
		}
	}
	return false
}

// Errors returns the failure message per format
func (r Result) Errors() map[string]string {
	out := map[string]string{}
	for f, err := range r {
		if err != nil {
			out[string(f)] = err.Error()
		}
	}
	return out
}

// Exporter writes cleaned tables into a scratch directory
type Exporter struct {
	dir    string
	logger *slog.Logger
}

// New creates an exporter writing into dir, creating it if needed. An
// empty dir uses the OS temp directory.
func New(dir string, logger *slog.Logger) (*Exporter, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{dir: dir, logger: logger.With(slog.String("component", "exporter"))}, nil
}

// Dir returns the scratch directory
func (e *Exporter) Dir() string {
	return e.dir
}

func (e *Exporter) filePath(id string, f Format) (string, error) {
	if !safeID.MatchString(id) {
		return "", fmt.Errorf("invalid session id %q", id)
	}
	return filepath.Join(e.dir, fmt.Sprintf("%s_cleaned.%s", id, f)), nil
}

// Export writes the CSV and XLSX files concurrently. Failures are logged
// and reported per format; a failed format leaves no file behind.
func (e *Exporter) Export(ctx context.Context, id string, t *table.Table) Result {
	writers := map[Format]func(io.Writer, *table.Table) error{
		FormatCSV:  WriteCSV,
		FormatXLSX: WriteXLSX,
	}

	var mu sync.Mutex
	result := make(Result, len(writers))
	g, gctx := errgroup.WithContext(ctx)
	for _, format := range Formats {
		format, write := format, writers[format]
		g.Go(func() error {
			err := e.writeFile(gctx, id, format, t, write)
			mu.Lock()
			result[format] = err
			mu.Unlock()
			if err != nil {
				e.logger.WarnContext(ctx, "export failed",
					slog.String("session_id", id),
					slog.String("format", string(format)),
					slog.String("error", err.Error()))
			}
			// formats are independent, so one failure does not cancel the other
			return nil
		})
	}
	_ = g.Wait()

	e.logger.DebugContext(ctx, "export finished",
		slog.String("session_id", id),
		slog.Int("rows", t.NumRows()),
		slog.Bool("has_errors", result.HasErrors()))
	return result
}

// writeFile replaces the session's export for one format. On failure the
// previous export is removed too, so a download never serves output from
// an earlier clean.
func (e *Exporter) writeFile(ctx context.Context, id string, f Format, t *table.Table, write func(io.Writer, *table.Table) error) error {
	path, err := e.filePath(id, f)
	if err != nil {
		return err
	}
	if err := e.replace(ctx, path, t, write); err != nil {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			e.logger.WarnContext(ctx, "failed to remove stale export",
				slog.String("path", path),
				slog.String("error", rmErr.Error()))
		}
		return err
	}
	return nil
}

// replace writes to a temporary file and renames it into place
func (e *Exporter) replace(ctx context.Context, path string, t *table.Table, write func(io.Writer, *table.Table) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(e.dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := write(tmp, t); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

// Path returns the export file of a session, or ErrNotExported when it
// has not been written
func (e *Exporter) Path(id string, f Format) (string, error) {
	path, err := e.filePath(id, f)
	if err != nil {
		return "", ErrNotExported
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotExported
		}
		return "", fmt.Errorf("failed to stat export: %w", err)
	}
	return path, nil
}

// Remove deletes every export of a session
func (e *Exporter) Remove(id string) error {
	var errs []error
	for _, f := range Formats {
		path, err := e.filePath(id, f)
		if err != nil {
			return err
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
