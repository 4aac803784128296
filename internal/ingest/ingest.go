// Package ingest extracts underwriting documents from uploaded archives and
// converts them to text for stage analysis.
package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/coverline/coverline/internal/config"
)

// minValidTextLength is the threshold below which an extracted document is
// treated as unreadable.
const minValidTextLength = 100

// FileExtract holds the extraction outcome for a single document.
type FileExtract struct {
	Name       string `json:"name"`
	FullText   string `json:"-"`
	PageCount  int    `json:"page_count"`
	TextLength int    `json:"text_length"`
	IsValid    bool   `json:"is_valid"`
}

// Result aggregates the extraction outcome for a session.
type Result struct {
	SessionID  string        `json:"session_id"`
	Files      []FileExtract `json:"files"`
	TotalPages int           `json:"total_pages"`
	ValidCount int           `json:"valid_count"`
	Combined   string        `json:"-"`
}

// System manages session document folders and text extraction.
type System interface {
	// ExtractArchive unpacks a ZIP archive into the session folder and
	// returns the number of files written.
	ExtractArchive(ctx context.Context, sessionID string, archive []byte) (int, error)
	// ExtractText walks the session folder for PDF documents and extracts
	// their text concurrently.
	ExtractText(ctx context.Context, sessionID string) (*Result, error)
	// SessionDir returns the extraction folder for a session.
	SessionDir(sessionID string) string
	// RemoveSession deletes a session's extraction folder.
	RemoveSession(sessionID string) error
	// StaleSessions returns ids of session folders older than maxAge.
	StaleSessions(maxAge time.Duration) ([]string, error)
}

type system struct {
	workspace   string
	concurrency int
	logger      *slog.Logger
}

// New creates an ingest system rooted at the configured workspace directory.
func New(cfg *config.PipelineConfig, logger *slog.Logger) System {
	return &system{
		workspace:   cfg.Workspace,
		concurrency: cfg.ExtractConcurrency,
		logger:      logger.With("system", "ingest"),
	}
}

func (s *system) SessionDir(sessionID string) string {
	return filepath.Join(s.workspace, sessionID)
}

func (s *system) ExtractArchive(ctx context.Context, sessionID string, archive []byte) (int, error) {
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}

	if len(reader.File) == 0 {
		return 0, ErrEmptyArchive
	}

	dir := s.SessionDir(sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create session folder: %w", err)
	}

	written := 0
	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() {
			continue
		}

		dest, err := safeEntryPath(dir, entry.Name)
		if err != nil {
			return written, err
		}

		if err := writeEntry(entry, dest); err != nil {
			return written, fmt.Errorf("extract %s: %w", entry.Name, err)
		}
		written++
	}

	if written == 0 {
		return 0, ErrEmptyArchive
	}

	s.logger.Info("archive extracted", "session_id", sessionID, "files", written)
	return written, nil
}

func (s *system) ExtractText(ctx context.Context, sessionID string) (*Result, error) {
	dir := s.SessionDir(sessionID)

	paths, err := findPDFs(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, ErrNoDocuments
	}

	files := make([]FileExtract, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			files[i] = extractFile(path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extract documents: %w", err)
	}

	result := &Result{
		SessionID: sessionID,
		Files:     files,
	}

	var combined strings.Builder
	for _, f := range files {
		result.TotalPages += f.PageCount
		if f.IsValid {
			result.ValidCount++
		}
		fmt.Fprintf(&combined, "=== DOCUMENT: %s ===\n%s\n\n", f.Name, f.FullText)
	}
	result.Combined = combined.String()

	s.logger.Info("documents extracted",
		"session_id", sessionID,
		"files", len(files),
		"valid", result.ValidCount,
		"pages", result.TotalPages,
	)

	return result, nil
}

func (s *system) RemoveSession(sessionID string) error {
	return os.RemoveAll(s.SessionDir(sessionID))
}

func (s *system) StaleSessions(maxAge time.Duration) ([]string, error) {
	entries, err := os.ReadDir(s.workspace)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read workspace: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	stale := make([]string, 0)

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			stale = append(stale, entry.Name())
		}
	}

	return stale, nil
}

func safeEntryPath(dir, name string) (string, error) {
	dest := filepath.Join(dir, filepath.Clean("/"+name))
	if !strings.HasPrefix(dest, filepath.Clean(dir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return dest, nil
}

func writeEntry(entry *zip.File, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	src, err := entry.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}

func findPDFs(dir string) ([]string, error) {
	paths := make([]string, 0)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".pdf") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoDocuments
		}
		return nil, fmt.Errorf("walk session folder: %w", err)
	}

	return paths, nil
}
