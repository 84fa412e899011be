// Package ingest orchestrates turning uploads and links into stored text:
// validate input, persist the raw artifact under a generated name, then run
// the extractor over it.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dharsanguruparan/insightmate/internal/extract"
)

var (
	// ErrDisallowedType rejects uploads outside the extension allow-list.
	ErrDisallowedType = errors.New("file type not allowed")
	// ErrTooLarge rejects uploads over the configured size limit.
	ErrTooLarge = errors.New("file too large")
)

var allowedExtensions = map[string]struct{}{
	".pdf":  {},
	".txt":  {},
	".doc":  {},
	".docx": {},
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
}

// Pipeline validates, stores, and extracts uploaded content.
type Pipeline struct {
	extractor   *extract.Extractor
	uploadDir   string
	maxFileSize int64
}

// New prepares the upload directory and returns a Pipeline.
func New(extractor *extract.Extractor, uploadDir string, maxFileSize int64) (*Pipeline, error) {
	if err := os.MkdirAll(uploadDir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Pipeline{
		extractor:   extractor,
		uploadDir:   uploadDir,
		maxFileSize: maxFileSize,
	}, nil
}

// SaveFile validates the upload and writes it under a freshly generated
// storage name that preserves only the extension. The caller-visible name is
// decoupled from the on-disk name, so re-uploads and hostile filenames never
// collide at the storage layer. Returns the storage path.
func (p *Pipeline) SaveFile(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", fmt.Errorf("%w: %s", ErrDisallowedType, filename)
	}
	if int64(len(data)) > p.maxFileSize {
		return "", fmt.Errorf("%w: %d bytes", ErrTooLarge, len(data))
	}
	storageName := uuid.NewString() + ext
	path := filepath.Join(p.uploadDir, storageName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return path, nil
}

// ProcessFile dispatches a stored artifact to the extractor by extension.
func (p *Pipeline) ProcessFile(storagePath string) extract.Result {
	ext := strings.ToLower(filepath.Ext(storagePath))
	switch ext {
	case ".pdf":
		data, err := os.ReadFile(storagePath)
		if err != nil {
			return extract.Result{Kind: extract.KindFailed, Reason: fmt.Sprintf("Error processing file: %v", err)}
		}
		return p.extractor.PDF(data)
	case ".txt":
		data, err := os.ReadFile(storagePath)
		if err != nil {
			return extract.Result{Kind: extract.KindFailed, Reason: fmt.Sprintf("Error processing file: %v", err)}
		}
		return p.extractor.PlainText(data)
	case ".doc", ".docx":
		return p.extractor.Document(storagePath)
	case ".jpg", ".jpeg", ".png", ".gif":
		return p.extractor.Image(storagePath)
	default:
		return extract.Result{
			Kind:   extract.KindUnsupported,
			Reason: fmt.Sprintf("File type %s not supported for content extraction.", ext),
		}
	}
}

// IngestLink scrapes a portfolio URL into text.
func (p *Pipeline) IngestLink(ctx context.Context, url string) extract.Result {
	return p.extractor.URL(ctx, url)
}

// RemoveArtifact best-effort deletes stored binaries whose storage name starts
// with the upload name's first segment. Storage names are generated, so this
// frequently matches nothing; the record deletion does not depend on it.
func (p *Pipeline) RemoveArtifact(filename string) bool {
	prefix := strings.SplitN(filename, ".", 2)[0]
	if prefix == "" {
		return false
	}
	entries, err := os.ReadDir(p.uploadDir)
	if err != nil {
		return false
	}
	removed := false
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), prefix) {
			if err := os.Remove(filepath.Join(p.uploadDir, entry.Name())); err == nil {
				removed = true
			}
		}
	}
	return removed
}

// UploadStats summarizes the artifacts currently on disk.
type UploadStats struct {
	TotalFiles     int     `json:"total_files"`
	TotalSizeBytes int64   `json:"total_size_bytes"`
	TotalSizeMB    float64 `json:"total_size_mb"`
}

// Stats reports file count and total bytes under the upload directory.
func (p *Pipeline) Stats() (*UploadStats, error) {
	entries, err := os.ReadDir(p.uploadDir)
	if err != nil {
		return nil, fmt.Errorf("read upload dir: %w", err)
	}
	stats := &UploadStats{}
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		stats.TotalFiles++
		stats.TotalSizeBytes += info.Size()
	}
	stats.TotalSizeMB = math.Round(float64(stats.TotalSizeBytes)/(1<<20)*100) / 100
	return stats, nil
}

// CleanupOld removes artifacts older than maxAge and returns how many were
// deleted.
func (p *Pipeline) CleanupOld(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(p.uploadDir)
	if err != nil {
		return 0, fmt.Errorf("read upload dir: %w", err)
	}
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(p.uploadDir, entry.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}
