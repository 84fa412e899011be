package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/insightmate/internal/extract"
)

const tenMiB = 10 << 20

func newTestPipeline(t *testing.T) (*Pipeline, string) {
	t.Helper()
	dir := t.TempDir()
	p, err := New(extract.New(), dir, tenMiB)
	require.NoError(t, err)
	return p, dir
}

func TestSaveFileRejectsDisallowedExtension(t *testing.T) {
	p, dir := newTestPipeline(t)
	_, err := p.SaveFile("malware.exe", []byte("data"))
	require.ErrorIs(t, err, ErrDisallowedType)
	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "no artifact should be written on rejection")
}

func TestSaveFileRejectsOversizedUpload(t *testing.T) {
	p, dir := newTestPipeline(t)
	big := make([]byte, 12<<20)
	_, err := p.SaveFile("resume.pdf", big)
	require.ErrorIs(t, err, ErrTooLarge)
	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "no artifact should be written on rejection")
}

func TestSaveFileExtensionIsCaseInsensitive(t *testing.T) {
	p, _ := newTestPipeline(t)
	path, err := p.SaveFile("Resume.PDF", []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, ".pdf", filepath.Ext(path))
}

func TestSaveFileGeneratesUniqueStorageNames(t *testing.T) {
	p, _ := newTestPipeline(t)
	first, err := p.SaveFile("notes.txt", []byte("one"))
	require.NoError(t, err)
	second, err := p.SaveFile("notes.txt", []byte("two"))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.FileExists(t, first)
	assert.FileExists(t, second)
}

func TestProcessFileText(t *testing.T) {
	p, _ := newTestPipeline(t)
	path, err := p.SaveFile("name.txt", []byte("hello"))
	require.NoError(t, err)
	result := p.ProcessFile(path)
	assert.Equal(t, extract.KindText, result.Kind)
	assert.Equal(t, "hello", result.Render())
}

func TestProcessFileDocumentPlaceholder(t *testing.T) {
	p, _ := newTestPipeline(t)
	path, err := p.SaveFile("cv.docx", []byte("PK\x03\x04"))
	require.NoError(t, err)
	result := p.ProcessFile(path)
	assert.Equal(t, extract.KindUnsupported, result.Kind)
	assert.Contains(t, result.Render(), "not fully implemented")
}

func TestProcessFileUnsupportedExtension(t *testing.T) {
	p, _ := newTestPipeline(t)
	result := p.ProcessFile("/tmp/data.csv")
	assert.Equal(t, extract.KindUnsupported, result.Kind)
	assert.Contains(t, result.Render(), ".csv not supported")
}

func TestIngestLinkDelegatesToExtractor(t *testing.T) {
	p, _ := newTestPipeline(t)
	result := p.IngestLink(context.Background(), "http://127.0.0.1:1/")
	assert.Equal(t, extract.KindFailed, result.Kind)
	assert.NotEmpty(t, result.Render())
}

func TestRemoveArtifact(t *testing.T) {
	p, dir := newTestPipeline(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "resume-copy.pdf"), []byte("x"), 0o644))

	assert.True(t, p.RemoveArtifact("resume.pdf"))
	assert.False(t, p.RemoveArtifact("resume.pdf"))
	assert.False(t, p.RemoveArtifact(""))
}

func TestStats(t *testing.T) {
	p, _ := newTestPipeline(t)
	_, err := p.SaveFile("a.txt", []byte(strings.Repeat("a", 100)))
	require.NoError(t, err)
	_, err = p.SaveFile("b.txt", []byte(strings.Repeat("b", 50)))
	require.NoError(t, err)

	stats, err := p.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalFiles)
	assert.Equal(t, int64(150), stats.TotalSizeBytes)
}

func TestCleanupOld(t *testing.T) {
	p, dir := newTestPipeline(t)
	oldPath := filepath.Join(dir, "old.txt")
	require.NoError(t, os.WriteFile(oldPath, []byte("old"), 0o644))
	stale := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(oldPath, stale, stale))
	_, err := p.SaveFile("fresh.txt", []byte("fresh"))
	require.NoError(t, err)

	removed, err := p.CleanupOld(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.NoFileExists(t, oldPath)

	stats, err := p.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalFiles)
}
