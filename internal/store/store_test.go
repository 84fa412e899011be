package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/insightmate/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	st, err := New(dir, filepath.Join(dir, "user_data.json"))
	require.NoError(t, err)
	return st
}

func TestNewInitializesEmptyRecord(t *testing.T) {
	st := newTestStore(t)
	data, err := st.UserData()
	require.NoError(t, err)
	assert.NotNil(t, data.PortfolioLinks)
	assert.NotNil(t, data.Files)
	assert.Empty(t, data.PortfolioLinks)
	assert.Empty(t, data.Files)
	assert.False(t, data.CreatedAt.IsZero())
}

func TestReadWithoutMutationIsIdempotent(t *testing.T) {
	st := newTestStore(t)
	first, err := st.UserData()
	require.NoError(t, err)
	second, err := st.UserData()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCorruptFileSelfHeals(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "user_data.json")
	st, err := New(dir, path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	data, err := st.UserData()
	require.NoError(t, err)
	assert.Empty(t, data.PortfolioLinks)
	assert.Empty(t, data.Files)
}

func TestPortfolioLinkIDsAreUnique(t *testing.T) {
	st := newTestStore(t)
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		id, err := st.AddPortfolioLink(model.PortfolioLink{URL: "https://example.com", Type: "website"}, "")
		require.NoError(t, err)
		assert.False(t, seen[id], "id %s reused", id)
		seen[id] = true
	}
	data, err := st.UserData()
	require.NoError(t, err)
	assert.Len(t, data.PortfolioLinks, 20)
}

func TestAddFileDataUpserts(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.AddFileData("r.pdf", "A"))
	require.NoError(t, st.AddFileData("r.pdf", "B"))
	data, err := st.UserData()
	require.NoError(t, err)
	require.Len(t, data.Files, 1)
	entry := data.Files["r.pdf"]
	assert.Equal(t, "B", entry.Content)
	assert.Equal(t, model.TypePDF, entry.FileType)
}

func TestDeleteFile(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.AddFileData("notes.txt", "hello"))

	removed, err := st.DeleteFile("notes.txt")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = st.DeleteFile("notes.txt")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestDeletePortfolioLinkUnknownIDIsSafe(t *testing.T) {
	st := newTestStore(t)
	id, err := st.AddPortfolioLink(model.PortfolioLink{URL: "https://github.com/x", Type: "github"}, "")
	require.NoError(t, err)

	ok, err := st.DeletePortfolioLink("nonexistent-id")
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := st.UserData()
	require.NoError(t, err)
	require.Len(t, data.PortfolioLinks, 1)
	assert.Equal(t, id, data.PortfolioLinks[0].ID)
}

func TestSummary(t *testing.T) {
	st := newTestStore(t)
	content := strings.Repeat("A", 5000)
	_, err := st.AddPortfolioLink(model.PortfolioLink{URL: "https://github.com/x", Type: "github"}, content)
	require.NoError(t, err)

	summary, err := st.Summary()
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalPortfolioLinks)
	assert.Equal(t, 0, summary.TotalFiles)
	assert.Equal(t, []string{"github"}, summary.PortfolioTypes)
	assert.Empty(t, summary.FileTypes)
}

func TestBackupRestoreRoundTrip(t *testing.T) {
	st := newTestStore(t)
	_, err := st.AddPortfolioLink(model.PortfolioLink{URL: "https://github.com/x", Type: "github"}, "scraped")
	require.NoError(t, err)
	require.NoError(t, st.AddFileData("resume.pdf", "extracted"))
	before, err := st.UserData()
	require.NoError(t, err)

	path, err := st.Backup("")
	require.NoError(t, err)
	assert.FileExists(t, path)

	require.NoError(t, st.Reset())
	ok, err := st.Restore(path)
	require.NoError(t, err)
	require.True(t, ok)

	after, err := st.UserData()
	require.NoError(t, err)
	assert.Equal(t, before.PortfolioLinks, after.PortfolioLinks)
	assert.Equal(t, before.Files, after.Files)
}

func TestRestoreRejectsBadBackups(t *testing.T) {
	st := newTestStore(t)
	dir := t.TempDir()

	ok, err := st.Restore(filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	assert.False(t, ok)

	malformed := filepath.Join(dir, "malformed.json")
	require.NoError(t, os.WriteFile(malformed, []byte("nope"), 0o644))
	ok, err = st.Restore(malformed)
	require.NoError(t, err)
	assert.False(t, ok)

	wrongShape := filepath.Join(dir, "shape.json")
	require.NoError(t, os.WriteFile(wrongShape, []byte(`{"portfolio_links": []}`), 0o644))
	ok, err = st.Restore(wrongShape)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResetClearsRecord(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.AddFileData("resume.pdf", "text"))
	require.NoError(t, st.Reset())
	data, err := st.UserData()
	require.NoError(t, err)
	assert.Empty(t, data.Files)
	assert.Empty(t, data.PortfolioLinks)
}
