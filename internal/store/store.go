// Package store persists the single UserData record as one JSON document.
// Every operation performs a full read, mutate, full write; a mutex serializes
// those cycles so concurrent requests cannot lose updates against each other.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dharsanguruparan/insightmate/internal/model"
)

// Store owns the user data document on disk.
type Store struct {
	mu      sync.Mutex
	dataDir string
	path    string
}

// New prepares the data directory and initializes the document if absent.
func New(dataDir, path string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	s := &Store{dataDir: dataDir, path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.write(model.NewUserData()); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// UserData returns the current record. A missing or corrupt document is
// transparently reinitialized to the empty shape.
func (s *Store) UserData() (*model.UserData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// load reads the document without taking the lock; callers hold it.
func (s *Store) load() (*model.UserData, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return s.reinit()
	}
	var data model.UserData
	if err := json.Unmarshal(raw, &data); err != nil {
		return s.reinit()
	}
	data.Normalize()
	return &data, nil
}

func (s *Store) reinit() (*model.UserData, error) {
	data := model.NewUserData()
	if err := s.write(data); err != nil {
		return nil, err
	}
	return data, nil
}

// write persists the full record, stamping updated_at.
func (s *Store) write(data *model.UserData) error {
	data.UpdatedAt = time.Now().UTC()
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode user data: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("write user data: %w", err)
	}
	return nil
}

// AddPortfolioLink appends a link entry with a fresh id and returns the id.
func (s *Store) AddPortfolioLink(link model.PortfolioLink, content string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return "", err
	}
	link.ID = uuid.NewString()
	link.Content = content
	link.AddedAt = time.Now().UTC()
	data.PortfolioLinks = append(data.PortfolioLinks, link)
	if err := s.write(data); err != nil {
		return "", err
	}
	return link.ID, nil
}

// AddFileData upserts a file entry keyed by the original filename.
// Re-uploading the same name replaces the prior entry.
func (s *Store) AddFileData(filename, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return err
	}
	data.Files[filename] = model.FileEntry{
		Filename:   filename,
		Content:    content,
		FileType:   model.FileTypeFor(filename),
		UploadedAt: time.Now().UTC(),
	}
	return s.write(data)
}

// DeleteFile removes the entry for filename and reports whether one existed.
func (s *Store) DeleteFile(filename string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return false, err
	}
	if _, ok := data.Files[filename]; !ok {
		return false, nil
	}
	delete(data.Files, filename)
	if err := s.write(data); err != nil {
		return false, err
	}
	return true, nil
}

// DeletePortfolioLink filters out the matching entry. Deleting an unknown id
// is not an error; the call reports success either way.
func (s *Store) DeletePortfolioLink(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return false, err
	}
	kept := data.PortfolioLinks[:0]
	for _, link := range data.PortfolioLinks {
		if link.ID != id {
			kept = append(kept, link)
		}
	}
	data.PortfolioLinks = kept
	if err := s.write(data); err != nil {
		return false, err
	}
	return true, nil
}

// Summary aggregates counts and distinct types over the record.
type Summary struct {
	TotalPortfolioLinks int       `json:"total_portfolio_links"`
	TotalFiles          int       `json:"total_files"`
	PortfolioTypes      []string  `json:"portfolio_types"`
	FileTypes           []string  `json:"file_types"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Summary returns aggregate statistics for the stored record.
func (s *Store) Summary() (*Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return nil, err
	}
	linkTypes := map[string]struct{}{}
	for _, link := range data.PortfolioLinks {
		linkTypes[link.Type] = struct{}{}
	}
	fileTypes := map[string]struct{}{}
	for _, entry := range data.Files {
		fileTypes[string(entry.FileType)] = struct{}{}
	}
	return &Summary{
		TotalPortfolioLinks: len(data.PortfolioLinks),
		TotalFiles:          len(data.Files),
		PortfolioTypes:      sortedKeys(linkTypes),
		FileTypes:           sortedKeys(fileTypes),
		CreatedAt:           data.CreatedAt,
		UpdatedAt:           data.UpdatedAt,
	}, nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Backup writes a full copy of the record to path, deriving a timestamp-named
// sibling in the data directory when path is empty. Returns the path written.
func (s *Store) Backup(path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if path == "" {
		stamp := time.Now().Format("20060102_150405")
		path = filepath.Join(s.dataDir, fmt.Sprintf("backup_%s.json", stamp))
	}
	data, err := s.load()
	if err != nil {
		return "", err
	}
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode backup: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	return path, nil
}

// Restore replaces the current record with the backup at path. The backup is
// accepted only when both required collections are present; a missing file,
// malformed content, or failed shape check reports false, not an error.
func (s *Store) Restore(path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := os.ReadFile(path)
	if err != nil {
		return false, nil
	}
	var shape map[string]json.RawMessage
	if err := json.Unmarshal(raw, &shape); err != nil {
		return false, nil
	}
	if _, ok := shape["portfolio_links"]; !ok {
		return false, nil
	}
	if _, ok := shape["files"]; !ok {
		return false, nil
	}
	var data model.UserData
	if err := json.Unmarshal(raw, &data); err != nil {
		return false, nil
	}
	data.Normalize()
	if err := s.write(&data); err != nil {
		return false, err
	}
	return true, nil
}

// Reset reinitializes the record to the empty shape.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(model.NewUserData())
}
