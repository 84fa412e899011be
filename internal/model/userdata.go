// Package model contains the persisted data shapes shared across packages.
package model

import (
	"path/filepath"
	"strings"
	"time"
)

// FileType categorizes an uploaded file by its extension.
type FileType string

const (
	TypePDF         FileType = "pdf"
	TypeDocument    FileType = "document"
	TypeText        FileType = "text"
	TypeImage       FileType = "image"
	TypeSpreadsheet FileType = "spreadsheet"
	TypeUnknown     FileType = "unknown"
)

// FileTypeFor maps a filename's extension to its category.
func FileTypeFor(filename string) FileType {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch ext {
	case "pdf":
		return TypePDF
	case "doc", "docx":
		return TypeDocument
	case "txt":
		return TypeText
	case "jpg", "jpeg", "png", "gif":
		return TypeImage
	case "csv", "xlsx", "xls":
		return TypeSpreadsheet
	default:
		return TypeUnknown
	}
}

// PortfolioLink is one stored link plus the text scraped from it. The id is
// assigned by the store and never reused.
type PortfolioLink struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	AddedAt     time.Time `json:"added_at"`
}

// FileEntry holds the extracted content for one uploaded file, keyed in
// UserData.Files by the original upload name.
type FileEntry struct {
	Filename   string    `json:"filename"`
	Content    string    `json:"content"`
	FileType   FileType  `json:"file_type"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// UserData is the single persisted root record. Both collections are always
// present (never nil) for any reader.
type UserData struct {
	PortfolioLinks []PortfolioLink      `json:"portfolio_links"`
	Files          map[string]FileEntry `json:"files"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// NewUserData returns an empty record with both collections initialized.
func NewUserData() *UserData {
	now := time.Now().UTC()
	return &UserData{
		PortfolioLinks: []PortfolioLink{},
		Files:          map[string]FileEntry{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Normalize repairs nil collections after decoding so the invariant holds for
// records loaded from older or hand-edited files.
func (u *UserData) Normalize() {
	if u.PortfolioLinks == nil {
		u.PortfolioLinks = []PortfolioLink{}
	}
	if u.Files == nil {
		u.Files = map[string]FileEntry{}
	}
}
