// Package assemble renders the stored user data into a bounded context block
// for the completion prompt.
package assemble

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dharsanguruparan/insightmate/internal/model"
)

const (
	// Snippet bounds keep the assembled context inside the model's token
	// budget regardless of how much content was extracted.
	linkSnippetLimit = 200
	fileSnippetLimit = 300
)

// Context renders a human-readable summary of the record. Returns a fixed
// sentinel when no data is stored.
func Context(data *model.UserData) string {
	if data == nil {
		return "No user data available."
	}
	var parts []string
	if len(data.PortfolioLinks) > 0 {
		parts = append(parts, "Portfolio Links:")
		for _, link := range data.PortfolioLinks {
			parts = append(parts, " - "+link.Type+": "+link.URL)
			if link.Content != "" {
				parts = append(parts, "   Content summary: "+snippet(link.Content, linkSnippetLimit))
			}
		}
	}
	if len(data.Files) > 0 {
		parts = append(parts, "\nUploaded Files:")
		// Map iteration order varies per call; sort so identical records
		// always assemble the identical prompt.
		filenames := make([]string, 0, len(data.Files))
		for filename := range data.Files {
			filenames = append(filenames, filename)
		}
		sort.Strings(filenames)
		for _, filename := range filenames {
			entry := data.Files[filename]
			parts = append(parts, " - "+filename)
			if entry.Content != "" {
				parts = append(parts, "   Content: "+snippet(entry.Content, fileSnippetLimit))
			}
		}
	}
	if len(parts) == 0 {
		return "No user data available."
	}
	return strings.Join(parts, "\n")
}

// snippet bounds content to limit characters, never splitting a multibyte
// rune, so the assembled context stays valid UTF-8.
func snippet(content string, limit int) string {
	if utf8.RuneCountInString(content) > limit {
		runes := []rune(content)
		content = string(runes[:limit])
	}
	return content + "..."
}
