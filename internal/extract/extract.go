// Package extract converts raw inputs (PDF bytes, text bytes, image and
// document artifacts, URLs) into plain text. Failures never escape this
// package: every path yields a Result that renders to either real content or
// sentinel text, so one bad input cannot abort an ingestion batch.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
	"golang.org/x/text/encoding/charmap"
)

// Kind tags a Result so callers can tell real content from sentinel text.
type Kind string

const (
	// KindText carries extracted content.
	KindText Kind = "text"
	// KindUnsupported marks input types with placeholder handling only.
	KindUnsupported Kind = "unsupported"
	// KindFailed marks an extraction attempt that errored.
	KindFailed Kind = "failed"
)

// Result is the outcome of one extraction attempt.
type Result struct {
	Kind   Kind
	Text   string
	Reason string
}

// Render flattens a Result to the string persisted in a content field. This is
// the outer boundary where error identity is deliberately erased to keep the
// stored data shape uniform.
func (r Result) Render() string {
	if r.Kind == KindText {
		return r.Text
	}
	return r.Reason
}

func text(s string) Result { return Result{Kind: KindText, Text: s} }

func unsupported(msg string) Result { return Result{Kind: KindUnsupported, Reason: msg} }

func failed(msg string) Result { return Result{Kind: KindFailed, Reason: msg} }

const (
	urlTimeout      = 10 * time.Second
	urlContentLimit = 5000
	truncationMark  = "... [Content truncated]"
	browserUA       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// Extractor turns heterogeneous inputs into plain text.
type Extractor struct {
	client *http.Client
}

// New constructs an Extractor with a bounded HTTP client for URL fetches.
func New() *Extractor {
	return &Extractor{
		client: &http.Client{Timeout: urlTimeout},
	}
}

// PDF extracts text from every page in order. If the primary pass yields only
// whitespace it retries the document row by row before giving up.
func (e *Extractor) PDF(data []byte) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = failed(fmt.Sprintf("Error processing PDF: %v", r))
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return failed(fmt.Sprintf("Error processing PDF: %v", err))
	}
	content := extractPlainText(reader)
	if strings.TrimSpace(content) == "" {
		content = extractByRows(reader)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return text("No text content found in PDF.")
	}
	return text(content)
}

func extractPlainText(reader *pdf.Reader) string {
	var builder strings.Builder
	total := reader.NumPage()
	for page := 1; page <= total; page++ {
		p := reader.Page(page)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(content)
		builder.WriteString("\n")
	}
	return builder.String()
}

func extractByRows(reader *pdf.Reader) string {
	var builder strings.Builder
	total := reader.NumPage()
	for page := 1; page <= total; page++ {
		p := reader.Page(page)
		if p.V.IsNull() {
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			builder.WriteString(rowText(row))
			builder.WriteString("\n")
		}
	}
	return builder.String()
}

// rowText joins the words of one text row with spaces; adjacent words come
// from separate positioned fragments and must not be glued together.
func rowText(row *pdf.Row) string {
	words := make([]string, 0, len(row.Content))
	for _, word := range row.Content {
		words = append(words, word.S)
	}
	return strings.Join(words, " ")
}

// PlainText decodes text bytes as UTF-8, falling back to Latin-1 when the
// bytes are not valid UTF-8.
func (e *Extractor) PlainText(data []byte) Result {
	if utf8.Valid(data) {
		return text(string(data))
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return failed(fmt.Sprintf("Error reading text file: %v", err))
	}
	return text(string(decoded))
}

// Document is a placeholder for Word artifacts; parsing is not implemented.
func (e *Extractor) Document(path string) Result {
	return unsupported(fmt.Sprintf("Document processing not fully implemented for: %s", path))
}

// Image is a placeholder for image artifacts; OCR is not implemented.
func (e *Extractor) Image(path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		return failed(fmt.Sprintf("Error processing image: %v", err))
	}
	return unsupported(fmt.Sprintf("Image file processed. Size: %d bytes. OCR not implemented yet.", info.Size()))
}

// URL fetches a page with a browser user-agent, strips script and style
// elements, collapses whitespace, and truncates the text to a bounded length.
func (e *Extractor) URL(ctx context.Context, rawURL string) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return failed(fmt.Sprintf("Error fetching URL: %v", err))
	}
	req.Header.Set("User-Agent", browserUA)
	resp, err := e.client.Do(req)
	if err != nil {
		return failed(fmt.Sprintf("Error fetching URL: %v", err))
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failed(fmt.Sprintf("Error fetching URL: status %d", resp.StatusCode))
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return failed(fmt.Sprintf("Error processing URL content: %v", err))
	}
	doc.Find("script, style").Remove()
	cleaned := collapseWhitespace(doc.Text())
	if utf8.RuneCountInString(cleaned) > urlContentLimit {
		// Cut on a rune boundary so multibyte pages stay valid UTF-8.
		cleaned = string([]rune(cleaned)[:urlContentLimit]) + truncationMark
	}
	return text(cleaned)
}

// collapseWhitespace trims every line, splits on runs of multiple spaces so
// column layouts become separate lines, and drops blanks.
func collapseWhitespace(s string) string {
	var chunks []string
	for _, line := range strings.Split(s, "\n") {
		for _, phrase := range strings.Split(strings.TrimSpace(line), "  ") {
			phrase = strings.TrimSpace(phrase)
			if phrase != "" {
				chunks = append(chunks, phrase)
			}
		}
	}
	return strings.Join(chunks, "\n")
}
