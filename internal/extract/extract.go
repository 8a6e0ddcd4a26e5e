// Package extract turns uploaded documents into plain text for analysis.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

var (
	// ErrExtraction wraps any failure to read text from a document
	ErrExtraction = errors.New("extraction failed")

	// ErrUnsupportedType is returned for formats other than text, HTML, PDF and DOCX
	ErrUnsupportedType = errors.New("unsupported file type: upload a .txt, .html, .pdf, or .docx file")

	// ErrNoText is returned when a document yields no text
	ErrNoText = errors.New("no text found in file")

	// ErrTooLarge is returned when a document exceeds the configured size limit
	ErrTooLarge = errors.New("file too large")
)

// Format is a supported document format
type Format string

const (
	FormatText Format = "text"
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// Content types reported for each format
const (
	ContentTypeText = "text/plain"
	ContentTypeHTML = "text/html"
	ContentTypePDF  = "application/pdf"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Document is the text extracted from an input document
type Document struct {
	Name        string
	Format      Format
	ContentType string
	Bytes       int64
	Text        string
}

// Extractor reads documents up to a size limit
type Extractor struct {
	maxBytes int64
}

// NewExtractor creates an extractor; maxBytes <= 0 disables the limit
func NewExtractor(maxBytes int64) *Extractor {
	return &Extractor{maxBytes: maxBytes}
}

// Extract reads r and returns its text. name and contentType are hints used
// to pick the format; the content itself is sniffed when both are unknown.
func (e *Extractor) Extract(name, contentType string, r io.Reader) (*Document, error) {
	data, err := e.readAll(r)
	if err != nil {
		return nil, err
	}

	format, ok := DetectFormat(name, contentType, data)
	if !ok {
		return nil, ErrUnsupportedType
	}

	var text string
	switch format {
	case FormatText:
		text = string(data)
	case FormatHTML:
		text, err = VisibleText(string(data))
	case FormatPDF:
		text, err = PDFText(data)
	case FormatDOCX:
		text, err = DOCXText(data, e.maxBytes)
	}
	if errors.Is(err, ErrTooLarge) {
		return nil, e.tooLarge()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrExtraction, format, err)
	}

	// Compressed formats may expand past the upload limit
	if e.maxBytes > 0 && int64(len(text)) > e.maxBytes {
		return nil, e.tooLarge()
	}

	text = Normalize(text)
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoText
	}

	return &Document{
		Name:        name,
		Format:      format,
		ContentType: format.ContentType(),
		Bytes:       int64(len(data)),
		Text:        text,
	}, nil
}

func (e *Extractor) readAll(r io.Reader) ([]byte, error) {
	if e.maxBytes <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w: read: %w", ErrExtraction, err)
		}
		return data, nil
	}

	// Read one byte past the limit to detect oversized input
	data, err := io.ReadAll(io.LimitReader(r, e.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read: %w", ErrExtraction, err)
	}
	if int64(len(data)) > e.maxBytes {
		return nil, e.tooLarge()
	}
	return data, nil
}

func (e *Extractor) tooLarge() error {
	return fmt.Errorf("%w (max %s)", ErrTooLarge, humanize.IBytes(uint64(e.maxBytes)))
}

// ContentType returns the MIME type reported for the format
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return ContentTypeHTML
	case FormatPDF:
		return ContentTypePDF
	case FormatDOCX:
		return ContentTypeDOCX
	default:
		return ContentTypeText
	}
}

// DetectFormat picks a format from the file extension, then the declared
// content type, then the content itself
func DetectFormat(name, contentType string, data []byte) (Format, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".text", ".md":
		return FormatText, true
	case ".html", ".htm":
		return FormatHTML, true
	case ".pdf":
		return FormatPDF, true
	case ".docx":
		return FormatDOCX, true
	}

	if f, ok := formatFromMIME(contentType); ok {
		return f, true
	}

	// application/octet-stream and friends: sniff
	sniffed := http.DetectContentType(data)
	if f, ok := formatFromMIME(sniffed); ok {
		return f, true
	}
	if strings.HasPrefix(sniffed, "application/zip") && bytes.Contains(data, []byte("word/document.xml")) {
		return FormatDOCX, true
	}
	return "", false
}

func formatFromMIME(contentType string) (Format, bool) {
	if contentType == "" {
		return "", false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", false
	}

	switch mediaType {
	case ContentTypeText:
		return FormatText, true
	case ContentTypeHTML, "application/xhtml+xml":
		return FormatHTML, true
	case ContentTypePDF:
		return FormatPDF, true
	case ContentTypeDOCX:
		return FormatDOCX, true
	}
	return "", false
}

// Normalize strips a UTF-8 BOM, replaces invalid UTF-8 and converts CRLF line endings
func Normalize(text string) string {
	text = strings.TrimPrefix(text, "\ufeff")
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "\uFFFD")
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
