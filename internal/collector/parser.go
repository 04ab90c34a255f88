package collector

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/prowlerhub/internal/models"
)

const (
	// DefaultPreviewLength is the text preview size for HTML and JSON reports
	DefaultPreviewLength = 500

	// genericPreviewLength is the preview size for files of unknown format
	genericPreviewLength = 200
)

// Options controls report parsing
type Options struct {
	// PreviewLength is the number of characters kept in text previews
	PreviewLength int
}

func (o Options) previewLength() int {
	if o.PreviewLength <= 0 {
		return DefaultPreviewLength
	}
	return o.PreviewLength
}

// ParseReport selects a parser from the file name's extension and parses
// data with it. It never panics: any fault is returned as a failure result.
func ParseReport(name string, data []byte, opts Options) models.ParseResult {
	return safeParse(func() models.ParseResult {
		switch DetectFormat(name) {
		case models.FormatHTML:
			return ParseHTMLReport(string(data), opts)
		case models.FormatCSV:
			return ParseCSVReport(string(data))
		case models.FormatASFF:
			return ParseASFFReport(data, opts)
		default:
			return ParseGenericReport(string(data), strings.ToLower(filepath.Ext(name)))
		}
	})
}

// ParseGenericReport reports size, line count and a short preview for
// content that has no structured parser. ext is only used for the label.
func ParseGenericReport(content, ext string) models.ParseResult {
	label := "Text file"
	if ext != "" {
		label = fmt.Sprintf("Text file (%s)", ext)
	}

	return models.Succeeded(&models.ParseSuccess{
		FileType:      label,
		ContentLength: utf8.RuneCountInString(content),
		LineCount:     countLines(content),
		Preview:       truncateWithEllipsis(content, genericPreviewLength),
	})
}

// safeParse runs fn and converts a panic into a failure result
func safeParse(fn func() models.ParseResult) (result models.ParseResult) {
	defer func() {
		if r := recover(); r != nil {
			result = models.Failed(models.KindUnknown, fmt.Sprintf("unexpected parser fault: %v", r))
		}
	}()
	return fn()
}

// countLines counts lines the way a text editor does: a trailing newline
// does not start a new line and empty content has none.
func countLines(s string) int {
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

// truncateRunes returns the first n characters of s
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// truncateWithEllipsis truncates s to n characters and appends "..." when cut
func truncateWithEllipsis(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return truncateRunes(s, n) + "..."
}
