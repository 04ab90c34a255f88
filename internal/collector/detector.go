package collector

import (
	"path/filepath"
	"strings"

	"github.com/ppiankov/prowlerhub/internal/models"
)

// extensionFormats maps lowercased file extensions to report formats
var extensionFormats = map[string]models.ReportFormat{
	".html":      models.FormatHTML,
	".htm":       models.FormatHTML,
	".csv":       models.FormatCSV,
	".json":      models.FormatASFF,
	".json-asff": models.FormatASFF,
}

// DetectFormat identifies the report format from a file name.
// Unknown extensions are not an error; they map to FormatUnknown.
func DetectFormat(name string) models.ReportFormat {
	if format, ok := extensionFormats[strings.ToLower(filepath.Ext(name))]; ok {
		return format
	}
	return models.FormatUnknown
}

// FormatLabel returns a human-readable label for a format
func FormatLabel(format models.ReportFormat) string {
	switch format {
	case models.FormatHTML:
		return "HTML"
	case models.FormatCSV:
		return "CSV"
	case models.FormatASFF:
		return "JSON (ASFF)"
	default:
		return "Unknown"
	}
}

// housekeepingFiles are OS metadata files that never count as reports
var housekeepingFiles = map[string]bool{
	".DS_Store":   true,
	"Thumbs.db":   true,
	"desktop.ini": true,
}

// IsHousekeeping reports whether name is an OS metadata file
func IsHousekeeping(name string) bool {
	return housekeepingFiles[name] || strings.HasPrefix(name, "._")
}
