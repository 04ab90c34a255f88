package collector

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/prowlerhub/internal/models"
)

const (
	// DefaultMaxReadBytes is the size above which file reads degrade to a preview
	DefaultMaxReadBytes = 2 * 1024 * 1024

	// largeFilePreviewLength is the preview size for oversized files
	largeFilePreviewLength = 2000
)

// Config holds configuration for the collector
type Config struct {
	// ScanDir is the directory searched when no directory is given
	ScanDir string

	// PreviewLength is the default text preview size for parsed reports
	PreviewLength int

	// MaxReadBytes caps full-content reads
	MaxReadBytes int
}

// Collector reads report files from the scan directory and parses them
type Collector struct {
	config Config
}

// New creates a new collector with the given configuration
func New(config Config) *Collector {
	// Set defaults
	if config.PreviewLength <= 0 {
		config.PreviewLength = DefaultPreviewLength
	}
	if config.MaxReadBytes <= 0 {
		config.MaxReadBytes = DefaultMaxReadBytes
	}

	return &Collector{
		config: config,
	}
}

// ScanDir returns the configured scan directory
func (c *Collector) ScanDir() string {
	return c.config.ScanDir
}

// dirOrDefault falls back to the scan directory for an empty dir
func (c *Collector) dirOrDefault(dir string) string {
	if strings.TrimSpace(dir) == "" {
		return c.config.ScanDir
	}
	return dir
}

// listFiles returns metadata for the regular, non-housekeeping files in dir
func (c *Collector) listFiles(dir string) ([]models.FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, models.NewError(models.KindNotFound, "read directory", dir, "directory does not exist")
		}
		return nil, models.WrapError(models.KindIO, "read directory", dir, err)
	}

	files := make([]models.FileInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || IsHousekeeping(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// File vanished between ReadDir and Info
			continue
		}
		files = append(files, models.FileInfo{
			Name:      entry.Name(),
			Path:      filepath.Join(dir, entry.Name()),
			Size:      info.Size(),
			ModTime:   info.ModTime(),
			Extension: filepath.Ext(entry.Name()),
		})
	}

	return files, nil
}

// LatestFile returns the most recently modified report file in dir
func (c *Collector) LatestFile(dir string) (models.FileInfo, error) {
	dir = c.dirOrDefault(dir)

	files, err := c.listFiles(dir)
	if err != nil {
		return models.FileInfo{}, err
	}
	if len(files) == 0 {
		return models.FileInfo{}, models.NewError(models.KindNotFound, "find latest file", dir, "no files found")
	}

	latest := files[0]
	for _, f := range files[1:] {
		if f.ModTime.After(latest.ModTime) {
			latest = f
		}
	}
	return latest, nil
}

// ListReports returns the report files in dir, newest first
func (c *Collector) ListReports(dir string) ([]models.FileInfo, error) {
	files, err := c.listFiles(c.dirOrDefault(dir))
	if err != nil {
		return nil, err
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Name < files[j].Name
		}
		return files[i].ModTime.After(files[j].ModTime)
	})
	return files, nil
}

// ResolvePath returns path if it exists, otherwise the same path relative
// to the scan directory when that exists. Unresolvable paths are returned
// unchanged so the caller reports them as missing.
func (c *Collector) ResolvePath(path string) string {
	if _, err := os.Stat(path); err == nil || filepath.IsAbs(path) || c.config.ScanDir == "" {
		return path
	}
	candidate := filepath.Join(c.config.ScanDir, path)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return path
}

// ReadReport reads a report file fully into memory
func (c *Collector) ReadReport(path string) (models.RawReport, error) {
	if strings.TrimSpace(path) == "" {
		return models.RawReport{}, models.NewError(models.KindNotFound, "read report", path, "file path is required")
	}
	path = c.ResolvePath(path)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.RawReport{}, models.NewError(models.KindNotFound, "read report", path, "file does not exist")
		}
		return models.RawReport{}, models.WrapError(models.KindIO, "read report", path, err)
	}
	if info.IsDir() {
		return models.RawReport{}, models.NewError(models.KindIO, "read report", path, "path is a directory")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return models.RawReport{}, models.WrapError(models.KindIO, "read report", path, err)
	}

	return models.RawReport{
		Name:    filepath.Base(path),
		Path:    path,
		Format:  DetectFormat(path),
		Data:    data,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// ReadContent returns the text of a file. Content above the configured
// limit is replaced by a preview of its first characters and truncated
// is set.
func (c *Collector) ReadContent(path string) (text string, truncated bool, err error) {
	report, err := c.ReadReport(path)
	if err != nil {
		return "", false, err
	}

	if len(report.Data) > c.config.MaxReadBytes {
		return truncateRunes(report.Text(), largeFilePreviewLength), true, nil
	}
	return report.Text(), false, nil
}

// Analyze reads and parses a report. Read failures are returned as errors;
// parse failures are carried in the result. Reports above MaxReadBytes are
// not parsed and degrade to a generic preview.
func (c *Collector) Analyze(path string, previewLength int) (models.RawReport, models.ParseResult, error) {
	report, err := c.ReadReport(path)
	if err != nil {
		return models.RawReport{}, models.ParseResult{}, err
	}

	if previewLength <= 0 {
		previewLength = c.config.PreviewLength
	}

	if len(report.Data) > c.config.MaxReadBytes {
		result := ParseGenericReport(report.Text(), strings.ToLower(filepath.Ext(report.Name)))
		result.Success.Warnings = append(result.Success.Warnings,
			fmt.Sprintf("file too large for full analysis (%d bytes, limit %d); showing a preview only", len(report.Data), c.config.MaxReadBytes))
		return report, result, nil
	}

	result := ParseReport(report.Name, report.Data, Options{PreviewLength: previewLength})
	return report, result, nil
}

// Summarize computes pass/fail/critical counts over the raw text of a
// report and grades its pass rate.
func (c *Collector) Summarize(path string) (models.SecuritySummary, error) {
	report, err := c.ReadReport(path)
	if err != nil {
		return models.SecuritySummary{}, fmt.Errorf("failed to summarize: %w", err)
	}

	counts := CountKeywords(report.Text())
	grade, rate := models.CalculateGrade(counts[models.KeywordPass], counts[models.KeywordFail])

	return models.SecuritySummary{
		File:          report.Name,
		PassCount:     counts[models.KeywordPass],
		FailCount:     counts[models.KeywordFail],
		CriticalCount: counts[models.KeywordCritical],
		PassRate:      rate,
		Grade:         grade,
		AnalyzedAt:    time.Now(),
	}, nil
}
