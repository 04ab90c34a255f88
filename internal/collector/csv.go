package collector

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/ppiankov/prowlerhub/internal/models"
)

const maxSampleRows = 3

// ParseCSVReport summarizes a Prowler CSV export: line counts, the header
// and the first data rows.
func ParseCSVReport(content string) models.ParseResult {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	if len(lines) == 0 {
		return models.Failed(models.KindMalformed, "Empty CSV file")
	}

	result := &models.ParseSuccess{
		FileType:   models.FileTypeCSV,
		TotalLines: len(lines),
		Header:     lines[0],
		SampleRows: []string{},
	}

	if len(lines) > 1 {
		result.DataRows = len(lines) - 1
		end := 1 + maxSampleRows
		if end > len(lines) {
			end = len(lines)
		}
		result.SampleRows = append(result.SampleRows, lines[1:end]...)
	}

	if counts, ok := countCSVColumns(content, lines[0]); ok {
		result.KeywordCounts = counts
	}

	return models.Succeeded(result)
}

// countCSVColumns tallies the STATUS and SEVERITY columns of a Prowler CSV
// export. It returns false when the header has no such columns or the
// records cannot be read.
func countCSVColumns(content, header string) (models.KeywordCounts, bool) {
	delim := ','
	if strings.Count(header, ";") > strings.Count(header, ",") {
		delim = ';'
	}

	r := csv.NewReader(strings.NewReader(content))
	r.Comma = delim
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	head, err := r.Read()
	if err != nil {
		return nil, false
	}

	statusCol, severityCol := -1, -1
	for i, name := range head {
		switch strings.ToUpper(strings.TrimSpace(name)) {
		case "STATUS":
			statusCol = i
		case "SEVERITY":
			severityCol = i
		}
	}
	if statusCol < 0 || severityCol < 0 {
		return nil, false
	}

	counts := models.NewKeywordCounts()
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false
		}
		if statusCol < len(record) {
			counts.Add(record[statusCol])
		}
		if severityCol < len(record) {
			counts.Add(record[severityCol])
		}
	}
	return counts, true
}
