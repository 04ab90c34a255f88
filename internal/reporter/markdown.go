package reporter

import (
	"embed"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/Masterminds/sprig/v3"
	"github.com/ppiankov/prowlerhub/internal/models"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// maxFindingRows caps the failing-findings table in analysis reports
const maxFindingRows = 25

var templates = template.Must(
	template.New("prowlerhub").Funcs(funcMap()).ParseFS(templateFS, "templates/*.tmpl"),
)

func funcMap() template.FuncMap {
	funcs := sprig.TxtFuncMap()
	funcs["thousands"] = thousands
	funcs["clip"] = clip
	funcs["mdcell"] = mdcell
	funcs["gradeLabel"] = GradeLabel
	funcs["severities"] = func() []string { return models.SeverityKeywords }
	return funcs
}

// MarkdownReporter renders reports as Markdown documents
type MarkdownReporter struct {
	writer io.Writer
}

// NewMarkdownReporter creates a new Markdown reporter
func NewMarkdownReporter(writer io.Writer) *MarkdownReporter {
	return &MarkdownReporter{
		writer: writer,
	}
}

type analysisData struct {
	models.RawReport
	Section     string
	Result      *models.ParseSuccess
	Failed      []models.Finding
	FailedTotal int
}

// WriteAnalysis renders the analysis report for a parsed file. A failed
// parse renders a single failure line instead.
func (r *MarkdownReporter) WriteAnalysis(report models.RawReport, result models.ParseResult) error {
	if !result.OK() {
		msg := "no result"
		if result.Failure != nil {
			msg = result.Failure.Message
		}
		_, err := fmt.Fprintf(r.writer, "File analysis failed: %s\n", msg)
		return err
	}

	failed := FailedFindings(result.Success.Findings)
	data := analysisData{
		RawReport:   report,
		Section:     section(result.Success.FileType),
		Result:      result.Success,
		Failed:      failed,
		FailedTotal: len(failed),
	}
	if len(data.Failed) > maxFindingRows {
		data.Failed = data.Failed[:maxFindingRows]
	}
	return r.execute("analysis", data)
}

// WriteSummary renders the security summary
func (r *MarkdownReporter) WriteSummary(summary models.SecuritySummary) error {
	return r.execute("summary", summary)
}

// WriteLatest renders the latest-file lookup result
func (r *MarkdownReporter) WriteLatest(file models.FileInfo, dir string) error {
	return r.execute("latest", struct {
		File models.FileInfo
		Dir  string
	}{file, dir})
}

// WriteList renders the report listing
func (r *MarkdownReporter) WriteList(files []models.FileInfo, dir string) error {
	return r.execute("list", struct {
		Files []models.FileInfo
		Dir   string
	}{files, dir})
}

// WriteSandboxList renders the sandbox listing
func (r *MarkdownReporter) WriteSandboxList(entries []models.SandboxEntry, root string) error {
	return r.execute("sandbox", struct {
		Entries []models.SandboxEntry
		Root    string
	}{entries, root})
}

// WriteContent writes file text. Truncated content is introduced with a
// note and closed with an ellipsis.
func (r *MarkdownReporter) WriteContent(text string, truncated bool) error {
	var err error
	if truncated {
		_, err = fmt.Fprintf(r.writer, "File content is too large. Preview:\n%s...\n", text)
	} else {
		_, err = io.WriteString(r.writer, text)
	}
	return err
}

func (r *MarkdownReporter) execute(name string, data interface{}) error {
	if err := templates.ExecuteTemplate(r.writer, name, data); err != nil {
		return fmt.Errorf("failed to render %s report: %w", name, err)
	}
	return nil
}

// section picks the analysis sub-template for a file type label
func section(fileType string) string {
	switch fileType {
	case models.FileTypeHTML:
		return "html"
	case models.FileTypeCSV:
		return "csv"
	case models.FileTypeASFF:
		return "json"
	default:
		return "generic"
	}
}

// FailedFindings returns the FAIL findings ordered by severity, most severe
// first. Ties keep document order.
func FailedFindings(findings []models.Finding) []models.Finding {
	var failed []models.Finding
	for _, f := range findings {
		if strings.EqualFold(strings.TrimSpace(f.Status), models.KeywordFail) {
			failed = append(failed, f)
		}
	}
	sort.SliceStable(failed, func(i, j int) bool {
		return severityRank(failed[i].Severity) > severityRank(failed[j].Severity)
	})
	return failed
}

func severityRank(s string) int {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case models.KeywordCritical:
		return 4
	case models.KeywordHigh:
		return 3
	case models.KeywordMedium:
		return 2
	case models.KeywordLow:
		return 1
	default:
		return 0
	}
}

// GradeLabel returns the display label for a letter grade
func GradeLabel(grade string) string {
	switch grade {
	case models.GradeA:
		return "Excellent (Grade A)"
	case models.GradeB:
		return "Good (Grade B)"
	case models.GradeC:
		return "Average (Grade C)"
	default:
		return "Needs Improvement (Grade D)"
	}
}

// WrittenMessage is the confirmation for a sandbox document write
func WrittenMessage(rel string, size int) string {
	return fmt.Sprintf("Document written: %s (%s bytes)", rel, thousands(int64(size)))
}

// CreatedMessage is the confirmation for a sandbox directory creation
func CreatedMessage(rel string) string {
	return fmt.Sprintf("Directory created: %s", rel)
}

// thousands formats n with comma separators
func thousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// clip truncates s to n characters, marking the cut with "..."
func clip(n int, s string) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}

// mdcell makes s safe inside a Markdown table cell
func mdcell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
