package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/prowlerhub/internal/models"
	"github.com/ppiankov/prowlerhub/internal/policy"
	"github.com/ppiankov/prowlerhub/internal/reporter"
	"github.com/spf13/cobra"
)

var (
	// analyze flags
	analyzePreviewLength int

	// summarize flags
	summarizePolicy string
)

var latestCmd = &cobra.Command{
	Use:   "latest [directory]",
	Short: "Show the most recently modified report file",
	Long: `Find the newest Prowler result file in a directory. OS housekeeping
files such as .DS_Store are ignored.

Example:
  prowlerhub latest
  prowlerhub latest /data/prowler/output --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLatest,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a Prowler HTML, CSV or JSON-ASFF report",
	Long: `Parse a report and print a Markdown analysis: status and severity
counts, failing findings, CSV layout, data-quality warnings and a preview.

Relative paths not found as given are looked up in the scan directory.

Example:
  prowlerhub analyze prowler-output.html
  prowlerhub analyze results.json --preview-length 1000`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize <file>",
	Short: "Grade a report by its pass rate",
	Long: `Count PASS, FAIL and CRITICAL occurrences in a report and grade the
pass rate: A (>= 90%), B (>= 80%), C (>= 70%), D otherwise.

If a policy file is given (or .prowlerhub-policy.yaml is found in the
current directory or a parent), the summary is checked against it and the
command exits 1 on violations. min_grade from the config acts as a
single-rule policy when no file is present.

Example:
  prowlerhub summarize prowler-output.html
  prowlerhub summarize results.csv --policy ci-policy.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

var listCmd = &cobra.Command{
	Use:   "list [directory]",
	Short: "List report files, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runList,
}

var readCmd = &cobra.Command{
	Use:   "read <file>",
	Short: "Print the raw content of a report file",
	Long: `Print a file. Files larger than max_read_bytes (2 MiB by default)
print a 2000 character preview instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runRead,
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzePreviewLength, "preview-length", 0,
		"characters of text preview (default from config)")
	summarizeCmd.Flags().StringVar(&summarizePolicy, "policy", "",
		"policy file (default: search for .prowlerhub-policy.yaml)")
}

func runLatest(cmd *cobra.Command, args []string) error {
	c, err := newCollector()
	if err != nil {
		return err
	}

	dir := c.ScanDir()
	if len(args) > 0 {
		dir = args[0]
	}
	logVerbose("Searching for latest file in: %s", dir)

	file, err := c.LatestFile(dir)
	if err != nil {
		logError("Failed to find latest file: %v", err)
		return err
	}

	if jsonOutput() {
		return reporter.NewJSONReporter(os.Stdout, true).Generate(reporter.LatestDocument{File: file, Directory: dir})
	}
	return reporter.NewMarkdownReporter(os.Stdout).WriteLatest(file, dir)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analyzePreviewLength < 0 {
		return &ValidationError{Message: "--preview-length must be positive"}
	}

	c, err := newCollector()
	if err != nil {
		return err
	}

	report, result, err := c.Analyze(args[0], analyzePreviewLength)
	if err != nil {
		logError("Failed to read report: %v", err)
		return err
	}
	logVerbose("Analyzing %s (%d bytes, format %s)", report.Path, report.Size, report.Format)

	if jsonOutput() {
		err = reporter.NewJSONReporter(os.Stdout, true).GenerateAnalysis(report, result)
	} else {
		err = reporter.NewMarkdownReporter(os.Stdout).WriteAnalysis(report, result)
	}
	if err != nil {
		return err
	}

	if !result.OK() {
		msg := "no result"
		if result.Failure != nil {
			msg = result.Failure.Message
		}
		return models.NewError(models.KindMalformed, "analyze", report.Path, "%s", msg)
	}
	return nil
}

func runSummarize(cmd *cobra.Command, args []string) error {
	c, err := newCollector()
	if err != nil {
		return err
	}

	summary, err := c.Summarize(args[0])
	if err != nil {
		logError("%v", err)
		return err
	}
	logVerbose("Summary: pass=%d fail=%d critical=%d grade=%s",
		summary.PassCount, summary.FailCount, summary.CriticalCount, summary.Grade)

	if jsonOutput() {
		err = reporter.NewJSONReporter(os.Stdout, true).Generate(summary)
	} else {
		err = reporter.NewMarkdownReporter(os.Stdout).WriteSummary(summary)
	}
	if err != nil {
		return err
	}

	pol, err := loadPolicy()
	if err != nil {
		return err
	}

	result := pol.Evaluate(summary)
	if !result.Pass {
		for _, v := range result.Violations {
			logError("Policy %s: %s", v.Rule, v.Message)
		}
		return &PolicyViolationError{Violations: result.Violations}
	}
	return nil
}

// loadPolicy resolves the policy for summarize: the --policy file, a
// discovered policy file, or the config's min_grade.
func loadPolicy() (*policy.Policy, error) {
	path := summarizePolicy
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, models.WrapError(models.KindNotFound, "load policy", path, err)
		}
	} else {
		path = policy.FindPolicyFile("")
	}

	if path != "" {
		logVerbose("Using policy file: %s", path)
		pol, err := policy.LoadFromFile(path)
		if err != nil {
			return nil, &ValidationError{Message: err.Error()}
		}
		return pol, nil
	}

	if cfg.MinGrade != "" {
		logVerbose("Using min_grade %s from config", cfg.MinGrade)
		return &policy.Policy{Rules: policy.Rules{MinGrade: cfg.MinGrade}}, nil
	}
	return nil, nil
}

func runList(cmd *cobra.Command, args []string) error {
	c, err := newCollector()
	if err != nil {
		return err
	}

	dir := c.ScanDir()
	if len(args) > 0 {
		dir = args[0]
	}

	files, err := c.ListReports(dir)
	if err != nil {
		logError("Failed to list reports: %v", err)
		return err
	}
	logVerbose("Found %d files in %s", len(files), dir)

	if jsonOutput() {
		return reporter.NewJSONReporter(os.Stdout, true).Generate(files)
	}
	return reporter.NewMarkdownReporter(os.Stdout).WriteList(files, dir)
}

func runRead(cmd *cobra.Command, args []string) error {
	c, err := newCollector()
	if err != nil {
		return err
	}

	text, truncated, err := c.ReadContent(args[0])
	if err != nil {
		logError("Failed to read file: %v", err)
		return err
	}
	if truncated {
		logVerbose("File exceeds %d bytes, showing preview", cfg.MaxReadBytes)
	}

	if jsonOutput() {
		return reporter.NewJSONReporter(os.Stdout, true).Generate(reporter.ContentDocument{
			Path:      c.ResolvePath(args[0]),
			Truncated: truncated,
			Content:   text,
		})
	}
	if err := reporter.NewMarkdownReporter(os.Stdout).WriteContent(text, truncated); err != nil {
		return err
	}
	if !truncated && len(text) > 0 && text[len(text)-1] != '\n' {
		fmt.Println()
	}
	return nil
}
