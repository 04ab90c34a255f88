package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/prowlerhub/internal/collector"
	"github.com/ppiankov/prowlerhub/internal/models"
	"github.com/ppiankov/prowlerhub/internal/reporter"
	"github.com/ppiankov/prowlerhub/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var browseCmd = &cobra.Command{
	Use:   "browse <report.html>",
	Short: "Browse the findings of an HTML report interactively",
	Long: `Open the findings table of a Prowler HTML report in an interactive
terminal browser with search, service and status filters, and sorting.

When stdout is not a terminal (or --format json is set) the findings are
printed as JSON instead.

Keys: / search, t service filter, f failing only, s sort, c copy, q quit`,
	Args: cobra.ExactArgs(1),
	RunE: runBrowse,
}

func runBrowse(cmd *cobra.Command, args []string) error {
	c, err := newCollector()
	if err != nil {
		return err
	}

	report, err := c.ReadReport(args[0])
	if err != nil {
		logError("Failed to read report: %v", err)
		return err
	}
	if report.Format != models.FormatHTML {
		return &ValidationError{Message: fmt.Sprintf("browse needs an HTML report, got %s", report.Format)}
	}

	findings, err := collector.ExtractFindings(report.Text())
	if err != nil {
		return models.WrapError(models.KindMalformed, "browse", report.Path, err)
	}
	logVerbose("Extracted %d findings from %s", len(findings), report.Name)

	if jsonOutput() || !term.IsTerminal(int(os.Stdout.Fd())) {
		return reporter.NewJSONReporter(os.Stdout, true).Generate(findings)
	}

	if len(findings) == 0 {
		fmt.Printf("No findings table in %s.\n", report.Name)
		return nil
	}
	return tui.Run(report.Name, findings)
}
