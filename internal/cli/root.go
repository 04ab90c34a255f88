package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/ppiankov/prowlerhub/internal/collector"
	"github.com/ppiankov/prowlerhub/internal/config"
	"github.com/ppiankov/prowlerhub/internal/models"
	"github.com/ppiankov/prowlerhub/internal/policy"
	"github.com/ppiankov/prowlerhub/internal/sandbox"
	"github.com/spf13/cobra"
)

const (
	ExitOK           = 0 // Success
	ExitPolicyFail   = 1 // Summary violates the grade policy
	ExitInvalidInput = 2 // Malformed report or unsafe path
	ExitRuntimeError = 3 // I/O, missing files, or runtime error
)

var (
	// Global config instance
	cfg *config.Config

	// Global flags
	configFile   string
	verbose      bool
	debug        bool
	outputFormat string

	// buildVersion is set by main via SetVersion
	buildVersion = "dev"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "prowlerhub",
	Short: "prowlerhub - Prowler security report analyzer and MCP server",
	Long: `prowlerhub reads the result files of Prowler cloud security scans
(HTML, CSV, JSON-ASFF) and turns them into Markdown analyses and graded
summaries. The same operations are served to AI assistants over the Model
Context Protocol, together with a sandboxed writer for configuration documents.

Quick start:
  prowlerhub latest
  prowlerhub analyze prowler-output.html
  prowlerhub summarize prowler-output.html --policy .prowlerhub-policy.yaml
  prowlerhub serve

Other commands:
  prowlerhub list
  prowlerhub browse prowler-output.html
  prowlerhub sandbox write cfg/app.yaml --create-dirs < app.yaml
  prowlerhub config init`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration
		var err error
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Override config with flags if provided
		if verbose {
			cfg.Verbose = true
		}
		if debug {
			cfg.Debug = true
		}
		if outputFormat != "" {
			cfg.Format = outputFormat
			if err := cfg.Validate(); err != nil {
				return &ValidationError{Message: err.Error()}
			}
		}

		logDebug("Config: scan_dir=%s sandbox_dir=%s format=%s", cfg.ScanDir, cfg.SandboxDir, cfg.Format)
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		os.Exit(HandleError(err))
	}
}

// SetVersion records the build version reported by the version command
// and the MCP server.
func SetVersion(v string) {
	buildVersion = v
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default: ./prowlerhub.yaml or ~/prowlerhub.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"debug mode (very verbose)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "",
		"output format: markdown or json (default from config)")

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(latestCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(sandboxCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("prowlerhub %s\n", buildVersion)
		fmt.Println("Prowler security report analyzer")
	},
}

// HandleError determines the appropriate exit code for an error
func HandleError(err error) int {
	if err == nil {
		return ExitOK
	}

	var policyErr *PolicyViolationError
	if errors.As(err, &policyErr) {
		return ExitPolicyFail
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return ExitInvalidInput
	}

	switch models.KindOf(err) {
	case models.KindMalformed, models.KindUnsafePath:
		return ExitInvalidInput
	default:
		return ExitRuntimeError
	}
}

// ValidationError represents invalid command input
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// PolicyViolationError reports a summary that fails the grade policy
type PolicyViolationError struct {
	Violations []policy.Violation
}

func (e *PolicyViolationError) Error() string {
	if len(e.Violations) == 1 {
		return "policy check failed: " + e.Violations[0].Message
	}
	return fmt.Sprintf("policy check failed: %d violations", len(e.Violations))
}

// newCollector builds a collector from the loaded config
func newCollector() (*collector.Collector, error) {
	scanPath, err := cfg.GetScanPath()
	if err != nil {
		return nil, err
	}
	logDebug("Scan directory: %s", scanPath)
	return collector.New(collector.Config{
		ScanDir:       scanPath,
		PreviewLength: cfg.PreviewLength,
		MaxReadBytes:  cfg.MaxReadBytes,
	}), nil
}

// openSandbox opens (creating if needed) the configured sandbox root
func openSandbox() (*sandbox.Sandbox, error) {
	sandboxPath, err := cfg.GetSandboxPath()
	if err != nil {
		return nil, err
	}
	logDebug("Sandbox root: %s", sandboxPath)
	return sandbox.New(sandboxPath)
}

// jsonOutput reports whether commands should emit JSON
func jsonOutput() bool {
	return cfg != nil && cfg.Format == "json"
}

// logVerbose prints a message if verbose mode is enabled
func logVerbose(format string, args ...interface{}) {
	if cfg != nil && cfg.Verbose {
		fmt.Fprintf(os.Stderr, "[INFO] "+format+"\n", args...)
	}
}

// logDebug prints a message if debug mode is enabled
func logDebug(format string, args ...interface{}) {
	if cfg != nil && cfg.Debug {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// logError prints an error message
func logError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "[ERROR] "+format+"\n", args...)
}
