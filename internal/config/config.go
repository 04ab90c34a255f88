package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/prowlerhub/internal/models"
	"github.com/spf13/viper"
)

// Config holds all configuration for prowlerhub
type Config struct {
	// Directory searched for scanner report files
	ScanDir string `mapstructure:"scan_dir"`

	// Root of the sandbox that receives generated documents
	SandboxDir string `mapstructure:"sandbox_dir"`

	// Default text preview length for analyzed reports
	PreviewLength int `mapstructure:"preview_length"`

	// Files larger than this are only previewed by read operations
	MaxReadBytes int `mapstructure:"max_read_bytes"`

	// Output format for CLI commands (markdown, json)
	Format string `mapstructure:"format"`

	// Minimum acceptable grade (A-D); empty disables the check
	MinGrade string `mapstructure:"min_grade"`

	// Listen address for the streamable HTTP transport; empty means stdio
	HTTPAddr string `mapstructure:"http_addr"`

	// Verbose output
	Verbose bool `mapstructure:"verbose"`

	// Debug mode
	Debug bool `mapstructure:"debug"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		ScanDir:       "./prowler-reports",
		SandboxDir:    "./prowlerhub-output",
		PreviewLength: 500,
		MaxReadBytes:  2 * 1024 * 1024,
		Format:        "markdown",
		MinGrade:      "",
		HTTPAddr:      "",
		Verbose:       false,
		Debug:         false,
	}
}

// Load loads configuration with the following precedence (lowest to highest):
// 1. Default values
// 2. Config file (~/prowlerhub.yaml or ./prowlerhub.yaml)
// 3. Environment variables (PROWLERHUB_*)
// 4. CLI flags (handled by caller)
func Load() (*Config, error) {
	return LoadFromFile("")
}

// LoadFromFile loads configuration from a specific file path
// If path is empty, it searches for config in standard locations
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	defaults := DefaultConfig()
	v.SetDefault("scan_dir", defaults.ScanDir)
	v.SetDefault("sandbox_dir", defaults.SandboxDir)
	v.SetDefault("preview_length", defaults.PreviewLength)
	v.SetDefault("max_read_bytes", defaults.MaxReadBytes)
	v.SetDefault("format", defaults.Format)
	v.SetDefault("min_grade", defaults.MinGrade)
	v.SetDefault("http_addr", defaults.HTTPAddr)
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("debug", defaults.Debug)

	// Set config file settings
	v.SetConfigName("prowlerhub")
	v.SetConfigType("yaml")

	if configPath != "" {
		// Use explicit config file path
		v.SetConfigFile(configPath)
	} else {
		// Search for config in standard locations
		// 1. Current directory
		v.AddConfigPath(".")

		// 2. Home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}

		// 3. XDG config directory
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			v.AddConfigPath(filepath.Join(xdgConfig, "prowlerhub"))
		}
	}

	// Enable environment variable support
	v.SetEnvPrefix("PROWLERHUB")
	v.AutomaticEnv()

	// Try to read config file (ignore error if not found)
	if err := v.ReadInConfig(); err != nil {
		// Only return error if it's not a "file not found" error
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	// Unmarshal into config struct
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.MinGrade = strings.ToUpper(strings.TrimSpace(cfg.MinGrade))

	// Validate config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate format
	validFormats := map[string]bool{
		"markdown": true,
		"json":     true,
	}
	if !validFormats[c.Format] {
		return fmt.Errorf("invalid format: %s (must be markdown or json)", c.Format)
	}

	if strings.TrimSpace(c.ScanDir) == "" {
		return fmt.Errorf("scan_dir cannot be empty")
	}
	if strings.TrimSpace(c.SandboxDir) == "" {
		return fmt.Errorf("sandbox_dir cannot be empty")
	}

	if c.PreviewLength <= 0 {
		return fmt.Errorf("preview_length must be positive")
	}
	if c.MaxReadBytes <= 0 {
		return fmt.Errorf("max_read_bytes must be positive")
	}

	if c.MinGrade != "" && models.GradeRank(c.MinGrade) == 0 {
		return fmt.Errorf("invalid min_grade: %s (must be A, B, C, or D)", c.MinGrade)
	}

	return nil
}

// GetScanPath returns the absolute path to the scan directory
func (c *Config) GetScanPath() (string, error) {
	return expandPath(c.ScanDir)
}

// GetSandboxPath returns the absolute path to the sandbox root
func (c *Config) GetSandboxPath() (string, error) {
	return expandPath(c.SandboxDir)
}

// EnsureDirs creates the scan and sandbox directories if they are missing
func (c *Config) EnsureDirs() error {
	for _, get := range []func() (string, error){c.GetScanPath, c.GetSandboxPath} {
		dir, err := get()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ShouldFailOnGrade reports whether grade is below the configured minimum
func (c *Config) ShouldFailOnGrade(grade string) bool {
	if c.MinGrade == "" {
		return false // No grade check
	}
	return models.GradeRank(grade) < models.GradeRank(c.MinGrade)
}

// expandPath expands a leading ~ and makes the path absolute
func expandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}

	// Convert to absolute path
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	return absPath, nil
}

// GenerateSampleConfig generates a sample configuration file content
func GenerateSampleConfig() string {
	return `# prowlerhub configuration
# Save this file as ~/prowlerhub.yaml or ./prowlerhub.yaml

# Directory containing Prowler result files (HTML, CSV, JSON-ASFF)
scan_dir: ./prowler-reports

# Sandbox directory for generated configuration documents
sandbox_dir: ./prowlerhub-output

# Text preview length used by analyze
preview_length: 500

# Files above this size are only previewed by read (bytes)
max_read_bytes: 2097152

# Output format: markdown or json
format: markdown

# Minimum acceptable grade for summarize (A, B, C, D)
# Leave empty to disable the check
# min_grade: B

# Streamable HTTP listen address for serve (stdio when empty)
# http_addr: 127.0.0.1:8765

# Enable verbose output
verbose: false

# Enable debug mode
debug: false
`
}
