package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/prowlerhub/internal/config"
	"github.com/ppiankov/prowlerhub/internal/sandbox"
	"github.com/spf13/cobra"
)

var (
	configInitOutput string
	configInitForce  bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the prowlerhub configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a sample prowlerhub.yaml",
	Long: `Write a commented sample configuration file. An existing file is
left untouched unless --force is given.

Example:
  prowlerhub config init
  prowlerhub config init --output ~/prowlerhub.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func init() {
	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "prowlerhub.yaml",
		"path of the config file to write")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false,
		"overwrite an existing file")

	configCmd.AddCommand(configInitCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configInitOutput
	if _, err := os.Stat(path); err == nil && !configInitForce {
		return &ValidationError{Message: fmt.Sprintf("%s already exists (use --force to overwrite)", path)}
	}

	if err := sandbox.WriteFileAtomic(path, []byte(config.GenerateSampleConfig()), 0644); err != nil {
		logError("Failed to write config: %v", err)
		return err
	}

	fmt.Printf("Config written: %s\n", path)
	return nil
}
