package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/prowlerhub/internal/reporter"
	"github.com/spf13/cobra"
)

var (
	sandboxContent    string
	sandboxCreateDirs bool
)

var sandboxCmd = &cobra.Command{
	Use:   "sandbox",
	Short: "Write and inspect documents in the sandbox directory",
	Long: `The sandbox is the only directory prowlerhub writes documents to
(sandbox_dir in the config). Paths are relative to its root and may not
leave it. Documents are validated before they are written: .json files as
JSON, .toml files as TOML, everything else as YAML.`,
}

var sandboxWriteCmd = &cobra.Command{
	Use:   "write <relative-path>",
	Short: "Validate and write a document (content from --content or stdin)",
	Long: `Write a document into the sandbox atomically. The content is read from
--content, or from stdin when the flag is absent.

Example:
  prowlerhub sandbox write cfg/app.yaml --create-dirs < app.yaml
  prowlerhub sandbox write settings.json --content '{"debug": false}'`,
	Args: cobra.ExactArgs(1),
	RunE: runSandboxWrite,
}

var sandboxMkdirCmd = &cobra.Command{
	Use:   "mkdir <relative-path>",
	Short: "Create a directory (and parents) in the sandbox",
	Args:  cobra.ExactArgs(1),
	RunE:  runSandboxMkdir,
}

var sandboxLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List sandbox files recursively",
	Args:  cobra.NoArgs,
	RunE:  runSandboxLs,
}

var sandboxCatCmd = &cobra.Command{
	Use:   "cat <relative-path>",
	Short: "Print a sandbox file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSandboxCat,
}

func init() {
	sandboxWriteCmd.Flags().StringVar(&sandboxContent, "content", "",
		"document content (default: read stdin)")
	sandboxWriteCmd.Flags().BoolVar(&sandboxCreateDirs, "create-dirs", false,
		"create missing parent directories")

	sandboxCmd.AddCommand(sandboxWriteCmd)
	sandboxCmd.AddCommand(sandboxMkdirCmd)
	sandboxCmd.AddCommand(sandboxLsCmd)
	sandboxCmd.AddCommand(sandboxCatCmd)
}

func runSandboxWrite(cmd *cobra.Command, args []string) error {
	sb, err := openSandbox()
	if err != nil {
		return err
	}

	content := sandboxContent
	if !cmd.Flags().Changed("content") {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		content = string(data)
	}

	path, err := sb.WriteDocument(args[0], content, sandboxCreateDirs)
	if err != nil {
		logError("Failed to write document: %v", err)
		return err
	}
	logVerbose("Wrote %s", path.Abs())

	fmt.Println(reporter.WrittenMessage(path.Rel(), len(content)))
	return nil
}

func runSandboxMkdir(cmd *cobra.Command, args []string) error {
	sb, err := openSandbox()
	if err != nil {
		return err
	}

	path, err := sb.CreateDirectory(args[0])
	if err != nil {
		logError("Failed to create directory: %v", err)
		return err
	}

	fmt.Println(reporter.CreatedMessage(path.Rel()))
	return nil
}

func runSandboxLs(cmd *cobra.Command, args []string) error {
	sb, err := openSandbox()
	if err != nil {
		return err
	}

	entries, err := sb.ListFiles()
	if err != nil {
		logError("Failed to list sandbox: %v", err)
		return err
	}

	if jsonOutput() {
		return reporter.NewJSONReporter(os.Stdout, true).Generate(entries)
	}
	return reporter.NewMarkdownReporter(os.Stdout).WriteSandboxList(entries, sb.Root())
}

func runSandboxCat(cmd *cobra.Command, args []string) error {
	sb, err := openSandbox()
	if err != nil {
		return err
	}

	content, err := sb.ReadFile(args[0])
	if err != nil {
		logError("Failed to read sandbox file: %v", err)
		return err
	}

	fmt.Print(content)
	return nil
}
