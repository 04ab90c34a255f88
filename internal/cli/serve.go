package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/ppiankov/prowlerhub/internal/mcpserver"
	"github.com/spf13/cobra"
)

var serveHTTPAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server (stdio, or streamable HTTP with --http)",
	Long: `Serve the report and sandbox tools over the Model Context Protocol.

By default the server speaks MCP over stdin/stdout, which is what desktop
assistants launch. With --http it listens for the streamable HTTP transport
and also serves /health and /metrics.

Example:
  prowlerhub serve
  prowlerhub serve --http 127.0.0.1:8765`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHTTPAddr, "http", "",
		"listen address for the streamable HTTP transport (default from config, stdio when empty)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.EnsureDirs(); err != nil {
		logError("Failed to prepare directories: %v", err)
		return err
	}

	c, err := newCollector()
	if err != nil {
		return err
	}
	sb, err := openSandbox()
	if err != nil {
		return err
	}

	srv, err := mcpserver.New(&mcpserver.Config{
		Collector: c,
		Sandbox:   sb,
		Version:   buildVersion,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logVerbose("Scan directory: %s", c.ScanDir())
	logVerbose("Sandbox root: %s", sb.Root())
	srv.MarkReady()

	addr := serveHTTPAddr
	if addr == "" {
		addr = cfg.HTTPAddr
	}
	if addr != "" {
		return srv.ListenAndServe(ctx, addr)
	}

	if err := srv.RunStdio(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
