package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/ppiankov/prowlerhub/internal/collector"
	"github.com/ppiankov/prowlerhub/internal/models"
	"github.com/ppiankov/prowlerhub/internal/sandbox"
)

const serverInstructions = `prowlerhub analyzes Prowler cloud security scan results (HTML, CSV, JSON-ASFF) from a scan directory and writes validated configuration documents to a sandboxed output directory.

Typical flow: get_latest_file or list_reports to find a report, then analyze_report for details or summarize_security for a graded overview. Relative file paths are resolved against the scan directory.

Sandbox tools (write_document, create_directory, list_sandbox_files, read_sandbox_file) only accept paths relative to the sandbox root. Documents are validated before writing: .json as JSON, .toml as TOML, anything else as YAML.`

// Config holds MCP server configuration.
type Config struct {
	// Collector reads and parses files from the scan directory.
	Collector *collector.Collector

	// Sandbox receives generated documents.
	Sandbox sandbox.Store

	// Version is reported to clients during initialization.
	Version string
}

// Server wraps the MCP server with prowlerhub's tools.
type Server struct {
	mcp     *mcp.Server
	config  *Config
	metrics *Metrics
	ready   atomic.Bool
}

// New creates a new MCP server with all tools registered.
func New(cfg *Config) (*Server, error) {
	if cfg == nil || cfg.Collector == nil || cfg.Sandbox == nil {
		return nil, errors.New("mcpserver: collector and sandbox are required")
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	metrics, err := NewMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	s := &Server{
		config:  cfg,
		metrics: metrics,
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "prowlerhub",
			Title:   "Prowler Report Analyzer",
			Version: cfg.Version,
		},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)

	s.registerTools()

	return s, nil
}

// MCPServer returns the underlying MCP server for direct access (e.g., testing).
func (s *Server) MCPServer() *mcp.Server { return s.mcp }

// Metrics returns the server's metrics collectors.
func (s *Server) Metrics() *Metrics { return s.metrics }

// MarkReady signals that startup checks passed. Until then /health reports 503.
func (s *Server) MarkReady() { s.ready.Store(true) }

// IsReady returns true once MarkReady has been called.
func (s *Server) IsReady() bool { return s.ready.Load() }

// RunStdio runs the MCP server over stdio transport.
func (s *Server) RunStdio(ctx context.Context) error {
	log.Println("[mcp] serving on stdio")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// HTTPHandler returns an http.Handler for the streamable HTTP transport.
//
// The handler mounts:
//   - /health   → readiness probe (GET only)
//   - /metrics  → Prometheus metrics
//   - /mcp      → streamable HTTP transport (rate limited, body capped)
//   - /         → streamable HTTP transport (default mount)
func (s *Server) HTTPHandler() http.Handler {
	streamable := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return s.mcp },
		&mcp.StreamableHTTPOptions{},
	)

	limiter := newRateLimiter(DefaultRateLimitRequests, DefaultRateLimitWindow, nil)
	transport := limiter.middleware(bodySizeLimit(DefaultRequestBodyLimitBytes, streamable))

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", s.metrics.Handler())
	mux.Handle("/mcp", transport)
	mux.Handle("/", transport)

	return recoveryMiddleware(securityHeaders(mux))
}

// ListenAndServe serves the HTTP handler on addr until ctx is cancelled,
// then drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s.HTTPHandler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		log.Println("[mcp] shutting down")
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[mcp] shutdown error: %v", err)
		}
	}()

	log.Printf("[mcp] listening on %s (HTTP transport)", addr)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleHealth serves a readiness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if !s.IsReady() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"starting","service":"prowlerhub"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok","service":"prowlerhub"}`))
}

// ---------------------------------------------------------------------------
// Result builders
// ---------------------------------------------------------------------------

// textResult creates a CallToolResult with a single text content block.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// jsonResult marshals v to indented JSON and wraps it in a CallToolResult.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return textResult(string(data)), nil
}

// errorResult creates an IsError CallToolResult so the client sees the
// failure as tool output rather than a protocol error.
func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}

// domainError renders a classified error with its kind.
func domainError(err error) *mcp.CallToolResult {
	return errorResult(fmt.Sprintf("Error (%s): %v", models.KindOf(err), err))
}

func boolPtr(b bool) *bool { return &b }

// parseArgs unmarshals the raw JSON arguments from a tool call into dst.
func parseArgs(req *mcp.CallToolRequest, dst any) error {
	if len(req.Params.Arguments) == 0 {
		return nil
	}
	if err := json.Unmarshal(req.Params.Arguments, dst); err != nil {
		return fmt.Errorf("parsing tool arguments: %w", err)
	}
	return nil
}
