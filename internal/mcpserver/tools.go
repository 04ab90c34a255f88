package mcpserver

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/ppiankov/prowlerhub/internal/collector"
	"github.com/ppiankov/prowlerhub/internal/reporter"
)

// toolHandler is the signature every tool implements.
type toolHandler = mcp.ToolHandler

// registerTools adds all tools to the MCP server.
func (s *Server) registerTools() {
	s.addLatestFileTool()
	s.addAnalyzeReportTool()
	s.addSummarizeTool()
	s.addListReportsTool()
	s.addReadFileTool()
	s.addWriteDocumentTool()
	s.addCreateDirectoryTool()
	s.addListSandboxTool()
	s.addReadSandboxTool()
}

// addTool registers a tool with metrics and logging around its handler.
func (s *Server) addTool(tool *mcp.Tool, handler toolHandler) {
	name := tool.Name
	logged := func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := handler(ctx, req)
		if err != nil {
			log.Printf("[mcp] tool %s failed: %v", name, err)
		}
		return result, err
	}
	s.mcp.AddTool(tool, s.metrics.instrument(name, logged))
}

func readOnly(title string) *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		Title:          title,
		ReadOnlyHint:   true,
		IdempotentHint: true,
		OpenWorldHint:  boolPtr(false),
	}
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

// renderMarkdown runs fn against a Markdown reporter and returns the text.
func renderMarkdown(fn func(r *reporter.MarkdownReporter) error) (*mcp.CallToolResult, error) {
	var buf bytes.Buffer
	if err := fn(reporter.NewMarkdownReporter(&buf)); err != nil {
		return nil, err
	}
	return textResult(buf.String()), nil
}

// ---------------------------------------------------------------------------
// get_latest_file
// ---------------------------------------------------------------------------

type directoryArgs struct {
	Directory string `json:"directory"`
}

func (s *Server) addLatestFileTool() {
	s.addTool(
		&mcp.Tool{
			Name:  "get_latest_file",
			Title: "Get Latest Report File",
			Description: `Find the most recently modified Prowler result file in a directory.

Returns the file name, full path, size, modification date and extension. OS housekeeping files (.DS_Store, Thumbs.db) are ignored.

EXAMPLE INPUTS:
• Configured scan directory: {}
• Other directory: {"directory": "/data/prowler/output"}`,
			InputSchema: objectSchema(map[string]any{
				"directory": stringProp("Directory to search. Defaults to the configured scan directory."),
			}),
			Annotations: readOnly("Get Latest Report File"),
		},
		s.handleLatestFile,
	)
}

func (s *Server) handleLatestFile(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args directoryArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
	}

	dir := s.directoryOrDefault(args.Directory)
	file, err := s.config.Collector.LatestFile(dir)
	if err != nil {
		return domainError(err), nil
	}

	return renderMarkdown(func(r *reporter.MarkdownReporter) error {
		return r.WriteLatest(file, dir)
	})
}

// ---------------------------------------------------------------------------
// analyze_report
// ---------------------------------------------------------------------------

type analyzeArgs struct {
	FilePath      string `json:"file_path"`
	PreviewLength int    `json:"preview_length"`
}

func (s *Server) addAnalyzeReportTool() {
	s.addTool(
		&mcp.Tool{
			Name:  "analyze_report",
			Title: "Analyze Report",
			Description: `Parse a Prowler result file and produce a Markdown analysis.

HTML reports: PASS/FAIL and severity counts from the findings table, failing findings, text preview.
CSV results: line and row counts, header, sample rows, status/severity counts when the columns exist.
JSON-ASFF findings: item count, sample keys, compliance status and severity counts, data-quality warnings.
Other files: size, line count and a short preview.

EXAMPLE INPUTS:
• {"file_path": "prowler-output-123.html"}
• {"file_path": "/abs/path/results.json", "preview_length": 1000}`,
			InputSchema: objectSchema(map[string]any{
				"file_path": stringProp("Report file path. Relative paths are also looked up in the scan directory."),
				"preview_length": map[string]any{
					"type":        "integer",
					"description": "Number of characters in the text preview.",
					"default":     collector.DefaultPreviewLength,
					"minimum":     1,
				},
			}, "file_path"),
			Annotations: readOnly("Analyze Report"),
		},
		s.handleAnalyzeReport,
	)
}

func (s *Server) handleAnalyzeReport(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args analyzeArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	if strings.TrimSpace(args.FilePath) == "" {
		return errorResult("file_path is required. Use get_latest_file or list_reports to find one."), nil
	}
	if args.PreviewLength < 0 {
		return errorResult("preview_length must be positive"), nil
	}

	report, result, err := s.config.Collector.Analyze(args.FilePath, args.PreviewLength)
	if err != nil {
		return domainError(err), nil
	}

	out, err := renderMarkdown(func(r *reporter.MarkdownReporter) error {
		return r.WriteAnalysis(report, result)
	})
	if err != nil {
		return nil, err
	}
	out.IsError = !result.OK()
	return out, nil
}

// ---------------------------------------------------------------------------
// summarize_security
// ---------------------------------------------------------------------------

type fileArgs struct {
	FilePath string `json:"file_path"`
}

func (s *Server) addSummarizeTool() {
	s.addTool(
		&mcp.Tool{
			Name:  "summarize_security",
			Title: "Summarize Security Status",
			Description: `Give a brief graded security summary of a report file.

Counts PASS, FAIL and CRITICAL occurrences, computes the pass rate and assigns a grade: A (>= 90%), B (>= 80%), C (>= 70%), D otherwise.

EXAMPLE INPUTS:
• {"file_path": "prowler-output-123.html"}`,
			InputSchema: objectSchema(map[string]any{
				"file_path": stringProp("Report file path. Relative paths are also looked up in the scan directory."),
			}, "file_path"),
			Annotations: readOnly("Summarize Security Status"),
		},
		s.handleSummarize,
	)
}

func (s *Server) handleSummarize(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args fileArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	if strings.TrimSpace(args.FilePath) == "" {
		return errorResult("file_path is required"), nil
	}

	summary, err := s.config.Collector.Summarize(args.FilePath)
	if err != nil {
		return domainError(err), nil
	}

	return renderMarkdown(func(r *reporter.MarkdownReporter) error {
		return r.WriteSummary(summary)
	})
}

// ---------------------------------------------------------------------------
// list_reports
// ---------------------------------------------------------------------------

// reportEntry is one row of the list_reports response.
type reportEntry struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Size      string `json:"size"`
	Extension string `json:"extension"`
	Modified  string `json:"modified"`
}

func (s *Server) addListReportsTool() {
	s.addTool(
		&mcp.Tool{
			Name:  "list_reports",
			Title: "List Report Files",
			Description: `List Prowler result files in a directory, newest first.

Returns a JSON array of {name, path, size, extension, modified}; size is in KB.

EXAMPLE INPUTS:
• {}
• {"directory": "/data/prowler/output"}`,
			InputSchema: objectSchema(map[string]any{
				"directory": stringProp("Directory to list. Defaults to the configured scan directory."),
			}),
			Annotations: readOnly("List Report Files"),
		},
		s.handleListReports,
	)
}

func (s *Server) handleListReports(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args directoryArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
	}

	files, err := s.config.Collector.ListReports(s.directoryOrDefault(args.Directory))
	if err != nil {
		return domainError(err), nil
	}

	entries := make([]reportEntry, 0, len(files))
	for _, f := range files {
		entries = append(entries, reportEntry{
			Name:      f.Name,
			Path:      f.Path,
			Size:      fmt.Sprintf("%d KB", f.SizeKB()),
			Extension: f.Extension,
			Modified:  f.ModTime.Format(time.RFC3339),
		})
	}
	return jsonResult(entries)
}

// ---------------------------------------------------------------------------
// read_file
// ---------------------------------------------------------------------------

func (s *Server) addReadFileTool() {
	s.addTool(
		&mcp.Tool{
			Name:  "read_file",
			Title: "Read File",
			Description: `Return the raw content of a file. Files larger than the configured limit (2 MiB by default) return only a preview of the first 2000 characters.

EXAMPLE INPUTS:
• {"file_path": "results.csv"}`,
			InputSchema: objectSchema(map[string]any{
				"file_path": stringProp("File path. Relative paths are also looked up in the scan directory."),
			}, "file_path"),
			Annotations: readOnly("Read File"),
		},
		s.handleReadFile,
	)
}

func (s *Server) handleReadFile(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args fileArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	if strings.TrimSpace(args.FilePath) == "" {
		return errorResult("file_path is required"), nil
	}

	text, truncated, err := s.config.Collector.ReadContent(args.FilePath)
	if err != nil {
		return domainError(err), nil
	}

	return renderMarkdown(func(r *reporter.MarkdownReporter) error {
		return r.WriteContent(text, truncated)
	})
}

// ---------------------------------------------------------------------------
// write_document
// ---------------------------------------------------------------------------

type writeDocumentArgs struct {
	RelativePath string `json:"relative_path"`
	Content      string `json:"content"`
	CreateDirs   bool   `json:"create_dirs"`
}

func (s *Server) addWriteDocumentTool() {
	s.addTool(
		&mcp.Tool{
			Name:  "write_document",
			Title: "Write Document",
			Description: `Write a configuration document into the sandbox directory.

The content is validated before anything is written: .json files as JSON, .toml files as TOML, everything else as YAML (multi-document streams allowed). Paths that leave the sandbox are rejected. Missing parent directories are only created when create_dirs is true.

EXAMPLE INPUTS:
• {"relative_path": "cfg/app.yaml", "content": "a: 1", "create_dirs": true}`,
			InputSchema: objectSchema(map[string]any{
				"relative_path": stringProp("Target path relative to the sandbox root."),
				"content":       stringProp("Document content."),
				"create_dirs": map[string]any{
					"type":        "boolean",
					"description": "Create missing parent directories.",
					"default":     false,
				},
			}, "relative_path", "content"),
			Annotations: &mcp.ToolAnnotations{
				Title:           "Write Document",
				ReadOnlyHint:    false,
				DestructiveHint: boolPtr(true),
				IdempotentHint:  true,
				OpenWorldHint:   boolPtr(false),
			},
		},
		s.handleWriteDocument,
	)
}

func (s *Server) handleWriteDocument(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args writeDocumentArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	if strings.TrimSpace(args.RelativePath) == "" {
		return errorResult("relative_path is required"), nil
	}

	path, err := s.config.Sandbox.WriteDocument(args.RelativePath, args.Content, args.CreateDirs)
	if err != nil {
		return domainError(err), nil
	}
	return textResult(reporter.WrittenMessage(path.Rel(), len(args.Content))), nil
}

// ---------------------------------------------------------------------------
// create_directory
// ---------------------------------------------------------------------------

type relativePathArgs struct {
	RelativePath string `json:"relative_path"`
}

func (s *Server) addCreateDirectoryTool() {
	s.addTool(
		&mcp.Tool{
			Name:  "create_directory",
			Title: "Create Directory",
			Description: `Create a directory (and any missing parents) inside the sandbox.

EXAMPLE INPUTS:
• {"relative_path": "cfg/prod"}`,
			InputSchema: objectSchema(map[string]any{
				"relative_path": stringProp("Directory path relative to the sandbox root."),
			}, "relative_path"),
			Annotations: &mcp.ToolAnnotations{
				Title:          "Create Directory",
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(false),
			},
		},
		s.handleCreateDirectory,
	)
}

func (s *Server) handleCreateDirectory(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args relativePathArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	if strings.TrimSpace(args.RelativePath) == "" {
		return errorResult("relative_path is required"), nil
	}

	path, err := s.config.Sandbox.CreateDirectory(args.RelativePath)
	if err != nil {
		return domainError(err), nil
	}
	return textResult(reporter.CreatedMessage(path.Rel())), nil
}

// ---------------------------------------------------------------------------
// list_sandbox_files
// ---------------------------------------------------------------------------

func (s *Server) addListSandboxTool() {
	s.addTool(
		&mcp.Tool{
			Name:  "list_sandbox_files",
			Title: "List Sandbox Files",
			Description: `List every file in the sandbox recursively as a JSON array of {relative_path, size, mod_time}, sorted by path.`,
			InputSchema: objectSchema(map[string]any{}),
			Annotations: readOnly("List Sandbox Files"),
		},
		s.handleListSandbox,
	)
}

func (s *Server) handleListSandbox(_ context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := s.config.Sandbox.ListFiles()
	if err != nil {
		return domainError(err), nil
	}
	return jsonResult(entries)
}

// ---------------------------------------------------------------------------
// read_sandbox_file
// ---------------------------------------------------------------------------

func (s *Server) addReadSandboxTool() {
	s.addTool(
		&mcp.Tool{
			Name:  "read_sandbox_file",
			Title: "Read Sandbox File",
			Description: `Return the content of a file inside the sandbox.

EXAMPLE INPUTS:
• {"relative_path": "cfg/app.yaml"}`,
			InputSchema: objectSchema(map[string]any{
				"relative_path": stringProp("File path relative to the sandbox root."),
			}, "relative_path"),
			Annotations: readOnly("Read Sandbox File"),
		},
		s.handleReadSandbox,
	)
}

func (s *Server) handleReadSandbox(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args relativePathArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	if strings.TrimSpace(args.RelativePath) == "" {
		return errorResult("relative_path is required"), nil
	}

	content, err := s.config.Sandbox.ReadFile(args.RelativePath)
	if err != nil {
		return domainError(err), nil
	}
	return textResult(content), nil
}

// directoryOrDefault falls back to the configured scan directory
func (s *Server) directoryOrDefault(dir string) string {
	if strings.TrimSpace(dir) == "" {
		return s.config.Collector.ScanDir()
	}
	return dir
}
