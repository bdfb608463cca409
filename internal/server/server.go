package server

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dejo1307/pagerepl/internal/canon"
	"github.com/dejo1307/pagerepl/internal/config"
	"github.com/dejo1307/pagerepl/internal/engine"
	"github.com/dejo1307/pagerepl/internal/renderers/manifest"
	"github.com/dejo1307/pagerepl/internal/renderers/summary"
	"github.com/dejo1307/pagerepl/internal/snapshot"
)

// Server wraps the MCP server and connects it to the replication engine.
type Server struct {
	mcp *mcp.Server
	eng *engine.Engine
	cfg *config.Config
}

// New creates a new MCP server wired to the given engine.
func New(eng *engine.Engine, cfg *config.Config) (*Server, error) {
	s := &Server{
		eng: eng,
		cfg: cfg,
	}

	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    "pagerepl",
		Version: "0.1.0",
	}, nil)
	s.registerResources()
	s.registerTools()

	return s, nil
}

// Run starts the MCP server on the stdio transport.
func (s *Server) Run(ctx context.Context) error {
	log.Println("[server] starting MCP server on stdio transport")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// registerResources exposes the reports of the last run.
func (s *Server) registerResources() {
	s.addArtifactResource(&mcp.Resource{
		URI:         "replica://last/manifest",
		Name:        "Replica Manifest",
		Description: "Generated files, components and check findings of the last run as JSON",
		MIMEType:    "application/json",
	}, manifest.FileName)

	s.addArtifactResource(&mcp.Resource{
		URI:         "replica://last/summary",
		Name:        "Replica Summary",
		Description: "Markdown overview of the last generated replica",
		MIMEType:    "text/markdown",
	}, summary.FileName)
}

func (s *Server) addArtifactResource(res *mcp.Resource, artifact string) {
	s.mcp.AddResource(res, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		content, err := s.eng.GetArtifact(artifact)
		if err != nil {
			return nil, fmt.Errorf("no replica available: %w (run replicate_snapshot first)", err)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{URI: req.Params.URI, Text: string(content), MIMEType: res.MIMEType},
			},
		}, nil
	})
}

// replicateArgs are the arguments for the replicate_snapshot tool.
type replicateArgs struct {
	Path     string `json:"path,omitempty" jsonschema:"Path to a snapshot JSON file. Defaults to the configured snapshot."`
	Snapshot string `json:"snapshot,omitempty" jsonschema:"Inline snapshot JSON, used instead of path when set"`
}

// diffArgs are the arguments for the diff_html tool.
type diffArgs struct {
	A string `json:"a" jsonschema:"First HTML fragment"`
	B string `json:"b" jsonschema:"Second HTML fragment"`
}

// canonicalizeArgs are the arguments for the canonicalize_html tool.
type canonicalizeArgs struct {
	HTML string `json:"html" jsonschema:"HTML fragment to canonicalize"`
}

// showFileArgs are the arguments for the show_file tool.
type showFileArgs struct {
	Path      string `json:"path" jsonschema:"Generated file path, e.g. src/app/page.tsx"`
	StartLine int    `json:"start_line,omitempty" jsonschema:"First line to show (default 1)"`
	EndLine   int    `json:"end_line,omitempty" jsonschema:"Last line to show (default end of file)"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "replicate_snapshot",
		Description: "Replicate a captured page snapshot into a componentized TSX source tree. Extracts icons, shared elements and layout landmarks, emits components from metadata, and verifies the result renders back to the captured markup.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args replicateArgs) (*mcp.CallToolResult, any, error) {
		return s.replicate(ctx, args), nil, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "diff_html",
		Description: "Compare two HTML fragments structurally, ignoring attribute order, whitespace, class order and style formatting.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args diffArgs) (*mcp.CallToolResult, any, error) {
		return diffHTML(args), nil, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "canonicalize_html",
		Description: "Show the canonical form of an HTML fragment as used by diff_html.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args canonicalizeArgs) (*mcp.CallToolResult, any, error) {
		return canonicalizeHTML(args), nil, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "show_file",
		Description: "Show a file generated by the last replicate_snapshot run with line numbers.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args showFileArgs) (*mcp.CallToolResult, any, error) {
		return s.showFile(args), nil, nil
	})
}

func (s *Server) replicate(ctx context.Context, args replicateArgs) *mcp.CallToolResult {
	var (
		snap *snapshot.Snapshot
		err  error
	)
	switch {
	case args.Snapshot != "":
		snap, err = snapshot.Decode(strings.NewReader(args.Snapshot))
	case args.Path != "":
		snap, err = snapshot.Load(args.Path)
	case s.cfg.Snapshot != "":
		snap, err = snapshot.Load(s.cfg.Snapshot)
	default:
		return errorResult("No snapshot given. Pass path or snapshot, or set snapshot in the config.")
	}
	if err != nil {
		return errorResult(fmt.Sprintf("reading snapshot: %v", err))
	}

	rep, err := s.eng.Replicate(ctx, snap)
	if err != nil {
		return errorResult(fmt.Sprintf("replication failed: %v", err))
	}

	text := fmt.Sprintf(
		"Replica generated successfully.\n\n"+
			"- Page: %s\n"+
			"- Files: %d\n"+
			"- Components from metadata: %d\n"+
			"- Findings: %d\n"+
			"- Duration: %s\n"+
			"- Passes: %v\n\n"+
			"Use the replica://last/summary resource for an overview or show_file to read a file.",
		rep.Meta.URL,
		rep.Meta.FileCount,
		rep.Meta.ComponentCount,
		rep.Meta.FindingCount,
		rep.Meta.Duration,
		rep.Meta.Passes,
	)
	return textResult(text)
}

func diffHTML(args diffArgs) *mcp.CallToolResult {
	report, err := canon.Diff(args.A, args.B)
	if err != nil {
		return errorResult(fmt.Sprintf("diff failed: %v", err))
	}
	if report == nil {
		return textResult("Fragments are equivalent.")
	}
	return textResult(report.String())
}

func canonicalizeHTML(args canonicalizeArgs) *mcp.CallToolResult {
	n, err := canon.Canonicalize(args.HTML)
	if err != nil {
		return errorResult(fmt.Sprintf("canonicalize failed: %v", err))
	}
	return textResult(n.String())
}

func (s *Server) showFile(args showFileArgs) *mcp.CallToolResult {
	rep := s.eng.Replica()
	if rep == nil {
		return errorResult("No replica available. Run replicate_snapshot first.")
	}
	if args.Path == "" {
		return errorResult("path is required")
	}
	f, ok := rep.File(args.Path)
	if !ok {
		return errorResult(fmt.Sprintf("No generated file %q", args.Path))
	}
	return textResult(fmt.Sprintf("### %s (%s)\n\n```tsx\n%s```\n", f.Path, f.Kind, numberLines(f.Content, args.StartLine, args.EndLine)))
}

// numberLines returns lines start..end of src (1-based, inclusive, clamped)
// prefixed with their line numbers.
func numberLines(src string, start, end int) string {
	lines := strings.Split(strings.TrimSuffix(src, "\n"), "\n")
	if start < 1 {
		start = 1
	}
	if end <= 0 || end > len(lines) {
		end = len(lines)
	}

	var sb strings.Builder
	for i := start; i <= end; i++ {
		fmt.Fprintf(&sb, "%4d│ %s\n", i, lines[i-1])
	}
	return sb.String()
}

func textResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}
