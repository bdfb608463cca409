package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dejo1307/pagerepl/internal/checks"
	"github.com/dejo1307/pagerepl/internal/config"
	"github.com/dejo1307/pagerepl/internal/engine"
	"github.com/dejo1307/pagerepl/internal/renderers/manifest"
	"github.com/dejo1307/pagerepl/internal/renderers/summary"
	"github.com/dejo1307/pagerepl/internal/server"
	"github.com/dejo1307/pagerepl/internal/snapshot"
)

func main() {
	// Ensure log output goes to stderr, never stdout (MCP uses stdout for JSON-RPC)
	log.SetOutput(os.Stderr)

	ctx := context.Background()

	generateMode := false
	cfgPath := "pagerepl.yaml"
	for _, arg := range os.Args[1:] {
		if arg == "--generate" {
			generateMode = true
		} else {
			cfgPath = arg
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v, using defaults\n", err)
		cfg = config.Default()
		if err := cfg.ApplyEnv(); err != nil {
			log.Fatalf("invalid environment: %v", err)
		}
	}

	out, err := engine.OpenSink(cfg)
	if err != nil {
		log.Fatalf("failed to open sink: %v", err)
	}
	nm, err := engine.OpenNamer(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to create namer: %v", err)
	}

	eng, err := engine.New(cfg, out, nm)
	if err != nil {
		log.Fatalf("failed to create engine: %v", err)
	}

	eng.RegisterCheck(checks.RenderDiff{})
	eng.RegisterCheck(checks.Syntax{})

	eng.RegisterRenderer(manifest.Renderer{})
	eng.RegisterRenderer(summary.New(cfg.Output.MaxSummaryChars))

	// One-shot generation mode
	if generateMode {
		if cfg.Snapshot == "" {
			log.Fatalf("no snapshot configured (set snapshot in %s or PAGEREPL_SNAPSHOT)", cfgPath)
		}
		snap, err := snapshot.Load(cfg.Snapshot)
		if err != nil {
			log.Fatalf("failed to load snapshot: %v", err)
		}

		rep, err := eng.Replicate(ctx, snap)
		if err != nil {
			log.Fatalf("replication failed: %v", err)
		}

		fmt.Fprintf(os.Stderr, "\nReplica complete:\n")
		fmt.Fprintf(os.Stderr, "  Page:        %s\n", rep.Meta.URL)
		fmt.Fprintf(os.Stderr, "  Files:       %d\n", rep.Meta.FileCount)
		fmt.Fprintf(os.Stderr, "  Components:  %d\n", rep.Meta.ComponentCount)
		fmt.Fprintf(os.Stderr, "  Findings:    %d\n", rep.Meta.FindingCount)
		fmt.Fprintf(os.Stderr, "  Artifacts:   %d\n", len(rep.Artifacts))
		fmt.Fprintf(os.Stderr, "  Duration:    %s\n", rep.Meta.Duration)
		fmt.Fprintf(os.Stderr, "  Output:      %s (%s)\n", cfg.Output.Dir, cfg.Output.Sink)
		os.Exit(0)
	}

	// MCP server mode (default)
	srv, err := server.New(eng, cfg)
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
