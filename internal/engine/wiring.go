package engine

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/dejo1307/pagerepl/internal/config"
	"github.com/dejo1307/pagerepl/internal/namer"
	"github.com/dejo1307/pagerepl/internal/sink"
)

// OpenSink creates the sink selected by output.sink.
func OpenSink(cfg *config.Config) (sink.Sink, error) {
	switch strings.ToLower(cfg.Output.Sink) {
	case "", "fs":
		return sink.FS{Dir: cfg.Output.Dir}, nil
	case "memory":
		return sink.NewMemory(), nil
	case "s3":
		s3cfg := cfg.Output.S3
		if s3cfg.Prefix == "" {
			s3cfg.Prefix = cfg.Output.Dir
		}
		s3, err := sink.NewS3(s3cfg)
		if err != nil {
			return nil, err
		}
		return s3, nil
	}
	return nil, fmt.Errorf("unknown sink %q", cfg.Output.Sink)
}

// OpenNamer creates the naming service selected by namer.provider, wrapped in an
// LRU cache. It returns nil for "none".
func OpenNamer(ctx context.Context, cfg *config.Config) (namer.Namer, error) {
	switch strings.ToLower(cfg.Namer.Provider) {
	case "", "none":
		return nil, nil
	case "gemini":
		g, err := namer.NewGemini(ctx, cfg.Namer.APIKey, cfg.Namer.Model)
		if err != nil {
			return nil, err
		}
		cached, err := namer.NewCached(g, cfg.Namer.CacheSize)
		if err != nil {
			return nil, err
		}
		log.Printf("[engine] naming with gemini model %s", cfg.Namer.Model)
		return cached, nil
	}
	return nil, fmt.Errorf("unknown namer %q", cfg.Namer.Provider)
}
