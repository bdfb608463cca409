package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dejo1307/pagerepl/internal/rewrite"
	"github.com/dejo1307/pagerepl/internal/sink"
)

// Config represents the pagerepl.yaml configuration.
type Config struct {
	Snapshot    string       `yaml:"snapshot"`
	Passes      []string     `yaml:"passes"`
	Checks      []string     `yaml:"checks"`
	Renderers   []string     `yaml:"renderers"`
	Landmarks   []string     `yaml:"landmarks"`
	Unify       UnifyConfig  `yaml:"unify"`
	Namer       NamerConfig  `yaml:"namer"`
	Output      OutputConfig `yaml:"output"`
	Concurrency int          `yaml:"concurrency"`
}

// OutputConfig controls where generated files and reports are written.
type OutputConfig struct {
	Dir             string        `yaml:"dir"`
	Sink            string        `yaml:"sink"` // fs, s3 or memory
	S3              sink.S3Config `yaml:"s3"`
	MaxSummaryChars int           `yaml:"max_summary_chars"`
}

// UnifyConfig controls repeated-element unification.
type UnifyConfig struct {
	Tags           []string `yaml:"tags"`
	MinOccurrences int      `yaml:"min_occurrences"`
}

// NamerConfig selects the naming service.
type NamerConfig struct {
	Provider  string        `yaml:"provider"` // none or gemini
	Model     string        `yaml:"model"`
	APIKey    string        `yaml:"api_key"`
	Timeout   time.Duration `yaml:"timeout"`
	CacheSize int           `yaml:"cache_size"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	opts := rewrite.DefaultOptions()
	return &Config{
		Passes:    append([]string(nil), rewrite.DefaultPasses...),
		Checks:    []string{"renderdiff", "syntax"},
		Renderers: []string{"manifest", "summary"},
		Landmarks: opts.Landmarks,
		Unify: UnifyConfig{
			Tags:           opts.UnifyTags,
			MinOccurrences: opts.MinOccurrences,
		},
		Namer: NamerConfig{
			Provider:  "none",
			Model:     "gemini-2.5-flash",
			Timeout:   opts.NamerTimeout,
			CacheSize: 512,
		},
		Output: OutputConfig{
			Dir:             "out",
			Sink:            "fs",
			MaxSummaryChars: 64000,
		},
		Concurrency: 1,
	}
}

// Load reads a configuration file from the given path, after loading a .env
// file when one exists. Missing fields are filled with defaults and environment
// variables override the file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	return cfg, nil
}

// ApplyEnv overrides fields from PAGEREPL_* variables and GEMINI_API_KEY.
func (c *Config) ApplyEnv() error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	str("PAGEREPL_SNAPSHOT", &c.Snapshot)
	str("PAGEREPL_OUTPUT_DIR", &c.Output.Dir)
	str("PAGEREPL_SINK", &c.Output.Sink)
	str("PAGEREPL_S3_ENDPOINT", &c.Output.S3.Endpoint)
	str("PAGEREPL_S3_REGION", &c.Output.S3.Region)
	str("PAGEREPL_S3_ACCESS_KEY", &c.Output.S3.AccessKey)
	str("PAGEREPL_S3_SECRET_KEY", &c.Output.S3.SecretKey)
	str("PAGEREPL_S3_BUCKET", &c.Output.S3.Bucket)
	str("PAGEREPL_S3_PREFIX", &c.Output.S3.Prefix)
	str("PAGEREPL_NAMER", &c.Namer.Provider)
	str("PAGEREPL_NAMER_MODEL", &c.Namer.Model)
	str("GEMINI_API_KEY", &c.Namer.APIKey)

	if v := os.Getenv("PAGEREPL_S3_USE_SSL"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("PAGEREPL_S3_USE_SSL: %w", err)
		}
		c.Output.S3.UseSSL = b
	}
	if v := os.Getenv("PAGEREPL_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PAGEREPL_CONCURRENCY: %w", err)
		}
		c.Concurrency = n
	}
	return nil
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.Output.Dir == "" {
		c.Output.Dir = def.Output.Dir
	}
	if c.Output.Sink == "" {
		c.Output.Sink = def.Output.Sink
	}
	if c.Output.MaxSummaryChars <= 0 {
		c.Output.MaxSummaryChars = def.Output.MaxSummaryChars
	}
	if c.Unify.MinOccurrences < 2 {
		c.Unify.MinOccurrences = def.Unify.MinOccurrences
	}
	if c.Namer.Timeout <= 0 {
		c.Namer.Timeout = def.Namer.Timeout
	}
	if c.Concurrency < 1 {
		c.Concurrency = 1
	}
}

// RewriteOptions converts the pass settings.
func (c *Config) RewriteOptions() rewrite.Options {
	return rewrite.Options{
		Landmarks:      c.Landmarks,
		UnifyTags:      c.Unify.Tags,
		MinOccurrences: c.Unify.MinOccurrences,
		NamerTimeout:   c.Namer.Timeout,
	}
}

// IsCheckEnabled returns true if the named check is enabled.
func (c *Config) IsCheckEnabled(name string) bool {
	return contains(c.Checks, name)
}

// IsRendererEnabled returns true if the named renderer is enabled.
func (c *Config) IsRendererEnabled(name string) bool {
	return contains(c.Renderers, name)
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
