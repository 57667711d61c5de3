package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultK, DefaultKExplore, DefaultMaxDepth and DefaultFallbackPenalty
// mirror the defaults internal/beam and internal/triad fall back to when a
// request or a PolicyConfig leaves a field at its zero value.
const (
	DefaultK               = 5
	DefaultKExplore        = 3 * DefaultK
	DefaultMaxDepth        = 4
	DefaultDeadlineSeconds = 5.0
	DefaultFallbackPenalty = 0.5
)

// Load reads the YAML configuration file at path, applies defaults, and
// validates the result.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults, and
// validates the result. Useful in tests where configs are built from string
// literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Policy.K <= 0 {
		cfg.Policy.K = DefaultK
	}
	if cfg.Policy.KExplore <= 0 {
		cfg.Policy.KExplore = 3 * cfg.Policy.K
	}
	if cfg.Policy.MaxDepth <= 0 {
		cfg.Policy.MaxDepth = DefaultMaxDepth
	}
	if cfg.Policy.DeadlineSeconds <= 0 {
		cfg.Policy.DeadlineSeconds = DefaultDeadlineSeconds
	}
	if cfg.Policy.FallbackPenalty == 0 {
		cfg.Policy.FallbackPenalty = DefaultFallbackPenalty
	}
	if cfg.Graph.Backend == "" {
		cfg.Graph.Backend = BackendMemory
	}
	if cfg.Vector.Backend == "" {
		cfg.Vector.Backend = BackendMemory
	}
	if cfg.Embedder.Backend == "" {
		cfg.Embedder.Backend = BackendMemory
	}
	if cfg.Enrichment.Concurrency <= 0 {
		cfg.Enrichment.Concurrency = 5
	}
}

// Validate checks that cfg contains a coherent set of values, returning a
// joined error listing every failure found.
func Validate(cfg *Config) error {
	var errs []error

	if !cfg.Server.logLevelValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if !cfg.Lineage.directionValid() {
		errs = append(errs, fmt.Errorf("lineage.default_direction %q is invalid; valid values: ancestors, descendants, both", cfg.Lineage.DefaultDirection))
	}
	if !validBackend(cfg.Graph.Backend) {
		errs = append(errs, fmt.Errorf("graph.backend %q is not a recognised backend", cfg.Graph.Backend))
	}
	if !validBackend(cfg.Vector.Backend) {
		errs = append(errs, fmt.Errorf("vector.backend %q is not a recognised backend", cfg.Vector.Backend))
	}
	if !validBackend(cfg.Embedder.Backend) {
		errs = append(errs, fmt.Errorf("embedder.backend %q is not a recognised backend", cfg.Embedder.Backend))
	}

	if cfg.Graph.Backend == BackendPostgres && cfg.Graph.PostgresDSN == "" {
		errs = append(errs, errors.New("graph.postgres_dsn is required when graph.backend is postgres"))
	}
	if cfg.Vector.Backend == BackendPgvector && cfg.Vector.PostgresDSN == "" {
		errs = append(errs, errors.New("vector.postgres_dsn is required when vector.backend is pgvector"))
	}
	if cfg.Vector.Backend == BackendQdrant && cfg.Vector.QdrantAddr == "" {
		errs = append(errs, errors.New("vector.qdrant_addr is required when vector.backend is qdrant"))
	}
	if cfg.Embedder.Backend == BackendOpenAI && cfg.Embedder.APIKey == "" {
		errs = append(errs, errors.New("embedder.api_key is required when embedder.backend is openai"))
	}
	if cfg.Enrichment.Enabled && (cfg.Enrichment.Endpoint == "" || cfg.Enrichment.Bucket == "") {
		errs = append(errs, errors.New("enrichment.endpoint and enrichment.bucket are required when enrichment.enabled is true"))
	}
	if cfg.Policy.K <= 0 {
		errs = append(errs, errors.New("policy.k must be positive"))
	}
	if cfg.Policy.KExplore < cfg.Policy.K {
		errs = append(errs, errors.New("policy.k_explore must be at least policy.k"))
	}

	return errors.Join(errs...)
}
