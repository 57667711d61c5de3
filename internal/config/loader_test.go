package config

import (
	"strings"
	"testing"
)

const minimalYAML = `
server:
  listen_addr: ":8080"
`

func TestLoadFromReaderAppliesDefaults(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(minimalYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Policy.K != DefaultK {
		t.Errorf("got K=%d, want default %d", cfg.Policy.K, DefaultK)
	}
	if cfg.Policy.KExplore != 3*DefaultK {
		t.Errorf("got KExplore=%d, want %d", cfg.Policy.KExplore, 3*DefaultK)
	}
	if cfg.Graph.Backend != BackendMemory {
		t.Errorf("got graph backend %q, want memory default", cfg.Graph.Backend)
	}
	if cfg.Policy.FallbackPenalty != DefaultFallbackPenalty {
		t.Errorf("got fallback penalty %f, want %f", cfg.Policy.FallbackPenalty, DefaultFallbackPenalty)
	}
}

func TestLoadFromReaderRejectsUnknownFields(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader("server:\n  bogus_field: true\n"))
	if err == nil {
		t.Fatal("expected a decode error for an unknown field")
	}
}

func TestLoadFromReaderRejectsInvalidLogLevel(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader("server:\n  log_level: verbose\n"))
	if err == nil {
		t.Fatal("expected a validation error")
	}
}

func TestLoadFromReaderRequiresDSNForPostgresBackend(t *testing.T) {
	yaml := "graph:\n  backend: postgres\n"
	_, err := LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected a validation error for a missing postgres dsn")
	}
}

func TestLoadFromReaderAcceptsQdrantBackendWithAddr(t *testing.T) {
	yaml := "vector:\n  backend: qdrant\n  qdrant_addr: \"localhost:6334\"\n"
	cfg, err := LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Vector.QdrantAddr != "localhost:6334" {
		t.Errorf("got %q, want localhost:6334", cfg.Vector.QdrantAddr)
	}
}

func TestLoadFromReaderRejectsKExploreBelowK(t *testing.T) {
	yaml := "policy:\n  k: 10\n  k_explore: 3\n"
	_, err := LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected a validation error when k_explore < k")
	}
}

func TestLoadFromReaderRequiresEnrichmentEndpointWhenEnabled(t *testing.T) {
	yaml := "enrichment:\n  enabled: true\n"
	_, err := LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected a validation error for enrichment enabled without an endpoint")
	}
}
