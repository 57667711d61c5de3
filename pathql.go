// Package pathql is the engine facade: it wires the entry resolver, the
// triad executor, and the lineage resolver into a single Driver and exposes
// the query entry point, per spec §4. Grounded on the teacher's pgraph.go
// facade shape (New/Load/Query) and on internal/config for the
// backend-selection switch NewFromConfig performs.
package pathql

import (
	"context"
	"fmt"
	"time"

	"github.com/arkivegraph/pathql/internal/collab"
	"github.com/arkivegraph/pathql/internal/collab/memory"
	"github.com/arkivegraph/pathql/internal/collab/openai"
	"github.com/arkivegraph/pathql/internal/collab/pgvector"
	"github.com/arkivegraph/pathql/internal/collab/postgres"
	"github.com/arkivegraph/pathql/internal/collab/qdrant"
	"github.com/arkivegraph/pathql/internal/config"
	"github.com/arkivegraph/pathql/internal/driver"
	"github.com/arkivegraph/pathql/internal/lineage"
	"github.com/arkivegraph/pathql/internal/resolve"
	"github.com/arkivegraph/pathql/internal/triad"
)

// Request and Response alias the driver's wire-level types so callers never
// need to import internal/driver directly.
type (
	Request        = driver.Request
	Response       = driver.Response
	ResultEntry    = driver.ResultEntry
	Metadata       = driver.Metadata
	LineageRequest = driver.LineageRequest
)

// Error tags, re-exported from internal/driver for callers that branch on
// Metadata.ErrorTag without importing the internal package.
const (
	ErrParse             = driver.ErrParse
	ErrInvalidEntryPoint = driver.ErrInvalidEntryPoint
	ErrNoEntryPoint      = driver.ErrNoEntryPoint
	ErrUnsupportedQuery  = driver.ErrUnsupportedQuery
	ErrNoPathFound       = driver.ErrNoPathFound
)

// Engine is the assembled query engine bound to one set of collaborators.
type Engine struct {
	driver *driver.Driver
}

// New builds an Engine directly from its three collaborators, applying the
// default beam/depth/deadline policy. Used by tests and by cmd/cli's demo
// mode, which wires internal/collab/memory fakes.
func New(graph collab.GraphStore, vectors collab.VectorIndex, embedder collab.Embedder) *Engine {
	resolver := resolve.New(graph, vectors, embedder)
	executor := &triad.Executor{Graph: graph, Vectors: vectors, Embedder: embedder}
	lineageResolver := &lineage.Resolver{Graph: graph}
	return &Engine{driver: driver.New(resolver, executor, lineageResolver)}
}

// NewDemo builds an Engine over the in-memory fakes, for the CLI's offline
// demo mode. The returned graph/vectors/embedder are exposed so a caller can
// load fixture data before issuing queries.
func NewDemo(embeddingDimension int) (*Engine, *memory.Graph, *memory.VectorIndex, *memory.Embedder) {
	g := memory.NewGraph()
	v := memory.NewVectorIndex()
	e := memory.NewEmbedder(embeddingDimension)
	return New(g, v, e), g, v, e
}

// NewFromConfig wires the real collaborator adapters named by cfg, dialing
// every backend the configuration selects. A Backend left unset falls back
// to the in-memory fake for that collaborator slot, so a deployment can bring
// up e.g. a real graph store with a fake embedder during development.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Engine, error) {
	graph, err := buildGraphStore(ctx, cfg.Graph)
	if err != nil {
		return nil, err
	}
	vectors, err := buildVectorIndex(ctx, cfg.Vector)
	if err != nil {
		return nil, err
	}
	embedder, err := buildEmbedder(cfg.Embedder)
	if err != nil {
		return nil, err
	}

	eng := New(graph, vectors, embedder)
	if cfg.Policy.FallbackPenalty > 0 {
		eng.driver.Triad.FallbackPenalty = cfg.Policy.FallbackPenalty
	}
	if cfg.Policy.DeadlineSeconds > 0 {
		eng.driver.Deadline = time.Duration(cfg.Policy.DeadlineSeconds * float64(time.Second))
	}
	return eng, nil
}

func buildGraphStore(ctx context.Context, cfg config.GraphConfig) (collab.GraphStore, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		return postgres.NewStore(ctx, cfg.PostgresDSN)
	case config.BackendMemory, "":
		return memory.NewGraph(), nil
	default:
		return nil, fmt.Errorf("pathql: unsupported graph backend %q", cfg.Backend)
	}
}

func buildVectorIndex(ctx context.Context, cfg config.VectorConfig) (collab.VectorIndex, error) {
	switch cfg.Backend {
	case config.BackendPgvector:
		return pgvector.NewIndex(ctx, cfg.PostgresDSN)
	case config.BackendQdrant:
		host, port := config.SplitHostPort(cfg.QdrantAddr)
		return qdrant.NewIndex(qdrant.Config{CollectionName: cfg.Collection, Host: host, Port: port})
	case config.BackendMemory, "":
		return memory.NewVectorIndex(), nil
	default:
		return nil, fmt.Errorf("pathql: unsupported vector backend %q", cfg.Backend)
	}
}

func buildEmbedder(cfg config.EmbedderConfig) (collab.Embedder, error) {
	switch cfg.Backend {
	case config.BackendOpenAI:
		return openai.New(openai.Config{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: cfg.BaseURL})
	case config.BackendMemory, "":
		return memory.NewEmbedder(cfg.Dimension), nil
	default:
		return nil, fmt.Errorf("pathql: unsupported embedder backend %q", cfg.Backend)
	}
}

// Query runs req against the wired collaborators and returns the response
// contract of spec §6.
func (e *Engine) Query(ctx context.Context, req Request) (*Response, error) {
	return e.driver.Query(ctx, req)
}
