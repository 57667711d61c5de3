// Package openai implements the embedder collaborator contract on top of
// the OpenAI embeddings API, grounded on glyphoxa's
// pkg/provider/embeddings/openai.Provider.
package openai

import (
	"context"
	"fmt"
	"strings"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/arkivegraph/pathql/internal/collab"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = oai.EmbeddingModelTextEmbedding3Small

// Config configures a new Embedder.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Embedder is a batched Embedder backed by the OpenAI embeddings endpoint.
type Embedder struct {
	client oai.Client
	model  string
}

var _ collab.Embedder = (*Embedder)(nil)

// New constructs an Embedder. APIKey is required.
func New(cfg Config) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai embedder: api key must not be empty")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Embedder{client: oai.NewClient(reqOpts...), model: model}, nil
}

// Embed implements collab.Embedder, batching every text into one request.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.Embeddings.New(ctx, oai.EmbeddingNewParams{
		Model: e.model,
		Input: oai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
	})
	if err != nil {
		return nil, collab.Unavailable("openai", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, collab.Unavailable("openai", fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data)))
	}

	out := make([][]float64, len(texts))
	for _, d := range resp.Data {
		if int(d.Index) >= len(texts) {
			return nil, collab.Unavailable("openai", fmt.Errorf("unexpected index %d", d.Index))
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

func (e *Embedder) Dimension() int { return modelDimensions(e.model) }

func modelDimensions(model string) int {
	lower := strings.ToLower(model)
	switch {
	case strings.Contains(lower, "text-embedding-3-large"):
		return 3072
	case strings.Contains(lower, "text-embedding-3-small"):
		return 1536
	case strings.Contains(lower, "text-embedding-ada-002"):
		return 1536
	default:
		return 1536
	}
}
