package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/arkivegraph/pathql/internal/pathmodel"
)

// Fixture is the on-disk JSON shape cmd/cli's demo mode loads into a fresh
// Graph/VectorIndex pair: a small, hand-editable dataset for exercising
// queries without a live graph store or embedding service.
type Fixture struct {
	Entities      []FixtureEntity       `json:"entities"`
	Relationships []FixtureRelationship `json:"relationships"`
}

// FixtureEntity is one entity plus the text its vector index entry is
// derived from.
type FixtureEntity struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
	// EmbedText overrides Label as the text embedded into the vector index,
	// for entities whose semantic content differs from their display label.
	EmbedText string `json:"embed_text,omitempty"`
}

// FixtureRelationship is one directed edge.
type FixtureRelationship struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
}

// LoadFixture decodes r as a Fixture and populates graph and vectors,
// embedding each entity's label (or EmbedText override) through embedder.
func LoadFixture(ctx context.Context, r io.Reader, graph *Graph, vectors *VectorIndex, embedder *Embedder) (int, error) {
	var fx Fixture
	if err := json.NewDecoder(r).Decode(&fx); err != nil {
		return 0, fmt.Errorf("fixture: decode: %w", err)
	}

	texts := make([]string, len(fx.Entities))
	for i, e := range fx.Entities {
		if e.EmbedText != "" {
			texts[i] = e.EmbedText
		} else {
			texts[i] = e.Label
		}
	}
	vectorsOut, err := embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("fixture: embed: %w", err)
	}

	for i, e := range fx.Entities {
		graph.AddEntity(pathmodel.Entity{ID: e.ID, Label: e.Label, Type: e.Type})
		vectors.Index(e.ID, vectorsOut[i], e.Type, "")
	}
	for _, r := range fx.Relationships {
		graph.AddRelationship(pathmodel.Relationship{Subject: r.Subject, Predicate: r.Predicate, Object: r.Object})
	}

	return len(fx.Entities), nil
}
