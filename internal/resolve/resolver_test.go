package resolve

import (
	"context"
	"testing"

	"github.com/arkivegraph/pathql/internal/collab/memory"
	"github.com/arkivegraph/pathql/internal/parse"
	"github.com/arkivegraph/pathql/internal/pathmodel"
)

func buildFixture() (*memory.Graph, *memory.VectorIndex, *memory.Embedder) {
	g := memory.NewGraph()
	g.AddEntity(pathmodel.Entity{ID: "gw", Label: "George Washington", Type: "person"})
	g.AddEntity(pathmodel.Entity{ID: "tj", Label: "Thomas Jefferson", Type: "person"})
	g.AddEntity(pathmodel.Entity{ID: "doc1", Label: "Declaration of Independence", Type: "document"})

	emb := memory.NewEmbedder(32)
	vecs := memory.NewVectorIndex()
	ctx := context.Background()
	for _, e := range []struct{ id, label, typ string }{
		{"gw", "George Washington", "person"},
		{"tj", "Thomas Jefferson", "person"},
		{"doc1", "Declaration of Independence", "document"},
	} {
		v, _ := emb.Embed(ctx, []string{e.label})
		vecs.Index(e.id, v[0], e.typ, "")
	}

	return g, vecs, emb
}

func TestResolveExactIDFound(t *testing.T) {
	g, vecs, emb := buildFixture()
	r := New(g, vecs, emb)

	cands, err := r.Resolve(context.Background(), parse.EntryPoint{Kind: parse.EntryExactID, ID: "gw"}, 5, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cands) != 1 || cands[0].Score != 1.0 || cands[0].Current != "gw" {
		t.Fatalf("got %+v, want a single score-1.0 candidate for gw", cands)
	}
}

func TestResolveExactIDMissing(t *testing.T) {
	g, vecs, emb := buildFixture()
	r := New(g, vecs, emb)

	cands, err := r.Resolve(context.Background(), parse.EntryPoint{Kind: parse.EntryExactID, ID: "nope"}, 5, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cands) != 0 {
		t.Errorf("got %d candidates, want 0", len(cands))
	}
}

func TestResolveSemanticTextRanksHits(t *testing.T) {
	g, vecs, emb := buildFixture()
	r := New(g, vecs, emb)

	cands, err := r.Resolve(context.Background(), parse.EntryPoint{Kind: parse.EntrySemanticText, Text: "George Washington"}, 5, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cands) == 0 {
		t.Fatal("expected at least one candidate")
	}
	if cands[0].Current != "gw" {
		t.Errorf("got top candidate %q, want gw", cands[0].Current)
	}
}

func TestResolveTypePlusSemanticRestrictsByType(t *testing.T) {
	g, vecs, emb := buildFixture()
	r := New(g, vecs, emb)

	cands, err := r.Resolve(context.Background(), parse.EntryPoint{
		Kind: parse.EntryTypePlusSemantic, Types: []string{"document"}, Text: "declaration of independence",
	}, 5, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range cands {
		if c.Current != "doc1" {
			t.Errorf("got candidate %q, expected only doc1 (type-restricted)", c.Current)
		}
	}
}

func TestResolveTypeOnlyReturnsArbitraryEntitiesOfType(t *testing.T) {
	g, vecs, emb := buildFixture()
	r := New(g, vecs, emb)

	cands, err := r.Resolve(context.Background(), parse.EntryPoint{Kind: parse.EntryTypeOnly, Types: []string{"person"}}, 5, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cands) != 2 {
		t.Fatalf("got %d candidates, want 2 persons", len(cands))
	}
	for _, c := range cands {
		if c.Score != 1.0 {
			t.Errorf("got score %f for type-only candidate, want 1.0", c.Score)
		}
	}
}
