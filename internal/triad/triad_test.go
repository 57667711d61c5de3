package triad

import (
	"context"
	"testing"

	"github.com/arkivegraph/pathql/internal/collab/memory"
	"github.com/arkivegraph/pathql/internal/parse"
	"github.com/arkivegraph/pathql/internal/pathmodel"
)

func buildRevolutionaryFixture() (*memory.Graph, *memory.VectorIndex, *memory.Embedder) {
	g := memory.NewGraph()
	g.AddEntity(pathmodel.Entity{ID: "gw", Label: "George Washington", Type: "person"})
	g.AddEntity(pathmodel.Entity{ID: "tj", Label: "Thomas Jefferson", Type: "person"})
	g.AddEntity(pathmodel.Entity{ID: "cc", Label: "Continental Congress", Type: "organization"})
	g.AddEntity(pathmodel.Entity{ID: "d1732", Label: "1732", Type: "date"})
	g.AddEntity(pathmodel.Entity{ID: "yorktown", Label: "Siege of Yorktown", Type: "event"})
	g.AddEntity(pathmodel.Entity{ID: "isolated", Label: "Unrelated Concept", Type: "concept"})

	g.AddRelationship(pathmodel.Relationship{Subject: "gw", Predicate: "AFFILIATED_WITH", Object: "cc"})
	g.AddRelationship(pathmodel.Relationship{Subject: "tj", Predicate: "AFFILIATED_WITH", Object: "cc"})
	g.AddRelationship(pathmodel.Relationship{Subject: "gw", Predicate: "BORN_ON", Object: "d1732"})
	g.AddRelationship(pathmodel.Relationship{Subject: "gw", Predicate: "COMMANDED", Object: "yorktown"})

	emb := memory.NewEmbedder(32)
	vecs := memory.NewVectorIndex()
	ctx := context.Background()
	labels := map[string]string{
		"gw": "George Washington", "tj": "Thomas Jefferson", "cc": "Continental Congress",
		"d1732": "1732", "yorktown": "Siege of Yorktown military battle war", "isolated": "Unrelated Concept",
	}
	types := map[string]string{
		"gw": "person", "tj": "person", "cc": "organization",
		"d1732": "date", "yorktown": "event", "isolated": "concept",
	}
	for id, label := range labels {
		v, _ := emb.Embed(ctx, []string{label})
		vecs.Index(id, v[0], types[id], "")
	}
	return g, vecs, emb
}

func sourceCandidate(id, typ string, score float64) pathmodel.CandidatePath {
	return pathmodel.NewCandidatePath(pathmodel.Entity{ID: id, Type: typ}, score)
}

func TestExecuteHopTypeSetReachability(t *testing.T) {
	g, vecs, emb := buildRevolutionaryFixture()
	ex := &Executor{Graph: g, Vectors: vecs, Embedder: emb}

	hop := parse.Hop{
		Direction: parse.DirOutgoing,
		Relation:  parse.RelationMatch{Wildcard: true},
		Depth:     parse.DefaultDepth,
		Filter:    &parse.Filter{Kind: parse.FilterTypeSet, Types: []string{"organization"}},
	}

	res, err := ex.ExecuteHop(context.Background(), []pathmodel.CandidatePath{sourceCandidate("gw", "person", 1.0)}, hop, nil, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Candidates) != 1 || res.Candidates[0].Current != "cc" {
		t.Fatalf("got %+v, want a single candidate terminating at cc", res.Candidates)
	}
}

func TestExecuteHopExactID(t *testing.T) {
	g, vecs, emb := buildRevolutionaryFixture()
	ex := &Executor{Graph: g, Vectors: vecs, Embedder: emb}

	hop := parse.Hop{
		Direction: parse.DirOutgoing,
		Relation:  parse.RelationMatch{Wildcard: true},
		Depth:     parse.DefaultDepth,
		Filter:    &parse.Filter{Kind: parse.FilterExactID, ID: "d1732"},
	}

	res, err := ex.ExecuteHop(context.Background(), []pathmodel.CandidatePath{sourceCandidate("gw", "person", 1.0)}, hop, nil, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Candidates) != 1 || res.Candidates[0].Current != "d1732" {
		t.Fatalf("got %+v, want a single candidate terminating at d1732", res.Candidates)
	}
}

func TestExecuteHopFuzzyRelationScoresAndAnnotatesEdge(t *testing.T) {
	g, vecs, emb := buildRevolutionaryFixture()
	ex := &Executor{Graph: g, Vectors: vecs, Embedder: emb}

	hop := parse.Hop{
		Direction: parse.DirOutgoing,
		Relation:  parse.RelationMatch{Terms: []string{"born", "birth"}},
		Depth:     parse.DefaultDepth,
		Filter:    &parse.Filter{Kind: parse.FilterTypeSet, Types: []string{"date"}},
	}

	res, err := ex.ExecuteHop(context.Background(), []pathmodel.CandidatePath{sourceCandidate("gw", "person", 1.0)}, hop, nil, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Candidates) != 1 || res.Candidates[0].Current != "d1732" {
		t.Fatalf("got %+v, want a single candidate terminating at d1732", res.Candidates)
	}
	c := res.Candidates[0]
	if c.Score <= 0 || c.Score > 1 {
		t.Errorf("got score %f, want a value in (0, 1]", c.Score)
	}
	lastEdge := c.Steps[len(c.Steps)-2]
	if lastEdge.Kind != pathmodel.StepEdge || lastEdge.Score == nil {
		t.Fatalf("expected the traversed edge-step to carry a rescoring annotation, got %+v", lastEdge)
	}
}

func TestExecuteHopSemanticFallbackWhenNoPathExists(t *testing.T) {
	g, vecs, emb := buildRevolutionaryFixture()
	ex := &Executor{Graph: g, Vectors: vecs, Embedder: emb}

	hop := parse.Hop{
		Direction: parse.DirOutgoing,
		Relation:  parse.RelationMatch{Wildcard: true},
		Depth:     parse.DefaultDepth,
		Filter:    &parse.Filter{Kind: parse.FilterSemanticText, Text: "Unrelated Concept"},
	}

	res, err := ex.ExecuteHop(context.Background(), []pathmodel.CandidatePath{sourceCandidate("gw", "person", 1.0)}, hop, nil, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Candidates) == 0 {
		t.Fatal("expected a fallback candidate")
	}
	c := res.Candidates[0]
	if c.Current != "isolated" {
		t.Errorf("got terminal %q, want isolated", c.Current)
	}
	var sawSentinel bool
	for _, s := range c.Steps {
		if s.Kind == pathmodel.StepEdge && s.NoPathFound {
			sawSentinel = true
		}
	}
	if !sawSentinel {
		t.Error("expected a sentinel no-path edge-step in the fallback candidate")
	}
}

func TestValidateRejectsFuzzyRelationAtMultiHopDepth(t *testing.T) {
	hop := parse.Hop{
		Relation: parse.RelationMatch{Terms: []string{"photographed"}},
		Depth:    parse.DepthRange{Min: 1, Max: 3},
		HasDepth: true,
		Filter:   &parse.Filter{Kind: parse.FilterTypeSet, Types: []string{"person"}},
	}
	err := validate(hop)
	if err == nil {
		t.Fatal("expected a policy error")
	}
	pe, ok := err.(PolicyError)
	if !ok || pe.Kind != KindFuzzyRelationMultiHop {
		t.Fatalf("got %v, want a PolicyError of kind %q", err, KindFuzzyRelationMultiHop)
	}
}

func TestValidateRejectsAbsentFilterAtMultiHopDepth(t *testing.T) {
	hop := parse.Hop{
		Relation: parse.RelationMatch{Wildcard: true},
		Depth:    parse.DepthRange{Min: 1, Max: 4},
		HasDepth: true,
	}
	err := validate(hop)
	if err == nil {
		t.Fatal("expected a policy error")
	}
	pe, ok := err.(PolicyError)
	if !ok || pe.Kind != KindVariableDepthNoFilter {
		t.Fatalf("got %v, want a PolicyError of kind %q", err, KindVariableDepthNoFilter)
	}
}

func TestExecuteHopAbsentFilterSingleDepthReturnsEmpty(t *testing.T) {
	g, vecs, emb := buildRevolutionaryFixture()
	ex := &Executor{Graph: g, Vectors: vecs, Embedder: emb}

	hop := parse.Hop{
		Direction: parse.DirOutgoing,
		Relation:  parse.RelationMatch{Wildcard: true},
		Depth:     parse.DefaultDepth,
	}

	res, err := ex.ExecuteHop(context.Background(), []pathmodel.CandidatePath{sourceCandidate("gw", "person", 1.0)}, hop, nil, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Candidates) != 0 {
		t.Errorf("got %d candidates, want 0", len(res.Candidates))
	}
}

func TestExecuteHopOverLargeDepthMinYieldsNoResults(t *testing.T) {
	g, vecs, emb := buildRevolutionaryFixture()
	ex := &Executor{Graph: g, Vectors: vecs, Embedder: emb}

	hop := parse.Hop{
		Direction: parse.DirOutgoing,
		Relation:  parse.RelationMatch{Wildcard: true},
		Depth:     parse.DepthRange{Min: 5, Max: parse.UnboundedDepth},
		HasDepth:  true,
		Filter:    &parse.Filter{Kind: parse.FilterTypeSet, Types: []string{"person"}},
	}

	res, err := ex.ExecuteHop(context.Background(), []pathmodel.CandidatePath{sourceCandidate("gw", "person", 1.0)}, hop, nil, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Candidates) != 0 {
		t.Errorf("got %d candidates, want 0 (min depth 5 exceeds the clamped max of 4)", len(res.Candidates))
	}
}
