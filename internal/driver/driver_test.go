package driver

import (
	"context"
	"testing"

	"github.com/arkivegraph/pathql/internal/collab/memory"
	"github.com/arkivegraph/pathql/internal/lineage"
	"github.com/arkivegraph/pathql/internal/pathmodel"
	"github.com/arkivegraph/pathql/internal/resolve"
	"github.com/arkivegraph/pathql/internal/triad"
)

func buildFoundersFixture() *Driver {
	g := memory.NewGraph()
	for id, typ := range map[string]string{
		"gw": "person", "tj": "person", "cc": "organization",
		"d1732": "date", "yorktown": "event",
		"doc1": "document", "doc2": "document",
	} {
		g.AddEntity(pathmodel.Entity{ID: id, Type: typ})
	}
	g.AddRelationship(pathmodel.Relationship{Subject: "gw", Predicate: "AFFILIATED_WITH", Object: "cc"})
	g.AddRelationship(pathmodel.Relationship{Subject: "tj", Predicate: "AFFILIATED_WITH", Object: "cc"})
	g.AddRelationship(pathmodel.Relationship{Subject: "gw", Predicate: "BORN_ON", Object: "d1732"})
	g.AddRelationship(pathmodel.Relationship{Subject: "gw", Predicate: "COMMANDED", Object: "yorktown"})

	emb := memory.NewEmbedder(32)
	vecs := memory.NewVectorIndex()
	ctx := context.Background()
	labels := map[string]string{
		"gw": "George Washington", "tj": "Thomas Jefferson", "cc": "Continental Congress",
		"d1732": "1732", "yorktown": "Siege of Yorktown military battle war",
		"doc1": "Declaration of Independence", "doc2": "Bill of Rights",
	}
	types := map[string]string{
		"gw": "person", "tj": "person", "cc": "organization", "d1732": "date",
		"yorktown": "event", "doc1": "document", "doc2": "document",
	}
	for id, label := range labels {
		v, _ := emb.Embed(ctx, []string{label})
		vecs.Index(id, v[0], types[id], "")
	}

	resolver := resolve.New(g, vecs, emb)
	executor := &triad.Executor{Graph: g, Vectors: vecs, Embedder: emb}
	lineageResolver := &lineage.Resolver{Graph: g}
	return New(resolver, executor, lineageResolver)
}

func TestQueryExactIDFuzzyRelationToDate(t *testing.T) {
	d := buildFoundersFixture()
	resp, err := d.Query(context.Background(), Request{Path: `@gw -[born,birth]-> type:date`})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Metadata.ErrorTag != "" {
		t.Fatalf("got error tag %q, want none: %s", resp.Metadata.ErrorTag, resp.Metadata.Reason)
	}
	if len(resp.Results) != 1 || resp.Results[0].Entity.ID != "d1732" {
		t.Fatalf("got %+v, want a single result terminating at d1732", resp.Results)
	}
	if resp.Results[0].Score <= 0 || resp.Results[0].Score > 1 {
		t.Errorf("got score %f, want (0, 1]", resp.Results[0].Score)
	}
}

func TestQueryChainedFuzzyHopsExcludesStartingEntity(t *testing.T) {
	d := buildFoundersFixture()
	resp, err := d.Query(context.Background(), Request{
		Path: `@gw -[affiliated]-> type:organization <-[affiliated]- type:person`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Metadata.ErrorTag != "" {
		t.Fatalf("got error tag %q: %s", resp.Metadata.ErrorTag, resp.Metadata.Reason)
	}
	if len(resp.Results) != 1 || resp.Results[0].Entity.ID != "tj" {
		t.Fatalf("got %+v, want the unique non-gw result tj", resp.Results)
	}
}

func TestQueryWildcardHopRanksBySemanticTarget(t *testing.T) {
	d := buildFoundersFixture()
	resp, err := d.Query(context.Background(), Request{
		Path: `@gw -[*]-> type:event ~ "military battle war"`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Metadata.ErrorTag != "" {
		t.Fatalf("got error tag %q: %s", resp.Metadata.ErrorTag, resp.Metadata.Reason)
	}
	if len(resp.Results) == 0 || resp.Results[0].Entity.ID != "yorktown" {
		t.Fatalf("got %+v, want yorktown first", resp.Results)
	}
}

func TestQueryZeroHopSemanticThenTypeFilterDocuments(t *testing.T) {
	d := buildFoundersFixture()
	resp, err := d.Query(context.Background(), Request{Path: `"declaration of independence" type:document`})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Metadata.ErrorTag != "" {
		t.Fatalf("got error tag %q: %s", resp.Metadata.ErrorTag, resp.Metadata.Reason)
	}
	if len(resp.Results) == 0 {
		t.Fatal("expected at least one document result")
	}
	for _, r := range resp.Results {
		if r.Entity.Type != "document" {
			t.Errorf("got type %q in results, want only document", r.Entity.Type)
		}
	}
	if resp.Results[0].Entity.ID != "doc1" {
		t.Errorf("got top result %q, want doc1 (closest to the query text)", resp.Results[0].Entity.ID)
	}
}

func TestQueryTypeOnlyEntryWithHopsIsInvalidEntryPoint(t *testing.T) {
	d := buildFoundersFixture()
	resp, err := d.Query(context.Background(), Request{Path: `type:person -[*]-> type:file`})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Metadata.ErrorTag != ErrInvalidEntryPoint {
		t.Fatalf("got error tag %q, want %q", resp.Metadata.ErrorTag, ErrInvalidEntryPoint)
	}
	if resp.Metadata.CandidatesExplored != 0 || len(resp.Results) != 0 {
		t.Errorf("expected no remote calls and no results, got %+v", resp)
	}
}

func TestQueryFuzzyRelationWithVariableDepthIsUnsupportedQuery(t *testing.T) {
	d := buildFoundersFixture()
	resp, err := d.Query(context.Background(), Request{Path: `@gw -[photographed]{,3}-> type:person`})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Metadata.ErrorTag != ErrUnsupportedQuery {
		t.Fatalf("got error tag %q, want %q", resp.Metadata.ErrorTag, ErrUnsupportedQuery)
	}
	if resp.Metadata.StoppedAtHop == nil || *resp.Metadata.StoppedAtHop != 0 {
		t.Errorf("got StoppedAtHop %v, want 0", resp.Metadata.StoppedAtHop)
	}
}

func TestQueryParseErrorIsReportedInMetadata(t *testing.T) {
	d := buildFoundersFixture()
	resp, err := d.Query(context.Background(), Request{Path: `@`})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Metadata.ErrorTag != ErrParse {
		t.Fatalf("got error tag %q, want %q", resp.Metadata.ErrorTag, ErrParse)
	}
}

func TestQueryUnknownExactIDIsNoEntryPoint(t *testing.T) {
	d := buildFoundersFixture()
	resp, err := d.Query(context.Background(), Request{Path: `@nonexistent`})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Metadata.ErrorTag != ErrNoEntryPoint {
		t.Fatalf("got error tag %q, want %q", resp.Metadata.ErrorTag, ErrNoEntryPoint)
	}
}

func TestQueryRespectsKLimit(t *testing.T) {
	d := buildFoundersFixture()
	resp, err := d.Query(context.Background(), Request{Path: `type:person`, K: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Results) > 1 {
		t.Errorf("got %d results, want at most 1", len(resp.Results))
	}
}
