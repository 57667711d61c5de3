package pathql

import (
	"context"
	"testing"

	"github.com/arkivegraph/pathql/internal/config"
	"github.com/arkivegraph/pathql/internal/pathmodel"
)

func buildDemoFixture(t *testing.T) *Engine {
	t.Helper()
	eng, g, vecs, emb := NewDemo(32)

	g.AddEntity(pathmodel.Entity{ID: "gw", Type: "person"})
	g.AddEntity(pathmodel.Entity{ID: "d1732", Type: "date"})
	g.AddRelationship(pathmodel.Relationship{Subject: "gw", Predicate: "BORN_ON", Object: "d1732"})

	ctx := context.Background()
	types := map[string]string{"gw": "person", "d1732": "date"}
	for id, label := range map[string]string{"gw": "George Washington", "d1732": "1732"} {
		v, _ := emb.Embed(ctx, []string{label})
		vecs.Index(id, v[0], types[id], "")
	}
	return eng
}

func TestEngineQueryAgainstDemoFixture(t *testing.T) {
	eng := buildDemoFixture(t)
	resp, err := eng.Query(context.Background(), Request{Path: `@gw -[born]-> type:date`})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Metadata.ErrorTag != "" {
		t.Fatalf("got error tag %q, want none: %s", resp.Metadata.ErrorTag, resp.Metadata.Reason)
	}
	if len(resp.Results) != 1 || resp.Results[0].Entity.ID != "d1732" {
		t.Fatalf("got results %+v, want single d1732 result", resp.Results)
	}
}

func TestNewFromConfigDefaultsToMemoryBackends(t *testing.T) {
	cfg := &config.Config{}
	eng, err := NewFromConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp, err := eng.Query(context.Background(), Request{Path: `@missing`})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Metadata.ErrorTag != ErrNoEntryPoint {
		t.Fatalf("got error tag %q, want %q", resp.Metadata.ErrorTag, ErrNoEntryPoint)
	}
}

func TestNewFromConfigRejectsUnknownGraphBackend(t *testing.T) {
	cfg := &config.Config{Graph: config.GraphConfig{Backend: config.Backend("bogus")}}
	if _, err := NewFromConfig(context.Background(), cfg); err == nil {
		t.Fatal("expected an error for an unsupported graph backend")
	}
}

func TestNewFromConfigAppliesFallbackPenaltyOverride(t *testing.T) {
	cfg := &config.Config{Policy: config.PolicyConfig{FallbackPenalty: 0.25}}
	eng, err := NewFromConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := eng.driver.Triad.FallbackPenalty; got != 0.25 {
		t.Errorf("got fallback penalty %v, want 0.25", got)
	}
}
