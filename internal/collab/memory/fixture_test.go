package memory

import (
	"context"
	"strings"
	"testing"

	"github.com/arkivegraph/pathql/internal/collab"
)

const sampleFixture = `{
  "entities": [
    {"id": "gw", "label": "George Washington", "type": "person"},
    {"id": "d1732", "label": "1732", "type": "date"}
  ],
  "relationships": [
    {"subject": "gw", "predicate": "BORN_ON", "object": "d1732"}
  ]
}`

func TestLoadFixturePopulatesGraphAndVectors(t *testing.T) {
	g := NewGraph()
	v := NewVectorIndex()
	e := NewEmbedder(32)

	n, err := LoadFixture(context.Background(), strings.NewReader(sampleFixture), g, v, e)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if n != 2 {
		t.Errorf("got %d entities loaded, want 2", n)
	}

	entity, found, err := g.FetchEntity(context.Background(), "gw")
	if err != nil || !found {
		t.Fatalf("expected gw to be present, found=%v err=%v", found, err)
	}
	if entity.Label != "George Washington" {
		t.Errorf("got label %q, want George Washington", entity.Label)
	}

	rels, err := g.FetchRelationships(context.Background(), "gw")
	if err != nil {
		t.Fatalf("FetchRelationships: %v", err)
	}
	if len(rels.Outgoing) != 1 || rels.Outgoing[0].Object != "d1732" {
		t.Errorf("got outgoing relationships %+v, want a single edge to d1732", rels.Outgoing)
	}

	vectors, err := e.Embed(context.Background(), []string{"George Washington"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	matches, err := v.QueryByEmbedding(context.Background(), vectors[0], collab.QueryOptions{Limit: 5})
	if err != nil {
		t.Fatalf("QueryByEmbedding: %v", err)
	}
	if len(matches) == 0 || matches[0].ID != "gw" {
		t.Errorf("got matches %+v, want gw ranked first", matches)
	}
}

func TestLoadFixtureRejectsInvalidJSON(t *testing.T) {
	g := NewGraph()
	v := NewVectorIndex()
	e := NewEmbedder(32)

	if _, err := LoadFixture(context.Background(), strings.NewReader("not json"), g, v, e); err == nil {
		t.Error("expected an error for invalid JSON")
	}
}
