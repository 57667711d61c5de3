package lineage

import (
	"context"
	"testing"

	"github.com/arkivegraph/pathql/internal/collab/memory"
	"github.com/arkivegraph/pathql/internal/pathmodel"
)

func buildCollectionTree() *memory.Graph {
	g := memory.NewGraph()
	for _, id := range []string{"root", "child-a", "child-b", "grandchild"} {
		g.AddEntity(pathmodel.Entity{ID: id, Type: "collection"})
	}
	g.AddRelationship(pathmodel.Relationship{Subject: "child-a", Predicate: "PART_OF", Object: "root"})
	g.AddRelationship(pathmodel.Relationship{Subject: "child-b", Predicate: "PART_OF", Object: "root"})
	g.AddRelationship(pathmodel.Relationship{Subject: "grandchild", Predicate: "PART_OF", Object: "child-a"})
	return g
}

func TestResolveDescendants(t *testing.T) {
	r := Resolver{Graph: buildCollectionTree()}
	scope, err := r.Resolve(context.Background(), "root", Descendants)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"root", "child-a", "child-b", "grandchild"} {
		if !scope.Contains(want) {
			t.Errorf("expected scope to contain %q", want)
		}
	}
}

func TestResolveAncestors(t *testing.T) {
	r := Resolver{Graph: buildCollectionTree()}
	scope, err := r.Resolve(context.Background(), "grandchild", Ancestors)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"grandchild", "child-a", "root"} {
		if !scope.Contains(want) {
			t.Errorf("expected scope to contain %q", want)
		}
	}
	if scope.Contains("child-b") {
		t.Error("did not expect child-b in the ancestor scope")
	}
}

func TestNilScopeIsUnrestricted(t *testing.T) {
	var scope *Scope
	if !scope.Contains("anything") {
		t.Error("nil scope should be unrestricted")
	}
	if scope.AsSet() != nil {
		t.Error("nil scope should yield a nil set")
	}
}
