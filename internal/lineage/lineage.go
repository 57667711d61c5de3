// Package lineage resolves the "lineage scoping restriction" referenced but
// not specified by the query language: given a source collection identifier
// and a direction, it returns the transitive set of collection identifiers
// that restricts every downstream collaborator query. Grounded on the
// teacher's internal/inference/graph_traversals.go BFS-over-adjacency shape.
package lineage

import (
	"context"

	"github.com/arkivegraph/pathql/internal/collab"
)

// Direction is the transitive direction to walk from the seed collection.
type Direction int

const (
	Ancestors Direction = iota
	Descendants
	Both
)

// membershipPredicate is the edge label the graph store uses to encode one
// collection's membership within another; collections are modelled as
// ordinary entities connected by this predicate.
const membershipPredicate = "PART_OF"

// Scope is a resolved, transitive set of collection identifiers.
type Scope struct {
	CollectionIDs map[string]bool
}

// Contains reports whether id is within the scope. An empty scope (nil
// Scope or empty set) means unrestricted and always returns true; callers
// distinguish "no lineage requested" from "resolved to nothing" by checking
// for a nil Scope first.
func (s *Scope) Contains(id string) bool {
	if s == nil || len(s.CollectionIDs) == 0 {
		return true
	}
	return s.CollectionIDs[id]
}

// AsSet returns the scope's identifiers for passing to a
// collab.QueryOptions.LineageSet, or nil when s is unrestricted.
func (s *Scope) AsSet() map[string]bool {
	if s == nil || len(s.CollectionIDs) == 0 {
		return nil
	}
	return s.CollectionIDs
}

// Resolver walks the collection membership graph via a GraphStore.
type Resolver struct {
	Graph collab.GraphStore
}

// Resolve returns the transitive closure of seed in the requested direction,
// seed included.
func (r Resolver) Resolve(ctx context.Context, seed string, dir Direction) (*Scope, error) {
	visited := map[string]bool{seed: true}
	queue := []string{seed}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		rels, err := r.Graph.FetchRelationships(ctx, current)
		if err != nil {
			return nil, err
		}

		var next []string
		if dir == Descendants || dir == Both {
			// current is the parent; children point at it via PART_OF, so
			// descendants are found among current's incoming edges.
			for _, rel := range rels.Incoming {
				if rel.Predicate == membershipPredicate {
					next = append(next, rel.Subject)
				}
			}
		}
		if dir == Ancestors || dir == Both {
			// current points at its parent via an outgoing PART_OF edge.
			for _, rel := range rels.Outgoing {
				if rel.Predicate == membershipPredicate {
					next = append(next, rel.Object)
				}
			}
		}

		for _, id := range next {
			if !visited[id] {
				visited[id] = true
				queue = append(queue, id)
			}
		}
	}

	return &Scope{CollectionIDs: visited}, nil
}
