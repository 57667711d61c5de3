// Package collab defines the three abstract collaborator contracts the
// engine depends on — graph store, vector index, embedder — per §4.7.
// Any adapter satisfying these interfaces is a valid collaborator; the core
// never depends on a concrete backend.
package collab

import (
	"context"

	"github.com/arkivegraph/pathql/internal/pathmodel"
)

// Direction restricts a path or reachability query to one traversal
// direction, or both (the "direction=both" mode referenced by spec §9's
// open question on bidirectional scoring).
type Direction int

const (
	DirOutgoing Direction = iota
	DirIncoming
	DirBoth
)

// PathOptions bounds a path/reachability query.
type PathOptions struct {
	MinDepth  int
	MaxDepth  int
	Direction Direction
}

// PathEdge is one traversed edge within a returned Path.
type PathEdge struct {
	Predicate string
	Direction Direction // the direction actually taken for this edge
}

// PathNode is one entity endpoint within a returned Path, carrying only the
// fields the executor needs to build a pathmodel.Step without a second
// fetch.
type PathNode struct {
	ID    string
	Label string
	Type  string
}

// Path is one traversal result: an alternating sequence of nodes and edges,
// len(Nodes) == len(Edges)+1.
type Path struct {
	Source string
	Target string
	Nodes  []PathNode
	Edges  []PathEdge
}

// EdgeCount returns the number of edges in the path.
func (p Path) EdgeCount() int { return len(p.Edges) }

// GraphStore is the read-only graph collaborator contract.
type GraphStore interface {
	// FetchEntity fetches a single entity by identifier. found is false, with
	// a nil error, when the identifier does not exist.
	FetchEntity(ctx context.Context, id string) (entity pathmodel.Entity, found bool, err error)

	// FetchEntities fetches a batch; identifiers absent from the graph are
	// simply absent from the returned map, not an error.
	FetchEntities(ctx context.Context, ids []string) (map[string]pathmodel.Entity, error)

	// FetchRelationships returns the outgoing/incoming edge sequences for id.
	FetchRelationships(ctx context.Context, id string) (pathmodel.RelationshipSet, error)

	// FindPaths returns, for every (source, target) pair with source in
	// sources and target in targets, zero or more paths within opts' depth
	// range. truncated reports whether the safety limit on materialised
	// candidates was hit before every pair was explored.
	FindPaths(ctx context.Context, sources, targets []string, opts PathOptions) (paths []Path, truncated bool, err error)

	// FindReachableByType returns paths from sources to every entity of
	// targetType reachable within opts' depth range — the "target set is
	// all entities of type T reachable from sources" query of §4.7.
	FindReachableByType(ctx context.Context, sources []string, targetType string, opts PathOptions) (paths []Path, truncated bool, err error)
}

// QueryOptions restricts a vector-index query.
type QueryOptions struct {
	Limit      int
	TypeSet    []string        // empty means unrestricted
	LineageSet map[string]bool // empty means unrestricted; membership test
}

// Match is one vector-index hit.
type Match struct {
	ID    string
	Score float64 // similarity in [0, 1]
}

// VectorIndex is the semantic-search collaborator contract.
type VectorIndex interface {
	// QueryByEmbedding returns the top-Limit matches for vector, restricted
	// by opts' type set and lineage set.
	QueryByEmbedding(ctx context.Context, vector []float64, opts QueryOptions) ([]Match, error)

	// RankAmongByEmbedding restricts the search to ids and ranks them by
	// similarity to vector, used by the triad's semantic-text target stage
	// when the caller already knows the candidate identifier set.
	RankAmongByEmbedding(ctx context.Context, ids []string, vector []float64) ([]Match, error)
}

// Embedder is the batched text-to-vector collaborator contract.
type Embedder interface {
	// Embed returns one vector per input text, in the same order.
	Embed(ctx context.Context, texts []string) ([][]float64, error)

	// Dimension is the fixed length of every vector Embed returns.
	Dimension() int
}
