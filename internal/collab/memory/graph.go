// Package memory provides small in-memory fakes of the three collaborator
// contracts, standing in for the graph store, vector index, and embedder in
// tests and the CLI's demo mode — mirroring the teacher's hand-built
// buildLinearGraph/buildDiamondGraph fixtures, with no mocking framework.
package memory

import (
	"context"
	"maps"
	"slices"

	"github.com/arkivegraph/pathql/internal/collab"
	"github.com/arkivegraph/pathql/internal/pathmodel"
)

// Graph is an in-memory adjacency-list GraphStore.
type Graph struct {
	entities map[string]pathmodel.Entity
	out      map[string][]pathmodel.Relationship
	in       map[string][]pathmodel.Relationship
}

// NewGraph returns an empty Graph.
func NewGraph() *Graph {
	return &Graph{
		entities: make(map[string]pathmodel.Entity),
		out:      make(map[string][]pathmodel.Relationship),
		in:       make(map[string][]pathmodel.Relationship),
	}
}

// AddEntity registers an entity, overwriting any prior entity with the same
// identifier.
func (g *Graph) AddEntity(e pathmodel.Entity) {
	g.entities[e.ID] = e
}

// AddRelationship registers a directed edge, indexing it by both endpoints.
func (g *Graph) AddRelationship(r pathmodel.Relationship) {
	g.out[r.Subject] = append(g.out[r.Subject], r)
	g.in[r.Object] = append(g.in[r.Object], r)
}

func (g *Graph) FetchEntity(_ context.Context, id string) (pathmodel.Entity, bool, error) {
	e, ok := g.entities[id]
	return e, ok, nil
}

func (g *Graph) FetchEntities(_ context.Context, ids []string) (map[string]pathmodel.Entity, error) {
	out := make(map[string]pathmodel.Entity, len(ids))
	for _, id := range ids {
		if e, ok := g.entities[id]; ok {
			out[id] = e
		}
	}
	return out, nil
}

func (g *Graph) FetchRelationships(_ context.Context, id string) (pathmodel.RelationshipSet, error) {
	return pathmodel.RelationshipSet{
		Outgoing: slices.Clone(g.out[id]),
		Incoming: slices.Clone(g.in[id]),
	}, nil
}

// frontierEdge is one candidate step considered while walking out from a
// node, normalised to (predicate, neighbor, direction taken).
type frontierEdge struct {
	predicate string
	neighbor  string
	direction collab.Direction
}

func (g *Graph) neighbors(id string, dir collab.Direction) []frontierEdge {
	var edges []frontierEdge
	if dir == collab.DirOutgoing || dir == collab.DirBoth {
		for _, r := range g.out[id] {
			edges = append(edges, frontierEdge{predicate: r.Predicate, neighbor: r.Object, direction: collab.DirOutgoing})
		}
	}
	if dir == collab.DirIncoming || dir == collab.DirBoth {
		for _, r := range g.in[id] {
			edges = append(edges, frontierEdge{predicate: r.Predicate, neighbor: r.Subject, direction: collab.DirIncoming})
		}
	}
	return edges
}

func (g *Graph) toNode(id string) collab.PathNode {
	e := g.entities[id]
	return collab.PathNode{ID: e.ID, Label: e.Label, Type: e.Type}
}

// walkPaths performs a depth-bounded DFS from source, invoking accept for
// every node reached within [opts.MinDepth, opts.MaxDepth] edges, and
// returns the accumulated paths.
func (g *Graph) walkPaths(source string, opts collab.PathOptions, accept func(id string) bool) []collab.Path {
	var results []collab.Path

	var nodes []collab.PathNode
	var edges []collab.PathEdge
	visited := map[string]bool{source: true}
	nodes = append(nodes, g.toNode(source))

	var dfs func(current string, depth int)
	dfs = func(current string, depth int) {
		if depth >= opts.MinDepth && depth <= opts.MaxDepth && depth > 0 && accept(current) {
			results = append(results, collab.Path{
				Source: source,
				Target: current,
				Nodes:  slices.Clone(nodes),
				Edges:  slices.Clone(edges),
			})
		}
		if depth >= opts.MaxDepth {
			return
		}
		for _, fe := range g.neighbors(current, opts.Direction) {
			if visited[fe.neighbor] {
				continue
			}
			visited[fe.neighbor] = true
			nodes = append(nodes, g.toNode(fe.neighbor))
			edges = append(edges, collab.PathEdge{Predicate: fe.predicate, Direction: fe.direction})

			dfs(fe.neighbor, depth+1)

			nodes = nodes[:len(nodes)-1]
			edges = edges[:len(edges)-1]
			delete(visited, fe.neighbor)
		}
	}

	dfs(source, 0)
	return results
}

func (g *Graph) FindPaths(_ context.Context, sources, targets []string, opts collab.PathOptions) ([]collab.Path, bool, error) {
	targetSet := make(map[string]bool, len(targets))
	for _, t := range targets {
		targetSet[t] = true
	}

	var all []collab.Path
	for _, src := range sources {
		all = append(all, g.walkPaths(src, opts, func(id string) bool { return targetSet[id] })...)
	}
	return all, false, nil
}

func (g *Graph) FindReachableByType(_ context.Context, sources []string, targetType string, opts collab.PathOptions) ([]collab.Path, bool, error) {
	var all []collab.Path
	for _, src := range sources {
		all = append(all, g.walkPaths(src, opts, func(id string) bool {
			e, ok := g.entities[id]
			return ok && e.Type == targetType
		})...)
	}
	return all, false, nil
}

// Clone returns a copy with its own entity map and adjacency lists, useful
// for tests that add to a shared fixture; entity values are copied
// shallowly, so their Properties maps are shared with g.
func (g *Graph) Clone() *Graph {
	c := NewGraph()
	maps.Copy(c.entities, g.entities)
	for k, v := range g.out {
		c.out[k] = slices.Clone(v)
	}
	for k, v := range g.in {
		c.in[k] = slices.Clone(v)
	}
	return c
}
