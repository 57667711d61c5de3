// Package resolve converts an entry point into the initial set of candidate
// paths, per spec §4.3. Grounded on the teacher's
// internal/query/simple_queries.go Query.Execute shape.
package resolve

import (
	"context"

	"github.com/arkivegraph/pathql/internal/collab"
	"github.com/arkivegraph/pathql/internal/lineage"
	"github.com/arkivegraph/pathql/internal/parse"
	"github.com/arkivegraph/pathql/internal/pathmodel"
	"github.com/arkivegraph/pathql/internal/similarity"
)

// Resolver resolves entry points against the graph store, vector index, and
// embedder.
type Resolver struct {
	Graph    collab.GraphStore
	Vectors  collab.VectorIndex
	Embedder collab.Embedder
}

// New builds a Resolver from its three collaborators.
func New(graph collab.GraphStore, vectors collab.VectorIndex, embedder collab.Embedder) *Resolver {
	return &Resolver{Graph: graph, Vectors: vectors, Embedder: embedder}
}

func queryOptions(limit int, types []string, scope *lineage.Scope) collab.QueryOptions {
	return collab.QueryOptions{Limit: limit, TypeSet: types, LineageSet: scope.AsSet()}
}

// matchesToCandidates fetches the entities behind matches in one batched
// call and builds a scored candidate for each hit still within scope and
// not filtered out by the graph store's own lineage metadata.
func (r *Resolver) matchesToCandidates(ctx context.Context, matches []collab.Match, scope *lineage.Scope) ([]pathmodel.CandidatePath, error) {
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	entities, err := r.Graph.FetchEntities(ctx, ids)
	if err != nil {
		return nil, err
	}

	candidates := make([]pathmodel.CandidatePath, 0, len(matches))
	for _, m := range matches {
		e, ok := entities[m.ID]
		if !ok || !e.HasAnySourceCollection(scope.AsSet()) {
			continue
		}
		score := similarity.Clamp01(m.Score)
		candidates = append(candidates, pathmodel.NewCandidatePath(e, score))
	}
	return candidates, nil
}

// Resolve converts entry into initial candidate paths, exploring up to
// kExplore of them.
func (r *Resolver) Resolve(ctx context.Context, entry parse.EntryPoint, kExplore int, scope *lineage.Scope) ([]pathmodel.CandidatePath, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	switch entry.Kind {
	case parse.EntryExactID:
		return r.resolveExactID(ctx, entry.ID, scope)
	case parse.EntrySemanticText:
		return r.resolveSemantic(ctx, entry.Text, nil, kExplore, scope)
	case parse.EntryTypeOnly:
		return r.resolveTypeOnly(ctx, entry.Types, kExplore, scope)
	case parse.EntryTypePlusSemantic:
		return r.resolveSemantic(ctx, entry.Text, entry.Types, kExplore, scope)
	default:
		return nil, nil
	}
}

func (r *Resolver) resolveExactID(ctx context.Context, id string, scope *lineage.Scope) ([]pathmodel.CandidatePath, error) {
	e, found, err := r.Graph.FetchEntity(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found || !e.HasAnySourceCollection(scope.AsSet()) {
		return nil, nil
	}
	return []pathmodel.CandidatePath{pathmodel.NewCandidatePath(e, 1.0)}, nil
}

func (r *Resolver) resolveSemantic(ctx context.Context, text string, types []string, kExplore int, scope *lineage.Scope) ([]pathmodel.CandidatePath, error) {
	vectors, err := r.Embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	matches, err := r.Vectors.QueryByEmbedding(ctx, vectors[0], queryOptions(kExplore, types, scope))
	if err != nil {
		return nil, err
	}
	return r.matchesToCandidates(ctx, matches, scope)
}

// resolveTypeOnly produces "up to kExplore arbitrary entities of those
// types". With no text to anchor a ranking, the query vector is the zero
// vector: every candidate ties on similarity and the vector index's own
// tie-break (identifier order) governs which arbitrary subset is returned.
func (r *Resolver) resolveTypeOnly(ctx context.Context, types []string, kExplore int, scope *lineage.Scope) ([]pathmodel.CandidatePath, error) {
	zero := make([]float64, r.Embedder.Dimension())
	matches, err := r.Vectors.QueryByEmbedding(ctx, zero, queryOptions(kExplore, types, scope))
	if err != nil {
		return nil, err
	}

	candidates, err := r.matchesToCandidates(ctx, matches, scope)
	if err != nil {
		return nil, err
	}
	// Arbitrary selection carries no real semantic score; normalise to 1.0
	// so downstream blending treats it like a type-only target filter does.
	for i := range candidates {
		candidates[i] = candidates[i].WithScore(1.0)
	}
	return candidates, nil
}
