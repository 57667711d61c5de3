// Package triad executes one hop of a path query: it routes to a strategy
// by the hop's target filter kind, asks the graph store for paths or
// reachable entities, blends source and target scores with depth decay, and
// deduplicates the result. Grounded on the teacher's
// internal/query/composite_queries.go executeConcurrent fan-out/join shape
// for the concurrent branches (type-set reachability probes) and on
// internal/query/simple_queries.go for the sequential ctx.Done() guard.
package triad

import (
	"context"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/arkivegraph/pathql/internal/beam"
	"github.com/arkivegraph/pathql/internal/collab"
	"github.com/arkivegraph/pathql/internal/lineage"
	"github.com/arkivegraph/pathql/internal/parse"
	"github.com/arkivegraph/pathql/internal/pathmodel"
	"github.com/arkivegraph/pathql/internal/similarity"
)

// maxMaterialisedPerHop is the safety constant on total candidates
// materialised per hop before the hop truncates.
const maxMaterialisedPerHop = 1000

// DefaultFallbackPenalty is the default factor applied to a fallback "no
// path" candidate's target score. Executor exposes it as a field so
// deployments can override it via internal/config.
const DefaultFallbackPenalty = 0.5

// Executor runs one hop against a source candidate set.
type Executor struct {
	Graph    collab.GraphStore
	Vectors  collab.VectorIndex
	Embedder collab.Embedder

	// FallbackPenalty overrides DefaultFallbackPenalty when non-zero.
	FallbackPenalty float64
}

// Result is one hop's outcome.
type Result struct {
	Candidates []pathmodel.CandidatePath
	Explored   int
	Truncated  bool
}

func (e *Executor) fallbackPenalty() float64 {
	if e.FallbackPenalty > 0 {
		return e.FallbackPenalty
	}
	return DefaultFallbackPenalty
}

func toCollabDirection(d parse.Direction) collab.Direction {
	switch d {
	case parse.DirIncoming:
		return collab.DirIncoming
	case parse.DirBidirectional:
		return collab.DirBoth
	default:
		return collab.DirOutgoing
	}
}

func toEdgeDirection(d collab.Direction) pathmodel.EdgeDirection {
	if d == collab.DirIncoming {
		return pathmodel.EdgeIncoming
	}
	return pathmodel.EdgeOutgoing
}

func sourceIDs(sources []pathmodel.CandidatePath) []string {
	ids := make([]string, len(sources))
	for i, c := range sources {
		ids[i] = c.Current
	}
	return ids
}

// isSingleDepth reports whether d is exactly the implicit default {1,1}.
func isSingleDepth(d parse.DepthRange) bool {
	return d.Min == 1 && d.Max == 1
}

// validate enforces the policy checks that must happen before any
// collaborator call: fuzzy relation matching is legal only at depth 1, and
// a hop with no target filter is legal only at depth 1.
func validate(hop parse.Hop) error {
	fuzzy := !hop.Relation.Wildcard
	if fuzzy && !isSingleDepth(hop.Depth) {
		return PolicyError{Kind: KindFuzzyRelationMultiHop, Message: "fuzzy relation matching requires depth 1"}
	}
	if hop.Filter == nil && !isSingleDepth(hop.Depth) {
		return PolicyError{Kind: KindVariableDepthNoFilter, Message: "a hop with no target filter requires depth 1"}
	}
	return nil
}

func pathOptions(hop parse.Hop) collab.PathOptions {
	return collab.PathOptions{
		MinDepth:  hop.Depth.Min,
		MaxDepth:  beam.ClampDepth(hop.Depth.Max),
		Direction: toCollabDirection(hop.Direction),
	}
}

// ExecuteHop extends every source candidate across hop, trimmed to width.
func (e *Executor) ExecuteHop(ctx context.Context, sources []pathmodel.CandidatePath, hop parse.Hop, scope *lineage.Scope, width int) (Result, error) {
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	default:
	}

	if err := validate(hop); err != nil {
		return Result{}, err
	}

	opts := pathOptions(hop)
	if opts.MinDepth > opts.MaxDepth {
		return Result{}, nil
	}

	if hop.Filter == nil {
		// Single-hop, no target filter: legal but produces nothing per §4.4.
		return Result{}, nil
	}

	var (
		paths        []collab.Path
		targetScores map[string]float64
		truncated    bool
		err          error
	)

	switch hop.Filter.Kind {
	case parse.FilterSemanticText:
		paths, targetScores, truncated, err = e.runSemantic(ctx, sources, hop.Filter.Text, nil, opts, scope, width)
	case parse.FilterTypeSetPlusSemantic:
		paths, targetScores, truncated, err = e.runSemantic(ctx, sources, hop.Filter.Text, hop.Filter.Types, opts, scope, width)
	case parse.FilterTypeSet:
		paths, truncated, err = e.runTypeSet(ctx, sources, hop.Filter.Types, opts)
	case parse.FilterExactID:
		paths, truncated, err = e.Graph.FindPaths(ctx, sourceIDs(sources), []string{hop.Filter.ID}, opts)
	}
	if err != nil {
		return Result{}, err
	}

	extended := buildExtendedCandidates(sources, paths, targetScores)

	if len(extended) == 0 && (hop.Filter.Kind == parse.FilterSemanticText || hop.Filter.Kind == parse.FilterTypeSetPlusSemantic) {
		fallback, ferr := e.fallbackCandidates(ctx, sources, targetScores, width)
		if ferr != nil {
			return Result{}, ferr
		}
		extended = fallback
	}

	explored := len(extended)
	if len(extended) > maxMaterialisedPerHop {
		extended = extended[:maxMaterialisedPerHop]
		truncated = true
	}

	extended, err = rescoreFuzzyRelation(ctx, extended, hop, e.Embedder)
	if err != nil {
		return Result{}, err
	}

	deduped := dedupeByTerminal(extended)
	trimmed := beam.TopK(deduped, width)

	return Result{Candidates: trimmed, Explored: explored, Truncated: truncated}, nil
}

func (e *Executor) runSemantic(ctx context.Context, sources []pathmodel.CandidatePath, text string, types []string, opts collab.PathOptions, scope *lineage.Scope, width int) ([]collab.Path, map[string]float64, bool, error) {
	vectors, err := e.Embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, nil, false, err
	}

	matches, err := e.Vectors.QueryByEmbedding(ctx, vectors[0], collab.QueryOptions{
		Limit: width, TypeSet: types, LineageSet: scope.AsSet(),
	})
	if err != nil {
		return nil, nil, false, err
	}

	targetScores := make(map[string]float64, len(matches))
	targetIDs := make([]string, len(matches))
	for i, m := range matches {
		targetIDs[i] = m.ID
		targetScores[m.ID] = similarity.Clamp01(m.Score)
	}

	paths, truncated, err := e.Graph.FindPaths(ctx, sourceIDs(sources), targetIDs, opts)
	if err != nil {
		return nil, nil, false, err
	}
	return paths, targetScores, truncated, nil
}

// runTypeSet issues one reachability probe per requested type, concurrently,
// joining all of them before the hop returns; a failure in any probe fails
// the hop as a whole.
func (e *Executor) runTypeSet(ctx context.Context, sources []pathmodel.CandidatePath, types []string, opts collab.PathOptions) ([]collab.Path, bool, error) {
	results := make([][]collab.Path, len(types))
	truncatedFlags := make([]bool, len(types))

	g, gctx := errgroup.WithContext(ctx)
	ids := sourceIDs(sources)
	for i, t := range types {
		i, t := i, t
		g.Go(func() error {
			paths, truncated, err := e.Graph.FindReachableByType(gctx, ids, t, opts)
			if err != nil {
				return err
			}
			results[i] = paths
			truncatedFlags[i] = truncated
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, false, err
	}

	var all []collab.Path
	truncated := false
	for i := range types {
		all = append(all, results[i]...)
		truncated = truncated || truncatedFlags[i]
	}
	return all, truncated, nil
}

// buildExtendedCandidates extends each source candidate along every path
// that starts at it, scoring the whole traversal once per returned path per
// spec §4.4's path-scoring formula.
func buildExtendedCandidates(sources []pathmodel.CandidatePath, paths []collab.Path, targetScores map[string]float64) []pathmodel.CandidatePath {
	bySource := make(map[string]pathmodel.CandidatePath, len(sources))
	for _, c := range sources {
		bySource[c.Current] = c
	}

	var out []pathmodel.CandidatePath
	for _, p := range paths {
		src, ok := bySource[p.Source]
		if !ok || len(p.Edges) == 0 {
			continue
		}

		length := p.EdgeCount()
		decay := math.Pow(0.9, float64(length-1))
		targetS := 1.0
		if s, ok := targetScores[p.Target]; ok {
			targetS = s
		}
		sourceS := src.Score
		blended := ((sourceS + targetS) / 2) * decay
		finalScore := src.Score * blended

		cur := src
		failed := false
		for i, edge := range p.Edges {
			node := p.Nodes[i+1]
			entity := pathmodel.Entity{ID: node.ID, Label: node.Label, Type: node.Type}
			step := pathmodel.EdgeStepOf(edge.Predicate, toEdgeDirection(edge.Direction))

			isLast := i == len(p.Edges)-1
			newScore := cur.Score
			var scorePtr *float64
			if isLast {
				newScore = finalScore
				if s, ok := targetScores[node.ID]; ok {
					sc := s
					scorePtr = &sc
				}
			}

			next, extended := cur.Extend(step, entity, scorePtr, newScore)
			if !extended {
				failed = true
				break
			}
			cur = next
		}
		if !failed {
			out = append(out, cur)
		}
	}
	return out
}

// fallbackCandidates emits up to width synthetic "no path" candidates when
// a semantic hop's graph-store query returned no paths: the best source
// candidate is extended by a sentinel edge directly to each target, scored
// by the target's semantic score times the fallback penalty.
func (e *Executor) fallbackCandidates(ctx context.Context, sources []pathmodel.CandidatePath, targetScores map[string]float64, width int) ([]pathmodel.CandidatePath, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if len(sources) == 0 || len(targetScores) == 0 {
		return nil, nil
	}

	best := beam.TopK(sources, 1)[0]

	type scoredID struct {
		id    string
		score float64
	}
	ranked := make([]scoredID, 0, len(targetScores))
	for id, s := range targetScores {
		ranked = append(ranked, scoredID{id, s})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].id < ranked[j].id
	})
	if width > 0 && len(ranked) > width {
		ranked = ranked[:width]
	}

	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.id
	}
	entities, err := e.Graph.FetchEntities(ctx, ids)
	if err != nil {
		return nil, err
	}

	penalty := e.fallbackPenalty()
	var out []pathmodel.CandidatePath
	for _, r := range ranked {
		entity, ok := entities[r.id]
		if !ok {
			entity = pathmodel.Entity{ID: r.id}
		}
		targetScore := r.score * penalty
		newScore := best.Score * targetScore
		next, ok := best.Extend(pathmodel.NoPathEdgeStep(), entity, &targetScore, newScore)
		if ok {
			out = append(out, next)
		}
	}
	return out, nil
}

// dedupeByTerminal keeps the highest-scoring candidate per terminal entity.
func dedupeByTerminal(candidates []pathmodel.CandidatePath) []pathmodel.CandidatePath {
	best := make(map[string]pathmodel.CandidatePath, len(candidates))
	for _, c := range candidates {
		if prior, ok := best[c.Current]; !ok || c.Score > prior.Score {
			best[c.Current] = c
		}
	}
	out := make([]pathmodel.CandidatePath, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	return out
}
