package triad

import (
	"context"
	"sort"

	"github.com/arkivegraph/pathql/internal/collab"
	"github.com/arkivegraph/pathql/internal/parse"
	"github.com/arkivegraph/pathql/internal/pathmodel"
	"github.com/arkivegraph/pathql/internal/similarity"
)

// lastEdgePredicate returns the predicate of the most recently added
// non-sentinel edge-step, the one this hop itself contributed (fuzzy
// relation matching is legal only at depth 1, so exactly one edge-step was
// added by this hop).
func lastEdgePredicate(c pathmodel.CandidatePath) (string, bool) {
	for i := len(c.Steps) - 1; i >= 0; i-- {
		s := c.Steps[i]
		if s.Kind == pathmodel.StepEdge && !s.NoPathFound {
			return s.Predicate, true
		}
	}
	return "", false
}

// rescoreFuzzyRelation applies §4.4's fuzzy-relation re-scoring pass: for a
// hop whose relation match is a non-empty term list, every candidate's
// score is multiplied by the maximum cosine similarity between its new
// edge's predicate and any of the query terms, and the result is re-sorted.
func rescoreFuzzyRelation(ctx context.Context, candidates []pathmodel.CandidatePath, hop parse.Hop, embedder collab.Embedder) ([]pathmodel.CandidatePath, error) {
	if hop.Relation.Wildcard || len(hop.Relation.Terms) == 0 || len(candidates) == 0 {
		return candidates, nil
	}

	predicateSet := make(map[string]bool)
	for _, c := range candidates {
		if p, ok := lastEdgePredicate(c); ok {
			predicateSet[p] = true
		}
	}
	if len(predicateSet) == 0 {
		return candidates, nil
	}

	predicates := make([]string, 0, len(predicateSet))
	for p := range predicateSet {
		predicates = append(predicates, p)
	}
	sort.Strings(predicates)

	batch := make([]string, 0, len(predicates)+len(hop.Relation.Terms))
	batch = append(batch, predicates...)
	batch = append(batch, hop.Relation.Terms...)

	vectors, err := embedder.Embed(ctx, batch)
	if err != nil {
		return nil, err
	}

	predicateVectors := make(map[string][]float64, len(predicates))
	for i, p := range predicates {
		predicateVectors[p] = vectors[i]
	}
	termVectors := vectors[len(predicates):]

	rescored := make([]pathmodel.CandidatePath, len(candidates))
	for i, c := range candidates {
		pred, ok := lastEdgePredicate(c)
		if !ok {
			rescored[i] = c
			continue
		}
		maxSim := similarity.MaxCosine(predicateVectors[pred], termVectors)
		next := c.WithLastEdgeScore(maxSim)
		rescored[i] = next.WithScore(c.Score * maxSim)
	}

	sort.SliceStable(rescored, func(i, j int) bool {
		return rescored[i].Score > rescored[j].Score
	})
	return rescored, nil
}
