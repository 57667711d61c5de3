package triad

import (
	"context"

	"github.com/arkivegraph/pathql/internal/beam"
	"github.com/arkivegraph/pathql/internal/parse"
	"github.com/arkivegraph/pathql/internal/pathmodel"
	"github.com/arkivegraph/pathql/internal/similarity"
)

// ApplyFilterInPlace applies filter to an already-resolved candidate set
// with no preceding edge, per spec §4.5 step 4 — the entry-filter stage
// that enables zero-hop queries. It reuses the triad's own per-filter-kind
// logic, restated without a graph-store path call since there is no edge to
// traverse.
func ApplyFilterInPlace(ctx context.Context, e *Executor, candidates []pathmodel.CandidatePath, filter *parse.Filter, width int) ([]pathmodel.CandidatePath, error) {
	if filter == nil {
		return candidates, nil
	}

	switch filter.Kind {
	case parse.FilterExactID:
		for _, c := range candidates {
			if c.Current == filter.ID {
				return []pathmodel.CandidatePath{c}, nil
			}
		}
		return nil, nil

	case parse.FilterTypeSet:
		return filterByType(candidates, filter.Types), nil

	case parse.FilterSemanticText, parse.FilterTypeSetPlusSemantic:
		subset := candidates
		if filter.Kind == parse.FilterTypeSetPlusSemantic {
			subset = filterByType(candidates, filter.Types)
		}
		if len(subset) == 0 {
			return nil, nil
		}

		vectors, err := e.Embedder.Embed(ctx, []string{filter.Text})
		if err != nil {
			return nil, err
		}

		ids := make([]string, len(subset))
		for i, c := range subset {
			ids[i] = c.Current
		}
		matches, err := e.Vectors.RankAmongByEmbedding(ctx, ids, vectors[0])
		if err != nil {
			return nil, err
		}

		scoreByID := make(map[string]float64, len(matches))
		for _, m := range matches {
			scoreByID[m.ID] = similarity.Clamp01(m.Score)
		}

		out := make([]pathmodel.CandidatePath, 0, len(subset))
		for _, c := range subset {
			s, ok := scoreByID[c.Current]
			if !ok {
				continue
			}
			out = append(out, c.WithScore(c.Score*s))
		}
		return beam.TopK(out, width), nil

	default:
		return candidates, nil
	}
}

func currentType(c pathmodel.CandidatePath) string {
	for _, s := range c.Steps {
		if s.Kind == pathmodel.StepEntity && s.EntityID == c.Current {
			return s.EntityType
		}
	}
	return ""
}

func filterByType(candidates []pathmodel.CandidatePath, types []string) []pathmodel.CandidatePath {
	if len(types) == 0 {
		return candidates
	}
	set := make(map[string]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	var out []pathmodel.CandidatePath
	for _, c := range candidates {
		if set[currentType(c)] {
			out = append(out, c)
		}
	}
	return out
}
