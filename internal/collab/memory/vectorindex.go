package memory

import (
	"context"
	"sort"

	"github.com/arkivegraph/pathql/internal/collab"
	"github.com/arkivegraph/pathql/internal/similarity"
)

// record is one indexed entity: its embedding plus the metadata needed to
// apply type-set and lineage restrictions without a round trip elsewhere.
type record struct {
	vector     []float64
	entityType string
	collection string
}

// VectorIndex is an in-memory VectorIndex backed by a flat slice scan —
// adequate for tests and the CLI's demo graphs, never for production scale.
type VectorIndex struct {
	records map[string]record
}

// NewVectorIndex returns an empty VectorIndex.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{records: make(map[string]record)}
}

// Index registers or replaces the embedding for id.
func (v *VectorIndex) Index(id string, vector []float64, entityType, collection string) {
	v.records[id] = record{vector: vector, entityType: entityType, collection: collection}
}

func matchesTypeSet(t string, typeSet []string) bool {
	if len(typeSet) == 0 {
		return true
	}
	for _, want := range typeSet {
		if want == t {
			return true
		}
	}
	return false
}

func matchesLineage(collection string, lineage map[string]bool) bool {
	if len(lineage) == 0 {
		return true
	}
	return lineage[collection]
}

func (v *VectorIndex) QueryByEmbedding(_ context.Context, vector []float64, opts collab.QueryOptions) ([]collab.Match, error) {
	var matches []collab.Match
	for id, rec := range v.records {
		if !matchesTypeSet(rec.entityType, opts.TypeSet) || !matchesLineage(rec.collection, opts.LineageSet) {
			continue
		}
		matches = append(matches, collab.Match{ID: id, Score: similarity.Cosine(vector, rec.vector)})
	}
	sortMatches(matches)
	if opts.Limit > 0 && len(matches) > opts.Limit {
		matches = matches[:opts.Limit]
	}
	return matches, nil
}

func (v *VectorIndex) RankAmongByEmbedding(_ context.Context, ids []string, vector []float64) ([]collab.Match, error) {
	var matches []collab.Match
	for _, id := range ids {
		rec, ok := v.records[id]
		if !ok {
			continue
		}
		matches = append(matches, collab.Match{ID: id, Score: similarity.Cosine(vector, rec.vector)})
	}
	sortMatches(matches)
	return matches, nil
}

func sortMatches(matches []collab.Match) {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
}
