// Package qdrant implements the vector index collaborator contract on top
// of Qdrant, grounded on Tangerg-lynx's
// ai/providers/vectorstores/qdrant.VectorStore.
package qdrant

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"github.com/arkivegraph/pathql/internal/collab"
)

// Index is a VectorIndex backed by a single Qdrant collection. Points are
// expected to carry "type" and "source_collection" string payload fields
// alongside the embedding, mirroring the restrictions the engine applies.
type Index struct {
	client         *qdrant.Client
	collectionName string
}

var _ collab.VectorIndex = (*Index)(nil)

// Config configures a new Index.
type Config struct {
	Host           string
	Port           int
	APIKey         string
	UseTLS         bool
	CollectionName string
}

// NewIndex dials Qdrant and returns an Index bound to cfg.CollectionName.
func NewIndex(cfg Config) (*Index, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: failed to create client: %w", err)
	}
	return &Index{client: client, collectionName: cfg.CollectionName}, nil
}

// Close releases the underlying gRPC connection.
func (idx *Index) Close() error { return idx.client.Close() }

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}

func restrictionFilter(opts collab.QueryOptions) *qdrant.Filter {
	var must []*qdrant.Condition
	if len(opts.TypeSet) > 0 {
		must = append(must, qdrant.NewMatchKeywords("type", opts.TypeSet...))
	}
	if len(opts.LineageSet) > 0 {
		collections := make([]string, 0, len(opts.LineageSet))
		for c := range opts.LineageSet {
			collections = append(collections, c)
		}
		must = append(must, qdrant.NewMatchKeywords("source_collection", collections...))
	}
	if len(must) == 0 {
		return nil
	}
	return &qdrant.Filter{Must: must}
}

func (idx *Index) query(ctx context.Context, vector []float64, filter *qdrant.Filter, ids *qdrant.PointsIdsList, limit uint64) ([]collab.Match, error) {
	points := &qdrant.QueryPoints{
		CollectionName: idx.collectionName,
		Query:          qdrant.NewQuery(toFloat32(vector)...),
		Filter:         filter,
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(false),
	}
	if ids != nil {
		points.Filter = mergeIDFilter(filter, ids)
	}

	scored, err := idx.client.Query(ctx, points)
	if err != nil {
		return nil, collab.Unavailable("qdrant", err)
	}

	matches := make([]collab.Match, 0, len(scored))
	for _, p := range scored {
		matches = append(matches, collab.Match{ID: pointIDToString(p.GetId()), Score: float64(p.GetScore())})
	}
	return matches, nil
}

func mergeIDFilter(filter *qdrant.Filter, ids *qdrant.PointsIdsList) *qdrant.Filter {
	idValues := make([]string, len(ids.Ids))
	for i, id := range ids.Ids {
		idValues[i] = pointIDToString(id)
	}
	idCondition := qdrant.NewHasID(ids.Ids...)
	if filter == nil {
		return &qdrant.Filter{Must: []*qdrant.Condition{idCondition}}
	}
	merged := *filter
	merged.Must = append(append([]*qdrant.Condition{}, filter.Must...), idCondition)
	return &merged
}

func pointIDToString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if uuid := id.GetUuid(); uuid != "" {
		return uuid
	}
	return fmt.Sprintf("%d", id.GetNum())
}

func (idx *Index) QueryByEmbedding(ctx context.Context, vector []float64, opts collab.QueryOptions) ([]collab.Match, error) {
	limit := uint64(opts.Limit)
	if limit == 0 {
		limit = 10
	}
	return idx.query(ctx, vector, restrictionFilter(opts), nil, limit)
}

func (idx *Index) RankAmongByEmbedding(ctx context.Context, ids []string, vector []float64) ([]collab.Match, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	pointIDs := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = qdrant.NewIDUUID(id)
	}
	return idx.query(ctx, vector, nil, &qdrant.PointsIdsList{Ids: pointIDs}, uint64(len(ids)))
}
