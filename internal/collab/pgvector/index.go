// Package pgvector implements the vector index collaborator contract on top
// of PostgreSQL with the pgvector extension, grounded on glyphoxa's
// pkg/memory/postgres SemanticIndexImpl.Search.
package pgvector

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/arkivegraph/pathql/internal/collab"
)

// Index is a VectorIndex backed by an `entity_embeddings` table (entity_id,
// embedding vector, type, source_collection) in the same database as the
// graph store's entities table.
type Index struct {
	pool *pgxpool.Pool
}

var _ collab.VectorIndex = (*Index)(nil)

// NewIndex establishes a connection pool to dsn and registers pgvector's
// wire types on every new connection.
func NewIndex(ctx context.Context, dsn string) (*Index, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("vector index: parse dsn: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("vector index: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("vector index: ping: %w", err)
	}
	return &Index{pool: pool}, nil
}

// Close releases the underlying connection pool.
func (idx *Index) Close() { idx.pool.Close() }

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}

func (idx *Index) QueryByEmbedding(ctx context.Context, vector []float64, opts collab.QueryOptions) ([]collab.Match, error) {
	vec := pgvector.NewVector(toFloat32(vector))

	args := []any{vec}
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	var conditions []string
	if len(opts.TypeSet) > 0 {
		conditions = append(conditions, "type = ANY("+next(opts.TypeSet)+"::text[])")
	}
	if len(opts.LineageSet) > 0 {
		ids := make([]string, 0, len(opts.LineageSet))
		for c := range opts.LineageSet {
			ids = append(ids, c)
		}
		conditions = append(conditions, "source_collection = ANY("+next(ids)+"::text[])")
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, "\n  AND ")
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	args = append(args, limit)
	limitArg := fmt.Sprintf("$%d", len(args))

	q := fmt.Sprintf(`
		SELECT entity_id, 1 - (embedding <=> $1) AS score
		FROM   entity_embeddings
		%s
		ORDER  BY embedding <=> $1
		LIMIT  %s`, where, limitArg)

	rows, err := idx.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, collab.Unavailable("pgvector", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (collab.Match, error) {
		var m collab.Match
		err := row.Scan(&m.ID, &m.Score)
		return m, err
	})
}

func (idx *Index) RankAmongByEmbedding(ctx context.Context, ids []string, vector []float64) ([]collab.Match, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	vec := pgvector.NewVector(toFloat32(vector))

	const q = `
		SELECT entity_id, 1 - (embedding <=> $1) AS score
		FROM   entity_embeddings
		WHERE  entity_id = ANY($2)
		ORDER  BY embedding <=> $1`

	rows, err := idx.pool.Query(ctx, q, vec, ids)
	if err != nil {
		return nil, collab.Unavailable("pgvector", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (collab.Match, error) {
		var m collab.Match
		err := row.Scan(&m.ID, &m.Score)
		return m, err
	})
}
