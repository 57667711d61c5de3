// Package postgres implements the graph store collaborator contract on top
// of PostgreSQL, using recursive common table expressions for path and
// reachability queries — grounded on glyphoxa's pkg/memory/postgres
// Neighbors/FindPath implementation.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arkivegraph/pathql/internal/collab"
	"github.com/arkivegraph/pathql/internal/pathmodel"
)

// Store is a GraphStore backed by a PostgreSQL connection pool. It expects
// an `entities` table (id, label, type, properties jsonb, source_collections
// text[]) and a `relationships` table (subject_id, predicate, object_id,
// properties jsonb, source_collection).
type Store struct {
	pool *pgxpool.Pool
}

var _ collab.GraphStore = (*Store)(nil)

// NewStore establishes a connection pool to dsn and pings it once so
// misconfiguration fails fast at startup rather than on the first query.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("graph store: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("graph store: ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() { s.pool.Close() }

func scanEntity(row pgx.CollectableRow) (pathmodel.Entity, error) {
	var (
		e          pathmodel.Entity
		properties map[string]any
	)
	if err := row.Scan(&e.ID, &e.Label, &e.Type, &properties, &e.SourceCollections); err != nil {
		return pathmodel.Entity{}, err
	}
	e.Properties = convertProperties(properties)
	return e, nil
}

func (s *Store) FetchEntity(ctx context.Context, id string) (pathmodel.Entity, bool, error) {
	const q = `
		SELECT id, label, type, properties, source_collections
		FROM   entities
		WHERE  id = $1`

	rows, err := s.pool.Query(ctx, q, id)
	if err != nil {
		return pathmodel.Entity{}, false, collab.Unavailable("postgres", err)
	}
	entities, err := pgx.CollectRows(rows, scanEntity)
	if err != nil {
		return pathmodel.Entity{}, false, collab.Unavailable("postgres", err)
	}
	if len(entities) == 0 {
		return pathmodel.Entity{}, false, nil
	}
	return entities[0], true, nil
}

func (s *Store) FetchEntities(ctx context.Context, ids []string) (map[string]pathmodel.Entity, error) {
	if len(ids) == 0 {
		return map[string]pathmodel.Entity{}, nil
	}

	const q = `
		SELECT id, label, type, properties, source_collections
		FROM   entities
		WHERE  id = ANY($1)`

	rows, err := s.pool.Query(ctx, q, ids)
	if err != nil {
		return nil, collab.Unavailable("postgres", err)
	}
	entities, err := pgx.CollectRows(rows, scanEntity)
	if err != nil {
		return nil, collab.Unavailable("postgres", err)
	}

	out := make(map[string]pathmodel.Entity, len(entities))
	for _, e := range entities {
		out[e.ID] = e
	}
	return out, nil
}

func (s *Store) FetchRelationships(ctx context.Context, id string) (pathmodel.RelationshipSet, error) {
	const outQ = `
		SELECT subject_id, predicate, object_id, properties, source_collection
		FROM   relationships
		WHERE  subject_id = $1`
	const inQ = `
		SELECT subject_id, predicate, object_id, properties, source_collection
		FROM   relationships
		WHERE  object_id = $1`

	outgoing, err := s.queryRelationships(ctx, outQ, id)
	if err != nil {
		return pathmodel.RelationshipSet{}, err
	}
	incoming, err := s.queryRelationships(ctx, inQ, id)
	if err != nil {
		return pathmodel.RelationshipSet{}, err
	}
	return pathmodel.RelationshipSet{Outgoing: outgoing, Incoming: incoming}, nil
}

func (s *Store) queryRelationships(ctx context.Context, q, id string) ([]pathmodel.Relationship, error) {
	rows, err := s.pool.Query(ctx, q, id)
	if err != nil {
		return nil, collab.Unavailable("postgres", err)
	}
	rels, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (pathmodel.Relationship, error) {
		var (
			r          pathmodel.Relationship
			properties map[string]any
		)
		if err := row.Scan(&r.Subject, &r.Predicate, &r.Object, &properties, &r.SourceCollection); err != nil {
			return pathmodel.Relationship{}, err
		}
		r.Properties = convertProperties(properties)
		return r, nil
	})
	if err != nil {
		return nil, collab.Unavailable("postgres", err)
	}
	return rels, nil
}

func convertProperties(raw map[string]any) map[string]pathmodel.Value {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]pathmodel.Value, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case string:
			out[k] = pathmodel.Value{Kind: pathmodel.StringValue, S: t}
		case float64:
			out[k] = pathmodel.Value{Kind: pathmodel.FloatValue, F: t}
		case bool:
			out[k] = pathmodel.Value{Kind: pathmodel.BoolValue, B: t}
		default:
			out[k] = pathmodel.Value{Kind: pathmodel.StringValue, S: fmt.Sprintf("%v", t)}
		}
	}
	return out
}
