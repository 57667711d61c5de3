package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/arkivegraph/pathql/internal/collab"
)

// edgeJoin returns the CTE join clause(s) for the requested direction.
func edgeJoin(direction collab.Direction) string {
	switch direction {
	case collab.DirIncoming:
		return `
		    JOIN   relationships rel ON rel.object_id = ps.id
		    JOIN   entities      e   ON e.id = rel.subject_id`
	case collab.DirBoth:
		return `
		    JOIN   relationships rel
		           ON rel.subject_id = ps.id OR rel.object_id = ps.id
		    JOIN   entities      e
		           ON e.id = CASE WHEN rel.subject_id = ps.id THEN rel.object_id ELSE rel.subject_id END`
	default: // DirOutgoing
		return `
		    JOIN   relationships rel ON rel.subject_id = ps.id
		    JOIN   entities      e   ON e.id = rel.object_id`
	}
}

func directionExpr(direction collab.Direction) string {
	if direction == collab.DirBoth {
		return `CASE WHEN rel.subject_id = ps.id THEN 'out' ELSE 'in' END`
	}
	if direction == collab.DirIncoming {
		return `'in'`
	}
	return `'out'`
}

// pathSearchQuery builds the recursive CTE shared by FindPaths and
// FindReachableByType. targetClause is appended as the outer WHERE
// condition, evaluated against the terminal identifier `ps.id`.
func pathSearchQuery(direction collab.Direction, targetClause string) string {
	join := edgeJoin(direction)
	dirExpr := directionExpr(direction)

	return fmt.Sprintf(`
		WITH RECURSIVE path_search AS (
		    SELECT id,
		           ARRAY[id]                                AS node_path,
		           ARRAY[]::text[]                           AS predicate_path,
		           ARRAY[]::text[]                           AS direction_path,
		           0                                         AS depth
		    FROM   entities
		    WHERE  id = $1

		    UNION ALL

		    SELECT e.id,
		           ps.node_path || e.id,
		           ps.predicate_path || rel.predicate,
		           ps.direction_path || (%s)::text,
		           ps.depth + 1
		    FROM   path_search ps
		    %s
		    WHERE  ps.depth < $2
		      AND  NOT (e.id = ANY(ps.node_path))
		)
		SELECT node_path, predicate_path, direction_path, depth
		FROM   path_search ps
		WHERE  ps.depth >= $3
		  AND  %s
		ORDER  BY depth`, dirExpr, join, targetClause)
}

type rawPath struct {
	nodeIDs    []string
	predicates []string
	directions []string
	depth      int
}

func (s *Store) runPathSearch(ctx context.Context, source string, maxDepth, minDepth int, query string, extraArgs ...any) ([]rawPath, error) {
	args := append([]any{source, maxDepth, minDepth}, extraArgs...)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, collab.Unavailable("postgres", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (rawPath, error) {
		var rp rawPath
		if err := row.Scan(&rp.nodeIDs, &rp.predicates, &rp.directions, &rp.depth); err != nil {
			return rawPath{}, err
		}
		return rp, nil
	})
}

func (rp rawPath) toPath(source string, entityByID map[string]collab.PathNode) collab.Path {
	nodes := make([]collab.PathNode, len(rp.nodeIDs))
	for i, id := range rp.nodeIDs {
		if n, ok := entityByID[id]; ok {
			nodes[i] = n
		} else {
			nodes[i] = collab.PathNode{ID: id}
		}
	}
	edges := make([]collab.PathEdge, len(rp.predicates))
	for i, p := range rp.predicates {
		dir := collab.DirOutgoing
		if i < len(rp.directions) && rp.directions[i] == "in" {
			dir = collab.DirIncoming
		}
		edges[i] = collab.PathEdge{Predicate: p, Direction: dir}
	}
	return collab.Path{
		Source: source,
		Target: rp.nodeIDs[len(rp.nodeIDs)-1],
		Nodes:  nodes,
		Edges:  edges,
	}
}

// hydrateNodes fetches label/type for every distinct identifier appearing
// across rawPaths, batched in one call.
func (s *Store) hydrateNodes(ctx context.Context, raws []rawPath) (map[string]collab.PathNode, error) {
	seen := make(map[string]bool)
	var ids []string
	for _, rp := range raws {
		for _, id := range rp.nodeIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	entities, err := s.FetchEntities(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]collab.PathNode, len(entities))
	for id, e := range entities {
		out[id] = collab.PathNode{ID: e.ID, Label: e.Label, Type: e.Type}
	}
	return out, nil
}

const maxMaterializedPaths = 1000

func (s *Store) FindPaths(ctx context.Context, sources, targets []string, opts collab.PathOptions) ([]collab.Path, bool, error) {
	query := pathSearchQuery(opts.Direction, "ps.id = ANY($4)")

	var all []collab.Path
	truncated := false
	for _, src := range sources {
		raws, err := s.runPathSearch(ctx, src, opts.MaxDepth, opts.MinDepth, query, targets)
		if err != nil {
			return nil, false, err
		}
		nodesByID, err := s.hydrateNodes(ctx, raws)
		if err != nil {
			return nil, false, err
		}
		for _, rp := range raws {
			if len(all) >= maxMaterializedPaths {
				truncated = true
				break
			}
			all = append(all, rp.toPath(src, nodesByID))
		}
	}
	return all, truncated, nil
}

func (s *Store) FindReachableByType(ctx context.Context, sources []string, targetType string, opts collab.PathOptions) ([]collab.Path, bool, error) {
	query := pathSearchQuery(opts.Direction, "ps.id IN (SELECT id FROM entities WHERE type = $4)")

	var all []collab.Path
	truncated := false
	for _, src := range sources {
		raws, err := s.runPathSearch(ctx, src, opts.MaxDepth, opts.MinDepth, query, targetType)
		if err != nil {
			return nil, false, err
		}
		nodesByID, err := s.hydrateNodes(ctx, raws)
		if err != nil {
			return nil, false, err
		}
		for _, rp := range raws {
			if len(all) >= maxMaterializedPaths {
				truncated = true
				break
			}
			all = append(all, rp.toPath(src, nodesByID))
		}
	}
	return all, truncated, nil
}
