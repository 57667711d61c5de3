package pathmodel

import "maps"

// EdgeDirection is the traversal direction recorded on an edge-step. It
// mirrors parse.Direction without importing the parser, since pathmodel sits
// below parse in the dependency graph.
type EdgeDirection int

const (
	EdgeOutgoing EdgeDirection = iota
	EdgeIncoming
)

// StepKind distinguishes the two kinds of Step in a Path.
type StepKind int

const (
	StepEntity StepKind = iota
	StepEdge
)

// Step is one element of a candidate path: either a visited entity or the
// edge connecting two of them. Exactly one of the entity fields or the edge
// fields is meaningful, selected by Kind.
type Step struct {
	Kind StepKind

	// Entity-step fields.
	EntityID    string
	EntityType  string
	EntityLabel string

	// Edge-step fields.
	Predicate   string
	Direction   EdgeDirection
	NoPathFound bool // sentinel marking a fallback "no path" edge-step

	// Score is an optional per-step annotation. Entity-steps carry the
	// semantic score of that entity when one exists; edge-steps carry the
	// fuzzy-relation rescoring factor once computed. Nil means unset.
	Score *float64
}

func scorePtr(s float64) *float64 { return &s }

// EntityStep builds a Step for visiting an entity, optionally annotated with
// a semantic score.
func EntityStep(e Entity, score *float64) Step {
	return Step{Kind: StepEntity, EntityID: e.ID, EntityType: e.Type, EntityLabel: e.Label, Score: score}
}

// EdgeStepOf builds a Step for traversing one edge in a given direction.
func EdgeStepOf(predicate string, dir EdgeDirection) Step {
	return Step{Kind: StepEdge, Predicate: predicate, Direction: dir}
}

// NoPathEdgeStep builds the sentinel edge-step used by fallback "no path"
// candidates, so callers can distinguish them from true traversed edges.
func NoPathEdgeStep() Step {
	return Step{Kind: StepEdge, NoPathFound: true}
}

// CandidatePath is the unit of execution state for one partial traversal.
// Values are immutable: Extend always returns a new CandidatePath, never
// mutating the receiver's slices or map.
type CandidatePath struct {
	Current string
	Steps   []Step
	Score   float64
	Visited map[string]struct{}
}

// NewCandidatePath starts a zero-hop path at a single entity.
func NewCandidatePath(e Entity, score float64) CandidatePath {
	return CandidatePath{
		Current: e.ID,
		Steps:   []Step{EntityStep(e, nil)},
		Score:   score,
		Visited: map[string]struct{}{e.ID: {}},
	}
}

// EdgeCount returns the number of edge-steps in the path, i.e. its length in
// hops taken so far (not query hops — a single query hop may add several
// edge-steps along a multi-edge traversal).
func (p CandidatePath) EdgeCount() int {
	n := 0
	for _, s := range p.Steps {
		if s.Kind == StepEdge {
			n++
		}
	}
	return n
}

// HasVisited reports whether id already appears on the path.
func (p CandidatePath) HasVisited(id string) bool {
	_, ok := p.Visited[id]
	return ok
}

// Extend appends an edge-step and the resulting entity-step, returning a new
// path with the given score. If target has already been visited, ok is false
// and the returned path is the zero CandidatePath, preventing cycles.
func (p CandidatePath) Extend(edge Step, target Entity, targetScore *float64, newScore float64) (CandidatePath, bool) {
	if p.HasVisited(target.ID) {
		return CandidatePath{}, false
	}

	steps := make([]Step, len(p.Steps), len(p.Steps)+2)
	copy(steps, p.Steps)
	steps = append(steps, edge, EntityStep(target, targetScore))

	visited := maps.Clone(p.Visited)
	visited[target.ID] = struct{}{}

	return CandidatePath{
		Current: target.ID,
		Steps:   steps,
		Score:   newScore,
		Visited: visited,
	}, true
}

// WithScore returns a copy of p with its aggregate score replaced, used by
// the fuzzy-relation rescoring pass which does not alter the path shape.
func (p CandidatePath) WithScore(score float64) CandidatePath {
	c := p
	c.Score = score
	return c
}

// WithLastEdgeScore returns a copy of p with the most recent edge-step
// annotated by score, used by fuzzy-relation rescoring.
func (p CandidatePath) WithLastEdgeScore(score float64) CandidatePath {
	steps := make([]Step, len(p.Steps))
	copy(steps, p.Steps)
	for i := len(steps) - 1; i >= 0; i-- {
		if steps[i].Kind == StepEdge {
			steps[i].Score = scorePtr(score)
			break
		}
	}
	c := p
	c.Steps = steps
	return c
}

// EdgePredicates returns the predicate of every non-sentinel edge-step in
// the path, in path order; a predicate used by several edges appears once
// per edge.
func (p CandidatePath) EdgePredicates() []string {
	var preds []string
	for _, s := range p.Steps {
		if s.Kind == StepEdge && !s.NoPathFound {
			preds = append(preds, s.Predicate)
		}
	}
	return preds
}
