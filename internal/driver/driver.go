// Package driver orchestrates the entry resolver and the triad executor
// across a full query, assembling the response contract of spec §6 and
// converting internal errors into the taxonomy of spec §7. Grounded on the
// teacher's internal/dsl/parser.go ParseLine orchestration (parse, dispatch,
// wrap) and internal/engine/engine.go's thin Execute wrapper.
package driver

import (
	"context"
	"errors"
	"time"

	"github.com/arkivegraph/pathql/internal/beam"
	"github.com/arkivegraph/pathql/internal/lineage"
	"github.com/arkivegraph/pathql/internal/parse"
	"github.com/arkivegraph/pathql/internal/pathmodel"
	"github.com/arkivegraph/pathql/internal/resolve"
	"github.com/arkivegraph/pathql/internal/triad"
)

// Error tags, per spec §6/§7.
const (
	ErrParse             = "parse_error"
	ErrInvalidEntryPoint = "invalid_entry_point"
	ErrNoEntryPoint      = "no_entry_point"
	ErrUnsupportedQuery  = "unsupported_query"
	ErrNoPathFound       = "no_path_found"
)

// DefaultDeadline is the overall per-query deadline, per spec §5.
const DefaultDeadline = 5 * time.Second

// LineageRequest names the lineage scoping restriction a caller attached to
// a query.
type LineageRequest struct {
	Seed      string
	Direction lineage.Direction
}

// Request is one query submission, corresponding to spec §6's request
// contract (the enrich/enrich_limit fields live outside the core, in
// internal/httpapi).
type Request struct {
	Path     string
	K        int
	KExplore int
	Lineage  *LineageRequest
}

// ResultEntry is one ranked terminal entity and the path that reached it.
type ResultEntry struct {
	Entity pathmodel.Entity
	Path   []pathmodel.Step
	Score  float64
}

// Metadata is the response metadata spec §6 requires on every response,
// success or failure.
type Metadata struct {
	Query              string
	Hops               int
	K                  int
	KExplore           int
	CandidatesExplored int
	ExecutionTime      time.Duration
	ErrorTag           string
	Reason             string
	StoppedAtHop       *int
	PartialPath        []pathmodel.Step
	LineageEcho        *LineageRequest
}

// Response is the full result of one query.
type Response struct {
	Results  []ResultEntry
	Metadata Metadata
}

// Driver orchestrates entry resolution, lineage scoping, and sequential hop
// execution for one query.
type Driver struct {
	Resolver *resolve.Resolver
	Triad    *triad.Executor
	Lineage  *lineage.Resolver
	Deadline time.Duration
}

// New builds a Driver from its collaborators, applying DefaultDeadline.
func New(resolver *resolve.Resolver, executor *triad.Executor, lineageResolver *lineage.Resolver) *Driver {
	return &Driver{Resolver: resolver, Triad: executor, Lineage: lineageResolver, Deadline: DefaultDeadline}
}

func (d *Driver) deadline() time.Duration {
	if d.Deadline > 0 {
		return d.Deadline
	}
	return DefaultDeadline
}

func withK(req Request) (k, kExplore int) {
	k = req.K
	if k <= 0 {
		k = beam.DefaultK
	}
	kExplore = req.KExplore
	if kExplore <= 0 {
		kExplore = beam.ExploreWidth(k)
	}
	if kExplore < k {
		kExplore = k
	}
	return k, kExplore
}

func toResults(candidates []pathmodel.CandidatePath) []ResultEntry {
	out := make([]ResultEntry, len(candidates))
	for i, c := range candidates {
		var entity pathmodel.Entity
		for _, s := range c.Steps {
			if s.Kind == pathmodel.StepEntity && s.EntityID == c.Current {
				entity = pathmodel.Entity{ID: s.EntityID, Label: s.EntityLabel, Type: s.EntityType}
			}
		}
		out[i] = ResultEntry{Entity: entity, Path: c.Steps, Score: c.Score}
	}
	return out
}

func bestPartialPath(candidates []pathmodel.CandidatePath) []pathmodel.Step {
	top := beam.TopK(candidates, 1)
	if len(top) == 0 {
		return nil
	}
	return top[0].Steps
}

// Query runs req through entry resolution and every hop in order, returning
// a Response whose Metadata always carries the query's accounting. A
// returned error indicates a collaborator failure (spec §7's "top-level
// error" row); every other failure mode is encoded in Metadata.ErrorTag with
// a nil error.
func (d *Driver) Query(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, d.deadline())
	defer cancel()

	k, kExplore := withK(req)
	meta := Metadata{Query: req.Path, K: k, KExplore: kExplore}
	if req.Lineage != nil {
		meta.LineageEcho = req.Lineage
	}

	query, err := parse.Parse(req.Path)
	if err != nil {
		meta.ErrorTag = ErrParse
		meta.Reason = err.Error()
		meta.ExecutionTime = time.Since(start)
		return &Response{Metadata: meta}, nil
	}
	meta.Hops = len(query.Hops)

	if query.Entry.Kind == parse.EntryTypeOnly && len(query.Hops) > 0 {
		meta.ErrorTag = ErrInvalidEntryPoint
		meta.Reason = "a type-only entry point cannot be followed by hops"
		meta.ExecutionTime = time.Since(start)
		return &Response{Metadata: meta}, nil
	}

	var scope *lineage.Scope
	if req.Lineage != nil && d.Lineage != nil {
		scope, err = d.Lineage.Resolve(ctx, req.Lineage.Seed, req.Lineage.Direction)
		if err != nil {
			return nil, err
		}
	}

	entryWidth := kExplore
	if len(query.Hops) == 0 {
		entryWidth = k
	}
	candidates, err := d.Resolver.Resolve(ctx, query.Entry, entryWidth, scope)
	if err != nil {
		return nil, err
	}
	explored := len(candidates)

	if query.EntryFilter != nil {
		filtered, ferr := triad.ApplyFilterInPlace(ctx, d.Triad, candidates, query.EntryFilter, entryWidth)
		if ferr != nil {
			return nil, ferr
		}
		candidates = filtered
	}

	if len(candidates) == 0 {
		meta.ErrorTag = ErrNoEntryPoint
		meta.Reason = "entry resolution returned no candidates"
		meta.CandidatesExplored = explored
		meta.ExecutionTime = time.Since(start)
		return &Response{Metadata: meta}, nil
	}

	if len(query.Hops) == 0 {
		top := beam.TopK(candidates, k)
		meta.CandidatesExplored = explored
		meta.ExecutionTime = time.Since(start)
		return &Response{Results: toResults(top), Metadata: meta}, nil
	}

	for i, hop := range query.Hops {
		width := beam.WidthForHop(i, len(query.Hops), k, kExplore)
		res, herr := d.Triad.ExecuteHop(ctx, candidates, hop, scope, width)
		if herr != nil {
			var policyErr triad.PolicyError
			if errors.As(herr, &policyErr) {
				meta.ErrorTag = ErrUnsupportedQuery
				meta.Reason = policyErr.Message
				meta.PartialPath = bestPartialPath(candidates)
				hopIndex := i
				meta.StoppedAtHop = &hopIndex
				meta.CandidatesExplored = explored
				meta.ExecutionTime = time.Since(start)
				return &Response{Metadata: meta}, nil
			}
			return nil, herr
		}

		explored += res.Explored
		if len(res.Candidates) == 0 {
			meta.ErrorTag = ErrNoPathFound
			meta.Reason = "hop returned no candidates"
			meta.PartialPath = bestPartialPath(candidates)
			hopIndex := i
			meta.StoppedAtHop = &hopIndex
			meta.CandidatesExplored = explored
			meta.ExecutionTime = time.Since(start)
			return &Response{Metadata: meta}, nil
		}
		candidates = res.Candidates
	}

	top := beam.TopK(candidates, k)
	meta.CandidatesExplored = explored
	meta.ExecutionTime = time.Since(start)
	return &Response{Results: toResults(top), Metadata: meta}, nil
}
