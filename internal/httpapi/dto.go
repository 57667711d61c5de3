// Package httpapi is the JSON wire boundary for the query engine's HTTP
// front-end: request/response DTOs, the POST /query handler, and the CORS
// middleware. Grounded on the teacher's cmd/server/main.go request decoding
// and writeJSON/writeError helper shape.
package httpapi

import (
	"fmt"

	"github.com/arkivegraph/pathql/internal/lineage"
	"github.com/arkivegraph/pathql/internal/pathmodel"
	"github.com/arkivegraph/pathql"
)

// QueryRequest is the JSON body of a POST /query request, per spec §6.
type QueryRequest struct {
	Path        string       `json:"path"`
	K           int          `json:"k"`
	KExplore    int          `json:"k_explore"`
	Lineage     *LineageBody `json:"lineage,omitempty"`
	Enrich      bool         `json:"enrich"`
	EnrichLimit int          `json:"enrich_limit"`
}

// LineageBody restricts a query to the transitive closure of a source
// collection.
type LineageBody struct {
	Seed      string `json:"seed"`
	Direction string `json:"direction"`
}

func parseDirection(s string) (lineage.Direction, error) {
	switch s {
	case "", "ancestors":
		return lineage.Ancestors, nil
	case "descendants":
		return lineage.Descendants, nil
	case "both":
		return lineage.Both, nil
	default:
		return 0, fmt.Errorf("unknown lineage direction %q", s)
	}
}

func (req QueryRequest) toEngineRequest() (pathql.Request, error) {
	out := pathql.Request{Path: req.Path, K: req.K, KExplore: req.KExplore}
	if req.Lineage != nil {
		dir, err := parseDirection(req.Lineage.Direction)
		if err != nil {
			return pathql.Request{}, err
		}
		out.Lineage = &pathql.LineageRequest{Seed: req.Lineage.Seed, Direction: dir}
	}
	return out, nil
}

// StepView is one element of a result path, rendered for JSON output.
type StepView struct {
	Kind        string  `json:"kind"`
	EntityID    string  `json:"entity_id,omitempty"`
	EntityType  string  `json:"entity_type,omitempty"`
	EntityLabel string  `json:"entity_label,omitempty"`
	Predicate   string  `json:"predicate,omitempty"`
	Direction   string  `json:"direction,omitempty"`
	NoPathFound bool    `json:"no_path_found,omitempty"`
	Score       *float64 `json:"score,omitempty"`
}

func stepView(s pathmodel.Step) StepView {
	if s.Kind == pathmodel.StepEntity {
		return StepView{Kind: "entity", EntityID: s.EntityID, EntityType: s.EntityType, EntityLabel: s.EntityLabel, Score: s.Score}
	}
	dir := "out"
	if s.Direction == pathmodel.EdgeIncoming {
		dir = "in"
	}
	return StepView{Kind: "edge", Predicate: s.Predicate, Direction: dir, NoPathFound: s.NoPathFound, Score: s.Score}
}

// EntityView renders a pathmodel.Entity for JSON output, dropping internal
// property-typing detail the spec's response contract doesn't name.
type EntityView struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`
	Type  string `json:"type,omitempty"`
}

// ResultView is one ranked terminal entity, per spec §6's response contract.
type ResultView struct {
	Entity  EntityView  `json:"entity"`
	Path    []StepView  `json:"path"`
	Score   float64     `json:"score"`
	Content *ContentView `json:"content,omitempty"`
}

// ContentView carries an enriched result's fetched blob body when the fetch
// succeeded, or an Error message when it failed or enrichment is not
// configured.
type ContentView struct {
	ContentType string `json:"content_type,omitempty"`
	Content     []byte `json:"content,omitempty"`
	Error       string `json:"error,omitempty"`
}

// MetadataView renders driver.Metadata for JSON output.
type MetadataView struct {
	Query              string        `json:"query"`
	Hops               int           `json:"hops"`
	K                  int           `json:"k"`
	KExplore           int           `json:"k_explore"`
	CandidatesExplored int           `json:"candidates_explored"`
	ExecutionTimeMS    float64       `json:"execution_time_ms"`
	ErrorTag           string        `json:"error_tag,omitempty"`
	Reason             string        `json:"reason,omitempty"`
	StoppedAtHop       *int          `json:"stopped_at_hop,omitempty"`
	PartialPath        []StepView    `json:"partial_path,omitempty"`
	Lineage            *LineageBody  `json:"lineage,omitempty"`
}

// QueryResponse is the JSON body returned from POST /query.
type QueryResponse struct {
	Results  []ResultView `json:"results"`
	Metadata MetadataView `json:"metadata"`
}

func stepViews(steps []pathmodel.Step) []StepView {
	if len(steps) == 0 {
		return nil
	}
	out := make([]StepView, len(steps))
	for i, s := range steps {
		out[i] = stepView(s)
	}
	return out
}

func toResponseView(resp *pathql.Response) QueryResponse {
	results := make([]ResultView, len(resp.Results))
	for i, r := range resp.Results {
		results[i] = ResultView{
			Entity: EntityView{ID: r.Entity.ID, Label: r.Entity.Label, Type: r.Entity.Type},
			Path:   stepViews(r.Path),
			Score:  r.Score,
		}
	}

	meta := resp.Metadata
	mv := MetadataView{
		Query:              meta.Query,
		Hops:               meta.Hops,
		K:                  meta.K,
		KExplore:           meta.KExplore,
		CandidatesExplored: meta.CandidatesExplored,
		ExecutionTimeMS:    float64(meta.ExecutionTime.Microseconds()) / 1000.0,
		ErrorTag:           meta.ErrorTag,
		Reason:             meta.Reason,
		StoppedAtHop:       meta.StoppedAtHop,
		PartialPath:        stepViews(meta.PartialPath),
	}
	if meta.LineageEcho != nil {
		mv.Lineage = &LineageBody{Seed: meta.LineageEcho.Seed, Direction: directionString(meta.LineageEcho.Direction)}
	}
	return QueryResponse{Results: results, Metadata: mv}
}

func directionString(d lineage.Direction) string {
	switch d {
	case lineage.Descendants:
		return "descendants"
	case lineage.Both:
		return "both"
	default:
		return "ancestors"
	}
}
