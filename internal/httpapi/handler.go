package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/arkivegraph/pathql/internal/enrich"
	"github.com/arkivegraph/pathql/internal/observe"
	"github.com/arkivegraph/pathql"
)

// DefaultEnrichLimit bounds how many results get their content fetched when
// a request sets enrich without enrich_limit, matching spec §6's "bounded,
// not automatic" enrichment contract.
const DefaultEnrichLimit = 10

// Handler serves POST /query against an Engine, optionally enriching
// results with fetched content when a request asks for it.
type Handler struct {
	Engine             *pathql.Engine
	Enrich             *enrich.Store
	DefaultEnrichLimit int
	Metrics            *observe.Metrics
}

// NewHandler builds a Handler. enrichStore may be nil, in which case a
// request that sets enrich=true still gets its results, each carrying a
// content error instead of a fetch attempt.
func NewHandler(engine *pathql.Engine, enrichStore *enrich.Store) *Handler {
	return &Handler{Engine: engine, Enrich: enrichStore, DefaultEnrichLimit: DefaultEnrichLimit, Metrics: observe.DefaultMetrics()}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ServeHTTP implements http.Handler for the query endpoint directly, so
// callers can mount a Handler at any path with http.Handle.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Path == "" {
		writeError(w, http.StatusBadRequest, "missing field: path")
		return
	}

	req, err := body.toEngineRequest()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	logger := observe.QueryLogger(fmt.Sprintf("%p", r), body.Path)
	start := time.Now()

	resp, err := h.Engine.Query(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadGateway, fmt.Sprintf("collaborator failure: %v", err))
		return
	}

	view := toResponseView(resp)
	if body.Enrich && len(view.Results) > 0 {
		limit := body.EnrichLimit
		if limit <= 0 {
			limit = h.DefaultEnrichLimit
		}
		h.attachContent(r.Context(), &view, limit)
	}

	h.Metrics.RecordQuery(r.Context(), time.Since(start).Seconds(), int64(resp.Metadata.CandidatesExplored), resp.Metadata.ErrorTag)
	observe.LogQueryResult(r.Context(), logger, len(view.Results), resp.Metadata.ErrorTag)

	writeJSON(w, http.StatusOK, view)
}

// attachContent fetches and attaches enrichment bodies for up to limit
// results, in ranked order, best-effort — a fetch failure on one result
// never removes it from the response.
func (h *Handler) attachContent(ctx context.Context, view *QueryResponse, limit int) {
	if h.Enrich == nil {
		for i := range view.Results {
			view.Results[i].Content = &ContentView{Error: "enrichment is not configured"}
		}
		return
	}

	ids := make([]string, len(view.Results))
	for i, r := range view.Results {
		ids[i] = r.Entity.ID
	}

	bodies, err := h.Enrich.Fetch(ctx, ids, limit)
	if err != nil {
		for i := range view.Results {
			view.Results[i].Content = &ContentView{Error: err.Error()}
		}
		return
	}

	byID := make(map[string]enrich.Body, len(bodies))
	for _, b := range bodies {
		byID[b.EntityID] = b
	}
	for i := range view.Results {
		b, ok := byID[view.Results[i].Entity.ID]
		if !ok {
			continue
		}
		status := "ok"
		cv := &ContentView{ContentType: b.ContentType, Content: b.Content}
		if b.Err != nil {
			cv = &ContentView{Error: b.Err.Error()}
			status = "error"
		}
		h.Metrics.RecordEnrichmentFetch(ctx, status)
		view.Results[i].Content = cv
	}
}

// CORSConfig is the CORS origin allowlist. "*" accepts any origin.
type CORSConfig struct {
	AllowedOrigins []string
}

// CORSMiddleware restricts cross-origin requests to the configured origin
// set, short-circuiting preflight OPTIONS requests with a 204.
func CORSMiddleware(cfg CORSConfig, next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(cfg.AllowedOrigins))
	wildcard := false
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			wildcard = true
			continue
		}
		allowed[o] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if wildcard || allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HealthHandler reports liveness, used by cmd/server's /healthz route.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
