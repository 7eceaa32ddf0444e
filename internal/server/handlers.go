package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trackops/issuegate/internal/domain"
	"github.com/trackops/issuegate/internal/metrics"
	"github.com/trackops/issuegate/internal/pipeline"
	"github.com/trackops/issuegate/internal/tool"
)

// Handlers exposes the gateway's call surface over HTTP.
type Handlers struct {
	dispatcher *tool.Dispatcher
	engine     *pipeline.Engine
	collector  *metrics.Collector
}

// NewHandlers creates the handler set.
func NewHandlers(dispatcher *tool.Dispatcher, engine *pipeline.Engine, collector *metrics.Collector) *Handlers {
	return &Handlers{
		dispatcher: dispatcher,
		engine:     engine,
		collector:  collector,
	}
}

// Register mounts all routes on the router.
func (h *Handlers) Register(r *chi.Mux) {
	r.Get("/healthz", h.handleHealth)
	r.Get("/v1/tools", h.handleListTools)
	r.Post("/v1/tools/{name}", h.handleExecuteTool)
	r.Post("/v1/pipelines", h.handleExecutePipeline)
	r.Get("/v1/metrics", h.handleMetrics)
	r.Get("/v1/metrics/{name}", h.handleToolMetrics)
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) handleListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"tools": h.dispatcher.Registry().Names(),
	})
}

func (h *Handlers) handleExecuteTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	params, err := decodeParams(r.Body)
	if err != nil {
		writeError(w, domain.ErrInvalidArguments("request body must be a JSON object"))
		return
	}

	result, err := h.dispatcher.ExecuteTool(r.Context(), name, params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"result": result})
}

func (h *Handlers) handleExecutePipeline(w http.ResponseWriter, r *http.Request) {
	var spec pipeline.Spec
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&spec); err != nil {
		writeError(w, domain.ErrInvalidPipeline("request body must be a pipeline object: "+err.Error()))
		return
	}

	results, err := h.engine.ExecutePipeline(r.Context(), &spec)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// metricsSummary is the aggregate view returned by the metrics endpoints.
// The average duration is a duration string ("1.5ms"), matching the periodic
// report's formatting.
type metricsSummary struct {
	Calls              int     `json:"calls"`
	ErrorRate          float64 `json:"errorRate"`
	AvgRequestDuration string  `json:"avgRequestDuration"`
}

func (h *Handlers) handleMetrics(w http.ResponseWriter, r *http.Request) {
	all := h.collector.Metrics()
	writeJSON(w, http.StatusOK, map[string]any{
		"summary": metricsSummary{
			Calls:              len(all),
			ErrorRate:          h.collector.ErrorRate(),
			AvgRequestDuration: h.collector.AverageRequestDuration().String(),
		},
		"metrics": all,
	})
}

func (h *Handlers) handleToolMetrics(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	scoped := h.collector.MetricsForTool(name)
	writeJSON(w, http.StatusOK, map[string]any{
		"tool": name,
		"summary": metricsSummary{
			Calls:              len(scoped),
			ErrorRate:          h.collector.ErrorRateForTool(name),
			AvgRequestDuration: h.collector.AverageRequestDurationForTool(name).String(),
		},
		"metrics": scoped,
	})
}

// decodeParams reads the request body as a JSON object. An empty body is
// treated as empty params.
func decodeParams(body io.Reader) (domain.Params, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return domain.Params{}, nil
	}
	var params domain.Params
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, err
	}
	if params == nil {
		params = domain.Params{}
	}
	return params, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError serializes any failure as a NormalizedError with the HTTP status
// derived from its code.
func writeError(w http.ResponseWriter, err error) {
	toolErr := domain.AsToolError(err)
	writeJSON(w, toolErr.HTTPStatusCode(), map[string]any{
		"error": domain.Normalize(err),
	})
}
