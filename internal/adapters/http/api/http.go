// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/okian/lifelines/internal/adapters/mq/frames"
	repository "github.com/okian/lifelines/internal/adapters/repository"
	"github.com/okian/lifelines/internal/domain/layout"
	"github.com/okian/lifelines/internal/domain/model"
)

// Default canvas used when a request leaves width or height out.
const (
	defaultWidth  = 1200
	defaultHeight = 600
	maxCanvas     = 20000
)

// LayoutDependencies computes and publishes drawing plans.
type LayoutDependencies interface {
	Layout(ctx context.Context, t model.ZoomTransform, v model.Viewport) (layout.Plan, error)
	Submit(ctx context.Context, t model.ZoomTransform, v model.Viewport) error
	LatestFrame(ctx context.Context) (*frames.Frame, error)
	Threshold(k float64) int
	EngineConfig() layout.Config
}

// RecordDependencies exposes the ranked record set.
type RecordDependencies interface {
	TopN(ctx context.Context, n int) ([]repository.Entry, error)
	Get(ctx context.Context, id string) (repository.Entry, error)
}

// Dependencies required by HTTP handlers.
type Dependencies interface {
	LayoutDependencies
	RecordDependencies
}

// Server wires HTTP routes for the timeline API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	layoutHandler  *LayoutHandler
	recordsHandler *RecordsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		layoutHandler:  NewLayoutHandler(deps),
		recordsHandler: NewRecordsHandler(deps, maxLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/layout", MetricsMiddleware(s.layoutHandler.HandleLayout, "layout"))
	mux.HandleFunc("/transform", MetricsMiddleware(s.layoutHandler.HandleTransform, "transform"))
	mux.HandleFunc("/frame", MetricsMiddleware(s.layoutHandler.HandleFrame, "frame"))
	mux.HandleFunc("/threshold", MetricsMiddleware(s.layoutHandler.HandleThreshold, "threshold"))
	mux.HandleFunc("/timeline.svg", MetricsMiddleware(s.layoutHandler.HandleSVG, "timeline_svg"))
	mux.HandleFunc("/records", MetricsMiddleware(s.recordsHandler.HandleList, "records"))
	mux.HandleFunc("/records/", MetricsMiddleware(s.recordsHandler.HandleGet, "record"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeUpstreamError maps service errors onto HTTP statuses.
func writeUpstreamError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, layout.ErrInvalidTransform):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case isNotFound(err):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound) ||
		errors.Is(err, frames.ErrNoFrame) ||
		errors.Is(err, ErrNotFound)
}

// floatParam parses a finite float query parameter, returning def when it
// is absent.
func floatParam(q url.Values, name string, def float64) (float64, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: not a number: %q", name, raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s: must be finite", name)
	}
	return v, nil
}

// viewRequest is the transform and canvas shared by the layout endpoints.
type viewRequest struct {
	K      *float64 `json:"k"`
	X      float64  `json:"x"`
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
}

func (v viewRequest) resolve(cfg layout.Config) (model.ZoomTransform, model.Viewport, error) {
	k := cfg.MinK
	if v.K != nil {
		k = *v.K
	}
	width, height := float64(defaultWidth), float64(defaultHeight)
	if v.Width != nil {
		width = *v.Width
	}
	if v.Height != nil {
		height = *v.Height
	}
	for _, f := range []struct {
		name string
		v    float64
	}{{"k", k}, {"x", v.X}, {"width", width}, {"height", height}} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return model.ZoomTransform{}, model.Viewport{}, fmt.Errorf("%s: must be finite", f.name)
		}
	}
	if k <= 0 {
		return model.ZoomTransform{}, model.Viewport{}, fmt.Errorf("k: must be positive, got %v", k)
	}
	if width > maxCanvas || height > maxCanvas {
		return model.ZoomTransform{}, model.Viewport{}, fmt.Errorf("canvas larger than %d pixels", maxCanvas)
	}
	return model.ZoomTransform{Scale: k, TranslateX: v.X}, model.Viewport{Width: width, Height: height}, nil
}

// viewFromQuery reads k, x, width and height from the query string.
func viewFromQuery(q url.Values, cfg layout.Config) (model.ZoomTransform, model.Viewport, error) {
	var req viewRequest
	for _, p := range []struct {
		name string
		dst  **float64
	}{{"k", &req.K}, {"width", &req.Width}, {"height", &req.Height}} {
		if q.Get(p.name) == "" {
			continue
		}
		v, err := floatParam(q, p.name, 0)
		if err != nil {
			return model.ZoomTransform{}, model.Viewport{}, err
		}
		*p.dst = &v
	}
	x, err := floatParam(q, "x", 0)
	if err != nil {
		return model.ZoomTransform{}, model.Viewport{}, err
	}
	req.X = x
	return req.resolve(cfg)
}
