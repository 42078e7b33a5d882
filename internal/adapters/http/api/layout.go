package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/okian/lifelines/internal/adapters/render/svg"
	"github.com/okian/lifelines/internal/domain/layout"
	"github.com/okian/lifelines/internal/domain/model"
)

const maxBodyBytes = 1 << 16

type entryResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Color      string  `json:"color,omitempty"`
	Lane       int     `json:"lane"`
	StartX     float64 `json:"startX"`
	EndX       float64 `json:"endX"`
	Label      string  `json:"label"`
	BirthYear  int     `json:"birthYear"`
	DeathYear  *int    `json:"deathYear"`
	Prominence int     `json:"prominence"`
}

type layoutResponse struct {
	Frame         *uint64         `json:"frame,omitempty"`
	K             float64         `json:"k"`
	X             float64         `json:"x"`
	Width         float64         `json:"width"`
	Height        float64         `json:"height"`
	Threshold     int             `json:"threshold"`
	BaseThreshold int             `json:"baseThreshold"`
	VisibleStart  float64         `json:"visibleStart"`
	VisibleEnd    float64         `json:"visibleEnd"`
	Lanes         int             `json:"lanes"`
	Candidates    int             `json:"candidates"`
	RowBudget     int             `json:"rowBudget"`
	Entries       []entryResponse `json:"entries"`
}

func newLayoutResponse(plan layout.Plan, t model.ZoomTransform, v model.Viewport) layoutResponse {
	entries := make([]entryResponse, len(plan.Entries))
	for i, e := range plan.Entries {
		entries[i] = entryResponse{
			ID:         e.Record.ID,
			Name:       e.Record.Name,
			Color:      e.Record.Color,
			Lane:       e.Lane,
			StartX:     e.StartX,
			EndX:       e.EndX,
			Label:      e.Label,
			BirthYear:  e.Record.BirthYear,
			DeathYear:  e.Record.DeathYear,
			Prominence: e.Record.Prominence,
		}
	}
	return layoutResponse{
		K:             t.Scale,
		X:             t.TranslateX,
		Width:         v.Width,
		Height:        v.Height,
		Threshold:     plan.Threshold,
		BaseThreshold: plan.BaseThreshold,
		VisibleStart:  plan.VisibleStart,
		VisibleEnd:    plan.VisibleEnd,
		Lanes:         plan.Lanes,
		Candidates:    plan.Candidates,
		RowBudget:     plan.RowBudget,
		Entries:       entries,
	}
}

type thresholdResponse struct {
	K         float64 `json:"k"`
	Threshold int     `json:"threshold"`
}

type acceptedResponse struct {
	Status string `json:"status"`
}

// LayoutHandler serves drawing plans.
type LayoutHandler struct {
	deps LayoutDependencies
}

// NewLayoutHandler creates a new layout handler.
func NewLayoutHandler(deps LayoutDependencies) *LayoutHandler {
	return &LayoutHandler{deps: deps}
}

// HandleLayout handles GET /layout?k=&x=&width=&height= requests.
func (h *LayoutHandler) HandleLayout(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_layout"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	t, v, err := viewFromQuery(r.URL.Query(), h.deps.EngineConfig())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	plan, err := h.deps.Layout(r.Context(), t, v)
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, newLayoutResponse(plan, t, v))
}

// HandleTransform handles POST /transform. The transform is handed to the
// frame loop and the call returns immediately.
func (h *LayoutHandler) HandleTransform(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_transform"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req viewRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.K == nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, fmt.Errorf("k: required")))
		return
	}
	t, v, err := req.resolve(h.deps.EngineConfig())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.Submit(r.Context(), t, v); err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	writeJSON(w, http.StatusAccepted, acceptedResponse{Status: "accepted"})
}

// HandleFrame handles GET /frame: the latest plan published by the frame loop.
func (h *LayoutHandler) HandleFrame(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_frame"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	f, err := h.deps.LatestFrame(r.Context())
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	resp := newLayoutResponse(f.Plan, f.Transform, f.Viewport)
	seq := f.Seq
	resp.Frame = &seq
	writeJSON(w, http.StatusOK, resp)
}

// HandleThreshold handles GET /threshold?k= requests.
func (h *LayoutHandler) HandleThreshold(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_threshold"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	if q.Get("k") == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, fmt.Errorf("k: required")))
		return
	}
	k, err := floatParam(q, "k", 0)
	if err == nil && k <= 0 {
		err = fmt.Errorf("k: must be positive, got %v", k)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, thresholdResponse{K: k, Threshold: h.deps.Threshold(k)})
}

// HandleSVG handles GET /timeline.svg?k=&x=&width=&height= requests.
func (h *LayoutHandler) HandleSVG(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_svg"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	cfg := h.deps.EngineConfig()
	t, v, err := viewFromQuery(r.URL.Query(), cfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	plan, err := h.deps.Layout(r.Context(), t, v)
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	doc := svg.Render(plan, v, cfg, svg.WithTitle(fmt.Sprintf("lifelines k=%g", t.Scale)))
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}
