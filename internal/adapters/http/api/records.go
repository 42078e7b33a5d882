package api

import (
	"net/http"
	"strconv"
	"strings"

	repository "github.com/okian/lifelines/internal/adapters/repository"
)

type recordResponse struct {
	Rank        int      `json:"rank"`
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	BirthYear   int      `json:"birthYear"`
	DeathYear   *int     `json:"deathYear"`
	Prominence  int      `json:"prominence"`
	Color       string   `json:"color,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

func newRecordResponse(e repository.Entry) recordResponse {
	return recordResponse{
		Rank:        e.Rank,
		ID:          e.Record.ID,
		Name:        e.Record.Name,
		BirthYear:   e.Record.BirthYear,
		DeathYear:   e.Record.DeathYear,
		Prominence:  e.Record.Prominence,
		Color:       e.Record.Color,
		Description: e.Record.Description,
		Tags:        e.Record.Tags,
	}
}

// RecordsHandler serves the ranked record set.
type RecordsHandler struct {
	deps     RecordDependencies
	maxLimit int
}

// NewRecordsHandler creates a new records handler
func NewRecordsHandler(deps RecordDependencies, maxLimit int) *RecordsHandler {
	return &RecordsHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleList handles GET /records?limit=N requests
func (h *RecordsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_records"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}
	entries, err := h.deps.TopN(r.Context(), n)
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	out := make([]recordResponse, len(entries))
	for i, e := range entries {
		out[i] = newRecordResponse(e)
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleGet handles GET /records/{id} requests.
func (h *RecordsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_record"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/records/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	entry, err := h.deps.Get(r.Context(), id)
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, newRecordResponse(entry))
}
