package handlers

import (
	"net/http"
	"strconv"

	"github.com/Harshitk-cp/mentalize/internal/domain"
	"github.com/Harshitk-cp/mentalize/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type RunHandler struct {
	svc *service.ScenarioService
}

func NewRunHandler(svc *service.ScenarioService) *RunHandler {
	return &RunHandler{svc: svc}
}

type runResponse struct {
	*domain.Run
	Distribution    map[string]float64 `json:"distribution"`
	CertaintyReason string             `json:"certainty_reason"`
}

type listRunsResponse struct {
	Runs  []domain.Run `json:"runs"`
	Count int          `json:"count"`
}

type similarRunsResponse struct {
	Runs  []domain.RunWithDistance `json:"runs"`
	Count int                      `json:"count"`
}

func (h *RunHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, ok := intParam(w, q.Get("limit"), "limit")
	if !ok {
		return
	}

	runs, err := h.svc.ListRuns(r.Context(), q.Get("scenario"), limit)
	if err != nil {
		writeServiceError(w, err, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []domain.Run{}
	}
	writeJSON(w, http.StatusOK, listRunsResponse{Runs: runs, Count: len(runs)})
}

func (h *RunHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run id")
		return
	}

	run, err := h.svc.GetRun(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to get run")
		return
	}
	writeJSON(w, http.StatusOK, runResponse{Run: run, Distribution: run.Distribution(), CertaintyReason: domain.CertaintyReason(run.TopProbability)})
}

func (h *RunHandler) Similar(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run id")
		return
	}
	k, ok := intParam(w, r.URL.Query().Get("k"), "k")
	if !ok {
		return
	}

	runs, err := h.svc.SimilarRuns(r.Context(), id, k)
	if err != nil {
		writeServiceError(w, err, "failed to find similar runs")
		return
	}
	if runs == nil {
		runs = []domain.RunWithDistance{}
	}
	writeJSON(w, http.StatusOK, similarRunsResponse{Runs: runs, Count: len(runs)})
}

// intParam parses an optional non-negative query parameter; empty means 0.
func intParam(w http.ResponseWriter, raw, name string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return n, true
}
