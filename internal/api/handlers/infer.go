package handlers

import (
	"net/http"

	"github.com/Harshitk-cp/mentalize/internal/domain"
	"github.com/Harshitk-cp/mentalize/internal/service"
)

type InferHandler struct {
	svc *service.ScenarioService
}

func NewInferHandler(svc *service.ScenarioService) *InferHandler {
	return &InferHandler{svc: svc}
}

type inferRequest struct {
	Scenario       domain.Scenario `json:"scenario"`
	Profile        string          `json:"profile,omitempty"`
	Observation    string          `json:"observation,omitempty"`
	Stress         string          `json:"stress,omitempty"`
	EvidenceWeight *float64        `json:"evidence_weight,omitempty"`
}

func (h *InferHandler) Infer(w http.ResponseWriter, r *http.Request) {
	var req inferRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	run, err := h.svc.InferAdHoc(r.Context(), req.Scenario, service.EvaluateRequest{
		Profile:        req.Profile,
		Observation:    req.Observation,
		Stress:         req.Stress,
		EvidenceWeight: req.EvidenceWeight,
	})
	if err != nil {
		writeServiceError(w, err, "failed to infer")
		return
	}
	writeJSON(w, http.StatusOK, runResponse{Run: run, Distribution: run.Distribution(), CertaintyReason: domain.CertaintyReason(run.TopProbability)})
}

func (h *InferHandler) Blend(w http.ResponseWriter, r *http.Request) {
	var req service.BlendRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.Blend(req)
	if err != nil {
		writeServiceError(w, err, "failed to blend")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
