package handlers

import (
	"net/http"

	"github.com/Harshitk-cp/mentalize/internal/domain"
	"github.com/Harshitk-cp/mentalize/internal/service"
	"github.com/go-chi/chi/v5"
)

type ScenarioHandler struct {
	svc *service.ScenarioService
}

func NewScenarioHandler(svc *service.ScenarioService) *ScenarioHandler {
	return &ScenarioHandler{svc: svc}
}

type scenarioSummary struct {
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Subject     string              `json:"subject"`
	Latent      domain.VariableSpec `json:"latent"`
	Observable  domain.VariableSpec `json:"observable"`
	Profiles    []string            `json:"profiles"`
}

type listScenariosResponse struct {
	Scenarios []scenarioSummary `json:"scenarios"`
	Count     int               `json:"count"`
}

func (h *ScenarioHandler) List(w http.ResponseWriter, r *http.Request) {
	scenarios := h.svc.List()
	out := make([]scenarioSummary, 0, len(scenarios))
	for _, s := range scenarios {
		out = append(out, scenarioSummary{
			Name:        s.Name,
			Description: s.Description,
			Subject:     s.Subject,
			Latent:      s.Latent,
			Observable:  s.Observable,
			Profiles:    s.ProfileNames(),
		})
	}
	writeJSON(w, http.StatusOK, listScenariosResponse{Scenarios: out, Count: len(out)})
}

func (h *ScenarioHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Get(chi.URLParam(r, "name"))
	if err != nil {
		writeServiceError(w, err, "failed to get scenario")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *ScenarioHandler) Matrix(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	m, err := h.svc.Matrix(r.Context(), chi.URLParam(r, "name"), q.Get("profile"), service.MatrixKind(q.Get("kind")))
	if err != nil {
		writeServiceError(w, err, "failed to build matrix")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

type evaluateRequest struct {
	Profile        string   `json:"profile"`
	Observation    string   `json:"observation,omitempty"`
	Stress         string   `json:"stress,omitempty"`
	EvidenceWeight *float64 `json:"evidence_weight,omitempty"`
}

func (h *ScenarioHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	run, err := h.svc.Evaluate(r.Context(), service.EvaluateRequest{
		Scenario:       chi.URLParam(r, "name"),
		Profile:        req.Profile,
		Observation:    req.Observation,
		Stress:         req.Stress,
		EvidenceWeight: req.EvidenceWeight,
	})
	if err != nil {
		writeServiceError(w, err, "failed to evaluate")
		return
	}
	writeJSON(w, http.StatusOK, runResponse{Run: run, Distribution: run.Distribution(), CertaintyReason: domain.CertaintyReason(run.TopProbability)})
}

type compareRequest struct {
	Observation string `json:"observation,omitempty"`
	Stress      string `json:"stress,omitempty"`
}

type compareResponse struct {
	Scenario    string       `json:"scenario"`
	Observation string       `json:"observation,omitempty"`
	Runs        []domain.Run `json:"runs"`
}

func (h *ScenarioHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := chi.URLParam(r, "name")
	runs, err := h.svc.Compare(r.Context(), name, req.Observation, req.Stress)
	if err != nil {
		writeServiceError(w, err, "failed to compare profiles")
		return
	}
	writeJSON(w, http.StatusOK, compareResponse{Scenario: name, Observation: req.Observation, Runs: runs})
}

type stressRequest struct {
	Profile     string `json:"profile"`
	Observation string `json:"observation,omitempty"`
}

type stressResponse struct {
	Scenario    string                `json:"scenario"`
	Profile     string                `json:"profile"`
	Observation string                `json:"observation,omitempty"`
	Points      []service.StressPoint `json:"points"`
}

func (h *ScenarioHandler) Stress(w http.ResponseWriter, r *http.Request) {
	var req stressRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := chi.URLParam(r, "name")
	points, err := h.svc.StressSweep(r.Context(), name, req.Profile, req.Observation)
	if err != nil {
		writeServiceError(w, err, "failed to run stress sweep")
		return
	}
	writeJSON(w, http.StatusOK, stressResponse{Scenario: name, Profile: req.Profile, Observation: req.Observation, Points: points})
}
