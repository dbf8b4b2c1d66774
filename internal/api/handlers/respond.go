package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Harshitk-cp/mentalize/internal/belief"
	"github.com/Harshitk-cp/mentalize/internal/dist"
	"github.com/Harshitk-cp/mentalize/internal/inference"
	"github.com/Harshitk-cp/mentalize/internal/scenario"
	"github.com/Harshitk-cp/mentalize/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	code := "InvalidRequest"
	switch {
	case status == http.StatusNotFound:
		code = "NotFound"
	case status >= 500:
		code = "Internal"
	}
	writeErrorCode(w, status, code, msg)
}

func writeErrorCode(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

// errorMapping is checked in order; the first sentinel matched by errors.Is
// decides the response.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{service.ErrScenarioNotFound, http.StatusNotFound, "ScenarioNotFound"},
	{service.ErrProfileNotFound, http.StatusNotFound, "ProfileNotFound"},
	{service.ErrRunNotFound, http.StatusNotFound, "RunNotFound"},
	{service.ErrRunsDisabled, http.StatusServiceUnavailable, "RunsDisabled"},
	{belief.ErrZeroLikelihoodObservation, http.StatusUnprocessableEntity, "ZeroLikelihoodObservation"},
	{belief.ErrCyclicDependency, http.StatusUnprocessableEntity, "CyclicDependency"},
	{inference.ErrNoLikelihood, http.StatusUnprocessableEntity, "NoLikelihood"},
	{inference.ErrInvalidTransition, http.StatusUnprocessableEntity, "InvalidTransition"},
	// ErrInvalidEvidenceWeight wraps dist.ErrInvalidWeight and must come first.
	{inference.ErrInvalidEvidenceWeight, http.StatusBadRequest, "InvalidEvidenceWeight"},
	{inference.ErrUnknownStressLevel, http.StatusBadRequest, "UnknownStressLevel"},
	{dist.ErrShapeMismatch, http.StatusBadRequest, "ShapeMismatch"},
	{dist.ErrInvalidWeight, http.StatusBadRequest, "InvalidWeight"},
	{dist.ErrDegenerateDistribution, http.StatusBadRequest, "DegenerateDistribution"},
	{dist.ErrUnknownAssignment, http.StatusBadRequest, "UnknownAssignment"},
	{scenario.ErrInvalidScenario, http.StatusBadRequest, "InvalidScenario"},
	{service.ErrInvalidRequest, http.StatusBadRequest, "InvalidRequest"},
}

// writeServiceError maps a service error to a status and code. Anything not
// in the taxonomy is a 500 with the fallback message.
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			writeErrorCode(w, m.status, m.code, err.Error())
			return
		}
	}
	writeError(w, http.StatusInternalServerError, fallback)
}

// decodeBody decodes a JSON body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
