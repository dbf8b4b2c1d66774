package domain

import (
	"time"

	"github.com/google/uuid"
)

// Run records one evaluated inference: which observer, what was observed, how
// much of the evidence was used, and the resulting belief.
type Run struct {
	ID       uuid.UUID `json:"id"`
	Scenario string    `json:"scenario"`
	Profile  string    `json:"profile"`
	Observer string    `json:"observer"`
	Subject  string    `json:"subject"`
	Mode     Mode      `json:"mode"`
	// Observation is a value of the scenario's observable variable; empty when
	// no evidence was supplied.
	Observation    string    `json:"observation,omitempty"`
	Stress         string    `json:"stress,omitempty"`
	EvidenceWeight float64   `json:"evidence_weight"`
	Variable       string    `json:"variable"`
	Values         []string  `json:"values"`
	Belief         []float64 `json:"belief"`
	Top            string    `json:"top"`
	TopProbability float64   `json:"top_probability"`
	Certainty      Certainty `json:"certainty"`
	CreatedAt      time.Time `json:"created_at"`
}

func (r *Run) Distribution() map[string]float64 {
	out := make(map[string]float64, len(r.Values))
	for i, v := range r.Values {
		if i < len(r.Belief) {
			out[v] = r.Belief[i]
		}
	}
	return out
}

type RunWithDistance struct {
	Run
	Distance float64 `json:"distance"`
}
