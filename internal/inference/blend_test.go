package inference

import (
	"errors"
	"math"
	"testing"

	"github.com/Harshitk-cp/mentalize/internal/dist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlend_Endpoints(t *testing.T) {
	e := NewEngine(nil)
	s := bpdSubject(t)

	posterior, err := e.Infer(s, Observe("reply", "no_reply"))
	require.NoError(t, err)
	prior, err := e.PsychicEquivalence(s)
	require.NoError(t, err)

	full, err := e.Blend(posterior, prior, 1)
	require.NoError(t, err)
	assert.Equal(t, posterior.Probs(), full.Probs())

	none, err := e.Blend(posterior, prior, 0)
	require.NoError(t, err)
	assert.Equal(t, prior.Probs(), none.Probs())
}

func TestBlend_AffineInLambda(t *testing.T) {
	e := NewEngine(nil)
	s := bpdSubject(t)

	posterior, err := e.Infer(s, Observe("reply", "quick"))
	require.NoError(t, err)
	prior, err := e.PsychicEquivalence(s)
	require.NoError(t, err)

	for _, lambda := range []float64{0, 0.1, 0.25, 0.5, 0.75, 1} {
		got, err := e.Blend(posterior, prior, lambda)
		require.NoError(t, err)
		for i := range got.Probs() {
			want := lambda*posterior.At(0, i) + (1-lambda)*prior.At(0, i)
			assert.InDelta(t, want, got.At(0, i), tol, "lambda %v index %d", lambda, i)
		}

		var total float64
		for _, p := range got.Probs() {
			total += p
		}
		assert.InDelta(t, 1.0, total, tol)
	}

	// equal steps in lambda give equal steps in the result
	a, _ := e.Blend(posterior, prior, 0.2)
	b, _ := e.Blend(posterior, prior, 0.4)
	c, _ := e.Blend(posterior, prior, 0.6)
	for i := range a.Probs() {
		assert.InDelta(t, b.At(0, i)-a.At(0, i), c.At(0, i)-b.At(0, i), tol)
	}
}

func TestBlend_Errors(t *testing.T) {
	e := NewEngine(nil)
	s := bpdSubject(t)
	other, err := dist.FromWeights(dist.MustVariable("mood", "low", "high"), []float64{1, 3})
	require.NoError(t, err)

	_, err = e.Blend(s.Prior, other, 0.5)
	assert.ErrorIs(t, err, dist.ErrShapeMismatch)

	for _, lambda := range []float64{-0.01, 1.01, math.NaN(), math.Inf(1)} {
		_, err := e.Blend(s.Prior, s.Prior, lambda)
		if !errors.Is(err, ErrInvalidEvidenceWeight) || !errors.Is(err, dist.ErrInvalidWeight) {
			t.Errorf("Blend(lambda=%v) error = %v, want ErrInvalidEvidenceWeight", lambda, err)
		}
	}
}

// Blending at lambda 0 and the psychic-equivalence path are separate code
// paths that must agree.
func TestUnderStress_HighStressApproachesPrior(t *testing.T) {
	e := NewEngine(nil)
	s := bpdSubject(t)
	obs := Observe("reply", "no_reply")

	posterior, err := e.Infer(s, obs)
	require.NoError(t, err)
	pe, err := e.PsychicEquivalence(s)
	require.NoError(t, err)

	low, err := e.UnderStress(s, obs, StressLow, DefaultEvidenceWeights)
	require.NoError(t, err)
	assert.Equal(t, posterior.Probs(), low.Probs())

	moderate, err := e.UnderStress(s, obs, StressModerate, DefaultEvidenceWeights)
	require.NoError(t, err)
	high, err := e.UnderStress(s, obs, StressHigh, DefaultEvidenceWeights)
	require.NoError(t, err)

	// P(reject): 0.808 posterior, 0.6 prior
	rejectLow, _ := low.Prob("rejecting")
	rejectModerate, _ := moderate.Prob("rejecting")
	rejectHigh, _ := high.Prob("rejecting")
	assert.InDelta(t, 0.5*(0.42/0.52)+0.5*0.6, rejectModerate, tol)
	assert.InDelta(t, 0.1*(0.42/0.52)+0.9*0.6, rejectHigh, tol)
	assert.Greater(t, rejectLow, rejectModerate)
	assert.Greater(t, rejectModerate, rejectHigh)

	zero, err := e.WithEvidenceWeight(s, obs, 0)
	require.NoError(t, err)
	assert.Equal(t, pe.Probs(), zero.Probs())

	priorOnly, err := e.Infer(s, nil)
	require.NoError(t, err)
	assert.True(t, zero.ApproxEqual(priorOnly, tol))
}

func TestUnderStress_Errors(t *testing.T) {
	e := NewEngine(nil)
	s := bpdSubject(t)

	_, err := e.UnderStress(s, nil, StressLevel(7), DefaultEvidenceWeights)
	assert.ErrorIs(t, err, ErrUnknownStressLevel)

	_, err = e.UnderStress(s, nil, StressHigh, EvidenceWeights{1, 0.5, 2})
	assert.ErrorIs(t, err, ErrInvalidEvidenceWeight)

	assert.ErrorIs(t, EvidenceWeights{1, -1, 0}.Validate(), ErrInvalidEvidenceWeight)
	assert.NoError(t, DefaultEvidenceWeights.Validate())
}

func TestParseStressLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    StressLevel
		wantErr bool
	}{
		{"low", StressLow, false},
		{"Moderate", StressModerate, false},
		{"medium", StressModerate, false},
		{" high ", StressHigh, false},
		{"2", StressHigh, false},
		{"extreme", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseStressLevel(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownStressLevel) {
				t.Errorf("ParseStressLevel(%q) error = %v, want ErrUnknownStressLevel", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseStressLevel(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
}
