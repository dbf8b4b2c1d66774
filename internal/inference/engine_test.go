package inference

import (
	"errors"
	"math"
	"testing"

	"github.com/Harshitk-cp/mentalize/internal/belief"
	"github.com/Harshitk-cp/mentalize/internal/dist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const tol = 1e-9

var (
	intention = dist.MustVariable("intention", "rejecting", "busy", "supportive")
	reply     = dist.MustVariable("reply", "no_reply", "delayed", "quick")
)

func subjectWithPrior(t *testing.T, weights ...float64) Subject {
	t.Helper()
	prior, err := dist.FromWeights(intention, weights)
	require.NoError(t, err)
	likelihood, err := dist.FromMatrix(intention, reply, [][]float64{
		{0.7, 0.2, 0.1},
		{0.3, 0.5, 0.2},
		{0.1, 0.3, 0.6},
	})
	require.NoError(t, err)
	return Subject{Name: "alex", Observer: "jane", Prior: prior, Likelihood: likelihood}
}

func bpdSubject(t *testing.T) Subject {
	return subjectWithPrior(t, 0.6, 0.3, 0.1)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func TestInfer_NoReplyPosterior(t *testing.T) {
	e := NewEngine(zaptest.NewLogger(t))

	posterior, err := e.Infer(bpdSubject(t), Observe("reply", "no_reply"))
	require.NoError(t, err)

	// prior[i] * likelihood[i][no_reply] = 0.42, 0.09, 0.01 over 0.52
	want := []float64{0.81, 0.17, 0.02}
	for i, p := range posterior.Probs() {
		if got := round2(p); got != want[i] {
			t.Errorf("posterior[%s] = %v (%.4f), want %v", intention.Value(i), got, p, want[i])
		}
	}
	assert.InDelta(t, 0.42/0.52, posterior.At(0, 0), tol)
}

func TestInfer_BayesRuleByHand(t *testing.T) {
	e := NewEngine(nil)
	subjects := []Subject{
		subjectWithPrior(t, 0.6, 0.3, 0.1),
		subjectWithPrior(t, 0.1, 0.4, 0.5),
		subjectWithPrior(t, 1, 1, 1),
		subjectWithPrior(t, 0, 0.5, 0.5),
	}

	for _, s := range subjects {
		for _, b := range reply.Values() {
			posterior, err := e.Infer(s, Observe("reply", b))
			require.NoError(t, err)

			row := make([]float64, intention.Len())
			var total float64
			for i, v := range intention.Values() {
				prior, _ := s.Prior.Prob(v)
				lik, _ := s.Likelihood.ValueAt(dist.Assignment{"intention": v, "reply": b})
				row[i] = prior * lik
				total += row[i]
			}
			for i := range row {
				assert.InDelta(t, row[i]/total, posterior.At(0, i), tol, "prior %v reply %s", s.Prior.Probs(), b)
			}
		}
	}
}

func TestInfer_NoObservationIsPrior(t *testing.T) {
	e := NewEngine(nil)
	s := bpdSubject(t)

	got, err := e.Infer(s, nil)
	require.NoError(t, err)
	assert.True(t, got.ApproxEqual(s.Prior, tol), "got %s", got)
}

func TestInfer_ZeroLikelihoodObservation(t *testing.T) {
	e := NewEngine(nil)
	replies := dist.MustVariable("reply", "no_reply", "delayed", "quick", "never")
	prior, err := dist.FromWeights(intention, []float64{0.6, 0.3, 0.1})
	require.NoError(t, err)
	lik, err := dist.FromMatrix(intention, replies, [][]float64{
		{0.7, 0.2, 0.1, 0},
		{0.3, 0.5, 0.2, 0},
		{0.1, 0.3, 0.6, 0},
	})
	require.NoError(t, err)
	s := Subject{Name: "alex", Prior: prior, Likelihood: lik}

	posterior, err := e.Infer(s, Observe("reply", "never"))
	assert.Nil(t, posterior)
	assert.ErrorIs(t, err, belief.ErrZeroLikelihoodObservation)

	_, err = e.PosteriorMatrix(s)
	assert.ErrorIs(t, err, belief.ErrZeroLikelihoodObservation)
	assert.Contains(t, err.Error(), "column never")
}

func TestInfer_InvalidSubject(t *testing.T) {
	e := NewEngine(nil)
	s := bpdSubject(t)

	tests := []struct {
		name string
		s    Subject
		obs  *Observation
		want error
	}{
		{"no prior", Subject{Name: "alex"}, nil, ErrInvalidSubject},
		{"conditional prior", Subject{Name: "alex", Prior: s.Likelihood}, nil, ErrInvalidSubject},
		{"likelihood reversed", Subject{Name: "alex", Prior: s.Prior, Likelihood: mustReverse(t)}, nil, belief.ErrCyclicDependency},
		{"observe without likelihood", Subject{Name: "alex", Prior: s.Prior}, Observe("reply", "quick"), ErrNoLikelihood},
		{"unknown value", s, Observe("reply", "ghosted"), dist.ErrUnknownAssignment},
		{"unknown variable", s, Observe("mood", "low"), dist.ErrUnknownAssignment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Infer(tt.s, tt.obs)
			if !errors.Is(err, tt.want) {
				t.Errorf("Infer() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func mustReverse(t *testing.T) *dist.Table {
	t.Helper()
	l, err := dist.FromMatrix(reply, intention, [][]float64{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}})
	require.NoError(t, err)
	return l
}

func TestInference_StagesMoveForward(t *testing.T) {
	e := NewEngine(nil)
	in, err := e.Begin(bpdSubject(t))
	require.NoError(t, err)
	assert.Equal(t, StageUnconditioned, in.Stage())

	require.NoError(t, in.Condition(Observation{Variable: "reply", Value: "quick"}))
	assert.Equal(t, StageConditioned, in.Stage())
	assert.Equal(t, "reply=quick", in.Observation().String())

	err = in.Condition(Observation{Variable: "reply", Value: "delayed"})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = in.Marginalize("intention")
	require.NoError(t, err)
	assert.Equal(t, StageMarginalized, in.Stage())

	_, err = in.Marginalize("intention")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	err = in.Condition(Observation{Variable: "reply", Value: "delayed"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestInference_FailedConditionKeepsStage(t *testing.T) {
	e := NewEngine(nil)
	in, err := e.Begin(bpdSubject(t))
	require.NoError(t, err)

	err = in.Condition(Observation{Variable: "reply", Value: "ghosted"})
	require.Error(t, err)
	assert.Equal(t, StageUnconditioned, in.Stage())
	assert.Nil(t, in.Observation())
}

func TestPsychicEquivalence_MatchesPriorOnlyInference(t *testing.T) {
	e := NewEngine(nil)
	for _, w := range [][]float64{{0.6, 0.3, 0.1}, {0.95, 0.04, 0.01}, {0.2, 0.4, 0.4}} {
		s := subjectWithPrior(t, w...)

		pe, err := e.PsychicEquivalence(s)
		require.NoError(t, err)
		priorOnly, err := e.Infer(s, nil)
		require.NoError(t, err)

		assert.True(t, pe.ApproxEqual(priorOnly, tol), "prior %v: %s vs %s", w, pe, priorOnly)
		assert.True(t, pe.ApproxEqual(s.Prior, tol))
	}
}

func TestPsychicEquivalence_IgnoresLikelihood(t *testing.T) {
	e := NewEngine(nil)
	s := bpdSubject(t)
	s.Likelihood = mustReverse(t)

	pe, err := e.PsychicEquivalence(s)
	require.NoError(t, err)
	assert.True(t, pe.ApproxEqual(s.Prior, tol))
}

func TestExpect(t *testing.T) {
	e := NewEngine(nil)
	s := bpdSubject(t)

	got, err := e.Expect(s, Observe("reply", "no_reply"), "rejecting")
	require.NoError(t, err)
	assert.InDelta(t, 0.42/0.52, got, tol)

	_, err = e.Expect(s, nil, "hostile")
	assert.ErrorIs(t, err, dist.ErrUnknownAssignment)
}
