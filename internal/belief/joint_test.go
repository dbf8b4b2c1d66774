package belief

import (
	"errors"
	"testing"

	"github.com/Harshitk-cp/mentalize/internal/dist"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-9

var (
	intention = dist.MustVariable("intention", "rejecting", "busy", "supportive")
	reply     = dist.MustVariable("reply", "no_reply", "delayed", "quick")
	followUp  = dist.MustVariable("follow_up", "none", "call")
)

func bpdPrior(t *testing.T) *dist.Table {
	t.Helper()
	p, err := dist.FromWeights(intention, []float64{0.6, 0.3, 0.1})
	require.NoError(t, err)
	return p
}

func replyLikelihood(t *testing.T) *dist.Table {
	t.Helper()
	l, err := dist.FromMatrix(intention, reply, [][]float64{
		{0.7, 0.2, 0.1},
		{0.3, 0.5, 0.2},
		{0.1, 0.3, 0.6},
	})
	require.NoError(t, err)
	return l
}

func followUpLikelihood(t *testing.T) *dist.Table {
	t.Helper()
	l, err := dist.FromMatrix(reply, followUp, [][]float64{
		{0.9, 0.1},
		{0.5, 0.5},
		{0.2, 0.8},
	})
	require.NoError(t, err)
	return l
}

func TestNewJoint_ChainRule(t *testing.T) {
	j, err := NewJoint(bpdPrior(t), replyLikelihood(t))
	require.NoError(t, err)

	assert.Equal(t, 9, j.Size())
	assert.InDelta(t, 1.0, j.Total(), tol)

	p, err := j.ValueAt(dist.Assignment{"intention": "rejecting", "reply": "no_reply"})
	require.NoError(t, err)
	assert.InDelta(t, 0.42, p, tol)

	p, err = j.ValueAt(dist.Assignment{"intention": "supportive", "reply": "quick"})
	require.NoError(t, err)
	assert.InDelta(t, 0.06, p, tol)
}

func TestNewJoint_ThreeLevels(t *testing.T) {
	j, err := NewJoint(bpdPrior(t), replyLikelihood(t), followUpLikelihood(t))
	require.NoError(t, err)
	assert.Equal(t, 18, j.Size())
	assert.InDelta(t, 1.0, j.Total(), tol)

	p, err := j.ValueAt(dist.Assignment{"intention": "busy", "reply": "delayed", "follow_up": "call"})
	require.NoError(t, err)
	assert.InDelta(t, 0.3*0.5*0.5, p, tol)

	for o := 0; o < j.Size(); o++ {
		a := j.Assignment(o)
		got, err := j.ValueAt(a)
		require.NoError(t, err)
		assert.Equal(t, j.Probs()[o], got, "entry %d %v", o, a)
	}
}

func TestNewJoint_Errors(t *testing.T) {
	tests := []struct {
		name   string
		tables func(t *testing.T) []*dist.Table
		want   error
	}{
		{
			name:   "empty",
			tables: func(t *testing.T) []*dist.Table { return nil },
			want:   dist.ErrShapeMismatch,
		},
		{
			name: "likelihood before its parent",
			tables: func(t *testing.T) []*dist.Table {
				return []*dist.Table{replyLikelihood(t), bpdPrior(t)}
			},
			want: ErrCyclicDependency,
		},
		{
			name: "skips a level",
			tables: func(t *testing.T) []*dist.Table {
				return []*dist.Table{bpdPrior(t), followUpLikelihood(t)}
			},
			want: ErrCyclicDependency,
		},
		{
			name: "variable introduced twice",
			tables: func(t *testing.T) []*dist.Table {
				return []*dist.Table{bpdPrior(t), bpdPrior(t)}
			},
			want: ErrDuplicateVariable,
		},
		{
			name: "conflicting value sets",
			tables: func(t *testing.T) []*dist.Table {
				other := dist.MustVariable("intention", "a", "b", "c")
				l, err := dist.FromMatrix(other, reply, [][]float64{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}})
				require.NoError(t, err)
				return []*dist.Table{bpdPrior(t), l}
			},
			want: dist.ErrShapeMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewJoint(tt.tables(t)...)
			if !errors.Is(err, tt.want) {
				t.Errorf("NewJoint() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCondition_BayesRule(t *testing.T) {
	j, err := NewJoint(bpdPrior(t), replyLikelihood(t))
	require.NoError(t, err)

	conditioned, err := j.Condition("reply", "no_reply")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, conditioned.Total(), tol)

	posterior, err := conditioned.Distribution("intention")
	require.NoError(t, err)

	// 0.6*0.7, 0.3*0.3, 0.1*0.1 over 0.52
	want := []float64{0.42 / 0.52, 0.09 / 0.52, 0.01 / 0.52}
	if diff := cmp.Diff(want, posterior.Probs(), cmpopts.EquateApprox(0, tol)); diff != "" {
		t.Errorf("posterior mismatch (-want +got):\n%s", diff)
	}

	// the source joint is untouched
	p, err := j.ValueAt(dist.Assignment{"intention": "busy", "reply": "quick"})
	require.NoError(t, err)
	assert.InDelta(t, 0.06, p, tol)
}

func TestCondition_ZeroLikelihood(t *testing.T) {
	reply4 := dist.MustVariable("reply", "no_reply", "delayed", "quick", "never")
	l, err := dist.FromMatrix(intention, reply4, [][]float64{
		{0.7, 0.2, 0.1, 0},
		{0.3, 0.5, 0.2, 0},
		{0.1, 0.3, 0.6, 0},
	})
	require.NoError(t, err)
	j, err := NewJoint(bpdPrior(t), l)
	require.NoError(t, err)

	_, err = j.Condition("reply", "never")
	assert.ErrorIs(t, err, ErrZeroLikelihoodObservation)
}

func TestCondition_UnknownObservation(t *testing.T) {
	j, err := NewJoint(bpdPrior(t), replyLikelihood(t))
	require.NoError(t, err)

	_, err = j.Condition("reply", "ghosted")
	assert.ErrorIs(t, err, dist.ErrUnknownAssignment)
	_, err = j.Condition("mood", "low")
	assert.ErrorIs(t, err, dist.ErrUnknownAssignment)
}

func TestMarginal_RecoversPrior(t *testing.T) {
	prior := bpdPrior(t)
	j, err := NewJoint(prior, replyLikelihood(t))
	require.NoError(t, err)

	m, err := j.Distribution("intention")
	require.NoError(t, err)
	assert.True(t, m.ApproxEqual(prior, tol), "got %s", m)

	replies, err := j.Distribution("reply")
	require.NoError(t, err)
	// 0.6*0.7+0.3*0.3+0.1*0.1, ...
	want := []float64{0.52, 0.30, 0.18}
	if diff := cmp.Diff(want, replies.Probs(), cmpopts.EquateApprox(0, tol)); diff != "" {
		t.Errorf("reply marginal mismatch (-want +got):\n%s", diff)
	}
}

func TestMarginal_OrderIndependent(t *testing.T) {
	j, err := NewJoint(bpdPrior(t), replyLikelihood(t), followUpLikelihood(t))
	require.NoError(t, err)

	ab, err := j.Marginal("intention", "follow_up")
	require.NoError(t, err)
	ba, err := j.Marginal("follow_up", "intention")
	require.NoError(t, err)
	assert.Equal(t, ab.Probs(), ba.Probs())

	// sum out reply then follow_up, and follow_up then reply
	viaReply, err := j.Marginal("intention", "follow_up")
	require.NoError(t, err)
	first, err := viaReply.Distribution("intention")
	require.NoError(t, err)

	viaFollowUp, err := j.Marginal("intention", "reply")
	require.NoError(t, err)
	second, err := viaFollowUp.Distribution("intention")
	require.NoError(t, err)

	direct, err := j.Distribution("intention")
	require.NoError(t, err)

	assert.True(t, first.ApproxEqual(second, tol))
	assert.True(t, first.ApproxEqual(direct, tol))
	assert.InDelta(t, 1.0, ab.Total(), tol)
}

func TestMarginal_Errors(t *testing.T) {
	j, err := NewJoint(bpdPrior(t), replyLikelihood(t))
	require.NoError(t, err)

	_, err = j.Marginal()
	assert.ErrorIs(t, err, dist.ErrShapeMismatch)
	_, err = j.Marginal("mood")
	assert.ErrorIs(t, err, dist.ErrUnknownAssignment)
}

func TestExpectation(t *testing.T) {
	prior := bpdPrior(t)

	got, err := Expectation(prior, Is("rejecting"))
	require.NoError(t, err)
	assert.InDelta(t, 0.6, got, tol)

	got, err = Expectation(prior, OneOf("busy", "supportive"))
	require.NoError(t, err)
	assert.InDelta(t, 0.4, got, tol)

	got, err = Expectation(prior, Is("hostile"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	_, err = Expectation(replyLikelihood(t), Is("quick"))
	assert.ErrorIs(t, err, dist.ErrShapeMismatch)
}

func TestJointExpectation(t *testing.T) {
	j, err := NewJoint(bpdPrior(t), replyLikelihood(t))
	require.NoError(t, err)

	got := j.Expectation(func(a dist.Assignment) bool {
		return a["intention"] == "rejecting" && a["reply"] != "quick"
	})
	assert.InDelta(t, 0.6*0.9, got, tol)
}
