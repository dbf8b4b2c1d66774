package inference

import (
	"fmt"

	"github.com/Harshitk-cp/mentalize/internal/dist"
)

// Matrix is indexed [latent][observable].
type Matrix struct {
	Rows   *dist.Variable
	Cols   *dist.Variable
	Values [][]float64
}

func newMatrix(rows, cols *dist.Variable) *Matrix {
	values := make([][]float64, rows.Len())
	for i := range values {
		values[i] = make([]float64, cols.Len())
	}
	return &Matrix{Rows: rows, Cols: cols, Values: values}
}

func (m *Matrix) At(row, col string) (float64, error) {
	r, err := m.Rows.Index(row)
	if err != nil {
		return 0, err
	}
	c, err := m.Cols.Index(col)
	if err != nil {
		return 0, err
	}
	return m.Values[r][c], nil
}

// Column returns a copy of the entries for one observable value.
func (m *Matrix) Column(col string) ([]float64, error) {
	c, err := m.Cols.Index(col)
	if err != nil {
		return nil, err
	}
	out := make([]float64, m.Rows.Len())
	for r := range out {
		out[r] = m.Values[r][c]
	}
	return out, nil
}

// JointMatrix returns the unconditioned P(latent, observable).
func (e *Engine) JointMatrix(s Subject) (*Matrix, error) {
	if s.Likelihood == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoLikelihood, s.Name)
	}
	in, err := e.Begin(s)
	if err != nil {
		return nil, err
	}

	latent, observable := s.Latent(), s.Observable()
	m := newMatrix(latent, observable)
	for r := 0; r < latent.Len(); r++ {
		for c := 0; c < observable.Len(); c++ {
			p, err := in.Joint().ValueAt(dist.Assignment{
				latent.Name():     latent.Value(r),
				observable.Name(): observable.Value(c),
			})
			if err != nil {
				return nil, err
			}
			m.Values[r][c] = p
		}
	}
	return m, nil
}

// PosteriorMatrix returns P(latent | observable) for every observable value;
// each column sums to 1. An observable value with zero prior mass fails the
// whole matrix.
func (e *Engine) PosteriorMatrix(s Subject) (*Matrix, error) {
	return e.columns(s, func(obs *Observation) (*dist.Table, error) {
		return e.Infer(s, obs)
	})
}

// ChoiceMatrix is PosteriorMatrix computed through the observer's choice.
func (e *Engine) ChoiceMatrix(s Subject) (*Matrix, error) {
	return e.columns(s, func(obs *Observation) (*dist.Table, error) {
		c, err := e.Choose(s, obs)
		if err != nil {
			return nil, err
		}
		return c.Guess, nil
	})
}

func (e *Engine) columns(s Subject, column func(*Observation) (*dist.Table, error)) (*Matrix, error) {
	if s.Likelihood == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoLikelihood, s.Name)
	}
	if s.Prior == nil {
		return nil, fmt.Errorf("%w: %s has no prior", ErrInvalidSubject, s.Name)
	}

	latent, observable := s.Latent(), s.Observable()
	m := newMatrix(latent, observable)
	for c := 0; c < observable.Len(); c++ {
		t, err := column(Observe(observable.Name(), observable.Value(c)))
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", observable.Value(c), err)
		}
		for r := 0; r < latent.Len(); r++ {
			m.Values[r][c] = t.At(0, r)
		}
	}
	return m, nil
}
