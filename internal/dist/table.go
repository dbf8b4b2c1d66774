package dist

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Assignment maps variable names to values. Lookups ignore entries for
// variables the table does not range over.
type Assignment map[string]string

// WeightFunc returns the unnormalized prior weight of a value.
type WeightFunc func(value string) float64

// LikelihoodFunc returns the unnormalized weight of conditioned given conditioning.
type LikelihoodFunc func(conditioned, conditioning string) float64

// Table is an immutable finite distribution P(variable), or a conditional
// distribution P(variable | given) when given is set. Every row sums to 1.
type Table struct {
	variable *Variable
	given    *Variable
	// row-major: probs[g*variable.Len()+v]; a single row when given is nil
	probs []float64
}

// FromPrior evaluates weight at every value of v in declaration order and
// normalizes the result.
func FromPrior(v *Variable, weight WeightFunc) (*Table, error) {
	raw := make([]float64, v.Len())
	for i := range raw {
		raw[i] = weight(v.Value(i))
	}

	probs, err := normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("prior over %s: %w", v.Name(), err)
	}
	return &Table{variable: v, probs: probs}, nil
}

// FromWeights builds a prior from a weight vector indexed like v's value set.
func FromWeights(v *Variable, weights []float64) (*Table, error) {
	if len(weights) != v.Len() {
		return nil, fmt.Errorf("%w: %d weights for %d values of %s", ErrShapeMismatch, len(weights), v.Len(), v.Name())
	}
	return FromPrior(v, func(value string) float64 {
		return weights[v.index[value]]
	})
}

// FromLikelihood evaluates weight(conditioned, conditioning) for every pair and
// normalizes each conditioning row independently.
func FromLikelihood(given, v *Variable, weight LikelihoodFunc) (*Table, error) {
	if given.Name() == v.Name() {
		return nil, fmt.Errorf("%w: %s cannot condition on itself", ErrInvalidVariable, v.Name())
	}

	n := v.Len()
	probs := make([]float64, 0, given.Len()*n)
	raw := make([]float64, n)
	for g := 0; g < given.Len(); g++ {
		for i := range raw {
			raw[i] = weight(v.Value(i), given.Value(g))
		}
		row, err := normalize(raw)
		if err != nil {
			return nil, fmt.Errorf("likelihood of %s given %s=%s: %w", v.Name(), given.Name(), given.Value(g), err)
		}
		probs = append(probs, row...)
	}
	return &Table{variable: v, given: given, probs: probs}, nil
}

// FromMatrix builds P(v | given) from rows indexed by given's values and
// columns indexed by v's values.
func FromMatrix(given, v *Variable, rows [][]float64) (*Table, error) {
	if len(rows) != given.Len() {
		return nil, fmt.Errorf("%w: %d rows for %d values of %s", ErrShapeMismatch, len(rows), given.Len(), given.Name())
	}
	for g, row := range rows {
		if len(row) != v.Len() {
			return nil, fmt.Errorf("%w: row %s has %d columns for %d values of %s", ErrShapeMismatch, given.Value(g), len(row), v.Len(), v.Name())
		}
	}
	return FromLikelihood(given, v, func(conditioned, conditioning string) float64 {
		return rows[given.index[conditioning]][v.index[conditioned]]
	})
}

func normalize(raw []float64) ([]float64, error) {
	var sum float64
	for i, w := range raw {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: %v at index %d", ErrInvalidWeight, w, i)
		}
		sum += w
	}
	if math.IsInf(sum, 0) {
		return normalizeScaled(raw), nil
	}
	if sum <= 0 {
		return nil, fmt.Errorf("%w: weights sum to %v", ErrDegenerateDistribution, sum)
	}

	out := make([]float64, len(raw))
	for i, w := range raw {
		out[i] = w / sum
	}
	return out, nil
}

// normalizeScaled divides by the largest weight before summing so that finite
// weights whose sum overflows still normalize.
func normalizeScaled(raw []float64) []float64 {
	peak := slices.Max(raw)
	var sum float64
	for _, w := range raw {
		sum += w / peak
	}
	out := make([]float64, len(raw))
	for i, w := range raw {
		out[i] = (w / peak) / sum
	}
	return out
}

// Variable returns the conditioned variable.
func (t *Table) Variable() *Variable { return t.variable }

// Given returns the conditioning variable, or nil for an unconditional table.
func (t *Table) Given() *Variable { return t.given }

func (t *Table) Conditional() bool { return t.given != nil }

// At returns the entry for the given row and value indices. Unconditional
// tables have a single row 0.
func (t *Table) At(row, value int) float64 {
	return t.probs[row*t.variable.Len()+value]
}

func (t *Table) ValueAt(a Assignment) (float64, error) {
	v, ok := a[t.variable.Name()]
	if !ok {
		return 0, fmt.Errorf("%w: no value for %s", ErrUnknownAssignment, t.variable.Name())
	}
	vi, err := t.variable.Index(v)
	if err != nil {
		return 0, err
	}

	row := 0
	if t.given != nil {
		g, ok := a[t.given.Name()]
		if !ok {
			return 0, fmt.Errorf("%w: no value for %s", ErrUnknownAssignment, t.given.Name())
		}
		if row, err = t.given.Index(g); err != nil {
			return 0, err
		}
	}
	return t.At(row, vi), nil
}

// Prob returns P(variable = value) of an unconditional table.
func (t *Table) Prob(value string) (float64, error) {
	if t.given != nil {
		return 0, fmt.Errorf("%w: %s is conditional on %s", ErrShapeMismatch, t.variable.Name(), t.given.Name())
	}
	return t.ValueAt(Assignment{t.variable.Name(): value})
}

// Probs returns a copy of all entries, row-major.
func (t *Table) Probs() []float64 { return slices.Clone(t.probs) }

// Row returns a copy of P(variable | given = value).
func (t *Table) Row(value string) ([]float64, error) {
	if t.given == nil {
		return nil, fmt.Errorf("%w: %s is unconditional", ErrShapeMismatch, t.variable.Name())
	}
	g, err := t.given.Index(value)
	if err != nil {
		return nil, err
	}
	n := t.variable.Len()
	return slices.Clone(t.probs[g*n : (g+1)*n]), nil
}

// Map returns value -> probability for an unconditional table.
func (t *Table) Map() map[string]float64 {
	out := make(map[string]float64, t.variable.Len())
	for i := 0; i < t.variable.Len(); i++ {
		out[t.variable.Value(i)] = t.probs[i]
	}
	return out
}

// Mode returns the most probable value of an unconditional table; ties go to
// the earliest declared value.
func (t *Table) Mode() (string, float64) {
	best := 0
	for i := 1; i < t.variable.Len(); i++ {
		if t.probs[i] > t.probs[best] {
			best = i
		}
	}
	return t.variable.Value(best), t.probs[best]
}

// SameShape reports whether both tables range over the same value sets.
func (t *Table) SameShape(o *Table) bool {
	return t.variable.SameValues(o.variable) && t.given.SameValues(o.given)
}

// ApproxEqual reports whether both tables have the same shape and every
// entry differs by at most tol.
func (t *Table) ApproxEqual(o *Table, tol float64) bool {
	if !t.SameShape(o) {
		return false
	}
	for i := range t.probs {
		if math.Abs(t.probs[i]-o.probs[i]) > tol {
			return false
		}
	}
	return true
}

func (t *Table) String() string {
	var b strings.Builder
	n := t.variable.Len()
	if t.given == nil {
		b.WriteString("P(" + t.variable.Name() + ")")
		for i := 0; i < n; i++ {
			fmt.Fprintf(&b, " %s=%.4f", t.variable.Value(i), t.probs[i])
		}
		return b.String()
	}

	fmt.Fprintf(&b, "P(%s | %s)", t.variable.Name(), t.given.Name())
	for g := 0; g < t.given.Len(); g++ {
		fmt.Fprintf(&b, "\n  %s:", t.given.Value(g))
		for i := 0; i < n; i++ {
			fmt.Fprintf(&b, " %s=%.4f", t.variable.Value(i), t.probs[g*n+i])
		}
	}
	return b.String()
}
