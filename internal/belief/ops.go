package belief

import (
	"fmt"

	"github.com/Harshitk-cp/mentalize/internal/dist"
)

// Condition zeroes every entry inconsistent with name = value and renormalizes
// what remains.
func (j *Joint) Condition(name, value string) (*Joint, error) {
	p := j.position(name)
	if p < 0 {
		return nil, fmt.Errorf("%w: cannot observe %s, not in joint", dist.ErrUnknownAssignment, name)
	}
	observed, err := j.vars[p].Index(value)
	if err != nil {
		return nil, err
	}

	mass := make([]float64, len(j.mass))
	var total float64
	for o, m := range j.mass {
		if j.indexOf(o, p) == observed {
			mass[o] = m
			total += m
		}
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: %s=%s has zero prior mass", ErrZeroLikelihoodObservation, name, value)
	}

	for o := range mass {
		mass[o] /= total
	}
	return &Joint{vars: j.vars, strides: j.strides, mass: mass}, nil
}

// Marginal sums out every variable not named in keep. The kept variables
// stay in introduction order regardless of the order they are named in.
func (j *Joint) Marginal(keep ...string) (*Joint, error) {
	if len(keep) == 0 {
		return nil, fmt.Errorf("%w: marginal needs at least one variable", dist.ErrShapeMismatch)
	}

	wanted := make(map[string]bool, len(keep))
	for _, name := range keep {
		if j.position(name) < 0 {
			return nil, fmt.Errorf("%w: no variable %s in joint", dist.ErrUnknownAssignment, name)
		}
		wanted[name] = true
	}

	var positions []int
	var vars []*dist.Variable
	for p, v := range j.vars {
		if wanted[v.Name()] {
			positions = append(positions, p)
			vars = append(vars, v)
		}
	}
	strides := stridesFor(vars)

	size := 1
	for _, v := range vars {
		size *= v.Len()
	}
	mass := make([]float64, size)
	for o, m := range j.mass {
		k := 0
		for i, p := range positions {
			k += j.indexOf(o, p) * strides[i]
		}
		mass[k] += m
	}
	return &Joint{vars: vars, strides: strides, mass: mass}, nil
}

// Distribution returns the marginal of a single variable as a Table.
func (j *Joint) Distribution(name string) (*dist.Table, error) {
	m, err := j.Marginal(name)
	if err != nil {
		return nil, err
	}
	return dist.FromWeights(m.vars[0], m.mass)
}

// Expectation sums the mass of every entry satisfying pred.
func (j *Joint) Expectation(pred func(dist.Assignment) bool) float64 {
	var s float64
	for o, m := range j.mass {
		if m != 0 && pred(j.Assignment(o)) {
			s += m
		}
	}
	return s
}

// Predicate is an indicator over the values of a single variable.
type Predicate func(value string) bool

func Is(value string) Predicate {
	return func(v string) bool { return v == value }
}

func OneOf(values ...string) Predicate {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return func(v string) bool { return set[v] }
}

// Expectation returns the sum of weight * pred(value) over an unconditional table.
func Expectation(t *dist.Table, pred Predicate) (float64, error) {
	if t.Conditional() {
		return 0, fmt.Errorf("%w: expectation over conditional table %s", dist.ErrShapeMismatch, t.Variable().Name())
	}

	v := t.Variable()
	var s float64
	for i := 0; i < v.Len(); i++ {
		if pred(v.Value(i)) {
			s += t.At(0, i)
		}
	}
	return s, nil
}
