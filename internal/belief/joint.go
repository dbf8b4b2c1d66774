package belief

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Harshitk-cp/mentalize/internal/dist"
)

var (
	ErrCyclicDependency          = errors.New("cyclic dependency")
	ErrDuplicateVariable         = errors.New("duplicate variable")
	ErrZeroLikelihoodObservation = errors.New("zero likelihood observation")
)

// Joint is an immutable joint distribution over the variables introduced by
// an ordered sequence of tables. The last introduced variable varies fastest
// in the mass layout.
type Joint struct {
	vars    []*dist.Variable
	strides []int
	mass    []float64
}

// NewJoint multiplies tables by the chain rule in the order given. Table i may
// condition only on a variable introduced by tables 0..i-1.
func NewJoint(tables ...*dist.Table) (*Joint, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("%w: no tables", dist.ErrShapeMismatch)
	}

	j := &Joint{mass: []float64{1}}
	for i, t := range tables {
		next, err := j.extend(t)
		if err != nil {
			return nil, fmt.Errorf("table %d: %w", i, err)
		}
		j = next
	}
	return j, nil
}

func (j *Joint) extend(t *dist.Table) (*Joint, error) {
	v := t.Variable()
	parent := -1
	if g := t.Given(); g != nil {
		parent = j.position(g.Name())
		if parent < 0 {
			return nil, fmt.Errorf("%w: %s depends on %s, which is not introduced yet", ErrCyclicDependency, v.Name(), g.Name())
		}
		if !j.vars[parent].SameValues(g) {
			return nil, fmt.Errorf("%w: %s is declared as %s and %s", dist.ErrShapeMismatch, g.Name(), j.vars[parent], g)
		}
	}
	if j.position(v.Name()) >= 0 {
		return nil, fmt.Errorf("%w: %s is already introduced", ErrDuplicateVariable, v.Name())
	}

	n := v.Len()
	mass := make([]float64, len(j.mass)*n)
	for o, m := range j.mass {
		row := 0
		if parent >= 0 {
			row = (o / j.strides[parent]) % j.vars[parent].Len()
		}
		for k := 0; k < n; k++ {
			mass[o*n+k] = m * t.At(row, k)
		}
	}

	vars := append(slices.Clone(j.vars), v)
	return &Joint{vars: vars, strides: stridesFor(vars), mass: mass}, nil
}

func stridesFor(vars []*dist.Variable) []int {
	strides := make([]int, len(vars))
	s := 1
	for i := len(vars) - 1; i >= 0; i-- {
		strides[i] = s
		s *= vars[i].Len()
	}
	return strides
}

func (j *Joint) position(name string) int {
	for i, v := range j.vars {
		if v.Name() == name {
			return i
		}
	}
	return -1
}

func (j *Joint) indexOf(o, pos int) int {
	return (o / j.strides[pos]) % j.vars[pos].Len()
}

// Variables returns the joint's variables in introduction order.
func (j *Joint) Variables() []*dist.Variable { return slices.Clone(j.vars) }

func (j *Joint) Variable(name string) (*dist.Variable, error) {
	p := j.position(name)
	if p < 0 {
		return nil, fmt.Errorf("%w: no variable %s in joint", dist.ErrUnknownAssignment, name)
	}
	return j.vars[p], nil
}

// Size is the number of joint entries.
func (j *Joint) Size() int { return len(j.mass) }

// Probs returns a copy of the mass, laid out with the last variable fastest.
func (j *Joint) Probs() []float64 { return slices.Clone(j.mass) }

// Total sums the mass in ascending index order.
func (j *Joint) Total() float64 {
	var s float64
	for _, m := range j.mass {
		s += m
	}
	return s
}

// Assignment returns the full assignment of entry o.
func (j *Joint) Assignment(o int) dist.Assignment {
	a := make(dist.Assignment, len(j.vars))
	for p, v := range j.vars {
		a[v.Name()] = v.Value(j.indexOf(o, p))
	}
	return a
}

// ValueAt looks up a full assignment. Every joint variable must be assigned.
func (j *Joint) ValueAt(a dist.Assignment) (float64, error) {
	o := 0
	for p, v := range j.vars {
		value, ok := a[v.Name()]
		if !ok {
			return 0, fmt.Errorf("%w: no value for %s", dist.ErrUnknownAssignment, v.Name())
		}
		i, err := v.Index(value)
		if err != nil {
			return 0, err
		}
		o += i * j.strides[p]
	}
	return j.mass[o], nil
}
