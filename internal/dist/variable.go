package dist

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrInvalidVariable        = errors.New("invalid variable")
	ErrInvalidWeight          = errors.New("invalid weight")
	ErrDegenerateDistribution = errors.New("degenerate distribution")
	ErrUnknownAssignment      = errors.New("unknown assignment")
	ErrShapeMismatch          = errors.New("shape mismatch")
)

// Variable is a named discrete random variable with a fixed, ordered value set.
// Two variables are the same variable when their names and value sets match.
type Variable struct {
	name   string
	values []string
	index  map[string]int
}

func NewVariable(name string, values ...string) (*Variable, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidVariable)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %s has no values", ErrInvalidVariable, name)
	}

	index := make(map[string]int, len(values))
	for i, v := range values {
		if v == "" {
			return nil, fmt.Errorf("%w: %s has an empty value at %d", ErrInvalidVariable, name, i)
		}
		if _, dup := index[v]; dup {
			return nil, fmt.Errorf("%w: %s has duplicate value %q", ErrInvalidVariable, name, v)
		}
		index[v] = i
	}

	return &Variable{
		name:   name,
		values: slices.Clone(values),
		index:  index,
	}, nil
}

// MustVariable is NewVariable for package-level fixtures; it panics on error.
func MustVariable(name string, values ...string) *Variable {
	v, err := NewVariable(name, values...)
	if err != nil {
		panic(err)
	}
	return v
}

func (v *Variable) Name() string { return v.name }

func (v *Variable) Len() int { return len(v.values) }

// Values returns a copy of the value set in declaration order.
func (v *Variable) Values() []string { return slices.Clone(v.values) }

func (v *Variable) Value(i int) string { return v.values[i] }

// Index returns the position of value in the value set.
func (v *Variable) Index(value string) (int, error) {
	i, ok := v.index[value]
	if !ok {
		return 0, fmt.Errorf("%w: %q is not a value of %s", ErrUnknownAssignment, value, v.name)
	}
	return i, nil
}

func (v *Variable) Has(value string) bool {
	_, ok := v.index[value]
	return ok
}

// SameValues reports whether both variables range over the same ordered value set.
func (v *Variable) SameValues(o *Variable) bool {
	if v == nil || o == nil {
		return v == o
	}
	return slices.Equal(v.values, o.values)
}

func (v *Variable) Equal(o *Variable) bool {
	if v == nil || o == nil {
		return v == o
	}
	return v.name == o.name && v.SameValues(o)
}

// Rename returns a variable with the same value set under a new name.
func (v *Variable) Rename(name string) (*Variable, error) {
	return NewVariable(name, v.values...)
}

func (v *Variable) String() string {
	return fmt.Sprintf("%s%v", v.name, v.values)
}
