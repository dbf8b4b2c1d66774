package dist

import (
	"fmt"
	"math"
)

// Mix returns the convex combination lambda*a + (1-lambda)*b. The result keeps
// a's variables and is not renormalized, so lambda 1 and 0 reproduce a and b
// exactly.
func Mix(a, b *Table, lambda float64) (*Table, error) {
	if math.IsNaN(lambda) || lambda < 0 || lambda > 1 {
		return nil, fmt.Errorf("%w: mixing weight %v outside [0,1]", ErrInvalidWeight, lambda)
	}
	if !a.SameShape(b) {
		return nil, fmt.Errorf("%w: cannot mix %s with %s", ErrShapeMismatch, a.variable, b.variable)
	}

	probs := make([]float64, len(a.probs))
	for i := range probs {
		probs[i] = lambda*a.probs[i] + (1-lambda)*b.probs[i]
	}
	return &Table{variable: a.variable, given: a.given, probs: probs}, nil
}
