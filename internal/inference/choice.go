package inference

import (
	"fmt"

	"github.com/Harshitk-cp/mentalize/internal/belief"
	"github.com/Harshitk-cp/mentalize/internal/dist"
	"go.uber.org/zap"
)

// Choice is the second tier of nested inference: the observer's guess about
// the subject's latent state, weighted by the observer's posterior belief.
type Choice struct {
	// Belief is the direct posterior over the subject's latent variable.
	Belief *dist.Table
	// Guess is the observer's choice distribution over a variable whose value
	// set mirrors the latent variable.
	Guess *dist.Table
}

// ChoiceVariable names the observer's guess about a latent variable.
func ChoiceVariable(latent *dist.Variable) (*dist.Variable, error) {
	return latent.Rename(latent.Name() + "_guess")
}

// Choose runs direct inference and feeds E[latent == m] for every m in as the
// weights of the observer's guess.
func (e *Engine) Choose(s Subject, obs *Observation) (*Choice, error) {
	posterior, err := e.Infer(s, obs)
	if err != nil {
		return nil, err
	}

	latent := posterior.Variable()
	guessVar, err := ChoiceVariable(latent)
	if err != nil {
		return nil, err
	}

	weights := make([]float64, latent.Len())
	for i := range weights {
		if weights[i], err = belief.Expectation(posterior, belief.Is(latent.Value(i))); err != nil {
			return nil, err
		}
	}
	choice, err := dist.FromWeights(guessVar, weights)
	if err != nil {
		return nil, fmt.Errorf("choice weights for %s: %w", s.Observer, err)
	}

	j, err := belief.NewJoint(choice)
	if err != nil {
		return nil, err
	}
	guess, err := j.Distribution(guessVar.Name())
	if err != nil {
		return nil, err
	}

	e.logger.Debug("observer choice",
		zap.String("subject", s.Name),
		zap.String("observer", s.Observer),
		zap.String("variable", guessVar.Name()),
		zap.Stringer("observation", obs))

	return &Choice{Belief: posterior, Guess: guess}, nil
}

// Expect returns E[guess == value].
func (c *Choice) Expect(value string) (float64, error) {
	if !c.Guess.Variable().Has(value) {
		return 0, fmt.Errorf("%w: %q is not a value of %s", dist.ErrUnknownAssignment, value, c.Guess.Variable().Name())
	}
	return belief.Expectation(c.Guess, belief.Is(value))
}
