package inference

import (
	"errors"
	"fmt"

	"github.com/Harshitk-cp/mentalize/internal/belief"
	"github.com/Harshitk-cp/mentalize/internal/dist"
	"go.uber.org/zap"
)

var (
	ErrInvalidSubject        = errors.New("invalid subject")
	ErrNoLikelihood          = errors.New("subject has no likelihood table")
	ErrInvalidTransition     = errors.New("invalid inference transition")
	ErrInvalidEvidenceWeight = fmt.Errorf("%w: evidence weight outside [0,1]", dist.ErrInvalidWeight)
	ErrUnknownStressLevel    = errors.New("unknown stress level")
)

// Subject is the observer's model of another agent: a prior over the
// subject's latent state and, optionally, the likelihood of an observable
// behavior given that state.
type Subject struct {
	Name     string
	Observer string

	Prior      *dist.Table // P(latent)
	Likelihood *dist.Table // P(observable | latent), nil when nothing is observable
}

func (s Subject) Latent() *dist.Variable {
	if s.Prior == nil {
		return nil
	}
	return s.Prior.Variable()
}

func (s Subject) Observable() *dist.Variable {
	if s.Likelihood == nil {
		return nil
	}
	return s.Likelihood.Variable()
}

func (s Subject) tables() ([]*dist.Table, error) {
	if s.Prior == nil {
		return nil, fmt.Errorf("%w: %s has no prior", ErrInvalidSubject, s.Name)
	}
	if s.Prior.Conditional() {
		return nil, fmt.Errorf("%w: prior of %s is conditional on %s", ErrInvalidSubject, s.Name, s.Prior.Given().Name())
	}
	if s.Likelihood == nil {
		return []*dist.Table{s.Prior}, nil
	}
	return []*dist.Table{s.Prior, s.Likelihood}, nil
}

// Observation assigns a value to one of the subject's variables.
type Observation struct {
	Variable string `json:"variable" yaml:"variable"`
	Value    string `json:"value" yaml:"value"`
}

func Observe(variable, value string) *Observation {
	return &Observation{Variable: variable, Value: value}
}

func (o *Observation) String() string {
	if o == nil {
		return "none"
	}
	return o.Variable + "=" + o.Value
}

// Engine evaluates observer-about-subject inference. It holds no state
// between calls and is safe for concurrent use.
type Engine struct {
	logger *zap.Logger
}

func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Infer runs direct inference: build the joint, condition on obs when it is
// non-nil, and return the posterior marginal over the latent variable. A nil
// obs returns the prior marginal with no evidence incorporated.
func (e *Engine) Infer(s Subject, obs *Observation) (*dist.Table, error) {
	in, err := e.Begin(s)
	if err != nil {
		return nil, err
	}
	if obs != nil {
		if err := in.Condition(*obs); err != nil {
			return nil, err
		}
	}
	return in.Marginalize(s.Latent().Name())
}

// PsychicEquivalence reports the prior as belief. Unlike Infer with a nil
// observation, the joint is built from the prior alone and the likelihood is
// never consulted.
func (e *Engine) PsychicEquivalence(s Subject) (*dist.Table, error) {
	if _, err := s.tables(); err != nil {
		return nil, err
	}

	j, err := belief.NewJoint(s.Prior)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("psychic equivalence",
		zap.String("subject", s.Name),
		zap.String("observer", s.Observer))

	return j.Distribution(s.Latent().Name())
}

// Expect returns P(latent == value) after conditioning on obs.
func (e *Engine) Expect(s Subject, obs *Observation, value string) (float64, error) {
	posterior, err := e.Infer(s, obs)
	if err != nil {
		return 0, err
	}
	if !posterior.Variable().Has(value) {
		return 0, fmt.Errorf("%w: %q is not a value of %s", dist.ErrUnknownAssignment, value, posterior.Variable().Name())
	}
	return belief.Expectation(posterior, belief.Is(value))
}
