package scenario

import (
	"errors"
	"fmt"

	"github.com/Harshitk-cp/mentalize/internal/dist"
	"github.com/Harshitk-cp/mentalize/internal/domain"
	"github.com/Harshitk-cp/mentalize/internal/inference"
)

var (
	ErrInvalidScenario = errors.New("invalid scenario")
	ErrUnknownProfile  = errors.New("unknown profile")
)

// Compiled holds the immutable tables built from a Scenario record. It is
// safe to share across goroutines.
type Compiled struct {
	Scenario   domain.Scenario
	Latent     *dist.Variable
	Observable *dist.Variable
	Likelihood *dist.Table
	Weights    inference.EvidenceWeights

	priors map[string]*dist.Table
}

// Compile validates s and builds its tables.
func Compile(s domain.Scenario) (*Compiled, error) {
	c, err := compile(s)
	if err != nil {
		if s.Name == "" {
			return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidScenario, s.Name, err)
	}
	return c, nil
}

func Validate(s domain.Scenario) error {
	_, err := Compile(s)
	return err
}

func compile(s domain.Scenario) (*Compiled, error) {
	if s.Name == "" {
		return nil, errors.New("name is required")
	}
	if s.Subject == "" {
		return nil, errors.New("subject is required")
	}

	latent, err := dist.NewVariable(s.Latent.Name, s.Latent.Values...)
	if err != nil {
		return nil, fmt.Errorf("latent: %w", err)
	}
	observable, err := dist.NewVariable(s.Observable.Name, s.Observable.Values...)
	if err != nil {
		return nil, fmt.Errorf("observable: %w", err)
	}
	if latent.Name() == observable.Name() {
		return nil, fmt.Errorf("latent and observable are both named %s", latent.Name())
	}
	likelihood, err := dist.FromMatrix(latent, observable, s.Likelihood)
	if err != nil {
		return nil, fmt.Errorf("likelihood: %w", err)
	}

	weights := inference.DefaultEvidenceWeights
	if len(s.StressWeights) > 0 {
		if len(s.StressWeights) != len(weights) {
			return nil, fmt.Errorf("stress_weights: %w: want %d weights, got %d", dist.ErrShapeMismatch, len(weights), len(s.StressWeights))
		}
		copy(weights[:], s.StressWeights)
		if err := weights.Validate(); err != nil {
			return nil, fmt.Errorf("stress_weights: %w", err)
		}
	}

	if len(s.Profiles) == 0 {
		return nil, errors.New("at least one profile is required")
	}
	priors := make(map[string]*dist.Table, len(s.Profiles))
	for _, p := range s.Profiles {
		if p.Name == "" {
			return nil, errors.New("profile name is required")
		}
		if _, dup := priors[p.Name]; dup {
			return nil, fmt.Errorf("duplicate profile %s", p.Name)
		}
		if p.Mode != "" && !domain.ValidMode(string(p.Mode)) {
			return nil, fmt.Errorf("profile %s: invalid mode %q", p.Name, p.Mode)
		}
		prior, err := dist.FromWeights(latent, p.Prior)
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", p.Name, err)
		}
		priors[p.Name] = prior
	}

	return &Compiled{
		Scenario:   s,
		Latent:     latent,
		Observable: observable,
		Likelihood: likelihood,
		Weights:    weights,
		priors:     priors,
	}, nil
}

// Subject returns the observer's model of the subject under the named profile.
func (c *Compiled) Subject(profile string) (inference.Subject, *domain.Profile, error) {
	p, ok := c.Scenario.Profile(profile)
	if !ok {
		return inference.Subject{}, nil, fmt.Errorf("%w: %s has no profile %s", ErrUnknownProfile, c.Scenario.Name, profile)
	}

	observer := p.Observer
	if observer == "" {
		observer = p.Name
	}
	return inference.Subject{
		Name:       c.Scenario.Subject,
		Observer:   observer,
		Prior:      c.priors[p.Name],
		Likelihood: c.Likelihood,
	}, p, nil
}

// Observation builds an observation of the scenario's observable variable.
// An empty value means no evidence.
func (c *Compiled) Observation(value string) (*inference.Observation, error) {
	if value == "" {
		return nil, nil
	}
	if !c.Observable.Has(value) {
		return nil, fmt.Errorf("%w: %q is not a value of %s", dist.ErrUnknownAssignment, value, c.Observable.Name())
	}
	return inference.Observe(c.Observable.Name(), value), nil
}
