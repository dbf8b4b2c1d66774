package inference

import (
	"fmt"
	"math"
	"strings"

	"github.com/Harshitk-cp/mentalize/internal/dist"
	"go.uber.org/zap"
)

// StressLevel scales how much of the observed evidence an observer uses.
type StressLevel int

const (
	StressLow StressLevel = iota
	StressModerate
	StressHigh
)

func (l StressLevel) String() string {
	switch l {
	case StressLow:
		return "low"
	case StressModerate:
		return "moderate"
	case StressHigh:
		return "high"
	default:
		return fmt.Sprintf("stress(%d)", int(l))
	}
}

func ParseStressLevel(s string) (StressLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "0":
		return StressLow, nil
	case "moderate", "medium", "1":
		return StressModerate, nil
	case "high", "2":
		return StressHigh, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStressLevel, s)
}

func AllStressLevels() []StressLevel {
	return []StressLevel{StressLow, StressModerate, StressHigh}
}

// EvidenceWeights maps each stress level to lambda, the share of the
// posterior kept when blending with the prior.
type EvidenceWeights [3]float64

var DefaultEvidenceWeights = EvidenceWeights{1.0, 0.5, 0.1}

func (w EvidenceWeights) For(l StressLevel) (float64, error) {
	if l < StressLow || l > StressHigh {
		return 0, fmt.Errorf("%w: %d", ErrUnknownStressLevel, int(l))
	}
	return w[l], nil
}

func (w EvidenceWeights) Validate() error {
	for i, lambda := range w {
		if err := validateEvidenceWeight(lambda); err != nil {
			return fmt.Errorf("%s: %w", StressLevel(i), err)
		}
	}
	return nil
}

func validateEvidenceWeight(lambda float64) error {
	if math.IsNaN(lambda) || lambda < 0 || lambda > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidEvidenceWeight, lambda)
	}
	return nil
}

// Blend returns lambda*posterior + (1-lambda)*prior. Lambda 1 is full
// Bayesian updating, lambda 0 is the prior alone.
func (e *Engine) Blend(posterior, prior *dist.Table, lambda float64) (*dist.Table, error) {
	if err := validateEvidenceWeight(lambda); err != nil {
		return nil, err
	}
	return dist.Mix(posterior, prior, lambda)
}

// WithEvidenceWeight infers the posterior for obs and blends it with the
// psychic-equivalence prior.
func (e *Engine) WithEvidenceWeight(s Subject, obs *Observation, lambda float64) (*dist.Table, error) {
	if err := validateEvidenceWeight(lambda); err != nil {
		return nil, err
	}

	posterior, err := e.Infer(s, obs)
	if err != nil {
		return nil, err
	}
	prior, err := e.PsychicEquivalence(s)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("blending posterior with prior",
		zap.String("subject", s.Name),
		zap.String("observer", s.Observer),
		zap.Stringer("observation", obs),
		zap.Float64("evidence_weight", lambda))

	return e.Blend(posterior, prior, lambda)
}

// UnderStress is WithEvidenceWeight at the lambda configured for level.
func (e *Engine) UnderStress(s Subject, obs *Observation, level StressLevel, weights EvidenceWeights) (*dist.Table, error) {
	lambda, err := weights.For(level)
	if err != nil {
		return nil, err
	}
	return e.WithEvidenceWeight(s, obs, lambda)
}
