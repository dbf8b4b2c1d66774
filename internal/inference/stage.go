package inference

import (
	"fmt"

	"github.com/Harshitk-cp/mentalize/internal/belief"
	"github.com/Harshitk-cp/mentalize/internal/dist"
	"go.uber.org/zap"
)

type Stage int

const (
	StageUnconditioned Stage = iota
	StageConditioned
	StageMarginalized
)

func (s Stage) String() string {
	switch s {
	case StageUnconditioned:
		return "unconditioned"
	case StageConditioned:
		return "conditioned"
	case StageMarginalized:
		return "marginalized"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Inference is one pass over a subject's joint model. Stages only move
// forward: Unconditioned, then optionally Conditioned, then Marginalized.
// An Inference is not safe for concurrent use; start one per query.
type Inference struct {
	subject     Subject
	stage       Stage
	joint       *belief.Joint
	observation *Observation
	logger      *zap.Logger
}

// Begin builds the subject's joint model.
func (e *Engine) Begin(s Subject) (*Inference, error) {
	tables, err := s.tables()
	if err != nil {
		return nil, err
	}
	j, err := belief.NewJoint(tables...)
	if err != nil {
		return nil, fmt.Errorf("joint model of %s: %w", s.Name, err)
	}

	e.logger.Debug("inference stage",
		zap.String("subject", s.Name),
		zap.String("observer", s.Observer),
		zap.Stringer("stage", StageUnconditioned),
		zap.Int("joint_size", j.Size()))

	return &Inference{subject: s, stage: StageUnconditioned, joint: j, logger: e.logger}, nil
}

func (in *Inference) Stage() Stage { return in.stage }

func (in *Inference) Joint() *belief.Joint { return in.joint }

func (in *Inference) Observation() *Observation { return in.observation }

// Condition incorporates a single observation.
func (in *Inference) Condition(obs Observation) error {
	if in.stage != StageUnconditioned {
		return fmt.Errorf("%w: cannot condition from %s", ErrInvalidTransition, in.stage)
	}
	if in.subject.Likelihood == nil && obs.Variable != in.subject.Latent().Name() {
		return fmt.Errorf("%w: cannot observe %s for %s", ErrNoLikelihood, obs.Variable, in.subject.Name)
	}

	j, err := in.joint.Condition(obs.Variable, obs.Value)
	if err != nil {
		return err
	}
	in.joint = j
	in.observation = &obs
	in.stage = StageConditioned

	in.logger.Debug("inference stage",
		zap.String("subject", in.subject.Name),
		zap.String("observer", in.subject.Observer),
		zap.Stringer("stage", in.stage),
		zap.Stringer("observation", in.observation))
	return nil
}

// Marginalize reduces the joint to the named variable and ends the pass.
func (in *Inference) Marginalize(name string) (*dist.Table, error) {
	if in.stage == StageMarginalized {
		return nil, fmt.Errorf("%w: already marginalized", ErrInvalidTransition)
	}

	t, err := in.joint.Distribution(name)
	if err != nil {
		return nil, err
	}
	in.stage = StageMarginalized

	in.logger.Debug("inference stage",
		zap.String("subject", in.subject.Name),
		zap.String("observer", in.subject.Observer),
		zap.Stringer("stage", in.stage),
		zap.String("variable", name),
		zap.Bool("evidence", in.observation != nil))
	return t, nil
}
