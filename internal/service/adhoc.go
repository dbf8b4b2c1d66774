package service

import (
	"context"
	"fmt"

	"github.com/Harshitk-cp/mentalize/internal/dist"
	"github.com/Harshitk-cp/mentalize/internal/domain"
	"github.com/Harshitk-cp/mentalize/internal/scenario"
)

// InferAdHoc evaluates an inline scenario without consulting the catalog. The
// run is not recorded.
func (s *ScenarioService) InferAdHoc(ctx context.Context, sc domain.Scenario, req EvaluateRequest) (*domain.Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	compiled, err := scenario.Compile(sc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if req.Profile == "" && len(sc.Profiles) == 1 {
		req.Profile = sc.Profiles[0].Name
	}
	req.Scenario = sc.Name
	return s.evaluateCompiled(compiled, req)
}

type BlendRequest struct {
	Values    []string  `json:"values"`
	Posterior []float64 `json:"posterior"`
	Prior     []float64 `json:"prior"`
	Lambda    *float64  `json:"lambda"`
}

type BlendResult struct {
	Lambda float64            `json:"lambda"`
	Belief map[string]float64 `json:"belief"`
	Probs  []float64          `json:"probs"`
}

// Blend mixes two distributions over the same values. Both inputs are
// normalized before mixing; the mix itself is not.
func (s *ScenarioService) Blend(req BlendRequest) (*BlendResult, error) {
	if req.Lambda == nil {
		return nil, fmt.Errorf("%w: lambda is required", ErrInvalidRequest)
	}
	lambda := *req.Lambda
	v, err := dist.NewVariable("belief", req.Values...)
	if err != nil {
		return nil, fmt.Errorf("%w: values: %w", ErrInvalidRequest, err)
	}
	posterior, err := dist.FromWeights(v, req.Posterior)
	if err != nil {
		return nil, fmt.Errorf("%w: posterior: %w", ErrInvalidRequest, err)
	}
	prior, err := dist.FromWeights(v, req.Prior)
	if err != nil {
		return nil, fmt.Errorf("%w: prior: %w", ErrInvalidRequest, err)
	}
	mixed, err := s.engine.Blend(posterior, prior, lambda)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return &BlendResult{Lambda: lambda, Belief: mixed.Map(), Probs: mixed.Probs()}, nil
}
