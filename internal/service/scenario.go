package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Harshitk-cp/mentalize/internal/dist"
	"github.com/Harshitk-cp/mentalize/internal/domain"
	"github.com/Harshitk-cp/mentalize/internal/inference"
	"github.com/Harshitk-cp/mentalize/internal/scenario"
	"github.com/Harshitk-cp/mentalize/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrScenarioNotFound = scenario.ErrScenarioNotFound
	ErrProfileNotFound  = errors.New("profile not found")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrRunsDisabled     = errors.New("run history is disabled")
	ErrRunNotFound      = errors.New("run not found")
)

const (
	DefaultConcurrency = 4
	DefaultListLimit   = 20
	MaxListLimit       = 100
	DefaultSimilarK    = 5
	MaxSimilarK        = 50
)

type MatrixKind string

const (
	MatrixPosterior MatrixKind = "posterior"
	MatrixChoice    MatrixKind = "choice"
	MatrixJoint     MatrixKind = "joint"
)

// EvaluateRequest selects one inference. Stress and EvidenceWeight are
// mutually exclusive; with neither set the evidence is used in full.
type EvaluateRequest struct {
	Scenario       string   `json:"scenario"`
	Profile        string   `json:"profile"`
	Observation    string   `json:"observation,omitempty"`
	Stress         string   `json:"stress,omitempty"`
	EvidenceWeight *float64 `json:"evidence_weight,omitempty"`
}

type StressPoint struct {
	Level          string             `json:"level"`
	EvidenceWeight float64            `json:"evidence_weight"`
	Belief         map[string]float64 `json:"belief"`
	Top            string             `json:"top"`
	TopProbability float64            `json:"top_probability"`
}

// MatrixResult is indexed [latent][observable].
type MatrixResult struct {
	Scenario   string      `json:"scenario"`
	Profile    string      `json:"profile"`
	Kind       MatrixKind  `json:"kind"`
	Latent     string      `json:"latent"`
	Observable string      `json:"observable"`
	Rows       []string    `json:"rows"`
	Cols       []string    `json:"cols"`
	Values     [][]float64 `json:"values"`
}

type ScenarioService struct {
	catalog     *scenario.Catalog
	engine      *inference.Engine
	runStore    domain.RunStore
	concurrency int
	logger      *zap.Logger
}

// NewScenarioService wires the catalog to an engine. runs may be nil, in which
// case evaluations are not recorded.
func NewScenarioService(catalog *scenario.Catalog, engine *inference.Engine, runs domain.RunStore, logger *zap.Logger) *ScenarioService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if engine == nil {
		engine = inference.NewEngine(logger)
	}
	return &ScenarioService{
		catalog:     catalog,
		engine:      engine,
		runStore:    runs,
		concurrency: DefaultConcurrency,
		logger:      logger,
	}
}

func (s *ScenarioService) SetConcurrency(n int) {
	if n > 0 {
		s.concurrency = n
	}
}

func (s *ScenarioService) RunsEnabled() bool { return s.runStore != nil }

func (s *ScenarioService) List() []domain.Scenario {
	return s.catalog.List()
}

func (s *ScenarioService) Get(name string) (domain.Scenario, error) {
	return s.catalog.Get(name)
}

// Evaluate runs one inference and records it when run history is enabled.
func (s *ScenarioService) Evaluate(ctx context.Context, req EvaluateRequest) (*domain.Run, error) {
	run, err := s.evaluate(req)
	if err != nil {
		return nil, err
	}
	if err := s.record(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// Compare evaluates the same observation under every profile of a scenario,
// in profile order.
func (s *ScenarioService) Compare(ctx context.Context, name, observation, stress string) ([]domain.Run, error) {
	compiled, err := s.catalog.Compiled(name)
	if err != nil {
		return nil, err
	}

	profiles := compiled.Scenario.ProfileNames()
	runs := make([]domain.Run, len(profiles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, profile := range profiles {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			run, err := s.evaluateCompiled(compiled, EvaluateRequest{
				Scenario:    name,
				Profile:     profile,
				Observation: observation,
				Stress:      stress,
			})
			if err != nil {
				return fmt.Errorf("profile %s: %w", profile, err)
			}
			if err := s.record(gctx, run); err != nil {
				return err
			}
			runs[i] = *run
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return runs, nil
}

// Matrix tabulates belief over the latent variable for every observable value.
func (s *ScenarioService) Matrix(ctx context.Context, name, profile string, kind MatrixKind) (*MatrixResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	compiled, err := s.catalog.Compiled(name)
	if err != nil {
		return nil, err
	}
	subject, p, err := s.subject(compiled, profile)
	if err != nil {
		return nil, err
	}
	if kind == "" {
		kind = MatrixPosterior
		if p.EffectiveMode() == domain.ModeChoice {
			kind = MatrixChoice
		}
	}

	var m *inference.Matrix
	switch kind {
	case MatrixPosterior:
		m, err = s.engine.PosteriorMatrix(subject)
	case MatrixChoice:
		m, err = s.engine.ChoiceMatrix(subject)
	case MatrixJoint:
		m, err = s.engine.JointMatrix(subject)
	default:
		return nil, fmt.Errorf("%w: unknown matrix kind %q", ErrInvalidRequest, kind)
	}
	if err != nil {
		return nil, err
	}
	return &MatrixResult{
		Scenario:   name,
		Profile:    p.Name,
		Kind:       kind,
		Latent:     m.Rows.Name(),
		Observable: m.Cols.Name(),
		Rows:       m.Rows.Values(),
		Cols:       m.Cols.Values(),
		Values:     m.Values,
	}, nil
}

// StressSweep evaluates one observation at every stress level without
// recording runs.
func (s *ScenarioService) StressSweep(ctx context.Context, name, profile, observation string) ([]StressPoint, error) {
	compiled, err := s.catalog.Compiled(name)
	if err != nil {
		return nil, err
	}

	levels := inference.AllStressLevels()
	points := make([]StressPoint, 0, len(levels))
	for _, level := range levels {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		run, err := s.evaluateCompiled(compiled, EvaluateRequest{
			Scenario:    name,
			Profile:     profile,
			Observation: observation,
			Stress:      level.String(),
		})
		if err != nil {
			return nil, err
		}
		points = append(points, StressPoint{
			Level:          level.String(),
			EvidenceWeight: run.EvidenceWeight,
			Belief:         run.Distribution(),
			Top:            run.Top,
			TopProbability: run.TopProbability,
		})
	}
	return points, nil
}

func (s *ScenarioService) GetRun(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	if s.runStore == nil {
		return nil, ErrRunsDisabled
	}
	run, err := s.runStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}
	return run, nil
}

func (s *ScenarioService) ListRuns(ctx context.Context, name string, limit int) ([]domain.Run, error) {
	if s.runStore == nil {
		return nil, ErrRunsDisabled
	}
	if name == "" {
		return nil, fmt.Errorf("%w: scenario is required", ErrInvalidRequest)
	}
	return s.runStore.ListByScenario(ctx, name, clamp(limit, DefaultListLimit, MaxListLimit))
}

// SimilarRuns returns recorded runs of the same scenario whose beliefs are
// nearest to the given run's.
func (s *ScenarioService) SimilarRuns(ctx context.Context, id uuid.UUID, k int) ([]domain.RunWithDistance, error) {
	if s.runStore == nil {
		return nil, ErrRunsDisabled
	}
	runs, err := s.runStore.FindSimilar(ctx, id, clamp(k, DefaultSimilarK, MaxSimilarK))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}
	return runs, nil
}

func (s *ScenarioService) record(ctx context.Context, run *domain.Run) error {
	if s.runStore == nil {
		return nil
	}
	if err := s.runStore.Create(ctx, run); err != nil {
		s.logger.Error("failed to record run",
			zap.String("scenario", run.Scenario),
			zap.String("profile", run.Profile),
			zap.Error(err))
		return err
	}
	return nil
}

func (s *ScenarioService) evaluate(req EvaluateRequest) (*domain.Run, error) {
	compiled, err := s.catalog.Compiled(req.Scenario)
	if err != nil {
		return nil, err
	}
	return s.evaluateCompiled(compiled, req)
}

func (s *ScenarioService) evaluateCompiled(compiled *scenario.Compiled, req EvaluateRequest) (*domain.Run, error) {
	subject, p, err := s.subject(compiled, req.Profile)
	if err != nil {
		return nil, err
	}
	obs, err := compiled.Observation(req.Observation)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	lambda, err := evidenceWeight(compiled.Weights, req)
	if err != nil {
		return nil, err
	}

	mode := p.EffectiveMode()
	var result *dist.Table
	switch mode {
	case domain.ModePretend:
		// Belief never meets reality; the observation is kept on the record only.
		lambda = 0
		result, err = s.engine.PsychicEquivalence(subject)
	case domain.ModeChoice:
		var choice *inference.Choice
		choice, err = s.engine.Choose(subject, obs)
		if err == nil {
			result, err = s.blendWithPrior(subject, choice.Guess, lambda)
		}
	default:
		result, err = s.engine.WithEvidenceWeight(subject, obs, lambda)
	}
	if err != nil {
		return nil, err
	}

	return newRun(compiled.Scenario.Name, p, subject, mode, req, lambda, result), nil
}

func (s *ScenarioService) blendWithPrior(subject inference.Subject, posterior *dist.Table, lambda float64) (*dist.Table, error) {
	if lambda == 1 {
		return posterior, nil
	}
	prior, err := s.engine.PsychicEquivalence(subject)
	if err != nil {
		return nil, err
	}
	return s.engine.Blend(posterior, prior, lambda)
}

func (s *ScenarioService) subject(compiled *scenario.Compiled, profile string) (inference.Subject, *domain.Profile, error) {
	if profile == "" {
		return inference.Subject{}, nil, fmt.Errorf("%w: profile is required", ErrInvalidRequest)
	}
	subject, p, err := compiled.Subject(profile)
	if err != nil {
		if errors.Is(err, scenario.ErrUnknownProfile) {
			return inference.Subject{}, nil, fmt.Errorf("%w: %s/%s", ErrProfileNotFound, compiled.Scenario.Name, profile)
		}
		return inference.Subject{}, nil, err
	}
	return subject, p, nil
}

func evidenceWeight(weights inference.EvidenceWeights, req EvaluateRequest) (float64, error) {
	if req.Stress != "" && req.EvidenceWeight != nil {
		return 0, fmt.Errorf("%w: stress and evidence_weight are mutually exclusive", ErrInvalidRequest)
	}
	if req.EvidenceWeight != nil {
		w := *req.EvidenceWeight
		if math.IsNaN(w) || w < 0 || w > 1 {
			return 0, fmt.Errorf("%w: %w: %v", ErrInvalidRequest, inference.ErrInvalidEvidenceWeight, w)
		}
		return w, nil
	}
	if req.Stress == "" {
		return 1, nil
	}
	level, err := inference.ParseStressLevel(req.Stress)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return weights.For(level)
}

func newRun(scenarioName string, p *domain.Profile, subject inference.Subject, mode domain.Mode, req EvaluateRequest, lambda float64, result *dist.Table) *domain.Run {
	top, topP := result.Mode()
	stress := ""
	if req.Stress != "" {
		if level, err := inference.ParseStressLevel(req.Stress); err == nil {
			stress = level.String()
		}
	}
	return &domain.Run{
		ID:             uuid.New(),
		Scenario:       scenarioName,
		Profile:        p.Name,
		Observer:       subject.Observer,
		Subject:        subject.Name,
		Mode:           mode,
		Observation:    req.Observation,
		Stress:         stress,
		EvidenceWeight: lambda,
		Variable:       result.Variable().Name(),
		Values:         result.Variable().Values(),
		Belief:         result.Probs(),
		Top:            top,
		TopProbability: topP,
		Certainty:      domain.ComputeCertainty(topP),
		CreatedAt:      time.Now().UTC(),
	}
}

func clamp(n, def, limit int) int {
	if n <= 0 {
		return def
	}
	return min(n, limit)
}
