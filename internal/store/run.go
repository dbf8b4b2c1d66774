package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/Harshitk-cp/mentalize/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
)

//go:embed schema.sql
var schema string

const runColumns = `id, scenario, profile, observer, subject, mode, observation, stress, evidence_weight,
	variable, state_values, belief, top, top_probability, certainty, created_at`

type RunStore struct {
	db *pgxpool.Pool
}

func NewRunStore(db *pgxpool.Pool) *RunStore {
	return &RunStore{db: db}
}

// EnsureSchema creates the runs table and the vector extension if missing.
func (s *RunStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *RunStore) Create(ctx context.Context, r *domain.Run) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}

	err := s.db.QueryRow(ctx,
		`INSERT INTO inference_runs (id, scenario, profile, observer, subject, mode, observation, stress, evidence_weight,
		                             variable, state_values, belief, belief_vec, top, top_probability, certainty)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING created_at`,
		r.ID, r.Scenario, r.Profile, r.Observer, r.Subject, string(r.Mode), r.Observation, r.Stress, r.EvidenceWeight,
		r.Variable, r.Values, r.Belief, pgvector.NewVector(toFloat32(r.Belief)), r.Top, r.TopProbability, string(r.Certainty),
	).Scan(&r.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *RunStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	r, err := scanRun(s.db.QueryRow(ctx,
		`SELECT `+runColumns+` FROM inference_runs WHERE id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r, nil
}

func (s *RunStore) ListByScenario(ctx context.Context, scenario string, limit int) ([]domain.Run, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+runColumns+` FROM inference_runs
		 WHERE scenario = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		scenario, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs rows: %w", err)
	}
	return runs, nil
}

// FindSimilar orders runs by Euclidean distance between belief vectors. Only
// runs over the same scenario and variable are compared, so the vectors
// always have the same dimension.
func (s *RunStore) FindSimilar(ctx context.Context, id uuid.UUID, k int) ([]domain.RunWithDistance, error) {
	var (
		scenario string
		variable string
		vec      pgvector.Vector
	)
	err := s.db.QueryRow(ctx,
		`SELECT scenario, variable, belief_vec FROM inference_runs WHERE id = $1`,
		id,
	).Scan(&scenario, &variable, &vec)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+runColumns+`, belief_vec <-> $1 AS distance
		 FROM inference_runs
		 WHERE scenario = $2 AND variable = $3 AND id <> $4
		 ORDER BY distance ASC, created_at DESC
		 LIMIT $5`,
		vec, scenario, variable, id, k,
	)
	if err != nil {
		return nil, fmt.Errorf("similar runs: %w", err)
	}
	defer rows.Close()

	var results []domain.RunWithDistance
	for rows.Next() {
		var rd domain.RunWithDistance
		if err := rows.Scan(append(runFields(&rd.Run), &rd.Distance)...); err != nil {
			return nil, fmt.Errorf("scan similar run: %w", err)
		}
		results = append(results, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("similar runs rows: %w", err)
	}
	return results, nil
}

func runFields(r *domain.Run) []any {
	return []any{
		&r.ID, &r.Scenario, &r.Profile, &r.Observer, &r.Subject, &r.Mode, &r.Observation, &r.Stress, &r.EvidenceWeight,
		&r.Variable, &r.Values, &r.Belief, &r.Top, &r.TopProbability, &r.Certainty, &r.CreatedAt,
	}
}

func scanRun(row pgx.Row) (*domain.Run, error) {
	r := &domain.Run{}
	if err := row.Scan(runFields(r)...); err != nil {
		return nil, err
	}
	return r, nil
}

func toFloat32(xs []float64) []float32 {
	out := make([]float32, len(xs))
	for i, x := range xs {
		out[i] = float32(x)
	}
	return out
}
