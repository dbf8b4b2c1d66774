package api

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/Harshitk-cp/mentalize/internal/api/handlers"
	mw "github.com/Harshitk-cp/mentalize/internal/api/middleware"
	"github.com/Harshitk-cp/mentalize/internal/buildconfig"
	"github.com/Harshitk-cp/mentalize/internal/config"
	"github.com/Harshitk-cp/mentalize/internal/domain"
	"github.com/Harshitk-cp/mentalize/internal/inference"
	"github.com/Harshitk-cp/mentalize/internal/scenario"
	"github.com/Harshitk-cp/mentalize/internal/service"
	"github.com/Harshitk-cp/mentalize/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	limiterCleanupInterval = 10 * time.Minute
	limiterIdleTimeout     = 10 * time.Minute
)

// App holds the router and the pieces that need lifecycle management.
type App struct {
	Router    *chi.Mux
	Service   *service.ScenarioService
	Limiter   *mw.RateLimiter
	metrics   mw.Metrics
	startTime time.Time
}

// NewApp wires the HTTP surface. db may be nil, which disables run history.
func NewApp(db *pgxpool.Pool, catalog *scenario.Catalog, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}

	var runs domain.RunStore
	if db != nil {
		runs = store.NewRunStore(db)
	}

	engine := inference.NewEngine(logger.Named("inference"))
	svc := service.NewScenarioService(catalog, engine, runs, logger.Named("service"))
	svc.SetConcurrency(config.EvalConcurrency())

	scenarioHandler := handlers.NewScenarioHandler(svc)
	runHandler := handlers.NewRunHandler(svc)
	inferHandler := handlers.NewInferHandler(svc)

	r := chi.NewRouter()
	app := &App{
		Router:    r,
		Service:   svc,
		Limiter:   mw.NewRateLimiter(config.RateLimitRPS(), config.RateLimitBurst()),
		startTime: time.Now(),
	}

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(app.metrics.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(app.Limiter.Middleware)

	r.Get("/health", healthHandler(db))
	r.Get("/metrics", app.metricsHandler(catalog))
	r.Get("/version", versionHandler)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", scenarioHandler.List)
			r.Route("/{name}", func(r chi.Router) {
				r.Get("/", scenarioHandler.Get)
				r.Get("/matrix", scenarioHandler.Matrix)
				r.Post("/evaluate", scenarioHandler.Evaluate)
				r.Post("/compare", scenarioHandler.Compare)
				r.Post("/stress", scenarioHandler.Stress)
			})
		})

		r.Post("/infer", inferHandler.Infer)
		r.Post("/blend", inferHandler.Blend)

		r.Route("/runs", func(r chi.Router) {
			r.Get("/", runHandler.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", runHandler.Get)
				r.Get("/similar", runHandler.Similar)
			})
		})
	})

	return app
}

// Run evicts idle rate-limit entries until ctx is done.
func (app *App) Run(ctx context.Context) {
	app.Limiter.Run(ctx, limiterCleanupInterval, limiterIdleTimeout)
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if db == nil {
			w.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "database": "disabled"})
			return
		}
		if err := db.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "database": "ok"})
	}
}

func versionHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(buildconfig.VersionInfo())
}

func (app *App) metricsHandler(catalog *scenario.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)
		snap := app.metrics.Snapshot()

		response := map[string]any{
			"uptime_seconds":     uptime.Seconds(),
			"uptime_human":       uptime.Round(time.Second).String(),
			"request_count":      snap.Requests,
			"client_error_count": snap.ClientErrors,
			"server_error_count": snap.ServerErrors,
			"in_flight":          snap.InFlight,
			"scenario_count":     catalog.Len(),
			"rate_limit_clients": app.Limiter.Len(),
			"runs_enabled":       app.Service.RunsEnabled(),
			"goroutines":         runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores satisfy interfaces at compile time.
var _ domain.RunStore = (*store.RunStore)(nil)
