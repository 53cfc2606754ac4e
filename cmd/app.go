package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Vovarama1992/clinic-ai-proxy/internal/ai"
	"github.com/Vovarama1992/clinic-ai-proxy/internal/clinic"
	"github.com/Vovarama1992/clinic-ai-proxy/internal/config"
	"github.com/Vovarama1992/clinic-ai-proxy/internal/metrics"
	"github.com/Vovarama1992/clinic-ai-proxy/internal/platform/middleware"
)

type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	registry *prometheus.Registry
	db       *sql.DB
	svc      clinic.Service
	handler  *clinic.Handler
}

// newApp wires the service graph. apiKey is consulted on every upstream call.
func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger, apiKey func() string) (*app, error) {
	a := &app{
		cfg:      cfg,
		log:      log,
		registry: prometheus.NewRegistry(),
	}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(a.registry)

	// --- Audit ---
	var audit clinic.AuditRepo = clinic.NopAudit{}
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("db open: %w", err)
		}
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("db ping: %w", err)
		}
		if err := clinic.EnsureSchema(pctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("db schema: %w", err)
		}
		a.db = db
		audit = clinic.NewAuditRepo(db)
	}

	// --- AI ---
	client := ai.NewOpenAIClient(ai.Options{
		BaseURL:    cfg.AIGatewayURL,
		Model:      cfg.AIModel,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: cfg.AIHTTPTimeout},
		Logger:     log,
		Metrics:    m,
	})
	provider := ai.WithRetry(client, cfg.AIRetryMax, cfg.AIRetryBaseDelay, log, m)

	// --- Clinic ---
	a.svc = clinic.NewService(provider, cfg.AIStrictEnums, log)
	a.handler = clinic.NewHandler(a.svc, audit, m, log)
	return a, nil
}

func (a *app) router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(a.log))
	r.Use(middleware.Recoverer(a.log))
	r.Use(middleware.CORS(a.cfg.CORSOrigins))

	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(a.cfg.AuthJWTSecret, a.cfg.AuthAllowedRoles))
		clinic.RegisterRoutes(r, a.handler)
	})
	return r
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
}
