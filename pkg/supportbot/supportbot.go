// Package supportbot wires the session store, the generation provider and the
// chat orchestrator behind an HTTP API.
package supportbot

import (
	"context"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/chat"
	"github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/config"
	apperrors "github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/errors"
	"github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/llm"
	"github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/metrics"
	"github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/session"
)

// HealthText is the body of GET /.
const HealthText = "cf_ai_supportbot: Worker up"

// App represents the support bot application
type App struct {
	Config       *config.Config
	Store        session.Store
	Generator    llm.Generator
	Orchestrator *chat.Orchestrator
	Metrics      *metrics.Metrics

	registry *prometheus.Registry
	limiter  *rate.Limiter
	log      logr.Logger
	router   *mux.Router
}

// NewApp opens the configured store and provider and assembles the App.
func NewApp(ctx context.Context, cfg *config.Config, log logr.Logger) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	gen, err := llm.NewGenerator(cfg.LLM)
	if err != nil {
		return nil, err
	}

	store, err := session.Open(ctx, cfg.Store, log)
	if err != nil {
		return nil, err
	}

	return NewAppWith(cfg, store, gen, log), nil
}

// NewAppWith assembles an App around an existing store and generator.
func NewAppWith(cfg *config.Config, store session.Store, gen llm.Generator, log logr.Logger) *App {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	app := &App{
		Config:    cfg,
		Store:     store,
		Generator: gen,
		Metrics:   m,
		registry:  registry,
		log:       log.WithName("supportbot"),
	}
	app.Orchestrator = chat.NewOrchestrator(store, gen, chat.OptionsFromConfig(cfg), log, m)

	if cfg.Server.RateLimitRPS > 0 {
		burst := cfg.Server.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		app.limiter = rate.NewLimiter(rate.Limit(cfg.Server.RateLimitRPS), burst)
	}

	app.router = mux.NewRouter()
	app.setupRoutes()
	return app
}

// Handler returns the HTTP handler with CORS and request ids applied to
// every response, including 404s.
func (a *App) Handler() http.Handler {
	return withCORS(a.withRequestID(a.router))
}

// Build creates the HTTP server. The write timeout leaves room for a full
// generation call.
func (a *App) Build() *http.Server {
	return &http.Server{
		Addr:         a.Config.Server.Addr,
		Handler:      a.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: a.Config.LLM.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Close releases the store.
func (a *App) Close() error {
	var result *multierror.Error
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			result = multierror.Append(result, apperrors.New(apperrors.ErrCodeStorageUnavailable, "failed to close session store", err))
		}
	}
	return result.ErrorOrNil()
}
