package app

import (
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/quinielamx/quiniela/external/githubstore"
	"github.com/quinielamx/quiniela/external/wikipedia"
	"github.com/quinielamx/quiniela/internal/config"
	"github.com/quinielamx/quiniela/internal/domain/fixture"
	"github.com/quinielamx/quiniela/internal/domain/prediction"
	"github.com/quinielamx/quiniela/internal/extract"
	"github.com/quinielamx/quiniela/internal/infrastructure/repository/memory"
	"github.com/quinielamx/quiniela/internal/infrastructure/repository/postgres"
	"github.com/quinielamx/quiniela/internal/interfaces/httpapi"
	"github.com/quinielamx/quiniela/internal/platform/cache"
	idgen "github.com/quinielamx/quiniela/internal/platform/id"
	"github.com/quinielamx/quiniela/internal/platform/logging"
	"github.com/quinielamx/quiniela/internal/platform/resilience"
	"github.com/quinielamx/quiniela/internal/usecase"
)

func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, error) {
	if logger == nil {
		logger = logging.Default()
	}

	source, err := newFixtureSource(cfg, logger)
	if err != nil {
		return nil, err
	}

	repo, err := newPredictionRepository(cfg, logger)
	if err != nil {
		return nil, err
	}

	fixtureSvc := usecase.NewFixtureService(source, cache.NewStore(cfg.CacheTTL), logger)
	predictionSvc := usecase.NewPredictionService(fixtureSvc, repo, logger)
	scoringSvc := usecase.NewScoringService(fixtureSvc, repo, logger)

	handler := httpapi.NewHandler(fixtureSvc, predictionSvc, scoringSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}

func newFixtureSource(cfg config.Config, logger *logging.Logger) (fixture.Source, error) {
	if !cfg.WikipediaEnabled {
		logger.Info("fixture source: seeded memory snapshot")
		return memory.NewFixtureSource(memory.SeedFixtures()), nil
	}

	extractCfg := extract.DefaultConfig(cfg.SeasonYear)
	extractCfg.KnownDatePhrases = cfg.KnownDatePhrases

	logger.Info("fixture source: wikipedia",
		"page", cfg.WikipediaPage,
		"section", cfg.WikipediaSection,
	)
	return wikipedia.NewClient(wikipedia.ClientConfig{
		BaseURL:    cfg.WikipediaBaseURL,
		Page:       cfg.WikipediaPage,
		Section:    cfg.WikipediaSection,
		Timeout:    cfg.WikipediaTimeout,
		MaxRetries: cfg.WikipediaMaxRetries,
		Extract:    extractCfg,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.WikipediaCircuitEnabled,
			FailureThreshold: cfg.WikipediaCircuitFailureCount,
			OpenTimeout:      cfg.WikipediaCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.WikipediaCircuitHalfOpenMax,
		},
	}), nil
}

func newPredictionRepository(cfg config.Config, logger *logging.Logger) (prediction.Repository, error) {
	switch cfg.PredictionStore {
	case config.StoreMemory:
		logger.Info("prediction store: memory")
		return memory.NewPredictionRepository(), nil

	case config.StoreGitHub:
		logger.Info("prediction store: github issues",
			"owner", cfg.GitHubOwner,
			"repo", cfg.GitHubRepo,
			"label", cfg.GitHubLabel,
		)
		return githubstore.NewStore(githubstore.StoreConfig{
			BaseURL: cfg.GitHubBaseURL,
			Owner:   cfg.GitHubOwner,
			Repo:    cfg.GitHubRepo,
			Token:   cfg.GitHubToken,
			Label:   cfg.GitHubLabel,
			Timeout: cfg.GitHubTimeout,
			Logger:  logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.GitHubCircuitEnabled,
				FailureThreshold: cfg.GitHubCircuitFailureCount,
				OpenTimeout:      cfg.GitHubCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.GitHubCircuitHalfOpenMax,
			},
		})

	case config.StorePostgres:
		db, err := openDB(cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("prediction store: postgres", "db", dbNameFromURL(cfg.DBURL))
		return postgres.NewPredictionRepository(db, idgen.NewRandomGenerator()), nil

	default:
		return nil, fmt.Errorf("unknown prediction store %q", cfg.PredictionStore)
	}
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Connect("postgres", dsn,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
	)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	return db, nil
}
