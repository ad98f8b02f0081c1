package app

import (
	"context"
	"fmt"

	"github.com/courtsync/courtsync/external/nbastats"
	"github.com/courtsync/courtsync/internal/config"
	"github.com/courtsync/courtsync/internal/domain/season"
	"github.com/courtsync/courtsync/internal/infrastructure/repository/postgres"
	"github.com/courtsync/courtsync/internal/infrastructure/snapshot"
	"github.com/courtsync/courtsync/internal/platform/cache"
	"github.com/courtsync/courtsync/internal/platform/logging"
	"github.com/courtsync/courtsync/internal/platform/resilience"
	"github.com/courtsync/courtsync/internal/usecase"
)

// App wires the refresh pipeline from configuration.
type App struct {
	Refresh *usecase.RefreshService

	closers []func() error
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	app := &App{}

	store, err := snapshot.NewStore(cfg.DataDir, logger)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}

	clientCfg := nbastats.ClientConfig{
		BaseURL:    cfg.NBAStatsBaseURL,
		Timeout:    cfg.NBAStatsTimeout,
		MaxRetries: cfg.NBAStatsMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.NBAStatsCircuitEnabled,
			FailureThreshold: cfg.NBAStatsCircuitFailureCount,
			OpenTimeout:      cfg.NBAStatsCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.NBAStatsCircuitHalfOpenMaxRq,
		},
	}
	if cfg.CacheEnabled {
		clientCfg.Cache = cache.NewStore(cfg.CacheTTL)
	}

	if cfg.ArchiveEnabled {
		db, err := postgres.Open(ctx, cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("open archive database: %w", err)
		}
		app.closers = append(app.closers, db.Close)
		clientCfg.Archive = postgres.NewRawPayloadRepository(db)
	}

	client := nbastats.NewClient(clientCfg)

	oracle := season.NewOracle(snapshot.NewMarkers(store), nil)

	app.Refresh = usecase.NewRefreshService(
		client,
		store,
		store.PlayerStats(),
		store,
		oracle,
		usecase.RefreshConfig{
			FirstSeason:     cfg.FirstSeason,
			CurrentSeason:   cfg.CurrentSeason,
			RefreshTTL:      cfg.RefreshTTL,
			SeasonWorkers:   cfg.SeasonWorkers,
			BoxScoreWorkers: cfg.BoxScoreWorkers,
		},
		logger,
	)

	return app, nil
}

// Close releases held resources, last-opened first.
func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
