package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/courtsync/courtsync/internal/app"
	"github.com/courtsync/courtsync/internal/config"
	"github.com/courtsync/courtsync/internal/platform/logging"
	"github.com/courtsync/courtsync/internal/platform/telemetry"
	"github.com/courtsync/courtsync/internal/usecase"
)

func main() {
	gamelogs := flag.Bool("gamelogs", false, "refresh team and player game logs")
	playerStats := flag.Bool("player-stats", false, "refresh the wide per-player season stats")
	updateJSONOnly := flag.Bool("update-json-only", false, "rebuild JSON summaries from stored tables without fetching game logs")
	dataDir := flag.String("data-dir", "", "override the data directory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownUptrace, err := telemetry.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownUptrace(context.Background()); err != nil {
			logger.Error("shutdown uptrace", "error", err)
		}
	}()

	stopProfiler, err := telemetry.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := stopProfiler(); err != nil {
			logger.Error("stop pyroscope", "error", err)
		}
	}()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error("close app", "error", err)
		}
	}()

	// No flags means a full refresh, the scheduler's mode.
	input := usecase.RefreshInput{
		GameLogs:       *gamelogs,
		PlayerStats:    *playerStats,
		UpdateJSONOnly: *updateJSONOnly,
	}

	logger.InfoContext(ctx, "refresh starting",
		"data_dir", cfg.DataDir,
		"first_season", int(cfg.FirstSeason),
		"current_season", int(cfg.CurrentSeason),
		"update_json_only", *updateJSONOnly,
	)

	result, err := application.Refresh.Run(ctx, input)
	if err != nil {
		logger.ErrorContext(ctx, "refresh aborted", "error", err)
		exit(application, stopProfiler, shutdownUptrace, logger, 1)
	}

	for _, task := range result.Tasks {
		logger.InfoContext(ctx, "task finished",
			"season", int(task.Season),
			"kind", task.Kind,
			"status", task.Status,
			"rows", task.Rows,
			"duration_ms", task.DurationMs,
			"message", task.Message,
		)
	}
	logger.InfoContext(ctx, "refresh finished",
		"tasks", result.TaskCount,
		"success", result.SuccessCount,
		"failed", result.FailedCount,
		"skipped", result.SkippedCount,
		"workers", result.WorkerCount,
	)

	if result.FailedCount > 0 {
		exit(application, stopProfiler, shutdownUptrace, logger, 1)
	}
}

// exit runs the deferred cleanup by hand because os.Exit skips defers.
func exit(application *app.App, stopProfiler func() error, shutdownUptrace func(context.Context) error, logger *logging.Logger, code int) {
	if err := application.Close(); err != nil {
		logger.Error("close app", "error", err)
	}
	if err := stopProfiler(); err != nil {
		logger.Error("stop pyroscope", "error", err)
	}
	if err := shutdownUptrace(context.Background()); err != nil {
		logger.Error("shutdown uptrace", "error", err)
	}
	os.Exit(code)
}
