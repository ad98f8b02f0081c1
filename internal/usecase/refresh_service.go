package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc/pool"

	"github.com/courtsync/courtsync/internal/domain/gamelog"
	"github.com/courtsync/courtsync/internal/domain/playerstats"
	"github.com/courtsync/courtsync/internal/domain/season"
	"github.com/courtsync/courtsync/internal/platform/logging"
)

const (
	refreshStatusSuccess = "success"
	refreshStatusFailed  = "failed"
	refreshStatusSkipped = "skipped"

	defaultRefreshTTL      = time.Hour
	defaultSeasonWorkers   = 2
	defaultBoxScoreWorkers = 4
)

// SnapshotWriter is the JSON/metadata side of the data directory.
// Parquet tables go through gamelog.Repository.
type SnapshotWriter interface {
	WriteJSON(ctx context.Context, name string, value any) error
	ReadJSON(ctx context.Context, name string, target any) (bool, error)
	WriteMetadata(ctx context.Context, updated time.Time) error
}

type RefreshConfig struct {
	FirstSeason   season.Season
	CurrentSeason season.Season
	// RefreshTTL guards against re-fetching a season whose snapshot
	// was written moments ago by a back-to-back scheduler run.
	RefreshTTL      time.Duration
	SeasonWorkers   int
	BoxScoreWorkers int
}

func (cfg RefreshConfig) normalized() RefreshConfig {
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = defaultRefreshTTL
	}
	if cfg.SeasonWorkers <= 0 {
		cfg.SeasonWorkers = defaultSeasonWorkers
	}
	if cfg.BoxScoreWorkers <= 0 {
		cfg.BoxScoreWorkers = defaultBoxScoreWorkers
	}
	return cfg
}

type RefreshInput struct {
	// GameLogs refreshes the team and player game log tables. Setting
	// Kinds implies it.
	GameLogs bool
	// Kinds narrows the game log refresh, defaulting to both kinds.
	Kinds []gamelog.Kind
	// PlayerStats refreshes the wide per-player season tables built
	// from the league dash endpoints.
	PlayerStats bool
	// UpdateJSONOnly rebuilds the JSON summaries from stored tables
	// without fetching anything.
	UpdateJSONOnly bool
}

type RefreshResult struct {
	TaskCount    int                 `json:"task_count"`
	SuccessCount int                 `json:"success_count"`
	FailedCount  int                 `json:"failed_count"`
	SkippedCount int                 `json:"skipped_count"`
	WorkerCount  int                 `json:"worker_count"`
	Tasks        []RefreshTaskResult `json:"tasks"`
}

type RefreshTaskResult struct {
	Season     season.Season `json:"season"`
	Kind       string        `json:"kind"`
	Status     string        `json:"status"`
	Rows       int           `json:"rows"`
	DurationMs int64         `json:"duration_ms"`
	Message    string        `json:"message,omitempty"`

	changed bool
}

type refreshTask struct {
	season season.Season
	kind   gamelog.Kind
}

// absorb folds additional task rows into the run totals.
func (r *RefreshResult) absorb(rows []RefreshTaskResult) {
	r.Tasks = append(r.Tasks, rows...)
	r.TaskCount += len(rows)
	for _, row := range rows {
		switch row.Status {
		case refreshStatusSuccess:
			r.SuccessCount++
		case refreshStatusSkipped:
			r.SkippedCount++
		default:
			r.FailedCount++
		}
	}
}

// RefreshService walks every season and log kind, fetches what can
// still change, merges it into the stored tables, and refreshes the
// snapshot files. A failed season never aborts the others.
type RefreshService struct {
	provider    StatsProvider
	repo        gamelog.Repository
	playerStats playerstats.Repository
	snapshots   SnapshotWriter
	oracle      *season.Oracle
	normalizer  *Normalizer
	logger      *logging.Logger
	cfg         RefreshConfig
	now         func() time.Time
}

func NewRefreshService(
	provider StatsProvider,
	repo gamelog.Repository,
	playerStats playerstats.Repository,
	snapshots SnapshotWriter,
	oracle *season.Oracle,
	cfg RefreshConfig,
	logger *logging.Logger,
) *RefreshService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RefreshService{
		provider:    provider,
		repo:        repo,
		playerStats: playerStats,
		snapshots:   snapshots,
		oracle:      oracle,
		normalizer:  NewNormalizer(),
		logger:      logger,
		cfg:         cfg.normalized(),
		now:         time.Now,
	}
}

// Run executes one refresh pass. Metadata is stamped only when every
// task succeeded or was legitimately skipped, so a partially failed
// run is retried in full by the next scheduled trigger.
func (s *RefreshService) Run(ctx context.Context, input RefreshInput) (RefreshResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RefreshService.Run")
	defer span.End()

	if s.provider == nil || s.repo == nil || s.playerStats == nil || s.snapshots == nil || s.oracle == nil {
		return RefreshResult{}, fmt.Errorf("%w: refresh service is not fully configured", ErrDependencyUnavailable)
	}

	kinds := input.Kinds
	if len(kinds) == 0 {
		kinds = []gamelog.Kind{gamelog.KindTeam, gamelog.KindPlayer}
	}
	for _, kind := range kinds {
		if !kind.Valid() {
			return RefreshResult{}, fmt.Errorf("%w: unknown log kind %q", ErrInvalidInput, kind)
		}
	}
	seasons := season.Range(s.cfg.FirstSeason, s.cfg.CurrentSeason)
	if len(seasons) == 0 {
		return RefreshResult{}, fmt.Errorf("%w: season range %d..%d is empty", ErrInvalidInput, s.cfg.FirstSeason, s.cfg.CurrentSeason)
	}

	if err := s.oracle.Load(ctx); err != nil {
		return RefreshResult{}, fmt.Errorf("load completed season markers: %w", err)
	}

	gameLogs := input.GameLogs || len(input.Kinds) > 0
	dashStats := input.PlayerStats
	if !input.UpdateJSONOnly && !gameLogs && !dashStats {
		gameLogs, dashStats = true, true
	}

	result := RefreshResult{}
	if input.UpdateJSONOnly {
		if err := s.rebuildEfficiency(ctx, seasons); err != nil {
			return result, err
		}
	} else if gameLogs {
		var err error
		result, err = s.runLogTasks(ctx, seasons, kinds)
		if err != nil {
			return result, err
		}
	}

	if gameLogs || input.UpdateJSONOnly {
		if err := s.rebuildUnions(ctx, kinds, seasons, result.Tasks); err != nil {
			return result, err
		}
		summaryRows, err := s.refreshSummaries(ctx, seasons, input.UpdateJSONOnly)
		result.absorb(summaryRows)
		if err != nil {
			return result, err
		}
	}

	if dashStats && !input.UpdateJSONOnly {
		statRows, err := s.runPlayerStats(ctx, seasons)
		result.absorb(statRows)
		if err != nil {
			return result, err
		}
	}

	if err := s.oracle.Flush(ctx); err != nil {
		return result, fmt.Errorf("persist completed season markers: %w", err)
	}

	if result.FailedCount == 0 {
		if err := s.snapshots.WriteMetadata(ctx, s.now()); err != nil {
			return result, fmt.Errorf("write metadata: %w", err)
		}
	} else {
		s.logger.WarnContext(ctx, "run had failed tasks, metadata not updated",
			"failed", result.FailedCount, "total", result.TaskCount)
	}

	return result, nil
}

func (s *RefreshService) runLogTasks(ctx context.Context, seasons []season.Season, kinds []gamelog.Kind) (RefreshResult, error) {
	tasks := make([]refreshTask, 0, len(seasons)*len(kinds))
	for _, sn := range seasons {
		for _, kind := range kinds {
			tasks = append(tasks, refreshTask{season: sn, kind: kind})
		}
	}

	workerCount := s.cfg.SeasonWorkers
	if workerCount > len(tasks) {
		workerCount = len(tasks)
	}
	result := RefreshResult{
		TaskCount:   len(tasks),
		WorkerCount: workerCount,
		Tasks:       make([]RefreshTaskResult, 0, len(tasks)),
	}

	rows := make(chan RefreshTaskResult, len(tasks))

	var successCount atomic.Int32
	var failedCount atomic.Int32
	var skippedCount atomic.Int32

	workerPool, err := ants.NewPool(workerCount)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer workerPool.Release()

	var workers sync.WaitGroup
	for _, task := range tasks {
		task := task
		workers.Add(1)
		if err := workerPool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := s.runTask(ctx, task)
			row.DurationMs = time.Since(start).Milliseconds()

			switch row.Status {
			case refreshStatusSuccess:
				successCount.Add(1)
			case refreshStatusSkipped:
				skippedCount.Add(1)
			default:
				failedCount.Add(1)
			}
			rows <- row
		}); err != nil {
			workers.Done()
			return RefreshResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(rows)

	for row := range rows {
		result.Tasks = append(result.Tasks, row)
	}
	sort.SliceStable(result.Tasks, func(i, j int) bool {
		if result.Tasks[i].Season != result.Tasks[j].Season {
			return result.Tasks[i].Season < result.Tasks[j].Season
		}
		return result.Tasks[i].Kind < result.Tasks[j].Kind
	})

	result.SuccessCount = int(successCount.Load())
	result.FailedCount = int(failedCount.Load())
	result.SkippedCount = int(skippedCount.Load())
	return result, nil
}

func (s *RefreshService) runTask(ctx context.Context, task refreshTask) RefreshTaskResult {
	row := RefreshTaskResult{Season: task.season, Kind: string(task.kind)}

	final := s.oracle.IsFinal(task.season)

	existing, err := s.repo.LoadSeason(ctx, task.kind, task.season)
	if err != nil {
		row.Status = refreshStatusFailed
		row.Message = err.Error()
		return row
	}

	// A final season with stored rows can never change again, so the
	// fetch is skipped outright, not just short-circuited at merge.
	if final && len(existing) > 0 {
		row.Status = refreshStatusSkipped
		row.Rows = len(existing)
		row.Message = "season is final"
		return row
	}

	if !final {
		if mtime, ok, err := s.repo.SeasonModTime(ctx, task.kind, task.season); err == nil && ok {
			if s.now().Sub(mtime) < s.cfg.RefreshTTL {
				row.Status = refreshStatusSkipped
				row.Rows = len(existing)
				row.Message = "snapshot is fresh"
				return row
			}
		}
	}

	var incoming []gamelog.Row
	switch task.kind {
	case gamelog.KindTeam:
		incoming, err = s.fetchTeamRows(ctx, task.season, fetchCursor(existing, final))
	default:
		incoming, err = s.fetchPlayerRows(ctx, task.season, fetchCursor(existing, final))
	}
	if err != nil {
		row.Status = refreshStatusFailed
		row.Message = err.Error()
		return row
	}

	merged := gamelog.Merge(existing, incoming, final)
	if err := s.repo.StoreSeason(ctx, task.kind, task.season, merged); err != nil {
		row.Status = refreshStatusFailed
		row.Message = fmt.Sprintf("store season table: %v", err)
		return row
	}

	if task.kind == gamelog.KindTeam {
		eff := EfficiencyFile{Updated: s.now().UTC(), Games: BuildEfficiency(merged)}
		name := fmt.Sprintf("team_efficiency_%d.json", int(task.season))
		if err := s.snapshots.WriteJSON(ctx, name, eff); err != nil {
			row.Status = refreshStatusFailed
			row.Message = fmt.Sprintf("write efficiency summary: %v", err)
			return row
		}
	}

	row.Status = refreshStatusSuccess
	row.Rows = len(merged)
	row.changed = true
	return row
}

// fetchCursor narrows an in-progress refetch to the stored table's
// tail. Final backfills and empty tables fetch the whole season.
func fetchCursor(existing []gamelog.Row, final bool) string {
	if final || len(existing) == 0 {
		return ""
	}
	max := gamelog.MaxGameDate(existing)
	if max.IsZero() {
		return ""
	}
	return max.Format("01/02/2006")
}

func (s *RefreshService) fetchTeamRows(ctx context.Context, sn season.Season, dateFrom string) ([]gamelog.Row, error) {
	label := sn.Label()
	base, err := s.provider.TeamGameLogs(ctx, label, "Base", dateFrom)
	if err != nil {
		return nil, fmt.Errorf("fetch team game logs season=%s: %w", label, err)
	}
	advanced, err := s.provider.TeamGameLogs(ctx, label, "Advanced", dateFrom)
	if err != nil {
		return nil, fmt.Errorf("fetch advanced team game logs season=%s: %w", label, err)
	}
	rows, err := s.normalizer.TeamRows(base, advanced, sn)
	if err != nil {
		return nil, fmt.Errorf("normalize team game logs season=%s: %w", label, err)
	}
	return rows, nil
}

// fetchPlayerRows discovers the season's games from the team log and
// fans the per-game box score fetches out on a bounded pool.
func (s *RefreshService) fetchPlayerRows(ctx context.Context, sn season.Season, dateFrom string) ([]gamelog.Row, error) {
	label := sn.Label()
	base, err := s.provider.TeamGameLogs(ctx, label, "Base", dateFrom)
	if err != nil {
		return nil, fmt.Errorf("fetch team game logs season=%s: %w", label, err)
	}
	teamRows, err := s.normalizer.TeamRows(base, ResultTable{}, sn)
	if err != nil {
		return nil, fmt.Errorf("normalize team game logs season=%s: %w", label, err)
	}

	dateByGame := make(map[string]string, len(teamRows)/2)
	for _, r := range teamRows {
		dateByGame[r.GameID] = r.GameDate
	}
	gameIDs := make([]string, 0, len(dateByGame))
	for gameID := range dateByGame {
		gameIDs = append(gameIDs, gameID)
	}
	sort.Strings(gameIDs)

	fanout := pool.NewWithResults[[]gamelog.Row]().
		WithContext(ctx).
		WithMaxGoroutines(s.cfg.BoxScoreWorkers).
		WithCancelOnError()
	for _, gameID := range gameIDs {
		gameID := gameID
		fanout.Go(func(ctx context.Context) ([]gamelog.Row, error) {
			traditional, err := s.provider.BoxScoreTraditional(ctx, gameID)
			if err != nil {
				return nil, fmt.Errorf("fetch box score game=%s: %w", gameID, err)
			}
			advanced, err := s.provider.BoxScoreAdvanced(ctx, gameID)
			if err != nil {
				return nil, fmt.Errorf("fetch advanced box score game=%s: %w", gameID, err)
			}
			rows, err := s.normalizer.PlayerRows(traditional, advanced, sn, dateByGame[gameID])
			if err != nil {
				return nil, fmt.Errorf("normalize box score game=%s: %w", gameID, err)
			}
			return rows, nil
		})
	}

	perGame, err := fanout.Wait()
	if err != nil {
		return nil, err
	}

	out := make([]gamelog.Row, 0, len(perGame)*24)
	for _, rows := range perGame {
		out = append(out, rows...)
	}
	return gamelog.Dedup(out), nil
}

// rebuildEfficiency regenerates the per-season efficiency files from
// the stored team tables without touching the provider.
func (s *RefreshService) rebuildEfficiency(ctx context.Context, seasons []season.Season) error {
	for _, sn := range seasons {
		rows, err := s.repo.LoadSeason(ctx, gamelog.KindTeam, sn)
		if err != nil {
			return fmt.Errorf("load team season %d: %w", sn, err)
		}
		if len(rows) == 0 {
			continue
		}
		name := fmt.Sprintf("team_efficiency_%d.json", int(sn))
		eff := EfficiencyFile{Updated: s.now().UTC(), Games: BuildEfficiency(rows)}
		if err := s.snapshots.WriteJSON(ctx, name, eff); err != nil {
			return fmt.Errorf("write efficiency summary season=%d: %w", sn, err)
		}
	}
	return nil
}

// rebuildUnions regenerates the all-seasons tables for every kind a
// task wrote. Stored per-season tables stay the source of truth.
func (s *RefreshService) rebuildUnions(ctx context.Context, kinds []gamelog.Kind, seasons []season.Season, tasks []RefreshTaskResult) error {
	changed := make(map[gamelog.Kind]bool, len(kinds))
	for _, row := range tasks {
		if row.changed {
			changed[gamelog.Kind(row.Kind)] = true
		}
	}

	for _, kind := range kinds {
		if !changed[kind] {
			continue
		}
		var union []gamelog.Row
		for _, sn := range seasons {
			rows, err := s.repo.LoadSeason(ctx, kind, sn)
			if err != nil {
				return fmt.Errorf("load season %d for union: %w", sn, err)
			}
			union = append(union, rows...)
		}
		gamelog.Sort(union)
		if err := s.repo.StoreUnion(ctx, kind, union); err != nil {
			return fmt.Errorf("store %s union: %w", kind, err)
		}
	}
	return nil
}

// refreshSummaries writes the per-season league-dash summary files and
// gathers every season's teams map into team_summary.json. Final
// seasons that already produced a summary file are harvested from disk
// instead of refetched, so in steady state only the current season
// hits the provider. A failed season is recorded and the rest proceed.
func (s *RefreshService) refreshSummaries(ctx context.Context, seasons []season.Season, includeFinal bool) ([]RefreshTaskResult, error) {
	all := AllTeamSummaries{
		Updated: s.now().UTC(),
		Data:    make(map[season.Season]TeamSummary, len(seasons)),
	}
	rows := make([]RefreshTaskResult, 0, len(seasons))

	for _, sn := range seasons {
		name := fmt.Sprintf("team_summary_%d.json", int(sn))
		if s.oracle.IsFinal(sn) && sn != s.cfg.CurrentSeason && !includeFinal {
			var stored TeamSummaryFile
			if ok, err := s.snapshots.ReadJSON(ctx, name, &stored); err == nil && ok {
				all.Data[sn] = stored.Teams
				continue
			}
			// No file on disk yet, backfill it below.
		}

		start := time.Now()
		row := RefreshTaskResult{Season: sn, Kind: "summary"}

		summary, err := s.fetchSummary(ctx, sn)
		if err != nil {
			row.Status = refreshStatusFailed
			row.Message = err.Error()
			row.DurationMs = time.Since(start).Milliseconds()
			rows = append(rows, row)
			s.logger.WarnContext(ctx, "team summary refresh failed",
				"season", sn.Label(), "error", err.Error())
			continue
		}
		if err := s.snapshots.WriteJSON(ctx, name, TeamSummaryFile{Updated: s.now().UTC(), Teams: summary}); err != nil {
			row.Status = refreshStatusFailed
			row.Message = fmt.Sprintf("write team summary: %v", err)
			row.DurationMs = time.Since(start).Milliseconds()
			rows = append(rows, row)
			continue
		}

		all.Data[sn] = summary
		row.Status = refreshStatusSuccess
		row.Rows = len(summary)
		row.DurationMs = time.Since(start).Milliseconds()
		rows = append(rows, row)
	}

	if len(all.Data) > 0 {
		if err := s.snapshots.WriteJSON(ctx, "team_summary.json", all); err != nil {
			return rows, fmt.Errorf("write combined team summary: %w", err)
		}
	}
	return rows, nil
}

func (s *RefreshService) fetchSummary(ctx context.Context, sn season.Season) (TeamSummary, error) {
	table, err := s.provider.LeagueDashTeamStats(ctx, sn.Label(), "Advanced")
	if err != nil {
		return nil, fmt.Errorf("fetch team summary season=%s: %w", sn.Label(), err)
	}
	summary, err := BuildTeamSummary(table)
	if err != nil {
		return nil, fmt.Errorf("build team summary season=%s: %w", sn.Label(), err)
	}
	return summary, nil
}
