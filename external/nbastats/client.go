package nbastats

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/courtsync/courtsync/internal/domain/rawdata"
	"github.com/courtsync/courtsync/internal/platform/cache"
	"github.com/courtsync/courtsync/internal/platform/logging"
	"github.com/courtsync/courtsync/internal/platform/resilience"
	"github.com/courtsync/courtsync/internal/usecase"
)

const (
	defaultBaseURL    = "https://stats.nba.com/stats"
	leagueID          = "00"
	seasonTypeRegular = "Regular Season"
	sourceName        = "stats.nba.com"
)

// The provider rate-limits aggressively and recovers slowly, so the
// backoff ladder stretches far past the usual exponential curve.
var retryDelays = []time.Duration{
	1 * time.Second, 2 * time.Second, 5 * time.Second, 10 * time.Second,
	15 * time.Second, 20 * time.Second, 25 * time.Second, 25 * time.Second,
	25 * time.Second, 50 * time.Second, 50 * time.Second, 100 * time.Second,
}

// ErrTransient marks failures worth retrying on the next scheduled
// run: network errors, timeouts, 429s and 5xx responses.
var ErrTransient = crerr.New("nba stats transient failure")

// Without browser-shaped headers stats.nba.com hangs the connection
// instead of answering.
var browserHeaders = map[string]string{
	"User-Agent":         "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Accept":             "application/json, text/plain, */*",
	"Accept-Language":    "en-US,en;q=0.9",
	"Referer":            "https://www.nba.com/",
	"Origin":             "https://www.nba.com",
	"x-nba-stats-origin": "stats",
	"x-nba-stats-token":  "true",
}

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	Cache          *cache.Store
	Archive        rawdata.Repository
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
	cache          *cache.Store
	archive        rawdata.Repository
	now            func() time.Time
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 30 * time.Second
	}
	if httpClient.Transport == nil {
		httpClient.Transport = otelhttp.NewTransport(http.DefaultTransport)
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	if maxRetries > len(retryDelays) {
		maxRetries = len(retryDelays)
	}

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		maxRetries:     maxRetries,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
		cache:          cfg.Cache,
		archive:        cfg.Archive,
		now:            time.Now,
	}
}

// TeamGameLogs fetches one season of per-team game logs. dateFrom
// (MM/DD/YYYY, may be empty) narrows the fetch to the season's tail.
func (c *Client) TeamGameLogs(ctx context.Context, seasonLabel, measureType, dateFrom string) (usecase.ResultTable, error) {
	if strings.TrimSpace(seasonLabel) == "" {
		return usecase.ResultTable{}, fmt.Errorf("season label is required")
	}
	if mt := MeasureType(measureType); mt != MeasureBase && mt != MeasureAdvanced {
		return usecase.ResultTable{}, fmt.Errorf("unsupported measure type %q", measureType)
	}
	query := map[string]string{
		"LeagueID":    leagueID,
		"Season":      seasonLabel,
		"SeasonType":  seasonTypeRegular,
		"MeasureType": measureType,
		"DateFrom":    dateFrom,
		"DateTo":      "",
		"PerMode":     "Totals",
	}
	return c.fetchTable(ctx, "/teamgamelogs", query, "TeamGameLogs", "team", seasonLabel+"/"+measureType)
}

// BoxScoreTraditional fetches per-player counting stats for one game.
func (c *Client) BoxScoreTraditional(ctx context.Context, gameID string) (usecase.ResultTable, error) {
	return c.boxScore(ctx, "/boxscoretraditionalv2", gameID)
}

// BoxScoreAdvanced fetches per-player advanced ratings for one game.
func (c *Client) BoxScoreAdvanced(ctx context.Context, gameID string) (usecase.ResultTable, error) {
	return c.boxScore(ctx, "/boxscoreadvancedv2", gameID)
}

func (c *Client) boxScore(ctx context.Context, path, gameID string) (usecase.ResultTable, error) {
	if strings.TrimSpace(gameID) == "" {
		return usecase.ResultTable{}, fmt.Errorf("game id is required")
	}
	query := map[string]string{
		"GameID":      gameID,
		"StartPeriod": "0",
		"EndPeriod":   "10",
		"StartRange":  "0",
		"EndRange":    "28800",
		"RangeType":   "0",
	}
	return c.fetchTable(ctx, path, query, "PlayerStats", "boxscore", strings.TrimPrefix(path, "/")+"/"+gameID)
}

// LeagueDashTeamStats fetches season-level team aggregates.
func (c *Client) LeagueDashTeamStats(ctx context.Context, seasonLabel, measureType string) (usecase.ResultTable, error) {
	if strings.TrimSpace(seasonLabel) == "" {
		return usecase.ResultTable{}, fmt.Errorf("season label is required")
	}
	if mt := MeasureType(measureType); mt != MeasureBase && mt != MeasureAdvanced {
		return usecase.ResultTable{}, fmt.Errorf("unsupported measure type %q", measureType)
	}
	query := map[string]string{
		"LeagueID":    leagueID,
		"Season":      seasonLabel,
		"SeasonType":  seasonTypeRegular,
		"MeasureType": measureType,
		"PerMode":     "PerGame",
	}
	return c.fetchTable(ctx, "/leaguedashteamstats", query, "LeagueDashTeamStats", "summary", seasonLabel+"/"+measureType)
}

// LeagueDashPlayerStats fetches season-level per-player aggregates
// for one measure type and per mode.
func (c *Client) LeagueDashPlayerStats(ctx context.Context, seasonLabel, measureType, perMode string) (usecase.ResultTable, error) {
	if strings.TrimSpace(seasonLabel) == "" {
		return usecase.ResultTable{}, fmt.Errorf("season label is required")
	}
	switch MeasureType(measureType) {
	case MeasureBase, MeasureAdvanced, MeasureDefense:
	default:
		return usecase.ResultTable{}, fmt.Errorf("unsupported measure type %q", measureType)
	}
	switch PerMode(perMode) {
	case PerModeTotals, PerModePerGame, PerModePer36, PerModePer100:
	default:
		return usecase.ResultTable{}, fmt.Errorf("unsupported per mode %q", perMode)
	}
	query := map[string]string{
		"LeagueID":    leagueID,
		"Season":      seasonLabel,
		"SeasonType":  seasonTypeRegular,
		"MeasureType": measureType,
		"PerMode":     perMode,
	}
	key := seasonLabel + "/" + measureType + "/" + perMode
	return c.fetchTable(ctx, "/leaguedashplayerstats", query, "LeagueDashPlayerStats", "playerdash", key)
}

// LeagueDashPlayerShooting fetches season totals of two-point shots
// broken out from other field goals.
func (c *Client) LeagueDashPlayerShooting(ctx context.Context, seasonLabel string) (usecase.ResultTable, error) {
	if strings.TrimSpace(seasonLabel) == "" {
		return usecase.ResultTable{}, fmt.Errorf("season label is required")
	}
	query := map[string]string{
		"LeagueID":   leagueID,
		"Season":     seasonLabel,
		"SeasonType": seasonTypeRegular,
		"PerMode":    string(PerModeTotals),
	}
	return c.fetchTable(ctx, "/leaguedashplayerptshot", query, "LeagueDashPTShots", "playershooting", seasonLabel)
}

// LeagueDashPlayerBio fetches player measurements and origin data.
func (c *Client) LeagueDashPlayerBio(ctx context.Context, seasonLabel string) (usecase.ResultTable, error) {
	if strings.TrimSpace(seasonLabel) == "" {
		return usecase.ResultTable{}, fmt.Errorf("season label is required")
	}
	query := map[string]string{
		"LeagueID":   leagueID,
		"Season":     seasonLabel,
		"SeasonType": seasonTypeRegular,
		"PerMode":    string(PerModeTotals),
	}
	return c.fetchTable(ctx, "/leaguedashplayerbiostats", query, "LeagueDashPlayerBioStats", "playerbio", seasonLabel)
}

func (c *Client) fetchTable(ctx context.Context, path string, query map[string]string, resultSet, entityType, entityKey string) (usecase.ResultTable, error) {
	raw, err := c.doJSON(ctx, path, query)
	if err != nil {
		return usecase.ResultTable{}, err
	}

	var envelope Envelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return usecase.ResultTable{}, fmt.Errorf("decode provider payload: %w", err)
	}
	rs, ok := envelope.resultSet(resultSet)
	if !ok {
		return usecase.ResultTable{}, fmt.Errorf("provider payload missing result set %q", resultSet)
	}

	c.archivePayload(ctx, path, query, entityType, entityKey, raw)

	return usecase.ResultTable{
		Name:    rs.Name,
		Headers: rs.Headers,
		Rows:    rs.RowSet,
	}, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "nba stats circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: stats provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	load := func(ctx context.Context) (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && stderrors.Is(reqErr, ErrTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	}

	var out any
	var err error
	if c.cache != nil {
		out, err = c.cache.GetOrLoad(ctx, fullURL, load)
	} else {
		out, err, _ = c.flight.Do(fullURL, func() (any, error) { return load(ctx) })
	}
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}
	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		for key, value := range browserHeaders {
			req.Header.Set(key, value)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", ErrTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", ErrTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", ErrTransient, resp.StatusCode, abbreviateBody(raw))
			} else {
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(retryDelays[attempt])
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("%w: provider request failed", ErrTransient)
	}
	c.logger.WarnContext(ctx, "nba stats request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

// archivePayload is best effort: a broken archive never fails a fetch.
func (c *Client) archivePayload(ctx context.Context, path string, query map[string]string, entityType, entityKey string, raw []byte) {
	if c.archive == nil {
		return
	}

	keys := make([]string, 0, len(query))
	for key := range query {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	values := url.Values{}
	for _, key := range keys {
		values.Set(key, query[key])
	}

	payload := rawdata.Payload{
		Source:      sourceName,
		EntityType:  entityType,
		EntityKey:   entityType + "/" + entityKey,
		Season:      query["Season"],
		Endpoint:    path + "?" + values.Encode(),
		PayloadJSON: string(raw),
		PayloadHash: rawdata.HashPayload(raw),
		FetchedAt:   c.now().UTC(),
	}
	if err := c.archive.UpsertMany(ctx, []rawdata.Payload{payload}); err != nil {
		c.logger.WarnContext(ctx, "archive raw payload failed", "entity_key", payload.EntityKey, "error", err)
	}
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
