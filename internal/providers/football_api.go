package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/stitts-dev/football-site/internal/cache"
	"github.com/stitts-dev/football-site/internal/models"
)

// BreakerName is the circuit breaker guarding the football API.
const BreakerName = "football-api"

// Breaker runs fn under circuit breaker protection.
type Breaker interface {
	Execute(service string, fn func() (interface{}, error)) (interface{}, error)
}

// ClientConfig configures a FootballAPIClient.
type ClientConfig struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second, <= 0 disables throttling
}

// FootballAPIClient reads standings, players and matches from the football REST backend.
// Successful responses are kept in the response cache; failures leave the cache untouched
// and are never retried.
type FootballAPIClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    Breaker
	cache      *cache.ResponseCache
	logger     *logrus.Logger
}

// NewFootballAPIClient creates a client. breaker may be nil.
func NewFootballAPIClient(cfg ClientConfig, respCache *cache.ResponseCache, breaker Breaker, logger *logrus.Logger) *FootballAPIClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), int(cfg.RateLimit)+1)
	}
	if respCache == nil {
		respCache = cache.NewResponseCache(cache.DefaultTTL, nil)
	}
	return &FootballAPIClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		breaker:    breaker,
		cache:      respCache,
		logger:     logger,
	}
}

// Cache exposes the response cache for health reporting.
func (c *FootballAPIClient) Cache() *cache.ResponseCache {
	return c.cache
}

// GetLeagues returns the league catalog. Season and team counts are filled from fresh
// cached standings when available; this never hits the network.
func (c *FootballAPIClient) GetLeagues(ctx context.Context) ([]models.League, error) {
	leagues := make([]models.League, len(models.Leagues))
	copy(leagues, models.Leagues)
	for i, l := range leagues {
		var st models.LeagueStandings
		if c.cache.GetJSON(standingsKey(l.ID), &st) {
			leagues[i].Season = st.League.Season
			leagues[i].TeamsCount = len(st.Teams)
		}
	}
	return leagues, ctx.Err()
}

// GetStandings returns the table of a league. An empty or unknown slug falls back to the
// Premier League.
func (c *FootballAPIClient) GetStandings(ctx context.Context, slug string) (models.LeagueStandings, error) {
	league, ok := models.LeagueBySlug(slug)
	if !ok {
		league = models.DefaultLeague
	}

	return cached(ctx, c, standingsKey(league.ID), func() (models.LeagueStandings, error) {
		endpoint := "/standings"
		if league.ID != models.DefaultLeague.ID {
			endpoint = "/standings/" + league.ID
		}

		var resp standingsResponse
		if err := c.getJSON(ctx, endpoint, &resp); err != nil {
			return models.LeagueStandings{}, err
		}

		out := models.LeagueStandings{League: league, Teams: make([]models.Team, 0, len(resp.Table))}
		out.League.Season = resp.Season
		out.League.TeamsCount = len(resp.Table)
		for _, t := range resp.Table {
			out.Teams = append(out.Teams, models.Team{
				ID:             models.TeamSlug(t.Name),
				Name:           t.Name,
				ShortName:      t.ShortName,
				Logo:           t.Crest,
				League:         league.Name,
				Country:        league.Country,
				Position:       t.Position,
				Played:         t.Played,
				Won:            t.Won,
				Drawn:          t.Drawn,
				Lost:           t.Lost,
				GoalsFor:       t.GoalsFor,
				GoalsAgainst:   t.GoalsAgainst,
				GoalDifference: t.GoalDifference,
				Points:         t.Points,
			})
		}
		return out, nil
	})
}

// GetAllTeams returns the teams of every league. Leagues that fail to load are skipped
// and logged; an error is returned only when no league could be loaded.
func (c *FootballAPIClient) GetAllTeams(ctx context.Context) ([]models.Team, error) {
	var (
		teams   []models.Team
		lastErr error
	)
	for _, l := range models.Leagues {
		st, err := c.GetStandings(ctx, l.ID)
		if err != nil {
			c.logger.WithFields(logrus.Fields{"league": l.ID, "error": err.Error()}).Warn("Failed to load standings")
			lastErr = err
			continue
		}
		teams = append(teams, st.Teams...)
	}
	if teams == nil && lastErr != nil {
		return nil, lastErr
	}
	return teams, nil
}

// GetAllPlayers returns players of every league. The quick endpoint is tried first and
// the full endpoint is used when it fails or returns nothing.
func (c *FootballAPIClient) GetAllPlayers(ctx context.Context) ([]models.Player, error) {
	return cached(ctx, c, cache.Key("all_players"), func() ([]models.Player, error) {
		var quick playersResponse
		err := c.getJSON(ctx, "/players/quick", &quick)
		if err == nil && len(quick.Players) > 0 {
			return shapePlayers(quick.Players, ""), nil
		}
		fields := logrus.Fields{"endpoint": "/players/quick"}
		if err != nil {
			fields["error"] = err.Error()
		}
		c.logger.WithFields(fields).Info("Quick players endpoint unavailable, using full list")

		var full playersResponse
		if err := c.getJSON(ctx, "/players/all", &full); err != nil {
			return nil, err
		}
		return shapePlayers(full.Players, ""), nil
	})
}

// GetPlayersByLeague returns the players of one league.
func (c *FootballAPIClient) GetPlayersByLeague(ctx context.Context, slug string) ([]models.Player, error) {
	league, ok := models.LeagueBySlug(slug)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLeague, slug)
	}

	return cached(ctx, c, cache.Key("players_league", league.ID), func() ([]models.Player, error) {
		var resp playersResponse
		if err := c.getJSON(ctx, "/players/league/"+league.ID, &resp); err != nil {
			return nil, err
		}
		name := resp.Competition
		if name == "" {
			name = league.Name
		}
		return shapePlayers(resp.Players, name), nil
	})
}

// GetAllMatches returns the matches of every league in upstream order.
func (c *FootballAPIClient) GetAllMatches(ctx context.Context) ([]models.Match, error) {
	return cached(ctx, c, cache.Key("all_matches"), func() ([]models.Match, error) {
		var resp matchesResponse
		if err := c.getJSON(ctx, "/matches/all", &resp); err != nil {
			return nil, err
		}
		out := make([]models.Match, 0, len(resp.Matches))
		for _, m := range resp.Matches {
			out = append(out, shapeMatch(m, ""))
		}
		return out, nil
	})
}

// GetMatchesByRounds returns matches grouped by league display name and round. slug is a
// league slug or "all".
func (c *FootballAPIClient) GetMatchesByRounds(ctx context.Context, slug string) (models.LeagueRounds, error) {
	if slug == "" || slug == models.AllLeagues {
		return cached(ctx, c, cache.Key("matches_rounds", models.AllLeagues), func() (models.LeagueRounds, error) {
			var resp allRoundsResponse
			if err := c.getJSON(ctx, "/matches/rounds/all", &resp); err != nil {
				return nil, err
			}
			out := make(models.LeagueRounds, len(resp.Rounds))
			for leagueName, rounds := range resp.Rounds {
				out[leagueName] = shapeRounds(rounds)
			}
			return out, nil
		})
	}

	league, ok := models.LeagueBySlug(slug)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLeague, slug)
	}
	return cached(ctx, c, cache.Key("matches_rounds", league.ID), func() (models.LeagueRounds, error) {
		var resp roundsResponse
		if err := c.getJSON(ctx, "/matches/rounds/"+league.ID, &resp); err != nil {
			return nil, err
		}
		return models.LeagueRounds{league.Name: shapeRounds(resp.Rounds)}, nil
	})
}

func standingsKey(slug string) string {
	return cache.Key("standings", slug)
}

type refreshKey struct{}

// WithRefresh marks ctx so reads skip fresh cache entries and always refetch, replacing
// the cached value on success.
func WithRefresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, refreshKey{}, true)
}

func refreshing(ctx context.Context) bool {
	v, _ := ctx.Value(refreshKey{}).(bool)
	return v
}

// cached serves key from the response cache or stores the result of fetch under it.
func cached[T any](ctx context.Context, c *FootballAPIClient, key string, fetch func() (T, error)) (T, error) {
	var v T
	if !refreshing(ctx) && c.cache.GetJSON(key, &v) {
		c.logger.WithField("cache_key", key).Debug("Serving cached football data")
		return v, nil
	}

	v, err := fetch()
	if err != nil {
		var zero T
		return zero, err
	}
	if err := c.cache.SetJSON(key, v); err != nil {
		c.logger.WithFields(logrus.Fields{"cache_key": key, "error": err.Error()}).Warn("Failed to cache football data")
	}
	return v, nil
}

type rawResponse struct {
	status int
	body   []byte
}

// getJSON performs a throttled GET through the circuit breaker and decodes the body.
// Only transport failures and 5xx answers count against the breaker.
func (c *FootballAPIClient) getJSON(ctx context.Context, endpoint string, dest interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &NetworkError{Endpoint: endpoint, Err: err}
	}

	start := time.Now()
	call := func() (interface{}, error) {
		return c.do(ctx, endpoint)
	}

	var (
		result interface{}
		err    error
	)
	if c.breaker != nil {
		result, err = c.breaker.Execute(BreakerName, call)
	} else {
		result, err = call()
	}

	logEntry := c.logger.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"duration": time.Since(start).String(),
	})

	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			logEntry.WithField("status", httpErr.StatusCode).Warn("Football API returned an error")
			return httpErr
		}
		logEntry.WithField("error", err.Error()).Warn("Football API request failed")
		return &NetworkError{Endpoint: endpoint, Err: err}
	}

	raw := result.(*rawResponse)
	if raw.status < 200 || raw.status >= 300 {
		logEntry.WithField("status", raw.status).Warn("Football API returned an error")
		return &HTTPError{StatusCode: raw.status, Endpoint: endpoint, Body: truncate(string(raw.body), 512)}
	}

	if err := json.Unmarshal(raw.body, dest); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	logEntry.WithField("status", raw.status).Debug("Football API request completed")
	return nil
}

func (c *FootballAPIClient) do(ctx context.Context, endpoint string) (*rawResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 500 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Endpoint: endpoint, Body: truncate(string(body), 512)}
	}
	return &rawResponse{status: resp.StatusCode, body: body}, nil
}

func shapePlayers(in []apiPlayer, league string) []models.Player {
	out := make([]models.Player, 0, len(in))
	for _, p := range in {
		out = append(out, shapePlayer(p, league))
	}
	return out
}

// shapePlayer fills the defaults the backend leaves out. With an empty league the league
// is derived from the team id.
func shapePlayer(p apiPlayer, league string) models.Player {
	if league == "" {
		league = "Unknown"
		if p.TeamID != 0 {
			league = models.LeagueNameByTeamID(p.TeamID)
		}
	}
	return models.Player{
		ID:          p.ID.String(),
		Name:        p.Name,
		Photo:       avatarURL(p.Name),
		Team:        p.Team,
		League:      league,
		Nationality: orDefault(p.Nationality, "Unknown"),
		Position:    orDefault(p.Position, "Unknown"),
		Age:         orDefaultInt(p.Age, 25),
		ShirtNumber: p.ShirtNumber,
		Overall:     75,
		Rating:      7.5,
	}
}

func shapeRounds(in map[string][]apiMatch) models.Rounds {
	out := make(models.Rounds, len(in))
	for round, matches := range in {
		shaped := make([]models.Match, 0, len(matches))
		for _, m := range matches {
			shaped = append(shaped, shapeMatch(m, round))
		}
		out[round] = shaped
	}
	return out
}

func shapeMatch(m apiMatch, round string) models.Match {
	out := models.Match{
		ID:             m.ID.String(),
		HomeTeam:       m.HomeTeam.Name,
		AwayTeam:       m.AwayTeam.Name,
		HomeTeamShort:  m.HomeTeam.ShortName,
		AwayTeamShort:  m.AwayTeam.ShortName,
		HomeTeamCrest:  m.HomeTeam.Crest,
		AwayTeamCrest:  m.AwayTeam.Crest,
		Date:           m.UTCDate,
		Status:         models.StatusFromUpstream(m.Status),
		UpstreamStatus: m.Status,
		Competition:    m.Competition.Name,
		League:         m.Competition.Code,
		Round:          round,
		Stage:          m.Stage,
	}
	if m.Score != nil {
		out.Score = &models.Score{Home: m.Score.FullTime.Home, Away: m.Score.FullTime.Away}
	}
	return out
}

func avatarURL(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&size=150&background=cccccc&color=666666"
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orDefaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
