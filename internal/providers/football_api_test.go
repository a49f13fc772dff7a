package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/football-site/internal/cache"
	"github.com/stitts-dev/football-site/internal/clock"
	"github.com/stitts-dev/football-site/internal/models"
	"github.com/stitts-dev/football-site/pkg/logger"
)

const standingsJSON = `{
  "competition": "Primera Division",
  "season": "2025",
  "table": [
    {"position": 1, "name": "Real Madrid CF", "shortName": "Real Madrid", "crest": "rm.png", "points": 9,
     "goalsFor": 8, "goalsAgainst": 2, "goalDifference": 6, "played": 3, "won": 3, "drawn": 0, "lost": 0},
    {"position": 2, "name": "FC Barcelona", "shortName": "Barça", "crest": "fcb.png", "points": 7,
     "goalsFor": 9, "goalsAgainst": 3, "goalDifference": 6, "played": 3, "won": 2, "drawn": 1, "lost": 0}
  ]
}`

const quickPlayersJSON = `{
  "competition": "All",
  "players": [
    {"id": 44, "name": "Erling Haaland", "position": "Centre-Forward", "nationality": "Norway",
     "team": "Manchester City FC", "teamId": 65, "shirtNumber": 9, "age": 25},
    {"id": 3188, "name": "Unknown Kid", "team": "FC Somewhere", "teamId": 999}
  ]
}`

const roundsJSON = `{
  "competition": "Premier League",
  "rounds": {
    "1": [
      {"id": 537785, "homeTeam": {"name": "Liverpool FC", "shortName": "Liverpool", "crest": "lfc.png"},
       "awayTeam": {"name": "AFC Bournemouth", "shortName": "Bournemouth", "crest": "afcb.png"},
       "utcDate": "2025-08-15T19:00:00Z", "status": "FINISHED", "stage": "REGULAR_SEASON",
       "score": {"fullTime": {"home": 4, "away": 2}, "halfTime": {"home": 1, "away": 0}},
       "competition": {"id": 2021, "name": "Premier League", "code": "PL"}}
    ],
    "2": [
      {"id": 537800, "homeTeam": {"name": "Arsenal FC", "shortName": "Arsenal", "crest": "afc.png"},
       "awayTeam": {"name": "Leeds United FC", "shortName": "Leeds", "crest": "lufc.png"},
       "utcDate": "2025-08-23T16:30:00Z", "status": "TIMED", "stage": "REGULAR_SEASON",
       "score": {"fullTime": {"home": null, "away": null}, "halfTime": {"home": null, "away": null}},
       "competition": {"id": 2021, "name": "Premier League", "code": "PL"}}
    ]
  }
}`

type backend struct {
	server *httptest.Server
	hits   map[string]*atomic.Int32
}

func newBackend(t *testing.T, routes map[string]func(w http.ResponseWriter)) *backend {
	b := &backend{hits: map[string]*atomic.Int32{}}
	for path := range routes {
		b.hits[path] = &atomic.Int32{}
	}
	b.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		b.hits[r.URL.Path].Add(1)
		h(w)
	}))
	t.Cleanup(b.server.Close)
	return b
}

func jsonBody(body string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}
}

func status(code int) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.WriteHeader(code)
		w.Write([]byte(`{"detail":"upstream error"}`))
	}
}

func newClient(b *backend, c *cache.ResponseCache, breaker Breaker) *FootballAPIClient {
	return NewFootballAPIClient(ClientConfig{BaseURL: b.server.URL, Timeout: 2 * time.Second}, c, breaker, logger.Discard())
}

func TestGetStandingsShapesTeamsAndCaches(t *testing.T) {
	b := newBackend(t, map[string]func(http.ResponseWriter){
		"/standings/la-liga": jsonBody(standingsJSON),
	})
	client := newClient(b, nil, nil)

	st, err := client.GetStandings(context.Background(), "la-liga")
	require.NoError(t, err)
	assert.Equal(t, "La Liga", st.League.Name)
	assert.Equal(t, "2025", st.League.Season)
	require.Len(t, st.Teams, 2)
	assert.Equal(t, "real-madrid-cf", st.Teams[0].ID)
	assert.Equal(t, "La Liga", st.Teams[0].League)
	assert.Equal(t, "Spain", st.Teams[0].Country)
	assert.Equal(t, "fcb.png", st.Teams[1].Logo)

	_, err = client.GetStandings(context.Background(), "la-liga")
	require.NoError(t, err)
	assert.Equal(t, int32(1), b.hits["/standings/la-liga"].Load())

	leagues, err := client.GetLeagues(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, leagues[1].TeamsCount)
	assert.Equal(t, 0, leagues[0].TeamsCount)
}

func TestGetStandingsUnknownSlugFallsBackToPremierLeague(t *testing.T) {
	b := newBackend(t, map[string]func(http.ResponseWriter){
		"/standings": jsonBody(`{"competition":"Premier League","season":"2025","table":[]}`),
	})
	client := newClient(b, nil, nil)

	st, err := client.GetStandings(context.Background(), "eredivisie")
	require.NoError(t, err)
	assert.Equal(t, "premier-league", st.League.ID)
	assert.Empty(t, st.Teams)
}

func TestCacheExpiryRefetches(t *testing.T) {
	clk := clock.NewFake(time.Date(2025, 8, 16, 12, 0, 0, 0, time.UTC))
	c := cache.NewResponseCache(5*time.Minute, clk)
	b := newBackend(t, map[string]func(http.ResponseWriter){
		"/standings/la-liga": jsonBody(standingsJSON),
	})
	client := newClient(b, c, nil)

	_, err := client.GetStandings(context.Background(), "la-liga")
	require.NoError(t, err)
	clk.Advance(4 * time.Minute)
	_, err = client.GetStandings(context.Background(), "la-liga")
	require.NoError(t, err)
	assert.Equal(t, int32(1), b.hits["/standings/la-liga"].Load())

	clk.Advance(time.Minute)
	_, err = client.GetStandings(context.Background(), "la-liga")
	require.NoError(t, err)
	assert.Equal(t, int32(2), b.hits["/standings/la-liga"].Load())
}

func TestGetAllPlayersUsesQuickEndpoint(t *testing.T) {
	b := newBackend(t, map[string]func(http.ResponseWriter){
		"/players/quick": jsonBody(quickPlayersJSON),
		"/players/all":   status(http.StatusInternalServerError),
	})
	client := newClient(b, nil, nil)

	players, err := client.GetAllPlayers(context.Background())
	require.NoError(t, err)
	require.Len(t, players, 2)

	haaland := players[0]
	assert.Equal(t, "44", haaland.ID)
	assert.Equal(t, "Premier League", haaland.League)
	require.NotNil(t, haaland.ShirtNumber)
	assert.Equal(t, 9, *haaland.ShirtNumber)
	assert.Equal(t, "https://ui-avatars.com/api/?name=Erling+Haaland&size=150&background=cccccc&color=666666", haaland.Photo)

	unknown := players[1]
	assert.Equal(t, "Unknown", unknown.League)
	assert.Equal(t, "Unknown", unknown.Position)
	assert.Equal(t, "Unknown", unknown.Nationality)
	assert.Equal(t, 25, unknown.Age)
	assert.Equal(t, 7.5, unknown.Rating)
	assert.Equal(t, 75, unknown.Overall)

	assert.Equal(t, int32(0), b.hits["/players/all"].Load())
}

func TestGetAllPlayersFallsBackToFullList(t *testing.T) {
	b := newBackend(t, map[string]func(http.ResponseWriter){
		"/players/quick": jsonBody(`{"players":[]}`),
		"/players/all":   jsonBody(quickPlayersJSON),
	})
	client := newClient(b, nil, nil)

	players, err := client.GetAllPlayers(context.Background())
	require.NoError(t, err)
	assert.Len(t, players, 2)
	assert.Equal(t, int32(1), b.hits["/players/all"].Load())

	_, ok := client.Cache().Get("all_players")
	assert.True(t, ok)
}

func TestGetPlayersByLeagueUsesCompetitionName(t *testing.T) {
	b := newBackend(t, map[string]func(http.ResponseWriter){
		"/players/league/la-liga": jsonBody(`{"competition":"Primera Division","players":[{"id":"7","name":"Pedri","team":"FC Barcelona"}]}`),
	})
	client := newClient(b, nil, nil)

	players, err := client.GetPlayersByLeague(context.Background(), "la-liga")
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "7", players[0].ID)
	assert.Equal(t, "Primera Division", players[0].League)

	_, ok := client.Cache().Get("players_league_la-liga")
	assert.True(t, ok)

	_, err = client.GetPlayersByLeague(context.Background(), "mls")
	assert.ErrorIs(t, err, ErrUnknownLeague)
}

func TestGetMatchesByRounds(t *testing.T) {
	b := newBackend(t, map[string]func(http.ResponseWriter){
		"/matches/rounds/premier-league": jsonBody(roundsJSON),
	})
	client := newClient(b, nil, nil)

	rounds, err := client.GetMatchesByRounds(context.Background(), "premier-league")
	require.NoError(t, err)
	pl := rounds["Premier League"]
	require.Len(t, pl, 2)

	finished := pl["1"][0]
	assert.Equal(t, "537785", finished.ID)
	assert.Equal(t, models.MatchFinished, finished.Status)
	assert.Equal(t, "PL", finished.League)
	assert.Equal(t, "1", finished.Round)
	require.NotNil(t, finished.Score)
	assert.Equal(t, 4, *finished.Score.Home)

	upcoming := pl["2"][0]
	assert.Equal(t, models.MatchUpcoming, upcoming.Status)
	assert.Nil(t, upcoming.Score.Home)
	assert.Equal(t, "2025-08-23", upcoming.Day())
}

func TestHTTPErrorsAreTypedAndNotCached(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		message string
	}{
		{"rate limited", http.StatusTooManyRequests, "Too many requests"},
		{"unavailable", http.StatusServiceUnavailable, "temporarily unavailable"},
		{"bad gateway", http.StatusBadGateway, "temporarily unavailable"},
		{"not found", http.StatusNotFound, "not found"},
		{"teapot", http.StatusTeapot, "status 418"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBackend(t, map[string]func(http.ResponseWriter){
				"/matches/all": status(tt.code),
			})
			client := newClient(b, nil, nil)

			_, err := client.GetAllMatches(context.Background())
			require.Error(t, err)

			var httpErr *HTTPError
			require.True(t, errors.As(err, &httpErr))
			assert.Equal(t, tt.code, httpErr.StatusCode)
			assert.Equal(t, "/matches/all", httpErr.Endpoint)
			assert.Equal(t, tt.code, StatusCode(err))
			assert.Contains(t, UserMessage(err), tt.message)

			_, ok := client.Cache().Get("all_matches")
			assert.False(t, ok)
		})
	}
}

func TestNetworkErrorLeavesStaleEntryAlone(t *testing.T) {
	clk := clock.NewFake(time.Date(2025, 8, 16, 12, 0, 0, 0, time.UTC))
	c := cache.NewResponseCache(time.Minute, clk)
	c.Set("all_matches", []byte(`[]`))
	clk.Advance(2 * time.Minute)

	client := NewFootballAPIClient(ClientConfig{BaseURL: "http://127.0.0.1:1", Timeout: time.Second}, c, nil, logger.Discard())

	_, err := client.GetAllMatches(context.Background())
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Contains(t, UserMessage(err), "Unable to reach")

	assert.Equal(t, 1, c.Stats().Entries)
}

type countingBreaker struct {
	calls int
	open  bool
}

func (b *countingBreaker) Execute(service string, fn func() (interface{}, error)) (interface{}, error) {
	b.calls++
	if b.open {
		return nil, errors.New("circuit breaker is open")
	}
	return fn()
}

func TestBreakerWrapsRequests(t *testing.T) {
	b := newBackend(t, map[string]func(http.ResponseWriter){
		"/matches/all": jsonBody(`{"matches":[]}`),
	})
	breaker := &countingBreaker{}
	client := newClient(b, nil, breaker)

	_, err := client.GetAllMatches(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, breaker.calls)

	breaker.open = true
	_, err = client.GetMatchesByRounds(context.Background(), "all")
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, 2, breaker.calls)
	assert.Equal(t, int32(1), b.hits["/matches/all"].Load())
}

func TestGetAllTeamsSkipsFailingLeagues(t *testing.T) {
	b := newBackend(t, map[string]func(http.ResponseWriter){
		"/standings/la-liga": jsonBody(standingsJSON),
	})
	client := newClient(b, nil, nil)

	teams, err := client.GetAllTeams(context.Background())
	require.NoError(t, err)
	assert.Len(t, teams, 2)
}

func TestTruncateKeepsRuneBoundary(t *testing.T) {
	s := "Atlético" // é occupies bytes 3 and 4

	assert.Equal(t, "Atl", truncate(s, 3))
	assert.Equal(t, "Atl", truncate(s, 4))
	assert.Equal(t, "Atlé", truncate(s, 5))
	assert.Equal(t, s, truncate(s, 64))
	assert.True(t, utf8.ValidString(truncate(s, 4)))
}
