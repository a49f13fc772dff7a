package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/stitts-dev/football-site/internal/api/handlers"
	"github.com/stitts-dev/football-site/internal/api/middleware"
	"github.com/stitts-dev/football-site/internal/cache"
	"github.com/stitts-dev/football-site/internal/favorites"
	"github.com/stitts-dev/football-site/internal/models"
	"github.com/stitts-dev/football-site/internal/providers"
	"github.com/stitts-dev/football-site/internal/services"
	"github.com/stitts-dev/football-site/internal/session"
	"github.com/stitts-dev/football-site/pkg/config"
	"github.com/stitts-dev/football-site/pkg/logger"
)

type mockFootball struct {
	mock.Mock
}

func (m *mockFootball) GetLeagues(ctx context.Context) ([]models.League, error) {
	args := m.Called()
	return args.Get(0).([]models.League), args.Error(1)
}

func (m *mockFootball) GetStandings(ctx context.Context, slug string) (models.LeagueStandings, error) {
	args := m.Called(slug)
	return args.Get(0).(models.LeagueStandings), args.Error(1)
}

func (m *mockFootball) GetAllTeams(ctx context.Context) ([]models.Team, error) {
	args := m.Called()
	return args.Get(0).([]models.Team), args.Error(1)
}

func (m *mockFootball) GetAllPlayers(ctx context.Context) ([]models.Player, error) {
	args := m.Called()
	return args.Get(0).([]models.Player), args.Error(1)
}

func (m *mockFootball) GetPlayersByLeague(ctx context.Context, slug string) ([]models.Player, error) {
	args := m.Called(slug)
	return args.Get(0).([]models.Player), args.Error(1)
}

func (m *mockFootball) GetAllMatches(ctx context.Context) ([]models.Match, error) {
	args := m.Called()
	return args.Get(0).([]models.Match), args.Error(1)
}

func (m *mockFootball) GetMatchesByRounds(ctx context.Context, slug string) (models.LeagueRounds, error) {
	args := m.Called(slug)
	return args.Get(0).(models.LeagueRounds), args.Error(1)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta *struct {
		Total   int  `json:"total"`
		Visible int  `json:"visible"`
		HasMore bool `json:"has_more"`
	} `json:"meta"`
}

type RouterTestSuite struct {
	suite.Suite
	football *mockFootball
	store    *favorites.MemDBStore
	router   *gin.Engine
	session  string
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (s *RouterTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (s *RouterTestSuite) SetupTest() {
	s.football = &mockFootball{}
	store, err := favorites.NewMemDBStore()
	s.Require().NoError(err)
	s.store = store

	log := logger.Discard()
	cfg := &config.Config{
		Env:            "test",
		CorsOrigins:    []string{"http://localhost:5173"},
		PageSize:       2,
		SearchDebounce: 10 * time.Millisecond,
		LoadMoreDelay:  10 * time.Millisecond,
	}
	s.router = NewRouter(Dependencies{
		Config:    cfg,
		Logger:    log,
		Football:  s.football,
		Cache:     cache.NewResponseCache(time.Minute, nil),
		Favorites: favorites.NewService(store, log),
		Breakers:  services.NewCircuitBreakerService(5, time.Minute, log).Report,
	})
	s.session = "0b6f3a52-9f0e-4f57-8b0f-4d7a3d1b2c11"
}

func (s *RouterTestSuite) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.SessionHeader, s.session)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterTestSuite) decode(w *httptest.ResponseRecorder, data interface{}) envelope {
	var env envelope
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env))
	if data != nil && len(env.Data) > 0 {
		s.Require().NoError(json.Unmarshal(env.Data, data))
	}
	return env
}

func players() []models.Player {
	return []models.Player{
		{ID: "1", Name: "Erling Haaland", Team: "Manchester City FC", Nationality: "Norway", League: "Premier League", Position: "Centre-Forward"},
		{ID: "2", Name: "Robert Lewandowski", Team: "FC Barcelona", Nationality: "Poland", League: "Primera Division", Position: "Centre-Forward"},
		{ID: "3", Name: "Bukayo Saka", Team: "Arsenal FC", Nationality: "England", League: "Premier League", Position: "Right Winger"},
	}
}

func (s *RouterTestSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"status":"ok"`)
}

func (s *RouterTestSuite) TestReadyReportsDependencies() {
	w := s.do(http.MethodGet, "/ready", nil)
	s.Equal(http.StatusOK, w.Code)

	var body map[string]interface{}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.Equal("ready", body["status"])
	s.Contains(body, "cache")
	s.Equal(map[string]interface{}{"status": "up"}, body["store"])
	s.Equal(map[string]interface{}{
		providers.BreakerName: map[string]interface{}{
			"state":                "closed",
			"requests":             float64(0),
			"total_failures":       float64(0),
			"consecutive_failures": float64(0),
		},
	}, body["circuit_breakers"])
	s.NotContains(body, "cache_warmer")
}

func (s *RouterTestSuite) TestPlayersFilteredAndWindowed() {
	s.football.On("GetAllPlayers").Return(players(), nil)
	s.football.On("GetPlayersByLeague", "premier-league").Return(players(), nil).Once()

	var got []models.Player
	env := s.decode(s.do(http.MethodGet, "/api/v1/players?league=Premier%20League", nil), &got)
	s.True(env.Success)
	s.Len(got, 2)
	s.Require().NotNil(env.Meta)
	s.Equal(2, env.Meta.Total)
	s.False(env.Meta.HasMore)

	env = s.decode(s.do(http.MethodGet, "/api/v1/players", nil), &got)
	s.Equal([]string{"1", "2"}, []string{got[0].ID, got[1].ID})
	s.Equal(3, env.Meta.Total)
	s.True(env.Meta.HasMore)

	env = s.decode(s.do(http.MethodGet, "/api/v1/players?visible=10&position=Right%20Winger", nil), &got)
	s.Len(got, 1)
	s.Equal("3", got[0].ID)
	s.Equal(1, env.Meta.Visible)
}

func (s *RouterTestSuite) TestPlayersUseLeagueEndpointForSlug() {
	s.football.On("GetPlayersByLeague", "la-liga").Return([]models.Player{players()[1]}, nil).Once()

	var got []models.Player
	env := s.decode(s.do(http.MethodGet, "/api/v1/players?league=la-liga&search=POL", nil), &got)
	s.True(env.Success)
	s.Require().Len(got, 1)
	s.Equal("2", got[0].ID)
	s.football.AssertExpectations(s.T())
}

func (s *RouterTestSuite) TestPlayersValidation() {
	w := s.do(http.MethodGet, "/api/v1/players?visible=-1", nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/v1/players?league=eredivisie", nil)
	s.Equal(http.StatusBadRequest, w.Code)
	env := s.decode(w, nil)
	s.Equal("VALIDATION_ERROR", env.Error.Code)
}

func (s *RouterTestSuite) TestUpstreamErrorsAreMapped() {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unavailable", &providers.HTTPError{StatusCode: 503, Endpoint: "/standings"}, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE"},
		{"rate limited", &providers.HTTPError{StatusCode: 429, Endpoint: "/standings"}, http.StatusTooManyRequests, "RATE_LIMITED"},
		{"not found", &providers.HTTPError{StatusCode: 404, Endpoint: "/standings"}, http.StatusNotFound, "NOT_FOUND"},
		{"bad request", &providers.HTTPError{StatusCode: 400, Endpoint: "/standings"}, http.StatusBadGateway, "UPSTREAM_ERROR"},
		{"network", &providers.NetworkError{Endpoint: "/standings", Err: errors.New("refused")}, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE"},
		{"other", errors.New("decode failed"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.football.ExpectedCalls = nil
			s.football.On("GetStandings", "serie-a").Return(models.LeagueStandings{}, tc.err).Once()

			w := s.do(http.MethodGet, "/api/v1/standings/serie-a", nil)
			s.Equal(tc.status, w.Code)
			env := s.decode(w, nil)
			s.False(env.Success)
			s.Equal(tc.code, env.Error.Code)
			s.Equal(providers.UserMessage(tc.err), env.Error.Message)
		})
	}
}

func (s *RouterTestSuite) TestStandingsWithoutLeague() {
	s.football.On("GetStandings", "").Return(models.LeagueStandings{League: models.DefaultLeague}, nil).Once()

	var got models.LeagueStandings
	env := s.decode(s.do(http.MethodGet, "/api/v1/standings", nil), &got)
	s.True(env.Success)
	s.Equal("Premier League", got.League.Name)
}

func (s *RouterTestSuite) TestMatchesByLeagueAndDate() {
	day := func(d int) time.Time { return time.Date(2024, 8, d, 15, 0, 0, 0, time.UTC) }
	s.football.On("GetAllMatches").Return([]models.Match{
		{ID: "1", Competition: "Premier League", Date: day(17)},
		{ID: "2", Competition: "Premier League", Date: day(18)},
		{ID: "3", Competition: "Primera Division", Date: day(17)},
	}, nil)

	var got struct {
		Matches []models.Match `json:"matches"`
		Dates   []string       `json:"dates"`
		Total   int            `json:"total"`
	}
	s.decode(s.do(http.MethodGet, "/api/v1/matches?league=la-liga&date=all", nil), &got)
	s.Equal(1, got.Total)
	s.Equal("3", got.Matches[0].ID)
	s.Equal([]string{"2024-08-17"}, got.Dates)

	s.decode(s.do(http.MethodGet, "/api/v1/matches?date=2024-08-17", nil), &got)
	s.Equal(2, got.Total)
	s.Equal([]string{"2024-08-17", "2024-08-18"}, got.Dates)
}

func (s *RouterTestSuite) TestRounds() {
	rounds := models.LeagueRounds{"Bundesliga": {"Matchday 1": {{ID: "9"}}}}
	s.football.On("GetMatchesByRounds", "bundesliga").Return(rounds, nil).Once()

	var got models.LeagueRounds
	env := s.decode(s.do(http.MethodGet, "/api/v1/matches/rounds/Bundesliga", nil), &got)
	s.True(env.Success)
	s.Equal("9", got["Bundesliga"]["Matchday 1"][0].ID)

	w := s.do(http.MethodGet, "/api/v1/matches/rounds/mls", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *RouterTestSuite) TestSearch() {
	var got struct {
		Query   string          `json:"query"`
		Teams   []models.Team   `json:"teams"`
		Players []models.Player `json:"players"`
		Leagues []models.League `json:"leagues"`
	}
	s.decode(s.do(http.MethodGet, "/api/v1/search?q=%20%20", nil), &got)
	s.Empty(got.Players)
	s.football.AssertNotCalled(s.T(), "GetAllPlayers")

	s.football.On("GetAllTeams").Return([]models.Team{{ID: "57", Name: "Arsenal FC", Country: "England"}}, nil)
	s.football.On("GetAllPlayers").Return(players(), nil)
	s.football.On("GetLeagues").Return(models.Leagues, nil)

	env := s.decode(s.do(http.MethodGet, "/api/v1/search?q=england", nil), &got)
	s.True(env.Success)
	s.Equal("england", got.Query)
	s.Len(got.Teams, 1)
	s.Len(got.Players, 1)
	s.Len(got.Leagues, 1)
	s.Equal(3, env.Meta.Total)
}

func (s *RouterTestSuite) TestFavoritePlayersToggle() {
	p := players()[0]
	player := models.FavoritePlayer{ID: p.ID, Name: p.Name, Team: p.Team, Position: p.Position, Nationality: p.Nationality, League: p.League}

	var res handlers.ToggleResult[models.FavoritePlayer]
	s.decode(s.do(http.MethodPost, "/api/v1/favorites/players/toggle", player), &res)
	s.True(res.Added)
	s.Len(res.Favorites, 1)

	var list []models.FavoritePlayer
	s.decode(s.do(http.MethodGet, "/api/v1/favorites/players", nil), &list)
	s.Equal([]models.FavoritePlayer{player}, list)

	raw, ok, err := s.store.Get(context.Background(), favorites.StoreKey(s.session, favorites.PlayersKey))
	s.Require().NoError(err)
	s.True(ok)
	s.Contains(raw, `"Erling Haaland"`)

	s.decode(s.do(http.MethodPost, "/api/v1/favorites/players/toggle", player), &res)
	s.False(res.Added)
	s.Empty(res.Favorites)

	w := s.do(http.MethodPost, "/api/v1/favorites/players/toggle", map[string]string{"photo": "x"})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *RouterTestSuite) TestFavoriteTeamsAreScopedToSession() {
	team := models.FavoriteTeam{ID: "57", Name: "Arsenal FC", League: "Premier League"}

	var res handlers.ToggleResult[models.FavoriteTeam]
	s.decode(s.do(http.MethodPost, "/api/v1/favorites/teams/toggle", team), &res)
	s.True(res.Added)

	s.session = "7c1d2e3f-0000-4000-8000-000000000001"
	var list []models.FavoriteTeam
	s.decode(s.do(http.MethodGet, "/api/v1/favorites/teams", nil), &list)
	s.Empty(list)
}

func (s *RouterTestSuite) TestSessionCookieIssued() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/positions", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
	id := w.Header().Get(middleware.SessionHeader)
	s.NotEmpty(id)
	s.Contains(w.Header().Get("Set-Cookie"), middleware.SessionCookie+"="+id)
	s.NotEmpty(w.Header().Get(middleware.RequestIDHeader))
}

func (s *RouterTestSuite) TestCORSPreflight() {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/players", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusNoContent, w.Code)
	s.Equal("http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/players", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Empty(w.Header().Get("Access-Control-Allow-Origin"))
}

func (s *RouterTestSuite) TestPlayersWebSocketSession() {
	s.football.On("GetAllPlayers").Return(players(), nil)

	srv := httptest.NewServer(s.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/players"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	defer conn.Close()

	waitFor := func(ok func(session.PlayersView) bool) session.PlayersView {
		conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		for {
			var msg struct {
				Type string              `json:"type"`
				Data session.PlayersView `json:"data"`
			}
			require.NoError(s.T(), conn.ReadJSON(&msg))
			if msg.Type == "view" && ok(msg.Data) {
				return msg.Data
			}
		}
	}

	v := waitFor(func(v session.PlayersView) bool { return v.Status == session.StatusReady })
	s.Len(v.Players, 2)
	s.True(v.Page.HasMore)

	s.Require().NoError(conn.WriteJSON(handlers.ClientMessage{Type: "search", Value: "saka"}))
	v = waitFor(func(v session.PlayersView) bool { return v.AppliedSearch == "saka" })
	s.Len(v.Players, 1)
	s.Equal("3", v.Players[0].ID)

	s.Require().NoError(conn.WriteJSON(handlers.ClientMessage{Type: "search", Value: ""}))
	waitFor(func(v session.PlayersView) bool { return v.AppliedSearch == "" && !v.SearchPending })
	s.Require().NoError(conn.WriteJSON(handlers.ClientMessage{Type: "load_more"}))
	v = waitFor(func(v session.PlayersView) bool { return v.Page.Visible == 3 })
	s.False(v.Page.HasMore)

	s.Require().NoError(conn.WriteJSON(handlers.ClientMessage{Type: "bogus"}))
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var msg handlers.ServerMessage
		s.Require().NoError(conn.ReadJSON(&msg))
		if msg.Type == "error" {
			s.Contains(msg.Error, "bogus")
			break
		}
	}
}
