package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/football-site/internal/api/handlers"
	"github.com/stitts-dev/football-site/internal/api/middleware"
	"github.com/stitts-dev/football-site/internal/cache"
	"github.com/stitts-dev/football-site/internal/favorites"
	"github.com/stitts-dev/football-site/internal/paging"
	"github.com/stitts-dev/football-site/internal/services"
	"github.com/stitts-dev/football-site/internal/session"
	"github.com/stitts-dev/football-site/pkg/config"
)

// Dependencies are the services the routes are built on. Breakers and Warmer are optional.
type Dependencies struct {
	Config    *config.Config
	Logger    *logrus.Logger
	Football  handlers.FootballSource
	Cache     *cache.ResponseCache
	Favorites *favorites.Service
	Breakers  func() map[string]services.BreakerStatus
	Warmer    handlers.StatusReporter
}

// NewRouter builds the gin engine with middleware, probes, API and websocket routes.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(deps.Config.CorsOrigins))
	router.Use(middleware.Session(deps.Config.IsProduction()))
	router.Use(middleware.RequestLogger(deps.Logger))

	healthHandler := handlers.NewHealthHandler(deps.Cache, deps.Favorites, deps.Breakers, deps.Warmer)
	router.GET("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)

	SetupRoutes(router.Group("/api/v1"), deps)

	sessionHandler := handlers.NewSessionHandler(deps.Football, deps.Football, session.Options{
		Debounce: deps.Config.SearchDebounce,
		Paging: paging.Options{
			Initial: deps.Config.PageSize,
			Step:    deps.Config.PageSize,
			Delay:   deps.Config.LoadMoreDelay,
		},
	}, deps.Config.CorsOrigins, deps.Logger)
	router.GET("/ws/players", sessionHandler.HandlePlayers)
	router.GET("/ws/schedule", sessionHandler.HandleSchedule)

	return router
}

// SetupRoutes configures all API routes on the given router group
func SetupRoutes(group *gin.RouterGroup, deps Dependencies) {
	footballHandler := handlers.NewFootballHandler(deps.Football, deps.Config.PageSize)
	favoritesHandler := handlers.NewFavoritesHandler(deps.Favorites, deps.Logger)

	group.GET("/leagues", footballHandler.GetLeagues)
	group.GET("/standings", footballHandler.GetStandings)
	group.GET("/standings/:league", footballHandler.GetStandings)
	group.GET("/teams", footballHandler.GetTeams)
	group.GET("/players", footballHandler.GetPlayers)
	group.GET("/positions", footballHandler.GetPositions)
	group.GET("/matches", footballHandler.GetMatches)
	group.GET("/matches/rounds/:league", footballHandler.GetRounds)
	group.GET("/search", footballHandler.Search)

	fav := group.Group("/favorites")
	{
		fav.GET("/players", favoritesHandler.GetPlayers)
		fav.POST("/players/toggle", favoritesHandler.TogglePlayer)
		fav.GET("/teams", favoritesHandler.GetTeams)
		fav.POST("/teams/toggle", favoritesHandler.ToggleTeam)
	}
}
