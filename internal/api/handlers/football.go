package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/stitts-dev/football-site/internal/filter"
	"github.com/stitts-dev/football-site/internal/models"
	"github.com/stitts-dev/football-site/internal/paging"
	"github.com/stitts-dev/football-site/internal/providers"
	"github.com/stitts-dev/football-site/pkg/utils"
)

// FootballSource is the football API client as seen by the HTTP layer.
type FootballSource interface {
	GetLeagues(ctx context.Context) ([]models.League, error)
	GetStandings(ctx context.Context, slug string) (models.LeagueStandings, error)
	GetAllTeams(ctx context.Context) ([]models.Team, error)
	GetAllPlayers(ctx context.Context) ([]models.Player, error)
	GetPlayersByLeague(ctx context.Context, slug string) ([]models.Player, error)
	GetAllMatches(ctx context.Context) ([]models.Match, error)
	GetMatchesByRounds(ctx context.Context, slug string) (models.LeagueRounds, error)
}

type FootballHandler struct {
	source   FootballSource
	pageSize int
}

func NewFootballHandler(source FootballSource, pageSize int) *FootballHandler {
	if pageSize <= 0 {
		pageSize = paging.DefaultInitial
	}
	return &FootballHandler{source: source, pageSize: pageSize}
}

func (h *FootballHandler) GetLeagues(c *gin.Context) {
	leagues, err := h.source.GetLeagues(c.Request.Context())
	if err != nil {
		sendProviderError(c, err)
		return
	}
	utils.SendSuccess(c, leagues)
}

// GetStandings returns a league table. Without a league, or with an unknown one, the
// Premier League table is returned.
func (h *FootballHandler) GetStandings(c *gin.Context) {
	standings, err := h.source.GetStandings(c.Request.Context(), c.Param("league"))
	if err != nil {
		sendProviderError(c, err)
		return
	}
	utils.SendSuccess(c, standings)
}

func (h *FootballHandler) GetTeams(c *gin.Context) {
	teams, err := h.source.GetAllTeams(c.Request.Context())
	if err != nil {
		sendProviderError(c, err)
		return
	}
	utils.SendSuccess(c, teams)
}

// GetPlayers filters the players of a league and returns the first `visible` of them.
func (h *FootballHandler) GetPlayers(c *gin.Context) {
	var criteria filter.PlayerCriteria
	if err := c.ShouldBindQuery(&criteria); err != nil {
		utils.SendValidationError(c, "Invalid query", err.Error())
		return
	}
	criteria = criteria.Normalize()

	visible := h.pageSize
	if raw := c.Query("visible"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			utils.SendValidationError(c, "Invalid visible count", "visible must be a positive integer")
			return
		}
		visible = n
	}

	ctx := c.Request.Context()
	var (
		players []models.Player
		err     error
	)
	if criteria.League == models.AllLeagues {
		players, err = h.source.GetAllPlayers(ctx)
	} else {
		league, ok := lookupLeague(criteria.League)
		if !ok {
			utils.SendValidationError(c, "Unknown league", criteria.League)
			return
		}
		criteria.League = league.Name
		players, err = h.source.GetPlayersByLeague(ctx, league.ID)
	}
	if err != nil {
		sendProviderError(c, err)
		return
	}

	filtered := filter.Players(players, criteria)
	shown := min(visible, len(filtered))
	utils.SendSuccessWithMeta(c, filtered[:shown], &utils.Meta{
		Total:   len(filtered),
		Visible: shown,
		HasMore: shown < len(filtered),
	})
}

func (h *FootballHandler) GetPositions(c *gin.Context) {
	utils.SendSuccess(c, models.PositionOptions())
}

// GetMatches returns every match, optionally narrowed to a league and a match day,
// along with the match days available before the date filter.
func (h *FootballHandler) GetMatches(c *gin.Context) {
	var criteria filter.MatchCriteria
	if err := c.ShouldBindQuery(&criteria); err != nil {
		utils.SendValidationError(c, "Invalid query", err.Error())
		return
	}
	criteria = criteria.Normalize()
	if criteria.League != models.AllLeagues {
		league, ok := lookupLeague(criteria.League)
		if !ok {
			utils.SendValidationError(c, "Unknown league", criteria.League)
			return
		}
		criteria.League = league.Name
	}

	matches, err := h.source.GetAllMatches(c.Request.Context())
	if err != nil {
		sendProviderError(c, err)
		return
	}

	byLeague := filter.Matches(matches, filter.MatchCriteria{League: criteria.League})
	filtered := filter.Matches(byLeague, criteria)
	utils.SendSuccess(c, gin.H{
		"matches": filtered,
		"dates":   filter.MatchDates(byLeague),
		"total":   len(filtered),
	})
}

// GetRounds returns matches grouped by league and round. The league may be "all".
func (h *FootballHandler) GetRounds(c *gin.Context) {
	slug := c.Param("league")
	if slug != models.AllLeagues {
		league, ok := lookupLeague(slug)
		if !ok {
			sendProviderError(c, providers.ErrUnknownLeague)
			return
		}
		slug = league.ID
	}

	rounds, err := h.source.GetMatchesByRounds(c.Request.Context(), slug)
	if err != nil {
		sendProviderError(c, err)
		return
	}
	utils.SendSuccess(c, rounds)
}

// Search matches teams, players and leagues against q. Teams and players are fetched
// concurrently; a blank query returns empty results without fetching.
func (h *FootballHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		utils.SendSuccess(c, filter.Search("", nil, nil, nil))
		return
	}

	var (
		teams   []models.Team
		players []models.Player
		leagues []models.League
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() (err error) {
		teams, err = h.source.GetAllTeams(ctx)
		return err
	})
	g.Go(func() (err error) {
		players, err = h.source.GetAllPlayers(ctx)
		return err
	})
	g.Go(func() (err error) {
		leagues, err = h.source.GetLeagues(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		sendProviderError(c, err)
		return
	}

	results := filter.Search(query, teams, players, leagues)
	utils.SendSuccessWithMeta(c, results, &utils.Meta{Total: results.Total(), Visible: results.Total()})
}

func lookupLeague(v string) (models.League, bool) {
	if l, ok := models.LeagueBySlug(v); ok {
		return l, true
	}
	return models.LeagueByName(v)
}
