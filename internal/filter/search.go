package filter

import (
	"strings"

	"github.com/stitts-dev/football-site/internal/models"
)

// SearchResults groups global search hits by entity kind.
type SearchResults struct {
	Query   string          `json:"query"`
	Teams   []models.Team   `json:"teams"`
	Players []models.Player `json:"players"`
	Leagues []models.League `json:"leagues"`
}

// Total returns the number of hits across all kinds.
func (r SearchResults) Total() int {
	return len(r.Teams) + len(r.Players) + len(r.Leagues)
}

// Search looks for query in teams (name, country), players (name, team, nationality) and
// leagues (name, country). A blank query yields no results.
func Search(query string, teams []models.Team, players []models.Player, leagues []models.League) SearchResults {
	q := strings.TrimSpace(query)
	res := SearchResults{
		Query:   q,
		Teams:   []models.Team{},
		Players: []models.Player{},
		Leagues: []models.League{},
	}
	if q == "" {
		return res
	}

	res.Teams = apply(teams, func(t models.Team) bool {
		return containsFold(q, t.Name, t.Country)
	})
	res.Players = apply(players, func(p models.Player) bool {
		return containsFold(q, p.Name, p.Team, p.Nationality)
	})
	res.Leagues = apply(leagues, func(l models.League) bool {
		return containsFold(q, l.Name, l.Country)
	})
	return res
}
