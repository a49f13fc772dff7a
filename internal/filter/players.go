package filter

import (
	"strings"

	"github.com/stitts-dev/football-site/internal/models"
)

// PlayerCriteria holds the active predicates of the players page.
// Search is the debounced term, not the raw input.
type PlayerCriteria struct {
	League   string `json:"league" form:"league"`
	Position string `json:"position" form:"position"`
	Search   string `json:"search" form:"search"`
}

// DefaultPlayerCriteria disables every predicate.
func DefaultPlayerCriteria() PlayerCriteria {
	return PlayerCriteria{League: models.AllLeagues, Position: models.AllPositions}
}

// Normalize fills empty selections with "all" and trims the search term.
func (c PlayerCriteria) Normalize() PlayerCriteria {
	if c.League == "" {
		c.League = models.AllLeagues
	}
	if c.Position == "" {
		c.Position = models.AllPositions
	}
	c.Search = strings.TrimSpace(c.Search)
	return c
}

// Matches reports whether a player satisfies every active predicate.
func (c PlayerCriteria) Matches(p models.Player) bool {
	return matchLeague(c.League, p.League) &&
		matchPosition(c.Position, p.Position) &&
		containsFold(c.Search, p.Name, p.Team, p.Nationality)
}

// Players returns the players matching the criteria, in their original order.
// The input slice is never modified.
func Players(players []models.Player, c PlayerCriteria) []models.Player {
	c = c.Normalize()
	return apply(players, c.Matches)
}

func matchLeague(selected, league string) bool {
	if selected == models.AllLeagues {
		return true
	}
	return models.CanonicalLeagueName(league) == models.CanonicalLeagueName(selected)
}

// matchPosition compares positions by display name, so the filter may hold either a
// canonical code or its translation.
func matchPosition(selected, position string) bool {
	if selected == models.AllPositions {
		return true
	}
	return positionDisplay(position) == positionDisplay(selected)
}

func positionDisplay(p string) string {
	if name, ok := models.PositionName(p); ok {
		return name
	}
	return p
}

// containsFold reports whether term occurs in any field, ignoring case.
// An empty term matches everything.
func containsFold(term string, fields ...string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func apply[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}
