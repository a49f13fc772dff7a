package filter

import (
	"sort"

	"github.com/stitts-dev/football-site/internal/models"
)

// AllDates is the date filter value that disables date filtering.
const AllDates = "all"

// MatchCriteria holds the active predicates of the schedule page.
type MatchCriteria struct {
	League string `json:"league" form:"league"` // display name or "all"
	Date   string `json:"date" form:"date"`     // YYYY-MM-DD or "all"
}

func DefaultMatchCriteria() MatchCriteria {
	return MatchCriteria{League: models.AllLeagues, Date: AllDates}
}

func (c MatchCriteria) Normalize() MatchCriteria {
	if c.League == "" {
		c.League = models.AllLeagues
	}
	if c.Date == "" {
		c.Date = AllDates
	}
	return c
}

// Matches reports whether a match satisfies the league and date predicates.
func (c MatchCriteria) Matches(m models.Match) bool {
	if c.League != models.AllLeagues && !matchLeague(c.League, m.Competition) {
		return false
	}
	if c.Date != AllDates && m.Day() != c.Date {
		return false
	}
	return true
}

// Matches returns the matches satisfying the criteria, in their original order.
func Matches(matches []models.Match, c MatchCriteria) []models.Match {
	c = c.Normalize()
	return apply(matches, c.Matches)
}

// FlattenRounds merges every round of every league into a single list sorted by kick-off.
// Matches with equal kick-off keep league then round order.
func FlattenRounds(rounds models.LeagueRounds) []models.Match {
	leagues := make([]string, 0, len(rounds))
	for league := range rounds {
		leagues = append(leagues, league)
	}
	sort.Strings(leagues)

	var out []models.Match
	for _, league := range leagues {
		byRound := rounds[league]
		keys := make([]string, 0, len(byRound))
		for k := range byRound {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			for _, m := range byRound[k] {
				if m.Round == "" {
					m.Round = k
				}
				out = append(out, m)
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// MatchDates lists the distinct match days in ascending order.
func MatchDates(matches []models.Match) []string {
	seen := make(map[string]struct{}, len(matches))
	var days []string
	for _, m := range matches {
		d := m.Day()
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	sort.Strings(days)
	return days
}
