package models

import "strings"

// AllLeagues is the filter value that disables league filtering.
const AllLeagues = "all"

// League describes one of the supported competitions.
type League struct {
	ID          string `json:"id"` // slug, e.g. "premier-league"
	Name        string `json:"name"`
	Country     string `json:"country"`
	Code        string `json:"code"` // upstream competition code
	Logo        string `json:"logo"`
	Season      string `json:"season,omitempty"`
	TeamsCount  int    `json:"teamsCount,omitempty"`
	PlayerCount int    `json:"playersCount"`
}

// Leagues is the catalog of top-5 European leagues, in display order.
var Leagues = []League{
	{
		ID:      "premier-league",
		Name:    "Premier League",
		Country: "England",
		Code:    "PL",
		Logo:    "https://upload.wikimedia.org/wikipedia/en/f/f2/Premier_League_Logo.svg",
	},
	{
		ID:      "la-liga",
		Name:    "La Liga",
		Country: "Spain",
		Code:    "PD",
		Logo:    "https://upload.wikimedia.org/wikipedia/en/9/9d/LaLiga_logo.svg",
	},
	{
		ID:      "bundesliga",
		Name:    "Bundesliga",
		Country: "Germany",
		Code:    "BL1",
		Logo:    "https://upload.wikimedia.org/wikipedia/en/5/5a/Bundesliga_logo.svg",
	},
	{
		ID:      "serie-a",
		Name:    "Serie A",
		Country: "Italy",
		Code:    "SA",
		Logo:    "https://upload.wikimedia.org/wikipedia/en/8/8b/Serie_A_logo.svg",
	},
	{
		ID:      "ligue-1",
		Name:    "Ligue 1",
		Country: "France",
		Code:    "FL1",
		Logo:    "https://upload.wikimedia.org/wikipedia/en/1/1f/Ligue_1_Uber_Eats_logo.svg",
	},
}

// DefaultLeague is used when a standings request names no league or an unknown one.
var DefaultLeague = Leagues[0]

// competitionAliases maps upstream competition names to catalog display names.
var competitionAliases = map[string]string{
	"Primera Division": "La Liga",
}

// LeagueBySlug finds a league by its slug.
func LeagueBySlug(slug string) (League, bool) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	for _, l := range Leagues {
		if l.ID == slug {
			return l, true
		}
	}
	return League{}, false
}

// LeagueByName finds a league by display name, accepting upstream aliases.
func LeagueByName(name string) (League, bool) {
	name = CanonicalLeagueName(name)
	for _, l := range Leagues {
		if l.Name == name {
			return l, true
		}
	}
	return League{}, false
}

// CanonicalLeagueName maps an upstream competition name to the catalog display name.
// Names without an alias are returned unchanged.
func CanonicalLeagueName(name string) string {
	if alias, ok := competitionAliases[name]; ok {
		return alias
	}
	return name
}

// LeagueNames returns the display names, in catalog order.
func LeagueNames() []string {
	names := make([]string, 0, len(Leagues))
	for _, l := range Leagues {
		names = append(names, l.Name)
	}
	return names
}

// teamLeagues maps upstream team ids to league names for responses that do not carry the
// competition of each player.
var teamLeagues = map[int]string{
	57:   "Premier League", // Arsenal
	58:   "Premier League", // Aston Villa
	61:   "Premier League", // Chelsea
	62:   "Premier League", // Everton
	63:   "Premier League", // Fulham
	64:   "Premier League", // Liverpool
	65:   "Premier League", // Manchester City
	66:   "Premier League", // Manchester United
	67:   "Premier League", // Newcastle
	71:   "Premier League", // Sunderland
	73:   "Premier League", // Tottenham
	76:   "Premier League", // Wolves
	328:  "Premier League", // Burnley
	341:  "Premier League", // Leeds
	351:  "Premier League", // Nottingham Forest
	354:  "Premier League", // Crystal Palace
	397:  "Premier League", // Brighton
	402:  "Premier League", // Brentford
	563:  "Premier League", // West Ham
	1044: "Premier League", // Bournemouth
}

// LeagueNameByTeamID returns the league for an upstream team id, or "Unknown".
func LeagueNameByTeamID(teamID int) string {
	if name, ok := teamLeagues[teamID]; ok {
		return name
	}
	return "Unknown"
}
