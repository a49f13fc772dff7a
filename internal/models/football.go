package models

import (
	"regexp"
	"strings"
	"time"
)

// Team is a row of a league table.
type Team struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	ShortName      string   `json:"shortName,omitempty"`
	Logo           string   `json:"logo"`
	League         string   `json:"league"`
	Country        string   `json:"country"`
	Position       int      `json:"position"`
	Played         int      `json:"played"`
	Won            int      `json:"won"`
	Drawn          int      `json:"drawn"`
	Lost           int      `json:"lost"`
	GoalsFor       int      `json:"goalsFor"`
	GoalsAgainst   int      `json:"goalsAgainst"`
	GoalDifference int      `json:"goalDifference"`
	Points         int      `json:"points"`
	Form           []string `json:"form,omitempty"`
}

// LeagueStandings is a league with its current table.
type LeagueStandings struct {
	League League `json:"league"`
	Teams  []Team `json:"teams"`
}

// Player is a squad member as shown on the players page.
type Player struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Photo       string  `json:"photo"`
	Team        string  `json:"team"`
	TeamLogo    string  `json:"teamLogo,omitempty"`
	League      string  `json:"league"`
	Nationality string  `json:"nationality"`
	Position    string  `json:"position"`
	Age         int     `json:"age"`
	ShirtNumber *int    `json:"shirtNumber,omitempty"`
	Overall     int     `json:"overall"`
	Rating      float64 `json:"rating"`
	Goals       int     `json:"goals"`
	Assists     int     `json:"assists"`
	Matches     int     `json:"matches"`
}

// MatchStatus is the simplified state shown in the schedule.
type MatchStatus string

const (
	MatchUpcoming MatchStatus = "upcoming"
	MatchLive     MatchStatus = "live"
	MatchFinished MatchStatus = "finished"
)

// StatusFromUpstream maps upstream match states onto the schedule states.
func StatusFromUpstream(status string) MatchStatus {
	switch strings.ToUpper(status) {
	case "SCHEDULED", "TIMED":
		return MatchUpcoming
	case "IN_PLAY", "PAUSED":
		return MatchLive
	default:
		return MatchFinished
	}
}

// Score is a full-time result; nil sides mean the match has not been played.
type Score struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

// Match is a fixture or result.
type Match struct {
	ID             string      `json:"id"`
	HomeTeam       string      `json:"homeTeam"`
	AwayTeam       string      `json:"awayTeam"`
	HomeTeamShort  string      `json:"homeTeamShort,omitempty"`
	AwayTeamShort  string      `json:"awayTeamShort,omitempty"`
	HomeTeamCrest  string      `json:"homeTeamCrest,omitempty"`
	AwayTeamCrest  string      `json:"awayTeamCrest,omitempty"`
	Date           time.Time   `json:"date"`
	Status         MatchStatus `json:"status"`
	UpstreamStatus string      `json:"upstreamStatus"`
	Competition    string      `json:"competition"`
	League         string      `json:"league"` // upstream competition code
	Round          string      `json:"round,omitempty"`
	Stage          string      `json:"stage,omitempty"`
	Score          *Score      `json:"score,omitempty"`
}

// Day returns the match date as YYYY-MM-DD in UTC.
func (m Match) Day() string {
	return m.Date.UTC().Format("2006-01-02")
}

// Rounds groups matches by round number.
type Rounds map[string][]Match

// LeagueRounds groups rounds by league display name.
type LeagueRounds map[string]Rounds

var whitespace = regexp.MustCompile(`\s+`)

// TeamSlug derives the team identifier from its name.
func TeamSlug(name string) string {
	return whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}
