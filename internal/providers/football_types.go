package providers

import (
	"encoding/json"
	"time"
)

// Response structures of the football REST backend.

type standingsResponse struct {
	Competition string          `json:"competition"`
	Season      string          `json:"season"`
	Table       []standingsTeam `json:"table"`
}

type standingsTeam struct {
	Position       int    `json:"position"`
	Name           string `json:"name"`
	ShortName      string `json:"shortName"`
	Crest          string `json:"crest"`
	Points         int    `json:"points"`
	GoalsFor       int    `json:"goalsFor"`
	GoalsAgainst   int    `json:"goalsAgainst"`
	GoalDifference int    `json:"goalDifference"`
	Played         int    `json:"played"`
	Won            int    `json:"won"`
	Drawn          int    `json:"drawn"`
	Lost           int    `json:"lost"`
}

type playersResponse struct {
	Competition string      `json:"competition"`
	Season      string      `json:"season"`
	Players     []apiPlayer `json:"players"`
}

type apiPlayer struct {
	ID          json.Number `json:"id"`
	Name        string      `json:"name"`
	Position    string      `json:"position"`
	Nationality string      `json:"nationality"`
	Team        string      `json:"team"`
	TeamID      int         `json:"teamId"`
	ShirtNumber *int        `json:"shirtNumber"`
	Age         int         `json:"age"`
}

type matchesResponse struct {
	Competition string     `json:"competition"`
	Matches     []apiMatch `json:"matches"`
}

type roundsResponse struct {
	Competition string                `json:"competition"`
	Rounds      map[string][]apiMatch `json:"rounds"`
}

type allRoundsResponse struct {
	Competition string                           `json:"competition"`
	Rounds      map[string]map[string][]apiMatch `json:"rounds"`
}

type apiMatch struct {
	ID          json.Number `json:"id"`
	HomeTeam    apiTeamRef  `json:"homeTeam"`
	AwayTeam    apiTeamRef  `json:"awayTeam"`
	UTCDate     time.Time   `json:"utcDate"`
	Status      string      `json:"status"`
	Stage       string      `json:"stage"`
	Score       *apiScore   `json:"score"`
	Competition struct {
		Name string `json:"name"`
		Code string `json:"code"`
	} `json:"competition"`
}

type apiTeamRef struct {
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	Crest     string `json:"crest"`
}

type apiScore struct {
	FullTime struct {
		Home *int `json:"home"`
		Away *int `json:"away"`
	} `json:"fullTime"`
}
