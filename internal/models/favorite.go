package models

// FavoritePlayer is the snapshot of a player stored when it is marked as favorite.
// The snapshot is not refreshed when the source player changes.
type FavoritePlayer struct {
	ID          string  `json:"id" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Photo       string  `json:"photo"`
	Team        string  `json:"team"`
	TeamLogo    string  `json:"teamLogo,omitempty"`
	Position    string  `json:"position"`
	Rating      float64 `json:"rating"`
	Nationality string  `json:"nationality,omitempty"`
	Age         int     `json:"age,omitempty"`
	ShirtNumber *int    `json:"shirtNumber,omitempty"`
	League      string  `json:"league,omitempty"`
	Overall     int     `json:"overall,omitempty"`
}

func (p FavoritePlayer) FavoriteID() string { return p.ID }

// FavoriteTeam is the snapshot of a team stored when it is marked as favorite.
type FavoriteTeam struct {
	ID      string `json:"id" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Logo    string `json:"logo"`
	League  string `json:"league"`
	Country string `json:"country,omitempty"`
	Founded int    `json:"founded,omitempty"`
}

func (t FavoriteTeam) FavoriteID() string { return t.ID }
