package models

// AllPositions is the filter value that disables position filtering.
const AllPositions = "all"

// positionNames translates canonical upstream position codes into the names shown in
// the position filter.
var positionNames = map[string]string{
	"Goalkeeper":         "Goalkeeper",
	"Centre-Back":        "Centre Back",
	"Right-Back":         "Right Back",
	"Left-Back":          "Left Back",
	"Defensive Midfield": "Central Midfielder",
	"Attacking Midfield": "Attacking Midfielder",
	"Left Winger":        "Left Winger",
	"Centre-Forward":     "Striker",
	"Right Winger":       "Right Winger",
}

// positionOrder is the display order of the filter options.
var positionOrder = []string{
	"Goalkeeper",
	"Centre-Back",
	"Right-Back",
	"Left-Back",
	"Defensive Midfield",
	"Attacking Midfield",
	"Left Winger",
	"Centre-Forward",
	"Right Winger",
}

// PositionName returns the display name for a position code, and whether the code is known.
func PositionName(code string) (string, bool) {
	name, ok := positionNames[code]
	return name, ok
}

// PositionOption is one entry of the position filter.
type PositionOption struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// PositionOptions lists the filterable positions in display order.
func PositionOptions() []PositionOption {
	opts := make([]PositionOption, 0, len(positionOrder))
	for _, code := range positionOrder {
		opts = append(opts, PositionOption{Code: code, Name: positionNames[code]})
	}
	return opts
}
