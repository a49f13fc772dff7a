// Package session holds the interactive state of one visitor's players or schedule page.
//
// Every event (input change, timer fire, fetch completion) is applied under the session
// lock and runs to completion before the next one. Fetches run off-lock and may overlap;
// each captures the generation current at dispatch and its result is dropped if a newer
// fetch was started in the meantime.
package session

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/football-site/internal/clock"
	"github.com/stitts-dev/football-site/internal/debounce"
	"github.com/stitts-dev/football-site/internal/models"
	"github.com/stitts-dev/football-site/internal/paging"
)

// Status is the data state of a page.
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// PlayerSource loads player collections.
type PlayerSource interface {
	GetAllPlayers(ctx context.Context) ([]models.Player, error)
	GetPlayersByLeague(ctx context.Context, slug string) ([]models.Player, error)
}

// MatchSource loads matches grouped by round.
type MatchSource interface {
	GetMatchesByRounds(ctx context.Context, slug string) (models.LeagueRounds, error)
}

// Options configures a browser. Zero values use production defaults.
type Options struct {
	ID       string
	Debounce time.Duration
	Paging   paging.Options
	Clock    clock.Clock
	Logger   *logrus.Logger

	// Spawn runs a fetch. Defaults to a new goroutine; tests run fetches inline.
	Spawn func(func())
}

func (o Options) withDefaults() Options {
	if o.Debounce <= 0 {
		o.Debounce = debounce.DefaultInterval
	}
	if o.Clock == nil {
		o.Clock = clock.Real()
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	if o.Spawn == nil {
		o.Spawn = func(f func()) { go f() }
	}
	return o
}

// resolveLeague accepts a league slug or display name. It returns the display name used
// by the filter and the slug used for fetching; "all" maps to ("all", "all").
func resolveLeague(v string) (name, slug string, ok bool) {
	if v == "" || v == models.AllLeagues {
		return models.AllLeagues, models.AllLeagues, true
	}
	if l, found := models.LeagueBySlug(v); found {
		return l.Name, l.ID, true
	}
	if l, found := models.LeagueByName(v); found {
		return l.Name, l.ID, true
	}
	return "", "", false
}
