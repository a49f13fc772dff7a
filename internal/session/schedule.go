package session

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/football-site/internal/filter"
	"github.com/stitts-dev/football-site/internal/models"
	"github.com/stitts-dev/football-site/internal/providers"
	"github.com/stitts-dev/football-site/pkg/logger"
)

// ScheduleView is the state pushed to the schedule page after every change.
type ScheduleView struct {
	League     string         `json:"league"`
	Date       string         `json:"date"`
	Status     Status         `json:"status"`
	Error      string         `json:"error,omitempty"`
	Matches    []models.Match `json:"matches"`
	Dates      []string       `json:"dates"`
	Total      int            `json:"total"`
	Generation uint64         `json:"generation"`
}

// ScheduleBrowser is the schedule page of one visitor: fixtures of the selected league
// grouped into one list, filtered by match day.
type ScheduleBrowser struct {
	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	source   MatchSource
	log      *logrus.Entry
	spawn    func(func())
	onChange func(ScheduleView)

	criteria   filter.MatchCriteria
	leagueSlug string

	matches    []models.Match
	filtered   []models.Match
	dates      []string
	status     Status
	errMsg     string
	generation uint64
	closed     bool
}

// NewScheduleBrowser creates a browser showing every league and every date. onChange
// follows the same rules as for NewPlayersBrowser.
func NewScheduleBrowser(ctx context.Context, source MatchSource, opts Options, onChange func(ScheduleView)) *ScheduleBrowser {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(ctx)

	return &ScheduleBrowser{
		ctx:        ctx,
		cancel:     cancel,
		source:     source,
		log:        logger.WithSession(opts.Logger, opts.ID, "schedule"),
		spawn:      opts.Spawn,
		onChange:   onChange,
		criteria:   filter.DefaultMatchCriteria(),
		leagueSlug: models.AllLeagues,
		status:     StatusLoading,
	}
}

// Start loads the rounds of the initial league.
func (b *ScheduleBrowser) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fetchLocked()
	b.publishLocked()
}

// SetLeague selects a league by slug or display name, or "all", and refetches its rounds.
// The date filter is kept.
func (b *ScheduleBrowser) SetLeague(league string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	name, slug, ok := resolveLeague(league)
	if !ok {
		b.generation++
		b.status = StatusError
		b.errMsg = providers.UserMessage(providers.ErrUnknownLeague)
		b.matches, b.filtered, b.dates = nil, nil, nil
		b.publishLocked()
		return
	}
	if name == b.criteria.League && b.status != StatusError {
		return
	}

	b.criteria.League = name
	b.leagueSlug = slug
	b.fetchLocked()
	b.publishLocked()
}

// SetDate selects a match day (YYYY-MM-DD) or "all".
func (b *ScheduleBrowser) SetDate(date string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	if date == "" {
		date = filter.AllDates
	}
	if date == b.criteria.Date {
		return
	}
	b.criteria.Date = date
	b.refilterLocked()
	b.publishLocked()
}

// View returns the current state.
func (b *ScheduleBrowser) View() ScheduleView {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.viewLocked()
}

// Close cancels in-flight fetches. Later events are ignored.
func (b *ScheduleBrowser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	b.cancel()
}

func (b *ScheduleBrowser) fetchLocked() {
	b.generation++
	gen := b.generation
	slug := b.leagueSlug
	b.status = StatusLoading
	b.errMsg = ""

	b.spawn(func() {
		rounds, err := b.source.GetMatchesByRounds(b.ctx, slug)
		b.applyFetch(gen, rounds, err)
	})
}

func (b *ScheduleBrowser) applyFetch(gen uint64, rounds models.LeagueRounds, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	if gen != b.generation {
		b.log.WithFields(logrus.Fields{
			"generation": gen,
			"current":    b.generation,
		}).Debug("Dropping stale rounds response")
		return
	}

	if err != nil {
		b.log.WithError(err).Warn("Failed to load match rounds")
		b.status = StatusError
		b.errMsg = providers.UserMessage(err)
		b.matches, b.filtered, b.dates = nil, nil, nil
		b.publishLocked()
		return
	}

	b.status = StatusReady
	b.matches = filter.FlattenRounds(rounds)
	b.dates = filter.MatchDates(b.matches)
	b.refilterLocked()
	b.publishLocked()
}

func (b *ScheduleBrowser) refilterLocked() {
	b.filtered = filter.Matches(b.matches, b.criteria)
}

func (b *ScheduleBrowser) viewLocked() ScheduleView {
	matches := make([]models.Match, len(b.filtered))
	copy(matches, b.filtered)
	dates := make([]string, len(b.dates))
	copy(dates, b.dates)

	return ScheduleView{
		League:     b.criteria.League,
		Date:       b.criteria.Date,
		Status:     b.status,
		Error:      b.errMsg,
		Matches:    matches,
		Dates:      dates,
		Total:      len(b.filtered),
		Generation: b.generation,
	}
}

func (b *ScheduleBrowser) publishLocked() {
	if b.onChange != nil {
		b.onChange(b.viewLocked())
	}
}
