package session

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/football-site/internal/debounce"
	"github.com/stitts-dev/football-site/internal/filter"
	"github.com/stitts-dev/football-site/internal/models"
	"github.com/stitts-dev/football-site/internal/paging"
	"github.com/stitts-dev/football-site/internal/providers"
	"github.com/stitts-dev/football-site/pkg/logger"
)

// PlayersView is the state pushed to the players page after every change.
type PlayersView struct {
	Search        string          `json:"search"`
	AppliedSearch string          `json:"appliedSearch"`
	SearchPending bool            `json:"searchPending"`
	League        string          `json:"league"`
	Position      string          `json:"position"`
	Status        Status          `json:"status"`
	Error         string          `json:"error,omitempty"`
	Players       []models.Player `json:"players"`
	Page          paging.Page     `json:"page"`
	Generation    uint64          `json:"generation"`
}

// PlayersBrowser is the players page of one visitor: league, position and debounced search
// filters over the players of the selected league, shown in a growing window.
type PlayersBrowser struct {
	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	source   PlayerSource
	log      *logrus.Entry
	spawn    func(func())
	onChange func(PlayersView)

	debouncer *debounce.Debouncer[string]
	pager     *paging.Pager

	search     string
	criteria   filter.PlayerCriteria
	leagueSlug string

	players    []models.Player
	filtered   []models.Player
	status     Status
	errMsg     string
	generation uint64
	closed     bool
}

// NewPlayersBrowser creates a browser with every filter off. onChange receives a view
// after every state change; it is called with the browser lock held and must not call
// back into the browser.
func NewPlayersBrowser(ctx context.Context, source PlayerSource, opts Options, onChange func(PlayersView)) *PlayersBrowser {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(ctx)

	b := &PlayersBrowser{
		ctx:        ctx,
		cancel:     cancel,
		source:     source,
		log:        logger.WithSession(opts.Logger, opts.ID, "players"),
		spawn:      opts.Spawn,
		onChange:   onChange,
		pager:      paging.New(opts.Paging, opts.Clock),
		criteria:   filter.DefaultPlayerCriteria(),
		leagueSlug: models.AllLeagues,
		status:     StatusLoading,
	}
	b.debouncer = debounce.New(opts.Debounce, opts.Clock, b.applySearch)
	return b
}

// Start loads the players of the initial league.
func (b *PlayersBrowser) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fetchLocked()
	b.publishLocked()
}

// SetSearch records raw input. The filter picks it up once input has been idle for the
// debounce interval.
func (b *PlayersBrowser) SetSearch(term string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.search = term
	b.debouncer.Push(term)
	b.publishLocked()
}

// SetLeague selects a league by slug or display name, or "all", and loads its players
// unless they are cached.
func (b *PlayersBrowser) SetLeague(league string) {
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
		b.players, b.filtered = nil, nil
		b.publishLocked()
		return
	}
	if name == b.criteria.League && b.status != StatusError {
		return
	}

	b.criteria.League = name
	b.leagueSlug = slug
	b.pager.Reset()
	b.fetchLocked()
	b.publishLocked()
}

// SetPosition selects a position code or display name, or "all".
func (b *PlayersBrowser) SetPosition(position string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	if position == "" {
		position = models.AllPositions
	}
	if position == b.criteria.Position {
		return
	}
	b.criteria.Position = position
	b.refilterLocked()
	b.pager.Reset()
	b.publishLocked()
}

// LoadMore grows the visible window after the paging delay. It reports false when
// nothing more can be shown or a load is already pending.
func (b *PlayersBrowser) LoadMore() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || b.status != StatusReady {
		return false
	}

	started := b.pager.LoadMore(len(b.filtered), b.filteredLen, func(paging.Page) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.publishLocked()
	})
	if started {
		b.publishLocked()
	}
	return started
}

// View returns the current state.
func (b *PlayersBrowser) View() PlayersView {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.viewLocked()
}

// Close cancels in-flight fetches and pending timers. Later events are ignored.
func (b *PlayersBrowser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	b.debouncer.Cancel()
	b.pager.Reset()
	b.cancel()
}

func (b *PlayersBrowser) applySearch(term string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	term = filter.PlayerCriteria{Search: term}.Normalize().Search
	if term == b.criteria.Search {
		b.publishLocked()
		return
	}
	b.criteria.Search = term
	b.refilterLocked()
	b.pager.Reset()
	b.publishLocked()
}

func (b *PlayersBrowser) filteredLen() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.filtered)
}

func (b *PlayersBrowser) fetchLocked() {
	b.generation++
	gen := b.generation
	slug := b.leagueSlug
	b.status = StatusLoading
	b.errMsg = ""

	b.spawn(func() {
		var (
			players []models.Player
			err     error
		)
		if slug == models.AllLeagues {
			players, err = b.source.GetAllPlayers(b.ctx)
		} else {
			players, err = b.source.GetPlayersByLeague(b.ctx, slug)
		}
		b.applyFetch(gen, players, err)
	})
}

func (b *PlayersBrowser) applyFetch(gen uint64, players []models.Player, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	if gen != b.generation {
		b.log.WithFields(logrus.Fields{
			"generation": gen,
			"current":    b.generation,
		}).Debug("Dropping stale players response")
		return
	}

	if err != nil {
		b.log.WithError(err).Warn("Failed to load players")
		b.status = StatusError
		b.errMsg = providers.UserMessage(err)
		b.players, b.filtered = nil, nil
		b.publishLocked()
		return
	}

	b.status = StatusReady
	b.players = players
	b.refilterLocked()
	b.publishLocked()
}

func (b *PlayersBrowser) refilterLocked() {
	b.filtered = filter.Players(b.players, b.criteria)
}

func (b *PlayersBrowser) viewLocked() PlayersView {
	page := b.pager.Page(len(b.filtered))
	visible := make([]models.Player, page.Visible)
	copy(visible, b.filtered[:page.Visible])

	return PlayersView{
		Search:        b.search,
		AppliedSearch: b.criteria.Search,
		SearchPending: b.debouncer.Snapshot().State == debounce.Pending,
		League:        b.criteria.League,
		Position:      b.criteria.Position,
		Status:        b.status,
		Error:         b.errMsg,
		Players:       visible,
		Page:          page,
		Generation:    b.generation,
	}
}

func (b *PlayersBrowser) publishLocked() {
	if b.onChange != nil {
		b.onChange(b.viewLocked())
	}
}
