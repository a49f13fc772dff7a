package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/stitts-dev/football-site/internal/models"
	"github.com/stitts-dev/football-site/internal/providers"
)

// WarmSource is the part of the football API client the warmer prefetches through.
type WarmSource interface {
	GetStandings(ctx context.Context, slug string) (models.LeagueStandings, error)
	GetAllPlayers(ctx context.Context) ([]models.Player, error)
	GetMatchesByRounds(ctx context.Context, slug string) (models.LeagueRounds, error)
}

// WarmRun summarizes one warming pass.
type WarmRun struct {
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
}

// CacheWarmerService periodically prefetches standings, players and rounds so the first
// visitor request after a TTL expiry is served from the response cache.
type CacheWarmerService struct {
	source   WarmSource
	logger   *logrus.Logger
	cron     *cron.Cron
	schedule string
	timeout  time.Duration

	mu        sync.RWMutex
	isRunning bool
	lastRun   *WarmRun
	runCount  int

	passes sync.WaitGroup
}

func NewCacheWarmerService(source WarmSource, schedule string, logger *logrus.Logger) *CacheWarmerService {
	cronLogger := cron.VerbosePrintfLogger(logger)
	return &CacheWarmerService{
		source:   source,
		logger:   logger,
		cron:     cron.New(cron.WithLogger(cronLogger)),
		schedule: schedule,
		timeout:  2 * time.Minute,
	}
}

// Start schedules the warming job and runs a first pass in the background.
func (s *CacheWarmerService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cache warmer is already running")
	}

	if _, err := s.cron.AddFunc(s.schedule, s.runScheduled); err != nil {
		return fmt.Errorf("failed to schedule cache warming %q: %w", s.schedule, err)
	}
	s.cron.Start()
	s.isRunning = true

	s.passes.Add(1)
	go func() {
		defer s.passes.Done()
		s.runScheduled()
	}()

	s.logger.WithFields(logrus.Fields{
		"component": "cache_warmer",
		"schedule":  s.schedule,
	}).Info("Cache warmer started")
	return nil
}

// Stop stops the scheduler and waits up to five seconds for running passes to finish.
func (s *CacheWarmerService) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	cronDone := s.cron.Stop()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.passes.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.WithField("component", "cache_warmer").Info("Cache warmer stopped gracefully")
	case <-time.After(5 * time.Second):
		s.logger.WithField("component", "cache_warmer").Warn("Cache warmer stop timed out")
	}
}

func (s *CacheWarmerService) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	s.WarmOnce(ctx)
}

// WarmOnce refetches every league's standings, all players and all rounds concurrently,
// replacing cached entries even while they are still fresh. Failures are logged and
// counted, never returned.
func (s *CacheWarmerService) WarmOnce(ctx context.Context) WarmRun {
	ctx = providers.WithRefresh(ctx)
	run := WarmRun{StartedAt: time.Now()}
	var ok, failed atomic.Int32

	task := func(name string, fn func(context.Context) error) func() error {
		return func() error {
			if err := fn(ctx); err != nil {
				failed.Add(1)
				s.logger.WithFields(logrus.Fields{
					"component": "cache_warmer",
					"task":      name,
					"error":     err.Error(),
				}).Warn("Cache warming task failed")
				return nil
			}
			ok.Add(1)
			return nil
		}
	}

	var g errgroup.Group
	g.SetLimit(3)
	for _, l := range models.Leagues {
		slug := l.ID
		g.Go(task("standings_"+slug, func(ctx context.Context) error {
			_, err := s.source.GetStandings(ctx, slug)
			return err
		}))
	}
	g.Go(task("all_players", func(ctx context.Context) error {
		_, err := s.source.GetAllPlayers(ctx)
		return err
	}))
	g.Go(task("matches_rounds_all", func(ctx context.Context) error {
		_, err := s.source.GetMatchesByRounds(ctx, models.AllLeagues)
		return err
	}))
	_ = g.Wait()

	run.Duration = time.Since(run.StartedAt)
	run.Succeeded = int(ok.Load())
	run.Failed = int(failed.Load())

	s.mu.Lock()
	s.lastRun = &run
	s.runCount++
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"component": "cache_warmer",
		"succeeded": run.Succeeded,
		"failed":    run.Failed,
		"duration":  run.Duration.String(),
	}).Info("Cache warming completed")
	return run
}

// GetStatus returns the warmer state for the readiness endpoint.
func (s *CacheWarmerService) GetStatus() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"is_running": s.isRunning,
		"schedule":   s.schedule,
		"run_count":  s.runCount,
		"last_run":   s.lastRun,
	}
}
