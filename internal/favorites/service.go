package favorites

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/football-site/internal/models"
)

// Fixed keys of the two favorite lists.
const (
	PlayersKey = "favoritePlayers"
	TeamsKey   = "favoriteTeams"
)

// StoreKey scopes a list key to a visitor session.
func StoreKey(sessionID, name string) string {
	return fmt.Sprintf("session:%s:%s", sessionID, name)
}

// Service loads and toggles the favorite lists of a session.
type Service struct {
	store  Store
	logger *logrus.Logger

	// toggles are load-modify-write; one at a time keeps each session a single writer
	mu sync.Mutex
}

func NewService(store Store, logger *logrus.Logger) *Service {
	return &Service{store: store, logger: logger}
}

func (s *Service) Players(ctx context.Context, sessionID string) ([]models.FavoritePlayer, error) {
	set, err := Load[models.FavoritePlayer](ctx, s.store, StoreKey(sessionID, PlayersKey), s.logger)
	if err != nil {
		return nil, err
	}
	return set.List(), nil
}

func (s *Service) Teams(ctx context.Context, sessionID string) ([]models.FavoriteTeam, error) {
	set, err := Load[models.FavoriteTeam](ctx, s.store, StoreKey(sessionID, TeamsKey), s.logger)
	if err != nil {
		return nil, err
	}
	return set.List(), nil
}

// TogglePlayer flips a player's membership and returns whether it is now a favorite
// along with the updated list.
func (s *Service) TogglePlayer(ctx context.Context, sessionID string, p models.FavoritePlayer) (bool, []models.FavoritePlayer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := Load[models.FavoritePlayer](ctx, s.store, StoreKey(sessionID, PlayersKey), s.logger)
	if err != nil {
		return false, nil, err
	}
	added, err := set.Toggle(ctx, p)
	if err != nil {
		return false, nil, err
	}
	s.logToggle(sessionID, PlayersKey, p.ID, added)
	return added, set.List(), nil
}

func (s *Service) ToggleTeam(ctx context.Context, sessionID string, t models.FavoriteTeam) (bool, []models.FavoriteTeam, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := Load[models.FavoriteTeam](ctx, s.store, StoreKey(sessionID, TeamsKey), s.logger)
	if err != nil {
		return false, nil, err
	}
	added, err := set.Toggle(ctx, t)
	if err != nil {
		return false, nil, err
	}
	s.logToggle(sessionID, TeamsKey, t.ID, added)
	return added, set.List(), nil
}

// Ping checks the underlying store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) logToggle(sessionID, list, id string, added bool) {
	s.logger.WithFields(logrus.Fields{
		"session_id": sessionID,
		"list":       list,
		"id":         id,
		"added":      added,
	}).Debug("Favorite toggled")
}
