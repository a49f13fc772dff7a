package favorites

import (
	"container/list"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Item is an entity snapshot that can be stored in a Set.
type Item interface {
	FavoriteID() string
}

// Set is an ordered set of snapshots persisted under a single store key. Membership and
// toggling are O(1); the persisted form is the JSON array of snapshots in insertion order.
//
// A Set assumes it is the only writer of its key.
type Set[T Item] struct {
	mu     sync.Mutex
	store  Store
	key    string
	logger *logrus.Logger

	order *list.List // of T
	index map[string]*list.Element
}

// Load reads the set stored under key. Corrupt data is logged, deleted from the store and
// replaced by an empty set. When the stored value is absent or not in canonical form the
// canonical serialization is written back.
func Load[T Item](ctx context.Context, store Store, key string, logger *logrus.Logger) (*Set[T], error) {
	s := &Set[T]{
		store:  store,
		key:    key,
		logger: logger,
		order:  list.New(),
		index:  make(map[string]*list.Element),
	}

	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}

	if ok {
		var items []T
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			logger.WithFields(logrus.Fields{
				"key":   key,
				"error": err.Error(),
			}).Warn("Discarding corrupt favorites")
			if err := store.Delete(ctx, key); err != nil {
				return nil, fmt.Errorf("failed to clear corrupt favorites: %w", err)
			}
			ok = false
		} else {
			for _, it := range items {
				if _, dup := s.index[it.FavoriteID()]; dup {
					continue
				}
				s.index[it.FavoriteID()] = s.order.PushBack(it)
			}
		}
	}

	canonical, err := s.serialize()
	if err != nil {
		return nil, err
	}
	if !ok || raw != canonical {
		if err := store.Set(ctx, key, canonical); err != nil {
			return nil, fmt.Errorf("failed to persist favorites: %w", err)
		}
	}
	return s, nil
}

// Toggle removes the item with the same id if present, else appends the snapshot.
// It reports whether the item is now a favorite. If persisting fails the set is left
// unchanged.
func (s *Set[T]) Toggle(ctx context.Context, item T) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := item.FavoriteID()
	if el, ok := s.index[id]; ok {
		prev := el.Prev()
		s.order.Remove(el)
		delete(s.index, id)
		if err := s.persist(ctx); err != nil {
			removed := el.Value.(T)
			if prev == nil {
				s.index[id] = s.order.PushFront(removed)
			} else {
				s.index[id] = s.order.InsertAfter(removed, prev)
			}
			return true, err
		}
		return false, nil
	}

	s.index[id] = s.order.PushBack(item)
	if err := s.persist(ctx); err != nil {
		s.order.Remove(s.index[id])
		delete(s.index, id)
		return false, err
	}
	return true, nil
}

// Contains reports whether id is a favorite.
func (s *Set[T]) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.index[id]
	return ok
}

func (s *Set[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// List returns the snapshots in insertion order.
func (s *Set[T]) List() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items()
}

func (s *Set[T]) items() []T {
	out := make([]T, 0, s.order.Len())
	for el := s.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(T))
	}
	return out
}

func (s *Set[T]) serialize() (string, error) {
	data, err := json.Marshal(s.items())
	if err != nil {
		return "", fmt.Errorf("failed to marshal favorites: %w", err)
	}
	return string(data), nil
}

func (s *Set[T]) persist(ctx context.Context) error {
	data, err := s.serialize()
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("failed to persist favorites: %w", err)
	}
	return nil
}
