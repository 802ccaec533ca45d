package inventory

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// MemStore keeps items in insertion order behind a single lock.
type MemStore struct {
	mu    sync.RWMutex
	items []Item
}

// NewMemStore copies seed in order. Every seed item needs a distinct integer id.
func NewMemStore(seed ...Item) (*MemStore, error) {
	s := &MemStore{items: make([]Item, 0, len(seed))}
	seen := make(map[int64]struct{}, len(seed))
	for i, it := range seed {
		id, ok := it.ID()
		if !ok {
			return nil, fmt.Errorf("seed item %d: %w: id must be an integer", i, ErrValidation)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("seed item %d: %w: duplicate id %d", i, ErrValidation, id)
		}
		seen[id] = struct{}{}
		s.items = append(s.items, it.Clone())
	}
	return s, nil
}

// NewStore returns a MemStore holding the two default items.
func NewStore() *MemStore {
	s, err := NewMemStore(
		Item{"id": int64(1), "name": "Item A", "cost": 457, "quantity": 10},
		Item{"id": int64(2), "name": "Item B", "cost": 333, "quantity": 5},
	)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *MemStore) List(ctx context.Context) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Item, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it.Clone())
	}
	return out, nil
}

func (s *MemStore) Get(ctx context.Context, id int64) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	return s.items[i].Clone(), nil
}

func (s *MemStore) Create(ctx context.Context, fields Item) (Item, error) {
	if err := validateCreate(fields); err != nil {
		return nil, err
	}

	it := fields.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	it[keyID] = s.nextID()
	s.items = append(s.items, it)
	return it.Clone(), nil
}

func (s *MemStore) Update(ctx context.Context, id int64, fields Item) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	if err := validateUpdate(id, fields); err != nil {
		return nil, err
	}

	it := s.items[i]
	for k, v := range fields {
		if k == keyID {
			continue
		}
		it[k] = v
	}
	return it.Clone(), nil
}

func (s *MemStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	s.items = slices.Delete(s.items, i, i+1)
	return nil
}

// nextID is the tail id + 1, or 1 when empty. Deleting the tail, or emptying
// the store, lets a previously issued id be handed out again.
func (s *MemStore) nextID() int64 {
	if len(s.items) == 0 {
		return 1
	}
	last, _ := s.items[len(s.items)-1].ID()
	return last + 1
}

func (s *MemStore) indexOf(id int64) int {
	return slices.IndexFunc(s.items, func(it Item) bool {
		got, ok := it.ID()
		return ok && got == id
	})
}

var _ Store = (*MemStore)(nil)
