package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"trilha/internal/registration/models"
	"trilha/pkg/sentinel"
)

// InMemoryStore keeps registrations in process memory. It favors clarity over
// performance and backs unit tests and local runs without Postgres. The mutex
// makes the capacity and uniqueness checks atomic with the write, matching
// the Postgres store's guarantees.
type InMemoryStore struct {
	mu       sync.RWMutex
	capacity int
	nextID   int64
	records  map[int64]*models.Registration
}

// NewInMemory constructs an empty store with the given capacity ceiling.
func NewInMemory(capacity int) *InMemoryStore {
	return &InMemoryStore{
		capacity: capacity,
		nextID:   1,
		records:  make(map[int64]*models.Registration),
	}
}

func (s *InMemoryStore) Create(_ context.Context, reg *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) >= s.capacity {
		return sentinel.ErrCapacityReached
	}
	if err := s.conflict(reg.Email, reg.Whatsapp, 0); err != nil {
		return err
	}

	stored := *reg
	stored.ID = s.nextID
	stored.CreatedAt = time.Now().UTC()
	s.nextID++
	s.records[stored.ID] = &stored

	reg.ID = stored.ID
	reg.CreatedAt = stored.CreatedAt
	return nil
}

func (s *InMemoryStore) FindConflict(_ context.Context, email, whatsapp string, excludeID int64) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.records {
		if rec.ID == excludeID {
			continue
		}
		if rec.Email == email || rec.Whatsapp == whatsapp {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id int64) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Registration, 0, len(s.records))
	for _, rec := range s.records {
		cp := *rec
		out = append(out, &cp)
	}
	// Newest first; id breaks ties for records created in the same instant.
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) Update(_ context.Context, reg *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.records[reg.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if err := s.conflict(reg.Email, reg.Whatsapp, reg.ID); err != nil {
		return err
	}

	stored := *reg
	stored.CreatedAt = current.CreatedAt
	s.records[reg.ID] = &stored
	reg.CreatedAt = current.CreatedAt
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *InMemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// conflict must be called with the lock held.
func (s *InMemoryStore) conflict(email, whatsapp string, excludeID int64) error {
	for _, rec := range s.records {
		if rec.ID == excludeID {
			continue
		}
		if rec.Email == email {
			return sentinel.ErrDuplicateEmail
		}
		if rec.Whatsapp == whatsapp {
			return sentinel.ErrDuplicatePhone
		}
	}
	return nil
}
