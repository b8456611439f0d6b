package memorystorage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lomoval/weekcal/internal/storage"
)

type Storage struct {
	mu   sync.RWMutex
	data map[string]storage.Event
}

func New() *Storage {
	return &Storage{data: make(map[string]storage.Event)}
}

func (s *Storage) Connect(_ context.Context) error {
	return nil
}

func (s *Storage) Close(_ context.Context) error {
	return nil
}

func (s *Storage) AddEvent(_ context.Context, e *storage.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = uuid.NewString()
	e.Prepare(storage.Now())
	s.data[e.ID] = *e
	return nil
}

func (s *Storage) QueryOverlapping(
	_ context.Context,
	ownerID string,
	start time.Time,
	end time.Time,
) ([]storage.Event, error) {
	events := make([]storage.Event, 0)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, event := range s.data {
		if event.OwnerID == ownerID && event.Overlaps(start, end) {
			events = append(events, event)
		}
	}
	storage.SortByStart(events)
	return events, nil
}

func (s *Storage) UpdateEvent(_ context.Context, id, ownerID string, p storage.Patch) (storage.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[id]
	if !ok || e.OwnerID != ownerID {
		return storage.Event{}, storage.ErrNotFoundEvent
	}
	p.Apply(&e, storage.Now())
	s.data[id] = e
	return e, nil
}

func (s *Storage) RemoveEvent(_ context.Context, id, ownerID string) (storage.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[id]
	if !ok || e.OwnerID != ownerID {
		return storage.Event{}, storage.ErrNotFoundEvent
	}
	delete(s.data, id)
	return e, nil
}

// Len returns the number of stored events of all owners.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
