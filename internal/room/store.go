// internal/room/store.go
package room

import (
	"sync"

	"github.com/google/uuid"
)

// Store is the in-memory room registry. It owns the map; rooms own
// their own state.
type Store struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]*Room
}

func NewStore() *Store {
	return &Store{rooms: make(map[uuid.UUID]*Room)}
}

func (s *Store) Add(r *Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[r.ID] = r
}

func (s *Store) Get(id uuid.UUID) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	return r, ok
}

func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
}

// Snapshots returns the public state of every room, for room lists.
func (s *Store) Snapshots() []Snapshot {
	s.mu.Lock()
	rooms := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	s.mu.Unlock()

	snaps := make([]Snapshot, 0, len(rooms))
	for _, r := range rooms {
		snaps = append(snaps, r.Snapshot())
	}
	return snaps
}
