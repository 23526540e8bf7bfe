package session

import (
	"sync"

	"llmgames/game"
)

// Store holds live game states by session ID. Reads return the stored
// pointer; since transitions always replace states rather than mutating
// them, a reader keeps a consistent snapshot even while a move is in
// flight.
type Store struct {
	mu    sync.RWMutex
	games map[string]*game.State
}

func NewStore() *Store {
	return &Store{games: map[string]*game.State{}}
}

func (s *Store) Get(id string) (*game.State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.games[id]
	return st, ok
}

func (s *Store) Put(st *game.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[st.ID] = st
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, id)
}
