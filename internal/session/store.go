package session

import "sync"

// Store is the process-wide session state container. All mutation goes
// through Dispatch; reads return a snapshot.
type Store struct {
	mu      sync.RWMutex
	state   State
	storage Storage
}

// NewStore initializes the store, hydrating any persisted identity into
// state the way the app dispatches a LOGIN at startup.
func NewStore(storage Storage) (*Store, error) {
	s := &Store{storage: storage}
	if storage != nil {
		id, err := storage.Load()
		if err != nil {
			return nil, err
		}
		if id != nil {
			s.state = Reduce(s.state, Action{Type: ActionLogin, Payload: id})
		}
	}
	return s, nil
}

// Dispatch applies an action to the state and mirrors the result to storage.
func (s *Store) Dispatch(action Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, action)
	if s.storage != nil {
		_ = s.storage.Save(s.state.User)
	}
}

// Current returns a snapshot of the session state.
func (s *Store) Current() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}
