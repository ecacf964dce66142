package session

import (
	"sync"
	"time"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Kind    string
	Message string
}

const flashKey = "flashes"

// Store holds per-session transient state: flash messages and the
// filtered-expense stash. Values are written with Put and consumed exactly
// once with Take, which reads and clears under a single lock hold.
type Store struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*sessionData
}

type sessionData struct {
	values    map[string]any
	expiresAt time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:      ttl,
		sessions: make(map[string]*sessionData),
	}
}

// Put stores value under key for the session, refreshing its expiry.
func (s *Store) Put(sid, key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()

	data, ok := s.sessions[sid]
	if !ok {
		data = &sessionData{values: make(map[string]any)}
		s.sessions[sid] = data
	}
	data.values[key] = value
	data.expiresAt = time.Now().Add(s.ttl)
}

// Take returns the value stored under key and removes it in the same
// critical section, making the consume-once contract atomic.
func (s *Store) Take(sid, key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.sessions[sid]
	if !ok || time.Now().After(data.expiresAt) {
		return nil, false
	}
	value, ok := data.values[key]
	if !ok {
		return nil, false
	}
	delete(data.values, key)
	return value, true
}

// Drop discards all transient state for the session.
func (s *Store) Drop(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sid)
}

// AddFlash queues a flash message for the session.
func (s *Store) AddFlash(sid string, flash Flash) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()

	data, ok := s.sessions[sid]
	if !ok {
		data = &sessionData{values: make(map[string]any)}
		s.sessions[sid] = data
	}
	flashes, _ := data.values[flashKey].([]Flash)
	data.values[flashKey] = append(flashes, flash)
	data.expiresAt = time.Now().Add(s.ttl)
}

// TakeFlashes consumes every queued flash message for the session.
func (s *Store) TakeFlashes(sid string) []Flash {
	value, ok := s.Take(sid, flashKey)
	if !ok {
		return nil
	}
	flashes, _ := value.([]Flash)
	return flashes
}

// sweepLocked drops expired sessions. Caller must hold the lock.
func (s *Store) sweepLocked() {
	now := time.Now()
	for sid, data := range s.sessions {
		if now.After(data.expiresAt) {
			delete(s.sessions, sid)
		}
	}
}
