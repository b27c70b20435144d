package recording

import (
	"sync"
	"time"

	"backend-chillwalk/internal/shared/geo"
)

type session struct {
	// mu serialises use against release.
	mu       sync.Mutex
	released bool
	recorder *Recorder
	source   *PushSource
}

// Manager hands out one Recorder and PushSource per user. A session is
// created by Start and released once it is idle again, so users that are not
// recording hold no goroutine.
type Manager struct {
	mu       sync.Mutex
	closed   bool
	sessions map[string]*session
	watch    WatchOptions
	onChange func(userID string, snap Snapshot)

	newTicker func(time.Duration) (<-chan time.Time, func())
}

func NewManager(watch WatchOptions, onChange func(userID string, snap Snapshot)) *Manager {
	return &Manager{sessions: map[string]*session{}, watch: watch, onChange: onChange}
}

func idleSnapshot() Snapshot {
	return Snapshot{Status: StatusIdle, Points: []geo.Point{}}
}

func (m *Manager) acquire(userID string) (*session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	if s, ok := m.sessions[userID]; ok {
		return s, nil
	}
	src := NewPushSource()
	opts := Options{Watch: m.watch, newTicker: m.newTicker}
	if m.onChange != nil {
		opts.OnChange = func(snap Snapshot) { m.onChange(userID, snap) }
	}
	s := &session{recorder: NewRecorder(src, opts), source: src}
	m.sessions[userID] = s
	return s, nil
}

func (m *Manager) lookup(userID string) (*session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	return s, ok
}

// use runs fn on the user's session, creating it when needed.
func (m *Manager) use(userID string, fn func(*session) error) error {
	for {
		s, err := m.acquire(userID)
		if err != nil {
			return err
		}
		s.mu.Lock()
		if s.released {
			s.mu.Unlock()
			continue
		}
		err = fn(s)
		s.mu.Unlock()
		return err
	}
}

// peek runs fn on the user's session if one exists and reports whether it did.
func (m *Manager) peek(userID string, fn func(*session) error) (bool, error) {
	s, ok := m.lookup(userID)
	if !ok {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return false, nil
	}
	return true, fn(s)
}

// release drops the user's session if its recorder is idle.
func (m *Manager) release(userID string) {
	s, ok := m.lookup(userID)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return
	}
	snap, err := s.recorder.Snapshot()
	if err != nil || snap.Status != StatusIdle {
		return
	}
	s.released = true
	m.mu.Lock()
	if m.sessions[userID] == s {
		delete(m.sessions, userID)
	}
	m.mu.Unlock()
	s.recorder.Close()
}

// active reports how many users currently hold a session.
func (m *Manager) active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close stops every recorder. Later calls that need a session get ErrClosed.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	sessions := m.sessions
	m.sessions = map[string]*session{}
	m.mu.Unlock()
	for _, s := range sessions {
		s.recorder.Close()
	}
}
