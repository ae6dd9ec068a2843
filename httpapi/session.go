package httpapi

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

//SessionStore is an interface to an arbitrary chat session backend.
type SessionStore interface {
	//Create returns a new sessionID. If the backend malfunctions,
	//sessionID will be an empty string and err will be non-nil.
	Create() (sessionID string, err error)

	//Check returns whether or not sessionID is a valid session.
	//If sessionID is not valid, session will be nil.
	//If the backend malfunctions, session will be nil and err will be non-nil.
	Check(sessionID string) (session *Session, err error)

	//Touch records a chat turn on sessionID, starting the session if it is unknown or expired.
	Touch(sessionID string) (session *Session, err error)
}

//Session represents a chat session
type Session struct {
	ID      string
	Turns   int
	Expires time.Time
}

//MemorySessionStore represents a SessionStore that uses an in-memory map
type MemorySessionStore struct {
	store    map[string]*Session
	duration time.Duration
	mu       *sync.Mutex
	stop     chan struct{}
	once     sync.Once
}

//scavenge removes stale records every interval until the store is closed
func scavenge(m *MemorySessionStore, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-t.C:
		}
		now := time.Now()
		m.mu.Lock()
		for id, s := range m.store {
			if s.Expires.Before(now) {
				delete(m.store, id)
			}
		}
		m.mu.Unlock()
	}
}

//NewMemorySessionStore returns a new MemorySessionStore with the given expiration duration.
func NewMemorySessionStore(duration time.Duration) *MemorySessionStore {
	m := &MemorySessionStore{
		store:    make(map[string]*Session),
		duration: duration,
		mu:       new(sync.Mutex),
		stop:     make(chan struct{}),
	}
	go scavenge(m, time.Hour)
	return m
}

//Close stops the scavenger
func (m *MemorySessionStore) Close() {
	m.once.Do(func() { close(m.stop) })
}

//Create returns a new sessionID. err will always be nil.
func (m *MemorySessionStore) Create() (sessionID string, err error) {
	id := uuid.NewString()
	m.mu.Lock()
	m.store[id] = &Session{
		ID:      id,
		Expires: time.Now().Add(m.duration),
	}
	m.mu.Unlock()
	return id, nil
}

//Check returns whether or not sessionID is a valid session. If sessionID is not valid, session will be nil.
//err will always be nil.
func (m *MemorySessionStore) Check(sessionID string) (session *Session, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.store[sessionID]; ok {
		if s.Expires.After(time.Now()) {
			s.Expires = time.Now().Add(m.duration)
			c := *s
			return &c, nil
		}
		delete(m.store, sessionID)
	}
	return nil, nil
}

//Touch records a chat turn on sessionID. err will always be nil.
func (m *MemorySessionStore) Touch(sessionID string) (session *Session, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[sessionID]
	if !ok || s.Expires.Before(time.Now()) {
		s = &Session{ID: sessionID}
		m.store[sessionID] = s
	}
	s.Turns++
	s.Expires = time.Now().Add(m.duration)
	c := *s
	return &c, nil
}
