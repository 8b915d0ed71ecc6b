package state

import (
	"sync"
)

// Manager holds the connection state with thread-safe access.
// Writers are serialized by the owning session; readers may call at any time.
type Manager struct {
	mu sync.RWMutex

	state  State
	config *Config

	// attempt is incremented for every connect attempt and every teardown.
	attempt uint64
}

// New creates a new state manager in StateIdle.
func New() *Manager {
	return &Manager{
		state: StateIdle,
	}
}

// GetState returns the current state.
func (m *Manager) GetState() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// SetState sets the current state.
func (m *Manager) SetState(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

// IsConnected returns true in StateConnected or StateEnteredRoom.
func (m *Manager) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.IsConnected()
}

// GetConfig returns a copy of the held config, or nil.
func (m *Manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.config == nil {
		return nil
	}
	c := *m.config
	return &c
}

// SetConfig stores the connection target.
func (m *Manager) SetConfig(c Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config = &c
}

// ClearConfig drops the connection target.
func (m *Manager) ClearConfig() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config = nil
}

// HasConfig returns true if a connection target is held.
func (m *Manager) HasConfig() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config != nil
}

// NextAttempt invalidates the current attempt and returns the new attempt ID.
func (m *Manager) NextAttempt() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempt++
	return m.attempt
}

// IsCurrentAttempt returns true if id is the current attempt ID.
func (m *Manager) IsCurrentAttempt(id uint64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.attempt == id
}

// Snapshot is a consistent view of the state manager.
type Snapshot struct {
	State      State
	StreamerID string
	Prefix     string
}

// Snapshot returns the current state and config in one read.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Snapshot{State: m.state}
	if m.config != nil {
		s.StreamerID = m.config.StreamerID
		s.Prefix = m.config.Prefix
	}
	return s
}
