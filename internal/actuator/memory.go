package actuator

import "sync"

// Memory is an in-memory Actuator for dry-run mode and tests. It counts
// hardware calls so tests can assert actuation minimality.
type Memory struct {
	mu       sync.Mutex
	on       bool
	OnCalls  int
	OffCalls int
}

// NewMemory creates a Memory actuator in the given initial state.
func NewMemory(on bool) *Memory {
	return &Memory{on: on}
}

// On implements Actuator.
func (m *Memory) On() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.on = true
	m.OnCalls++
	return nil
}

// Off implements Actuator.
func (m *Memory) Off() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.on = false
	m.OffCalls++
	return nil
}

// IsOn implements Actuator.
func (m *Memory) IsOn() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.on, nil
}
