package sensor

import (
	"context"
	"sync"
)

// Simulated is an in-memory Sensor for dry-run mode and tests. Readings are
// served from a settable value; Fail forces read errors.
type Simulated struct {
	mu      sync.Mutex
	lux     float64
	failing bool
	enabled bool
}

// NewSimulated creates a simulated sensor reporting the given lux value.
func NewSimulated(lux float64) *Simulated {
	return &Simulated{lux: lux, enabled: true}
}

// SetLux changes the reported reading.
func (s *Simulated) SetLux(lux float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lux = lux
}

// Fail controls whether reads return an error.
func (s *Simulated) Fail(failing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = failing
}

// ReadRawLux implements Sensor.
func (s *Simulated) ReadRawLux(ctx context.Context) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing || !s.enabled {
		return 0, ErrUnavailable
	}
	return s.lux, nil
}

// SetEnabled implements Sensor.
func (s *Simulated) SetEnabled(ctx context.Context, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled
	return nil
}
