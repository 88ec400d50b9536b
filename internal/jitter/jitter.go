// Package jitter manages the per-day random offsets applied to schedule
// boundaries, desynchronizing fixture switching across days.
package jitter

import (
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
)

// Bounds is an inclusive range of offset seconds.
type Bounds struct {
	Min int
	Max int
}

func (b Bounds) draw(intN func(int) int) int {
	if b.Max <= b.Min {
		return b.Min
	}
	return b.Min + intN(b.Max-b.Min+1)
}

// Manager regenerates the two daily offsets once per calendar day. Offsets
// are plain in-memory state: they survive the day but not a restart, which
// is fine because a fresh pair is drawn on the first cycle after start.
type Manager struct {
	onBounds  Bounds
	offBounds Bounds
	intN      func(int) int

	lastDay   int // day of month, 0 until first refresh
	onOffset  int
	offOffset int
}

// New creates a Manager drawing offsets from the given bounds.
func New(on, off Bounds) *Manager {
	return &Manager{onBounds: on, offBounds: off, intN: rand.Intn}
}

// Refresh regenerates both offsets when the calendar day has changed since
// the last call (or on the first call). Returns true when new offsets were
// drawn.
func (m *Manager) Refresh(now time.Time) bool {
	if m.lastDay == now.Day() {
		return false
	}

	m.onOffset = m.onBounds.draw(m.intN)
	m.offOffset = m.offBounds.draw(m.intN)
	m.lastDay = now.Day()

	log.Info().
		Int("on_offset_s", m.onOffset).
		Int("off_offset_s", m.offOffset).
		Msg("New daily schedule offsets")
	return true
}

// OnOffset returns today's offset in seconds for schedule on-times.
func (m *Manager) OnOffset() int { return m.onOffset }

// OffOffset returns today's offset in seconds for schedule off-times.
func (m *Manager) OffOffset() int { return m.offOffset }
