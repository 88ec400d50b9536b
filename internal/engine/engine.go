// Package engine computes the desired on/off state of every fixture from
// the schedule document, wall-clock time, daily jitter, the lux reading and
// the previous desired state.
package engine

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/luemar/light-manager/internal/schedule"
)

// Mode selects how a fixture's desired state is computed.
type Mode string

const (
	// ModeSchedule drives the fixture purely from its on/off window.
	ModeSchedule Mode = "schedule"

	// ModeBrightness drives the fixture from the lux reading with
	// hysteresis, plus an optional daily manual cutoff time.
	ModeBrightness Mode = "brightness"
)

// Fixture describes one controllable output channel.
type Fixture struct {
	Name string
	Mode Mode
}

// Input is everything one control cycle feeds into the engine.
type Input struct {
	Now       time.Time
	Doc       *schedule.Document
	Lux       float64
	OnOffset  int // jitter seconds applied to schedule on-times
	OffOffset int // jitter seconds applied to schedule off-times

	// Prev maps fixture name to the previous cycle's desired state.
	// A nil entry means the fixture has never been decided (fresh
	// database), which is distinct from "was off".
	Prev map[string]*bool
}

// Decision is the engine's verdict for one fixture.
type Decision struct {
	Name string
	On   bool
}

// Engine evaluates fixture policy. It holds no mutable state: continuity
// (hysteresis, edge detection) comes in through Input.Prev.
type Engine struct {
	fixtures []Fixture
	resolver *schedule.Resolver
}

// New creates an Engine for the given fixtures.
func New(fixtures []Fixture, resolver *schedule.Resolver) *Engine {
	return &Engine{fixtures: fixtures, resolver: resolver}
}

// Fixtures returns the fixtures in evaluation order.
func (e *Engine) Fixtures() []Fixture {
	return e.fixtures
}

// Decide computes the desired state for every fixture, logging
// initializations and desired-state transitions.
func (e *Engine) Decide(in Input) []Decision {
	decisions := make([]Decision, 0, len(e.fixtures))

	for _, f := range e.fixtures {
		want := e.decideFixture(f, in)

		prev := in.Prev[f.Name]
		switch {
		case prev == nil:
			log.Info().Str("fixture", f.Name).Bool("desired", want).Msg("Fixture initialized")
		case *prev != want:
			log.Info().Str("fixture", f.Name).
				Bool("from", *prev).Bool("to", want).
				Float64("lux", in.Lux).
				Msg("Desired state transition")
		}

		decisions = append(decisions, Decision{Name: f.Name, On: want})
	}

	return decisions
}

func (e *Engine) decideFixture(f Fixture, in Input) bool {
	switch f.Mode {
	case ModeSchedule:
		return e.decideSchedule(f.Name, in)
	case ModeBrightness:
		return e.decideBrightness(f.Name, in)
	}
	return false
}

// decideSchedule evaluates a pure window fixture. Missing or malformed
// schedule entries disable the fixture rather than failing the cycle.
func (e *Engine) decideSchedule(name string, in Input) bool {
	onRaw, offRaw, ok := in.Doc.Window(name)
	if !ok {
		return false
	}

	onTime, err := e.resolver.Resolve(onRaw, in.Now)
	if err != nil {
		log.Warn().Err(err).Str("fixture", name).Str("value", onRaw).
			Msg("Bad schedule on-time, fixture disabled")
		return false
	}
	offTime, err := e.resolver.Resolve(offRaw, in.Now)
	if err != nil {
		log.Warn().Err(err).Str("fixture", name).Str("value", offRaw).
			Msg("Bad schedule off-time, fixture disabled")
		return false
	}

	start := onTime.AddSeconds(in.OnOffset)
	end := offTime.AddSeconds(in.OffOffset)
	return schedule.InWindow(schedule.FromTime(in.Now), start, end)
}

// decideBrightness evaluates the lux-driven fixture: an optional daily
// cutoff wins unconditionally, otherwise the hysteresis band around the
// threshold keeps the previous state until the reading clears it. Jitter
// does not apply here; only window fixtures are desynchronized.
func (e *Engine) decideBrightness(name string, in Input) bool {
	if raw, ok := in.Doc.CutoffTime(name); ok {
		cutoff, err := e.resolver.Resolve(raw, in.Now)
		if err != nil {
			log.Warn().Err(err).Str("fixture", name).Str("value", raw).
				Msg("Bad cutoff time, ignoring")
		} else if schedule.FromTime(in.Now).MinutesSinceMidnight() >= cutoff.MinutesSinceMidnight() {
			return false
		}
	}

	threshold := in.Doc.Threshold()
	hysteresis := in.Doc.Hysteresis()

	prevOn := false
	if prev := in.Prev[name]; prev != nil {
		prevOn = *prev
	}

	if prevOn {
		// Stay on until it is clearly bright.
		return in.Lux < threshold+hysteresis
	}
	// Stay off until it is clearly dark.
	return in.Lux < threshold-hysteresis
}
