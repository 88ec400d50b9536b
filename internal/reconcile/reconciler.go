// Package reconcile makes the physical fixtures match desired state.
package reconcile

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/luemar/light-manager/internal/actuator"
	"github.com/luemar/light-manager/internal/engine"
	"github.com/luemar/light-manager/internal/ledger"
	"github.com/luemar/light-manager/internal/state"
)

// KindFixture is the resource kind under which fixture desired state is
// persisted.
const KindFixture = "fixture"

// Desired is the persisted per-fixture desired state.
type Desired struct {
	On bool `json:"on"`
}

// Reconciler compares desired fixture state against observed actuator state
// and performs the minimal set of hardware transitions. Because it runs the
// full comparison every cycle rather than acting on schedule edges, a
// fixture whose window is already active at process start converges within
// one cycle (catch-up).
type Reconciler struct {
	actuators map[string]actuator.Actuator
	store     *state.TypedStore[Desired]
	ledger    *ledger.Ledger
	limiter   *rate.Limiter
}

// New creates a Reconciler. rateLimitRPS bounds hardware flips per second;
// relays do not enjoy being toggled in bursts.
func New(actuators map[string]actuator.Actuator, store *state.TypedStore[Desired], l *ledger.Ledger, rateLimitRPS float64) *Reconciler {
	if rateLimitRPS == 0 {
		rateLimitRPS = 10.0
	}
	// Fractional rates truncate to a zero burst, which would make every
	// Wait fail. One token of burst is always required.
	burst := int(rateLimitRPS)
	if burst < 1 {
		burst = 1
	}
	return &Reconciler{
		actuators: actuators,
		store:     store,
		ledger:    l,
		limiter:   rate.NewLimiter(rate.Limit(rateLimitRPS), burst),
	}
}

// LoadPrevious returns the persisted desired state per fixture. Fixtures
// without a stored entry map to nil: "unknown", not "off". The engine uses
// that distinction to log an initialization instead of a transition.
func (r *Reconciler) LoadPrevious() (map[string]*bool, error) {
	stored, err := r.store.GetAll()
	if err != nil {
		return nil, err
	}

	prev := make(map[string]*bool, len(stored))
	for name, d := range stored {
		on := d.On
		prev[name] = &on
	}
	return prev, nil
}

// Apply drives every fixture toward its decision and persists the full
// desired-state mapping. A fixture already in its desired state costs no
// hardware call and no log line. Actuator errors are logged and left for
// the next cycle, where the persisting desired/actual mismatch retries the
// flip naturally.
func (r *Reconciler) Apply(ctx context.Context, cycleID string, decisions []engine.Decision) {
	for _, d := range decisions {
		act, ok := r.actuators[d.Name]
		if !ok {
			log.Error().Str("fixture", d.Name).Msg("No actuator registered for fixture")
			continue
		}

		actual, err := act.IsOn()
		if err != nil {
			log.Warn().Err(err).Str("fixture", d.Name).Msg("Failed to read actuator state")
			continue
		}

		if d.On == actual {
			continue
		}

		if err := r.limiter.Wait(ctx); err != nil {
			log.Warn().Err(err).Str("fixture", d.Name).Msg("Actuation rate limiter interrupted")
			break
		}

		if d.On {
			if err := act.On(); err != nil {
				log.Warn().Err(err).Str("fixture", d.Name).Msg("Failed to turn fixture on")
				continue
			}
			log.Info().Str("fixture", d.Name).Msg("Turned on")
			r.record(ledger.EventFixtureOn, d.Name, cycleID)
		} else {
			if err := act.Off(); err != nil {
				log.Warn().Err(err).Str("fixture", d.Name).Msg("Failed to turn fixture off")
				continue
			}
			log.Info().Str("fixture", d.Name).Msg("Turned off")
			r.record(ledger.EventFixtureOff, d.Name, cycleID)
		}
	}

	for _, d := range decisions {
		if err := r.store.Set(d.Name, Desired{On: d.On}); err != nil {
			log.Error().Err(err).Str("fixture", d.Name).Msg("Failed to persist desired state")
		}
	}
}

// ForceAllOff de-energizes every fixture. Used on shutdown so an
// unattended host never keeps lights burning after the controller exits.
func (r *Reconciler) ForceAllOff(cycleID string) {
	for name, act := range r.actuators {
		if err := act.Off(); err != nil {
			log.Error().Err(err).Str("fixture", name).Msg("Failed to force fixture off")
			continue
		}
		log.Info().Str("fixture", name).Msg("Forced off")
		r.record(ledger.EventFixtureOff, name, cycleID)
	}
}

func (r *Reconciler) record(event ledger.EventType, fixture, cycleID string) {
	if r.ledger == nil {
		return
	}
	if err := r.ledger.Append(event, fixture, cycleID, nil); err != nil {
		log.Warn().Err(err).Str("fixture", fixture).Msg("Failed to record ledger event")
	}
}
