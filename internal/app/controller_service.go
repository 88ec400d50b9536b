package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/luemar/light-manager/internal/config"
	"github.com/luemar/light-manager/internal/engine"
	"github.com/luemar/light-manager/internal/jitter"
	"github.com/luemar/light-manager/internal/ledger"
	"github.com/luemar/light-manager/internal/reconcile"
	"github.com/luemar/light-manager/internal/schedule"
	"github.com/luemar/light-manager/internal/sensor"
)

// ControllerService runs the control loop: one strictly sequential cycle of
// read schedule document, refresh jitter, read lux, decide, reconcile,
// persist, then sleep for the configured interval. The loop is the only
// writer of fixture state, so no locking is involved anywhere in the
// decision path.
type ControllerService struct {
	cfg        *config.Config
	reader     *sensor.Reader
	jitter     *jitter.Manager
	engine     *engine.Engine
	reconciler *reconcile.Reconciler
	ledger     *ledger.Ledger

	// prev holds the previous cycle's desired state per fixture; nil entry
	// means the fixture has never been decided. Seeded from the database at
	// start, updated in memory every cycle.
	prev map[string]*bool

	stopped chan struct{}
}

// NewControllerService creates the control loop service.
func NewControllerService(
	cfg *config.Config,
	reader *sensor.Reader,
	jit *jitter.Manager,
	eng *engine.Engine,
	rec *reconcile.Reconciler,
	l *ledger.Ledger,
) *ControllerService {
	return &ControllerService{
		cfg:        cfg,
		reader:     reader,
		jitter:     jit,
		engine:     eng,
		reconciler: rec,
		ledger:     l,
		stopped:    make(chan struct{}),
	}
}

// Start seeds previous state from the database and launches the loop.
func (c *ControllerService) Start(ctx context.Context) {
	prev, err := c.reconciler.LoadPrevious()
	if err != nil {
		// Missing or corrupt state is not fatal: every fixture starts
		// unknown and gets initialized on the first cycle.
		log.Error().Err(err).Msg("Failed to load persisted state, starting from unknown")
		prev = make(map[string]*bool)
	}
	c.prev = prev

	if err := c.ledger.Append(ledger.EventStarted, "", uuid.NewString(), nil); err != nil {
		log.Warn().Err(err).Msg("Failed to record start event")
	}

	go c.run(ctx)
}

// WaitStopped blocks until the loop has finished its shutdown sequence.
func (c *ControllerService) WaitStopped() {
	<-c.stopped
}

func (c *ControllerService) run(ctx context.Context) {
	defer close(c.stopped)

	log.Info().Int("fixtures", len(c.engine.Fixtures())).Msg("Controller loop started")

	for {
		interval := c.cycle(ctx)

		select {
		case <-ctx.Done():
			c.shutdown()
			return
		case <-time.After(interval):
		}
	}
}

// cycle executes one control cycle and returns the sleep interval the
// schedule document currently asks for.
func (c *ControllerService) cycle(ctx context.Context) time.Duration {
	cycleID := uuid.NewString()
	now := time.Now()

	// The document is read fresh every cycle so operator edits apply
	// without a restart. Unavailability degrades to defaults, never halts.
	doc, err := schedule.Read(c.cfg.Schedule.Path)
	if err != nil {
		log.Error().Err(err).Str("path", c.cfg.Schedule.Path).
			Msg("Schedule document unavailable, using defaults")
	}

	c.jitter.Refresh(now)

	lux := c.reader.ReadLux(ctx)
	if lux == sensor.BrightFallbackLux {
		if err := c.ledger.Append(ledger.EventSensorFallback, "", cycleID, nil); err != nil {
			log.Warn().Err(err).Msg("Failed to record sensor fallback")
		}
	}
	log.Info().Float64("lux", lux).Msg("Brightness")

	decisions := c.engine.Decide(engine.Input{
		Now:       now,
		Doc:       doc,
		Lux:       lux,
		OnOffset:  c.jitter.OnOffset(),
		OffOffset: c.jitter.OffOffset(),
		Prev:      c.prev,
	})

	c.reconciler.Apply(ctx, cycleID, decisions)

	for _, d := range decisions {
		on := d.On
		c.prev[d.Name] = &on
	}

	return doc.CheckInterval()
}

// shutdown forces every fixture off and records the stop.
func (c *ControllerService) shutdown() {
	cycleID := uuid.NewString()
	c.reconciler.ForceAllOff(cycleID)
	if err := c.ledger.Append(ledger.EventStopped, "", cycleID, nil); err != nil {
		log.Warn().Err(err).Msg("Failed to record stop event")
	}
	log.Info().Msg("Controller stopped, all fixtures off")
}
