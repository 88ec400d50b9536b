package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"periph.io/x/host/v3"

	"github.com/luemar/light-manager/internal/actuator"
	"github.com/luemar/light-manager/internal/config"
	"github.com/luemar/light-manager/internal/db"
	"github.com/luemar/light-manager/internal/engine"
	"github.com/luemar/light-manager/internal/jitter"
	"github.com/luemar/light-manager/internal/ledger"
	"github.com/luemar/light-manager/internal/reconcile"
	"github.com/luemar/light-manager/internal/schedule"
	"github.com/luemar/light-manager/internal/sensor"
	"github.com/luemar/light-manager/internal/state"
)

// Services is a container for all application services.
// It manages service initialization order and dependencies.
type Services struct {
	cfg *config.Config

	// Core infrastructure
	DB           *db.DB
	Store        *state.Store
	FixtureStore *state.TypedStore[reconcile.Desired]
	Ledger       *ledger.Ledger

	// Hardware
	Sensor    sensor.Sensor
	Actuators map[string]actuator.Actuator
	statusLED actuator.Actuator

	// Control plane
	Jitter     *jitter.Manager
	Engine     *engine.Engine
	Reconciler *reconcile.Reconciler
	Controller *ControllerService
}

// NewServices creates all services with proper dependency injection.
func NewServices(cfg *config.Config, dryRun bool) (*Services, error) {
	s := &Services{cfg: cfg}

	// Initialize database
	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	s.DB = database

	// Initialize ledger and generic state store
	s.Ledger = ledger.New(database.DB)
	s.Store = state.NewStore(database.DB)
	s.FixtureStore = state.NewTypedStore[reconcile.Desired](s.Store, reconcile.KindFixture)

	// Bring up hardware (or fakes in dry-run mode)
	if dryRun {
		s.initFakeHardware()
	} else if err := s.initHardware(); err != nil {
		s.Close()
		return nil, err
	}

	// Schedule time resolver, with astronomical support when geo is set
	tz := time.Local
	if cfg.Geo.Timezone != "" && cfg.Geo.Timezone != "Local" {
		loc, err := time.LoadLocation(cfg.Geo.Timezone)
		if err != nil {
			log.Warn().Err(err).Str("timezone", cfg.Geo.Timezone).Msg("Unknown timezone, using local")
		} else {
			tz = loc
		}
	}
	resolver := schedule.NewResolver(cfg.Geo.Lat, cfg.Geo.Lon, tz)

	// Daily jitter
	s.Jitter = jitter.New(
		jitter.Bounds{Min: cfg.Jitter.OnMin, Max: cfg.Jitter.OnMax},
		jitter.Bounds{Min: cfg.Jitter.OffMin, Max: cfg.Jitter.OffMax},
	)

	// Decision engine
	fixtures := make([]engine.Fixture, 0, len(cfg.Fixtures))
	for _, f := range cfg.Fixtures {
		mode := engine.Mode(f.Mode)
		if mode != engine.ModeSchedule && mode != engine.ModeBrightness {
			s.Close()
			return nil, fmt.Errorf("fixture %q: unknown mode %q", f.Name, f.Mode)
		}
		fixtures = append(fixtures, engine.Fixture{Name: f.Name, Mode: mode})
	}
	s.Engine = engine.New(fixtures, resolver)

	// Reconciler
	s.Reconciler = reconcile.New(s.Actuators, s.FixtureStore, s.Ledger, cfg.Reconciler.RateLimitRPS)

	// Controller loop
	s.Controller = NewControllerService(cfg, sensor.NewReader(s.Sensor), s.Jitter, s.Engine, s.Reconciler, s.Ledger)

	return s, nil
}

// initHardware initializes periph, the lux sensor, the fixture GPIO pins
// and the status LED.
func (s *Services) initHardware() error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("periph host init: %w", err)
	}

	tsl, err := sensor.NewTSL2561(s.cfg.Sensor.Bus, s.cfg.Sensor.Address)
	if err != nil {
		return fmt.Errorf("lux sensor: %w", err)
	}
	s.Sensor = tsl

	s.Actuators = make(map[string]actuator.Actuator, len(s.cfg.Fixtures))
	for _, f := range s.cfg.Fixtures {
		pin, err := actuator.NewGPIO(f.Pin)
		if err != nil {
			return fmt.Errorf("fixture %q: %w", f.Name, err)
		}
		s.Actuators[f.Name] = pin
	}

	if s.cfg.StatusLED != "" && s.cfg.StatusLED != "none" {
		led, err := actuator.NewGPIO(s.cfg.StatusLED)
		if err != nil {
			return fmt.Errorf("status led: %w", err)
		}
		s.statusLED = led
	}

	return nil
}

// initFakeHardware wires in-memory hardware for dry-run mode.
func (s *Services) initFakeHardware() {
	log.Info().Msg("Dry-run mode: using simulated hardware")
	s.Sensor = sensor.NewSimulated(200)
	s.Actuators = make(map[string]actuator.Actuator, len(s.cfg.Fixtures))
	for _, f := range s.cfg.Fixtures {
		s.Actuators[f.Name] = actuator.NewMemory(false)
	}
	s.statusLED = actuator.NewMemory(false)
}

// Start starts all services in the correct order.
func (s *Services) Start(ctx context.Context) error {
	// Status LED signals the controller is alive.
	if s.statusLED != nil {
		if err := s.statusLED.On(); err != nil {
			log.Warn().Err(err).Msg("Failed to light status LED")
		}
	}

	s.Controller.Start(ctx)
	go s.runLedgerCleanup(ctx)

	return nil
}

// runLedgerCleanup periodically removes old ledger entries.
func (s *Services) runLedgerCleanup(ctx context.Context) {
	retention := time.Duration(s.cfg.Ledger.RetentionDays) * 24 * time.Hour

	ticker := time.NewTicker(s.cfg.Ledger.CleanupInterval.Duration())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.Ledger.DeleteOlderThan(retention)
			if err != nil {
				log.Error().Err(err).Msg("Failed to cleanup old ledger entries")
			} else if deleted > 0 {
				log.Info().Int64("deleted", deleted).Dur("retention", retention).Msg("Cleaned up old ledger entries")
			}
		}
	}
}

// ClearState clears all stored fixture state.
func (s *Services) ClearState() error {
	return s.FixtureStore.Clear()
}

// Stop gracefully stops all services.
func (s *Services) Stop() error {
	if s.Controller != nil {
		// Wait for the controller to force fixtures off before pulling
		// the database out from under it.
		s.Controller.WaitStopped()
	}
	if s.statusLED != nil {
		_ = s.statusLED.Off()
	}
	s.Close()
	return nil
}

// Close releases all resources.
func (s *Services) Close() {
	if closer, ok := s.Sensor.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close sensor")
		}
	}
	if s.DB != nil {
		s.DB.Close()
	}
}
