// Package sensor provides ambient brightness readings for the controller.
// The hardware behind the Sensor interface is flaky by nature (I2C glitches,
// saturation), so Reader wraps it with bounded retry and a fail-safe
// fallback value.
package sensor

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrUnavailable is returned by sensor implementations when a reading
// could not be taken.
var ErrUnavailable = errors.New("sensor unavailable")

// BrightFallbackLux is reported when all read attempts fail. It is far above
// any realistic threshold, so brightness-driven fixtures evaluate as if it
// were very bright and bias toward OFF. Lights stuck on because of a dead
// sensor are the failure mode this avoids.
const BrightFallbackLux = 9999

// Sensor reads raw lux values from a photometric device.
type Sensor interface {
	// ReadRawLux returns the current ambient brightness in lux.
	ReadRawLux(ctx context.Context) (float64, error)

	// SetEnabled powers the device up or down. Used for best-effort
	// reinitialization after repeated read failures.
	SetEnabled(ctx context.Context, enabled bool) error
}

// Reader wraps a Sensor with retry and fallback policy.
type Reader struct {
	sensor   Sensor
	attempts int
	delay    time.Duration
}

// NewReader creates a Reader with the default policy: three attempts,
// 500ms apart.
func NewReader(s Sensor) *Reader {
	return &Reader{sensor: s, attempts: 3, delay: 500 * time.Millisecond}
}

// ReadLux returns a valid lux value, retrying transient failures. A reading
// is valid when it is non-negative. After all attempts fail it logs a
// warning, attempts a best-effort sensor reinit and returns
// BrightFallbackLux.
func (r *Reader) ReadLux(ctx context.Context) float64 {
	var lastErr error

	for i := 0; i < r.attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return BrightFallbackLux
			case <-time.After(r.delay):
			}
		}

		lux, err := r.sensor.ReadRawLux(ctx)
		if err == nil && lux >= 0 {
			return lux
		}
		if err == nil {
			err = errors.New("negative lux reading")
		}
		lastErr = err
		log.Debug().Err(err).Int("attempt", i+1).Msg("Lux read failed")
	}

	log.Warn().Err(lastErr).Float64("fallback_lux", BrightFallbackLux).
		Msg("Lux read failed after retries, assuming bright")
	r.reinit(ctx)
	return BrightFallbackLux
}

// reinit power-cycles the sensor. Failures are logged, never fatal: the
// next cycle retries reads regardless.
func (r *Reader) reinit(ctx context.Context) {
	if err := r.sensor.SetEnabled(ctx, false); err != nil {
		log.Warn().Err(err).Msg("Sensor disable failed during reinit")
		return
	}
	if err := r.sensor.SetEnabled(ctx, true); err != nil {
		log.Warn().Err(err).Msg("Sensor enable failed during reinit")
		return
	}
	log.Info().Msg("Sensor reinitialized")
}
