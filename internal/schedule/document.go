package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrUnavailable is returned by Read when the schedule document is missing
// or malformed. The returned document is still usable (empty, all defaults).
var ErrUnavailable = errors.New("schedule document unavailable")

// Defaults applied when the document omits a key.
const (
	DefaultCheckInterval = 60 * time.Second
	DefaultThreshold     = 120.0
	DefaultHysteresis    = 15.0
)

// Document is one snapshot of the operator-editable schedule document.
// It is re-read every control cycle so that live edits take effect without
// a restart; nothing caches it across cycles.
type Document struct {
	values map[string]any
}

// Empty returns a document with no keys. All accessors yield defaults.
func Empty() *Document {
	return &Document{values: map[string]any{}}
}

// FromMap wraps an already-decoded key-value mapping as a Document.
// Numeric values must be float64, matching what encoding/json produces.
func FromMap(values map[string]any) *Document {
	if values == nil {
		return Empty()
	}
	return &Document{values: values}
}

// Read loads the schedule document from path. A missing or malformed file
// yields an empty document together with ErrUnavailable; the caller logs
// and proceeds on defaults rather than halting the loop.
func Read(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Empty(), fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		return Empty(), fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return &Document{values: values}, nil
}

// CheckInterval returns the cycle interval, default one minute.
func (d *Document) CheckInterval() time.Duration {
	if v, ok := d.number("check_interval"); ok && v > 0 {
		return time.Duration(v * float64(time.Second))
	}
	return DefaultCheckInterval
}

// Threshold returns the lux threshold for brightness-driven fixtures.
func (d *Document) Threshold() float64 {
	if v, ok := d.number("threshold"); ok {
		return v
	}
	return DefaultThreshold
}

// Hysteresis returns the lux dead-band width around the threshold.
func (d *Document) Hysteresis() float64 {
	if v, ok := d.number("hysteresis"); ok {
		return v
	}
	return DefaultHysteresis
}

// Window returns the raw on/off schedule values for a fixture. Both
// "{name}_on" and "{name}_off" must be present; a fixture missing either
// key has no window and stays off.
func (d *Document) Window(name string) (on, off string, ok bool) {
	on, okOn := d.str(name + "_on")
	off, okOff := d.str(name + "_off")
	if !okOn || !okOff {
		return "", "", false
	}
	return on, off, true
}

// CutoffTime returns the optional manual daily cutoff for a fixture
// ("{name}_off" on its own, without a matching on-time requirement).
func (d *Document) CutoffTime(name string) (string, bool) {
	return d.str(name + "_off")
}

func (d *Document) number(key string) (float64, bool) {
	v, ok := d.values[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

func (d *Document) str(key string) (string, bool) {
	v, ok := d.values[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
