// Package schedule provides the live schedule document and the time-of-day
// arithmetic used to evaluate fixture windows.
package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTimeFormat is returned when a time-of-day string is not a valid
// "HH:MM" value.
var ErrInvalidTimeFormat = errors.New("invalid time format")

// TimeOfDay is a wall-clock time within a day, minute precision.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTime parses a "HH:MM" string into a TimeOfDay.
// Exactly two colon-separated integers are required, hour in [0,23] and
// minute in [0,59].
func ParseTime(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}

	if hour < 0 || hour > 23 {
		return TimeOfDay{}, fmt.Errorf("%w: hour %d out of range", ErrInvalidTimeFormat, hour)
	}
	if minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: minute %d out of range", ErrInvalidTimeFormat, minute)
	}

	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// FromTime extracts the TimeOfDay component of t.
func FromTime(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

// String formats the time as zero-padded "HH:MM". Inverse of ParseTime.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// MinutesSinceMidnight converts the time to minutes since 00:00.
func (t TimeOfDay) MinutesSinceMidnight() int {
	return t.Hour*60 + t.Minute
}

// AddSeconds shifts the time by offset seconds, rolling over hour boundaries
// through full date-time addition. Only the time-of-day component is kept:
// an offset pushing the result past midnight wraps around. Offsets here are
// daily jitter in the range of a few minutes, so the wrap never fires in
// practice.
func (t TimeOfDay) AddSeconds(offset int) TimeOfDay {
	base := time.Date(2000, time.January, 1, t.Hour, t.Minute, 0, 0, time.UTC)
	shifted := base.Add(time.Duration(offset) * time.Second)
	return TimeOfDay{Hour: shifted.Hour(), Minute: shifted.Minute()}
}

// InWindow reports whether now falls inside the half-open window
// [start, end). A window whose start is later than its end crosses midnight
// and is satisfied when now >= start or now < end.
func InWindow(now, start, end TimeOfDay) bool {
	n := now.MinutesSinceMidnight()
	s := start.MinutesSinceMidnight()
	e := end.MinutesSinceMidnight()

	if s <= e {
		return s <= n && n < e
	}
	return n >= s || n < e
}
