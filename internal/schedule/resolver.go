package schedule

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/nathan-osman/go-sunrise"
)

// Match patterns like "@sunrise", "@sunset + 30m", "@sunrise - 1h15m"
var astroPattern = regexp.MustCompile(`^@(\w+)\s*([+-]\s*\S+)?$`)

// Resolver evaluates schedule time values to a concrete TimeOfDay for a
// given date. Values are either fixed "HH:MM" strings or astronomical
// expressions ("@sunrise"/"@sunset" with an optional signed duration
// offset), resolved from the configured coordinates.
type Resolver struct {
	lat, lon float64
	tz       *time.Location
	hasGeo   bool
}

// NewResolver creates a resolver with astronomical support for the given
// coordinates.
func NewResolver(lat, lon float64, tz *time.Location) *Resolver {
	if tz == nil {
		tz = time.Local
	}
	return &Resolver{lat: lat, lon: lon, tz: tz, hasGeo: lat != 0 || lon != 0}
}

// NewFixedResolver creates a resolver that only accepts fixed "HH:MM"
// values. Astronomical expressions resolve to an error.
func NewFixedResolver() *Resolver {
	return &Resolver{tz: time.Local}
}

// Resolve evaluates a schedule value for the given date.
func (r *Resolver) Resolve(value string, date time.Time) (TimeOfDay, error) {
	value = strings.TrimSpace(value)

	if !strings.HasPrefix(value, "@") {
		return ParseTime(value)
	}

	matches := astroPattern.FindStringSubmatch(value)
	if matches == nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, value)
	}
	if !r.hasGeo {
		return TimeOfDay{}, fmt.Errorf("%w: %q requires geo coordinates", ErrInvalidTimeFormat, value)
	}

	rise, set := sunrise.SunriseSunset(r.lat, r.lon, date.Year(), date.Month(), date.Day())

	var base time.Time
	switch strings.ToLower(matches[1]) {
	case "sunrise":
		base = rise
	case "sunset":
		base = set
	default:
		return TimeOfDay{}, fmt.Errorf("%w: unknown astronomical time %q", ErrInvalidTimeFormat, matches[1])
	}
	if base.IsZero() {
		// Polar day or night: no event on this date.
		return TimeOfDay{}, fmt.Errorf("%w: %q has no occurrence on %s", ErrInvalidTimeFormat, value, date.Format("2006-01-02"))
	}

	if matches[2] != "" {
		offset, err := parseSignedDuration(strings.ReplaceAll(matches[2], " ", ""))
		if err != nil {
			return TimeOfDay{}, fmt.Errorf("%w: %q: %v", ErrInvalidTimeFormat, value, err)
		}
		base = base.Add(offset)
	}

	return FromTime(base.In(r.tz)), nil
}

// parseSignedDuration parses "+30m", "-1h15m" and the like.
func parseSignedDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}

	sign := time.Duration(1)
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		sign = -1
		s = s[1:]
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	return sign * d, nil
}
