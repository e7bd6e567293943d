// Package duration parses the retention periods users give on the command
// line, such as "vacuum --older-than 30d".
//
// Periods are a count and a unit: h (hours), d (days), w (weeks) or
// m (months of 30 days). Go's time.Duration syntax is accepted too.
package duration

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ErrInvalid is returned for a period that cannot be parsed.
var ErrInvalid = errors.New("invalid duration")

var period = regexp.MustCompile(`^(\d+)([hdwm])$`)

const day = 24 * time.Hour

var units = map[string]time.Duration{
	"h": time.Hour,
	"d": day,
	"w": 7 * day,
	"m": 30 * day,
}

// Parse parses a period such as "12h", "7d", "4w", "3m" or "90m0s".
// The result must be positive.
func Parse(s string) (time.Duration, error) {
	if m := period.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, fmt.Errorf("%w %q: %v", ErrInvalid, s, err)
		}
		if n == 0 {
			return 0, fmt.Errorf("%w %q: must be positive", ErrInvalid, s)
		}
		return time.Duration(n) * units[m[2]], nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w %q (use 12h, 7d, 4w or 3m)", ErrInvalid, s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w %q: must be positive", ErrInvalid, s)
	}
	return d, nil
}
