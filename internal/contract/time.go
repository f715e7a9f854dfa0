package contract

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// relativeTimeRe captures "N [units] ago", e.g. "2 years ago" or "1 week ago".
var relativeTimeRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day|hour|minute)s?\s+ago$`)

// durationRe captures "N [units]", e.g. "4 hours" or "2 days".
var durationRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day|hour|minute)s?$`)

// ParseRelativeTime converts strings like "2 years ago" into a time.Time in the past.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	matches := relativeTimeRe.FindStringSubmatch(s)
	if len(matches) == 0 {
		return time.Time{}, fmt.Errorf("invalid relative time format: %s", s)
	}

	value, err := unitCount(matches[1], matches[2])
	if err != nil {
		return time.Time{}, err
	}
	switch matches[2] {
	case "year":
		return now.AddDate(-int(value), 0, 0), nil
	case "month":
		return now.AddDate(0, -int(value), 0), nil
	default:
		return now.Add(-unitDuration(matches[2]) * time.Duration(value)), nil
	}
}

// ParseDuration converts strings like "4h", "90m" or "3 hours" into a time.Duration.
// Go duration syntax is tried first, then the human-readable form. Months and
// years are approximated as 30 and 365 days.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if duration, err := time.ParseDuration(s); err == nil {
		if duration <= 0 {
			return 0, errors.New("duration must be positive")
		}
		return duration, nil
	}

	// Collapse repeated inner spaces so " 1  day " parses
	s = strings.Join(strings.Fields(strings.ToLower(s)), " ")
	matches := durationRe.FindStringSubmatch(s)
	if len(matches) == 0 {
		return 0, fmt.Errorf("invalid duration format: %s", s)
	}

	value, err := unitCount(matches[1], matches[2])
	if err != nil {
		return 0, err
	}
	if value == 0 {
		return 0, errors.New("duration must be positive")
	}
	return time.Duration(value) * unitDuration(matches[2]), nil
}

// unitCount parses the number in front of a unit. The count times the unit
// must fit in a time.Duration.
func unitCount(digits, unit string) (int64, error) {
	value, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || value > math.MaxInt64/int64(unitDuration(unit)) {
		return 0, fmt.Errorf("%s %ss is out of range", digits, unit)
	}
	return value, nil
}

// unitDuration returns the fixed length of a unit matched by the regexes above.
func unitDuration(unit string) time.Duration {
	const day = 24 * time.Hour
	switch unit {
	case "year":
		return 365 * day
	case "month":
		return 30 * day
	case "week":
		return 7 * day
	case "day":
		return day
	case "hour":
		return time.Hour
	default:
		return time.Minute
	}
}

// ParseTimePoint accepts an absolute RFC3339 time or a relative "N units ago".
// An empty string yields the zero time, which means unbounded.
func ParseTimePoint(s string, now time.Time) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateTimeFormat, s)
	if err == nil {
		return t, nil
	}
	t, relErr := ParseRelativeTime(s, now)
	if relErr != nil {
		return time.Time{}, fmt.Errorf("invalid date format for '%s'. Expected absolute ISO8601 or 'N [units] ago': %v", s, err)
	}
	return t, nil
}

// LoadLocation resolves a time zone name. "Local" and "" map to the system zone.
func LoadLocation(name string) (*time.Location, error) {
	switch strings.TrimSpace(name) {
	case "", "Local", "local":
		return time.Local, nil
	case "UTC", "utc":
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}
