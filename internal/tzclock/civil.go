package tzclock

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var ErrInvalidCivil = errors.New("time must be in format 'YYYY-MM-DD HH:MM'")

var civilPattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})\s+(\d{1,2}):(\d{2})$`)

// ParseCivil splits an edit-format reading into its fields without attaching a zone.
func ParseCivil(input string) (Civil, error) {
	m := civilPattern.FindStringSubmatch(input)
	if m == nil {
		return Civil{}, ErrInvalidCivil
	}

	fields := make([]int, 5)
	for i := range fields {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return Civil{}, ErrInvalidCivil
		}
		fields[i] = n
	}

	c := Civil{Year: fields[0], Month: fields[1], Day: fields[2], Hour: fields[3], Minute: fields[4]}
	if c.Month < 1 || c.Month > 12 || c.Day < 1 || c.Day > 31 || c.Hour > 23 || c.Minute > 59 {
		return Civil{}, fmt.Errorf("%w: %q out of range", ErrInvalidCivil, input)
	}
	return c, nil
}

// Parse reads an edit-format string as a wall-clock reading in zone.
func (c *Clock) Parse(input, zone string) (time.Time, error) {
	civil, err := ParseCivil(input)
	if err != nil {
		return time.Time{}, err
	}
	return c.CivilToInstant(civil.Year, civil.Month, civil.Day, civil.Hour, civil.Minute, zone), nil
}

// FormatForEdit renders t in zone using the format Parse accepts.
func (c *Clock) FormatForEdit(t time.Time, zone string) string {
	if t.IsZero() {
		return ""
	}
	return c.InstantToCivil(t, zone).String()
}
