// Package tzclock converts between civil wall-clock readings and instants for named
// IANA zones. Zone rules come from an injected ZoneOracle; nothing here knows about
// transitions beyond what the oracle reports.
package tzclock

import (
	"fmt"
	"time"
)

// AutoZone is the reserved zone name for the process's system zone.
const AutoZone = "auto"

// Civil is a wall-clock reading together with the offset label it was rendered in.
type Civil struct {
	Year        int
	Month       int
	Day         int
	Hour        int
	Minute      int
	Second      int
	OffsetLabel string
}

type Clock struct {
	oracle     ZoneOracle
	local      *time.Location
	systemZone string
}

// New builds a Clock. local is the process's system zone; "auto" resolves to its
// name once, here, and is not re-resolved per call.
func New(oracle ZoneOracle, local *time.Location) *Clock {
	if local == nil {
		local = time.Local
	}
	if oracle == nil {
		oracle = NewLocationOracle()
	}
	return &Clock{
		oracle:     oracle,
		local:      local,
		systemZone: SystemZoneName(local),
	}
}

// SystemZone is the name "auto" resolves to.
func (c *Clock) SystemZone() string {
	return c.systemZone
}

// Location is the system zone used for fallbacks.
func (c *Clock) Location() *time.Location {
	return c.local
}

// EffectiveZone maps "auto" and the empty string to the system zone name.
func (c *Clock) EffectiveZone(zone string) string {
	if zone == "" || zone == AutoZone {
		return c.systemZone
	}
	return zone
}

// Known reports whether the oracle recognises zone.
func (c *Clock) Known(zone string) bool {
	_, ok := c.oracle.OffsetFor(time.Now(), c.EffectiveZone(zone))
	return ok
}

// CivilToInstant interprets the civil fields in zone.
//
// The offset is taken from a single oracle query at the naive reading treated as UTC,
// then subtracted. Within the hour of a DST transition this can pick the offset from the
// wrong side of the boundary; callers rely on that exact behaviour, so it is not iterated.
// An unrecognised zone falls back to the system local zone.
func (c *Clock) CivilToInstant(year, month, day, hour, minute int, zone string) time.Time {
	naive := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)

	offset, ok := c.oracle.OffsetFor(naive, c.EffectiveZone(zone))
	if !ok {
		return time.Date(year, time.Month(month), day, hour, minute, 0, 0, c.local)
	}
	return naive.Add(-time.Duration(offset) * time.Minute)
}

// InstantToCivil renders t as a wall-clock reading in zone. An unrecognised zone
// falls back to the system local zone.
func (c *Clock) InstantToCivil(t time.Time, zone string) Civil {
	offset, ok := c.oracle.OffsetFor(t, c.EffectiveZone(zone))
	if !ok {
		local := t.In(c.local)
		_, secs := local.Zone()
		return civilFrom(local, secs/60)
	}
	shifted := t.UTC().Add(time.Duration(offset) * time.Minute)
	return civilFrom(shifted, offset)
}

func civilFrom(t time.Time, offsetMinutes int) Civil {
	return Civil{
		Year:        t.Year(),
		Month:       int(t.Month()),
		Day:         t.Day(),
		Hour:        t.Hour(),
		Minute:      t.Minute(),
		Second:      t.Second(),
		OffsetLabel: OffsetLabel(offsetMinutes),
	}
}

// OffsetLabel renders an offset as GMT, GMT-5 or GMT+5:30.
func OffsetLabel(offsetMinutes int) string {
	if offsetMinutes == 0 {
		return "GMT"
	}
	sign := "+"
	if offsetMinutes < 0 {
		sign = "-"
		offsetMinutes = -offsetMinutes
	}
	hours, minutes := offsetMinutes/60, offsetMinutes%60
	if minutes == 0 {
		return fmt.Sprintf("GMT%s%d", sign, hours)
	}
	return fmt.Sprintf("GMT%s%d:%02d", sign, hours, minutes)
}

// String formats the reading as YYYY-MM-DD HH:MM, the edit format.
func (c Civil) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d", c.Year, c.Month, c.Day, c.Hour, c.Minute)
}
