package tzclock

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	// Embedded zone database so offsets do not depend on the host's zoneinfo files.
	_ "time/tzdata"
)

// ZoneOracle answers which UTC offset is in effect for a named zone at an instant.
// valid is false when the zone name is not recognised.
type ZoneOracle interface {
	OffsetFor(instant time.Time, zone string) (offsetMinutes int, valid bool)
}

// OracleFunc adapts a plain function to ZoneOracle.
type OracleFunc func(instant time.Time, zone string) (int, bool)

func (f OracleFunc) OffsetFor(instant time.Time, zone string) (int, bool) {
	return f(instant, zone)
}

// LocationOracle resolves offsets through the Go zone database.
// Loaded locations are memoised per name.
type LocationOracle struct {
	mu    sync.Mutex
	cache map[string]*time.Location
}

func NewLocationOracle() *LocationOracle {
	return &LocationOracle{cache: make(map[string]*time.Location)}
}

func (o *LocationOracle) OffsetFor(instant time.Time, zone string) (int, bool) {
	loc, ok := o.load(zone)
	if !ok {
		return 0, false
	}
	_, offset := instant.In(loc).Zone()
	return offset / 60, true
}

func (o *LocationOracle) load(zone string) (*time.Location, bool) {
	// LoadLocation maps "" to UTC; an empty zone name is not a zone here.
	if strings.TrimSpace(zone) == "" {
		return nil, false
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cache == nil {
		o.cache = make(map[string]*time.Location)
	}
	if loc, ok := o.cache[zone]; ok {
		return loc, loc != nil
	}

	loc, err := time.LoadLocation(zone)
	if err != nil {
		o.cache[zone] = nil
		return nil, false
	}
	o.cache[zone] = loc
	return loc, true
}

// SystemZoneName returns the IANA name of loc when it can be determined.
// For time.Local it consults $TZ and the /etc/localtime link, falling back to "Local",
// which the Go zone database also resolves.
func SystemZoneName(loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	if loc != time.Local {
		return loc.String()
	}

	if tz, ok := os.LookupEnv("TZ"); ok {
		tz = strings.TrimPrefix(tz, ":")
		if tz == "" {
			return "UTC"
		}
		if _, err := time.LoadLocation(tz); err == nil {
			return tz
		}
	}

	if target, err := filepath.EvalSymlinks("/etc/localtime"); err == nil {
		if i := strings.Index(target, "zoneinfo/"); i >= 0 {
			name := target[i+len("zoneinfo/"):]
			if _, err := time.LoadLocation(name); err == nil {
				return name
			}
		}
	}

	return "Local"
}
