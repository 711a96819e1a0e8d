package core

import (
	"fmt"
	"time"
)

// MomentLayout is the external form of a Moment: ISO-8601 with an explicit
// offset and millisecond precision.
const MomentLayout = "2006-01-02T15:04:05.000Z07:00"

// Moment is a timezone-aware point in time. The epoch milliseconds are
// derived once at construction and always agree with the local time.
type Moment struct {
	local       time.Time
	epochMillis int64
}

// NewMoment resolves the wall-clock reading of wall in loc.
func NewMoment(wall time.Time, loc *time.Location) Moment {
	if loc == nil {
		loc = time.UTC
	}
	t := time.Date(wall.Year(), wall.Month(), wall.Day(),
		wall.Hour(), wall.Minute(), wall.Second(), wall.Nanosecond(), loc)
	return MomentOf(t)
}

// MomentOf wraps t, keeping its location.
func MomentOf(t time.Time) Moment {
	return Moment{local: t, epochMillis: t.UnixMilli()}
}

// MomentFromEpochMillis builds a UTC moment from a raw epoch timestamp.
func MomentFromEpochMillis(ms int64) Moment {
	return Moment{local: time.UnixMilli(ms).UTC(), epochMillis: ms}
}

// ParseMoment parses the MomentLayout form (RFC 3339 with optional
// fractional seconds is also accepted). A zero offset yields UTC; any other
// offset yields a fixed zone named after the offset.
func ParseMoment(s string) (Moment, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Moment{}, fmt.Errorf("parse moment %q: %w", s, err)
	}
	_, offset := t.Zone()
	return MomentOf(t.In(zoneForOffset(offset))), nil
}

func zoneForOffset(offset int) *time.Location {
	if offset == 0 {
		return time.UTC
	}
	sign := '+'
	abs := offset
	if abs < 0 {
		sign = '-'
		abs = -abs
	}
	return time.FixedZone(fmt.Sprintf("%c%02d:%02d", sign, abs/3600, abs%3600/60), offset)
}

// EpochMillis returns the UTC epoch milliseconds of the moment.
func (m Moment) EpochMillis() int64 {
	return m.epochMillis
}

// Time returns the underlying local time.
func (m Moment) Time() time.Time {
	return m.local
}

// Location returns the zone the moment was resolved in.
func (m Moment) Location() *time.Location {
	return m.local.Location()
}

// IsZero reports whether the moment was never set.
func (m Moment) IsZero() bool {
	return m.local.IsZero()
}

// UTC returns the same instant, truncated to milliseconds, in UTC.
func (m Moment) UTC() Moment {
	return MomentFromEpochMillis(m.epochMillis)
}

// TruncateMillis drops the sub-millisecond part, keeping the zone.
func (m Moment) TruncateMillis() Moment {
	return Moment{
		local:       m.local.Add(-time.Duration(m.local.Nanosecond() % int(time.Millisecond))),
		epochMillis: m.epochMillis,
	}
}

// Compare orders moments by instant.
func (m Moment) Compare(o Moment) int {
	return m.local.Compare(o.local)
}

func (m Moment) Before(o Moment) bool { return m.Compare(o) < 0 }
func (m Moment) After(o Moment) bool  { return m.Compare(o) > 0 }
func (m Moment) Equal(o Moment) bool  { return m.Compare(o) == 0 }

// String returns the MomentLayout form.
func (m Moment) String() string {
	return m.local.Format(MomentLayout)
}

// MarshalText implements encoding.TextMarshaler.
func (m Moment) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Moment) UnmarshalText(text []byte) error {
	parsed, err := ParseMoment(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
