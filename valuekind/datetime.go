package valuekind

import (
	"fmt"
	"time"

	"xdao.co/concept/clienterr"
)

// DateTimeLayout is the canonical text form of a LocalDateTime. It carries no
// offset or zone.
const DateTimeLayout = "2006-01-02T15:04:05.999999999"

// Years outside this range have no DateTimeLayout text form.
const (
	MinYear = 0
	MaxYear = 9999
)

// LocalDateTime is a timezone-naive calendar date and wall-clock time.
//
// Values are normalized at construction, so == is value equality.
type LocalDateTime struct {
	year   int
	month  time.Month
	day    int
	hour   int
	minute int
	second int
	nsec   int
}

// NewLocalDateTime builds a LocalDateTime. Out-of-range fields are normalized
// the way time.Date normalizes them.
func NewLocalDateTime(year int, month time.Month, day, hour, minute, second, nsec int) LocalDateTime {
	return fromUTC(time.Date(year, month, day, hour, minute, second, nsec, time.UTC))
}

// LocalDateTimeOf takes the wall-clock reading of t in t's own location and
// drops the zone.
func LocalDateTimeOf(t time.Time) LocalDateTime {
	return NewLocalDateTime(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond())
}

// ParseLocalDateTime parses DateTimeLayout text. Inputs carrying an offset or
// zone are rejected.
func ParseLocalDateTime(s string) (LocalDateTime, error) {
	t, err := time.Parse(DateTimeLayout, s)
	if err != nil {
		return LocalDateTime{}, clienterr.Wrap(clienterr.KindUnsupported, "valuekind.ParseLocalDateTime",
			fmt.Sprintf("invalid local date-time %q", s), err)
	}
	return fromUTC(t), nil
}

// InRange reports whether d has a DateTimeLayout text form, and so can be
// sent over the wire.
func (d LocalDateTime) InRange() bool {
	return d.year >= MinYear && d.year <= MaxYear
}

func fromUTC(t time.Time) LocalDateTime {
	return LocalDateTime{
		year:   t.Year(),
		month:  t.Month(),
		day:    t.Day(),
		hour:   t.Hour(),
		minute: t.Minute(),
		second: t.Second(),
		nsec:   t.Nanosecond(),
	}
}

// In attaches loc to the wall-clock reading. This is the only way a zone enters.
func (d LocalDateTime) In(loc *time.Location) time.Time {
	return time.Date(d.year, d.month, d.day, d.hour, d.minute, d.second, d.nsec, loc)
}

func (d LocalDateTime) Year() int { return d.year }
func (d LocalDateTime) Month() time.Month { return d.month }
func (d LocalDateTime) Day() int { return d.day }
func (d LocalDateTime) Hour() int { return d.hour }
func (d LocalDateTime) Minute() int { return d.minute }
func (d LocalDateTime) Second() int { return d.second }
func (d LocalDateTime) Nanosecond() int { return d.nsec }
func (d LocalDateTime) IsZero() bool { return d == LocalDateTime{} }
func (d LocalDateTime) String() string { return d.In(time.UTC).Format(DateTimeLayout) }
func (d LocalDateTime) Before(o LocalDateTime) bool {
	return d.In(time.UTC).Before(o.In(time.UTC))
}
