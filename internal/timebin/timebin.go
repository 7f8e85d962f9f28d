// Package timebin floors timestamps into half-open bins of a configurable
// width, given as an integer interval of a unit.
//
// Linear units (days, hours, minutes, seconds) are floored by counting whole
// interval-sized steps on the wall clock since a fixed proleptic epoch,
// 0001-01-01T00:00:00. Weeks are sugar for seven-day intervals. Months and
// years cannot be floored linearly (their width varies), so they use
// calendar arithmetic: month groups divide the twelve months of a year into
// interval-sized runs starting from January, and year groups run
// [1..interval], [interval+1..2*interval], and so on.
//
// A bin's identity is its start timestamp; bins are half-open [start, end).
package timebin

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfiguration reports an unusable interval/unit combination.
// It is returned before any records are processed.
var ErrInvalidConfiguration = errors.New("invalid timebin configuration")

// Unit is the unit of a bin interval.
type Unit int

const (
	Seconds Unit = iota
	Minutes
	Hours
	Days
	Weeks
	Months
	Years
)

// unitNames maps the CLI spellings to units.
var unitNames = map[string]Unit{
	"seconds": Seconds,
	"minutes": Minutes,
	"hours":   Hours,
	"days":    Days,
	"weeks":   Weeks,
	"months":  Months,
	"years":   Years,
}

// ParseUnit converts a unit name such as "hours" into a Unit.
func ParseUnit(name string) (Unit, error) {
	unit, ok := unitNames[name]
	if !ok {
		return 0, fmt.Errorf("%w: unknown unit %q", ErrInvalidConfiguration, name)
	}
	return unit, nil
}

// String returns the CLI spelling of the unit.
func (u Unit) String() string {
	for name, unit := range unitNames {
		if unit == u {
			return name
		}
	}
	return fmt.Sprintf("Unit(%d)", int(u))
}

// Calendar reports whether the unit requires calendar-aware flooring.
func (u Unit) Calendar() bool {
	return u == Months || u == Years
}

// epoch is the proleptic origin that linear flooring counts from.
var epoch = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)

// seconds returns the fixed width of one linear unit.
func (u Unit) seconds() (int64, bool) {
	switch u {
	case Seconds:
		return 1, true
	case Minutes:
		return 60, true
	case Hours:
		return 3600, true
	case Days:
		return 86400, true
	}
	return 0, false
}

// Floor rounds t down to the start of its bin. The zone of t is preserved.
// Months and years are dispatched to FloorCalendar.
func Floor(t time.Time, interval int, unit Unit) (time.Time, error) {
	if interval < 1 {
		return time.Time{}, fmt.Errorf("%w: interval must be a positive integer, got %d", ErrInvalidConfiguration, interval)
	}
	if unit.Calendar() {
		return FloorCalendar(t, interval, unit)
	}
	if unit == Weeks {
		interval *= 7
		unit = Days
	}

	unitSecs, ok := unit.seconds()
	if !ok {
		return time.Time{}, fmt.Errorf("%w: unknown unit %v", ErrInvalidConfiguration, unit)
	}
	width := int64(interval) * unitSecs

	// Offsets are computed on the wall clock so that flooring is stable
	// under the record's own zone, as with naive datetime arithmetic.
	naive := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
	offset := naive.Unix() - epoch.Unix()
	rem := ((offset % width) + width) % width

	return t.Add(-time.Duration(rem)*time.Second - time.Duration(t.Nanosecond())), nil
}

// FloorCalendar rounds t down to the start of a month- or year-sized bin.
// Month intervals must divide 12 evenly, so that groups restart cleanly at
// January each year. Year intervals have no such constraint; groups are
// anchored at year 1. The zone of t is preserved.
func FloorCalendar(t time.Time, interval int, unit Unit) (time.Time, error) {
	if interval < 1 {
		return time.Time{}, fmt.Errorf("%w: interval must be a positive integer, got %d", ErrInvalidConfiguration, interval)
	}

	switch unit {
	case Months:
		if 12%interval != 0 {
			return time.Time{}, fmt.Errorf("%w: month-based bins need an interval that divides 12, got %d", ErrInvalidConfiguration, interval)
		}
		month := int(t.Month())
		floored := month - ((month - 1) % interval)
		return time.Date(t.Year(), time.Month(floored), 1, 0, 0, 0, 0, t.Location()), nil

	case Years:
		floored := t.Year() - ((t.Year() - 1) % interval)
		return time.Date(floored, time.January, 1, 0, 0, 0, 0, t.Location()), nil
	}

	return time.Time{}, fmt.Errorf("%w: %v is not a calendar unit", ErrInvalidConfiguration, unit)
}

// Bin returns the half-open [start, end) interval of the bin containing t.
func Bin(t time.Time, interval int, unit Unit) (start, end time.Time, err error) {
	start, err = Floor(t, interval, unit)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	switch unit {
	case Months:
		end = start.AddDate(0, interval, 0)
	case Years:
		end = start.AddDate(interval, 0, 0)
	case Weeks:
		end = start.AddDate(0, 0, 7*interval)
	case Days:
		end = start.AddDate(0, 0, interval)
	default:
		unitSecs, _ := unit.seconds()
		end = start.Add(time.Duration(int64(interval)*unitSecs) * time.Second)
	}
	return start, end, nil
}

// Key returns the combined "{start}_{end}" identity of the bin containing t.
func Key(t time.Time, interval int, unit Unit) (string, error) {
	start, end, err := Bin(t, interval, unit)
	if err != nil {
		return "", err
	}
	return FormatISO(start) + "_" + FormatISO(end), nil
}

// Start returns the ISO-8601 start timestamp of the bin containing t.
func Start(t time.Time, interval int, unit Unit) (string, error) {
	start, err := Floor(t, interval, unit)
	if err != nil {
		return "", err
	}
	return FormatISO(start), nil
}

// isoLayouts are the accepted ISO-8601 shapes, most specific first.
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseISO parses an ISO-8601 timestamp, with or without a zone offset and
// fractional seconds. Timestamps without an offset are read as UTC.
func ParseISO(s string) (time.Time, error) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as an ISO-8601 timestamp", s)
}

// MustParseISO is ParseISO for known-good literals; it panics on error.
func MustParseISO(s string) time.Time {
	t, err := ParseISO(s)
	if err != nil {
		panic(err)
	}
	return t
}

// FormatISO renders t as an ISO-8601 timestamp with a zone offset,
// including fractional seconds only when present.
func FormatISO(t time.Time) string {
	if t.Nanosecond() != 0 {
		return t.Format("2006-01-02T15:04:05.999999999Z07:00")
	}
	return t.Format("2006-01-02T15:04:05Z07:00")
}
