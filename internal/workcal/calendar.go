// Package workcal answers "is this a business day?" for the scheduler's
// workday correction. A Calendar knows the public holidays of one country;
// weekends are Saturday and Sunday everywhere.
package workcal

import (
	"strings"
	"time"

	"envelopes/internal/core"
)

// Calendar reports country-specific public holidays.
type Calendar interface {
	Name() string
	IsHoliday(d time.Time) bool
}

// ForCountry returns the holiday calendar for an ISO country code.
// Unknown codes return core.ErrUnknownHolidayCalendar; callers are expected
// to fall back to WeekendOnly and log a warning.
func ForCountry(code string) (Calendar, error) {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "RU":
		return russia{}, nil
	default:
		return nil, core.ErrUnknownHolidayCalendar
	}
}

// WeekendOnly is the fallback calendar with no public holidays.
func WeekendOnly() Calendar {
	return weekendOnly{}
}

// IsWeekend reports whether d falls on Saturday or Sunday.
func IsWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsBusinessDay reports whether d is neither a weekend nor a holiday of cal.
func IsBusinessDay(cal Calendar, d time.Time) bool {
	return !IsWeekend(d) && !cal.IsHoliday(d)
}

type weekendOnly struct{}

func (weekendOnly) Name() string             { return "weekend-only" }
func (weekendOnly) IsHoliday(time.Time) bool { return false }

type monthDay struct {
	month time.Month
	day   int
}

// Russian federal non-working holidays. The January block covers the New
// Year holidays plus Orthodox Christmas.
var russiaHolidays = map[monthDay]bool{
	{time.January, 1}:   true,
	{time.January, 2}:   true,
	{time.January, 3}:   true,
	{time.January, 4}:   true,
	{time.January, 5}:   true,
	{time.January, 6}:   true,
	{time.January, 7}:   true,
	{time.January, 8}:   true,
	{time.February, 23}: true,
	{time.March, 8}:     true,
	{time.May, 1}:       true,
	{time.May, 9}:       true,
	{time.June, 12}:     true,
	{time.November, 4}:  true,
}

type russia struct{}

func (russia) Name() string { return "RU" }

func (russia) IsHoliday(d time.Time) bool {
	return russiaHolidays[monthDay{d.Month(), d.Day()}]
}
