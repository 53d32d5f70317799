package scheduler

import (
	"time"

	"envelopes/internal/workcal"
)

// Income days are pulled back to the last business day before the weekend
// or holiday, spending days are pushed forward to the first business day
// after it. Any other day fires as-is.
var (
	daysMovedBackward = map[int]bool{5: true, 20: true}
	daysMovedForward  = map[int]bool{10: true, 25: true}
)

// correctedDate resolves the concrete fire time for a task day within the
// month containing anchor. Days past the end of a short month clamp to its
// last day before the business-day correction applies.
func correctedDate(anchor time.Time, day, hour int, cal workcal.Calendar) time.Time {
	year, month := anchor.Year(), anchor.Month()

	last := time.Date(year, month+1, 0, 0, 0, 0, 0, anchor.Location()).Day()
	clamped := day
	if clamped > last {
		clamped = last
	}

	d := time.Date(year, month, clamped, hour, 0, 0, 0, anchor.Location())
	switch {
	case daysMovedBackward[day]:
		for !workcal.IsBusinessDay(cal, d) {
			d = d.AddDate(0, 0, -1)
		}
	case daysMovedForward[day]:
		for !workcal.IsBusinessDay(cal, d) {
			d = d.AddDate(0, 0, 1)
		}
	}
	return d
}

// nextOccurrence returns the first corrected fire time strictly after from.
// A forward-pushed day can land after from even when its nominal day has
// passed, so each candidate month is checked with its own correction.
func nextOccurrence(from time.Time, day, hour int, cal workcal.Calendar) time.Time {
	anchor := from
	for {
		fire := correctedDate(anchor, day, hour, cal)
		if fire.After(from) {
			return fire
		}
		anchor = time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location()).AddDate(0, 1, 0)
	}
}
