package core

import (
	"slices"
	"time"
)

// DayFloor truncates a timestamp to midnight UTC. All checkpoint math
// happens on UTC days so a transition at 23:50 local time lands on the
// same day everywhere.
func DayFloor(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// ExtractionDate returns the first occurrence of the extraction weekday
// on or after the given time, at midnight UTC.
func ExtractionDate(t time.Time, day time.Weekday) time.Time {
	d := DayFloor(t)
	offset := (int(day) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, offset)
}

// LastExtractionDate returns the most recent occurrence of the
// extraction weekday on or before the given time, at midnight UTC.
func LastExtractionDate(t time.Time, day time.Weekday) time.Time {
	d := DayFloor(t)
	offset := (int(d.Weekday()) - int(day) + 7) % 7
	return d.AddDate(0, 0, -offset)
}

// Checkpoints derives the weekly checkpoint dates for a population whose
// earliest event happened at earliest: every occurrence of the
// extraction weekday, seven days apart, from the first one at or after
// the earliest event's day through the last one on or before asOf,
// ascending. The series is empty when no extraction day has passed since
// the earliest event, so a population younger than one extraction cycle
// produces no points rather than a partial week.
func Checkpoints(earliest, asOf time.Time, day time.Weekday) []time.Time {
	end := LastExtractionDate(asOf, day)
	firstDay := DayFloor(earliest)
	if end.Before(firstDay) {
		return nil
	}
	var dates []time.Time
	for d := end; !d.Before(firstDay); d = d.AddDate(0, 0, -7) {
		dates = append(dates, d)
	}
	// Collected newest first; flip to ascending.
	slices.Reverse(dates)
	return dates
}
