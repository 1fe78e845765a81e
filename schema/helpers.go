package schema

import (
	"fmt"
	"strings"
	"time"
)

// weekdays maps lowercase weekday names and three-letter forms to their
// time.Weekday value.
var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

// ParseWeekday converts a weekday name like "Saturday" or "sat" to its
// time.Weekday value.
func ParseWeekday(name string) (time.Weekday, error) {
	day, ok := weekdays[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return time.Sunday, fmt.Errorf("invalid weekday: %q", name)
	}
	return day, nil
}

// ParseDate accepts a plain date like 2024-06-30 or a full RFC3339
// timestamp. Plain dates land at midnight UTC.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want 2006-01-02 or RFC3339", value)
	}
	return t.UTC(), nil
}

// FormatDate renders a checkpoint date the way the writers print it.
func FormatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
