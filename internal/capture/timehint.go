package capture

import (
	"strings"
	"time"
)

const (
	morningHour = 9
	eveningHour = 18
)

// weekdayNames is checked in this order; the first name found wins.
var weekdayNames = []struct {
	name string
	day  time.Weekday
}{
	{"monday", time.Monday},
	{"tuesday", time.Tuesday},
	{"wednesday", time.Wednesday},
	{"thursday", time.Thursday},
	{"friday", time.Friday},
	{"saturday", time.Saturday},
	{"sunday", time.Sunday},
}

// ExtractTimeHint maps a relative-day phrase in text to an absolute UTC time.
// Rules, first match wins:
//  1. "tomorrow": the next day at 09:00
//  2. "today" or "tonight": today at 18:00, even if that is already past
//  3. a weekday name: the next strictly-future occurrence at 09:00
//     (the same weekday as now means one week ahead)
//
// Matching is substring-based on the lowercased text. Returns nil when no rule fires.
func ExtractTimeHint(text string, now time.Time) *time.Time {
	lowered := strings.ToLower(text)
	now = now.UTC()

	if strings.Contains(lowered, "tomorrow") {
		return at(now.AddDate(0, 0, 1), morningHour)
	}
	if strings.Contains(lowered, "today") || strings.Contains(lowered, "tonight") {
		return at(now, eveningHour)
	}
	for _, wd := range weekdayNames {
		if !strings.Contains(lowered, wd.name) {
			continue
		}
		delta := (int(wd.day) - int(now.Weekday()) + 7) % 7
		if delta == 0 {
			delta = 7
		}
		return at(now.AddDate(0, 0, delta), morningHour)
	}
	return nil
}

// at clamps day to hour:00:00 UTC.
func at(day time.Time, hour int) *time.Time {
	t := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, time.UTC)
	return &t
}
