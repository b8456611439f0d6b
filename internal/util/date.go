package util

import "time"

// TruncateToDay returns midnight of the day of t in t's location.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns midnight of the first day of the week containing t.
func StartOfWeek(t time.Time, firstDay time.Weekday) time.Time {
	day := TruncateToDay(t)
	shift := (int(day.Weekday()) - int(firstDay) + 7) % 7
	return day.AddDate(0, 0, -shift)
}

// Days returns n consecutive midnights starting from start.
func Days(start time.Time, n int) []time.Time {
	days := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, start.AddDate(0, 0, i))
	}
	return days
}

func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
