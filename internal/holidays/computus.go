package holidays

import "time"

// Easter returns Easter Sunday for year using the anonymous Gregorian
// algorithm (Meeus/Jones/Butcher).
func Easter(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1

	return localDate(year, time.Month(month), day)
}

// LastWeekdayOfMonth walks back from the last day of month until it lands
// on weekday.
func LastWeekdayOfMonth(year int, month time.Month, weekday time.Weekday) time.Time {
	d := localDate(year, month+1, 0)
	for d.Weekday() != weekday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}
