package holidays

import (
	"time"

	"github.com/rickar/cal/v2"
)

// fixedHolidays fall on the same month/day every year.
var fixedHolidays = []*cal.Holiday{
	{Name: "New Year's Day", Month: time.January, Day: 1, Func: cal.CalcDayOfMonth},
	{Name: "First Philippine Republic Day", Month: time.January, Day: 23, Func: cal.CalcDayOfMonth},
	{Name: "EDSA Revolution Anniversary", Month: time.February, Day: 25, Func: cal.CalcDayOfMonth},
	{Name: "Araw ng Kagitingan", Month: time.April, Day: 9, Func: cal.CalcDayOfMonth},
	{Name: "Labor Day", Month: time.May, Day: 1, Func: cal.CalcDayOfMonth},
	{Name: "Independence Day", Month: time.June, Day: 12, Func: cal.CalcDayOfMonth},
	{Name: "Ninoy Aquino Day", Month: time.August, Day: 21, Func: cal.CalcDayOfMonth},
	{Name: "All Saints' Day", Month: time.November, Day: 1, Func: cal.CalcDayOfMonth},
	{Name: "All Souls' Day", Month: time.November, Day: 2, Func: cal.CalcDayOfMonth},
	{Name: "Bonifacio Day", Month: time.November, Day: 30, Func: cal.CalcDayOfMonth},
	{Name: "Feast of the Immaculate Conception", Month: time.December, Day: 8, Func: cal.CalcDayOfMonth},
	{Name: "Christmas Eve", Month: time.December, Day: 24, Func: cal.CalcDayOfMonth},
	{Name: "Christmas Day", Month: time.December, Day: 25, Func: cal.CalcDayOfMonth},
	{Name: "Rizal Day", Month: time.December, Day: 30, Func: cal.CalcDayOfMonth},
	{Name: "Last Day of the Year", Month: time.December, Day: 31, Func: cal.CalcDayOfMonth},
}

// movableHolidays are computed per year. Offset is in days from Easter.
var movableHolidays = []*cal.Holiday{
	{Name: "Maundy Thursday", Offset: -3, Func: calcEasterOffset},
	{Name: "Good Friday", Offset: -2, Func: calcEasterOffset},
	{Name: "Black Saturday", Offset: -1, Func: calcEasterOffset},
	{Name: "Easter Sunday", Offset: 0, Func: calcEasterOffset},
	{Name: "National Heroes Day", Month: time.August, Weekday: time.Monday, Func: calcLastWeekday},
}

func calcEasterOffset(h *cal.Holiday, year int) time.Time {
	return Easter(year).AddDate(0, 0, h.Offset)
}

func calcLastWeekday(h *cal.Holiday, year int) time.Time {
	return LastWeekdayOfMonth(year, h.Month, h.Weekday)
}

// Fallback computes the locally known holidays for year. Chinese New Year,
// Eid al-Fitr and Eid al-Adha depend on proclamation and are never guessed.
func Fallback(year int) []Holiday {
	out := make([]Holiday, 0, len(fixedHolidays)+len(movableHolidays))
	for _, h := range fixedHolidays {
		out = append(out, fromCal(h, year, true))
	}
	for _, h := range movableHolidays {
		out = append(out, fromCal(h, year, false))
	}
	return NewCalendar(out).All()
}

func fromCal(h *cal.Holiday, year int, fixed bool) Holiday {
	actual, _ := h.Calc(year)
	y, m, d := actual.Date()
	return Holiday{
		Date: localDate(y, m, d),
		Name: h.Name,
		Provenance: &Provenance{
			Source:      SourceFallback,
			CountryCode: "PH",
			Fixed:       fixed,
			Global:      true,
			Types:       []string{"Public"},
		},
	}
}
