package chronicle

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Bounds of the selectable date range.
var (
	MinDate = Date{Year: 1900, Month: 1, Day: 1}
	MaxDate = Date{Year: 2026, Month: 12, Day: 31}
)

// Random picks stay inside the years the archives cover well.
var (
	RandomFrom = Date{Year: 1950, Month: 1, Day: 1}
	RandomTo   = Date{Year: 2025, Month: 12, Day: 31}
)

// Date is a calendar day without a time zone.
type Date struct {
	Year  int
	Month int
	Day   int
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return fromTime(t), nil
}

func fromTime(t time.Time) Date {
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

func (d Date) time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// String formats the date as YYYY-MM-DD, the form the archives query by.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Display formats the date as DD.MM.YYYY.
func (d Date) Display() string {
	return fmt.Sprintf("%02d.%02d.%04d", d.Day, d.Month, d.Year)
}

// Valid reports whether d names a real calendar day.
func (d Date) Valid() bool {
	return d.Month >= 1 && d.Month <= 12 && d.Day >= 1 && fromTime(d.time()) == d
}

// DaysIn returns the number of days in the given month.
func DaysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Clamp pulls the day back into the month and the whole date into
// [MinDate, MaxDate].
func (d Date) Clamp() Date {
	d.Month = max(1, min(12, d.Month))
	d.Day = max(1, min(DaysIn(d.Year, d.Month), d.Day))
	if d.time().Before(MinDate.time()) {
		return MinDate
	}
	if d.time().After(MaxDate.time()) {
		return MaxDate
	}
	return d
}

// RandomDate picks a day uniformly between RandomFrom and RandomTo.
func RandomDate(rng *rand.Rand) Date {
	start := RandomFrom.time()
	days := int(RandomTo.time().Sub(start).Hours()/24) + 1
	return fromTime(start.AddDate(0, 0, rng.IntN(days)))
}
