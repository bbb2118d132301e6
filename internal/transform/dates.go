package transform

import "time"

// DateKey returns the YYYYMMDD integer key for a date.
func DateKey(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// Quarter returns the calendar quarter (1-4) for a date.
func Quarter(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

// ISOWeekday returns the day of week with Monday = 1 and Sunday = 7.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
