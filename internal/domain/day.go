package domain

import "time"

// dayFormat is the ISO-8601 day form; lexical order equals calendar order.
const dayFormat = "2006-01-02"

// Day is a calendar date with day granularity, the row key of every
// date-indexed table.
type Day string

// DayOf truncates a timestamp (in UTC) to its calendar day.
func DayOf(t time.Time) Day {
	return Day(t.UTC().Format(dayFormat))
}

// DayOfUnix truncates a unix-seconds timestamp to its calendar day.
func DayOfUnix(sec int64) Day {
	return DayOf(time.Unix(sec, 0))
}

// Time returns midnight UTC of the day, zero time on a malformed value.
func (d Day) Time() time.Time {
	t, err := time.Parse(dayFormat, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Before reports whether d is an earlier calendar day than other.
func (d Day) Before(other Day) bool { return d < other }
