package timezone

import (
	"time"

	"github.com/jinzhu/now"
)

// The chain operates in a single local zone; all dates and cutoff checks are
// evaluated against it.
const DefaultTimezone = "Asia/Kolkata"

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	loc, _ := time.LoadLocation(DefaultTimezone)
	return loc
}

func NowIn(tz string) time.Time {
	return time.Now().In(Location(tz))
}

// Day truncates t to its local midnight.
func Day(t time.Time) time.Time {
	return now.New(t).BeginningOfDay()
}

// SameDay reports whether a and b fall on the same local calendar date.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}

// ParseDate parses "2006-01-02" in the given zone.
func ParseDate(dateStr, tz string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", dateStr, Location(tz))
}
