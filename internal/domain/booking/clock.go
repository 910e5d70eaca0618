package booking

import (
	"fmt"
	"time"
)

// ClockTime is a date-agnostic time of day in minutes since midnight.
// All slot arithmetic happens on this type; "15:04" strings only exist at the
// storage and transport boundaries.
type ClockTime int

const minutesPerDay = 24 * 60

// ParseClock parses "15:04" into a ClockTime.
func ParseClock(s string) (ClockTime, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	return ClockTime(h*60 + m), nil
}

// ClockOf extracts the wall-clock minute of day from t, in t's location.
func ClockOf(t time.Time) ClockTime {
	return ClockTime(t.Hour()*60 + t.Minute())
}

// Add returns t shifted by the given minutes, wrapping within a 24h clock.
func (t ClockTime) Add(minutes int) ClockTime {
	v := (int(t) + minutes) % minutesPerDay
	if v < 0 {
		v += minutesPerDay
	}
	return ClockTime(v)
}

// String formats as "15:04".
func (t ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Display formats as "3:04 PM" with no leading zero on the hour.
func (t ClockTime) Display() string {
	h := int(t) / 60
	ampm := "AM"
	if h >= 12 {
		ampm = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", h12, int(t)%60, ampm)
}

// Span is a half-open [Start, End) occupied window.
type Span struct {
	Start ClockTime
	End   ClockTime
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// Half-open on both sides, so adjacent windows (aEnd == bStart) do not
// conflict.
func Overlaps(aStart, aEnd, bStart, bEnd ClockTime) bool {
	return aStart < bEnd && aEnd > bStart
}
