package booking

import "time"

// Window is the resolved open working window for a worker on a date.
type Window struct {
	Open  ClockTime
	Close ClockTime
}

// Slot is one bookable block. End is the guest-visible end (start + service
// duration); the cleanup buffer is invisible to the guest but still occupies
// the schedule.
type Slot struct {
	Start   ClockTime
	End     ClockTime
	Display string
}

// CutoffRule is the same-day minimum-notice window. When the booking date is
// today (SameDay), any start closer than LeadMinutes to Now is excluded.
type CutoffRule struct {
	SameDay     bool
	Now         ClockTime
	LeadMinutes int
}

func (c CutoffRule) Blocks(start ClockTime) bool {
	if !c.SameDay {
		return false
	}
	return int(start) < int(c.Now)+c.LeadMinutes
}

// AvailabilityInput identifies a worker/service/date combination to generate
// slots for.
type AvailabilityInput struct {
	BranchID  uint
	ServiceID uint
	WorkerID  uint
	Date      time.Time
}

// GenerateSlots enumerates bookable slots: fixed-size blocks of
// duration+buffer minutes anchored at the window open, minus blocks that fall
// in the cutoff window or overlap an occupied span. Pure function of its
// inputs; safe to call repeatedly.
func GenerateSlots(win Window, durationMin, bufferMin int, occupied []Span, cutoff CutoffRule) []Slot {
	total := ClockTime(durationMin + bufferMin)

	var slots []Slot
	for cur := win.Open; cur+total <= win.Close; cur += total {
		if cutoff.Blocks(cur) {
			continue
		}
		if overlapsAny(cur, cur+total, occupied) {
			continue
		}
		end := cur + ClockTime(durationMin)
		slots = append(slots, Slot{
			Start:   cur,
			End:     end,
			Display: cur.Display() + " – " + end.Display(),
		})
	}
	return slots
}

func overlapsAny(start, end ClockTime, occupied []Span) bool {
	for _, occ := range occupied {
		if Overlaps(start, end, occ.Start, occ.End) {
			return true
		}
	}
	return false
}
