package availability

import (
	"context"
	"time"
)

// Snapshot is an in-memory Calendar built from already-loaded schedule data.
type Snapshot struct {
	Hours        []BusinessHours
	BlockedDays  []BlockedDay
	BlockedSlots []BlockedSlot
	Bookings     []Booking
}

var _ Calendar = Snapshot{}

func (s Snapshot) BusinessHours(_ context.Context, day time.Weekday) (BusinessHours, bool, error) {
	for _, h := range s.Hours {
		if h.DayOfWeek == day {
			return h, true, nil
		}
	}
	return BusinessHours{}, false, nil
}

func (s Snapshot) DayBlocked(_ context.Context, date string) (bool, error) {
	for _, d := range s.BlockedDays {
		if d.Date == date {
			return true, nil
		}
	}
	return false, nil
}

func (s Snapshot) SlotBlocked(_ context.Context, date, clock string) (bool, error) {
	for _, b := range s.BlockedSlots {
		if b.Date == date && sameClock(b.Time, clock) {
			return true, nil
		}
	}
	return false, nil
}

// SlotBooked only counts active bookings.
func (s Snapshot) SlotBooked(_ context.Context, date, clock string) (bool, error) {
	for _, b := range s.Bookings {
		if b.Status == StatusActive && b.Date == date && sameClock(b.Time, clock) {
			return true, nil
		}
	}
	return false, nil
}

func sameClock(a, b string) bool {
	if a == b {
		return true
	}
	ma, errA := ParseClock(a)
	mb, errB := ParseClock(b)
	return errA == nil && errB == nil && ma == mb
}
