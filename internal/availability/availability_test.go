package availability

import (
	"context"
	"errors"
	"testing"
	"time"
)

// Monday 2026-10-19 08:00 UTC.
var testNow = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

func weekdayHours() []BusinessHours {
	hours := []BusinessHours{
		{DayOfWeek: time.Saturday, StartTime: "10:00", EndTime: "14:00", IsAvailable: false},
	}
	for d := time.Monday; d <= time.Friday; d++ {
		hours = append(hours, BusinessHours{DayOfWeek: d, StartTime: "09:00", EndTime: "17:00", IsAvailable: true})
	}
	return hours
}

func newTestEvaluator(cal Calendar, now time.Time) *Evaluator {
	return New(cal, WithClock(func() time.Time { return now }))
}

type failingCalendar struct {
	Snapshot
	err error
}

func (f failingCalendar) SlotBooked(context.Context, string, string) (bool, error) {
	return false, f.err
}

func TestCheck_Rules(t *testing.T) {
	cal := Snapshot{
		Hours:        weekdayHours(),
		BlockedDays:  []BlockedDay{{Date: "2026-10-21", Reason: "staff training"}},
		BlockedSlots: []BlockedSlot{{Date: "2026-10-20", Time: "2:00 PM"}},
		Bookings: []Booking{
			{Date: "2026-10-20", Time: "11:00 AM", Status: StatusActive},
			{Date: "2026-10-20", Time: "3:00 PM", Status: StatusCancelled},
			{Date: "2026-10-21", Time: "10:00 AM", Status: StatusActive},
		},
	}
	ev := newTestEvaluator(cal, testNow)

	cases := []struct {
		name   string
		date   string
		clock  string
		want   bool
		reason Reason
	}{
		{"open slot", "2026-10-20", "10:00 AM", true, ReasonAvailable},
		{"24-hour input", "2026-10-20", "10:00", true, ReasonAvailable},
		{"last slot before close", "2026-10-20", "4:30 PM", true, ReasonAvailable},
		{"blocked day wins over booking", "2026-10-21", "10:00 AM", false, ReasonDayBlocked},
		{"blocked slot", "2026-10-20", "2:00 PM", false, ReasonSlotBlocked},
		{"blocked slot in 24-hour form", "2026-10-20", "14:00", false, ReasonSlotBlocked},
		{"no hours for sunday", "2026-10-25", "10:00 AM", false, ReasonClosed},
		{"saturday marked unavailable", "2026-10-24", "11:00 AM", false, ReasonClosed},
		{"before opening", "2026-10-20", "8:30 AM", false, ReasonOutsideHours},
		{"closing time is exclusive", "2026-10-20", "5:00 PM", false, ReasonOutsideHours},
		{"active booking", "2026-10-20", "11:00 AM", false, ReasonBooked},
		{"cancelled booking never blocks", "2026-10-20", "3:00 PM", true, ReasonAvailable},
		{"past date", "2026-10-16", "10:00 AM", false, ReasonTooSoon},
	}
	for _, tc := range cases {
		res := ev.Check(context.Background(), tc.date, tc.clock)
		if res.Available != tc.want || res.Reason != tc.reason {
			t.Fatalf("%s: got available=%v reason=%s, want %v/%s", tc.name, res.Available, res.Reason, tc.want, tc.reason)
		}
		if got := ev.IsSlotAvailable(context.Background(), tc.date, tc.clock); got != tc.want {
			t.Fatalf("%s: IsSlotAvailable = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCheck_BufferRule(t *testing.T) {
	cal := Snapshot{Hours: weekdayHours()}
	slotDate, slotTime := "2026-10-19", "10:00 AM"

	cases := []struct {
		now  time.Time
		want bool
	}{
		{time.Date(2026, 10, 19, 9, 50, 0, 0, time.UTC), false},
		{time.Date(2026, 10, 19, 9, 31, 0, 0, time.UTC), false},
		{time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC), true},
		{time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC), true},
	}
	for _, tc := range cases {
		res := newTestEvaluator(cal, tc.now).Check(context.Background(), slotDate, slotTime)
		if res.Available != tc.want {
			t.Fatalf("now=%s: available=%v reason=%s, want %v", tc.now.Format(time.Kitchen), res.Available, res.Reason, tc.want)
		}
	}
}

func TestCheck_BufferAppliesRegardlessOfHours(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 50, 0, 0, time.UTC)
	cal := Snapshot{Hours: []BusinessHours{{DayOfWeek: time.Monday, StartTime: "00:00", EndTime: "23:59", IsAvailable: true}}}

	if newTestEvaluator(cal, now).IsSlotAvailable(context.Background(), "2026-10-19", "10:00 AM") {
		t.Fatalf("slot 10 minutes ahead must be unavailable")
	}
}

func TestCheck_BufferUsesBusinessTimeZone(t *testing.T) {
	loc := time.FixedZone("EST", -5*60*60)
	// 14:45 UTC is 9:45 local.
	now := time.Date(2026, 10, 19, 14, 45, 0, 0, time.UTC)
	ev := New(Snapshot{Hours: weekdayHours()}, WithLocation(loc), WithClock(func() time.Time { return now }))

	if ev.IsSlotAvailable(context.Background(), "2026-10-19", "10:00 AM") {
		t.Fatalf("10:00 AM local is 15 minutes ahead and must be unavailable")
	}
	if !ev.IsSlotAvailable(context.Background(), "2026-10-19", "10:30 AM") {
		t.Fatalf("10:30 AM local is 45 minutes ahead and should be available")
	}
}

func TestCheck_MalformedInputFailsClosed(t *testing.T) {
	ev := newTestEvaluator(Snapshot{Hours: weekdayHours()}, testNow)

	dates := []string{"", "tomorrow", "2026-13-01", "2026-02-30", "20/10/2026", "2026-10-20T10:00:00Z"}
	for _, d := range dates {
		res := ev.Check(context.Background(), d, "10:00 AM")
		if res.Available || res.Reason != ReasonInvalidDate {
			t.Fatalf("date %q: got %v/%s, want unavailable/invalid_date", d, res.Available, res.Reason)
		}
	}

	clocks := []string{"", "noon", "25:00", "13:00 PM", "0:30 AM", "9:5 AM", "9:60 AM", "10", "10:00 XM", ":30", "+9:00 AM", "9:+5 AM"}
	for _, c := range clocks {
		res := ev.Check(context.Background(), "2026-10-20", c)
		if res.Available || res.Reason != ReasonInvalidTime {
			t.Fatalf("time %q: got %v/%s, want unavailable/invalid_time", c, res.Available, res.Reason)
		}
	}
}

func TestCheck_MalformedBusinessHoursFailClosed(t *testing.T) {
	cal := Snapshot{Hours: []BusinessHours{{DayOfWeek: time.Tuesday, StartTime: "nine", EndTime: "17:00", IsAvailable: true}}}

	res := newTestEvaluator(cal, testNow).Check(context.Background(), "2026-10-20", "10:00 AM")

	if res.Available || res.Reason != ReasonClosed || res.Err == nil {
		t.Fatalf("got %+v, want closed with error", res)
	}
}

func TestCheck_LookupErrorFailsClosed(t *testing.T) {
	boom := errors.New("database is locked")
	cal := failingCalendar{Snapshot: Snapshot{Hours: weekdayHours()}, err: boom}

	res := newTestEvaluator(cal, testNow).Check(context.Background(), "2026-10-20", "10:00 AM")

	if res.Available || res.Reason != ReasonLookupFailed || !errors.Is(res.Err, boom) {
		t.Fatalf("got %+v, want lookup_failed wrapping the store error", res)
	}
}

func TestCheck_NilCalendarFailsClosed(t *testing.T) {
	if New(nil).IsSlotAvailable(context.Background(), "2026-10-20", "10:00 AM") {
		t.Fatalf("evaluator without calendar must report unavailable")
	}
}

func TestDaySlots(t *testing.T) {
	cal := Snapshot{
		Hours:    weekdayHours(),
		Bookings: []Booking{{Date: "2026-10-20", Time: "11:00 AM", Status: StatusActive}},
	}
	ev := newTestEvaluator(cal, testNow)

	slots, reason := ev.DaySlots(context.Background(), "2026-10-20", time.Hour)
	if reason != ReasonAvailable {
		t.Fatalf("reason = %s", reason)
	}
	if len(slots) != 8 {
		t.Fatalf("expected 8 hourly slots, got %d", len(slots))
	}
	if slots[0].Time != "9:00 AM" || slots[7].Time != "4:00 PM" {
		t.Fatalf("unexpected slot range %s..%s", slots[0].Time, slots[7].Time)
	}
	for _, s := range slots {
		wantAvailable := s.Time != "11:00 AM"
		if s.Available != wantAvailable {
			t.Fatalf("slot %s available=%v, want %v", s.Time, s.Available, wantAvailable)
		}
	}

	half, _ := ev.DaySlots(context.Background(), "2026-10-20", 30*time.Minute)
	if len(half) != 16 {
		t.Fatalf("expected 16 half-hour slots, got %d", len(half))
	}

	if slots, reason := ev.DaySlots(context.Background(), "2026-10-25", time.Hour); len(slots) != 0 || reason != ReasonClosed {
		t.Fatalf("sunday: got %d slots reason %s", len(slots), reason)
	}
	blockedCal := cal
	blockedCal.BlockedDays = []BlockedDay{{Date: "2026-10-20"}}
	if slots, reason := newTestEvaluator(blockedCal, testNow).DaySlots(context.Background(), "2026-10-20", time.Hour); len(slots) != 0 || reason != ReasonDayBlocked {
		t.Fatalf("blocked day: got %d slots reason %s", len(slots), reason)
	}
	if _, reason := ev.DaySlots(context.Background(), "bad", time.Hour); reason != ReasonInvalidDate {
		t.Fatalf("bad date reason = %s", reason)
	}
}
