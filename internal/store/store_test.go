package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Simplici0/mountbook/internal/availability"
	"github.com/Simplici0/mountbook/internal/booking"
	"github.com/Simplici0/mountbook/internal/db"
	"github.com/Simplici0/mountbook/internal/migrations"
	"github.com/Simplici0/mountbook/internal/pricing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "store-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := migrations.Up(ctx, database, "../../migrations"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return New(database)
}

func testBooking(reference, date, clock string) *booking.Booking {
	sel := pricing.Selection{TVMounts: []pricing.TVMountItem{{Size: pricing.SizeLarge, Location: pricing.LocationFireplace, MountHardware: pricing.HardwareTilting}}}
	return &booking.Booking{
		Reference: reference,
		Contact:   booking.Contact{Name: "Sam Ortiz", Email: "sam@example.com", Phone: "555-010-9999"},
		Address:   booking.Address{Street: "4 Oak Ave", City: "Dayton", State: "OH", Zip: "45402"},
		Date:      date,
		Time:      clock,
		Selection: sel,
		Quote:     pricing.Calculate(sel, pricing.DefaultTable()),
		Status:    availability.StatusActive,
	}
}

func TestStore_ServesAsCalendar(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.UpsertBusinessHours(ctx, availability.BusinessHours{DayOfWeek: time.Tuesday, StartTime: "9:00 AM", EndTime: "5:00 PM", IsAvailable: true}); err != nil {
		t.Fatalf("UpsertBusinessHours: %v", err)
	}
	if _, err := s.AddBlockedDay(ctx, availability.BlockedDay{Date: "2026-10-27", Reason: "vacation"}); err != nil {
		t.Fatalf("AddBlockedDay: %v", err)
	}
	if _, err := s.AddBlockedSlot(ctx, availability.BlockedSlot{Date: "2026-10-20", Time: "13:00"}); err != nil {
		t.Fatalf("AddBlockedSlot: %v", err)
	}
	if err := s.Create(ctx, testBooking("b-1", "2026-10-20", "10:00 AM")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	ev := availability.New(s, availability.WithClock(func() time.Time { return now }))

	cases := []struct {
		date, clock string
		reason      availability.Reason
	}{
		{"2026-10-20", "9:00 AM", availability.ReasonAvailable},
		{"2026-10-20", "10:00 AM", availability.ReasonBooked},
		{"2026-10-20", "1:00 PM", availability.ReasonSlotBlocked},
		{"2026-10-20", "5:00 PM", availability.ReasonOutsideHours},
		{"2026-10-27", "9:00 AM", availability.ReasonDayBlocked},
		{"2026-10-21", "9:00 AM", availability.ReasonClosed},
	}
	for _, tc := range cases {
		res := ev.Check(ctx, tc.date, tc.clock)
		if res.Reason != tc.reason {
			t.Fatalf("%s %s: reason %s, want %s (err=%v)", tc.date, tc.clock, res.Reason, tc.reason, res.Err)
		}
	}
}

func TestUpsertBusinessHours(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	h, err := s.UpsertBusinessHours(ctx, availability.BusinessHours{DayOfWeek: time.Monday, StartTime: "9:30 AM", EndTime: "4:00 PM", IsAvailable: true})
	if err != nil {
		t.Fatalf("UpsertBusinessHours: %v", err)
	}
	if h.StartTime != "09:30" || h.EndTime != "16:00" {
		t.Fatalf("times not normalized: %+v", h)
	}

	if _, err := s.UpsertBusinessHours(ctx, availability.BusinessHours{DayOfWeek: time.Monday, StartTime: "10:00", EndTime: "12:00", IsAvailable: false}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	hours, err := s.ListBusinessHours(ctx)
	if err != nil {
		t.Fatalf("ListBusinessHours: %v", err)
	}
	if len(hours) != 1 || hours[0].StartTime != "10:00" || hours[0].IsAvailable {
		t.Fatalf("unexpected hours after update: %+v", hours)
	}

	bad := []availability.BusinessHours{
		{DayOfWeek: 7, StartTime: "09:00", EndTime: "17:00"},
		{DayOfWeek: time.Friday, StartTime: "nine", EndTime: "17:00"},
		{DayOfWeek: time.Friday, StartTime: "17:00", EndTime: "09:00"},
		{DayOfWeek: time.Friday, StartTime: "09:00", EndTime: "09:00"},
	}
	for _, h := range bad {
		if _, err := s.UpsertBusinessHours(ctx, h); !errors.Is(err, ErrInvalid) {
			t.Fatalf("%+v: expected ErrInvalid, got %v", h, err)
		}
	}
}

func TestBlockedDaysAndSlots(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.AddBlockedDay(ctx, availability.BlockedDay{Date: "2026-12-25"}); err != nil {
		t.Fatalf("AddBlockedDay: %v", err)
	}
	if _, err := s.AddBlockedDay(ctx, availability.BlockedDay{Date: "2026-12-25"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := s.AddBlockedDay(ctx, availability.BlockedDay{Date: "12/25/2026"}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}

	slot, err := s.AddBlockedSlot(ctx, availability.BlockedSlot{Date: "2026-12-24", Time: "15:00", Reason: "early close"})
	if err != nil {
		t.Fatalf("AddBlockedSlot: %v", err)
	}
	if slot.Time != "3:00 PM" {
		t.Fatalf("slot time = %q, want canonical label", slot.Time)
	}
	if _, err := s.AddBlockedSlot(ctx, availability.BlockedSlot{Date: "2026-12-24", Time: "3:00 PM"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for the same slot in another format, got %v", err)
	}

	slots, err := s.ListBlockedSlots(ctx, "2026-12-24")
	if err != nil || len(slots) != 1 || slots[0].Reason != "early close" {
		t.Fatalf("ListBlockedSlots = %+v, %v", slots, err)
	}

	if err := s.RemoveBlockedSlot(ctx, "2026-12-24", "15:00"); err != nil {
		t.Fatalf("RemoveBlockedSlot: %v", err)
	}
	if err := s.RemoveBlockedSlot(ctx, "2026-12-24", "15:00"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.RemoveBlockedDay(ctx, "2026-12-25"); err != nil {
		t.Fatalf("RemoveBlockedDay: %v", err)
	}
	days, err := s.ListBlockedDays(ctx)
	if err != nil || len(days) != 0 {
		t.Fatalf("ListBlockedDays = %+v, %v", days, err)
	}
}

func TestBookingLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	b := testBooking("ref-a", "2026-10-20", "2:00 PM")
	if err := s.Create(ctx, b); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if b.ID == 0 || b.CreatedAt.IsZero() {
		t.Fatalf("Create did not fill id and timestamp: %+v", b)
	}

	got, err := s.Get(ctx, "ref-a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Quote.Total != b.Quote.Total || len(got.Selection.TVMounts) != 1 || got.Contact != b.Contact {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	if err := s.Create(ctx, testBooking("ref-b", "2026-10-20", "2:00 PM")); !errors.Is(err, booking.ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}

	err = s.Create(ctx, testBooking("ref-a", "2026-10-21", "10:00 AM"))
	if err == nil || errors.Is(err, booking.ErrSlotTaken) {
		t.Fatalf("duplicate reference on a free slot must not read as slot taken, got %v", err)
	}

	if err := s.Cancel(ctx, "ref-a"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if err := s.Cancel(ctx, "ref-a"); err != nil {
		t.Fatalf("second Cancel: %v", err)
	}
	if err := s.Cancel(ctx, "nope"); !errors.Is(err, booking.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.Create(ctx, testBooking("ref-c", "2026-10-20", "2:00 PM")); err != nil {
		t.Fatalf("slot should be free after cancel: %v", err)
	}
	if err := s.Create(ctx, testBooking("ref-d", "2026-10-20", "9:00 AM")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	list, err := s.ListByDate(ctx, "2026-10-20")
	if err != nil {
		t.Fatalf("ListByDate: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 bookings, got %d", len(list))
	}
	if list[0].Reference != "ref-d" || list[1].Reference != "ref-a" || list[1].Status != availability.StatusCancelled {
		t.Fatalf("unexpected order: %s %s %s", list[0].Reference, list[1].Reference, list[2].Reference)
	}

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, booking.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreate_ConcurrentSubmissionsForOneSlot(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	const attempts = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		taken   int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.Create(ctx, testBooking(fmt.Sprintf("race-%d", i), "2026-11-02", "11:00 AM"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, booking.ErrSlotTaken):
				taken++
			default:
				t.Errorf("attempt %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	if created != 1 || taken != attempts-1 {
		t.Fatalf("created=%d taken=%d, want exactly one winner", created, taken)
	}
}

func TestPriceTables(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	table, err := s.PriceTable(ctx)
	if err != nil {
		t.Fatalf("PriceTable: %v", err)
	}
	if table.Mounting.Standard.Price != pricing.Dollars(100) {
		t.Fatalf("expected default table before any save")
	}
	if _, err := s.LatestPriceTable(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	updated := pricing.DefaultTable()
	updated.Mounting.Standard.Price = pricing.Dollars(120)
	v1, err := s.SavePriceTable(ctx, updated)
	if err != nil {
		t.Fatalf("SavePriceTable: %v", err)
	}
	updated.Discounts.Combo.Amount = pricing.Dollars(30)
	v2, err := s.SavePriceTable(ctx, updated)
	if err != nil {
		t.Fatalf("SavePriceTable: %v", err)
	}
	if v2 <= v1 {
		t.Fatalf("versions must increase: %d then %d", v1, v2)
	}

	latest, err := s.LatestPriceTable(ctx)
	if err != nil {
		t.Fatalf("LatestPriceTable: %v", err)
	}
	if latest.Version != v2 || latest.Table.Discounts.Combo.Amount != pricing.Dollars(30) || latest.Table.Mounting.Standard.Price != pricing.Dollars(120) {
		t.Fatalf("unexpected latest table: %+v", latest)
	}

	broken := pricing.DefaultTable()
	broken.Currency = ""
	if _, err := s.SavePriceTable(ctx, broken); !errors.Is(err, pricing.ErrInvalidTable) {
		t.Fatalf("expected ErrInvalidTable, got %v", err)
	}
}
