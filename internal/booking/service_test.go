package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Simplici0/mountbook/internal/availability"
	"github.com/Simplici0/mountbook/internal/pricing"
)

type memRepo struct {
	bookings  []Booking
	createErr error
}

func (m *memRepo) Create(_ context.Context, b *Booking) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.bookings {
		if existing.Status == availability.StatusActive && existing.Date == b.Date && existing.Time == b.Time {
			return ErrSlotTaken
		}
	}
	b.ID = int64(len(m.bookings) + 1)
	b.CreatedAt = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	m.bookings = append(m.bookings, *b)
	return nil
}

func (m *memRepo) Get(_ context.Context, reference string) (Booking, error) {
	for _, b := range m.bookings {
		if b.Reference == reference {
			return b, nil
		}
	}
	return Booking{}, ErrNotFound
}

func (m *memRepo) ListByDate(_ context.Context, date string) ([]Booking, error) {
	var out []Booking
	for _, b := range m.bookings {
		if b.Date == date {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memRepo) Cancel(_ context.Context, reference string) error {
	for i := range m.bookings {
		if m.bookings[i].Reference == reference {
			m.bookings[i].Status = availability.StatusCancelled
			return nil
		}
	}
	return ErrNotFound
}

// repoCalendar reads bookings straight from the repository.
type repoCalendar struct {
	availability.Snapshot
	repo *memRepo
}

func (c repoCalendar) SlotBooked(ctx context.Context, date, clock string) (bool, error) {
	snap := availability.Snapshot{}
	for _, b := range c.repo.bookings {
		snap.Bookings = append(snap.Bookings, availability.Booking{Date: b.Date, Time: b.Time, Status: b.Status})
	}
	return snap.SlotBooked(ctx, date, clock)
}

type staticTables struct {
	table pricing.PriceTable
	err   error
}

func (s staticTables) PriceTable(context.Context) (pricing.PriceTable, error) {
	return s.table, s.err
}

func newTestService(t *testing.T, repo *memRepo, tables PriceTableSource) *Service {
	t.Helper()

	hours := []availability.BusinessHours{}
	for d := time.Monday; d <= time.Saturday; d++ {
		hours = append(hours, availability.BusinessHours{DayOfWeek: d, StartTime: "09:00", EndTime: "17:00", IsAvailable: true})
	}
	cal := repoCalendar{Snapshot: availability.Snapshot{Hours: hours}, repo: repo}
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	ev := availability.New(cal, availability.WithClock(func() time.Time { return now }))

	n := 0
	return NewService(repo, tables, ev, nil, WithReferenceGenerator(func() string {
		n++
		return fmt.Sprintf("ref-%d", n)
	}))
}

func validRequest() Request {
	return Request{
		Contact: Contact{Name: "Dana Reyes", Email: "dana@example.com", Phone: "(555) 010-2030"},
		Address: Address{Street: "12 Elm St", City: "Springfield", State: "IL", Zip: "62701"},
		Selection: pricing.Selection{
			TVMounts: []pricing.TVMountItem{{Size: pricing.SizeSmall, Location: pricing.LocationStandard}},
		},
		Date: "2026-10-20",
		Time: "14:00",
	}
}

func TestSubmit_CreatesBookingWithServerSideQuote(t *testing.T) {
	repo := &memRepo{}
	svc := newTestService(t, repo, staticTables{table: pricing.DefaultTable()})

	b, err := svc.Submit(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if b.Reference != "ref-1" || b.ID != 1 {
		t.Fatalf("unexpected identity: %+v", b)
	}
	if b.Time != "2:00 PM" {
		t.Fatalf("time = %q, want canonical 2:00 PM", b.Time)
	}
	if b.Quote.Total != pricing.Dollars(100) {
		t.Fatalf("total = %v", b.Quote.Total)
	}
	if b.Status != availability.StatusActive {
		t.Fatalf("status = %q", b.Status)
	}
	if len(repo.bookings) != 1 {
		t.Fatalf("expected 1 stored booking, got %d", len(repo.bookings))
	}
}

func TestSubmit_ValidationErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Request)
	}{
		{"missing name", func(r *Request) { r.Contact.Name = "  " }},
		{"bad email", func(r *Request) { r.Contact.Email = "not-an-email" }},
		{"short phone", func(r *Request) { r.Contact.Phone = "12-34" }},
		{"missing street", func(r *Request) { r.Address.Street = "" }},
		{"empty cart", func(r *Request) { r.Selection = pricing.Selection{} }},
		{"negative removal", func(r *Request) { r.Selection.Deinstallations = -1 }},
		{"too many removals", func(r *Request) { r.Selection.Deinstallations = pricing.MaxQuantity + 1 }},
		{"unknown location", func(r *Request) { r.Selection.TVMounts[0].Location = "attic" }},
		{"too many tvs", func(r *Request) {
			for range pricing.MaxQuantity {
				r.Selection.TVMounts = append(r.Selection.TVMounts, r.Selection.TVMounts[0])
			}
		}},
		{"zero device qty", func(r *Request) {
			r.Selection.SmartHomeDevices = []pricing.SmartHomeItem{{Type: pricing.DeviceCamera}}
		}},
		{"huge device qty", func(r *Request) {
			r.Selection.SmartHomeDevices = []pricing.SmartHomeItem{{Type: pricing.DeviceCamera, Quantity: 1 << 60}}
		}},
		{"brick on camera", func(r *Request) {
			r.Selection.SmartHomeDevices = []pricing.SmartHomeItem{{Type: pricing.DeviceCamera, Quantity: 1, BrickInstallation: true}}
		}},
		{"unmount and remount", func(r *Request) {
			r.Selection.TVMounts[0].UnmountOnly, r.Selection.TVMounts[0].RemountOnly = true, true
		}},
		{"huge handyman hours", func(r *Request) { r.Selection.HandymanHours = 1e19 }},
		{"long travel", func(r *Request) { r.Selection.TravelDistanceMinutes = pricing.MaxTravelMinutes + 1 }},
		{"bad time", func(r *Request) { r.Time = "lunchtime" }},
		{"bad date", func(r *Request) { r.Date = "2026-02-31" }},
	}

	for _, tc := range cases {
		repo := &memRepo{}
		svc := newTestService(t, repo, staticTables{table: pricing.DefaultTable()})
		req := validRequest()
		tc.mutate(&req)

		_, err := svc.Submit(context.Background(), req)
		if !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("%s: expected ErrInvalidRequest, got %v", tc.name, err)
		}
		if len(repo.bookings) != 0 {
			t.Fatalf("%s: nothing should be stored", tc.name)
		}
	}
}

func TestSubmit_RejectsStaleQuotedTotal(t *testing.T) {
	svc := newTestService(t, &memRepo{}, staticTables{table: pricing.DefaultTable()})
	req := validRequest()
	stale := pricing.Dollars(150)
	req.QuotedTotal = &stale

	if _, err := svc.Submit(context.Background(), req); !errors.Is(err, ErrQuoteMismatch) {
		t.Fatalf("expected ErrQuoteMismatch, got %v", err)
	}

	current := pricing.Dollars(100)
	req.QuotedTotal = &current
	if _, err := svc.Submit(context.Background(), req); err != nil {
		t.Fatalf("matching total should be accepted: %v", err)
	}
}

func TestSubmit_AdvisoryCheckRejectsBookedSlot(t *testing.T) {
	repo := &memRepo{}
	svc := newTestService(t, repo, staticTables{table: pricing.DefaultTable()})

	if _, err := svc.Submit(context.Background(), validRequest()); err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	_, err := svc.Submit(context.Background(), validRequest())
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable, got %v", err)
	}
}

func TestSubmit_ClosedDayIsUnavailable(t *testing.T) {
	svc := newTestService(t, &memRepo{}, staticTables{table: pricing.DefaultTable()})
	req := validRequest()
	req.Date = "2026-10-25" // Sunday

	if _, err := svc.Submit(context.Background(), req); !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable, got %v", err)
	}
}

func TestSubmit_StorageConflictIsReported(t *testing.T) {
	repo := &memRepo{createErr: ErrSlotTaken}
	svc := newTestService(t, repo, staticTables{table: pricing.DefaultTable()})

	if _, err := svc.Submit(context.Background(), validRequest()); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
}

func TestSubmit_StorageFailureIsWrapped(t *testing.T) {
	boom := errors.New("disk full")
	svc := newTestService(t, &memRepo{createErr: boom}, staticTables{table: pricing.DefaultTable()})

	_, err := svc.Submit(context.Background(), validRequest())
	if !errors.Is(err, boom) || errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected wrapped storage error, got %v", err)
	}
}

func TestCancel_FreesSlot(t *testing.T) {
	repo := &memRepo{}
	svc := newTestService(t, repo, staticTables{table: pricing.DefaultTable()})

	first, err := svc.Submit(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := svc.Cancel(context.Background(), first.Reference); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if _, err := svc.Submit(context.Background(), validRequest()); err != nil {
		t.Fatalf("cancelled booking must not block the slot: %v", err)
	}
	if err := svc.Cancel(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	list, err := svc.List(context.Background(), "2026-10-20")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected both bookings listed, got %d", len(list))
	}
}

func TestQuote_UsesCurrentTable(t *testing.T) {
	table := pricing.DefaultTable()
	table.Mounting.Standard.Price = pricing.Dollars(130)
	svc := newTestService(t, &memRepo{}, staticTables{table: table})

	q, err := svc.Quote(context.Background(), validRequest().Selection)
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if q.Total != pricing.Dollars(130) {
		t.Fatalf("total = %v, want $130.00", q.Total)
	}

	failing := newTestService(t, &memRepo{}, staticTables{err: errors.New("no table")})
	if _, err := failing.Quote(context.Background(), validRequest().Selection); err == nil {
		t.Fatalf("expected price table error")
	}
}
