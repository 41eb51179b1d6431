package availability

import (
	"context"
	"errors"
	"time"
)

var errNoCalendar = errors.New("no calendar configured")

// DefaultBuffer is how far ahead of now a slot has to start to be bookable.
const DefaultBuffer = 30 * time.Minute

// BusinessHours is the opening window of one weekday. Times are 24-hour "HH:MM".
type BusinessHours struct {
	DayOfWeek   time.Weekday `json:"dayOfWeek"`
	StartTime   string       `json:"startTime"`
	EndTime     string       `json:"endTime"`
	IsAvailable bool         `json:"isAvailable"`
}

// BlockedDay closes a whole date.
type BlockedDay struct {
	Date   string `json:"date"`
	Reason string `json:"reason,omitempty"`
}

// BlockedSlot closes one time on a date.
type BlockedSlot struct {
	Date   string `json:"date"`
	Time   string `json:"time"`
	Reason string `json:"reason,omitempty"`
}

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusActive    BookingStatus = "active"
	StatusCancelled BookingStatus = "cancelled"
)

// Booking is the slice of a booking record the evaluator cares about.
type Booking struct {
	Date   string        `json:"date"`
	Time   string        `json:"time"`
	Status BookingStatus `json:"status"`
}

// Calendar is the read-only view of the schedule. Slot times passed in are canonical
// "h:mm AM/PM" labels.
type Calendar interface {
	BusinessHours(ctx context.Context, day time.Weekday) (BusinessHours, bool, error)
	DayBlocked(ctx context.Context, date string) (bool, error)
	SlotBlocked(ctx context.Context, date, clock string) (bool, error)
	SlotBooked(ctx context.Context, date, clock string) (bool, error)
}

// Reason explains a Check result.
type Reason string

const (
	ReasonAvailable    Reason = "available"
	ReasonInvalidDate  Reason = "invalid_date"
	ReasonInvalidTime  Reason = "invalid_time"
	ReasonDayBlocked   Reason = "day_blocked"
	ReasonSlotBlocked  Reason = "slot_blocked"
	ReasonClosed       Reason = "closed"
	ReasonOutsideHours Reason = "outside_hours"
	ReasonTooSoon      Reason = "too_soon"
	ReasonBooked       Reason = "booked"
	ReasonLookupFailed Reason = "lookup_failed"
)

// Result is the outcome of checking one slot. Err is set when a lookup or parse failed;
// the slot is then reported unavailable.
type Result struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	Available bool   `json:"available"`
	Reason    Reason `json:"reason"`
	Err       error  `json:"-"`
}

// Evaluator decides whether slots can be booked.
type Evaluator struct {
	cal    Calendar
	loc    *time.Location
	buffer time.Duration
	now    func() time.Time
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLocation sets the business time zone. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(e *Evaluator) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithBuffer sets the minimum lead time before a slot.
func WithBuffer(d time.Duration) Option {
	return func(e *Evaluator) { e.buffer = d }
}

// WithClock overrides the current-time source.
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) { e.now = now }
}

// New builds an evaluator over cal.
func New(cal Calendar, opts ...Option) *Evaluator {
	e := &Evaluator{
		cal:    cal,
		loc:    time.UTC,
		buffer: DefaultBuffer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Location returns the business time zone.
func (e *Evaluator) Location() *time.Location {
	return e.loc
}

// IsSlotAvailable reports whether date/clock can be booked. It never panics or errors:
// anything it cannot resolve counts as unavailable.
func (e *Evaluator) IsSlotAvailable(ctx context.Context, date, clock string) bool {
	return e.Check(ctx, date, clock).Available
}

// Check evaluates one slot. The first failing rule decides the reason.
func (e *Evaluator) Check(ctx context.Context, date, clock string) Result {
	res := Result{Date: date, Time: clock}
	if e.cal == nil {
		return res.fail(ReasonLookupFailed, errNoCalendar)
	}

	day, err := ParseDate(date, e.loc)
	if err != nil {
		return res.fail(ReasonInvalidDate, err)
	}
	minutes, err := ParseClock(clock)
	if err != nil {
		return res.fail(ReasonInvalidTime, err)
	}
	res.Date = day.Format(DateLayout)
	res.Time = FormatClock(minutes)

	blocked, err := e.cal.DayBlocked(ctx, res.Date)
	if err != nil {
		return res.fail(ReasonLookupFailed, err)
	}
	if blocked {
		return res.fail(ReasonDayBlocked, nil)
	}

	blocked, err = e.cal.SlotBlocked(ctx, res.Date, res.Time)
	if err != nil {
		return res.fail(ReasonLookupFailed, err)
	}
	if blocked {
		return res.fail(ReasonSlotBlocked, nil)
	}

	openAt, closeAt, reason, err := e.openingWindow(ctx, day.Weekday())
	if reason != "" {
		return res.fail(reason, err)
	}
	if minutes < openAt || minutes >= closeAt {
		return res.fail(ReasonOutsideHours, nil)
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), minutes/60, minutes%60, 0, 0, e.loc)
	if start.Before(e.now().In(e.loc).Add(e.buffer)) {
		return res.fail(ReasonTooSoon, nil)
	}

	booked, err := e.cal.SlotBooked(ctx, res.Date, res.Time)
	if err != nil {
		return res.fail(ReasonLookupFailed, err)
	}
	if booked {
		return res.fail(ReasonBooked, nil)
	}

	res.Available = true
	res.Reason = ReasonAvailable
	return res
}

// openingWindow resolves the weekday's [open, close) minutes. A non-empty reason means closed.
func (e *Evaluator) openingWindow(ctx context.Context, day time.Weekday) (int, int, Reason, error) {
	if e.cal == nil {
		return 0, 0, ReasonLookupFailed, errNoCalendar
	}
	hours, ok, err := e.cal.BusinessHours(ctx, day)
	if err != nil {
		return 0, 0, ReasonLookupFailed, err
	}
	if !ok || !hours.IsAvailable {
		return 0, 0, ReasonClosed, nil
	}
	openAt, err := ParseClock(hours.StartTime)
	if err != nil {
		return 0, 0, ReasonClosed, err
	}
	closeAt, err := ParseClock(hours.EndTime)
	if err != nil {
		return 0, 0, ReasonClosed, err
	}
	return openAt, closeAt, "", nil
}

// DaySlots lists every slot of the day's opening window, one per step, each checked.
// When the day cannot offer slots at all, the returned reason says why and the list is empty.
func (e *Evaluator) DaySlots(ctx context.Context, date string, step time.Duration) ([]Result, Reason) {
	if step < time.Minute {
		step = time.Hour
	}
	day, err := ParseDate(date, e.loc)
	if err != nil {
		return nil, ReasonInvalidDate
	}

	if e.cal == nil {
		return nil, ReasonLookupFailed
	}
	blocked, err := e.cal.DayBlocked(ctx, day.Format(DateLayout))
	if err != nil {
		return nil, ReasonLookupFailed
	}
	if blocked {
		return nil, ReasonDayBlocked
	}

	openAt, closeAt, reason, _ := e.openingWindow(ctx, day.Weekday())
	if reason != "" {
		return nil, reason
	}

	stepMinutes := int(step / time.Minute)
	slots := make([]Result, 0, max(closeAt-openAt, 0)/stepMinutes+1)
	for m := openAt; m < closeAt; m += stepMinutes {
		slots = append(slots, e.Check(ctx, date, FormatClock(m)))
	}
	return slots, ReasonAvailable
}

func (r Result) fail(reason Reason, err error) Result {
	r.Available = false
	r.Reason = reason
	r.Err = err
	return r
}
