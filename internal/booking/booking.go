package booking

import (
	"context"
	"errors"
	"time"

	"github.com/Simplici0/mountbook/internal/availability"
	"github.com/Simplici0/mountbook/internal/pricing"
)

var (
	// ErrInvalidRequest wraps every validation failure of a submission.
	ErrInvalidRequest = errors.New("invalid booking request")
	// ErrQuoteMismatch means the total shown to the customer no longer matches the current price.
	ErrQuoteMismatch = errors.New("quoted total does not match current price")
	// ErrSlotUnavailable means the advisory availability check rejected the slot.
	ErrSlotUnavailable = errors.New("slot is not available")
	// ErrSlotTaken means storage refused the insert because the slot already has an active booking.
	ErrSlotTaken = errors.New("slot was just booked")
	ErrNotFound  = errors.New("booking not found")
)

type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

// Request is a booking submission from the wizard.
type Request struct {
	Contact   Contact           `json:"contact"`
	Address   Address           `json:"address"`
	Selection pricing.Selection `json:"selection"`
	Date      string            `json:"date"`
	Time      string            `json:"time"`
	Notes     string            `json:"notes"`
	// QuotedTotal is the total the customer saw. When set it must equal the recomputed total.
	QuotedTotal *pricing.Money `json:"quotedTotal,omitempty"`
}

// Booking is a persisted appointment.
type Booking struct {
	ID        int64                      `json:"id"`
	Reference string                     `json:"reference"`
	Contact   Contact                    `json:"contact"`
	Address   Address                    `json:"address"`
	Notes     string                     `json:"notes,omitempty"`
	Date      string                     `json:"date"`
	Time      string                     `json:"time"`
	Selection pricing.Selection          `json:"selection"`
	Quote     pricing.Quote              `json:"quote"`
	Status    availability.BookingStatus `json:"status"`
	CreatedAt time.Time                  `json:"createdAt"`
}

// Repository persists bookings. Create must return ErrSlotTaken when an active booking already
// holds the slot; that check is the authoritative one.
type Repository interface {
	Create(ctx context.Context, b *Booking) error
	Get(ctx context.Context, reference string) (Booking, error)
	ListByDate(ctx context.Context, date string) ([]Booking, error)
	Cancel(ctx context.Context, reference string) error
}

// PriceTableSource supplies the current price table.
type PriceTableSource interface {
	PriceTable(ctx context.Context) (pricing.PriceTable, error)
}
