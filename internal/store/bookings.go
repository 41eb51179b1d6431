package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/Simplici0/mountbook/internal/availability"
	"github.com/Simplici0/mountbook/internal/booking"
)

var bookingColumns = `
	id, reference, customer_name, email, phone, street, city, state, zip, notes,
	date, time, selection_json, quote_json, status, ` + timestamp("created_at")

type rowScanner interface {
	Scan(dest ...any) error
}

// Create inserts an active booking. The partial unique index on active (date, time) pairs
// turns a concurrent insert for the same slot into booking.ErrSlotTaken.
func (s *Store) Create(ctx context.Context, b *booking.Booking) error {
	selection, err := json.Marshal(b.Selection)
	if err != nil {
		return fmt.Errorf("encode selection: %w", err)
	}
	quote, err := json.Marshal(b.Quote)
	if err != nil {
		return fmt.Errorf("encode quote: %w", err)
	}
	if b.Status == "" {
		b.Status = availability.StatusActive
	}

	var createdAt string
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO bookings (
			reference, customer_name, email, phone, street, city, state, zip, notes,
			date, time, selection_json, quote_json, total_cents, status
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, `+timestamp("created_at"),
		b.Reference, b.Contact.Name, b.Contact.Email, b.Contact.Phone,
		b.Address.Street, b.Address.City, b.Address.State, b.Address.Zip, b.Notes,
		b.Date, b.Time, string(selection), string(quote), int64(b.Quote.Total), string(b.Status),
	).Scan(&b.ID, &createdAt)
	if err != nil {
		if isUniqueViolation(err) && violates(err, "bookings.date, bookings.time") {
			return booking.ErrSlotTaken
		}
		return fmt.Errorf("insert booking %s: %w", b.Reference, err)
	}
	b.CreatedAt = parseTimestamp(createdAt)
	return nil
}

func (s *Store) Get(ctx context.Context, reference string) (booking.Booking, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE reference = ?`, reference)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return booking.Booking{}, booking.ErrNotFound
	}
	return b, err
}

// ListByDate returns every booking of the date in slot order, cancelled ones included.
func (s *Store) ListByDate(ctx context.Context, date string) ([]booking.Booking, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE date = ?
		ORDER BY id
	`, date)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	out := []booking.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}
	sortBySlot(out)
	return out, nil
}

// Cancel marks a booking cancelled. Cancelling twice is not an error.
func (s *Store) Cancel(ctx context.Context, reference string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE bookings
		SET
			status = 'cancelled',
			updated_at = CURRENT_TIMESTAMP
		WHERE reference = ? AND status = 'active'
	`, reference)
	if err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM bookings WHERE reference = ?)`, reference).Scan(&exists); err != nil {
		return fmt.Errorf("check booking existence: %w", err)
	}
	if !exists {
		return booking.ErrNotFound
	}
	return nil
}

func scanBooking(row rowScanner) (booking.Booking, error) {
	var (
		b                        booking.Booking
		selection, quote, status string
		createdAt                string
	)
	err := row.Scan(
		&b.ID, &b.Reference, &b.Contact.Name, &b.Contact.Email, &b.Contact.Phone,
		&b.Address.Street, &b.Address.City, &b.Address.State, &b.Address.Zip, &b.Notes,
		&b.Date, &b.Time, &selection, &quote, &status, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return booking.Booking{}, err
		}
		return booking.Booking{}, fmt.Errorf("scan booking: %w", err)
	}
	if err := json.Unmarshal([]byte(selection), &b.Selection); err != nil {
		return booking.Booking{}, fmt.Errorf("decode selection of %s: %w", b.Reference, err)
	}
	if err := json.Unmarshal([]byte(quote), &b.Quote); err != nil {
		return booking.Booking{}, fmt.Errorf("decode quote of %s: %w", b.Reference, err)
	}
	b.Status = availability.BookingStatus(status)
	b.CreatedAt = parseTimestamp(createdAt)
	return b, nil
}

// sortBySlot orders bookings by time of day, keeping insertion order within a slot.
func sortBySlot(bookings []booking.Booking) {
	minutes := func(b booking.Booking) int {
		m, err := availability.ParseClock(b.Time)
		if err != nil {
			return -1
		}
		return m
	}
	slices.SortStableFunc(bookings, func(a, b booking.Booking) int {
		return minutes(a) - minutes(b)
	})
}
