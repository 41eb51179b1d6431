package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Simplici0/mountbook/internal/availability"
)

func (s *Store) BusinessHours(ctx context.Context, day time.Weekday) (availability.BusinessHours, bool, error) {
	h := availability.BusinessHours{DayOfWeek: day}
	err := s.db.QueryRowContext(ctx, `
		SELECT start_time, end_time, is_available
		FROM business_hours
		WHERE day_of_week = ?
	`, int(day)).Scan(&h.StartTime, &h.EndTime, &h.IsAvailable)
	if errors.Is(err, sql.ErrNoRows) {
		return availability.BusinessHours{}, false, nil
	}
	if err != nil {
		return availability.BusinessHours{}, false, fmt.Errorf("query business hours: %w", err)
	}
	return h, true, nil
}

func (s *Store) DayBlocked(ctx context.Context, date string) (bool, error) {
	var blocked bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM blocked_days WHERE date = ?)`, date).Scan(&blocked); err != nil {
		return false, fmt.Errorf("query blocked day: %w", err)
	}
	return blocked, nil
}

func (s *Store) SlotBlocked(ctx context.Context, date, clock string) (bool, error) {
	var blocked bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM blocked_slots WHERE date = ? AND time = ?)`, date, clock).Scan(&blocked); err != nil {
		return false, fmt.Errorf("query blocked slot: %w", err)
	}
	return blocked, nil
}

// SlotBooked reports whether an active booking holds the slot.
func (s *Store) SlotBooked(ctx context.Context, date, clock string) (bool, error) {
	var booked bool
	if err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1
			FROM bookings
			WHERE date = ? AND time = ? AND status = 'active'
		)
	`, date, clock).Scan(&booked); err != nil {
		return false, fmt.Errorf("query booked slot: %w", err)
	}
	return booked, nil
}

// ListBusinessHours returns the configured weekdays ordered Sunday first.
func (s *Store) ListBusinessHours(ctx context.Context) ([]availability.BusinessHours, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT day_of_week, start_time, end_time, is_available
		FROM business_hours
		ORDER BY day_of_week
	`)
	if err != nil {
		return nil, fmt.Errorf("list business hours: %w", err)
	}
	defer rows.Close()

	hours := []availability.BusinessHours{}
	for rows.Next() {
		var (
			h   availability.BusinessHours
			day int
		)
		if err := rows.Scan(&day, &h.StartTime, &h.EndTime, &h.IsAvailable); err != nil {
			return nil, fmt.Errorf("scan business hours: %w", err)
		}
		h.DayOfWeek = time.Weekday(day)
		hours = append(hours, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate business hours: %w", err)
	}
	return hours, nil
}

// UpsertBusinessHours stores the window of one weekday. Times are normalized to 24-hour "HH:MM".
func (s *Store) UpsertBusinessHours(ctx context.Context, h availability.BusinessHours) (availability.BusinessHours, error) {
	if h.DayOfWeek < time.Sunday || h.DayOfWeek > time.Saturday {
		return availability.BusinessHours{}, invalidf("day of week %d is out of range", h.DayOfWeek)
	}
	start, err := availability.ParseClock(h.StartTime)
	if err != nil {
		return availability.BusinessHours{}, invalidf("start time %q is not valid", h.StartTime)
	}
	end, err := availability.ParseClock(h.EndTime)
	if err != nil {
		return availability.BusinessHours{}, invalidf("end time %q is not valid", h.EndTime)
	}
	if end <= start {
		return availability.BusinessHours{}, invalidf("end time must be after start time")
	}
	h.StartTime = clock24(start)
	h.EndTime = clock24(end)

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO business_hours (day_of_week, start_time, end_time, is_available)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (day_of_week) DO UPDATE SET
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			is_available = excluded.is_available,
			updated_at = CURRENT_TIMESTAMP
	`, int(h.DayOfWeek), h.StartTime, h.EndTime, h.IsAvailable); err != nil {
		return availability.BusinessHours{}, fmt.Errorf("upsert business hours: %w", err)
	}
	return h, nil
}

func clock24(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func (s *Store) ListBlockedDays(ctx context.Context) ([]availability.BlockedDay, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT date, COALESCE(reason, '') FROM blocked_days ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("list blocked days: %w", err)
	}
	defer rows.Close()

	days := []availability.BlockedDay{}
	for rows.Next() {
		var d availability.BlockedDay
		if err := rows.Scan(&d.Date, &d.Reason); err != nil {
			return nil, fmt.Errorf("scan blocked day: %w", err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocked days: %w", err)
	}
	return days, nil
}

func (s *Store) AddBlockedDay(ctx context.Context, d availability.BlockedDay) (availability.BlockedDay, error) {
	date, err := canonicalDate(d.Date)
	if err != nil {
		return availability.BlockedDay{}, err
	}
	d.Date = date
	d.Reason = strings.TrimSpace(d.Reason)

	if _, err := s.db.ExecContext(ctx, `INSERT INTO blocked_days (date, reason) VALUES (?, ?)`, d.Date, d.Reason); err != nil {
		if isUniqueViolation(err) {
			return availability.BlockedDay{}, fmt.Errorf("%w: %s is already blocked", ErrConflict, d.Date)
		}
		return availability.BlockedDay{}, fmt.Errorf("insert blocked day: %w", err)
	}
	return d, nil
}

func (s *Store) RemoveBlockedDay(ctx context.Context, date string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM blocked_days WHERE date = ?`, strings.TrimSpace(date))
	if err != nil {
		return fmt.Errorf("delete blocked day: %w", err)
	}
	return requireAffected(result)
}

// ListBlockedSlots returns blocked slots of one date, or of every date when date is empty.
func (s *Store) ListBlockedSlots(ctx context.Context, date string) ([]availability.BlockedSlot, error) {
	query := `SELECT date, time, COALESCE(reason, '') FROM blocked_slots`
	args := []any{}
	if date != "" {
		query += ` WHERE date = ?`
		args = append(args, date)
	}
	query += ` ORDER BY date, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list blocked slots: %w", err)
	}
	defer rows.Close()

	slots := []availability.BlockedSlot{}
	for rows.Next() {
		var b availability.BlockedSlot
		if err := rows.Scan(&b.Date, &b.Time, &b.Reason); err != nil {
			return nil, fmt.Errorf("scan blocked slot: %w", err)
		}
		slots = append(slots, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocked slots: %w", err)
	}
	return slots, nil
}

// AddBlockedSlot stores the slot under its canonical "h:mm AM/PM" label.
func (s *Store) AddBlockedSlot(ctx context.Context, b availability.BlockedSlot) (availability.BlockedSlot, error) {
	date, err := canonicalDate(b.Date)
	if err != nil {
		return availability.BlockedSlot{}, err
	}
	clock, err := availability.CanonicalClock(b.Time)
	if err != nil {
		return availability.BlockedSlot{}, invalidf("time %q is not valid", b.Time)
	}
	b.Date, b.Time = date, clock
	b.Reason = strings.TrimSpace(b.Reason)

	if _, err := s.db.ExecContext(ctx, `INSERT INTO blocked_slots (date, time, reason) VALUES (?, ?, ?)`, b.Date, b.Time, b.Reason); err != nil {
		if isUniqueViolation(err) {
			return availability.BlockedSlot{}, fmt.Errorf("%w: %s %s is already blocked", ErrConflict, b.Date, b.Time)
		}
		return availability.BlockedSlot{}, fmt.Errorf("insert blocked slot: %w", err)
	}
	return b, nil
}

func (s *Store) RemoveBlockedSlot(ctx context.Context, date, clock string) error {
	canonical, err := availability.CanonicalClock(clock)
	if err != nil {
		return invalidf("time %q is not valid", clock)
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM blocked_slots WHERE date = ? AND time = ?`, strings.TrimSpace(date), canonical)
	if err != nil {
		return fmt.Errorf("delete blocked slot: %w", err)
	}
	return requireAffected(result)
}

func canonicalDate(s string) (string, error) {
	d, err := availability.ParseDate(s, time.UTC)
	if err != nil {
		return "", invalidf("date %q is not valid", s)
	}
	return d.Format(availability.DateLayout), nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
