package main

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Simplici0/mountbook/internal/availability"
	"github.com/Simplici0/mountbook/internal/booking"
	"github.com/Simplici0/mountbook/internal/pricing"
)

var errLookupFailed = errors.New("availability lookup failed")

type dayAvailabilityResponse struct {
	Date   string                `json:"date"`
	Reason availability.Reason   `json:"reason"`
	Slots  []availability.Result `json:"slots"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var sel pricing.Selection
	if err := decodeJSON(w, r, &sel); err != nil {
		s.writeError(w, r, err)
		return
	}

	quote, err := s.bookings.Quote(r.Context(), sel)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

// handleDayAvailability lists every slot of a date. A closed or blocked day returns an empty list
// with the reason instead of an error.
func (s *server) handleDayAvailability(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))

	slots, reason := s.evaluator.DaySlots(r.Context(), date, s.slotInterval)
	if reason == availability.ReasonInvalidDate {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "date must be YYYY-MM-DD"})
		return
	}
	if reason == availability.ReasonLookupFailed {
		s.writeError(w, r, errLookupFailed)
		return
	}
	if slots == nil {
		slots = []availability.Result{}
	}

	for _, slot := range slots {
		if slot.Err != nil {
			s.logger.Warn("slot lookup failed",
				zap.String("date", slot.Date),
				zap.String("time", slot.Time),
				zap.String("reason", string(slot.Reason)),
				zap.Error(slot.Err))
		}
	}

	writeJSON(w, http.StatusOK, dayAvailabilityResponse{Date: date, Reason: reason, Slots: slots})
}

func (s *server) handleSlotCheck(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res := s.evaluator.Check(r.Context(), q.Get("date"), q.Get("time"))
	if res.Err != nil && res.Reason == availability.ReasonLookupFailed {
		s.logger.Warn("slot lookup failed",
			zap.String("date", res.Date),
			zap.String("time", res.Time),
			zap.Error(res.Err))
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req booking.Request
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	b, err := s.bookings.Submit(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}
