package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Simplici0/mountbook/internal/availability"
	"github.com/Simplici0/mountbook/internal/pricing"
	"github.com/Simplici0/mountbook/internal/store"
)

type businessHoursRequest struct {
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	IsAvailable bool   `json:"isAvailable"`
}

type priceTableResponse struct {
	Version int64              `json:"version"`
	Table   pricing.PriceTable `json:"table"`
}

func (s *server) handleListBusinessHours(w http.ResponseWriter, r *http.Request) {
	hours, err := s.store.ListBusinessHours(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hours)
}

func (s *server) handleUpdateBusinessHours(w http.ResponseWriter, r *http.Request) {
	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil || day < 0 || day > 6 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "day must be 0 (Sunday) through 6 (Saturday)"})
		return
	}

	var req businessHoursRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	hours, err := s.store.UpsertBusinessHours(r.Context(), availability.BusinessHours{
		DayOfWeek:   time.Weekday(day),
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		IsAvailable: req.IsAvailable,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hours)
}

func (s *server) handleListBlockedDays(w http.ResponseWriter, r *http.Request) {
	days, err := s.store.ListBlockedDays(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, days)
}

func (s *server) handleCreateBlockedDay(w http.ResponseWriter, r *http.Request) {
	var req availability.BlockedDay
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	day, err := s.store.AddBlockedDay(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, day)
}

func (s *server) handleDeleteBlockedDay(w http.ResponseWriter, r *http.Request) {
	if err := s.store.RemoveBlockedDay(r.Context(), chi.URLParam(r, "date")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleListBlockedSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := s.store.ListBlockedSlots(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, slots)
}

func (s *server) handleCreateBlockedSlot(w http.ResponseWriter, r *http.Request) {
	var req availability.BlockedSlot
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	slot, err := s.store.AddBlockedSlot(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, slot)
}

func (s *server) handleDeleteBlockedSlot(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if err := s.store.RemoveBlockedSlot(r.Context(), q.Get("date"), q.Get("time")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.bookings.List(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (s *server) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	b, err := s.bookings.Get(r.Context(), chi.URLParam(r, "reference"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *server) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	if err := s.bookings.Cancel(r.Context(), chi.URLParam(r, "reference")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetPriceTable returns version 0 with the default table until a table was stored.
func (s *server) handleGetPriceTable(w http.ResponseWriter, r *http.Request) {
	latest, err := s.store.LatestPriceTable(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusOK, priceTableResponse{Table: pricing.DefaultTable()})
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, priceTableResponse{Version: latest.Version, Table: latest.Table})
}

func (s *server) handlePutPriceTable(w http.ResponseWriter, r *http.Request) {
	var table pricing.PriceTable
	if err := decodeJSON(w, r, &table); err != nil {
		s.writeError(w, r, err)
		return
	}

	version, err := s.store.SavePriceTable(r.Context(), table)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	email, _ := s.auth.sessionEmail(r)
	s.logger.Info("price table updated", zap.Int64("version", version), zap.String("by", email))
	writeJSON(w, http.StatusOK, priceTableResponse{Version: version, Table: table})
}
