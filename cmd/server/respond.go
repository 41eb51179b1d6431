package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/Simplici0/mountbook/internal/booking"
	"github.com/Simplici0/mountbook/internal/pricing"
	"github.com/Simplici0/mountbook/internal/store"
)

const maxBodyBytes = 64 << 10

var errBadBody = errors.New("invalid request body")

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads exactly one JSON value and rejects unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", errBadBody)
	}
	return nil
}

// writeError maps domain errors to status codes. Unknown errors are logged and hidden.
func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, errBadBody),
		errors.Is(err, booking.ErrInvalidRequest),
		errors.Is(err, store.ErrInvalid),
		errors.Is(err, pricing.ErrInvalidTable):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, booking.ErrSlotTaken):
		status, message = http.StatusConflict, "this slot was just booked, please choose another"
	case errors.Is(err, booking.ErrSlotUnavailable),
		errors.Is(err, booking.ErrQuoteMismatch),
		errors.Is(err, store.ErrConflict):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, booking.ErrNotFound), errors.Is(err, store.ErrNotFound):
		status, message = http.StatusNotFound, "not found"
	default:
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}

	writeJSON(w, status, errorResponse{Error: message})
}
