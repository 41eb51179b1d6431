package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/quote", s.handleQuote)
		r.Get("/availability", s.handleDayAvailability)
		r.Get("/availability/check", s.handleSlotCheck)
		r.With(s.limiter.middleware(s.logger)).Post("/bookings", s.handleCreateBooking)
	})

	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.requireAdmin)

		r.Get("/business-hours", s.handleListBusinessHours)
		r.Put("/business-hours/{day}", s.handleUpdateBusinessHours)

		r.Get("/blocked-days", s.handleListBlockedDays)
		r.Post("/blocked-days", s.handleCreateBlockedDay)
		r.Delete("/blocked-days/{date}", s.handleDeleteBlockedDay)

		r.Get("/blocked-slots", s.handleListBlockedSlots)
		r.Post("/blocked-slots", s.handleCreateBlockedSlot)
		r.Delete("/blocked-slots", s.handleDeleteBlockedSlot)

		r.Get("/bookings", s.handleListBookings)
		r.Get("/bookings/{reference}", s.handleGetBooking)
		r.Post("/bookings/{reference}/cancel", s.handleCancelBooking)

		r.Get("/price-table", s.handleGetPriceTable)
		r.Put("/price-table", s.handlePutPriceTable)
	})

	return r
}
