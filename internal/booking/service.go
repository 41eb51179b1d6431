package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Simplici0/mountbook/internal/availability"
	"github.com/Simplici0/mountbook/internal/pricing"
)

// Service runs the booking submission flow on top of the pricing engine and the evaluator.
type Service struct {
	repo      Repository
	tables    PriceTableSource
	evaluator *availability.Evaluator
	engine    *pricing.Engine
	logger    *zap.Logger
	newRef    func() string
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithEngine replaces the default pricing engine.
func WithEngine(e *pricing.Engine) ServiceOption {
	return func(s *Service) { s.engine = e }
}

// WithReferenceGenerator replaces the uuid reference generator.
func WithReferenceGenerator(f func() string) ServiceOption {
	return func(s *Service) { s.newRef = f }
}

func NewService(repo Repository, tables PriceTableSource, evaluator *availability.Evaluator, logger *zap.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		repo:      repo,
		tables:    tables,
		evaluator: evaluator,
		engine:    pricing.NewEngine(),
		logger:    logger,
		newRef:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Quote prices a selection against the current price table.
func (s *Service) Quote(ctx context.Context, sel pricing.Selection) (pricing.Quote, error) {
	if err := ValidateSelection(sel); err != nil {
		return pricing.Quote{}, err
	}
	table, err := s.tables.PriceTable(ctx)
	if err != nil {
		return pricing.Quote{}, fmt.Errorf("load price table: %w", err)
	}
	return s.engine.Calculate(sel, table), nil
}

// Submit validates, re-prices and stores a booking.
func (s *Service) Submit(ctx context.Context, req Request) (Booking, error) {
	if err := req.normalize(); err != nil {
		return Booking{}, err
	}

	quote, err := s.Quote(ctx, req.Selection)
	if err != nil {
		return Booking{}, err
	}
	if req.QuotedTotal != nil && *req.QuotedTotal != quote.Total {
		s.logger.Info("quoted total is stale",
			zap.Int64("quoted", int64(*req.QuotedTotal)),
			zap.Int64("current", int64(quote.Total)))
		return Booking{}, fmt.Errorf("%w: current total is %s", ErrQuoteMismatch, quote.Total)
	}

	res := s.evaluator.Check(ctx, req.Date, req.Time)
	if !res.Available {
		fields := []zap.Field{
			zap.String("date", req.Date),
			zap.String("time", req.Time),
			zap.String("reason", string(res.Reason)),
		}
		if res.Err != nil {
			fields = append(fields, zap.Error(res.Err))
			s.logger.Warn("availability check failed", fields...)
		} else {
			s.logger.Info("slot rejected", fields...)
		}
		if res.Reason == availability.ReasonInvalidDate {
			return Booking{}, invalid("date %q is not valid", req.Date)
		}
		return Booking{}, fmt.Errorf("%w: %s", ErrSlotUnavailable, res.Reason)
	}

	b := Booking{
		Reference: s.newRef(),
		Contact:   req.Contact,
		Address:   req.Address,
		Notes:     req.Notes,
		Date:      res.Date,
		Time:      res.Time,
		Selection: req.Selection,
		Quote:     quote,
		Status:    availability.StatusActive,
	}
	if err := s.repo.Create(ctx, &b); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			s.logger.Info("slot taken by concurrent booking", zap.String("date", b.Date), zap.String("time", b.Time))
			return Booking{}, err
		}
		return Booking{}, fmt.Errorf("store booking: %w", err)
	}

	s.logger.Info("booking created",
		zap.String("reference", b.Reference),
		zap.String("date", b.Date),
		zap.String("time", b.Time),
		zap.String("total", b.Quote.Total.String()))
	return b, nil
}

// Get returns one booking by reference.
func (s *Service) Get(ctx context.Context, reference string) (Booking, error) {
	return s.repo.Get(ctx, reference)
}

// List returns the bookings of a date, cancelled ones included.
func (s *Service) List(ctx context.Context, date string) ([]Booking, error) {
	if _, err := availability.ParseDate(date, s.evaluator.Location()); err != nil {
		return nil, invalid("date %q is not valid", date)
	}
	return s.repo.ListByDate(ctx, date)
}

// Cancel frees a booked slot.
func (s *Service) Cancel(ctx context.Context, reference string) error {
	if err := s.repo.Cancel(ctx, reference); err != nil {
		return err
	}
	s.logger.Info("booking cancelled", zap.String("reference", reference))
	return nil
}
