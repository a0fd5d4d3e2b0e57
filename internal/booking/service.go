package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/rentloop/rentloop/internal/notification"
)

// Service drives the rental settlement flows on top of the transactional
// store and emits best-effort notifications after commit.
type Service struct {
	store    Store
	notifier notification.Notifier
}

// NewService constructs a settlement service.
func NewService(store Store, notifier notification.Notifier) *Service {
	return &Service{store: store, notifier: notifier}
}

// PurchaseInput captures a rental request.
type PurchaseInput struct {
	RenterID  string
	VehicleID string
	Start     time.Time
	End       time.Time
}

// Purchase settles a rental for the requested interval.
func (s *Service) Purchase(ctx context.Context, input PurchaseInput) (PurchaseResult, error) {
	if err := ValidateInterval(input.Start, input.End); err != nil {
		return PurchaseResult{}, err
	}

	res, err := s.store.Purchase(ctx, PurchaseParams{
		RenterID:  input.RenterID,
		VehicleID: input.VehicleID,
		Start:     input.Start,
		End:       input.End,
	})
	if err != nil {
		return PurchaseResult{}, err
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindBookingConfirmed,
			Destination: input.RenterID,
			Body:        fmt.Sprintf("Vehicle %s booked until %s for %d", input.VehicleID, input.End.Format(time.RFC3339), res.Transaction.Amount),
		})
	}
	return res, nil
}

// ReturnInput captures a vehicle handback.
type ReturnInput struct {
	RenterID  string
	VehicleID string
	Now       time.Time
}

// Return closes the renter's open booking, collecting the late penalty when due.
func (s *Service) Return(ctx context.Context, input ReturnInput) (ReturnResult, error) {
	now := input.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	res, err := s.store.Return(ctx, ReturnParams{
		RenterID:  input.RenterID,
		VehicleID: input.VehicleID,
		Now:       now,
	})
	if err != nil {
		return ReturnResult{}, err
	}

	if s.notifier != nil && res.Penalty != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindPenaltyCharged,
			Destination: input.RenterID,
			Body:        fmt.Sprintf("Late return of vehicle %s: penalty %d charged", input.VehicleID, res.Penalty.Amount),
		})
	}
	return res, nil
}

// Availability reports whether the vehicle is free over [start, end).
func (s *Service) Availability(ctx context.Context, vehicleID string, start, end time.Time) (bool, error) {
	return s.store.IsAvailable(ctx, vehicleID, start, end)
}

// ListByUser returns the user's bookings newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Booking, error) {
	return s.store.ListByUser(ctx, userID)
}
