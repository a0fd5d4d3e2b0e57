package routes

import (
	"context"

	"github.com/rentloop/rentloop/internal/booking"
	"github.com/rentloop/rentloop/internal/vehicle"
)

// syncedVehicles mirrors vehicle writes into the in-memory settlement store
// so dev-mode bookings see the same fleet the catalogue does.
type syncedVehicles struct {
	vehicle.Repository
	store booking.Store
}

func (s syncedVehicles) Create(ctx context.Context, v vehicle.Vehicle) error {
	if err := s.Repository.Create(ctx, v); err != nil {
		return err
	}
	booking.TrackVehicle(s.store, v)
	return nil
}

func (s syncedVehicles) Delete(ctx context.Context, id string) error {
	if err := s.Repository.Delete(ctx, id); err != nil {
		return err
	}
	booking.UntrackVehicle(s.store, id)
	return nil
}
