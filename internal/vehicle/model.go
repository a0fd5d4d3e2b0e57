package vehicle

import (
	"errors"
	"time"
)

var (
	// ErrNotFound occurs when the requested vehicle does not exist.
	ErrNotFound = errors.New("vehicle not found")

	// ErrInvalidTransition occurs on an illegal vehicle status change.
	ErrInvalidTransition = errors.New("invalid vehicle status transition")
)

const (
	// StatusAvailable means the vehicle can be booked.
	StatusAvailable = "available"
	// StatusRented means the vehicle is out on an active booking.
	StatusRented = "rented"
)

// allowedTransitions is the rental lifecycle: a purchase takes the vehicle
// out, a return brings it back. Nothing else is legal.
var allowedTransitions = map[string][]string{
	StatusAvailable: {StatusRented},
	StatusRented:    {StatusAvailable},
}

// CanTransition reports whether from -> to is a legal lifecycle step.
func CanTransition(from, to string) bool {
	if from == to {
		return false
	}
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Vehicle is a rentable unit owned by exactly one user.
type Vehicle struct {
	ID        string
	OwnerID   string
	Model     string
	Location  string
	DailyRate int64
	Status    string
	Available bool
	CreatedAt time.Time
	Images    []Image
}

// Image is a base64-encoded photo attached to a vehicle listing.
type Image struct {
	ID           string
	VehicleID    string
	EncodedImage string
	CreatedAt    time.Time
}
