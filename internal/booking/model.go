package booking

import (
	"errors"
	"math"
	"time"
)

var (
	// ErrVehicleNotFound occurs when the target vehicle does not exist.
	ErrVehicleNotFound = errors.New("vehicle not found")

	// ErrVehicleRented occurs when the vehicle is already rented, or an
	// active booking overlaps the requested interval.
	ErrVehicleRented = errors.New("vehicle not available for the requested interval")

	// ErrBookingNotFound occurs when no open booking matches a return request.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrInvalidInterval occurs when a requested date range is empty or inverted.
	ErrInvalidInterval = errors.New("end date must be after start date")
)

const (
	// StatusActive marks a booking whose vehicle is currently out.
	StatusActive = "active"
	// StatusReturned marks a closed booking. Bookings are never deleted.
	StatusReturned = "returned"
)

// penaltyMultiplier is applied per late day on top of the original rental amount.
const penaltyMultiplier = 1.25

// Booking records one rental of a vehicle over a half-open [start, end) interval.
type Booking struct {
	ID            string
	UserID        string
	VehicleID     string
	StartDate     time.Time
	EndDate       time.Time
	TransactionID string
	Status        string
	CreatedAt     time.Time
}

// ValidateInterval rejects empty or inverted [start, end) ranges before any
// store work happens.
func ValidateInterval(start, end time.Time) error {
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return ErrInvalidInterval
	}
	return nil
}

// Overlaps reports whether two half-open intervals intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// RentalAmount prices a rental as daily rate times the real-valued day count
// of the interval. Partial days are charged pro rata.
func RentalAmount(dailyRate int64, start, end time.Time) int64 {
	days := end.Sub(start).Hours() / 24
	return int64(math.Round(float64(dailyRate) * days))
}

// LateDays returns how many days past the scheduled end the return happened,
// as a real value. Zero or negative means the return was on time.
func LateDays(scheduledEnd, now time.Time) float64 {
	return now.Sub(scheduledEnd).Hours() / 24
}

// PenaltyAmount computes the late-return charge: 1.25 times the original
// rental amount per late day. There is no cap and no balance floor at
// collection time.
func PenaltyAmount(amount int64, lateDays float64) int64 {
	return int64(math.Round(penaltyMultiplier * float64(amount) * lateDays))
}
