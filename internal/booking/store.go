package booking

import (
	"context"
	"time"

	"github.com/rentloop/rentloop/internal/ledger"
)

// PurchaseParams carries one rental request into the settlement unit of work.
type PurchaseParams struct {
	RenterID  string
	VehicleID string
	Start     time.Time
	End       time.Time
}

// PurchaseResult is the committed outcome of a purchase.
type PurchaseResult struct {
	Booking     Booking
	Transaction ledger.Transaction
}

// ReturnParams carries a vehicle handback into the return unit of work.
type ReturnParams struct {
	RenterID  string
	VehicleID string
	Now       time.Time
}

// ReturnResult is the committed outcome of a return. Penalty is nil when the
// vehicle came back on time.
type ReturnResult struct {
	Booking Booking
	Penalty *ledger.Transaction
}

// Store is the transactional boundary of the settlement engine. Purchase and
// Return each run as a single atomic unit: the availability check, the wallet
// movements, the transaction record, the booking row and the vehicle state
// flip commit together or not at all. The store is the sole arbiter of mutual
// exclusion between concurrent callers.
//
// IsAvailable answers interval overlap only. Purchase additionally requires
// the vehicle to be in the available state, so a free future interval can
// still conflict until the current rental is returned.
type Store interface {
	Purchase(ctx context.Context, p PurchaseParams) (PurchaseResult, error)
	Return(ctx context.Context, p ReturnParams) (ReturnResult, error)
	IsAvailable(ctx context.Context, vehicleID string, start, end time.Time) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]Booking, error)
}
