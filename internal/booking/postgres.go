package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rentloop/rentloop/internal/ledger"
	"github.com/rentloop/rentloop/internal/vehicle"
)

// exclusionViolation is raised by the bookings_no_overlap constraint when two
// transactions race past the application-level availability check.
const exclusionViolation = "23P01"

// PostgresStore runs each settlement as one serializable transaction against
// PostgreSQL. Row locks on the vehicle plus the overlap exclusion constraint
// make the database the arbiter between concurrent purchases.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed settlement store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Purchase settles a rental: checks availability, moves the rental amount
// from renter to owner, records the transaction, creates the booking and
// flips the vehicle to rented. All of it commits or none of it does.
func (s *PostgresStore) Purchase(ctx context.Context, p PurchaseParams) (PurchaseResult, error) {
	if err := ValidateInterval(p.Start, p.End); err != nil {
		return PurchaseResult{}, err
	}
	vid, err := uuid.Parse(p.VehicleID)
	if err != nil {
		return PurchaseResult{}, ErrVehicleNotFound
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return PurchaseResult{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	var (
		ownerID uuid.UUID
		rate    int64
		status  string
	)
	err = tx.QueryRow(ctx, `SELECT owner_id, daily_rate, status FROM vehicles WHERE id = $1 FOR UPDATE`, vid).
		Scan(&ownerID, &rate, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseResult{}, ErrVehicleNotFound
		}
		return PurchaseResult{}, err
	}
	if status != vehicle.StatusAvailable {
		return PurchaseResult{}, ErrVehicleRented
	}

	var conflict bool
	err = tx.QueryRow(ctx, `SELECT EXISTS (
            SELECT 1 FROM bookings
            WHERE vehicle_id = $1 AND status = $2
              AND start_date < $4 AND end_date > $3
        )`, vid, StatusActive, p.Start, p.End).Scan(&conflict)
	if err != nil {
		return PurchaseResult{}, err
	}
	if conflict {
		return PurchaseResult{}, ErrVehicleRented
	}

	amount := RentalAmount(rate, p.Start, p.End)

	// Renter is debited before the owner is credited, inside this unit of
	// work, so a failure on any later step unwinds the transfer too.
	record, err := ledger.TransferTx(ctx, tx, p.RenterID, ownerID.String(), amount, ledger.KindBooking)
	if err != nil {
		return PurchaseResult{}, err
	}

	b := Booking{
		ID:            uuid.NewString(),
		UserID:        p.RenterID,
		VehicleID:     p.VehicleID,
		StartDate:     p.Start.UTC(),
		EndDate:       p.End.UTC(),
		TransactionID: record.ID,
		Status:        StatusActive,
		CreatedAt:     time.Now().UTC(),
	}
	if _, err := tx.Exec(ctx, `INSERT INTO bookings (id, user_id, vehicle_id, start_date, end_date, transaction_id, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.MustParse(b.ID), uuid.MustParse(b.UserID), vid, b.StartDate, b.EndDate, uuid.MustParse(b.TransactionID), b.Status, b.CreatedAt); err != nil {
		return PurchaseResult{}, asConflict(err)
	}

	if !vehicle.CanTransition(status, vehicle.StatusRented) {
		return PurchaseResult{}, vehicle.ErrInvalidTransition
	}
	if _, err := tx.Exec(ctx, `UPDATE vehicles SET status = $2, available = FALSE WHERE id = $1`,
		vid, vehicle.StatusRented); err != nil {
		return PurchaseResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return PurchaseResult{}, asConflict(err)
	}
	return PurchaseResult{Booking: b, Transaction: record}, nil
}

// Return closes the renter's open booking on the vehicle: charges the late
// penalty if the handback is past the scheduled end, stamps the actual end
// date and brings the vehicle back to available, all in one transaction.
func (s *PostgresStore) Return(ctx context.Context, p ReturnParams) (ReturnResult, error) {
	vid, err := uuid.Parse(p.VehicleID)
	if err != nil {
		return ReturnResult{}, ErrVehicleNotFound
	}
	renterID, err := uuid.Parse(p.RenterID)
	if err != nil {
		return ReturnResult{}, ErrBookingNotFound
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return ReturnResult{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	var (
		ownerID uuid.UUID
		status  string
	)
	err = tx.QueryRow(ctx, `SELECT owner_id, status FROM vehicles WHERE id = $1 FOR UPDATE`, vid).
		Scan(&ownerID, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ReturnResult{}, ErrVehicleNotFound
		}
		return ReturnResult{}, err
	}

	var (
		bookingID     uuid.UUID
		transactionID uuid.UUID
		b             Booking
	)
	err = tx.QueryRow(ctx, `SELECT id, start_date, end_date, transaction_id, created_at
        FROM bookings
        WHERE vehicle_id = $1 AND user_id = $2 AND status = $3
        ORDER BY start_date DESC LIMIT 1
        FOR UPDATE`, vid, renterID, StatusActive).
		Scan(&bookingID, &b.StartDate, &b.EndDate, &transactionID, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ReturnResult{}, ErrBookingNotFound
		}
		return ReturnResult{}, err
	}
	b.ID = bookingID.String()
	b.UserID = p.RenterID
	b.VehicleID = p.VehicleID
	b.TransactionID = transactionID.String()

	var penalty *ledger.Transaction
	if late := LateDays(b.EndDate, p.Now); late > 0 {
		var rentalAmount int64
		if err := tx.QueryRow(ctx, `SELECT amount FROM transactions WHERE id = $1`, transactionID).Scan(&rentalAmount); err != nil {
			return ReturnResult{}, fmt.Errorf("load rental amount: %w", err)
		}
		// A handback seconds past the deadline rounds to a zero penalty and
		// counts as on time; nothing is posted for it. Real penalties skip
		// the balance floor, so a late renter may go negative.
		if amount := PenaltyAmount(rentalAmount, late); amount > 0 {
			record, err := ledger.ForceTransferTx(ctx, tx, p.RenterID, ownerID.String(), amount, ledger.KindPenalty)
			if err != nil {
				return ReturnResult{}, err
			}
			penalty = &record
		}
	}

	// Early handbacks keep the booked interval; late ones stretch it to the
	// actual return time.
	if p.Now.After(b.EndDate) {
		b.EndDate = p.Now.UTC()
	}
	if _, err := tx.Exec(ctx, `UPDATE bookings SET end_date = $2, status = $3 WHERE id = $1`,
		bookingID, b.EndDate, StatusReturned); err != nil {
		return ReturnResult{}, err
	}
	b.Status = StatusReturned

	if !vehicle.CanTransition(status, vehicle.StatusAvailable) {
		return ReturnResult{}, vehicle.ErrInvalidTransition
	}
	if _, err := tx.Exec(ctx, `UPDATE vehicles SET status = $2, available = TRUE WHERE id = $1`,
		vid, vehicle.StatusAvailable); err != nil {
		return ReturnResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return ReturnResult{}, err
	}
	return ReturnResult{Booking: b, Penalty: penalty}, nil
}

// IsAvailable reports whether any active booking overlaps [start, end).
// Read-only, and deliberately interval-only: a vehicle out on rent answers
// free for disjoint future intervals, but Purchase still requires the current
// rental to be handed back first.
func (s *PostgresStore) IsAvailable(ctx context.Context, vehicleID string, start, end time.Time) (bool, error) {
	if err := ValidateInterval(start, end); err != nil {
		return false, err
	}
	vid, err := uuid.Parse(vehicleID)
	if err != nil {
		return false, ErrVehicleNotFound
	}

	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM vehicles WHERE id = $1)`, vid).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, ErrVehicleNotFound
	}

	var conflict bool
	err = s.db.QueryRow(ctx, `SELECT EXISTS (
            SELECT 1 FROM bookings
            WHERE vehicle_id = $1 AND status = $2
              AND start_date < $4 AND end_date > $3
        )`, vid, StatusActive, start, end).Scan(&conflict)
	if err != nil {
		return false, err
	}
	return !conflict, nil
}

// ListByUser returns the user's bookings newest first.
func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]Booking, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, `SELECT id, user_id, vehicle_id, start_date, end_date, transaction_id, status, created_at
        FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []Booking
	for rows.Next() {
		var (
			id, user, vid, txID uuid.UUID
			b                   Booking
		)
		if err := rows.Scan(&id, &user, &vid, &b.StartDate, &b.EndDate, &txID, &b.Status, &b.CreatedAt); err != nil {
			return nil, err
		}
		b.ID = id.String()
		b.UserID = user.String()
		b.VehicleID = vid.String()
		b.TransactionID = txID.String()
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// asConflict translates an overlap-constraint violation into the conflict
// error the loser of a purchase race is supposed to see.
func asConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == exclusionViolation {
		return ErrVehicleRented
	}
	return err
}
