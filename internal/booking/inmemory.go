package booking

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rentloop/rentloop/internal/ledger"
	"github.com/rentloop/rentloop/internal/vehicle"
)

// errStorageFailure stands in for an aborted persistence transaction.
var errStorageFailure = errors.New("storage failure")

type memVehicle struct {
	ownerID   string
	dailyRate int64
	status    string
}

// inMemoryStore mirrors the Postgres settlement semantics for unit tests.
// Each operation stages its effects and applies them under the mutex only
// once the whole unit has passed, so a simulated failure leaves no trace.
type inMemoryStore struct {
	mu       sync.Mutex
	vehicles map[string]*memVehicle
	bookings map[string]Booking
	wallets  map[string]int64
	history  []ledger.Transaction

	failNextUnit bool
}

// NewInMemory creates a concurrency-safe in-memory settlement store for tests.
func NewInMemory() Store {
	return &inMemoryStore{
		vehicles: make(map[string]*memVehicle),
		bookings: make(map[string]Booking),
		wallets:  make(map[string]int64),
	}
}

func (s *inMemoryStore) Purchase(_ context.Context, p PurchaseParams) (PurchaseResult, error) {
	if err := ValidateInterval(p.Start, p.End); err != nil {
		return PurchaseResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vehicles[p.VehicleID]
	if !ok {
		return PurchaseResult{}, ErrVehicleNotFound
	}
	if v.status != vehicle.StatusAvailable {
		return PurchaseResult{}, ErrVehicleRented
	}
	for _, b := range s.bookings {
		if b.VehicleID == p.VehicleID && b.Status == StatusActive && Overlaps(b.StartDate, b.EndDate, p.Start, p.End) {
			return PurchaseResult{}, ErrVehicleRented
		}
	}

	renterBalance, ok := s.wallets[p.RenterID]
	if !ok {
		return PurchaseResult{}, ledger.ErrWalletNotFound
	}
	if _, ok := s.wallets[v.ownerID]; !ok {
		return PurchaseResult{}, ledger.ErrWalletNotFound
	}

	amount := RentalAmount(v.dailyRate, p.Start, p.End)
	if renterBalance < amount {
		return PurchaseResult{}, ledger.ErrInsufficientFunds
	}

	record := newTransaction(p.RenterID, v.ownerID, amount, ledger.KindBooking)
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

	if s.failNextUnit {
		s.failNextUnit = false
		return PurchaseResult{}, errStorageFailure
	}

	s.wallets[p.RenterID] -= amount
	s.wallets[v.ownerID] += amount
	s.history = append(s.history, record)
	s.bookings[b.ID] = b
	v.status = vehicle.StatusRented

	return PurchaseResult{Booking: b, Transaction: record}, nil
}

func (s *inMemoryStore) Return(_ context.Context, p ReturnParams) (ReturnResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vehicles[p.VehicleID]
	if !ok {
		return ReturnResult{}, ErrVehicleNotFound
	}

	var open *Booking
	for id := range s.bookings {
		b := s.bookings[id]
		if b.VehicleID == p.VehicleID && b.UserID == p.RenterID && b.Status == StatusActive {
			open = &b
			break
		}
	}
	if open == nil {
		return ReturnResult{}, ErrBookingNotFound
	}

	var penalty *ledger.Transaction
	if late := LateDays(open.EndDate, p.Now); late > 0 {
		var rentalAmount int64
		for _, t := range s.history {
			if t.ID == open.TransactionID {
				rentalAmount = t.Amount
				break
			}
		}
		// A zero-rounded penalty counts as an on-time return.
		if amount := PenaltyAmount(rentalAmount, late); amount > 0 {
			record := newTransaction(p.RenterID, v.ownerID, amount, ledger.KindPenalty)
			penalty = &record
		}
	}

	if s.failNextUnit {
		s.failNextUnit = false
		return ReturnResult{}, errStorageFailure
	}

	if penalty != nil {
		s.wallets[p.RenterID] -= penalty.Amount
		s.wallets[v.ownerID] += penalty.Amount
		s.history = append(s.history, *penalty)
	}
	if p.Now.After(open.EndDate) {
		open.EndDate = p.Now.UTC()
	}
	open.Status = StatusReturned
	s.bookings[open.ID] = *open
	v.status = vehicle.StatusAvailable

	return ReturnResult{Booking: *open, Penalty: penalty}, nil
}

func (s *inMemoryStore) IsAvailable(_ context.Context, vehicleID string, start, end time.Time) (bool, error) {
	if err := ValidateInterval(start, end); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vehicles[vehicleID]; !ok {
		return false, ErrVehicleNotFound
	}
	for _, b := range s.bookings {
		if b.VehicleID == vehicleID && b.Status == StatusActive && Overlaps(b.StartDate, b.EndDate, start, end) {
			return false, nil
		}
	}
	return true, nil
}

func (s *inMemoryStore) ListByUser(_ context.Context, userID string) ([]Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var bookings []Booking
	for _, b := range s.bookings {
		if b.UserID == userID {
			bookings = append(bookings, b)
		}
	}
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})
	return bookings, nil
}

// TrackVehicle makes an in-memory settlement store aware of a vehicle so
// purchases against it can settle. No-op on other store implementations.
func TrackVehicle(s Store, v vehicle.Vehicle) {
	if mem, ok := s.(*inMemoryStore); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.vehicles[v.ID] = &memVehicle{ownerID: v.OwnerID, dailyRate: v.DailyRate, status: v.Status}
	}
}

// UntrackVehicle removes a vehicle from an in-memory settlement store.
func UntrackVehicle(s Store, vehicleID string) {
	if mem, ok := s.(*inMemoryStore); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		delete(mem.vehicles, vehicleID)
	}
}

// The in-memory store doubles as the wallet ledger when no database is
// configured, so wallet endpoints and settlements observe the same balances.

func (s *inMemoryStore) EnsureWallet(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.wallets[userID]; !ok {
		s.wallets[userID] = 0
	}
	return nil
}

func (s *inMemoryStore) Balance(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	balance, ok := s.wallets[userID]
	if !ok {
		return 0, ledger.ErrWalletNotFound
	}
	return balance, nil
}

func (s *inMemoryStore) TopUp(_ context.Context, userID string, amount int64) (ledger.Transaction, int64, error) {
	if amount <= 0 {
		return ledger.Transaction{}, 0, ledger.ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.wallets[userID]; !ok {
		return ledger.Transaction{}, 0, ledger.ErrWalletNotFound
	}
	s.wallets[userID] += amount
	record := newTransaction(userID, userID, amount, ledger.KindTopUp)
	s.history = append(s.history, record)
	return record, s.wallets[userID], nil
}

func (s *inMemoryStore) Transfer(_ context.Context, fromUser, toUser string, amount int64, kind string) (ledger.Transaction, error) {
	return s.transfer(fromUser, toUser, amount, kind, true)
}

func (s *inMemoryStore) ForceTransfer(_ context.Context, fromUser, toUser string, amount int64, kind string) (ledger.Transaction, error) {
	return s.transfer(fromUser, toUser, amount, kind, false)
}

func (s *inMemoryStore) transfer(fromUser, toUser string, amount int64, kind string, enforceFloor bool) (ledger.Transaction, error) {
	if amount <= 0 {
		return ledger.Transaction{}, ledger.ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	balance, ok := s.wallets[fromUser]
	if !ok {
		return ledger.Transaction{}, ledger.ErrWalletNotFound
	}
	if _, ok := s.wallets[toUser]; !ok {
		return ledger.Transaction{}, ledger.ErrWalletNotFound
	}
	if enforceFloor && balance < amount {
		return ledger.Transaction{}, ledger.ErrInsufficientFunds
	}
	s.wallets[fromUser] -= amount
	s.wallets[toUser] += amount
	record := newTransaction(fromUser, toUser, amount, kind)
	s.history = append(s.history, record)
	return record, nil
}

func (s *inMemoryStore) History(_ context.Context, userID string) ([]ledger.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var entries []ledger.Entry
	for i := len(s.history) - 1; i >= 0; i-- {
		t := s.history[i]
		if t.FromUser != userID && t.ToUser != userID {
			continue
		}
		direction := ledger.DirectionDebit
		if t.ToUser == userID {
			direction = ledger.DirectionCredit
		}
		entries = append(entries, ledger.Entry{Transaction: t, Direction: direction})
	}
	return entries, nil
}

func newTransaction(from, to string, amount int64, kind string) ledger.Transaction {
	return ledger.Transaction{
		ID:        uuid.NewString(),
		FromUser:  from,
		ToUser:    to,
		Amount:    amount,
		Kind:      kind,
		Status:    ledger.StatusSuccess,
		CreatedAt: time.Now().UTC(),
	}
}
