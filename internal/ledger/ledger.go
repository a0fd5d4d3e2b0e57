package ledger

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrWalletNotFound occurs when no wallet exists for the requested user.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrInsufficientFunds occurs when the paying wallet lacks available
	// balance to cover a requested transfer.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidAmount occurs when a posting amount is zero or negative.
	ErrInvalidAmount = errors.New("amount must be positive")
)

const (
	// KindBooking marks the rental payment moved from renter to owner.
	KindBooking = "booking"
	// KindPenalty marks a late-return surcharge moved from renter to owner.
	KindPenalty = "penalty"
	// KindTopUp marks a self-referential wallet credit.
	KindTopUp = "topup"

	// StatusSuccess is the terminal status of a committed transaction record.
	StatusSuccess = "success"
)

const (
	// DirectionDebit tags a history entry where the user paid.
	DirectionDebit = "debit"
	// DirectionCredit tags a history entry where the user was paid.
	DirectionCredit = "credit"
)

// Transaction is the immutable audit record of a single funds movement.
type Transaction struct {
	ID        string
	FromUser  string
	ToUser    string
	Amount    int64
	Kind      string
	Status    string
	CreatedAt time.Time
}

// Entry is a transaction viewed from one user's side of the ledger.
type Entry struct {
	Transaction
	Direction string
}

// Ledger defines the wallet contract implemented by ledger backends.
// Transfer and ForceTransfer are atomic: the debit, the credit and the
// transaction record commit together or not at all. ForceTransfer skips the
// balance floor; it exists for penalty postings, which may overdraw a wallet.
type Ledger interface {
	EnsureWallet(ctx context.Context, userID string) error
	Balance(ctx context.Context, userID string) (int64, error)
	TopUp(ctx context.Context, userID string, amount int64) (Transaction, int64, error)
	Transfer(ctx context.Context, fromUser, toUser string, amount int64, kind string) (Transaction, error)
	ForceTransfer(ctx context.Context, fromUser, toUser string, amount int64, kind string) (Transaction, error)
	History(ctx context.Context, userID string) ([]Entry, error)
}
