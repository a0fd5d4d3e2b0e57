package wallet

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rentloop/rentloop/internal/ledger"
)

// Service exposes wallet operations backed by the ledger.
type Service struct {
	ledger ledger.Ledger
}

// NewService builds a wallet service instance.
func NewService(led ledger.Ledger) *Service {
	return &Service{ledger: led}
}

// Balance encapsulates available funds for a user's wallet.
type Balance struct {
	UserID string
	Amount int64
	AsOf   time.Time
}

// Provision creates the user's wallet if it does not exist yet.
func (s *Service) Provision(ctx context.Context, userID string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return err
	}
	return s.ledger.EnsureWallet(ctx, userID)
}

// Balance returns the current wallet balance.
func (s *Service) Balance(ctx context.Context, userID string) (Balance, error) {
	amount, err := s.ledger.Balance(ctx, userID)
	if err != nil {
		return Balance{}, err
	}
	return Balance{UserID: userID, Amount: amount, AsOf: time.Now().UTC()}, nil
}

// TopUp credits the wallet and returns the transaction with the new balance.
func (s *Service) TopUp(ctx context.Context, userID string, amount int64) (ledger.Transaction, int64, error) {
	return s.ledger.TopUp(ctx, userID, amount)
}

// History returns the user's transactions newest first, tagged debit/credit.
func (s *Service) History(ctx context.Context, userID string) ([]ledger.Entry, error) {
	return s.ledger.History(ctx, userID)
}
