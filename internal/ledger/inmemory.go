package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type inMemoryLedger struct {
	mu       sync.RWMutex
	balances map[string]int64
	history  []Transaction
}

// NewInMemory creates a concurrency-safe in-memory ledger useful for unit tests.
func NewInMemory() Ledger {
	return &inMemoryLedger{balances: make(map[string]int64)}
}

func (l *inMemoryLedger) EnsureWallet(_ context.Context, userID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.balances[userID]; !exists {
		l.balances[userID] = 0
	}
	return nil
}

func (l *inMemoryLedger) Balance(_ context.Context, userID string) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	balance, exists := l.balances[userID]
	if !exists {
		return 0, ErrWalletNotFound
	}
	return balance, nil
}

func (l *inMemoryLedger) TopUp(_ context.Context, userID string, amount int64) (Transaction, int64, error) {
	if amount <= 0 {
		return Transaction{}, 0, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	balance, exists := l.balances[userID]
	if !exists {
		return Transaction{}, 0, ErrWalletNotFound
	}
	balance += amount
	l.balances[userID] = balance

	record := newRecord(userID, userID, amount, KindTopUp)
	l.history = append(l.history, record)
	return record, balance, nil
}

func (l *inMemoryLedger) Transfer(_ context.Context, fromUser, toUser string, amount int64, kind string) (Transaction, error) {
	return l.transfer(fromUser, toUser, amount, kind, true)
}

func (l *inMemoryLedger) ForceTransfer(_ context.Context, fromUser, toUser string, amount int64, kind string) (Transaction, error) {
	return l.transfer(fromUser, toUser, amount, kind, false)
}

func (l *inMemoryLedger) transfer(fromUser, toUser string, amount int64, kind string, enforceFloor bool) (Transaction, error) {
	if amount <= 0 {
		return Transaction{}, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	fromBalance, ok := l.balances[fromUser]
	if !ok {
		return Transaction{}, ErrWalletNotFound
	}
	if _, ok := l.balances[toUser]; !ok {
		return Transaction{}, ErrWalletNotFound
	}
	if enforceFloor && fromBalance < amount {
		return Transaction{}, ErrInsufficientFunds
	}

	l.balances[fromUser] -= amount
	l.balances[toUser] += amount

	record := newRecord(fromUser, toUser, amount, kind)
	l.history = append(l.history, record)
	return record, nil
}

func (l *inMemoryLedger) History(_ context.Context, userID string) ([]Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var entries []Entry
	for i := len(l.history) - 1; i >= 0; i-- {
		t := l.history[i]
		if t.FromUser != userID && t.ToUser != userID {
			continue
		}
		entries = append(entries, Entry{Transaction: t, Direction: directionFor(t, userID)})
	}
	return entries, nil
}

func newRecord(from, to string, amount int64, kind string) Transaction {
	return Transaction{
		ID:        uuid.NewString(),
		FromUser:  from,
		ToUser:    to,
		Amount:    amount,
		Kind:      kind,
		Status:    StatusSuccess,
		CreatedAt: time.Now().UTC(),
	}
}
