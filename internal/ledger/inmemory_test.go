package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestInMemoryLedger_TransferMaintainsBalance(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()

	renter := uuid.NewString()
	owner := uuid.NewString()
	if err := l.EnsureWallet(ctx, renter); err != nil {
		t.Fatalf("ensure renter wallet: %v", err)
	}
	if err := l.EnsureWallet(ctx, owner); err != nil {
		t.Fatalf("ensure owner wallet: %v", err)
	}

	SeedBalance(l, renter, 10_000)

	record, err := l.Transfer(ctx, renter, owner, 1_500, KindBooking)
	if err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if record.Kind != KindBooking || record.Status != StatusSuccess {
		t.Fatalf("unexpected record: %+v", record)
	}

	fromBal, _ := l.Balance(ctx, renter)
	toBal, _ := l.Balance(ctx, owner)
	if fromBal != 8_500 || toBal != 1_500 {
		t.Fatalf("unexpected balances: from=%d to=%d", fromBal, toBal)
	}
	if fromBal+toBal != 10_000 {
		t.Fatalf("ledger not balanced, total=%d", fromBal+toBal)
	}
}

func TestInMemoryLedger_InsufficientFunds(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	renter := uuid.NewString()
	owner := uuid.NewString()
	l.EnsureWallet(ctx, renter)
	l.EnsureWallet(ctx, owner)
	SeedBalance(l, renter, 100)

	if _, err := l.Transfer(ctx, renter, owner, 500, KindBooking); err != ErrInsufficientFunds {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	// The failed transfer must not move anything.
	fromBal, _ := l.Balance(ctx, renter)
	toBal, _ := l.Balance(ctx, owner)
	if fromBal != 100 || toBal != 0 {
		t.Fatalf("failed transfer mutated balances: from=%d to=%d", fromBal, toBal)
	}
}

func TestInMemoryLedger_ForceTransferOverdraws(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	renter := uuid.NewString()
	owner := uuid.NewString()
	l.EnsureWallet(ctx, renter)
	l.EnsureWallet(ctx, owner)
	SeedBalance(l, renter, 700)

	if _, err := l.ForceTransfer(ctx, renter, owner, 750, KindPenalty); err != nil {
		t.Fatalf("force transfer failed: %v", err)
	}

	fromBal, _ := l.Balance(ctx, renter)
	if fromBal != -50 {
		t.Fatalf("expected renter balance -50, got %d", fromBal)
	}
}

func TestInMemoryLedger_TopUp(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	user := uuid.NewString()
	l.EnsureWallet(ctx, user)

	record, balance, err := l.TopUp(ctx, user, 2_000)
	if err != nil {
		t.Fatalf("topup failed: %v", err)
	}
	if balance != 2_000 {
		t.Fatalf("expected balance 2000, got %d", balance)
	}
	if record.FromUser != user || record.ToUser != user || record.Kind != KindTopUp {
		t.Fatalf("topup must be self-referential: %+v", record)
	}

	if _, _, err := l.TopUp(ctx, user, 0); err != ErrInvalidAmount {
		t.Fatalf("expected invalid amount, got %v", err)
	}
}

func TestInMemoryLedger_HistoryNewestFirstWithDirections(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	renter := uuid.NewString()
	owner := uuid.NewString()
	l.EnsureWallet(ctx, renter)
	l.EnsureWallet(ctx, owner)

	l.TopUp(ctx, renter, 1_000)
	l.Transfer(ctx, renter, owner, 300, KindBooking)
	l.ForceTransfer(ctx, renter, owner, 750, KindPenalty)

	entries, err := l.History(ctx, renter)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Kind != KindPenalty || entries[1].Kind != KindBooking || entries[2].Kind != KindTopUp {
		t.Fatalf("history not newest first: %+v", entries)
	}
	if entries[0].Direction != DirectionDebit || entries[2].Direction != DirectionCredit {
		t.Fatalf("unexpected directions: %+v", entries)
	}

	ownerEntries, _ := l.History(ctx, owner)
	if len(ownerEntries) != 2 {
		t.Fatalf("expected 2 owner entries, got %d", len(ownerEntries))
	}
	for _, e := range ownerEntries {
		if e.Direction != DirectionCredit {
			t.Fatalf("owner side must be credits: %+v", e)
		}
	}

	// Idempotent read: a second call with no writes in between matches.
	again, _ := l.History(ctx, renter)
	if len(again) != len(entries) || again[0].ID != entries[0].ID {
		t.Fatalf("history not stable across reads")
	}
}

func TestInMemoryLedger_ConcurrentTransfersConserveTotal(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	renter := uuid.NewString()
	owner := uuid.NewString()
	l.EnsureWallet(ctx, renter)
	l.EnsureWallet(ctx, owner)
	SeedBalance(l, renter, 100_000)

	const workers = 10
	const amount = int64(500)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := l.Transfer(ctx, renter, owner, amount, KindBooking); err != nil {
				t.Errorf("transfer %s failed: %v", fmt.Sprint(i), err)
			}
		}(i)
	}
	wg.Wait()

	fromBal, _ := l.Balance(ctx, renter)
	toBal, _ := l.Balance(ctx, owner)
	if fromBal+toBal != 100_000 {
		t.Fatalf("ledger not balanced after concurrency, total=%d", fromBal+toBal)
	}
	if toBal != workers*amount {
		t.Fatalf("expected owner balance %d, got %d", workers*amount, toBal)
	}
}
