package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLedger persists wallets and transaction records in PostgreSQL.
type PostgresLedger struct {
	db *pgxpool.Pool
}

// NewPostgresLedger constructs a Postgres-backed ledger implementation.
func NewPostgresLedger(db *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// EnsureWallet guarantees a wallet row exists for the provided user.
func (l *PostgresLedger) EnsureWallet(ctx context.Context, userID string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return err
	}
	_, err = l.db.Exec(ctx, `INSERT INTO wallets (user_id, balance) VALUES ($1, 0)
        ON CONFLICT (user_id) DO NOTHING`, uid)
	return err
}

// Balance returns the current balance for the user's wallet.
func (l *PostgresLedger) Balance(ctx context.Context, userID string) (int64, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return 0, err
	}
	var balance int64
	if err := l.db.QueryRow(ctx, `SELECT balance FROM wallets WHERE user_id = $1`, uid).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrWalletNotFound
		}
		return 0, err
	}
	return balance, nil
}

// TopUp credits the user's wallet and records a self-referential topup
// transaction. There is no corresponding debit anywhere in the system.
func (l *PostgresLedger) TopUp(ctx context.Context, userID string, amount int64) (Transaction, int64, error) {
	if amount <= 0 {
		return Transaction{}, 0, ErrInvalidAmount
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return Transaction{}, 0, err
	}

	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return Transaction{}, 0, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	var balance int64
	err = tx.QueryRow(ctx, `UPDATE wallets SET balance = balance + $1, updated_at = NOW()
        WHERE user_id = $2 RETURNING balance`, amount, uid).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, 0, ErrWalletNotFound
		}
		return Transaction{}, 0, err
	}

	record, err := insertTransactionTx(ctx, tx, uid, uid, amount, KindTopUp)
	if err != nil {
		return Transaction{}, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Transaction{}, 0, err
	}
	return record, balance, nil
}

// Transfer moves funds between two wallets inside its own serializable
// transaction, refusing to overdraw the paying wallet.
func (l *PostgresLedger) Transfer(ctx context.Context, fromUser, toUser string, amount int64, kind string) (Transaction, error) {
	return l.transfer(ctx, fromUser, toUser, amount, kind, true)
}

// ForceTransfer moves funds without the balance floor in its own
// transaction. The settlement engine posts penalties through ForceTransferTx
// inside its unit of work instead; this variant completes the Ledger
// contract for callers outside a settlement, matching the in-memory backend.
func (l *PostgresLedger) ForceTransfer(ctx context.Context, fromUser, toUser string, amount int64, kind string) (Transaction, error) {
	return l.transfer(ctx, fromUser, toUser, amount, kind, false)
}

func (l *PostgresLedger) transfer(ctx context.Context, fromUser, toUser string, amount int64, kind string, enforceFloor bool) (Transaction, error) {
	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return Transaction{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	record, err := transferTx(ctx, tx, fromUser, toUser, amount, kind, enforceFloor)
	if err != nil {
		return Transaction{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Transaction{}, err
	}
	return record, nil
}

// History returns the user's transactions newest first, each tagged with the
// direction of the movement relative to that user.
func (l *PostgresLedger) History(ctx context.Context, userID string) ([]Entry, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, err
	}
	rows, err := l.db.Query(ctx, `SELECT id, from_user, to_user, amount, kind, status, created_at
        FROM transactions
        WHERE from_user = $1 OR to_user = $1
        ORDER BY created_at DESC, id DESC`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			id, from, to uuid.UUID
			t            Transaction
			createdAt    time.Time
		)
		if err := rows.Scan(&id, &from, &to, &t.Amount, &t.Kind, &t.Status, &createdAt); err != nil {
			return nil, err
		}
		t.ID = id.String()
		t.FromUser = from.String()
		t.ToUser = to.String()
		t.CreatedAt = createdAt.UTC()
		entries = append(entries, Entry{Transaction: t, Direction: directionFor(t, userID)})
	}
	return entries, rows.Err()
}

// TransferTx posts a transfer inside the caller's transaction so a larger
// unit of work (the booking engine's) subsumes the wallet mutation.
func TransferTx(ctx context.Context, tx pgx.Tx, fromUser, toUser string, amount int64, kind string) (Transaction, error) {
	return transferTx(ctx, tx, fromUser, toUser, amount, kind, true)
}

// ForceTransferTx is TransferTx without the balance floor.
func ForceTransferTx(ctx context.Context, tx pgx.Tx, fromUser, toUser string, amount int64, kind string) (Transaction, error) {
	return transferTx(ctx, tx, fromUser, toUser, amount, kind, false)
}

func transferTx(ctx context.Context, tx pgx.Tx, fromUser, toUser string, amount int64, kind string, enforceFloor bool) (Transaction, error) {
	if amount <= 0 {
		return Transaction{}, ErrInvalidAmount
	}
	from, err := uuid.Parse(fromUser)
	if err != nil {
		return Transaction{}, err
	}
	to, err := uuid.Parse(toUser)
	if err != nil {
		return Transaction{}, err
	}

	// Payer row is locked first, payee second, in every code path. Keeping
	// that order fixed avoids lock-ordering deadlocks between concurrent
	// settlements.
	if err := lockWallet(ctx, tx, from); err != nil {
		return Transaction{}, err
	}
	if to != from {
		if err := lockWallet(ctx, tx, to); err != nil {
			return Transaction{}, err
		}
	}

	debit := `UPDATE wallets SET balance = balance - $1, updated_at = NOW() WHERE user_id = $2`
	if enforceFloor {
		debit += ` AND balance >= $1`
	}
	cmd, err := tx.Exec(ctx, debit, amount, from)
	if err != nil {
		return Transaction{}, err
	}
	if cmd.RowsAffected() == 0 {
		return Transaction{}, ErrInsufficientFunds
	}

	if _, err := tx.Exec(ctx, `UPDATE wallets SET balance = balance + $1, updated_at = NOW()
        WHERE user_id = $2`, amount, to); err != nil {
		return Transaction{}, err
	}

	return insertTransactionTx(ctx, tx, from, to, amount, kind)
}

func lockWallet(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	var one int
	if err := tx.QueryRow(ctx, `SELECT 1 FROM wallets WHERE user_id = $1 FOR UPDATE`, userID).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrWalletNotFound
		}
		return err
	}
	return nil
}

func insertTransactionTx(ctx context.Context, tx pgx.Tx, from, to uuid.UUID, amount int64, kind string) (Transaction, error) {
	id := uuid.New()
	now := time.Now().UTC()
	if _, err := tx.Exec(ctx, `INSERT INTO transactions (id, from_user, to_user, amount, kind, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`, id, from, to, amount, kind, StatusSuccess, now); err != nil {
		return Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	return Transaction{
		ID:        id.String(),
		FromUser:  from.String(),
		ToUser:    to.String(),
		Amount:    amount,
		Kind:      kind,
		Status:    StatusSuccess,
		CreatedAt: now,
	}, nil
}

func directionFor(t Transaction, userID string) string {
	if t.ToUser == userID {
		return DirectionCredit
	}
	return DirectionDebit
}
