package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cmdgate/cmdgate/application/port/outbound"
	"github.com/cmdgate/cmdgate/domain"
)

// LedgerRepository stores balances on the principals row. Debits rely on a
// single conditional UPDATE, so the check-and-mutate is atomic at the
// database regardless of gateway concurrency.
type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) Balance(ctx context.Context, principalID string) (int64, error) {
	var credits int64
	err := r.db.QueryRowContext(ctx,
		`SELECT credits FROM principals WHERE id = $1`, principalID).Scan(&credits)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrPrincipalNotFound
		}
		return 0, fmt.Errorf("read balance: %w", err)
	}
	return credits, nil
}

func (r *LedgerRepository) TryDebit(ctx context.Context, principalID string, amount int64) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("debit amount must be non-negative, got %d", amount)
	}

	var credits int64
	err := r.db.QueryRowContext(ctx, `
		UPDATE principals SET credits = credits - $2
		WHERE id = $1 AND credits >= $2
		RETURNING credits
	`, principalID, amount).Scan(&credits)
	if err == nil {
		return credits, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("debit: %w", err)
	}

	// No row updated: either the principal is unknown or the balance was
	// too low. Distinguish so the caller sees the right failure.
	balance, berr := r.Balance(ctx, principalID)
	if berr != nil {
		return 0, berr
	}
	return balance, domain.ErrInsufficientCredits
}

func (r *LedgerRepository) Credit(ctx context.Context, principalID string, amount int64) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("credit amount must be non-negative, got %d", amount)
	}

	var credits int64
	err := r.db.QueryRowContext(ctx, `
		UPDATE principals SET credits = credits + $2
		WHERE id = $1
		RETURNING credits
	`, principalID, amount).Scan(&credits)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrPrincipalNotFound
		}
		return 0, fmt.Errorf("credit: %w", err)
	}
	return credits, nil
}

// SetBalance overwrites the balance inside a transaction so the previous
// value it reports is the one actually replaced.
func (r *LedgerRepository) SetBalance(ctx context.Context, principalID string, credits int64) (int64, error) {
	if credits < 0 {
		return 0, fmt.Errorf("balance must be non-negative, got %d", credits)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var prev int64
	err = tx.QueryRowContext(ctx,
		`SELECT credits FROM principals WHERE id = $1 FOR UPDATE`, principalID).Scan(&prev)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrPrincipalNotFound
		}
		return 0, fmt.Errorf("lock balance: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE principals SET credits = $2 WHERE id = $1`, principalID, credits); err != nil {
		return 0, fmt.Errorf("set balance: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return prev, nil
}

var _ outbound.LedgerRepository = (*LedgerRepository)(nil)
