package outbound

import (
	"context"

	"github.com/cmdgate/cmdgate/domain/entity"
)

// PrincipalRepository is the durable directory of principals. Principals are
// never deleted, only created and read; balances are mutated only through
// the LedgerRepository.
type PrincipalRepository interface {
	Create(ctx context.Context, p *entity.Principal) error
	FindByID(ctx context.Context, id string) (*entity.Principal, error)
	// FindByKeyID resolves the public half of an API key to its
	// principal. Returns domain.ErrPrincipalNotFound if no key matches.
	FindByKeyID(ctx context.Context, keyID string) (*entity.Principal, error)
	List(ctx context.Context) ([]*entity.Principal, error)
}

// LedgerRepository mutates credit balances. It is the only place balances
// change, and every mutation is atomic per principal: under any interleaving
// of concurrent TryDebit calls for one principal the balance reflects some
// total order of the debits, none lost, none double-applied, never negative.
// Operations on different principals may proceed in parallel.
type LedgerRepository interface {
	Balance(ctx context.Context, principalID string) (int64, error)
	// TryDebit atomically checks balance >= amount and applies the debit.
	// On failure it returns domain.ErrInsufficientCredits and leaves the
	// balance unchanged.
	TryDebit(ctx context.Context, principalID string, amount int64) (int64, error)
	// Credit applies an unconditional top-up (amount >= 0).
	Credit(ctx context.Context, principalID string, amount int64) (int64, error)
	// SetBalance overwrites the balance with an absolute value and
	// returns the previous balance. Administrative operation.
	SetBalance(ctx context.Context, principalID string, credits int64) (int64, error)
}

// RuleRepository holds the ordered admission rule set. List and MatchFirst
// observe snapshot semantics: a scan sees the rule list either before or
// after a concurrent mutation in full, never a partial splice.
type RuleRepository interface {
	// Create appends the rule at the end of the evaluation order and
	// assigns its position. The pattern has already been compile-checked.
	Create(ctx context.Context, r *entity.Rule) error
	// Delete removes a rule. Remaining rules keep their positions.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*entity.Rule, error)
	// MatchFirst returns the first rule, in evaluation order, whose
	// pattern matches the command text (regular-expression search over
	// the raw string), or nil if no rule matches.
	MatchFirst(ctx context.Context, commandText string) (*entity.Rule, error)
}

// SubmissionRepository stores command submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, s *entity.Submission) error
	// ListByPrincipal returns the principal's submissions, newest first.
	ListByPrincipal(ctx context.Context, principalID string) ([]*entity.Submission, error)
}

// AuditRepository is the append-only audit trail. Append must complete
// before the corresponding API response is acknowledged; entries are never
// mutated or deleted.
type AuditRepository interface {
	Append(ctx context.Context, e *entity.AuditEntry) error
	// List returns all entries, newest first.
	List(ctx context.Context) ([]*entity.AuditEntry, error)
}
