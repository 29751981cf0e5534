package inbound

import (
	"context"

	"github.com/cmdgate/cmdgate/domain/entity"
)

// Decision is the outcome of one command submission.
type Decision struct {
	SubmissionID  string                  `json:"id"`
	Status        entity.SubmissionStatus `json:"status"`
	MatchedRuleID string                  `json:"matched_rule_id,omitempty"`
	// NewBalance is set only when credits were deducted.
	NewBalance *int64 `json:"new_balance,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// AdmissionUseCase is the Admission Engine: it classifies a command against
// the rule set, applies the credit cost, and records exactly one submission
// and one audit entry per call.
type AdmissionUseCase interface {
	Submit(ctx context.Context, principalID, commandText string) (*Decision, error)
	ListOwn(ctx context.Context, principalID string) ([]*entity.Submission, error)
}

type CreateRuleRequest struct {
	Pattern string            `json:"pattern"`
	Action  entity.RuleAction `json:"action"`
}

// RuleUseCase administers the ordered rule set. Mutations are attributed to
// the acting administrator and audited.
type RuleUseCase interface {
	Create(ctx context.Context, actorID string, req CreateRuleRequest) (*entity.Rule, error)
	Delete(ctx context.Context, actorID, ruleID string) error
	List(ctx context.Context) ([]*entity.Rule, error)
}

type CreateUserRequest struct {
	Role    entity.Role `json:"role"`
	Credits int64       `json:"credits"`
}

// CreatedUser is the creation response; APIKey is the plaintext credential,
// returned exactly once.
type CreatedUser struct {
	ID      string      `json:"id"`
	Role    entity.Role `json:"role"`
	Credits int64       `json:"credits"`
	APIKey  string      `json:"api_key"`
}

// UserUseCase administers principals and their balances.
type UserUseCase interface {
	Create(ctx context.Context, actorID string, req CreateUserRequest) (*CreatedUser, error)
	List(ctx context.Context) ([]*entity.Principal, error)
	Get(ctx context.Context, id string) (*entity.Principal, error)
	// SetCredits overwrites a principal's balance and returns the new
	// value. Audited with the previous balance.
	SetCredits(ctx context.Context, actorID, principalID string, credits int64) (int64, error)
}

// AuditUseCase reads the audit trail.
type AuditUseCase interface {
	List(ctx context.Context) ([]*entity.AuditEntry, error)
}

// AuthUseCase authenticates credentials and issues session tokens.
type AuthUseCase interface {
	// AuthenticateKey resolves a plaintext API key to its principal or
	// fails with domain.ErrUnauthorized.
	AuthenticateKey(ctx context.Context, apiKey string) (*entity.Principal, error)
	// AuthenticateToken resolves a session token to its principal.
	AuthenticateToken(ctx context.Context, token string) (*entity.Principal, error)
	// IssueToken exchanges an already-authenticated principal for a
	// short-lived bearer token.
	IssueToken(ctx context.Context, principal *entity.Principal) (string, error)
}

// RateLimitService bounds submission throughput per principal.
type RateLimitService interface {
	// Allow reports whether the principal may submit another command in
	// the current window.
	Allow(ctx context.Context, principalID string) (bool, error)
}
