// Package users administers principals: creation with one-time key
// issuance, listing, and credit adjustment.
package users

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cmdgate/cmdgate/application/port/inbound"
	"github.com/cmdgate/cmdgate/application/port/outbound"
	"github.com/cmdgate/cmdgate/domain"
	"github.com/cmdgate/cmdgate/domain/entity"
	"github.com/cmdgate/cmdgate/infrastructure/service/logger"
)

type UseCase struct {
	principals outbound.PrincipalRepository
	ledger     outbound.LedgerRepository
	audit      outbound.AuditRepository
	keys       outbound.KeyService
	log        logger.Logger
}

func NewUseCase(
	principals outbound.PrincipalRepository,
	ledger outbound.LedgerRepository,
	audit outbound.AuditRepository,
	keys outbound.KeyService,
	log logger.Logger,
) *UseCase {
	return &UseCase{principals: principals, ledger: ledger, audit: audit, keys: keys, log: log}
}

// Create makes a new principal, grants its initial credits through the
// ledger, and returns the plaintext API key exactly once. Only the key's
// one-way hash is stored.
func (uc *UseCase) Create(ctx context.Context, actorID string, req inbound.CreateUserRequest) (*inbound.CreatedUser, error) {
	if !req.Role.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRole, req.Role)
	}
	if req.Credits < 0 {
		return nil, domain.ErrNegativeCredits
	}

	plaintext, keyID, hash, err := uc.keys.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate api key: %w", err)
	}

	p := entity.NewPrincipal(uuid.New().String(), keyID, hash, req.Role, 0)
	if err := uc.principals.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	balance, err := uc.ledger.Credit(ctx, p.ID, req.Credits)
	if err != nil {
		return nil, fmt.Errorf("grant initial credits: %w", err)
	}

	uc.appendAudit(ctx, actorID, entity.AuditUserCreated,
		fmt.Sprintf("user %s created with role %s and %d credits", p.ID, p.Role, balance))
	uc.log.Info(ctx, "user created", map[string]interface{}{
		"user_id": p.ID,
		"role":    string(p.Role),
	})

	return &inbound.CreatedUser{
		ID:      p.ID,
		Role:    p.Role,
		Credits: balance,
		APIKey:  plaintext,
	}, nil
}

// List returns all principals with their current balances.
func (uc *UseCase) List(ctx context.Context) ([]*entity.Principal, error) {
	principals, err := uc.principals.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range principals {
		balance, err := uc.ledger.Balance(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("read balance for %s: %w", p.ID, err)
		}
		p.Credits = balance
	}
	return principals, nil
}

// Get returns one principal with its current balance.
func (uc *UseCase) Get(ctx context.Context, id string) (*entity.Principal, error) {
	p, err := uc.principals.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	balance, err := uc.ledger.Balance(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("read balance for %s: %w", p.ID, err)
	}
	p.Credits = balance
	return p, nil
}

// SetCredits overwrites a principal's balance and audits the old and new
// values, attributed to the acting administrator.
func (uc *UseCase) SetCredits(ctx context.Context, actorID, principalID string, credits int64) (int64, error) {
	if credits < 0 {
		return 0, domain.ErrNegativeCredits
	}
	if _, err := uc.principals.FindByID(ctx, principalID); err != nil {
		return 0, err
	}
	prev, err := uc.ledger.SetBalance(ctx, principalID, credits)
	if err != nil {
		return 0, fmt.Errorf("set balance: %w", err)
	}

	uc.appendAudit(ctx, actorID, entity.AuditCreditsAdjusted,
		fmt.Sprintf("credits for user %s adjusted from %d to %d", principalID, prev, credits))
	uc.log.Info(ctx, "credits adjusted", map[string]interface{}{
		"user_id":  principalID,
		"previous": prev,
		"credits":  credits,
	})
	return credits, nil
}

func (uc *UseCase) appendAudit(ctx context.Context, actorID, action, details string) {
	entry := entity.NewAuditEntry(uuid.New().String(), actorID, action, details)
	if err := uc.audit.Append(ctx, entry); err != nil {
		uc.log.Error(ctx, "audit append failed", err, map[string]interface{}{
			"actor_id": actorID,
			"action":   action,
		})
	}
}

var _ inbound.UserUseCase = (*UseCase)(nil)
