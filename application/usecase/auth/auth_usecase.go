// Package auth authenticates API keys and session tokens and issues the
// latter in exchange for the former.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/cmdgate/cmdgate/application/port/inbound"
	"github.com/cmdgate/cmdgate/application/port/outbound"
	"github.com/cmdgate/cmdgate/domain"
	"github.com/cmdgate/cmdgate/domain/entity"
	"github.com/cmdgate/cmdgate/infrastructure/service/logger"
)

type UseCase struct {
	principals outbound.PrincipalRepository
	ledger     outbound.LedgerRepository
	keys       outbound.KeyService
	tokens     outbound.TokenService
	tokenTTL   time.Duration
	log        logger.Logger
}

func NewUseCase(
	principals outbound.PrincipalRepository,
	ledger outbound.LedgerRepository,
	keys outbound.KeyService,
	tokens outbound.TokenService,
	tokenTTL time.Duration,
	log logger.Logger,
) *UseCase {
	return &UseCase{
		principals: principals,
		ledger:     ledger,
		keys:       keys,
		tokens:     tokens,
		tokenTTL:   tokenTTL,
		log:        log,
	}
}

// AuthenticateKey resolves a plaintext API key to its principal. The key's
// public half locates the record, the secret half is verified against the
// stored hash. Any failure collapses to ErrUnauthorized; callers learn
// nothing about which half failed.
func (uc *UseCase) AuthenticateKey(ctx context.Context, apiKey string) (*entity.Principal, error) {
	keyID, secret, err := uc.keys.Parse(apiKey)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	p, err := uc.principals.FindByKeyID(ctx, keyID)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !uc.keys.Verify(secret, p.KeyHash) {
		uc.log.Warn(ctx, "api key verification failed", map[string]interface{}{
			"key_id": keyID,
		})
		return nil, domain.ErrUnauthorized
	}
	return uc.withBalance(ctx, p)
}

// AuthenticateToken resolves a bearer session token to its principal.
func (uc *UseCase) AuthenticateToken(ctx context.Context, token string) (*entity.Principal, error) {
	claims, err := uc.tokens.Validate(token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	p, err := uc.principals.FindByID(ctx, claims.PrincipalID)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	return uc.withBalance(ctx, p)
}

// IssueToken returns a short-lived bearer token for an authenticated
// principal.
func (uc *UseCase) IssueToken(ctx context.Context, principal *entity.Principal) (string, error) {
	token, err := uc.tokens.Issue(outbound.TokenClaims{
		PrincipalID: principal.ID,
		Role:        string(principal.Role),
	}, uc.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

func (uc *UseCase) withBalance(ctx context.Context, p *entity.Principal) (*entity.Principal, error) {
	balance, err := uc.ledger.Balance(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("read balance for %s: %w", p.ID, err)
	}
	p.Credits = balance
	return p, nil
}

var _ inbound.AuthUseCase = (*UseCase)(nil)
