// Package audit exposes read access to the append-only audit trail.
package audit

import (
	"context"

	"github.com/cmdgate/cmdgate/application/port/inbound"
	"github.com/cmdgate/cmdgate/application/port/outbound"
	"github.com/cmdgate/cmdgate/domain/entity"
)

type UseCase struct {
	audit outbound.AuditRepository
}

func NewUseCase(audit outbound.AuditRepository) *UseCase {
	return &UseCase{audit: audit}
}

// List returns all audit entries, newest first.
func (uc *UseCase) List(ctx context.Context) ([]*entity.AuditEntry, error) {
	return uc.audit.List(ctx)
}

var _ inbound.AuditUseCase = (*UseCase)(nil)
