package memory

import (
	"context"
	"sync"

	"github.com/cmdgate/cmdgate/application/port/outbound"
	"github.com/cmdgate/cmdgate/domain/entity"
)

// AuditRepository is the in-memory append-only audit trail. Entries are
// copied on the way in and out so callers can never mutate a stored entry.
type AuditRepository struct {
	mu      sync.RWMutex
	entries []*entity.AuditEntry
}

func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

func (r *AuditRepository) Append(ctx context.Context, e *entity.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.entries = append(r.entries, &cp)
	return nil
}

// List returns all entries, newest first.
func (r *AuditRepository) List(ctx context.Context) ([]*entity.AuditEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.AuditEntry, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		cp := *r.entries[i]
		out = append(out, &cp)
	}
	return out, nil
}

var _ outbound.AuditRepository = (*AuditRepository)(nil)
