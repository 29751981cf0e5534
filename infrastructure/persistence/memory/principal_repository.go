package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cmdgate/cmdgate/application/port/outbound"
	"github.com/cmdgate/cmdgate/domain"
	"github.com/cmdgate/cmdgate/domain/entity"
)

// PrincipalRepository is the in-memory directory. The stored Principal's
// Credits field mirrors the ledger only at read time; the wiring in
// cmd/server keeps the ledger authoritative.
type PrincipalRepository struct {
	mu      sync.RWMutex
	byID    map[string]*entity.Principal
	byKeyID map[string]string // keyID -> principal id
}

func NewPrincipalRepository() *PrincipalRepository {
	return &PrincipalRepository{
		byID:    make(map[string]*entity.Principal),
		byKeyID: make(map[string]string),
	}
}

func (r *PrincipalRepository) Create(ctx context.Context, p *entity.Principal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.byID[p.ID] = &cp
	r.byKeyID[p.KeyID] = p.ID
	return nil
}

func (r *PrincipalRepository) FindByID(ctx context.Context, id string) (*entity.Principal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrPrincipalNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *PrincipalRepository) FindByKeyID(ctx context.Context, keyID string) (*entity.Principal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byKeyID[keyID]
	if !ok {
		return nil, domain.ErrPrincipalNotFound
	}
	cp := *r.byID[id]
	return &cp, nil
}

func (r *PrincipalRepository) List(ctx context.Context) ([]*entity.Principal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.Principal, 0, len(r.byID))
	for _, p := range r.byID {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

var _ outbound.PrincipalRepository = (*PrincipalRepository)(nil)
