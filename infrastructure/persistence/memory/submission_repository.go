package memory

import (
	"context"
	"sync"

	"github.com/cmdgate/cmdgate/application/port/outbound"
	"github.com/cmdgate/cmdgate/domain/entity"
)

type SubmissionRepository struct {
	mu          sync.RWMutex
	byPrincipal map[string][]*entity.Submission
}

func NewSubmissionRepository() *SubmissionRepository {
	return &SubmissionRepository{byPrincipal: make(map[string][]*entity.Submission)}
}

func (r *SubmissionRepository) Create(ctx context.Context, s *entity.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.byPrincipal[s.PrincipalID] = append(r.byPrincipal[s.PrincipalID], &cp)
	return nil
}

// ListByPrincipal returns the principal's submissions, newest first.
func (r *SubmissionRepository) ListByPrincipal(ctx context.Context, principalID string) ([]*entity.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored := r.byPrincipal[principalID]
	out := make([]*entity.Submission, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		cp := *stored[i]
		out = append(out, &cp)
	}
	return out, nil
}

var _ outbound.SubmissionRepository = (*SubmissionRepository)(nil)
