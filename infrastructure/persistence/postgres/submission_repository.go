package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cmdgate/cmdgate/application/port/outbound"
	"github.com/cmdgate/cmdgate/domain/entity"
)

type SubmissionRepository struct {
	db *sql.DB
}

func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func (r *SubmissionRepository) Create(ctx context.Context, s *entity.Submission) error {
	query := `
		INSERT INTO submissions
			(id, principal_id, command_text, status, matched_rule_id, credits_deducted, rejection_reason, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, NULLIF($7, ''), $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.PrincipalID, s.CommandText, s.Status,
		s.MatchedRuleID, s.CreditsDeducted, s.RejectionReason, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

func (r *SubmissionRepository) ListByPrincipal(ctx context.Context, principalID string) ([]*entity.Submission, error) {
	query := `
		SELECT id, principal_id, command_text, status,
			COALESCE(matched_rule_id, ''), credits_deducted,
			COALESCE(rejection_reason, ''), created_at
		FROM submissions
		WHERE principal_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, principalID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var out []*entity.Submission
	for rows.Next() {
		var s entity.Submission
		if err := rows.Scan(&s.ID, &s.PrincipalID, &s.CommandText, &s.Status,
			&s.MatchedRuleID, &s.CreditsDeducted, &s.RejectionReason, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

var _ outbound.SubmissionRepository = (*SubmissionRepository)(nil)
