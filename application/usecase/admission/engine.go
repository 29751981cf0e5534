// Package admission implements the admission engine: ordered rule
// evaluation, credit deduction, and audit recording for every submitted
// command.
package admission

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/cmdgate/cmdgate/application/port/inbound"
	"github.com/cmdgate/cmdgate/application/port/outbound"
	"github.com/cmdgate/cmdgate/domain"
	"github.com/cmdgate/cmdgate/domain/entity"
	"github.com/cmdgate/cmdgate/infrastructure/service/logger"
)

// DefaultPolicy is what happens to a command no rule matches.
type DefaultPolicy string

const (
	// PolicyReject fails closed: unmatched commands are rejected.
	PolicyReject DefaultPolicy = "reject"
	// PolicyPending holds unmatched commands for manual review.
	PolicyPending DefaultPolicy = "pending"
)

// Rejection reasons recorded on submissions and audit entries.
const (
	ReasonRuleReject          = "matched auto-reject rule"
	ReasonInsufficientCredits = "insufficient credits"
	ReasonNoMatchingRule      = "no matching rule"
)

// Engine decides, per submitted command, whether it is accepted, rejected,
// or held for review. Every call writes exactly one submission row and one
// audit entry, whatever the outcome.
type Engine struct {
	rules       outbound.RuleRepository
	ledger      outbound.LedgerRepository
	submissions outbound.SubmissionRepository
	audit       outbound.AuditRepository
	log         logger.Logger

	commandCost   int64
	defaultPolicy DefaultPolicy
}

func NewEngine(
	rules outbound.RuleRepository,
	ledger outbound.LedgerRepository,
	submissions outbound.SubmissionRepository,
	audit outbound.AuditRepository,
	log logger.Logger,
	commandCost int64,
	defaultPolicy DefaultPolicy,
) *Engine {
	if defaultPolicy != PolicyPending {
		defaultPolicy = PolicyReject
	}
	return &Engine{
		rules:         rules,
		ledger:        ledger,
		submissions:   submissions,
		audit:         audit,
		log:           log,
		commandCost:   commandCost,
		defaultPolicy: defaultPolicy,
	}
}

// Submit runs the admission pipeline for one command:
//
//  1. empty command text fails before any rule or ledger interaction
//  2. first matching rule (creation order) classifies the command
//  3. AUTO_REJECT rejects without touching the ledger
//  4. AUTO_ACCEPT debits the fixed cost; a failed debit downgrades the
//     decision to rejected rather than erroring
//  5. no match applies the configured default policy
//
// The decision, the matched rule (if any), and the resulting balance are
// recorded on the submission and in the audit trail before returning.
func (e *Engine) Submit(ctx context.Context, principalID, commandText string) (*inbound.Decision, error) {
	if strings.TrimSpace(commandText) == "" {
		e.appendAudit(ctx, principalID, entity.AuditCommandRejected, "rejected empty command text")
		return nil, domain.ErrInvalidCommand
	}

	rule, err := e.rules.MatchFirst(ctx, commandText)
	if err != nil {
		e.appendAudit(ctx, principalID, entity.AuditCommandRejected,
			fmt.Sprintf("rule evaluation failed for %q: %v", commandText, err))
		return nil, fmt.Errorf("rule evaluation: %w", err)
	}

	sub := entity.NewSubmission(uuid.New().String(), principalID, commandText)
	decision := &inbound.Decision{SubmissionID: sub.ID}

	switch {
	case rule != nil && rule.Action == entity.ActionAutoReject:
		sub.Status = entity.StatusRejected
		sub.MatchedRuleID = rule.ID
		sub.RejectionReason = ReasonRuleReject
		decision.MatchedRuleID = rule.ID
		decision.Reason = ReasonRuleReject

	case rule != nil && rule.Action == entity.ActionAutoAccept:
		sub.MatchedRuleID = rule.ID
		decision.MatchedRuleID = rule.ID
		newBalance, debitErr := e.ledger.TryDebit(ctx, principalID, e.commandCost)
		switch {
		case debitErr == nil:
			sub.Status = entity.StatusAccepted
			sub.CreditsDeducted = e.commandCost
			decision.NewBalance = &newBalance
		case errors.Is(debitErr, domain.ErrInsufficientCredits):
			// An expected business outcome, not an error: the
			// submission is rejected and the balance is untouched.
			sub.Status = entity.StatusRejected
			sub.RejectionReason = ReasonInsufficientCredits
			decision.Reason = ReasonInsufficientCredits
		default:
			e.log.Error(ctx, "ledger debit failed", debitErr, map[string]interface{}{
				"principal_id": principalID,
			})
			e.appendAudit(ctx, principalID, entity.AuditCommandRejected,
				fmt.Sprintf("ledger debit failed for %q: %v", commandText, debitErr))
			return nil, fmt.Errorf("ledger debit: %w", debitErr)
		}

	default: // no rule matched
		if e.defaultPolicy == PolicyPending {
			sub.Status = entity.StatusPending
		} else {
			sub.Status = entity.StatusRejected
			sub.RejectionReason = ReasonNoMatchingRule
			decision.Reason = ReasonNoMatchingRule
		}
	}

	decision.Status = sub.Status

	if err := e.submissions.Create(ctx, sub); err != nil {
		e.appendAudit(ctx, principalID, entity.AuditCommandRejected,
			fmt.Sprintf("failed to persist submission for %q: %v", commandText, err))
		return nil, fmt.Errorf("persist submission: %w", err)
	}
	e.appendAudit(ctx, principalID, auditAction(sub.Status), auditDetails(sub))

	e.log.Info(ctx, "command decided", map[string]interface{}{
		"submission_id": sub.ID,
		"principal_id":  principalID,
		"status":        string(sub.Status),
		"rule_id":       sub.MatchedRuleID,
	})
	return decision, nil
}

// ListOwn returns the principal's own submissions, newest first.
func (e *Engine) ListOwn(ctx context.Context, principalID string) ([]*entity.Submission, error) {
	return e.submissions.ListByPrincipal(ctx, principalID)
}

func (e *Engine) appendAudit(ctx context.Context, principalID, action, details string) {
	entry := entity.NewAuditEntry(uuid.New().String(), principalID, action, details)
	if err := e.audit.Append(ctx, entry); err != nil {
		// The audit trail is the authoritative record; a failed append
		// must be visible, never swallowed.
		e.log.Error(ctx, "audit append failed", err, map[string]interface{}{
			"principal_id": principalID,
			"action":       action,
		})
	}
}

func auditAction(status entity.SubmissionStatus) string {
	switch status {
	case entity.StatusAccepted:
		return entity.AuditCommandAccepted
	case entity.StatusPending:
		return entity.AuditCommandPending
	default:
		return entity.AuditCommandRejected
	}
}

func auditDetails(sub *entity.Submission) string {
	switch sub.Status {
	case entity.StatusAccepted:
		return fmt.Sprintf("command %q accepted by rule %s, %d credits deducted",
			sub.CommandText, sub.MatchedRuleID, sub.CreditsDeducted)
	case entity.StatusPending:
		return fmt.Sprintf("command %q held for review: no matching rule", sub.CommandText)
	default:
		if sub.MatchedRuleID != "" {
			return fmt.Sprintf("command %q rejected by rule %s: %s",
				sub.CommandText, sub.MatchedRuleID, sub.RejectionReason)
		}
		return fmt.Sprintf("command %q rejected: %s", sub.CommandText, sub.RejectionReason)
	}
}
