// Package rules administers the ordered admission rule set.
package rules

import (
	"context"
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/cmdgate/cmdgate/application/port/inbound"
	"github.com/cmdgate/cmdgate/application/port/outbound"
	"github.com/cmdgate/cmdgate/domain"
	"github.com/cmdgate/cmdgate/domain/entity"
	"github.com/cmdgate/cmdgate/infrastructure/service/logger"
)

type UseCase struct {
	rules outbound.RuleRepository
	audit outbound.AuditRepository
	log   logger.Logger
}

func NewUseCase(rules outbound.RuleRepository, audit outbound.AuditRepository, log logger.Logger) *UseCase {
	return &UseCase{rules: rules, audit: audit, log: log}
}

// Create validates the pattern, appends the rule at the end of the
// evaluation order, and audits the change attributed to the acting
// administrator. Invalid patterns are rejected before anything is stored.
func (uc *UseCase) Create(ctx context.Context, actorID string, req inbound.CreateRuleRequest) (*entity.Rule, error) {
	if req.Pattern == "" {
		return nil, domain.ErrInvalidPattern
	}
	if _, err := regexp.Compile(req.Pattern); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPattern, err)
	}
	if !req.Action.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAction, req.Action)
	}

	rule := entity.NewRule(uuid.New().String(), req.Pattern, req.Action)
	if err := uc.rules.Create(ctx, rule); err != nil {
		return nil, fmt.Errorf("create rule: %w", err)
	}

	uc.appendAudit(ctx, actorID, entity.AuditRuleCreated,
		fmt.Sprintf("rule %s created: pattern %q action %s", rule.ID, rule.Pattern, rule.Action))
	uc.log.Info(ctx, "rule created", map[string]interface{}{
		"rule_id": rule.ID,
		"action":  string(rule.Action),
	})
	return rule, nil
}

// Delete removes a rule and audits the removal. The remaining rules keep
// their evaluation order.
func (uc *UseCase) Delete(ctx context.Context, actorID, ruleID string) error {
	if err := uc.rules.Delete(ctx, ruleID); err != nil {
		return err
	}
	uc.appendAudit(ctx, actorID, entity.AuditRuleDeleted, fmt.Sprintf("rule %s deleted", ruleID))
	uc.log.Info(ctx, "rule deleted", map[string]interface{}{"rule_id": ruleID})
	return nil
}

// List returns the rules in evaluation order.
func (uc *UseCase) List(ctx context.Context) ([]*entity.Rule, error) {
	return uc.rules.List(ctx)
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

var _ inbound.RuleUseCase = (*UseCase)(nil)
