package entity

import "time"

// Audit action labels. One of these appears on every audit entry.
const (
	AuditCommandAccepted = "command.accepted"
	AuditCommandRejected = "command.rejected"
	AuditCommandPending  = "command.pending"
	AuditRuleCreated     = "rule.created"
	AuditRuleDeleted     = "rule.deleted"
	AuditUserCreated     = "user.created"
	AuditCreditsAdjusted = "credits.adjusted"
)

// AuditEntry is one immutable row in the append-only audit trail. Entries
// are never mutated or deleted; they are the authoritative record of every
// admission decision and administrative change.
type AuditEntry struct {
	ID          string    `json:"id"`
	PrincipalID string    `json:"user_id"`
	Action      string    `json:"action"`
	Details     string    `json:"details"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewAuditEntry(id, principalID, action, details string) *AuditEntry {
	return &AuditEntry{
		ID:          id,
		PrincipalID: principalID,
		Action:      action,
		Details:     details,
		CreatedAt:   time.Now().UTC(),
	}
}
