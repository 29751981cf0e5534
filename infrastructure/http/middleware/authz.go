package middleware

import "github.com/cmdgate/cmdgate/domain/entity"

// Operation names every role-checked operation the gateway exposes. Routes
// declare their operation and the single Allowed policy decides, so no
// handler carries its own role check.
type Operation string

const (
	OpSelfLookup      Operation = "user.self"
	OpIssueToken      Operation = "auth.token"
	OpSubmitCommand   Operation = "command.submit"
	OpListOwnCommands Operation = "command.list"

	OpListRules     Operation = "rule.list"
	OpCreateRule    Operation = "rule.create"
	OpDeleteRule    Operation = "rule.delete"
	OpListUsers     Operation = "user.list"
	OpCreateUser    Operation = "user.create"
	OpAdjustCredits Operation = "user.credits"
	OpReadAudit     Operation = "audit.read"
)

// Allowed is the authorization policy: administrative operations require
// the admin role, everything else any valid principal.
func Allowed(role entity.Role, op Operation) bool {
	switch op {
	case OpSelfLookup, OpIssueToken, OpSubmitCommand, OpListOwnCommands:
		return role.Valid()
	case OpListRules, OpCreateRule, OpDeleteRule, OpListUsers, OpCreateUser, OpAdjustCredits, OpReadAudit:
		return role == entity.RoleAdmin
	default:
		return false
	}
}
