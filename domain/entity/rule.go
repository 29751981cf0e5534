package entity

import "time"

// RuleAction is what happens to a command matched by a rule.
type RuleAction string

const (
	ActionAutoAccept RuleAction = "AUTO_ACCEPT"
	ActionAutoReject RuleAction = "AUTO_REJECT"
)

// Valid reports whether the action is one of the known actions.
func (a RuleAction) Valid() bool {
	return a == ActionAutoAccept || a == ActionAutoReject
}

// Rule is an ordered pattern/action pair. Position is the evaluation order:
// rules are scanned ascending by position and the first match wins. Position
// is assigned at creation time and never reused or reordered; deleting a
// rule leaves the remaining order unchanged.
type Rule struct {
	ID        string     `json:"id"`
	Pattern   string     `json:"pattern"`
	Action    RuleAction `json:"action"`
	Position  int64      `json:"position"`
	CreatedAt time.Time  `json:"created_at"`
}

func NewRule(id, pattern string, action RuleAction) *Rule {
	return &Rule{
		ID:        id,
		Pattern:   pattern,
		Action:    action,
		CreatedAt: time.Now().UTC(),
	}
}
