package entity

import "time"

// SubmissionStatus is the admission decision for a submitted command.
// PENDING is the only non-terminal status and is reachable only when the
// gateway's default no-match policy is configured to hold for review.
type SubmissionStatus string

const (
	StatusAccepted SubmissionStatus = "accepted"
	StatusRejected SubmissionStatus = "rejected"
	StatusPending  SubmissionStatus = "pending"
)

// Submission is one submitted command and its decision. Immutable once
// written, except that a PENDING submission may later be resolved exactly
// once to a terminal status.
type Submission struct {
	ID               string           `json:"id"`
	PrincipalID      string           `json:"user_id"`
	CommandText      string           `json:"command_text"`
	Status           SubmissionStatus `json:"status"`
	MatchedRuleID    string           `json:"matched_rule_id,omitempty"`
	CreditsDeducted  int64            `json:"credits_deducted"`
	RejectionReason  string           `json:"rejection_reason,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

func NewSubmission(id, principalID, commandText string) *Submission {
	return &Submission{
		ID:          id,
		PrincipalID: principalID,
		CommandText: commandText,
		CreatedAt:   time.Now().UTC(),
	}
}
