// Package domain holds the gateway's core entities and sentinel errors.
package domain

import "errors"

var (
	// ErrUnauthorized means the request carried no credential or an
	// unverifiable one.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden means the principal is valid but lacks the role the
	// operation requires.
	ErrForbidden = errors.New("forbidden: admin role required")

	// ErrInvalidCommand means the submitted command text is empty or
	// otherwise malformed.
	ErrInvalidCommand = errors.New("invalid command text")

	// ErrInvalidPattern means a rule pattern failed to compile as a
	// regular expression. Invalid patterns are rejected before insertion.
	ErrInvalidPattern = errors.New("invalid rule pattern")

	// ErrInvalidAction means a rule's action is not one of the known
	// actions.
	ErrInvalidAction = errors.New("invalid rule action")

	// ErrInvalidRole means the requested role is not one of the known
	// roles.
	ErrInvalidRole = errors.New("invalid role")

	// ErrNegativeCredits means a credit amount was negative where only
	// non-negative values are allowed.
	ErrNegativeCredits = errors.New("credits must be non-negative")

	// ErrInsufficientCredits is returned by the ledger when a debit would
	// drive the balance negative. The balance is left unchanged. At the
	// gateway this is an expected business outcome (a rejected
	// submission), not a hard error.
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrRuleNotFound means the referenced rule does not exist.
	ErrRuleNotFound = errors.New("rule not found")

	// ErrPrincipalNotFound means the referenced user does not exist.
	ErrPrincipalNotFound = errors.New("user not found")
)
