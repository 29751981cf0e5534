package outbound

import "time"

// KeyService issues and verifies opaque API keys. The plaintext key exists
// only at issuance; persistence sees the (keyID, hash) pair.
type KeyService interface {
	// Generate returns a fresh key in its plaintext form together with
	// its public lookup half and the one-way hash of its secret half.
	Generate() (plaintext, keyID, hash string, err error)
	// Parse splits a presented plaintext key into its lookup and secret
	// halves. An error means the key is malformed.
	Parse(plaintext string) (keyID, secret string, err error)
	// Verify compares a secret against a stored hash.
	Verify(secret, hash string) bool
}

// TokenClaims is the subject carried by a session token.
type TokenClaims struct {
	PrincipalID string
	Role        string
}

// TokenService issues and validates short-lived session tokens that stand
// in for an API key on subsequent requests.
type TokenService interface {
	Issue(claims TokenClaims, ttl time.Duration) (string, error)
	Validate(token string) (*TokenClaims, error)
}
