// Package apikey issues and verifies the gateway's opaque API keys.
//
// A key looks like cgk_<keyid>_<secret>. The keyid half is stored in clear
// and used for lookup; the secret half is stored only as a bcrypt hash, so
// a leaked directory cannot be replayed as credentials.
package apikey

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/cmdgate/cmdgate/application/port/outbound"
)

const keyPrefix = "cgk"

type Service struct {
	cost int
}

func NewService(cost int) *Service {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{cost: cost}
}

// Generate returns a fresh key in plaintext together with its lookup half
// and the bcrypt hash of its secret half. The plaintext is never persisted.
func (s *Service) Generate() (plaintext, keyID, hash string, err error) {
	keyID, err = randomHex(8)
	if err != nil {
		return "", "", "", fmt.Errorf("generate key id: %w", err)
	}
	secret, err := randomHex(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate key secret: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), s.cost)
	if err != nil {
		return "", "", "", fmt.Errorf("hash key secret: %w", err)
	}

	return fmt.Sprintf("%s_%s_%s", keyPrefix, keyID, secret), keyID, string(hashed), nil
}

// Parse splits a presented key into its lookup and secret halves.
func (s *Service) Parse(plaintext string) (keyID, secret string, err error) {
	parts := strings.Split(plaintext, "_")
	if len(parts) != 3 || parts[0] != keyPrefix || parts[1] == "" || parts[2] == "" {
		return "", "", fmt.Errorf("malformed api key")
	}
	return parts[1], parts[2], nil
}

// Verify compares a key's secret half against its stored hash.
func (s *Service) Verify(secret, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

var _ outbound.KeyService = (*Service)(nil)
