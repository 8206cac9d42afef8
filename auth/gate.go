// Package auth decides whether an operator may use the administrator menu.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// DefaultMaxAttempts is how many failed logins end an admin session.
const DefaultMaxAttempts = 3

var (
	ErrTooManyAttempts = errors.New("too many failed login attempts")
	ErrNoCredentials   = errors.New("no administrator credentials configured")
)

// Credential is one identity→secret pair. Secret is either plain text or a
// bcrypt hash.
type Credential struct {
	Name   string
	Secret string
}

// Prompter asks the operator for credentials and tells them about rejections.
type Prompter interface {
	Credentials() (identity, secret string, err error)
	Rejected(remaining int)
}

// Gate checks credentials against a fixed table of bcrypt hashes.
type Gate struct {
	hashes      map[string][]byte
	maxAttempts int
}

// NewGate hashes any plain-text secrets in creds. A non-positive maxAttempts
// falls back to DefaultMaxAttempts.
func NewGate(creds []Credential, maxAttempts int) (*Gate, error) {
	if len(creds) == 0 {
		return nil, ErrNoCredentials
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	g := &Gate{hashes: make(map[string][]byte, len(creds)), maxAttempts: maxAttempts}
	for _, c := range creds {
		if c.Name == "" {
			return nil, errors.New("credential with empty name")
		}
		hash, err := hashSecret(c.Secret)
		if err != nil {
			return nil, fmt.Errorf("credential %q: %w", c.Name, err)
		}
		g.hashes[c.Name] = hash
	}
	return g, nil
}

func hashSecret(secret string) ([]byte, error) {
	if isBcryptHash(secret) {
		if _, err := bcrypt.Cost([]byte(secret)); err != nil {
			return nil, err
		}
		return []byte(secret), nil
	}
	return bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
}

func isBcryptHash(s string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// MaxAttempts returns the number of tries Login allows.
func (g *Gate) MaxAttempts() int { return g.maxAttempts }

// Authenticate reports whether secret belongs to identity.
func (g *Gate) Authenticate(identity, secret string) bool {
	hash, ok := g.hashes[identity]
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(secret)) == nil
}

// Login prompts until the operator authenticates or runs out of attempts.
// It returns the authenticated identity.
func (g *Gate) Login(p Prompter) (string, error) {
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		identity, secret, err := p.Credentials()
		if err != nil {
			return "", fmt.Errorf("read credentials: %w", err)
		}
		if g.Authenticate(identity, secret) {
			return identity, nil
		}
		p.Rejected(g.maxAttempts - attempt)
	}
	return "", ErrTooManyAttempts
}
