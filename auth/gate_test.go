package auth_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"library-catalog/auth"
)

var admins = []auth.Credential{
	{Name: "Ahmad", Secret: "123"},
	{Name: "Ruden", Secret: "456"},
	{Name: "Zaidan", Secret: "789"},
}

type attempt struct{ identity, secret string }

// scripted replays a fixed list of login attempts.
type scripted struct {
	attempts  []attempt
	next      int
	remaining []int
}

func (s *scripted) Credentials() (string, string, error) {
	if s.next >= len(s.attempts) {
		return "", "", errors.New("no more input")
	}
	a := s.attempts[s.next]
	s.next++
	return a.identity, a.secret, nil
}

func (s *scripted) Rejected(remaining int) { s.remaining = append(s.remaining, remaining) }

func TestAuthenticate(t *testing.T) {
	g, err := auth.NewGate(admins, 0)
	require.NoError(t, err)

	assert.True(t, g.Authenticate("Ahmad", "123"))
	assert.True(t, g.Authenticate("Zaidan", "789"))
	assert.False(t, g.Authenticate("Ahmad", "456"))
	assert.False(t, g.Authenticate("ahmad", "123"))
	assert.False(t, g.Authenticate("Nobody", "123"))
	assert.Equal(t, auth.DefaultMaxAttempts, g.MaxAttempts())
}

func TestNewGate_AcceptsBcryptHashes(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	g, err := auth.NewGate([]auth.Credential{{Name: "librarian", Secret: string(hash)}}, 3)
	require.NoError(t, err)

	assert.True(t, g.Authenticate("librarian", "s3cret"))
	assert.False(t, g.Authenticate("librarian", string(hash)))
}

func TestNewGate_Rejects(t *testing.T) {
	_, err := auth.NewGate(nil, 3)
	assert.ErrorIs(t, err, auth.ErrNoCredentials)

	_, err = auth.NewGate([]auth.Credential{{Name: "", Secret: "x"}}, 3)
	assert.Error(t, err)

	_, err = auth.NewGate([]auth.Credential{{Name: "broken", Secret: "$2a$xx"}}, 3)
	assert.Error(t, err)
}

func TestLogin(t *testing.T) {
	g, err := auth.NewGate(admins, 3)
	require.NoError(t, err)

	t.Run("succeeds on third attempt", func(t *testing.T) {
		p := &scripted{attempts: []attempt{{"Ahmad", "x"}, {"Ruden", "123"}, {"Ruden", "456"}}}
		who, err := g.Login(p)
		require.NoError(t, err)
		assert.Equal(t, "Ruden", who)
		assert.Equal(t, []int{2, 1}, p.remaining)
	})

	t.Run("denies after max attempts", func(t *testing.T) {
		p := &scripted{attempts: []attempt{{"a", "b"}, {"c", "d"}, {"e", "f"}, {"Ahmad", "123"}}}
		_, err := g.Login(p)
		assert.ErrorIs(t, err, auth.ErrTooManyAttempts)
		assert.Equal(t, 3, p.next)
		assert.Equal(t, []int{2, 1, 0}, p.remaining)
	})

	t.Run("input failure aborts", func(t *testing.T) {
		_, err := g.Login(&scripted{})
		assert.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrTooManyAttempts)
	})
}
