package auth

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueAndParseToken(t *testing.T) {
	req := require.New(t)
	resolver := NewResolver([]byte("test-secret"), time.Hour)

	token, err := resolver.IssueToken(7, "alice")
	req.NoError(err)

	claims, err := resolver.ParseToken(token)
	req.NoError(err)
	req.Equal(7, claims.UserID)
	req.Equal("alice", claims.Username)
}

func TestParseTokenWrongSecret(t *testing.T) {
	req := require.New(t)
	resolver := NewResolver([]byte("test-secret"), time.Hour)
	other := NewResolver([]byte("other-secret"), time.Hour)

	token, err := resolver.IssueToken(7, "alice")
	req.NoError(err)

	_, err = other.ParseToken(token)
	req.ErrorIs(err, ErrUnauthenticated)
}

func TestParseTokenExpired(t *testing.T) {
	req := require.New(t)
	resolver := NewResolver([]byte("test-secret"), -time.Minute)

	token, err := resolver.IssueToken(7, "alice")
	req.NoError(err)

	_, err = resolver.ParseToken(token)
	req.ErrorIs(err, ErrUnauthenticated)
}

func TestFromRequest(t *testing.T) {
	req := require.New(t)
	resolver := NewResolver([]byte("test-secret"), time.Hour)

	r, _ := http.NewRequest("GET", "/profile", nil)
	_, err := resolver.FromRequest(r)
	req.ErrorIs(err, ErrUnauthenticated)

	token, err := resolver.IssueToken(7, "alice")
	req.NoError(err)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: token})

	claims, err := resolver.FromRequest(r)
	req.NoError(err)
	req.Equal(7, claims.UserID)
}
