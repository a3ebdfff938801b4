package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the cookie carrying the signed token.
const CookieName = "token"

// ErrUnauthenticated covers a missing, malformed, or expired token.
var ErrUnauthenticated = errors.New("unauthenticated")

// Claims is the identity attached to a token: a stable user id plus the
// display name pushed in presence lists.
type Claims struct {
	UserID   int    `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Resolver issues and verifies identity tokens. It is the only
// component that knows the signing secret.
type Resolver struct {
	secret []byte
	ttl    time.Duration
}

func NewResolver(secret []byte, ttl time.Duration) *Resolver {
	return &Resolver{secret: secret, ttl: ttl}
}

// IssueToken signs a token for the given user.
func (r *Resolver) IssueToken(userID int, username string) (string, error) {
	claims := &Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(r.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "pigeon",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(r.secret)
}

// ParseToken validates the signature and expiration of a token string
// and returns the identity it carries.
func (r *Resolver) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return r.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}

// FromRequest resolves the identity from the request's token cookie.
func (r *Resolver) FromRequest(req *http.Request) (*Claims, error) {
	cookie, err := req.Cookie(CookieName)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	return r.ParseToken(cookie.Value)
}
