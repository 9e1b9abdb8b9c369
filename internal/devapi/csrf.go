package devapi

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	csrfHeader  = "X-CSRFToken"
	csrfSubject = "csrf"
	csrfTTL     = 12 * time.Hour
)

var ErrBadToken = errors.New("CSRF token missing or invalid")

// CSRF issues and checks anti-forgery tokens. Tokens are HS256 JWTs so any
// instance sharing the secret accepts them.
type CSRF struct {
	secret []byte
	now    func() time.Time
}

// NewCSRF returns a CSRF signer. An empty secret is replaced by a random one,
// which invalidates tokens on restart.
func NewCSRF(secret string) *CSRF {
	if secret == "" {
		secret = uuid.NewString()
	}

	return &CSRF{secret: []byte(secret), now: time.Now}
}

func (c *CSRF) Issue() (string, error) {
	now := c.now()

	claims := jwt.RegisteredClaims{
		Subject:   csrfSubject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(csrfTTL)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("signing csrf token: %w", err)
	}

	return signed, nil
}

func (c *CSRF) Verify(token string) error {
	if token == "" {
		return ErrBadToken
	}

	_, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{},
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(csrfSubject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadToken, err)
	}

	return nil
}

// Protect rejects state-changing requests that lack a valid X-CSRFToken.
func (c *CSRF) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		if err := c.Verify(r.Header.Get(csrfHeader)); err != nil {
			writeError(w, http.StatusForbidden, ErrBadToken.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}
