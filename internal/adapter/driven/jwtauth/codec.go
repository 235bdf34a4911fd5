// Package jwtauth implements the session TokenCodec with HS256-signed JWTs.
package jwtauth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ericfisherdev/codeconvert/internal/domain/model"
	"github.com/ericfisherdev/codeconvert/internal/domain/port/driven"
)

// MinSecretLen is the shortest signing secret the codec accepts.
const MinSecretLen = 16

// Compile-time interface satisfaction check.
var _ driven.TokenCodec = (*Codec)(nil)

// Claims carries the registered claims of a session token. The subject is the user id.
type Claims struct {
	jwt.RegisteredClaims
}

// Codec issues and verifies stateless session tokens signed with a server secret.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec creates a Codec. Tokens it issues expire ttl after issue.
func NewCodec(secret []byte, ttl time.Duration) (*Codec, error) {
	if len(secret) < MinSecretLen {
		return nil, fmt.Errorf("token secret must be at least %d bytes", MinSecretLen)
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &Codec{secret: secret, ttl: ttl}, nil
}

// Issue signs a token for userID valid from now until now plus the codec TTL.
func (c *Codec) Issue(userID string, now time.Time) (model.SessionToken, error) {
	expiresAt := now.Add(c.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return model.SessionToken{}, fmt.Errorf("sign token: %w", err)
	}

	// NumericDate has second precision; report the expiry the token actually carries.
	return model.SessionToken{Value: signed, ExpiresAt: expiresAt.Truncate(time.Second)}, nil
}

// Verify checks the signature and expiry of token at time now and returns its
// subject. Any failure is reported as driven.ErrInvalidToken.
func (c *Codec) Verify(token string, now time.Time) (string, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", driven.ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", driven.ErrInvalidToken
	}

	return claims.Subject, nil
}
