package driven

import (
	"errors"
	"time"

	"github.com/ericfisherdev/codeconvert/internal/domain/model"
)

// ErrInvalidToken is returned for any token that fails verification: bad
// signature, malformed payload, or expired. Callers treat it as "no token".
var ErrInvalidToken = errors.New("invalid session token")

// TokenCodec signs and verifies stateless session tokens.
type TokenCodec interface {
	Issue(userID string, now time.Time) (model.SessionToken, error)
	Verify(token string, now time.Time) (string, error)
}
