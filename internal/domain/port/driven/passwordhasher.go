package driven

import "errors"

// ErrPasswordMismatch is returned by PasswordHasher.Compare when the password
// does not match the stored hash.
var ErrPasswordMismatch = errors.New("password mismatch")

// PasswordHasher produces and checks slow, salted password hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
