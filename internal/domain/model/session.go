package model

import "time"

// SessionToken is a signed bearer credential asserting a user identity until ExpiresAt.
type SessionToken struct {
	Value     string
	ExpiresAt time.Time
}
