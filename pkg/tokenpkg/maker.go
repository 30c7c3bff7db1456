// Package tokenpkg issues and verifies the access tokens used for authentication.
package tokenpkg

import (
	"fmt"
	"time"
)

// Supported token kinds.
const (
	KindPaseto = "paseto"
	KindJWT    = "jwt"
)

// Maker is an interface for managing tokens.
type Maker interface {
	// CreateToken creates a new token for a specific username, roles and duration.
	CreateToken(username string, roles []string, duration time.Duration) (string, *Payload, error)
	// VerifyToken checks if the token is valid or not.
	VerifyToken(token string) (*Payload, error)
}

// NewMaker returns the token maker of the given kind.
func NewMaker(kind, key string) (Maker, error) {
	switch kind {
	case "", KindPaseto:
		return NewPasetoMaker(key)
	case KindJWT:
		return NewJWTMaker(key)
	}

	return nil, fmt.Errorf("unsupported token kind %q", kind)
}
