package auth

import (
	"errors"
	"time"
)

// APIKey is a client credential resolved from the opaque access token string.
// Keys are created and revoked through the internal-tier management
// endpoints; the request gate only ever reads them.
type APIKey struct {
	ID          int64     `json:"id"`
	AccessToken string    `json:"-"`
	UserID      int64     `json:"user_id"`
	Active      bool      `json:"active"`
	Internal    bool      `json:"internal"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ErrKeyNotFound is returned when no active key matches a supplied token.
// Inactive keys never authorize, so a revoked token resolves to this error
// rather than to its key.
var ErrKeyNotFound = errors.New("api key not found")
