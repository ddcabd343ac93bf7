package session

import (
	"context"

	"github.com/jrsteele09/go-auth-client/users"
)

// DefaultNamespace is the key under which the session record is persisted.
const DefaultNamespace = "auth-storage"

// Record is the subset of session state that survives a process restart.
// Loading/error flags are session-local and never persisted.
type Record struct {
	User         *users.User `json:"user,omitempty"`
	AccessToken  string      `json:"access_token,omitempty"`
	RefreshToken string      `json:"refresh_token,omitempty"`
}

// Store defines the interface for durable key→JSON session persistence.
// A missing record is not an error: Load returns (nil, nil) on first run.
type Store interface {
	// Load retrieves the record stored under key, or (nil, nil) if absent.
	Load(ctx context.Context, key string) (*Record, error)

	// Save overwrites the record stored under key.
	Save(ctx context.Context, key string, record *Record) error

	// Delete removes the record stored under key. Deleting an absent
	// record is a no-op.
	Delete(ctx context.Context, key string) error
}
