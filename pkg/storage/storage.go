// Package storage persists authenticated sessions behind a small Store
// interface. Two implementations ship: an in-memory map for tests and
// single-process deployments, and a YAML file store that survives
// restarts. The orchestration core only ever stores and fetches; listing
// and pruning serve the session-reuse surface.
package storage

import (
	"time"

	"github.com/trungleviet-agilityio/playwright-training/pkg/types"
)

// Record is one persisted session.
type Record struct {
	SessionID string                `json:"session_id" yaml:"session_id"`
	Provider  types.Provider        `json:"provider" yaml:"provider"`
	Email     string                `json:"email" yaml:"email"`
	Cookies   []types.SessionCookie `json:"cookies,omitempty" yaml:"cookies,omitempty"`
	Tokens    *types.OAuthTokens    `json:"tokens,omitempty" yaml:"tokens,omitempty"`
	Metadata  map[string]string     `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	ExpiresAt time.Time `json:"expires_at" yaml:"expires_at"`
	LastUsed  time.Time `json:"last_used" yaml:"last_used"`
}

// Active reports whether the record is still usable at the given instant.
func (r *Record) Active(now time.Time) bool {
	return r.ExpiresAt.IsZero() || now.Before(r.ExpiresAt)
}

// Store is the persistence contract for sessions.
type Store interface {
	// Store saves a record, overwriting any previous one with the same id.
	Store(record *Record) error

	// Get fetches a record by id; a missing id returns (nil, nil) and
	// refreshes LastUsed on hit.
	Get(sessionID string) (*Record, error)

	// ListActive returns unexpired records, optionally filtered by
	// provider (empty matches all).
	ListActive(provider types.Provider) ([]*Record, error)

	// Delete removes a record, reporting whether it existed.
	Delete(sessionID string) (bool, error)
}
