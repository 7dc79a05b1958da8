// Package apikeys provides API key issuance and authentication for the
// versioned REST API. Keys are stored bcrypt-hashed; the plaintext is
// returned once at creation and never again.
package apikeys

import "time"

// APIKey is a registered API key.
type APIKey struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	KeyPrefix  string     `json:"keyPrefix"` // First chars of the raw key, for display.
	KeyHash    string     `json:"-"`
	Disabled   bool       `json:"disabled"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// CreateKeyInput is the validated input for issuing a new key.
type CreateKeyInput struct {
	Name string
}

// CreateKeyResult carries the stored record plus the plaintext key, which
// is shown once and never stored.
type CreateKeyResult struct {
	Key    *APIKey `json:"key"`
	RawKey string  `json:"rawKey"`
}
