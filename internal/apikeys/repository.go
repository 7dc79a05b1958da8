package apikeys

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rayners/fvtt-seasons-and-stars-sub002/internal/apperror"
)

// KeyRepository defines the data access contract for API keys.
type KeyRepository interface {
	// Create inserts a new key.
	Create(ctx context.Context, k *APIKey) error

	// FindByPrefix returns the key with the given prefix, or nil when absent.
	FindByPrefix(ctx context.Context, prefix string) (*APIKey, error)

	// List returns all keys ordered by creation time.
	List(ctx context.Context) ([]APIKey, error)

	// SetDisabled flips a key's disabled flag.
	SetDisabled(ctx context.Context, id string, disabled bool) error

	// TouchLastUsed records key usage.
	TouchLastUsed(ctx context.Context, id string, at time.Time) error

	// Delete removes a key.
	Delete(ctx context.Context, id string) error
}

// keyRepository implements KeyRepository using MariaDB.
type keyRepository struct {
	db *sql.DB
}

// NewKeyRepository creates a key repository backed by MariaDB.
func NewKeyRepository(db *sql.DB) KeyRepository {
	return &keyRepository{db: db}
}

func (r *keyRepository) Create(ctx context.Context, k *APIKey) error {
	query := `INSERT INTO api_keys (id, name, key_prefix, key_hash, disabled)
	          VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, k.ID, k.Name, k.KeyPrefix, k.KeyHash, k.Disabled)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("inserting api key: %w", err))
	}
	return nil
}

func (r *keyRepository) FindByPrefix(ctx context.Context, prefix string) (*APIKey, error) {
	query := `SELECT id, name, key_prefix, key_hash, disabled, last_used_at, created_at
	          FROM api_keys WHERE key_prefix = ?`

	var k APIKey
	err := r.db.QueryRowContext(ctx, query, prefix).Scan(
		&k.ID, &k.Name, &k.KeyPrefix, &k.KeyHash, &k.Disabled, &k.LastUsedAt, &k.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("querying api key: %w", err))
	}
	return &k, nil
}

func (r *keyRepository) List(ctx context.Context) ([]APIKey, error) {
	query := `SELECT id, name, key_prefix, key_hash, disabled, last_used_at, created_at
	          FROM api_keys ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing api keys: %w", err))
	}
	defer rows.Close()

	var out []APIKey
	for rows.Next() {
		var k APIKey
		if err := rows.Scan(&k.ID, &k.Name, &k.KeyPrefix, &k.KeyHash,
			&k.Disabled, &k.LastUsedAt, &k.CreatedAt); err != nil {
			return nil, apperror.NewInternal(fmt.Errorf("scanning api key: %w", err))
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (r *keyRepository) SetDisabled(ctx context.Context, id string, disabled bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE api_keys SET disabled = ? WHERE id = ?`, disabled, id)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("updating api key %s: %w", id, err))
	}
	return nil
}

func (r *keyRepository) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE api_keys SET last_used_at = ? WHERE id = ?`, at, id)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("touching api key %s: %w", id, err))
	}
	return nil
}

func (r *keyRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM api_keys WHERE id = ?`, id)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("deleting api key %s: %w", id, err))
	}
	return nil
}
