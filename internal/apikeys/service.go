package apikeys

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rayners/fvtt-seasons-and-stars-sub002/internal/apperror"
)

// keyBytes is the number of random bytes in a generated API key.
const keyBytes = 32

// keyPrefixLen is the length of the prefix stored for key identification.
const keyPrefixLen = 8

// rawKeyPrefix marks keys issued by this service.
const rawKeyPrefix = "sns_"

// KeyService handles API key issuance and authentication.
type KeyService interface {
	CreateKey(ctx context.Context, input CreateKeyInput) (*CreateKeyResult, error)
	ListKeys(ctx context.Context) ([]APIKey, error)
	DisableKey(ctx context.Context, id string) error
	EnableKey(ctx context.Context, id string) error
	DeleteKey(ctx context.Context, id string) error

	// AuthenticateKey validates a raw key via prefix lookup + bcrypt verify.
	AuthenticateKey(ctx context.Context, rawKey string) (*APIKey, error)
}

type keyService struct {
	repo KeyRepository
}

// NewKeyService creates a KeyService backed by the given repository.
func NewKeyService(repo KeyRepository) KeyService {
	return &keyService{repo: repo}
}

// CreateKey generates a new API key with bcrypt-hashed storage. The
// plaintext is returned once in the result and never persisted.
func (s *keyService) CreateKey(ctx context.Context, input CreateKeyInput) (*CreateKeyResult, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewValidation("key name is required")
	}

	raw := make([]byte, keyBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("generating key: %w", err))
	}
	rawKey := rawKeyPrefix + hex.EncodeToString(raw)
	prefix := rawKey[:keyPrefixLen]

	hash, err := bcrypt.GenerateFromPassword([]byte(rawKey), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("hashing key: %w", err))
	}

	key := &APIKey{
		ID:        uuid.NewString(),
		Name:      name,
		KeyPrefix: prefix,
		KeyHash:   string(hash),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, key); err != nil {
		return nil, err
	}

	slog.Info("api key created",
		slog.String("prefix", prefix),
		slog.String("name", name),
	)
	return &CreateKeyResult{Key: key, RawKey: rawKey}, nil
}

// ListKeys returns all keys.
func (s *keyService) ListKeys(ctx context.Context) ([]APIKey, error) {
	return s.repo.List(ctx)
}

// DisableKey deactivates a key without deleting it.
func (s *keyService) DisableKey(ctx context.Context, id string) error {
	return s.repo.SetDisabled(ctx, id, true)
}

// EnableKey reactivates a disabled key.
func (s *keyService) EnableKey(ctx context.Context, id string) error {
	return s.repo.SetDisabled(ctx, id, false)
}

// DeleteKey permanently revokes a key.
func (s *keyService) DeleteKey(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// AuthenticateKey validates a raw API key and returns the stored record.
// It extracts the prefix, looks up the key, and verifies with bcrypt.
// Usage is recorded asynchronously of the verdict; a failed touch never
// fails authentication.
func (s *keyService) AuthenticateKey(ctx context.Context, rawKey string) (*APIKey, error) {
	if len(rawKey) < keyPrefixLen {
		return nil, apperror.NewUnauthorized("invalid api key")
	}

	prefix := rawKey[:keyPrefixLen]
	key, err := s.repo.FindByPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, apperror.NewUnauthorized("invalid api key")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(key.KeyHash), []byte(rawKey)); err != nil {
		return nil, apperror.NewUnauthorized("invalid api key")
	}
	if key.Disabled {
		return nil, apperror.NewUnauthorized("api key is disabled")
	}

	if err := s.repo.TouchLastUsed(ctx, key.ID, time.Now().UTC()); err != nil {
		slog.Warn("failed to record api key usage", slog.Any("error", err))
	}
	return key, nil
}
