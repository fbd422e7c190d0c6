package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mispricing-detector/pkg/crypto"
)

// ErrCredentialNotFound is returned when no row exists for the requested name.
var ErrCredentialNotFound = errors.New("repository: credential not found")

// CredentialsRepository is the data access layer for api_credentials: the
// odds-API key and LLM-resolver key, encrypted at rest the same way the
// teacher encrypts exchange API secrets (§9).
type CredentialsRepository struct {
	db            *sql.DB
	encryptionKey []byte
}

// NewCredentialsRepository builds a CredentialsRepository. encryptionKey
// must be exactly 32 bytes (AES-256); config.Load() validates this at
// startup before any repository is constructed.
func NewCredentialsRepository(db *sql.DB, encryptionKey []byte) *CredentialsRepository {
	return &CredentialsRepository{db: db, encryptionKey: encryptionKey}
}

// Get decrypts and returns the named credential's plaintext value.
func (r *CredentialsRepository) Get(ctx context.Context, name string) (string, error) {
	var ciphertext string
	err := r.db.QueryRowContext(ctx, `SELECT ciphertext FROM api_credentials WHERE name = $1`, name).Scan(&ciphertext)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrCredentialNotFound
	}
	if err != nil {
		return "", fmt.Errorf("repository: load credential %q: %w", name, err)
	}

	plaintext, err := crypto.Decrypt(ciphertext, r.encryptionKey)
	if err != nil {
		return "", fmt.Errorf("repository: decrypt credential %q: %w", name, err)
	}
	return plaintext, nil
}

// Set encrypts plaintext and upserts it under name.
func (r *CredentialsRepository) Set(ctx context.Context, name, plaintext string) error {
	ciphertext, err := crypto.Encrypt(plaintext, r.encryptionKey)
	if err != nil {
		return fmt.Errorf("repository: encrypt credential %q: %w", name, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO api_credentials (name, ciphertext, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET ciphertext = EXCLUDED.ciphertext, updated_at = EXCLUDED.updated_at`,
		name, ciphertext)
	return err
}
