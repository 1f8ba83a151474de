// Package storage implements the PostgreSQL persistence layer.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// ClaimStore persists per-identity capability claims as a JSONB object.
type ClaimStore struct {
	db *sql.DB
}

// NewClaimStore creates a ClaimStore backed by db.
func NewClaimStore(db *sql.DB) *ClaimStore {
	return &ClaimStore{db: db}
}

// Get returns the claims object for uid. An identity with no stored
// claims reads as an empty map, not an error.
func (s *ClaimStore) Get(ctx context.Context, uid string) (map[string]any, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT claims FROM user_claims WHERE uid = $1`, uid,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query claims: %w", err)
	}

	claims := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &claims); err != nil {
			return nil, fmt.Errorf("decode claims: %w", err)
		}
	}
	return claims, nil
}

// Merge sets key to value in uid's claims object, preserving every other
// key. The read-merge-write runs in one transaction with the row locked,
// so concurrent merges cannot clobber each other's keys.
func (s *ClaimStore) Merge(ctx context.Context, uid, key string, value any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin claims tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var raw []byte
	err = tx.QueryRowContext(ctx,
		`SELECT claims FROM user_claims WHERE uid = $1 FOR UPDATE`, uid,
	).Scan(&raw)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("lock claims row: %w", err)
	}

	claims := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &claims); err != nil {
			return fmt.Errorf("decode claims: %w", err)
		}
	}
	claims[key] = value

	merged, err := json.Marshal(claims)
	if err != nil {
		return fmt.Errorf("encode claims: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO user_claims (uid, claims) VALUES ($1, $2)
		 ON CONFLICT (uid) DO UPDATE SET claims = EXCLUDED.claims`,
		uid, merged,
	)
	if err != nil {
		return fmt.Errorf("write claims: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit claims tx: %w", err)
	}
	return nil
}
