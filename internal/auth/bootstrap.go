package auth

import (
	"context"
	"fmt"

	"github.com/jonesrussell/tooldex/internal/logger"
)

// AdminClaim is the capability key granted by the bootstrap flow.
const AdminClaim = "admin"

// ClaimStore is the persistent per-identity capability record.
// Merge must preserve every key it is not asked to change.
type ClaimStore interface {
	Get(ctx context.Context, uid string) (map[string]any, error)
	Merge(ctx context.Context, uid, key string, value any) error
}

// ElevateResult reports the outcome of a successful elevation.
type ElevateResult struct {
	// Already is true when the identity held the admin claim before the
	// call; no write was performed.
	Already bool
}

// Bootstrapper grants administrator capability to identities that prove
// ownership of an allow-listed email address.
type Bootstrapper struct {
	verifier TokenVerifier
	allow    *AllowList
	claims   ClaimStore
	logger   logger.Logger
}

// NewBootstrapper creates a Bootstrapper with the given dependencies.
func NewBootstrapper(
	verifier TokenVerifier,
	allow *AllowList,
	claims ClaimStore,
	log logger.Logger,
) *Bootstrapper {
	return &Bootstrapper{
		verifier: verifier,
		allow:    allow,
		claims:   claims,
		logger:   log,
	}
}

// Elevate verifies the bearer token and, if the proven email is
// allow-listed, merges admin=true into the identity's claims. The
// operation is idempotent: an identity that already holds the claim gets
// a success result and no write.
func (b *Bootstrapper) Elevate(ctx context.Context, bearerToken string) (ElevateResult, error) {
	if bearerToken == "" {
		return ElevateResult{}, ErrMissingToken
	}

	identity, err := b.verifier.Verify(bearerToken)
	if err != nil {
		return ElevateResult{}, err
	}

	// Authorization happens strictly after verification; an unverified
	// email claim is never trusted.
	email := NormalizeEmail(identity.Email)
	if email == "" || !b.allow.Allows(email) {
		b.logger.Warn("Bootstrap refused",
			logger.String("uid", identity.UID),
		)
		return ElevateResult{}, ErrNotAllowed
	}

	current, err := b.claims.Get(ctx, identity.UID)
	if err != nil {
		return ElevateResult{}, fmt.Errorf("fetch claims: %w", err)
	}

	if isAdmin(current) {
		return ElevateResult{Already: true}, nil
	}

	if err := b.claims.Merge(ctx, identity.UID, AdminClaim, true); err != nil {
		return ElevateResult{}, fmt.Errorf("merge claims: %w", err)
	}

	b.logger.Info("Admin capability granted",
		logger.String("uid", identity.UID),
		logger.String("email", email),
	)

	return ElevateResult{}, nil
}

func isAdmin(claims map[string]any) bool {
	v, ok := claims[AdminClaim].(bool)
	return ok && v
}
