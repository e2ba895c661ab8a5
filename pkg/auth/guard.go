package auth

import (
	"context"
	"strings"

	"github.com/flocklink/flocklink/pkg/domain"
)

// Guard is the authorization gate in front of every privileged operation.
// It composes the token codec with the role hierarchy and performs no writes.
type Guard struct {
	codec            *TokenCodec
	denylist         *Denylist
	systemAdminEmail string
}

// NewGuard creates a guard. denylist may be nil (revocation disabled).
// systemAdminEmail is the single configured identity allowed to provision
// churches; empty disables the bypass.
func NewGuard(codec *TokenCodec, denylist *Denylist, systemAdminEmail string) *Guard {
	return &Guard{
		codec:            codec,
		denylist:         denylist,
		systemAdminEmail: strings.ToLower(systemAdminEmail),
	}
}

// Authorize verifies the session token and checks that its role dominates
// minRole. It returns domain.ErrUnauthenticated for a missing, malformed
// or expired token and domain.ErrForbidden for a valid session whose role
// is insufficient.
func (g *Guard) Authorize(tokenString string, minRole domain.Role) (*SessionClaims, error) {
	if tokenString == "" {
		return nil, domain.ErrUnauthenticated
	}

	claims, err := g.codec.Verify(tokenString)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	if !domain.Dominates(claims.Role, minRole) {
		return nil, domain.ErrForbidden
	}

	return claims, nil
}

// AuthorizeSensitive is Authorize plus a revocation check against the
// denylist. Only sensitive operations pay the lookup; ordinary requests
// keep stateless verification.
func (g *Guard) AuthorizeSensitive(ctx context.Context, tokenString string, minRole domain.Role) (*SessionClaims, error) {
	claims, err := g.Authorize(tokenString, minRole)
	if err != nil {
		return nil, err
	}

	if g.denylist.IsRevoked(ctx, claims.ID) {
		return nil, domain.ErrUnauthenticated
	}

	return claims, nil
}

// IsSystemAdmin reports whether the session belongs to the configured
// system administrator. This is a separate escalation path for church
// provisioning, deliberately outside the role hierarchy.
func (g *Guard) IsSystemAdmin(claims *SessionClaims) bool {
	if g.systemAdminEmail == "" || claims == nil {
		return false
	}
	return strings.ToLower(claims.Email) == g.systemAdminEmail
}

// Revoke adds the session's token id to the denylist until the token's
// own expiry. A nil denylist makes this a no-op.
func (g *Guard) Revoke(ctx context.Context, claims *SessionClaims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	return g.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}
