package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const denylistKeyPrefix = "revoked:"

// Denylist is an optional short-lived revocation set keyed by token id.
// Entries expire with the token they revoke, so the set stays small.
// A nil *Denylist is valid and disables revocation entirely.
type Denylist struct {
	client *redis.Client
	now    func() time.Time
}

// NewDenylist connects to Redis and verifies the connection. An empty URL
// returns (nil, nil): revocation disabled.
func NewDenylist(ctx context.Context, redisURL string) (*Denylist, error) {
	if redisURL == "" {
		return nil, nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, err
	}

	return &Denylist{client: client, now: time.Now}, nil
}

// Revoke marks a token id as revoked until the token's own expiry.
func (d *Denylist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if d == nil || tokenID == "" {
		return nil
	}

	ttl := expiresAt.Sub(d.now())
	if ttl <= 0 {
		return nil
	}

	return d.client.Set(ctx, denylistKeyPrefix+tokenID, "1", ttl).Err()
}

// IsRevoked reports whether a token id has been revoked. Lookup errors
// count as not revoked: the denylist is additive hardening, not the
// authentication mechanism.
func (d *Denylist) IsRevoked(ctx context.Context, tokenID string) bool {
	if d == nil || tokenID == "" {
		return false
	}

	n, err := d.client.Exists(ctx, denylistKeyPrefix+tokenID).Result()
	if err != nil {
		return false
	}
	return n > 0
}

// Close closes the Redis connection.
func (d *Denylist) Close() error {
	if d == nil {
		return nil
	}
	return d.client.Close()
}
