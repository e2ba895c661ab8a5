package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/flocklink/flocklink/pkg/domain"
)

// DefaultSessionTTL is the validity window of a session token.
const DefaultSessionTTL = 90 * 24 * time.Hour

// TokenConfig holds token codec configuration.
type TokenConfig struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	// Now is the clock used for issuance and expiry checks. Defaults to time.Now.
	Now func() time.Time
}

// SessionClaims is the decoded identity, tenant and role payload carried
// by a session token. Sessions are stateless: the server keeps no record,
// every verification is a pure function of the token and the clock.
type SessionClaims struct {
	jwt.RegisteredClaims
	MemberName string      `json:"member_name,omitempty"`
	Email      string      `json:"email,omitempty"`
	ChurchID   string      `json:"church_id"`
	ChurchName string      `json:"church_name,omitempty"`
	Role       domain.Role `json:"role"`
}

// MemberID returns the subject as a UUID.
func (c *SessionClaims) MemberID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// ChurchUUID returns the church id claim as a UUID.
func (c *SessionClaims) ChurchUUID() (uuid.UUID, error) {
	return uuid.Parse(c.ChurchID)
}

// TokenCodec signs and verifies self-contained session tokens (HS256).
type TokenCodec struct {
	config TokenConfig
}

// NewTokenCodec creates a token codec.
func NewTokenCodec(config TokenConfig) *TokenCodec {
	if config.TTL == 0 {
		config.TTL = DefaultSessionTTL
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &TokenCodec{config: config}
}

// TTL returns the configured validity window.
func (c *TokenCodec) TTL() time.Duration {
	return c.config.TTL
}

// IssueInput holds the identity embedded in a new session token.
type IssueInput struct {
	MemberID   uuid.UUID
	MemberName string
	Email      string
	ChurchID   uuid.UUID
	ChurchName string
	Role       domain.Role
}

// Issue signs a fresh session token embedding the given claims plus
// issued-at, expiry and a token id usable for revocation.
func (c *TokenCodec) Issue(in IssueInput) (string, error) {
	now := c.config.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   in.MemberID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.config.TTL)),
			Issuer:    c.config.Issuer,
			ID:        uuid.New().String(),
		},
		MemberName: in.MemberName,
		Email:      in.Email,
		ChurchID:   in.ChurchID.String(),
		ChurchName: in.ChurchName,
		Role:       in.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.config.Secret)
}

// Verify validates signature and expiry and returns the decoded claims.
// Every failure mode (bad signature, malformed token, expired, wrong
// algorithm) collapses to domain.ErrInvalidToken; no crypto error escapes.
func (c *TokenCodec) Verify(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return c.config.Secret, nil
	}, jwt.WithTimeFunc(c.config.Now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidToken
	}
	// A well-formed session always carries both timestamps; a signed token
	// missing either was not issued here.
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return nil, domain.ErrInvalidToken
	}
	if !domain.ValidRole(claims.Role) {
		return nil, domain.ErrInvalidToken
	}
	if _, err := claims.MemberID(); err != nil {
		return nil, domain.ErrInvalidToken
	}
	if _, err := claims.ChurchUUID(); err != nil {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}
