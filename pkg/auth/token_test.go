package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/flocklink/flocklink/pkg/domain"
)

var testSecret = []byte("test-secret-key-at-least-32-chars!")

func testCodec(now func() time.Time) *TokenCodec {
	return NewTokenCodec(TokenConfig{
		Secret: testSecret,
		Issuer: "flocklink-test",
		Now:    now,
	})
}

func testIssueInput() IssueInput {
	return IssueInput{
		MemberID:   uuid.New(),
		MemberName: "Grace Okafor",
		Email:      "grace@example.com",
		ChurchID:   uuid.New(),
		ChurchName: "First Baptist",
		Role:       domain.RoleAdmin,
	}
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	codec := testCodec(nil)
	in := testIssueInput()

	token, err := codec.Issue(in)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	if claims.Subject != in.MemberID.String() {
		t.Errorf("Subject = %q, want %q", claims.Subject, in.MemberID)
	}
	if claims.MemberName != in.MemberName {
		t.Errorf("MemberName = %q, want %q", claims.MemberName, in.MemberName)
	}
	if claims.Email != in.Email {
		t.Errorf("Email = %q, want %q", claims.Email, in.Email)
	}
	if claims.ChurchID != in.ChurchID.String() {
		t.Errorf("ChurchID = %q, want %q", claims.ChurchID, in.ChurchID)
	}
	if claims.ChurchName != in.ChurchName {
		t.Errorf("ChurchName = %q, want %q", claims.ChurchName, in.ChurchName)
	}
	if claims.Role != in.Role {
		t.Errorf("Role = %q, want %q", claims.Role, in.Role)
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		t.Fatal("issued-at and expiry must be present")
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != DefaultSessionTTL {
		t.Errorf("validity window = %v, want %v", got, DefaultSessionTTL)
	}
	if claims.ID == "" {
		t.Error("token id must be present")
	}
}

func TestVerify_TamperedToken(t *testing.T) {
	codec := testCodec(nil)

	token, err := codec.Issue(testIssueInput())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// Flip one byte inside the signed payload.
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 token segments, got %d", len(parts))
	}
	payload := []byte(parts[1])
	if payload[10] == 'A' {
		payload[10] = 'B'
	} else {
		payload[10] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	if _, err := codec.Verify(tampered); err == nil {
		t.Error("Verify() accepted a tampered token")
	}
}

func TestVerify_Malformed(t *testing.T) {
	codec := testCodec(nil)

	for _, token := range []string{"", "garbage", "a.b", "a.b.c.d", "not.a.jwt"} {
		if _, err := codec.Verify(token); err == nil {
			t.Errorf("Verify(%q) accepted a malformed token", token)
		}
	}
}

func TestVerify_Expired(t *testing.T) {
	now := time.Now()
	codec := testCodec(func() time.Time { return now })

	token, err := codec.Issue(testIssueInput())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// Move the clock past the validity window. The signature is still
	// valid; expiry alone must reject the token.
	now = now.Add(DefaultSessionTTL + time.Hour)
	if _, err := codec.Verify(token); err == nil {
		t.Error("Verify() accepted an expired token")
	}
}

func TestVerify_MissingExpiry(t *testing.T) {
	codec := testCodec(nil)
	in := testIssueInput()

	// Sign with the codec's own key but leave out exp and iat. The
	// signature alone must not be enough: a token without an expiry
	// would never age out.
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: in.MemberID.String(),
			ID:      uuid.New().String(),
		},
		ChurchID: in.ChurchID.String(),
		Role:     in.Role,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	if _, err := codec.Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("Verify() error = %v, want ErrInvalidToken for a token without expiry", err)
	}
}

func TestVerify_UnknownRole(t *testing.T) {
	codec := testCodec(nil)
	in := testIssueInput()
	in.Role = domain.Role("owner")

	token, err := codec.Issue(in)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := codec.Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("Verify() error = %v, want ErrInvalidToken for an unknown role", err)
	}
}

func TestVerify_WrongKey(t *testing.T) {
	codec := testCodec(nil)
	other := NewTokenCodec(TokenConfig{Secret: []byte("a-completely-different-signing-key")})

	token, err := codec.Issue(testIssueInput())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := other.Verify(token); err == nil {
		t.Error("Verify() accepted a token signed with another key")
	}
}

func TestNewTokenCodec_Defaults(t *testing.T) {
	codec := NewTokenCodec(TokenConfig{Secret: testSecret})
	if codec.TTL() != DefaultSessionTTL {
		t.Errorf("TTL = %v, want %v", codec.TTL(), DefaultSessionTTL)
	}
}
