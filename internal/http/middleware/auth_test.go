package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/flocklink/flocklink/internal/httputil"
	"github.com/flocklink/flocklink/pkg/auth"
	"github.com/flocklink/flocklink/pkg/domain"
)

func testGuard(t *testing.T) (*auth.Guard, *auth.TokenCodec) {
	t.Helper()
	codec := auth.NewTokenCodec(auth.TokenConfig{
		Secret: []byte("middleware-test-secret-32-chars!!"),
		Issuer: "flocklink-test",
	})
	return auth.NewGuard(codec, nil, ""), codec
}

func issueToken(t *testing.T, codec *auth.TokenCodec, role domain.Role) string {
	t.Helper()
	token, err := codec.Issue(auth.IssueInput{
		MemberID:   uuid.New(),
		MemberName: "Test Member",
		ChurchID:   uuid.New(),
		ChurchName: "Test Church",
		Role:       role,
	})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	return token
}

func okHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetClaims(r.Context()); !ok {
			t.Error("claims missing from context in authorized handler")
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireRole(t *testing.T) {
	guard, codec := testGuard(t)

	tests := []struct {
		name       string
		minRole    domain.Role
		token      string
		viaCookie  bool
		wantStatus int
	}{
		{
			name:       "no token",
			minRole:    domain.RoleMember,
			token:      "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			minRole:    domain.RoleMember,
			token:      "garbage",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "member on admin route",
			minRole:    domain.RoleAdmin,
			token:      issueToken(t, codec, domain.RoleMember),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "leader on admin route",
			minRole:    domain.RoleAdmin,
			token:      issueToken(t, codec, domain.RoleLeader),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "admin on admin route",
			minRole:    domain.RoleAdmin,
			token:      issueToken(t, codec, domain.RoleAdmin),
			wantStatus: http.StatusOK,
		},
		{
			name:       "super admin on admin route",
			minRole:    domain.RoleAdmin,
			token:      issueToken(t, codec, domain.RoleSuperAdmin),
			wantStatus: http.StatusOK,
		},
		{
			name:       "member on super admin route",
			minRole:    domain.RoleSuperAdmin,
			token:      issueToken(t, codec, domain.RoleMember),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "token via cookie",
			minRole:    domain.RoleMember,
			token:      issueToken(t, codec, domain.RoleMember),
			viaCookie:  true,
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireRole(guard, tt.minRole)(okHandler(t))

			req := httptest.NewRequest(http.MethodGet, "/v1/requests", nil)
			if tt.token != "" {
				if tt.viaCookie {
					req.AddCookie(&http.Cookie{Name: httputil.SessionCookieName, Value: tt.token})
				} else {
					req.Header.Set("Authorization", "Bearer "+tt.token)
				}
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRequireRole_ExpiredToken(t *testing.T) {
	// Codec frozen in the past issues a token that is already expired
	// from the verifying guard's point of view.
	past := time.Now().Add(-auth.DefaultSessionTTL - time.Hour)
	issuing := auth.NewTokenCodec(auth.TokenConfig{
		Secret: []byte("middleware-test-secret-32-chars!!"),
		Now:    func() time.Time { return past },
	})
	guard, _ := testGuard(t)

	token := issueToken(t, issuing, domain.RoleAdmin)
	handler := RequireRole(guard, domain.RoleMember)(okHandler(t))

	req := httptest.NewRequest(http.MethodGet, "/v1/requests", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d for an expired token", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireRoleSensitive_NilDenylist(t *testing.T) {
	guard, codec := testGuard(t)

	token := issueToken(t, codec, domain.RoleAdmin)
	handler := RequireRoleSensitive(guard, domain.RoleAdmin)(okHandler(t))

	req := httptest.NewRequest(http.MethodPost, "/v1/requests/abc/approve", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
