package session

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/flocklink/flocklink/internal/http/middleware"
	"github.com/flocklink/flocklink/internal/httputil"
	"github.com/flocklink/flocklink/pkg/auth"
	"github.com/flocklink/flocklink/pkg/domain"
	"github.com/flocklink/flocklink/pkg/repository"
)

// Handler handles session endpoints.
type Handler struct {
	logger       *slog.Logger
	members      *repository.MembersRepository
	memberships  *repository.MembershipsRepository
	codec        *auth.TokenCodec
	guard        *auth.Guard
	cookieConfig httputil.CookieConfig
}

// NewHandler creates a new session handler.
func NewHandler(
	logger *slog.Logger,
	members *repository.MembersRepository,
	memberships *repository.MembershipsRepository,
	codec *auth.TokenCodec,
	guard *auth.Guard,
	cookieConfig httputil.CookieConfig,
) *Handler {
	return &Handler{
		logger:       logger,
		members:      members,
		memberships:  memberships,
		codec:        codec,
		guard:        guard,
		cookieConfig: cookieConfig,
	}
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse represents a session token response.
type TokenResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresIn int       `json:"expires_in"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login verifies credentials and issues a session token.
// POST /v1/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		httputil.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	member, err := h.members.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			httputil.Error(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.logger.Error("login member lookup failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if !auth.VerifyPassword(req.Password, member.PasswordHash) {
		httputil.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	mt, err := h.memberships.GetActiveWithChurch(r.Context(), member.ID)
	if err != nil {
		if errors.Is(err, domain.ErrMembershipNotFound) {
			httputil.Error(w, http.StatusForbidden, "no active church membership")
			return
		}
		h.logger.Error("login membership lookup failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	token, err := h.codec.Issue(auth.IssueInput{
		MemberID:   member.ID,
		MemberName: member.Name,
		Email:      member.Email,
		ChurchID:   mt.Church.ID,
		ChurchName: mt.Church.Name,
		Role:       mt.Membership.Role,
	})
	if err != nil {
		h.logger.Error("token issuance failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httputil.SetSessionCookie(w, token, h.codec.TTL(), h.cookieConfig)
	httputil.JSON(w, http.StatusOK, TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int(h.codec.TTL().Seconds()),
		ExpiresAt: time.Now().Add(h.codec.TTL()),
	})
}

// Logout clears the session cookie. If a denylist is configured the
// token id is revoked as well; otherwise the token simply ages out.
// POST /v1/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token, ok := httputil.GetSessionTokenFromCookie(r); ok {
		if claims, err := h.codec.Verify(token); err == nil {
			if err := h.guard.Revoke(r.Context(), claims); err != nil {
				h.logger.Warn("session revocation failed", "error", err)
			}
		}
	}

	httputil.ClearSessionCookie(w, h.cookieConfig)
	httputil.JSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// MeResponse represents the current session's identity.
type MeResponse struct {
	MemberID   string      `json:"member_id"`
	MemberName string      `json:"member_name"`
	Email      string      `json:"email,omitempty"`
	ChurchID   string      `json:"church_id"`
	ChurchName string      `json:"church_name"`
	Role       domain.Role `json:"role"`
	ExpiresAt  time.Time   `json:"expires_at"`
}

// Me returns the current session's decoded claims.
// GET /v1/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	httputil.JSON(w, http.StatusOK, MeResponse{
		MemberID:   claims.Subject,
		MemberName: claims.MemberName,
		Email:      claims.Email,
		ChurchID:   claims.ChurchID,
		ChurchName: claims.ChurchName,
		Role:       claims.Role,
		ExpiresAt:  claims.ExpiresAt.Time,
	})
}
