package members

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/flocklink/flocklink/internal/http/middleware"
	"github.com/flocklink/flocklink/internal/httputil"
	"github.com/flocklink/flocklink/pkg/domain"
	"github.com/flocklink/flocklink/pkg/repository"
)

// Handler handles member management endpoints.
type Handler struct {
	logger      *slog.Logger
	members     *repository.MembersRepository
	memberships *repository.MembershipsRepository
}

// NewHandler creates a new members handler.
func NewHandler(logger *slog.Logger, members *repository.MembersRepository, memberships *repository.MembershipsRepository) *Handler {
	return &Handler{logger: logger, members: members, memberships: memberships}
}

// MemberResponse represents a member in listing responses.
type MemberResponse struct {
	ID       string      `json:"id"`
	Email    string      `json:"email"`
	Name     string      `json:"name"`
	Role     domain.Role `json:"role"`
	JoinedAt time.Time   `json:"joined_at"`
}

// List returns the members of the caller's church with their roles.
// GET /v1/members
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	churchID, err := claims.ChurchUUID()
	if err != nil {
		httputil.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	results, err := h.members.ListByChurch(r.Context(), churchID)
	if err != nil {
		h.logger.Error("member listing failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	responses := make([]MemberResponse, 0, len(results))
	for _, result := range results {
		responses = append(responses, MemberResponse{
			ID:       result.Member.ID.String(),
			Email:    result.Member.Email,
			Name:     result.Member.Name,
			Role:     result.Role,
			JoinedAt: result.Member.CreatedAt,
		})
	}
	httputil.JSON(w, http.StatusOK, map[string]any{"members": responses})
}

// UpdateRoleRequest represents a role change payload.
type UpdateRoleRequest struct {
	Role domain.Role `json:"role"`
}

// targetMembership resolves the {id} path member's membership in the
// caller's church. The caller's role must be at least the target's:
// nobody manages someone above themselves.
func (h *Handler) targetMembership(w http.ResponseWriter, r *http.Request) (*domain.Membership, uuid.UUID, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "authentication required")
		return nil, uuid.Nil, false
	}

	targetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "member id must be a valid id")
		return nil, uuid.Nil, false
	}

	churchID, err := claims.ChurchUUID()
	if err != nil {
		httputil.Error(w, http.StatusUnauthorized, "authentication required")
		return nil, uuid.Nil, false
	}
	callerID, err := claims.MemberID()
	if err != nil {
		httputil.Error(w, http.StatusUnauthorized, "authentication required")
		return nil, uuid.Nil, false
	}

	membership, err := h.memberships.GetByMemberAndChurch(r.Context(), targetID, churchID)
	if err != nil {
		if errors.Is(err, domain.ErrMembershipNotFound) {
			httputil.Error(w, http.StatusNotFound, "member not found")
			return nil, uuid.Nil, false
		}
		h.logger.Error("membership lookup failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return nil, uuid.Nil, false
	}

	if !domain.Dominates(claims.Role, membership.Role) {
		httputil.Error(w, http.StatusForbidden, "insufficient role")
		return nil, uuid.Nil, false
	}

	return membership, callerID, true
}

// UpdateRole changes a member's role within the caller's church. The
// caller cannot grant a role above their own.
// PUT /v1/members/{id}/role
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !domain.ValidRole(req.Role) {
		httputil.Error(w, http.StatusBadRequest, "invalid role")
		return
	}
	if !domain.Dominates(claims.Role, req.Role) {
		httputil.Error(w, http.StatusForbidden, "insufficient role")
		return
	}

	membership, _, ok := h.targetMembership(w, r)
	if !ok {
		return
	}

	if err := h.memberships.UpdateRole(r.Context(), membership.ID, req.Role); err != nil {
		if errors.Is(err, domain.ErrMembershipNotFound) {
			httputil.Error(w, http.StatusNotFound, "member not found")
			return
		}
		h.logger.Error("role update failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"role": string(req.Role)})
}

// Remove removes a member from the caller's church by retiring the
// membership. The member record itself is untouched.
// DELETE /v1/members/{id}
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	membership, callerID, ok := h.targetMembership(w, r)
	if !ok {
		return
	}

	if membership.MemberID == callerID {
		httputil.Error(w, http.StatusBadRequest, "cannot remove yourself")
		return
	}

	if err := h.memberships.SoftDelete(r.Context(), membership.ID); err != nil {
		if errors.Is(err, domain.ErrMembershipNotFound) {
			httputil.Error(w, http.StatusNotFound, "member not found")
			return
		}
		h.logger.Error("member removal failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
