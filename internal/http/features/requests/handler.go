package requests

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/flocklink/flocklink/internal/http/middleware"
	"github.com/flocklink/flocklink/internal/httputil"
	"github.com/flocklink/flocklink/pkg/domain"
	"github.com/flocklink/flocklink/pkg/repository"
	"github.com/flocklink/flocklink/pkg/workflow"
)

// Handler handles membership request endpoints.
type Handler struct {
	logger      *slog.Logger
	requests    *repository.RequestsRepository
	memberships *repository.MembershipsRepository
	decider     *workflow.Service
}

// NewHandler creates a new requests handler.
func NewHandler(logger *slog.Logger, requests *repository.RequestsRepository, memberships *repository.MembershipsRepository, decider *workflow.Service) *Handler {
	return &Handler{
		logger:      logger,
		requests:    requests,
		memberships: memberships,
		decider:     decider,
	}
}

// RequestResponse represents a membership request in responses.
type RequestResponse struct {
	ID        string     `json:"id"`
	ChurchID  string     `json:"church_id"`
	MemberID  string     `json:"member_id"`
	Status    string     `json:"status"`
	Message   string     `json:"message,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
}

func toResponse(r *domain.MembershipRequest) RequestResponse {
	return RequestResponse{
		ID:        r.ID.String(),
		ChurchID:  r.ChurchID.String(),
		MemberID:  r.MemberID.String(),
		Status:    string(r.Status),
		Message:   r.Message,
		CreatedAt: r.CreatedAt,
		DecidedAt: r.DecidedAt,
	}
}

// CreateRequest represents a new membership request payload.
type CreateRequest struct {
	ChurchID string `json:"church_id"`
	Message  string `json:"message,omitempty"`
}

// Create files a new pending membership request for the caller.
// POST /v1/requests
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	churchID, err := uuid.Parse(req.ChurchID)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "church_id must be a valid id")
		return
	}

	memberID, err := claims.MemberID()
	if err != nil {
		httputil.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	_, err = h.memberships.GetByMemberAndChurch(r.Context(), memberID, churchID)
	if err == nil {
		httputil.Error(w, http.StatusConflict, "already a member of this church")
		return
	}
	if !errors.Is(err, domain.ErrMembershipNotFound) {
		h.logger.Error("membership lookup failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	request := &domain.MembershipRequest{
		ID:        uuid.New(),
		ChurchID:  churchID,
		MemberID:  memberID,
		Status:    domain.RequestStatusPending,
		Message:   strings.TrimSpace(req.Message),
		CreatedAt: time.Now(),
	}

	if err := h.requests.Create(r.Context(), request); err != nil {
		h.logger.Error("request creation failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httputil.JSON(w, http.StatusCreated, toResponse(request))
}

// List returns the pending requests of the caller's church.
// GET /v1/requests
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

	pending, err := h.requests.ListPendingByChurch(r.Context(), churchID)
	if err != nil {
		h.logger.Error("pending request listing failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	responses := make([]RequestResponse, 0, len(pending))
	for _, request := range pending {
		responses = append(responses, toResponse(request))
	}
	httputil.JSON(w, http.StatusOK, map[string]any{"requests": responses})
}

// Cancel withdraws the caller's own pending request. Decided requests
// cannot be withdrawn.
// DELETE /v1/requests/{id}
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	requestID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "request id must be a valid id")
		return
	}

	memberID, err := claims.MemberID()
	if err != nil {
		httputil.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.requests.CancelPending(r.Context(), requestID, memberID); err != nil {
		if errors.Is(err, domain.ErrRequestNotFound) {
			httputil.Error(w, http.StatusNotFound, "membership request not found")
			return
		}
		h.logger.Error("request cancellation failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// Approve transitions a pending request to approved.
// POST /v1/requests/{id}/approve
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, domain.DecisionApprove)
}

// Decline transitions a pending request to declined.
// POST /v1/requests/{id}/decline
func (h *Handler) Decline(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, domain.DecisionDecline)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, decision domain.Decision) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	requestID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "request id must be a valid id")
		return
	}

	churchID, err := claims.ChurchUUID()
	if err != nil {
		httputil.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	actorID, err := claims.MemberID()
	if err != nil {
		httputil.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	err = h.decider.Decide(r.Context(), requestID, churchID, actorID, decision)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRequestNotFound):
			// Covers never-existed, another church's request, and
			// already-decided alike.
			httputil.Error(w, http.StatusNotFound, "membership request not found")
		default:
			h.logger.Error("decision failed",
				"request_id", requestID,
				"decision", decision,
				"error", err,
			)
			httputil.Error(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"status": string(decision.Status())})
}
