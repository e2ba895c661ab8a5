package churches

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/flocklink/flocklink/internal/http/middleware"
	"github.com/flocklink/flocklink/internal/httputil"
	"github.com/flocklink/flocklink/pkg/auth"
	"github.com/flocklink/flocklink/pkg/domain"
	"github.com/flocklink/flocklink/pkg/repository"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Handler handles church provisioning and lookup endpoints.
type Handler struct {
	logger   *slog.Logger
	db       *sql.DB
	churches *repository.ChurchesRepository
	audit    *repository.AuditRepository
	guard    *auth.Guard
}

// NewHandler creates a new churches handler.
func NewHandler(
	logger *slog.Logger,
	db *sql.DB,
	churches *repository.ChurchesRepository,
	audit *repository.AuditRepository,
	guard *auth.Guard,
) *Handler {
	return &Handler{
		logger:   logger,
		db:       db,
		churches: churches,
		audit:    audit,
		guard:    guard,
	}
}

// CreateRequest represents a church provisioning payload.
type CreateRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ChurchResponse represents a church in responses.
type ChurchResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// Create provisions a new church. Only the configured system
// administrator identity may call this; the role hierarchy does not
// grant access here.
// POST /v1/churches
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if !h.guard.IsSystemAdmin(claims) {
		httputil.Error(w, http.StatusForbidden, "insufficient privileges")
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Slug = strings.TrimSpace(strings.ToLower(req.Slug))
	if req.Name == "" {
		httputil.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	if !slugPattern.MatchString(req.Slug) {
		httputil.Error(w, http.StatusBadRequest, "slug must be lowercase letters, digits and hyphens")
		return
	}

	actorID, err := claims.MemberID()
	if err != nil {
		httputil.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	now := time.Now()
	church := &domain.Church{
		ID:        uuid.New(),
		Name:      req.Name,
		Slug:      req.Slug,
		CreatedAt: now,
		UpdatedAt: now,
	}
	entry := &domain.AuditEntry{
		ID:         uuid.New(),
		ChurchID:   church.ID,
		ActorID:    actorID,
		Action:     domain.AuditActionCreateChurch,
		EntityType: domain.EntityChurch,
		EntityID:   church.ID,
		CreatedAt:  now,
	}

	err = repository.Tx(r.Context(), h.db, func(tx *sql.Tx) error {
		if err := h.churches.CreateTx(r.Context(), tx, church); err != nil {
			return err
		}
		return h.audit.AppendTx(r.Context(), tx, entry)
	})
	if err != nil {
		if errors.Is(err, domain.ErrChurchExists) {
			httputil.Error(w, http.StatusConflict, "church slug already exists")
			return
		}
		h.logger.Error("church provisioning failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httputil.JSON(w, http.StatusCreated, ChurchResponse{
		ID:        church.ID.String(),
		Name:      church.Name,
		Slug:      church.Slug,
		CreatedAt: church.CreatedAt,
	})
}

// Get returns the caller's own church. Requests for any other church id
// yield not found, keeping tenants invisible to each other.
// GET /v1/churches/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	churchID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "church id must be a valid id")
		return
	}

	if claims.ChurchID != churchID.String() {
		httputil.Error(w, http.StatusNotFound, "church not found")
		return
	}

	church, err := h.churches.GetByID(r.Context(), churchID)
	if err != nil {
		if errors.Is(err, domain.ErrChurchNotFound) {
			httputil.Error(w, http.StatusNotFound, "church not found")
			return
		}
		h.logger.Error("church lookup failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httputil.JSON(w, http.StatusOK, ChurchResponse{
		ID:        church.ID.String(),
		Name:      church.Name,
		Slug:      church.Slug,
		CreatedAt: church.CreatedAt,
	})
}
