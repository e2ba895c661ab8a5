package audit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/flocklink/flocklink/internal/http/middleware"
	"github.com/flocklink/flocklink/internal/httputil"
	"github.com/flocklink/flocklink/pkg/domain"
	"github.com/flocklink/flocklink/pkg/repository"
)

// Handler handles audit log listing.
type Handler struct {
	logger *slog.Logger
	audit  *repository.AuditRepository
}

// NewHandler creates a new audit handler.
func NewHandler(logger *slog.Logger, audit *repository.AuditRepository) *Handler {
	return &Handler{logger: logger, audit: audit}
}

// EntryResponse represents an audit entry in responses.
type EntryResponse struct {
	ID         string    `json:"id"`
	ActorID    string    `json:"actor_id"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// List returns recent audit entries of the caller's church. An
// entity_id query parameter narrows the listing to the history of a
// single entity, in chronological order.
// GET /v1/audit
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

	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	var entries []*domain.AuditEntry
	if v := r.URL.Query().Get("entity_id"); v != "" {
		entityID, err := uuid.Parse(v)
		if err != nil {
			httputil.Error(w, http.StatusBadRequest, "entity_id must be a valid id")
			return
		}
		entries, err = h.audit.ListByEntity(r.Context(), churchID, entityID)
		if err != nil {
			h.logger.Error("audit entity listing failed", "error", err)
			httputil.Error(w, http.StatusInternalServerError, "internal server error")
			return
		}
	} else {
		entries, err = h.audit.ListByChurch(r.Context(), churchID, limit)
		if err != nil {
			h.logger.Error("audit listing failed", "error", err)
			httputil.Error(w, http.StatusInternalServerError, "internal server error")
			return
		}
	}

	responses := make([]EntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, EntryResponse{
			ID:         entry.ID.String(),
			ActorID:    entry.ActorID.String(),
			Action:     string(entry.Action),
			EntityType: entry.EntityType,
			EntityID:   entry.EntityID.String(),
			CreatedAt:  entry.CreatedAt,
		})
	}
	httputil.JSON(w, http.StatusOK, map[string]any{"entries": responses})
}
