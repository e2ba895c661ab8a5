package audit

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/flocklink/flocklink/internal/http/middleware"
	"github.com/flocklink/flocklink/pkg/auth"
	"github.com/flocklink/flocklink/pkg/domain"
	"github.com/flocklink/flocklink/pkg/repository"
)

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(logger, repository.NewAuditRepository(db)), mock
}

func requestWithClaims(t *testing.T, target string, churchID uuid.UUID) *http.Request {
	t.Helper()

	claims := &auth.SessionClaims{
		ChurchID: churchID.String(),
		Role:     domain.RoleAdmin,
	}
	claims.Subject = uuid.New().String()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	ctx := context.WithValue(req.Context(), middleware.ClaimsKey, claims)
	return req.WithContext(ctx)
}

func auditColumns() []string {
	return []string{"id", "church_id", "actor_id", "action", "entity_type", "entity_id", "created_at"}
}

func TestList_RecentEntries(t *testing.T) {
	handler, mock := newTestHandler(t)

	churchID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM audit_log`).
		WithArgs(churchID, 100).
		WillReturnRows(sqlmock.NewRows(auditColumns()).AddRow(
			uuid.NewString(), churchID.String(), uuid.NewString(),
			string(domain.AuditActionApprove), domain.EntityMembershipRequest, uuid.NewString(), now,
		))

	req := requestWithClaims(t, "/v1/audit", churchID)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestList_FilteredByEntity(t *testing.T) {
	handler, mock := newTestHandler(t)

	churchID := uuid.New()
	entityID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM audit_log WHERE church_id = \$1 AND entity_id = \$2`).
		WithArgs(churchID, entityID).
		WillReturnRows(sqlmock.NewRows(auditColumns()).AddRow(
			uuid.NewString(), churchID.String(), uuid.NewString(),
			string(domain.AuditActionDecline), domain.EntityMembershipRequest, entityID.String(), now,
		))

	req := requestWithClaims(t, "/v1/audit?entity_id="+entityID.String(), churchID)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var body struct {
		Entries []EntryResponse `json:"entries"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(body.Entries))
	}
	if body.Entries[0].EntityID != entityID.String() {
		t.Errorf("entity_id = %q, want %q", body.Entries[0].EntityID, entityID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestList_InvalidEntityID(t *testing.T) {
	handler, mock := newTestHandler(t)

	req := requestWithClaims(t, "/v1/audit?entity_id=not-a-uuid", uuid.New())
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected database activity: %v", err)
	}
}
