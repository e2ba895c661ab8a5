package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/flocklink/flocklink/pkg/domain"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestDecideTx_PendingRowUpdated(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRequestsRepository(db)

	requestID := uuid.New()
	churchID := uuid.New()
	actorID := uuid.New()
	now := time.Now()

	mock.ExpectExec(`UPDATE membership_requests`).
		WithArgs(string(domain.RequestStatusApproved), actorID, now, requestID, churchID, string(domain.RequestStatusPending)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.DecideTx(context.Background(), db, requestID, churchID, domain.RequestStatusApproved, actorID, now)
	if err != nil {
		t.Fatalf("DecideTx() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDecideTx_NoPendingRowIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRequestsRepository(db)

	// Second decider racing on the same request: the conditional update
	// matches nothing because the row is no longer pending.
	mock.ExpectExec(`UPDATE membership_requests`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DecideTx(context.Background(), db, uuid.New(), uuid.New(), domain.RequestStatusDeclined, uuid.New(), time.Now())
	if !errors.Is(err, domain.ErrRequestNotFound) {
		t.Fatalf("DecideTx() error = %v, want ErrRequestNotFound", err)
	}
}

func TestGetByID_ScopedToChurch(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRequestsRepository(db)

	requestID := uuid.New()
	churchID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM membership_requests`).
		WithArgs(requestID, churchID).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), requestID, churchID)
	if !errors.Is(err, domain.ErrRequestNotFound) {
		t.Fatalf("GetByID() error = %v, want ErrRequestNotFound", err)
	}
}

func TestListPendingByChurch(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRequestsRepository(db)

	churchID := uuid.New()
	requestID := uuid.New()
	memberID := uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"id", "church_id", "member_id", "status", "message", "created_at", "decided_at", "decided_by", "deleted_at",
	}).AddRow(requestID, churchID, memberID, string(domain.RequestStatusPending), "please add me", now, nil, nil, nil)

	mock.ExpectQuery(`SELECT .+ FROM membership_requests`).
		WithArgs(churchID, string(domain.RequestStatusPending)).
		WillReturnRows(rows)

	requests, err := repo.ListPendingByChurch(context.Background(), churchID)
	if err != nil {
		t.Fatalf("ListPendingByChurch() error = %v", err)
	}
	if len(requests) != 1 {
		t.Fatalf("got %d requests, want 1", len(requests))
	}
	if requests[0].ID != requestID {
		t.Errorf("request ID = %v, want %v", requests[0].ID, requestID)
	}
	if !requests[0].IsPending() {
		t.Error("listed request should be pending")
	}
}
