package domain

import (
	"time"

	"github.com/google/uuid"
)

// RequestStatus represents the state of a membership request.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusDeclined RequestStatus = "declined"
)

// MembershipRequest is a pending application by a member to join a church.
// A request leaves pending exactly once; approved and declined are terminal.
type MembershipRequest struct {
	ID        uuid.UUID
	ChurchID  uuid.UUID
	MemberID  uuid.UUID
	Status    RequestStatus
	Message   string
	CreatedAt time.Time
	DecidedAt *time.Time
	DecidedBy *uuid.UUID
	DeletedAt *time.Time
}

// IsPending returns true if the request can still be decided.
func (r *MembershipRequest) IsPending() bool {
	return r.Status == RequestStatusPending && r.DeletedAt == nil
}

// Decision is the action taken on a pending membership request.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionDecline Decision = "decline"
)

// Valid reports whether the decision is one of the known values.
func (d Decision) Valid() bool {
	return d == DecisionApprove || d == DecisionDecline
}

// Status returns the terminal status the decision leads to.
func (d Decision) Status() RequestStatus {
	if d == DecisionApprove {
		return RequestStatusApproved
	}
	return RequestStatusDeclined
}

// AuditAction returns the audit action recorded for the decision.
func (d Decision) AuditAction() AuditAction {
	if d == DecisionApprove {
		return AuditActionApprove
	}
	return AuditActionDecline
}
