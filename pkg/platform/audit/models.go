package audit

import (
	"context"
	"time"

	id "bisaathi/pkg/domain"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	UserID    id.UserID `json:"user_id"`
	// ActorID tracks who performed the action when different from UserID,
	// e.g. the officer resolving a citizen's complaint.
	ActorID   string `json:"actor_id,omitempty"`
	Action    string `json:"action"`
	Subject   string `json:"subject,omitempty"`
	Points    int    `json:"points,omitempty"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type AuditEvent string

const (
	EventUserRegistered         AuditEvent = "user_registered"
	EventUserLoggedIn           AuditEvent = "user_logged_in"
	EventVerificationRecorded   AuditEvent = "verification_recorded"
	EventComplaintSubmitted     AuditEvent = "complaint_submitted"
	EventComplaintStatusChanged AuditEvent = "complaint_status_changed"
	EventResolutionBonusAwarded AuditEvent = "resolution_bonus_awarded"
	EventGuestMergeApplied      AuditEvent = "guest_merge_applied"
)

// Store persists audit events and answers per-user queries.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID id.UserID) ([]Event, error)
}

// Sink receives a copy of every published event for external fan-out
// (e.g. a Kafka topic consumed by compliance tooling). Best effort: sink
// failures are logged, never propagated to the emitting request.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}
