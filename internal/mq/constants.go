package mq

import "time"

// Queue names and message definitions

// durable queue carrying committed casting transitions to notification consumers
const (
	CastingEventsQueue = "casting.events"
)

type CastingEventType string

const (
	EventApplicationSubmitted CastingEventType = "application.submitted"
	EventApplicationApproved  CastingEventType = "application.approved"
	EventApplicationRejected  CastingEventType = "application.rejected"
	EventRoleDeleted          CastingEventType = "role.deleted"
	EventPerformanceDeleted   CastingEventType = "performance.deleted"
)

type CastingEvent struct {
	Type          CastingEventType `json:"type"`
	PerformanceID uint             `json:"performance_id,omitempty"`
	RoleID        uint             `json:"role_id,omitempty"`
	ApplicationID uint             `json:"application_id,omitempty"`
	Username      string           `json:"username,omitempty"`
	Warning       string           `json:"warning,omitempty"`
	OccurredAt    time.Time        `json:"occurred_at"`
}
