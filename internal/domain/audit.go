package domain

import "time"

type AuditAction string

const (
	AuditCreated       AuditAction = "created"
	AuditUpdated       AuditAction = "updated"
	AuditStatusChanged AuditAction = "status_changed"
)

// FieldChange is one old/new pair in an audit entry.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

type AuditLogEntry struct {
	ID          string                 `json:"id"`
	Action      AuditAction            `json:"action"`
	Timestamp   time.Time              `json:"timestamp"`
	Changes     map[string]FieldChange `json:"changes"`
	Description string                 `json:"description"`
	UserName    string                 `json:"user_name"`
	UserEmail   string                 `json:"user_email"`
}
