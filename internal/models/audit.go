package models

import "time"

// AuditAction enumerates recorded audit events.
type AuditAction string

const (
	AuditActionSignup       AuditAction = "SIGNUP"
	AuditActionLogin        AuditAction = "LOGIN"
	AuditActionCourseCreate AuditAction = "COURSE_CREATE"
	AuditActionCourseUpdate AuditAction = "COURSE_UPDATE"
	AuditActionCourseDelete AuditAction = "COURSE_DELETE"
	AuditActionEnroll       AuditAction = "ENROLL"
	AuditActionUnenroll     AuditAction = "UNENROLL"
)

// AuditLog stores a best-effort trail of security-relevant actions.
type AuditLog struct {
	ID         string      `db:"id" json:"id"`
	UserID     *string     `db:"user_id" json:"user_id,omitempty"`
	Action     AuditAction `db:"action" json:"action"`
	Resource   string      `db:"resource" json:"resource"`
	ResourceID *string     `db:"resource_id" json:"resource_id,omitempty"`
	IPAddress  string      `db:"ip_address" json:"ip_address"`
	UserAgent  string      `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
}
