package model

import "time"

// AuditEntryType classifies an audit log entry for display.
type AuditEntryType string

// Audit entry type constants.
const (
	AuditInfo    AuditEntryType = "info"
	AuditWarning AuditEntryType = "warning"
	AuditDanger  AuditEntryType = "danger"
	AuditSuccess AuditEntryType = "success"
)

// AuditLogEntry records a user- or system-initiated action for the audit trail.
type AuditLogEntry struct {
	Time    time.Time
	User    string
	Action  string
	Details string
	Type    AuditEntryType
	ID      int64
}
