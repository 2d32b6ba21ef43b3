package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog is one immutable record of a data mutation: who did what to which
// row, with redacted before/after snapshots. Rows are append-only; the purge
// endpoint is the only thing that ever deletes them.
type AuditLog struct {
	ID        string         `json:"id" gorm:"primaryKey;size:36"`
	UserID    *string        `json:"user_id" gorm:"size:36;index"`
	Action    string         `json:"action" gorm:"size:16;not null;index"`
	Entity    string         `json:"entity" gorm:"size:64;not null;index:idx_audit_logs_entity_entity_id,priority:1"`
	EntityID  string         `json:"entity_id" gorm:"size:64;not null;index:idx_audit_logs_entity_entity_id,priority:2"`
	OldValues datatypes.JSON `json:"old_values" gorm:"type:jsonb"`
	NewValues datatypes.JSON `json:"new_values" gorm:"type:jsonb"`
	IPAddress *string        `json:"ip_address" gorm:"size:45"`
	UserAgent *string        `json:"user_agent" gorm:"size:512"`
	Timestamp time.Time      `json:"timestamp" gorm:"not null;index"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}
	return
}
