package models

import "time"

// IdempotencyRecord stores the first completed response for one logical write
// attempt. The composite unique index over (key, user, resource, method) is
// what closes the duplicate-submission race: concurrent retries collide on
// the insert and fall back to reading the winner's row.
// StatusCode 0 means "reserved, handler still running".
type IdempotencyRecord struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Key          string     `json:"key" gorm:"size:128;not null;uniqueIndex:ux_idempotency_tuple,priority:1"`
	UserID       string     `json:"user_id" gorm:"size:36;not null;uniqueIndex:ux_idempotency_tuple,priority:2"` // empty for anonymous callers
	ResourceType string     `json:"resource_type" gorm:"size:64;not null;uniqueIndex:ux_idempotency_tuple,priority:3"`
	ResourceID   string     `json:"resource_id" gorm:"size:64;not null;uniqueIndex:ux_idempotency_tuple,priority:4"`
	Method       string     `json:"method" gorm:"size:10;not null;uniqueIndex:ux_idempotency_tuple,priority:5"`
	StatusCode   int        `json:"status_code"`
	ResponseBody []byte     `json:"-" gorm:"type:jsonb"`
	ExpiresAt    *time.Time `json:"expires_at" gorm:"index"` // advisory TTL; enforced by an external cleanup job
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at"`
}
