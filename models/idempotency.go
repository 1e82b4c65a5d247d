package models

import (
	"time"

	"gorm.io/datatypes"
)

// IdempotencyKey records the first completed response for a mutating request,
// keyed by the client-supplied Idempotency-Key header. Batch milestone actions
// (confirm, invoice) rely on it to stay single-shot across client retries.
// Rows live in the tenant schema.
type IdempotencyKey struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	Key            string         `json:"key" gorm:"size:128;uniqueIndex"`
	RequestHash    string         `json:"request_hash" gorm:"size:64"` // sha256 of method|path|body|schema|user
	Method         string         `json:"method" gorm:"size:10"`
	Path           string         `json:"path" gorm:"size:255"`
	TenantSchema   string         `json:"tenant_schema" gorm:"size:64"`
	UserID         string         `json:"user_id" gorm:"size:128"`
	ResponseStatus int            `json:"response_status"` // 0 until the request completes
	ResponseBody   datatypes.JSON `json:"-"`
	CreatedAt      time.Time      `json:"created_at"`
	CompletedAt    *time.Time     `json:"completed_at"`
}
