package models

import (
	"time"
)

type PaymentRecordStatus string

const (
	PaymentRecordStatusCreated   PaymentRecordStatus = "created"
	PaymentRecordStatusCompleted PaymentRecordStatus = "completed"
	PaymentRecordStatusExpired   PaymentRecordStatus = "expired"
)

// Payment is the bookkeeping row for a checkout session, 1:1 with Request.
// Retries supersede the previous session via upsert on request_id, so only
// the last-created session is ever referenced.
type Payment struct {
	ID        string              `json:"id" gorm:"primaryKey;type:uuid"`
	RequestID string              `json:"request_id" gorm:"not null;uniqueIndex"`
	SessionID string              `json:"session_id" gorm:"not null;index"`
	Provider  string              `json:"provider" gorm:"not null"`
	Amount    int64               `json:"amount" gorm:"not null"`
	Currency  string              `json:"currency" gorm:"not null"`
	Status    PaymentRecordStatus `json:"status" gorm:"not null;default:'created'"`
	CreatedAt time.Time           `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time           `json:"updated_at" gorm:"autoUpdateTime"`
}
