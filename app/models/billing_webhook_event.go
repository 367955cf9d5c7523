package models

import "time"

// BillingWebhookEvent is an audit row per received provider delivery. It is
// write-only bookkeeping: deliveries are always dispatched, a replayed event
// simply gets a second row.
type BillingWebhookEvent struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	ProviderEventID string     `gorm:"type:varchar(191);not null;default:'';index" json:"provider_event_id"`
	EventType       string     `gorm:"type:varchar(100);not null;index" json:"event_type"`
	PayloadJSON     string     `gorm:"type:longtext;not null" json:"payload_json"`
	SignatureValid  bool       `gorm:"default:false;index" json:"signature_valid"`
	ProcessedAt     *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	ProcessingError string     `gorm:"type:text" json:"processing_error"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
