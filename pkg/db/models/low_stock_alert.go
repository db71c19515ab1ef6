package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LowStockAlert is one continuous episode of an item sitting below threshold.
// At most one unresolved alert exists per item; resolution is monitor-driven,
// acknowledgement is a user flag and does not affect the alert lifecycle.
type LowStockAlert struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ItemID          uuid.UUID       `gorm:"column:item_id;type:uuid;not null;index"`
	CurrentQuantity decimal.Decimal `gorm:"column:current_quantity;type:numeric(12,2);not null"`
	AlertedAt       time.Time       `gorm:"column:alerted_at;autoCreateTime"`
	Acknowledged    bool            `gorm:"not null;default:false"`
	Resolved        bool            `gorm:"not null;default:false"`
	ResolvedAt      *time.Time      `gorm:"column:resolved_at"`
}
