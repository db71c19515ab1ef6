package models

import (
	"time"

	"github.com/agriconnect/agriconnect-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceUpdate is an admin-curated commodity price board entry.
type PriceUpdate struct {
	ID            uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Commodity     string           `gorm:"type:text;not null;uniqueIndex:ux_price_updates_entry"`
	Grade         string           `gorm:"type:text;not null;uniqueIndex:ux_price_updates_entry"`
	Market        enums.MarketType `gorm:"type:text;not null;default:'wholesale';uniqueIndex:ux_price_updates_entry"`
	PricePerUnit  decimal.Decimal  `gorm:"column:price_per_unit;type:numeric(12,2);not null"`
	Unit          string           `gorm:"type:text;not null;default:'kg'"`
	EffectiveDate time.Time        `gorm:"column:effective_date;type:date;not null;uniqueIndex:ux_price_updates_entry"`
	IsCurrent     bool             `gorm:"column:is_current;not null;default:true"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
