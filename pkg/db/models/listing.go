package models

import (
	"time"

	dbtypes "github.com/agriconnect/agriconnect-backend/pkg/db/types"
	"github.com/agriconnect/agriconnect-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Listing is a marketplace offer for agricultural goods, optionally backed by
// an inventory item belonging to the seller.
type Listing struct {
	ID              uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	FarmID          uuid.UUID             `gorm:"column:farm_id;type:uuid;not null;index"`
	SellerID        uuid.UUID             `gorm:"column:seller_id;type:uuid;not null;index"`
	Category        enums.ListingCategory `gorm:"type:text;not null;default:'crops'"`
	Title           string                `gorm:"type:text;not null"`
	Description     string                `gorm:"type:text;not null"`
	Quantity        decimal.Decimal       `gorm:"type:numeric(12,2);not null"`
	Unit            string                `gorm:"type:text;not null;default:'kg'"`
	PricePerUnit    decimal.Decimal       `gorm:"column:price_per_unit;type:numeric(12,2);not null"`
	QualityGrade    enums.QualityGrade    `gorm:"column:quality_grade;type:text;not null;default:'grade_a'"`
	Location        string                `gorm:"type:text;not null;default:''"`
	Images          dbtypes.StringArray   `gorm:"type:jsonb;not null;default:'[]'"`
	IsNegotiable    bool                  `gorm:"column:is_negotiable;not null;default:false"`
	Status          enums.ListingStatus   `gorm:"type:text;not null;default:'active'"`
	ExpiresAt       time.Time             `gorm:"column:expires_at;not null"`
	ViewsCount      int                   `gorm:"column:views_count;not null;default:0"`
	InventoryItemID *uuid.UUID            `gorm:"column:inventory_item_id;type:uuid"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
