package models

import (
	"time"

	"github.com/agriconnect/agriconnect-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryTransaction is the immutable audit record of one quantity change.
//
// NewQuantity = PreviousQuantity + QuantityChange holds exactly, with the
// recorded change already clamped. Rows are created once per successful
// ledger mutation and never updated or deleted.
type InventoryTransaction struct {
	ID               uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ItemID           uuid.UUID             `gorm:"column:item_id;type:uuid;not null;index"`
	Kind             enums.TransactionKind `gorm:"column:kind;type:text;not null"`
	QuantityChange   decimal.Decimal       `gorm:"column:quantity_change;type:numeric(12,2);not null"`
	PreviousQuantity decimal.Decimal       `gorm:"column:previous_quantity;type:numeric(12,2);not null"`
	NewQuantity      decimal.Decimal       `gorm:"column:new_quantity;type:numeric(12,2);not null"`
	RelatedActivityID *uuid.UUID           `gorm:"column:related_activity_id;type:uuid"`
	RelatedListingID  *uuid.UUID           `gorm:"column:related_listing_id;type:uuid"`
	PerformedByID    *uuid.UUID            `gorm:"column:performed_by_id;type:uuid"`
	TransactionDate  time.Time             `gorm:"column:transaction_date;not null;default:now()"`
	Notes            string                `gorm:"type:text;not null;default:''"`
}
