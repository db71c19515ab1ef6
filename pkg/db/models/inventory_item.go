package models

import (
	"time"

	"github.com/agriconnect/agriconnect-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryItem is a stocked good owned by a farm/owner pair.
//
// Quantity is authoritative and never mutated outside the stock ledger; the
// (farm, name, category) triple is unique; quantity never goes negative.
type InventoryItem struct {
	ID                uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	FarmID            uuid.UUID               `gorm:"column:farm_id;type:uuid;not null;uniqueIndex:ux_inventory_items_farm_name_category"`
	OwnerID           uuid.UUID               `gorm:"column:owner_id;type:uuid;not null;index"`
	Category          enums.InventoryCategory `gorm:"type:text;not null;uniqueIndex:ux_inventory_items_farm_name_category"`
	Name              string                  `gorm:"type:text;not null;uniqueIndex:ux_inventory_items_farm_name_category"`
	Description       string                  `gorm:"type:text;not null;default:''"`
	Quantity          decimal.Decimal         `gorm:"type:numeric(12,2);not null;default:0"`
	Unit              string                  `gorm:"type:text;not null;default:'kg'"`
	MinimumStockLevel decimal.Decimal         `gorm:"column:minimum_stock_level;type:numeric(12,2);not null;default:0"`
	PurchasePrice     *decimal.Decimal        `gorm:"column:purchase_price;type:numeric(12,2)"`
	SellingPrice      *decimal.Decimal        `gorm:"column:selling_price;type:numeric(12,2)"`
	ExpiryDate        *time.Time              `gorm:"column:expiry_date;type:date"`
	StorageLocation   string                  `gorm:"column:storage_location;type:text;not null;default:''"`
	SupplierInfo      string                  `gorm:"column:supplier_info;type:text;not null;default:''"`
	LastAudited       *time.Time              `gorm:"column:last_audited;type:date"`
	CreatedAt         time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

// TotalValue estimates the stock valuation from the available pricing.
// Selling price wins over purchase price when set, even at zero; neither
// price set means zero.
func (i InventoryItem) TotalValue() decimal.Decimal {
	var price decimal.Decimal
	switch {
	case i.SellingPrice != nil:
		price = *i.SellingPrice
	case i.PurchasePrice != nil:
		price = *i.PurchasePrice
	default:
		return decimal.Zero
	}
	return price.Mul(i.Quantity).Round(2)
}

// IsLowStock reports whether the item is below its configured minimum.
// A zero minimum disables monitoring.
func (i InventoryItem) IsLowStock() bool {
	if !i.MinimumStockLevel.IsPositive() {
		return false
	}
	return i.Quantity.LessThan(i.MinimumStockLevel)
}

// IsExpiringSoon reports whether the item expires within the given window.
func (i InventoryItem) IsExpiringSoon(now time.Time, window time.Duration) bool {
	if i.ExpiryDate == nil {
		return false
	}
	return !i.ExpiryDate.After(now.Add(window))
}
