package inventory

import (
	"time"

	"github.com/agriconnect/agriconnect-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateItemRequest is the payload for registering a stocked good.
type CreateItemRequest struct {
	FarmID            uuid.UUID               `json:"farm_id" validate:"required"`
	Category          enums.InventoryCategory `json:"category" validate:"required"`
	Name              string                  `json:"name" validate:"required"`
	Description       string                  `json:"description,omitempty"`
	Quantity          decimal.Decimal         `json:"quantity"`
	Unit              string                  `json:"unit,omitempty"`
	MinimumStockLevel decimal.Decimal         `json:"minimum_stock_level"`
	PurchasePrice     *decimal.Decimal        `json:"purchase_price,omitempty"`
	SellingPrice      *decimal.Decimal        `json:"selling_price,omitempty"`
	ExpiryDate        *time.Time              `json:"expiry_date,omitempty"`
	StorageLocation   string                  `json:"storage_location,omitempty"`
	SupplierInfo      string                  `json:"supplier_info,omitempty"`
}

// UpdateItemRequest carries the mutable item attributes. A quantity change is
// not written directly: the service computes the delta and routes it through
// the ledger as an adjustment.
type UpdateItemRequest struct {
	Name              *string          `json:"name,omitempty"`
	Description       *string          `json:"description,omitempty"`
	Quantity          *decimal.Decimal `json:"quantity,omitempty"`
	Unit              *string          `json:"unit,omitempty"`
	MinimumStockLevel *decimal.Decimal `json:"minimum_stock_level,omitempty"`
	PurchasePrice     *decimal.Decimal `json:"purchase_price,omitempty"`
	SellingPrice      *decimal.Decimal `json:"selling_price,omitempty"`
	ExpiryDate        *time.Time       `json:"expiry_date,omitempty"`
	StorageLocation   *string          `json:"storage_location,omitempty"`
	SupplierInfo      *string          `json:"supplier_info,omitempty"`
	Note              string           `json:"note,omitempty"`
}

// CreateTransactionRequest is the API payload for a manual ledger entry.
type CreateTransactionRequest struct {
	ItemID         uuid.UUID             `json:"item_id" validate:"required"`
	QuantityChange decimal.Decimal       `json:"quantity_change" validate:"required"`
	Kind           enums.TransactionKind `json:"kind" validate:"required"`
	Note           string                `json:"note,omitempty"`
}

// ListItemsRequest filters the item listing at the service boundary.
type ListItemsRequest struct {
	FarmID   uuid.UUID
	Category *enums.InventoryCategory
	LowStock bool
	Limit    int
	Cursor   string
}

// ListAlertsRequest filters the alert listing at the service boundary.
type ListAlertsRequest struct {
	FarmID         uuid.UUID
	UnresolvedOnly bool
	Limit          int
	Cursor         string
}

// ListTransactionsRequest filters the transaction listing.
type ListTransactionsRequest struct {
	ItemID uuid.UUID
	Limit  int
	Cursor string
}
