package marketplace

import (
	"time"

	"github.com/agriconnect/agriconnect-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateListingRequest is the payload for publishing a marketplace offer.
type CreateListingRequest struct {
	FarmID          uuid.UUID             `json:"farm_id" validate:"required"`
	Category        enums.ListingCategory `json:"category" validate:"required"`
	Title           string                `json:"title" validate:"required"`
	Description     string                `json:"description,omitempty"`
	Quantity        decimal.Decimal       `json:"quantity" validate:"required"`
	Unit            string                `json:"unit,omitempty"`
	PricePerUnit    decimal.Decimal       `json:"price_per_unit" validate:"required"`
	QualityGrade    enums.QualityGrade    `json:"quality_grade,omitempty"`
	Location        string                `json:"location,omitempty"`
	Images          []string              `json:"images,omitempty"`
	IsNegotiable    bool                  `json:"is_negotiable"`
	ExpiresAt       *time.Time            `json:"expires_at,omitempty"`
	InventoryItemID *uuid.UUID            `json:"inventory_item_id,omitempty"`
}

// UpdateListingRequest carries the mutable listing attributes.
type UpdateListingRequest struct {
	Title        *string          `json:"title,omitempty"`
	Description  *string          `json:"description,omitempty"`
	Quantity     *decimal.Decimal `json:"quantity,omitempty"`
	Unit         *string          `json:"unit,omitempty"`
	PricePerUnit *decimal.Decimal `json:"price_per_unit,omitempty"`
	QualityGrade *enums.QualityGrade `json:"quality_grade,omitempty"`
	Location     *string          `json:"location,omitempty"`
	Images       *[]string        `json:"images,omitempty"`
	IsNegotiable *bool            `json:"is_negotiable,omitempty"`
	ExpiresAt    *time.Time       `json:"expires_at,omitempty"`
}

// ListListingsRequest filters the public listing feed.
type ListListingsRequest struct {
	Category *enums.ListingCategory
	Status   *enums.ListingStatus
	SellerID *uuid.UUID
	Limit    int
	Cursor   string
}

// CreatePriceUpdateRequest is the admin payload for a price board entry.
type CreatePriceUpdateRequest struct {
	Commodity     string           `json:"commodity" validate:"required"`
	Grade         string           `json:"grade" validate:"required"`
	Market        enums.MarketType `json:"market" validate:"required"`
	PricePerUnit  decimal.Decimal  `json:"price_per_unit" validate:"required"`
	Unit          string           `json:"unit,omitempty"`
	EffectiveDate time.Time        `json:"effective_date" validate:"required"`
}

// ListPricesRequest filters the price board.
type ListPricesRequest struct {
	Commodity   string
	Market      *enums.MarketType
	CurrentOnly bool
	Limit       int
	Cursor      string
}
