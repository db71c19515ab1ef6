package farms

import (
	"time"

	"github.com/agriconnect/agriconnect-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// CreateFarmRequest is the payload for registering a farm.
type CreateFarmRequest struct {
	Name            string           `json:"name" validate:"required"`
	Location        string           `json:"location" validate:"required"`
	TotalArea       decimal.Decimal  `json:"total_area" validate:"required"`
	SoilType        enums.SoilType   `json:"soil_type,omitempty"`
	IrrigationType  enums.IrrigationType `json:"irrigation_type,omitempty"`
	Latitude        *decimal.Decimal `json:"latitude,omitempty"`
	Longitude       *decimal.Decimal `json:"longitude,omitempty"`
	EstablishedDate *time.Time       `json:"established_date,omitempty"`
}

// UpdateFarmRequest carries the mutable farm attributes.
type UpdateFarmRequest struct {
	Name           *string               `json:"name,omitempty"`
	Location       *string               `json:"location,omitempty"`
	TotalArea      *decimal.Decimal      `json:"total_area,omitempty"`
	SoilType       *enums.SoilType       `json:"soil_type,omitempty"`
	IrrigationType *enums.IrrigationType `json:"irrigation_type,omitempty"`
	IsActive       *bool                 `json:"is_active,omitempty"`
}

// CreateFieldRequest is the payload for adding a field to a farm.
type CreateFieldRequest struct {
	FieldName   string           `json:"field_name" validate:"required"`
	FieldNumber int              `json:"field_number" validate:"required,min=1"`
	Area        decimal.Decimal  `json:"area" validate:"required"`
	CurrentCrop string           `json:"current_crop,omitempty"`
	SoilPH      *decimal.Decimal `json:"soil_ph,omitempty"`
	Notes       string           `json:"notes,omitempty"`
}

// UpdateFieldRequest carries the mutable field attributes.
type UpdateFieldRequest struct {
	FieldName   *string          `json:"field_name,omitempty"`
	Area        *decimal.Decimal `json:"area,omitempty"`
	CurrentCrop *string          `json:"current_crop,omitempty"`
	SoilPH      *decimal.Decimal `json:"soil_ph,omitempty"`
	Notes       *string          `json:"notes,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
}
