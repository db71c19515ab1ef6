package models

import (
	"time"

	"github.com/agriconnect/agriconnect-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Farm is a farm owned by a single user. Name is unique per owner.
type Farm struct {
	ID              uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID         uuid.UUID            `gorm:"column:owner_id;type:uuid;not null;uniqueIndex:ux_farms_owner_name"`
	Name            string               `gorm:"type:text;not null;uniqueIndex:ux_farms_owner_name"`
	Location        string               `gorm:"type:text;not null"`
	TotalArea       decimal.Decimal      `gorm:"column:total_area;type:numeric(10,2);not null"`
	SoilType        enums.SoilType       `gorm:"column:soil_type;type:text;not null;default:'loam'"`
	IrrigationType  enums.IrrigationType `gorm:"column:irrigation_type;type:text;not null;default:'none'"`
	Latitude        *decimal.Decimal     `gorm:"type:numeric(9,6)"`
	Longitude       *decimal.Decimal     `gorm:"type:numeric(9,6)"`
	EstablishedDate *time.Time           `gorm:"column:established_date;type:date"`
	IsActive        bool                 `gorm:"column:is_active;not null;default:true"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
