package models

import (
	"time"

	dbtypes "github.com/agriconnect/agriconnect-backend/pkg/db/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Field is a cultivable plot inside a farm. FieldNumber is unique per farm.
type Field struct {
	ID                 uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	FarmID             uuid.UUID            `gorm:"column:farm_id;type:uuid;not null;uniqueIndex:ux_fields_farm_number"`
	FieldName          string               `gorm:"column:field_name;type:text;not null"`
	FieldNumber        int                  `gorm:"column:field_number;not null;uniqueIndex:ux_fields_farm_number"`
	Area               decimal.Decimal      `gorm:"type:numeric(10,2);not null"`
	CurrentCrop        string               `gorm:"column:current_crop;type:text;not null;default:''"`
	CropHistory        dbtypes.CropHistory  `gorm:"column:crop_history;type:jsonb;not null;default:'[]'"`
	SoilPH             *decimal.Decimal     `gorm:"column:soil_ph;type:numeric(4,2)"`
	LastFertilizedDate *time.Time           `gorm:"column:last_fertilized_date;type:date"`
	LastHarvestDate    *time.Time           `gorm:"column:last_harvest_date;type:date"`
	Notes              string               `gorm:"type:text;not null;default:''"`
	IsActive           bool                 `gorm:"column:is_active;not null;default:true"`
	CreatedAt          time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
