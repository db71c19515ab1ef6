package models

import (
	"time"

	dbtypes "github.com/agriconnect/agriconnect-backend/pkg/db/types"
	"github.com/agriconnect/agriconnect-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Activity is one operation executed on a field (planting, harvest, ...).
type Activity struct {
	ID                uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	FieldID           uuid.UUID           `gorm:"column:field_id;type:uuid;not null;index"`
	ActivityType      enums.ActivityType  `gorm:"column:activity_type;type:text;not null"`
	Date              time.Time           `gorm:"type:date;not null"`
	Description       string              `gorm:"type:text;not null;default:''"`
	Quantity          decimal.Decimal     `gorm:"type:numeric(10,2);not null;default:0"`
	Unit              string              `gorm:"type:text;not null;default:'kg'"`
	Cost              decimal.Decimal     `gorm:"type:numeric(12,2);not null;default:0"`
	WeatherConditions dbtypes.JSONMap     `gorm:"column:weather_conditions;type:jsonb;not null;default:'{}'"`
	PerformedByID     *uuid.UUID          `gorm:"column:performed_by_id;type:uuid"`
	Images            dbtypes.StringArray `gorm:"type:jsonb;not null;default:'[]'"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
