package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FarmMetric is a single recorded observation for a farm, e.g. a yield or
// rainfall reading. Metric types are free-form strings curated by convention.
type FarmMetric struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	FarmID     uuid.UUID       `gorm:"column:farm_id;type:uuid;not null;index"`
	MetricType string          `gorm:"column:metric_type;type:text;not null;index"`
	Value      decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Unit       string          `gorm:"type:text;not null;default:''"`
	Notes      string          `gorm:"type:text;not null;default:''"`
	RecordedAt time.Time       `gorm:"column:recorded_at;not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
