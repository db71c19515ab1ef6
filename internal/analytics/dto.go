package analytics

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordMetricRequest is the payload for submitting a farm metric.
type RecordMetricRequest struct {
	FarmID     uuid.UUID       `json:"farm_id" validate:"required"`
	MetricType string          `json:"metric_type" validate:"required"`
	Value      decimal.Decimal `json:"value" validate:"required"`
	Unit       string          `json:"unit,omitempty"`
	Notes      string          `json:"notes,omitempty"`
	RecordedAt *time.Time      `json:"recorded_at,omitempty"`
}

// ListMetricsRequest filters the metric feed for the caller.
type ListMetricsRequest struct {
	FarmID     *uuid.UUID
	MetricType string
	Limit      int
	Cursor     string
}
