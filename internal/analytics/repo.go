package analytics

import (
	"context"

	"github.com/agriconnect/agriconnect-backend/pkg/db/models"
	"github.com/agriconnect/agriconnect-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository exposes persistence for farm metrics.
type Repository interface {
	CreateMetric(ctx context.Context, metric *models.FarmMetric) error
	ListMetrics(ctx context.Context, params ListMetricsParams) ([]models.FarmMetric, *pagination.Cursor, error)
	SummarizeByFarm(ctx context.Context, params SummaryParams) ([]FarmSummaryRow, error)
}

// ListMetricsParams filters the metric feed. A nil OwnerID means unscoped.
type ListMetricsParams struct {
	FarmID     *uuid.UUID
	MetricType string
	OwnerID    *uuid.UUID
	Limit      int
	Cursor     *pagination.Cursor
}

// SummaryParams filters the per-farm aggregation. A nil OwnerID means unscoped.
type SummaryParams struct {
	MetricType string
	OwnerID    *uuid.UUID
}

// FarmSummaryRow aggregates one farm's metrics.
type FarmSummaryRow struct {
	FarmID       uuid.UUID       `gorm:"column:farm_id" json:"farm_id"`
	FarmName     string          `gorm:"column:farm_name" json:"farm_name"`
	TotalValue   decimal.Decimal `gorm:"column:total_value" json:"total_value"`
	MetricCount  int64           `gorm:"column:metric_count" json:"metric_count"`
	AverageValue decimal.Decimal `gorm:"column:average_value" json:"average_value"`
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an analytics repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateMetric(ctx context.Context, metric *models.FarmMetric) error {
	return r.db.WithContext(ctx).Create(metric).Error
}

func (r *repository) ListMetrics(ctx context.Context, params ListMetricsParams) ([]models.FarmMetric, *pagination.Cursor, error) {
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.FarmMetric{})
	if params.OwnerID != nil {
		query = query.
			Joins("JOIN farms ON farms.id = farm_metrics.farm_id").
			Where("farms.owner_id = ?", *params.OwnerID)
	}
	if params.FarmID != nil {
		query = query.Where("farm_metrics.farm_id = ?", *params.FarmID)
	}
	if params.MetricType != "" {
		query = query.Where("farm_metrics.metric_type = ?", params.MetricType)
	}
	if params.Cursor != nil {
		query = query.Where("(farm_metrics.created_at, farm_metrics.id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var metrics []models.FarmMetric
	if err := query.Order("farm_metrics.created_at DESC, farm_metrics.id DESC").Limit(normalized + 1).Find(&metrics).Error; err != nil {
		return nil, nil, err
	}

	if len(metrics) > normalized {
		next := metrics[normalized]
		metrics = metrics[:normalized]
		return metrics, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return metrics, nil, nil
}

func (r *repository) SummarizeByFarm(ctx context.Context, params SummaryParams) ([]FarmSummaryRow, error) {
	query := r.db.WithContext(ctx).
		Model(&models.FarmMetric{}).
		Select(`farms.id AS farm_id,
			farms.name AS farm_name,
			SUM(farm_metrics.value) AS total_value,
			COUNT(farm_metrics.id) AS metric_count,
			AVG(farm_metrics.value) AS average_value`).
		Joins("JOIN farms ON farms.id = farm_metrics.farm_id").
		Group("farms.id, farms.name").
		Order("farms.name ASC")
	if params.MetricType != "" {
		query = query.Where("farm_metrics.metric_type = ?", params.MetricType)
	}
	if params.OwnerID != nil {
		query = query.Where("farms.owner_id = ?", *params.OwnerID)
	}

	var rows []FarmSummaryRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
