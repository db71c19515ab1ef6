package analytics

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/agriconnect/agriconnect-backend/pkg/db/models"
	"github.com/agriconnect/agriconnect-backend/pkg/enums"
	pkgerrors "github.com/agriconnect/agriconnect-backend/pkg/errors"
	"github.com/agriconnect/agriconnect-backend/pkg/pagination"
	"github.com/agriconnect/agriconnect-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FarmReader is the slice of the farms repository the analytics service needs.
type FarmReader interface {
	FindFarmByID(ctx context.Context, id uuid.UUID) (*models.Farm, error)
}

// Service defines farm metric recording and aggregation operations.
type Service interface {
	RecordMetric(ctx context.Context, actor types.Actor, req RecordMetricRequest) (*models.FarmMetric, error)
	ListMetrics(ctx context.Context, actor types.Actor, req ListMetricsRequest) ([]models.FarmMetric, string, error)
	Summary(ctx context.Context, actor types.Actor, metricType string) ([]FarmSummaryRow, error)
}

type service struct {
	repo  Repository
	farms FarmReader
}

// NewService wires the analytics service dependencies.
func NewService(repo Repository, farms FarmReader) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "analytics repository required")
	}
	if farms == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "farms reader required")
	}
	return &service{repo: repo, farms: farms}, nil
}

func (s *service) RecordMetric(ctx context.Context, actor types.Actor, req RecordMetricRequest) (*models.FarmMetric, error) {
	metricType := strings.TrimSpace(req.MetricType)
	if metricType == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "metric type is required")
	}
	if req.FarmID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "farm id required")
	}

	farm, err := s.farms.FindFarmByID(ctx, req.FarmID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "farm not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup farm")
	}
	if !actor.CanManage(farm.OwnerID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "you cannot submit metrics for another farmer")
	}

	recordedAt := time.Now().UTC()
	if req.RecordedAt != nil {
		recordedAt = req.RecordedAt.UTC()
	}

	metric := &models.FarmMetric{
		ID:         uuid.New(),
		FarmID:     farm.ID,
		MetricType: metricType,
		Value:      req.Value,
		Unit:       strings.TrimSpace(req.Unit),
		Notes:      req.Notes,
		RecordedAt: recordedAt,
	}
	if err := s.repo.CreateMetric(ctx, metric); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create farm metric")
	}
	return metric, nil
}

func (s *service) ListMetrics(ctx context.Context, actor types.Actor, req ListMetricsRequest) ([]models.FarmMetric, string, error) {
	var cursor *pagination.Cursor
	if req.Cursor != "" {
		parsed, err := pagination.ParseCursor(req.Cursor)
		if err != nil {
			return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		cursor = parsed
	}

	params := ListMetricsParams{
		FarmID:     req.FarmID,
		MetricType: strings.TrimSpace(req.MetricType),
		OwnerID:    scopeOwner(actor),
		Limit:      req.Limit,
		Cursor:     cursor,
	}
	metrics, next, err := s.repo.ListMetrics(ctx, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list farm metrics")
	}

	nextCursor := ""
	if next != nil {
		nextCursor = pagination.EncodeCursor(*next)
	}
	return metrics, nextCursor, nil
}

func (s *service) Summary(ctx context.Context, actor types.Actor, metricType string) ([]FarmSummaryRow, error) {
	rows, err := s.repo.SummarizeByFarm(ctx, SummaryParams{
		MetricType: strings.TrimSpace(metricType),
		OwnerID:    scopeOwner(actor),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "summarize farm metrics")
	}
	return rows, nil
}

// scopeOwner restricts non-staff callers to farms they own.
func scopeOwner(actor types.Actor) *uuid.UUID {
	if actor.IsStaff || actor.Role == enums.UserRoleAdmin {
		return nil
	}
	owner := actor.UserID
	return &owner
}
