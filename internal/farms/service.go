package farms

import (
	"context"
	"errors"
	"strings"

	"github.com/agriconnect/agriconnect-backend/pkg/db"
	"github.com/agriconnect/agriconnect-backend/pkg/db/models"
	"github.com/agriconnect/agriconnect-backend/pkg/enums"
	pkgerrors "github.com/agriconnect/agriconnect-backend/pkg/errors"
	"github.com/agriconnect/agriconnect-backend/pkg/pagination"
	"github.com/agriconnect/agriconnect-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service defines farm and field management operations.
type Service interface {
	CreateFarm(ctx context.Context, actor types.Actor, req CreateFarmRequest) (*models.Farm, error)
	GetFarm(ctx context.Context, actor types.Actor, farmID uuid.UUID) (*models.Farm, error)
	ListFarms(ctx context.Context, actor types.Actor, params pagination.Params) ([]models.Farm, string, error)
	UpdateFarm(ctx context.Context, actor types.Actor, farmID uuid.UUID, req UpdateFarmRequest) (*models.Farm, error)
	DeactivateFarm(ctx context.Context, actor types.Actor, farmID uuid.UUID) error

	CreateField(ctx context.Context, actor types.Actor, farmID uuid.UUID, req CreateFieldRequest) (*models.Field, error)
	ListFields(ctx context.Context, actor types.Actor, farmID uuid.UUID) ([]models.Field, error)
	UpdateField(ctx context.Context, actor types.Actor, fieldID uuid.UUID, req UpdateFieldRequest) (*models.Field, error)
}

type service struct {
	repo Repository
}

// NewService wires the farms service dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "farms repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateFarm(ctx context.Context, actor types.Actor, req CreateFarmRequest) (*models.Farm, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "farm name is required")
	}
	if !req.TotalArea.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total area must be positive")
	}
	soil := req.SoilType
	if soil == "" {
		soil = enums.SoilLoam
	}
	irrigation := req.IrrigationType
	if irrigation == "" {
		irrigation = enums.IrrigationNone
	}
	if !soil.IsValid() || !irrigation.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid soil or irrigation type")
	}

	farm := &models.Farm{
		ID:              uuid.New(),
		OwnerID:         actor.UserID,
		Name:            name,
		Location:        strings.TrimSpace(req.Location),
		TotalArea:       req.TotalArea,
		SoilType:        soil,
		IrrigationType:  irrigation,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		EstablishedDate: req.EstablishedDate,
		IsActive:        true,
	}
	if err := s.repo.CreateFarm(ctx, farm); err != nil {
		if db.IsUniqueViolation(err, "ux_farms_owner_name") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a farm with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create farm")
	}
	return farm, nil
}

func (s *service) GetFarm(ctx context.Context, actor types.Actor, farmID uuid.UUID) (*models.Farm, error) {
	return s.authorizedFarm(ctx, actor, farmID)
}

func (s *service) ListFarms(ctx context.Context, actor types.Actor, params pagination.Params) ([]models.Farm, string, error) {
	var cursor *pagination.Cursor
	if params.Cursor != "" {
		parsed, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		cursor = parsed
	}

	farms, next, err := s.repo.ListFarmsByOwner(ctx, actor.UserID, params.Limit, cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list farms")
	}

	nextCursor := ""
	if next != nil {
		nextCursor = pagination.EncodeCursor(*next)
	}
	return farms, nextCursor, nil
}

func (s *service) UpdateFarm(ctx context.Context, actor types.Actor, farmID uuid.UUID, req UpdateFarmRequest) (*models.Farm, error) {
	farm, err := s.authorizedFarm(ctx, actor, farmID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "farm name cannot be empty")
		}
		updates["name"] = name
	}
	if req.Location != nil {
		updates["location"] = strings.TrimSpace(*req.Location)
	}
	if req.TotalArea != nil {
		if !req.TotalArea.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "total area must be positive")
		}
		updates["total_area"] = *req.TotalArea
	}
	if req.SoilType != nil {
		if !req.SoilType.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid soil type")
		}
		updates["soil_type"] = *req.SoilType
	}
	if req.IrrigationType != nil {
		if !req.IrrigationType.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid irrigation type")
		}
		updates["irrigation_type"] = *req.IrrigationType
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return farm, nil
	}

	if err := s.repo.UpdateFarm(ctx, farmID, updates); err != nil {
		if db.IsUniqueViolation(err, "ux_farms_owner_name") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a farm with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update farm")
	}
	return s.repo.FindFarmByID(ctx, farmID)
}

func (s *service) DeactivateFarm(ctx context.Context, actor types.Actor, farmID uuid.UUID) error {
	if _, err := s.authorizedFarm(ctx, actor, farmID); err != nil {
		return err
	}
	if err := s.repo.UpdateFarm(ctx, farmID, map[string]any{"is_active": false}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate farm")
	}
	return nil
}

func (s *service) CreateField(ctx context.Context, actor types.Actor, farmID uuid.UUID, req CreateFieldRequest) (*models.Field, error) {
	if _, err := s.authorizedFarm(ctx, actor, farmID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.FieldName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "field name is required")
	}
	if req.FieldNumber <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "field number must be positive")
	}
	if !req.Area.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "area must be positive")
	}

	field := &models.Field{
		ID:          uuid.New(),
		FarmID:      farmID,
		FieldName:   name,
		FieldNumber: req.FieldNumber,
		Area:        req.Area,
		CurrentCrop: strings.TrimSpace(req.CurrentCrop),
		SoilPH:      req.SoilPH,
		Notes:       req.Notes,
		IsActive:    true,
	}
	if err := s.repo.CreateField(ctx, field); err != nil {
		if db.IsUniqueViolation(err, "ux_fields_farm_number") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "field number already used on this farm")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create field")
	}
	return field, nil
}

func (s *service) ListFields(ctx context.Context, actor types.Actor, farmID uuid.UUID) ([]models.Field, error) {
	if _, err := s.authorizedFarm(ctx, actor, farmID); err != nil {
		return nil, err
	}
	fields, err := s.repo.ListFieldsByFarm(ctx, farmID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list fields")
	}
	return fields, nil
}

func (s *service) UpdateField(ctx context.Context, actor types.Actor, fieldID uuid.UUID, req UpdateFieldRequest) (*models.Field, error) {
	field, err := s.repo.FindFieldByID(ctx, fieldID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "field not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup field")
	}
	if _, err := s.authorizedFarm(ctx, actor, field.FarmID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.FieldName != nil {
		name := strings.TrimSpace(*req.FieldName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "field name cannot be empty")
		}
		updates["field_name"] = name
	}
	if req.Area != nil {
		if !req.Area.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "area must be positive")
		}
		updates["area"] = *req.Area
	}
	if req.CurrentCrop != nil {
		updates["current_crop"] = strings.TrimSpace(*req.CurrentCrop)
	}
	if req.SoilPH != nil {
		updates["soil_ph"] = *req.SoilPH
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return field, nil
	}

	if err := s.repo.UpdateField(ctx, fieldID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update field")
	}
	return s.repo.FindFieldByID(ctx, fieldID)
}

func (s *service) authorizedFarm(ctx context.Context, actor types.Actor, farmID uuid.UUID) (*models.Farm, error) {
	if farmID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "farm id required")
	}
	farm, err := s.repo.FindFarmByID(ctx, farmID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "farm not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup farm")
	}
	if !actor.CanManage(farm.OwnerID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "you do not have access to this farm")
	}
	return farm, nil
}
