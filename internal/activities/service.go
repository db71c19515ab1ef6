package activities

import (
	"context"
	"errors"
	"strings"

	"github.com/agriconnect/agriconnect-backend/internal/farms"
	"github.com/agriconnect/agriconnect-backend/internal/inventory"
	"github.com/agriconnect/agriconnect-backend/pkg/db"
	"github.com/agriconnect/agriconnect-backend/pkg/db/models"
	dbtypes "github.com/agriconnect/agriconnect-backend/pkg/db/types"
	"github.com/agriconnect/agriconnect-backend/pkg/enums"
	pkgerrors "github.com/agriconnect/agriconnect-backend/pkg/errors"
	"github.com/agriconnect/agriconnect-backend/pkg/logger"
	"github.com/agriconnect/agriconnect-backend/pkg/pagination"
	"github.com/agriconnect/agriconnect-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service defines activity lifecycle operations. Create and update persist
// the activity, apply the field bookkeeping, and invoke the inventory bridge
// as one explicit, ordered sequence inside a single transaction.
type Service interface {
	Create(ctx context.Context, actor types.Actor, req CreateActivityRequest) (*models.Activity, error)
	Get(ctx context.Context, actor types.Actor, activityID uuid.UUID) (*models.Activity, error)
	List(ctx context.Context, actor types.Actor, req ListActivitiesRequest) ([]models.Activity, string, error)
	Update(ctx context.Context, actor types.Actor, activityID uuid.UUID, req UpdateActivityRequest) (*models.Activity, error)
	Delete(ctx context.Context, actor types.Actor, activityID uuid.UUID) error
}

type service struct {
	db     *db.Client
	repo   Repository
	farms  farms.Repository
	bridge *inventory.Bridge
	logg   *logger.Logger
}

// NewService wires the activity service dependencies.
func NewService(client *db.Client, repo Repository, farmsRepo farms.Repository, bridge *inventory.Bridge, logg *logger.Logger) (Service, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db client required")
	}
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "activities repository required")
	}
	if farmsRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "farms repository required")
	}
	if bridge == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "inventory bridge required")
	}
	return &service{db: client, repo: repo, farms: farmsRepo, bridge: bridge, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, actor types.Actor, req CreateActivityRequest) (*models.Activity, error) {
	if !req.ActivityType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid activity type")
	}
	if req.Date.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "activity date is required")
	}
	if req.Quantity.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if req.Cost.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cost cannot be negative")
	}

	field, farm, err := s.authorizedField(ctx, actor, req.FieldID)
	if err != nil {
		return nil, err
	}

	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		unit = "kg"
	}
	performedBy := actor.UserID
	activity := &models.Activity{
		ID:                uuid.New(),
		FieldID:           field.ID,
		ActivityType:      req.ActivityType,
		Date:              req.Date,
		Description:       strings.TrimSpace(req.Description),
		Quantity:          req.Quantity,
		Unit:              unit,
		Cost:              req.Cost,
		WeatherConditions: req.WeatherConditions,
		PerformedByID:     &performedBy,
		Images:            dbtypes.StringArray(req.Images),
	}
	if activity.WeatherConditions == nil {
		activity.WeatherConditions = dbtypes.JSONMap{}
	}
	if activity.Images == nil {
		activity.Images = dbtypes.StringArray{}
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, activity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create activity")
		}
		if err := s.applyFieldEffects(ctx, tx, activity, field); err != nil {
			return err
		}
		return s.bridge.ApplyActivityEffects(ctx, tx, activity, field, farm)
	})
	if err != nil {
		return nil, err
	}
	return activity, nil
}

func (s *service) Get(ctx context.Context, actor types.Actor, activityID uuid.UUID) (*models.Activity, error) {
	activity, _, _, err := s.authorizedActivity(ctx, actor, activityID)
	return activity, err
}

func (s *service) List(ctx context.Context, actor types.Actor, req ListActivitiesRequest) ([]models.Activity, string, error) {
	if _, _, err := s.authorizedField(ctx, actor, req.FieldID); err != nil {
		return nil, "", err
	}
	if req.ActivityType != nil && !req.ActivityType.IsValid() {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid activity type")
	}

	params := ListParams{FieldID: req.FieldID, ActivityType: req.ActivityType, Limit: req.Limit}
	if req.Cursor != "" {
		cursor, err := pagination.ParseCursor(req.Cursor)
		if err != nil {
			return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		params.Cursor = cursor
	}

	list, next, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list activities")
	}
	nextCursor := ""
	if next != nil {
		nextCursor = pagination.EncodeCursor(*next)
	}
	return list, nextCursor, nil
}

// Update mutates the activity and replays the field and inventory effects
// with the new values. There is no reversal of the previous application, so a
// changed quantity stacks a second movement; that mirrors the lifecycle-event
// contract of the bridge.
func (s *service) Update(ctx context.Context, actor types.Actor, activityID uuid.UUID, req UpdateActivityRequest) (*models.Activity, error) {
	activity, field, farm, err := s.authorizedActivity(ctx, actor, activityID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Date != nil {
		if req.Date.IsZero() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "activity date cannot be empty")
		}
		updates["date"] = *req.Date
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Quantity != nil {
		if req.Quantity.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
		}
		updates["quantity"] = *req.Quantity
	}
	if req.Unit != nil {
		updates["unit"] = strings.TrimSpace(*req.Unit)
	}
	if req.Cost != nil {
		if req.Cost.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cost cannot be negative")
		}
		updates["cost"] = *req.Cost
	}
	if req.WeatherConditions != nil {
		updates["weather_conditions"] = *req.WeatherConditions
	}
	if req.Images != nil {
		updates["images"] = dbtypes.StringArray(*req.Images)
	}
	if len(updates) == 0 {
		return activity, nil
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Update(ctx, activityID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update activity")
		}
		updated, err := repo.FindByID(ctx, activityID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload activity")
		}
		activity = updated
		if err := s.applyFieldEffects(ctx, tx, activity, field); err != nil {
			return err
		}
		return s.bridge.ApplyActivityEffects(ctx, tx, activity, field, farm)
	})
	if err != nil {
		return nil, err
	}
	return activity, nil
}

func (s *service) Delete(ctx context.Context, actor types.Actor, activityID uuid.UUID) error {
	if _, _, _, err := s.authorizedActivity(ctx, actor, activityID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, activityID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete activity")
	}
	return nil
}

// applyFieldEffects maintains the derived field bookkeeping: crop rotation on
// planting, last fertilized/harvest dates on the matching activities.
func (s *service) applyFieldEffects(ctx context.Context, tx *gorm.DB, activity *models.Activity, field *models.Field) error {
	updates := map[string]any{}
	switch activity.ActivityType {
	case enums.ActivityPlanting:
		crop := activity.Description
		if crop == "" {
			crop = field.CurrentCrop
		}
		if crop != "" {
			history := append(field.CropHistory, dbtypes.CropEntry{
				Crop:      crop,
				PlantedOn: activity.Date.Format("2006-01-02"),
			})
			updates["current_crop"] = crop
			updates["crop_history"] = history
			field.CurrentCrop = crop
			field.CropHistory = history
		}
	case enums.ActivityFertilizing:
		updates["last_fertilized_date"] = activity.Date
		date := activity.Date
		field.LastFertilizedDate = &date
	case enums.ActivityHarvesting:
		updates["last_harvest_date"] = activity.Date
		date := activity.Date
		field.LastHarvestDate = &date
	}
	if len(updates) == 0 {
		return nil
	}
	if err := s.farms.WithTx(tx).UpdateField(ctx, field.ID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update field")
	}
	return nil
}

func (s *service) authorizedField(ctx context.Context, actor types.Actor, fieldID uuid.UUID) (*models.Field, *models.Farm, error) {
	if fieldID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "field id required")
	}
	field, err := s.farms.FindFieldByID(ctx, fieldID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "field not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup field")
	}
	farm, err := s.farms.FindFarmByID(ctx, field.FarmID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "farm not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup farm")
	}
	if !actor.CanManage(farm.OwnerID) {
		return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "you do not have access to this field")
	}
	return field, farm, nil
}

func (s *service) authorizedActivity(ctx context.Context, actor types.Actor, activityID uuid.UUID) (*models.Activity, *models.Field, *models.Farm, error) {
	if activityID == uuid.Nil {
		return nil, nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "activity id required")
	}
	activity, err := s.repo.FindByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "activity not found")
		}
		return nil, nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup activity")
	}
	field, farm, err := s.authorizedField(ctx, actor, activity.FieldID)
	if err != nil {
		return nil, nil, nil, err
	}
	return activity, field, farm, nil
}
