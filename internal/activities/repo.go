package activities

import (
	"context"

	"github.com/agriconnect/agriconnect-backend/pkg/db/models"
	"github.com/agriconnect/agriconnect-backend/pkg/enums"
	"github.com/agriconnect/agriconnect-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes persistence for field activities.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, activity *models.Activity) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Activity, error)
	List(ctx context.Context, params ListParams) ([]models.Activity, *pagination.Cursor, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ListParams filters the activity listing.
type ListParams struct {
	FieldID      uuid.UUID
	ActivityType *enums.ActivityType
	Limit        int
	Cursor       *pagination.Cursor
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an activities repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Activity, error) {
	var activity models.Activity
	if err := r.db.WithContext(ctx).First(&activity, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &activity, nil
}

func (r *repository) List(ctx context.Context, params ListParams) ([]models.Activity, *pagination.Cursor, error) {
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Activity{}).Where("field_id = ?", params.FieldID)
	if params.ActivityType != nil {
		query = query.Where("activity_type = ?", *params.ActivityType)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var list []models.Activity
	if err := query.Order("created_at DESC, id DESC").Limit(normalized + 1).Find(&list).Error; err != nil {
		return nil, nil, err
	}

	if len(list) > normalized {
		next := list[normalized]
		list = list[:normalized]
		return list, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return list, nil, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Activity{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Activity{}, "id = ?", id).Error
}
