package farms

import (
	"context"

	"github.com/agriconnect/agriconnect-backend/pkg/db/models"
	"github.com/agriconnect/agriconnect-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes persistence for farms and their fields.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateFarm(ctx context.Context, farm *models.Farm) error
	FindFarmByID(ctx context.Context, id uuid.UUID) (*models.Farm, error)
	ListFarmsByOwner(ctx context.Context, ownerID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Farm, *pagination.Cursor, error)
	AllFarmsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Farm, error)
	UpdateFarm(ctx context.Context, id uuid.UUID, updates map[string]any) error

	CreateField(ctx context.Context, field *models.Field) error
	FindFieldByID(ctx context.Context, id uuid.UUID) (*models.Field, error)
	ListFieldsByFarm(ctx context.Context, farmID uuid.UUID) ([]models.Field, error)
	UpdateField(ctx context.Context, id uuid.UUID, updates map[string]any) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a farms repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateFarm(ctx context.Context, farm *models.Farm) error {
	return r.db.WithContext(ctx).Create(farm).Error
}

func (r *repository) FindFarmByID(ctx context.Context, id uuid.UUID) (*models.Farm, error) {
	var farm models.Farm
	if err := r.db.WithContext(ctx).First(&farm, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &farm, nil
}

func (r *repository) ListFarmsByOwner(ctx context.Context, ownerID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Farm, *pagination.Cursor, error) {
	normalized := pagination.NormalizeLimit(limit)
	query := r.db.WithContext(ctx).Model(&models.Farm{}).Where("owner_id = ?", ownerID)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var farms []models.Farm
	if err := query.Order("created_at DESC, id DESC").Limit(normalized + 1).Find(&farms).Error; err != nil {
		return nil, nil, err
	}

	if len(farms) > normalized {
		next := farms[normalized]
		farms = farms[:normalized]
		return farms, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return farms, nil, nil
}

func (r *repository) AllFarmsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Farm, error) {
	var farms []models.Farm
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("name ASC").
		Find(&farms).Error; err != nil {
		return nil, err
	}
	return farms, nil
}

func (r *repository) UpdateFarm(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Farm{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) CreateField(ctx context.Context, field *models.Field) error {
	return r.db.WithContext(ctx).Create(field).Error
}

func (r *repository) FindFieldByID(ctx context.Context, id uuid.UUID) (*models.Field, error) {
	var field models.Field
	if err := r.db.WithContext(ctx).First(&field, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &field, nil
}

func (r *repository) ListFieldsByFarm(ctx context.Context, farmID uuid.UUID) ([]models.Field, error) {
	var fields []models.Field
	if err := r.db.WithContext(ctx).
		Where("farm_id = ?", farmID).
		Order("field_number ASC").
		Find(&fields).Error; err != nil {
		return nil, err
	}
	return fields, nil
}

func (r *repository) UpdateField(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Field{}).
		Where("id = ?", id).
		Updates(updates).Error
}
