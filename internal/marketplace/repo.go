package marketplace

import (
	"context"
	"time"

	"github.com/agriconnect/agriconnect-backend/pkg/db/models"
	"github.com/agriconnect/agriconnect-backend/pkg/enums"
	"github.com/agriconnect/agriconnect-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes persistence for listings and price updates.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateListing(ctx context.Context, listing *models.Listing) error
	FindListingByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	FindListingByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	ListListings(ctx context.Context, params ListListingsParams) ([]models.Listing, *pagination.Cursor, error)
	FindExpiredActiveListings(ctx context.Context, cutoff time.Time, limit int) ([]models.Listing, error)
	UpdateListing(ctx context.Context, id uuid.UUID, updates map[string]any) error
	IncrementViews(ctx context.Context, id uuid.UUID) error

	CreatePriceUpdate(ctx context.Context, update *models.PriceUpdate) error
	ClearCurrentPrice(ctx context.Context, commodity, grade string, market enums.MarketType) error
	ListPriceUpdates(ctx context.Context, params ListPricesParams) ([]models.PriceUpdate, *pagination.Cursor, error)
}

// ListListingsParams filters the listing feed.
type ListListingsParams struct {
	Category *enums.ListingCategory
	Status   *enums.ListingStatus
	SellerID *uuid.UUID
	Limit    int
	Cursor   *pagination.Cursor
}

// ListPricesParams filters the price board.
type ListPricesParams struct {
	Commodity   string
	Market      *enums.MarketType
	CurrentOnly bool
	Limit       int
	Cursor      *pagination.Cursor
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a marketplace repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateListing(ctx context.Context, listing *models.Listing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

func (r *repository) FindListingByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).First(&listing, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

// FindListingByIDForUpdate locks the row so concurrent mark-sold calls on the
// same listing serialize.
func (r *repository) FindListingByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&listing, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *repository) ListListings(ctx context.Context, params ListListingsParams) ([]models.Listing, *pagination.Cursor, error) {
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Listing{})
	if params.Category != nil {
		query = query.Where("category = ?", *params.Category)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.SellerID != nil {
		query = query.Where("seller_id = ?", *params.SellerID)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var listings []models.Listing
	if err := query.Order("created_at DESC, id DESC").Limit(normalized + 1).Find(&listings).Error; err != nil {
		return nil, nil, err
	}

	if len(listings) > normalized {
		next := listings[normalized]
		listings = listings[:normalized]
		return listings, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return listings, nil, nil
}

func (r *repository) FindExpiredActiveListings(ctx context.Context, cutoff time.Time, limit int) ([]models.Listing, error) {
	var listings []models.Listing
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at <= ?", enums.ListingStatusActive, cutoff).
		Order("expires_at ASC").
		Limit(limit).
		Find(&listings).Error
	return listings, err
}

func (r *repository) UpdateListing(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ?", id).
		UpdateColumn("views_count", gorm.Expr("views_count + 1")).Error
}

func (r *repository) CreatePriceUpdate(ctx context.Context, update *models.PriceUpdate) error {
	return r.db.WithContext(ctx).Create(update).Error
}

// ClearCurrentPrice unflags older board entries for the same commodity slot
// before a fresh one becomes current.
func (r *repository) ClearCurrentPrice(ctx context.Context, commodity, grade string, market enums.MarketType) error {
	return r.db.WithContext(ctx).
		Model(&models.PriceUpdate{}).
		Where("commodity = ? AND grade = ? AND market = ? AND is_current = ?", commodity, grade, market, true).
		UpdateColumn("is_current", false).Error
}

func (r *repository) ListPriceUpdates(ctx context.Context, params ListPricesParams) ([]models.PriceUpdate, *pagination.Cursor, error) {
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.PriceUpdate{})
	if params.Commodity != "" {
		query = query.Where("lower(commodity) = lower(?)", params.Commodity)
	}
	if params.Market != nil {
		query = query.Where("market = ?", *params.Market)
	}
	if params.CurrentOnly {
		query = query.Where("is_current = ?", true)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var updates []models.PriceUpdate
	if err := query.Order("created_at DESC, id DESC").Limit(normalized + 1).Find(&updates).Error; err != nil {
		return nil, nil, err
	}

	if len(updates) > normalized {
		next := updates[normalized]
		updates = updates[:normalized]
		return updates, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return updates, nil, nil
}
