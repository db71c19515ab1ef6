package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/agriconnect/agriconnect-backend/pkg/db/models"
	"github.com/agriconnect/agriconnect-backend/pkg/enums"
	"github.com/agriconnect/agriconnect-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes persistence for items, transactions, and alerts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateItem(ctx context.Context, item *models.InventoryItem) error
	FindItemByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
	FindItemByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
	FindItemByName(ctx context.Context, farmID uuid.UUID, category enums.InventoryCategory, name string) (*models.InventoryItem, error)
	MatchForCategory(ctx context.Context, farmID uuid.UUID, category enums.InventoryCategory, description string) (*models.InventoryItem, error)
	ListItems(ctx context.Context, params ListItemsParams) ([]models.InventoryItem, *pagination.Cursor, error)
	ItemsByFarm(ctx context.Context, farmID uuid.UUID) ([]models.InventoryItem, error)
	UpdateItem(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdateItemQuantity(ctx context.Context, id uuid.UUID, quantity any) error
	DeleteItem(ctx context.Context, id uuid.UUID) error

	CreateTransaction(ctx context.Context, txn *models.InventoryTransaction) error
	ListTransactions(ctx context.Context, params ListTransactionsParams) ([]models.InventoryTransaction, *pagination.Cursor, error)

	FindUnresolvedAlert(ctx context.Context, itemID uuid.UUID) (*models.LowStockAlert, error)
	CreateAlert(ctx context.Context, alert *models.LowStockAlert) error
	ResolveAlert(ctx context.Context, alertID uuid.UUID, at time.Time) error
	AcknowledgeAlert(ctx context.Context, alertID uuid.UUID) error
	FindAlertByID(ctx context.Context, alertID uuid.UUID) (*models.LowStockAlert, error)
	ListAlerts(ctx context.Context, params ListAlertsParams) ([]models.LowStockAlert, *pagination.Cursor, error)
}

// ListItemsParams filters the item listing.
type ListItemsParams struct {
	FarmID   uuid.UUID
	Category *enums.InventoryCategory
	LowStock bool
	Limit    int
	Cursor   *pagination.Cursor
}

// ListTransactionsParams filters the transaction listing.
type ListTransactionsParams struct {
	ItemID uuid.UUID
	Limit  int
	Cursor *pagination.Cursor
}

// ListAlertsParams filters the alert listing.
type ListAlertsParams struct {
	FarmID       uuid.UUID
	UnresolvedOnly bool
	Limit        int
	Cursor       *pagination.Cursor
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateItem(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) FindItemByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindItemByIDForUpdate takes a row lock so concurrent ledger mutations on the
// same item serialize.
func (r *repository) FindItemByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindItemByName(ctx context.Context, farmID uuid.UUID, category enums.InventoryCategory, name string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.WithContext(ctx).
		Where("farm_id = ? AND category = ? AND lower(name) = ?", farmID, category, strings.ToLower(strings.TrimSpace(name))).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// MatchForCategory prefers a case-insensitive name match on the description,
// falling back to the earliest-expiring item of the category.
func (r *repository) MatchForCategory(ctx context.Context, farmID uuid.UUID, category enums.InventoryCategory, description string) (*models.InventoryItem, error) {
	if strings.TrimSpace(description) != "" {
		item, err := r.FindItemByName(ctx, farmID, category, description)
		if err == nil {
			return item, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	var item models.InventoryItem
	if err := r.db.WithContext(ctx).
		Where("farm_id = ? AND category = ?", farmID, category).
		Order("expiry_date ASC NULLS LAST, created_at ASC").
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) ListItems(ctx context.Context, params ListItemsParams) ([]models.InventoryItem, *pagination.Cursor, error) {
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.InventoryItem{}).Where("farm_id = ?", params.FarmID)
	if params.Category != nil {
		query = query.Where("category = ?", *params.Category)
	}
	if params.LowStock {
		query = query.Where("minimum_stock_level > 0 AND quantity < minimum_stock_level")
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var items []models.InventoryItem
	if err := query.Order("created_at DESC, id DESC").Limit(normalized + 1).Find(&items).Error; err != nil {
		return nil, nil, err
	}

	if len(items) > normalized {
		next := items[normalized]
		items = items[:normalized]
		return items, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return items, nil, nil
}

func (r *repository) ItemsByFarm(ctx context.Context, farmID uuid.UUID) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := r.db.WithContext(ctx).
		Where("farm_id = ?", farmID).
		Order("category ASC, name ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) UpdateItem(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) UpdateItemQuantity(ctx context.Context, id uuid.UUID, quantity any) error {
	return r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ?", id).
		UpdateColumn("quantity", quantity).Error
}

func (r *repository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.InventoryItem{}, "id = ?", id).Error
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.InventoryTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) ListTransactions(ctx context.Context, params ListTransactionsParams) ([]models.InventoryTransaction, *pagination.Cursor, error) {
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.InventoryTransaction{}).Where("item_id = ?", params.ItemID)
	if params.Cursor != nil {
		query = query.Where("(transaction_date, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var txns []models.InventoryTransaction
	if err := query.Order("transaction_date DESC, id DESC").Limit(normalized + 1).Find(&txns).Error; err != nil {
		return nil, nil, err
	}

	if len(txns) > normalized {
		next := txns[normalized]
		txns = txns[:normalized]
		return txns, &pagination.Cursor{CreatedAt: next.TransactionDate, ID: next.ID}, nil
	}
	return txns, nil, nil
}

func (r *repository) FindUnresolvedAlert(ctx context.Context, itemID uuid.UUID) (*models.LowStockAlert, error) {
	var alert models.LowStockAlert
	if err := r.db.WithContext(ctx).
		Where("item_id = ? AND resolved = ?", itemID, false).
		First(&alert).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *repository) CreateAlert(ctx context.Context, alert *models.LowStockAlert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *repository) ResolveAlert(ctx context.Context, alertID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.LowStockAlert{}).
		Where("id = ?", alertID).
		Updates(map[string]any{
			"resolved":    true,
			"resolved_at": at,
		}).Error
}

func (r *repository) AcknowledgeAlert(ctx context.Context, alertID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.LowStockAlert{}).
		Where("id = ?", alertID).
		UpdateColumn("acknowledged", true).Error
}

func (r *repository) FindAlertByID(ctx context.Context, alertID uuid.UUID) (*models.LowStockAlert, error) {
	var alert models.LowStockAlert
	if err := r.db.WithContext(ctx).First(&alert, "id = ?", alertID).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *repository) ListAlerts(ctx context.Context, params ListAlertsParams) ([]models.LowStockAlert, *pagination.Cursor, error) {
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.LowStockAlert{}).
		Joins("JOIN inventory_items ON inventory_items.id = low_stock_alerts.item_id").
		Where("inventory_items.farm_id = ?", params.FarmID)
	if params.UnresolvedOnly {
		query = query.Where("low_stock_alerts.resolved = ?", false)
	}
	if params.Cursor != nil {
		query = query.Where("(low_stock_alerts.alerted_at, low_stock_alerts.id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var alerts []models.LowStockAlert
	if err := query.Order("low_stock_alerts.alerted_at DESC, low_stock_alerts.id DESC").
		Limit(normalized + 1).
		Find(&alerts).Error; err != nil {
		return nil, nil, err
	}

	if len(alerts) > normalized {
		next := alerts[normalized]
		alerts = alerts[:normalized]
		return alerts, &pagination.Cursor{CreatedAt: next.AlertedAt, ID: next.ID}, nil
	}
	return alerts, nil, nil
}
