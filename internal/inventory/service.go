package inventory

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

// FarmReader is the slice of the farms repository the inventory service needs
// for ownership checks.
type FarmReader interface {
	FindFarmByID(ctx context.Context, id uuid.UUID) (*models.Farm, error)
	AllFarmsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Farm, error)
}

// Service defines inventory item, transaction, and alert operations.
type Service interface {
	CreateItem(ctx context.Context, actor types.Actor, req CreateItemRequest) (*models.InventoryItem, error)
	GetItem(ctx context.Context, actor types.Actor, itemID uuid.UUID) (*models.InventoryItem, error)
	ListItems(ctx context.Context, actor types.Actor, req ListItemsRequest) ([]models.InventoryItem, string, error)
	UpdateItem(ctx context.Context, actor types.Actor, itemID uuid.UUID, req UpdateItemRequest) (*models.InventoryItem, error)
	DeleteItem(ctx context.Context, actor types.Actor, itemID uuid.UUID) error

	CreateTransaction(ctx context.Context, actor types.Actor, req CreateTransactionRequest) (*models.InventoryTransaction, error)
	ListTransactions(ctx context.Context, actor types.Actor, req ListTransactionsRequest) ([]models.InventoryTransaction, string, error)

	ListAlerts(ctx context.Context, actor types.Actor, req ListAlertsRequest) ([]models.LowStockAlert, string, error)
	AcknowledgeAlert(ctx context.Context, actor types.Actor, alertID uuid.UUID) error
}

type service struct {
	repo   Repository
	farms  FarmReader
	ledger *Ledger
}

// NewService wires the inventory service dependencies.
func NewService(repo Repository, farms FarmReader, ledger *Ledger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "inventory repository required")
	}
	if farms == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "farm reader required")
	}
	if ledger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "ledger required")
	}
	return &service{repo: repo, farms: farms, ledger: ledger}, nil
}

func (s *service) CreateItem(ctx context.Context, actor types.Actor, req CreateItemRequest) (*models.InventoryItem, error) {
	farm, err := s.authorizedFarm(ctx, actor, req.FarmID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
	}
	if !req.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category")
	}
	if req.Quantity.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if req.MinimumStockLevel.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum stock level cannot be negative")
	}
	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		unit = "kg"
	}

	item := &models.InventoryItem{
		ID:                uuid.New(),
		FarmID:            farm.ID,
		OwnerID:           farm.OwnerID,
		Category:          req.Category,
		Name:              name,
		Description:       req.Description,
		Quantity:          req.Quantity,
		Unit:              unit,
		MinimumStockLevel: req.MinimumStockLevel,
		PurchasePrice:     req.PurchasePrice,
		SellingPrice:      req.SellingPrice,
		ExpiryDate:        req.ExpiryDate,
		StorageLocation:   req.StorageLocation,
		SupplierInfo:      req.SupplierInfo,
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		if db.IsUniqueViolation(err, "ux_inventory_items_farm_name_category") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an item with this name and category already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create item")
	}
	return item, nil
}

func (s *service) GetItem(ctx context.Context, actor types.Actor, itemID uuid.UUID) (*models.InventoryItem, error) {
	return s.authorizedItem(ctx, actor, itemID)
}

func (s *service) ListItems(ctx context.Context, actor types.Actor, req ListItemsRequest) ([]models.InventoryItem, string, error) {
	if _, err := s.authorizedFarm(ctx, actor, req.FarmID); err != nil {
		return nil, "", err
	}
	if req.Category != nil && !req.Category.IsValid() {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid category")
	}

	params := ListItemsParams{
		FarmID:   req.FarmID,
		Category: req.Category,
		LowStock: req.LowStock,
		Limit:    req.Limit,
	}
	if req.Cursor != "" {
		cursor, err := pagination.ParseCursor(req.Cursor)
		if err != nil {
			return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		params.Cursor = cursor
	}

	items, next, err := s.repo.ListItems(ctx, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
	}
	nextCursor := ""
	if next != nil {
		nextCursor = pagination.EncodeCursor(*next)
	}
	return items, nextCursor, nil
}

// UpdateItem applies metadata changes directly; a quantity change is
// converted to a delta and routed through the ledger as an adjustment so the
// audit trail stays complete.
func (s *service) UpdateItem(ctx context.Context, actor types.Actor, itemID uuid.UUID, req UpdateItemRequest) (*models.InventoryItem, error) {
	item, err := s.authorizedItem(ctx, actor, itemID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name cannot be empty")
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Unit != nil {
		updates["unit"] = strings.TrimSpace(*req.Unit)
	}
	if req.MinimumStockLevel != nil {
		if req.MinimumStockLevel.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum stock level cannot be negative")
		}
		updates["minimum_stock_level"] = *req.MinimumStockLevel
	}
	if req.PurchasePrice != nil {
		updates["purchase_price"] = *req.PurchasePrice
	}
	if req.SellingPrice != nil {
		updates["selling_price"] = *req.SellingPrice
	}
	if req.ExpiryDate != nil {
		updates["expiry_date"] = *req.ExpiryDate
	}
	if req.StorageLocation != nil {
		updates["storage_location"] = *req.StorageLocation
	}
	if req.SupplierInfo != nil {
		updates["supplier_info"] = *req.SupplierInfo
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateItem(ctx, itemID, updates); err != nil {
			if db.IsUniqueViolation(err, "ux_inventory_items_farm_name_category") {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "an item with this name and category already exists")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item")
		}
	}

	if req.Quantity != nil {
		if req.Quantity.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
		}
		delta := req.Quantity.Sub(item.Quantity)
		if !delta.IsZero() {
			actorID := actor.UserID
			note := req.Note
			if note == "" {
				note = "Quantity updated via item edit"
			}
			if _, err := s.ledger.ApplyTransaction(ctx, ApplyTransactionInput{
				ItemID:        itemID,
				Delta:         delta,
				Kind:          enums.TransactionKindAdjustment,
				PerformedByID: &actorID,
				Note:          note,
			}); err != nil {
				return nil, err
			}
		}
	}

	return s.repo.FindItemByID(ctx, itemID)
}

// DeleteItem is an administrative action outside the ledger; owners cannot
// remove their own audit trail.
func (s *service) DeleteItem(ctx context.Context, actor types.Actor, itemID uuid.UUID) error {
	if !actor.IsStaff && actor.Role != enums.UserRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only staff can delete inventory items")
	}
	if _, err := s.repo.FindItemByID(ctx, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup item")
	}
	if err := s.repo.DeleteItem(ctx, itemID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete item")
	}
	return nil
}

func (s *service) CreateTransaction(ctx context.Context, actor types.Actor, req CreateTransactionRequest) (*models.InventoryTransaction, error) {
	if req.QuantityChange.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to apply")
	}
	if !req.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid transaction kind")
	}
	if _, err := s.authorizedItem(ctx, actor, req.ItemID); err != nil {
		return nil, err
	}

	actorID := actor.UserID
	return s.ledger.ApplyTransaction(ctx, ApplyTransactionInput{
		ItemID:        req.ItemID,
		Delta:         req.QuantityChange,
		Kind:          req.Kind,
		PerformedByID: &actorID,
		Note:          req.Note,
	})
}

func (s *service) ListTransactions(ctx context.Context, actor types.Actor, req ListTransactionsRequest) ([]models.InventoryTransaction, string, error) {
	if _, err := s.authorizedItem(ctx, actor, req.ItemID); err != nil {
		return nil, "", err
	}

	params := ListTransactionsParams{ItemID: req.ItemID, Limit: req.Limit}
	if req.Cursor != "" {
		cursor, err := pagination.ParseCursor(req.Cursor)
		if err != nil {
			return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		params.Cursor = cursor
	}

	txns, next, err := s.repo.ListTransactions(ctx, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}
	nextCursor := ""
	if next != nil {
		nextCursor = pagination.EncodeCursor(*next)
	}
	return txns, nextCursor, nil
}

func (s *service) ListAlerts(ctx context.Context, actor types.Actor, req ListAlertsRequest) ([]models.LowStockAlert, string, error) {
	if _, err := s.authorizedFarm(ctx, actor, req.FarmID); err != nil {
		return nil, "", err
	}

	params := ListAlertsParams{
		FarmID:         req.FarmID,
		UnresolvedOnly: req.UnresolvedOnly,
		Limit:          req.Limit,
	}
	if req.Cursor != "" {
		cursor, err := pagination.ParseCursor(req.Cursor)
		if err != nil {
			return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		params.Cursor = cursor
	}

	alerts, next, err := s.repo.ListAlerts(ctx, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list alerts")
	}
	nextCursor := ""
	if next != nil {
		nextCursor = pagination.EncodeCursor(*next)
	}
	return alerts, nextCursor, nil
}

// AcknowledgeAlert flips the user-facing flag only; resolution stays with the
// monitor.
func (s *service) AcknowledgeAlert(ctx context.Context, actor types.Actor, alertID uuid.UUID) error {
	alert, err := s.repo.FindAlertByID(ctx, alertID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "alert not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup alert")
	}
	if _, err := s.authorizedItem(ctx, actor, alert.ItemID); err != nil {
		return err
	}
	if err := s.repo.AcknowledgeAlert(ctx, alertID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acknowledge alert")
	}
	return nil
}

func (s *service) authorizedFarm(ctx context.Context, actor types.Actor, farmID uuid.UUID) (*models.Farm, error) {
	return authorizeFarm(ctx, s.farms, actor, farmID)
}

func (s *service) authorizedItem(ctx context.Context, actor types.Actor, itemID uuid.UUID) (*models.InventoryItem, error) {
	return authorizeItem(ctx, s.repo, actor, itemID)
}

func authorizeFarm(ctx context.Context, farms FarmReader, actor types.Actor, farmID uuid.UUID) (*models.Farm, error) {
	if farmID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "farm id required")
	}
	farm, err := farms.FindFarmByID(ctx, farmID)
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

func authorizeItem(ctx context.Context, repo Repository, actor types.Actor, itemID uuid.UUID) (*models.InventoryItem, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	item, err := repo.FindItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup item")
	}
	if !actor.CanManage(item.OwnerID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "you do not have access to this item")
	}
	return item, nil
}
