package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agriconnect/agriconnect-backend/pkg/db"
	"github.com/agriconnect/agriconnect-backend/pkg/db/models"
	"github.com/agriconnect/agriconnect-backend/pkg/enums"
	pkgerrors "github.com/agriconnect/agriconnect-backend/pkg/errors"
	"github.com/agriconnect/agriconnect-backend/pkg/logger"
	"github.com/agriconnect/agriconnect-backend/pkg/outbox"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ApplyTransactionInput describes one requested quantity change.
type ApplyTransactionInput struct {
	ItemID            uuid.UUID
	Delta             decimal.Decimal
	Kind              enums.TransactionKind
	PerformedByID     *uuid.UUID
	RelatedActivityID *uuid.UUID
	RelatedListingID  *uuid.UUID
	Note              string
}

// AlertRaisedPayload is the outbox event body for a new low-stock alert.
type AlertRaisedPayload struct {
	AlertID         uuid.UUID       `json:"alert_id"`
	ItemID          uuid.UUID       `json:"item_id"`
	ItemName        string          `json:"item_name"`
	FarmID          uuid.UUID       `json:"farm_id"`
	OwnerID         uuid.UUID       `json:"owner_id"`
	CurrentQuantity decimal.Decimal `json:"current_quantity"`
	Threshold       decimal.Decimal `json:"threshold"`
	Unit            string          `json:"unit"`
}

// Ledger is the only writer of item quantities. Every mutation runs in one
// transaction covering the quantity update, the audit record, and the alert
// re-evaluation.
type Ledger struct {
	db     *db.Client
	repo   Repository
	outbox *outbox.Service
	logg   *logger.Logger
}

// NewLedger wires the stock ledger dependencies.
func NewLedger(client *db.Client, repo Repository, outboxSvc *outbox.Service, logg *logger.Logger) (*Ledger, error) {
	if client == nil {
		return nil, fmt.Errorf("db client is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("inventory repository is required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox service is required")
	}
	return &Ledger{db: client, repo: repo, outbox: outboxSvc, logg: logg}, nil
}

// ApplyTransaction runs one ledger mutation in its own transaction.
// A zero delta is a no-op returning (nil, nil).
func (l *Ledger) ApplyTransaction(ctx context.Context, input ApplyTransactionInput) (*models.InventoryTransaction, error) {
	if input.Delta.IsZero() {
		return nil, nil
	}
	var txn *models.InventoryTransaction
	err := l.db.WithTx(ctx, func(tx *gorm.DB) error {
		applied, err := l.ApplyTransactionTx(ctx, tx, input)
		if err != nil {
			return err
		}
		txn = applied
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// ApplyTransactionTx applies the mutation inside the caller's transaction so
// callers that already hold a unit of work (the activity bridge, marketplace
// sales) stay atomic with their own writes.
func (l *Ledger) ApplyTransactionTx(ctx context.Context, tx *gorm.DB, input ApplyTransactionInput) (*models.InventoryTransaction, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	if input.Delta.IsZero() {
		return nil, nil
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid transaction kind")
	}

	repo := l.repo.WithTx(tx)

	item, err := repo.FindItemByIDForUpdate(ctx, input.ItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock inventory item")
	}

	previous := item.Quantity
	delta := input.Delta
	if previous.Add(delta).IsNegative() {
		// never go negative: clamp so the result is exactly zero
		clamped := previous.Neg()
		logCtx := l.logg.WithFields(ctx, map[string]any{
			"item_id":         item.ID.String(),
			"requested_delta": delta.String(),
			"applied_delta":   clamped.String(),
		})
		l.logg.Warn(logCtx, "ledger delta clamped to avoid negative stock")
		delta = clamped
	}
	newQuantity := previous.Add(delta)

	if err := repo.UpdateItemQuantity(ctx, item.ID, newQuantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item quantity")
	}
	item.Quantity = newQuantity

	txn := &models.InventoryTransaction{
		ID:                uuid.New(),
		ItemID:            item.ID,
		Kind:              input.Kind,
		QuantityChange:    delta,
		PreviousQuantity:  previous,
		NewQuantity:       newQuantity,
		RelatedActivityID: input.RelatedActivityID,
		RelatedListingID:  input.RelatedListingID,
		PerformedByID:     input.PerformedByID,
		TransactionDate:   time.Now().UTC(),
		Notes:             input.Note,
	}
	if err := repo.CreateTransaction(ctx, txn); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record transaction")
	}

	if err := l.reevaluate(ctx, tx, item); err != nil {
		return nil, err
	}

	return txn, nil
}

// reevaluate drives the per-item alert state machine. It runs only inside a
// ledger transaction, after the quantity update.
func (l *Ledger) reevaluate(ctx context.Context, tx *gorm.DB, item *models.InventoryItem) error {
	repo := l.repo.WithTx(tx)
	threshold := item.MinimumStockLevel
	monitoring := threshold.IsPositive()

	existing, err := repo.FindUnresolvedAlert(ctx, item.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find unresolved alert")
	}
	hasAlert := err == nil

	if monitoring && item.Quantity.LessThan(threshold) {
		if hasAlert {
			// idempotent: keep the original episode and snapshot
			return nil
		}
		alert := &models.LowStockAlert{
			ID:              uuid.New(),
			ItemID:          item.ID,
			CurrentQuantity: item.Quantity,
			AlertedAt:       time.Now().UTC(),
		}
		if err := repo.CreateAlert(ctx, alert); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create low stock alert")
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventLowStockAlertRaised,
			AggregateType: enums.AggregateLowStockAlert,
			AggregateID:   alert.ID,
			Data: AlertRaisedPayload{
				AlertID:         alert.ID,
				ItemID:          item.ID,
				ItemName:        item.Name,
				FarmID:          item.FarmID,
				OwnerID:         item.OwnerID,
				CurrentQuantity: item.Quantity,
				Threshold:       threshold,
				Unit:            item.Unit,
			},
			Version: 1,
		}
		if err := l.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit alert event")
		}
		return nil
	}

	if hasAlert {
		if err := repo.ResolveAlert(ctx, existing.ID, time.Now().UTC()); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve low stock alert")
		}
	}
	return nil
}
