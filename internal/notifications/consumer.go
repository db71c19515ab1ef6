package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/agriconnect/agriconnect-backend/internal/inventory"
	"github.com/agriconnect/agriconnect-backend/internal/marketplace"
	"github.com/agriconnect/agriconnect-backend/pkg/db/models"
	dbtypes "github.com/agriconnect/agriconnect-backend/pkg/db/types"
	"github.com/agriconnect/agriconnect-backend/pkg/enums"
	pkgerrors "github.com/agriconnect/agriconnect-backend/pkg/errors"
	"github.com/agriconnect/agriconnect-backend/pkg/logger"
	"github.com/agriconnect/agriconnect-backend/pkg/metrics"
	"github.com/agriconnect/agriconnect-backend/pkg/outbox"
	"github.com/agriconnect/agriconnect-backend/pkg/outbox/idempotency"
	"github.com/google/uuid"
)

// ConsumerName identifies this consumer in idempotency keys and metrics.
const ConsumerName = "notifications"

// Consumer turns domain events into in-app notification rows. Redelivered
// events are skipped via the Redis idempotency guard; handler failures clear
// the guard so the broker can retry.
type Consumer struct {
	repo    Repository
	idem    *idempotency.Manager
	metrics *metrics.EventingMetrics
	logg    *logger.Logger
}

// NewConsumer wires the notification consumer.
func NewConsumer(repo Repository, idem *idempotency.Manager, eventing *metrics.EventingMetrics, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if idem == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "idempotency manager required")
	}
	return &Consumer{repo: repo, idem: idem, metrics: eventing, logg: logg}, nil
}

// Handle processes one delivered event. The payload is the outbox envelope;
// eventType comes from the message attributes. Unknown event types are
// acknowledged, not retried.
func (c *Consumer) Handle(ctx context.Context, eventType enums.OutboxEventType, payload []byte) error {
	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		c.logg.Error(ctx, "malformed event envelope", err)
		// poison message: acknowledging is the only way forward
		return nil
	}
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(ctx, "event envelope missing valid event id", err)
		return nil
	}

	logCtx := c.logg.WithFields(ctx, map[string]any{
		"event_id":   envelope.EventID,
		"event_type": eventType,
	})

	duplicate, err := c.idem.CheckAndMarkProcessed(ctx, ConsumerName, eventID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "idempotency check")
	}
	if duplicate {
		c.metrics.IncDuplicate(ConsumerName)
		c.logg.Info(logCtx, "duplicate event skipped")
		return nil
	}

	if err := c.dispatch(ctx, eventType, envelope.Data); err != nil {
		c.metrics.IncConsumeFailure(ConsumerName, string(eventType))
		// let redelivery retry a transient failure
		if delErr := c.idem.Delete(ctx, ConsumerName, eventID); delErr != nil {
			c.logg.Error(logCtx, "failed to clear idempotency marker", delErr)
		}
		return err
	}

	c.metrics.IncConsumed(ConsumerName, string(eventType))
	return nil
}

func (c *Consumer) dispatch(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage) error {
	switch eventType {
	case enums.EventLowStockAlertRaised:
		return c.handleLowStockAlert(ctx, data)
	case enums.EventListingSold:
		return c.handleListingSold(ctx, data)
	default:
		c.logg.Warn(c.logg.WithField(ctx, "event_type", eventType), "no handler for event type")
		return nil
	}
}

func (c *Consumer) handleLowStockAlert(ctx context.Context, data json.RawMessage) error {
	var payload inventory.AlertRaisedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode low stock payload")
	}

	notification := &models.Notification{
		ID:          uuid.New(),
		RecipientID: payload.OwnerID,
		Title:       "Low stock alert",
		Message: fmt.Sprintf("%s is running low: %s %s left (minimum %s %s)",
			payload.ItemName,
			payload.CurrentQuantity.String(), payload.Unit,
			payload.Threshold.String(), payload.Unit),
		Category: enums.NotificationCategoryInventory,
		Metadata: dbtypes.JSONMap{
			"alert_id": payload.AlertID.String(),
			"item_id":  payload.ItemID.String(),
			"farm_id":  payload.FarmID.String(),
		},
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}
	return nil
}

func (c *Consumer) handleListingSold(ctx context.Context, data json.RawMessage) error {
	var payload marketplace.ListingSoldPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode listing sold payload")
	}

	notification := &models.Notification{
		ID:          uuid.New(),
		RecipientID: payload.SellerID,
		Title:       "Listing sold",
		Message: fmt.Sprintf("Your listing %q sold: %s %s at %s per %s",
			payload.Title,
			payload.Quantity.String(), payload.Unit,
			payload.PricePerUnit.String(), payload.Unit),
		Category: enums.NotificationCategoryMarketplace,
		Metadata: dbtypes.JSONMap{
			"listing_id": payload.ListingID.String(),
			"farm_id":    payload.FarmID.String(),
		},
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}
	return nil
}
