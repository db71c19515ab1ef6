package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/agriconnect/agriconnect-backend/internal/inventory"
	"github.com/agriconnect/agriconnect-backend/internal/marketplace"
	"github.com/agriconnect/agriconnect-backend/pkg/db/models"
	"github.com/agriconnect/agriconnect-backend/pkg/enums"
	"github.com/agriconnect/agriconnect-backend/pkg/logger"
	"github.com/agriconnect/agriconnect-backend/pkg/outbox"
	"github.com/agriconnect/agriconnect-backend/pkg/outbox/idempotency"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSchema = `
CREATE TABLE notifications (
	id TEXT PRIMARY KEY,
	recipient_id TEXT NOT NULL,
	title TEXT NOT NULL,
	message TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT 'system',
	metadata TEXT NOT NULL DEFAULT '{}',
	read_at DATETIME,
	created_at DATETIME
);
`

type fakeStore struct {
	mu   sync.Mutex
	keys map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{keys: map[string]string{}}
}

func (s *fakeStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[key], nil
}

func (s *fakeStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[key]; ok {
		return false, nil
	}
	s.keys[key] = fmt.Sprint(value)
	return true, nil
}

func (s *fakeStore) IdempotencyKey(scope, id string) string {
	return "agc:idempotency:" + scope + ":" + id
}

func (s *fakeStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.keys, key)
	}
	return nil
}

type failingRepo struct {
	Repository
	fail bool
}

func (r *failingRepo) Create(ctx context.Context, n *models.Notification) error {
	if r.fail {
		return errors.New("db down")
	}
	return r.Repository.Create(ctx, n)
}

func newTestConsumer(t *testing.T) (*Consumer, *gorm.DB, *failingRepo) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.Exec(testSchema).Error)

	idem, err := idempotency.NewManager(newFakeStore(), time.Hour)
	require.NoError(t, err)
	logg := logger.New(logger.Options{ServiceName: "consumer-test", Level: zerolog.Disabled, Output: io.Discard})
	repo := &failingRepo{Repository: NewRepository(conn)}

	consumer, err := NewConsumer(repo, idem, nil, logg)
	require.NoError(t, err)
	return consumer, conn, repo
}

func alertEnvelope(t *testing.T, eventID uuid.UUID, payload inventory.AlertRaisedPayload) []byte {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	raw, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    eventID.String(),
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
	require.NoError(t, err)
	return raw
}

func sampleAlertPayload(ownerID uuid.UUID) inventory.AlertRaisedPayload {
	return inventory.AlertRaisedPayload{
		AlertID:         uuid.New(),
		ItemID:          uuid.New(),
		ItemName:        "Maize Seed",
		FarmID:          uuid.New(),
		OwnerID:         ownerID,
		CurrentQuantity: decimal.NewFromInt(3),
		Threshold:       decimal.NewFromInt(5),
		Unit:            "kg",
	}
}

func TestConsumer_LowStockAlertCreatesNotification(t *testing.T) {
	consumer, conn, _ := newTestConsumer(t)
	ctx := context.Background()

	ownerID := uuid.New()
	payload := sampleAlertPayload(ownerID)
	raw := alertEnvelope(t, uuid.New(), payload)

	require.NoError(t, consumer.Handle(ctx, enums.EventLowStockAlertRaised, raw))

	var stored models.Notification
	require.NoError(t, conn.First(&stored, "recipient_id = ?", ownerID).Error)
	require.Equal(t, enums.NotificationCategoryInventory, stored.Category)
	require.Contains(t, stored.Message, "Maize Seed")
	require.Equal(t, payload.AlertID.String(), stored.Metadata["alert_id"])
	require.Nil(t, stored.ReadAt)
}

func TestConsumer_RedeliveryIsDeduplicated(t *testing.T) {
	consumer, conn, _ := newTestConsumer(t)
	ctx := context.Background()

	ownerID := uuid.New()
	raw := alertEnvelope(t, uuid.New(), sampleAlertPayload(ownerID))

	require.NoError(t, consumer.Handle(ctx, enums.EventLowStockAlertRaised, raw))
	require.NoError(t, consumer.Handle(ctx, enums.EventLowStockAlertRaised, raw))

	var count int64
	require.NoError(t, conn.Model(&models.Notification{}).Where("recipient_id = ?", ownerID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestConsumer_FailureClearsGuardForRetry(t *testing.T) {
	consumer, conn, repo := newTestConsumer(t)
	ctx := context.Background()

	ownerID := uuid.New()
	raw := alertEnvelope(t, uuid.New(), sampleAlertPayload(ownerID))

	repo.fail = true
	require.Error(t, consumer.Handle(ctx, enums.EventLowStockAlertRaised, raw))

	repo.fail = false
	require.NoError(t, consumer.Handle(ctx, enums.EventLowStockAlertRaised, raw),
		"redelivery after a handler failure must not be treated as a duplicate")

	var count int64
	require.NoError(t, conn.Model(&models.Notification{}).Where("recipient_id = ?", ownerID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestConsumer_ListingSoldNotifiesSeller(t *testing.T) {
	consumer, conn, _ := newTestConsumer(t)
	ctx := context.Background()

	sellerID := uuid.New()
	data, err := json.Marshal(marketplace.ListingSoldPayload{
		ListingID:    uuid.New(),
		SellerID:     sellerID,
		FarmID:       uuid.New(),
		Title:        "Fresh Tomatoes",
		Quantity:     decimal.NewFromInt(40),
		Unit:         "kg",
		PricePerUnit: decimal.NewFromInt(80),
	})
	require.NoError(t, err)
	raw, err := json.Marshal(outbox.PayloadEnvelope{
		Version: 1, EventID: uuid.NewString(), OccurredAt: time.Now().UTC(), Data: data,
	})
	require.NoError(t, err)

	require.NoError(t, consumer.Handle(ctx, enums.EventListingSold, raw))

	var stored models.Notification
	require.NoError(t, conn.First(&stored, "recipient_id = ?", sellerID).Error)
	require.Equal(t, enums.NotificationCategoryMarketplace, stored.Category)
	require.Contains(t, stored.Message, "Fresh Tomatoes")
}

func TestConsumer_UnknownEventIsAcked(t *testing.T) {
	consumer, _, _ := newTestConsumer(t)

	raw, err := json.Marshal(outbox.PayloadEnvelope{
		Version: 1, EventID: uuid.NewString(), OccurredAt: time.Now().UTC(), Data: json.RawMessage(`{}`),
	})
	require.NoError(t, err)

	require.NoError(t, consumer.Handle(context.Background(), enums.OutboxEventType("unknown.event"), raw))
}

func TestConsumer_MalformedEnvelopeIsAcked(t *testing.T) {
	consumer, _, _ := newTestConsumer(t)
	require.NoError(t, consumer.Handle(context.Background(), enums.EventLowStockAlertRaised, []byte("not json")))
}
