package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/agriconnect/agriconnect-backend/pkg/config"
	"github.com/agriconnect/agriconnect-backend/pkg/db/models"
	"github.com/agriconnect/agriconnect-backend/pkg/enums"
	"github.com/agriconnect/agriconnect-backend/pkg/logger"
	"github.com/agriconnect/agriconnect-backend/pkg/outbox"
)

const testSchema = `
CREATE TABLE outbox_events (
	id TEXT PRIMARY KEY,
	event_type TEXT NOT NULL,
	aggregate_type TEXT NOT NULL,
	aggregate_id TEXT NOT NULL,
	payload TEXT NOT NULL,
	created_at DATETIME,
	published_at DATETIME,
	attempt_count INTEGER NOT NULL DEFAULT 0,
	last_error TEXT,
	UNIQUE (event_type, aggregate_type, aggregate_id)
);
`

type fakeResult struct {
	err error
}

func (r fakeResult) Get(context.Context) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return "msg-1", nil
}

type fakePublisher struct {
	published []*gcppubsub.Message
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, msg *gcppubsub.Message) publishResult {
	p.published = append(p.published, msg)
	return fakeResult{err: p.err}
}

func newTestService(t *testing.T, pub *fakePublisher) (*Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.Exec(testSchema).Error)

	logg := logger.New(logger.Options{ServiceName: "publisher-test", Level: zerolog.Disabled, Output: io.Discard})
	cfg := &config.Config{}
	cfg.Outbox.BatchSize = 10
	cfg.Outbox.PollIntervalMS = 10
	cfg.Outbox.MaxAttempts = 3

	svc, err := NewService(ServiceParams{
		Config:     cfg,
		Logger:     logg,
		Repository: outbox.NewRepository(conn),
		Publisher:  pub,
	})
	require.NoError(t, err)
	return svc, conn
}

func seedEvent(t *testing.T, conn *gorm.DB, attempts int) models.OutboxEvent {
	t.Helper()
	envelope, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       json.RawMessage(`{"item_id":"x"}`),
	})
	require.NoError(t, err)

	event := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventLowStockAlertRaised,
		AggregateType: enums.AggregateLowStockAlert,
		AggregateID:   uuid.New(),
		Payload:       envelope,
		AttemptCount:  attempts,
	}
	require.NoError(t, conn.Create(&event).Error)
	return event
}

func TestProcessBatch_PublishesAndMarks(t *testing.T) {
	pub := &fakePublisher{}
	svc, conn := newTestService(t, pub)

	event := seedEvent(t, conn, 0)
	seedEvent(t, conn, 0)

	processed, err := svc.ProcessBatch(context.Background())
	require.NoError(t, err)
	require.True(t, processed)
	require.Len(t, pub.published, 2)

	msg := pub.published[0]
	require.Equal(t, string(enums.EventLowStockAlertRaised), msg.Attributes["event_type"])
	require.NotEmpty(t, msg.Attributes["event_id"])

	var remaining int64
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Where("published_at IS NULL").Count(&remaining).Error)
	require.EqualValues(t, 0, remaining)

	var stored models.OutboxEvent
	require.NoError(t, conn.First(&stored, "id = ?", event.ID).Error)
	require.NotNil(t, stored.PublishedAt)
}

func TestProcessBatch_FailureRecordsAttempt(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	svc, conn := newTestService(t, pub)

	event := seedEvent(t, conn, 0)

	processed, err := svc.ProcessBatch(context.Background())
	require.NoError(t, err)
	require.True(t, processed)

	var stored models.OutboxEvent
	require.NoError(t, conn.First(&stored, "id = ?", event.ID).Error)
	require.Nil(t, stored.PublishedAt)
	require.Equal(t, 1, stored.AttemptCount)
	require.NotNil(t, stored.LastError)
}

func TestProcessBatch_SkipsExhaustedRows(t *testing.T) {
	pub := &fakePublisher{}
	svc, conn := newTestService(t, pub)

	seedEvent(t, conn, 3)

	processed, err := svc.ProcessBatch(context.Background())
	require.NoError(t, err)
	require.True(t, processed)
	require.Empty(t, pub.published)

	var remaining int64
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Where("published_at IS NULL").Count(&remaining).Error)
	require.EqualValues(t, 1, remaining)
}

func TestProcessBatch_EmptyOutboxIsIdle(t *testing.T) {
	pub := &fakePublisher{}
	svc, _ := newTestService(t, pub)

	processed, err := svc.ProcessBatch(context.Background())
	require.NoError(t, err)
	require.False(t, processed)
	require.Empty(t, pub.published)
}
