package activities

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/agriconnect/agriconnect-backend/internal/farms"
	"github.com/agriconnect/agriconnect-backend/internal/inventory"
	"github.com/agriconnect/agriconnect-backend/pkg/db"
	"github.com/agriconnect/agriconnect-backend/pkg/db/models"
	"github.com/agriconnect/agriconnect-backend/pkg/enums"
	pkgerrors "github.com/agriconnect/agriconnect-backend/pkg/errors"
	"github.com/agriconnect/agriconnect-backend/pkg/logger"
	"github.com/agriconnect/agriconnect-backend/pkg/outbox"
	"github.com/agriconnect/agriconnect-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSchema = `
CREATE TABLE farms (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	name TEXT NOT NULL,
	location TEXT NOT NULL DEFAULT '',
	total_area NUMERIC NOT NULL DEFAULT 0,
	soil_type TEXT NOT NULL DEFAULT 'loam',
	irrigation_type TEXT NOT NULL DEFAULT 'none',
	latitude NUMERIC,
	longitude NUMERIC,
	established_date DATE,
	is_active BOOLEAN NOT NULL DEFAULT 1,
	created_at DATETIME,
	updated_at DATETIME
);

CREATE TABLE fields (
	id TEXT PRIMARY KEY,
	farm_id TEXT NOT NULL,
	field_name TEXT NOT NULL,
	field_number INTEGER NOT NULL,
	area NUMERIC NOT NULL DEFAULT 0,
	current_crop TEXT NOT NULL DEFAULT '',
	crop_history TEXT NOT NULL DEFAULT '[]',
	soil_ph NUMERIC,
	last_fertilized_date DATE,
	last_harvest_date DATE,
	notes TEXT NOT NULL DEFAULT '',
	is_active BOOLEAN NOT NULL DEFAULT 1,
	created_at DATETIME,
	updated_at DATETIME,
	UNIQUE (farm_id, field_number)
);

CREATE TABLE activities (
	id TEXT PRIMARY KEY,
	field_id TEXT NOT NULL,
	activity_type TEXT NOT NULL,
	date DATE NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	quantity NUMERIC NOT NULL DEFAULT 0,
	unit TEXT NOT NULL DEFAULT 'kg',
	cost NUMERIC NOT NULL DEFAULT 0,
	weather_conditions TEXT NOT NULL DEFAULT '{}',
	performed_by_id TEXT,
	images TEXT NOT NULL DEFAULT '[]',
	created_at DATETIME,
	updated_at DATETIME
);

CREATE TABLE inventory_items (
	id TEXT PRIMARY KEY,
	farm_id TEXT NOT NULL,
	owner_id TEXT NOT NULL,
	category TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	quantity NUMERIC NOT NULL DEFAULT 0,
	unit TEXT NOT NULL DEFAULT 'kg',
	minimum_stock_level NUMERIC NOT NULL DEFAULT 0,
	purchase_price NUMERIC,
	selling_price NUMERIC,
	expiry_date DATE,
	storage_location TEXT NOT NULL DEFAULT '',
	supplier_info TEXT NOT NULL DEFAULT '',
	last_audited DATE,
	created_at DATETIME,
	updated_at DATETIME,
	UNIQUE (farm_id, name, category)
);

CREATE TABLE inventory_transactions (
	id TEXT PRIMARY KEY,
	item_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	quantity_change NUMERIC NOT NULL,
	previous_quantity NUMERIC NOT NULL,
	new_quantity NUMERIC NOT NULL,
	related_activity_id TEXT,
	related_listing_id TEXT,
	performed_by_id TEXT,
	transaction_date DATETIME NOT NULL,
	notes TEXT NOT NULL DEFAULT ''
);

CREATE TABLE low_stock_alerts (
	id TEXT PRIMARY KEY,
	item_id TEXT NOT NULL,
	current_quantity NUMERIC NOT NULL,
	alerted_at DATETIME,
	acknowledged BOOLEAN NOT NULL DEFAULT 0,
	resolved BOOLEAN NOT NULL DEFAULT 0,
	resolved_at DATETIME
);

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

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.Exec(testSchema).Error)

	logg := logger.New(logger.Options{ServiceName: "activities-test", Level: zerolog.Disabled, Output: io.Discard})
	client := db.NewWithConn(conn)
	invRepo := inventory.NewRepository(conn)
	outboxSvc := outbox.NewService(outbox.NewRepository(conn), logg)
	ledger, err := inventory.NewLedger(client, invRepo, outboxSvc, logg)
	require.NoError(t, err)
	bridge, err := inventory.NewBridge(ledger, invRepo, logg)
	require.NoError(t, err)

	svc, err := NewService(client, NewRepository(conn), farms.NewRepository(conn), bridge, logg)
	require.NoError(t, err)
	return svc, conn
}

func seedFarmAndField(t *testing.T, conn *gorm.DB, ownerID uuid.UUID) (*models.Farm, *models.Field) {
	t.Helper()
	farm := &models.Farm{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      "Green Acres",
		Location:  "Nakuru",
		TotalArea: decimal.NewFromInt(12),
	}
	require.NoError(t, conn.Create(farm).Error)
	field := &models.Field{
		ID:          uuid.New(),
		FarmID:      farm.ID,
		FieldName:   "North Block",
		FieldNumber: 1,
		Area:        decimal.NewFromInt(3),
	}
	require.NoError(t, conn.Create(field).Error)
	return farm, field
}

func seedSeeds(t *testing.T, conn *gorm.DB, farm *models.Farm, quantity int64) *models.InventoryItem {
	t.Helper()
	item := &models.InventoryItem{
		ID:       uuid.New(),
		FarmID:   farm.ID,
		OwnerID:  farm.OwnerID,
		Category: enums.InventoryCategorySeeds,
		Name:     "Maize Seed",
		Quantity: decimal.NewFromInt(quantity),
		Unit:     "kg",
	}
	require.NoError(t, conn.Create(item).Error)
	return item
}

func actorFor(ownerID uuid.UUID) types.Actor {
	return types.Actor{UserID: ownerID, Role: enums.UserRoleFarmer}
}

func activityDate() time.Time {
	return time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
}

func TestCreate_PlantingDebitsSeedsAndTracksCrop(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	ownerID := uuid.New()
	farm, field := seedFarmAndField(t, conn, ownerID)
	item := seedSeeds(t, conn, farm, 20)

	activity, err := svc.Create(ctx, actorFor(ownerID), CreateActivityRequest{
		FieldID:      field.ID,
		ActivityType: enums.ActivityPlanting,
		Date:         activityDate(),
		Description:  "maize seed",
		Quantity:     decimal.NewFromInt(5),
	})
	require.NoError(t, err)
	require.NotNil(t, activity.PerformedByID)

	var stored models.InventoryItem
	require.NoError(t, conn.First(&stored, "id = ?", item.ID).Error)
	require.True(t, stored.Quantity.Equal(decimal.NewFromInt(15)))

	var updatedField models.Field
	require.NoError(t, conn.First(&updatedField, "id = ?", field.ID).Error)
	require.Equal(t, "maize seed", updatedField.CurrentCrop)
	require.Len(t, updatedField.CropHistory, 1)
	require.Equal(t, "2026-03-14", updatedField.CropHistory[0].PlantedOn)
}

func TestCreate_PlantingWithoutStockStillSaves(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	ownerID := uuid.New()
	_, field := seedFarmAndField(t, conn, ownerID)

	activity, err := svc.Create(ctx, actorFor(ownerID), CreateActivityRequest{
		FieldID:      field.ID,
		ActivityType: enums.ActivityPlanting,
		Date:         activityDate(),
		Description:  "maize seed",
		Quantity:     decimal.NewFromInt(5),
	})
	require.NoError(t, err, "missing inventory must not block the activity")

	var stored models.Activity
	require.NoError(t, conn.First(&stored, "id = ?", activity.ID).Error)

	var txnCount int64
	require.NoError(t, conn.Model(&models.InventoryTransaction{}).Count(&txnCount).Error)
	require.Zero(t, txnCount)
}

func TestCreate_FertilizingStampsField(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	ownerID := uuid.New()
	_, field := seedFarmAndField(t, conn, ownerID)

	_, err := svc.Create(ctx, actorFor(ownerID), CreateActivityRequest{
		FieldID:      field.ID,
		ActivityType: enums.ActivityFertilizing,
		Date:         activityDate(),
		Description:  "DAP",
		Quantity:     decimal.NewFromInt(2),
	})
	require.NoError(t, err)

	var updatedField models.Field
	require.NoError(t, conn.First(&updatedField, "id = ?", field.ID).Error)
	require.NotNil(t, updatedField.LastFertilizedDate)
}

func TestCreate_HarvestStampsFieldAndCreditsInventory(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	ownerID := uuid.New()
	farm, field := seedFarmAndField(t, conn, ownerID)
	require.NoError(t, conn.Model(&models.Field{}).
		Where("id = ?", field.ID).
		UpdateColumn("current_crop", "Tomatoes").Error)

	_, err := svc.Create(ctx, actorFor(ownerID), CreateActivityRequest{
		FieldID:      field.ID,
		ActivityType: enums.ActivityHarvesting,
		Date:         activityDate(),
		Quantity:     decimal.NewFromFloat(15.5),
	})
	require.NoError(t, err)

	var updatedField models.Field
	require.NoError(t, conn.First(&updatedField, "id = ?", field.ID).Error)
	require.NotNil(t, updatedField.LastHarvestDate)

	var item models.InventoryItem
	require.NoError(t, conn.Where("farm_id = ? AND category = ?", farm.ID, enums.InventoryCategoryHarvest).
		First(&item).Error)
	require.Equal(t, "Tomatoes", item.Name)
	require.True(t, item.Quantity.Equal(decimal.NewFromFloat(15.5)))
}

func TestCreate_ForbiddenForNonOwner(t *testing.T) {
	svc, conn := newTestService(t)

	_, field := seedFarmAndField(t, conn, uuid.New())

	_, err := svc.Create(context.Background(), actorFor(uuid.New()), CreateActivityRequest{
		FieldID:      field.ID,
		ActivityType: enums.ActivityWeeding,
		Date:         activityDate(),
	})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeForbidden))
}

func TestUpdate_ReappliesInventoryEffects(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	ownerID := uuid.New()
	farm, field := seedFarmAndField(t, conn, ownerID)
	item := seedSeeds(t, conn, farm, 20)

	activity, err := svc.Create(ctx, actorFor(ownerID), CreateActivityRequest{
		FieldID:      field.ID,
		ActivityType: enums.ActivityPlanting,
		Date:         activityDate(),
		Description:  "maize seed",
		Quantity:     decimal.NewFromInt(5),
	})
	require.NoError(t, err)

	newQty := decimal.NewFromInt(3)
	_, err = svc.Update(ctx, actorFor(ownerID), activity.ID, UpdateActivityRequest{
		Quantity: &newQty,
	})
	require.NoError(t, err)

	// update is a fresh lifecycle event: a second debit, not a reversal
	var stored models.InventoryItem
	require.NoError(t, conn.First(&stored, "id = ?", item.ID).Error)
	require.True(t, stored.Quantity.Equal(decimal.NewFromInt(12)))

	var txnCount int64
	require.NoError(t, conn.Model(&models.InventoryTransaction{}).
		Where("related_activity_id = ?", activity.ID).
		Count(&txnCount).Error)
	require.EqualValues(t, 2, txnCount)
}

func TestList_FiltersByType(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	ownerID := uuid.New()
	_, field := seedFarmAndField(t, conn, ownerID)

	for _, at := range []enums.ActivityType{enums.ActivityWeeding, enums.ActivityIrrigation, enums.ActivityWeeding} {
		_, err := svc.Create(ctx, actorFor(ownerID), CreateActivityRequest{
			FieldID:      field.ID,
			ActivityType: at,
			Date:         activityDate(),
		})
		require.NoError(t, err)
	}

	weeding := enums.ActivityWeeding
	list, next, err := svc.List(ctx, actorFor(ownerID), ListActivitiesRequest{
		FieldID:      field.ID,
		ActivityType: &weeding,
	})
	require.NoError(t, err)
	require.Empty(t, next)
	require.Len(t, list, 2)
}

func TestDelete(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	ownerID := uuid.New()
	_, field := seedFarmAndField(t, conn, ownerID)

	activity, err := svc.Create(ctx, actorFor(ownerID), CreateActivityRequest{
		FieldID:      field.ID,
		ActivityType: enums.ActivityWeeding,
		Date:         activityDate(),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, actorFor(ownerID), activity.ID))

	_, err = svc.Get(ctx, actorFor(ownerID), activity.ID)
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}
