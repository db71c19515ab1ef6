package inventory

import (
	"fmt"
	"io"
	"testing"

	"github.com/agriconnect/agriconnect-backend/pkg/db"
	"github.com/agriconnect/agriconnect-backend/pkg/db/models"
	"github.com/agriconnect/agriconnect-backend/pkg/enums"
	"github.com/agriconnect/agriconnect-backend/pkg/logger"
	"github.com/agriconnect/agriconnect-backend/pkg/outbox"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testSchema mirrors the real migrations closely enough for repository and
// ledger behavior; postgres-only pieces (pgcrypto defaults, partial indexes)
// are replaced by explicit IDs in test fixtures.
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
	updated_at DATETIME,
	UNIQUE (owner_id, name)
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

func newTestConn(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.Exec(testSchema).Error)
	return conn
}

func newTestLogger() *logger.Logger {
	return logger.New(logger.Options{
		ServiceName: "inventory-test",
		Level:       zerolog.Disabled,
		Output:      io.Discard,
	})
}

func newTestLedger(t *testing.T, conn *gorm.DB) (*Ledger, Repository) {
	t.Helper()
	repo := NewRepository(conn)
	outboxSvc := outbox.NewService(outbox.NewRepository(conn), newTestLogger())
	ledger, err := NewLedger(db.NewWithConn(conn), repo, outboxSvc, newTestLogger())
	require.NoError(t, err)
	return ledger, repo
}

func seedFarm(t *testing.T, conn *gorm.DB, ownerID uuid.UUID, name string) *models.Farm {
	t.Helper()
	farm := &models.Farm{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      name,
		Location:  "Nakuru",
		TotalArea: decimal.NewFromInt(12),
	}
	require.NoError(t, conn.Create(farm).Error)
	return farm
}

type seedItemOpts struct {
	Category enums.InventoryCategory
	Name     string
	Quantity decimal.Decimal
	Minimum  decimal.Decimal
}

func seedItem(t *testing.T, conn *gorm.DB, farm *models.Farm, opts seedItemOpts) *models.InventoryItem {
	t.Helper()
	if opts.Category == "" {
		opts.Category = enums.InventoryCategorySeeds
	}
	item := &models.InventoryItem{
		ID:                uuid.New(),
		FarmID:            farm.ID,
		OwnerID:           farm.OwnerID,
		Category:          opts.Category,
		Name:              opts.Name,
		Quantity:          opts.Quantity,
		Unit:              "kg",
		MinimumStockLevel: opts.Minimum,
	}
	require.NoError(t, conn.Create(item).Error)
	return item
}

func itemQuantity(t *testing.T, conn *gorm.DB, itemID uuid.UUID) decimal.Decimal {
	t.Helper()
	var item models.InventoryItem
	require.NoError(t, conn.First(&item, "id = ?", itemID).Error)
	return item.Quantity
}

func itemTransactions(t *testing.T, conn *gorm.DB, itemID uuid.UUID) []models.InventoryTransaction {
	t.Helper()
	var txns []models.InventoryTransaction
	require.NoError(t, conn.Where("item_id = ?", itemID).Order("transaction_date ASC, id ASC").Find(&txns).Error)
	return txns
}

func itemAlerts(t *testing.T, conn *gorm.DB, itemID uuid.UUID) []models.LowStockAlert {
	t.Helper()
	var alerts []models.LowStockAlert
	require.NoError(t, conn.Where("item_id = ?", itemID).Order("alerted_at ASC").Find(&alerts).Error)
	return alerts
}
