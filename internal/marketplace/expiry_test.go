package marketplace

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/agriconnect/agriconnect-backend/pkg/db/models"
	"github.com/agriconnect/agriconnect-backend/pkg/enums"
	"github.com/agriconnect/agriconnect-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestSweeper(t *testing.T) (*ExpirySweeper, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.Exec(testSchema).Error)

	logg := logger.New(logger.Options{ServiceName: "expiry-test", Level: zerolog.Disabled, Output: io.Discard})
	sweeper, err := NewExpirySweeper(ExpirySweeperParams{
		Logger: logg,
		Repo:   NewRepository(conn),
	})
	require.NoError(t, err)
	return sweeper, conn
}

func seedListingWithStatus(t *testing.T, conn *gorm.DB, status enums.ListingStatus, expiresAt time.Time) models.Listing {
	t.Helper()
	listing := models.Listing{
		ID:           uuid.New(),
		FarmID:       uuid.New(),
		SellerID:     uuid.New(),
		Category:     enums.ListingCategoryCrops,
		Title:        "Maize",
		Description:  "Dry maize",
		Quantity:     decimal.NewFromInt(50),
		Unit:         "kg",
		PricePerUnit: decimal.NewFromInt(60),
		QualityGrade: enums.QualityGradeA,
		Status:       status,
		ExpiresAt:    expiresAt,
	}
	require.NoError(t, conn.Create(&listing).Error)
	return listing
}

func TestSweepOnce_ExpiresOverdueActiveListings(t *testing.T) {
	sweeper, conn := newTestSweeper(t)

	overdue := seedListingWithStatus(t, conn, enums.ListingStatusActive, time.Now().UTC().Add(-time.Hour))
	fresh := seedListingWithStatus(t, conn, enums.ListingStatusActive, time.Now().UTC().Add(24*time.Hour))

	require.NoError(t, sweeper.SweepOnce(context.Background()))

	var expired models.Listing
	require.NoError(t, conn.First(&expired, "id = ?", overdue.ID).Error)
	require.Equal(t, enums.ListingStatusExpired, expired.Status)

	var untouched models.Listing
	require.NoError(t, conn.First(&untouched, "id = ?", fresh.ID).Error)
	require.Equal(t, enums.ListingStatusActive, untouched.Status)
}

func TestSweepOnce_LeavesSoldListingsAlone(t *testing.T) {
	sweeper, conn := newTestSweeper(t)

	sold := seedListingWithStatus(t, conn, enums.ListingStatusSold, time.Now().UTC().Add(-48*time.Hour))

	require.NoError(t, sweeper.SweepOnce(context.Background()))

	var stored models.Listing
	require.NoError(t, conn.First(&stored, "id = ?", sold.ID).Error)
	require.Equal(t, enums.ListingStatusSold, stored.Status)
}

func TestSweepOnce_EmptyBoardIsNoop(t *testing.T) {
	sweeper, _ := newTestSweeper(t)
	require.NoError(t, sweeper.SweepOnce(context.Background()))
}
