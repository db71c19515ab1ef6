package inventory

import (
	"context"
	"testing"

	"github.com/agriconnect/agriconnect-backend/pkg/db/models"
	"github.com/agriconnect/agriconnect-backend/pkg/enums"
	pkgerrors "github.com/agriconnect/agriconnect-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestLedger_QuantityEqualsSumOfDeltas(t *testing.T) {
	conn := newTestConn(t)
	ledger, _ := newTestLedger(t, conn)
	ctx := context.Background()

	farm := seedFarm(t, conn, uuid.New(), "Green Acres")
	item := seedItem(t, conn, farm, seedItemOpts{
		Name:     "Maize Seed",
		Quantity: decimal.NewFromInt(10),
	})

	_, err := ledger.ApplyTransaction(ctx, ApplyTransactionInput{
		ItemID: item.ID,
		Delta:  decimal.NewFromInt(6),
		Kind:   enums.TransactionKindPurchase,
	})
	require.NoError(t, err)

	_, err = ledger.ApplyTransaction(ctx, ApplyTransactionInput{
		ItemID: item.ID,
		Delta:  decimal.NewFromInt(-4),
		Kind:   enums.TransactionKindUsage,
	})
	require.NoError(t, err)

	require.True(t, itemQuantity(t, conn, item.ID).Equal(decimal.NewFromInt(12)))

	txns := itemTransactions(t, conn, item.ID)
	require.Len(t, txns, 2)
	sum := item.Quantity
	for _, txn := range txns {
		require.True(t, txn.NewQuantity.Equal(txn.PreviousQuantity.Add(txn.QuantityChange)),
			"snapshot identity broken for txn %s", txn.ID)
		sum = sum.Add(txn.QuantityChange)
	}
	require.True(t, itemQuantity(t, conn, item.ID).Equal(sum))
}

func TestLedger_ZeroDeltaIsNoOp(t *testing.T) {
	conn := newTestConn(t)
	ledger, _ := newTestLedger(t, conn)

	farm := seedFarm(t, conn, uuid.New(), "Green Acres")
	item := seedItem(t, conn, farm, seedItemOpts{Name: "Maize Seed", Quantity: decimal.NewFromInt(10)})

	txn, err := ledger.ApplyTransaction(context.Background(), ApplyTransactionInput{
		ItemID: item.ID,
		Delta:  decimal.Zero,
		Kind:   enums.TransactionKindAdjustment,
	})
	require.NoError(t, err)
	require.Nil(t, txn)
	require.Empty(t, itemTransactions(t, conn, item.ID))
}

func TestLedger_RejectsInvalidKind(t *testing.T) {
	conn := newTestConn(t)
	ledger, _ := newTestLedger(t, conn)

	farm := seedFarm(t, conn, uuid.New(), "Green Acres")
	item := seedItem(t, conn, farm, seedItemOpts{Name: "Maize Seed", Quantity: decimal.NewFromInt(10)})

	_, err := ledger.ApplyTransaction(context.Background(), ApplyTransactionInput{
		ItemID: item.ID,
		Delta:  decimal.NewFromInt(1),
		Kind:   enums.TransactionKind("donation"),
	})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestLedger_UnknownItem(t *testing.T) {
	conn := newTestConn(t)
	ledger, _ := newTestLedger(t, conn)

	_, err := ledger.ApplyTransaction(context.Background(), ApplyTransactionInput{
		ItemID: uuid.New(),
		Delta:  decimal.NewFromInt(1),
		Kind:   enums.TransactionKindPurchase,
	})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}

func TestLedger_ClampsOverdraw(t *testing.T) {
	conn := newTestConn(t)
	ledger, _ := newTestLedger(t, conn)

	farm := seedFarm(t, conn, uuid.New(), "Green Acres")
	item := seedItem(t, conn, farm, seedItemOpts{Name: "DAP Fertilizer", Quantity: decimal.NewFromInt(5)})

	txn, err := ledger.ApplyTransaction(context.Background(), ApplyTransactionInput{
		ItemID: item.ID,
		Delta:  decimal.NewFromInt(-20),
		Kind:   enums.TransactionKindUsage,
	})
	require.NoError(t, err)

	require.True(t, itemQuantity(t, conn, item.ID).IsZero())
	require.True(t, txn.QuantityChange.Equal(decimal.NewFromInt(-5)), "recorded change must be the clamped delta")
	require.True(t, txn.PreviousQuantity.Equal(decimal.NewFromInt(5)))
	require.True(t, txn.NewQuantity.IsZero())
}

func TestLedger_RaisesAlertWithSnapshot(t *testing.T) {
	conn := newTestConn(t)
	ledger, _ := newTestLedger(t, conn)

	farm := seedFarm(t, conn, uuid.New(), "Green Acres")
	item := seedItem(t, conn, farm, seedItemOpts{
		Name:     "Maize Seed",
		Quantity: decimal.NewFromInt(10),
		Minimum:  decimal.NewFromInt(5),
	})

	_, err := ledger.ApplyTransaction(context.Background(), ApplyTransactionInput{
		ItemID: item.ID,
		Delta:  decimal.NewFromInt(-7),
		Kind:   enums.TransactionKindUsage,
	})
	require.NoError(t, err)

	alerts := itemAlerts(t, conn, item.ID)
	require.Len(t, alerts, 1)
	require.False(t, alerts[0].Resolved)
	require.True(t, alerts[0].CurrentQuantity.Equal(decimal.NewFromInt(3)),
		"alert snapshot must capture the quantity at crossing time")

	var events []models.OutboxEvent
	require.NoError(t, conn.Where("aggregate_id = ?", alerts[0].ID).Find(&events).Error)
	require.Len(t, events, 1)
	require.Equal(t, enums.EventLowStockAlertRaised, events[0].EventType)
}

func TestLedger_KeepsSingleUnresolvedAlert(t *testing.T) {
	conn := newTestConn(t)
	ledger, _ := newTestLedger(t, conn)
	ctx := context.Background()

	farm := seedFarm(t, conn, uuid.New(), "Green Acres")
	item := seedItem(t, conn, farm, seedItemOpts{
		Name:     "Maize Seed",
		Quantity: decimal.NewFromInt(10),
		Minimum:  decimal.NewFromInt(5),
	})

	for _, delta := range []int64{-7, -1, -1} {
		_, err := ledger.ApplyTransaction(ctx, ApplyTransactionInput{
			ItemID: item.ID,
			Delta:  decimal.NewFromInt(delta),
			Kind:   enums.TransactionKindUsage,
		})
		require.NoError(t, err)
	}

	alerts := itemAlerts(t, conn, item.ID)
	require.Len(t, alerts, 1, "one episode, no matter how many times stock moves below threshold")
	require.True(t, alerts[0].CurrentQuantity.Equal(decimal.NewFromInt(3)),
		"snapshot belongs to the first crossing")
}

func TestLedger_RecoveryResolvesAlert(t *testing.T) {
	conn := newTestConn(t)
	ledger, _ := newTestLedger(t, conn)
	ctx := context.Background()

	farm := seedFarm(t, conn, uuid.New(), "Green Acres")
	item := seedItem(t, conn, farm, seedItemOpts{
		Name:     "Maize Seed",
		Quantity: decimal.NewFromInt(3),
		Minimum:  decimal.NewFromInt(5),
	})

	_, err := ledger.ApplyTransaction(ctx, ApplyTransactionInput{
		ItemID: item.ID,
		Delta:  decimal.NewFromInt(-1),
		Kind:   enums.TransactionKindUsage,
	})
	require.NoError(t, err)
	require.Len(t, itemAlerts(t, conn, item.ID), 1)

	_, err = ledger.ApplyTransaction(ctx, ApplyTransactionInput{
		ItemID: item.ID,
		Delta:  decimal.NewFromInt(6),
		Kind:   enums.TransactionKindPurchase,
	})
	require.NoError(t, err)

	alerts := itemAlerts(t, conn, item.ID)
	require.Len(t, alerts, 1)
	require.True(t, alerts[0].Resolved)
	require.NotNil(t, alerts[0].ResolvedAt)
}

func TestLedger_NewEpisodeAfterResolution(t *testing.T) {
	conn := newTestConn(t)
	ledger, _ := newTestLedger(t, conn)
	ctx := context.Background()

	farm := seedFarm(t, conn, uuid.New(), "Green Acres")
	item := seedItem(t, conn, farm, seedItemOpts{
		Name:     "Maize Seed",
		Quantity: decimal.NewFromInt(10),
		Minimum:  decimal.NewFromInt(5),
	})

	for _, delta := range []int64{-7, 5, -6} {
		_, err := ledger.ApplyTransaction(ctx, ApplyTransactionInput{
			ItemID: item.ID,
			Delta:  decimal.NewFromInt(delta),
			Kind:   enums.TransactionKindAdjustment,
		})
		require.NoError(t, err)
	}

	alerts := itemAlerts(t, conn, item.ID)
	require.Len(t, alerts, 2)
	require.True(t, alerts[0].Resolved)
	require.False(t, alerts[1].Resolved)
	require.True(t, alerts[1].CurrentQuantity.Equal(decimal.NewFromInt(2)))
}

func TestLedger_ZeroThresholdDisablesMonitoring(t *testing.T) {
	conn := newTestConn(t)
	ledger, _ := newTestLedger(t, conn)

	farm := seedFarm(t, conn, uuid.New(), "Green Acres")
	item := seedItem(t, conn, farm, seedItemOpts{
		Name:     "Old Stock",
		Quantity: decimal.NewFromInt(10),
	})

	_, err := ledger.ApplyTransaction(context.Background(), ApplyTransactionInput{
		ItemID: item.ID,
		Delta:  decimal.NewFromInt(-10),
		Kind:   enums.TransactionKindUsage,
	})
	require.NoError(t, err)
	require.Empty(t, itemAlerts(t, conn, item.ID))
}

func TestLedger_AcknowledgedAlertStillResolves(t *testing.T) {
	conn := newTestConn(t)
	ledger, repo := newTestLedger(t, conn)
	ctx := context.Background()

	farm := seedFarm(t, conn, uuid.New(), "Green Acres")
	item := seedItem(t, conn, farm, seedItemOpts{
		Name:     "Maize Seed",
		Quantity: decimal.NewFromInt(4),
		Minimum:  decimal.NewFromInt(5),
	})

	_, err := ledger.ApplyTransaction(ctx, ApplyTransactionInput{
		ItemID: item.ID,
		Delta:  decimal.NewFromInt(-1),
		Kind:   enums.TransactionKindUsage,
	})
	require.NoError(t, err)

	alerts := itemAlerts(t, conn, item.ID)
	require.Len(t, alerts, 1)
	require.NoError(t, repo.AcknowledgeAlert(ctx, alerts[0].ID))

	_, err = ledger.ApplyTransaction(ctx, ApplyTransactionInput{
		ItemID: item.ID,
		Delta:  decimal.NewFromInt(10),
		Kind:   enums.TransactionKindPurchase,
	})
	require.NoError(t, err)

	alerts = itemAlerts(t, conn, item.ID)
	require.Len(t, alerts, 1)
	require.True(t, alerts[0].Acknowledged, "acknowledgement survives resolution")
	require.True(t, alerts[0].Resolved)
}
