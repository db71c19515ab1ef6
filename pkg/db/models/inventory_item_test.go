package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestTotalValue_SellingPriceWins(t *testing.T) {
	item := InventoryItem{
		Quantity:      decimal.NewFromInt(10),
		SellingPrice:  dec(5),
		PurchasePrice: dec(3),
	}
	require.True(t, decimal.NewFromInt(50).Equal(item.TotalValue()))
}

func TestTotalValue_FallsBackToPurchasePrice(t *testing.T) {
	item := InventoryItem{
		Quantity:      decimal.NewFromInt(10),
		PurchasePrice: dec(3),
	}
	require.True(t, decimal.NewFromInt(30).Equal(item.TotalValue()))
}

func TestTotalValue_ZeroSellingPriceValuesAtZero(t *testing.T) {
	item := InventoryItem{
		Quantity:      decimal.NewFromInt(10),
		SellingPrice:  dec(0),
		PurchasePrice: dec(3),
	}
	require.True(t, item.TotalValue().IsZero())
}

func TestTotalValue_NoPricesMeansZero(t *testing.T) {
	item := InventoryItem{Quantity: decimal.NewFromInt(10)}
	require.True(t, item.TotalValue().IsZero())
}
