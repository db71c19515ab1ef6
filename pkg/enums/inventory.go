package enums

// InventoryCategory classifies what kind of good an inventory item is.
type InventoryCategory string

const (
	InventoryCategorySeeds       InventoryCategory = "seeds"
	InventoryCategoryFertilizers InventoryCategory = "fertilizers"
	InventoryCategoryPesticides  InventoryCategory = "pesticides"
	InventoryCategoryEquipment   InventoryCategory = "equipment"
	InventoryCategoryHarvest     InventoryCategory = "harvest"
)

func (c InventoryCategory) IsValid() bool {
	switch c {
	case InventoryCategorySeeds, InventoryCategoryFertilizers, InventoryCategoryPesticides,
		InventoryCategoryEquipment, InventoryCategoryHarvest:
		return true
	}
	return false
}

// TransactionKind labels a single ledger movement.
type TransactionKind string

const (
	TransactionKindPurchase   TransactionKind = "purchase"
	TransactionKindUsage      TransactionKind = "usage"
	TransactionKindSale       TransactionKind = "sale"
	TransactionKindAdjustment TransactionKind = "adjustment"
)

func (k TransactionKind) IsValid() bool {
	switch k {
	case TransactionKindPurchase, TransactionKindUsage, TransactionKindSale, TransactionKindAdjustment:
		return true
	}
	return false
}
