package inventory

import (
	"context"
	"time"

	"github.com/agriconnect/agriconnect-backend/pkg/config"
	"github.com/agriconnect/agriconnect-backend/pkg/enums"
	pkgerrors "github.com/agriconnect/agriconnect-backend/pkg/errors"
	"github.com/agriconnect/agriconnect-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Summary aggregates one farm's inventory for the dashboard.
type Summary struct {
	FarmID            uuid.UUID                                   `json:"farm_id"`
	TotalItems        int                                         `json:"total_items"`
	TotalValue        decimal.Decimal                             `json:"total_value"`
	LowStockCount     int                                         `json:"low_stock_count"`
	ExpiringSoonCount int                                         `json:"expiring_soon_count"`
	CategoryTotals    map[enums.InventoryCategory]decimal.Decimal `json:"category_totals"`
	GeneratedAt       time.Time                                   `json:"generated_at"`
}

// Reporter builds inventory summaries. Aggregation happens in memory; farm
// inventories are small enough that a single fetch beats a fan of GROUP BY
// queries.
type Reporter struct {
	repo  Repository
	farms FarmReader
	cfg   config.InventoryConfig
	now   func() time.Time
}

// NewReporter wires the summary reporter.
func NewReporter(repo Repository, farms FarmReader, cfg config.InventoryConfig) *Reporter {
	return &Reporter{repo: repo, farms: farms, cfg: cfg, now: time.Now}
}

// Summarize builds the inventory summary for one farm the actor can manage.
func (r *Reporter) Summarize(ctx context.Context, actor types.Actor, farmID uuid.UUID) (*Summary, error) {
	if _, err := authorizeFarm(ctx, r.farms, actor, farmID); err != nil {
		return nil, err
	}

	items, err := r.repo.ItemsByFarm(ctx, farmID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load farm inventory")
	}

	now := r.now().UTC()
	window := r.expiryWindow()
	summary := &Summary{
		FarmID:         farmID,
		TotalItems:     len(items),
		TotalValue:     decimal.Zero,
		CategoryTotals: map[enums.InventoryCategory]decimal.Decimal{},
		GeneratedAt:    now,
	}

	for _, item := range items {
		summary.TotalValue = summary.TotalValue.Add(item.TotalValue())
		if item.IsLowStock() {
			summary.LowStockCount++
		}
		if item.IsExpiringSoon(now, window) {
			summary.ExpiringSoonCount++
		}
		total, ok := summary.CategoryTotals[item.Category]
		if !ok {
			total = decimal.Zero
		}
		summary.CategoryTotals[item.Category] = total.Add(item.Quantity)
	}

	return summary, nil
}

func (r *Reporter) expiryWindow() time.Duration {
	days := r.cfg.ExpiryWarningDays
	if days <= 0 {
		days = 14
	}
	return time.Duration(days) * 24 * time.Hour
}
