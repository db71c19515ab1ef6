package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agriconnect/agriconnect-backend/pkg/db/models"
	"github.com/agriconnect/agriconnect-backend/pkg/enums"
	pkgerrors "github.com/agriconnect/agriconnect-backend/pkg/errors"
	"github.com/agriconnect/agriconnect-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// consumptionCategories maps consuming activity types to the inventory
// category they draw down.
var consumptionCategories = map[enums.ActivityType]enums.InventoryCategory{
	enums.ActivityPlanting:    enums.InventoryCategorySeeds,
	enums.ActivityFertilizing: enums.InventoryCategoryFertilizers,
	enums.ActivityPestControl: enums.InventoryCategoryPesticides,
}

// Bridge translates field activities into ledger movements. Consuming
// activities debit matching stock; harvests credit a harvest item, creating
// it on first use.
type Bridge struct {
	ledger *Ledger
	repo   Repository
	logg   *logger.Logger
}

// NewBridge wires the activity bridge.
func NewBridge(ledger *Ledger, repo Repository, logg *logger.Logger) (*Bridge, error) {
	if ledger == nil {
		return nil, fmt.Errorf("ledger is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("inventory repository is required")
	}
	return &Bridge{ledger: ledger, repo: repo, logg: logg}, nil
}

// ApplyActivityEffects runs inside the caller's transaction, once per
// activity lifecycle event. There is no dedup key; single invocation is the
// caller's contract.
func (b *Bridge) ApplyActivityEffects(ctx context.Context, tx *gorm.DB, activity *models.Activity, field *models.Field, farm *models.Farm) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	if activity == nil || field == nil || farm == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "activity, field, and farm are required")
	}
	if !activity.Quantity.IsPositive() {
		return nil
	}

	if activity.ActivityType == enums.ActivityHarvesting {
		return b.creditHarvest(ctx, tx, activity, field, farm)
	}

	category, ok := consumptionCategories[activity.ActivityType]
	if !ok {
		return nil
	}
	return b.debitConsumption(ctx, tx, activity, farm, category)
}

func (b *Bridge) debitConsumption(ctx context.Context, tx *gorm.DB, activity *models.Activity, farm *models.Farm, category enums.InventoryCategory) error {
	repo := b.repo.WithTx(tx)

	item, err := repo.MatchForCategory(ctx, farm.ID, category, activity.Description)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// activities are not blocked by missing inventory
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "match inventory item")
	}

	activityID := activity.ID
	_, err = b.ledger.ApplyTransactionTx(ctx, tx, ApplyTransactionInput{
		ItemID:            item.ID,
		Delta:             activity.Quantity.Neg(),
		Kind:              enums.TransactionKindUsage,
		PerformedByID:     activity.PerformedByID,
		RelatedActivityID: &activityID,
		Note:              fmt.Sprintf("%s on %s", activity.ActivityType.Label(), activity.Date.Format("2006-01-02")),
	})
	return err
}

func (b *Bridge) creditHarvest(ctx context.Context, tx *gorm.DB, activity *models.Activity, field *models.Field, farm *models.Farm) error {
	repo := b.repo.WithTx(tx)

	name := harvestItemName(activity, field)
	item, err := repo.FindItemByName(ctx, farm.ID, enums.InventoryCategoryHarvest, name)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find harvest item")
		}
		item = &models.InventoryItem{
			ID:       uuid.New(),
			FarmID:   farm.ID,
			OwnerID:  farm.OwnerID,
			Category: enums.InventoryCategoryHarvest,
			Name:     name,
			Unit:     activity.Unit,
		}
		if err := repo.CreateItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create harvest item")
		}
	}

	activityID := activity.ID
	_, err = b.ledger.ApplyTransactionTx(ctx, tx, ApplyTransactionInput{
		ItemID:            item.ID,
		Delta:             activity.Quantity,
		Kind:              enums.TransactionKindAdjustment,
		PerformedByID:     activity.PerformedByID,
		RelatedActivityID: &activityID,
		Note:              fmt.Sprintf("Harvest recorded on %s", activity.Date.Format("2006-01-02")),
	})
	return err
}

func harvestItemName(activity *models.Activity, field *models.Field) string {
	if name := strings.TrimSpace(activity.Description); name != "" {
		return name
	}
	if crop := strings.TrimSpace(field.CurrentCrop); crop != "" {
		return crop
	}
	return fmt.Sprintf("Harvest from %s", field.FieldName)
}
