package inventory

import (
	"context"
	"encoding/csv"
	"io"
	"strings"
	"time"

	"github.com/agriconnect/agriconnect-backend/pkg/db/models"
	"github.com/agriconnect/agriconnect-backend/pkg/enums"
	pkgerrors "github.com/agriconnect/agriconnect-backend/pkg/errors"
	"github.com/agriconnect/agriconnect-backend/pkg/logger"
	"github.com/agriconnect/agriconnect-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// csvColumns is the fixed header for inventory import and export.
var csvColumns = []string{
	"farm", "category", "name", "description", "quantity", "unit",
	"minimum_stock_level", "purchase_price", "selling_price",
	"expiry_date", "storage_location", "supplier_info",
}

// ImportResult reports how one bulk import went.
type ImportResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// CSVPorter handles bulk inventory import and export. Imported rows are seed
// data for farms onboarding with existing stock, so they write quantities
// directly instead of going through the ledger.
type CSVPorter struct {
	repo  Repository
	farms FarmReader
	logg  *logger.Logger
}

// NewCSVPorter wires the bulk import/export dependencies.
func NewCSVPorter(repo Repository, farms FarmReader, logg *logger.Logger) *CSVPorter {
	return &CSVPorter{repo: repo, farms: farms, logg: logg}
}

// Import reads inventory rows for the actor's farms. Malformed rows are
// skipped, not fatal; the farm column is matched by name against the farms
// the actor owns.
func (p *CSVPorter) Import(ctx context.Context, actor types.Actor, r io.Reader) (*ImportResult, error) {
	farms, err := p.farms.AllFarmsByOwner(ctx, actor.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load farms")
	}
	farmsByName := make(map[string]*models.Farm, len(farms))
	for i := range farms {
		farmsByName[strings.ToLower(strings.TrimSpace(farms[i].Name))] = &farms[i]
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read csv header")
	}
	index, err := headerIndex(header)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Skipped++
			continue
		}

		item, ok := p.parseRow(ctx, record, index, farmsByName)
		if !ok {
			result.Skipped++
			continue
		}
		if err := p.repo.CreateItem(ctx, item); err != nil {
			logCtx := p.logg.WithFields(ctx, map[string]any{
				"item_name": item.Name,
				"farm_id":   item.FarmID.String(),
			})
			p.logg.Warn(logCtx, "csv import row rejected by database")
			result.Skipped++
			continue
		}
		result.Created++
	}
	return result, nil
}

func (p *CSVPorter) parseRow(ctx context.Context, record []string, index map[string]int, farmsByName map[string]*models.Farm) (*models.InventoryItem, bool) {
	field := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	farm, ok := farmsByName[strings.ToLower(field("farm"))]
	if !ok {
		p.logg.Warn(ctx, "csv import row skipped: unknown farm")
		return nil, false
	}
	name := field("name")
	if name == "" {
		return nil, false
	}
	quantity, err := decimal.NewFromString(field("quantity"))
	if err != nil || quantity.IsNegative() {
		return nil, false
	}

	category := enums.InventoryCategory(strings.ToLower(field("category")))
	if !category.IsValid() {
		category = enums.InventoryCategorySeeds
	}
	unit := field("unit")
	if unit == "" {
		unit = "kg"
	}
	minimum := decimal.Zero
	if raw := field("minimum_stock_level"); raw != "" {
		if parsed, err := decimal.NewFromString(raw); err == nil && !parsed.IsNegative() {
			minimum = parsed
		}
	}

	item := &models.InventoryItem{
		ID:                uuid.New(),
		FarmID:            farm.ID,
		OwnerID:           farm.OwnerID,
		Category:          category,
		Name:              name,
		Description:       field("description"),
		Quantity:          quantity,
		Unit:              unit,
		MinimumStockLevel: minimum,
		StorageLocation:   field("storage_location"),
		SupplierInfo:      field("supplier_info"),
	}
	if raw := field("purchase_price"); raw != "" {
		if price, err := decimal.NewFromString(raw); err == nil && !price.IsNegative() {
			item.PurchasePrice = &price
		}
	}
	if raw := field("selling_price"); raw != "" {
		if price, err := decimal.NewFromString(raw); err == nil && !price.IsNegative() {
			item.SellingPrice = &price
		}
	}
	if raw := field("expiry_date"); raw != "" {
		if expiry, err := time.Parse("2006-01-02", raw); err == nil {
			item.ExpiryDate = &expiry
		}
	}
	return item, true
}

// Export writes every item across the actor's farms in the import format, so
// a round trip reproduces the inventory.
func (p *CSVPorter) Export(ctx context.Context, actor types.Actor, w io.Writer) error {
	farms, err := p.farms.AllFarmsByOwner(ctx, actor.UserID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load farms")
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvColumns); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv header")
	}

	for _, farm := range farms {
		items, err := p.repo.ItemsByFarm(ctx, farm.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load farm inventory")
		}
		for _, item := range items {
			if err := writer.Write(exportRow(farm.Name, item)); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv row")
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flush csv")
	}
	return nil
}

func exportRow(farmName string, item models.InventoryItem) []string {
	price := func(p *decimal.Decimal) string {
		if p == nil {
			return ""
		}
		return p.String()
	}
	expiry := ""
	if item.ExpiryDate != nil {
		expiry = item.ExpiryDate.Format("2006-01-02")
	}
	return []string{
		farmName,
		string(item.Category),
		item.Name,
		item.Description,
		item.Quantity.String(),
		item.Unit,
		item.MinimumStockLevel.String(),
		price(item.PurchasePrice),
		price(item.SellingPrice),
		expiry,
		item.StorageLocation,
		item.SupplierInfo,
	}
}

func headerIndex(header []string) (map[string]int, error) {
	index := map[string]int{}
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, required := range []string{"farm", "category", "name", "quantity"} {
		if _, ok := index[required]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "csv header missing required column: "+required)
		}
	}
	return index, nil
}
