package marketplace

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/agriconnect/agriconnect-backend/internal/inventory"
	"github.com/agriconnect/agriconnect-backend/pkg/db"
	"github.com/agriconnect/agriconnect-backend/pkg/db/models"
	dbtypes "github.com/agriconnect/agriconnect-backend/pkg/db/types"
	"github.com/agriconnect/agriconnect-backend/pkg/enums"
	pkgerrors "github.com/agriconnect/agriconnect-backend/pkg/errors"
	"github.com/agriconnect/agriconnect-backend/pkg/logger"
	"github.com/agriconnect/agriconnect-backend/pkg/outbox"
	"github.com/agriconnect/agriconnect-backend/pkg/pagination"
	"github.com/agriconnect/agriconnect-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// defaultListingTTL is applied when the seller does not pick an expiry.
const defaultListingTTL = 30 * 24 * time.Hour

// ListingSoldPayload is the outbox event body for a completed sale.
type ListingSoldPayload struct {
	ListingID    uuid.UUID       `json:"listing_id"`
	SellerID     uuid.UUID       `json:"seller_id"`
	FarmID       uuid.UUID       `json:"farm_id"`
	Title        string          `json:"title"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
}

// ItemReader is the slice of the inventory repository the marketplace needs
// for validating listing links.
type ItemReader interface {
	FindItemByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
}

// Service defines marketplace listing and price board operations.
type Service interface {
	CreateListing(ctx context.Context, actor types.Actor, req CreateListingRequest) (*models.Listing, error)
	GetListing(ctx context.Context, listingID uuid.UUID, countView bool) (*models.Listing, error)
	ListListings(ctx context.Context, req ListListingsRequest) ([]models.Listing, string, error)
	UpdateListing(ctx context.Context, actor types.Actor, listingID uuid.UUID, req UpdateListingRequest) (*models.Listing, error)
	MarkSold(ctx context.Context, actor types.Actor, listingID uuid.UUID) (*models.Listing, error)

	ListPrices(ctx context.Context, req ListPricesRequest) ([]models.PriceUpdate, string, error)
	CreatePriceUpdate(ctx context.Context, actor types.Actor, req CreatePriceUpdateRequest) (*models.PriceUpdate, error)
}

type service struct {
	db     *db.Client
	repo   Repository
	items  ItemReader
	ledger *inventory.Ledger
	outbox *outbox.Service
	logg   *logger.Logger
}

// NewService wires the marketplace service dependencies.
func NewService(client *db.Client, repo Repository, items ItemReader, ledger *inventory.Ledger, outboxSvc *outbox.Service, logg *logger.Logger) (Service, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db client required")
	}
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "marketplace repository required")
	}
	if items == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "inventory reader required")
	}
	if ledger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "ledger required")
	}
	if outboxSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox service required")
	}
	return &service{db: client, repo: repo, items: items, ledger: ledger, outbox: outboxSvc, logg: logg}, nil
}

func (s *service) CreateListing(ctx context.Context, actor types.Actor, req CreateListingRequest) (*models.Listing, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing title is required")
	}
	if !req.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid listing category")
	}
	if !req.Quantity.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if !req.PricePerUnit.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price per unit must be positive")
	}
	grade := req.QualityGrade
	if grade == "" {
		grade = enums.QualityGradeA
	}
	if !grade.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid quality grade")
	}

	if req.InventoryItemID != nil {
		item, err := s.items.FindItemByID(ctx, *req.InventoryItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup item")
		}
		if item.OwnerID != actor.UserID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "linked inventory item must belong to the seller")
		}
	}

	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		unit = "kg"
	}
	expiresAt := time.Now().UTC().Add(defaultListingTTL)
	if req.ExpiresAt != nil {
		if req.ExpiresAt.Before(time.Now()) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "expiry must be in the future")
		}
		expiresAt = *req.ExpiresAt
	}

	listing := &models.Listing{
		ID:              uuid.New(),
		FarmID:          req.FarmID,
		SellerID:        actor.UserID,
		Category:        req.Category,
		Title:           title,
		Description:     req.Description,
		Quantity:        req.Quantity,
		Unit:            unit,
		PricePerUnit:    req.PricePerUnit,
		QualityGrade:    grade,
		Location:        req.Location,
		Images:          dbtypes.StringArray(req.Images),
		IsNegotiable:    req.IsNegotiable,
		Status:          enums.ListingStatusActive,
		ExpiresAt:       expiresAt,
		InventoryItemID: req.InventoryItemID,
	}
	if listing.Images == nil {
		listing.Images = dbtypes.StringArray{}
	}
	if err := s.repo.CreateListing(ctx, listing); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create listing")
	}
	return listing, nil
}

// GetListing returns a listing; detail reads count a view. The counter is a
// best-effort popularity signal, so a failed increment does not fail the read.
func (s *service) GetListing(ctx context.Context, listingID uuid.UUID, countView bool) (*models.Listing, error) {
	listing, err := s.findListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if countView {
		if err := s.repo.IncrementViews(ctx, listingID); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "listing_id", listingID.String()), "view counter increment failed")
		} else {
			listing.ViewsCount++
		}
	}
	return listing, nil
}

func (s *service) ListListings(ctx context.Context, req ListListingsRequest) ([]models.Listing, string, error) {
	if req.Category != nil && !req.Category.IsValid() {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid listing category")
	}
	if req.Status != nil && !req.Status.IsValid() {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid listing status")
	}

	params := ListListingsParams{
		Category: req.Category,
		Status:   req.Status,
		SellerID: req.SellerID,
		Limit:    req.Limit,
	}
	if req.Cursor != "" {
		cursor, err := pagination.ParseCursor(req.Cursor)
		if err != nil {
			return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		params.Cursor = cursor
	}

	listings, next, err := s.repo.ListListings(ctx, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list listings")
	}
	nextCursor := ""
	if next != nil {
		nextCursor = pagination.EncodeCursor(*next)
	}
	return listings, nextCursor, nil
}

func (s *service) UpdateListing(ctx context.Context, actor types.Actor, listingID uuid.UUID, req UpdateListingRequest) (*models.Listing, error) {
	listing, err := s.authorizedListing(ctx, actor, listingID)
	if err != nil {
		return nil, err
	}
	if listing.Status == enums.ListingStatusSold {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "sold listings cannot be edited")
	}

	updates := map[string]any{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing title cannot be empty")
		}
		updates["title"] = title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Quantity != nil {
		if !req.Quantity.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		updates["quantity"] = *req.Quantity
	}
	if req.Unit != nil {
		updates["unit"] = strings.TrimSpace(*req.Unit)
	}
	if req.PricePerUnit != nil {
		if !req.PricePerUnit.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price per unit must be positive")
		}
		updates["price_per_unit"] = *req.PricePerUnit
	}
	if req.QualityGrade != nil {
		if !req.QualityGrade.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid quality grade")
		}
		updates["quality_grade"] = *req.QualityGrade
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Images != nil {
		updates["images"] = dbtypes.StringArray(*req.Images)
	}
	if req.IsNegotiable != nil {
		updates["is_negotiable"] = *req.IsNegotiable
	}
	if req.ExpiresAt != nil {
		updates["expires_at"] = *req.ExpiresAt
	}
	if len(updates) == 0 {
		return listing, nil
	}

	if err := s.repo.UpdateListing(ctx, listingID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update listing")
	}
	return s.findListing(ctx, listingID)
}

// MarkSold transitions the listing to sold and, when an inventory item is
// linked, debits the sold quantity through the ledger in the same
// transaction.
func (s *service) MarkSold(ctx context.Context, actor types.Actor, listingID uuid.UUID) (*models.Listing, error) {
	if _, err := s.authorizedListing(ctx, actor, listingID); err != nil {
		return nil, err
	}

	var sold *models.Listing
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		listing, err := repo.FindListingByIDForUpdate(ctx, listingID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock listing")
		}
		if listing.Status == enums.ListingStatusSold {
			return pkgerrors.New(pkgerrors.CodeConflict, "listing already sold")
		}

		if err := repo.UpdateListing(ctx, listingID, map[string]any{
			"status": enums.ListingStatusSold,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark listing sold")
		}
		listing.Status = enums.ListingStatusSold

		if listing.InventoryItemID != nil {
			performedBy := actor.UserID
			relatedListingID := listing.ID
			if _, err := s.ledger.ApplyTransactionTx(ctx, tx, inventory.ApplyTransactionInput{
				ItemID:           *listing.InventoryItemID,
				Delta:            listing.Quantity.Neg(),
				Kind:             enums.TransactionKindSale,
				PerformedByID:    &performedBy,
				RelatedListingID: &relatedListingID,
				Note:             "Sold via marketplace listing " + listing.Title,
			}); err != nil {
				return err
			}
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventListingSold,
			AggregateType: enums.AggregateListing,
			AggregateID:   listing.ID,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: string(actor.Role)},
			Data: ListingSoldPayload{
				ListingID:    listing.ID,
				SellerID:     listing.SellerID,
				FarmID:       listing.FarmID,
				Title:        listing.Title,
				Quantity:     listing.Quantity,
				Unit:         listing.Unit,
				PricePerUnit: listing.PricePerUnit,
			},
			Version: 1,
		}
		if err := s.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit sale event")
		}

		sold = listing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sold, nil
}

func (s *service) ListPrices(ctx context.Context, req ListPricesRequest) ([]models.PriceUpdate, string, error) {
	if req.Market != nil && !req.Market.IsValid() {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid market type")
	}

	params := ListPricesParams{
		Commodity:   strings.TrimSpace(req.Commodity),
		Market:      req.Market,
		CurrentOnly: req.CurrentOnly,
		Limit:       req.Limit,
	}
	if req.Cursor != "" {
		cursor, err := pagination.ParseCursor(req.Cursor)
		if err != nil {
			return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		params.Cursor = cursor
	}

	updates, next, err := s.repo.ListPriceUpdates(ctx, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list prices")
	}
	nextCursor := ""
	if next != nil {
		nextCursor = pagination.EncodeCursor(*next)
	}
	return updates, nextCursor, nil
}

// CreatePriceUpdate publishes a board entry; the previous current entry for
// the same commodity slot is superseded in the same transaction.
func (s *service) CreatePriceUpdate(ctx context.Context, actor types.Actor, req CreatePriceUpdateRequest) (*models.PriceUpdate, error) {
	if !actor.IsStaff && actor.Role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only staff can publish price updates")
	}
	commodity := strings.TrimSpace(req.Commodity)
	if commodity == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "commodity is required")
	}
	grade := strings.TrimSpace(req.Grade)
	if grade == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "grade is required")
	}
	market := req.Market
	if market == "" {
		market = enums.MarketWholesale
	}
	if !market.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid market type")
	}
	if !req.PricePerUnit.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price per unit must be positive")
	}
	if req.EffectiveDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "effective date is required")
	}
	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		unit = "kg"
	}

	update := &models.PriceUpdate{
		ID:            uuid.New(),
		Commodity:     commodity,
		Grade:         grade,
		Market:        market,
		PricePerUnit:  req.PricePerUnit,
		Unit:          unit,
		EffectiveDate: req.EffectiveDate,
		IsCurrent:     true,
	}
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.ClearCurrentPrice(ctx, commodity, grade, market); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "supersede current price")
		}
		if err := repo.CreatePriceUpdate(ctx, update); err != nil {
			if db.IsUniqueViolation(err, "ux_price_updates_entry") {
				return pkgerrors.New(pkgerrors.CodeConflict, "a price entry for this commodity and date already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create price update")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return update, nil
}

func (s *service) findListing(ctx context.Context, listingID uuid.UUID) (*models.Listing, error) {
	if listingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}
	listing, err := s.repo.FindListingByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup listing")
	}
	return listing, nil
}

func (s *service) authorizedListing(ctx context.Context, actor types.Actor, listingID uuid.UUID) (*models.Listing, error) {
	listing, err := s.findListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(listing.SellerID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "you do not have access to this listing")
	}
	return listing, nil
}
