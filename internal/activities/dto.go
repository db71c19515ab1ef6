package activities

import (
	"time"

	dbtypes "github.com/agriconnect/agriconnect-backend/pkg/db/types"
	"github.com/agriconnect/agriconnect-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateActivityRequest is the payload for recording a field operation.
type CreateActivityRequest struct {
	FieldID           uuid.UUID          `json:"field_id" validate:"required"`
	ActivityType      enums.ActivityType `json:"activity_type" validate:"required"`
	Date              time.Time          `json:"date" validate:"required"`
	Description       string             `json:"description,omitempty"`
	Quantity          decimal.Decimal    `json:"quantity"`
	Unit              string             `json:"unit,omitempty"`
	Cost              decimal.Decimal    `json:"cost"`
	WeatherConditions dbtypes.JSONMap    `json:"weather_conditions,omitempty"`
	Images            []string           `json:"images,omitempty"`
}

// UpdateActivityRequest carries the mutable activity attributes. Changing the
// quantity re-runs the inventory effects with the new value.
type UpdateActivityRequest struct {
	Date              *time.Time       `json:"date,omitempty"`
	Description       *string          `json:"description,omitempty"`
	Quantity          *decimal.Decimal `json:"quantity,omitempty"`
	Unit              *string          `json:"unit,omitempty"`
	Cost              *decimal.Decimal `json:"cost,omitempty"`
	WeatherConditions *dbtypes.JSONMap `json:"weather_conditions,omitempty"`
	Images            *[]string        `json:"images,omitempty"`
}

// ListActivitiesRequest filters the activity listing.
type ListActivitiesRequest struct {
	FieldID      uuid.UUID
	ActivityType *enums.ActivityType
	Limit        int
	Cursor       string
}
