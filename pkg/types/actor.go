package types

import (
	"github.com/agriconnect/agriconnect-backend/pkg/enums"
	"github.com/google/uuid"
)

// Actor identifies the authenticated user behind a request.
type Actor struct {
	UserID  uuid.UUID
	Role    enums.UserRole
	IsStaff bool
}

// CanManage reports whether the actor may mutate resources owned by ownerID.
// Staff and admins override ownership.
func (a Actor) CanManage(ownerID uuid.UUID) bool {
	if a.IsStaff || a.Role == enums.UserRoleAdmin {
		return true
	}
	return a.UserID == ownerID
}
