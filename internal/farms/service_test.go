package farms

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/agriconnect/agriconnect-backend/pkg/db/models"
	"github.com/agriconnect/agriconnect-backend/pkg/enums"
	pkgerrors "github.com/agriconnect/agriconnect-backend/pkg/errors"
	"github.com/agriconnect/agriconnect-backend/pkg/pagination"
	"github.com/agriconnect/agriconnect-backend/pkg/types"
)

const testSchema = `
CREATE TABLE farms (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	name TEXT NOT NULL,
	location TEXT NOT NULL,
	total_area NUMERIC NOT NULL,
	soil_type TEXT NOT NULL DEFAULT 'loam',
	irrigation_type TEXT NOT NULL DEFAULT 'none',
	latitude NUMERIC,
	longitude NUMERIC,
	established_date DATE,
	is_active BOOLEAN NOT NULL DEFAULT 1,
	created_at DATETIME,
	updated_at DATETIME,
	UNIQUE (owner_id, name)
);

CREATE TABLE fields (
	id TEXT PRIMARY KEY,
	farm_id TEXT NOT NULL,
	field_name TEXT NOT NULL,
	field_number INTEGER NOT NULL,
	area NUMERIC NOT NULL,
	current_crop TEXT NOT NULL DEFAULT '',
	crop_history TEXT NOT NULL DEFAULT '[]',
	soil_ph NUMERIC,
	last_fertilized_date DATE,
	last_harvest_date DATE,
	notes TEXT NOT NULL DEFAULT '',
	is_active BOOLEAN NOT NULL DEFAULT 1,
	created_at DATETIME,
	updated_at DATETIME,
	UNIQUE (farm_id, field_number)
);
`

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.Exec(testSchema).Error)

	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	return svc, conn
}

func ownerActor() types.Actor {
	return types.Actor{UserID: uuid.New(), Role: enums.UserRoleFarmer}
}

func validFarmReq(name string) CreateFarmRequest {
	return CreateFarmRequest{
		Name:      name,
		Location:  "Nakuru",
		TotalArea: decimal.NewFromInt(12),
	}
}

func TestCreateFarm_AppliesDefaults(t *testing.T) {
	svc, _ := newTestService(t)
	actor := ownerActor()

	farm, err := svc.CreateFarm(context.Background(), actor, validFarmReq("Green Acres"))
	require.NoError(t, err)
	require.Equal(t, actor.UserID, farm.OwnerID)
	require.Equal(t, enums.SoilLoam, farm.SoilType)
	require.Equal(t, enums.IrrigationNone, farm.IrrigationType)
	require.True(t, farm.IsActive)
}

func TestCreateFarm_RejectsNonPositiveArea(t *testing.T) {
	svc, _ := newTestService(t)

	req := validFarmReq("Green Acres")
	req.TotalArea = decimal.Zero
	_, err := svc.CreateFarm(context.Background(), ownerActor(), req)
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestGetFarm_ForbiddenForStranger(t *testing.T) {
	svc, _ := newTestService(t)

	farm, err := svc.CreateFarm(context.Background(), ownerActor(), validFarmReq("Green Acres"))
	require.NoError(t, err)

	_, err = svc.GetFarm(context.Background(), ownerActor(), farm.ID)
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeForbidden))
}

func TestGetFarm_StaffOverride(t *testing.T) {
	svc, _ := newTestService(t)

	farm, err := svc.CreateFarm(context.Background(), ownerActor(), validFarmReq("Green Acres"))
	require.NoError(t, err)

	staff := types.Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin, IsStaff: true}
	got, err := svc.GetFarm(context.Background(), staff, farm.ID)
	require.NoError(t, err)
	require.Equal(t, farm.ID, got.ID)
}

func TestListFarms_OnlyOwnFarms(t *testing.T) {
	svc, _ := newTestService(t)
	actor := ownerActor()

	_, err := svc.CreateFarm(context.Background(), actor, validFarmReq("Green Acres"))
	require.NoError(t, err)
	_, err = svc.CreateFarm(context.Background(), ownerActor(), validFarmReq("Someone Else"))
	require.NoError(t, err)

	farms, next, err := svc.ListFarms(context.Background(), actor, pagination.Params{Limit: 10})
	require.NoError(t, err)
	require.Len(t, farms, 1)
	require.Empty(t, next)
}

func TestUpdateFarm_EmptyPatchIsNoop(t *testing.T) {
	svc, _ := newTestService(t)
	actor := ownerActor()

	farm, err := svc.CreateFarm(context.Background(), actor, validFarmReq("Green Acres"))
	require.NoError(t, err)

	got, err := svc.UpdateFarm(context.Background(), actor, farm.ID, UpdateFarmRequest{})
	require.NoError(t, err)
	require.Equal(t, farm.Name, got.Name)
}

func TestDeactivateFarm(t *testing.T) {
	svc, conn := newTestService(t)
	actor := ownerActor()

	farm, err := svc.CreateFarm(context.Background(), actor, validFarmReq("Green Acres"))
	require.NoError(t, err)
	require.NoError(t, svc.DeactivateFarm(context.Background(), actor, farm.ID))

	var stored models.Farm
	require.NoError(t, conn.First(&stored, "id = ?", farm.ID).Error)
	require.False(t, stored.IsActive)
}

func TestCreateField_DuplicateNumberConflicts(t *testing.T) {
	svc, _ := newTestService(t)
	actor := ownerActor()

	farm, err := svc.CreateFarm(context.Background(), actor, validFarmReq("Green Acres"))
	require.NoError(t, err)

	req := CreateFieldRequest{FieldName: "North Plot", FieldNumber: 1, Area: decimal.NewFromInt(3)}
	_, err = svc.CreateField(context.Background(), actor, farm.ID, req)
	require.NoError(t, err)

	req.FieldName = "North Plot Again"
	_, err = svc.CreateField(context.Background(), actor, farm.ID, req)
	require.Error(t, err)
}

func TestUpdateField_CropChange(t *testing.T) {
	svc, _ := newTestService(t)
	actor := ownerActor()

	farm, err := svc.CreateFarm(context.Background(), actor, validFarmReq("Green Acres"))
	require.NoError(t, err)
	field, err := svc.CreateField(context.Background(), actor, farm.ID, CreateFieldRequest{
		FieldName:   "North Plot",
		FieldNumber: 1,
		Area:        decimal.NewFromInt(3),
	})
	require.NoError(t, err)

	crop := "maize"
	updated, err := svc.UpdateField(context.Background(), actor, field.ID, UpdateFieldRequest{CurrentCrop: &crop})
	require.NoError(t, err)
	require.Equal(t, "maize", updated.CurrentCrop)
}
