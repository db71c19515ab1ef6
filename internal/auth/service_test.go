package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgAuth "github.com/agriconnect/agriconnect-backend/pkg/auth"
	"github.com/agriconnect/agriconnect-backend/pkg/auth/session"
	"github.com/agriconnect/agriconnect-backend/pkg/config"
	"github.com/agriconnect/agriconnect-backend/pkg/db"
	"github.com/agriconnect/agriconnect-backend/pkg/db/models"
	"github.com/agriconnect/agriconnect-backend/pkg/enums"
	pkgerrors "github.com/agriconnect/agriconnect-backend/pkg/errors"
	"github.com/agriconnect/agriconnect-backend/pkg/security"
)

var testJWTConfig = config.JWTConfig{
	Secret:                 "test-secret",
	Issuer:                 "agriconnect-test",
	ExpirationMinutes:      15,
	RefreshTokenTTLMinutes: 60,
}

type stubUserRepo struct {
	user          *models.User
	lastLoginAt   *time.Time
	lastLoginUser uuid.UUID
	updatedHash   string
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if r.user == nil || r.user.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	return r.user, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if r.user == nil || r.user.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return r.user, nil
}

func (r *stubUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	r.lastLoginUser = id
	r.lastLoginAt = &at
	return nil
}

func (r *stubUserRepo) UpdatePasswordHash(_ context.Context, _ uuid.UUID, hash string) error {
	r.updatedHash = hash
	return nil
}

type stubSessions struct {
	refreshToken string
	rotateErr    error
	revoked      []string
}

func (s *stubSessions) Generate(context.Context, string) (string, error) {
	return s.refreshToken, nil
}

func (s *stubSessions) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	return "rotated-" + oldAccessID, "refresh-" + provided, nil
}

func (s *stubSessions) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

func seedUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	require.NoError(t, err)
	return &models.User{
		ID:           uuid.New(),
		Email:        "amina@example.com",
		PasswordHash: hash,
		Role:         enums.UserRoleFarmer,
		IsActive:     true,
	}
}

func newLoginService(t *testing.T, repo *stubUserRepo, sessions *stubSessions) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig,
	})
	require.NoError(t, err)
	return svc
}

func TestLogin_IssuesTokensAndRecordsLogin(t *testing.T) {
	user := seedUser(t, "correct horse")
	repo := &stubUserRepo{user: user}
	sessions := &stubSessions{refreshToken: "refresh-1"}
	svc := newLoginService(t, repo, sessions)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "Amina@Example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	require.Equal(t, "refresh-1", resp.RefreshToken)
	require.Equal(t, user.ID.String(), resp.User.ID)

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, enums.UserRoleFarmer, claims.Role)
	require.NotEmpty(t, claims.ID)

	require.Equal(t, user.ID, repo.lastLoginUser)
	require.NotNil(t, repo.lastLoginAt)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := &stubUserRepo{user: seedUser(t, "correct horse")}
	svc := newLoginService(t, repo, &stubSessions{})

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "amina@example.com",
		Password: "battery staple",
	})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeUnauthorized))
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := newLoginService(t, &stubUserRepo{}, &stubSessions{})

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeUnauthorized))
}

func TestLogin_InactiveUser(t *testing.T) {
	user := seedUser(t, "correct horse")
	user.IsActive = false
	svc := newLoginService(t, &stubUserRepo{user: user}, &stubSessions{})

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "amina@example.com",
		Password: "correct horse",
	})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeUnauthorized))
}

func TestRefresh_RotatesSession(t *testing.T) {
	user := seedUser(t, "correct horse")
	svc := newLoginService(t, &stubUserRepo{user: user}, &stubSessions{})

	accessToken, err := pkgAuth.MintAccessToken(testJWTConfig, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    "session-old",
	})
	require.NoError(t, err)

	resp, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  accessToken,
		RefreshToken: "r1",
	})
	require.NoError(t, err)
	require.Equal(t, "refresh-r1", resp.RefreshToken)

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "rotated-session-old", claims.ID)
	require.Equal(t, user.ID, claims.UserID)
}

func TestRefresh_InvalidRefreshToken(t *testing.T) {
	user := seedUser(t, "correct horse")
	sessions := &stubSessions{rotateErr: session.ErrInvalidRefreshToken}
	svc := newLoginService(t, &stubUserRepo{user: user}, sessions)

	accessToken, err := pkgAuth.MintAccessToken(testJWTConfig, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    "session-old",
	})
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  accessToken,
		RefreshToken: "stolen",
	})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeUnauthorized))
}

func TestChangePassword_RotatesHash(t *testing.T) {
	user := seedUser(t, "correct horse")
	repo := &stubUserRepo{user: user}
	svc := newLoginService(t, repo, &stubSessions{})

	err := svc.ChangePassword(context.Background(), user.ID, ChangePasswordRequest{
		OldPassword: "correct horse",
		NewPassword: "battery staple",
	})
	require.NoError(t, err)
	require.NotEmpty(t, repo.updatedHash)
	require.NotEqual(t, user.PasswordHash, repo.updatedHash)

	valid, err := security.VerifyPassword("battery staple", repo.updatedHash)
	require.NoError(t, err)
	require.True(t, valid)
}

func TestChangePassword_WrongCurrentPassword(t *testing.T) {
	user := seedUser(t, "correct horse")
	repo := &stubUserRepo{user: user}
	svc := newLoginService(t, repo, &stubSessions{})

	err := svc.ChangePassword(context.Background(), user.ID, ChangePasswordRequest{
		OldPassword: "battery staple",
		NewPassword: "whatever else",
	})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	require.Empty(t, repo.updatedHash)
}

func TestChangePassword_UnknownUser(t *testing.T) {
	svc := newLoginService(t, &stubUserRepo{}, &stubSessions{})

	err := svc.ChangePassword(context.Background(), uuid.New(), ChangePasswordRequest{
		OldPassword: "correct horse",
		NewPassword: "battery staple",
	})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeUnauthorized))
}

func TestLogout_RevokesSession(t *testing.T) {
	sessions := &stubSessions{}
	svc := newLoginService(t, &stubUserRepo{}, sessions)

	require.NoError(t, svc.Logout(context.Background(), "session-1"))
	require.Equal(t, []string{"session-1"}, sessions.revoked)
}

func TestLogout_MissingSession(t *testing.T) {
	svc := newLoginService(t, &stubUserRepo{}, &stubSessions{})
	err := svc.Logout(context.Background(), "  ")
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeUnauthorized))
}

const usersTestSchema = `
CREATE TABLE users (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	phone TEXT,
	role TEXT NOT NULL DEFAULT 'farmer',
	is_staff BOOLEAN NOT NULL DEFAULT 0,
	is_active BOOLEAN NOT NULL DEFAULT 1,
	last_login_at DATETIME,
	created_at DATETIME,
	updated_at DATETIME
);
`

func newRegisterService(t *testing.T) RegisterService {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.Exec(usersTestSchema).Error)

	svc, err := NewRegisterService(RegisterServiceParams{DB: db.NewWithConn(conn)})
	require.NoError(t, err)
	return svc
}

func TestRegister_DefaultsRoleToFarmer(t *testing.T) {
	svc := newRegisterService(t)

	created, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "Neema@Example.com",
		Password: "s3cret-enough",
	})
	require.NoError(t, err)
	require.Equal(t, "neema@example.com", created.Email)
	require.Equal(t, enums.UserRoleFarmer, created.Role)
	require.True(t, created.IsActive)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newRegisterService(t)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "neema@example.com",
		Password: "s3cret-enough",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterRequest{
		Email:    "NEEMA@example.com",
		Password: "another-one",
	})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeConflict))
}

func TestRegister_RejectsAdminRole(t *testing.T) {
	svc := newRegisterService(t)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "root@example.com",
		Password: "s3cret-enough",
		Role:     enums.UserRoleAdmin,
	})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}
