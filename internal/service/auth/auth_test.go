package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pelisdb/movie-api/internal/models"
	"github.com/pelisdb/movie-api/internal/token"
	"github.com/pelisdb/movie-api/internal/tokenstore"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.RefreshToken{}))
	return db
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	codec := token.New(token.Config{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})
	return NewService(newTestDB(t), codec)
}

func register(t *testing.T, s *Service, username string, wantAdmin bool) *AuthResult {
	t.Helper()
	res, err := s.Register(context.Background(), RegisterInput{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "Password1",
		WantAdmin: wantAdmin,
	})
	require.NoError(t, err)
	return res
}

func TestRegister(t *testing.T) {
	s := newTestService(t)

	res := register(t, s, "alice", false)
	require.NotEmpty(t, res.User.ID)
	require.Equal(t, "alice", res.User.Username)
	require.False(t, res.User.IsAdmin)
	require.True(t, res.User.Active)
	require.NotEqual(t, "Password1", res.User.PasswordHash)
	require.NotEmpty(t, res.AccessToken)
	require.NotEmpty(t, res.RefreshToken)

	// refresh token must be persisted
	_, err := s.Tokens.Find(context.Background(), res.RefreshToken)
	require.NoError(t, err)
}

func TestRegisterAdminBootstrap(t *testing.T) {
	s := newTestService(t)

	first := register(t, s, "root", true)
	require.True(t, first.User.IsAdmin, "first admin request must be honored")

	second := register(t, s, "mallory", true)
	require.False(t, second.User.IsAdmin, "later admin requests must be demoted")
}

func TestRegisterAdminBootstrapIgnoresNonAdmins(t *testing.T) {
	s := newTestService(t)

	register(t, s, "alice", false)
	late := register(t, s, "root", true)
	require.True(t, late.User.IsAdmin, "non-admin accounts do not consume the bootstrap slot")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	register(t, s, "alice", false)

	_, err := s.Register(ctx, RegisterInput{
		Username: "alice2",
		Email:    "alice@example.com",
		Password: "Password1",
	})
	require.ErrorIs(t, err, ErrEmailTaken)

	var count int64
	require.NoError(t, s.DB.Model(&models.User{}).Count(&count).Error)
	require.Equal(t, int64(1), count, "failed registration must not insert a row")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	s := newTestService(t)

	register(t, s, "alice", false)

	_, err := s.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "other@example.com",
		Password: "Password1",
	})
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLoginByUsernameAndEmail(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	register(t, s, "alice", false)

	res, err := s.Login(ctx, "alice", "Password1")
	require.NoError(t, err)
	require.Equal(t, "alice", res.User.Username)
	require.NotEmpty(t, res.AccessToken)
	require.NotEmpty(t, res.RefreshToken)
	require.NotNil(t, res.User.LastLogin)

	res, err = s.Login(ctx, "alice@example.com", "Password1")
	require.NoError(t, err)
	require.Equal(t, "alice", res.User.Username)
}

func TestLoginInvalidCredentials(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	register(t, s, "alice", false)

	_, err := s.Login(ctx, "alice", "WrongPassword")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Login(ctx, "nobody", "Password1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginDisabledAccount(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	res := register(t, s, "alice", false)
	require.NoError(t, s.DB.Model(&models.User{}).Where("id = ?", res.User.ID).Update("activo", false).Error)

	_, err := s.Login(ctx, "alice", "Password1")
	require.ErrorIs(t, err, ErrAccountDisabled)
}

func TestRefresh(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	res := register(t, s, "alice", false)

	access, err := s.Refresh(ctx, res.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, access)

	claims, err := s.Codec.VerifyAccess(access)
	require.NoError(t, err)
	require.Equal(t, res.User.ID, claims.UserID)
	require.Equal(t, "user", claims.Role)

	// not rotated: the same refresh token keeps working
	_, err = s.Refresh(ctx, res.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshRequiresToken(t *testing.T) {
	s := newTestService(t)

	_, err := s.Refresh(context.Background(), "")
	require.ErrorIs(t, err, ErrTokenRequired)
}

func TestRefreshUnknownToken(t *testing.T) {
	s := newTestService(t)

	// signature-valid but never persisted: revoked-by-deletion semantics
	raw, err := s.Codec.SignRefresh("user-1", "user")
	require.NoError(t, err)

	_, err = s.Refresh(context.Background(), raw)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefreshAfterLogout(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	res := register(t, s, "alice", false)

	require.NoError(t, s.Logout(ctx, res.RefreshToken))

	_, err := s.Refresh(ctx, res.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefreshExpiredTokenIsDeleted(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	res := register(t, s, "alice", false)

	expiredCodec := token.New(token.Config{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     time.Minute,
		RefreshTTL:    -time.Minute,
	})
	stale, err := expiredCodec.SignRefresh(res.User.ID, "user")
	require.NoError(t, err)
	require.NoError(t, s.Tokens.Save(ctx, res.User.ID, stale, time.Hour))

	_, err = s.Refresh(ctx, stale)
	require.ErrorIs(t, err, ErrRefreshTokenExpired)

	_, err = s.Tokens.Find(ctx, stale)
	require.ErrorIs(t, err, tokenstore.ErrNotFound)
}

func TestRefreshGarbageTokenInStoreIsDeleted(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	require.NoError(t, s.Tokens.Save(ctx, "user-1", "garbage-token", time.Hour))

	_, err := s.Refresh(ctx, "garbage-token")
	require.ErrorIs(t, err, ErrInvalidRefreshToken)

	_, err = s.Tokens.Find(ctx, "garbage-token")
	require.ErrorIs(t, err, tokenstore.ErrNotFound)
}

func TestRefreshUserDeleted(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	res := register(t, s, "alice", false)
	require.NoError(t, s.DB.Where("id = ?", res.User.ID).Delete(&models.User{}).Error)

	_, err := s.Refresh(ctx, res.RefreshToken)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestLogoutRequiresToken(t *testing.T) {
	s := newTestService(t)
	require.ErrorIs(t, s.Logout(context.Background(), ""), ErrTokenRequired)
}

func TestLogoutIsIdempotent(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	res := register(t, s, "alice", false)
	require.NoError(t, s.Logout(ctx, res.RefreshToken))
	require.NoError(t, s.Logout(ctx, res.RefreshToken))
}
