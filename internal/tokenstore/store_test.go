package tokenstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pelisdb/movie-api/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.RefreshToken{}))
	return New(db)
}

func TestSaveAndFind(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "user-1", "tok-1", time.Hour))

	row, err := s.Find(ctx, "tok-1")
	require.NoError(t, err)
	require.Equal(t, "user-1", row.UserID)
	require.WithinDuration(t, time.Now().Add(time.Hour), row.ExpiresAt, 5*time.Second)
}

func TestSaveRequiresUserAndToken(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.Error(t, s.Save(ctx, "", "tok-1", time.Hour))
	require.Error(t, s.Save(ctx, "user-1", "", time.Hour))
}

func TestFindMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Find(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "user-1", "tok-1", time.Hour))
	require.NoError(t, s.Delete(ctx, "tok-1"))
	require.NoError(t, s.Delete(ctx, "tok-1"))

	_, err := s.Find(ctx, "tok-1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPruneExpired(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "user-1", "live", time.Hour))
	require.NoError(t, s.DB.Create(&models.RefreshToken{
		Token:     "stale",
		UserID:    "user-1",
		ExpiresAt: time.Now().Add(-time.Hour),
	}).Error)

	n, err := s.PruneExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	_, err = s.Find(ctx, "stale")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.Find(ctx, "live")
	require.NoError(t, err)
}

func TestSavePrunesExpiredInline(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.DB.Create(&models.RefreshToken{
		Token:     "stale",
		UserID:    "user-1",
		ExpiresAt: time.Now().Add(-time.Minute),
	}).Error)

	require.NoError(t, s.Save(ctx, "user-2", "fresh", time.Hour))

	_, err := s.Find(ctx, "stale")
	require.ErrorIs(t, err, ErrNotFound)
}
