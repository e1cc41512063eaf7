package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/pelisdb/movie-api/internal/logging"
	"github.com/pelisdb/movie-api/internal/models"
)

var (
	ErrNotSaved = errors.New("tokenstore: refresh token was not saved")
	ErrNotFound = errors.New("tokenstore: refresh token not found")
)

type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// Save persists a refresh token for the user. The stored expiry is computed
// here from ttl, not taken from the token's embedded exp claim: the row
// governs revocation checks. Expired rows are pruned opportunistically after
// every successful save.
func (s *Store) Save(ctx context.Context, userID, token string, ttl time.Duration) error {
	if userID == "" || token == "" {
		return fmt.Errorf("tokenstore: user id and token are required")
	}

	row := models.RefreshToken{
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl),
	}
	res := s.DB.WithContext(ctx).Create(&row)
	if res.Error != nil {
		return fmt.Errorf("tokenstore: save: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotSaved
	}

	if n, err := s.PruneExpired(ctx); err != nil {
		logging.FromContext(ctx).Warn("prune expired refresh tokens failed", "error", err)
	} else if n > 0 {
		logging.FromContext(ctx).Info("pruned expired refresh tokens", "count", n)
	}

	return nil
}

func (s *Store) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	var row models.RefreshToken
	if err := s.DB.WithContext(ctx).Where("token = ?", token).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("tokenstore: find: %w", err)
	}
	return &row, nil
}

// Delete is idempotent: deleting an absent token is not an error.
func (s *Store) Delete(ctx context.Context, token string) error {
	if err := s.DB.WithContext(ctx).Where("token = ?", token).Delete(&models.RefreshToken{}).Error; err != nil {
		return fmt.Errorf("tokenstore: delete: %w", err)
	}
	return nil
}

func (s *Store) PruneExpired(ctx context.Context) (int64, error) {
	res := s.DB.WithContext(ctx).Where("expires_at < ?", time.Now()).Delete(&models.RefreshToken{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
