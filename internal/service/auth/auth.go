package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/pelisdb/movie-api/internal/hash"
	"github.com/pelisdb/movie-api/internal/logging"
	"github.com/pelisdb/movie-api/internal/models"
	"github.com/pelisdb/movie-api/internal/token"
	"github.com/pelisdb/movie-api/internal/tokenstore"
)

var (
	ErrEmailTaken          = errors.New("auth: email already registered")
	ErrUsernameTaken       = errors.New("auth: username already taken")
	ErrInvalidCredentials  = errors.New("auth: invalid credentials")
	ErrAccountDisabled     = errors.New("auth: account disabled")
	ErrTokenRequired       = errors.New("auth: refresh token required")
	ErrInvalidRefreshToken = errors.New("auth: invalid refresh token")
	ErrRefreshTokenExpired = errors.New("auth: refresh token expired")
	ErrUserNotFound        = errors.New("auth: user not found")
	ErrTokenPersistence    = errors.New("auth: could not persist refresh token")
)

type Service struct {
	DB     *gorm.DB
	Codec  *token.Codec
	Tokens *tokenstore.Store
}

func NewService(db *gorm.DB, codec *token.Codec) *Service {
	return &Service{DB: db, Codec: codec, Tokens: tokenstore.New(db)}
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	WantAdmin bool
}

type AuthResult struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

// Register creates the user and opens a session. The duplicate pre-checks
// exist only for friendly errors; the unique indexes on email and username
// are the authoritative guard, and their violations map to the same
// conflict errors.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register", "username", in.Username)

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("auth: email lookup: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("username = ?", in.Username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("auth: username lookup: %w", err)
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	// Admin bootstrap: the admin flag is honored only while no admin exists.
	isAdmin := false
	if in.WantAdmin {
		var admins int64
		if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("es_admin = ?", true).Count(&admins).Error; err != nil {
			return nil, fmt.Errorf("auth: admin count: %w", err)
		}
		isAdmin = admins == 0
		if !isAdmin {
			l.Info("admin request demoted, an admin already exists")
		}
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: pwHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		IsAdmin:      isAdmin,
		Active:       true,
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		if conflict := duplicateError(err); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("auth: create user: %w", err)
	}

	res, err := s.issueTokens(ctx, &user)
	if err != nil {
		// The user row exists at this point; surface a distinct error so
		// operators can tell "user created, session failed" apart.
		l.Error("refresh token persistence failed after user creation", "user_id", user.ID, "error", err)
		return nil, ErrTokenPersistence
	}

	l.Info("user registered", "user_id", user.ID, "es_admin", user.IsAdmin)
	return res, nil
}

// Login accepts either the username or the email as identifier. Not-found
// and wrong-password collapse to the same error so the response does not
// leak which factor failed.
func (s *Service) Login(ctx context.Context, usernameOrEmail, password string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", usernameOrEmail).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = s.DB.WithContext(ctx).Where("username = ?", usernameOrEmail).First(&user).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth: user lookup: %w", err)
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	if !user.Active {
		return nil, ErrAccountDisabled
	}

	// Best effort only; a failed timestamp update never aborts the login.
	now := time.Now()
	user.LastLogin = &now
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Update("ultimo_login", &now).Error; err != nil {
		l.Warn("last login update failed", "user_id", user.ID, "error", err)
	}

	res, err := s.issueTokens(ctx, &user)
	if err != nil {
		l.Error("refresh token persistence failed", "user_id", user.ID, "error", err)
		return nil, ErrTokenPersistence
	}

	l.Info("user logged in", "user_id", user.ID)
	return res, nil
}

// Refresh exchanges a persisted refresh token for a new access token. The
// refresh token itself is not rotated. A signature-valid token that the
// store no longer holds is rejected: deletion is revocation.
func (s *Service) Refresh(ctx context.Context, raw string) (string, error) {
	if raw == "" {
		return "", ErrTokenRequired
	}

	if _, err := s.Tokens.Find(ctx, raw); err != nil {
		if errors.Is(err, tokenstore.ErrNotFound) {
			return "", ErrInvalidRefreshToken
		}
		return "", fmt.Errorf("auth: refresh lookup: %w", err)
	}

	claims, err := s.Codec.VerifyRefresh(raw)
	if err != nil {
		// Stale row either way; drop it before reporting.
		if delErr := s.Tokens.Delete(ctx, raw); delErr != nil {
			logging.FromContext(ctx).Warn("stale refresh token cleanup failed", "error", delErr)
		}
		if errors.Is(err, token.ErrTokenExpired) {
			return "", ErrRefreshTokenExpired
		}
		return "", ErrInvalidRefreshToken
	}

	var user models.User
	if err := s.DB.WithContext(ctx).Where("id = ?", claims.UserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("auth: user lookup: %w", err)
	}

	access, err := s.Codec.SignAccess(user.ID, roleOf(&user))
	if err != nil {
		return "", fmt.Errorf("auth: sign access token: %w", err)
	}
	return access, nil
}

// Logout deletes the refresh token unconditionally; logging out an already
// logged-out session succeeds.
func (s *Service) Logout(ctx context.Context, raw string) error {
	if raw == "" {
		return ErrTokenRequired
	}
	return s.Tokens.Delete(ctx, raw)
}

func (s *Service) issueTokens(ctx context.Context, user *models.User) (*AuthResult, error) {
	role := roleOf(user)

	access, err := s.Codec.SignAccess(user.ID, role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.Codec.SignRefresh(user.ID, role)
	if err != nil {
		return nil, err
	}
	if err := s.Tokens.Save(ctx, user.ID, refresh, s.Codec.RefreshTTL()); err != nil {
		return nil, err
	}

	return &AuthResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

func roleOf(user *models.User) string {
	if user.IsAdmin {
		return "admin"
	}
	return "user"
}

// duplicateError maps a unique-constraint violation to the matching
// conflict error, or returns nil if err is not a duplicate-key failure.
func duplicateError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		if strings.Contains(pqErr.Constraint, "email") {
			return ErrEmailTaken
		}
		return ErrUsernameTaken
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		if strings.Contains(err.Error(), "email") {
			return ErrEmailTaken
		}
		return ErrUsernameTaken
	}
	return nil
}
