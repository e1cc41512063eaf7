package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/pelisdb/movie-api/internal/token"
)

type Middleware struct {
	DB    *gorm.DB
	Codec *token.Codec
	Dev   bool
}

type errBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Authenticate verifies the bearer access token and attaches the caller's
// identity to the echo context. The admin flag is re-read from the database
// on every request; the token's role claim is never trusted for the admin
// decision.
func (m *Middleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return c.JSON(http.StatusUnauthorized, errBody{
				Error:   "unauthorized",
				Details: "access token required",
				Code:    "MISSING_AUTH_TOKEN",
			})
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
			return c.JSON(http.StatusUnauthorized, errBody{
				Error:   "unauthorized",
				Details: "invalid token format, use: Bearer <token>",
				Code:    "INVALID_TOKEN_FORMAT",
			})
		}

		claims, err := m.Codec.VerifyAccess(strings.TrimSpace(parts[1]))
		if err != nil {
			return c.JSON(http.StatusForbidden, errBody{
				Error:   "invalid token",
				Details: "access token is invalid or has expired",
				Code:    "INVALID_OR_EXPIRED_TOKEN",
			})
		}

		var row struct {
			ID      string
			IsAdmin bool `gorm:"column:es_admin"`
		}
		err = m.DB.WithContext(c.Request().Context()).
			Table("users").Select("id", "es_admin").
			Where("id = ?", claims.UserID).
			Take(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.JSON(http.StatusNotFound, errBody{
					Error:   "user not found",
					Details: "the user associated with this token no longer exists",
					Code:    "USER_NOT_FOUND",
				})
			}
			body := errBody{Error: "authentication error", Code: "AUTHENTICATION_ERROR"}
			if m.Dev {
				body.Details = err.Error()
			}
			return c.JSON(http.StatusInternalServerError, body)
		}

		c.Set("userID", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("isAdmin", row.IsAdmin)
		return next(c)
	}
}

// AdminOnly must run after Authenticate.
func AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if isAdmin, ok := c.Get("isAdmin").(bool); !ok || !isAdmin {
			return c.JSON(http.StatusForbidden, errBody{
				Error:   "forbidden",
				Details: "admin privileges required",
				Code:    "ADMIN_ACCESS_REQUIRED",
			})
		}
		return next(c)
	}
}
