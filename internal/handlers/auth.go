package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pelisdb/movie-api/internal/models"
	"github.com/pelisdb/movie-api/internal/mykafka"
	"github.com/pelisdb/movie-api/internal/service/auth"
)

type AuthHandler struct {
	Auth     *auth.Service
	Producer *mykafka.Producer
	Dev      bool
}

type publicUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"nombre,omitempty"`
	LastName  string `json:"apellido,omitempty"`
	IsAdmin   bool   `json:"es_admin"`
}

func toPublic(u *models.User) publicUser {
	return publicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsAdmin:   u.IsAdmin,
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"nombre"`
		LastName  string `json:"apellido"`
		WantAdmin bool   `json:"es_admin"`
	}
	if err := c.Bind(&req); err != nil {
		return failDev(c, http.StatusBadRequest, "malformed request body", "VALIDATION_ERROR", h.Dev, err)
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "username, email and password are required", "VALIDATION_ERROR")
	}

	res, err := h.Auth.Register(c.Request().Context(), auth.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		WantAdmin: req.WantAdmin,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			return fail(c, http.StatusConflict, "email already registered", "EMAIL_TAKEN")
		case errors.Is(err, auth.ErrUsernameTaken):
			return fail(c, http.StatusConflict, "username already taken", "USERNAME_TAKEN")
		case errors.Is(err, auth.ErrTokenPersistence):
			return failDev(c, http.StatusInternalServerError, "could not persist session token", "TOKEN_PERSISTENCE_ERROR", h.Dev, err)
		default:
			return failDev(c, http.StatusInternalServerError, "could not register user", "UNEXPECTED_ERROR", h.Dev, err)
		}
	}

	publish(c, h.Producer, "user_events", res.User.ID, map[string]any{
		"type":     "user_registered",
		"user_id":  res.User.ID,
		"username": res.User.Username,
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"message":      "user registered, log in to continue",
		"notify":       true,
		"redirect":     "/login",
		"user":         toPublic(res.User),
		"accessToken":  res.AccessToken,
		"refreshToken": res.RefreshToken,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		UsernameOrEmail string `json:"usernameOrEmail"`
		Password        string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return failDev(c, http.StatusBadRequest, "malformed request body", "VALIDATION_ERROR", h.Dev, err)
	}
	if req.UsernameOrEmail == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "usernameOrEmail and password are required", "VALIDATION_ERROR")
	}

	res, err := h.Auth.Login(c.Request().Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			return fail(c, http.StatusUnauthorized, "invalid credentials", "INVALID_CREDENTIALS")
		case errors.Is(err, auth.ErrAccountDisabled):
			return fail(c, http.StatusForbidden, "account disabled", "ACCOUNT_DISABLED")
		case errors.Is(err, auth.ErrTokenPersistence):
			return failDev(c, http.StatusInternalServerError, "could not persist session token", "TOKEN_PERSISTENCE_ERROR", h.Dev, err)
		default:
			return failDev(c, http.StatusInternalServerError, "could not log in", "UNEXPECTED_ERROR", h.Dev, err)
		}
	}

	publish(c, h.Producer, "user_events", res.User.ID, map[string]any{
		"type":     "user_logged_in",
		"user_id":  res.User.ID,
		"username": res.User.Username,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"id":           res.User.ID,
		"username":     res.User.Username,
		"email":        res.User.Email,
		"nombre":       res.User.FirstName,
		"apellido":     res.User.LastName,
		"es_admin":     res.User.IsAdmin,
		"accessToken":  res.AccessToken,
		"refreshToken": res.RefreshToken,
	})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&req); err != nil {
		return failDev(c, http.StatusBadRequest, "malformed request body", "VALIDATION_ERROR", h.Dev, err)
	}

	access, err := h.Auth.Refresh(c.Request().Context(), req.Token)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTokenRequired):
			return fail(c, http.StatusBadRequest, "refresh token required", "TOKEN_REQUIRED")
		case errors.Is(err, auth.ErrRefreshTokenExpired):
			return fail(c, http.StatusForbidden, "refresh token expired", "REFRESH_TOKEN_EXPIRED")
		case errors.Is(err, auth.ErrInvalidRefreshToken):
			return fail(c, http.StatusForbidden, "invalid refresh token", "INVALID_REFRESH_TOKEN")
		case errors.Is(err, auth.ErrUserNotFound):
			return fail(c, http.StatusNotFound, "user not found", "USER_NOT_FOUND")
		default:
			return failDev(c, http.StatusInternalServerError, "could not refresh token", "UNEXPECTED_ERROR", h.Dev, err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"accessToken": access})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&req); err != nil {
		return failDev(c, http.StatusBadRequest, "malformed request body", "VALIDATION_ERROR", h.Dev, err)
	}

	if err := h.Auth.Logout(c.Request().Context(), req.Token); err != nil {
		if errors.Is(err, auth.ErrTokenRequired) {
			return fail(c, http.StatusBadRequest, "refresh token required", "TOKEN_REQUIRED")
		}
		return failDev(c, http.StatusInternalServerError, "could not log out", "UNEXPECTED_ERROR", h.Dev, err)
	}

	return c.NoContent(http.StatusNoContent)
}
