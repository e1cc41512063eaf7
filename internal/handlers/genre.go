package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/pelisdb/movie-api/internal/models"
)

type GenreHandler struct {
	DB  *gorm.DB
	Dev bool
}

func (h *GenreHandler) GetGenres(c echo.Context) error {
	var genres []models.Genre
	if err := h.DB.WithContext(c.Request().Context()).Order("nombre ASC").Find(&genres).Error; err != nil {
		return failDev(c, http.StatusInternalServerError, "could not list genres", "UNEXPECTED_ERROR", h.Dev, err)
	}
	return c.JSON(http.StatusOK, genres)
}

func (h *GenreHandler) GetGenre(c echo.Context) error {
	var genre models.Genre
	err := h.DB.WithContext(c.Request().Context()).Where("id = ?", c.Param("id")).First(&genre).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusNotFound, "genre not found", "NOT_FOUND")
		}
		return failDev(c, http.StatusInternalServerError, "could not fetch genre", "UNEXPECTED_ERROR", h.Dev, err)
	}
	return c.JSON(http.StatusOK, genre)
}

func (h *GenreHandler) CreateGenre(c echo.Context) error {
	var req struct {
		Name        string `json:"nombre"`
		Description string `json:"descripcion"`
	}
	if err := c.Bind(&req); err != nil {
		return failDev(c, http.StatusBadRequest, "malformed request body", "VALIDATION_ERROR", h.Dev, err)
	}
	if req.Name == "" {
		return fail(c, http.StatusBadRequest, "nombre is required", "VALIDATION_ERROR")
	}

	var count int64
	if err := h.DB.WithContext(c.Request().Context()).Model(&models.Genre{}).Where("nombre = ?", req.Name).Count(&count).Error; err != nil {
		return failDev(c, http.StatusInternalServerError, "could not create genre", "UNEXPECTED_ERROR", h.Dev, err)
	}
	if count > 0 {
		return fail(c, http.StatusConflict, "genre already exists", "GENRE_TAKEN")
	}

	genre := models.Genre{ID: uuid.NewString(), Name: req.Name, Description: req.Description}
	if err := h.DB.WithContext(c.Request().Context()).Create(&genre).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fail(c, http.StatusConflict, "genre already exists", "GENRE_TAKEN")
		}
		return failDev(c, http.StatusInternalServerError, "could not create genre", "UNEXPECTED_ERROR", h.Dev, err)
	}
	return c.JSON(http.StatusCreated, genre)
}

func (h *GenreHandler) UpdateGenre(c echo.Context) error {
	var req struct {
		Name        *string `json:"nombre"`
		Description *string `json:"descripcion"`
	}
	if err := c.Bind(&req); err != nil {
		return failDev(c, http.StatusBadRequest, "malformed request body", "VALIDATION_ERROR", h.Dev, err)
	}

	var genre models.Genre
	if err := h.DB.WithContext(c.Request().Context()).Where("id = ?", c.Param("id")).First(&genre).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusNotFound, "genre not found", "NOT_FOUND")
		}
		return failDev(c, http.StatusInternalServerError, "could not fetch genre", "UNEXPECTED_ERROR", h.Dev, err)
	}

	if req.Name != nil {
		genre.Name = *req.Name
	}
	if req.Description != nil {
		genre.Description = *req.Description
	}
	if err := h.DB.WithContext(c.Request().Context()).Save(&genre).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fail(c, http.StatusConflict, "genre already exists", "GENRE_TAKEN")
		}
		return failDev(c, http.StatusInternalServerError, "could not update genre", "UNEXPECTED_ERROR", h.Dev, err)
	}
	return c.JSON(http.StatusOK, genre)
}

func (h *GenreHandler) DeleteGenre(c echo.Context) error {
	if err := h.DB.WithContext(c.Request().Context()).Where("id = ?", c.Param("id")).Delete(&models.Genre{}).Error; err != nil {
		return failDev(c, http.StatusInternalServerError, "could not delete genre", "UNEXPECTED_ERROR", h.Dev, err)
	}
	return c.NoContent(http.StatusNoContent)
}
