package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/pelisdb/movie-api/internal/models"
	"github.com/pelisdb/movie-api/internal/util"
)

type ActorHandler struct {
	DB  *gorm.DB
	Dev bool
}

func (h *ActorHandler) GetActors(c echo.Context) error {
	var actors []models.Actor
	if err := h.DB.WithContext(c.Request().Context()).Order("apellido ASC, nombre ASC").Find(&actors).Error; err != nil {
		return failDev(c, http.StatusInternalServerError, "could not list actors", "UNEXPECTED_ERROR", h.Dev, err)
	}
	return c.JSON(http.StatusOK, actors)
}

func (h *ActorHandler) GetActor(c echo.Context) error {
	var actor models.Actor
	err := h.DB.WithContext(c.Request().Context()).Where("id = ?", c.Param("id")).First(&actor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusNotFound, "actor not found", "NOT_FOUND")
		}
		return failDev(c, http.StatusInternalServerError, "could not fetch actor", "UNEXPECTED_ERROR", h.Dev, err)
	}
	return c.JSON(http.StatusOK, actor)
}

func (h *ActorHandler) SearchActors(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return fail(c, http.StatusBadRequest, "query parameter q is required", "VALIDATION_ERROR")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	pattern := "%" + strings.ToLower(q) + "%"
	var actors []models.Actor
	err := h.DB.WithContext(c.Request().Context()).
		Where("LOWER(nombre || ' ' || apellido) LIKE ?", pattern).
		Order("apellido ASC, nombre ASC").
		Offset(offset).Limit(limit).
		Find(&actors).Error
	if err != nil {
		return failDev(c, http.StatusInternalServerError, "could not search actors", "UNEXPECTED_ERROR", h.Dev, err)
	}
	return c.JSON(http.StatusOK, actors)
}

func (h *ActorHandler) CreateActor(c echo.Context) error {
	var req struct {
		FirstName string `json:"nombre"`
		LastName  string `json:"apellido"`
		Country   string `json:"pais_origen"`
		AvatarURL string `json:"URLavatar"`
	}
	if err := c.Bind(&req); err != nil {
		return failDev(c, http.StatusBadRequest, "malformed request body", "VALIDATION_ERROR", h.Dev, err)
	}
	if req.FirstName == "" || req.LastName == "" {
		return fail(c, http.StatusBadRequest, "nombre and apellido are required", "VALIDATION_ERROR")
	}

	actor := models.Actor{
		ID:        uuid.NewString(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Country:   req.Country,
		AvatarURL: req.AvatarURL,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&actor).Error; err != nil {
		return failDev(c, http.StatusInternalServerError, "could not create actor", "UNEXPECTED_ERROR", h.Dev, err)
	}
	return c.JSON(http.StatusCreated, actor)
}

func (h *ActorHandler) UpdateActor(c echo.Context) error {
	var req struct {
		FirstName *string `json:"nombre"`
		LastName  *string `json:"apellido"`
		Country   *string `json:"pais_origen"`
		AvatarURL *string `json:"URLavatar"`
	}
	if err := c.Bind(&req); err != nil {
		return failDev(c, http.StatusBadRequest, "malformed request body", "VALIDATION_ERROR", h.Dev, err)
	}

	var actor models.Actor
	if err := h.DB.WithContext(c.Request().Context()).Where("id = ?", c.Param("id")).First(&actor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusNotFound, "actor not found", "NOT_FOUND")
		}
		return failDev(c, http.StatusInternalServerError, "could not fetch actor", "UNEXPECTED_ERROR", h.Dev, err)
	}

	if req.FirstName != nil {
		actor.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		actor.LastName = *req.LastName
	}
	if req.Country != nil {
		actor.Country = *req.Country
	}
	if req.AvatarURL != nil {
		actor.AvatarURL = *req.AvatarURL
	}
	if err := h.DB.WithContext(c.Request().Context()).Save(&actor).Error; err != nil {
		return failDev(c, http.StatusInternalServerError, "could not update actor", "UNEXPECTED_ERROR", h.Dev, err)
	}
	return c.JSON(http.StatusOK, actor)
}

func (h *ActorHandler) DeleteActor(c echo.Context) error {
	if err := h.DB.WithContext(c.Request().Context()).Where("id = ?", c.Param("id")).Delete(&models.Actor{}).Error; err != nil {
		return failDev(c, http.StatusInternalServerError, "could not delete actor", "UNEXPECTED_ERROR", h.Dev, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetActorMovies returns the actor's filmography, newest first.
func (h *ActorHandler) GetActorMovies(c echo.Context) error {
	id := c.Param("id")

	var actor models.Actor
	if err := h.DB.WithContext(c.Request().Context()).Where("id = ?", id).First(&actor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusNotFound, "actor not found", "NOT_FOUND")
		}
		return failDev(c, http.StatusInternalServerError, "could not fetch actor", "UNEXPECTED_ERROR", h.Dev, err)
	}

	var movies []models.Movie
	err := h.DB.WithContext(c.Request().Context()).
		Joins("JOIN movie_actors ma ON ma.movie_id = movies.id").
		Where("ma.actor_id = ?", id).
		Order("fecha_lanzamiento DESC").
		Find(&movies).Error
	if err != nil {
		return failDev(c, http.StatusInternalServerError, "could not fetch filmography", "UNEXPECTED_ERROR", h.Dev, err)
	}
	return c.JSON(http.StatusOK, movies)
}
