package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/pelisdb/movie-api/internal/models"
	"github.com/pelisdb/movie-api/internal/mykafka"
)

type MovieHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	Dev      bool
}

const releaseDateLayout = "2006-01-02"

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func (h *MovieHandler) GetMovies(c echo.Context) error {
	var movies []models.Movie
	err := h.DB.WithContext(c.Request().Context()).
		Preload("Director").Preload("Genres").
		Order("titulo ASC").
		Find(&movies).Error
	if err != nil {
		return failDev(c, http.StatusInternalServerError, "could not list movies", "UNEXPECTED_ERROR", h.Dev, err)
	}
	return c.JSON(http.StatusOK, movies)
}

func (h *MovieHandler) GetMovie(c echo.Context) error {
	var movie models.Movie
	err := h.DB.WithContext(c.Request().Context()).
		Preload("Director").Preload("Genres").
		Where("id = ?", c.Param("id")).
		First(&movie).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusNotFound, "movie not found", "NOT_FOUND")
		}
		return failDev(c, http.StatusInternalServerError, "could not fetch movie", "UNEXPECTED_ERROR", h.Dev, err)
	}
	return c.JSON(http.StatusOK, movie)
}

func (h *MovieHandler) CreateMovie(c echo.Context) error {
	var req struct {
		Title       string   `json:"titulo"`
		Description string   `json:"descripcion"`
		ReleaseDate string   `json:"fecha_lanzamiento"`
		DurationMin int      `json:"duracion_min"`
		Rating      string   `json:"clasificacion"`
		PosterURL   string   `json:"URLposter"`
		DirectorID  *string  `json:"director_id"`
		Genres      []string `json:"generos"`
	}
	if err := c.Bind(&req); err != nil {
		return failDev(c, http.StatusBadRequest, "malformed request body", "VALIDATION_ERROR", h.Dev, err)
	}
	if req.Title == "" || req.Description == "" || req.ReleaseDate == "" || req.DurationMin == 0 || req.Rating == "" || req.PosterURL == "" {
		return fail(c, http.StatusBadRequest, "titulo, descripcion, fecha_lanzamiento, duracion_min, clasificacion and URLposter are required", "VALIDATION_ERROR")
	}
	if len(req.Genres) == 0 {
		return fail(c, http.StatusBadRequest, "at least one genre is required", "VALIDATION_ERROR")
	}

	release, err := time.Parse(releaseDateLayout, req.ReleaseDate)
	if err != nil {
		return fail(c, http.StatusBadRequest, "fecha_lanzamiento must be YYYY-MM-DD", "VALIDATION_ERROR")
	}

	ctx := c.Request().Context()

	if req.DirectorID != nil && *req.DirectorID != "" {
		var count int64
		if err := h.DB.WithContext(ctx).Model(&models.Actor{}).Where("id = ?", *req.DirectorID).Count(&count).Error; err != nil {
			return failDev(c, http.StatusInternalServerError, "could not validate director", "UNEXPECTED_ERROR", h.Dev, err)
		}
		if count == 0 {
			return fail(c, http.StatusBadRequest, "director does not exist", "VALIDATION_ERROR")
		}
	}

	var genres []models.Genre
	if err := h.DB.WithContext(ctx).Where("id IN ?", req.Genres).Find(&genres).Error; err != nil {
		return failDev(c, http.StatusInternalServerError, "could not validate genres", "UNEXPECTED_ERROR", h.Dev, err)
	}
	if len(genres) != len(req.Genres) {
		return fail(c, http.StatusBadRequest, "one or more genres do not exist", "VALIDATION_ERROR")
	}

	movie := models.Movie{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		ReleaseDate: release,
		DurationMin: req.DurationMin,
		Rating:      req.Rating,
		PosterURL:   req.PosterURL,
		DirectorID:  req.DirectorID,
		Genres:      genres,
	}
	if err := h.DB.WithContext(ctx).Create(&movie).Error; err != nil {
		return failDev(c, http.StatusInternalServerError, "could not create movie", "UNEXPECTED_ERROR", h.Dev, err)
	}

	publish(c, h.Producer, "movie_events", movie.ID, map[string]any{
		"type":     "movie_created",
		"movie_id": movie.ID,
		"titulo":   movie.Title,
	})

	return c.JSON(http.StatusCreated, movie)
}

func (h *MovieHandler) UpdateMovie(c echo.Context) error {
	var req struct {
		Title       *string  `json:"titulo"`
		Description *string  `json:"descripcion"`
		ReleaseDate *string  `json:"fecha_lanzamiento"`
		DurationMin *int     `json:"duracion_min"`
		Rating      *string  `json:"clasificacion"`
		PosterURL   *string  `json:"URLposter"`
		DirectorID  *string  `json:"director_id"`
		Genres      []string `json:"generos"`
	}
	if err := c.Bind(&req); err != nil {
		return failDev(c, http.StatusBadRequest, "malformed request body", "VALIDATION_ERROR", h.Dev, err)
	}

	ctx := c.Request().Context()

	var movie models.Movie
	if err := h.DB.WithContext(ctx).Where("id = ?", c.Param("id")).First(&movie).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusNotFound, "movie not found", "NOT_FOUND")
		}
		return failDev(c, http.StatusInternalServerError, "could not fetch movie", "UNEXPECTED_ERROR", h.Dev, err)
	}

	if req.Title != nil {
		movie.Title = *req.Title
	}
	if req.Description != nil {
		movie.Description = *req.Description
	}
	if req.ReleaseDate != nil {
		release, err := time.Parse(releaseDateLayout, *req.ReleaseDate)
		if err != nil {
			return fail(c, http.StatusBadRequest, "fecha_lanzamiento must be YYYY-MM-DD", "VALIDATION_ERROR")
		}
		movie.ReleaseDate = release
	}
	if req.DurationMin != nil {
		movie.DurationMin = *req.DurationMin
	}
	if req.Rating != nil {
		movie.Rating = *req.Rating
	}
	if req.PosterURL != nil {
		movie.PosterURL = *req.PosterURL
	}
	if req.DirectorID != nil {
		var count int64
		if err := h.DB.WithContext(ctx).Model(&models.Actor{}).Where("id = ?", *req.DirectorID).Count(&count).Error; err != nil {
			return failDev(c, http.StatusInternalServerError, "could not validate director", "UNEXPECTED_ERROR", h.Dev, err)
		}
		if count == 0 {
			return fail(c, http.StatusBadRequest, "director does not exist", "VALIDATION_ERROR")
		}
		movie.DirectorID = req.DirectorID
	}

	if err := h.DB.WithContext(ctx).Save(&movie).Error; err != nil {
		return failDev(c, http.StatusInternalServerError, "could not update movie", "UNEXPECTED_ERROR", h.Dev, err)
	}

	if req.Genres != nil {
		var genres []models.Genre
		if err := h.DB.WithContext(ctx).Where("id IN ?", req.Genres).Find(&genres).Error; err != nil {
			return failDev(c, http.StatusInternalServerError, "could not validate genres", "UNEXPECTED_ERROR", h.Dev, err)
		}
		if len(genres) != len(req.Genres) {
			return fail(c, http.StatusBadRequest, "one or more genres do not exist", "VALIDATION_ERROR")
		}
		if err := h.DB.WithContext(ctx).Model(&movie).Association("Genres").Replace(genres); err != nil {
			return failDev(c, http.StatusInternalServerError, "could not update genres", "UNEXPECTED_ERROR", h.Dev, err)
		}
		movie.Genres = genres
	}

	publish(c, h.Producer, "movie_events", movie.ID, map[string]any{
		"type":     "movie_updated",
		"movie_id": movie.ID,
		"titulo":   movie.Title,
	})

	return c.JSON(http.StatusOK, movie)
}

func (h *MovieHandler) DeleteMovie(c echo.Context) error {
	id := c.Param("id")
	if err := h.DB.WithContext(c.Request().Context()).Where("id = ?", id).Delete(&models.Movie{}).Error; err != nil {
		return failDev(c, http.StatusInternalServerError, "could not delete movie", "UNEXPECTED_ERROR", h.Dev, err)
	}

	publish(c, h.Producer, "movie_events", id, map[string]any{
		"type":     "movie_deleted",
		"movie_id": id,
	})

	return c.NoContent(http.StatusNoContent)
}

func (h *MovieHandler) GetMovieActors(c echo.Context) error {
	var movie models.Movie
	err := h.DB.WithContext(c.Request().Context()).
		Preload("Actors").
		Where("id = ?", c.Param("id")).
		First(&movie).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusNotFound, "movie not found", "NOT_FOUND")
		}
		return failDev(c, http.StatusInternalServerError, "could not fetch movie", "UNEXPECTED_ERROR", h.Dev, err)
	}
	return c.JSON(http.StatusOK, movie.Actors)
}

// AddMovieActor attaches an actor to a movie; attaching twice is a no-op.
func (h *MovieHandler) AddMovieActor(c echo.Context) error {
	var req struct {
		ActorID string `json:"artista_id"`
	}
	if err := c.Bind(&req); err != nil {
		return failDev(c, http.StatusBadRequest, "malformed request body", "VALIDATION_ERROR", h.Dev, err)
	}
	if req.ActorID == "" {
		return fail(c, http.StatusBadRequest, "artista_id is required", "VALIDATION_ERROR")
	}

	ctx := c.Request().Context()

	var movie models.Movie
	if err := h.DB.WithContext(ctx).Where("id = ?", c.Param("id")).First(&movie).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusNotFound, "movie not found", "NOT_FOUND")
		}
		return failDev(c, http.StatusInternalServerError, "could not fetch movie", "UNEXPECTED_ERROR", h.Dev, err)
	}

	var actor models.Actor
	if err := h.DB.WithContext(ctx).Where("id = ?", req.ActorID).First(&actor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusBadRequest, "actor does not exist", "VALIDATION_ERROR")
		}
		return failDev(c, http.StatusInternalServerError, "could not validate actor", "UNEXPECTED_ERROR", h.Dev, err)
	}

	if err := h.DB.WithContext(ctx).Model(&movie).Association("Actors").Append(&actor); err != nil {
		return failDev(c, http.StatusInternalServerError, "could not add actor to movie", "UNEXPECTED_ERROR", h.Dev, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"movie_id": movie.ID, "artista_id": actor.ID})
}
