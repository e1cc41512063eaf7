package handlers

import (
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/pelisdb/movie-api/internal/service/search"
	"github.com/pelisdb/movie-api/internal/util"
)

type SearchHandler struct {
	ES    *elasticsearch.Client
	Index string
	Dev   bool
}

func (h *SearchHandler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return fail(c, http.StatusBadRequest, "query parameter q is required", "VALIDATION_ERROR")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, size := util.Calculate(page, size)

	total, movies, err := search.Search(c.Request().Context(), h.ES, h.Index, q, from, size)
	if err != nil {
		return failDev(c, http.StatusInternalServerError, "search failed", "UNEXPECTED_ERROR", h.Dev, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "peliculas": movies})
}
