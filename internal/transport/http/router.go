package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/pelisdb/movie-api/internal/handlers"
	authmw "github.com/pelisdb/movie-api/internal/middleware/auth"
)

type Deps struct {
	AuthHandler   *handlers.AuthHandler
	MovieHandler  *handlers.MovieHandler
	GenreHandler  *handlers.GenreHandler
	ActorHandler  *handlers.ActorHandler
	SearchHandler *handlers.SearchHandler
	AuthMW        *authmw.Middleware
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh", d.AuthHandler.Refresh)
	auth.POST("/logout", d.AuthHandler.Logout)

	movies := v1.Group("/movies")
	movies.GET("/all", d.MovieHandler.GetMovies)
	movies.GET("/:id", d.MovieHandler.GetMovie)
	movies.GET("/:id/actors", d.MovieHandler.GetMovieActors)
	movies.POST("", d.MovieHandler.CreateMovie, d.AuthMW.Authenticate, authmw.AdminOnly)
	movies.PUT("/:id", d.MovieHandler.UpdateMovie, d.AuthMW.Authenticate, authmw.AdminOnly)
	movies.PATCH("/:id", d.MovieHandler.UpdateMovie, d.AuthMW.Authenticate, authmw.AdminOnly)
	movies.DELETE("/:id", d.MovieHandler.DeleteMovie, d.AuthMW.Authenticate, authmw.AdminOnly)
	movies.POST("/:id/actors", d.MovieHandler.AddMovieActor, d.AuthMW.Authenticate, authmw.AdminOnly)

	genres := v1.Group("/genres")
	genres.GET("", d.GenreHandler.GetGenres)
	genres.GET("/:id", d.GenreHandler.GetGenre)
	genres.POST("", d.GenreHandler.CreateGenre, d.AuthMW.Authenticate, authmw.AdminOnly)
	genres.PUT("/:id", d.GenreHandler.UpdateGenre, d.AuthMW.Authenticate, authmw.AdminOnly)
	genres.DELETE("/:id", d.GenreHandler.DeleteGenre, d.AuthMW.Authenticate, authmw.AdminOnly)

	actors := v1.Group("/actors")
	actors.GET("", d.ActorHandler.GetActors)
	actors.GET("/search", d.ActorHandler.SearchActors)
	actors.GET("/:id", d.ActorHandler.GetActor)
	actors.GET("/:id/movies", d.ActorHandler.GetActorMovies)
	actors.POST("", d.ActorHandler.CreateActor, d.AuthMW.Authenticate, authmw.AdminOnly)
	actors.PUT("/:id", d.ActorHandler.UpdateActor, d.AuthMW.Authenticate, authmw.AdminOnly)
	actors.DELETE("/:id", d.ActorHandler.DeleteActor, d.AuthMW.Authenticate, authmw.AdminOnly)

	if d.SearchHandler != nil {
		v1.GET("/search", d.SearchHandler.Search)
	}
}
