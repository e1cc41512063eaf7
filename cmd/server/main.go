package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/pelisdb/movie-api/internal/config"
	"github.com/pelisdb/movie-api/internal/es"
	"github.com/pelisdb/movie-api/internal/handlers"
	"github.com/pelisdb/movie-api/internal/logging"
	authmw "github.com/pelisdb/movie-api/internal/middleware/auth"
	"github.com/pelisdb/movie-api/internal/mykafka"
	authsvc "github.com/pelisdb/movie-api/internal/service/auth"
	"github.com/pelisdb/movie-api/internal/token"
	httpserver "github.com/pelisdb/movie-api/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	tokenCfg, err := configuration.TokenConfig()
	if err != nil {
		log.Fatal(err)
	}
	codec := token.New(tokenCfg)

	var producer *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		producer, err = mykafka.NewProducer(
			[]string{configuration.KAFKA_ADDRESS},
			[]string{"user_events", "movie_events"},
		)
		if err != nil {
			log.Fatal(err)
		}
	} else {
		logger.Warn("KAFKA_ADDRESS not set, domain events disabled")
	}

	var searchHandler *handlers.SearchHandler
	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Fatal(err)
		}
		searchHandler = &handlers.SearchHandler{ES: esClient, Index: "movies", Dev: configuration.IsDev()}
	} else {
		logger.Warn("ES_URL not set, movie search disabled")
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			l := logger.With("request_id", c.Response().Header().Get(echo.HeaderXRequestID))
			ctx := logging.IntoContext(c.Request().Context(), l)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})

	dev := configuration.IsDev()
	service := authsvc.NewService(db, codec)

	deps := httpserver.Deps{
		AuthHandler:   &handlers.AuthHandler{Auth: service, Producer: producer, Dev: dev},
		MovieHandler:  &handlers.MovieHandler{DB: db, Producer: producer, Dev: dev},
		GenreHandler:  &handlers.GenreHandler{DB: db, Dev: dev},
		ActorHandler:  &handlers.ActorHandler{DB: db, Dev: dev},
		SearchHandler: searchHandler,
		AuthMW:        &authmw.Middleware{DB: db, Codec: codec, Dev: dev},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()
	logger.Info("server started", "port", configuration.PORT, "env", configuration.APP_ENV)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Printf("kafka close error: %v", err)
		}
	}

	log.Println("shutdown complete")
}
