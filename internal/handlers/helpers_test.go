package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pelisdb/movie-api/internal/handlers"
	authmw "github.com/pelisdb/movie-api/internal/middleware/auth"
	"github.com/pelisdb/movie-api/internal/models"
	authsvc "github.com/pelisdb/movie-api/internal/service/auth"
	"github.com/pelisdb/movie-api/internal/token"
	httpserver "github.com/pelisdb/movie-api/internal/transport/http"
)

type testEnv struct {
	T  *testing.T
	E  *echo.Echo
	DB *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Genre{},
		&models.Actor{},
		&models.Movie{},
	))

	codec := token.New(token.Config{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})
	service := authsvc.NewService(db, codec)

	e := echo.New()
	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:  &handlers.AuthHandler{Auth: service, Dev: true},
		MovieHandler: &handlers.MovieHandler{DB: db, Dev: true},
		GenreHandler: &handlers.GenreHandler{DB: db, Dev: true},
		ActorHandler: &handlers.ActorHandler{DB: db, Dev: true},
		AuthMW:       &authmw.Middleware{DB: db, Codec: codec, Dev: true},
	})

	return &testEnv{T: t, E: e, DB: db}
}

func (env *testEnv) do(method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	env.T.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func registerUser(env *testEnv, username string, wantAdmin bool) map[string]interface{} {
	env.T.Helper()
	rec := env.do(http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"username": username,
		"email":    username + "@example.com",
		"password": "Password1",
		"es_admin": wantAdmin,
	})
	require.Equal(env.T, http.StatusCreated, rec.Code, rec.Body.String())
	return decode(env.T, rec)
}

func accessTokenOf(t *testing.T, body map[string]interface{}) string {
	t.Helper()
	tok, _ := body["accessToken"].(string)
	require.NotEmpty(t, tok)
	return tok
}
