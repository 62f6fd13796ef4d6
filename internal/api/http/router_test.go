package http

import (
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/auth-service/internal/api/http/handlers"
	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/observability"
	"github.com/spec-kit/auth-service/internal/repository"
	"github.com/spec-kit/auth-service/internal/service"
)

type testServer struct {
	app   *fiber.App
	users *service.UserService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := config.AuthConfig{
		JWTSecret:              "router-test-secret",
		AccessTokenTTLSeconds:  60,
		RefreshTokenTTLSeconds: 3600,
		BcryptCost:             bcrypt.MinCost,
	}
	logger := zap.NewNop()

	userRepo := repository.NewMemoryUserRepository()
	taskRepo := repository.NewMemoryTaskRepository()
	sessionRepo := repository.NewMemorySessionRepository()
	dispatcher := events.NewInMemoryDispatcher()
	tokens := auth.NewTokenManager(cfg.JWTSecret, nil)

	authService := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:    userRepo,
		SessionRepo: sessionRepo,
		Tokens:      tokens,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	userService := service.NewUserService(cfg, userRepo, dispatcher, logger)
	taskService := service.NewTaskService(taskRepo)
	service.NewAccountEventsService(dispatcher, taskService, sessionRepo, logger).RegisterHandlers()

	metrics := observability.NewMetrics()
	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("auth-service", "test", nil, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService),
		Tasks:          handlers.NewTasksHandler(taskService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
	})

	return &testServer{app: app, users: userService}
}

func (s *testServer) createUser(t *testing.T, email string, perms ...string) {
	t.Helper()
	_, err := s.users.CreateUser(context.Background(), service.UserInput{
		Name:        "user",
		Email:       email,
		Password:    "secret",
		Permissions: perms,
	})
	require.NoError(t, err)
}

func (s *testServer) do(t *testing.T, method, path, authorization, body string) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if authorization != "" {
		req.Header.Set(fiber.HeaderAuthorization, authorization)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (s *testServer) login(t *testing.T, email string) (string, string) {
	t.Helper()
	status, body := s.do(t, nethttp.MethodPost, "/auth/login", "", `{"email":"`+email+`","password":"secret"}`)
	require.Equal(t, nethttp.StatusOK, status, body)
	return body["accessToken"].(string), body["refreshToken"].(string)
}

func errorCode(body map[string]any) string {
	errBody, ok := body["error"].(map[string]any)
	if !ok {
		return ""
	}
	code, _ := errBody["code"].(string)
	return code
}

func TestLoginAndRefresh(t *testing.T) {
	s := newTestServer(t)
	s.createUser(t, "ann@x.com")

	access, refresh := s.login(t, "ann@x.com")
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	status, body := s.do(t, nethttp.MethodPost, "/auth/refresh", "Bearer "+refresh, "")
	require.Equal(t, nethttp.StatusOK, status, body)
	assert.NotEmpty(t, body["accessToken"])
	assert.NotContains(t, body, "refreshToken")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := newTestServer(t)
	s.createUser(t, "ann@x.com")

	status, body := s.do(t, nethttp.MethodPost, "/auth/login", "", `{"email":"ann@x.com","password":"nope"}`)
	assert.Equal(t, nethttp.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHENTICATED", errorCode(body))

	status, body = s.do(t, nethttp.MethodPost, "/auth/login", "", `{"email":"ghost@x.com","password":"secret"}`)
	assert.Equal(t, nethttp.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHENTICATED", errorCode(body))

	status, body = s.do(t, nethttp.MethodPost, "/auth/login", "", `{"email":"not-an-email"}`)
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
}

func TestRefreshRejectsMalformedHeader(t *testing.T) {
	s := newTestServer(t)

	for _, header := range []string{"", "Token abc", "bearer abc", "Bearer a b"} {
		status, body := s.do(t, nethttp.MethodPost, "/auth/refresh", header, "")
		assert.Equal(t, nethttp.StatusUnauthorized, status, header)
		assert.Equal(t, "UNAUTHENTICATED", errorCode(body), header)
	}

	status, body := s.do(t, nethttp.MethodPost, "/auth/refresh", "Bearer garbage", "")
	assert.Equal(t, nethttp.StatusUnauthorized, status)
	assert.Equal(t, "TOKEN_INVALID", errorCode(body))
}

func TestUsersRequirePermission(t *testing.T) {
	s := newTestServer(t)
	s.createUser(t, "admin@x.com", domain.PermissionUsersCreate, domain.PermissionUsersGet)
	s.createUser(t, "plain@x.com")

	status, _ := s.do(t, nethttp.MethodPost, "/users", "", `{"email":"new@x.com","password":"pw"}`)
	assert.Equal(t, nethttp.StatusUnauthorized, status)

	plainAccess, _ := s.login(t, "plain@x.com")
	status, body := s.do(t, nethttp.MethodPost, "/users", "Bearer "+plainAccess, `{"email":"new@x.com","password":"pw"}`)
	assert.Equal(t, nethttp.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	adminAccess, _ := s.login(t, "admin@x.com")
	status, body = s.do(t, nethttp.MethodPost, "/users", "Bearer "+adminAccess, `{"name":"New","email":"new@x.com","password":"pw"}`)
	require.Equal(t, nethttp.StatusCreated, status, body)
	created := body["data"].(map[string]any)
	assert.Equal(t, "new@x.com", created["email"])
	assert.NotContains(t, created, "password")

	status, body = s.do(t, nethttp.MethodGet, "/users/"+created["id"].(string), "Bearer "+adminAccess, "")
	require.Equal(t, nethttp.StatusOK, status, body)

	status, _ = s.do(t, nethttp.MethodDelete, "/users/"+created["id"].(string), "Bearer "+adminAccess, "")
	assert.Equal(t, nethttp.StatusForbidden, status)
}

func TestTasksCRUD(t *testing.T) {
	s := newTestServer(t)
	s.createUser(t, "ann@x.com")
	s.createUser(t, "bob@x.com")
	annAccess, _ := s.login(t, "ann@x.com")
	bobAccess, _ := s.login(t, "bob@x.com")

	status, body := s.do(t, nethttp.MethodPost, "/tasks", "Bearer "+annAccess, `{"name":"write docs"}`)
	require.Equal(t, nethttp.StatusCreated, status, body)
	taskID := body["data"].(map[string]any)["id"].(string)

	status, body = s.do(t, nethttp.MethodGet, "/tasks", "Bearer "+annAccess, "")
	require.Equal(t, nethttp.StatusOK, status)
	assert.Len(t, body["data"], 1)

	status, _ = s.do(t, nethttp.MethodGet, "/tasks/"+taskID, "Bearer "+bobAccess, "")
	assert.Equal(t, nethttp.StatusNotFound, status)

	status, body = s.do(t, nethttp.MethodPut, "/tasks/"+taskID, "Bearer "+annAccess, `{"name":"review docs"}`)
	require.Equal(t, nethttp.StatusOK, status, body)
	assert.Equal(t, "review docs", body["data"].(map[string]any)["name"])

	status, body = s.do(t, nethttp.MethodPost, "/tasks", "Bearer "+annAccess, `{"name":""}`)
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	status, _ = s.do(t, nethttp.MethodDelete, "/tasks/"+taskID, "Bearer "+annAccess, "")
	assert.Equal(t, nethttp.StatusNoContent, status)

	status, _ = s.do(t, nethttp.MethodGet, "/tasks/"+taskID, "Bearer "+annAccess, "")
	assert.Equal(t, nethttp.StatusNotFound, status)
}

func TestUnknownRouteReturnsJSONError(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, nethttp.MethodGet, "/nope", "", "")
	assert.Equal(t, nethttp.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, nethttp.MethodGet, "/health/live", "", "")
	assert.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body = s.do(t, nethttp.MethodGet, "/health/ready", "", "")
	assert.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "ready", body["status"])
}

func TestMalformedIDsAreNotFound(t *testing.T) {
	s := newTestServer(t)
	s.createUser(t, "admin@x.com", domain.PermissionUsersGet)
	access, _ := s.login(t, "admin@x.com")

	for _, path := range []string{"/users/abc", "/tasks/abc"} {
		status, body := s.do(t, nethttp.MethodGet, path, "Bearer "+access, "")
		assert.Equal(t, nethttp.StatusNotFound, status, path)
		assert.Equal(t, "NOT_FOUND", errorCode(body), path)
	}
}
