// Package testutil starts a complete gradebook API over the in-memory repository for tests
package testutil

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/gradebook-service/internal/auth"
	"github.com/SAP-F-2025/gradebook-service/internal/events"
	"github.com/SAP-F-2025/gradebook-service/internal/handlers"
	"github.com/SAP-F-2025/gradebook-service/internal/models"
	"github.com/SAP-F-2025/gradebook-service/internal/repositories/memory"
	"github.com/SAP-F-2025/gradebook-service/internal/services"
	"github.com/SAP-F-2025/gradebook-service/internal/utils"
	"github.com/SAP-F-2025/gradebook-service/internal/validator"
)

const (
	AdminUsername = "admin"
	AdminPassword = "admin-password"
)

type options struct {
	metrics bool
}

// Option customises the router built by NewRouter and NewServer
type Option func(*options)

// WithMetrics installs the prometheus middleware and serves GET /metrics
func WithMetrics() Option {
	return func(o *options) { o.metrics = true }
}

// NewRouter builds the real router over a fresh in-memory repository.
// An account AdminUsername/AdminPassword with ROLE_ADMIN exists.
func NewRouter(t *testing.T, opts ...Option) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	ctx := context.Background()
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	repoManager := memory.NewRepositoryManager()
	require.NoError(t, repoManager.Initialize())

	codec := auth.NewTokenCodec("testutil-secret-0123456789abcdefghij", "gradebook-test", time.Hour)
	sm := services.NewServiceManager(
		repoManager,
		events.NewMockEventPublisher(logger.Slog()),
		codec,
		logger,
		validator.New(),
		services.ServiceManagerConfig{},
	)
	require.NoError(t, sm.Initialize(ctx))

	hash, err := auth.HashPassword(AdminPassword)
	require.NoError(t, err)
	require.NoError(t, repoManager.GetRepository().User().Create(ctx, &models.User{
		Username:     AdminUsername,
		PasswordHash: hash,
		Active:       true,
		Roles:        []string{models.RoleAdmin, models.RoleUser},
	}))

	var metrics *handlers.Metrics
	if o.metrics {
		metrics = handlers.NewMetrics()
	}

	router := gin.New()
	handlers.SetupMiddleware(router, logger, nil, metrics)
	handlers.NewHandlerManager(sm, auth.NewAuthorizer(codec), logger).SetupRoutes(router, metrics)
	return router
}

// NewServer serves NewRouter on a loopback listener, closed with the test
func NewServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewRouter(t, opts...))
	t.Cleanup(srv.Close)
	return srv
}
