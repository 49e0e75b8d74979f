package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/gradebook-service/internal/auth"
	"github.com/SAP-F-2025/gradebook-service/internal/events"
	"github.com/SAP-F-2025/gradebook-service/internal/repositories/memory"
	"github.com/SAP-F-2025/gradebook-service/internal/utils"
	"github.com/SAP-F-2025/gradebook-service/internal/validator"
)

func TestServiceManager_Lifecycle(t *testing.T) {
	ctx := context.Background()
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	repoManager := memory.NewRepositoryManager()
	require.NoError(t, repoManager.Initialize())

	sm := NewServiceManager(
		repoManager,
		events.NewMockEventPublisher(logger.Slog()),
		auth.NewTokenCodec("manager-test-secret-0123456789abcdef", "gradebook-test", time.Hour),
		logger,
		validator.New(),
		ServiceManagerConfig{BootstrapAdmin: true},
	)

	assert.Panics(t, func() { sm.Grades() })
	assert.Error(t, sm.HealthCheck(ctx))

	require.NoError(t, sm.Initialize(ctx))
	require.NoError(t, sm.Initialize(ctx))
	assert.NoError(t, sm.HealthCheck(ctx))

	count, err := repoManager.GetRepository().User().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	assert.NotNil(t, sm.Auth())
	assert.NotNil(t, sm.Users())
	assert.NotNil(t, sm.Tests())
	assert.NotNil(t, sm.Catalog())
	assert.NotNil(t, sm.Reports())

	require.NoError(t, sm.Shutdown(ctx))
	assert.Error(t, sm.HealthCheck(ctx))
}
