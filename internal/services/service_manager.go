package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/SAP-F-2025/gradebook-service/internal/auth"
	"github.com/SAP-F-2025/gradebook-service/internal/events"
	"github.com/SAP-F-2025/gradebook-service/internal/repositories"
	"github.com/SAP-F-2025/gradebook-service/internal/utils"
	"github.com/SAP-F-2025/gradebook-service/internal/validator"
)

// ServiceManagerConfig holds startup options for the service manager
type ServiceManagerConfig struct {
	BootstrapAdmin bool
	SeedUsersFile  string
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	repoManager repositories.RepositoryManager
	repo        repositories.Repository
	publisher   events.EventPublisher
	codec       *auth.TokenCodec
	logger      utils.Logger
	validator   *validator.Validator
	config      ServiceManagerConfig

	// Service instances
	authService    AuthService
	userService    UserService
	testService    TestService
	gradeService   GradeService
	catalogService CatalogService
	reportService  ReportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(repoManager repositories.RepositoryManager, publisher events.EventPublisher, codec *auth.TokenCodec, logger utils.Logger, validator *validator.Validator, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		repoManager: repoManager,
		publisher:   publisher,
		codec:       codec,
		logger:      logger,
		validator:   validator,
		config:      config,
	}
}

// Initialize sets up all services and runs the account bootstrap
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	sm.repo = sm.repoManager.GetRepository()
	if sm.repo == nil {
		return fmt.Errorf("repository manager has no repository, call Initialize first")
	}

	sm.initializeServices()

	if err := sm.bootstrap(ctx); err != nil {
		return fmt.Errorf("bootstrap failed: %w", err)
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) initializeServices() {
	sm.authService = NewAuthService(sm.repo, sm.codec, sm.publisher, sm.logger, sm.validator)
	sm.logger.Info("Auth service initialized")

	sm.userService = NewUserService(sm.repo, sm.publisher, sm.logger, sm.validator)
	sm.logger.Info("User service initialized")

	sm.testService = NewTestService(sm.repo, sm.publisher, sm.logger, sm.validator)
	sm.logger.Info("Test service initialized")

	sm.gradeService = NewGradeService(sm.repo, sm.publisher, sm.logger, sm.validator)
	sm.logger.Info("Grade service initialized")

	sm.catalogService = NewCatalogService(sm.repo, sm.publisher, sm.logger, sm.validator)
	sm.logger.Info("Catalog service initialized")

	sm.reportService = NewReportService(sm.repo, sm.gradeService, sm.logger)
	sm.logger.Info("Report service initialized")
}

func (sm *serviceManager) bootstrap(ctx context.Context) error {
	b := NewBootstrapper(sm.repo, sm.logger)

	if sm.config.BootstrapAdmin {
		if _, err := b.EnsureAdmin(ctx); err != nil {
			return err
		}
	}

	if sm.config.SeedUsersFile != "" {
		users, err := LoadSeedFile(sm.config.SeedUsersFile)
		if err != nil {
			return err
		}
		if _, err := b.Seed(ctx, users); err != nil {
			return err
		}
	}
	return nil
}

// Service getters
func (sm *serviceManager) mustBeInitialized() {
	if !sm.initialized {
		panic("service manager not initialized")
	}
}

func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.authService
}

func (sm *serviceManager) Users() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.userService
}

func (sm *serviceManager) Tests() TestService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.testService
}

func (sm *serviceManager) Grades() GradeService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.gradeService
}

func (sm *serviceManager) Catalog() CatalogService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.catalogService
}

func (sm *serviceManager) Reports() ReportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.reportService
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repoManager.HealthCheck(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}
	return nil
}

// Shutdown closes the event publisher, then the repositories
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	var errs []error
	if sm.publisher != nil {
		if err := sm.publisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
			errs = append(errs, err)
		}
	}
	if err := sm.repoManager.Shutdown(ctx); err != nil {
		sm.logger.Error("Failed to shutdown repository manager", "error", err)
		errs = append(errs, err)
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return errors.Join(errs...)
}
