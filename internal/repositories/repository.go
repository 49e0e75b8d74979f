package repositories

import (
	"context"

	"github.com/SAP-F-2025/gradebook-service/internal/models"
)

// Repository aggregates all repository interfaces
type Repository interface {
	// User domain
	User() UserRepository

	// Gradebook domain
	Test() TestRepository
	Grade() GradeRepository

	// School catalog
	Subject() CatalogRepository[models.Subject]
	Semester() CatalogRepository[models.Semester]
	SemesterSubject() CatalogRepository[models.SemesterSubject]
	SchoolClass() CatalogRepository[models.SchoolClass]

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
