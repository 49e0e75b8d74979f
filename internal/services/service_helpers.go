package services

import (
	"context"
	"fmt"
	"math"

	"github.com/SAP-F-2025/gradebook-service/internal/auth"
	"github.com/SAP-F-2025/gradebook-service/internal/events"
	"github.com/SAP-F-2025/gradebook-service/internal/models"
	"github.com/SAP-F-2025/gradebook-service/internal/repositories"
	"github.com/SAP-F-2025/gradebook-service/internal/utils"
	"github.com/SAP-F-2025/gradebook-service/internal/validator"
)

// requireActor rejects calls that reached the service without a principal
func requireActor(actor *auth.Principal) error {
	if actor == nil || actor.UserID == "" {
		return fmt.Errorf("%w: no authenticated principal", auth.ErrUnauthenticated)
	}
	return nil
}

func requireAdmin(actor *auth.Principal, resource, action string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return NewPermissionError(actor.UserID, resource, action, "administrator role required")
	}
	return nil
}

// validate runs struct validation and tags the result as a validation failure
func validate(v *validator.Validator, req interface{}) error {
	if err := v.Validate(req); err != nil {
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	return nil
}

func validationError(field, rule, message string) error {
	return fmt.Errorf("%w: %w", ErrValidationFailed, validator.NewValidationError(field, rule, message))
}

// publish sends an event; delivery failures are logged and never fail the operation
func publish(ctx context.Context, publisher events.EventPublisher, logger utils.Logger, event *events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		utils.FromContext(ctx, logger).Warn("Failed to publish event", "type", event.Type, "event_id", event.ID, "error", err)
	}
}

func actorID(actor *auth.Principal) string {
	if actor == nil {
		return ""
	}
	return actor.UserID
}

// roundHalfUp rounds to the given number of decimals, halves away from zero
func roundHalfUp(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

func toPage[T any](items []T, total int64, page repositories.PageRequest) *models.Page[T] {
	page = page.Normalize()
	return models.NewPage(items, total, page.Page, page.Size)
}
