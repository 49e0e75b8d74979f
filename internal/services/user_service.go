package services

import (
	"context"
	"fmt"
	"slices"

	"github.com/SAP-F-2025/gradebook-service/internal/auth"
	"github.com/SAP-F-2025/gradebook-service/internal/events"
	"github.com/SAP-F-2025/gradebook-service/internal/models"
	"github.com/SAP-F-2025/gradebook-service/internal/repositories"
	"github.com/SAP-F-2025/gradebook-service/internal/utils"
	"github.com/SAP-F-2025/gradebook-service/internal/validator"
)

type userService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    utils.Logger
	validator *validator.Validator
}

func NewUserService(repo repositories.Repository, publisher events.EventPublisher, logger utils.Logger, validator *validator.Validator) UserService {
	return &userService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// ===== ADMIN OPERATIONS =====

func (s *userService) List(ctx context.Context, actor *auth.Principal, filters repositories.UserFilters) (*models.Page[*models.User], error) {
	if err := requireAdmin(actor, "users", "list"); err != nil {
		return nil, err
	}

	users, total, err := s.repo.User().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return toPage(users, total, filters.Page), nil
}

func (s *userService) GetByUsername(ctx context.Context, actor *auth.Principal, username string) (*models.User, error) {
	if err := requireAdmin(actor, "user", "read"); err != nil {
		return nil, err
	}
	return s.getByUsername(ctx, s.repo, username)
}

func (s *userService) Create(ctx context.Context, actor *auth.Principal, req *models.CreateUserRequest) (*models.User, error) {
	if err := requireAdmin(actor, "user", "create"); err != nil {
		return nil, err
	}
	if err := validate(s.validator, req); err != nil {
		return nil, err
	}

	s.logger.Info("Creating user", "actor_id", actor.UserID, "username", req.Username)

	user, err := newUser(req.Username, req.Password, req.FirstName, req.LastName, req.Email, req.DateOfBirth)
	if err != nil {
		return nil, err
	}
	user.Roles = models.NormalizeRoles(req.Roles)
	if len(user.Roles) == 0 {
		user.Roles = []string{models.RoleUser}
	}
	user.Active = true
	if req.Active != nil {
		user.Active = *req.Active
	}

	if err := s.repo.User().Create(ctx, user); err != nil {
		return nil, mapRepoError(err, "user", req.Username)
	}

	s.logger.Info("User created", "user_id", user.ID, "username", user.Username, "roles", []string(user.Roles))
	publish(ctx, s.publisher, s.logger, events.NewEvent(events.UserCreated, actor.UserID, events.UserEventData{
		UserID:   user.ID,
		Username: user.Username,
		Roles:    user.Roles,
		Active:   &user.Active,
	}))

	return user, nil
}

func (s *userService) SetPassword(ctx context.Context, actor *auth.Principal, username string, req *models.SetPasswordRequest) error {
	if err := requireAdmin(actor, "user", "reset password"); err != nil {
		return err
	}
	if err := validate(s.validator, req); err != nil {
		return err
	}

	user, err := s.getByUsername(ctx, s.repo, username)
	if err != nil {
		return err
	}
	if err := s.storePassword(ctx, user, req.Password); err != nil {
		return err
	}

	s.logger.Info("Password reset", "actor_id", actor.UserID, "user_id", user.ID)
	publish(ctx, s.publisher, s.logger, events.NewEvent(events.UserPasswordReset, actor.UserID, events.UserEventData{
		UserID:   user.ID,
		Username: user.Username,
	}))
	return nil
}

func (s *userService) SetActive(ctx context.Context, actor *auth.Principal, username string, active bool) (*models.User, error) {
	if err := requireAdmin(actor, "user", "change activation"); err != nil {
		return nil, err
	}

	user, err := s.getByUsername(ctx, s.repo, username)
	if err != nil {
		return nil, err
	}
	if user.Active == active {
		return user, nil
	}

	user.Active = active
	if err := s.repo.User().Update(ctx, user); err != nil {
		return nil, mapRepoError(err, "user", username)
	}

	s.logger.Info("User activation changed", "actor_id", actor.UserID, "user_id", user.ID, "active", active)
	publish(ctx, s.publisher, s.logger, events.NewEvent(events.UserActivationChanged, actor.UserID, events.UserEventData{
		UserID:   user.ID,
		Username: user.Username,
		Active:   &active,
	}))
	return user, nil
}

// GrantRole adds role to the user; granting a held role is a no-op
func (s *userService) GrantRole(ctx context.Context, actor *auth.Principal, username, role string) (*models.User, error) {
	if err := requireAdmin(actor, "user roles", "grant"); err != nil {
		return nil, err
	}
	role = models.NormalizeRole(role)
	if !models.IsKnownRole(role) {
		return nil, validationError("role", "role_name", fmt.Sprintf("unknown role %q", role))
	}

	user, err := s.getByUsername(ctx, s.repo, username)
	if err != nil {
		return nil, err
	}
	if user.HasRole(role) {
		return user, nil
	}

	if err := s.saveRoles(ctx, s.repo, user, append(slices.Clone(user.Roles), role)); err != nil {
		return nil, err
	}
	s.rolesChanged(ctx, actor, user)
	return user, nil
}

// RevokeRole removes role from the user; a user must keep at least one role
func (s *userService) RevokeRole(ctx context.Context, actor *auth.Principal, username, role string) (*models.User, error) {
	if err := requireAdmin(actor, "user roles", "revoke"); err != nil {
		return nil, err
	}
	role = models.NormalizeRole(role)

	user, err := s.getByUsername(ctx, s.repo, username)
	if err != nil {
		return nil, err
	}
	if !user.HasRole(role) {
		return user, nil
	}

	remaining := slices.DeleteFunc(slices.Clone(user.Roles), func(r string) bool { return r == role })
	if len(remaining) == 0 {
		return nil, validationError("role", "min_roles", "a user must keep at least one role")
	}

	if err := s.saveRoles(ctx, s.repo, user, remaining); err != nil {
		return nil, err
	}
	s.rolesChanged(ctx, actor, user)
	return user, nil
}

// ReplaceRoles sets the complete role set in one transaction
func (s *userService) ReplaceRoles(ctx context.Context, actor *auth.Principal, username string, req *models.ReplaceRolesRequest) (*models.User, error) {
	if err := requireAdmin(actor, "user roles", "replace"); err != nil {
		return nil, err
	}
	if err := validate(s.validator, req); err != nil {
		return nil, err
	}

	var updated *models.User
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		user, err := s.getByUsername(ctx, tx, username)
		if err != nil {
			return err
		}
		if err := s.saveRoles(ctx, tx, user, req.Roles); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.rolesChanged(ctx, actor, updated)
	return updated, nil
}

// Delete removes the user and, through the schema, every grade they own
func (s *userService) Delete(ctx context.Context, actor *auth.Principal, username string) error {
	if err := requireAdmin(actor, "user", "delete"); err != nil {
		return err
	}

	user, err := s.getByUsername(ctx, s.repo, username)
	if err != nil {
		return err
	}
	if err := s.repo.User().Delete(ctx, user.ID); err != nil {
		return mapRepoError(err, "user", username)
	}

	s.logger.Info("User deleted", "actor_id", actor.UserID, "user_id", user.ID, "username", username)
	publish(ctx, s.publisher, s.logger, events.NewEvent(events.UserDeleted, actor.UserID, events.UserEventData{
		UserID:   user.ID,
		Username: user.Username,
	}))
	return nil
}

// ===== SELF-SERVICE =====

// ListActive returns the restricted projection of active users for selection lists
func (s *userService) ListActive(ctx context.Context, actor *auth.Principal, page repositories.PageRequest) (*models.Page[models.UserSummary], error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	active := true
	users, total, err := s.repo.User().List(ctx, repositories.UserFilters{Active: &active, Page: page})
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}

	return models.MapPage(toPage(users, total, page), func(u *models.User) models.UserSummary {
		return u.Summary()
	}), nil
}

func (s *userService) Me(ctx context.Context, actor *auth.Principal) (*models.User, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, mapRepoError(err, "user", actor.Username)
	}
	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, actor *auth.Principal, req *models.ChangePasswordRequest) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if err := validate(s.validator, req); err != nil {
		return err
	}

	user, err := s.repo.User().GetByID(ctx, actor.UserID)
	if err != nil {
		return mapRepoError(err, "user", actor.Username)
	}
	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		return validationError("currentPassword", "password_mismatch", "currentPassword is incorrect")
	}

	if err := s.storePassword(ctx, user, req.NewPassword); err != nil {
		return err
	}
	s.logger.Info("Password changed", "user_id", user.ID)
	return nil
}

// ===== HELPERS =====

func (s *userService) getByUsername(ctx context.Context, repo repositories.Repository, username string) (*models.User, error) {
	user, err := repo.User().GetByUsername(ctx, username)
	if err != nil {
		return nil, mapRepoError(err, "user", username)
	}
	return user, nil
}

func (s *userService) storePassword(ctx context.Context, user *models.User, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.repo.User().Update(ctx, user); err != nil {
		return mapRepoError(err, "user", user.Username)
	}
	return nil
}

func (s *userService) saveRoles(ctx context.Context, repo repositories.Repository, user *models.User, roles []string) error {
	user.Roles = models.NormalizeRoles(roles)
	if err := repo.User().Update(ctx, user); err != nil {
		return mapRepoError(err, "user", user.Username)
	}
	return nil
}

// rolesChanged runs once the new role set is stored
func (s *userService) rolesChanged(ctx context.Context, actor *auth.Principal, user *models.User) {
	s.logger.Info("User roles changed", "actor_id", actor.UserID, "user_id", user.ID, "roles", []string(user.Roles))
	publish(ctx, s.publisher, s.logger, events.NewEvent(events.UserRolesChanged, actor.UserID, events.UserEventData{
		UserID:   user.ID,
		Username: user.Username,
		Roles:    user.Roles,
	}))
}
