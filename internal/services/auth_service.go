package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SAP-F-2025/gradebook-service/internal/auth"
	"github.com/SAP-F-2025/gradebook-service/internal/events"
	"github.com/SAP-F-2025/gradebook-service/internal/models"
	"github.com/SAP-F-2025/gradebook-service/internal/repositories"
	"github.com/SAP-F-2025/gradebook-service/internal/utils"
	"github.com/SAP-F-2025/gradebook-service/internal/validator"
)

const TokenType = "Bearer"

type authService struct {
	repo      repositories.Repository
	verifier  *auth.CredentialVerifier
	codec     *auth.TokenCodec
	publisher events.EventPublisher
	logger    utils.Logger
	validator *validator.Validator
}

func NewAuthService(repo repositories.Repository, codec *auth.TokenCodec, publisher events.EventPublisher, logger utils.Logger, validator *validator.Validator) AuthService {
	return &authService{
		repo:      repo,
		verifier:  auth.NewCredentialVerifier(repo.User()),
		codec:     codec,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// Login verifies credentials and issues a token carrying the user's current roles.
// Unknown user, inactive user and wrong password all yield ErrUnauthorized.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if err := validate(s.validator, req); err != nil {
		return nil, err
	}

	user, err := s.verifier.Verify(ctx, strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, auth.ErrBadPassword), errors.Is(err, auth.ErrUserInactive):
			s.logger.Info("Login rejected", "username", req.Username, "reason", err.Error())
			return nil, ErrUnauthorized
		default:
			return nil, fmt.Errorf("failed to verify credentials: %w", err)
		}
	}

	s.logger.Info("User logged in", "user_id", user.ID, "username", user.Username)
	return s.issue(user)
}

// Register creates an active ROLE_USER account and signs it in
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	if err := validate(s.validator, req); err != nil {
		return nil, err
	}

	exists, err := s.repo.User().ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, NewConflictError("user", fmt.Sprintf("username %q is already taken", req.Username))
	}

	user, err := newUser(req.Username, req.Password, req.FirstName, req.LastName, req.Email, req.DateOfBirth)
	if err != nil {
		return nil, err
	}
	user.Roles = []string{models.RoleUser}
	user.Active = true

	if err := s.repo.User().Create(ctx, user); err != nil {
		return nil, mapRepoError(err, "user", req.Username)
	}

	s.logger.Info("User registered", "user_id", user.ID, "username", user.Username)
	publish(ctx, s.publisher, s.logger, events.NewEvent(events.UserRegistered, user.ID, events.UserEventData{
		UserID:   user.ID,
		Username: user.Username,
		Roles:    user.Roles,
	}))

	return s.issue(user)
}

func (s *authService) issue(user *models.User) (*models.AuthResponse, error) {
	roles := models.NormalizeRoles(user.Roles)
	token, _, err := s.codec.Issue(user.Username, user.ID, roles, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &models.AuthResponse{
		Token:     token,
		TokenType: TokenType,
		ExpiresIn: int64(s.codec.TTL().Seconds()),
		Username:  user.Username,
		Roles:     roles,
	}, nil
}

// newUser builds an unsaved user with a hashed password and parsed profile fields
func newUser(username, password string, firstName, lastName, email, dateOfBirth *string) (*models.User, error) {
	dob, err := models.ParseDatePtr(dateOfBirth)
	if err != nil {
		return nil, validationError("dateOfBirth", "date_ymd", "dateOfBirth must be a date in YYYY-MM-DD format")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	return &models.User{
		Username:     username,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		DateOfBirth:  dob,
	}, nil
}
