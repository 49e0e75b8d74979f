package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/gradebook-service/internal/models"
	"github.com/SAP-F-2025/gradebook-service/internal/repositories"
	"github.com/SAP-F-2025/gradebook-service/internal/services"
	"github.com/SAP-F-2025/gradebook-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
	userService services.UserService
}

func NewUserHandler(userService services.UserService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
	}
}

// ListUsers lists users with optional filtering
// @Summary List users
// @Tags admin-users
// @Produce json
// @Param q query string false "Username, name or email contains"
// @Param active query bool false "Filter by active flag"
// @Param page query int false "Page number (0-based)"
// @Param size query int false "Page size (default 20, max 1000)"
// @Param sort query []string false "field,asc|desc"
// @Success 200 {object} models.Page[models.User]
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	page, ok := h.parsePageRequest(c)
	if !ok {
		return
	}
	active, ok := h.queryBool(c, "active")
	if !ok {
		return
	}

	h.LogRequest(c, "Listing users")

	users, err := h.userService.List(c.Request.Context(), actor, repositories.UserFilters{
		Query:  c.Query("q"),
		Active: active,
		Page:   page,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// ListActiveUsers returns a summary page of active users
// @Summary List active users
// @Tags admin-users
// @Produce json
// @Success 200 {object} models.Page[models.UserSummary]
// @Router /admin/users/active [get]
func (h *UserHandler) ListActiveUsers(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	page, ok := h.parsePageRequest(c)
	if !ok {
		return
	}

	users, err := h.userService.ListActive(c.Request.Context(), actor, page)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// GetUser retrieves a user by username
// @Summary Get user
// @Tags admin-users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} models.User
// @Failure 404 {object} ErrorResponse
// @Router /admin/users/{username} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByUsername(c.Request.Context(), actor, c.Param("username"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// CreateUser creates an account on behalf of an administrator
// @Summary Create user
// @Tags admin-users
// @Accept json
// @Produce json
// @Param user body models.CreateUserRequest true "User"
// @Success 201 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	var req models.CreateUserRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating user", "username", req.Username)

	user, err := h.userService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// SetPassword replaces a user's password
// @Summary Reset password
// @Tags admin-users
// @Accept json
// @Param username path string true "Username"
// @Param body body models.SetPasswordRequest true "New password"
// @Success 204
// @Router /admin/users/{username}/password [put]
func (h *UserHandler) SetPassword(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	var req models.SetPasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.userService.SetPassword(c.Request.Context(), actor, c.Param("username"), &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SetActive enables or disables an account
// @Summary Set active flag
// @Tags admin-users
// @Produce json
// @Param username path string true "Username"
// @Param active query bool true "New state"
// @Success 200 {object} models.User
// @Router /admin/users/{username}/active [put]
func (h *UserHandler) SetActive(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	active, err := strconv.ParseBool(c.Query("active"))
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, errKindBadRequest, "active must be true or false", nil)
		return
	}

	user, err := h.userService.SetActive(c.Request.Context(), actor, c.Param("username"), active)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// GrantRole adds one role
// @Summary Grant role
// @Tags admin-users
// @Accept json
// @Produce json
// @Param username path string true "Username"
// @Param body body models.RoleRequest true "Role"
// @Success 200 {object} models.User
// @Router /admin/users/{username}/roles [post]
func (h *UserHandler) GrantRole(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	var req models.RoleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.userService.GrantRole(c.Request.Context(), actor, c.Param("username"), req.Role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// RevokeRole removes one role
// @Summary Revoke role
// @Tags admin-users
// @Produce json
// @Param username path string true "Username"
// @Param role path string true "Role"
// @Success 200 {object} models.User
// @Failure 400 {object} ErrorResponse "Would leave the user without a role"
// @Router /admin/users/{username}/roles/{role} [delete]
func (h *UserHandler) RevokeRole(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}

	user, err := h.userService.RevokeRole(c.Request.Context(), actor, c.Param("username"), c.Param("role"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ReplaceRoles sets the complete role set
// @Summary Replace roles
// @Tags admin-users
// @Accept json
// @Produce json
// @Param username path string true "Username"
// @Param body body models.ReplaceRolesRequest true "Roles"
// @Success 200 {object} models.User
// @Router /admin/users/{username}/roles [put]
func (h *UserHandler) ReplaceRoles(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	var req models.ReplaceRolesRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.userService.ReplaceRoles(c.Request.Context(), actor, c.Param("username"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteUser removes a user and their grades
// @Summary Delete user
// @Tags admin-users
// @Param username path string true "Username"
// @Success 204
// @Router /admin/users/{username} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting user", "username", c.Param("username"))

	if err := h.userService.Delete(c.Request.Context(), actor, c.Param("username")); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Me returns the caller's own account
// @Summary Current user
// @Tags users
// @Produce json
// @Success 200 {object} models.User
// @Router /users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}

	user, err := h.userService.Me(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ChangePassword lets the caller change their own password
// @Summary Change own password
// @Tags users
// @Accept json
// @Param body body models.ChangePasswordRequest true "Passwords"
// @Success 204
// @Failure 400 {object} ErrorResponse "Current password is wrong"
// @Router /users/me/password [put]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	var req models.ChangePasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), actor, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
