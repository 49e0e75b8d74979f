package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/gradebook-service/internal/models"
	"github.com/SAP-F-2025/gradebook-service/internal/services"
	"github.com/SAP-F-2025/gradebook-service/internal/utils"
)

// HealthChecker reports whether the backing stores are reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type AuthHandler struct {
	BaseHandler
	authService services.AuthService
	health      HealthChecker
}

func NewAuthHandler(authService services.AuthService, health HealthChecker, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		authService: authService,
		health:      health,
	}
}

// Login exchanges credentials for a bearer token
// @Summary Log in
// @Description Verifies username and password and returns a signed token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body models.LoginRequest true "Credentials"
// @Success 200 {object} models.AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /public/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Login attempt", "username", req.Username)

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondWithToken(c, resp)
}

// Register creates a ROLE_USER account and signs it in
// @Summary Register
// @Tags auth
// @Accept json
// @Produce json
// @Param user body models.RegisterRequest true "New account"
// @Success 200 {object} models.AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /public/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Registering user", "username", req.Username)

	resp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondWithToken(c, resp)
}

func (h *AuthHandler) respondWithToken(c *gin.Context, resp *models.AuthResponse) {
	c.Header("Authorization", resp.TokenType+" "+resp.Token)
	c.JSON(http.StatusOK, resp)
}

// Health reports UP when the repositories answer
// @Summary Health check
// @Tags public
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Failure 503 {object} models.HealthResponse
// @Router /public/health [get]
func (h *AuthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.health.HealthCheck(ctx); err != nil {
		h.LogError(c, err, "Health check failed")
		c.JSON(http.StatusServiceUnavailable, models.HealthResponse{Status: "DOWN", Timestamp: time.Now().UTC()})
		return
	}
	c.JSON(http.StatusOK, models.HealthResponse{Status: "UP", Timestamp: time.Now().UTC()})
}
