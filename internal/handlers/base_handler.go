package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SAP-F-2025/gradebook-service/internal/auth"
	"github.com/SAP-F-2025/gradebook-service/internal/repositories"
	"github.com/SAP-F-2025/gradebook-service/internal/services"
	"github.com/SAP-F-2025/gradebook-service/internal/utils"
	"github.com/SAP-F-2025/gradebook-service/internal/validator"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

const (
	errKindValidation   = "validation_error"
	errKindBadRequest   = "bad_request"
	errKindUnauthorized = "unauthorized"
	errKindForbidden    = "forbidden"
	errKindNotFound     = "not_found"
	errKindConflict     = "conflict"
	errKindInternal     = "internal_error"
)

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) log(c *gin.Context) utils.Logger {
	return utils.GetLogger(c, h.logger)
}

// LogRequest logs an incoming request with the caller and route attached
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, kv ...any) {
	args := append([]any{"method", c.Request.Method, "path", c.FullPath()}, kv...)
	if userID := c.GetString("user_id"); userID != "" {
		args = append(args, "user_id", userID)
	}
	h.log(c).Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, kv ...any) {
	args := append([]any{"error", err, "path", c.FullPath()}, kv...)
	h.log(c).Error(msg, args...)
}

func (h *BaseHandler) RespondWithError(c *gin.Context, status int, kind, message string, details interface{}) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:   kind,
		Message: message,
		Details: details,
	})
}

// handleServiceError maps service errors onto HTTP statuses
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	var notFound *services.NotFoundError

	switch {
	case errors.As(err, &validationErrs):
		h.RespondWithError(c, http.StatusBadRequest, errKindValidation, validationErrs.Error(), []validator.ValidationError(validationErrs))
	case services.IsValidation(err):
		h.RespondWithError(c, http.StatusBadRequest, errKindValidation, err.Error(), nil)
	case errors.Is(err, auth.ErrUnauthenticated):
		h.RespondWithError(c, http.StatusUnauthorized, errKindUnauthorized, "Authentication required", nil)
	case errors.Is(err, services.ErrUnauthorized):
		h.RespondWithError(c, http.StatusUnauthorized, errKindUnauthorized, "Invalid username or password", nil)
	case services.IsForbidden(err), errors.Is(err, auth.ErrForbidden):
		h.RespondWithError(c, http.StatusForbidden, errKindForbidden, "You do not have permission to perform this action", nil)
	case errors.As(err, &notFound):
		h.RespondWithError(c, http.StatusNotFound, errKindNotFound, notFound.Error(), nil)
	case services.IsNotFound(err):
		h.RespondWithError(c, http.StatusNotFound, errKindNotFound, err.Error(), nil)
	case services.IsConflict(err):
		h.RespondWithError(c, http.StatusConflict, errKindConflict, err.Error(), nil)
	default:
		h.LogError(c, err, "Unhandled service error")
		h.RespondWithError(c, http.StatusInternalServerError, errKindInternal, "Internal server error", nil)
	}
}

// principal returns the caller stored by the auth middleware, answering 401 when absent
func (h *BaseHandler) principal(c *gin.Context) (*auth.Principal, bool) {
	p, ok := PrincipalFromContext(c)
	if !ok {
		h.RespondWithError(c, http.StatusUnauthorized, errKindUnauthorized, "User not authenticated", nil)
		return nil, false
	}
	return p, true
}

// bindJSON decodes the request body, answering 400 on malformed JSON
func (h *BaseHandler) bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, errKindBadRequest, "Invalid request payload", err.Error())
		return false
	}
	return true
}

// parsePageRequest reads page, size and the repeatable sort parameter
func (h *BaseHandler) parsePageRequest(c *gin.Context) (repositories.PageRequest, bool) {
	page := repositories.PageRequest{Sort: repositories.ParseSort(c.QueryArray("sort"))}

	var err error
	if page.Page, err = queryInt(c, "page", 0); err != nil || page.Page < 0 || page.Page > repositories.MaxPage {
		h.RespondWithError(c, http.StatusBadRequest, errKindBadRequest,
			fmt.Sprintf("page must be an integer between 0 and %d", repositories.MaxPage), nil)
		return page, false
	}
	if page.Size, err = queryInt(c, "size", repositories.DefaultPageSize); err != nil || page.Size < 1 {
		h.RespondWithError(c, http.StatusBadRequest, errKindBadRequest, "size must be a positive integer", nil)
		return page, false
	}
	return page.Normalize(), true
}

func queryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func (h *BaseHandler) queryFloat(c *gin.Context, name string) (*float64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, errKindBadRequest, fmt.Sprintf("%s must be a number", name), nil)
		return nil, false
	}
	return &v, true
}

func (h *BaseHandler) queryBool(c *gin.Context, name string) (*bool, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, errKindBadRequest, fmt.Sprintf("%s must be true or false", name), nil)
		return nil, false
	}
	return &v, true
}

func queryString(c *gin.Context, name string) *string {
	if v := c.Query(name); v != "" {
		return &v
	}
	return nil
}

// pathID reads a uuid path parameter. A malformed id cannot name a record, so it answers 404.
func (h *BaseHandler) pathID(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		h.RespondWithError(c, http.StatusNotFound, errKindNotFound, fmt.Sprintf("%s %q not found", name, id), nil)
		return "", false
	}
	return id, true
}

// queryID reads an optional uuid filter, answering 400 when it is malformed
func (h *BaseHandler) queryID(c *gin.Context, name string) (*string, bool) {
	id := queryString(c, name)
	if id == nil {
		return nil, true
	}
	if _, err := uuid.Parse(*id); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, errKindBadRequest, fmt.Sprintf("%s must be a UUID", name), nil)
		return nil, false
	}
	return id, true
}
