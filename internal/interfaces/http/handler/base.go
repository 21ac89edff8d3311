// Package handler holds the gin handlers of the inventory API.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/inventa/backend/internal/domain/shared"
	"github.com/inventa/backend/internal/infrastructure/logger"
	"github.com/inventa/backend/internal/interfaces/http/dto"
	"github.com/inventa/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Response messages
const (
	msgValidationFailed  = "The given data was invalid"
	msgTransactionFailed = "The change could not be saved; nothing was modified"
	msgInternal          = "An unexpected error occurred"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Page sends a paginated listing with its meta block
func Page[T any](c *gin.Context, page shared.Paginated[T]) {
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// MethodNotAllowed sends a 405 response
func (h *BaseHandler) MethodNotAllowed(c *gin.Context, message string) {
	h.Error(c, http.StatusMethodNotAllowed, dto.ErrCodeMethodNotAllowed, message)
}

// ValidationError sends a 422 validation error response with details
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusUnprocessableEntity, dto.NewValidationErrorResponse(
		msgValidationFailed,
		middleware.GetRequestID(c),
		details,
	))
}

// HandleError converts service errors to HTTP responses.
// Store failures are logged with their cause and answered with a generic message.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	var validationErr *shared.ValidationError
	if errors.As(err, &validationErr) {
		h.ValidationError(c, dto.ValidationDetailsFrom(validationErr.Fields))
		return
	}

	var txErr *shared.TransactionError
	if errors.As(err, &txErr) {
		logger.L(c.Request.Context()).Error("Transaction rolled back",
			zap.String("op", txErr.Op),
			zap.Error(txErr.Err),
		)
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeTransaction, msgTransactionFailed)
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
		return
	}

	logger.L(c.Request.Context()).Error("Unhandled error", zap.Error(err))
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, msgInternal)
}

// HandleBindError answers a failed ShouldBind* call
func (h *BaseHandler) HandleBindError(c *gin.Context, err error) {
	if details, ok := middleware.ValidationDetails(err); ok {
		h.ValidationError(c, details)
		return
	}

	var maxBytesErr *http.MaxBytesError
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &maxBytesErr):
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeBodyTooLarge, "Request body exceeds maximum allowed size")
	case errors.As(err, &typeErr):
		h.ValidationError(c, []dto.ValidationDetail{{Field: typeErr.Field, Message: "has an invalid type"}})
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Request body is not valid JSON")
	default:
		h.BadRequest(c, err.Error())
	}
}

// parseID reads the :id path parameter, which must be a positive integer
func (h *BaseHandler) parseID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		h.BadRequest(c, "Invalid ID format")
		return 0, false
	}
	return id, true
}

// actorID returns the acting user, nil when the request is anonymous
func actorID(c *gin.Context) *uint64 {
	return middleware.GetActorID(c)
}
