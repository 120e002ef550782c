// Package errors writes the JSON error envelope shared by every endpoint.
package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/stwalsh4118/wardlens/internal/middleware"
)

// Error code constants for standardized error responses
const (
	ErrNotFound           = "NOT_FOUND"
	ErrBadRequest         = "BAD_REQUEST"
	ErrInternalServer     = "INTERNAL_SERVER_ERROR"
	ErrValidation         = "VALIDATION_ERROR"
	ErrDatasetUnavailable = "DATASET_UNAVAILABLE"
	ErrDatabaseConnection = "DATABASE_CONNECTION_ERROR"
)

// ErrorResponse is the top-level error response structure.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// abort writes the envelope and stops the handler chain.
func abort(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: middleware.GetRequestID(c),
		},
	})
}

// logFields returns the fields every error log line carries.
func logFields(c *gin.Context, message string) map[string]interface{} {
	return map[string]interface{}{
		"message":    message,
		"request_id": middleware.GetRequestID(c),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
	}
}

// NotFound returns a 404 Not Found error response.
func NotFound(c *gin.Context, message string) {
	if log := middleware.GetLogger(c); log != nil {
		log.Warn("Resource not found", logFields(c, message))
	}
	abort(c, http.StatusNotFound, ErrNotFound, message, nil)
}

// BadRequest returns a 400 Bad Request error response with optional details.
func BadRequest(c *gin.Context, message string, details map[string]interface{}) {
	if log := middleware.GetLogger(c); log != nil {
		fields := logFields(c, message)
		if details != nil {
			fields["details"] = details
		}
		log.Warn("Bad request", fields)
	}
	abort(c, http.StatusBadRequest, ErrBadRequest, message, details)
}

// InternalServerError returns a 500 response. err is logged but never sent
// to the client.
func InternalServerError(c *gin.Context, message string, err error) {
	if log := middleware.GetLogger(c); log != nil {
		log.Error("Internal server error", err, logFields(c, message))
	}
	abort(c, http.StatusInternalServerError, ErrInternalServer, message, nil)
}

// ServiceUnavailable returns a 503 response for a dataset that could not be
// loaded. The dataset name, when known, is included in the details so
// clients can tell which source failed.
func ServiceUnavailable(c *gin.Context, message, dataset string, err error) {
	var details map[string]interface{}
	if dataset != "" {
		details = map[string]interface{}{"dataset": dataset}
	}
	if log := middleware.GetLogger(c); log != nil {
		fields := logFields(c, message)
		if dataset != "" {
			fields["dataset"] = dataset
		}
		log.Error("Dataset unavailable", err, fields)
	}
	c.Header("Retry-After", "30")
	abort(c, http.StatusServiceUnavailable, ErrDatasetUnavailable, message, details)
}

// DatabaseUnavailable returns a 503 response when the database cannot be
// reached.
func DatabaseUnavailable(c *gin.Context, err error) {
	if log := middleware.GetLogger(c); log != nil {
		log.Error("Database unavailable", err, logFields(c, "database unavailable"))
	}
	abort(c, http.StatusServiceUnavailable, ErrDatabaseConnection, "Database connection unavailable", nil)
}

// ValidationError returns a 400 response listing each invalid field.
func ValidationError(c *gin.Context, validationErrors validator.ValidationErrors) {
	details := make(map[string]interface{}, len(validationErrors))
	for _, fe := range validationErrors {
		details[fe.Field()] = formatValidationError(fe)
	}

	if log := middleware.GetLogger(c); log != nil {
		fields := logFields(c, "validation failed")
		fields["fields"] = details
		log.Warn("Validation error", fields)
	}
	abort(c, http.StatusBadRequest, ErrValidation, "Validation failed for one or more fields", details)
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return "Must be at least " + fe.Param()
	case "max":
		return "Must be at most " + fe.Param()
	case "gt":
		return "Must be greater than " + fe.Param()
	case "gte":
		return "Must be greater than or equal to " + fe.Param()
	case "lt":
		return "Must be less than " + fe.Param()
	case "lte":
		return "Must be less than or equal to " + fe.Param()
	case "oneof":
		return "Must be one of: " + fe.Param()
	case "numeric":
		return "Must be a number"
	case "boolean":
		return "Must be true or false"
	default:
		return "Validation failed for tag: " + fe.Tag()
	}
}
