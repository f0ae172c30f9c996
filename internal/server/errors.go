package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/invoicekit/internal/backup"
	invoicedomain "github.com/smallbiznis/invoicekit/internal/invoice/domain"
	partydomain "github.com/smallbiznis/invoicekit/internal/party/domain"
	"github.com/smallbiznis/invoicekit/pkg/db/pagination"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	var fieldErrs invoicedomain.ValidationErrors
	if errors.As(err, &fieldErrs) {
		out := make([]ValidationError, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			out = append(out, ValidationError{
				Field:   fe.Field,
				Code:    fe.Err.Error(),
				Message: validationErrorMessage(fe.Err),
			})
		}
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  out,
		}
	}

	if field, ok := validationField(err); ok {
		code := validationCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   field,
					Code:    code,
					Message: validationErrorMessage(err),
				},
			},
		}
	}

	switch {
	case errors.Is(err, invoicedomain.ErrDuplicateInvoiceNumber):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "invoice number already exists",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, invoicedomain.ErrRenderFailed):
		return http.StatusInternalServerError, errorPayload{
			Type:    "render_failed",
			Message: "document could not be rendered",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

// validationField maps single-value validation sentinels to the field
// they concern.
func validationField(err error) (string, bool) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "request", true
	case errors.Is(err, invoicedomain.ErrInvalidID),
		errors.Is(err, partydomain.ErrInvalidID):
		return "id", true
	case errors.Is(err, invoicedomain.ErrInvalidStatus):
		return "status", true
	case errors.Is(err, pagination.ErrInvalidPageToken):
		return "page_token", true
	case errors.Is(err, partydomain.ErrInvalidKind):
		return "kind", true
	case errors.Is(err, partydomain.ErrInvalidFirstName):
		return "firstName", true
	case errors.Is(err, partydomain.ErrInvalidLastName):
		return "lastName", true
	case errors.Is(err, backup.ErrInvalidBackup):
		return "backup", true
	default:
		return "", false
	}
}

func validationCode(err error) string {
	for _, sentinel := range []error{
		ErrInvalidRequest,
		invoicedomain.ErrInvalidID,
		partydomain.ErrInvalidID,
		invoicedomain.ErrInvalidStatus,
		pagination.ErrInvalidPageToken,
		partydomain.ErrInvalidKind,
		partydomain.ErrInvalidFirstName,
		partydomain.ErrInvalidLastName,
		backup.ErrInvalidBackup,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, partydomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorMessage(err error) string {
	switch {
	case errors.Is(err, invoicedomain.ErrRequired):
		return "this field is required"
	case errors.Is(err, invoicedomain.ErrInvalidQuantity):
		return "quantity must be greater than zero"
	case errors.Is(err, invoicedomain.ErrInvalidPrice):
		return "price cannot be negative"
	case errors.Is(err, invoicedomain.ErrNoItems):
		return "add at least one item"
	case errors.Is(err, invoicedomain.ErrInvalidDate):
		return "date must be YYYY-MM-DD"
	case errors.Is(err, backup.ErrInvalidBackup):
		return "invalid backup file"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid request"
	default:
		return "invalid value"
	}
}

func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError {
		return payload.Type, err.Error()
	}
	if len(payload.Errors) > 0 {
		return payload.Type, payload.Errors[0].Code
	}
	return payload.Type, payload.Type
}
