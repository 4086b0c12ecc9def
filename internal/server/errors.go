package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	aggregationdomain "github.com/sahelpay/sahelpay/internal/aggregation/domain"
	gatewaydomain "github.com/sahelpay/sahelpay/internal/gateway/domain"
	merchantdomain "github.com/sahelpay/sahelpay/internal/merchant/domain"
	transactiondomain "github.com/sahelpay/sahelpay/internal/transaction/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
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
	ErrInvalidRequest = errors.New("invalid_request")
	ErrNotFound       = errors.New("not_found")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
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

func invalidRequestError() error {
	return ErrInvalidRequest
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	case isValidationError(err):
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, aggregationdomain.ErrNoPayments),
		errors.Is(err, aggregationdomain.ErrInvalidPayment),
		errors.Is(err, aggregationdomain.ErrInvalidCategory),
		errors.Is(err, aggregationdomain.ErrInvalidProvider),
		errors.Is(err, aggregationdomain.ErrMissingPhone),
		errors.Is(err, aggregationdomain.ErrMissingRef),
		errors.Is(err, transactiondomain.ErrInvalidAmount),
		errors.Is(err, transactiondomain.ErrInvalidProvider),
		errors.Is(err, transactiondomain.ErrMissingPhone),
		errors.Is(err, transactiondomain.ErrInvalidRefund),
		errors.Is(err, transactiondomain.ErrInvalidID),
		errors.Is(err, transactiondomain.ErrInvalidMerchant),
		errors.Is(err, merchantdomain.ErrInvalidBusinessName),
		errors.Is(err, merchantdomain.ErrInvalidBusinessType),
		errors.Is(err, merchantdomain.ErrInvalidID),
		errors.Is(err, gatewaydomain.ErrInvalidPayload):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, transactiondomain.ErrNotCompleted),
		errors.Is(err, transactiondomain.ErrAlreadyRefunded):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, aggregationdomain.ErrNotFound),
		errors.Is(err, transactiondomain.ErrNotFound),
		errors.Is(err, merchantdomain.ErrNotFound),
		errors.Is(err, merchantdomain.ErrNoMerchantAvailable),
		errors.Is(err, gatewaydomain.ErrProviderNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	switch {
	case strings.HasPrefix(code, "invalid_"):
		return strings.TrimPrefix(code, "invalid_")
	case strings.HasPrefix(code, "missing_"):
		return strings.TrimPrefix(code, "missing_")
	case strings.HasPrefix(code, "no_"):
		return strings.TrimPrefix(code, "no_")
	default:
		return "request"
	}
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "missing_phone":
		return "customer phone is required"
	case "no_payments":
		return "at least one payment is required"
	default:
		return "invalid value"
	}
}
