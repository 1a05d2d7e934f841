package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/verlyx/hub/internal/auth/domain"
	"github.com/verlyx/hub/internal/authorization"
	dealdomain "github.com/verlyx/hub/internal/deal/domain"
	documentdomain "github.com/verlyx/hub/internal/document/domain"
	financedomain "github.com/verlyx/hub/internal/finance/domain"
	mycompanydomain "github.com/verlyx/hub/internal/mycompany/domain"
	notificationdomain "github.com/verlyx/hub/internal/notification/domain"
	"github.com/verlyx/hub/internal/observability/logger"
	organizationdomain "github.com/verlyx/hub/internal/organization/domain"
	paymentdomain "github.com/verlyx/hub/internal/payment/domain"
	pdfgendomain "github.com/verlyx/hub/internal/pdfgen/domain"
	projectdomain "github.com/verlyx/hub/internal/project/domain"
	taskdomain "github.com/verlyx/hub/internal/task/domain"
	taskcommentdomain "github.com/verlyx/hub/internal/taskcomment/domain"
	workspacedomain "github.com/verlyx/hub/internal/workspace/domain"
	"go.uber.org/zap"
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
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
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
		if status >= http.StatusInternalServerError {
			logger.FromContext(c.Request.Context()).Error("request failed",
				zap.String("route", c.FullPath()),
				zap.Int("status", status),
				zap.Error(lastErr.Err),
			)
		}
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

// classifyErrorForLog feeds the request logger with the mapped error type.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	return payload.Type, code
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

	var belowMin *paymentdomain.BelowMinimumError
	if errors.As(err, &belowMin) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: belowMin.Error(),
			Errors: []ValidationError{
				{Field: "amount", Code: "below_minimum", Message: belowMin.Error()},
			},
		}
	}

	var gatewayErr *paymentdomain.GatewayError
	if errors.As(err, &gatewayErr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "payment_failed",
			Message: gatewayErr.Error(),
		}
	}

	if isValidationError(err) {
		code := err.Error()
		message := validationErrorMessage(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: message,
			Errors: []ValidationError{
				{
					Field:   validationErrorField(err),
					Code:    code,
					Message: message,
				},
			},
		}
	}

	switch {
	case isUnauthorizedError(err):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: unauthorizedMessage(err),
		}
	case isForbiddenError(err):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, authdomain.ErrUserExists),
		errors.Is(err, mycompanydomain.ErrAlreadyMember),
		errors.Is(err, paymentdomain.ErrPaymentInProgress):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: notFoundMessage(err),
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, paymentdomain.ErrGatewayNotAvailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
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

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isAuthValidationError(err),
		isMyCompanyValidationError(err),
		isDealValidationError(err),
		isOrganizationValidationError(err),
		isProjectValidationError(err),
		isTaskValidationError(err),
		isTaskCommentValidationError(err),
		isDocumentValidationError(err),
		isWorkspaceValidationError(err),
		isFinanceValidationError(err),
		isNotificationValidationError(err),
		isPaymentValidationError(err),
		isPDFValidationError(err):
		return true
	default:
		return false
	}
}

func isUnauthorizedError(err error) bool {
	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidToken),
		errors.Is(err, authdomain.ErrInvalidRefreshToken),
		errors.Is(err, authdomain.ErrUserInactive),
		errors.Is(err, authorization.ErrUnauthenticated),
		errors.Is(err, mycompanydomain.ErrUnauthenticated),
		errors.Is(err, taskcommentdomain.ErrUnauthenticated),
		errors.Is(err, paymentdomain.ErrUnauthenticated),
		errors.Is(err, pdfgendomain.ErrUnauthenticated),
		errors.Is(err, paymentdomain.ErrInvalidSignature):
		return true
	default:
		return false
	}
}

func isForbiddenError(err error) bool {
	switch {
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden),
		errors.Is(err, authorization.ErrInvalidActor),
		errors.Is(err, taskcommentdomain.ErrNotAuthor),
		errors.Is(err, notificationdomain.ErrForbidden),
		errors.Is(err, mycompanydomain.ErrOwnerImmutable):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, mycompanydomain.ErrNotFound),
		errors.Is(err, mycompanydomain.ErrMemberNotFound),
		errors.Is(err, dealdomain.ErrNotFound),
		errors.Is(err, organizationdomain.ErrNotFound),
		errors.Is(err, projectdomain.ErrNotFound),
		errors.Is(err, taskdomain.ErrNotFound),
		errors.Is(err, taskcommentdomain.ErrNotFound),
		errors.Is(err, documentdomain.ErrNotFound),
		errors.Is(err, workspacedomain.ErrNotFound),
		errors.Is(err, financedomain.ErrNotFound),
		errors.Is(err, notificationdomain.ErrNotFound),
		errors.Is(err, paymentdomain.ErrNotFound),
		errors.Is(err, pdfgendomain.ErrNotFound),
		errors.Is(err, pdfgendomain.ErrFileMissing),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func unauthorizedMessage(err error) string {
	switch {
	case errors.Is(err, authdomain.ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, authdomain.ErrInvalidRefreshToken):
		return "Invalid refresh token"
	case errors.Is(err, authdomain.ErrUserInactive):
		return "User is inactive"
	case errors.Is(err, paymentdomain.ErrInvalidSignature):
		return "Invalid signature"
	default:
		return "unauthorized"
	}
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, authdomain.ErrUserExists):
		return "User already exists"
	case errors.Is(err, mycompanydomain.ErrAlreadyMember):
		return "User is already a member of this company"
	case errors.Is(err, paymentdomain.ErrPaymentInProgress):
		return "Payment is already being processed"
	default:
		return "conflict"
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, authdomain.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, mycompanydomain.ErrNotFound):
		return "Company not found"
	case errors.Is(err, dealdomain.ErrNotFound):
		return "Deal not found"
	case errors.Is(err, organizationdomain.ErrNotFound):
		return "Organization not found"
	case errors.Is(err, projectdomain.ErrNotFound):
		return "Project not found"
	case errors.Is(err, taskdomain.ErrNotFound):
		return "Task not found"
	case errors.Is(err, taskcommentdomain.ErrNotFound):
		return "Comment not found"
	case errors.Is(err, documentdomain.ErrNotFound):
		return "Document not found"
	case errors.Is(err, notificationdomain.ErrNotFound):
		return "Notification not found"
	case errors.Is(err, paymentdomain.ErrNotFound):
		return "Payment link not found"
	case errors.Is(err, pdfgendomain.ErrFileMissing):
		return "PDF file not found"
	default:
		return "not found"
	}
}

// validationErrorMessage returns the message shown to the client. Most codes
// only carry "validation error"; a few rules have a fixed wording.
func validationErrorMessage(err error) string {
	switch {
	case errors.Is(err, dealdomain.ErrReasonRequired):
		return "Reason is required when closing a deal"
	case errors.Is(err, projectdomain.ErrInvalidDates):
		return "Due date must be after start date"
	case errors.Is(err, paymentdomain.ErrAlreadyPaid):
		return "This payment has already been completed"
	case errors.Is(err, paymentdomain.ErrLinkExpired):
		return "This payment link has expired"
	case errors.Is(err, paymentdomain.ErrLinkCancelled):
		return "This payment link was cancelled"
	case errors.Is(err, paymentdomain.ErrRawCardDisabled):
		return "Card data must be tokenized"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid request"
	default:
		return "validation error"
	}
}

func validationErrorField(err error) string {
	code := err.Error()
	switch code {
	case "invalid_request":
		return "request"
	case "reason_required":
		return "reason"
	case "invalid_dates":
		return "dueDate"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}
