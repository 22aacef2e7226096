package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/kitforge/backend/internal/model"
	"github.com/kitforge/backend/internal/service"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

func timestamp() string {
	return time.Now().UTC().Format(timestampLayout)
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, model.Envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: timestamp(),
	})
}

func respondPage[T any](c *gin.Context, page model.Page[T]) {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, model.PaginatedEnvelope{
		Success:    true,
		Data:       items,
		Pagination: page.Pagination(),
		Timestamp:  timestamp(),
	})
}

func abortWith(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, model.Envelope{
		Success:   false,
		Message:   message,
		Code:      code,
		Timestamp: timestamp(),
	})
}

// errorWriter renders service errors. Internal error detail is only exposed outside production.
type errorWriter struct {
	exposeInternal bool
}

func (w errorWriter) write(c *gin.Context, err error) {
	w.writeWith(c, err, statusFor)
}

// writeToken is used by the verify-email and reset-password routes, where a bad token
// is a client input problem rather than an authentication failure.
func (w errorWriter) writeToken(c *gin.Context, err error) {
	w.writeWith(c, err, func(code string) int {
		switch code {
		case service.CodeTokenExpired, service.CodeTokenInvalid, service.CodeTokenPurposeMismatch:
			return http.StatusBadRequest
		}
		return statusFor(code)
	})
}

func (w errorWriter) writeWith(c *gin.Context, err error, status func(code string) int) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		svcErr = service.ErrInternal
	}

	if svcErr.Code == service.CodeInternal {
		_ = c.Error(err)
		msg := service.ErrInternal.Message
		if w.exposeInternal {
			msg = err.Error()
		}
		abortWith(c, http.StatusInternalServerError, service.CodeInternal, msg)
		return
	}
	abortWith(c, status(svcErr.Code), svcErr.Code, svcErr.Message)
}

func statusFor(code string) int {
	switch code {
	case service.CodeInvalidCredentials, service.CodeTokenRequired, service.CodeTokenExpired,
		service.CodeTokenInvalid, service.CodeTokenPurposeMismatch:
		return http.StatusUnauthorized
	case service.CodeAccountDisabled, service.CodeInsufficientPermissions, service.CodeEmailNotVerified:
		return http.StatusForbidden
	case service.CodeConflict:
		return http.StatusConflict
	case service.CodeUserNotFound:
		return http.StatusNotFound
	case service.CodeInvalidPassword, service.CodeValidation:
		return http.StatusBadRequest
	case service.CodeRateLimited:
		return http.StatusTooManyRequests
	case service.CodeFeatureUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeBindError reports a request that failed JSON decoding or binding tags.
func writeBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fieldMessage(fe))
		}
		abortWith(c, http.StatusBadRequest, service.CodeValidation, strings.Join(msgs, "; "))
		return
	}
	abortWith(c, http.StatusBadRequest, service.CodeValidation, "invalid request body")
}

func fieldMessage(fe validator.FieldError) string {
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "url":
		return field + " must be a valid URL"
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
