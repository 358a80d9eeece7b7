package middleware

import (
	"errors"
	"fmt"
	"misikaMarket/domain"
	"misikaMarket/pkg/logger"
	"net/http"
	"strings"

	jsonres "misikaMarket/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

func statusOf(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation, domain.KindDuplicate, domain.KindBusinessRule:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ValidationMessage turns validator errors into one readable sentence.
func ValidationMessage(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		parts = append(parts, describeField(fe))
	}
	return strings.Join(parts, "; ")
}

func describeField(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "uuid", "uuid4":
		return field + " must be a valid id"
	case "numeric":
		return field + " must contain only digits"
	case "gt", "gte":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	}
	return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
}

// NewErrorHandler renders every returned error in the response envelope.
// The underlying cause is exposed only outside production.
func NewErrorHandler(production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		code := domain.KindInternal.String()
		message := "Internal server error"

		var (
			de  *domain.Error
			he  *echo.HTTPError
			ves validator.ValidationErrors
		)

		switch {
		case errors.As(err, &de):
			status = statusOf(de.Kind)
			code = de.Kind.String()
			if de.Code != "" {
				code = de.Code
			}
			message = de.Message

		case errors.As(err, &ves):
			status = http.StatusBadRequest
			code = domain.KindValidation.String()
			message = ValidationMessage(ves)

		case errors.As(err, &he):
			status = he.Code
			code = strings.ToUpper(strings.ReplaceAll(http.StatusText(he.Code), " ", "_"))
			message = fmt.Sprint(he.Message)
		}

		if status >= http.StatusInternalServerError {
			logger.Error("Request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
		}

		stack := ""
		if !production {
			stack = err.Error()
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, jsonres.Error(code, message, stack))
		}
		if writeErr != nil {
			logger.Error("Failed to write error response", writeErr)
		}
	}
}
