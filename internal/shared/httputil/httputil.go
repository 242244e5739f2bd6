// Package httputil holds the Fiber glue shared by every module: error
// rendering, access logging and request scoped context.
package httputil

import (
	"context"
	"errors"
	"time"

	apperrors "volunteer-hub/internal/shared/errors"
	"volunteer-hub/internal/shared/logger"
	"volunteer-hub/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

// ErrorBody is the JSON shape of every non-auth error response.
type ErrorBody struct {
	Type    apperrors.ErrorType    `json:"type"`
	Message string                 `json:"message"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorHandler renders errors returned by handlers. AppErrors keep their
// status and message, *fiber.Error keeps its code, anything else becomes a
// generic 500. Server side failures are logged with the request context.
func ErrorHandler(log logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		body := ErrorBody{Type: apperrors.ErrorTypeInternal, Message: "Internal Server Error"}
		status := fiber.StatusInternalServerError

		var appErr *apperrors.AppError
		var fiberErr *fiber.Error
		var validation *apperrors.ValidationErrors
		switch {
		case errors.As(err, &appErr):
			status = appErr.HTTPCode
			body = ErrorBody{Type: appErr.Type, Message: appErr.Message, Code: appErr.Code, Details: appErr.Details}
			if appErr.Type == apperrors.ErrorTypeInfrastructure || appErr.Type == apperrors.ErrorTypeInternal {
				body.Message = "Internal Server Error"
				body.Details = nil
			}
		case errors.As(err, &validation):
			appErr = validation.ToAppError()
			status = appErr.HTTPCode
			body = ErrorBody{Type: appErr.Type, Message: appErr.Message, Details: appErr.Details}
		case errors.As(err, &fiberErr):
			status = fiberErr.Code
			body = ErrorBody{Type: typeForStatus(status), Message: fiberErr.Message}
		default:
			status = apperrors.HTTPStatus(err)
			if status != fiber.StatusInternalServerError {
				body = ErrorBody{Type: typeForStatus(status), Message: err.Error()}
			}
		}

		if status == 0 {
			status = fiber.StatusInternalServerError
		}
		if status >= fiber.StatusInternalServerError {
			log.WithContext(c.UserContext()).Errorf("HTTP %d %s %s: %v", status, c.Method(), c.Path(), err)
		}
		return c.Status(status).JSON(body)
	}
}

func typeForStatus(status int) apperrors.ErrorType {
	switch status {
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return apperrors.ErrorTypeValidation
	case fiber.StatusUnauthorized:
		return apperrors.ErrorTypeAuthentication
	case fiber.StatusForbidden:
		return apperrors.ErrorTypeAuthorization
	case fiber.StatusNotFound:
		return apperrors.ErrorTypeNotFound
	case fiber.StatusConflict:
		return apperrors.ErrorTypeConflict
	}
	return apperrors.ErrorTypeInternal
}

// Message writes a {message} body, the shape the front-end expects for
// session and guard responses.
func Message(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"message": message})
}

// RequestIDLocal is the Fiber locals key the requestid middleware writes to.
const RequestIDLocal = "requestid"

// RequestContext copies the request id set by the requestid middleware into
// the user context so that loggers and stores can see it.
func RequestContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rid, ok := c.Locals(RequestIDLocal).(string); ok && rid != "" {
			c.SetUserContext(utils.WithRequestID(c.UserContext(), rid))
		}
		return c.Next()
	}
}

// AccessLog logs one line per request after the handler chain has run.
func AccessLog(log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			status = apperrors.HTTPStatus(err)
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		log.WithContext(c.UserContext()).WithFields(map[string]interface{}{
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"ip":         c.IP(),
		}).Info("request handled")
		return err
	}
}

// WithTimeout bounds a store call by the configured request timeout.
func WithTimeout(c *fiber.Ctx, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(c.UserContext())
	}
	return context.WithTimeout(c.UserContext(), d)
}
