package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"trackdechets/internal/http/middleware"
	"trackdechets/internal/service"
	"trackdechets/internal/validation"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Details lists the field violations of a validation error.
	Details validation.Errors `json:"details,omitempty"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if s, ok := c.Locals(middleware.RequestIDLocalKey).(string); ok {
		return s
	}
	return ""
}

func writeError(c *fiber.Ctx, status int, code, message string, details ...validation.Error) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// ErrorHandler returns the Fiber error handler. Service errors keep their message and
// code; anything unexpected is logged and answered with a generic 500.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			switch fe.Code {
			case fiber.StatusBadRequest:
				return writeError(c, fe.Code, service.CodeBadUserInput, fe.Message)
			case fiber.StatusNotFound:
				return writeError(c, fe.Code, service.CodeNotFound, "ressource introuvable")
			case fiber.StatusMethodNotAllowed:
				return writeError(c, fe.Code, "METHOD_NOT_ALLOWED", "méthode non autorisée")
			case fiber.StatusRequestEntityTooLarge:
				return writeError(c, fe.Code, "PAYLOAD_TOO_LARGE", "requête trop volumineuse")
			}
			if fe.Code < fiber.StatusInternalServerError {
				return writeError(c, fe.Code, service.CodeBadUserInput, fe.Message)
			}
		}

		status := middleware.StatusOf(err)
		code := service.Code(err)
		if code == service.CodeInternal {
			log.Error("request_failed",
				zap.String("request_id", requestIDFromCtx(c)),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
			return writeError(c, fiber.StatusInternalServerError, code, "erreur interne du serveur")
		}

		var verr *service.ValidationError
		if errors.As(err, &verr) {
			return writeError(c, status, code, err.Error(), verr.Errors...)
		}
		return writeError(c, status, code, err.Error())
	}
}
