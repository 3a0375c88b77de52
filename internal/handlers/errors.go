package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"farmconnect/internal/identity"
	"farmconnect/internal/middleware"
	"farmconnect/pkg/apperrors"
	"farmconnect/pkg/logger"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    apperrors.Code `json:"code"`
	Message string         `json:"message"`
	Details any            `json:"details"`
}

// NewErrorResponder maps err to its HTTP status and error body. Internal
// errors are logged and answered with a generic message.
func NewErrorResponder(log *logger.Logger) func(c *fiber.Ctx, err error) error {
	return func(c *fiber.Ctx, err error) error {
		typed := apperrors.As(err)
		if typed == nil {
			typed = apperrors.Internal(err, "unhandled error")
		}
		meta := apperrors.MetadataFor(typed.Code())

		body := ErrorResponse{Code: typed.Code(), Message: typed.Message()}
		if typed.Code() == apperrors.CodeInternal {
			log.Error(c.UserContext(), fmt.Sprintf("%s %s failed", c.Method(), c.Path()), err)
			body.Message = meta.PublicMessage
		}
		if body.Message == "" {
			body.Message = meta.PublicMessage
		}
		if meta.DetailsAllowed {
			body.Details = typed.Details()
		}
		return c.Status(meta.HTTPStatus).JSON(body)
	}
}

// FiberErrorHandler renders errors that escape handlers, such as unknown
// routes, in the common error body.
func FiberErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	respond := NewErrorResponder(log)
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			switch fe.Code {
			case fiber.StatusNotFound:
				return respond(c, apperrors.New(apperrors.CodeNotFound, fe.Message))
			case fiber.StatusMethodNotAllowed, fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge:
				return respond(c, apperrors.New(apperrors.CodeInvalidInput, fe.Message))
			}
		}
		return respond(c, err)
	}
}

var validate = newValidator()

// newValidator reports fields under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bind parses the JSON body into dst and validates it.
func bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidInput, err, "invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperrors.Wrap(apperrors.CodeInvalidInput, err, "validation failed")
	}
	errorMessages := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("failed on the '%s' tag", e.Tag())
	}
	return apperrors.New(apperrors.CodeInvalidInput, "validation failed").WithDetails(errorMessages)
}

// parseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
func parseDate(field, value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, apperrors.New(apperrors.CodeInvalidInput, "invalid date").
			WithDetails(map[string]string{field: "must be YYYY-MM-DD or RFC 3339"})
	}
	return t, nil
}

// currentActor returns the caller resolved by the auth middleware.
func currentActor(c *fiber.Ctx) (identity.Actor, error) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "not authenticated")
	}
	return actor, nil
}
