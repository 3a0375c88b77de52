package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"farmconnect/internal/identity"
	"farmconnect/pkg/apperrors"
	"farmconnect/pkg/logger"
)

const actorKey = "actor"

// TokenVerifier resolves a bearer token to the caller it was issued to.
type TokenVerifier interface {
	ActorFromToken(token string) (identity.Actor, error)
}

// ErrorResponder writes err to the client.
type ErrorResponder func(c *fiber.Ctx, err error) error

// AuthRequired is a Fiber middleware that requires a valid bearer JWT and
// stores the resolved Actor for subsequent handlers.
func AuthRequired(verifier TokenVerifier, log *logger.Logger, respond ErrorResponder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return respond(c, apperrors.New(apperrors.CodeUnauthorized, "authorization header is required"))
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && strings.EqualFold(parts[0], "Bearer")) || parts[1] == "" {
			return respond(c, apperrors.New(apperrors.CodeUnauthorized, "authorization header format must be 'Bearer <token>'"))
		}

		actor, err := verifier.ActorFromToken(parts[1])
		if err != nil {
			return respond(c, err)
		}

		c.Locals(actorKey, actor)
		ctx := log.WithUserID(c.UserContext(), actor.UserID())
		ctx = log.WithActorRole(ctx, string(actor.Role()))
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// RequireRole rejects callers whose role is not role with Forbidden.
func RequireRole(role identity.Role, respond ErrorResponder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := ActorFrom(c)
		if !ok {
			return respond(c, apperrors.New(apperrors.CodeUnauthorized, "not authenticated"))
		}
		if actor.Role() != role {
			return respond(c, apperrors.Newf(apperrors.CodeForbidden, "%s access required", role))
		}
		return c.Next()
	}
}

// RequestContext copies the request id set by the requestid middleware into
// the logging context.
func RequestContext(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rid := c.GetRespHeader(fiber.HeaderXRequestID); rid != "" {
			c.SetUserContext(log.WithRequestID(c.UserContext(), rid))
		}
		return c.Next()
	}
}

// ActorFrom returns the caller stored by AuthRequired.
func ActorFrom(c *fiber.Ctx) (identity.Actor, bool) {
	actor, ok := c.Locals(actorKey).(identity.Actor)
	return actor, ok
}
