package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"jobboard/internal/domain"
	"jobboard/pkg/token"
)

const subjectLocal = "subject"

// Guard authenticates requests from the Authorization header and attaches
// the verified subject to the request context. Role checks stay in the
// use-case layer; the guard only establishes identity.
type Guard struct {
	codec *token.Codec
	log   zerolog.Logger
}

func NewGuard(codec *token.Codec, log zerolog.Logger) *Guard {
	return &Guard{codec: codec, log: log}
}

// Authenticate accepts a raw token or the Bearer-prefixed form. Garbage that
// is not even shaped like a signed token is rejected before the codec runs.
// Every failure mode answers with the same message so the response does not
// disclose whether a signature or an expiry failed.
func (g *Guard) Authenticate(c *fiber.Ctx) error {
	raw := c.Get(fiber.HeaderAuthorization)
	if raw == "" {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized access - No token provided")
	}
	raw = strings.TrimPrefix(raw, "Bearer ")

	if strings.Count(raw, ".") != 2 {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized access - Invalid token format")
	}

	claims, err := g.codec.Verify(raw)
	if err != nil {
		// the precise cause stays in the logs
		g.log.Debug().Err(err).Msg("token rejected")
		return fail(c, fiber.StatusUnauthorized, "Invalid or expired token")
	}

	sub, err := claims.Subject()
	if err != nil {
		g.log.Debug().Err(err).Msg("token subject unparsable")
		return fail(c, fiber.StatusUnauthorized, "Invalid or expired token")
	}

	c.Locals(subjectLocal, sub)
	return c.Next()
}

// SubjectFrom returns the subject Authenticate attached. The zero Subject
// comes back on routes that skipped the guard; use-case role checks reject
// it.
func SubjectFrom(c *fiber.Ctx) domain.Subject {
	sub, _ := c.Locals(subjectLocal).(domain.Subject)
	return sub
}
