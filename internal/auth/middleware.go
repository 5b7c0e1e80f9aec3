package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/ticket-report/pkg/util/errorutil"
)

// APIKeyHeader carries the API key. A bearer Authorization header is
// accepted as well.
const APIKeyHeader = "X-API-Key"

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	// Anonymous is set when the API key check is disabled.
	Anonymous bool
}

// Kind names how the caller was admitted, for request logs.
func (p *Principal) Kind() string {
	if p.Anonymous {
		return "anonymous"
	}
	return "api_key"
}

// APIKeyMiddleware guards the report API with a single shared key.
type APIKeyMiddleware struct {
	verifier *keyVerifier
}

// NewAPIKeyMiddleware constructs middleware. An empty hash disables the
// check and every caller is let through.
func NewAPIKeyMiddleware(hash string) *APIKeyMiddleware {
	if strings.TrimSpace(hash) == "" {
		return &APIKeyMiddleware{}
	}
	return &APIKeyMiddleware{verifier: newKeyVerifier(hash)}
}

// Enabled reports whether requests are checked.
func (m *APIKeyMiddleware) Enabled() bool {
	return m != nil && m.verifier != nil
}

// Handle enforces authentication for protected routes.
func (m *APIKeyMiddleware) Handle(c *fiber.Ctx) error {
	if !m.Enabled() {
		c.Locals(principalKey, &Principal{Anonymous: true})
		return c.Next()
	}

	key := strings.TrimSpace(c.Get(APIKeyHeader))
	if key == "" {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return apperrors.NewUnauthorized("missing api key")
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return apperrors.NewUnauthorized("invalid authorization header")
		}
		key = strings.TrimSpace(parts[1])
	}

	if !m.verifier.verify(key) {
		return apperrors.NewUnauthorized("invalid api key")
	}

	c.Locals(principalKey, &Principal{})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
