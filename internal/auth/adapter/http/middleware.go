package http

import (
	"strings"
	"time"

	"volunteer-hub/internal/auth/usecase"
	"volunteer-hub/internal/shared/httputil"
	"volunteer-hub/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

const (
	localUserEmail = "user_email"
	localUserName  = "user_name"

	msgUnauthorizedAccess = "Unauthorized access"
	msgUnauthorized       = "Unauthorized"
	msgForbidden          = "Forbidden"
)

// AuthMiddleware provides authentication middleware for Fiber
type AuthMiddleware struct {
	usecase    usecase.SessionUsecaseInterface
	cookieName string
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(uc usecase.SessionUsecaseInterface, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{
		usecase:    uc,
		cookieName: cookieName,
	}
}

// CORS allows the given comma separated origins with credentials.
func CORS(origins string) fiber.Handler {
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Requested-With,X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	})
}

// SecurityHeaders adds security headers
func (m *AuthMiddleware) SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		return c.Next()
	}
}

// RateLimiter limits session issuance per client address. The address is
// c.IP(), which only honours a proxy header when the app is configured with
// ProxyHeader and a trusted proxy list.
func (m *AuthMiddleware) RateLimiter(max int, window time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        window,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return httputil.Message(c, fiber.StatusTooManyRequests, "Too many requests")
		},
	})
}

// RequestID tags every request with an X-Request-ID header.
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		Generator:  uuid.NewString,
		ContextKey: httputil.RequestIDLocal,
	})
}

// Protect returns middleware that requires a valid session.
func (m *AuthMiddleware) Protect() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := m.extractToken(c)
		if token == "" {
			return httputil.Message(c, fiber.StatusUnauthorized, msgUnauthorizedAccess)
		}

		claims, err := m.usecase.ValidateToken(c.UserContext(), token)
		if err != nil {
			return httputil.Message(c, fiber.StatusUnauthorized, msgUnauthorized)
		}

		c.Locals(localUserEmail, claims.Email)
		c.Locals(localUserName, claims.Name)

		ctx := utils.WithUserEmail(c.UserContext(), claims.Email)
		if claims.Name != "" {
			ctx = utils.WithUserName(ctx, claims.Name)
		}
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// RequireSelf returns middleware that only lets callers read their own
// records: the query parameter must equal the verified email. It must run
// after Protect.
func (m *AuthMiddleware) RequireSelf(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email, ok := GetUserEmail(c)
		if !ok || email == "" {
			return httputil.Message(c, fiber.StatusUnauthorized, msgUnauthorizedAccess)
		}
		if c.Query(param) != email {
			return httputil.Message(c, fiber.StatusForbidden, msgForbidden)
		}
		return c.Next()
	}
}

// extractToken extracts the token from Authorization header or cookie
func (m *AuthMiddleware) extractToken(c *fiber.Ctx) string {
	if authHeader := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return c.Cookies(m.cookieName)
}

// GetUserEmail helper function to get user email from context
func GetUserEmail(c *fiber.Ctx) (string, bool) {
	email, ok := c.Locals(localUserEmail).(string)
	return email, ok
}
