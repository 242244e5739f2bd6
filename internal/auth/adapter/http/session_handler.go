package http

import (
	"time"

	"volunteer-hub/internal/auth/config"
	"volunteer-hub/internal/auth/domain/model"
	"volunteer-hub/internal/auth/usecase"
	apperrors "volunteer-hub/internal/shared/errors"
	"volunteer-hub/internal/shared/httputil"

	"github.com/gofiber/fiber/v2"
)

// CookieSettings are the attributes of the session cookie.
type CookieSettings struct {
	Name     string
	Path     string
	Domain   string
	MaxAge   int
	Secure   bool
	SameSite string
}

// CookieSettingsFromConfig derives cookie attributes from the auth config.
func CookieSettingsFromConfig(cfg *config.Config) CookieSettings {
	return CookieSettings{
		Name:     cfg.CookieName,
		Path:     cfg.CookiePath,
		Domain:   cfg.CookieDomain,
		MaxAge:   int(cfg.SessionTTL.Seconds()),
		Secure:   cfg.Secure(),
		SameSite: cfg.SameSite(),
	}
}

// SessionHTTPHandler handles HTTP requests for session issuance
type SessionHTTPHandler struct {
	usecase usecase.SessionUsecaseInterface
	cookie  CookieSettings
}

// NewSessionHTTPHandler creates a new session HTTP handler
func NewSessionHTTPHandler(uc usecase.SessionUsecaseInterface, cookie CookieSettings) *SessionHTTPHandler {
	return &SessionHTTPHandler{usecase: uc, cookie: cookie}
}

// IssueRequest is the body of POST /jwt.
type IssueRequest struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// SetupSessionRoutes registers /jwt and /logout on the router.
func (h *SessionHTTPHandler) SetupSessionRoutes(router fiber.Router, handlers ...fiber.Handler) {
	router.Post("/jwt", append(handlers, h.Issue)...)
	router.Get("/logout", h.Logout)
	router.Post("/logout", h.Logout)
}

// Issue signs a token for the posted identity and sets it as the session cookie.
func (h *SessionHTTPHandler) Issue(c *fiber.Ctx) error {
	var req IssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid request body").WithCause(err)
	}

	session, err := h.usecase.IssueSession(c.UserContext(), model.Identity{Email: req.Email, Name: req.Name})
	if err != nil {
		return err
	}

	h.setCookie(c, session.Token, session.ExpiresAt)
	return httputil.Message(c, fiber.StatusOK, "success")
}

// Logout clears the session cookie. It never fails.
func (h *SessionHTTPHandler) Logout(c *fiber.Ctx) error {
	h.clearCookie(c)
	return httputil.Message(c, fiber.StatusOK, "success")
}

// Helper methods

func (h *SessionHTTPHandler) setCookie(c *fiber.Ctx, token string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     h.cookie.Path,
		Domain:   h.cookie.Domain,
		MaxAge:   h.cookie.MaxAge,
		Secure:   h.cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cookie.SameSite,
		Expires:  expiresAt,
	})
}

func (h *SessionHTTPHandler) clearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     h.cookie.Path,
		Domain:   h.cookie.Domain,
		MaxAge:   -1,
		Secure:   h.cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cookie.SameSite,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
}
