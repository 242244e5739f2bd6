package auth

import (
	"fmt"
	"time"

	authhttp "volunteer-hub/internal/auth/adapter/http"
	"volunteer-hub/internal/auth/adapter/security"
	"volunteer-hub/internal/auth/config"
	"volunteer-hub/internal/auth/domain/repository"
	"volunteer-hub/internal/auth/usecase"
	"volunteer-hub/internal/shared/eventbus"
	"volunteer-hub/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// issueRateLimit bounds POST /jwt calls per client and minute.
const issueRateLimit = 30

// AuthModule represents the complete session module
type AuthModule struct {
	tokenSvc   repository.TokenService
	usecase    usecase.SessionUsecaseInterface
	handler    *authhttp.SessionHTTPHandler
	middleware *authhttp.AuthMiddleware
	config     *config.Config
}

// NewAuthModule creates a new session module instance. publisher may be nil.
func NewAuthModule(cfg *config.Config, publisher eventbus.Publisher, log logger.Logger) (*AuthModule, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid auth configuration: %w", err)
	}

	tokenSvc, err := security.NewJWTokenService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	sessionUsecase := usecase.NewSessionUsecase(tokenSvc, publisher, log)

	return &AuthModule{
		tokenSvc:   tokenSvc,
		usecase:    sessionUsecase,
		handler:    authhttp.NewSessionHTTPHandler(sessionUsecase, authhttp.CookieSettingsFromConfig(cfg)),
		middleware: authhttp.NewAuthMiddleware(sessionUsecase, cfg.CookieName),
		config:     cfg,
	}, nil
}

// RegisterRoutes registers the session routes with the provided router
func (am *AuthModule) RegisterRoutes(router fiber.Router) {
	am.handler.SetupSessionRoutes(router, am.middleware.RateLimiter(issueRateLimit, time.Minute))
}

// GetUsecase returns the session usecase for external access
func (am *AuthModule) GetUsecase() usecase.SessionUsecaseInterface {
	return am.usecase
}

// GetTokenService returns the token signer, used by tests to mint sessions.
func (am *AuthModule) GetTokenService() repository.TokenService {
	return am.tokenSvc
}

// GetMiddleware returns the auth middleware
func (am *AuthModule) GetMiddleware() *authhttp.AuthMiddleware {
	return am.middleware
}

// Stop performs cleanup when the module is shut down
func (am *AuthModule) Stop() error {
	return nil
}
