package http_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authhttp "volunteer-hub/internal/auth/adapter/http"
	"volunteer-hub/internal/auth/domain/repository"
	apperrors "volunteer-hub/internal/shared/errors"
	"volunteer-hub/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MiddlewareTestSuite struct {
	suite.Suite
	app        *fiber.App
	mockUC     *mockSessionUsecase
	middleware *authhttp.AuthMiddleware
}

func (suite *MiddlewareTestSuite) SetupTest() {
	suite.mockUC = &mockSessionUsecase{}
	suite.middleware = authhttp.NewAuthMiddleware(suite.mockUC, "token")
	suite.app = fiber.New()

	suite.app.Get("/protected", suite.middleware.Protect(), func(c *fiber.Ctx) error {
		email, ok := authhttp.GetUserEmail(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		ctxEmail, err := utils.GetUserEmailFromContext(c.UserContext())
		if err != nil {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.JSON(fiber.Map{"email": email, "ctxEmail": ctxEmail, "name": utils.GetUserNameOrDefault(c.UserContext(), "")})
	})
	suite.app.Get("/self", suite.middleware.Protect(), suite.middleware.RequireSelf("email"), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
}

func (suite *MiddlewareTestSuite) decode(resp *http.Response) map[string]interface{} {
	body, err := io.ReadAll(resp.Body)
	require.NoError(suite.T(), err)
	var out map[string]interface{}
	require.NoError(suite.T(), json.Unmarshal(body, &out))
	return out
}

func (suite *MiddlewareTestSuite) TestProtect_Cookie() {
	suite.mockUC.On("ValidateToken", mock.Anything, "valid-token").
		Return(&repository.Claims{Email: "org@example.com", Name: "Org"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "valid-token"})

	resp, err := suite.app.Test(req)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	body := suite.decode(resp)
	assert.Equal(suite.T(), "org@example.com", body["email"])
	assert.Equal(suite.T(), "org@example.com", body["ctxEmail"])
	assert.Equal(suite.T(), "Org", body["name"])
	suite.mockUC.AssertExpectations(suite.T())
}

func (suite *MiddlewareTestSuite) TestProtect_BearerHeader() {
	suite.mockUC.On("ValidateToken", mock.Anything, "header-token").
		Return(&repository.Claims{Email: "org@example.com"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer header-token")

	resp, err := suite.app.Test(req)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
}

func (suite *MiddlewareTestSuite) TestProtect_NoToken() {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)

	resp, err := suite.app.Test(req)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(suite.T(), "Unauthorized access", suite.decode(resp)["message"])
	suite.mockUC.AssertNotCalled(suite.T(), "ValidateToken", mock.Anything, mock.Anything)
}

func (suite *MiddlewareTestSuite) TestProtect_InvalidToken() {
	suite.mockUC.On("ValidateToken", mock.Anything, "expired").
		Return(nil, apperrors.NewAuthenticationError("Unauthorized"))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "expired"})

	resp, err := suite.app.Test(req)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(suite.T(), "Unauthorized", suite.decode(resp)["message"])
}

func (suite *MiddlewareTestSuite) TestRequireSelf() {
	suite.mockUC.On("ValidateToken", mock.Anything, "valid-token").
		Return(&repository.Claims{Email: "vol@example.com"}, nil)

	testCases := []struct {
		name   string
		query  string
		status int
	}{
		{"same email", "?email=vol@example.com", http.StatusOK},
		{"different email", "?email=other@example.com", http.StatusForbidden},
		{"missing email", "", http.StatusForbidden},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			req := httptest.NewRequest(http.MethodGet, "/self"+tc.query, nil)
			req.AddCookie(&http.Cookie{Name: "token", Value: "valid-token"})

			resp, err := suite.app.Test(req)
			require.NoError(suite.T(), err)
			assert.Equal(suite.T(), tc.status, resp.StatusCode)
			if tc.status == http.StatusForbidden {
				assert.Equal(suite.T(), "Forbidden", suite.decode(resp)["message"])
			}
		})
	}
}

func (suite *MiddlewareTestSuite) TestRequireSelf_WithoutSession() {
	req := httptest.NewRequest(http.MethodGet, "/self?email=vol@example.com", nil)

	resp, err := suite.app.Test(req)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)
}

func TestMiddlewareTestSuite(t *testing.T) {
	suite.Run(t, new(MiddlewareTestSuite))
}

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(authhttp.RequestID())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Len(t, resp.Header.Get(fiber.HeaderXRequestID), 36)
}

func TestSecurityHeaders(t *testing.T) {
	app := fiber.New()
	app.Use(authhttp.NewAuthMiddleware(nil, "token").SecurityHeaders())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
}

func TestRateLimiter_IgnoresForwardedForFromUntrustedClients(t *testing.T) {
	app := fiber.New(fiber.Config{
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
	})
	app.Post("/jwt", authhttp.NewAuthMiddleware(nil, "token").RateLimiter(2, time.Minute), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/jwt", nil)
		req.Header.Set(fiber.HeaderXForwardedFor, fmt.Sprintf("203.0.113.%d", i+1))
		resp, err := app.Test(req)
		require.NoError(t, err)
		statuses = append(statuses, resp.StatusCode)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)
}
