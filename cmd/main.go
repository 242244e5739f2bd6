package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	authhttp "volunteer-hub/internal/auth/adapter/http"
	"volunteer-hub/internal/di"
	"volunteer-hub/internal/shared/httputil"
	"volunteer-hub/internal/shared/logger"

	"github.com/caarlos0/env/v6"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

// ServerConfig holds server configuration
type ServerConfig struct {
	Host        string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port        string `env:"PORT" envDefault:"5000"`
	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"http://localhost:5173"`

	// ProxyHeader is only read from the addresses in TrustedProxies.
	ProxyHeader    string   `env:"PROXY_HEADER" envDefault:""`
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	Log logger.Config
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	serverCfg := &ServerConfig{}
	if err := env.Parse(serverCfg); err != nil {
		log.Fatalf("Failed to load server configuration: %v", err)
	}

	appLogger := logger.New(serverCfg.Log)
	logger.SetDefault(appLogger)

	container := di.NewContainer(appLogger)
	defer func() {
		if err := container.Close(); err != nil {
			appLogger.Errorf("Failed to close container: %v", err)
		}
	}()

	if err := container.LoadConfig(); err != nil {
		appLogger.Fatalf("Configuration error: %v", err)
	}
	if err := container.Initialize(context.Background()); err != nil {
		appLogger.Fatalf("Initialization failed: %v", err)
	}
	authModule := container.GetAuthModule()
	volunteerModule := container.GetVolunteerModule()

	app := fiber.New(fiber.Config{
		AppName:      "Volunteer Hub API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: httputil.ErrorHandler(appLogger),

		ProxyHeader:             serverCfg.ProxyHeader,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          serverCfg.TrustedProxies,
	})

	guard := authModule.GetMiddleware()
	app.Use(recover.New())
	app.Use(authhttp.RequestID())
	app.Use(httputil.RequestContext())
	app.Use(httputil.AccessLog(appLogger.WithComponent("http")))
	app.Use(container.Metrics.Middleware())
	app.Use(authhttp.CORS(serverCfg.CORSOrigins))
	app.Use(guard.SecurityHeaders())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Volunteer Hub server is running")
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		healthCtx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()

		if err := container.HealthCheck(healthCtx); err != nil {
			appLogger.Errorf("Health check failed: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "UNHEALTHY",
				"error":  err.Error(),
			})
		}
		body := fiber.Map{
			"status":    "HEALTHY",
			"timestamp": time.Now().UTC(),
			"feeds":     volunteerModule.Hub.Count(),
		}
		if last, err := volunteerModule.LastEvent(healthCtx); err != nil {
			appLogger.Warnf("Reading the event stream failed: %v", err)
		} else if last != nil {
			body["lastEvent"] = fiber.Map{"type": last.Type, "timestamp": last.Timestamp}
		}
		return c.JSON(body)
	})
	app.Get("/metrics", container.Metrics.Handler())

	authModule.RegisterRoutes(app)
	volunteerModule.RegisterRoutes(app, guard)

	serverAddr := fmt.Sprintf("%s:%s", serverCfg.Host, serverCfg.Port)
	appLogger.Infof("Starting HTTP server on %s", serverAddr)

	serverShutdown := make(chan error, 1)
	go func() {
		serverShutdown <- app.Listen(serverAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverShutdown:
		if err != nil {
			appLogger.Errorf("Server failed: %v", err)
		}
	case sig := <-quit:
		appLogger.Infof("Received shutdown signal: %v", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			appLogger.Errorf("Server forced to shutdown: %v", err)
		}
		appLogger.Info("HTTP server stopped")
	}
}
