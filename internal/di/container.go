package di

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"volunteer-hub/internal/auth"
	authconfig "volunteer-hub/internal/auth/config"
	"volunteer-hub/internal/shared/eventbus"
	"volunteer-hub/internal/shared/logger"
	"volunteer-hub/internal/shared/metrics"
	"volunteer-hub/internal/volunteer"
	redispersistence "volunteer-hub/internal/volunteer/adapter/persistence"
	volunteerconfig "volunteer-hub/internal/volunteer/config"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 30 * time.Second

// Container owns the process-wide connections and the modules built on them.
type Container struct {
	mu sync.RWMutex

	AuthModule      *auth.AuthModule
	VolunteerModule *volunteer.VolunteerModule

	MongoClient *mongo.Client
	MongoDB     *mongo.Database
	Redis       *redis.Client

	AuthConfig      *authconfig.Config
	VolunteerConfig *volunteerconfig.Config
	RedisConfig     *volunteerconfig.RedisConfig

	Bus     *eventbus.EventBus
	Metrics *metrics.Metrics
	Logger  logger.Logger
}

// NewContainer creates an empty container logging to log.
func NewContainer(log logger.Logger) *Container {
	if log == nil {
		log = logger.NewLogger()
	}
	return &Container{Logger: log}
}

// LoadConfig reads the auth, volunteer and Redis configuration from the environment.
func (c *Container) LoadConfig() error {
	authCfg, err := authconfig.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load auth configuration: %w", err)
	}
	volCfg, err := volunteerconfig.LoadConfig()
	if err != nil {
		return err
	}
	redisCfg, err := volunteerconfig.LoadRedisConfig()
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.AuthConfig = authCfg
	c.VolunteerConfig = volCfg
	c.RedisConfig = redisCfg
	return nil
}

// Initialize connects to MongoDB and, when configured, Redis, then builds the
// auth and volunteer modules.
func (c *Container) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.AuthConfig == nil || c.VolunteerConfig == nil {
		return errors.New("configuration must be loaded before initialization")
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.VolunteerConfig.MongoDBURI))
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	c.MongoClient = client
	c.MongoDB = client.Database(c.VolunteerConfig.DatabaseName)
	c.Logger.Infof("MongoDB connection established (database %s)", c.VolunteerConfig.DatabaseName)

	c.Bus = eventbus.NewEventBus(c.Logger.WithComponent("eventbus"))
	c.Metrics = metrics.New()
	c.Metrics.ObserveEvents(c.Bus)

	authModule, err := auth.NewAuthModule(c.AuthConfig, c.Bus, c.Logger.WithComponent("auth"))
	if err != nil {
		return fmt.Errorf("failed to create auth module: %w", err)
	}
	c.AuthModule = authModule

	volModule, err := volunteer.NewVolunteerModule(c.MongoDB, c.VolunteerConfig, c.Bus, c.Logger.WithComponent("volunteer"))
	if err != nil {
		return fmt.Errorf("failed to create volunteer module: %w", err)
	}
	c.VolunteerModule = volModule

	if c.RedisConfig != nil && c.RedisConfig.Enabled() {
		rdb := volunteerconfig.NewRedisClient(c.RedisConfig)
		if err := rdb.Ping(ctx).Err(); err != nil {
			// The event log is optional; the API keeps serving without it.
			c.Logger.Warnf("Redis unavailable at %s, event stream disabled: %v", c.RedisConfig.Addr, err)
			_ = rdb.Close()
		} else {
			c.Redis = rdb
			store := redispersistence.NewRedisEventStore(rdb, c.RedisConfig.Stream, c.RedisConfig.StreamMaxLen, c.Logger.WithComponent("eventstore"))
			volModule.AttachEventStore(store)
			c.Logger.Infof("Domain events streamed to Redis %s", c.RedisConfig.Stream)
		}
	}
	return nil
}

// GetAuthModule returns the auth module instance
func (c *Container) GetAuthModule() *auth.AuthModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.AuthModule
}

// GetVolunteerModule returns the volunteer module instance
func (c *Container) GetVolunteerModule() *volunteer.VolunteerModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.VolunteerModule
}

// HealthCheck pings the backing stores.
func (c *Container) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.MongoClient != nil {
		if err := c.MongoClient.Ping(ctx, nil); err != nil {
			return fmt.Errorf("MongoDB health check failed: %w", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("Redis health check failed: %w", err)
		}
	}
	return nil
}

// Cleanup stops the modules and closes the connections in reverse order of
// initialization.
func (c *Container) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if c.VolunteerModule != nil {
		if err := c.VolunteerModule.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("volunteer module: %w", err))
		}
		c.VolunteerModule = nil
	}
	if c.AuthModule != nil {
		if err := c.AuthModule.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("auth module: %w", err))
		}
		c.AuthModule = nil
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
		c.Redis = nil
	}
	if c.MongoClient != nil {
		if err := c.MongoClient.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("mongodb: %w", err))
		}
		c.MongoClient = nil
		c.MongoDB = nil
	}
	return errors.Join(errs...)
}

// Close shuts down all services in the container with a timeout.
func (c *Container) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := c.Cleanup(ctx); err != nil {
		c.Logger.Warnf("Cleanup errors occurred: %v", err)
		return err
	}
	c.Logger.Info("Container resources closed")
	return nil
}
