package volunteer

import (
	"context"
	"fmt"

	"volunteer-hub/internal/shared/eventbus"
	"volunteer-hub/internal/shared/logger"
	httpadapter "volunteer-hub/internal/volunteer/adapter/http"
	redispersistence "volunteer-hub/internal/volunteer/adapter/persistence"
	mongodbpersistence "volunteer-hub/internal/volunteer/adapter/persistence/mongodb"
	"volunteer-hub/internal/volunteer/adapter/policy"
	"volunteer-hub/internal/volunteer/adapter/realtime"
	"volunteer-hub/internal/volunteer/config"
	"volunteer-hub/internal/volunteer/domain/repository"
	"volunteer-hub/internal/volunteer/usecase"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

// VolunteerModule wires the opportunity and application stores, their use
// cases and the HTTP routes.
type VolunteerModule struct {
	Config             *config.Config
	OpportunityRepo    repository.OpportunityRepository
	ApplicationRepo    repository.ApplicationRepository
	Policy             *policy.CELPolicy
	OpportunityUsecase usecase.OpportunityUsecaseInterface
	ApplicationUsecase usecase.ApplicationUsecaseInterface
	Hub                *realtime.Hub
	Handler            *httpadapter.Handler
	EventStore         *redispersistence.RedisEventStore

	bus    *eventbus.EventBus
	logger logger.Logger
}

// NewVolunteerModule creates the module on top of the MongoDB database db.
func NewVolunteerModule(db *mongo.Database, cfg *config.Config, bus *eventbus.EventBus, log logger.Logger) (*VolunteerModule, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logger.NoopLogger{}
	}
	opps := mongodbpersistence.NewOpportunityRepository(db, cfg.OpportunityCollection, cfg.SearchFields, log)
	apps := mongodbpersistence.NewApplicationRepository(db, cfg.ApplicationCollection, cfg.OpportunityCollection, log)
	return NewVolunteerModuleWithRepositories(opps, apps, cfg, bus, log)
}

// NewVolunteerModuleWithRepositories creates the module on top of any
// repository implementation.
func NewVolunteerModuleWithRepositories(
	opps repository.OpportunityRepository,
	apps repository.ApplicationRepository,
	cfg *config.Config,
	bus *eventbus.EventBus,
	log logger.Logger,
) (*VolunteerModule, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid volunteer configuration: %w", err)
	}
	if log == nil {
		log = logger.NoopLogger{}
	}
	if bus == nil {
		bus = eventbus.NewEventBus(log)
	}

	ownership, err := policy.NewCELPolicy(cfg.OwnershipRule, cfg.EnforceOwnership)
	if err != nil {
		return nil, fmt.Errorf("failed to compile ownership rule: %w", err)
	}

	hub := realtime.NewHub(log)
	hub.Attach(bus)

	oppUC := usecase.NewOpportunityUsecase(opps, ownership, bus, cfg.MaxPageSize, log)
	appUC := usecase.NewApplicationUsecase(apps, bus, log)
	handler := httpadapter.NewHandler(oppUC, appUC, httpadapter.NewFeedHandler(hub, log), cfg.RequestTimeout)

	log.Infof("Volunteer module ready (ownership enforced: %t, rule %q)", ownership.Enforced(), ownership.Rule())

	return &VolunteerModule{
		Config:             cfg,
		OpportunityRepo:    opps,
		ApplicationRepo:    apps,
		Policy:             ownership,
		OpportunityUsecase: oppUC,
		ApplicationUsecase: appUC,
		Hub:                hub,
		Handler:            handler,
		bus:                bus,
		logger:             log,
	}, nil
}

// AttachEventStore appends every domain event to the Redis stream of store.
func (m *VolunteerModule) AttachEventStore(store *redispersistence.RedisEventStore) {
	if store == nil {
		return
	}
	store.Subscribe(m.bus)
	m.EventStore = store
}

// LastEvent returns the newest event of the attached Redis stream, or nil
// when no store is attached or the stream is empty.
func (m *VolunteerModule) LastEvent(ctx context.Context) (*eventbus.Event, error) {
	if m.EventStore == nil {
		return nil, nil
	}
	events, err := m.EventStore.Recent(ctx, 1)
	if err != nil || len(events) == 0 {
		return nil, err
	}
	return &events[0], nil
}

// RegisterRoutes registers the volunteer routes behind guard.
func (m *VolunteerModule) RegisterRoutes(router fiber.Router, guard httpadapter.AccessGuard) {
	m.Handler.RegisterRoutes(router, guard)
}

// Stop closes the live feeds and waits for pending event deliveries.
func (m *VolunteerModule) Stop() error {
	m.Hub.Close()
	m.bus.Wait()
	return nil
}
