package eventbus

import (
	"context"
	"errors"
	"sync"
	"time"

	"volunteer-hub/internal/shared/logger"

	"github.com/google/uuid"
)

// Event is a domain notification published after a successful write.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload"`
}

// NewEvent stamps a new event with a random id and the current time.
func NewEvent(eventType, source string, payload map[string]interface{}) Event {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// StringField returns a payload value as string, or "".
func (e Event) StringField(key string) string {
	s, _ := e.Payload[key].(string)
	return s
}

// Handler defines the event handler function type
type Handler func(ctx context.Context, event Event) error

// Publisher is the part of the bus the use cases depend on.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	PublishAndForget(ctx context.Context, event Event)
}

// EventBus is an in-memory, process local bus. Handlers run once; a failing
// handler does not stop the others.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   logger.Logger
	config   BusConfig
	wg       sync.WaitGroup
}

// BusConfig holds configuration for the event bus
type BusConfig struct {
	AsyncProcessing bool
}

// NewEventBus creates a synchronous event bus.
func NewEventBus(log logger.Logger) *EventBus {
	return NewEventBusWithConfig(log, BusConfig{})
}

// NewEventBusWithConfig creates a new event bus with custom configuration
func NewEventBusWithConfig(log logger.Logger, config BusConfig) *EventBus {
	if log == nil {
		log = logger.NoopLogger{}
	}
	return &EventBus{
		handlers: make(map[string][]Handler),
		logger:   log,
		config:   config,
	}
}

// Subscribe adds a handler for a specific event type. The type "*" receives every event.
func (eb *EventBus) Subscribe(eventType string, handler Handler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
	eb.logger.Debugf("Subscribed handler for event type: %s", eventType)
}

// Publish delivers the event to its handlers and joins their errors.
func (eb *EventBus) Publish(ctx context.Context, event Event) error {
	eb.mu.RLock()
	handlers := make([]Handler, 0, len(eb.handlers[event.Type])+len(eb.handlers[Wildcard]))
	handlers = append(handlers, eb.handlers[event.Type]...)
	handlers = append(handlers, eb.handlers[Wildcard]...)
	eb.mu.RUnlock()

	if len(handlers) == 0 {
		return nil
	}

	if !eb.config.AsyncProcessing {
		var errs []error
		for _, h := range handlers {
			if err := eb.run(ctx, event, h); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, h := range handlers {
		wg.Add(1)
		go func(h Handler) {
			defer wg.Done()
			if err := eb.run(ctx, event, h); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(h)
	}
	wg.Wait()
	return errors.Join(errs...)
}

func (eb *EventBus) run(ctx context.Context, event Event, h Handler) error {
	if err := h(ctx, event); err != nil {
		eb.logger.Errorf("Handler failed for event %s (%s): %v", event.Type, event.ID, err)
		return err
	}
	return nil
}

// PublishAndForget publishes on a detached goroutine. The request context is
// not used so that handlers outlive the request.
func (eb *EventBus) PublishAndForget(ctx context.Context, event Event) {
	eb.wg.Add(1)
	go func() {
		defer eb.wg.Done()
		_ = eb.Publish(context.WithoutCancel(ctx), event)
	}()
}

// Wait blocks until detached publications have finished.
func (eb *EventBus) Wait() {
	eb.wg.Wait()
}

func (eb *EventBus) subscriberCount(eventType string) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.handlers[eventType])
}

// Wildcard subscribes to every event type.
const Wildcard = "*"

// Domain event types.
const (
	EventTypeOpportunityCreated = "opportunity.created"
	EventTypeOpportunityUpdated = "opportunity.updated"
	EventTypeOpportunityDeleted = "opportunity.deleted"
	EventTypeApplicationCreated = "application.created"
	EventTypeApplicationDeleted = "application.deleted"
	EventTypeSlotsExhausted     = "application.slots_exhausted"
	EventTypeSessionIssued      = "session.issued"
)

// Payload keys shared by publishers and subscribers.
const (
	PayloadOpportunityID     = "opportunityId"
	PayloadApplicationID     = "applicationId"
	PayloadOrganizationEmail = "organizationEmail"
	PayloadVolunteerEmail    = "volunteerEmail"
	PayloadVolunteerName     = "volunteerName"
	PayloadTitle             = "title"
	PayloadEmail             = "email"
)
