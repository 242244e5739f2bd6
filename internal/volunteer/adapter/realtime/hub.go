// Package realtime fans application events out to the organizations that
// own the affected opportunities.
package realtime

import (
	"context"
	"strings"
	"sync"
	"time"

	"volunteer-hub/internal/shared/eventbus"
	"volunteer-hub/internal/shared/logger"

	"github.com/google/uuid"
)

// defaultBuffer is the number of undelivered messages kept per subscriber.
const defaultBuffer = 32

// FeedMessage is one notification pushed to an organization.
type FeedMessage struct {
	Type           string    `json:"type"`
	ApplicationID  string    `json:"applicationId,omitempty"`
	OpportunityID  string    `json:"opportunityId,omitempty"`
	VolunteerEmail string    `json:"volunteerEmail,omitempty"`
	VolunteerName  string    `json:"volunteerName,omitempty"`
	Title          string    `json:"title,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

type subscriber struct {
	id    string
	email string
	out   chan FeedMessage
}

// Hub keeps the open feed subscriptions keyed by subscriber id.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]*subscriber
	buffer int
	log    logger.Logger
}

// NewHub creates an empty hub.
func NewHub(log logger.Logger) *Hub {
	if log == nil {
		log = logger.NoopLogger{}
	}
	return &Hub{
		subs:   make(map[string]*subscriber),
		buffer: defaultBuffer,
		log:    log.WithComponent("feed_hub"),
	}
}

// Attach subscribes the hub to the application events of bus.
func (h *Hub) Attach(bus *eventbus.EventBus) {
	bus.Subscribe(eventbus.EventTypeApplicationCreated, h.HandleEvent)
	bus.Subscribe(eventbus.EventTypeApplicationDeleted, h.HandleEvent)
}

// Subscribe registers a feed for organizationEmail. The returned channel is
// closed by Unsubscribe or Close.
func (h *Hub) Subscribe(organizationEmail string) (string, <-chan FeedMessage) {
	s := &subscriber{
		id:    uuid.NewString(),
		email: normalize(organizationEmail),
		out:   make(chan FeedMessage, h.buffer),
	}

	h.mu.Lock()
	h.subs[s.id] = s
	h.mu.Unlock()

	h.log.Debugf("Feed subscriber %s registered for %s", s.id, s.email)
	return s.id, s.out
}

// Unsubscribe removes a feed and closes its channel. Unknown ids are ignored.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	s, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
	}
	h.mu.Unlock()

	if ok {
		close(s.out)
	}
}

// HandleEvent delivers an application event to every feed of its
// organization. A subscriber whose buffer is full misses the message.
func (h *Hub) HandleEvent(ctx context.Context, event eventbus.Event) error {
	email := normalize(event.StringField(eventbus.PayloadOrganizationEmail))
	if email == "" {
		return nil
	}

	msg := FeedMessage{
		Type:           event.Type,
		ApplicationID:  event.StringField(eventbus.PayloadApplicationID),
		OpportunityID:  event.StringField(eventbus.PayloadOpportunityID),
		VolunteerEmail: event.StringField(eventbus.PayloadVolunteerEmail),
		VolunteerName:  event.StringField(eventbus.PayloadVolunteerName),
		Title:          event.StringField(eventbus.PayloadTitle),
		Timestamp:      event.Timestamp,
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.subs {
		if s.email != email {
			continue
		}
		select {
		case s.out <- msg:
		default:
			h.log.Warnf("Feed subscriber %s is not keeping up, dropped %s", s.id, event.Type)
		}
	}
	return nil
}

// Count returns the number of open feeds.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close drops every subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := h.subs
	h.subs = make(map[string]*subscriber)
	h.mu.Unlock()

	for _, s := range subs {
		close(s.out)
	}
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
