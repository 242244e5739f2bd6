package realtime

import (
	"context"
	"testing"

	"volunteer-hub/internal/shared/eventbus"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func created(org, app string) eventbus.Event {
	return eventbus.NewEvent(eventbus.EventTypeApplicationCreated, "volunteer", map[string]interface{}{
		eventbus.PayloadOrganizationEmail: org,
		eventbus.PayloadApplicationID:     app,
		eventbus.PayloadVolunteerEmail:    "vol@example.com",
		eventbus.PayloadTitle:             "Beach",
	})
}

func TestHub_DeliversToMatchingOrganization(t *testing.T) {
	hub := NewHub(nil)
	_, mine := hub.Subscribe("Org@Example.com")
	_, other := hub.Subscribe("other@example.com")

	require.NoError(t, hub.HandleEvent(context.Background(), created("org@example.com", "a1")))

	select {
	case msg := <-mine:
		assert.Equal(t, eventbus.EventTypeApplicationCreated, msg.Type)
		assert.Equal(t, "a1", msg.ApplicationID)
		assert.Equal(t, "Beach", msg.Title)
	default:
		t.Fatal("expected a message for the owning organization")
	}
	assert.Len(t, other, 0)
}

func TestHub_IgnoresEventsWithoutOrganization(t *testing.T) {
	hub := NewHub(nil)
	_, ch := hub.Subscribe("org@example.com")

	require.NoError(t, hub.HandleEvent(context.Background(), created("", "a1")))
	assert.Len(t, ch, 0)
}

func TestHub_DropsWhenBufferFull(t *testing.T) {
	hub := NewHub(nil)
	hub.buffer = 1
	_, ch := hub.Subscribe("org@example.com")

	ctx := context.Background()
	require.NoError(t, hub.HandleEvent(ctx, created("org@example.com", "a1")))
	require.NoError(t, hub.HandleEvent(ctx, created("org@example.com", "a2")))

	assert.Len(t, ch, 1)
	assert.Equal(t, "a1", (<-ch).ApplicationID)
}

func TestHub_UnsubscribeAndClose(t *testing.T) {
	hub := NewHub(nil)
	id, ch := hub.Subscribe("org@example.com")
	_, ch2 := hub.Subscribe("org@example.com")
	assert.Equal(t, 2, hub.Count())

	hub.Unsubscribe(id)
	hub.Unsubscribe(id)
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 1, hub.Count())

	hub.Close()
	_, open = <-ch2
	assert.False(t, open)
	assert.Zero(t, hub.Count())
}

func TestHub_AttachToBus(t *testing.T) {
	bus := eventbus.NewEventBus(nil)
	hub := NewHub(nil)
	hub.Attach(bus)
	_, ch := hub.Subscribe("org@example.com")

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, created("org@example.com", "a1")))
	require.NoError(t, bus.Publish(ctx, eventbus.NewEvent(eventbus.EventTypeApplicationDeleted, "volunteer", map[string]interface{}{
		eventbus.PayloadOrganizationEmail: "org@example.com",
		eventbus.PayloadApplicationID:     "a1",
	})))
	require.NoError(t, bus.Publish(ctx, eventbus.NewEvent(eventbus.EventTypeOpportunityCreated, "volunteer", map[string]interface{}{
		eventbus.PayloadOrganizationEmail: "org@example.com",
	})))

	require.Len(t, ch, 2)
	assert.Equal(t, eventbus.EventTypeApplicationCreated, (<-ch).Type)
	assert.Equal(t, eventbus.EventTypeApplicationDeleted, (<-ch).Type)
}
