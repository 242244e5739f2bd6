package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"volunteer-hub/internal/shared/eventbus"
	"volunteer-hub/internal/shared/logger"

	"github.com/redis/go-redis/v9"
)

// StreamClient is the part of the Redis client the event store uses.
type StreamClient interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	XRevRangeN(ctx context.Context, stream, start, stop string, count int64) *redis.XMessageSliceCmd
}

// RedisEventStore appends domain events to a Redis stream so that other
// processes can follow them.
type RedisEventStore struct {
	client StreamClient
	stream string
	maxLen int64
	logger logger.Logger
}

// NewRedisEventStore creates a store writing to stream, trimmed to about
// maxLen entries. A maxLen of 0 disables trimming.
func NewRedisEventStore(client StreamClient, stream string, maxLen int64, log logger.Logger) *RedisEventStore {
	if log == nil {
		log = logger.NoopLogger{}
	}
	return &RedisEventStore{
		client: client,
		stream: stream,
		maxLen: maxLen,
		logger: log.WithComponent("redis_event_store"),
	}
}

// Subscribe registers the store for every event on the bus.
func (r *RedisEventStore) Subscribe(bus *eventbus.EventBus) {
	bus.Subscribe(eventbus.Wildcard, r.StoreEvent)
}

// StoreEvent appends one event to the stream.
func (r *RedisEventStore) StoreEvent(ctx context.Context, event eventbus.Event) error {
	values, err := streamValues(event)
	if err != nil {
		r.logger.Errorf("Failed to serialize event %s: %v", event.ID, err)
		return err
	}

	args := &redis.XAddArgs{
		Stream: r.stream,
		Values: values,
	}
	if r.maxLen > 0 {
		args.MaxLen = r.maxLen
		args.Approx = true
	}

	id, err := r.client.XAdd(ctx, args).Result()
	if err != nil {
		r.logger.WithFields(map[string]interface{}{
			"stream":    r.stream,
			"eventType": event.Type,
		}).Errorf("Failed to store event in Redis: %v", err)
		return err
	}

	r.logger.Debugf("Event %s stored in %s as %s", event.Type, r.stream, id)
	return nil
}

// Recent returns up to count events, newest first.
func (r *RedisEventStore) Recent(ctx context.Context, count int64) ([]eventbus.Event, error) {
	msgs, err := r.client.XRevRangeN(ctx, r.stream, "+", "-", count).Result()
	if err != nil {
		if err == redis.Nil {
			return []eventbus.Event{}, nil
		}
		return nil, err
	}

	events := make([]eventbus.Event, 0, len(msgs))
	for _, msg := range msgs {
		event, err := eventFromValues(msg.Values)
		if err != nil {
			r.logger.Warnf("Skipping malformed stream entry %s: %v", msg.ID, err)
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

// streamValues flattens an event into stream fields. The id and email
// payload fields are lifted to the top level so consumers can filter
// without decoding the payload.
func streamValues(event eventbus.Event) (map[string]interface{}, error) {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return nil, err
	}
	values := map[string]interface{}{
		"id":        event.ID,
		"type":      event.Type,
		"source":    event.Source,
		"timestamp": event.Timestamp.UnixNano(),
		"payload":   string(payload),
	}
	for _, key := range []string{
		eventbus.PayloadOpportunityID,
		eventbus.PayloadApplicationID,
		eventbus.PayloadOrganizationEmail,
		eventbus.PayloadVolunteerEmail,
		eventbus.PayloadEmail,
	} {
		if v := event.StringField(key); v != "" {
			values[key] = v
		}
	}
	return values, nil
}

func eventFromValues(values map[string]interface{}) (eventbus.Event, error) {
	var event eventbus.Event
	str := func(key string) string {
		s, _ := values[key].(string)
		return s
	}

	event.ID = str("id")
	event.Type = str("type")
	event.Source = str("source")
	if event.Type == "" {
		return event, fmt.Errorf("missing event type")
	}

	if ts := str("timestamp"); ts != "" {
		nanos, err := strconv.ParseInt(ts, 10, 64)
		if err != nil {
			return event, fmt.Errorf("invalid timestamp %q: %w", ts, err)
		}
		event.Timestamp = time.Unix(0, nanos).UTC()
	}

	event.Payload = map[string]interface{}{}
	if p := str("payload"); p != "" {
		if err := json.Unmarshal([]byte(p), &event.Payload); err != nil {
			return event, fmt.Errorf("invalid payload: %w", err)
		}
	}
	return event, nil
}
