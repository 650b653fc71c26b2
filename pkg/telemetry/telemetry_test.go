package telemetry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"github.com/teslashibe/go-gaze/pkg/gaze"
)

// mockRedis records publishes and sets
type mockRedis struct {
	mu         sync.Mutex
	published  map[string][][]byte
	sets       map[string][]byte
	publishErr error
	closed     bool
}

func newMockRedis() *mockRedis {
	return &mockRedis{
		published: make(map[string][][]byte),
		sets:      make(map[string][]byte),
	}
}

func (m *mockRedis) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.publishErr != nil {
		return redis.NewIntResult(0, m.publishErr)
	}
	m.published[channel] = append(m.published[channel], message.([]byte))
	return redis.NewIntResult(1, nil)
}

func (m *mockRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets[key] = value.([]byte)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockRedis) Close() error {
	m.closed = true
	return nil
}

func TestRedisPublisher_DirectionEvent(t *testing.T) {
	mock := newMockRedis()
	p := NewRedisPublisherWithClient(mock, "gaze:events", "gaze:baseline")

	if err := p.Publish(context.Background(), DirectionChanged(gaze.Center, gaze.Left)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	msgs := mock.published["gaze:events"]
	if len(msgs) != 1 {
		t.Fatalf("published %d messages, want 1", len(msgs))
	}
	var got Event
	if err := jsoniter.Unmarshal(msgs[0], &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Type != EventDirection || got.Direction != gaze.Left || got.Previous != gaze.Center {
		t.Errorf("event = %+v", got)
	}
	if len(mock.sets) != 0 {
		t.Error("direction events must not touch the baseline key")
	}
}

func TestRedisPublisher_CalibratedStoresBaseline(t *testing.T) {
	mock := newMockRedis()
	p := NewRedisPublisherWithClient(mock, "gaze:events", "gaze:baseline")

	var b gaze.Baseline
	b[gaze.RightEyelid] = 0.42
	if err := p.Publish(context.Background(), Calibrated(b, 1)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	stored, ok := mock.sets["gaze:baseline"]
	if !ok {
		t.Fatal("baseline not stored")
	}
	var got Event
	if err := jsoniter.Unmarshal(stored, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Baseline["right_eyelid"] != 0.42 || got.Cycle != 1 {
		t.Errorf("stored event = %+v", got)
	}
}

func TestRedisPublisher_Error(t *testing.T) {
	mock := newMockRedis()
	mock.publishErr = errors.New("connection refused")
	p := NewRedisPublisherWithClient(mock, "c", "k")

	if err := p.Publish(context.Background(), NewEvent(EventRecalibrating)); err == nil {
		t.Error("expected publish error")
	}
	p.Close()
	if !mock.closed {
		t.Error("Close must close the client")
	}
}

func TestNewEvent_UniqueIDs(t *testing.T) {
	a, b := NewEvent(EventCommand), NewEvent(EventCommand)
	if a.ID == b.ID {
		t.Error("event IDs must be unique")
	}
	if a.Time.IsZero() {
		t.Error("event time not set")
	}
}

func TestEventJSONOmitsUnsetDirection(t *testing.T) {
	data, err := jsoniter.Marshal(NewEvent(EventRecalibrating))
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]interface{}
	jsoniter.Unmarshal(data, &raw)
	if _, ok := raw["direction"]; ok {
		t.Errorf("unset direction encoded: %s", data)
	}
}
