package hub

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	jsoniter "github.com/json-iterator/go"

	"github.com/teslashibe/go-gaze/internal/log"
)

// Hub routes topic messages to subscribed clients. The latest message per
// topic is retained and sent to each new subscriber first.
type Hub struct {
	logger *slog.Logger

	publish    chan Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{} // closed when Run returns

	mu       sync.RWMutex
	subs     map[string]map[*Client]struct{}
	retained map[string][]byte

	running atomic.Bool
}

// New creates a hub. Call Run before publishing.
func New() *Hub {
	return &Hub{
		logger:     log.With("component", "hub"),
		publish:    make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		subs:       make(map[string]map[*Client]struct{}),
		retained:   make(map[string][]byte),
	}
}

// Run serves subscriptions until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	h.running.Store(true)
	defer func() {
		h.running.Store(false)
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for topic, clients := range h.subs {
				for c := range clients {
					close(c.queue)
				}
				delete(h.subs, topic)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			if h.subs[c.topic] == nil {
				h.subs[c.topic] = make(map[*Client]struct{})
			}
			h.subs[c.topic][c] = struct{}{}
			if data, ok := h.retained[c.topic]; ok {
				c.queue <- data
			}
			n := len(h.subs[c.topic])
			h.mu.Unlock()
			h.logger.Info("subscriber connected", "topic", c.topic, "subscribers", n)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.subs[c.topic][c]; ok {
				delete(h.subs[c.topic], c)
				close(c.queue)
			}
			n := len(h.subs[c.topic])
			h.mu.Unlock()
			h.logger.Info("subscriber disconnected", "topic", c.topic, "subscribers", n)

		case msg := <-h.publish:
			h.mu.Lock()
			h.retained[msg.Topic] = msg.Data
			for c := range h.subs[msg.Topic] {
				select {
				case c.queue <- msg.Data:
				default:
					close(c.queue)
					delete(h.subs[msg.Topic], c)
					h.logger.Warn("dropped slow subscriber", "topic", msg.Topic)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish queues msg for delivery. It never blocks; when the queue is full
// the message is dropped.
func (h *Hub) Publish(msg Message) {
	select {
	case h.publish <- msg:
	default:
		h.logger.Warn("publish queue full, dropping message", "topic", msg.Topic)
	}
}

// PublishJSON encodes v and publishes it on topic.
func (h *Hub) PublishJSON(topic string, v any) error {
	data, err := jsoniter.Marshal(v)
	if err != nil {
		return err
	}
	h.Publish(Message{Topic: topic, Data: data})
	return nil
}

// Subscribers returns the number of clients on topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topic])
}

// IsRunning reports whether Run is active.
func (h *Hub) IsRunning() bool {
	return h.running.Load()
}
