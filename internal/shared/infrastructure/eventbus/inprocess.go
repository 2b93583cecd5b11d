package eventbus

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Handler consumes one event.
type Handler func(ctx context.Context, event Envelope) error

type subscription struct {
	pattern string
	handler Handler
}

// InProcessBus dispatches events synchronously to subscribers registered
// with AMQP topic patterns, so local mode behaves like the broker.
// Handler failures are logged and never fail the publish.
type InProcessBus struct {
	mu     sync.RWMutex
	subs   []subscription
	logger *slog.Logger
}

func NewInProcessBus(logger *slog.Logger) *InProcessBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessBus{logger: logger}
}

// Subscribe registers handler for routing keys matching pattern. "*" matches
// exactly one dot-separated word, "#" matches zero or more.
func (b *InProcessBus) Subscribe(pattern string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, subscription{pattern: pattern, handler: handler})
}

// SubscriberCount returns the number of registered subscriptions.
func (b *InProcessBus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *InProcessBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	env, err := DecodeEnvelope(routingKey, payload)
	if err != nil {
		b.logger.Error("undecodable event payload", "routing_key", routingKey, "error", err)
		return nil
	}

	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	start := time.Now()
	delivered := 0
	for _, s := range subs {
		if !MatchRoutingKey(s.pattern, env.RoutingKey) {
			continue
		}
		delivered++
		if err := s.handler(ctx, env); err != nil {
			b.logger.Error("event handler failed",
				"routing_key", env.RoutingKey,
				"event_id", env.EventID,
				"pattern", s.pattern,
				"error", err,
			)
		}
	}

	b.logger.Debug("event dispatched",
		"routing_key", env.RoutingKey,
		"event_id", env.EventID,
		"handlers", delivered,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (b *InProcessBus) Close() error { return nil }

// MatchRoutingKey applies AMQP topic matching.
func MatchRoutingKey(pattern, key string) bool {
	return matchWords(strings.Split(pattern, "."), strings.Split(key, "."))
}

func matchWords(pattern, key []string) bool {
	if len(pattern) == 0 {
		return len(key) == 0
	}
	switch pattern[0] {
	case "#":
		for i := 0; i <= len(key); i++ {
			if matchWords(pattern[1:], key[i:]) {
				return true
			}
		}
		return false
	case "*":
		return len(key) > 0 && matchWords(pattern[1:], key[1:])
	}
	return len(key) > 0 && pattern[0] == key[0] && matchWords(pattern[1:], key[1:])
}
