// Package bus is the in-process publish/subscribe hub every game component
// talks through. Delivery is synchronous: Publish returns once each handler
// registered for the topic has run, in registration order.
package bus

import (
	"log/slog"
	"sync"

	"github.com/pkg/errors"
)

// Handler reacts to one message. A returned error is logged by the bus and
// does not stop delivery to other handlers.
type Handler func(Message) error

type subscription struct {
	id int
	h  Handler
}

type Bus struct {
	mu     sync.Mutex
	nextID int
	topics [numTopics][]subscription
	all    []subscription
	logger *slog.Logger
}

func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{logger: logger.With("component", "bus")}
}

// Subscribe registers h for topic and returns its unsubscribe function.
func (b *Bus) Subscribe(topic Topic, h Handler) func() {
	if topic < 0 || topic >= numTopics {
		b.logger.Error("subscribe to unknown topic", "topic", int(topic))
		return func() {}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.topics[topic] = append(b.topics[topic], subscription{id: id, h: h})
	b.logger.Debug("added listener", "topic", topic.String(), "total", len(b.topics[topic]))
	return func() { b.remove(topic, id) }
}

// SubscribeAll registers h for every topic. Such handlers run after the
// topic's own handlers.
func (b *Bus) SubscribeAll(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.all = append(b.all, subscription{id: id, h: h})
	return func() { b.remove(-1, id) }
}

func (b *Bus) remove(topic Topic, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := &b.all
	if topic >= 0 {
		list = &b.topics[topic]
	}
	kept := make([]subscription, 0, len(*list))
	for _, s := range *list {
		if s.id != id {
			kept = append(kept, s)
		}
	}
	*list = kept
}

func (b *Bus) Publish(msg Message) {
	if msg == nil {
		return
	}
	topic := msg.Topic()
	b.mu.Lock()
	subs := make([]subscription, 0, len(b.topics[topic])+len(b.all))
	subs = append(subs, b.topics[topic]...)
	subs = append(subs, b.all...)
	b.mu.Unlock()

	b.logger.Debug("emit", "topic", topic.String(), "payload", msg, "handlers", len(subs))
	for _, s := range subs {
		if err := b.deliver(s.h, msg); err != nil {
			b.logger.Error("handler failed", "topic", topic.String(), "err", err)
		}
	}
}

func (b *Bus) deliver(h Handler, msg Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic: %v", r)
		}
	}()
	return h(msg)
}

// Count reports the handlers registered for topic, excluding SubscribeAll.
func (b *Bus) Count(topic Topic) int {
	if topic < 0 || topic >= numTopics {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.topics[topic])
}

// On subscribes a handler typed by its message struct.
func On[M Message](b *Bus, h func(M) error) func() {
	var zero M
	return b.Subscribe(zero.Topic(), func(msg Message) error {
		m, ok := msg.(M)
		if !ok {
			return errors.Errorf("unexpected payload %T for %v", msg, zero.Topic())
		}
		return h(m)
	})
}
