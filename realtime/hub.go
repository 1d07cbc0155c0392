package realtime

import (
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Event is a row-change notification fanned out to subscribers.
type Event struct {
	Channel string      `json:"channel"`
	Table   string      `json:"table"`
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

// Subscription is a disposable handle returned by Hub.Subscribe.
type Subscription struct {
	name    string
	handler func(Event)
	hub     *Hub
	once    sync.Once
}

// Close removes the subscription from its hub. Safe to call twice.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
	})
}

// Hub routes change events to named subscriptions. It is a scoped object
// owned by the process entry point rather than hidden package state; its
// lifetime ends with CloseAll.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]*Subscription
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]*Subscription)}
}

// ChannelName builds the per-user channel key for an entity table, e.g.
// "messages:<user-id>".
func ChannelName(table string, userID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", table, userID)
}

// Subscribe registers a handler under a channel name. Re-subscribing the same
// name tears down the existing handle first, so a name never has more than
// one active subscription.
func (h *Hub) Subscribe(name string, handler func(Event)) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.subs[name]; ok {
		log.Printf("Replacing existing realtime subscription: %s", name)
		delete(h.subs, name)
		existing.markClosed()
	}

	sub := &Subscription{name: name, handler: handler, hub: h}
	h.subs[name] = sub
	return sub
}

// Publish delivers an event to the subscription registered under its channel,
// if any.
func (h *Hub) Publish(evt Event) {
	h.mu.RLock()
	sub, ok := h.subs[evt.Channel]
	h.mu.RUnlock()

	if ok {
		sub.handler(evt)
	}
}

// Len reports how many subscriptions are currently registered.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// CloseAll tears down every subscription, e.g. on logout or shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for name, sub := range h.subs {
		delete(h.subs, name)
		sub.markClosed()
	}
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if current, ok := h.subs[s.name]; ok && current == s {
		delete(h.subs, s.name)
	}
}

// markClosed flags a subscription that was evicted by the hub itself so a
// later Close call does not touch the registry again.
func (s *Subscription) markClosed() {
	s.once.Do(func() {})
}
