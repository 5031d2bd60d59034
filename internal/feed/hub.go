package feed

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/tagcord/tagcord-backend/internal/app/service"
	"github.com/tagcord/tagcord-backend/pkg/logger"
)

// Planner executes a canonical listing descriptor. Satisfied by
// service.ListingService.
type Planner interface {
	Plan(ctx context.Context, descriptor service.ListingDescriptor) (*service.ListingPage, error)
	PageSize() int
}

// WatchMessage is what a client sends to set or change its listing
// query. The hub normalizes it into a descriptor and remembers it.
type WatchMessage struct {
	Type       string   `json:"type"` // "watch"
	Text       string   `json:"text"`
	Categories []string `json:"categories"`
	Sort       string   `json:"sort"`
	Page       int      `json:"page"`
}

// PageMessage is pushed to a subscriber: the full current page for its
// descriptor. No diffing or partial patches, always a full replace.
type PageMessage struct {
	Type       string                    `json:"type"` // "page"
	Descriptor service.ListingDescriptor `json:"descriptor"`
	Page       *service.ListingPage      `json:"page"`
}

// ErrorMessage is pushed when a watch request cannot be served.
type ErrorMessage struct {
	Type string `json:"type"` // "error"
	Code string `json:"code"`
}

// Hub tracks listing subscribers and re-plans their last-used descriptor
// whenever the tag store changes. One goroutine owns the subscriber set.
type Hub struct {
	planner Planner

	subscribers map[*Subscriber]bool

	register   chan *Subscriber
	unregister chan *Subscriber

	// Every tag mutation lands here. A full re-plan per subscriber follows
	// without debounce: consistency over efficiency.
	invalidate chan struct{}

	mu sync.RWMutex
}

func NewHub(planner Planner) *Hub {
	return &Hub{
		planner:     planner,
		subscribers: make(map[*Subscriber]bool),
		register:    make(chan *Subscriber, 64),
		unregister:  make(chan *Subscriber, 64),
		invalidate:  make(chan struct{}, 1),
	}
}

// Run owns the subscriber set. Call once in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case subscriber := <-h.register:
			h.mu.Lock()
			h.subscribers[subscriber] = true
			total := len(h.subscribers)
			h.mu.Unlock()
			logger.Info("Feed subscriber registered", map[string]interface{}{
				"user_id":           subscriber.UserID,
				"total_subscribers": total,
			})

		case subscriber := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.subscribers[subscriber]; ok {
				delete(h.subscribers, subscriber)
				close(subscriber.Send)
			}
			total := len(h.subscribers)
			h.mu.Unlock()
			logger.Info("Feed subscriber unregistered", map[string]interface{}{
				"user_id":           subscriber.UserID,
				"total_subscribers": total,
			})

		case <-h.invalidate:
			h.replanAll()
		}
	}
}

// NotifyChanged signals that the tag store changed. Non-blocking: if an
// invalidation is already pending, the coming re-plan covers this change too.
func (h *Hub) NotifyChanged() {
	select {
	case h.invalidate <- struct{}{}:
	default:
	}
}

// Register adds a subscriber to the hub.
func (h *Hub) Register(subscriber *Subscriber) {
	h.register <- subscriber
}

// Unregister removes a subscriber and closes its send channel.
func (h *Hub) Unregister(subscriber *Subscriber) {
	h.unregister <- subscriber
}

// SubscriberCount reports the number of active subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

func (h *Hub) replanAll() {
	h.mu.RLock()
	subscribers := make([]*Subscriber, 0, len(h.subscribers))
	for subscriber := range h.subscribers {
		subscribers = append(subscribers, subscriber)
	}
	h.mu.RUnlock()

	for _, subscriber := range subscribers {
		h.pushPage(subscriber)
	}
}

// HandleWatch normalizes a subscriber's requested query, stores it as
// the subscriber's descriptor and immediately pushes the first page.
func (h *Hub) HandleWatch(subscriber *Subscriber, raw []byte) {
	var msg WatchMessage
	if err := json.Unmarshal(raw, &msg); err != nil || msg.Type != "watch" {
		return
	}

	descriptor, err := service.NormalizeListing(service.ListingParams{
		Text:       msg.Text,
		Categories: msg.Categories,
		Sort:       msg.Sort,
		Page:       msg.Page,
		PageSize:   h.planner.PageSize(),
	})
	if err != nil {
		subscriber.trySend(mustMarshal(ErrorMessage{Type: "error", Code: "QUERY_INVALID"}))
		return
	}

	subscriber.setDescriptor(descriptor)
	h.pushPage(subscriber)
}

func (h *Hub) pushPage(subscriber *Subscriber) {
	descriptor, ok := subscriber.currentDescriptor()
	if !ok {
		return
	}

	page, err := h.planner.Plan(context.Background(), descriptor)
	if err != nil {
		logger.Error("Feed re-plan failed", err, map[string]interface{}{
			"user_id": subscriber.UserID,
			"key":     descriptor.CacheKey(),
		})
		subscriber.trySend(mustMarshal(ErrorMessage{Type: "error", Code: "STORE_UNAVAILABLE"}))
		return
	}

	subscriber.trySend(mustMarshal(PageMessage{
		Type:       "page",
		Descriptor: descriptor,
		Page:       page,
	}))
}

func mustMarshal(v interface{}) []byte {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return payload
}
