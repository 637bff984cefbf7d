package events

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/quentin/tickvault/internal/logger"
)

// Handler receives one published event. The event's concrete type matches
// the prototype the handler was subscribed with.
type Handler func(event interface{})

// Publisher is the in-process event bus between the ingestion core and
// the downstream bounded contexts. Delivery is synchronous: Publish
// invokes every handler registered for the event's exact type, in
// registration order, on the calling goroutine.
//
// A panicking handler must not stop delivery to later handlers and must
// not escape Publish; downstream contexts are independent and one's bug
// cannot be allowed to starve the others of events. Each handler runs
// under its own recover; failures are logged and swallowed.
type Publisher struct {
	mu       sync.RWMutex
	handlers map[reflect.Type][]Handler
	logger   *logger.Logger
}

// NewPublisher creates an empty publisher.
func NewPublisher(log *logger.Logger) *Publisher {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Publisher{
		handlers: make(map[reflect.Type][]Handler),
		logger:   log,
	}
}

// Subscribe registers a handler for events of the prototype's exact
// concrete type. Subtype or interface matching is not performed.
// Parameters:
//   - prototype: a value of the event type to subscribe to.
//   - h: handler invoked synchronously on publish.
func (p *Publisher) Subscribe(prototype interface{}, h Handler) {
	t := reflect.TypeOf(prototype)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[t] = append(p.handlers[t], h)
}

// Publish delivers the event to all handlers registered for its exact
// type, in registration order. It always returns; handler panics are
// contained.
// Parameters:
//   - event: event value to deliver.
func (p *Publisher) Publish(event interface{}) {
	t := reflect.TypeOf(event)

	p.mu.RLock()
	handlers := make([]Handler, len(p.handlers[t]))
	copy(handlers, p.handlers[t])
	p.mu.RUnlock()

	for i, h := range handlers {
		p.dispatch(t, i, h, event)
	}
}

// SubscriberCount returns the number of handlers registered for the
// prototype's type.
func (p *Publisher) SubscriberCount(prototype interface{}) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.handlers[reflect.TypeOf(prototype)])
}

// dispatch runs one handler under its own recover boundary.
func (p *Publisher) dispatch(t reflect.Type, idx int, h Handler, event interface{}) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.WithFields(logger.Fields{
				"event_type": t.String(),
				"handler":    idx,
				"panic":      fmt.Sprintf("%v", r),
			}).Error("Event handler panicked; continuing delivery")
		}
	}()
	h(event)
}
