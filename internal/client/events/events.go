// Package events carries "authentication required" notices from the session
// layer to the single controller that can prompt for credentials.
//
// Publishing is synchronous: Publish returns after the subscriber has run.
// Only one subscriber may be registered at a time.
package events

import (
	"errors"
	"sync"
)

// Reason tells the controller why credentials are being asked for.
type Reason int

const (
	// ReasonLoginRequired is published when an auth-only action was attempted
	// without a session.
	ReasonLoginRequired Reason = iota + 1
	// ReasonUnauthorized is published when the server rejected the credential.
	ReasonUnauthorized
)

func (r Reason) String() string {
	switch r {
	case ReasonLoginRequired:
		return "login required"
	case ReasonUnauthorized:
		return "session expired"
	default:
		return "unknown"
	}
}

// AuthRequired asks the controller to collect credentials.
type AuthRequired struct {
	Reason Reason
}

var ErrAlreadySubscribed = errors.New("auth events already have a subscriber")

// Handler receives published events.
type Handler func(AuthRequired)

// Bus is a single-subscriber synchronous event channel.
type Bus struct {
	mu      sync.Mutex
	handler Handler
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers h and returns a function that removes it.
func (b *Bus) Subscribe(h Handler) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handler != nil {
		return nil, ErrAlreadySubscribed
	}
	b.handler = h

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			b.handler = nil
			b.mu.Unlock()
		})
	}, nil
}

// Publish delivers ev to the subscriber, if any, and reports whether it was
// delivered.
func (b *Bus) Publish(ev AuthRequired) bool {
	b.mu.Lock()
	h := b.handler
	b.mu.Unlock()

	if h == nil {
		return false
	}
	h(ev)
	return true
}
