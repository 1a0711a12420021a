package websocket

import (
	"context"
	"sync"

	"github.com/saferoute-app/saferoute-server/internal/nav"
)

const feedBuffer = 16

// positionFeed bridges position fixes arriving on a navigation socket to the
// controller's position subscription. Subscribing closes any prior
// subscription first, so at most one consumer is ever attached.
type positionFeed struct {
	mu      sync.Mutex
	current *feedSub
}

func (f *positionFeed) Subscribe(_ context.Context) (nav.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current != nil {
		f.current.shutOff()
	}
	sub := &feedSub{ch: make(chan nav.Position, feedBuffer)}
	f.current = sub
	return sub, nil
}

// Offer delivers a fix to the active subscription, dropping it when the
// consumer is behind or nothing is subscribed.
func (f *positionFeed) Offer(position nav.Position) {
	f.mu.Lock()
	sub := f.current
	f.mu.Unlock()
	if sub == nil {
		return
	}
	sub.offer(position)
}

func (f *positionFeed) Shutdown() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current != nil {
		f.current.shutOff()
		f.current = nil
	}
}

type feedSub struct {
	mu     sync.Mutex
	ch     chan nav.Position
	closed bool
}

func (s *feedSub) Updates() <-chan nav.Position {
	return s.ch
}

func (s *feedSub) Close() error {
	s.shutOff()
	return nil
}

func (s *feedSub) shutOff() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

func (s *feedSub) offer(position nav.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- position:
	default:
	}
}
