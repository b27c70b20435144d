package recording

import "sync"

const pushBuffer = 64

// PushSource is a PositionSource fed by clients over HTTP. At most one
// subscription is active; a new Watch replaces the previous one.
type PushSource struct {
	mu  sync.Mutex
	sub *pushSubscription
}

func NewPushSource() *PushSource {
	return &PushSource{}
}

type pushSubscription struct {
	src  *PushSource
	ch   chan Fix
	done chan struct{}
	once sync.Once
}

func (p *PushSource) Watch(_ WatchOptions) (Subscription, error) {
	sub := &pushSubscription{src: p, ch: make(chan Fix, pushBuffer), done: make(chan struct{})}
	p.mu.Lock()
	prev := p.sub
	p.sub = sub
	p.mu.Unlock()
	if prev != nil {
		prev.Cancel()
	}
	return sub, nil
}

// Push delivers f to the active subscription, blocking while its buffer is full.
func (p *PushSource) Push(f Fix) error {
	p.mu.Lock()
	sub := p.sub
	p.mu.Unlock()
	if sub == nil {
		return ErrNotWatching
	}
	select {
	case <-sub.done:
		return ErrNotWatching
	default:
	}
	select {
	case sub.ch <- f:
		return nil
	case <-sub.done:
		return ErrNotWatching
	}
}

func (s *pushSubscription) Fixes() <-chan Fix { return s.ch }

func (s *pushSubscription) Cancel() {
	s.once.Do(func() {
		close(s.done)
		s.src.mu.Lock()
		if s.src.sub == s {
			s.src.sub = nil
		}
		s.src.mu.Unlock()
	})
}
