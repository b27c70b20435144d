// Package recording captures GPS walks: a geolocation tracker feeds a distance
// accumulator inside a per-user actor, and a stopped session can be saved as a route.
package recording

import (
	"errors"
	"fmt"
	"time"

	"backend-chillwalk/internal/shared/geo"
)

// Geolocation error codes, matching the browser Geolocation API.
const (
	CodeUnsupported      = 0
	CodePermissionDenied = 1
	CodeUnavailable      = 2
	CodeTimeout          = 3
)

var ErrNotWatching = errors.New("no active position watch")

type FixError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *FixError) Error() string {
	return fmt.Sprintf("geolocation error %d: %s", e.Code, e.Message)
}

// Fix is a single delivery from a position source: a coordinate or an error.
type Fix struct {
	Point geo.Point
	Err   *FixError
}

type WatchOptions struct {
	HighAccuracy bool
	MaximumAge   time.Duration
	// Timeout bounds the wait for each fix. Zero disables it.
	Timeout time.Duration
}

func DefaultWatchOptions(timeout time.Duration) WatchOptions {
	return WatchOptions{HighAccuracy: true, MaximumAge: 0, Timeout: timeout}
}

// Subscription yields fixes in delivery order until cancelled.
type Subscription interface {
	Fixes() <-chan Fix
	Cancel()
}

type PositionSource interface {
	Watch(opts WatchOptions) (Subscription, error)
}

// Tracker is the idle/watching state machine over a PositionSource. It is not
// safe for concurrent use; the Recorder owns it.
type Tracker struct {
	source   PositionSource
	opts     WatchOptions
	sub      Subscription
	position *geo.Point
	err      *FixError
}

func NewTracker(source PositionSource, opts WatchOptions) *Tracker {
	return &Tracker{source: source, opts: opts}
}

func (t *Tracker) Watching() bool { return t.sub != nil }

func (t *Tracker) Start() error {
	if t.sub != nil {
		return nil
	}
	sub, err := t.source.Watch(t.opts)
	if err != nil {
		return fmt.Errorf("watch position: %w", err)
	}
	t.sub = sub
	return nil
}

// Stop cancels the subscription. Fixes queued before the call are dropped.
func (t *Tracker) Stop() {
	if t.sub == nil {
		return
	}
	t.sub.Cancel()
	t.sub = nil
}

// Fixes is nil while idle so a select on it never fires.
func (t *Tracker) Fixes() <-chan Fix {
	if t.sub == nil {
		return nil
	}
	return t.sub.Fixes()
}

// Handle applies a fix. A coordinate clears any previous error and is
// returned; an error is recorded and watching continues.
func (t *Tracker) Handle(f Fix) (geo.Point, bool) {
	if t.sub == nil {
		return geo.Point{}, false
	}
	if f.Err != nil {
		t.err = f.Err
		return geo.Point{}, false
	}
	p := f.Point
	t.position = &p
	t.err = nil
	return p, true
}

func (t *Tracker) TimedOut() {
	t.err = &FixError{Code: CodeTimeout, Message: "timeout expired"}
}

func (t *Tracker) Err() *FixError { return t.err }

func (t *Tracker) Position() (geo.Point, bool) {
	if t.position == nil {
		return geo.Point{}, false
	}
	return *t.position, true
}

func (t *Tracker) Reset() {
	t.Stop()
	t.position = nil
	t.err = nil
}
