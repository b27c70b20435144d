package recording

import (
	"errors"
	"time"

	"backend-chillwalk/internal/shared/geo"

	"github.com/google/uuid"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusRecording Status = "recording"
	StatusStopped   Status = "stopped"
)

var (
	ErrAlreadyRecording = errors.New("a recording is already in progress")
	ErrNotRecording     = errors.New("no recording in progress")
	ErrClosed           = errors.New("recorder closed")
)

// Snapshot is a copy of a session's state at one instant.
type Snapshot struct {
	SessionID  string      `json:"session_id,omitempty"`
	Status     Status      `json:"status"`
	Points     []geo.Point `json:"points"`
	DistanceM  float64     `json:"distance_m"`
	ElapsedSec int         `json:"elapsed_sec"`
	Position   *geo.Point  `json:"position,omitempty"`
	Error      *FixError   `json:"error,omitempty"`
	StartedAt  *time.Time  `json:"started_at,omitempty"`
}

type Options struct {
	Watch WatchOptions
	// OnChange runs on the recorder goroutine after every state change and must not block.
	OnChange func(Snapshot)

	newTicker func(time.Duration) (<-chan time.Time, func())
}

func systemTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

type cmdKind int

const (
	cmdStart cmdKind = iota
	cmdStop
	cmdDiscard
	cmdSnapshot
	cmdClose
)

type command struct {
	kind      cmdKind
	sessionID string
	reply     chan result
}

type result struct {
	snap Snapshot
	err  error
}

// Recorder owns one RecordingSession. Position fixes, one-second ticks and
// commands are serialised on a single goroutine, so once Stop returns the
// session no longer changes.
type Recorder struct {
	cmds chan command
	done chan struct{}

	// Owned by the run goroutine.
	tracker   *Tracker
	acc       Accumulator
	status    Status
	sessionID string
	startedAt time.Time
	elapsed   int
	tick      <-chan time.Time
	stopTick  func()
	timeout   *time.Timer
	opts      Options
}

func NewRecorder(source PositionSource, opts Options) *Recorder {
	if opts.newTicker == nil {
		opts.newTicker = systemTicker
	}
	r := &Recorder{
		cmds:    make(chan command),
		done:    make(chan struct{}),
		tracker: NewTracker(source, opts.Watch),
		status:  StatusIdle,
		opts:    opts,
	}
	go r.run()
	return r
}

func (r *Recorder) Start() (Snapshot, error) { return r.call(cmdStart, "") }

func (r *Recorder) Stop() (Snapshot, error) { return r.call(cmdStop, "") }

// Discard resets the session to idle. A non-empty sessionID only discards that session.
func (r *Recorder) Discard(sessionID string) (Snapshot, error) { return r.call(cmdDiscard, sessionID) }

func (r *Recorder) Snapshot() (Snapshot, error) { return r.call(cmdSnapshot, "") }

// Close stops the session and the goroutine. It is safe to call twice.
func (r *Recorder) Close() {
	_, _ = r.call(cmdClose, "")
	<-r.done
}

func (r *Recorder) call(kind cmdKind, sessionID string) (Snapshot, error) {
	reply := make(chan result, 1)
	select {
	case r.cmds <- command{kind: kind, sessionID: sessionID, reply: reply}:
	case <-r.done:
		return Snapshot{Status: StatusIdle}, ErrClosed
	}
	res := <-reply
	return res.snap, res.err
}

func (r *Recorder) run() {
	defer close(r.done)
	for {
		var timeoutC <-chan time.Time
		if r.timeout != nil {
			timeoutC = r.timeout.C
		}

		select {
		case cmd := <-r.cmds:
			res := r.handle(cmd)
			cmd.reply <- res
			if cmd.kind == cmdClose {
				return
			}
		case f := <-r.tracker.Fixes():
			r.onFix(f)
		case <-r.tick:
			if r.status == StatusRecording {
				r.elapsed++
				r.notify()
			}
		case <-timeoutC:
			r.tracker.TimedOut()
			r.timeout.Reset(r.opts.Watch.Timeout)
			r.notify()
		}
	}
}

func (r *Recorder) handle(cmd command) result {
	switch cmd.kind {
	case cmdStart:
		if r.status == StatusRecording {
			return result{snap: r.snapshot(), err: ErrAlreadyRecording}
		}
		r.reset()
		if err := r.tracker.Start(); err != nil {
			return result{snap: r.snapshot(), err: err}
		}
		r.status = StatusRecording
		r.sessionID = uuid.NewString()
		r.startedAt = time.Now()
		r.tick, r.stopTick = r.opts.newTicker(time.Second)
		if r.opts.Watch.Timeout > 0 {
			r.timeout = time.NewTimer(r.opts.Watch.Timeout)
		}
	case cmdStop:
		if r.status != StatusRecording {
			return result{snap: r.snapshot(), err: ErrNotRecording}
		}
		r.halt()
		r.status = StatusStopped
	case cmdDiscard:
		if cmd.sessionID != "" && cmd.sessionID != r.sessionID {
			return result{snap: r.snapshot()}
		}
		r.reset()
	case cmdSnapshot:
		return result{snap: r.snapshot()}
	case cmdClose:
		r.reset()
		return result{snap: r.snapshot()}
	}
	r.notify()
	return result{snap: r.snapshot()}
}

func (r *Recorder) onFix(f Fix) {
	if r.status != StatusRecording {
		return
	}
	if p, ok := r.tracker.Handle(f); ok {
		r.acc.Add(p)
	}
	if r.timeout != nil {
		if !r.timeout.Stop() {
			select {
			case <-r.timeout.C:
			default:
			}
		}
		r.timeout.Reset(r.opts.Watch.Timeout)
	}
	r.notify()
}

// halt stops the ticker, the fix timeout and the position subscription together.
func (r *Recorder) halt() {
	r.tracker.Stop()
	if r.stopTick != nil {
		r.stopTick()
	}
	r.tick, r.stopTick = nil, nil
	if r.timeout != nil {
		r.timeout.Stop()
		r.timeout = nil
	}
}

func (r *Recorder) reset() {
	r.halt()
	r.tracker.Reset()
	r.acc.Reset()
	r.status = StatusIdle
	r.sessionID = ""
	r.startedAt = time.Time{}
	r.elapsed = 0
}

func (r *Recorder) snapshot() Snapshot {
	s := Snapshot{
		SessionID:  r.sessionID,
		Status:     r.status,
		Points:     r.acc.Points(),
		DistanceM:  r.acc.Meters(),
		ElapsedSec: r.elapsed,
		Error:      r.tracker.Err(),
	}
	if p, ok := r.tracker.Position(); ok {
		s.Position = &p
	}
	if !r.startedAt.IsZero() {
		t := r.startedAt
		s.StartedAt = &t
	}
	return s
}

func (r *Recorder) notify() {
	if r.opts.OnChange != nil {
		r.opts.OnChange(r.snapshot())
	}
}
