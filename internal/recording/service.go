package recording

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"backend-chillwalk/internal/route"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrStillRecording = errors.New("stop the recording before saving")
	ErrNoStore        = errors.New("saving routes is not available")
)

type RouteWriter interface {
	CreateRoute(ctx context.Context, r route.Route) (route.Route, error)
}

type ProfileEnsurer interface {
	EnsureProfile(ctx context.Context, userID string) error
}

type Publisher interface {
	Broadcast(key string, payload []byte)
}

type SaveRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Difficulty   string   `json:"difficulty"`
	Seasons      []string `json:"seasons"`
	Temperatures []string `json:"temperatures"`
}

type Service struct {
	sessions *Manager
	routes   RouteWriter
	profiles ProfileEnsurer
	now      func() time.Time
}

// NewService wires recording sessions to the route store. routes, profiles
// and hub may each be nil.
func NewService(routes RouteWriter, profiles ProfileEnsurer, hub Publisher, watch WatchOptions) *Service {
	var onChange func(string, Snapshot)
	if hub != nil {
		onChange = func(userID string, snap Snapshot) {
			payload, err := json.Marshal(snap)
			if err != nil {
				slog.Error("encode recording snapshot", "user_id", userID, "err", err)
				return
			}
			hub.Broadcast(userID, payload)
		}
	}
	return &Service{
		sessions: NewManager(watch, onChange),
		routes:   routes,
		profiles: profiles,
		now:      time.Now,
	}
}

func (s *Service) Start(userID string) (Snapshot, error) {
	snap := idleSnapshot()
	err := s.sessions.use(userID, func(sess *session) error {
		var err error
		snap, err = sess.recorder.Start()
		return err
	})
	return snap, err
}

func (s *Service) Push(userID string, f Fix) error {
	found, err := s.sessions.peek(userID, func(sess *session) error {
		return sess.source.Push(f)
	})
	if !found {
		return ErrNotWatching
	}
	return err
}

func (s *Service) Stop(userID string) (Snapshot, error) {
	snap := idleSnapshot()
	found, err := s.sessions.peek(userID, func(sess *session) error {
		var err error
		snap, err = sess.recorder.Stop()
		return err
	})
	if !found {
		return snap, ErrNotRecording
	}
	return snap, err
}

// Discard resets the user's session and releases it.
func (s *Service) Discard(userID string) (Snapshot, error) {
	snap := idleSnapshot()
	_, err := s.sessions.peek(userID, func(sess *session) error {
		var err error
		snap, err = sess.recorder.Discard("")
		return err
	})
	if err != nil {
		return snap, err
	}
	s.sessions.release(userID)
	return snap, nil
}

// Current reports the user's session, or an idle snapshot when there is none.
func (s *Service) Current(userID string) (Snapshot, error) {
	snap := idleSnapshot()
	_, err := s.sessions.peek(userID, func(sess *session) error {
		var err error
		snap, err = sess.recorder.Snapshot()
		return err
	})
	return snap, err
}

func (s *Service) Close() {
	s.sessions.Close()
}

// Save validates the stopped session and persists it as a route owned by
// userID. Validation failures never reach the store. On success the session
// is discarded and released.
func (s *Service) Save(ctx context.Context, userID string, req SaveRequest) (route.Route, error) {
	snap, err := s.Current(userID)
	if err != nil {
		return route.Route{}, err
	}
	if snap.Status == StatusRecording {
		return route.Route{}, ErrStillRecording
	}

	draft, err := s.draft(userID, snap, req)
	if err != nil {
		return route.Route{}, err
	}
	if s.routes == nil {
		return route.Route{}, ErrNoStore
	}

	if s.profiles != nil {
		if err := s.profiles.EnsureProfile(ctx, userID); err != nil {
			slog.Error("ensure profile", "user_id", userID, "err", err)
			return route.Route{}, fmt.Errorf("ensure profile: %w", err)
		}
	}
	created, err := s.routes.CreateRoute(ctx, draft)
	if err != nil {
		slog.Error("save recording", "user_id", userID, "session_id", snap.SessionID, "err", err)
		return route.Route{}, fmt.Errorf("save route: %w", err)
	}

	if _, err := s.sessions.peek(userID, func(sess *session) error {
		_, err := sess.recorder.Discard(snap.SessionID)
		return err
	}); err != nil {
		slog.Warn("reset recording after save", "user_id", userID, "err", err)
	}
	s.sessions.release(userID)
	return created, nil
}

func (s *Service) draft(userID string, snap Snapshot, req SaveRequest) (route.Route, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return route.Route{}, fmt.Errorf("%w: route name is required", ErrValidation)
	}
	if len(snap.Points) < 2 {
		return route.Route{}, fmt.Errorf("%w: route is too short, record at least 2 points", ErrValidation)
	}

	difficulty, err := route.ParseDifficulty(req.Difficulty)
	if err != nil {
		return route.Route{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	seasons, err := route.ParseSeasons(req.Seasons)
	if err != nil {
		return route.Route{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if len(seasons) == 0 {
		seasons = []route.Season{route.SeasonOf(s.now())}
	}
	temps, err := route.ParseTemperatures(req.Temperatures)
	if err != nil {
		return route.Route{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	return route.Route{
		Name:         name,
		Description:  req.Description,
		DistanceKm:   math.Round(snap.DistanceM) / 1000,
		DurationMin:  int(math.Round(float64(snap.ElapsedSec) / 60)),
		Difficulty:   difficulty,
		Seasons:      seasons,
		Temperatures: temps,
		Path:         snap.Points,
		Spots:        []route.Spot{},
		AuthorID:     userID,
	}, nil
}
