package player

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"tutorial-portal/internal/analytics"
	"tutorial-portal/internal/logging"
	"tutorial-portal/internal/metrics"
)

var (
	// ErrNoSession is returned for unknown or expired session ids.
	ErrNoSession = errors.New("player session not found")
	// ErrTooManySessions is returned when the registry is full.
	ErrTooManySessions = errors.New("too many player sessions")
)

const (
	// DefaultSessionTTL is how long an untouched session survives.
	DefaultSessionTTL = 30 * time.Minute
	// DefaultMaxSessions caps live sessions.
	DefaultMaxSessions = 10000
)

type entry struct {
	player   *Player
	lastSeen time.Time
}

// Registry holds players by session id.
type Registry struct {
	cfg     Config
	clock   Clock
	tracker analytics.Tracker
	ttl     time.Duration
	max     int

	mu       sync.Mutex
	sessions map[string]*entry
}

// NewRegistry creates an empty registry. A ttl of zero uses
// DefaultSessionTTL.
func NewRegistry(cfg Config, clock Clock, tracker analytics.Tracker, ttl time.Duration) *Registry {
	if clock == nil {
		clock = RealClock()
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Registry{
		cfg:      cfg.withDefaults(),
		clock:    clock,
		tracker:  tracker,
		ttl:      ttl,
		max:      DefaultMaxSessions,
		sessions: make(map[string]*entry),
	}
}

// SetMaxSessions changes the live session cap. Values below one restore
// DefaultMaxSessions. Call it before serving.
func (r *Registry) SetMaxSessions(n int) {
	if n <= 0 {
		n = DefaultMaxSessions
	}
	r.max = n
}

// Create starts a new closed player session. A full registry first drops
// expired sessions and then fails with ErrTooManySessions.
func (r *Registry) Create(autoClose bool) (string, *Player, error) {
	if r.Len() >= r.max {
		r.Sweep()
	}

	id := uuid.NewString()
	p := New(r.cfg, r.clock, r.tracker, id, autoClose)

	r.mu.Lock()
	if len(r.sessions) >= r.max {
		r.mu.Unlock()
		metrics.PlayerSessionsRejected.Inc()
		logging.Warn("Player session rejected: %d sessions live", r.max)
		return "", nil, ErrTooManySessions
	}
	r.sessions[id] = &entry{player: p, lastSeen: r.clock.Now()}
	n := len(r.sessions)
	r.mu.Unlock()

	metrics.PlayerSessionsActive.Set(float64(n))
	logging.Debug("Player session %s created (autoClose=%v)", id, autoClose)
	return id, p, nil
}

// Get returns the player for id and marks the session as used.
func (r *Registry) Get(id string) (*Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, ErrNoSession
	}
	e.lastSeen = r.clock.Now()
	return e.player, nil
}

// Remove closes and forgets a session.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	e, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	n := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return ErrNoSession
	}
	e.player.CloseWithReason(ReasonUser)
	metrics.PlayerSessionsActive.Set(float64(n))
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes and removes sessions idle for longer than the TTL. It
// returns the number removed.
func (r *Registry) Sweep() int {
	now := r.clock.Now()

	var expired []*Player
	r.mu.Lock()
	for id, e := range r.sessions {
		if now.Sub(e.lastSeen) > r.ttl {
			expired = append(expired, e.player)
			delete(r.sessions, id)
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()

	for _, p := range expired {
		p.CloseWithReason(ReasonExpired)
	}
	if len(expired) > 0 {
		metrics.PlayerSessionsActive.Set(float64(n))
		logging.Debug("Swept %d expired player sessions, %d remain", len(expired), n)
	}
	return len(expired)
}

// Run sweeps expired sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
