package player

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"tutorial-portal/internal/analytics"
	"tutorial-portal/internal/logging"
	"tutorial-portal/internal/metrics"
)

// State is the lifecycle state of a Player.
type State int

const (
	Closed State = iota
	Open
	AutoClosePending
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case AutoClosePending:
		return "autoClosePending"
	default:
		return "closed"
	}
}

// MarshalText renders the state name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name written by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "closed":
		*s = Closed
	case "open":
		*s = Open
	case "autoClosePending":
		*s = AutoClosePending
	default:
		return fmt.Errorf("unknown player state %q", text)
	}
	return nil
}

// Kind classifies opened media.
type Kind string

const (
	KindNone  Kind = ""
	KindVideo Kind = "video"
	KindGIF   Kind = "gif"
)

// Close reasons, used as metric labels.
const (
	ReasonUser       = "user"
	ReasonInactivity = "inactivity"
	ReasonExpired    = "expired"
	ReasonReplaced   = "replaced"
)

// Default timings.
const (
	DefaultCheckInterval = 5 * time.Second
	DefaultIdleTimeout   = 60 * time.Second
	DefaultMinWatch      = 2 * time.Second
)

// Config holds player timings.
type Config struct {
	// CheckInterval is the period of the inactivity check.
	CheckInterval time.Duration
	// IdleTimeout is how long without input before auto-close.
	IdleTimeout time.Duration
	// MinWatch is the shortest incomplete playback recorded as watch time.
	MinWatch time.Duration
}

func (c Config) withDefaults() Config {
	if c.CheckInterval <= 0 {
		c.CheckInterval = DefaultCheckInterval
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
	if c.MinWatch < 0 {
		c.MinWatch = DefaultMinWatch
	}
	return c
}

// Snapshot is a point-in-time copy of a Player's state.
type Snapshot struct {
	State     State     `json:"state"`
	Src       string    `json:"src,omitempty"`
	Kind      Kind      `json:"kind,omitempty"`
	AutoClose bool      `json:"autoClose"`
	Completed bool      `json:"completed"`
	StartedAt time.Time `json:"startedAt,omitzero"`
	LastInput time.Time `json:"lastInput,omitzero"`
	// LastClose is the reason of the most recent close, if any.
	LastClose string `json:"lastClose,omitempty"`
}

// Player is one viewer's modal player. It is safe for concurrent use.
type Player struct {
	cfg       Config
	clock     Clock
	tracker   analytics.Tracker
	sessionID string
	autoClose bool

	mu        sync.Mutex
	state     State
	src       string
	kind      Kind
	completed bool
	startedAt time.Time
	lastInput time.Time
	lastClose string
	timer     Timer
	// gen invalidates callbacks of timers that were replaced or stopped.
	gen uint64
}

// New returns a closed Player. A nil clock uses the real clock; a nil
// tracker discards events.
func New(cfg Config, clock Clock, tracker analytics.Tracker, sessionID string, autoClose bool) *Player {
	if clock == nil {
		clock = RealClock()
	}
	return &Player{
		cfg:       cfg.withDefaults(),
		clock:     clock,
		tracker:   tracker,
		sessionID: sessionID,
		autoClose: autoClose,
	}
}

// ClassifyMedia reports whether src is a GIF or a video.
func ClassifyMedia(src string) Kind {
	if i := strings.IndexAny(src, "?#"); i >= 0 {
		src = src[:i]
	}
	if strings.EqualFold(path.Ext(src), ".gif") {
		return KindGIF
	}
	return KindVideo
}

// Open shows src, resetting any media already open. It reports whether the
// client should attempt autoplay, which is true for videos only.
func (p *Player) Open(src string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != Closed {
		p.closeLocked(ReasonReplaced)
	}
	p.stopTimerLocked()

	now := p.clock.Now()
	p.state = Open
	p.src = src
	p.kind = ClassifyMedia(src)
	p.completed = false
	p.startedAt = now
	p.lastInput = now

	p.track(analytics.EventVideoPlay, map[string]string{
		"video": src,
		"kind":  string(p.kind),
	})

	if p.kind == KindGIF && p.autoClose {
		p.armLocked()
	}
	return p.kind == KindVideo
}

// Ended records the end of video playback and, when auto-close is enabled,
// starts the inactivity watch. It is ignored for GIFs and closed players.
func (p *Player) Ended() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == Closed || p.kind != KindVideo || p.completed {
		return
	}
	p.completed = true
	p.track(analytics.EventVideoCompleted, map[string]string{"video": p.src})

	if p.autoClose {
		p.armLocked()
	}
}

// Input records user activity and resets the idle clock.
func (p *Player) Input() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == Closed {
		return
	}
	p.lastInput = p.clock.Now()
}

// AutoplayFailed records that the client blocked autoplay. The player stays
// open so the viewer can start playback by hand.
func (p *Player) AutoplayFailed(reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == Closed {
		return
	}
	logging.Debug("Autoplay prevented for %s: %s", p.src, reason)
	p.track(analytics.EventVideoAutoplayFailed, map[string]string{
		"video": p.src,
		"error": reason,
	})
}

// Close closes the player. Closing a closed player is a no-op.
func (p *Player) Close() {
	p.CloseWithReason(ReasonUser)
}

// CloseWithReason closes the player and labels the close with reason.
func (p *Player) CloseWithReason(reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked(reason)
}

// Snapshot returns the current state.
func (p *Player) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		State:     p.state,
		Src:       p.src,
		Kind:      p.kind,
		AutoClose: p.autoClose,
		Completed: p.completed,
		StartedAt: p.startedAt,
		LastInput: p.lastInput,
		LastClose: p.lastClose,
	}
}

// State returns the current lifecycle state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Player) closeLocked(reason string) {
	p.stopTimerLocked()
	if p.state == Closed {
		return
	}

	if !p.completed {
		if watched := p.clock.Now().Sub(p.startedAt); watched >= p.cfg.MinWatch {
			p.track(analytics.EventVideoWatchTime, map[string]string{
				"video":   p.src,
				"seconds": strconv.FormatFloat(watched.Seconds(), 'f', 1, 64),
			})
		}
	}
	metrics.PlayerClosesTotal.WithLabelValues(reason).Inc()

	p.state = Closed
	p.src = ""
	p.kind = KindNone
	p.completed = false
	p.startedAt = time.Time{}
	p.lastInput = time.Time{}
	p.lastClose = reason
}

// armLocked starts the recurring inactivity check. Any previous timer is
// stopped first so at most one check is ever pending.
func (p *Player) armLocked() {
	p.stopTimerLocked()
	p.state = AutoClosePending
	p.lastInput = p.clock.Now()
	p.scheduleLocked(p.gen)
}

func (p *Player) scheduleLocked(gen uint64) {
	p.timer = p.clock.AfterFunc(p.cfg.CheckInterval, func() { p.check(gen) })
}

func (p *Player) check(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.gen || p.state != AutoClosePending {
		return
	}
	if p.clock.Now().Sub(p.lastInput) >= p.cfg.IdleTimeout {
		logging.Debug("Player %s idle for %v, closing", p.sessionID, p.cfg.IdleTimeout)
		p.closeLocked(ReasonInactivity)
		return
	}
	p.scheduleLocked(gen)
}

func (p *Player) stopTimerLocked() {
	p.gen++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func (p *Player) track(name string, props map[string]string) {
	if p.sessionID != "" {
		props[analytics.SessionProp] = p.sessionID
	}
	analytics.Track(p.tracker, name, props)
}
