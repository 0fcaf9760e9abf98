package app

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"tutorial-portal/internal/pages"
	"tutorial-portal/internal/route"
)

// ErrAlreadyLoaded is returned when a second configuration is published.
var ErrAlreadyLoaded = errors.New("page configuration already loaded")

// State is created once at startup and shared by all handlers.
type State struct {
	resolver *route.Resolver

	once     sync.Once
	config   atomic.Pointer[pages.Config]
	loadErr  atomic.Pointer[string]
	loadedAt atomic.Int64
}

// New creates application state for the given base path and media root.
func New(basePath, mediaRoot string, opts ...route.Option) *State {
	return &State{resolver: route.NewResolver(basePath, mediaRoot, opts...)}
}

// Resolver returns the route resolver.
func (s *State) Resolver() *route.Resolver {
	return s.resolver
}

// BasePath returns the normalized base path.
func (s *State) BasePath() string {
	return s.resolver.Base()
}

// Publish stores the loaded configuration. Only the first call has an effect.
func (s *State) Publish(cfg pages.Config) error {
	published := false
	s.once.Do(func() {
		s.config.Store(&cfg)
		s.loadedAt.Store(time.Now().Unix())
		published = true
	})
	if !published {
		return ErrAlreadyLoaded
	}
	return nil
}

// Fail records a configuration load failure. Every route then renders the
// not-found view.
func (s *State) Fail(err error) {
	msg := err.Error()
	s.loadErr.Store(&msg)
}

// Config returns the published configuration, or nil when none was loaded.
func (s *State) Config() pages.Config {
	if p := s.config.Load(); p != nil {
		return *p
	}
	return nil
}

// Ready reports whether a configuration has been published.
func (s *State) Ready() bool {
	return s.config.Load() != nil
}

// LoadError returns the recorded load failure, if any.
func (s *State) LoadError() string {
	if p := s.loadErr.Load(); p != nil {
		return *p
	}
	return ""
}

// LoadedAt returns when the configuration was published.
func (s *State) LoadedAt() time.Time {
	if ts := s.loadedAt.Load(); ts != 0 {
		return time.Unix(ts, 0)
	}
	return time.Time{}
}
