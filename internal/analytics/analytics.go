package analytics

import (
	"context"
	"time"
)

// Event names emitted by the portal.
const (
	EventPageLoaded          = "page_loaded"
	EventPageNavigation      = "page_navigation"
	EventVideoPlay           = "video_play"
	EventVideoAutoplayFailed = "video_autoplay_failed"
	EventVideoCompleted      = "video_completed"
	EventVideoWatchTime      = "video_watch_time"
)

// Tracker accepts analytics events. Implementations must not block.
type Tracker interface {
	Track(name string, props map[string]string)
}

// Event is one tracked occurrence.
type Event struct {
	Name  string
	Props map[string]string
	At    time.Time
}

// Sink persists or exports events.
type Sink interface {
	Name() string
	Write(ctx context.Context, e Event) error
}

// Track sends an event to t. A nil tracker is a no-op.
func Track(t Tracker, name string, props map[string]string) {
	if t == nil {
		return
	}
	t.Track(name, props)
}

// Nop discards every event.
type Nop struct{}

// Track implements Tracker.
func (Nop) Track(string, map[string]string) {}

// TrackerFunc adapts a function to the Tracker interface.
type TrackerFunc func(name string, props map[string]string)

// Track implements Tracker.
func (f TrackerFunc) Track(name string, props map[string]string) {
	if f != nil {
		f(name, props)
	}
}

func cloneProps(props map[string]string) map[string]string {
	if len(props) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}
