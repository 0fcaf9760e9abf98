package player

import (
	"sort"
	"sync"
	"testing"
	"time"
)

// fakeClock fires timers only when advanced.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// Advance moves time forward, firing due timers in order.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	end := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var due []*fakeTimer
		for _, t := range c.timers {
			if !t.stopped && !t.fired && !t.at.After(end) {
				due = append(due, t)
			}
		}
		if len(due) == 0 {
			c.now = end
			c.mu.Unlock()
			return
		}
		sort.Slice(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
		next := due[0]
		next.fired = true
		c.now = next.at
		c.mu.Unlock()

		next.f()
	}
}

// Armed counts timers that are still pending.
func (c *fakeClock) Armed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type trackedEvent struct {
	name  string
	props map[string]string
}

// fakeTracker records events synchronously.
type fakeTracker struct {
	mu     sync.Mutex
	events []trackedEvent
}

func (f *fakeTracker) Track(name string, props map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, trackedEvent{name: name, props: props})
}

func (f *fakeTracker) named(name string) []trackedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []trackedEvent
	for _, e := range f.events {
		if e.name == name {
			out = append(out, e)
		}
	}
	return out
}

var testConfig = Config{
	CheckInterval: 5 * time.Second,
	IdleTimeout:   30 * time.Second,
	MinWatch:      2 * time.Second,
}

func newTestPlayer(autoClose bool) (*Player, *fakeClock, *fakeTracker) {
	clock := newFakeClock()
	tracker := &fakeTracker{}
	return New(testConfig, clock, tracker, "session-1", autoClose), clock, tracker
}

func TestClassifyMedia(t *testing.T) {
	tests := []struct {
		src  string
		want Kind
	}{
		{"/deployments/mtr-navigator/videos/join.webm", KindVideo},
		{"/deployments/mtr-navigator/videos/join.mp4", KindVideo},
		{"/deployments/mtr-navigator/images/loop.gif", KindGIF},
		{"/deployments/mtr-navigator/images/LOOP.GIF", KindGIF},
		{"/images/loop.gif?source=qr", KindGIF},
		{"", KindVideo},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := ClassifyMedia(tt.src); got != tt.want {
				t.Errorf("ClassifyMedia(%q) = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}

func TestOpenVideo(t *testing.T) {
	p, clock, tracker := newTestPlayer(true)

	if autoplay := p.Open("/v/a.webm"); !autoplay {
		t.Error("Open(video) should request autoplay")
	}
	s := p.Snapshot()
	if s.State != Open || s.Src != "/v/a.webm" || s.Kind != KindVideo {
		t.Errorf("unexpected snapshot %+v", s)
	}
	if clock.Armed() != 0 {
		t.Errorf("video open armed %d timers, want 0 until playback ends", clock.Armed())
	}
	plays := tracker.named("video_play")
	if len(plays) != 1 || plays[0].props["session_id"] != "session-1" || plays[0].props["kind"] != "video" {
		t.Errorf("unexpected video_play events %+v", plays)
	}
}

func TestOpenGIFArmsWatch(t *testing.T) {
	p, clock, _ := newTestPlayer(true)

	if autoplay := p.Open("/i/loop.gif"); autoplay {
		t.Error("Open(gif) should not request autoplay")
	}
	if p.State() != AutoClosePending {
		t.Errorf("state = %v, want autoClosePending", p.State())
	}
	if clock.Armed() != 1 {
		t.Errorf("armed = %d, want 1", clock.Armed())
	}
}

func TestOpenTwiceLeavesOneTimerAndLatestSource(t *testing.T) {
	tests := []struct {
		name   string
		first  string
		second string
		ended  bool
	}{
		{name: "gif then gif", first: "/i/a.gif", second: "/i/b.gif"},
		{name: "video then video after end", first: "/v/a.webm", second: "/v/b.webm", ended: true},
		{name: "gif then video after end", first: "/i/a.gif", second: "/v/b.mp4", ended: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, clock, _ := newTestPlayer(true)

			p.Open(tt.first)
			if tt.ended {
				p.Ended()
			}
			p.Open(tt.second)
			if tt.ended {
				p.Ended()
			}

			if got := clock.Armed(); got != 1 {
				t.Errorf("armed timers = %d, want 1", got)
			}
			if got := p.Snapshot().Src; got != tt.second {
				t.Errorf("src = %q, want %q", got, tt.second)
			}
		})
	}
}

func TestEndedArmsAndInactivityCloses(t *testing.T) {
	p, clock, tracker := newTestPlayer(true)

	p.Open("/v/a.webm")
	clock.Advance(10 * time.Second)
	p.Ended()

	if p.State() != AutoClosePending {
		t.Fatalf("state = %v, want autoClosePending", p.State())
	}
	if len(tracker.named("video_completed")) != 1 {
		t.Error("video_completed not tracked")
	}

	clock.Advance(25 * time.Second)
	if p.State() != AutoClosePending {
		t.Fatalf("closed before idle timeout: %v", p.State())
	}

	clock.Advance(10 * time.Second)
	s := p.Snapshot()
	if s.State != Closed || s.LastClose != ReasonInactivity {
		t.Errorf("snapshot = %+v, want closed by inactivity", s)
	}
	if clock.Armed() != 0 {
		t.Errorf("armed = %d after close, want 0", clock.Armed())
	}
	if n := len(tracker.named("video_watch_time")); n != 0 {
		t.Errorf("completed playback recorded %d watch time events", n)
	}
}

func TestInputResetsIdleClock(t *testing.T) {
	p, clock, _ := newTestPlayer(true)
	p.Open("/i/loop.gif")

	for i := 0; i < 5; i++ {
		clock.Advance(20 * time.Second)
		p.Input()
	}
	if p.State() != AutoClosePending {
		t.Fatalf("player closed despite input: %v", p.State())
	}

	clock.Advance(40 * time.Second)
	if p.State() != Closed {
		t.Errorf("state = %v, want closed after idling", p.State())
	}
}

func TestAutoCloseDisabled(t *testing.T) {
	p, clock, _ := newTestPlayer(false)

	p.Open("/i/loop.gif")
	p.Open("/v/a.webm")
	p.Ended()

	if clock.Armed() != 0 {
		t.Errorf("armed = %d with auto-close disabled", clock.Armed())
	}
	clock.Advance(time.Hour)
	if p.State() != Open {
		t.Errorf("state = %v, want open", p.State())
	}
}

func TestEndedIgnored(t *testing.T) {
	p, clock, tracker := newTestPlayer(true)

	p.Ended()
	if p.State() != Closed {
		t.Errorf("Ended on closed player changed state to %v", p.State())
	}

	p.Open("/i/loop.gif")
	p.Ended()
	if len(tracker.named("video_completed")) != 0 {
		t.Error("GIF tracked as completed")
	}
	if clock.Armed() != 1 {
		t.Errorf("armed = %d, want 1", clock.Armed())
	}
}

func TestCloseRecordsWatchTime(t *testing.T) {
	tests := []struct {
		name    string
		watched time.Duration
		want    int
		seconds string
	}{
		{name: "instant close", watched: 500 * time.Millisecond, want: 0},
		{name: "at threshold", watched: 2 * time.Second, want: 1, seconds: "2.0"},
		{name: "long watch", watched: 95 * time.Second, want: 1, seconds: "95.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, clock, tracker := newTestPlayer(false)
			p.Open("/v/a.webm")
			clock.Advance(tt.watched)
			p.Close()

			events := tracker.named("video_watch_time")
			if len(events) != tt.want {
				t.Fatalf("watch time events = %d, want %d", len(events), tt.want)
			}
			if tt.want == 1 && events[0].props["seconds"] != tt.seconds {
				t.Errorf("seconds = %q, want %q", events[0].props["seconds"], tt.seconds)
			}
		})
	}
}

func TestCloseResetsState(t *testing.T) {
	p, clock, _ := newTestPlayer(true)
	p.Open("/i/loop.gif")
	p.Close()

	s := p.Snapshot()
	if s.State != Closed || s.Src != "" || s.Kind != KindNone || !s.StartedAt.IsZero() {
		t.Errorf("state not reset: %+v", s)
	}
	if s.LastClose != ReasonUser {
		t.Errorf("LastClose = %q, want user", s.LastClose)
	}
	if clock.Armed() != 0 {
		t.Errorf("armed = %d after close", clock.Armed())
	}

	// Closing again is harmless and the player can be reused.
	p.Close()
	p.Open("/v/b.webm")
	if p.State() != Open {
		t.Errorf("reopen state = %v", p.State())
	}
}

func TestStaleTimerIgnored(t *testing.T) {
	p, clock, _ := newTestPlayer(true)

	p.Open("/i/a.gif")
	first := p.gen
	p.Close()
	p.Open("/v/b.webm")

	// A callback from the first arming must not close the new media.
	p.check(first)
	if p.State() != Open {
		t.Errorf("stale check changed state to %v", p.State())
	}
	clock.Advance(time.Hour)
	if p.State() != Open {
		t.Errorf("state = %v, want open", p.State())
	}
}

func TestAutoplayFailedKeepsPlayerOpen(t *testing.T) {
	p, _, tracker := newTestPlayer(false)
	p.Open("/v/a.webm")
	p.AutoplayFailed("NotAllowedError")

	if p.State() != Open {
		t.Errorf("state = %v, want open", p.State())
	}
	events := tracker.named("video_autoplay_failed")
	if len(events) != 1 || events[0].props["error"] != "NotAllowedError" {
		t.Errorf("unexpected events %+v", events)
	}
}

func TestNilTracker(t *testing.T) {
	p := New(testConfig, newFakeClock(), nil, "", true)
	p.Open("/v/a.webm")
	p.AutoplayFailed("blocked")
	p.Ended()
	p.Close()
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{Closed: "closed", Open: "open", AutoClosePending: "autoClosePending"} {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", s, s.String(), want)
		}
	}
}
