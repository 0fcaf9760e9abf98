package handlers

import (
	"context"
	"time"

	"tutorial-portal/internal/analytics"
	"tutorial-portal/internal/app"
	"tutorial-portal/internal/database"
	"tutorial-portal/internal/player"
	"tutorial-portal/internal/render"
)

// EventReader is the read side of the analytics event store.
type EventReader interface {
	EventSummaries(ctx context.Context) ([]database.EventSummary, error)
	RecentEvents(ctx context.Context, name string, limit int) ([]database.Event, error)
}

// Thumbnailer produces resized images for config-referenced thumbnails.
type Thumbnailer interface {
	IsEnabled() bool
	GetThumbnail(ctx context.Context, rel string, width int) ([]byte, error)
}

// Options wires collaborators into Handlers. Events and Thumbs may be nil,
// which disables the endpoints that need them.
type Options struct {
	State     *app.State
	Renderer  *render.Renderer
	Players   *player.Registry
	Tracker   analytics.Tracker
	Events    EventReader
	Thumbs    Thumbnailer
	StaticDir string
	// ThumbnailWidth is used when a thumbnail request carries no width.
	ThumbnailWidth int
}

type Handlers struct {
	state      *app.State
	renderer   *render.Renderer
	players    *player.Registry
	tracker    analytics.Tracker
	events     EventReader
	thumbs     Thumbnailer
	staticDir  string
	thumbWidth int
	startTime  time.Time
}

func New(opts Options) *Handlers {
	return &Handlers{
		state:      opts.State,
		renderer:   opts.Renderer,
		players:    opts.Players,
		tracker:    opts.Tracker,
		events:     opts.Events,
		thumbs:     opts.Thumbs,
		staticDir:  opts.StaticDir,
		thumbWidth: opts.ThumbnailWidth,
		startTime:  time.Now(),
	}
}
