package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"time"

	"tutorial-portal/internal/logging"
	"tutorial-portal/internal/metrics"
	"tutorial-portal/internal/pages"
)

//go:embed templates/*.html
var templateFS embed.FS

// Defaults for Options.
const (
	DefaultQRService = "https://api.qrserver.com/v1/create-qr-code/"
	DefaultQRSize    = 200
)

// Options configures a Renderer.
type Options struct {
	// BasePath is prefixed to every generated link.
	BasePath string
	// QRService is the QR image endpoint; it receives size and data
	// parameters.
	QRService string
	// QRSize is the QR image edge in pixels.
	QRSize int
	// ThumbnailWidth routes relative thumbnails through /thumbs at this
	// width. Zero links them directly.
	ThumbnailWidth int
	// Stylesheet is an optional stylesheet URL added to every page.
	Stylesheet string
}

// Renderer writes HTML views. It is safe for concurrent use.
type Renderer struct {
	tmpl       *template.Template
	base       string
	qrService  string
	qrSize     int
	thumbWidth int
	stylesheet string
}

// New parses the embedded templates.
func New(opts Options) (*Renderer, error) {
	tmpl, err := template.New("").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	if opts.QRService == "" {
		opts.QRService = DefaultQRService
	}
	if opts.QRSize <= 0 {
		opts.QRSize = DefaultQRSize
	}

	return &Renderer{
		tmpl:       tmpl,
		base:       opts.BasePath,
		qrService:  opts.QRService,
		qrSize:     opts.QRSize,
		thumbWidth: opts.ThumbnailWidth,
		stylesheet: opts.Stylesheet,
	}, nil
}

// Page renders page. It returns the view name that was rendered.
func (r *Renderer) Page(w io.Writer, name string, page *pages.Page, req Request) (string, error) {
	start := time.Now()

	view, hidden := r.buildPage(name, page, req)
	tmplName := ViewDeployment
	if page.Type == pages.TypeSelector {
		tmplName = ViewSelector
	}

	if err := r.execute(w, tmplName, view); err != nil {
		return tmplName, err
	}

	if hidden > 0 {
		metrics.VideosHiddenTotal.Add(float64(hidden))
	}
	metrics.PageRendersTotal.WithLabelValues(tmplName).Inc()
	metrics.PageRenderDuration.WithLabelValues(tmplName).Observe(time.Since(start).Seconds())
	return tmplName, nil
}

// NotFound renders the not-found view.
func (r *Renderer) NotFound(w io.Writer, req Request) error {
	start := time.Now()
	if err := r.execute(w, ViewNotFound, r.buildNotFound(req)); err != nil {
		return err
	}
	metrics.PageRendersTotal.WithLabelValues(ViewNotFound).Inc()
	metrics.PageRenderDuration.WithLabelValues(ViewNotFound).Observe(time.Since(start).Seconds())
	return nil
}

// execute renders into a buffer first so a template error never leaves a
// half-written page.
func (r *Renderer) execute(w io.Writer, name string, data pageView) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name+".html", data); err != nil {
		logging.Error("Failed to render %s view: %v", name, err)
		return fmt.Errorf("rendering %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func sizeParam(n int) string {
	s := itoa(n)
	return s + "x" + s
}

func itoa(n int) string { return strconv.Itoa(n) }
