package handlers

import (
	"bytes"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"tutorial-portal/internal/analytics"
	"tutorial-portal/internal/filesystem"
	"tutorial-portal/internal/logging"
	"tutorial-portal/internal/metrics"
	"tutorial-portal/internal/middleware"
	"tutorial-portal/internal/params"
	"tutorial-portal/internal/render"
	"tutorial-portal/internal/route"
)

// ServePage is the catch-all handler. It handles the route parameter left
// by static hosts' 404 pages, serves existing static files, and otherwise
// resolves the path to a page, a media redirect or the not-found view.
func (h *Handlers) ServePage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if target := query.Get(params.Route); target != "" {
		middleware.Annotate(r.Context(), "route-param")
		h.redirectRoute(w, r, target, query)
		return
	}

	if h.serveStatic(w, r) {
		middleware.Annotate(r.Context(), "static")
		return
	}

	result := h.state.Resolver().Resolve(r.URL.Path)
	metrics.RouteResolutionsTotal.WithLabelValues(result.Kind.String()).Inc()

	switch result.Kind {
	case route.ProxyRedirect:
		h.redirectMedia(w, r, result)
	case route.Page:
		h.renderPage(w, r, result.Name)
	default:
		h.renderNotFound(w, r, "")
	}
}

// redirectRoute turns ?route=/a/b&x=1 into a redirect to {base}/a/b?x=1.
func (h *Handlers) redirectRoute(w http.ResponseWriter, r *http.Request, target string, query url.Values) {
	rest := url.Values{}
	for k, vs := range query {
		if k != params.Route {
			rest[k] = vs
		}
	}

	// Only a local path is accepted; anything else could redirect off-site.
	target = "/" + strings.TrimLeft(target, "/\\")
	u := url.URL{Path: params.JoinBase(h.state.BasePath(), path.Clean(target))}
	u.RawQuery = rest.Encode()

	logging.Debug("Route parameter redirect: %s -> %s", r.URL.String(), u.String())
	http.Redirect(w, r, u.String(), http.StatusFound)
}

// serveStatic serves a regular file from the static directory when the
// request path names one. It reports whether the request was handled.
func (h *Handlers) serveStatic(w http.ResponseWriter, r *http.Request) bool {
	if h.staticDir == "" {
		return false
	}

	rel := stripBase(h.state.BasePath(), r.URL.Path)
	rel = path.Clean("/" + rel)
	if rel == "/" {
		return false
	}

	full := filepath.Join(h.staticDir, filepath.FromSlash(rel))
	info, err := filesystem.DefaultRetry().Stat("static", full)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}

	http.ServeFile(w, r, full)
	return true
}

func (h *Handlers) redirectMedia(w http.ResponseWriter, r *http.Request, result route.Result) {
	m := result.Media
	middleware.Annotate(r.Context(), "redirect:"+string(m.Pattern))
	metrics.MediaRedirectsTotal.WithLabelValues(string(m.Pattern)).Inc()

	source := r.URL.Query().Get(params.Source)
	if source == "" {
		source = "direct"
	}
	referrer := r.Referer()
	if referrer == "" {
		referrer = "none"
	}

	analytics.Track(h.tracker, analytics.EventPageLoaded, map[string]string{
		"page":        r.URL.Path,
		"hostname":    hostOnly(r.Host),
		"user_agent":  r.UserAgent(),
		"media_proxy": "true",
		"deployment":  m.Deployment,
		"media_type":  m.Type,
		"filename":    m.File,
		"source":      source,
		"referrer":    referrer,
	})

	target := result.Target
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	logging.Debug("Media redirect (%s): %s -> %s", m.Pattern, r.URL.Path, target)
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *Handlers) renderPage(w http.ResponseWriter, r *http.Request, name string) {
	page := h.state.Config().Page(name)
	if page == nil {
		h.renderNotFound(w, r, name)
		return
	}

	middleware.Annotate(r.Context(), "page:"+name)
	var buf bytes.Buffer
	view, err := h.renderer.Page(&buf, name, page, h.renderRequest(r, name))
	if err != nil {
		logging.Error("Failed to render page %s: %v", name, err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	h.trackPageLoad(r, name, view)
	writeHTML(w, http.StatusOK, buf.Bytes())
}

func (h *Handlers) renderNotFound(w http.ResponseWriter, r *http.Request, name string) {
	middleware.Annotate(r.Context(), "not-found")
	var buf bytes.Buffer
	if err := h.renderer.NotFound(&buf, h.renderRequest(r, name)); err != nil {
		logging.Error("Failed to render not-found page: %v", err)
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	h.trackPageLoad(r, name, render.ViewNotFound)
	writeHTML(w, http.StatusNotFound, buf.Bytes())
}

// trackPageLoad records the page view and, for links followed from another
// portal page, the navigation between them.
func (h *Handlers) trackPageLoad(r *http.Request, name, view string) {
	if r.Method == http.MethodHead {
		return
	}

	analytics.Track(h.tracker, analytics.EventPageLoaded, map[string]string{
		"page":       r.URL.Path,
		"route":      name,
		"view":       view,
		"hostname":   hostOnly(r.Host),
		"user_agent": r.UserAgent(),
	})

	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Host != r.Host || ref.Path == r.URL.Path {
		return
	}
	analytics.Track(h.tracker, analytics.EventPageNavigation, map[string]string{
		"from": ref.Path,
		"to":   r.URL.Path,
	})
}

func (h *Handlers) renderRequest(r *http.Request, name string) render.Request {
	return render.Request{
		Path:      r.URL.Path,
		Query:     r.URL.Query(),
		UserAgent: r.UserAgent(),
		Origin:    requestOrigin(r),
		RouteName: name,
	}
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logging.Debug("failed to write page: %v", err)
	}
}

// requestOrigin returns scheme://host as the client saw it.
func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" || proto == "http" {
		scheme = proto
	}
	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		host = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return scheme + "://" + host
}

func hostOnly(hostport string) string {
	if i := strings.LastIndex(hostport, ":"); i > 0 && !strings.Contains(hostport[i:], "]") {
		return hostport[:i]
	}
	return hostport
}

func stripBase(base, p string) string {
	if base == "" {
		return p
	}
	if p == base || strings.HasPrefix(p, base+"/") {
		return p[len(base):]
	}
	return p
}
