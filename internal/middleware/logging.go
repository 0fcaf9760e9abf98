package middleware

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// accessFields is the W3C #Fields directive. x-portal-view is whatever the
// handler recorded with Annotate.
const accessFields = "date time c-ip cs-method cs-uri-stem cs-uri-query sc-status sc-bytes time-taken cs(Content-Encoding) x-portal-view cs(User-Agent) cs(Referer)"

// LoggingConfig holds configuration for the access log.
type LoggingConfig struct {
	SkipPaths []string
	// SkipExtensions suppress asset requests unless LogStaticFiles is set.
	// Media-proxy redirects for these extensions are skipped too.
	SkipExtensions  []string
	LogStaticFiles  bool
	LogHealthChecks bool
	// LogPlayerPolls keeps GETs of a player session, which open pages poll
	// every few seconds to notice inactivity closes.
	LogPlayerPolls bool
	// Output receives log lines; nil uses the standard logger.
	Output func(line string)
}

// DefaultLoggingConfig returns the access log settings used by serve.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipExtensions:  []string{".css", ".js", ".ico", ".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".woff", ".woff2"},
		LogHealthChecks: true,
	}
}

var healthCheckPaths = map[string]bool{
	"/health":  true,
	"/healthz": true,
	"/livez":   true,
	"/readyz":  true,
}

type viewKey struct{}

// viewNote is filled in by the handler and read once it has returned.
type viewNote struct {
	view string
}

// Annotate records what the portal served for the request, such as
// "page:mtr-navigator" or "redirect:hierarchical". The access log prints it
// as x-portal-view. Outside Logger it does nothing.
func Annotate(ctx context.Context, view string) {
	if n, ok := ctx.Value(viewKey{}).(*viewNote); ok {
		n.view = view
	}
}

// statusRecorder captures the status code and body size.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (rec *statusRecorder) WriteHeader(code int) {
	if rec.status == 0 {
		rec.status = code
		rec.ResponseWriter.WriteHeader(code)
	}
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += int64(n)
	return n, err
}

func (rec *statusRecorder) Flush() {
	if f, ok := rec.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

// accessLog writes W3C Extended Log Format entries, preceded once by the
// #Fields directive.
type accessLog struct {
	config LoggingConfig
	header sync.Once
}

// Logger returns access logging middleware.
func Logger(config LoggingConfig) func(http.Handler) http.Handler {
	al := &accessLog{config: config}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if al.skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			note := &viewNote{}
			r = r.WithContext(context.WithValue(r.Context(), viewKey{}, note))
			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()

			next.ServeHTTP(rec, r)

			al.write(r, rec, note.view, time.Since(start))
		})
	}
}

func (al *accessLog) write(r *http.Request, rec *statusRecorder, view string, took time.Duration) {
	al.header.Do(func() { al.emit("#Fields: " + accessFields) })

	status := rec.status
	if status == 0 {
		status = http.StatusOK
	}

	now := time.Now().UTC()
	al.emit(fmt.Sprintf("%s %s %s %s %s %s %d %d %d %s %s %s %s",
		now.Format("2006-01-02"),
		now.Format("15:04:05"),
		w3cField(clientIP(r)),
		w3cField(r.Method),
		w3cField(r.URL.Path),
		w3cField(r.URL.RawQuery),
		status,
		rec.bytes,
		took.Milliseconds(),
		w3cField(rec.Header().Get("Content-Encoding")),
		w3cField(view),
		w3cField(r.UserAgent()),
		w3cField(r.Referer()),
	))
}

func (al *accessLog) emit(line string) {
	if al.config.Output != nil {
		al.config.Output(line)
		return
	}
	log.Println(line) //nolint:gosec // every request field goes through w3cField
}

func (al *accessLog) skip(r *http.Request) bool {
	p := r.URL.Path
	for _, prefix := range al.config.SkipPaths {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	if !al.config.LogHealthChecks && healthCheckPaths[p] {
		return true
	}
	if !al.config.LogPlayerPolls && r.Method == http.MethodGet && isPlayerPoll(p) {
		return true
	}
	if !al.config.LogStaticFiles {
		lower := strings.ToLower(p)
		for _, ext := range al.config.SkipExtensions {
			if strings.HasSuffix(lower, ext) {
				return true
			}
		}
	}
	return false
}

// isPlayerPoll matches {base}/api/player/sessions/{id} with nothing after
// the id.
func isPlayerPoll(p string) bool {
	const marker = "/api/player/sessions/"
	i := strings.Index(p, marker)
	if i < 0 {
		return false
	}
	id := p[i+len(marker):]
	return id != "" && !strings.Contains(id, "/")
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// w3cField makes a request value safe for one log field. Control characters
// are dropped (newlines become spaces) so values cannot forge entries, empty
// values become "-", and values with blanks or quotes are quoted with
// doubled inner quotes.
func w3cField(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r':
			return ' '
		case r == '\t':
			return r
		case r < 0x20 || r == 0x7f:
			return -1
		default:
			return r
		}
	}, s)

	switch {
	case s == "":
		return "-"
	case strings.ContainsAny(s, " \t\""):
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	default:
		return s
	}
}
