package middleware

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
)

func TestW3CField(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "/mtr/navigator", want: "/mtr/navigator"},
		{name: "empty", in: "", want: "-"},
		{name: "newline forging", in: "a\nb\rc", want: `"a b c"`},
		{name: "ansi escape", in: "\x1b[31mred", want: "[31mred"},
		{name: "null byte", in: "a\x00b", want: "ab"},
		{name: "delete char", in: "a\x7fb", want: "ab"},
		{name: "tab quoted", in: "a\tb", want: "\"a\tb\""},
		{name: "quotes doubled", in: `a "b" c`, want: `"a ""b"" c"`},
		{name: "no blanks", in: "curl/8.0", want: "curl/8.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w3cField(tt.in); got != tt.want {
				t.Errorf("w3cField(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSkip(t *testing.T) {
	config := DefaultLoggingConfig()
	config.SkipPaths = []string{"/internal/"}
	config.LogHealthChecks = false
	al := &accessLog{config: config}

	tests := []struct {
		method string
		path   string
		want   bool
	}{
		{"GET", "/mtr/navigator", false},
		{"GET", "/styles.css", true},
		{"GET", "/THUMB.PNG", true},
		{"GET", "/healthz", true},
		{"GET", "/internal/debug", true},
		{"GET", "/api/player/sessions/abc", true},
		{"GET", "/learn/api/player/sessions/abc", true},
		{"DELETE", "/api/player/sessions/abc", false},
		{"POST", "/api/player/sessions/abc/input", false},
		{"POST", "/api/player/sessions", false},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, tt.path, nil)
			if got := al.skip(r); got != tt.want {
				t.Errorf("skip(%s %s) = %v, want %v", tt.method, tt.path, got, tt.want)
			}
		})
	}

	al.config.LogPlayerPolls = true
	if al.skip(httptest.NewRequest("GET", "/api/player/sessions/abc", nil)) {
		t.Error("player poll skipped with LogPlayerPolls set")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "forwarded chain", headers: map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, remote: "1.1.1.1:80", want: "10.0.0.1"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "10.0.0.3"}, remote: "1.1.1.1:80", want: "10.0.0.3"},
		{name: "remote addr", remote: "192.168.1.5:5555", want: "192.168.1.5"},
		{name: "ipv6 remote", remote: "[::1]:5555", want: "::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := clientIP(r); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoggerWritesW3CEntries(t *testing.T) {
	var lines []string
	config := DefaultLoggingConfig()
	config.Output = func(line string) { lines = append(lines, line) }

	handler := Logger(config)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Annotate(r.Context(), "redirect:hierarchical")
		w.WriteHeader(http.StatusFound)
		_, _ = w.Write([]byte("moved"))
	}))

	for range 2 {
		r := httptest.NewRequest(http.MethodGet, "/mtr/navigator/join.webm?source=qr", nil)
		r.Header.Set("User-Agent", "Cisco Room Navigator\nforged")
		handler.ServeHTTP(httptest.NewRecorder(), r)
	}

	if len(lines) != 3 {
		t.Fatalf("logged %d lines, want a header and 2 entries: %q", len(lines), lines)
	}
	if lines[0] != "#Fields: "+accessFields {
		t.Errorf("header = %q", lines[0])
	}
	entry := lines[1]
	for _, want := range []string{
		" GET /mtr/navigator/join.webm source=qr 302 5 ",
		" redirect:hierarchical ",
		`"Cisco Room Navigator forged"`,
	} {
		if !strings.Contains(entry, want) {
			t.Errorf("log entry %q missing %q", entry, want)
		}
	}
	if strings.Contains(entry, "\n") {
		t.Error("log entry contains a newline")
	}
}

func TestLoggerDefaultsUnannotatedFields(t *testing.T) {
	var lines []string
	config := DefaultLoggingConfig()
	config.Output = func(line string) { lines = append(lines, line) }

	handler := Logger(config)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/board", nil))

	if len(lines) != 2 {
		t.Fatalf("logged %d lines, want 2", len(lines))
	}
	if !strings.Contains(lines[1], " GET /board - 200 0 ") || !strings.HasSuffix(lines[1], " - - - -") {
		t.Errorf("entry = %q", lines[1])
	}
	if got, want := len(strings.Fields(lines[0]))-1, len(strings.Fields(lines[1])); got != want {
		t.Errorf("header names %d fields, entry has %d", got, want)
	}
}

func TestLoggerSkipsStaticAndPolls(t *testing.T) {
	var lines []string
	config := DefaultLoggingConfig()
	config.Output = func(line string) { lines = append(lines, line) }

	handler := Logger(config)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/styles.css", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/player/sessions/abc", nil))

	if len(lines) != 0 {
		t.Errorf("skipped requests logged: %v", lines)
	}
}

func TestAnnotateOutsideLogger(t *testing.T) {
	Annotate(context.Background(), "page:board")
}

func TestCompression(t *testing.T) {
	large := strings.Repeat("<p>tutorial</p>", 200)

	tests := []struct {
		name         string
		acceptGzip   bool
		contentType  string
		body         string
		wantEncoding string
	}{
		{name: "large html", acceptGzip: true, contentType: "text/html; charset=utf-8", body: large, wantEncoding: "gzip"},
		{name: "client without gzip", acceptGzip: false, contentType: "text/html", body: large},
		{name: "small body", acceptGzip: true, contentType: "text/html", body: "<p>hi</p>"},
		{name: "video", acceptGzip: true, contentType: "video/webm", body: large},
		{name: "sniffed html", acceptGzip: true, body: "<!DOCTYPE html>" + large, wantEncoding: "gzip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Compression(DefaultCompressionConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if tt.contentType != "" {
					w.Header().Set("Content-Type", tt.contentType)
				}
				w.WriteHeader(http.StatusOK)
				// Write in pieces to exercise buffering.
				half := len(tt.body) / 2
				_, _ = io.WriteString(w, tt.body[:half])
				_, _ = io.WriteString(w, tt.body[half:])
			}))

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.acceptGzip {
				r.Header.Set("Accept-Encoding", "gzip, deflate")
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, r)

			if got := rec.Header().Get("Content-Encoding"); got != tt.wantEncoding {
				t.Fatalf("Content-Encoding = %q, want %q", got, tt.wantEncoding)
			}

			body := rec.Body.String()
			if tt.wantEncoding == "gzip" {
				zr, err := gzip.NewReader(rec.Body)
				if err != nil {
					t.Fatalf("gzip.NewReader: %v", err)
				}
				raw, err := io.ReadAll(zr)
				if err != nil {
					t.Fatalf("reading gzip body: %v", err)
				}
				body = string(raw)
			}
			if body != tt.body {
				t.Errorf("body mismatch: got %d bytes, want %d", len(body), len(tt.body))
			}
		})
	}
}

func TestCompressionKeepsStatus(t *testing.T) {
	handler := Compression(DefaultCompressionConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("missing"))
	}))

	r := httptest.NewRequest(http.MethodGet, "/nope", nil)
	r.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if rec.Body.String() != "missing" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestRouteLabel(t *testing.T) {
	var got string
	router := mux.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			got = routeLabel(r)
		})
	})
	router.HandleFunc("/api/player/sessions/{id}", func(http.ResponseWriter, *http.Request) {})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/player/sessions/abc", nil))
	if got != "/api/player/sessions/{id}" {
		t.Errorf("routeLabel = %q", got)
	}

	if label := routeLabel(httptest.NewRequest(http.MethodGet, "/x", nil)); label != "unmatched" {
		t.Errorf("routeLabel without route = %q", label)
	}
}

func TestMetricsMiddlewarePassesThrough(t *testing.T) {
	router := mux.NewRouter()
	router.Use(Metrics(DefaultMetricsConfig()))
	router.HandleFunc("/{page}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/homepage", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d", rec.Code)
	}
}
