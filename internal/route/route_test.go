package route

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveHomepage(t *testing.T) {
	r := NewResolver("/learn-devices", "")
	for _, p := range []string{
		"", "/", "/index.html", "/learn-devices", "/learn-devices/",
		"/learn-devices/index.html", "/docs/index.html",
	} {
		got := r.Resolve(p)
		if got.Kind != Page || got.Name != "homepage" {
			t.Errorf("Resolve(%q) = %+v, want homepage", p, got)
		}
	}
}

func TestResolvePages(t *testing.T) {
	r := NewResolver("/learn-devices", "")
	tests := []struct {
		path string
		want string
	}{
		{"/mtr/navigator", "mtr-navigator"},
		{"/mtr-navigator", "mtr-navigator"},
		{"/mtr/navigator/", "mtr-navigator"},
		{"/learn-devices/mtr/navigator", "mtr-navigator"},
		{"/learn-devices/mtr-navigator", "mtr-navigator"},
		{"/index.html/mtr-navigator", "mtr-navigator"},
		{"/board", "board"},
	}
	for _, tt := range tests {
		got := r.Resolve(tt.path)
		if got.Kind != Page || got.Name != tt.want {
			t.Errorf("Resolve(%q) = %+v, want page %q", tt.path, got, tt.want)
		}
	}
}

func TestResolveRoundTrip(t *testing.T) {
	r := NewResolver("", "")
	slash := r.Resolve("/mtr/navigator")
	hyphen := r.Resolve("/mtr-navigator")
	if slash.Kind != Page || slash != hyphen {
		t.Errorf("Resolve(/mtr/navigator) = %+v, Resolve(/mtr-navigator) = %+v", slash, hyphen)
	}
}

func TestResolveMediaPatterns(t *testing.T) {
	r := NewResolver("/learn", "")
	tests := []struct {
		path    string
		pattern Pattern
		target  string
	}{
		{"/media/mtr-navigator/videos/join.webm", PatternLegacy, "/learn/deployments/mtr-navigator/videos/join.webm"},
		{"/media/mtr-navigator/images/sub/dir/a.png", PatternLegacy, "/learn/deployments/mtr-navigator/images/sub/dir/a.png"},
		{"/mtr/navigator/join_room_audio.webm", PatternHierarchical, "/learn/deployments/mtr-navigator/videos/join_room_audio.webm"},
		{"/mtr/navigator/Screen.PNG", PatternHierarchical, "/learn/deployments/mtr-navigator/images/Screen.PNG"},
		{"/videos/mtr/navigator/join", PatternTyped, "/learn/deployments/mtr-navigator/videos/join"},
		{"/images/mtr/navigator/a.gif", PatternTyped, "/learn/deployments/mtr-navigator/images/a.gif"},
		{"/videos/mtr-navigator/join.webm", PatternSimplified, "/learn/deployments/mtr-navigator/videos/join.webm"},
		{"/learn/images/board/pic.jpg", PatternSimplified, "/learn/deployments/board/images/pic.jpg"},
	}
	for _, tt := range tests {
		got := r.Resolve(tt.path)
		if got.Kind != ProxyRedirect {
			t.Errorf("Resolve(%q).Kind = %v, want proxyRedirect", tt.path, got.Kind)
			continue
		}
		if got.Media.Pattern != tt.pattern {
			t.Errorf("Resolve(%q).Pattern = %v, want %v", tt.path, got.Media.Pattern, tt.pattern)
		}
		if got.Target != tt.target {
			t.Errorf("Resolve(%q).Target = %q, want %q", tt.path, got.Target, tt.target)
		}
	}
}

func TestMediaPrecedenceOverPage(t *testing.T) {
	r := NewResolver("", "")
	got := r.Resolve("/mtr/navigator/join_room_audio.webm")
	if got.Kind != ProxyRedirect {
		t.Fatalf("Resolve() = %+v, want proxyRedirect", got)
	}
	if got.Media.Deployment != "mtr-navigator" || got.Media.Type != TypeVideos || got.Media.File != "join_room_audio.webm" {
		t.Errorf("Media = %+v", got.Media)
	}
}

func TestHierarchicalCheckedBeforeTyped(t *testing.T) {
	r := NewResolver("", "")
	// Three segments with a media extension are hierarchical even when the
	// deployment type happens to look like a device name.
	got := r.Resolve("/room/kit/videos.webm")
	if got.Kind != ProxyRedirect || got.Media.Pattern != PatternHierarchical {
		t.Errorf("Resolve() = %+v, want hierarchical redirect", got)
	}
}

func TestCustomMediaRoot(t *testing.T) {
	r := NewResolver("", "/storage/media/")
	got := r.Resolve("/videos/board/a.mp4")
	if got.Target != "/storage/media/board/videos/a.mp4" {
		t.Errorf("Target = %q", got.Target)
	}
}

func TestResolveNotFound(t *testing.T) {
	r := NewResolver("", "")
	for _, p := range []string{
		"/a/b/c",
		"/a/b/c/d/e",
		"/a//b",
		"/media/mtr/audio/x.webm",
		"/media/mtr/videos",
	} {
		if got := r.Resolve(p); got.Kind != NotFound {
			t.Errorf("Resolve(%q) = %+v, want notFound", p, got)
		}
	}
}

func TestBaseOnlyStrippedOnSegmentBoundary(t *testing.T) {
	r := NewResolver("/learn", "")
	got := r.Resolve("/learning")
	if got.Kind != Page || got.Name != "learning" {
		t.Errorf("Resolve(/learning) = %+v, want page learning", got)
	}
	if r.Base() != "/learn" {
		t.Errorf("Base() = %q", r.Base())
	}
}

func TestKindString(t *testing.T) {
	if Page.String() != "page" || ProxyRedirect.String() != "proxyRedirect" || NotFound.String() != "notFound" {
		t.Error("unexpected Kind strings")
	}
}

type fakeLocator map[string]string

func (f fakeLocator) Locate(deployment, name string) (string, string, bool) {
	file, ok := f[deployment+"/"+name]
	if !ok {
		return "", "", false
	}
	return typeForFile(file), file, true
}

func TestResolveExtensionlessMedia(t *testing.T) {
	r := NewResolver("/learn", "", WithLocator(fakeLocator{
		"mtr-navigator/schedule_teams": "schedule_teams.webm",
		"board-pro/layout":             "layout.png",
		"docs-a/b":                     "b.png",
	}))

	tests := []struct {
		path     string
		wantKind Kind
		target   string
	}{
		{"/mtr/navigator/schedule_teams", ProxyRedirect, "/learn/deployments/mtr-navigator/videos/schedule_teams.webm"},
		{"/learn/board/pro/layout", ProxyRedirect, "/learn/deployments/board-pro/images/layout.png"},
		{"/mtr/navigator/missing", NotFound, ""},
		{"/docs/a/b", NotFound, ""},
		{"/mtr/navigator/notes.txt", NotFound, ""},
	}
	for _, tt := range tests {
		got := r.Resolve(tt.path)
		if got.Kind != tt.wantKind || got.Target != tt.target {
			t.Errorf("Resolve(%q) = %v %q, want %v %q", tt.path, got.Kind, got.Target, tt.wantKind, tt.target)
		}
		if got.Kind == ProxyRedirect && got.Media.Pattern != PatternHierarchical {
			t.Errorf("Resolve(%q).Pattern = %v, want hierarchical", tt.path, got.Media.Pattern)
		}
	}
}

func TestExtensionlessMediaNeedsLocator(t *testing.T) {
	r := NewResolver("", "")
	if got := r.Resolve("/mtr/navigator/schedule_teams"); got.Kind != NotFound {
		t.Errorf("Resolve() = %+v, want notFound without a locator", got)
	}
}

func TestReservedFirstSegments(t *testing.T) {
	r := NewResolver("", "/storage/media")
	for _, p := range []string{
		"/deployments/x/y.png",
		"/config/x/y.png",
		"/shared/scripts/app.gif",
		"/docs/x/y.mp4",
		"/storage/x/y.webm",
	} {
		if got := r.Resolve(p); got.Kind != NotFound {
			t.Errorf("Resolve(%q) = %+v, want notFound", p, got)
		}
	}

	if got := r.Resolve("/deployments/x/y.png"); got.Target != "" {
		t.Errorf("missing storage file redirected to %q", got.Target)
	}
}

func TestDirLocator(t *testing.T) {
	root := t.TempDir()
	write := func(rel string) {
		t.Helper()
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("mtr-navigator/videos/join.mp4")
	write("mtr-navigator/images/join.png")
	write("mtr-navigator/images/logo.jpeg")
	if err := os.MkdirAll(filepath.Join(root, "mtr-navigator", "videos", "dir.webm"), 0o755); err != nil {
		t.Fatal(err)
	}

	l := NewDirLocator(root)
	tests := []struct {
		name     string
		wantType string
		wantFile string
		wantOK   bool
	}{
		{"join", TypeVideos, "join.mp4", true},
		{"logo", TypeImages, "logo.jpeg", true},
		{"dir", "", "", false},
		{"absent", "", "", false},
		{"..", "", "", false},
	}
	for _, tt := range tests {
		typ, file, ok := l.Locate("mtr-navigator", tt.name)
		if typ != tt.wantType || file != tt.wantFile || ok != tt.wantOK {
			t.Errorf("Locate(%q) = %q, %q, %v; want %q, %q, %v",
				tt.name, typ, file, ok, tt.wantType, tt.wantFile, tt.wantOK)
		}
	}

	if _, _, ok := l.Locate("../mtr-navigator", "join"); ok {
		t.Error("Locate accepted a deployment outside the root")
	}

	r := NewResolver("", "", WithLocator(l))
	if got := r.Resolve("/mtr/navigator/join"); got.Target != "/deployments/mtr-navigator/videos/join.mp4" {
		t.Errorf("Resolve() target = %q", got.Target)
	}
}
