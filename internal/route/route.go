package route

import (
	"path"
	"path/filepath"
	"strings"

	"tutorial-portal/internal/filesystem"
	"tutorial-portal/internal/mediatypes"
	"tutorial-portal/internal/pages"
	"tutorial-portal/internal/params"
)

// Kind tells which branch of a Result is populated.
type Kind int

const (
	NotFound Kind = iota
	Page
	ProxyRedirect
)

func (k Kind) String() string {
	switch k {
	case Page:
		return "page"
	case ProxyRedirect:
		return "proxyRedirect"
	default:
		return "notFound"
	}
}

// Pattern names the media path shape that produced a redirect.
type Pattern string

const (
	PatternLegacy       Pattern = "legacy"
	PatternHierarchical Pattern = "hierarchical"
	PatternTyped        Pattern = "typed"
	PatternSimplified   Pattern = "simplified"
)

// Media types used in storage paths.
const (
	TypeVideos = "videos"
	TypeImages = "images"
)

// DefaultMediaRoot is the storage directory that holds per-deployment media.
const DefaultMediaRoot = "deployments"

// Media describes a matched media-proxy path.
type Media struct {
	Pattern    Pattern
	Deployment string
	Type       string
	File       string
}

// Result is the outcome of resolving a path.
type Result struct {
	Kind   Kind
	Name   string
	Target string
	Media  *Media
}

// reservedSegments are first path segments that never name a deployment
// type in the hierarchical forms.
var reservedSegments = map[string]bool{
	"media":       true,
	TypeVideos:    true,
	TypeImages:    true,
	"index.html":  true,
	"config":      true,
	"shared":      true,
	"deployments": true,
	"docs":        true,
}

// Locator finds the stored file behind an extension-less media name.
type Locator interface {
	Locate(deployment, name string) (mediaType, file string, ok bool)
}

// Resolver resolves paths relative to a base path prefix.
type Resolver struct {
	base      string
	mediaRoot string
	locator   Locator
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLocator enables extension-less hierarchical media paths such as
// /mtr/navigator/schedule_teams, resolved through l.
func WithLocator(l Locator) Option {
	return func(r *Resolver) { r.locator = l }
}

// NewResolver creates a resolver for the given base path and media storage
// root. An empty media root selects DefaultMediaRoot.
func NewResolver(base, mediaRoot string, opts ...Option) *Resolver {
	mediaRoot = strings.Trim(mediaRoot, "/")
	if mediaRoot == "" {
		mediaRoot = DefaultMediaRoot
	}
	r := &Resolver{base: params.NormalizeBase(base), mediaRoot: mediaRoot}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MediaRoot returns the storage directory media redirects point into.
func (r *Resolver) MediaRoot() string {
	return r.mediaRoot
}

// Base returns the normalized base path.
func (r *Resolver) Base() string {
	return r.base
}

// Resolve maps a request path to a page, a media redirect or not-found.
func (r *Resolver) Resolve(p string) Result {
	clean := strings.Trim(r.stripBase(p), "/")
	clean = strings.TrimPrefix(clean, "index.html/")

	if clean == "" || clean == "index.html" || strings.HasSuffix(clean, "/index.html") {
		return Result{Kind: Page, Name: pages.HomepageRoute}
	}

	segs := strings.Split(clean, "/")
	for _, s := range segs {
		if s == "" {
			return Result{Kind: NotFound}
		}
	}

	if m := r.matchMedia(segs); m != nil {
		return Result{Kind: ProxyRedirect, Target: r.storagePath(m), Media: m}
	}

	switch len(segs) {
	case 1:
		return Result{Kind: Page, Name: segs[0]}
	case 2:
		return Result{Kind: Page, Name: segs[0] + "-" + segs[1]}
	default:
		return Result{Kind: NotFound}
	}
}

func (r *Resolver) stripBase(p string) string {
	if r.base == "" {
		return p
	}
	if p == r.base || strings.HasPrefix(p, r.base+"/") {
		return p[len(r.base):]
	}
	return p
}

func (r *Resolver) storagePath(m *Media) string {
	return params.JoinBase(r.base, "/"+path.Join(r.mediaRoot, m.Deployment, m.Type, m.File))
}

// matchMedia tries the media patterns in their fixed order.
func (r *Resolver) matchMedia(segs []string) *Media {
	n := len(segs)

	if n >= 4 && segs[0] == "media" && isMediaType(segs[2]) {
		return &Media{Pattern: PatternLegacy, Deployment: segs[1], Type: segs[2], File: strings.Join(segs[3:], "/")}
	}

	if n == 3 && !r.isReserved(segs[0]) {
		deployment := segs[0] + "-" + segs[1]
		if t := typeForFile(segs[2]); t != "" {
			return &Media{Pattern: PatternHierarchical, Deployment: deployment, Type: t, File: segs[2]}
		}
		if path.Ext(segs[2]) == "" && r.locator != nil {
			if t, file, ok := r.locator.Locate(deployment, segs[2]); ok {
				return &Media{Pattern: PatternHierarchical, Deployment: deployment, Type: t, File: file}
			}
		}
	}

	if n == 4 && isMediaType(segs[0]) {
		return &Media{Pattern: PatternTyped, Deployment: segs[1] + "-" + segs[2], Type: segs[0], File: segs[3]}
	}

	if n == 3 && isMediaType(segs[0]) {
		return &Media{Pattern: PatternSimplified, Deployment: segs[1], Type: segs[0], File: segs[2]}
	}

	return nil
}

func isMediaType(s string) bool {
	return s == TypeVideos || s == TypeImages
}

// isReserved reports first segments that belong to the prefixed media forms,
// the site's own directories or the media root, and therefore never name a
// deployment type.
func (r *Resolver) isReserved(s string) bool {
	if reservedSegments[s] {
		return true
	}
	first, _, _ := strings.Cut(r.mediaRoot, "/")
	return s == first
}

// DirLocator finds extension-less media under Root, laid out as
// {Root}/{deployment}/{videos|images}/{name}{ext}. Extensions are tried in
// mediatypes.ProxyProbeOrder.
type DirLocator struct {
	Root  string
	Retry filesystem.Retry
}

// NewDirLocator returns a locator rooted at dir.
func NewDirLocator(dir string) *DirLocator {
	return &DirLocator{Root: dir, Retry: filesystem.DefaultRetry()}
}

func (l *DirLocator) Locate(deployment, name string) (string, string, bool) {
	if strings.ContainsAny(deployment+name, `/\`) || strings.HasPrefix(deployment, ".") || strings.HasPrefix(name, ".") {
		return "", "", false
	}
	for _, ext := range mediatypes.ProxyProbeOrder {
		t := typeForFile(ext)
		file := name + ext
		info, err := l.Retry.Stat("static", filepath.Join(l.Root, deployment, t, file))
		if err == nil && info.Mode().IsRegular() {
			return t, file, true
		}
	}
	return "", "", false
}

// typeForFile infers the storage type of a file name from its extension.
func typeForFile(name string) string {
	switch mediatypes.ProxyFileType(path.Ext(name)) {
	case mediatypes.FileTypeVideo:
		return TypeVideos
	case mediatypes.FileTypeImage:
		return TypeImages
	default:
		return ""
	}
}
