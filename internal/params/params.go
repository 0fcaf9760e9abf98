package params

import (
	"net/url"
	"strings"
)

// Query parameter names.
const (
	Hide    = "hide"
	Show    = "show"
	Version = "version"
	QR      = "qr"
	Timeout = "timeout"
	Theme   = "theme"
	Debug   = "debug"
	Route   = "route"
	Source  = "source"
)

// VersionAll disables the version gate.
const VersionAll = "all"

// Tri is an optional boolean query flag.
type Tri int

const (
	// Unset means the parameter was absent or not "true"/"false".
	Unset Tri = iota
	True
	False
)

// Query is the parsed view of a request's query string.
type Query struct {
	Hide    []string
	Show    []string
	Version string
	HasVer  bool
	QR      Tri
	Timeout Tri
	Theme   string
	Debug   bool
}

// Parse reads the recognized parameters from values.
func Parse(values url.Values) Query {
	q := Query{
		Hide:    SplitList(values.Get(Hide)),
		Show:    SplitList(values.Get(Show)),
		QR:      parseTri(values.Get(QR)),
		Timeout: parseTri(values.Get(Timeout)),
		Theme:   values.Get(Theme),
		Debug:   values.Get(Debug) == "true",
	}
	if values.Has(Version) {
		if v := values.Get(Version); v != "" {
			q.Version = v
			q.HasVer = true
		}
	}
	return q
}

// SplitList splits a comma-separated list, trimming entries and dropping
// blanks. It never returns nil.
func SplitList(raw string) []string {
	out := []string{}
	if raw == "" {
		return out
	}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseTri(v string) Tri {
	switch v {
	case "true":
		return True
	case "false":
		return False
	default:
		return Unset
	}
}

// ThemeClass maps the theme parameter to the body class it enables.
func (q Query) ThemeClass() string {
	switch q.Theme {
	case "dark":
		return "dark-theme"
	case "classic":
		return "classic-theme"
	default:
		return ""
	}
}
