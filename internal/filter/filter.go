package filter

import (
	"tutorial-portal/internal/pages"
	"tutorial-portal/internal/params"
)

// State is the filter derived from one request's query string.
type State struct {
	Hide []string
	Show []string
	// Version is nil when no version was requested.
	Version *string
}

// FromQuery builds the filter state for a parsed query.
func FromQuery(q params.Query) State {
	s := State{Hide: q.Hide, Show: q.Show}
	if q.HasVer {
		v := q.Version
		s.Version = &v
	}
	return s
}

// IsVisible reports whether v passes the version gate and then the tag gate.
// A video failing the version gate is hidden whatever its tags are.
func IsVisible(v pages.Video, s State) bool {
	switch {
	case s.Version != nil && *s.Version == params.VersionAll:
	case s.Version != nil:
		if v.Version != *s.Version {
			return false
		}
	default:
		if !v.Default {
			return false
		}
	}

	if v.Tags == nil {
		return true
	}
	if len(s.Show) > 0 {
		return intersects(v.Tags, s.Show)
	}
	if len(s.Hide) > 0 {
		return !intersects(v.Tags, s.Hide)
	}
	return true
}

// Visible returns the videos of a section that pass the filter, preserving
// their order.
func Visible(videos []pages.Video, s State) []pages.Video {
	var out []pages.Video
	for _, v := range videos {
		if IsVisible(v, s) {
			out = append(out, v)
		}
	}
	return out
}

func intersects(tags, set []string) bool {
	for _, t := range tags {
		for _, s := range set {
			if t == s {
				return true
			}
		}
	}
	return false
}
