package pages

// PageType distinguishes the two kinds of page a route can render.
type PageType string

const (
	// TypeSelector lists deployments, used by the homepage.
	TypeSelector PageType = "selector"
	// TypeDeployment lists sections of tutorial videos.
	TypeDeployment PageType = "deployment"
)

// HomepageRoute is the route name served for the site root.
const HomepageRoute = "homepage"

// Config maps route names to their page definitions.
type Config map[string]*Page

// Page is one routable view.
type Page struct {
	Title       string       `json:"title" yaml:"title"`
	Type        PageType     `json:"type" yaml:"type"`
	Header      Header       `json:"header" yaml:"header"`
	Deployments []Deployment `json:"deployments,omitempty" yaml:"deployments,omitempty"`
	Sections    []Section    `json:"sections,omitempty" yaml:"sections,omitempty"`
}

// Header is the title block at the top of a page.
type Header struct {
	Title    string `json:"title" yaml:"title"`
	Subtitle string `json:"subtitle" yaml:"subtitle"`
}

// Deployment is a selectable tutorial group shown on a selector page. ID is
// the route name of the deployment page.
type Deployment struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Subtitle  string `json:"subtitle" yaml:"subtitle"`
	Thumbnail string `json:"thumbnail" yaml:"thumbnail"`
}

// Section groups videos on a deployment page.
type Section struct {
	Title  string  `json:"title" yaml:"title"`
	Videos []Video `json:"videos" yaml:"videos"`
}

// Video is a single catalog entry.
//
// A nil Tags slice means the video is untagged, which is different from an
// explicitly empty list. Default marks the variant shown when no version
// filter is requested.
type Video struct {
	Title     string   `json:"title" yaml:"title"`
	Video     string   `json:"video" yaml:"video"`
	Thumbnail string   `json:"thumbnail" yaml:"thumbnail"`
	Tags      []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Version   string   `json:"version,omitempty" yaml:"version,omitempty"`
	Default   bool     `json:"default,omitempty" yaml:"default,omitempty"`
}

// Page returns the page registered under name, or nil.
func (c Config) Page(name string) *Page {
	if c == nil {
		return nil
	}
	return c[name]
}

// Thumbnails returns every distinct thumbnail path referenced by the
// configuration, in a stable order.
func (c Config) Thumbnails() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		out = append(out, p)
	}
	for _, name := range c.RouteNames() {
		page := c[name]
		for _, d := range page.Deployments {
			add(d.Thumbnail)
		}
		for _, s := range page.Sections {
			for _, v := range s.Videos {
				add(v.Thumbnail)
			}
		}
	}
	return out
}
