package render

import (
	"net/url"
	"strings"

	"tutorial-portal/internal/filter"
	"tutorial-portal/internal/pages"
	"tutorial-portal/internal/params"
	"tutorial-portal/internal/player"
)

// View names, used as metric labels.
const (
	ViewSelector   = "selector"
	ViewDeployment = "deployment"
	ViewNotFound   = "not_found"
)

// Request carries the parts of an HTTP request that affect rendering.
type Request struct {
	// Path is the request path including the base path.
	Path string
	// Query holds the raw query parameters.
	Query url.Values
	// UserAgent is the client's User-Agent header.
	UserAgent string
	// Origin is the scheme and host, e.g. "https://portal.example.com".
	Origin string
	// RouteName is the resolved page name, shown in the debug block.
	RouteName string
}

type pageView struct {
	Lang           string
	Title          string
	HeaderTitle    string
	HeaderSubtitle string
	ThemeClass     string
	Stylesheet     string
	HomeURL        string
	PlayerAPI      string

	Cards    []cardView
	Sections []sectionView
	Empty    bool

	QR    *qrView
	Debug *debugView
}

type cardView struct {
	ID        string
	Name      string
	Subtitle  string
	Thumbnail string
	Href      string
}

type sectionView struct {
	Title  string
	Videos []videoView
}

type videoView struct {
	Title     string
	Src       string
	Kind      string
	Thumbnail string
	Version   string
	Tags      string
}

type qrView struct {
	ImageURL  string
	TargetURL string
	Size      int
}

type debugView struct {
	UserAgent  string
	RoomDevice bool
	AutoClose  bool
	Route      string
	Query      string
	Hidden     int
}

// buildPage turns a page definition into its view model. hidden reports how
// many videos the filter removed.
func (r *Renderer) buildPage(name string, page *pages.Page, req Request) (pageView, int) {
	q := params.Parse(req.Query)

	v := r.baseView(req, q)
	v.Title = page.Title
	if v.Title == "" {
		v.Title = page.Header.Title
	}
	v.HeaderTitle = page.Header.Title
	v.HeaderSubtitle = page.Header.Subtitle

	hidden := 0
	switch page.Type {
	case pages.TypeSelector:
		v.Cards = r.buildCards(page.Deployments, req.Query)
		v.Empty = len(v.Cards) == 0
	case pages.TypeDeployment:
		v.Sections, hidden = r.buildSections(page.Sections, filter.FromQuery(q))
		v.Empty = len(v.Sections) == 0
	}

	if v.Debug != nil {
		v.Debug.Route = name
		v.Debug.Hidden = hidden
	}
	return v, hidden
}

func (r *Renderer) buildNotFound(req Request) pageView {
	q := params.Parse(req.Query)
	v := r.baseView(req, q)
	v.Title = "Page Not Found"
	v.HeaderTitle = "Page Not Found"
	v.HeaderSubtitle = "The requested page could not be found."
	if v.Debug != nil {
		v.Debug.Route = req.RouteName
	}
	return v
}

func (r *Renderer) baseView(req Request, q params.Query) pageView {
	v := pageView{
		Lang:       "en",
		ThemeClass: q.ThemeClass(),
		Stylesheet: r.stylesheet,
		HomeURL:    params.Link(r.base, "/", req.Query, nil),
		PlayerAPI:  params.JoinBase(r.base, "/api/player"),
	}
	if params.ShowQR(q, req.UserAgent) {
		v.QR = r.buildQR(req)
	}
	if q.Debug {
		v.Debug = &debugView{
			UserAgent:  req.UserAgent,
			RoomDevice: params.IsRoomDevice(req.UserAgent),
			AutoClose:  params.AutoCloseEnabled(q, req.UserAgent),
			Query:      req.Query.Encode(),
		}
	}
	return v
}

func (r *Renderer) buildCards(deployments []pages.Deployment, query url.Values) []cardView {
	cards := make([]cardView, 0, len(deployments))
	for _, d := range deployments {
		cards = append(cards, cardView{
			ID:        d.ID,
			Name:      d.Name,
			Subtitle:  d.Subtitle,
			Thumbnail: r.thumbnail(d.Thumbnail),
			Href:      params.Link(r.base, params.DeploymentPath(d.ID), query, nil),
		})
	}
	return cards
}

func (r *Renderer) buildSections(sections []pages.Section, state filter.State) ([]sectionView, int) {
	var out []sectionView
	hidden := 0
	for _, s := range sections {
		visible := filter.Visible(s.Videos, state)
		hidden += len(s.Videos) - len(visible)
		if len(visible) == 0 {
			continue
		}
		sv := sectionView{Title: s.Title, Videos: make([]videoView, 0, len(visible))}
		for _, video := range visible {
			src := params.AssetPath(r.base, video.Video)
			sv.Videos = append(sv.Videos, videoView{
				Title:     pages.DisplayName(video),
				Src:       src,
				Kind:      string(player.ClassifyMedia(src)),
				Thumbnail: r.thumbnail(video.Thumbnail),
				Version:   video.Version,
				Tags:      strings.Join(video.Tags, ","),
			})
		}
		out = append(out, sv)
	}
	return out, hidden
}

// buildQR links to a QR image of the current page. The encoded URL carries
// qr=false so scanning it on a phone does not show the code again.
func (r *Renderer) buildQR(req Request) *qrView {
	target := req.Origin + params.Link(r.base, req.Path, req.Query, map[string]string{params.QR: "false"})

	img, err := url.Parse(r.qrService)
	if err != nil {
		return nil
	}
	values := img.Query()
	values.Set("size", sizeParam(r.qrSize))
	values.Set("data", target)
	img.RawQuery = values.Encode()

	return &qrView{ImageURL: img.String(), TargetURL: target, Size: r.qrSize}
}

// thumbnail maps a config thumbnail to the URL the page should load.
// Local images go through the resizing endpoint when it is enabled.
func (r *Renderer) thumbnail(ref string) string {
	if ref == "" {
		return ""
	}
	if r.thumbWidth <= 0 || strings.HasPrefix(ref, "/") || strings.Contains(ref, "://") {
		return params.AssetPath(r.base, ref)
	}
	return params.Link(r.base, "/thumbs/"+ref, nil, map[string]string{"w": itoa(r.thumbWidth)})
}
