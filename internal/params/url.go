package params

import (
	"net/url"
	"strings"
)

// JoinBase prefixes p with the base path, avoiding doubled or missing
// slashes. Paths that already carry the base are returned unchanged.
func JoinBase(base, p string) string {
	base = NormalizeBase(base)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if base == "" {
		return p
	}
	if p == base || strings.HasPrefix(p, base+"/") {
		return p
	}
	return base + p
}

// NormalizeBase returns base with a single leading slash and no trailing
// slash; the root base is the empty string.
func NormalizeBase(base string) string {
	base = strings.Trim(strings.TrimSpace(base), "/")
	if base == "" {
		return ""
	}
	return "/" + base
}

// Link builds a URL for p under base that carries every parameter in
// current, followed by overrides. An override with an empty value removes
// the parameter.
func Link(base, p string, current url.Values, overrides map[string]string) string {
	values := url.Values{}
	for k, vs := range current {
		values[k] = append([]string(nil), vs...)
	}
	for k, v := range overrides {
		if v == "" {
			values.Del(k)
			continue
		}
		values.Set(k, v)
	}

	u := url.URL{Path: JoinBase(base, p)}
	u.RawQuery = values.Encode()
	return u.String()
}

// AssetPath resolves a config-relative asset reference the way links are
// resolved: absolute paths and URLs pass through, relative paths are placed
// under base.
func AssetPath(base, ref string) string {
	if ref == "" || strings.HasPrefix(ref, "/") || strings.Contains(ref, "://") {
		return ref
	}
	return JoinBase(base, ref)
}

// DeploymentPath turns a deployment route name into its canonical
// slash-addressed path: "mtr-navigator" becomes "/mtr/navigator". Names
// without a hyphen are used as a single segment.
func DeploymentPath(id string) string {
	if i := strings.Index(id, "-"); i > 0 && i < len(id)-1 {
		return "/" + id[:i] + "/" + id[i+1:]
	}
	return "/" + id
}
