package ogproxy

import (
	"net"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
)

// BuildURL joins a base URL with path segments.
func BuildURL(base string, segments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(segments...))
	return u.String()
}

// ResolveImageURL applies the shared image-URL rule: URLs that already carry
// a scheme pass through untouched, site-relative paths are prefixed with the
// canonical site origin.
func ResolveImageURL(base, image string) string {
	if image == "" {
		return ""
	}
	if u, err := url.Parse(image); err == nil && u.Scheme != "" {
		return image
	}
	if !strings.HasPrefix(image, "/") {
		image = "/" + image
	}
	return strings.TrimSuffix(base, "/") + image
}

// PostImageURL resolves a post's candidate image and appends the
// cache-busting version parameter. The version comes from the update
// timestamp, falling back to the publish timestamp so crawler caches still
// bust on republish.
func PostImageURL(base string, p Post) string {
	resolved := ResolveImageURL(base, p.Image)
	if resolved == "" {
		return ""
	}
	ts := p.UpdatedAt
	if ts.IsZero() {
		ts = p.PublishedAt
	}
	if ts.IsZero() {
		return resolved
	}
	sep := "?"
	if strings.Contains(resolved, "?") {
		sep = "&"
	}
	return resolved + sep + "v=" + strconv.FormatInt(ts.Unix(), 10)
}

// pageTitle composes the presented document title. The site name is appended
// unless the page title already is the site name (the home page).
func pageTitle(title, siteName string) string {
	if title == "" {
		return siteName
	}
	if title == siteName {
		return title
	}
	return title + " | " + siteName
}

// langFromLocale reduces an OGP locale ("ja_JP") to an HTML lang ("ja").
func langFromLocale(locale string) string {
	if i := strings.IndexAny(locale, "_-"); i > 0 {
		return locale[:i]
	}
	if locale == "" {
		return "ja"
	}
	return locale
}

// newTransport returns the tuned HTTP transport shared by outbound clients.
func newTransport() *http.Transport {
	return &http.Transport{
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
