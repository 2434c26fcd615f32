package ogproxy

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// handleEdge is the top-level dispatcher: classify, then hand off.
func (a *App) handleEdge(c echo.Context) error {
	req := c.Request()
	cl := a.classifier.Classify(req.URL.Path, req.Header.Get("User-Agent"), req.Header.Get("Accept"))
	switch cl.Kind {
	case KindStaticAsset:
		return a.forwarder.Forward(c, true)
	case KindSitemap:
		return a.handleSitemap(c)
	case KindFeed:
		return a.handleFeed(c)
	case KindCrawlerDoc:
		return a.handleCrawlerDoc(c, cl)
	default:
		return a.forwarder.Forward(c, false)
	}
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.store.ListPosts(c.Request().Context(), 0)
	body, rerr := RenderSitemap(a.Config.Site, a.pages, posts, time.Now())
	if rerr != nil {
		return rerr
	}
	a.setDocumentCache(c, err != nil)
	return c.Blob(http.StatusOK, "application/xml; charset=utf-8", body)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.store.ListPosts(c.Request().Context(), a.Config.Feed.ItemLimit)
	body, rerr := RenderFeed(a.Config.Site, posts, a.Config.Feed.ItemLimit)
	if rerr != nil {
		return rerr
	}
	a.setDocumentCache(c, err != nil)
	return c.Blob(http.StatusOK, "application/rss+xml; charset=utf-8", body)
}

// handleRobots generates robots.txt dynamically with a sitemap pointer.
// Non-read methods fall through to the proxy like any other non-asset path.
func (a *App) handleRobots(c echo.Context) error {
	if m := c.Request().Method; m != http.MethodGet && m != http.MethodHead {
		return a.forwarder.Forward(c, false)
	}
	body := fmt.Sprintf("User-agent: *\nAllow: /\n\nSitemap: %s/sitemap.xml\n",
		strings.TrimSuffix(a.Config.Site.URL, "/"))
	a.setDocumentCache(c, false)
	return c.String(http.StatusOK, body)
}

// handleCrawlerDoc synthesizes OGP documents for crawler traffic. Lookups
// that miss fall back to the home descriptor rather than a 404, so preview
// bots always get a card to render. Whether genuinely missing posts should
// 404 instead is an open product question; current behavior matches the
// deployed contract.
func (a *App) handleCrawlerDoc(c echo.Context, cl Classification) error {
	switch cl.Doc {
	case DocBlogPost:
		post, err := a.store.GetPost(c.Request().Context(), cl.Slug)
		if err != nil {
			return a.renderStaticDoc(c, a.pages.Home(), c.Request().URL.Path, true)
		}
		return a.renderPostDoc(c, post)
	case DocStaticPage:
		page, ok := a.pages.Lookup(cl.Page)
		if !ok {
			page = a.pages.Home()
		}
		return a.renderStaticDoc(c, page, page.Path, false)
	default:
		return a.renderStaticDoc(c, a.pages.Home(), c.Request().URL.Path, false)
	}
}

func (a *App) renderPostDoc(c echo.Context, post Post) error {
	site := a.Config.Site
	base := strings.TrimSuffix(site.URL, "/")

	image := ResolveImageURL(base, site.DefaultImage)
	if post.Image != "" {
		candidate := PostImageURL(base, post)
		if a.prober.Exists(c.Request().Context(), candidate) {
			image = candidate
		}
	}

	d := PageData{
		Title:        pageTitle(post.Title(), site.Name),
		Description:  post.Excerpt(),
		ImageURL:     image,
		CanonicalURL: BuildURL(base, "blog", post.Slug),
		OGType:       OGTypeArticle,
		Section:      post.Category(),
	}
	if !post.PublishedAt.IsZero() {
		d.PublishedTime = post.PublishedAt.UTC().Format(time.RFC3339)
	}
	a.setDocumentCache(c, false)
	return c.HTML(http.StatusOK, RenderCrawlerHTML(site, d))
}

func (a *App) renderStaticDoc(c echo.Context, page PageDescriptor, path string, degraded bool) error {
	site := a.Config.Site
	base := strings.TrimSuffix(site.URL, "/")
	d := PageData{
		Title:        pageTitle(page.Title, site.Name),
		Description:  page.Description,
		ImageURL:     ResolveImageURL(base, page.Image),
		CanonicalURL: base + path,
		OGType:       OGTypeWebsite,
	}
	a.setDocumentCache(c, degraded)
	return c.HTML(http.StatusOK, RenderCrawlerHTML(site, d))
}

// setDocumentCache attaches the caching policy for synthesized documents:
// a moderate public lifetime, shortened when the backing fetch degraded.
func (a *App) setDocumentCache(c echo.Context, degraded bool) {
	ttl := a.Config.Cache.DocumentTTL.Duration
	if degraded {
		ttl = a.Config.Cache.DegradedTTL.Duration
	}
	c.Response().Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(ttl.Seconds())))
}
