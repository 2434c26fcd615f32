package ogproxy

import (
	"path"
	"strings"
)

// Kind is the handling strategy selected for a request.
type Kind int

const (
	KindStaticAsset Kind = iota
	KindSitemap
	KindFeed
	KindCrawlerDoc
	KindProxy
)

// DocKind sub-classifies crawler-document requests by path shape.
type DocKind int

const (
	DocNone DocKind = iota
	DocBlogPost
	DocStaticPage
	DocUnknownPage
)

// Classification is the result of classifying one request. Slug is set for
// DocBlogPost, Page holds the descriptor path for DocStaticPage.
type Classification struct {
	Kind Kind
	Doc  DocKind
	Slug string
	Page string
}

// Classifier selects a handling strategy from request metadata alone.
type Classifier struct {
	extensions map[string]struct{}
	crawlers   []string
	pages      *PageSet
}

// NewClassifier builds a classifier from the configured extension set and
// crawler allow-list.
func NewClassifier(cfg Config, pages *PageSet) *Classifier {
	extensions := make(map[string]struct{}, len(cfg.AssetExtensions))
	for _, e := range cfg.AssetExtensions {
		extensions[strings.ToLower(strings.TrimPrefix(e, "."))] = struct{}{}
	}
	crawlers := make([]string, len(cfg.Crawlers))
	for i, sig := range cfg.Crawlers {
		crawlers[i] = strings.ToLower(sig)
	}
	return &Classifier{extensions: extensions, crawlers: crawlers, pages: pages}
}

// Classify maps (path, User-Agent, Accept) onto exactly one handling
// strategy. It is a total, deterministic function: no I/O, no clock, no
// randomness. The extension check runs first, so static assets are proxied
// even for crawler traffic. The Accept header is part of the contract but
// never consulted; streaming negotiation belongs to other services.
func (cl *Classifier) Classify(reqPath, userAgent, accept string) Classification {
	_ = accept
	if ext := pathExtension(reqPath); ext != "" {
		if _, ok := cl.extensions[ext]; ok {
			return Classification{Kind: KindStaticAsset}
		}
	}
	switch reqPath {
	case "/sitemap.xml":
		return Classification{Kind: KindSitemap}
	case "/feed.xml", "/rss.xml":
		return Classification{Kind: KindFeed}
	}
	if !cl.isCrawler(userAgent) {
		return Classification{Kind: KindProxy}
	}
	if slug, ok := blogSlug(reqPath); ok {
		return Classification{Kind: KindCrawlerDoc, Doc: DocBlogPost, Slug: slug}
	}
	if page, ok := cl.pages.Lookup(reqPath); ok {
		return Classification{Kind: KindCrawlerDoc, Doc: DocStaticPage, Page: page.Path}
	}
	return Classification{Kind: KindCrawlerDoc, Doc: DocUnknownPage}
}

func (cl *Classifier) isCrawler(userAgent string) bool {
	if userAgent == "" {
		return false
	}
	ua := strings.ToLower(userAgent)
	for _, sig := range cl.crawlers {
		if strings.Contains(ua, sig) {
			return true
		}
	}
	return false
}

func pathExtension(p string) string {
	ext := path.Ext(p)
	if ext == "" {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// blogSlug extracts the slug from /blog/{slug} paths. Nested paths and the
// bare blog index do not count as post lookups.
func blogSlug(p string) (string, bool) {
	rest, ok := strings.CutPrefix(p, "/blog/")
	if !ok {
		return "", false
	}
	rest = strings.TrimSuffix(rest, "/")
	if rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}
