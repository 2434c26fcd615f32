package ogproxy

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
)

// OGP object types.
const (
	OGTypeWebsite = "website"
	OGTypeArticle = "article"
)

// PageData is the already-fetched, already-validated input to the crawler
// document synthesizer. ImageURL and CanonicalURL are absolute.
type PageData struct {
	Title         string
	Description   string
	ImageURL      string
	CanonicalURL  string
	OGType        string
	PublishedTime string
	Section       string
}

// RenderCrawlerHTML synthesizes the head-heavy HTML shell served to crawler
// traffic. The body is a minimal human-readable fallback; preview bots only
// read the head. Every interpolated value is HTML-escaped; titles and
// excerpts originate from user-editable content and must never reach the
// document raw.
func RenderCrawlerHTML(site SiteConfig, d PageData) string {
	esc := html.EscapeString
	title := esc(d.Title)
	desc := esc(d.Description)
	image := esc(d.ImageURL)
	canonical := esc(d.CanonicalURL)

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n")
	fmt.Fprintf(&b, "<html lang=%q>\n<head>\n", langFromLocale(site.Locale))
	b.WriteString("<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", title)
	fmt.Fprintf(&b, "<meta name=\"description\" content=\"%s\">\n", desc)
	b.WriteString("<meta name=\"robots\" content=\"index, follow\">\n")
	fmt.Fprintf(&b, "<link rel=\"canonical\" href=\"%s\">\n", canonical)

	fmt.Fprintf(&b, "<meta property=\"og:type\" content=\"%s\">\n", esc(d.OGType))
	fmt.Fprintf(&b, "<meta property=\"og:url\" content=\"%s\">\n", canonical)
	fmt.Fprintf(&b, "<meta property=\"og:title\" content=\"%s\">\n", title)
	fmt.Fprintf(&b, "<meta property=\"og:description\" content=\"%s\">\n", desc)
	fmt.Fprintf(&b, "<meta property=\"og:image\" content=\"%s\">\n", image)
	b.WriteString("<meta property=\"og:image:width\" content=\"1200\">\n")
	b.WriteString("<meta property=\"og:image:height\" content=\"630\">\n")
	fmt.Fprintf(&b, "<meta property=\"og:image:alt\" content=\"%s\">\n", title)
	fmt.Fprintf(&b, "<meta property=\"og:site_name\" content=\"%s\">\n", esc(site.Name))
	fmt.Fprintf(&b, "<meta property=\"og:locale\" content=\"%s\">\n", esc(site.Locale))

	if d.OGType == OGTypeArticle && d.PublishedTime != "" {
		fmt.Fprintf(&b, "<meta property=\"article:published_time\" content=\"%s\">\n", esc(d.PublishedTime))
		fmt.Fprintf(&b, "<meta property=\"article:author\" content=\"%s\">\n", esc(site.Author))
		if d.Section != "" {
			fmt.Fprintf(&b, "<meta property=\"article:section\" content=\"%s\">\n", esc(d.Section))
		}
	}

	b.WriteString("<meta name=\"twitter:card\" content=\"summary_large_image\">\n")
	fmt.Fprintf(&b, "<meta name=\"twitter:site\" content=\"%s\">\n", esc(site.TwitterHandle))
	fmt.Fprintf(&b, "<meta name=\"twitter:creator\" content=\"%s\">\n", esc(site.TwitterHandle))
	fmt.Fprintf(&b, "<meta name=\"twitter:title\" content=\"%s\">\n", title)
	fmt.Fprintf(&b, "<meta name=\"twitter:description\" content=\"%s\">\n", desc)
	fmt.Fprintf(&b, "<meta name=\"twitter:image\" content=\"%s\">\n", image)
	fmt.Fprintf(&b, "<meta name=\"twitter:image:alt\" content=\"%s\">\n", title)

	fmt.Fprintf(&b, "<script type=\"application/ld+json\">%s</script>\n", jsonLD(site, d))

	b.WriteString("</head>\n<body>\n")
	fmt.Fprintf(&b, "<h1>%s</h1>\n", title)
	if desc != "" {
		fmt.Fprintf(&b, "<p>%s</p>\n", desc)
	}
	fmt.Fprintf(&b, "<p><a href=\"%s\">%s</a></p>\n", canonical, canonical)
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

func jsonLD(site SiteConfig, d PageData) string {
	if d.OGType == OGTypeArticle {
		return blogPostingJSONLD(site, d)
	}
	return websiteJSONLD(site)
}

// websiteJSONLD returns a JSON-LD string for a WebSite schema.
// json.Marshal escapes "<" by default, so the output is safe inside a
// script element.
func websiteJSONLD(site SiteConfig) string {
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "WebSite",
		"name":        site.Name,
		"url":         site.URL,
		"description": site.Description,
	}
	if site.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  site.Author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// blogPostingJSONLD returns a JSON-LD string for a BlogPosting schema.
func blogPostingJSONLD(site SiteConfig, d PageData) string {
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "BlogPosting",
		"headline":    d.Title,
		"description": d.Description,
		"url":         d.CanonicalURL,
		"image":       d.ImageURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   d.CanonicalURL,
		},
	}
	if d.PublishedTime != "" {
		data["datePublished"] = d.PublishedTime
	}
	if site.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  site.Author,
		}
	}
	if site.Name != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  site.Name,
		}
	}
	if d.Section != "" {
		data["articleSection"] = d.Section
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
