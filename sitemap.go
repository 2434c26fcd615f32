package ogproxy

import (
	"bytes"
	"encoding/xml"
	"strings"
	"time"
)

const (
	sitemapNS      = "http://www.sitemaps.org/schemas/sitemap/0.9"
	sitemapImageNS = "http://www.google.com/schemas/sitemap-image/1.1"
)

type sitemapURLSet struct {
	XMLName    xml.Name     `xml:"urlset"`
	XMLNS      string       `xml:"xmlns,attr"`
	XMLNSImage string       `xml:"xmlns:image,attr"`
	URLs       []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string        `xml:"loc"`
	LastMod    string        `xml:"lastmod,omitempty"`
	ChangeFreq string        `xml:"changefreq,omitempty"`
	Priority   string        `xml:"priority,omitempty"`
	Image      *sitemapImage `xml:"image:image,omitempty"`
}

type sitemapImage struct {
	Loc   string `xml:"image:loc"`
	Title string `xml:"image:title,omitempty"`
}

// RenderSitemap produces the sitemap document: static pages first in their
// fixed order, then posts, most recent first. Text content is XML-escaped by
// the encoder. Callable with an empty post list; the result is still a valid
// document containing the static pages.
func RenderSitemap(site SiteConfig, pages *PageSet, posts []Post, now time.Time) ([]byte, error) {
	base := strings.TrimSuffix(site.URL, "/")
	today := now.UTC().Format("2006-01-02")

	urls := make([]sitemapURL, 0, len(pages.Ordered())+len(posts))
	for _, pg := range pages.Ordered() {
		u := sitemapURL{
			Loc:        pageLoc(base, pg.Path),
			LastMod:    today,
			ChangeFreq: pg.ChangeFreq,
			Priority:   pg.Priority,
		}
		if pg.Path == "/" {
			u.Image = &sitemapImage{
				Loc:   ResolveImageURL(base, pg.Image),
				Title: pg.Title,
			}
		}
		urls = append(urls, u)
	}
	for _, p := range posts {
		u := sitemapURL{
			Loc:        BuildURL(base, "blog", p.Slug),
			LastMod:    p.LastMod(now).UTC().Format("2006-01-02"),
			ChangeFreq: "monthly",
			Priority:   "0.8",
		}
		if p.Image != "" {
			u.Image = &sitemapImage{
				Loc:   ResolveImageURL(base, p.Image),
				Title: p.Title(),
			}
		}
		urls = append(urls, u)
	}

	set := sitemapURLSet{XMLNS: sitemapNS, XMLNSImage: sitemapImageNS, URLs: urls}
	return encodeXML(set)
}

func pageLoc(base, path string) string {
	if path == "/" {
		return base + "/"
	}
	return base + path
}

func encodeXML(doc any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
