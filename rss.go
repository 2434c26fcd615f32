package ogproxy

import (
	"encoding/xml"
	"net/http"
	"strings"
)

const (
	atomNS = "http://www.w3.org/2005/Atom"

	// feedItemLimit caps the feed at a recency digest even when more
	// published posts exist.
	feedItemLimit = 20

	// feedEnclosureType is declared for every enclosure regardless of the
	// actual image format. Known limitation carried over from the feed's
	// published contract; readers resolve the URL, not the declared type.
	feedEnclosureType = "image/jpeg"
)

type rssXML struct {
	XMLName   xml.Name   `xml:"rss"`
	Version   string     `xml:"version,attr"`
	XMLNSAtom string     `xml:"xmlns:atom,attr"`
	Channel   rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Language    string    `xml:"language,omitempty"`
	AtomLink    atomLink  `xml:"atom:link"`
	Image       *rssImage `xml:"image,omitempty"`
	Items       []rssItem `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssImage struct {
	URL   string `xml:"url"`
	Title string `xml:"title"`
	Link  string `xml:"link"`
}

type rssItem struct {
	Title       string        `xml:"title"`
	Link        string        `xml:"link"`
	GUID        string        `xml:"guid"`
	PubDate     string        `xml:"pubDate,omitempty"`
	Description string        `xml:"description"`
	Enclosure   *rssEnclosure `xml:"enclosure,omitempty"`
}

type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Length string `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}

// RenderFeed produces the RSS 2.0 document for the most recent posts. The
// guid is the permalink itself and pubDate uses the RFC 1123 GMT form.
func RenderFeed(site SiteConfig, posts []Post, limit int) ([]byte, error) {
	if limit <= 0 {
		limit = feedItemLimit
	}
	if len(posts) > limit {
		posts = posts[:limit]
	}
	base := strings.TrimSuffix(site.URL, "/")

	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		link := BuildURL(base, "blog", p.Slug)
		item := rssItem{
			Title:       p.Title(),
			Link:        link,
			GUID:        link,
			Description: p.Excerpt(),
		}
		if !p.PublishedAt.IsZero() {
			item.PubDate = p.PublishedAt.UTC().Format(http.TimeFormat)
		}
		if p.Image != "" {
			item.Enclosure = &rssEnclosure{
				URL:    PostImageURL(base, p),
				Length: "0",
				Type:   feedEnclosureType,
			}
		}
		items = append(items, item)
	}

	feed := rssXML{
		Version:   "2.0",
		XMLNSAtom: atomNS,
		Channel: rssChannel{
			Title:       site.Name,
			Link:        base,
			Description: site.Description,
			Language:    langFromLocale(site.Locale),
			AtomLink: atomLink{
				Href: base + "/feed.xml",
				Rel:  "self",
				Type: "application/rss+xml",
			},
			Image: &rssImage{
				URL:   ResolveImageURL(base, site.DefaultImage),
				Title: site.Name,
				Link:  base,
			},
			Items: items,
		},
	}
	return encodeXML(feed)
}
