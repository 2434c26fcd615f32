package ogproxy

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"
)

type decodedFeed struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Title       string `xml:"title"`
		Link        string `xml:"link"`
		Description string `xml:"description"`
		Language    string `xml:"language"`
		Items       []struct {
			Title     string `xml:"title"`
			Link      string `xml:"link"`
			GUID      string `xml:"guid"`
			PubDate   string `xml:"pubDate"`
			Enclosure struct {
				URL  string `xml:"url,attr"`
				Type string `xml:"type,attr"`
			} `xml:"enclosure"`
		} `xml:"item"`
	} `xml:"channel"`
}

func feedPosts(n int) []Post {
	posts := make([]Post, n)
	for i := range posts {
		posts[i] = Post{
			Slug:        fmt.Sprintf("post-%d", i),
			TitleJA:     fmt.Sprintf("記事 %d", i),
			ExcerptJA:   "抜粋",
			Image:       fmt.Sprintf("/images/post-%d.png", i),
			PublishedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(-time.Duration(i) * time.Hour),
		}
	}
	return posts
}

func TestRenderFeedCapsItems(t *testing.T) {
	out, err := RenderFeed(testSite(), feedPosts(25), 0)
	if err != nil {
		t.Fatalf("RenderFeed: %v", err)
	}
	if n := strings.Count(string(out), "<item>"); n != feedItemLimit {
		t.Errorf("got %d items, want cap of %d", n, feedItemLimit)
	}
}

func TestRenderFeedItemShape(t *testing.T) {
	out, err := RenderFeed(testSite(), feedPosts(3), 0)
	if err != nil {
		t.Fatalf("RenderFeed: %v", err)
	}

	var doc decodedFeed
	if err := xml.Unmarshal(out, &doc); err != nil {
		t.Fatalf("unmarshal feed: %v", err)
	}
	if len(doc.Channel.Items) != 3 {
		t.Fatalf("got %d items", len(doc.Channel.Items))
	}

	item := doc.Channel.Items[0]
	if item.Link != "https://example.com/blog/post-0" {
		t.Errorf("link = %q", item.Link)
	}
	if item.GUID != item.Link {
		t.Errorf("guid %q should equal link %q", item.GUID, item.Link)
	}
	if _, err := time.Parse(http.TimeFormat, item.PubDate); err != nil {
		t.Errorf("pubDate %q does not parse: %v", item.PubDate, err)
	}
	if item.Enclosure.Type != feedEnclosureType {
		t.Errorf("enclosure type = %q, want %q", item.Enclosure.Type, feedEnclosureType)
	}
	if !strings.Contains(item.Enclosure.URL, "/images/post-0.png?v=") {
		t.Errorf("enclosure url = %q, want versioned image", item.Enclosure.URL)
	}
}

func TestRenderFeedChannel(t *testing.T) {
	site := testSite()
	out, err := RenderFeed(site, nil, 0)
	if err != nil {
		t.Fatalf("RenderFeed with no posts: %v", err)
	}

	var doc decodedFeed
	if err := xml.Unmarshal(out, &doc); err != nil {
		t.Fatalf("unmarshal feed: %v", err)
	}
	if doc.Channel.Title != site.Name {
		t.Errorf("channel title = %q", doc.Channel.Title)
	}
	if doc.Channel.Language != "ja" {
		t.Errorf("channel language = %q", doc.Channel.Language)
	}
	if len(doc.Channel.Items) != 0 {
		t.Errorf("empty feed has %d items", len(doc.Channel.Items))
	}

	s := string(out)
	if !strings.Contains(s, `href="https://example.com/feed.xml"`) || !strings.Contains(s, `rel="self"`) {
		t.Error("atom self link missing")
	}
}

func TestRenderFeedExplicitLimit(t *testing.T) {
	out, err := RenderFeed(testSite(), feedPosts(10), 4)
	if err != nil {
		t.Fatalf("RenderFeed: %v", err)
	}
	if n := strings.Count(string(out), "<item>"); n != 4 {
		t.Errorf("got %d items, want 4", n)
	}
}
