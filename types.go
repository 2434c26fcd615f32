package ogproxy

import "time"

// Post is a read-only projection of a blog post as exposed by the content
// store's REST interface. Titles, excerpts, and categories come in a Japanese
// default variant and an English alternate; either may be empty.
type Post struct {
	Slug        string    `json:"slug"`
	TitleJA     string    `json:"title_ja"`
	TitleEN     string    `json:"title_en"`
	ExcerptJA   string    `json:"excerpt_ja"`
	ExcerptEN   string    `json:"excerpt_en"`
	Image       string    `json:"image"`
	PublishedAt time.Time `json:"published_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	CategoryJA  string    `json:"category_ja"`
	CategoryEN  string    `json:"category_en"`
	Status      string    `json:"status"`
}

// Title returns the localized title, falling back to the alternate locale and
// finally to a generic label so a document can always be rendered.
func (p Post) Title() string {
	if p.TitleJA != "" {
		return p.TitleJA
	}
	if p.TitleEN != "" {
		return p.TitleEN
	}
	return "Blog"
}

// Excerpt returns the localized excerpt, falling back across locales.
// An empty excerpt is permitted and used verbatim.
func (p Post) Excerpt() string {
	if p.ExcerptJA != "" {
		return p.ExcerptJA
	}
	return p.ExcerptEN
}

// Category returns the localized category, or empty if the post has none.
func (p Post) Category() string {
	if p.CategoryJA != "" {
		return p.CategoryJA
	}
	return p.CategoryEN
}

// LastMod returns the post's effective last-modified time: the update
// timestamp when present, otherwise the publish timestamp, otherwise now.
func (p Post) LastMod(now time.Time) time.Time {
	if !p.UpdatedAt.IsZero() {
		return p.UpdatedAt
	}
	if !p.PublishedAt.IsZero() {
		return p.PublishedAt
	}
	return now
}

// PageDescriptor carries the metadata used to synthesize a crawler document
// and sitemap entry for a fixed, well-known page of the site.
type PageDescriptor struct {
	Path        string
	Title       string
	Description string
	Image       string
	ChangeFreq  string
	Priority    string
}
