package ogproxy

import "strings"

// PageSet is the fixed path→descriptor table for well-known pages. Exactly
// one descriptor exists per path; unknown paths resolve to the home
// descriptor so crawlers always get valid metadata.
type PageSet struct {
	ordered []PageDescriptor
	byPath  map[string]PageDescriptor
}

// DefaultPages builds the descriptor table for the site. The slice order is
// deliberate: it is the emission order in the sitemap.
func DefaultPages(site SiteConfig) *PageSet {
	pages := []PageDescriptor{
		{
			Path:        "/",
			Title:       site.Name,
			Description: site.Description,
			Image:       site.DefaultImage,
			ChangeFreq:  "daily",
			Priority:    "1.0",
		},
		{
			Path:        "/blog",
			Title:       "Blog",
			Description: "Engineering notes, product updates, and essays.",
			Image:       site.DefaultImage,
			ChangeFreq:  "daily",
			Priority:    "0.9",
		},
		{
			Path:        "/community",
			Title:       "Community",
			Description: "Events, discussion, and ways to get involved.",
			Image:       site.DefaultImage,
			ChangeFreq:  "monthly",
			Priority:    "0.5",
		},
		{
			Path:        "/login",
			Title:       "Sign In",
			Description: "Sign in to comment, like posts, and join the community.",
			Image:       site.DefaultImage,
			ChangeFreq:  "monthly",
			Priority:    "0.3",
		},
		{
			Path:        "/profile",
			Title:       "Profile",
			Description: "Member profile and activity.",
			Image:       site.DefaultImage,
			ChangeFreq:  "monthly",
			Priority:    "0.3",
		},
	}
	byPath := make(map[string]PageDescriptor, len(pages))
	for _, p := range pages {
		byPath[p.Path] = p
	}
	return &PageSet{ordered: pages, byPath: byPath}
}

// Lookup returns the descriptor for a request path, tolerating a trailing
// slash. The boolean reports whether the path is a known page.
func (ps *PageSet) Lookup(path string) (PageDescriptor, bool) {
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}
	p, ok := ps.byPath[path]
	return p, ok
}

// Home returns the fallback descriptor used for unknown paths.
func (ps *PageSet) Home() PageDescriptor {
	return ps.byPath["/"]
}

// Ordered returns descriptors in sitemap emission order.
func (ps *PageSet) Ordered() []PageDescriptor {
	return ps.ordered
}
