package ogproxy

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the full configuration of the edge router.
type Config struct {
	Site         SiteConfig         `yaml:"site"`
	Origin       OriginConfig       `yaml:"origin"`
	ContentStore ContentStoreConfig `yaml:"content_store"`
	Cache        CacheConfig        `yaml:"cache"`
	Probe        ProbeConfig        `yaml:"probe"`
	Feed         FeedConfig         `yaml:"feed"`

	// Crawlers is the User-Agent allow-list: case-insensitive substrings
	// identifying bots that receive synthesized documents.
	Crawlers []string `yaml:"crawlers"`

	// AssetExtensions lists path extensions that are always proxied to the
	// origin regardless of User-Agent. ".xml" is deliberately absent; it
	// would shadow /sitemap.xml and /feed.xml.
	AssetExtensions []string `yaml:"asset_extensions"`
}

// SiteConfig holds canonical site identity used in synthesized documents.
type SiteConfig struct {
	Name          string `yaml:"name"`
	URL           string `yaml:"url"`
	Description   string `yaml:"description"`
	Author        string `yaml:"author"`
	Locale        string `yaml:"locale"`
	TwitterHandle string `yaml:"twitter_handle"`
	DefaultImage  string `yaml:"default_image"`
	Addr          string `yaml:"addr"`
}

// OriginConfig describes the backing application server for proxied traffic.
type OriginConfig struct {
	URL string `yaml:"url"`

	// StripFrameOptions removes X-Frame-Options from proxied asset
	// responses to support embedding. Policy knob, off by default.
	StripFrameOptions bool `yaml:"strip_frame_options"`
}

// ContentStoreConfig describes the REST-exposed content database.
type ContentStoreConfig struct {
	URL     string   `yaml:"url"`
	APIKey  string   `yaml:"api_key"`
	Timeout Duration `yaml:"timeout"`
}

// CacheConfig sets Cache-Control lifetimes for synthesized documents.
type CacheConfig struct {
	DocumentTTL Duration `yaml:"document_ttl"`
	DegradedTTL Duration `yaml:"degraded_ttl"`
}

// ProbeConfig controls the image existence prober.
type ProbeConfig struct {
	Timeout Duration          `yaml:"timeout"`
	Budget  ProbeBudgetConfig `yaml:"budget"`
}

// ProbeBudgetConfig caps outbound probes per image host within a window.
// Zero requests disables the budget.
type ProbeBudgetConfig struct {
	Requests int      `yaml:"requests"`
	Window   Duration `yaml:"window"`
}

// FeedConfig tunes the RSS feed.
type FeedConfig struct {
	ItemLimit int `yaml:"item_limit"`
}

// Default returns a Config populated with the deployed site's defaults.
// The content-store API key has no default and must come from config or env.
func Default() Config {
	return Config{
		Site: SiteConfig{
			Name:          "Yuki Hamada",
			URL:           "https://yukihamada.jp",
			Description:   "Engineer and entrepreneur. Writing about software, products, and the web.",
			Author:        "Yuki Hamada",
			Locale:        "ja_JP",
			TwitterHandle: "@yukihamada",
			DefaultImage:  "/images/ogp.jpg",
			Addr:          ":8080",
		},
		Origin: OriginConfig{
			StripFrameOptions: true,
		},
		ContentStore: ContentStoreConfig{
			Timeout: DurationFrom(10 * time.Second),
		},
		Cache: CacheConfig{
			DocumentTTL: DurationFrom(time.Hour),
			DegradedTTL: DurationFrom(5 * time.Minute),
		},
		Probe: ProbeConfig{
			Timeout: DurationFrom(3 * time.Second),
			Budget: ProbeBudgetConfig{
				Requests: 60,
				Window:   DurationFrom(time.Minute),
			},
		},
		Feed: FeedConfig{
			ItemLimit: 20,
		},
		Crawlers: []string{
			"googlebot", "bingbot", "slurp", "duckduckbot", "baiduspider",
			"yandexbot", "applebot", "facebookexternalhit", "facebot",
			"twitterbot", "linkedinbot", "slackbot", "discordbot",
			"telegrambot", "whatsapp", "line", "pinterest", "redditbot",
			"skypeuripreview", "ia_archiver",
		},
		AssetExtensions: []string{
			"ico", "png", "jpg", "jpeg", "gif", "svg", "webp", "avif", "bmp",
			"css", "js", "mjs", "map", "json", "txt", "pdf",
			"woff", "woff2", "ttf", "otf", "eot",
			"mp3", "mp4", "webm", "ogg", "wav", "wasm", "zip", "gz",
		},
	}
}

// Load reads, merges, and validates configuration from a YAML file.
// Environment variables override file values so secrets stay out of config.
func Load(path string) (*Config, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer fh.Close()
	return LoadFromReader(fh)
}

// LoadFromReader decodes configuration from an arbitrary reader.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.applyEnv()
	cfg.normalise()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromEnv builds a configuration from defaults and environment variables
// alone, for deployments without a config file.
func FromEnv() (*Config, error) {
	cfg := Default()
	cfg.applyEnv()
	cfg.normalise()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	c.Site.Name = EnvOr("SITE_NAME", c.Site.Name)
	c.Site.URL = EnvOr("SITE_URL", c.Site.URL)
	c.Site.Description = EnvOr("SITE_DESCRIPTION", c.Site.Description)
	c.Site.Author = EnvOr("SITE_AUTHOR", c.Site.Author)
	c.Site.DefaultImage = EnvOr("DEFAULT_OGP_IMAGE", c.Site.DefaultImage)
	c.Site.Addr = EnvOr("ADDR", c.Site.Addr)
	c.Origin.URL = EnvOr("ORIGIN_URL", c.Origin.URL)
	c.ContentStore.URL = EnvOr("SUPABASE_URL", c.ContentStore.URL)
	c.ContentStore.APIKey = EnvOr("SUPABASE_ANON_KEY", c.ContentStore.APIKey)
}

// Validate enforces required invariants. A missing content-store credential
// is a startup error, never a silently-degraded fallback.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Site.URL) == "" {
		return errors.New("ogproxy: site.url must be set")
	}
	if strings.TrimSpace(c.Origin.URL) == "" {
		return errors.New("ogproxy: origin.url must be set (ORIGIN_URL)")
	}
	if strings.TrimSpace(c.ContentStore.URL) == "" {
		return errors.New("ogproxy: content_store.url must be set (SUPABASE_URL)")
	}
	if strings.TrimSpace(c.ContentStore.APIKey) == "" {
		return errors.New("ogproxy: content_store.api_key must be set (SUPABASE_ANON_KEY)")
	}
	if len(c.Crawlers) == 0 {
		return errors.New("ogproxy: crawlers allow-list must not be empty")
	}
	if len(c.AssetExtensions) == 0 {
		return errors.New("ogproxy: asset_extensions must not be empty")
	}
	if c.Probe.Timeout.Duration <= 0 {
		return fmt.Errorf("ogproxy: probe.timeout must be > 0 (got %s)", c.Probe.Timeout)
	}
	if c.Feed.ItemLimit <= 0 {
		return fmt.Errorf("ogproxy: feed.item_limit must be > 0 (got %d)", c.Feed.ItemLimit)
	}
	if c.Cache.DocumentTTL.Duration <= 0 || c.Cache.DegradedTTL.Duration <= 0 {
		return errors.New("ogproxy: cache lifetimes must be > 0")
	}
	return nil
}

func (c *Config) normalise() {
	c.Site.URL = strings.TrimSuffix(strings.TrimSpace(c.Site.URL), "/")
	c.Origin.URL = strings.TrimSuffix(strings.TrimSpace(c.Origin.URL), "/")
	c.ContentStore.URL = strings.TrimSuffix(strings.TrimSpace(c.ContentStore.URL), "/")
	c.Crawlers = dedupeLower(c.Crawlers)
	exts := make([]string, 0, len(c.AssetExtensions))
	for _, e := range c.AssetExtensions {
		exts = append(exts, strings.TrimPrefix(e, "."))
	}
	c.AssetExtensions = dedupeLower(exts)
}

func dedupeLower(values []string) []string {
	unique := make(map[string]struct{}, len(values))
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := unique[v]; ok {
			continue
		}
		unique[v] = struct{}{}
		cleaned = append(cleaned, v)
	}
	sort.Strings(cleaned)
	return cleaned
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
