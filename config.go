package rishiwrites

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/rishiraval/rishiwrites/theme"
	"github.com/rishiraval/rishiwrites/toc"
)

// EnvPrefix prefixes environment overrides. Nested keys use a double
// underscore: RISHI_THEME__PERSIST sets theme.persist.
const EnvPrefix = "RISHI_"

// SiteConfig holds all configuration for the site.
type SiteConfig struct {
	Name        string `koanf:"name"`        // Site name (default "Rishi Writes")
	URL         string `koanf:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `koanf:"description"` // Site description for RSS and meta tags
	Author      string `koanf:"author"`      // Author name for JSON-LD and the post footer
	AuthorImage string `koanf:"author_image"`
	Tagline     string `koanf:"tagline"` // Home hero subtitle
	Intro       string `koanf:"intro"`   // Home hero text, markdown

	Links []NavLink `koanf:"links"` // Extra navbar links

	Addr       string `koanf:"addr"`        // Listen address (default ":3000")
	StaticDir  string `koanf:"static_dir"`  // User static assets (default "public")
	ContentDir string `koanf:"content_dir"` // On-disk content tree; empty uses the embedded one
	Watch      bool   `koanf:"watch"`       // Reload ContentDir on change

	SessionSecret string `koanf:"session_secret"` // Random per process when empty
	CookieSecure  bool   `koanf:"cookie_secure"`  // Set true for HTTPS

	Theme   ThemeConfig   `koanf:"theme"`
	Outline OutlineConfig `koanf:"outline"`

	CopyResetDelay time.Duration `koanf:"copy_reset_delay"` // Copy acknowledgement (default 2s)
	CodeStyle      string        `koanf:"code_style"`       // Chroma style (default "monokai")

	ThumbWidth    int           `koanf:"thumb_width"`     // default 480
	ThumbCacheTTL time.Duration `koanf:"thumb_cache_ttl"` // default 1h

	ToggleLimit  int           `koanf:"toggle_limit"`  // Theme toggles per window and IP (default 30)
	ToggleWindow time.Duration `koanf:"toggle_window"` // default 1m
}

// NavLink is an external link shown in the navbar.
type NavLink struct {
	Title string `koanf:"title"`
	URL   string `koanf:"url"`
	Image string `koanf:"image"`
}

// ThemeConfig controls the reader's color scheme preference.
type ThemeConfig struct {
	Default string `koanf:"default"` // "light" or "dark" (default "light")
	Persist bool   `koanf:"persist"` // Keep the preference across browser sessions
}

// OutlineConfig tunes the table of contents behaviour in the browser.
type OutlineConfig struct {
	BandTop      float64       `koanf:"band_top"`
	BandBottom   float64       `koanf:"band_bottom"`
	ScrollOffset float64       `koanf:"scroll_offset"`
	SettleDelay  time.Duration `koanf:"settle_delay"` // Wait before measuring headings (default 100ms)
}

// Band returns the active band.
func (o OutlineConfig) Band() toc.Band {
	return toc.Band{Top: o.BandTop, Bottom: o.BandBottom}
}

// DefaultConfig returns a SiteConfig with every default applied.
func DefaultConfig() SiteConfig {
	cfg := SiteConfig{Theme: ThemeConfig{Persist: true}}
	cfg.setDefaults()
	return cfg
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Rishi Writes"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Tagline == "" {
		c.Tagline = "Thoughts, stories, and ideas beyond algorithms"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if _, ok := theme.Parse(c.Theme.Default); !ok {
		c.Theme.Default = string(theme.Light)
	}
	if c.Outline.BandTop == 0 && c.Outline.BandBottom == 0 {
		c.Outline.BandTop = toc.DefaultBandTop
		c.Outline.BandBottom = toc.DefaultBandBottom
	}
	if c.Outline.ScrollOffset == 0 {
		c.Outline.ScrollOffset = toc.DefaultScrollOffset
	}
	if c.Outline.SettleDelay == 0 {
		c.Outline.SettleDelay = 100 * time.Millisecond
	}
	if c.CopyResetDelay == 0 {
		c.CopyResetDelay = 2 * time.Second
	}
	if c.CodeStyle == "" {
		c.CodeStyle = "monokai"
	}
	if c.ThumbWidth == 0 {
		c.ThumbWidth = 480
	}
	if c.ThumbCacheTTL == 0 {
		c.ThumbCacheTTL = time.Hour
	}
	if c.ToggleLimit == 0 {
		c.ToggleLimit = 30
	}
	if c.ToggleWindow == 0 {
		c.ToggleWindow = time.Minute
	}
}

// Validate reports configuration that defaults cannot fix.
func (c *SiteConfig) Validate() error {
	if c.Outline.BandTop > c.Outline.BandBottom {
		return fmt.Errorf("outline band top %v is below bottom %v", c.Outline.BandTop, c.Outline.BandBottom)
	}
	if c.ThumbWidth < 0 {
		return fmt.Errorf("thumb_width must be non-negative")
	}
	if c.ToggleLimit < 0 {
		return fmt.Errorf("toggle_limit must be non-negative")
	}
	return nil
}

// LoadConfig reads configuration from the YAML file at path, when it exists,
// then overlays RISHI_* environment variables.
func LoadConfig(path string) (SiteConfig, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return SiteConfig{}, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return SiteConfig{}, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return SiteConfig{}, fmt.Errorf("loading env overrides: %w", err)
	}

	var out SiteConfig
	if err := k.Unmarshal("", &out); err != nil {
		return SiteConfig{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if !k.Exists("theme.persist") {
		out.Theme.Persist = true
	}
	out.setDefaults()
	if err := out.Validate(); err != nil {
		return SiteConfig{}, err
	}
	return out, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are in place.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets.
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.Config.StaticDir = dir
	}
}

// WithViews replaces the page components.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}
