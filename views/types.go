package views

import (
	"time"

	"github.com/rishiraval/rishiwrites/content"
	"github.com/rishiraval/rishiwrites/toc"
)

// SiteInfo holds site-wide settings. Every handler passes this to templates
// so nothing is hardcoded.
type SiteInfo struct {
	Name        string
	URL         string
	Description string
	Author      string
	AuthorImage string
	Tagline     string
	Intro       string
	Links       []Link
}

// Link is an external navbar link. Image, when set, replaces the title.
type Link struct {
	Title string
	URL   string
	Image string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
}

// Chrome is what every page needs besides its own data.
type Chrome struct {
	Site SiteInfo
	Meta PageMeta
	CSRF string // token for the theme toggle form
	Path string // current request path, used to return after a toggle
}

// HomeData feeds the listing page.
type HomeData struct {
	Chrome
	Posts     []content.Post
	Tags      []string
	ActiveTag string
}

// OutlineSettings are the numbers the browser script applies to the outline.
type OutlineSettings struct {
	Band         toc.Band
	ScrollOffset float64
	SettleDelay  time.Duration
}

// PostData feeds a post page. Unit is nil when the post has no content yet.
type PostData struct {
	Chrome
	Post    content.Post
	Unit    *content.Unit
	Related []content.Post
	Outline OutlineSettings
}
