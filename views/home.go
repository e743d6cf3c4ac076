package views

import (
	"strings"

	"github.com/a-h/templ"

	"github.com/rishiraval/rishiwrites/content"
	"github.com/rishiraval/rishiwrites/markdown"
)

// Home renders the landing page: hero, tag filter and the posts grid.
func Home(d HomeData) templ.Component {
	return Layout(d.Chrome, WebsiteJsonLD(d.Site), component(func(h *htmlWriter) {
		h.component(hero(d.Site))
		h.raw(`<section id="posts" class="posts-section">`)
		h.component(tagFilter(d.Tags, d.ActiveTag))
		h.component(BlogSection(d.Posts, d.ActiveTag))
		h.raw(`</section>`)
	}))
}

func hero(site SiteInfo) templ.Component {
	return component(func(h *htmlWriter) {
		main, accent := splitName(site.Name)
		h.raw(`<section class="hero"><h1 class="hero-title"><span class="hero-title-main">`)
		h.text(main)
		h.raw(`</span>`)
		if accent != "" {
			h.raw(` <span class="hero-title-accent">`)
			h.text(accent)
			h.raw(`</span>`)
		}
		h.raw(`</h1>`)
		if site.Tagline != "" {
			h.raw(`<p class="hero-subtitle">`)
			h.text(site.Tagline)
			h.raw(`</p>`)
		}
		if site.Intro != "" {
			h.raw(`<div class="hero-description">`)
			h.component(markdown.Markdown(site.Intro))
			h.raw(`</div>`)
		}
		h.raw(`<a class="hero-cta" href="#posts">Explore Posts</a></section>`)
	})
}

// CardImage serves local hero images through the thumbnail route. Remote
// images are linked directly when their scheme is safe; otherwise it returns "".
func CardImage(p content.Post) string {
	if strings.HasPrefix(p.Image, "/") && !strings.HasPrefix(p.Image, "//") {
		return "/thumbs/" + PathEscape(p.Slug) + "/"
	}
	return markdown.SafeURL(p.Image)
}

// splitName renders "Rishi Writes" as RISHI / WRITES.
func splitName(name string) (string, string) {
	first, rest, _ := strings.Cut(strings.ToUpper(strings.TrimSpace(name)), " ")
	return first, strings.TrimSpace(rest)
}

func tagFilter(tags []string, active string) templ.Component {
	return component(func(h *htmlWriter) {
		if len(tags) == 0 {
			return
		}
		h.raw(`<nav class="tag-filter" aria-label="Filter by tag"><a href="/"`)
		h.attr("class", TagClass(active == ""))
		h.raw(`>All</a>`)
		for _, t := range tags {
			h.raw(`<a`)
			h.attr("class", TagClass(strings.EqualFold(t, active)))
			h.attr("href", TagURL(t))
			h.raw(`>`)
			h.text(t)
			h.raw(`</a>`)
		}
		h.raw(`</nav>`)
	})
}

// BlogSection renders the posts grid, or the empty state.
func BlogSection(posts []content.Post, activeTag string) templ.Component {
	return component(func(h *htmlWriter) {
		if len(posts) == 0 {
			h.raw(`<div class="posts-empty"><p>`)
			if activeTag != "" {
				h.raw(`No posts tagged `)
				h.text(activeTag)
				h.raw(` yet.`)
			} else {
				h.raw(`No posts yet. Check back soon!`)
			}
			h.raw(`</p></div>`)
			return
		}
		h.raw(`<div class="posts-grid">`)
		for _, p := range posts {
			h.component(BlogCard(p))
		}
		h.raw(`</div>`)
	})
}

// BlogCard is one post in the grid.
func BlogCard(p content.Post) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<a class="blog-card"`)
		h.attr("href", p.Link())
		h.raw(`>`)
		if img := CardImage(p); img != "" {
			h.raw(`<div class="blog-card-image"><img loading="lazy"`)
			h.attr("src", img)
			h.attr("alt", p.Title)
			h.raw(`></div>`)
		}
		h.raw(`<div class="blog-card-content"><div class="blog-card-meta"><time class="blog-card-date"`)
		h.attr("datetime", p.DateString())
		h.raw(`>`)
		h.text(FormatDate(p.Date))
		h.raw(`</time>`)
		if rt := ReadTime(p.ReadTime); rt != "" {
			h.raw(`<span class="blog-card-readtime">`)
			h.text(rt)
			h.raw(`</span>`)
		}
		h.raw(`</div><h2 class="blog-card-title">`)
		h.text(p.Title)
		h.raw(`</h2><p class="blog-card-excerpt">`)
		h.text(p.Excerpt)
		h.raw(`</p>`)
		if len(p.Tags) > 0 {
			h.raw(`<div class="blog-card-tags">`)
			for _, t := range p.Tags {
				h.raw(`<span class="blog-card-tag">`)
				h.text(t)
				h.raw(`</span>`)
			}
			h.raw(`</div>`)
		}
		h.raw(`<div class="blog-card-footer"><span class="blog-card-link">Read more &rarr;</span></div></div></a>`)
	})
}
