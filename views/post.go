package views

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/rishiraval/rishiwrites/content"
	"github.com/rishiraval/rishiwrites/markdown"
	"github.com/rishiraval/rishiwrites/toc"
)

// ComingSoon is shown in place of the body of a post without content.
const ComingSoon = "Full content coming soon..."

// Post renders a post page. When d.Unit is nil the excerpt and the
// coming-soon notice stand in for the body.
func Post(d PostData) templ.Component {
	return Layout(d.Chrome, BlogPostingJsonLD(d.Site, d.Post), component(func(h *htmlWriter) {
		p := d.Post
		h.raw(`<article class="blog-post"`)
		h.attr("data-post", p.Slug)
		h.raw(`><a class="blog-post-back" href="/">&larr; Back to posts</a>`)

		h.raw(`<header class="blog-post-header"><div class="blog-post-meta"><time class="blog-post-date"`)
		h.attr("datetime", p.DateString())
		h.raw(`>`)
		h.text(FormatDate(p.Date))
		h.raw(`</time>`)
		if rt := ReadTime(p.ReadTime); rt != "" {
			h.raw(`<span class="blog-post-readtime">`)
			h.text(rt)
			h.raw(`</span>`)
		}
		h.raw(`</div><h1 class="blog-post-title">`)
		h.text(p.Title)
		h.raw(`</h1>`)
		if len(p.Tags) > 0 {
			h.raw(`<div class="blog-post-tags">`)
			for _, t := range p.Tags {
				h.raw(`<a class="blog-post-tag"`)
				h.attr("href", TagURL(t))
				h.raw(`>`)
				h.text(t)
				h.raw(`</a>`)
			}
			h.raw(`</div>`)
		}
		h.raw(`</header>`)

		if d.Unit != nil {
			h.component(OutlinePanel(d.Unit.Outline, d.Outline))
		}

		h.raw(`<div class="blog-post-content">`)
		if d.Unit != nil {
			h.component(d.Unit)
		} else {
			h.component(Placeholder(p))
		}
		h.raw(`</div>`)

		h.component(authorFooter(d.Site))
		h.component(related(d.Related))
		h.raw(`</article>`)
	}))
}

// Placeholder stands in for a post body that has not been written yet.
func Placeholder(p content.Post) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<div class="blog-post-placeholder"><p>`)
		h.text(p.Excerpt)
		h.raw(`</p><p class="coming-soon">`)
		h.text(ComingSoon)
		h.raw(`</p></div>`)
	})
}

// OutlinePanel renders the floating Index button and the sidebar listing the
// outline. An empty outline renders nothing. The data attributes carry the
// active band and scroll offset for the browser script; without it the
// entries still work as plain anchors.
func OutlinePanel(outline toc.Outline, s OutlineSettings) templ.Component {
	return component(func(h *htmlWriter) {
		if outline.Empty() {
			return
		}
		h.raw(`<button type="button" class="index-toggle-btn" aria-label="Toggle table of contents" aria-controls="post-index" aria-expanded="false" data-index-toggle><span class="index-label">Index</span></button>`)
		h.raw(`<div class="index-overlay" data-index-close></div>`)
		h.raw(`<aside id="post-index" class="index-sidebar" data-outline`)
		h.attr("data-band-top", formatFloat(s.Band.Top))
		h.attr("data-band-bottom", formatFloat(s.Band.Bottom))
		h.attr("data-scroll-offset", formatFloat(s.ScrollOffset))
		h.attr("data-settle-ms", strconv.FormatInt(s.SettleDelay.Milliseconds(), 10))
		h.raw(`><div class="index-header"><h4 class="index-title">Table of Contents</h4>`)
		h.raw(`<button type="button" class="index-close-btn" aria-label="Close index" data-index-close>&times;</button></div>`)
		h.raw(`<nav class="index-nav">`)
		for _, e := range outline {
			h.raw(`<a`)
			h.attr("class", "index-item index-"+e.Level.String())
			h.attr("href", "#"+e.ID)
			h.attr("data-target", e.ID)
			h.raw(`>`)
			h.text(e.Text)
			h.raw(`</a>`)
		}
		h.raw(`</nav></aside>`)
	})
}

func authorFooter(site SiteInfo) templ.Component {
	return component(func(h *htmlWriter) {
		if site.Author == "" {
			return
		}
		h.raw(`<footer class="blog-post-footer"><div class="blog-post-author">`)
		if img := markdown.SafeURL(site.AuthorImage); img != "" {
			h.raw(`<img class="author-image"`)
			h.attr("src", img)
			h.attr("alt", site.Author)
			h.raw(`>`)
		}
		h.raw(`<span class="author-name">`)
		h.text(site.Author)
		h.raw(`</span></div></footer>`)
	})
}

func related(posts []content.Post) templ.Component {
	return component(func(h *htmlWriter) {
		if len(posts) == 0 {
			return
		}
		h.raw(`<section class="related"><h2 class="related-title">Related posts</h2><ul>`)
		for _, p := range posts {
			h.raw(`<li><a`)
			h.attr("href", p.Link())
			h.raw(`>`)
			h.text(p.Title)
			h.raw(`</a></li>`)
		}
		h.raw(`</ul></section>`)
	})
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
