package views

import (
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/rishiraval/rishiwrites/markdown"
	"github.com/rishiraval/rishiwrites/theme"
)

// Layout wraps body in the document shell: head metadata, the navbar with the
// theme toggle, and the footer. The color scheme comes from the theme state
// on the render context.
func Layout(c Chrome, jsonLD string, body templ.Component) templ.Component {
	return component(func(h *htmlWriter) {
		pref := theme.FromContext(h.ctx)
		title := c.Meta.Title
		if title == "" {
			title = c.Site.Name
		}
		ogType := c.Meta.OGType
		if ogType == "" {
			ogType = "website"
		}

		h.raw(`<!doctype html><html lang="en"`)
		h.attr("data-theme", string(pref))
		h.raw(`><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(`</title>`)
		if c.Meta.Description != "" {
			h.raw(`<meta name="description"`)
			h.attr("content", c.Meta.Description)
			h.raw(`>`)
		}
		if c.Meta.URL != "" {
			h.raw(`<link rel="canonical"`)
			h.attr("href", c.Meta.URL)
			h.raw(`><meta property="og:url"`)
			h.attr("content", c.Meta.URL)
			h.raw(`>`)
		}
		h.raw(`<meta property="og:title"`)
		h.attr("content", title)
		h.raw(`><meta property="og:type"`)
		h.attr("content", ogType)
		h.raw(`>`)
		if c.Meta.Image != "" {
			h.raw(`<meta property="og:image"`)
			h.attr("content", c.Meta.Image)
			h.raw(`>`)
		}
		h.raw(`<meta name="color-scheme" content="light dark">`)
		h.raw(`<link rel="icon" href="/favicon.svg" type="image/svg+xml">`)
		h.raw(`<link rel="alternate" type="application/rss+xml" href="/feed.xml"`)
		h.attr("title", c.Site.Name)
		h.raw(`>`)
		h.raw(`<link rel="stylesheet" href="/public/site.css">`)
		if jsonLD != "" {
			// json.Marshal escapes <, > and &, so the payload is safe unescaped.
			h.raw(`<script type="application/ld+json">`)
			h.raw(jsonLD)
			h.raw(`</script>`)
		}
		h.raw(`<script src="/public/site.js" defer></script></head><body id="top">`)

		h.component(navbar(c, pref))
		h.raw(`<main class="main">`)
		h.component(body)
		h.raw(`</main>`)

		h.raw(`<footer class="footer"><p>&copy; `)
		h.raw(strconv.Itoa(time.Now().Year()))
		h.raw(` `)
		h.text(c.Site.Name)
		h.raw(` &middot; <a href="/feed.xml">RSS</a></p></footer>`)
		h.raw(`<a class="back-to-top" href="#top" aria-label="Back to top" data-back-to-top>&uarr;</a>`)
		h.raw(`</body></html>`)
	})
}

func navbar(c Chrome, pref theme.Preference) templ.Component {
	return component(func(h *htmlWriter) {
		next := pref.Toggle()
		h.raw(`<header class="navbar"><a class="brand" href="/">`)
		h.text(c.Site.Name)
		h.raw(`</a><nav class="nav-links"><a href="/">Blog</a>`)
		for _, l := range c.Site.Links {
			href := markdown.SafeURL(l.URL)
			if href == "" {
				continue
			}
			h.raw(`<a class="nav-link" target="_blank" rel="noopener noreferrer"`)
			h.attr("href", href)
			h.attr("title", l.Title)
			h.raw(`>`)
			if img := markdown.SafeURL(l.Image); img != "" {
				h.raw(`<img class="nav-link-img"`)
				h.attr("src", img)
				h.attr("alt", l.Title)
				h.raw(`>`)
			} else {
				h.text(l.Title)
			}
			h.raw(`</a>`)
		}
		h.raw(`<form class="theme-toggle" method="post" action="/theme/">`)
		h.raw(`<input type="hidden" name="_csrf"`)
		h.attr("value", c.CSRF)
		h.raw(`><input type="hidden" name="next"`)
		h.attr("value", c.Path)
		h.raw(`><button type="submit" class="theme-toggle-button"`)
		h.attr("aria-label", "Switch to "+string(next)+" mode")
		h.attr("data-theme-next", string(next))
		h.raw(`>`)
		if pref == theme.Dark {
			h.raw(`&#9728;`)
		} else {
			h.raw(`&#9790;`)
		}
		h.raw(`</button></form></nav></header>`)
	})
}
