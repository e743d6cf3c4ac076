package views

import "github.com/a-h/templ"

// NotFound is the 404 page.
func NotFound(c Chrome) templ.Component {
	c.Meta.Title = "Not found | " + c.Site.Name
	return Layout(c, "", component(func(h *htmlWriter) {
		h.raw(`<section class="error-page"><h1>404</h1><p>That page does not exist.</p><a href="/">Back to posts</a></section>`)
	}))
}

// ServerError is the 500 page.
func ServerError(c Chrome) templ.Component {
	c.Meta.Title = "Something went wrong | " + c.Site.Name
	return Layout(c, "", component(func(h *htmlWriter) {
		h.raw(`<section class="error-page"><h1>Something went wrong</h1><p>Please try again in a moment.</p><a href="/">Back to posts</a></section>`)
	}))
}
