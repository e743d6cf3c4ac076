package rishiwrites

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rishiraval/rishiwrites/content"
	"github.com/rishiraval/rishiwrites/theme"
	"github.com/rishiraval/rishiwrites/views"
)

func (a *App) chrome(c echo.Context, meta views.PageMeta) views.Chrome {
	return views.Chrome{
		Site: a.siteInfo(),
		Meta: meta,
		CSRF: CsrfToken(c),
		Path: c.Request().URL.RequestURI(),
	}
}

func (a *App) handleHome(c echo.Context) error {
	tag := strings.TrimSpace(c.QueryParam("tag"))
	registry := a.Resolver().Registry()
	meta := views.PageMeta{
		Title:       a.Config.Name,
		Description: a.Config.Description,
		URL:         views.BuildURL(a.Config.URL),
		OGType:      "website",
	}
	return Render(c, a.Views.Home(views.HomeData{
		Chrome:    a.chrome(c, meta),
		Posts:     registry.Filter(tag),
		Tags:      registry.Tags(),
		ActiveTag: tag,
	}))
}

func (a *App) handlePost(c echo.Context) error {
	resolver := a.Resolver()
	view := resolver.NewView()
	defer view.Close()

	post, err := view.Navigate(c.Param("slug"))
	if errors.Is(err, content.ErrNotFound) {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	if err != nil {
		return err
	}

	unit, err := view.Content(c.Request().Context())
	switch {
	case errors.Is(err, content.ErrContentUnavailable):
		unit = nil
	case err != nil:
		return err
	}

	meta := views.PageMeta{
		Title:       post.Title + " | " + a.Config.Name,
		Description: post.Excerpt,
		URL:         views.BuildURL(a.Config.URL, "blog", post.Slug),
		OGType:      "article",
	}
	if post.Image != "" {
		meta.Image = views.BuildURL(a.Config.URL, "thumbs", post.Slug)
	}
	return Render(c, a.Views.Post(views.PostData{
		Chrome:  a.chrome(c, meta),
		Post:    post,
		Unit:    unit,
		Related: resolver.Registry().Related(post),
		Outline: views.OutlineSettings{
			Band:         a.Config.Outline.Band(),
			ScrollOffset: a.Config.Outline.ScrollOffset,
			SettleDelay:  a.Config.Outline.SettleDelay,
		},
	}))
}

// handleThemeToggle flips the reader's preference and sends them back to the
// page they came from. The theme middleware persists the new value.
func (a *App) handleThemeToggle(c echo.Context) error {
	if !a.toggleLimiter.Allow(c.RealIP()) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "Too many theme changes, try again shortly")
	}
	state, ok := theme.StateFrom(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "theme state missing")
	}
	state.Toggle()
	return c.Redirect(http.StatusSeeOther, safeRedirect(c.FormValue("next")))
}

// safeRedirect only allows local absolute paths.
func safeRedirect(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func (a *App) handleSitemap(c echo.Context) error {
	return a.renderSitemap(c, a.Resolver().Registry().Posts())
}

func (a *App) handleFeed(c echo.Context) error {
	return a.renderRSS(c, a.Resolver().Registry().Posts())
}

func handleBlogRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/")
}

func (a *App) handleFavicon(c echo.Context) error {
	p := filepath.Join(a.Config.StaticDir, "favicon.svg")
	if _, err := os.Stat(p); err == nil {
		return c.File(p)
	}
	b, err := fs.ReadFile(EmbeddedAssets, "embedded/favicon.svg")
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/svg+xml", b)
}

// handleRobots serves robots.txt from the static dir, or a permissive one
// pointing at the sitemap.
func (a *App) handleRobots(c echo.Context) error {
	p := filepath.Join(a.Config.StaticDir, "robots.txt")
	if _, err := os.Stat(p); err == nil {
		return c.File(p)
	}
	return c.String(http.StatusOK, "User-agent: *\nAllow: /\nSitemap: "+strings.TrimSuffix(a.Config.URL, "/")+"/sitemap.xml\n")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.chrome(c, views.PageMeta{})))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError(a.chrome(c, views.PageMeta{})))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
