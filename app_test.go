package rishiwrites

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rishiraval/rishiwrites/content"
)

const testRegistry = `
- slug: kernel-bypass
  title: Kernel Bypass Basics
  excerpt: Skipping the kernel on the hot path.
  date: "2026-01-18"
  readTime: 15
  tags: [HFT, Security]
  image: /blog_images/bypass.png
- slug: backtesting
  title: Backtesting Strategies
  excerpt: Testing strategies on past data.
  date: "2025-12-01"
  readTime: 10
  tags: [Trading]
`

const testPost = `Intro paragraph.

## Packets {#packets}

![flow](/blog_images/{THEME}_MODE.png)

### Spaces {#spaces}

` + "```go {filename=\"main.go\"}\npackage main\n```\n"

func newTestApp(t *testing.T, configure ...func(*SiteConfig)) (*App, fstest.MapFS) {
	t.Helper()
	static := t.TempDir()
	writePNG(t, filepath.Join(static, "blog_images", "bypass.png"), 800, 400)

	fsys := fstest.MapFS{
		content.RegistryFile:                    {Data: []byte(testRegistry)},
		content.SourcePath("kernel-bypass"): {Data: []byte(testPost)},
	}
	cfg := SiteConfig{
		Name:          "Rishi Writes",
		URL:           "https://blog.example.com",
		Author:        "Rishi Raval",
		SessionSecret: "0123456789abcdef0123456789abcdef",
		StaticDir:     static,
		ThumbWidth:    200,
		Theme:         ThemeConfig{Persist: true},
	}
	for _, fn := range configure {
		fn(&cfg)
	}
	a := New(cfg, WithContent(fsys))
	a.Echo.Logger.SetOutput(io.Discard)
	require.NoError(t, a.Setup())
	t.Cleanup(a.Close)
	return a, fsys
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func do(a *App, method, target string, body io.Reader, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func cookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// toggleTheme posts the theme form the way a browser would.
func toggleTheme(t *testing.T, a *App, next string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	home := do(a, http.MethodGet, "/", nil, cookies...)
	csrf := cookie(home, "_csrf")
	require.NotNil(t, csrf)
	form := url.Values{"_csrf": {csrf.Value}, "next": {next}}
	return do(a, http.MethodPost, "/theme/", strings.NewReader(form.Encode()), append(cookies, csrf)...)
}

func TestHomeListsPosts(t *testing.T) {
	a, _ := newTestApp(t)
	rec := do(a, http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Kernel Bypass Basics")
	assert.Contains(t, body, "Backtesting Strategies")
	assert.Contains(t, body, "January 18, 2026")
	assert.Contains(t, body, `href="/blog/kernel-bypass/"`)
	assert.Contains(t, body, `src="/thumbs/kernel-bypass/"`)
	assert.Contains(t, body, `data-theme="light"`)
	assert.Less(t, strings.Index(body, "Kernel Bypass Basics"), strings.Index(body, "Backtesting Strategies"), "registry order")
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestHomeTagFilter(t *testing.T) {
	a, _ := newTestApp(t)
	rec := do(a, http.MethodGet, "/?tag=trading", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Backtesting Strategies")
	assert.NotContains(t, rec.Body.String(), "Kernel Bypass Basics")

	rec = do(a, http.MethodGet, "/?tag=cooking", nil)
	assert.Contains(t, rec.Body.String(), "No posts tagged cooking yet.")
}

func TestPostRendersContentAndOutline(t *testing.T) {
	a, _ := newTestApp(t)
	rec := do(a, http.MethodGet, "/blog/kernel-bypass/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<h2 id="packets">Packets</h2>`)
	assert.Contains(t, body, `<h3 id="spaces">Spaces</h3>`)
	assert.Contains(t, body, `data-outline`)
	assert.Contains(t, body, `data-band-top="-100"`)
	assert.Contains(t, body, `data-band-bottom="150"`)
	assert.Contains(t, body, `data-scroll-offset="80"`)
	assert.Contains(t, body, `class="index-item index-h3" href="#spaces"`)
	assert.Contains(t, body, `class="code-block-copy"`)
	assert.Contains(t, body, `data-reset-ms="2000"`)
	assert.Contains(t, body, "/blog_images/LIGHT_MODE.png")
	assert.Contains(t, body, "15 min read")
	assert.Contains(t, body, "Rishi Raval")
	assert.Contains(t, body, `"@type":"BlogPosting"`)
	assert.NotContains(t, body, "coming soon")
}

func TestPostWithoutContentShowsPlaceholder(t *testing.T) {
	a, _ := newTestApp(t)
	rec := do(a, http.MethodGet, "/blog/backtesting/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Testing strategies on past data.")
	assert.Contains(t, body, "Full content coming soon...")
	assert.NotContains(t, body, "data-outline", "no outline UI without content")
}

func TestUnknownPostRedirectsHome(t *testing.T) {
	a, _ := newTestApp(t)
	rec := do(a, http.MethodGet, "/blog/missing/", nil)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestBlogRedirect(t *testing.T) {
	a, _ := newTestApp(t)
	rec := do(a, http.MethodGet, "/blog", nil)

	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestUnknownRouteRendersNotFound(t *testing.T) {
	a, _ := newTestApp(t)
	rec := do(a, http.MethodGet, "/nope/", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "That page does not exist.")
}

func TestThemeToggleRoundTrip(t *testing.T) {
	a, _ := newTestApp(t)

	rec := toggleTheme(t, a, "/blog/kernel-bypass/")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/blog/kernel-bypass/", rec.Header().Get("Location"))
	prefs := cookie(rec, sessionName)
	require.NotNil(t, prefs)
	assert.Equal(t, themeCookieMaxAge, prefs.MaxAge, "persisted preference")

	page := do(a, http.MethodGet, "/blog/kernel-bypass/", nil, prefs)
	assert.Contains(t, page.Body.String(), `data-theme="dark"`)
	assert.Contains(t, page.Body.String(), "/blog_images/DARK_MODE.png", "illustrations follow the theme")

	rec = toggleTheme(t, a, "/", prefs)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	page = do(a, http.MethodGet, "/", nil, cookie(rec, sessionName))
	assert.Contains(t, page.Body.String(), `data-theme="light"`)
}

func TestThemeToggleAfterSecretChange(t *testing.T) {
	before, _ := newTestApp(t)
	stale := cookie(toggleTheme(t, before, "/"), sessionName)
	require.NotNil(t, stale)

	after, _ := newTestApp(t, func(c *SiteConfig) { c.SessionSecret = "fedcba9876543210fedcba9876543210" })
	page := do(after, http.MethodGet, "/", nil, stale)
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), `data-theme="light"`, "undecodable cookie falls back to the default")

	rec := toggleTheme(t, after, "/", stale)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	fresh := cookie(rec, sessionName)
	require.NotNil(t, fresh, "toggle replaces the stale cookie")
	page = do(after, http.MethodGet, "/", nil, fresh)
	assert.Contains(t, page.Body.String(), `data-theme="dark"`)
}

func TestThemeSessionOnlyWhenNotPersisted(t *testing.T) {
	a, _ := newTestApp(t, func(c *SiteConfig) { c.Theme.Persist = false })

	rec := toggleTheme(t, a, "/")
	prefs := cookie(rec, sessionName)
	require.NotNil(t, prefs)
	assert.Equal(t, 0, prefs.MaxAge)
	assert.True(t, prefs.Expires.IsZero())
}

func TestThemeDefaultFromConfig(t *testing.T) {
	a, _ := newTestApp(t, func(c *SiteConfig) { c.Theme.Default = "dark" })
	rec := do(a, http.MethodGet, "/", nil)
	assert.Contains(t, rec.Body.String(), `data-theme="dark"`)
}

func TestThemeToggleRejectsOffsiteRedirect(t *testing.T) {
	a, _ := newTestApp(t)
	rec := toggleTheme(t, a, "//evil.example.com/")
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestThemeToggleRequiresCSRF(t *testing.T) {
	a, _ := newTestApp(t)
	rec := do(a, http.MethodPost, "/theme/", strings.NewReader("next=/"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestThemeToggleRateLimited(t *testing.T) {
	a, _ := newTestApp(t, func(c *SiteConfig) { c.ToggleLimit = 1 })

	require.Equal(t, http.StatusSeeOther, toggleTheme(t, a, "/").Code)
	assert.Equal(t, http.StatusTooManyRequests, toggleTheme(t, a, "/").Code)
}

func TestFeedAndSitemap(t *testing.T) {
	a, _ := newTestApp(t)

	rec := do(a, http.MethodGet, "/feed.xml", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/rss+xml")
	assert.Contains(t, rec.Body.String(), "<title>Kernel Bypass Basics</title>")
	assert.Contains(t, rec.Body.String(), "<link>https://blog.example.com/blog/kernel-bypass/</link>")
	assert.Contains(t, rec.Body.String(), "<category>HFT</category>")

	rec = do(a, http.MethodGet, "/sitemap.xml", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<loc>https://blog.example.com/blog/backtesting/</loc>")
	assert.Contains(t, rec.Body.String(), "<lastmod>2025-12-01</lastmod>")
}

func TestRobotsFallback(t *testing.T) {
	a, _ := newTestApp(t)
	rec := do(a, http.MethodGet, "/robots.txt", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sitemap: https://blog.example.com/sitemap.xml")
}

func TestEmbeddedAssets(t *testing.T) {
	a, _ := newTestApp(t)
	for _, p := range []string{"/public/site.js", "/public/site.css", "/favicon.svg"} {
		rec := do(a, http.MethodGet, p, nil)
		assert.Equal(t, http.StatusOK, rec.Code, p)
		assert.NotEmpty(t, rec.Body.String(), p)
	}
}

func TestFaviconFallsBackToEmbedded(t *testing.T) {
	a, _ := newTestApp(t)
	rec := do(a, http.MethodGet, "/favicon.svg", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<svg")
}

func TestEmbeddedPostsRender(t *testing.T) {
	a := New(SiteConfig{StaticDir: t.TempDir(), SessionSecret: "0123456789abcdef0123456789abcdef"})
	a.Echo.Logger.SetOutput(io.Discard)
	require.NoError(t, a.Setup())
	t.Cleanup(a.Close)

	posts := a.Resolver().Registry().Posts()
	require.NotEmpty(t, posts)
	for _, p := range posts {
		rec := do(a, http.MethodGet, p.Link(), nil)
		assert.Equal(t, http.StatusOK, rec.Code, p.Slug)
		assert.Contains(t, rec.Body.String(), `id="post-index"`, p.Slug)
	}
}

func TestThumbnail(t *testing.T) {
	a, _ := newTestApp(t)
	rec := do(a, http.MethodGet, "/thumbs/kernel-bypass/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	img, err := jpeg.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())
	assert.Equal(t, 1, a.Thumbs.Len())

	rec = do(a, http.MethodGet, "/thumbs/backtesting/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "post without image")
}

func TestReloadPicksUpNewContent(t *testing.T) {
	a, fsys := newTestApp(t)
	fsys[content.SourcePath("backtesting")] = &fstest.MapFile{Data: []byte("## Results {#results}\n")}

	require.NoError(t, a.Reload())
	rec := do(a, http.MethodGet, "/blog/backtesting/", nil)
	assert.Contains(t, rec.Body.String(), `<h2 id="results">Results</h2>`)
	assert.NotContains(t, rec.Body.String(), "coming soon")
}

func TestReloadKeepsResolverOnError(t *testing.T) {
	a, fsys := newTestApp(t)
	before := a.Resolver()
	fsys[content.RegistryFile] = &fstest.MapFile{Data: []byte("- slug: a\n- slug: a\n")}

	assert.Error(t, a.Reload())
	assert.Same(t, before, a.Resolver())
}

func TestSafeRedirect(t *testing.T) {
	assert.Equal(t, "/blog/x/", safeRedirect("/blog/x/"))
	assert.Equal(t, "/", safeRedirect(""))
	assert.Equal(t, "/", safeRedirect("https://evil.example.com"))
	assert.Equal(t, "/", safeRedirect("//evil.example.com"))
	assert.Equal(t, "/", safeRedirect("/\\evil.example.com"))
}
