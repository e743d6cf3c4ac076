// Package rishiwrites is a personal blog built with Go, Echo, and templ.
// It serves a registry of posts with lazily loaded markdown content, a
// scroll-linked table of contents, a copy-to-clipboard code widget and a
// light/dark theme preference kept in a cookie.
package rishiwrites

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rishiraval/rishiwrites/content"
	"github.com/rishiraval/rishiwrites/markdown"
	"github.com/rishiraval/rishiwrites/site"
	"github.com/rishiraval/rishiwrites/views"
)

// App is the central application. It wires together the content resolver,
// caches, handlers, middleware, and templates.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Views    ViewFuncs
	Markdown *markdown.Renderer
	Thumbs   *ThumbCache

	resolver      atomic.Pointer[content.Resolver]
	contentFS     fs.FS
	toggleLimiter *ToggleLimiter
	customRoutes  []func(*App)

	setupOnce sync.Once
	setupErr  error
	stop      context.CancelFunc
	wg        sync.WaitGroup
}

// WithContent serves posts from fsys instead of the configured content.
func WithContent(fsys fs.FS) Option {
	return func(a *App) {
		a.contentFS = fsys
	}
}

// New creates an App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.Views.setDefaults()
	a.Markdown = markdown.New(
		markdown.WithCopyResetDelay(a.Config.CopyResetDelay),
		markdown.WithStyle(a.Config.CodeStyle),
	)
	a.Thumbs = NewThumbCache(a.Config.ThumbCacheTTL)
	return a
}

// Setup loads content and installs middleware and routes. Start calls it;
// tests call it directly and drive a.Echo with httptest.
func (a *App) Setup() error {
	a.setupOnce.Do(func() {
		a.setupErr = a.setup()
	})
	return a.setupErr
}

func (a *App) setup() error {
	if err := a.Config.Validate(); err != nil {
		return fmt.Errorf("rishiwrites: %w", err)
	}
	if a.contentFS == nil {
		a.contentFS = ContentFS(a.Config)
	}
	if err := a.Reload(); err != nil {
		return fmt.Errorf("rishiwrites: load content: %w", err)
	}

	a.toggleLimiter = NewToggleLimiter(a.Config.ToggleLimit, a.Config.ToggleWindow)

	ctx, cancel := context.WithCancel(context.Background())
	a.stop = cancel
	if a.Config.Watch && a.Config.ContentDir != "" {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			err := content.Watch(ctx, a.Config.ContentDir, 200*time.Millisecond, func() {
				if err := a.Reload(); err != nil {
					a.Echo.Logger.Errorf("reload content: %v", err)
					return
				}
				a.Echo.Logger.Infof("reloaded content from %s", a.Config.ContentDir)
			})
			if err != nil {
				a.Echo.Logger.Errorf("watch %s: %v", a.Config.ContentDir, err)
			}
		}()
	}

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start sets the app up and serves until the server is shut down.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully and releases background workers.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	a.Close()
	return err
}

// Reload rebuilds the resolver from the content tree. Requests already in
// flight keep the resolver they started with.
func (a *App) Reload() error {
	r, err := content.Load(a.contentFS, a.Markdown)
	if err != nil {
		return err
	}
	a.resolver.Store(r)
	a.Thumbs.Invalidate()
	return nil
}

// ContentFS returns the content tree cfg points at: ContentDir on disk, or
// the posts embedded in the binary.
func ContentFS(cfg SiteConfig) fs.FS {
	if cfg.ContentDir != "" {
		return os.DirFS(cfg.ContentDir)
	}
	return site.Content
}

// Resolver returns the resolver currently serving requests.
func (a *App) Resolver() *content.Resolver {
	return a.resolver.Load()
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Embedded site assets come first; everything else under /public falls
	// through to the user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := echo.WrapHandler(http.StripPrefix("/public/", http.FileServer(http.FS(embeddedFS))))
	e.GET("/public/site.js", embeddedHandler)
	e.GET("/public/site.css", embeddedHandler)

	e.Static("/public", a.Config.StaticDir)
	for _, prefix := range mediaPrefixes {
		e.Static(prefix, a.Config.StaticDir+prefix)
	}
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/blog", handleBlogRedirect)
	e.GET("/", a.handleHome)
	e.GET("/blog/:slug/", a.handlePost)
	e.GET("/thumbs/:slug/", a.handleThumb)
	e.POST("/theme/", a.handleThemeToggle)
}

// Close stops background workers. Call this when the app is shutting down.
func (a *App) Close() {
	if a.stop != nil {
		a.stop()
	}
	if a.toggleLimiter != nil {
		a.toggleLimiter.Stop()
	}
	a.wg.Wait()
}

// siteInfo is the view of the config every template gets.
func (a *App) siteInfo() views.SiteInfo {
	links := make([]views.Link, 0, len(a.Config.Links))
	for _, l := range a.Config.Links {
		links = append(links, views.Link{Title: l.Title, URL: l.URL, Image: l.Image})
	}
	return views.SiteInfo{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Author:      a.Config.Author,
		AuthorImage: a.Config.AuthorImage,
		Tagline:     a.Config.Tagline,
		Intro:       a.Config.Intro,
		Links:       links,
	}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
