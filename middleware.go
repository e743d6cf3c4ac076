package rishiwrites

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/rishiraval/rishiwrites/theme"
)

const (
	sessionName = "prefs"
	themeKey    = "theme"

	// themeCookieMaxAge keeps a persisted preference for a year.
	themeCookieMaxAge = 60 * 60 * 24 * 365
)

// mediaPrefixes are static image trees referenced by post content.
var mediaPrefixes = []string{"/blog_images", "/media"}

func isAssetPath(path string) bool {
	if strings.HasPrefix(path, "/public") || strings.HasPrefix(path, "/thumbs/") {
		return true
	}
	for _, p := range mediaPrefixes {
		if strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func (a *App) setupMiddleware() {
	e := a.Echo

	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)

	e.HTTPErrorHandler = a.httpErrorHandler

	e.Pre(middleware.NonWWWRedirect())

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			c.Logger().Infof("%s %s -> %d (%s) id=%s", v.Method, v.URI, v.Status, v.Latency, v.RequestID)
			return nil
		},
	}))

	e.Use(middleware.Recover())

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return isAssetPath(c.Request().URL.Path)
		},
	}))

	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' https: data:; font-src 'self'; connect-src 'self'",
		HSTSMaxAge:            31536000,
		HSTSExcludeSubdomains: false,
	}))

	e.Use(session.Middleware(a.newSessionStore()))

	e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		ContextKey:  middleware.DefaultCSRFConfig.ContextKey,
		TokenLookup: "header:X-CSRF-Token,form:_csrf",
		CookieName:  "_csrf",
		CookiePath:  "/",
		CookieSameSite: func() http.SameSite {
			return http.SameSiteLaxMode
		}(),
		CookieSecure: a.Config.CookieSecure,
		Skipper: func(c echo.Context) bool {
			return isAssetPath(c.Request().URL.Path)
		},
		ErrorHandler: func(err error, c echo.Context) error {
			return c.String(http.StatusForbidden, "Forbidden")
		},
	}))

	e.Use(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return isAssetPath(path) || path == "/blog" ||
				path == "/sitemap.xml" || path == "/feed.xml" ||
				path == "/robots.txt" || path == "/favicon.svg"
		},
	}))

	e.Use(a.themeMiddleware)

	e.Use(cacheControlMiddleware)
}

// themeMiddleware gives every request one theme.State, seeded from the
// session cookie, and persists whatever a handler toggles it to.
func (a *App) themeMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		state := theme.NewState(ThemePreference(c, a.defaultTheme()))
		unsubscribe := state.Subscribe(func(p theme.Preference) {
			if err := a.saveTheme(c, p); err != nil {
				c.Logger().Warnf("save theme preference: %v", err)
			}
		})
		defer unsubscribe()

		req := c.Request()
		c.SetRequest(req.WithContext(theme.WithState(req.Context(), state)))
		return next(c)
	}
}

func (a *App) defaultTheme() theme.Preference {
	p, ok := theme.Parse(a.Config.Theme.Default)
	if !ok {
		return theme.Light
	}
	return p
}

// ThemePreference reads the preference stored in the session, or fallback.
func ThemePreference(c echo.Context, fallback theme.Preference) theme.Preference {
	sess, err := preferences(c)
	if sess == nil {
		c.Logger().Warnf("read theme preference: %v", err)
		return fallback
	}
	v, _ := sess.Values[themeKey].(string)
	if p, ok := theme.Parse(v); ok {
		return p
	}
	return fallback
}

// preferences returns the reader's session. A cookie that no longer decodes,
// typically one signed with an earlier secret, yields a fresh session along
// with the decode error; that session is still usable and replaces the
// stale cookie on save.
func preferences(c echo.Context) (*sessions.Session, error) {
	sess, err := session.Get(sessionName, c)
	if err != nil && sess != nil {
		c.Logger().Debugf("discarding theme cookie: %v", err)
	}
	return sess, err
}

func (a *App) saveTheme(c echo.Context, p theme.Preference) error {
	sess, err := preferences(c)
	if sess == nil {
		return err
	}
	sess.Values[themeKey] = string(p)
	return sess.Save(c.Request(), c.Response())
}

func cacheControlMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Request().URL.Path
		switch {
		case strings.HasPrefix(path, "/public/"):
			c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		case isAssetPath(path):
			c.Response().Header().Set("Cache-Control", "public, max-age=86400")
		case path == "/sitemap.xml" || path == "/feed.xml" || path == "/robots.txt":
			c.Response().Header().Set("Cache-Control", "public, max-age=86400")
		default:
			// Pages depend on the theme cookie.
			c.Response().Header().Set("Cache-Control", "private, no-cache")
		}
		return next(c)
	}
}

func (a *App) newSessionStore() *sessions.CookieStore {
	secret := []byte(a.Config.SessionSecret)
	if len(secret) == 0 {
		secret = securecookie.GenerateRandomKey(32)
		a.Echo.Logger.Warn("session_secret is not set; theme cookies will not survive a restart")
	}
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	}
	if a.Config.Theme.Persist {
		store.MaxAge(themeCookieMaxAge)
	} else {
		// Browser-session cookie.
		store.Options.MaxAge = 0
	}
	return store
}

// CsrfToken extracts the CSRF token from the Echo context.
func CsrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}
