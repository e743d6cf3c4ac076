package rishiwrites

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/rishiraval/rishiwrites/markdown"
	"github.com/rishiraval/rishiwrites/theme"
)

const jpegQuality = 80

var errNoLocalImage = errors.New("no local image")

// makeThumbnail decodes an image from src, scales it down to width when it
// is wider, flattens it onto white and encodes it as JPEG.
func makeThumbnail(src io.Reader, width int) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if width > 0 && w > width {
		h = h * width / w
		w = width
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// localImagePath maps a site-absolute image URL onto the static dir. Remote
// URLs and paths escaping the static dir are rejected.
func (a *App) localImagePath(ref string) (string, error) {
	if !strings.HasPrefix(ref, "/") || strings.HasPrefix(ref, "//") {
		return "", errNoLocalImage
	}
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	clean := path.Clean(ref)
	if clean == "/" {
		return "", errNoLocalImage
	}
	return filepath.Join(a.Config.StaticDir, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

// handleThumb serves a JPEG thumbnail of the post's hero image, in the
// variant matching the reader's theme when the image URL names one.
func (a *App) handleThumb(c echo.Context) error {
	post, ok := a.Resolver().Registry().Lookup(c.Param("slug"))
	if !ok || post.Image == "" {
		return echo.ErrNotFound
	}
	pref := theme.FromContext(c.Request().Context())
	ref := string(markdown.ThemeURL([]byte(post.Image), pref))
	if !strings.HasPrefix(ref, "/") || strings.HasPrefix(ref, "//") {
		return c.Redirect(http.StatusFound, ref)
	}

	data, err := a.Thumbs.GetOrLoad(post.Slug+"|"+string(pref), func() ([]byte, error) {
		p, err := a.localImagePath(ref)
		if err != nil {
			return nil, err
		}
		f, err := os.Open(p)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return makeThumbnail(f, a.Config.ThumbWidth)
	})
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, errNoLocalImage) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/jpeg", data)
}
