package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/rishiraval/rishiwrites/markdown"
)

// Layout of a content tree.
const (
	RegistryFile = "posts.yaml"
	PostsDir     = "posts"
)

// Load builds a Resolver from a content tree: RegistryFile lists the posts and
// PostsDir/<slug>.md holds the body of each post that has one. Bodies are only
// read when a View asks for them.
func Load(fsys fs.FS, md *markdown.Renderer) (*Resolver, error) {
	f, err := fsys.Open(RegistryFile)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	defer f.Close()
	registry, err := LoadRegistry(f)
	if err != nil {
		return nil, err
	}

	factories := make(map[string]Factory)
	for _, p := range registry.Posts() {
		name := SourcePath(p.Slug)
		if _, err := fs.Stat(fsys, name); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", name, err)
		}
		factories[p.Slug] = FileFactory(fsys, name, p.Slug, md)
	}
	return NewResolver(registry, factories), nil
}

// SourcePath is where the markdown of slug lives in a content tree.
func SourcePath(slug string) string {
	return path.Join(PostsDir, slug+".md")
}

// ReadSource returns the markdown of slug, or ErrContentUnavailable when the
// post has none. Unknown slugs give ErrNotFound.
func (r *Resolver) ReadSource(fsys fs.FS, slug string) ([]byte, error) {
	res, err := r.Resolve(slug)
	if err != nil {
		return nil, err
	}
	if !res.HasContent {
		return nil, ErrContentUnavailable
	}
	return fs.ReadFile(fsys, SourcePath(slug))
}

// FileFactory returns a Factory that reads and parses the markdown file name.
func FileFactory(fsys fs.FS, name, slug string, md *markdown.Renderer) Factory {
	return func(ctx context.Context) (*Unit, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		doc, err := md.Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		return &Unit{
			Slug:    slug,
			Outline: doc.Outline,
			Body:    md.Component(doc.Body).Render,
		}, nil
	}
}
