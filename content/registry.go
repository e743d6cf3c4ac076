// Package content maps post slugs to their metadata and lazily loaded
// bodies.
package content

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DateLayout is the calendar date format used by the registry file.
const DateLayout = "2006-01-02"

// Post is the metadata of one post. Posts are immutable once loaded.
type Post struct {
	Slug     string
	Title    string
	Excerpt  string
	Date     time.Time
	ReadTime int // minutes, display only
	Tags     []string
	Image    string
}

// Link returns the post's canonical path.
func (p Post) Link() string {
	return "/blog/" + p.Slug + "/"
}

// DateString returns the post date in DateLayout, or "" when it is unset.
func (p Post) DateString() string {
	if p.Date.IsZero() {
		return ""
	}
	return p.Date.Format(DateLayout)
}

// HasTag reports whether the post carries tag, compared case-insensitively.
func (p Post) HasTag(tag string) bool {
	normalized := normalizeTag(tag)
	for _, t := range p.Tags {
		if normalizeTag(t) == normalized {
			return true
		}
	}
	return false
}

var ErrInvalidRegistry = errors.New("content: invalid registry")

// Registry is the ordered, read-only list of posts.
type Registry struct {
	posts []Post
	index map[string]int
	tags  []string
}

// NewRegistry validates posts and returns a Registry preserving their order.
// Slugs must be non-empty and unique.
func NewRegistry(posts []Post) (*Registry, error) {
	r := &Registry{
		posts: make([]Post, len(posts)),
		index: make(map[string]int, len(posts)),
	}
	set := make(map[string]struct{})
	for i, p := range posts {
		p.Slug = strings.TrimSpace(p.Slug)
		if p.Slug == "" {
			return nil, fmt.Errorf("%w: post %d has no slug", ErrInvalidRegistry, i)
		}
		if _, dup := r.index[p.Slug]; dup {
			return nil, fmt.Errorf("%w: duplicate slug %q", ErrInvalidRegistry, p.Slug)
		}
		p.Tags = append([]string(nil), p.Tags...)
		r.posts[i] = p
		r.index[p.Slug] = i
		for _, t := range p.Tags {
			if t := normalizeTag(t); t != "" {
				set[t] = struct{}{}
			}
		}
	}
	for t := range set {
		r.tags = append(r.tags, t)
	}
	sort.Strings(r.tags)
	return r, nil
}

type postRecord struct {
	Slug     string   `yaml:"slug"`
	Title    string   `yaml:"title"`
	Excerpt  string   `yaml:"excerpt"`
	Date     string   `yaml:"date"`
	ReadTime int      `yaml:"readTime"`
	Tags     []string `yaml:"tags"`
	Image    string   `yaml:"image,omitempty"`
}

// WriteRecord appends p to w as one YAML list item, in the format
// LoadRegistry reads.
func WriteRecord(w io.Writer, p Post) error {
	rec := []postRecord{{
		Slug:     p.Slug,
		Title:    p.Title,
		Excerpt:  p.Excerpt,
		Date:     p.DateString(),
		ReadTime: p.ReadTime,
		Tags:     p.Tags,
		Image:    p.Image,
	}}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return enc.Close()
}

// LoadRegistry reads a YAML list of posts.
func LoadRegistry(r io.Reader) (*Registry, error) {
	var records []postRecord
	if err := yaml.NewDecoder(r).Decode(&records); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode registry: %w", err)
	}
	posts := make([]Post, 0, len(records))
	for _, rec := range records {
		date, err := time.Parse(DateLayout, strings.TrimSpace(rec.Date))
		if err != nil {
			return nil, fmt.Errorf("%w: post %q: bad date %q", ErrInvalidRegistry, rec.Slug, rec.Date)
		}
		posts = append(posts, Post{
			Slug:     rec.Slug,
			Title:    rec.Title,
			Excerpt:  strings.TrimSpace(rec.Excerpt),
			Date:     date,
			ReadTime: rec.ReadTime,
			Tags:     rec.Tags,
			Image:    rec.Image,
		})
	}
	return NewRegistry(posts)
}

// Posts returns every post in registry order.
func (r *Registry) Posts() []Post {
	return append([]Post(nil), r.posts...)
}

// Len returns the number of posts.
func (r *Registry) Len() int {
	return len(r.posts)
}

// Lookup returns the post with the given slug.
func (r *Registry) Lookup(slug string) (Post, bool) {
	i, ok := r.index[slug]
	if !ok {
		return Post{}, false
	}
	return r.posts[i], true
}

// Filter returns the posts carrying tag, or every post if tag is empty.
func (r *Registry) Filter(tag string) []Post {
	if strings.TrimSpace(tag) == "" {
		return r.Posts()
	}
	var out []Post
	for _, p := range r.posts {
		if p.HasTag(tag) {
			out = append(out, p)
		}
	}
	return out
}

// Tags returns the sorted, lowercased set of tags across all posts.
func (r *Registry) Tags() []string {
	return append([]string(nil), r.tags...)
}

// Related returns other posts sharing at least one tag with p.
func (r *Registry) Related(p Post) []Post {
	var out []Post
	for _, other := range r.posts {
		if other.Slug == p.Slug {
			continue
		}
		for _, t := range p.Tags {
			if other.HasTag(t) {
				out = append(out, other)
				break
			}
		}
	}
	return out
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
