// Package toc holds the table of contents of a post: the outline authored
// alongside its content, and the geometry that decides which section the
// reader is looking at. The browser script served with each post applies
// ActiveSection and ScrollTarget on every scroll and click.
package toc

import (
	"errors"
	"fmt"
)

// Level is the heading depth of an outline entry.
type Level int

const (
	Section    Level = 2
	Subsection Level = 3
)

// String returns the heading tag name for the level ("h2", "h3").
func (l Level) String() string {
	return fmt.Sprintf("h%d", int(l))
}

// Entry is one heading of a post.
type Entry struct {
	ID    string `yaml:"id" json:"id"`
	Text  string `yaml:"text" json:"text"`
	Level Level  `yaml:"level" json:"level"`
}

// Outline is the ordered list of headings of a post, in document order.
type Outline []Entry

var ErrInvalidOutline = errors.New("toc: invalid outline")

// Validate checks that every entry has a non-empty id that is unique within
// the outline and a known level.
func (o Outline) Validate() error {
	seen := make(map[string]struct{}, len(o))
	for i, e := range o {
		if e.ID == "" {
			return fmt.Errorf("%w: entry %d (%q) has no id", ErrInvalidOutline, i, e.Text)
		}
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidOutline, e.ID)
		}
		if e.Level != Section && e.Level != Subsection {
			return fmt.Errorf("%w: entry %q has level %d", ErrInvalidOutline, e.ID, e.Level)
		}
		seen[e.ID] = struct{}{}
	}
	return nil
}

// Empty reports whether the outline has no entries. An empty outline hides
// every piece of outline UI.
func (o Outline) Empty() bool {
	return len(o) == 0
}

// Contains reports whether id names an entry of the outline.
func (o Outline) Contains(id string) bool {
	for _, e := range o {
		if e.ID == id {
			return true
		}
	}
	return false
}
