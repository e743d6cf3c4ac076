package content

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/rishiraval/rishiwrites/toc"
)

var (
	// ErrNotFound means the slug is not in the registry.
	ErrNotFound = errors.New("content: post not found")
	// ErrContentUnavailable means the post exists but has no body yet.
	ErrContentUnavailable = errors.New("content: post content unavailable")
	// ErrSuperseded means the view moved on before a load finished.
	ErrSuperseded = errors.New("content: load superseded")
)

// Unit is the renderable body of a post.
type Unit struct {
	Slug    string
	Outline toc.Outline
	// Body renders the post body; the reader's theme comes from ctx.
	Body func(ctx context.Context, w io.Writer) error
}

// Render implements templ.Component.
func (u *Unit) Render(ctx context.Context, w io.Writer) error {
	if u.Body == nil {
		return nil
	}
	return u.Body(ctx, w)
}

// Factory builds the Unit of one post. It is called lazily, at most once per
// View and slug.
type Factory func(ctx context.Context) (*Unit, error)

// Resolution is the answer to a slug lookup.
type Resolution struct {
	Post       Post
	HasContent bool
}

// Resolver owns the mapping from slug to content factory.
type Resolver struct {
	registry  *Registry
	factories map[string]Factory
}

// NewResolver returns a Resolver for registry. Factories for slugs that are
// not in the registry are ignored.
func NewResolver(registry *Registry, factories map[string]Factory) *Resolver {
	fs := make(map[string]Factory, len(factories))
	for slug, f := range factories {
		if _, ok := registry.Lookup(slug); ok && f != nil {
			fs[slug] = f
		}
	}
	return &Resolver{registry: registry, factories: fs}
}

// Registry returns the registry the resolver reads from.
func (r *Resolver) Registry() *Registry {
	return r.registry
}

// Resolve looks slug up. It returns ErrNotFound for unknown slugs.
func (r *Resolver) Resolve(slug string) (Resolution, error) {
	post, ok := r.registry.Lookup(slug)
	if !ok {
		return Resolution{}, ErrNotFound
	}
	_, has := r.factories[slug]
	return Resolution{Post: post, HasContent: has}, nil
}

// NewView returns a View with no slug selected.
func (r *Resolver) NewView() *View {
	return &View{resolver: r}
}

// View is one mounted post page. It loads the content of its current slug at
// most once and never lets a load started for an earlier slug, or finished
// after Close, become visible.
type View struct {
	resolver *Resolver

	mu      sync.Mutex
	gen     uint64
	closed  bool
	slug    string
	post    Post
	unit    *Unit
	err     error
	done    bool
	pending *pendingLoad
}

type pendingLoad struct {
	gen    uint64
	ready  chan struct{}
	cancel context.CancelFunc
	unit   *Unit
	err    error
}

// Navigate points the view at slug. Navigating to the slug already shown
// keeps the loaded content; any other slug drops it and cancels a pending
// load.
func (v *View) Navigate(slug string) (Post, error) {
	res, err := v.resolver.Resolve(slug)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return Post{}, ErrSuperseded
	}
	if err == nil && slug == v.slug {
		return v.post, nil
	}
	v.reset()
	if err != nil {
		return Post{}, err
	}
	v.slug = slug
	v.post = res.Post
	return res.Post, nil
}

// reset must be called with v.mu held.
func (v *View) reset() {
	v.gen++
	v.slug = ""
	v.post = Post{}
	v.unit = nil
	v.err = nil
	v.done = false
	if v.pending != nil {
		v.pending.cancel()
		v.pending = nil
	}
}

// Slug returns the slug the view currently shows.
func (v *View) Slug() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.slug
}

// Content returns the Unit of the current slug, loading it on first use.
// It returns ErrContentUnavailable when the post has no registered factory
// and ErrSuperseded when the view navigated away or closed during the load.
func (v *View) Content(ctx context.Context) (*Unit, error) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil, ErrSuperseded
	}
	if v.slug == "" {
		v.mu.Unlock()
		return nil, ErrNotFound
	}
	if v.done {
		unit, err := v.unit, v.err
		v.mu.Unlock()
		return unit, err
	}
	factory, ok := v.resolver.factories[v.slug]
	if !ok {
		v.done = true
		v.err = ErrContentUnavailable
		v.mu.Unlock()
		return nil, ErrContentUnavailable
	}
	p := v.pending
	if p == nil {
		loadCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		p = &pendingLoad{gen: v.gen, ready: make(chan struct{}), cancel: cancel}
		v.pending = p
		go v.load(loadCtx, p, factory)
	}
	v.mu.Unlock()

	select {
	case <-p.ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || p.gen != v.gen {
		return nil, ErrSuperseded
	}
	return p.unit, p.err
}

func (v *View) load(ctx context.Context, p *pendingLoad, factory Factory) {
	unit, err := factory(ctx)
	p.cancel()

	v.mu.Lock()
	p.unit, p.err = unit, err
	if !v.closed && p.gen == v.gen {
		v.unit, v.err, v.done = unit, err, true
		v.pending = nil
	}
	v.mu.Unlock()
	close(p.ready)
}

// Close detaches the view. Pending loads are canceled and their results
// discarded.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.reset()
	v.closed = true
}
