package content

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rishiraval/rishiwrites/markdown"
	"github.com/rishiraval/rishiwrites/toc"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry([]Post{
		{Slug: "a", Title: "A", Excerpt: "about a"},
		{Slug: "b", Title: "B", Excerpt: "about b"},
	})
	require.NoError(t, err)
	return r
}

func staticFactory(calls *atomic.Int32, slug string) Factory {
	return func(ctx context.Context) (*Unit, error) {
		calls.Add(1)
		return &Unit{Slug: slug, Body: func(ctx context.Context, w io.Writer) error {
			_, err := io.WriteString(w, "<p>"+slug+"</p>")
			return err
		}}, nil
	}
}

func TestResolve(t *testing.T) {
	var calls atomic.Int32
	r := NewResolver(testRegistry(t), map[string]Factory{
		"a":       staticFactory(&calls, "a"),
		"unknown": staticFactory(&calls, "unknown"),
	})

	res, err := r.Resolve("a")
	require.NoError(t, err)
	assert.Equal(t, "A", res.Post.Title)
	assert.True(t, res.HasContent)

	res, err = r.Resolve("b")
	require.NoError(t, err)
	assert.Equal(t, "about b", res.Post.Excerpt)
	assert.False(t, res.HasContent)

	_, err = r.Resolve("c")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.Resolve("unknown")
	assert.ErrorIs(t, err, ErrNotFound, "factories without a post are ignored")
	assert.Equal(t, int32(0), calls.Load(), "resolving never loads content")
}

func TestViewScenario(t *testing.T) {
	var calls atomic.Int32
	r := NewResolver(testRegistry(t), map[string]Factory{"a": staticFactory(&calls, "a")})
	v := r.NewView()
	defer v.Close()
	ctx := context.Background()

	post, err := v.Navigate("a")
	require.NoError(t, err)
	assert.Equal(t, "a", post.Slug)
	unit, err := v.Content(ctx)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, unit.Render(ctx, &buf))
	assert.Equal(t, "<p>a</p>", buf.String())

	post, err = v.Navigate("b")
	require.NoError(t, err)
	assert.Equal(t, "about b", post.Excerpt)
	_, err = v.Content(ctx)
	assert.ErrorIs(t, err, ErrContentUnavailable)

	_, err = v.Navigate("c")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "", v.Slug())
}

func TestViewLoadsOncePerSlug(t *testing.T) {
	var calls atomic.Int32
	r := NewResolver(testRegistry(t), map[string]Factory{"a": staticFactory(&calls, "a")})
	v := r.NewView()
	defer v.Close()
	ctx := context.Background()

	_, err := v.Navigate("a")
	require.NoError(t, err)
	first, err := v.Content(ctx)
	require.NoError(t, err)

	_, err = v.Navigate("a")
	require.NoError(t, err)
	second, err := v.Content(ctx)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
}

func TestViewConcurrentCallersShareLoad(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	r := NewResolver(testRegistry(t), map[string]Factory{
		"a": func(ctx context.Context) (*Unit, error) {
			calls.Add(1)
			<-release
			return &Unit{Slug: "a"}, nil
		},
	})
	v := r.NewView()
	defer v.Close()
	_, err := v.Navigate("a")
	require.NoError(t, err)

	var wg sync.WaitGroup
	units := make([]*Unit, 4)
	for i := range units {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := v.Content(context.Background())
			assert.NoError(t, err)
			units[i] = u
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, u := range units {
		assert.Same(t, units[0], u)
	}
}

func TestViewDiscardsSupersededLoad(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var canceled atomic.Bool
	var calls atomic.Int32
	r := NewResolver(testRegistry(t), map[string]Factory{
		"a": func(ctx context.Context) (*Unit, error) {
			close(started)
			<-release
			canceled.Store(ctx.Err() != nil)
			return &Unit{Slug: "a"}, nil
		},
		"b": staticFactory(&calls, "b"),
	})
	v := r.NewView()
	defer v.Close()
	_, err := v.Navigate("a")
	require.NoError(t, err)

	result := make(chan error, 1)
	go func() {
		_, err := v.Content(context.Background())
		result <- err
	}()
	<-started

	_, err = v.Navigate("b")
	require.NoError(t, err)
	close(release)

	assert.ErrorIs(t, <-result, ErrSuperseded)
	assert.True(t, canceled.Load(), "navigating away cancels the stale load")

	unit, err := v.Content(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "b", unit.Slug, "the stale unit never replaces the new slug's content")
}

func TestViewClose(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	r := NewResolver(testRegistry(t), map[string]Factory{
		"a": func(ctx context.Context) (*Unit, error) {
			close(started)
			<-release
			return &Unit{Slug: "a"}, nil
		},
	})
	v := r.NewView()
	_, err := v.Navigate("a")
	require.NoError(t, err)

	result := make(chan error, 1)
	go func() {
		_, err := v.Content(context.Background())
		result <- err
	}()
	<-started
	v.Close()
	close(release)

	assert.ErrorIs(t, <-result, ErrSuperseded)
	_, err = v.Content(context.Background())
	assert.ErrorIs(t, err, ErrSuperseded)
	_, err = v.Navigate("a")
	assert.ErrorIs(t, err, ErrSuperseded)
}

func TestViewCallerContextCanceled(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	r := NewResolver(testRegistry(t), map[string]Factory{
		"a": func(ctx context.Context) (*Unit, error) {
			<-release
			return &Unit{Slug: "a"}, nil
		},
	})
	v := r.NewView()
	defer v.Close()
	_, err := v.Navigate("a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = v.Content(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
}

func TestLoadFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		RegistryFile: {Data: []byte(registryYAML)},
		"posts/low-latency-security-hft.md": {Data: []byte(
			"Intro.\n\n## Kernel Bypass {#kernel-bypass}\n\n### Why {#why-kernel-slow}\n\ntext\n")},
	}
	r, err := Load(fsys, markdown.New())
	require.NoError(t, err)
	assert.Equal(t, 2, r.Registry().Len())

	res, err := r.Resolve("low-latency-security-hft")
	require.NoError(t, err)
	assert.True(t, res.HasContent)
	res, err = r.Resolve("quant-trading-backtesting")
	require.NoError(t, err)
	assert.False(t, res.HasContent)

	v := r.NewView()
	defer v.Close()
	_, err = v.Navigate("low-latency-security-hft")
	require.NoError(t, err)
	unit, err := v.Content(context.Background())
	require.NoError(t, err)
	assert.Equal(t, toc.Outline{
		{ID: "kernel-bypass", Text: "Kernel Bypass", Level: toc.Section},
		{ID: "why-kernel-slow", Text: "Why", Level: toc.Subsection},
	}, unit.Outline)

	var buf bytes.Buffer
	require.NoError(t, unit.Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), `<h2 id="kernel-bypass">Kernel Bypass</h2>`)
}

func TestLoadMissingRegistry(t *testing.T) {
	_, err := Load(fstest.MapFS{}, markdown.New())
	assert.Error(t, err)
}
