package theme

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Preference
		ok   bool
	}{
		{"light", Light, true},
		{"DARK", Dark, true},
		{" dark ", Dark, true},
		{"sepia", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestToggleRoundTrip(t *testing.T) {
	s := NewState(Light)
	assert.Equal(t, Dark, s.Toggle())
	assert.Equal(t, Dark, s.Get())
	assert.Equal(t, Light, s.Toggle())
	assert.Equal(t, Light, s.Get())
}

func TestToggleIsIdentityInPairs(t *testing.T) {
	for _, start := range []Preference{Light, Dark} {
		s := NewState(start)
		for i := 0; i < 5; i++ {
			s.Toggle()
			s.Toggle()
			require.Equal(t, start, s.Get())
		}
	}
}

func TestNewStateDefaultsToLight(t *testing.T) {
	assert.Equal(t, Light, NewState("").Get())
	assert.Equal(t, Light, NewState("purple").Get())
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	s := NewState(Light)
	var seen []Preference
	unsubscribe := s.Subscribe(func(p Preference) {
		seen = append(seen, p)
		// Readers observe the new value from inside the notification.
		assert.Equal(t, p, s.Get())
	})
	s.Toggle()
	s.Toggle()
	unsubscribe()
	s.Toggle()
	assert.Equal(t, []Preference{Dark, Light}, seen)
}

func TestConcurrentReaders(t *testing.T) {
	s := NewState(Light)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				p := s.Get()
				assert.True(t, p == Light || p == Dark)
			}
		}()
	}
	for i := 0; i < 100; i++ {
		s.Toggle()
	}
	wg.Wait()
	assert.Equal(t, Light, s.Get())
}

func TestContext(t *testing.T) {
	assert.Equal(t, Light, FromContext(context.Background()))

	s := NewState(Dark)
	ctx := WithState(context.Background(), s)
	assert.Equal(t, Dark, FromContext(ctx))
	s.Toggle()
	assert.Equal(t, Light, FromContext(ctx))

	got, ok := StateFrom(ctx)
	require.True(t, ok)
	assert.Same(t, s, got)
}
