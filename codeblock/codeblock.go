// Package codeblock implements the copy button shown on code samples.
package codeblock

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/labstack/gommon/log"
)

const (
	DefaultResetDelay = 2 * time.Second
	LabelCopy         = "Copy"
	LabelCopied       = "Copied!"
)

// ErrClipboardDenied is returned when the clipboard refused the write.
var ErrClipboardDenied = errors.New("codeblock: clipboard write denied")

// Clipboard writes text to a clipboard. github.com/atotto/clipboard
// satisfies it through ClipboardFunc(clipboard.WriteAll).
type Clipboard interface {
	WriteAll(text string) error
}

// ClipboardFunc adapts a function to the Clipboard interface.
type ClipboardFunc func(text string) error

func (f ClipboardFunc) WriteAll(text string) error { return f(text) }

// Button copies code to a clipboard and shows a transient acknowledgement.
// The acknowledgement is derived from the time of the last successful copy,
// so there is no timer to cancel when the button goes away.
type Button struct {
	Clipboard Clipboard
	Delay     time.Duration
	Now       func() time.Time
	Logger    *log.Logger

	mu       sync.Mutex
	copiedAt time.Time
}

// New returns a Button writing to c with the default reset delay.
func New(c Clipboard) *Button {
	return &Button{Clipboard: c, Delay: DefaultResetDelay}
}

func (b *Button) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

func (b *Button) delay() time.Duration {
	if b.Delay > 0 {
		return b.Delay
	}
	return DefaultResetDelay
}

// Copy writes code to the clipboard. A failed write is logged and leaves the
// label untouched.
func (b *Button) Copy(code string) error {
	if err := b.Clipboard.WriteAll(code); err != nil {
		err = fmt.Errorf("%w: %v", ErrClipboardDenied, err)
		if b.Logger != nil {
			b.Logger.Warnf("copy failed: %v", err)
		} else {
			log.Warnf("copy failed: %v", err)
		}
		return err
	}
	b.mu.Lock()
	b.copiedAt = b.now()
	b.mu.Unlock()
	return nil
}

// Copied reports whether the acknowledgement is currently showing.
func (b *Button) Copied() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.copiedAt.IsZero() {
		return false
	}
	return b.now().Sub(b.copiedAt) < b.delay()
}

// Label returns the text the button currently shows.
func (b *Button) Label() string {
	if b.Copied() {
		return LabelCopied
	}
	return LabelCopy
}

// Reset drops any pending acknowledgement.
func (b *Button) Reset() {
	b.mu.Lock()
	b.copiedAt = time.Time{}
	b.mu.Unlock()
}
