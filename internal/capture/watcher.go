package capture

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.design/x/clipboard"

	"github.com/clipguard/clipguard/internal/dispatch"
	"github.com/clipguard/clipguard/internal/rules"
)

// Source yields clipboard text whenever it changes.
type Source func(ctx context.Context) (<-chan []byte, error)

// SystemClipboard watches the OS clipboard for text.
func SystemClipboard(ctx context.Context) (<-chan []byte, error) {
	if err := clipboard.Init(); err != nil {
		return nil, fmt.Errorf("initialize clipboard: %w", err)
	}
	return clipboard.Watch(ctx, clipboard.FmtText), nil
}

// Handler receives every new clipboard candidate.
type Handler func(ctx context.Context, ev dispatch.Event)

// Watcher turns clipboard changes into candidates. Consecutive identical
// contents are reported once.
type Watcher struct {
	Source  Source
	Origin  string
	MaxSize int
	Log     *logrus.Entry

	lastHash string
}

func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	source := w.Source
	if source == nil {
		source = SystemClipboard
	}
	changes, err := source(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case data, ok := <-changes:
			if !ok {
				return nil
			}
			ev, ok := w.candidate(data)
			if !ok {
				continue
			}
			handle(ctx, ev)
		}
	}
}

func (w *Watcher) candidate(data []byte) (dispatch.Event, bool) {
	if len(data) == 0 {
		return dispatch.Event{}, false
	}
	if w.MaxSize > 0 && len(data) > w.MaxSize {
		if w.Log != nil {
			w.Log.WithField("size", len(data)).Debug("clipboard content too large, skipped")
		}
		return dispatch.Event{}, false
	}

	hash := contentHash(data)
	if hash == w.lastHash {
		return dispatch.Event{}, false
	}
	w.lastHash = hash

	return dispatch.Event{
		Candidate: rules.Candidate{Method: rules.MethodUnknown, Text: string(data)},
		Origin:    w.Origin,
	}, true
}

func contentHash(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}
