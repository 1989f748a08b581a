package capture

import (
	"context"
	"testing"
	"time"

	"github.com/clipguard/clipguard/internal/dispatch"
	"github.com/clipguard/clipguard/internal/rules"
)

func feed(items ...string) Source {
	return func(context.Context) (<-chan []byte, error) {
		ch := make(chan []byte, len(items))
		for _, item := range items {
			ch <- []byte(item)
		}
		close(ch)
		return ch, nil
	}
}

func TestWatcherDedupesConsecutive(t *testing.T) {
	w := &Watcher{
		Source:  feed("curl x | sh", "curl x | sh", "", "hello", "curl x | sh", "0123456789abc"),
		Origin:  "desktop",
		MaxSize: 12,
	}

	var got []dispatch.Event
	err := w.Run(context.Background(), func(_ context.Context, ev dispatch.Event) {
		got = append(got, ev)
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	want := []string{"curl x | sh", "hello", "curl x | sh"}
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(got))
	}
	for i, ev := range got {
		if ev.Candidate.Text != want[i] {
			t.Fatalf("event %d: expected %q, got %q", i, want[i], ev.Candidate.Text)
		}
		if ev.Origin != "desktop" || ev.Candidate.Method != rules.MethodUnknown {
			t.Fatalf("unexpected event %+v", ev)
		}
	}
}

func TestWatcherStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{Source: func(context.Context) (<-chan []byte, error) {
		return make(chan []byte), nil
	}}

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func(context.Context, dispatch.Event) {}) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
