package notify

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Terminal is the on-screen alert: a boxed modal written to a terminal.
// Only one modal is drawn at a time; overlapping alerts are dropped.
type Terminal struct {
	mu sync.Mutex
	w  io.Writer
}

func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

func (t *Terminal) Notify(_ context.Context, alert Alert) error {
	if !t.mu.TryLock() {
		return ErrModalOpen
	}
	defer t.mu.Unlock()

	var b strings.Builder
	rule := strings.Repeat("=", 60)
	b.WriteString(rule + "\n")
	b.WriteString("⚠ Suspicious Clipboard Detected\n")
	fmt.Fprintf(&b, "Source: %s\n", alert.Host)
	if alert.RuleID != "" {
		fmt.Fprintf(&b, "Rule:   %s\n", alert.RuleID)
	}
	b.WriteString("Detected payload:\n")
	for _, line := range strings.Split(alert.Preview, "\n") {
		b.WriteString("  " + line + "\n")
	}
	b.WriteString(rule + "\n")

	_, err := io.WriteString(t.w, b.String())
	return err
}
