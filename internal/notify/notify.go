package notify

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

const (
	Title    = "⚠ Suspicious Clipboard Activity"
	Ellipsis = "…"
)

var ErrModalOpen = errors.New("an alert is already on screen")

// Alert is what a user is shown for a dispatched verdict.
type Alert struct {
	Time    time.Time
	Host    string
	RuleID  string
	Preview string
}

type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}

func NewAlert(now time.Time, host, payload, rule string, previewMax int) Alert {
	return Alert{
		Time:    now,
		Host:    host,
		RuleID:  rule,
		Preview: Truncate(payload, previewMax),
	}
}

// Truncate keeps s when it has at most n characters, otherwise returns the
// first n-1 characters followed by an ellipsis, n characters in total.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + Ellipsis
}

func Message(alert Alert) string {
	return fmt.Sprintf("From: %s\n\n%s", alert.Host, alert.Preview)
}

// Multi delivers to every notifier; one failing does not stop the others.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, alert Alert) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
