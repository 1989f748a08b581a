package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/clipguard/clipguard/internal/hostname"
	"github.com/clipguard/clipguard/internal/policy"
	"github.com/clipguard/clipguard/internal/report"
)

const (
	KeyWhitelist      = "whitelist"
	KeyLogs           = "logs"
	KeyKeywords       = "keywords"
	KeyOnScreenAlerts = "onScreenAlerts"
)

// MaxLogs caps the stored threat log; the oldest entries are evicted.
const MaxLogs = 50

// Settings is the typed view over a Store used by the detection path and the
// settings commands. Read-modify-write operations are serialized in-process.
type Settings struct {
	mu    sync.Mutex
	store Store
}

func NewSettings(s Store) *Settings {
	return &Settings{store: s}
}

// EnsureDefaults seeds empty whitelist, logs and keywords when they are absent.
func (s *Settings) EnsureDefaults(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range []string{KeyWhitelist, KeyLogs, KeyKeywords} {
		_, ok, err := s.store.Get(ctx, key)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if err := s.store.Set(ctx, key, []byte("[]")); err != nil {
			return err
		}
	}
	return nil
}

// Settings implements policy.Provider.
func (s *Settings) Settings(ctx context.Context) (policy.Settings, error) {
	whitelist, err := s.Whitelist(ctx)
	if err != nil {
		return policy.Settings{}, err
	}
	keywords, err := s.Keywords(ctx)
	if err != nil {
		return policy.Settings{}, err
	}
	onScreen, err := s.OnScreenAlerts(ctx)
	if err != nil {
		return policy.Settings{}, err
	}
	return policy.Settings{Whitelist: whitelist, Keywords: keywords, OnScreenAlerts: onScreen}, nil
}

func (s *Settings) Whitelist(ctx context.Context) ([]string, error) {
	var list []string
	if err := s.load(ctx, KeyWhitelist, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// AddWhitelist adds a hostname from the settings surface; it must contain a dot.
func (s *Settings) AddWhitelist(ctx context.Context, host string) (string, error) {
	host = hostname.Canonical(host)
	if !strings.Contains(host, ".") {
		return "", fmt.Errorf("%w: %q (e.g. example.com)", ErrInvalidHost, host)
	}
	return host, s.insertWhitelist(ctx, host)
}

// ConfirmWhitelist adds the host an alert was raised for, after the user confirmed it.
func (s *Settings) ConfirmWhitelist(ctx context.Context, host string) error {
	host = strings.TrimSpace(host)
	if host == "" || host == hostname.Unknown {
		return fmt.Errorf("%w: %q", ErrInvalidHost, host)
	}
	return s.insertWhitelist(ctx, host)
}

func (s *Settings) insertWhitelist(ctx context.Context, host string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var list []string
	if err := s.load(ctx, KeyWhitelist, &list); err != nil {
		return err
	}
	for _, entry := range list {
		if entry == host {
			return fmt.Errorf("%s is %w", host, ErrDuplicate)
		}
	}
	return s.save(ctx, KeyWhitelist, append(list, host))
}

// SeedWhitelist adds configured hosts that are not yet present.
func (s *Settings) SeedWhitelist(ctx context.Context, hosts []string) error {
	for _, host := range hosts {
		_, err := s.AddWhitelist(ctx, host)
		if err != nil && !errors.Is(err, ErrDuplicate) {
			return err
		}
	}
	return nil
}

// RemoveWhitelist drops host, matched either as typed or in canonical form.
func (s *Settings) RemoveWhitelist(ctx context.Context, host string) error {
	host = strings.TrimSpace(host)
	canonical := hostname.Canonical(host)

	s.mu.Lock()
	defer s.mu.Unlock()

	var list []string
	if err := s.load(ctx, KeyWhitelist, &list); err != nil {
		return err
	}
	kept := make([]string, 0, len(list))
	for _, entry := range list {
		if entry != host && entry != canonical {
			kept = append(kept, entry)
		}
	}
	if len(kept) == len(list) {
		return fmt.Errorf("%s: %w", host, ErrNotFound)
	}
	return s.save(ctx, KeyWhitelist, kept)
}

func (s *Settings) ClearWhitelist(ctx context.Context) error {
	return s.save(ctx, KeyWhitelist, []string{})
}

func (s *Settings) Keywords(ctx context.Context) ([]string, error) {
	var list []string
	if err := s.load(ctx, KeyKeywords, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Settings) SaveKeywords(ctx context.Context, keywords []string) error {
	cleaned := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			cleaned = append(cleaned, k)
		}
	}
	return s.save(ctx, KeyKeywords, cleaned)
}

// ResetKeywords clears the user list; built-in rules are unaffected.
func (s *Settings) ResetKeywords(ctx context.Context) error {
	return s.save(ctx, KeyKeywords, []string{})
}

// ParseKeywords splits newline-delimited text into trimmed, non-empty keywords.
func ParseKeywords(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Logs returns stored entries newest first.
func (s *Settings) Logs(ctx context.Context) ([]report.Entry, error) {
	var logs []report.Entry
	if err := s.load(ctx, KeyLogs, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// AppendLog prepends entry and keeps only the newest MaxLogs entries.
func (s *Settings) AppendLog(ctx context.Context, entry report.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var logs []report.Entry
	if err := s.load(ctx, KeyLogs, &logs); err != nil {
		return err
	}
	updated := make([]report.Entry, 0, len(logs)+1)
	updated = append(updated, entry)
	updated = append(updated, logs...)
	if len(updated) > MaxLogs {
		updated = updated[:MaxLogs]
	}
	return s.save(ctx, KeyLogs, updated)
}

func (s *Settings) ClearLogs(ctx context.Context) error {
	return s.save(ctx, KeyLogs, []report.Entry{})
}

// OnScreenAlerts defaults to true when never set.
func (s *Settings) OnScreenAlerts(ctx context.Context) (bool, error) {
	enabled := true
	if err := s.load(ctx, KeyOnScreenAlerts, &enabled); err != nil {
		return false, err
	}
	return enabled, nil
}

func (s *Settings) SetOnScreenAlerts(ctx context.Context, enabled bool) error {
	return s.save(ctx, KeyOnScreenAlerts, enabled)
}

func (s *Settings) load(ctx context.Context, key string, dst any) error {
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if !ok || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *Settings) save(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
