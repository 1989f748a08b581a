package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/clipguard/clipguard/internal/report"
)

func TestEnsureDefaultsKeepsExisting(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	if err := mem.Set(ctx, KeyKeywords, []byte(`["keep"]`)); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	s := NewSettings(mem)
	if err := s.EnsureDefaults(ctx); err != nil {
		t.Fatalf("EnsureDefaults error: %v", err)
	}

	keywords, err := s.Keywords(ctx)
	if err != nil || len(keywords) != 1 || keywords[0] != "keep" {
		t.Fatalf("expected existing keywords kept, got %v (%v)", keywords, err)
	}
	raw, ok, _ := mem.Get(ctx, KeyLogs)
	if !ok || string(raw) != "[]" {
		t.Fatalf("expected logs seeded, got %s ok=%v", raw, ok)
	}
}

func TestWhitelistOperations(t *testing.T) {
	ctx := context.Background()
	s := NewSettings(NewMemory())

	host, err := s.AddWhitelist(ctx, " Trusted.Example.com ")
	if err != nil {
		t.Fatalf("AddWhitelist error: %v", err)
	}
	if host != "trusted.example.com" {
		t.Fatalf("expected canonical host, got %q", host)
	}
	if _, err := s.AddWhitelist(ctx, "trusted.example.com"); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if _, err := s.AddWhitelist(ctx, "localhost"); !errors.Is(err, ErrInvalidHost) {
		t.Fatalf("expected invalid host error, got %v", err)
	}
	if err := s.ConfirmWhitelist(ctx, "localhost"); err != nil {
		t.Fatalf("ConfirmWhitelist error: %v", err)
	}
	if err := s.ConfirmWhitelist(ctx, "unknown"); !errors.Is(err, ErrInvalidHost) {
		t.Fatalf("expected unknown host rejected, got %v", err)
	}

	list, err := s.Whitelist(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("expected 2 entries, got %v (%v)", list, err)
	}

	if err := s.RemoveWhitelist(ctx, "localhost"); err != nil {
		t.Fatalf("RemoveWhitelist error: %v", err)
	}
	if err := s.RemoveWhitelist(ctx, "localhost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := s.RemoveWhitelist(ctx, " Trusted.Example.COM "); err != nil {
		t.Fatalf("RemoveWhitelist as typed at add time: %v", err)
	}
	if list, _ := s.Whitelist(ctx); len(list) != 0 {
		t.Fatalf("expected canonical entry removed, got %v", list)
	}
	if err := s.ClearWhitelist(ctx); err != nil {
		t.Fatalf("ClearWhitelist error: %v", err)
	}
	if list, _ := s.Whitelist(ctx); len(list) != 0 {
		t.Fatalf("expected empty whitelist, got %v", list)
	}
}

func TestSeedWhitelist(t *testing.T) {
	ctx := context.Background()
	s := NewSettings(NewMemory())
	if _, err := s.AddWhitelist(ctx, "docs.example.com"); err != nil {
		t.Fatalf("AddWhitelist error: %v", err)
	}

	if err := s.SeedWhitelist(ctx, []string{"docs.example.com", "Intranet.Example.org"}); err != nil {
		t.Fatalf("SeedWhitelist error: %v", err)
	}
	list, _ := s.Whitelist(ctx)
	if len(list) != 2 || list[1] != "intranet.example.org" {
		t.Fatalf("expected seeded host appended once, got %v", list)
	}

	if err := s.SeedWhitelist(ctx, []string{"nodot"}); !errors.Is(err, ErrInvalidHost) {
		t.Fatalf("expected invalid seed rejected, got %v", err)
	}
}

func TestKeywords(t *testing.T) {
	ctx := context.Background()
	s := NewSettings(NewMemory())

	parsed := ParseKeywords("win+r\n\n  paste this  \r\n")
	if len(parsed) != 2 || parsed[1] != "paste this" {
		t.Fatalf("unexpected parsed keywords %q", parsed)
	}
	if err := s.SaveKeywords(ctx, append(parsed, "   ")); err != nil {
		t.Fatalf("SaveKeywords error: %v", err)
	}
	keywords, _ := s.Keywords(ctx)
	if len(keywords) != 2 {
		t.Fatalf("expected 2 keywords, got %q", keywords)
	}
	if err := s.ResetKeywords(ctx); err != nil {
		t.Fatalf("ResetKeywords error: %v", err)
	}
	if keywords, _ := s.Keywords(ctx); len(keywords) != 0 {
		t.Fatalf("expected no keywords, got %q", keywords)
	}
}

func TestAppendLogCap(t *testing.T) {
	ctx := context.Background()
	s := NewSettings(NewMemory())
	base := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

	const n = 60
	for i := 0; i < n; i++ {
		entry := report.NewEntry(base.Add(time.Duration(i)*time.Second), "u", "h", fmt.Sprintf("payload-%d", i), "R", report.Environment{})
		if err := s.AppendLog(ctx, entry); err != nil {
			t.Fatalf("AppendLog error: %v", err)
		}
	}

	logs, err := s.Logs(ctx)
	if err != nil {
		t.Fatalf("Logs error: %v", err)
	}
	if len(logs) != MaxLogs {
		t.Fatalf("expected %d logs, got %d", MaxLogs, len(logs))
	}
	for i, entry := range logs {
		want := fmt.Sprintf("payload-%d", n-1-i)
		if entry.DetectedClipboardPayload != want {
			t.Fatalf("logs[%d] expected %s, got %s", i, want, entry.DetectedClipboardPayload)
		}
	}

	if err := s.ClearLogs(ctx); err != nil {
		t.Fatalf("ClearLogs error: %v", err)
	}
	if logs, _ := s.Logs(ctx); len(logs) != 0 {
		t.Fatalf("expected cleared logs, got %d", len(logs))
	}
}

func TestOnScreenAlertsDefault(t *testing.T) {
	ctx := context.Background()
	s := NewSettings(NewMemory())

	enabled, err := s.OnScreenAlerts(ctx)
	if err != nil || !enabled {
		t.Fatalf("expected default true, got %v (%v)", enabled, err)
	}
	if err := s.SetOnScreenAlerts(ctx, false); err != nil {
		t.Fatalf("SetOnScreenAlerts error: %v", err)
	}
	settings, err := s.Settings(ctx)
	if err != nil {
		t.Fatalf("Settings error: %v", err)
	}
	if settings.OnScreenAlerts {
		t.Fatal("expected on-screen alerts disabled")
	}
}
