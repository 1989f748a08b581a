package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSummarize(t *testing.T) {
	entries := []Entry{
		{Time: time.Unix(2, 0), SourceHost: "evil.test", MatchedRule: "MALICIOUS_RE"},
		{Time: time.Unix(1, 0), SourceHost: "evil.test", MatchedRule: "TOKEN_CHAIN"},
		{Time: time.Unix(0, 0), SourceHost: "other.test"},
	}

	summary := Summarize(entries)
	if summary.Total != 3 {
		t.Fatalf("expected total 3, got %d", summary.Total)
	}
	if !summary.Start.Equal(time.Unix(0, 0)) || !summary.End.Equal(time.Unix(2, 0)) {
		t.Fatalf("unexpected range %v..%v", summary.Start, summary.End)
	}
	if len(summary.TopHosts) != 2 || summary.TopHosts[0].Key != "evil.test" || summary.TopHosts[0].Count != 2 {
		t.Fatalf("unexpected top hosts %+v", summary.TopHosts)
	}
	if len(summary.TopRules) != 3 {
		t.Fatalf("expected 3 rule buckets, got %+v", summary.TopRules)
	}

	text := RenderText(summary)
	if !strings.Contains(text, "- evil.test: 2") {
		t.Fatalf("expected host in text output, got %q", text)
	}
	if md := RenderMarkdown(Summary{}); !strings.Contains(md, "- none") {
		t.Fatalf("expected empty markdown sections, got %q", md)
	}
}

func TestReportFromEntry(t *testing.T) {
	detected := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	entry := NewEntry(detected, "https://evil.test/x", "evil.test", "PowerShell -enc AAA", "MALICIOUS_RE", Environment{UserAgent: "ua", Platform: "linux/amd64"})

	if entry.ReportType != TypeLog {
		t.Fatalf("expected log type, got %q", entry.ReportType)
	}

	rep := FromEntry(entry, detected.Add(time.Minute))
	if rep.ReportType != TypeReport || rep.ID == "" {
		t.Fatalf("unexpected report header %+v", rep)
	}
	if rep.DetectedClipboardPayload != "PowerShell -enc AAA" {
		t.Fatalf("expected original payload, got %q", rep.DetectedClipboardPayload)
	}

	data, err := RenderJSON(rep)
	if err != nil {
		t.Fatalf("RenderJSON error: %v", err)
	}
	if !strings.Contains(string(data), "\n  \"reportType\": \"ClickFix Threat Report\"") {
		t.Fatalf("expected pretty-printed json, got %s", data)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	for _, key := range []string{"reportType", "timestamp", "url", "sourceHost", "detectedClipboardPayload", "environment"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("expected key %q in report", key)
		}
	}
}

func TestFilename(t *testing.T) {
	got := Filename(time.Date(2026, 10, 15, 9, 30, 5, 0, time.UTC))
	if got != "ClickFix-ThreatReport-20261015T093005Z.json" {
		t.Fatalf("unexpected filename %q", got)
	}
	if Filename(time.Time{}) != DefaultFilename {
		t.Fatal("expected default filename for zero time")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"":                     DefaultFilename,
		"../../etc/passwd":     "passwd.json",
		`..\..\evil.json`:      "evil.json",
		"ClickFix-Report.JSON": "ClickFix-Report.JSON",
		"..":                   DefaultFilename,
	}
	for input, want := range cases {
		if got := SanitizeFilename(input); got != want {
			t.Fatalf("SanitizeFilename(%q) expected %q, got %q", input, want, got)
		}
	}
}

func TestSaveDoesNotOverwrite(t *testing.T) {
	dir := t.TempDir()

	first, err := Save(dir, "r.json", []byte("1"))
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	second, err := Save(dir, "r.json", []byte("2"))
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct paths, got %q twice", first)
	}
	if filepath.Base(second) != "r-1.json" {
		t.Fatalf("expected r-1.json, got %q", second)
	}
	data, err := os.ReadFile(first)
	if err != nil || string(data) != "1" {
		t.Fatalf("expected first report intact, got %q (%v)", data, err)
	}
}
