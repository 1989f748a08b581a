package report

import (
	"os"
	"runtime"
	"strings"
	"time"
)

const (
	TypeLog    = "ClickFix Threat Log"
	TypeReport = "ClickFix Threat Report"
)

type Environment struct {
	UserAgent string `json:"userAgent"`
	Platform  string `json:"platform"`
	Language  string `json:"language,omitempty"`
}

// Entry is one stored threat log record. DetectedClipboardPayload always holds
// the original, non-normalized text.
type Entry struct {
	ReportType               string      `json:"reportType"`
	Time                     time.Time   `json:"time"`
	URL                      string      `json:"url"`
	SourceHost               string      `json:"sourceHost"`
	DetectedClipboardPayload string      `json:"detectedClipboardPayload"`
	MatchedRule              string      `json:"matchedRule,omitempty"`
	Method                   string      `json:"method,omitempty"`
	Environment              Environment `json:"environment"`
}

func NewEntry(now time.Time, url, host, payload, rule string, env Environment) Entry {
	return Entry{
		ReportType:               TypeLog,
		Time:                     now.UTC(),
		URL:                      url,
		SourceHost:               host,
		DetectedClipboardPayload: payload,
		MatchedRule:              rule,
		Environment:              env,
	}
}

// LocalEnvironment describes the machine clipguard itself runs on.
func LocalEnvironment(userAgent string) Environment {
	return Environment{
		UserAgent: userAgent,
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		Language:  localeFromEnv(),
	}
}

func localeFromEnv() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		value := os.Getenv(key)
		if value == "" || value == "C" || value == "POSIX" {
			continue
		}
		if i := strings.IndexAny(value, ".@"); i >= 0 {
			value = value[:i]
		}
		return strings.ReplaceAll(value, "_", "-")
	}
	return ""
}
