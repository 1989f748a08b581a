package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	filenamePrefix  = "ClickFix-ThreatReport"
	DefaultFilename = filenamePrefix + ".json"
)

// Report is the downloadable artifact handed to a security analyst.
type Report struct {
	ID                       string      `json:"id"`
	ReportType               string      `json:"reportType"`
	Timestamp                time.Time   `json:"timestamp"`
	LocalTime                string      `json:"localTime"`
	DetectedAt               time.Time   `json:"detectedAt"`
	URL                      string      `json:"url"`
	SourceHost               string      `json:"sourceHost"`
	DetectedClipboardPayload string      `json:"detectedClipboardPayload"`
	MatchedRule              string      `json:"matchedRule,omitempty"`
	Environment              Environment `json:"environment"`
}

func FromEntry(entry Entry, now time.Time) Report {
	return Report{
		ID:                       uuid.NewString(),
		ReportType:               TypeReport,
		Timestamp:                now.UTC(),
		LocalTime:                now.Local().Format(time.RFC1123),
		DetectedAt:               entry.Time,
		URL:                      entry.URL,
		SourceHost:               entry.SourceHost,
		DetectedClipboardPayload: entry.DetectedClipboardPayload,
		MatchedRule:              entry.MatchedRule,
		Environment:              entry.Environment,
	}
}

func RenderJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// Filename names a report after the detection time.
func Filename(t time.Time) string {
	if t.IsZero() {
		return DefaultFilename
	}
	return fmt.Sprintf("%s-%s.json", filenamePrefix, t.UTC().Format("20060102T150405Z"))
}

// SanitizeFilename keeps a caller-supplied name inside the reports directory.
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultFilename
	}
	name = filepath.Base(filepath.Clean("/" + strings.ReplaceAll(name, "\\", "/")))
	if name == "/" || name == "." || name == ".." {
		return DefaultFilename
	}
	if !strings.HasSuffix(strings.ToLower(name), ".json") {
		name += ".json"
	}
	return name
}

// Save writes data into dir under a unique name derived from filename and
// returns the final path.
func Save(dir, filename string, data []byte) (string, error) {
	if dir == "" {
		return "", errors.New("reports directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := SanitizeFilename(filename)
	path := filepath.Join(dir, name)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if err == nil {
			_, werr := file.Write(data)
			cerr := file.Close()
			if werr != nil {
				return "", werr
			}
			return path, cerr
		}
		if !errors.Is(err, os.ErrExist) {
			return "", err
		}
		path = filepath.Join(dir, fmt.Sprintf("%s-%d%s", stem, i, ext))
	}
}

func WriteOutput(path string, content []byte) error {
	if path == "" {
		_, err := io.Copy(os.Stdout, bytes.NewReader(content))
		return err
	}
	return os.WriteFile(path, content, 0o600)
}
