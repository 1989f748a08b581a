package logging

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const maxEvidence = 256

// Candidate is written as a single JSON object per raw clipboard capture.
type Candidate struct {
	Timestamp   time.Time `json:"ts"`
	Origin      string    `json:"origin"`
	Host        string    `json:"host"`
	Method      string    `json:"method"`
	Text        string    `json:"text"`
	Length      int       `json:"length"`
	Suspicious  bool      `json:"suspicious"`
	MatchedRule string    `json:"matched_rule,omitempty"`
	Whitelisted bool      `json:"whitelisted"`
}

type TelemetryLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func NewTelemetryLogger(w io.Writer) *TelemetryLogger {
	return &TelemetryLogger{w: w}
}

func OpenTelemetryLog(path string) (*TelemetryLogger, func() error, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, err
	}
	return NewTelemetryLogger(file), file.Close, nil
}

func (l *TelemetryLogger) Write(c Candidate) error {
	c.Length = len(c.Text)
	c.Text = truncateEvidence(c.Text)

	data, err := json.Marshal(c)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, err = l.w.Write(append(data, '\n'))
	return err
}

func truncateEvidence(s string) string {
	if len(s) <= maxEvidence {
		return s
	}
	cut := maxEvidence
	for cut > 0 && (s[cut]&0xC0) == 0x80 {
		cut--
	}
	return s[:cut]
}
