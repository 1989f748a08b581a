package server

import (
	"errors"
	"net/http"
	"sort"
	"strings"
)

// Message is the envelope every extension message shares. Only the fields of
// the given Type are meaningful.
type Message struct {
	Type string `json:"type"`

	// suspiciousClipboard
	Payload string `json:"payload,omitempty"`
	// suspiciousClipboard, clipboardCandidateRaw
	Origin string `json:"origin,omitempty"`
	URL    string `json:"url,omitempty"`
	Method string `json:"method,omitempty"`
	// clipboardCandidateRaw
	Text string `json:"text,omitempty"`
	// downloadReport
	Data     map[string]any `json:"data,omitempty"`
	Filename string         `json:"filename,omitempty"`
	// whitelistSite
	Host string `json:"host,omitempty"`
}

const (
	TypeSuspiciousClipboard   = "suspiciousClipboard"
	TypeDownloadReport        = "downloadReport"
	TypeClipboardCandidateRaw = "clipboardCandidateRaw"
	TypeWhitelistSite         = "whitelistSite"
)

// HandlerFunc answers one message with a status code and a JSON body.
type HandlerFunc func(r *http.Request, msg Message) (int, any)

type Router struct {
	handlers map[string]HandlerFunc
}

func NewRouter() *Router {
	return &Router{handlers: make(map[string]HandlerFunc)}
}

func (r *Router) Handle(messageType string, fn HandlerFunc) error {
	messageType = strings.TrimSpace(messageType)
	if messageType == "" {
		return errors.New("message type is required")
	}
	if fn == nil {
		return errors.New("handler is required")
	}
	r.handlers[messageType] = fn
	return nil
}

func (r *Router) Match(msg Message) (HandlerFunc, bool) {
	fn, ok := r.handlers[msg.Type]
	return fn, ok
}

func (r *Router) Types() []string {
	types := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
