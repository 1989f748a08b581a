package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/clipguard/clipguard/internal/config"
	"github.com/clipguard/clipguard/internal/dispatch"
	"github.com/clipguard/clipguard/internal/report"
	"github.com/clipguard/clipguard/internal/rules"
	"github.com/clipguard/clipguard/internal/store"
)

const MessagesPath = "/v1/messages"

// Whitelister confirms a host from an alert.
type Whitelister interface {
	ConfirmWhitelist(ctx context.Context, host string) error
}

// Server accepts extension messages over HTTP and feeds them to the detector.
type Server struct {
	router     *Router
	mux        *http.ServeMux
	detector   *dispatch.Detector
	whitelist  Whitelister
	reportsDir string
	maxBody    int64
	log        *logrus.Entry
	now        func() time.Time
}

func New(cfg *config.Config, detector *dispatch.Detector, whitelist Whitelister, log *logrus.Entry) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if detector == nil {
		return nil, errors.New("detector is required")
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	s := &Server{
		router:    NewRouter(),
		mux:       http.NewServeMux(),
		detector:  detector,
		whitelist: whitelist,
		maxBody:   cfg.Server.MaxBodyBytes,
		log:       log,
		now:       time.Now,
	}
	if cfg.Reports.Dir != "" {
		s.reportsDir = cfg.ResolvePath(cfg.Reports.Dir)
	}

	handlers := map[string]HandlerFunc{
		TypeSuspiciousClipboard:   s.handleSuspicious,
		TypeClipboardCandidateRaw: s.handleRaw,
		TypeDownloadReport:        s.handleDownloadReport,
		TypeWhitelistSite:         s.handleWhitelistSite,
	}
	for name, fn := range handlers {
		if err := s.router.Handle(name, fn); err != nil {
			return nil, err
		}
	}

	s.mux.HandleFunc(MessagesPath, s.serveMessage)
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "messages": s.router.Types()})
	})
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) serveMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if s.maxBody > 0 {
		if r.ContentLength > s.maxBody {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	}

	var msg Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid message")
		return
	}

	fn, ok := s.router.Match(msg)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown message type %q", msg.Type))
		return
	}

	requestID := uuid.NewString()
	start := time.Now()
	status, body := fn(r, msg)
	s.log.WithFields(logrus.Fields{
		"request_id":  requestID,
		"type":        msg.Type,
		"status":      status,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("message handled")

	w.Header().Set("X-Request-Id", requestID)
	writeJSON(w, status, body)
}

func (s *Server) handleSuspicious(r *http.Request, msg Message) (int, any) {
	decision := s.detector.Handle(r.Context(), dispatch.Event{
		Candidate: rules.Candidate{Method: rules.ParseMethod(msg.Method), Text: msg.Payload},
		Origin:    msg.Origin,
		SenderURL: msg.URL,
	})
	return http.StatusOK, decision
}

func (s *Server) handleRaw(r *http.Request, msg Message) (int, any) {
	s.detector.Observe(r.Context(), dispatch.Event{
		Candidate: rules.Candidate{Method: rules.ParseMethod(msg.Method), Text: msg.Text},
		Origin:    msg.Origin,
		SenderURL: msg.URL,
	})
	return http.StatusAccepted, map[string]bool{"accepted": true}
}

func (s *Server) handleDownloadReport(_ *http.Request, msg Message) (int, any) {
	if s.reportsDir == "" {
		return http.StatusServiceUnavailable, errorBody("reports directory is not configured")
	}
	if len(msg.Data) == 0 {
		return http.StatusBadRequest, errorBody("report data is required")
	}
	if _, ok := msg.Data["reportType"]; !ok {
		msg.Data["reportType"] = report.TypeReport
	}

	data, err := report.RenderJSON(msg.Data)
	if err != nil {
		return http.StatusBadRequest, errorBody("report data is not serializable")
	}
	filename := msg.Filename
	if filename == "" {
		filename = report.Filename(s.now())
	}
	path, err := report.Save(s.reportsDir, filename, data)
	if err != nil {
		s.log.WithError(err).Warn("report not saved")
		return http.StatusInternalServerError, errorBody("report not saved")
	}
	return http.StatusCreated, map[string]string{"path": path}
}

func (s *Server) handleWhitelistSite(r *http.Request, msg Message) (int, any) {
	if s.whitelist == nil {
		return http.StatusServiceUnavailable, errorBody("whitelist is not available")
	}
	err := s.whitelist.ConfirmWhitelist(r.Context(), msg.Host)
	switch {
	case err == nil:
		return http.StatusCreated, map[string]string{"host": msg.Host}
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict, errorBody(err.Error())
	case errors.Is(err, store.ErrInvalidHost):
		return http.StatusBadRequest, errorBody(err.Error())
	default:
		s.log.WithError(err).Warn("whitelist update failed")
		return http.StatusInternalServerError, errorBody("whitelist update failed")
	}
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody(msg))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}
