package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/clipguard/clipguard/internal/logging"
	"github.com/clipguard/clipguard/internal/observability"
)

// Sink receives raw clipboard candidates.
type Sink interface {
	Name() string
	Send(ctx context.Context, c logging.Candidate) error
}

// File appends candidates to a JSONL log.
type File struct {
	Logger *logging.TelemetryLogger
}

func (f File) Name() string { return "file" }

func (f File) Send(_ context.Context, c logging.Candidate) error {
	return f.Logger.Write(c)
}

// HTTP posts each candidate as JSON to a collector endpoint.
type HTTP struct {
	endpoint string
	client   *http.Client
}

func NewHTTP(endpoint string, timeout time.Duration) *HTTP {
	dialer := &net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}
	return &HTTP{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           dialer.DialContext,
				MaxIdleConns:          4,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
			},
		},
	}
}

func (h *HTTP) Name() string { return "http" }

func (h *HTTP) Send(ctx context.Context, c logging.Candidate) error {
	body, err := json.Marshal(c)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("collector returned %s", resp.Status)
	}
	return nil
}

// Forwarder delivers candidates to every sink in the background. Deliveries
// are never retried and never block the caller; failures are logged.
type Forwarder struct {
	sinks   []Sink
	timeout time.Duration
	metrics *observability.Metrics
	log     *logrus.Entry
	wg      sync.WaitGroup
}

func NewForwarder(timeout time.Duration, metrics *observability.Metrics, log *logrus.Entry, sinks ...Sink) *Forwarder {
	return &Forwarder{sinks: sinks, timeout: timeout, metrics: metrics, log: log}
}

func (f *Forwarder) Enabled() bool {
	return f != nil && len(f.sinks) > 0
}

func (f *Forwarder) Forward(ctx context.Context, c logging.Candidate) {
	if !f.Enabled() {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, sink := range f.sinks {
		f.wg.Add(1)
		go func(sink Sink) {
			defer f.wg.Done()
			sendCtx := ctx
			if f.timeout > 0 {
				var cancel context.CancelFunc
				sendCtx, cancel = context.WithTimeout(ctx, f.timeout)
				defer cancel()
			}
			if err := sink.Send(sendCtx, c); err != nil {
				f.metrics.TelemetryFailure(sink.Name())
				if f.log != nil {
					f.log.WithError(err).WithField("sink", sink.Name()).Warn("telemetry delivery failed")
				}
			}
		}(sink)
	}
}

// Wait blocks until in-flight deliveries finish.
func (f *Forwarder) Wait() {
	if f != nil {
		f.wg.Wait()
	}
}
