package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/clipguard/clipguard/internal/logging"
	"github.com/clipguard/clipguard/internal/observability"
)

func TestHTTPSinkPostsCandidate(t *testing.T) {
	got := make(chan logging.Candidate, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var c logging.Candidate
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			t.Errorf("decode: %v", err)
		}
		got <- c
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sink := NewHTTP(srv.URL, time.Second)
	if err := sink.Send(context.Background(), logging.Candidate{Host: "evil.test", Method: "writeText", Text: "curl x"}); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	c := <-got
	if c.Host != "evil.test" || c.Method != "writeText" {
		t.Fatalf("unexpected candidate %+v", c)
	}
}

func TestHTTPSinkRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if err := NewHTTP(srv.URL, time.Second).Send(context.Background(), logging.Candidate{}); err == nil {
		t.Fatal("expected error for 500")
	}
}

type failingSink struct{}

func (failingSink) Name() string { return "broken" }

func (failingSink) Send(context.Context, logging.Candidate) error {
	return errors.New("unreachable")
}

func TestForwarderIsolatesFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	var buf bytes.Buffer
	f := NewForwarder(time.Second, metrics, nil, failingSink{}, File{Logger: logging.NewTelemetryLogger(&buf)})

	f.Forward(context.Background(), logging.Candidate{Host: "a.test", Text: "hello"})
	f.Wait()

	if !strings.Contains(buf.String(), `"host":"a.test"`) {
		t.Fatalf("expected file sink to receive candidate, got %q", buf.String())
	}
	if got := failureCount(t, reg, "broken"); got != 1 {
		t.Fatalf("expected one telemetry failure, got %v", got)
	}
	count, err := testutil.GatherAndCount(reg, "clipguard_telemetry_failures_total")
	if err != nil || count != 1 {
		t.Fatalf("expected one failing sink series, got %d (%v)", count, err)
	}
}

func failureCount(t *testing.T, reg *prometheus.Registry, sink string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, fam := range families {
		if fam.GetName() != "clipguard_telemetry_failures_total" {
			continue
		}
		for _, m := range fam.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "sink" && label.GetValue() == sink {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestNilForwarderDisabled(t *testing.T) {
	var f *Forwarder
	if f.Enabled() {
		t.Fatal("nil forwarder should be disabled")
	}
	f.Forward(context.Background(), logging.Candidate{})
	f.Wait()
}
