package dispatch

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/clipguard/clipguard/internal/hostname"
	"github.com/clipguard/clipguard/internal/logging"
	"github.com/clipguard/clipguard/internal/observability"
	"github.com/clipguard/clipguard/internal/policy"
	"github.com/clipguard/clipguard/internal/rules"
	"github.com/clipguard/clipguard/internal/telemetry"
)

// Event is one intercepted clipboard write together with where it came from.
type Event struct {
	Candidate rules.Candidate
	Origin    string
	SenderURL string
}

type Decision struct {
	Host    string        `json:"host"`
	URL     string        `json:"url"`
	Verdict rules.Verdict `json:"verdict"`
	Action  policy.Action `json:"action"`

	Outcome <-chan Outcome `json:"-"`
}

// Detector wires classification, the whitelist guard, raw telemetry and the
// dispatcher into one call per clipboard event.
type Detector struct {
	Engine     *rules.Engine
	Guard      policy.Guard
	Settings   policy.Provider
	Dispatcher *Dispatcher
	Telemetry  *telemetry.Forwarder
	// GateTelemetry applies the whitelist to raw telemetry as well.
	GateTelemetry bool
	Metrics       *observability.Metrics
	Log           *logrus.Entry
}

// Handle classifies an event and dispatches it when it is suspicious and its
// host is not whitelisted. It never fails; collaborator errors are logged.
func (d *Detector) Handle(ctx context.Context, ev Event) Decision {
	settings := d.settings(ctx)
	host := hostname.Resolve(ev.Origin, ev.SenderURL)

	start := time.Now()
	verdict := d.Engine.Classify(ev.Candidate, settings.Keywords)
	took := time.Since(start)

	action := d.Guard.Decide(verdict, host, settings.Whitelist)
	d.Metrics.ObserveClassification(string(ev.Candidate.Method), verdict.RuleID, string(action), took)

	d.forward(ctx, ev, host, verdict, settings.Whitelist)

	decision := Decision{
		Host:    host,
		URL:     hostname.SenderURL(ev.Origin, ev.SenderURL),
		Verdict: verdict,
		Action:  action,
	}
	if action != policy.ActionAlert || d.Dispatcher == nil {
		return decision
	}

	outcome, err := d.Dispatcher.Dispatch(ctx, Detection{
		Method:   ev.Candidate.Method,
		Host:     host,
		URL:      decision.URL,
		Payload:  ev.Candidate.Text,
		Verdict:  verdict,
		OnScreen: settings.OnScreenAlerts,
	})
	if err != nil {
		d.logger().WithError(err).Warn("detection not dispatched")
		return decision
	}
	decision.Outcome = outcome
	return decision
}

// Observe records a raw candidate for telemetry only; nothing is dispatched.
func (d *Detector) Observe(ctx context.Context, ev Event) {
	if !d.Telemetry.Enabled() {
		return
	}
	settings := d.settings(ctx)
	host := hostname.Resolve(ev.Origin, ev.SenderURL)
	verdict := d.Engine.Classify(ev.Candidate, settings.Keywords)
	d.forward(ctx, ev, host, verdict, settings.Whitelist)
}

func (d *Detector) forward(ctx context.Context, ev Event, host string, verdict rules.Verdict, whitelist []string) {
	if !d.Telemetry.Enabled() {
		return
	}
	if !d.Guard.ForwardTelemetry(host, whitelist, d.GateTelemetry) {
		return
	}
	d.Telemetry.Forward(ctx, logging.Candidate{
		Timestamp:   time.Now().UTC(),
		Origin:      ev.Origin,
		Host:        host,
		Method:      string(ev.Candidate.Method),
		Text:        ev.Candidate.Text,
		Suspicious:  verdict.Suspicious,
		MatchedRule: verdict.RuleID,
		Whitelisted: d.Guard.IsWhitelisted(host, whitelist),
	})
}

// settings falls back to an empty whitelist and keyword list when the store
// cannot be read, so built-in rules keep working.
func (d *Detector) settings(ctx context.Context) policy.Settings {
	if d.Settings == nil {
		return policy.Settings{OnScreenAlerts: true}
	}
	s, err := d.Settings.Settings(ctx)
	if err != nil {
		d.logger().WithError(err).Warn("settings unavailable, using defaults")
		return policy.Settings{OnScreenAlerts: true}
	}
	return s
}

func (d *Detector) logger() *logrus.Entry {
	if d.Log == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return d.Log
}
