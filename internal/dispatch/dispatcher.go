package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/clipguard/clipguard/internal/config"
	"github.com/clipguard/clipguard/internal/notify"
	"github.com/clipguard/clipguard/internal/observability"
	"github.com/clipguard/clipguard/internal/ratelimit"
	"github.com/clipguard/clipguard/internal/report"
	"github.com/clipguard/clipguard/internal/rules"
)

const (
	StepLog    = "log"
	StepAlert  = "alert"
	StepReport = "report"
	StepQueue  = "queue"
)

const defaultQueueSize = 64

var (
	ErrClosed    = errors.New("dispatcher closed")
	ErrQueueFull = errors.New("dispatch queue full")
)

// LogStore persists threat log entries.
type LogStore interface {
	AppendLog(ctx context.Context, entry report.Entry) error
}

// Detection is a suspicious, non-whitelisted candidate ready for dispatch.
type Detection struct {
	Method  rules.Method
	Host    string
	URL     string
	Payload string
	Verdict rules.Verdict
	// OnScreen is the user's current alert preference.
	OnScreen bool
}

// Outcome reports which steps of a dispatch succeeded.
type Outcome struct {
	Entry      report.Entry
	Logged     bool
	Alerted    bool
	ReportPath string
}

type Options struct {
	PreviewMax  int
	ReportsDir  string
	Throttle    config.ThrottleConfig
	Environment report.Environment
	QueueSize   int
}

func OptionsFromConfig(cfg *config.Config, env report.Environment) Options {
	opts := Options{
		PreviewMax:  cfg.Alerts.PreviewMax,
		Throttle:    cfg.Alerts.Throttle,
		Environment: env,
	}
	if cfg.Reports.Dir != "" {
		opts.ReportsDir = cfg.ResolvePath(cfg.Reports.Dir)
	}
	return opts
}

type task struct {
	ctx       context.Context
	detection Detection
	done      chan Outcome
}

// Dispatcher runs the side effects of a detection on a single worker, so
// log mutations never interleave. Every step is best-effort.
type Dispatcher struct {
	logs     LogStore
	notifier notify.Notifier
	limiter  *ratelimit.Limiter
	metrics  *observability.Metrics
	log      *logrus.Entry
	opts     Options
	now      func() time.Time

	mu     sync.RWMutex
	closed bool
	tasks  chan task
	wg     sync.WaitGroup
}

func NewDispatcher(logs LogStore, notifier notify.Notifier, metrics *observability.Metrics, log *logrus.Entry, opts Options) *Dispatcher {
	if opts.PreviewMax <= 0 {
		opts.PreviewMax = config.DefaultPreviewMax
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	d := &Dispatcher{
		logs:     logs,
		notifier: notifier,
		limiter:  ratelimit.NewLimiter(),
		metrics:  metrics,
		log:      log,
		opts:     opts,
		now:      time.Now,
		tasks:    make(chan task, opts.QueueSize),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// Dispatch queues a detection and returns without waiting for it. The
// returned channel yields the outcome once every step has run. A full queue
// drops the detection with ErrQueueFull instead of blocking the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, detection Detection) (<-chan Outcome, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil, ErrClosed
	}

	done := make(chan Outcome, 1)
	select {
	case d.tasks <- task{ctx: context.WithoutCancel(ctx), detection: detection, done: done}:
		return done, nil
	default:
		d.fail(d.log.WithField("host", detection.Host), StepQueue, ErrQueueFull)
		return nil, ErrQueueFull
	}
}

// Close stops accepting detections and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.tasks)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for t := range d.tasks {
		t.done <- d.process(t.ctx, t.detection)
	}
}

func (d *Dispatcher) process(ctx context.Context, det Detection) Outcome {
	now := d.now()
	entry := report.NewEntry(now, det.URL, det.Host, det.Payload, det.Verdict.RuleID, d.opts.Environment)
	entry.Method = string(det.Method)
	out := Outcome{Entry: entry}

	log := d.log.WithFields(logrus.Fields{"host": det.Host, "rule": det.Verdict.RuleID})

	if d.logs != nil {
		if err := d.logs.AppendLog(ctx, entry); err != nil {
			d.fail(log, StepLog, err)
		} else {
			out.Logged = true
		}
	}

	if d.shouldAlert(det, now) {
		alert := notify.NewAlert(now, det.Host, det.Payload, det.Verdict.RuleID, d.opts.PreviewMax)
		if err := d.notifier.Notify(ctx, alert); err != nil {
			if errors.Is(err, notify.ErrModalOpen) {
				log.Debug("alert already on screen")
			} else {
				d.fail(log, StepAlert, err)
			}
		} else {
			out.Alerted = true
		}
	}

	if d.opts.ReportsDir != "" {
		path, err := d.writeReport(entry, now)
		if err != nil {
			d.fail(log, StepReport, err)
		} else {
			out.ReportPath = path
			log.WithField("path", path).Info("threat report written")
		}
	}

	return out
}

func (d *Dispatcher) shouldAlert(det Detection, now time.Time) bool {
	if !det.OnScreen || d.notifier == nil {
		return false
	}
	throttle := d.opts.Throttle
	if throttle.Enabled && !d.limiter.Allow(det.Host, throttle.RPS, throttle.Burst, now) {
		d.metrics.AlertThrottled()
		return false
	}
	return true
}

func (d *Dispatcher) writeReport(entry report.Entry, now time.Time) (string, error) {
	data, err := report.RenderJSON(report.FromEntry(entry, now))
	if err != nil {
		return "", err
	}
	return report.Save(d.opts.ReportsDir, report.Filename(entry.Time), data)
}

func (d *Dispatcher) fail(log *logrus.Entry, step string, err error) {
	d.metrics.DispatchFailure(step)
	log.WithError(err).WithField("step", step).Warn("dispatch step failed")
}
