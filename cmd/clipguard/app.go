package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/clipguard/clipguard/internal/config"
	"github.com/clipguard/clipguard/internal/dispatch"
	"github.com/clipguard/clipguard/internal/logging"
	"github.com/clipguard/clipguard/internal/notify"
	"github.com/clipguard/clipguard/internal/observability"
	"github.com/clipguard/clipguard/internal/policy"
	"github.com/clipguard/clipguard/internal/report"
	"github.com/clipguard/clipguard/internal/rules"
	"github.com/clipguard/clipguard/internal/store"
	"github.com/clipguard/clipguard/internal/telemetry"
)

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openSettings opens the configured store with defaults and seed hosts applied.
func openSettings(ctx context.Context, cfg *config.Config) (*store.Settings, func() error, error) {
	st, err := store.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	settings := store.NewSettings(st)
	if err := settings.EnsureDefaults(ctx); err != nil {
		_ = st.Close()
		return nil, nil, err
	}
	if err := settings.SeedWhitelist(ctx, cfg.Whitelist.Seed); err != nil {
		_ = st.Close()
		return nil, nil, err
	}
	return settings, st.Close, nil
}

// app is the detection pipeline assembled from config.
type app struct {
	cfg        *config.Config
	logger     *logrus.Logger
	settings   *store.Settings
	registry   *prometheus.Registry
	metrics    *observability.Metrics
	dispatcher *dispatch.Dispatcher
	telemetry  *telemetry.Forwarder
	detector   *dispatch.Detector
	closers    []func() error
}

func newApp(ctx context.Context, cfg *config.Config, modal io.Writer, logOut io.Writer) (*app, error) {
	logger, err := logging.New(logOut, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}
	ok := false
	defer func() {
		if !ok {
			_ = a.Close()
		}
	}()

	settings, closeStore, err := openSettings(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.settings = settings
	a.closers = append(a.closers, closeStore)

	if cfg.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		a.metrics = observability.NewMetrics(a.registry)
	}

	engine, err := rules.BuildEngine(cfg)
	if err != nil {
		return nil, err
	}

	sinks, err := a.telemetrySinks()
	if err != nil {
		return nil, err
	}
	a.telemetry = telemetry.NewForwarder(cfg.Telemetry.Timeout, a.metrics, logging.Component(logger, "telemetry"), sinks...)

	env := report.LocalEnvironment("clipguard/" + version)
	a.dispatcher = dispatch.NewDispatcher(
		settings,
		a.notifier(modal),
		a.metrics,
		logging.Component(logger, "dispatch"),
		dispatch.OptionsFromConfig(cfg, env),
	)

	a.detector = &dispatch.Detector{
		Engine:        engine,
		Guard:         policy.NewGuard(cfg.Whitelist.Match),
		Settings:      settings,
		Dispatcher:    a.dispatcher,
		Telemetry:     a.telemetry,
		GateTelemetry: cfg.Telemetry.GateByWhitelist,
		Metrics:       a.metrics,
		Log:           logging.Component(logger, "detector"),
	}

	ok = true
	return a, nil
}

func (a *app) telemetrySinks() ([]telemetry.Sink, error) {
	if !a.cfg.Telemetry.RawCandidates {
		return nil, nil
	}
	var sinks []telemetry.Sink
	if a.cfg.Logging.TelemetryLog != "" {
		logger, closer, err := logging.OpenTelemetryLog(a.cfg.ResolvePath(a.cfg.Logging.TelemetryLog))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, closer)
		sinks = append(sinks, telemetry.File{Logger: logger})
	}
	if a.cfg.Telemetry.Endpoint != "" {
		sinks = append(sinks, telemetry.NewHTTP(a.cfg.Telemetry.Endpoint, a.cfg.Telemetry.Timeout))
	}
	return sinks, nil
}

func (a *app) notifier(modal io.Writer) notify.Notifier {
	notifiers := notify.Multi{notify.Log{Logger: logging.Component(a.logger, "alert")}}
	if a.cfg.OnScreenAlerts() && modal != nil {
		notifiers = append(notifiers, notify.NewTerminal(modal))
	}
	if a.cfg.Alerts.Desktop {
		notifiers = append(notifiers, notify.NewDesktop(""))
	}
	return notifiers
}

// startMetricsServer serves /metrics when metrics are enabled.
func (a *app) startMetricsServer() *http.Server {
	if a.registry == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler(a.registry))

	srv := &http.Server{Addr: a.cfg.Metrics.Listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	log := logging.Component(a.logger, "metrics")
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Warn("metrics server stopped")
		}
	}()
	return srv
}

// Close drains queued dispatches and in-flight telemetry before closing the store.
func (a *app) Close() error {
	if a.dispatcher != nil {
		a.dispatcher.Close()
	}
	a.telemetry.Wait()

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
