package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clipguard/clipguard/internal/capture"
	"github.com/clipguard/clipguard/internal/dispatch"
	"github.com/clipguard/clipguard/internal/logging"
)

func newWatchCmd(configPath *string) *cobra.Command {
	var origin string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the system clipboard and alert on suspicious content",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if origin != "" {
				cfg.Watch.Origin = origin
			}

			a, err := newApp(cmd.Context(), cfg, cmd.ErrOrStderr(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			metricsSrv := a.startMetricsServer()
			defer func() {
				if metricsSrv != nil {
					_ = metricsSrv.Shutdown(context.Background())
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log := logging.Component(a.logger, "watch")
			watcher := &capture.Watcher{Origin: cfg.Watch.Origin, MaxSize: cfg.Watch.MaxSize, Log: log}
			log.Info("watching clipboard")
			return watcher.Run(ctx, func(ctx context.Context, ev dispatch.Event) {
				decision := a.detector.Handle(ctx, ev)
				if decision.Verdict.Suspicious {
					log.WithField("rule", decision.Verdict.RuleID).WithField("action", decision.Action).Info("suspicious clipboard content")
				}
			})
		},
	}

	cmd.Flags().StringVar(&origin, "origin", "", "Origin recorded for captured text (default watch.origin)")

	return cmd
}
