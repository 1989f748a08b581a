package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/clipguard/clipguard/internal/notify"
	"github.com/clipguard/clipguard/internal/report"
	"github.com/clipguard/clipguard/internal/store"
)

const listPreviewMax = 300

func newLogsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Inspect the threat log",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored detections, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSettings(cmd.Context(), *configPath, func(s *store.Settings) error {
				logs, err := s.Logs(cmd.Context())
				if err != nil {
					return err
				}
				if len(logs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No threats logged")
					return nil
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "#\tTIME\tHOST\tRULE\tPAYLOAD")
				for i, entry := range logs {
					preview := strings.ReplaceAll(notify.Truncate(entry.DetectedClipboardPayload, listPreviewMax), "\n", " ")
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i, entry.Time.Local().Format(time.DateTime), entry.SourceHost, entry.MatchedRule, preview)
				}
				return tw.Flush()
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every stored detection",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSettings(cmd.Context(), *configPath, func(s *store.Settings) error {
				return s.ClearLogs(cmd.Context())
			})
		},
	})

	var since string
	var format string
	var outPath string
	summary := &cobra.Command{
		Use:   "summary",
		Short: "Summarize stored detections by host and rule",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cutoff time.Time
			if since != "" {
				dur, err := time.ParseDuration(since)
				if err != nil {
					return fmt.Errorf("invalid since duration: %w", err)
				}
				cutoff = time.Now().Add(-dur)
			}

			return withSettings(cmd.Context(), *configPath, func(s *store.Settings) error {
				logs, err := s.Logs(cmd.Context())
				if err != nil {
					return err
				}
				var entries []report.Entry
				for _, entry := range logs {
					if cutoff.IsZero() || !entry.Time.Before(cutoff) {
						entries = append(entries, entry)
					}
				}

				summary := report.Summarize(entries)
				switch format {
				case "", "text":
					return report.WriteOutput(outPath, []byte(report.RenderText(summary)))
				case "md":
					return report.WriteOutput(outPath, []byte(report.RenderMarkdown(summary)))
				case "json":
					data, err := report.RenderJSON(summary)
					if err != nil {
						return err
					}
					return report.WriteOutput(outPath, data)
				default:
					return fmt.Errorf("unknown format %q", format)
				}
			})
		},
	}
	summary.Flags().StringVar(&since, "since", "", "Only include entries newer than this duration (e.g. 24h)")
	summary.Flags().StringVar(&format, "format", "text", "Output format: text|md|json")
	summary.Flags().StringVar(&outPath, "out", "", "Output file path (default stdout)")
	cmd.AddCommand(summary)

	return cmd
}

func newReportCmd(configPath *string) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "report <index>",
		Short: "Write a threat report for a stored detection (index from logs list)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index %q", args[0])
			}
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			s, closeStore, err := openSettings(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			logs, err := s.Logs(cmd.Context())
			if err != nil {
				return err
			}
			if index < 0 || index >= len(logs) {
				return fmt.Errorf("no log entry %d (have %d)", index, len(logs))
			}

			entry := logs[index]
			data, err := report.RenderJSON(report.FromEntry(entry, time.Now()))
			if err != nil {
				return err
			}

			if outPath == "" && cfg.Reports.Dir != "" {
				path, err := report.Save(cfg.ResolvePath(cfg.Reports.Dir), report.Filename(entry.Time), data)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			}
			if outPath == "" {
				_, err := cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			return report.WriteOutput(outPath, data)
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "Output file path (default: reports.dir, else stdout)")

	return cmd
}
