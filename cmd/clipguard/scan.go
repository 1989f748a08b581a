package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clipguard/clipguard/internal/dispatch"
	"github.com/clipguard/clipguard/internal/hostname"
	"github.com/clipguard/clipguard/internal/rules"
)

func newScanCmd(configPath *string) *cobra.Command {
	var origin string
	var senderURL string
	var method string
	var dispatchFlag bool
	var all bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "scan [text|-]",
		Short: "Classify clipboard text",
		Long:  "Classify text given as arguments, or read from stdin when the argument is - or missing.",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := scanInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			a, err := newApp(ctx, cfg, cmd.ErrOrStderr(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			ev := dispatch.Event{
				Candidate: rules.Candidate{Method: rules.ParseMethod(method), Text: text},
				Origin:    origin,
				SenderURL: senderURL,
			}
			out := cmd.OutOrStdout()

			if all {
				settings, err := a.detector.Settings.Settings(ctx)
				if err != nil {
					return err
				}
				result := a.detector.Engine.Evaluate(ev.Candidate, settings.Keywords)
				if asJSON {
					return writeJSON(out, result.Matches)
				}
				for _, m := range result.Matches {
					fmt.Fprintf(out, "%s\t%s\t%q\n", m.RuleID, m.Source, m.Evidence)
				}
				return nil
			}

			if !dispatchFlag {
				a.detector.Dispatcher = nil
			}
			decision := a.detector.Handle(ctx, ev)

			var outcome *dispatch.Outcome
			if decision.Outcome != nil {
				o := <-decision.Outcome
				outcome = &o
			}

			if asJSON {
				return writeJSON(out, struct {
					dispatch.Decision
					Outcome *dispatch.Outcome `json:"outcome,omitempty"`
				}{decision, outcome})
			}

			if !decision.Verdict.Suspicious {
				fmt.Fprintf(out, "benign host=%s\n", decision.Host)
				return nil
			}
			fmt.Fprintf(out, "suspicious rule=%s host=%s action=%s evidence=%q\n",
				decision.Verdict.RuleID, decision.Host, decision.Action, decision.Verdict.Evidence)
			if outcome != nil {
				fmt.Fprintf(out, "logged=%t alerted=%t\n", outcome.Logged, outcome.Alerted)
				if outcome.ReportPath != "" {
					fmt.Fprintf(out, "report=%s\n", outcome.ReportPath)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&origin, "origin", hostname.Unknown, "Origin the text was copied from")
	cmd.Flags().StringVar(&senderURL, "url", "", "Page URL the text was copied from")
	cmd.Flags().StringVar(&method, "method", string(rules.MethodUnknown), "Clipboard method: write|writeText|execCopy|copyEvent|setData")
	cmd.Flags().BoolVar(&dispatchFlag, "dispatch", false, "Log, alert and report like a live detection")
	cmd.Flags().BoolVar(&all, "all", false, "List every rule that matches instead of the first")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")

	return cmd
}

func scanInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	return strings.Join(args, " "), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

