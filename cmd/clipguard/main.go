package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clipguard/clipguard/internal/config"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			for _, msg := range verr.Problems {
				fmt.Fprintln(os.Stderr, msg)
			}
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "clipguard",
		Short:        "Detect ClickFix-style malicious clipboard payloads",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: in-memory settings)")

	root.AddCommand(newScanCmd(&configPath))
	root.AddCommand(newRunCmd(&configPath))
	root.AddCommand(newWatchCmd(&configPath))
	root.AddCommand(newWhitelistCmd(&configPath))
	root.AddCommand(newKeywordsCmd(&configPath))
	root.AddCommand(newAlertsCmd(&configPath))
	root.AddCommand(newLogsCmd(&configPath))
	root.AddCommand(newReportCmd(&configPath))
	root.AddCommand(newValidateCmd(&configPath))
	root.AddCommand(newVersionCmd())

	return root
}

func newValidateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate a clipguard configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if *configPath == "" {
				return errors.New("config path is required")
			}
			if _, err := loadConfig(*configPath); err != nil {
				return err
			}
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), "config ok"); err != nil {
				return err
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "version=%s commit=%s buildDate=%s\n", version, commit, buildDate)
		},
	}
}
