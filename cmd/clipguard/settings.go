package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clipguard/clipguard/internal/store"
)

// withSettings opens the configured store for the duration of fn.
func withSettings(ctx context.Context, configPath string, fn func(*store.Settings) error) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	settings, closeStore, err := openSettings(ctx, cfg)
	if err != nil {
		return err
	}
	err = fn(settings)
	if cerr := closeStore(); err == nil {
		err = cerr
	}
	return err
}

func newWhitelistCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whitelist",
		Short: "Manage hosts exempt from alerts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <host>",
		Short: "Add a host (must contain a dot, e.g. example.com)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSettings(cmd.Context(), *configPath, func(s *store.Settings) error {
				host, err := s.AddWhitelist(cmd.Context(), args[0])
				if errors.Is(err, store.ErrDuplicate) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s is already whitelisted\n", host)
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", host)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <host>",
		Short: "Remove a host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSettings(cmd.Context(), *configPath, func(s *store.Settings) error {
				return s.RemoveWhitelist(cmd.Context(), strings.TrimSpace(args[0]))
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List whitelisted hosts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSettings(cmd.Context(), *configPath, func(s *store.Settings) error {
				list, err := s.Whitelist(cmd.Context())
				if err != nil {
					return err
				}
				if len(list) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No whitelisted sites")
					return nil
				}
				for _, host := range list {
					fmt.Fprintln(cmd.OutOrStdout(), host)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every host",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSettings(cmd.Context(), *configPath, func(s *store.Settings) error {
				return s.ClearWhitelist(cmd.Context())
			})
		},
	})

	return cmd
}

func newKeywordsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keywords",
		Short: "Manage user-defined keywords",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print user keywords, one per line",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSettings(cmd.Context(), *configPath, func(s *store.Settings) error {
				keywords, err := s.Keywords(cmd.Context())
				if err != nil {
					return err
				}
				for _, k := range keywords {
					fmt.Fprintln(cmd.OutOrStdout(), k)
				}
				return nil
			})
		},
	})

	var file string
	set := &cobra.Command{
		Use:   "set [keyword...]",
		Short: "Replace user keywords from arguments, --file, or newline-delimited stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := keywordInput(cmd.InOrStdin(), file, args)
			if err != nil {
				return err
			}
			keywords := store.ParseKeywords(raw)
			return withSettings(cmd.Context(), *configPath, func(s *store.Settings) error {
				if err := s.SaveKeywords(cmd.Context(), keywords); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved %d keywords\n", len(keywords))
				return nil
			})
		},
	}
	set.Flags().StringVar(&file, "file", "", "Read keywords from a file, one per line")
	cmd.AddCommand(set)

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Clear user keywords; built-in rules stay active",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSettings(cmd.Context(), *configPath, func(s *store.Settings) error {
				return s.ResetKeywords(cmd.Context())
			})
		},
	})

	return cmd
}

func keywordInput(stdin io.Reader, file string, args []string) (string, error) {
	switch {
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		return string(data), nil
	case len(args) > 0:
		return strings.Join(args, "\n"), nil
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

func newAlertsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "alerts [on|off]",
		Short:     "Show or toggle on-screen alerts",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSettings(cmd.Context(), *configPath, func(s *store.Settings) error {
				if len(args) == 1 {
					switch args[0] {
					case "on", "off":
						if err := s.SetOnScreenAlerts(cmd.Context(), args[0] == "on"); err != nil {
							return err
						}
					default:
						return fmt.Errorf("expected on or off, got %q", args[0])
					}
				}
				enabled, err := s.OnScreenAlerts(cmd.Context())
				if err != nil {
					return err
				}
				state := "off"
				if enabled {
					state = "on"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "on-screen alerts %s\n", state)
				return nil
			})
		},
	}
	return cmd
}
