// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"labscan/internal/config"
	"labscan/internal/version"

	// Import formatters to register them
	_ "labscan/internal/formatters/csv"
	_ "labscan/internal/formatters/fhir"
	_ "labscan/internal/formatters/json"
	_ "labscan/internal/formatters/text"
	_ "labscan/internal/formatters/yaml"
)

// envPrefix is prepended to every flag name to form its environment
// variable, e.g. --no-color becomes LABSCAN_NO_COLOR
const envPrefix = "LABSCAN"

// exitError carries a process exit code out of a command
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code
func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		var ee *exitError
		if errors.As(err, &ee) {
			return ee.code
		}
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "labscan",
		Short: "Extract and classify lab values from scanned reports",
		Long: "labscan reads lab reports (images, PDFs or plain text), finds known lab tests,\n" +
			"extracts their values and compares them against adult reference ranges.",
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.String("config", "", "Path to configuration file (default: search standard locations)")
	pf.String("profile", "", "Configuration profile to apply")
	pf.Bool("debug", false, "Log every processing step to stderr")

	root.AddCommand(
		newScanCmd(),
		newTermsCmd(),
		newServeCmd(),
		newReferenceCmd(),
		newProfilesCmd(),
		newVersionCmd(),
	)
	return root
}

// settings is the resolved configuration for one command invocation.
// Precedence: flag, LABSCAN_* environment, profile, config file, built-in default.
type settings struct {
	cfg *config.Config
	v   *viper.Viper
}

// loadSettings reads the config file, applies the profile and binds the
// command's flags and environment through viper
func loadSettings(cmd *cobra.Command) (*settings, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	configPath := v.GetString("config")
	if configPath == "" {
		configPath = config.FindConfigFile()
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	if profile := v.GetString("profile"); profile != "" {
		if err := cfg.ApplyProfile(profile); err != nil {
			return nil, err
		}
	}

	v.SetDefault("format", cfg.Defaults.Format)
	v.SetDefault("status", cfg.Defaults.Statuses)
	v.SetDefault("verbose", cfg.Defaults.Verbose)
	v.SetDefault("debug", cfg.Defaults.Debug)
	v.SetDefault("no-color", cfg.Defaults.NoColor)
	v.SetDefault("show-text", cfg.Defaults.ShowText)
	v.SetDefault("show-terms", cfg.Defaults.ShowTerms)
	v.SetDefault("port", cfg.Server.Port)

	return &settings{cfg: cfg, v: v}, nil
}

// newLogger returns a console logger on a terminal and JSON lines otherwise
func newLogger(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	if isTerminal(w) {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// isTerminal reports whether w is an interactive terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version.Info())
			return nil
		},
	}
}

func newProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List configuration profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range s.cfg.ListProfiles() {
				p := s.cfg.Profiles[name]
				fmt.Fprintf(out, "%-12s %s\n", name, p.Description)
			}
			return nil
		},
	}
}
