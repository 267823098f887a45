// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"labscan/internal/core"
	"labscan/internal/knowledge"
	"labscan/internal/preprocessors"
	"labscan/internal/web"
)

func newTermsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "terms <file>",
		Short: "List the glossary terms mentioned in a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			analyzer, err := core.BuildAnalyzer(s.cfg, core.NewObserver(s.v.GetBool("debug"), cmd.ErrOrStderr()), nil)
			if err != nil {
				return err
			}

			report, err := analyzer.AnalyzeFile(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%s: %s", args[0], preprocessors.UserMessage(err))
			}

			out := cmd.OutOrStdout()
			if s.v.GetBool("json") {
				data, err := json.MarshalIndent(report.Terms, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			if len(report.Terms) == 0 {
				fmt.Fprintln(out, "No known terms found.")
				return nil
			}
			for _, t := range report.Terms {
				fmt.Fprintf(out, "%s (%s)\n  %s\n", t.Term, t.Category, t.Explanation)
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Print terms as JSON")
	return cmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analyzer over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			debug := s.v.GetBool("debug")
			logger := newLogger(cmd.ErrOrStderr(), debug)

			analyzer, err := core.BuildAnalyzer(s.cfg, core.NewObserver(debug, cmd.ErrOrStderr()), nil)
			if err != nil {
				return err
			}

			port := s.v.GetInt("port")
			if port < 1 || port > 65535 {
				return fmt.Errorf("invalid port %d", port)
			}

			server := web.NewServer(analyzer, logger, web.Options{BodyLimit: s.cfg.Server.BodyLimit})
			return server.Start(cmd.Context(), fmt.Sprintf(":%d", port))
		},
	}
	cmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	return cmd
}

func newReferenceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reference",
		Short: "Print the active knowledge base as YAML",
		Long: "Print the active knowledge base (built-in or configured) in the YAML shape\n" +
			"accepted by the knowledge_base setting, so it can be copied and edited.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			base, err := knowledge.LoadOrDefault(s.cfg.KnowledgeBase)
			if err != nil {
				return err
			}
			data, err := knowledge.Marshal(base)
			if err != nil {
				return fmt.Errorf("failed to encode knowledge base: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
