/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"
	"strconv"

	"chainguard.dev/opperexploration/agents/agenttrace"
	"chainguard.dev/opperexploration/internal/cliutil"
	"chainguard.dev/opperexploration/opper"
	"github.com/spf13/cobra"
)

func newSpansCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spans",
		Short: "Create and update trace spans",
	}

	var (
		parent string
		input  string
	)
	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a span and print its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []agenttrace.StartOption{agenttrace.WithInput(input)}
			if parent != "" {
				opts = append(opts, agenttrace.WithParent(parent))
			}
			sp, err := agenttrace.NewRecorder(a.client).Start(cmd.Context(), args[0], opts...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sp.ID())
			return nil
		},
	}
	create.Flags().StringVar(&parent, "parent", "", "parent span id")
	create.Flags().StringVar(&input, "input", "", "span input")
	cmd.AddCommand(create)

	var (
		upInput  string
		upOutput string
		meta     []string
	)
	update := &cobra.Command{
		Use:   "update ID",
		Short: "Overwrite the input, output or meta of a span",
		Long:  "Overwrite the input, output or meta of a span. Fields given replace the stored ones wholesale; meta is not merged.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := parsePairs(meta)
			if err != nil {
				return err
			}
			sp, err := a.client.UpdateSpan(cmd.Context(), args[0], opper.UpdateSpanRequest{
				Input:  upInput,
				Output: upOutput,
				Meta:   m,
			})
			if err != nil {
				return err
			}
			return cliutil.PrintJSON(cmd.OutOrStdout(), sp)
		},
	}
	update.Flags().StringVar(&upInput, "input", "", "new span input")
	update.Flags().StringVar(&upOutput, "output", "", "new span output")
	update.Flags().StringSliceVar(&meta, "meta", nil, "key=value meta entry; may be repeated")
	cmd.AddCommand(update)

	return cmd
}

func newMetricsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Attach metrics to spans",
	}

	var comment string
	create := &cobra.Command{
		Use:   "create SPAN_ID DIMENSION VALUE",
		Short: "Record a metric on a span",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("metric value %q: %w", args[2], err)
			}
			if err := agenttrace.NewRecorder(a.client).Metric(cmd.Context(), args[0], args[1], value, comment); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recorded %s=%v on %s\n", args[1], value, args[0])
			return nil
		},
	}
	create.Flags().StringVar(&comment, "comment", "", "metric comment")
	cmd.AddCommand(create)

	return cmd
}
