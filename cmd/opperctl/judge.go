/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"chainguard.dev/opperexploration/agents/judge"
	"chainguard.dev/opperexploration/internal/cliutil"
	"chainguard.dev/opperexploration/opper"
	"github.com/spf13/cobra"
)

func newJudgeCmd(a *app) *cobra.Command {
	var (
		mode      string
		reference string
		actual    string
		criterion string
		models    []string
	)
	cmd := &cobra.Command{
		Use:   "judge",
		Short: "Grade an answer with the LLM judge",
		Example: `  opperctl judge --mode golden --reference "Saturn" --actual "It is Saturn" \
    --criterion "Names the planet with the most prominent rings"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var opts []judge.Option
			if len(models) > 0 {
				ms := make([]opper.Model, 0, len(models))
				for _, m := range models {
					ms = append(ms, opper.Model{Name: m})
				}
				opts = append(opts, judge.WithModel(ms...))
			}
			j, err := judge.New(a.client, opts...).Judge(cmd.Context(), &judge.Request{
				Mode:            judge.JudgmentMode(mode),
				ReferenceAnswer: reference,
				ActualAnswer:    actual,
				Criterion:       criterion,
			})
			if err != nil {
				return err
			}
			return cliutil.PrintJSON(cmd.OutOrStdout(), j)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(judge.GoldenMode), "golden, benchmark or standalone")
	cmd.Flags().StringVar(&reference, "reference", "", "reference answer (golden and benchmark modes)")
	cmd.Flags().StringVar(&actual, "actual", "", "answer to grade")
	cmd.Flags().StringVar(&criterion, "criterion", "", "what a good answer looks like")
	cmd.Flags().StringSliceVar(&models, "model", nil, "judge model; repeat for a fallback list")
	return cmd
}
