/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"chainguard.dev/opperexploration/internal/cliutil"
	"chainguard.dev/opperexploration/opper"
	"github.com/spf13/cobra"
)

// app carries the client shared by all commands. It is built from the
// environment on first use unless one is already set.
type app struct {
	client *opper.Client
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "opperctl",
		Short: "Command line access to the Opper API",
		Long: "opperctl runs structured calls and manages functions, knowledge bases, spans and span metrics.\n" +
			"Configuration is read from the environment and from a .env file in the working directory.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if a.client != nil {
				return nil
			}
			ctx, client, err := cliutil.Setup(cmd.Context())
			if err != nil {
				return err
			}
			cmd.SetContext(ctx)
			a.client = client
			return nil
		},
	}

	root.AddCommand(
		newCallCmd(a),
		newFunctionsCmd(a),
		newKnowledgeCmd(a),
		newSpansCmd(a),
		newMetricsCmd(a),
		newJudgeCmd(a),
	)
	return root
}
