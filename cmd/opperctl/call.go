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

func newCallCmd(a *app) *cobra.Command {
	var (
		instructions string
		input        string
		inputSchema  string
		outputSchema string
		models       []string
		parent       string
		tags         []string
	)
	cmd := &cobra.Command{
		Use:   "call NAME",
		Short: "Run a structured call and print the response",
		Example: `  opperctl call extractRoom \
    --instructions "Extract details about the room from the provided text" \
    --input "The Grand Hotel offers a suite with 3 rooms." \
    --output-schema @room.schema.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := inputValue(input)
			if err != nil {
				return err
			}
			inSchema, err := schemaValue(inputSchema)
			if err != nil {
				return err
			}
			outSchema, err := schemaValue(outputSchema)
			if err != nil {
				return err
			}
			tagMap, err := splitPairs(tags)
			if err != nil {
				return err
			}
			req := opper.CallRequest{
				Name:         args[0],
				Instructions: instructions,
				Input:        in,
				InputSchema:  inSchema,
				OutputSchema: outSchema,
				ParentSpanID: parent,
				Tags:         tagMap,
			}
			for _, m := range models {
				req.Model = append(req.Model, opper.Model{Name: m})
			}
			resp, err := a.client.Invoke(cmd.Context(), req)
			if err != nil {
				return err
			}
			return cliutil.PrintJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVar(&instructions, "instructions", "", "instructions for the model")
	cmd.Flags().StringVar(&input, "input", "", "input as JSON or text, or @file")
	cmd.Flags().StringVar(&inputSchema, "input-schema", "", "input JSON schema, inline or @file")
	cmd.Flags().StringVar(&outputSchema, "output-schema", "", "output JSON schema, inline or @file")
	cmd.Flags().StringSliceVar(&models, "model", nil, "model to use; repeat for an ordered fallback list")
	cmd.Flags().StringVar(&parent, "parent-span", "", "span id to nest the call under")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "key=value tag; may be repeated")
	return cmd
}
