/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"chainguard.dev/opperexploration/agents/resolve"
	"chainguard.dev/opperexploration/internal/cliutil"
	"chainguard.dev/opperexploration/opper"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// functionFile is the YAML form of a function definition. Schemas are
// written as YAML mappings and sent as JSON.
type functionFile struct {
	opper.CreateFunctionRequest `yaml:",inline"`

	InputSchema  map[string]any `yaml:"input_schema,omitempty"`
	OutputSchema map[string]any `yaml:"output_schema,omitempty"`
	Model        []string       `yaml:"model,omitempty"`
}

func loadFunctionFile(path string) (resolve.FunctionSpec, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return resolve.FunctionSpec{}, fmt.Errorf("read function file: %w", err)
	}
	var f functionFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return resolve.FunctionSpec{}, fmt.Errorf("parse function file %s: %w", path, err)
	}
	spec := f.CreateFunctionRequest
	if spec.Name == "" {
		return resolve.FunctionSpec{}, fmt.Errorf("function file %s: name is required", path)
	}
	if spec.InputSchema, err = marshalSchema(f.InputSchema); err != nil {
		return resolve.FunctionSpec{}, fmt.Errorf("function file %s: input_schema: %w", path, err)
	}
	if spec.OutputSchema, err = marshalSchema(f.OutputSchema); err != nil {
		return resolve.FunctionSpec{}, fmt.Errorf("function file %s: output_schema: %w", path, err)
	}
	for _, m := range f.Model {
		spec.Model = append(spec.Model, opper.Model{Name: m})
	}
	return spec, nil
}

func marshalSchema(m map[string]any) (json.RawMessage, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return json.Marshal(m)
}

func newFunctionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "functions",
		Aliases: []string{"fn"},
		Short:   "Inspect and manage stored functions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get NAME",
		Short: "Print a function by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fn, err := a.client.GetFunctionByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return cliutil.PrintJSON(cmd.OutOrStdout(), fn)
		},
	})

	var file string
	ensure := &cobra.Command{
		Use:   "ensure -f FILE",
		Short: "Create a function from a YAML definition unless one with its name exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec, err := loadFunctionFile(file)
			if err != nil {
				return err
			}
			fn, outcome, err := resolve.Function(cmd.Context(), a.client, spec)
			if err != nil {
				return err
			}
			verb := "created"
			if outcome == resolve.Found {
				verb = "already exists"
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "function %s %s (%s)\n", fn.Name, verb, fn.ID)
			return cliutil.PrintJSON(cmd.OutOrStdout(), fn)
		},
	}
	ensure.Flags().StringVarP(&file, "file", "f", "", "YAML function definition")
	_ = ensure.MarkFlagRequired("file")
	cmd.AddCommand(ensure)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a function by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fn, err := a.client.GetFunctionByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := a.client.DeleteFunction(cmd.Context(), fn.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted function %s (%s)\n", fn.Name, fn.ID)
			return nil
		},
	})
	return cmd
}
