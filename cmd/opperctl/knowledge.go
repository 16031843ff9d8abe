/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"
	"strings"

	"chainguard.dev/opperexploration/agents/resolve"
	"chainguard.dev/opperexploration/internal/cliutil"
	"chainguard.dev/opperexploration/opper"
	"github.com/spf13/cobra"
)

func newKnowledgeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "knowledge",
		Aliases: []string{"kb"},
		Short:   "Add to and query knowledge bases",
	}

	var (
		topK    int
		filters []string
	)
	query := &cobra.Command{
		Use:   "query KB QUERY",
		Short: "Run a semantic query, optionally filtered on metadata",
		Example: `  opperctl knowledge query Tickets "Can't login" --top-k 3 \
    --filter status=resolved --filter source=our_ticket_system`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kb, err := a.client.GetKnowledgeBaseByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fs, err := eqFilters(filters)
			if err != nil {
				return err
			}
			req := opper.QueryRequest{Query: args[1], TopK: topK, Filters: fs}
			results, err := a.client.QueryKnowledge(cmd.Context(), kb.ID, req)
			if err != nil {
				return err
			}
			return cliutil.PrintJSON(cmd.OutOrStdout(), results)
		},
	}
	query.Flags().IntVar(&topK, "top-k", 0, "maximum number of results (0 uses the service default)")
	query.Flags().StringSliceVar(&filters, "filter", nil, "field=value equality filter; filters are combined with AND")
	cmd.AddCommand(query)

	var (
		key      string
		content  string
		metadata []string
	)
	add := &cobra.Command{
		Use:   "add KB",
		Short: "Add or overwrite an entry, creating the knowledge base if needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := parsePairs(metadata)
			if err != nil {
				return err
			}
			kb, _, err := resolve.KnowledgeBase(cmd.Context(), a.client, args[0])
			if err != nil {
				return err
			}
			entry := opper.KnowledgeEntry{Key: key, Content: content, Metadata: meta}
			if err := a.client.AddKnowledge(cmd.Context(), kb.ID, entry); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %s in %s\n", key, kb.Name)
			return nil
		},
	}
	add.Flags().StringVar(&key, "key", "", "entry key, unique within the knowledge base")
	add.Flags().StringVar(&content, "content", "", "entry content")
	add.Flags().StringSliceVar(&metadata, "metadata", nil, "key=value metadata; may be repeated")
	_ = add.MarkFlagRequired("key")
	_ = add.MarkFlagRequired("content")
	cmd.AddCommand(add)

	return cmd
}

// eqFilters builds equality filters in flag order. Values are typed as by
// parsePairs so they compare equal to metadata stored by "add".
func eqFilters(list []string) ([]opper.Filter, error) {
	var out []opper.Filter
	for _, f := range list {
		k, v, ok := strings.Cut(f, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid filter %q: want field=value", f)
		}
		out = append(out, opper.Eq(k, scalar(v)))
	}
	return out, nil
}
