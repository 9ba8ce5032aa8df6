package main

import (
	"errors"

	"github.com/siherrmann/fingrapher/helper"
	"github.com/siherrmann/fingrapher/model"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count documents, chunks, nodes and relations",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	f, err := openFinGrapher(cmd)
	if err != nil {
		return err
	}
	defer f.Close(cmd.Context())

	vector, err := f.VectorStats(cmd.Context())
	if err != nil {
		return err
	}

	graph, err := f.GraphStats(cmd.Context())
	if errors.Is(err, helper.ErrGraphUnavailable) {
		graph = nil
	} else if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), struct {
			Vector *model.VectorStats `json:"vector"`
			Graph  *model.GraphStats  `json:"graph"`
		}{vector, graph})
	}
	printStats(cmd.OutOrStdout(), vector, graph)
	return nil
}
