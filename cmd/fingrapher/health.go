package main

import (
	"fmt"

	"github.com/siherrmann/fingrapher/model"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the vector store, graph store and LLM",
	Long:  `Health exits with a non-zero status if any configured dependency is unreachable.`,
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	f, err := openFinGrapher(cmd)
	if err != nil {
		return err
	}
	defer f.Close(cmd.Context())

	health := f.Health(cmd.Context())
	if jsonOutput {
		err = printJSON(cmd.OutOrStdout(), health)
	} else {
		printHealth(cmd.OutOrStdout(), health)
	}
	if err != nil {
		return err
	}

	if health.Status != model.HealthHealthy {
		return fmt.Errorf("status %s", health.Status)
	}
	return nil
}
