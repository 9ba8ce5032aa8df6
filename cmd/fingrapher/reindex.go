package main

import (
	"github.com/siherrmann/fingrapher/database"
	"github.com/spf13/cobra"
)

var reindexCmd = &cobra.Command{
	Use:       "reindex <hnsw|ivfflat>",
	Short:     "Rebuild the vector index of the stored chunks",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{database.IndexTypeHNSW, database.IndexTypeIVFFlat},
	RunE:      runReindex,
}

func init() {
	reindexCmd.Flags().Int("m", 0, "HNSW max connections per layer (default 16)")
	reindexCmd.Flags().Int("ef-construction", 0, "HNSW candidate list size (default 64)")
	reindexCmd.Flags().Int("lists", 0, "IVFFlat number of lists (default 100)")
}

func runReindex(cmd *cobra.Command, args []string) error {
	params := database.IndexParams{}
	params.M, _ = cmd.Flags().GetInt("m")
	params.EFConstruction, _ = cmd.Flags().GetInt("ef-construction")
	params.Lists, _ = cmd.Flags().GetInt("lists")

	f, err := openFinGrapher(cmd)
	if err != nil {
		return err
	}
	defer f.Close(cmd.Context())

	err = f.Reindex(cmd.Context(), args[0], params)
	if err != nil {
		return err
	}

	okColor.Fprintf(cmd.OutOrStdout(), "Rebuilt %s index\n", args[0])
	return nil
}
