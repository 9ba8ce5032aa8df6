package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question with cited sources",
	Example: `  fingrapher ask "What are Meta's main risks?"
  fingrapher ask --ticker AAPL --top-k 3 "How does Apple describe supply chain risk?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().Int("top-k", 0, "number of passages to retrieve (default from config)")
	askCmd.Flags().String("ticker", "", "only search passages of this ticker")
	askCmd.Flags().Bool("no-graph", false, "answer from passages only")
}

func runAsk(cmd *cobra.Command, args []string) error {
	f, err := openFinGrapher(cmd)
	if err != nil {
		return err
	}
	defer f.Close(cmd.Context())

	opts := f.Config.Answer
	if topK, _ := cmd.Flags().GetInt("top-k"); topK > 0 {
		opts.TopK = topK
	}
	if ticker, _ := cmd.Flags().GetString("ticker"); ticker != "" {
		opts.TickerFilter = strings.ToUpper(ticker)
	}
	if noGraph, _ := cmd.Flags().GetBool("no-graph"); noGraph {
		opts.IncludeGraph = false
	}

	result, err := f.Answer(cmd.Context(), strings.Join(args, " "), opts)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), result)
	}
	printAnswer(cmd.OutOrStdout(), result)
	return nil
}
