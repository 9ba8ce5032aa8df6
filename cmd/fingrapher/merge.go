package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/siherrmann/fingrapher/helper"
	"github.com/siherrmann/fingrapher/model"
	"github.com/spf13/cobra"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <extractions.json>",
	Short: "Merge extracted entities and relations into the graph",
	Long: `Merge reads a JSON array of extractions, each with a source name,
entities and relations, and upserts them into the graph. Use - to read
from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runMerge,
}

func runMerge(cmd *cobra.Command, args []string) error {
	extractions, err := readExtractions(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}

	f, err := openFinGrapher(cmd)
	if err != nil {
		return err
	}
	defer f.Close(cmd.Context())

	stats, err := f.MergeExtractions(cmd.Context(), extractions)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), stats)
	}
	printMergeStats(cmd.OutOrStdout(), stats)
	return nil
}

// readExtractions decodes a JSON array of extractions from path, or from
// stdin if path is "-".
func readExtractions(stdin io.Reader, path string) ([]model.Extraction, error) {
	reader := stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return nil, helper.NewError("open extractions", err)
		}
		defer file.Close()
		reader = file
	}

	extractions := []model.Extraction{}
	err := json.NewDecoder(reader).Decode(&extractions)
	if err != nil {
		return nil, helper.NewError("decode extractions", err)
	}
	return extractions, nil
}
