package main

import (
	"fmt"

	"github.com/siherrmann/fingrapher"
	"github.com/siherrmann/fingrapher/model"
	"github.com/spf13/cobra"
)

var addDocumentCmd = &cobra.Command{
	Use:     "add-document <file>",
	Short:   "Chunk, embed and store a filing document",
	Example: `  fingrapher add-document --ticker META --section "Risk Factors" --year 2024 meta-10k-risks.txt`,
	Args:    cobra.ExactArgs(1),
	RunE:    runAddDocument,
}

func init() {
	addDocumentCmd.Flags().String("ticker", "", "ticker of the company the document is about")
	addDocumentCmd.Flags().String("section", "", "filing section (default file name)")
	addDocumentCmd.Flags().String("url", "", "source url of the document")
	addDocumentCmd.Flags().String("year", "", "fiscal year of the filing")
	addDocumentCmd.Flags().Bool("extract", false, "extract entities and relations into the graph with the LLM")
	addDocumentCmd.Flags().Bool("ner", false, "extract entities into the graph with the offline NER model")

	documentsCmd.Flags().Int("limit", 20, "maximum number of documents")
}

var documentsCmd = &cobra.Command{
	Use:   "documents <ticker>",
	Short: "List the stored documents of a ticker",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocuments,
}

func runAddDocument(cmd *cobra.Command, args []string) error {
	ticker, _ := cmd.Flags().GetString("ticker")
	doc, err := model.NewDocumentFromFile(args[0], ticker, nil)
	if err != nil {
		return err
	}
	if section, _ := cmd.Flags().GetString("section"); section != "" {
		doc.Section = section
	}
	doc.URL, _ = cmd.Flags().GetString("url")
	doc.Year, _ = cmd.Flags().GetString("year")

	opts := []fingrapher.Option{}
	if ner, _ := cmd.Flags().GetBool("ner"); ner {
		opts = append(opts, fingrapher.WithNERExtraction())
	}

	f, err := openFinGrapher(cmd, opts...)
	if err != nil {
		return err
	}
	defer f.Close(cmd.Context())

	chunks, err := f.AddDocument(cmd.Context(), doc)
	if err != nil {
		return err
	}

	result := map[string]interface{}{"document": doc.RID.String(), "chunks": chunks}
	if extract, _ := cmd.Flags().GetBool("extract"); extract {
		stats, err := f.ExtractAndMerge(cmd.Context(), []*model.Document{doc})
		if err != nil {
			return err
		}
		result["merge"] = stats
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), result)
	}
	okColor.Fprintf(cmd.OutOrStdout(), "Added %q with %d chunks\n", doc.Title, chunks)
	if stats, ok := result["merge"].(*model.MergeStats); ok {
		printMergeStats(cmd.OutOrStdout(), stats)
	}
	fmt.Fprintln(cmd.OutOrStdout(), doc.RID)
	return nil
}

func runDocuments(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	f, err := openFinGrapher(cmd)
	if err != nil {
		return err
	}
	defer f.Close(cmd.Context())

	documents, err := f.Documents(cmd.Context(), args[0], limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), documents)
	}
	printDocuments(cmd.OutOrStdout(), documents)
	return nil
}
