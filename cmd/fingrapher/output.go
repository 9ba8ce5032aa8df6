package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/siherrmann/fingrapher/model"
)

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	okColor      = color.New(color.FgGreen)
	failColor    = color.New(color.FgRed)
	mutedColor   = color.New(color.Faint)
)

func printJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func printError(w io.Writer, err error) {
	failColor.Fprintf(w, "Error: %v\n", err)
}

func printAnswer(w io.Writer, result *model.AnswerResult) {
	fmt.Fprintln(w, result.Answer)

	if len(result.Citations) > 0 {
		fmt.Fprintln(w)
		headingColor.Fprintln(w, "Sources")
		for i, citation := range result.Citations {
			fmt.Fprintf(w, "  [%d] %s, %s", i+1, citation.Source, citation.Section)
			if citation.Locator != "" {
				mutedColor.Fprintf(w, " %s", citation.Locator)
			}
			fmt.Fprintf(w, " (relevance %.3f)\n", citation.Relevance)
		}
	}

	if len(result.GraphPaths) > 0 {
		fmt.Fprintln(w)
		headingColor.Fprintln(w, "Graph")
		for _, path := range result.GraphPaths {
			fmt.Fprintf(w, "  %s -[%s]-> %s (%s)\n", path.SourceKey, path.RelationType, path.TargetLabel, path.TargetType)
		}
	}

	mutedColor.Fprintf(w, "\n%d passages, %d graph entities\n", result.SourceCounts.VectorResults, result.SourceCounts.GraphEntities)
}

func printCompany(w io.Writer, company *model.GraphEntity) {
	headingColor.Fprintf(w, "%s (%s)\n", company.Attr("name"), company.Attr("ticker"))

	keys := make([]string, 0, len(company.Attributes))
	for key := range company.Attributes {
		if key != "name" && key != "ticker" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := company.Attr(key)
		if number, ok := company.Float(key); ok && number >= 1000 {
			value = humanize.Comma(int64(number))
		}
		fmt.Fprintf(w, "  %-18s %s\n", key, value)
	}
}

func printDocuments(w io.Writer, documents []*model.Document) {
	if len(documents) == 0 {
		mutedColor.Fprintln(w, "No documents")
		return
	}
	for _, doc := range documents {
		fmt.Fprintf(w, "%s  %-6s %-4s %s", doc.RID, doc.Ticker, doc.Year, doc.Title)
		mutedColor.Fprintf(w, "  %s\n", humanize.Time(doc.CreatedAt))
	}
}

func printMergeStats(w io.Writer, stats *model.MergeStats) {
	okColor.Fprintf(w, "Merged %d entities and %d relations\n", stats.EntitiesAdded, stats.RelationsAdded)
	for _, failure := range stats.Failures {
		failColor.Fprintf(w, "  %s %s %q: %s\n", failure.SourceName, failure.Kind, failure.Item, failure.Error)
	}
}

func printStats(w io.Writer, vector *model.VectorStats, graph *model.GraphStats) {
	headingColor.Fprintln(w, "Vector store")
	fmt.Fprintf(w, "  documents  %s\n", humanize.Comma(vector.TotalDocuments))
	fmt.Fprintf(w, "  chunks     %s\n", humanize.Comma(vector.TotalChunks))

	headingColor.Fprintln(w, "Graph store")
	if graph == nil {
		mutedColor.Fprintln(w, "  not connected")
		return
	}
	fmt.Fprintf(w, "  nodes      %s\n", humanize.Comma(graph.TotalNodes))
	fmt.Fprintf(w, "  relations  %s\n", humanize.Comma(graph.TotalRelations))
	for _, nodeType := range graph.NodeTypes {
		fmt.Fprintf(w, "    %-16s %s\n", nodeType.Type, humanize.Comma(nodeType.Count))
	}
}

func printHealth(w io.Writer, health *model.HealthStatus) {
	statusColor := okColor
	if health.Status != model.HealthHealthy {
		statusColor = failColor
	}
	statusColor.Fprintf(w, "Status: %s\n", strings.ToUpper(health.Status))

	components := []struct {
		name   string
		health model.ComponentHealth
	}{
		{"vector store", health.VectorStore},
		{"graph store", health.GraphStore},
		{"llm", health.LLM},
	}
	for _, component := range components {
		if component.health.Connected {
			okColor.Fprintf(w, "  %-13s connected\n", component.name)
			continue
		}
		reason := component.health.Error
		if reason == "" {
			reason = "not configured"
		}
		failColor.Fprintf(w, "  %-13s %s\n", component.name, reason)
	}
}
