package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/siherrmann/fingrapher"
	"github.com/siherrmann/fingrapher/helper"
	"github.com/siherrmann/fingrapher/model"
)

const supplyChain = `Nvidia relies on Taiwan Semiconductor Manufacturing Company to produce
its GPUs. Any disruption at TSMC could limit the supply of data center products.

Nvidia competes with Advanced Micro Devices and Intel in the accelerator market.`

const companies = `AMD and Intel both design processors, while TSMC manufactures chips for
Nvidia, AMD and Apple. Apple designs its own silicon and depends on TSMC as well.`

func main() {
	ctx := context.Background()

	// Start PostgreSQL for passages and Neo4j for the company graph
	pgTeardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer pgTeardown(ctx)

	neoTeardown, boltURL, password, err := helper.MustStartNeo4jContainer()
	if err != nil {
		log.Fatalf("Failed to start Neo4j container: %v", err)
	}
	defer neoTeardown(ctx)

	config := model.DefaultConfig()
	config.Database = helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}
	config.GraphBackend = model.GraphBackendNeo4j
	config.Neo4j.URI = boltURL
	config.Neo4j.Password = password
	config.Neo4j.ConnectionTimeout = 30 * time.Second

	f, err := fingrapher.NewFinGrapher(ctx, &config)
	if err != nil {
		log.Fatalf("Failed to create fingrapher: %v", err)
	}
	defer f.Close(ctx)

	health := f.Health(ctx)
	fmt.Printf("Health: %s (graph connected: %v, llm connected: %v)\n", health.Status, health.GraphStore.Connected, health.LLM.Connected)

	for _, company := range []model.Company{
		{Ticker: "NVDA", Name: "NVIDIA Corporation", Sector: "Technology", Industry: "Semiconductors"},
		{Ticker: "AMD", Name: "Advanced Micro Devices Inc.", Sector: "Technology", Industry: "Semiconductors"},
		{Ticker: "TSM", Name: "Taiwan Semiconductor Manufacturing Company", Sector: "Technology", Industry: "Semiconductors"},
	} {
		if err := f.UpsertCompany(ctx, company); err != nil {
			log.Fatalf("Failed to upsert %s: %v", company.Ticker, err)
		}
	}

	docs := []*model.Document{
		{Title: "NVDA 10-K Supply Chain", Ticker: "NVDA", Section: "Risk Factors", Year: "2024", Content: supplyChain},
		{Title: "Semiconductor landscape", Section: "Industry", Content: companies},
	}
	for _, doc := range docs {
		chunks, err := f.AddDocument(ctx, doc)
		if err != nil {
			log.Fatalf("Failed to add %s: %v", doc.Title, err)
		}
		fmt.Printf("Added %q with %d chunks\n", doc.Title, chunks)
	}

	// Let the LLM extract entities and relations from the passages
	stats, err := f.ExtractAndMerge(ctx, docs)
	if err != nil {
		log.Fatalf("Failed to extract: %v", err)
	}
	fmt.Printf("Merged %d entities and %d relations (%d failures)\n", stats.EntitiesAdded, stats.RelationsAdded, len(stats.Failures))

	graphStats, err := f.GraphStats(ctx)
	if err != nil {
		log.Fatalf("Failed to count graph: %v", err)
	}
	fmt.Printf("Graph: %d nodes, %d relations\n", graphStats.TotalNodes, graphStats.TotalRelations)
	for _, nodeType := range graphStats.NodeTypes {
		fmt.Printf("  %s: %d\n", nodeType.Type, nodeType.Count)
	}

	questions := []struct {
		question string
		opts     model.AnswerOptions
	}{
		{"Which supplier is Nvidia exposed to?", model.AnswerOptions{TopK: 3, IncludeGraph: true, TickerFilter: "NVDA"}},
		{"Who competes with Nvidia?", model.AnswerOptions{TopK: 3, IncludeGraph: false}},
	}
	for _, q := range questions {
		result, err := f.Answer(ctx, q.question, q.opts)
		if err != nil {
			log.Fatalf("Failed to answer: %v", err)
		}

		fmt.Printf("\nQ: %s\nA: %s\n", q.question, result.Answer)
		fmt.Printf("   %d passages, %d graph entities, %d graph paths\n", result.SourceCounts.VectorResults, result.SourceCounts.GraphEntities, len(result.GraphPaths))
	}

	fmt.Println("\nAdvanced example completed successfully!")
}
