package main

import (
	"context"
	"fmt"
	"log"

	"github.com/siherrmann/fingrapher"
	"github.com/siherrmann/fingrapher/helper"
	"github.com/siherrmann/fingrapher/model"
)

const riskFactors = `We are subject to complex and evolving laws and regulation regarding privacy,
data protection and competition in the United States and the European Union.

Substantially all of our revenue is generated from advertising. The loss of marketers,
or reduction in spending by marketers, could seriously harm our business.

Our products depend on a supply of data center capacity and network infrastructure.`

func main() {
	ctx := context.Background()

	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(ctx)

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

	// Uses the default semantic chunker, the MiniLM embedder and a local Ollama server
	f, err := fingrapher.NewFinGrapher(ctx, &config)
	if err != nil {
		log.Fatalf("Failed to create fingrapher: %v", err)
	}
	defer f.Close(ctx)

	fmt.Println("Ingesting filing section...")
	chunks, err := f.AddDocument(ctx, &model.Document{
		Title:   "Meta 10-K 2024 Risk Factors",
		Ticker:  "META",
		Section: "Risk Factors",
		URL:     "https://www.sec.gov/cgi-bin/browse-edgar?action=getcompany&CIK=0001326801",
		Year:    "2024",
		Content: riskFactors,
	})
	if err != nil {
		log.Fatalf("Failed to add document: %v", err)
	}
	fmt.Printf("Inserted %d chunks\n", chunks)

	err = f.UpsertCompany(ctx, model.Company{
		Ticker:       "META",
		Name:         "Meta Platforms Inc.",
		Sector:       "Communication Services",
		Industry:     "Internet Content & Information",
		Country:      "United States",
		MarketCap:    1.5e12,
		Revenue:      1.6e11,
		ProfitMargin: 0.38,
	})
	if err != nil {
		log.Fatalf("Failed to upsert company: %v", err)
	}

	question := "What are Meta's main risks?"
	fmt.Printf("\nAsking: %s\n", question)

	result, err := f.Ask(ctx, question)
	if err != nil {
		log.Fatalf("Failed to answer: %v", err)
	}

	fmt.Printf("\n%s\n", result.Answer)
	for i, citation := range result.Citations {
		fmt.Printf("[Source %d] %s %s (%.3f)\n", i+1, citation.Source, citation.Section, citation.Relevance)
	}
	for _, path := range result.GraphPaths {
		fmt.Printf("%s -[%s]-> %s\n", path.SourceKey, path.RelationType, path.TargetLabel)
	}

	fmt.Println("\nBasic example completed successfully!")
}
