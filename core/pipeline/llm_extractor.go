package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/siherrmann/fingrapher/core/llm"
	"github.com/siherrmann/fingrapher/helper"
	"github.com/siherrmann/fingrapher/model"
)

const (
	// maxExtractionRunes caps the text sent to an extractor
	maxExtractionRunes = 8000
	// maxEntityHints caps the known entity names passed to relation extraction
	maxEntityHints = 20
	// minExtractionRunes is the shortest document BatchExtract processes
	minExtractionRunes = 50
)

var jsonObjectPattern = regexp.MustCompile(`\{[\s\S]*\}`)

const entityPrompt = `You are an entity extraction system. Extract all named entities from the following text.

Categories to extract:
- PERSON: Names of people
- ORGANIZATION: Companies, institutions, agencies
- LOCATION: Cities, countries, addresses
- DATE: Dates and time periods
- MONEY: Monetary values
- PRODUCT: Products, services, technologies
- CONCEPT: Key concepts, topics, themes

Text:
%s

Return a JSON object with this exact format (no other text):
{
    "entities": [
        {"name": "entity name", "type": "TYPE", "mentions": 1},
        ...
    ]
}

Only return valid JSON, no explanations.`

const relationPrompt = `You are a relation extraction system. Extract relationships between entities in the text.
%s

Text:
%s

Common relation types:
- WORKS_FOR: Person works for Organization
- LOCATED_IN: Entity is located in Location
- OWNS: Entity owns another entity
- INVESTS_IN: Entity invests in another
- COMPETES_WITH: Organizations compete
- PARTNERS_WITH: Entities partner together
- PRODUCES: Organization produces Product
- RELATED_TO: General relationship

Return a JSON object with this exact format (no other text):
{
    "relations": [
        {"source": "Entity1", "relation": "RELATION_TYPE", "target": "Entity2"},
        ...
    ]
}

Only return valid JSON, no explanations.`

// LLMExtractor extracts entities and relations by prompting a generative model
type LLMExtractor struct {
	generator llm.Generator
	modelName string
	logger    *slog.Logger
}

// NewLLMExtractor creates an extractor using generator with modelName.
// A nil logger uses slog.Default().
func NewLLMExtractor(generator llm.Generator, modelName string, logger *slog.Logger) *LLMExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMExtractor{
		generator: generator,
		modelName: modelName,
		logger:    logger,
	}
}

// ExtractEntities returns the named entities of text.
// Entities without a mention count are counted once.
func (e *LLMExtractor) ExtractEntities(ctx context.Context, text string) ([]model.ExtractedEntity, error) {
	prompt := fmt.Sprintf(entityPrompt, capText(text))

	generation, err := e.generator.Generate(ctx, e.modelName, prompt)
	if err == nil && generation == nil {
		err = errors.New("empty generation")
	}
	if err != nil {
		return nil, helper.NewError("extract entities", err)
	}

	parsed := parseJSONResponse[struct {
		Entities []model.ExtractedEntity `json:"entities"`
	}](generation.Text)

	entities := make([]model.ExtractedEntity, 0, len(parsed.Entities))
	for _, entity := range parsed.Entities {
		if entity.MentionCount <= 0 {
			entity.MentionCount = 1
		}
		entities = append(entities, entity)
	}

	return entities, nil
}

// ExtractRelations returns the relations of text. Up to 20 known entity
// names are passed to the model as hints.
func (e *LLMExtractor) ExtractRelations(ctx context.Context, text string, entities []model.ExtractedEntity) ([]model.ExtractedRelation, error) {
	entityHint := ""
	if len(entities) > 0 {
		names := make([]string, 0, maxEntityHints)
		for _, entity := range entities[:min(len(entities), maxEntityHints)] {
			names = append(names, entity.Name)
		}
		entityHint = "\nKnown entities: " + strings.Join(names, ", ")
	}

	prompt := fmt.Sprintf(relationPrompt, entityHint, capText(text))

	generation, err := e.generator.Generate(ctx, e.modelName, prompt)
	if err == nil && generation == nil {
		err = errors.New("empty generation")
	}
	if err != nil {
		return nil, helper.NewError("extract relations", err)
	}

	parsed := parseJSONResponse[struct {
		Relations []model.ExtractedRelation `json:"relations"`
	}](generation.Text)

	if parsed.Relations == nil {
		parsed.Relations = []model.ExtractedRelation{}
	}

	return parsed.Relations, nil
}

// Extract runs entity then relation extraction on one document. A failing
// step is logged and yields an empty list, so Extract itself never fails.
// It has the ExtractFunc signature.
func (e *LLMExtractor) Extract(ctx context.Context, sourceName string, text string) (*model.Extraction, error) {
	entities, err := e.ExtractEntities(ctx, text)
	if err != nil {
		e.logger.Warn("Entity extraction failed", slog.String("source", sourceName), slog.Any("error", err))
		entities = []model.ExtractedEntity{}
	}

	relations, err := e.ExtractRelations(ctx, text, entities)
	if err != nil {
		e.logger.Warn("Relation extraction failed", slog.String("source", sourceName), slog.Any("error", err))
		relations = []model.ExtractedRelation{}
	}

	e.logger.Info(
		"Extracted graph",
		slog.String("source", sourceName),
		slog.Int("entities", len(entities)),
		slog.Int("relations", len(relations)),
	)

	return &model.Extraction{
		SourceName: sourceName,
		Entities:   entities,
		Relations:  relations,
	}, nil
}

// BatchExtract extracts every document with at least 50 runes of content.
// Shorter documents are skipped. The source name is the document title or
// "document" if it has none.
func (e *LLMExtractor) BatchExtract(ctx context.Context, documents []*model.Document) []*model.Extraction {
	extractions := []*model.Extraction{}
	for _, doc := range documents {
		if doc == nil || utf8.RuneCountInString(doc.Content) < minExtractionRunes {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		sourceName := doc.Title
		if sourceName == "" {
			sourceName = "document"
		}

		extraction, _ := e.Extract(ctx, sourceName, doc.Content)
		extractions = append(extractions, extraction)
	}

	e.logger.Info("Batch extraction finished", slog.Int("documents", len(extractions)))

	return extractions
}

// capText cuts text to maxExtractionRunes and marks the cut with "..."
func capText(text string) string {
	if utf8.RuneCountInString(text) <= maxExtractionRunes {
		return text
	}
	return helper.Truncate(text, maxExtractionRunes) + "..."
}

// parseJSONResponse decodes a model reply. Replies with text around the
// JSON object are retried with the outermost {...} block. An unparseable
// reply yields the zero value.
func parseJSONResponse[T any](text string) T {
	var parsed T
	text = strings.TrimSpace(text)
	if json.Unmarshal([]byte(text), &parsed) == nil {
		return parsed
	}

	if match := jsonObjectPattern.FindString(text); match != "" {
		var fallback T
		if json.Unmarshal([]byte(match), &fallback) == nil {
			return fallback
		}
	}

	var zero T
	return zero
}
