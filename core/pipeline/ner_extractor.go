package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/siherrmann/fingrapher/helper"
	"github.com/siherrmann/fingrapher/model"
)

// DefaultNERModel is the token classification model of NERExtractor
const DefaultNERModel = "KnightsAnalytics/distilbert-NER"

// nerTypes maps CoNLL entity tags to graph labels
var nerTypes = map[string]string{
	"PER":  "Person",
	"ORG":  "Organization",
	"LOC":  "Location",
	"MISC": "Entity",
}

// NERExtractor creates an offline extractor using a NER model.
// It finds persons, organizations and locations but no relations, so it
// is a fallback for when no generative model is reachable.
func NERExtractor() (ExtractFunc, error) {
	modelPath, err := helper.PrepareModel(DefaultNERModel, "model.onnx")
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.TokenClassificationConfig{
		ModelPath: modelPath,
		Name:      "ner-pipeline",
		Options: []hugot.TokenClassificationOption{
			pipelines.WithSimpleAggregation(),
			pipelines.WithIgnoreLabels([]string{"O"}),
		},
	}
	nerPipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create NER pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create NER pipeline: %w", err)
	}

	return func(ctx context.Context, sourceName string, text string) (*model.Extraction, error) {
		extraction := &model.Extraction{
			SourceName: sourceName,
			Entities:   []model.ExtractedEntity{},
			Relations:  []model.ExtractedRelation{},
		}
		if strings.TrimSpace(text) == "" {
			return extraction, nil
		}

		result, err := nerPipeline.RunPipeline([]string{helper.Truncate(text, maxExtractionRunes)})
		if err != nil {
			return nil, fmt.Errorf("failed to run NER: %w", err)
		}
		if len(result.Entities) == 0 {
			return extraction, nil
		}

		mentions := make([]nerMention, 0, len(result.Entities[0]))
		for _, entity := range result.Entities[0] {
			mentions = append(mentions, nerMention{Word: entity.Word, Tag: entity.Entity})
		}
		extraction.Entities = countMentions(mentions)

		return extraction, nil
	}, nil
}

type nerMention struct {
	Word string
	Tag  string
}

// countMentions merges repeated mentions of the same entity, keeping the
// order of first appearance.
func countMentions(mentions []nerMention) []model.ExtractedEntity {
	entities := []model.ExtractedEntity{}
	index := map[string]int{}
	for _, mention := range mentions {
		name := strings.TrimSpace(mention.Word)
		if name == "" {
			continue
		}
		entityType := normalizeEntityType(mention.Tag)

		key := entityType + "\x00" + name
		if i, ok := index[key]; ok {
			entities[i].MentionCount++
			continue
		}
		index[key] = len(entities)
		entities = append(entities, model.ExtractedEntity{Name: name, Type: entityType, MentionCount: 1})
	}
	return entities
}

// normalizeEntityType removes B- and I- prefixes from NER tags and maps
// them to graph labels
func normalizeEntityType(tag string) string {
	tag = strings.TrimPrefix(strings.TrimPrefix(tag, "B-"), "I-")
	if label, ok := nerTypes[tag]; ok {
		return label
	}
	return "Entity"
}
