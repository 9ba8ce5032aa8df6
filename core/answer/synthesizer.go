package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/siherrmann/fingrapher/core/llm"
	"github.com/siherrmann/fingrapher/helper"
	"github.com/siherrmann/fingrapher/model"
)

// MaxPromptContextRunes caps the context sent to the generator
const MaxPromptContextRunes = 6000

// RefusalMessage is the answer when no evidence was retrieved
const RefusalMessage = "I don't have enough information to answer this question. Please ingest some documents first."

const errorAnswerPrefix = "Error generating answer: "

const promptTemplate = `You are a helpful assistant answering questions based on the provided context.
Use ONLY the information from the context below to answer. If the context doesn't contain
enough information, say so clearly.

CONTEXT:
%s

QUESTION: %s

Instructions:
1. Answer the question directly and concisely
2. Reference specific sources when possible (e.g., "According to [Source 1]...")
3. If multiple sources agree, mention that
4. If you're uncertain, express that uncertainty
5. Keep the answer focused and relevant

ANSWER:`

var errNoGenerator = errors.New("generator not configured")

// Synthesizer asks the generator for an answer grounded in a context
type Synthesizer struct {
	generator llm.Generator
	modelName string
	logger    *slog.Logger
}

// NewSynthesizer creates a synthesizer sending prompts to modelName
func NewSynthesizer(generator llm.Generator, modelName string, logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{
		generator: generator,
		modelName: modelName,
		logger:    logger,
	}
}

// BuildPrompt renders the grounding prompt with the context cut to
// MaxPromptContextRunes
func BuildPrompt(question string, contextText string) string {
	return fmt.Sprintf(promptTemplate, helper.Truncate(contextText, MaxPromptContextRunes), question)
}

// Citations lists the evidence with metadata in input order
func Citations(evidence []model.VectorEvidence) []model.Citation {
	citations := []model.Citation{}
	for _, item := range evidence {
		if len(item.Metadata) == 0 {
			continue
		}
		citations = append(citations, model.Citation{
			Source:    valueOr(item.Metadata, "ticker", "Unknown"),
			Section:   valueOr(item.Metadata, "section", "document"),
			Locator:   valueOr(item.Metadata, "url", ""),
			Relevance: helper.Round3(item.RelevanceScore),
		})
	}
	return citations
}

func valueOr(metadata map[string]string, key string, fallback string) string {
	if value, ok := metadata[key]; ok {
		return value
	}
	return fallback
}

// Synthesize returns the answer and its citations. A blank context gives
// RefusalMessage without calling the generator. A generator failure is
// returned as answer text without citations.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, contextText string, evidence []model.VectorEvidence) (string, []model.Citation) {
	answer, citations, _ := s.synthesize(ctx, question, contextText, evidence)
	return answer, citations
}

// synthesize also returns the generator error for observability
func (s *Synthesizer) synthesize(ctx context.Context, question string, contextText string, evidence []model.VectorEvidence) (string, []model.Citation, error) {
	if strings.TrimSpace(contextText) == "" {
		return RefusalMessage, []model.Citation{}, nil
	}

	if s.generator == nil {
		return errorAnswerPrefix + errNoGenerator.Error(), []model.Citation{}, errNoGenerator
	}

	generation, err := s.generator.Generate(ctx, s.modelName, BuildPrompt(question, contextText))
	if err == nil && generation == nil {
		err = errors.New("empty generation")
	}
	if err != nil {
		s.logger.Warn("Answer generation failed", slog.String("model", s.modelName), slog.String("error", err.Error()))
		return errorAnswerPrefix + err.Error(), []model.Citation{}, err
	}

	return strings.TrimSpace(generation.Text), Citations(evidence), nil
}
