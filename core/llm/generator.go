package llm

import (
	"context"

	"github.com/siherrmann/fingrapher/model"
)

// Generator turns a prompt into text with a named generative model.
// Implementations must be safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, modelName, prompt string) (*model.Generation, error)
}

// GeneratorFunc adapts a function to the Generator interface
type GeneratorFunc func(ctx context.Context, modelName, prompt string) (*model.Generation, error)

// Generate calls f
func (f GeneratorFunc) Generate(ctx context.Context, modelName, prompt string) (*model.Generation, error) {
	return f(ctx, modelName, prompt)
}
